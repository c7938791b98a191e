package exprtable

import (
	"fmt"

	"github.com/zjrosen/mibstore/internal/compare"
	"github.com/zjrosen/mibstore/internal/container"
	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/registry"
)

// RowsRecorder is told the row count after every change.
type RowsRecorder interface {
	SetTableRows(n int)
}

// Option configures a Table.
type Option func(*Table)

// WithRowsRecorder reports the row count to rec.
func WithRowsRecorder(rec RowsRecorder) Option {
	return func(t *Table) {
		t.recorder = rec
	}
}

// Table holds expression rows. The primary container is embedded by value
// and initialised in place by the registry.
//
// Callers must not change Owner or Name of a row that is in the table.
type Table struct {
	rows     container.Container
	byName   *container.Container
	closed   bool
	recorder RowsRecorder
}

// New builds a table whose primary container comes from the first
// registered factory in primaryList. When indexList is non-empty a name
// ordered secondary index is produced from it and chained to the primary.
func New(reg *registry.Registry, primaryList, indexList string, opts ...Option) (*Table, error) {
	t := &Table{}
	for _, opt := range opts {
		opt(t)
	}

	if err := reg.FindInto(primaryList, &t.rows); err != nil {
		return nil, fmt.Errorf("expression table primary: %w", err)
	}
	t.rows.SetCompare(compare.IndexFunc)

	if indexList != "" {
		idx := reg.Find(indexList)
		if idx == nil {
			_, _ = t.rows.Free()
			return nil, fmt.Errorf("expression table index %q: %w", indexList, container.ErrFactoryNotFound)
		}
		idx.SetCompare(nameOrder)
		if err := t.rows.AddIndex(idx); err != nil {
			_, _ = t.rows.Free()
			_, _ = idx.Free()
			return nil, fmt.Errorf("expression table index: %w", err)
		}
		t.byName = idx
	}

	log.Info(log.CatTable, "Expression table ready",
		"primary", t.rows.Type(), "index", t.indexType())
	t.record()
	return t, nil
}

// PrimaryType returns the factory name behind the primary container.
func (t *Table) PrimaryType() string {
	return t.rows.Type()
}

// IndexType returns the factory name behind the name index, or "".
func (t *Table) IndexType() string {
	return t.indexType()
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t.closed {
		return 0
	}
	return t.rows.Size()
}

// Add inserts row into the primary and the name index. A secondary failure
// is reported in the Result and does not fail the call.
func (t *Table) Add(row *Row) (container.Result, error) {
	if t.closed {
		return container.Result{}, ErrClosed
	}
	if row == nil {
		return container.Result{}, container.ErrNilContainer
	}
	if row.Name == "" {
		return container.Result{}, statusErr(InconsistentName, row.Owner, row.Name)
	}
	res, err := t.rows.Insert(row)
	if err != nil {
		return res, fmt.Errorf("adding expression %q/%q: %w", row.Owner, row.Name, err)
	}
	if res.Partial() {
		log.Warn(log.CatTable, "Row missing from name index",
			"owner", row.Owner, "name", row.Name, "error", res.Err())
	}
	log.Debug(log.CatTable, "Row added", "owner", row.Owner, "name", row.Name)
	t.record()
	return res, nil
}

// Get returns the row with the given index.
func (t *Table) Get(owner, name string) (*Row, bool) {
	if t.closed {
		return nil, false
	}
	item, ok := t.rows.Find(compare.IndexFromStrings(owner, name))
	if !ok {
		return nil, false
	}
	row, ok := item.(*Row)
	return row, ok
}

// Next returns the first row ordered strictly after (owner, name). An empty
// owner and name return the first row.
func (t *Table) Next(owner, name string) (*Row, bool) {
	if t.closed {
		return nil, false
	}
	key := compare.Index{}
	if owner != "" || name != "" {
		key = compare.IndexFromStrings(owner, name)
	}
	item, ok := t.rows.FindNext(key)
	if !ok {
		return nil, false
	}
	row, ok := item.(*Row)
	return row, ok
}

// ByName returns every row called name, ordered by owner.
func (t *Table) ByName(name string) []*Row {
	if t.closed {
		return nil
	}
	if t.byName == nil {
		var out []*Row
		for _, r := range t.Rows() {
			if r.Name == name {
				out = append(out, r)
			}
		}
		return out
	}

	var out []*Row
	key := any(nameKey{name: name})
	if item, ok := t.byName.Find(key); ok {
		out = append(out, item.(*Row))
	}
	for {
		item, ok := t.byName.FindNext(key)
		if !ok {
			break
		}
		row := item.(*Row)
		if row.Name != name {
			break
		}
		out = append(out, row)
		key = row
	}
	return out
}

// Rows returns every row in index order.
func (t *Table) Rows() []*Row {
	if t.closed {
		return nil
	}
	out := make([]*Row, 0, t.rows.Size())
	t.rows.ForEach(func(item any) {
		if row, ok := item.(*Row); ok {
			out = append(out, row)
		}
	})
	return out
}

// Close frees the primary and the name index. Further calls are no-ops.
func (t *Table) Close() (container.Result, error) {
	if t.closed {
		return container.Result{}, nil
	}
	n := t.rows.Size()
	res, err := t.rows.Free()
	t.closed = true
	t.byName = nil
	if err != nil {
		return res, fmt.Errorf("closing expression table: %w", err)
	}
	if t.recorder != nil {
		t.recorder.SetTableRows(0)
	}
	log.Info(log.CatTable, "Expression table closed", "rows", n)
	return res, nil
}

func (t *Table) remove(row *Row) (container.Result, error) {
	res, err := t.rows.Remove(row)
	if err != nil {
		return res, fmt.Errorf("removing expression %q/%q: %w", row.Owner, row.Name, err)
	}
	if res.Partial() {
		log.Warn(log.CatTable, "Row lingers in name index",
			"owner", row.Owner, "name", row.Name, "error", res.Err())
	}
	log.Debug(log.CatTable, "Row removed", "owner", row.Owner, "name", row.Name)
	t.record()
	return res, nil
}

func (t *Table) record() {
	if t.recorder != nil {
		t.recorder.SetTableRows(t.rows.Size())
	}
}

func (t *Table) indexType() string {
	if t.byName == nil {
		return ""
	}
	return t.byName.Type()
}

// nameKey looks rows up in the name index.
type nameKey struct {
	name  string
	owner string
}

func nameIndex(v any) compare.Index {
	switch x := v.(type) {
	case *Row:
		return compare.IndexFromStrings(x.Name, x.Owner)
	case nameKey:
		return compare.IndexFromStrings(x.name, x.owner)
	}
	return compare.Index{}
}

// nameOrder orders rows by name then owner.
func nameOrder(lhs, rhs any) int {
	return compare.CompareIndex(nameIndex(lhs), nameIndex(rhs))
}
