package container

import (
	"github.com/zjrosen/mibstore/internal/compare"
	"github.com/zjrosen/mibstore/internal/log"
)

// Container is a handle around one backend Store with an optional chain of
// secondary indexes. The zero value is an empty destination for
// Factory.ProduceInto.
type Container struct {
	typ         string
	store       Store
	cmp         compare.Func
	indexes     []*Container
	chained     bool
	initialised bool
	freed       bool
	observer    Observer
}

// New wraps s in a container of the given type and initialises it.
func New(typ string, s Store) (*Container, error) {
	if s == nil {
		return nil, &OpError{Op: OpInit, Type: typ, Err: ErrNoStore}
	}
	c := &Container{typ: typ, store: s}
	if err := c.Init(); err != nil {
		return nil, err
	}
	return c, nil
}

// Init hands the container to its store as the comparer. Calling it again
// on an initialised container is a no-op.
func (c *Container) Init() error {
	if c.store == nil {
		return ErrNotInitialised
	}
	if c.initialised && !c.freed {
		return nil
	}
	if err := c.store.Init(c); err != nil {
		return &OpError{Op: OpInit, Type: c.typ, Err: err}
	}
	c.initialised = true
	c.freed = false
	return nil
}

// Type returns the name of the factory that produced the container.
func (c *Container) Type() string {
	return c.typ
}

// Store returns the backend operation set.
func (c *Container) Store() Store {
	return c.store
}

// SetCompare installs the comparator used by the backend from now on.
func (c *Container) SetCompare(fn compare.Func) {
	c.cmp = fn
}

// Compare orders two items with the installed comparator. Without a
// comparator every pair compares equal.
func (c *Container) Compare(lhs, rhs any) int {
	if c.cmp == nil {
		return 0
	}
	return c.cmp(lhs, rhs)
}

// SetObserver installs the observer told about every chained mutation.
func (c *Container) SetObserver(o Observer) {
	c.observer = o
}

// Size returns the number of items in the primary store.
func (c *Container) Size() int {
	if c.store == nil || !c.initialised || c.freed {
		return 0
	}
	return c.store.Size()
}

// Indexes returns the secondary index chain in order.
func (c *Container) Indexes() []*Container {
	return append([]*Container(nil), c.indexes...)
}

// Freed reports whether Free has run on the container.
func (c *Container) Freed() bool {
	return c.freed
}

// AddIndex appends idx to the tail of the secondary chain. The chain owns
// idx from now on and frees it with the primary.
func (c *Container) AddIndex(idx *Container) error {
	switch {
	case idx == nil:
		return ErrNilContainer
	case idx == c:
		return ErrSelfIndex
	case c.freed || idx.freed:
		return ErrFreed
	case c.chained || idx.chained || len(idx.indexes) > 0:
		return ErrAlreadyChained
	}
	idx.chained = true
	c.indexes = append(c.indexes, idx)
	log.Debug(log.CatContainer, "Index added", "primary", c.typ, "index", idx.typ, "position", len(c.indexes))
	return nil
}

// Find looks key up in the primary store.
func (c *Container) Find(key any) (any, bool) {
	if err := c.ready(); err != nil {
		return nil, false
	}
	return c.store.Find(key)
}

// FindNext returns the first item of the primary store ordered strictly
// after key.
func (c *Container) FindNext(key any) (any, bool) {
	if err := c.ready(); err != nil {
		return nil, false
	}
	if s, ok := c.store.(Seeker); ok {
		return s.FindNext(key)
	}
	var (
		best  any
		found bool
	)
	c.store.ForEach(func(item any) {
		if c.Compare(item, key) > 0 && (!found || c.Compare(item, best) < 0) {
			best, found = item, true
		}
	})
	return best, found
}

// ForEach visits every item of the primary store.
func (c *Container) ForEach(fn Visitor) {
	if c.store == nil || !c.initialised || c.freed {
		return
	}
	c.store.ForEach(fn)
}

// Insert adds item to the primary store and then to every secondary index
// in chain order. The returned error is the primary failure; secondary
// failures are reported in the Result.
func (c *Container) Insert(item any) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	if err := c.store.Insert(item); err != nil {
		return Result{}, &OpError{Op: OpInsert, Type: c.typ, Err: err}
	}

	var res Result
	for i, idx := range c.indexes {
		if err := idx.apply(OpInsert, item); err != nil {
			res.Failures = append(res.Failures, c.secondaryFailed(OpInsert, i, idx, err))
		}
	}
	c.observe(OpInsert, res)
	return res, nil
}

// Remove deletes key from every secondary index, tail first, and then from
// the primary store. The primary removal runs even when a secondary failed.
func (c *Container) Remove(key any) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}

	var res Result
	for i := len(c.indexes) - 1; i >= 0; i-- {
		idx := c.indexes[i]
		if err := idx.apply(OpRemove, key); err != nil {
			res.Failures = append(res.Failures, c.secondaryFailed(OpRemove, i, idx, err))
		}
	}

	var err error
	if rerr := c.store.Remove(key); rerr != nil {
		err = &OpError{Op: OpRemove, Type: c.typ, Err: rerr}
	}
	c.observe(OpRemove, res)
	return res, err
}

// Free releases every secondary index, tail first, then the primary store,
// and detaches the chain.
func (c *Container) Free() (Result, error) {
	if c == nil {
		return Result{}, ErrNilContainer
	}
	if c.store == nil || !c.initialised {
		return Result{}, ErrNotInitialised
	}
	if c.freed {
		return Result{}, ErrFreed
	}

	var res Result
	for i := len(c.indexes) - 1; i >= 0; i-- {
		idx := c.indexes[i]
		if err := idx.release(); err != nil {
			res.Failures = append(res.Failures, c.secondaryFailed(OpFree, i, idx, err))
		}
		idx.chained = false
	}
	c.indexes = nil

	var err error
	if ferr := c.store.Free(); ferr != nil {
		err = &OpError{Op: OpFree, Type: c.typ, Err: ferr}
	}
	c.freed = true
	log.Debug(log.CatContainer, "Container freed", "type", c.typ, "failures", len(res.Failures))
	c.observe(OpFree, res)
	return res, err
}

func (c *Container) ready() error {
	if c == nil {
		return ErrNilContainer
	}
	if c.store == nil || !c.initialised {
		return ErrNotInitialised
	}
	if c.freed {
		return ErrFreed
	}
	if c.cmp == nil {
		if _, ok := c.store.(Unordered); !ok {
			return ErrNoComparator
		}
	}
	return nil
}

// apply runs one operation on this container's store only.
func (c *Container) apply(op Op, item any) error {
	if err := c.ready(); err != nil {
		return err
	}
	switch op {
	case OpInsert:
		return c.store.Insert(item)
	case OpRemove:
		return c.store.Remove(item)
	}
	return nil
}

func (c *Container) release() error {
	if c.freed {
		return ErrFreed
	}
	if c.store == nil || !c.initialised {
		return ErrNotInitialised
	}
	c.freed = true
	return c.store.Free()
}

func (c *Container) secondaryFailed(op Op, i int, idx *Container, err error) IndexFailure {
	f := IndexFailure{Position: i + 1, Type: idx.typ, Err: err}
	log.ErrorErr(log.CatContainer, "Secondary index failed", err,
		"op", string(op), "primary", c.typ, "index", idx.typ, "position", f.Position)
	return f
}

func (c *Container) observe(op Op, r Result) {
	if c.observer != nil {
		c.observer.ObserveChain(op, r)
	}
}
