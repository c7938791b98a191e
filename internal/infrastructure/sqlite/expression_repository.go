package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/mibstore/internal/exprtable"
	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/tracing"
)

// ErrExpressionNotFound is returned when no stored row matches.
var ErrExpressionNotFound = errors.New("expression not found")

const expressionColumns = `id, guid, owner, name, expression, value_type, comment,
	delta_interval, prefix, errors, status, storage, updated_at`

// Rows sort by owner then name, each by length and then bytes, which is
// the order of the table index.
const expressionOrder = `ORDER BY length(owner), owner, length(name), name`

const upsertExpression = `INSERT INTO expressions (
		guid, owner, name, expression, value_type, comment,
		delta_interval, prefix, errors, status, storage, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (owner, name) DO UPDATE SET
		expression = excluded.expression,
		value_type = excluded.value_type,
		comment = excluded.comment,
		delta_interval = excluded.delta_interval,
		prefix = excluded.prefix,
		errors = excluded.errors,
		status = excluded.status,
		storage = excluded.storage,
		updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ExpressionRepository stores expression rows.
type ExpressionRepository struct {
	db     *sql.DB
	tracer trace.Tracer
	now    func() time.Time
}

func newExpressionRepository(db *sql.DB, tracer trace.Tracer) *ExpressionRepository {
	return &ExpressionRepository{db: db, tracer: tracer, now: time.Now}
}

func scanExpression(scanner interface{ Scan(...any) error }) (*ExpressionModel, error) {
	var m ExpressionModel
	err := scanner.Scan(
		&m.ID, &m.GUID, &m.Owner, &m.Name, &m.Expression, &m.ValueType, &m.Comment,
		&m.DeltaInterval, &m.Prefix, &m.Errors, &m.Status, &m.Storage, &m.UpdatedAt,
	)
	return &m, err
}

// Save inserts row or updates the stored row with the same index. The
// guid of an existing row is kept.
func (r *ExpressionRepository) Save(ctx context.Context, row *exprtable.Row) (err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanPrefixRepo+"save", rowAttrs(row.Owner, row.Name)...)
	defer func() { tracing.End(span, err) }()

	if err := r.save(ctx, r.db, row); err != nil {
		return err
	}
	log.Debug(log.CatDB, "Expression saved", "owner", row.Owner, "name", row.Name)
	return nil
}

// Delete removes the stored row. Returns ErrExpressionNotFound when there
// is none.
func (r *ExpressionRepository) Delete(ctx context.Context, owner, name string) (err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanPrefixRepo+"delete", rowAttrs(owner, name)...)
	defer func() { tracing.End(span, err) }()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM expressions WHERE owner = ? AND name = ?`,
		blob(owner), blob(name),
	)
	if err != nil {
		return fmt.Errorf("failed to delete expression: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%q/%q: %w", owner, name, ErrExpressionNotFound)
	}
	log.Debug(log.CatDB, "Expression deleted", "owner", owner, "name", name)
	return nil
}

// Find returns the stored row with the given index.
func (r *ExpressionRepository) Find(ctx context.Context, owner, name string) (row *exprtable.Row, err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanPrefixRepo+"find", rowAttrs(owner, name)...)
	defer func() { tracing.End(span, err) }()

	m, err := scanExpression(r.db.QueryRowContext(ctx,
		`SELECT `+expressionColumns+` FROM expressions WHERE owner = ? AND name = ?`,
		blob(owner), blob(name),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q/%q: %w", owner, name, ErrExpressionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find expression: %w", err)
	}
	return m.toRow()
}

// LoadAll returns every stored row in table index order.
func (r *ExpressionRepository) LoadAll(ctx context.Context) (rows []*exprtable.Row, err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanPrefixRepo+"load_all")
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrRowCount, len(rows)))
		tracing.End(span, err)
	}()

	result, err := r.db.QueryContext(ctx, `SELECT `+expressionColumns+` FROM expressions `+expressionOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to load expressions: %w", err)
	}
	defer result.Close()

	for result.Next() {
		m, err := scanExpression(result)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expression: %w", err)
		}
		row, err := m.toRow()
		if err != nil {
			return nil, fmt.Errorf("expression %d: %w", m.ID, err)
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expressions: %w", err)
	}
	return rows, nil
}

// ReplaceAll swaps the stored rows for rows in one transaction.
func (r *ExpressionRepository) ReplaceAll(ctx context.Context, rows []*exprtable.Row) (err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanPrefixRepo+"replace_all",
		attribute.Int(tracing.AttrRowCount, len(rows)))
	defer func() { tracing.End(span, err) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM expressions`); err != nil {
		return fmt.Errorf("failed to clear expressions: %w", err)
	}
	for _, row := range rows {
		if err = r.save(ctx, tx, row); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expressions: %w", err)
	}
	log.Info(log.CatDB, "Expressions replaced", "count", len(rows))
	return nil
}

// Count returns the number of stored rows.
func (r *ExpressionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expressions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count expressions: %w", err)
	}
	return n, nil
}

func (r *ExpressionRepository) save(ctx context.Context, ex execer, row *exprtable.Row) error {
	m := toExpressionModel(row, r.now())
	m.GUID = uuid.NewString()
	_, err := ex.ExecContext(ctx, upsertExpression,
		m.GUID, m.Owner, m.Name, m.Expression, m.ValueType, m.Comment,
		m.DeltaInterval, m.Prefix, m.Errors, m.Status, m.Storage, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save expression %q/%q: %w", row.Owner, row.Name, err)
	}
	return nil
}

func rowAttrs(owner, name string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(tracing.AttrRowOwner, owner),
		attribute.String(tracing.AttrRowName, name),
	}
}

// blob binds s as a BLOB; a nil slice would bind NULL.
func blob(s string) []byte {
	if s == "" {
		return []byte{}
	}
	return []byte(s)
}
