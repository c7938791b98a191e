package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mibstore/internal/exprtable"
	"github.com/zjrosen/mibstore/internal/infrastructure/sqlite"
)

// Builder accumulates expression rows and saves them in one go.
type Builder struct {
	t    *testing.T
	repo *sqlite.ExpressionRepository
	rows []*exprtable.Row
}

// NewBuilder creates a builder saving through repo.
func NewBuilder(t *testing.T, repo *sqlite.ExpressionRepository) *Builder {
	t.Helper()
	return &Builder{t: t, repo: repo}
}

// WithRow adds an active row with NewRow defaults and optional overrides.
func (b *Builder) WithRow(owner, name string, opts ...RowOption) *Builder {
	row := exprtable.NewRow(owner, name)
	row.Status = exprtable.Active
	for _, opt := range opts {
		opt(row)
	}
	b.rows = append(b.rows, row)
	return b
}

// Build saves every accumulated row and returns them in the order added.
func (b *Builder) Build() []*exprtable.Row {
	b.t.Helper()
	ctx := context.Background()
	for _, row := range b.rows {
		require.NoError(b.t, b.repo.Save(ctx, row), "saving %q/%q", row.Owner, row.Name)
	}
	return b.rows
}
