package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mibstore/internal/exprtable"
)

func TestBuilder_WithRow(t *testing.T) {
	db := NewTestDB(t)
	repo := db.ExpressionRepository()

	NewBuilder(t, repo).
		WithRow("ops", "cpu").
		Build()

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	row, err := repo.Find(context.Background(), "ops", "cpu")
	require.NoError(t, err)
	require.Equal(t, exprtable.Active, row.Status)
	require.Equal(t, exprtable.Counter32, row.ValueType)
	require.Equal(t, []uint32{0, 0}, row.Prefix)
	require.Equal(t, exprtable.StorageNonVolatile, row.Storage)
}

func TestBuilder_WithRow_AllOptions(t *testing.T) {
	db := NewTestDB(t)
	repo := db.ExpressionRepository()

	NewBuilder(t, repo).
		WithRow("ops", "cpu",
			Expression("$1+$2"),
			ValueType(exprtable.Counter64),
			Comment("total"),
			Delta(30),
			Prefix(1, 3, 6),
			Errors(2),
			Status(exprtable.NotInService),
			Storage(exprtable.StorageVolatile),
		).
		Build()

	row, err := repo.Find(context.Background(), "ops", "cpu")
	require.NoError(t, err)
	require.Equal(t, "$1+$2", row.Expression)
	require.Equal(t, exprtable.Counter64, row.ValueType)
	require.Equal(t, "total", row.Comment)
	require.Equal(t, int32(30), row.DeltaInterval)
	require.Equal(t, []uint32{1, 3, 6}, row.Prefix)
	require.Equal(t, uint32(2), row.Errors)
	require.Equal(t, exprtable.NotInService, row.Status)
	require.Equal(t, exprtable.StorageVolatile, row.Storage)
}

func TestBuilder_BuildReturnsRowsInOrder(t *testing.T) {
	db := NewTestDB(t)

	rows := NewBuilder(t, db.ExpressionRepository()).
		WithRow("b", "x").
		WithRow("a", "y").
		Build()

	require.Len(t, rows, 2)
	require.Equal(t, "b", rows[0].Owner)
	require.Equal(t, "a", rows[1].Owner)
}
