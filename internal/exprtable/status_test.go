package exprtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// === Unit Tests: SetStatus on absent rows ===

func TestSetStatus_Range(t *testing.T) {
	tbl := newTable(t)

	for _, v := range []RowStatus{0, NotReady, 7} {
		err := tbl.SetStatus("ops", "cpu", v)
		require.ErrorIs(t, err, ErrInconsistentValue, "status %d", v)
		require.Equal(t, InconsistentValue, StatusOf(err))
	}
}

func TestSetStatus_AbsentRow(t *testing.T) {
	tests := []struct {
		name    string
		value   RowStatus
		wantErr error
		created RowStatus
	}{
		{name: "active", value: Active, wantErr: ErrInconsistentValue},
		{name: "notInService", value: NotInService, wantErr: ErrInconsistentValue},
		{name: "destroy is a no-op", value: Destroy},
		{name: "createAndGo", value: CreateAndGo, created: Active},
		{name: "createAndWait", value: CreateAndWait, created: NotInService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTable(t)
			err := tbl.SetStatus("ops", "cpu", tt.value)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Zero(t, tbl.Len())
				return
			}
			require.NoError(t, err)

			row, ok := tbl.Get("ops", "cpu")
			if tt.created == 0 {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, tt.created, row.Status)
			require.Equal(t, Counter32, row.ValueType)
			require.Equal(t, []uint32{0, 0}, row.Prefix)
			require.Equal(t, StorageNonVolatile, row.Storage)
		})
	}
}

func TestSetStatus_CreateWithEmptyName(t *testing.T) {
	tbl := newTable(t)

	require.ErrorIs(t, tbl.SetStatus("ops", "", CreateAndGo), ErrInconsistentName)
}

// === Unit Tests: SetStatus on existing rows ===

func TestSetStatus_ExistingRow(t *testing.T) {
	tbl := newTable(t)
	require.NoError(t, tbl.SetStatus("ops", "cpu", CreateAndWait))

	require.ErrorIs(t, tbl.SetStatus("ops", "cpu", CreateAndGo), ErrInconsistentValue)
	require.ErrorIs(t, tbl.SetStatus("ops", "cpu", CreateAndWait), ErrInconsistentValue)

	require.NoError(t, tbl.SetStatus("ops", "cpu", NotInService))
	require.NoError(t, tbl.SetStatus("ops", "cpu", Active))

	row, _ := tbl.Get("ops", "cpu")
	require.Equal(t, Active, row.Status)

	// Active rows only accept destroy.
	require.ErrorIs(t, tbl.SetStatus("ops", "cpu", NotInService), ErrInconsistentValue)
	require.ErrorIs(t, tbl.SetStatus("ops", "cpu", Active), ErrInconsistentValue)

	require.NoError(t, tbl.SetStatus("ops", "cpu", Destroy))
	_, ok := tbl.Get("ops", "cpu")
	require.False(t, ok)
	require.Empty(t, tbl.ByName("cpu"))
}

func TestSetStatus_NotWritableStorage(t *testing.T) {
	tbl := newTable(t)
	row := NewRow("ops", "cpu")
	row.Status = NotInService
	row.Storage = StoragePermanent
	_, err := tbl.Add(row)
	require.NoError(t, err)

	err = tbl.SetStatus("ops", "cpu", Destroy)
	require.ErrorIs(t, err, ErrNotWritable)
	require.Equal(t, 1, tbl.Len())
}

// === Unit Tests: column writes ===

func TestSetColumns(t *testing.T) {
	tbl := newTable(t)
	require.NoError(t, tbl.SetStatus("ops", "cpu", CreateAndWait))

	require.NoError(t, tbl.SetExpression("ops", "cpu", "$1 * 100 / $2"))
	require.NoError(t, tbl.SetComment("ops", "cpu", "cpu busy"))
	require.NoError(t, tbl.SetValueType("ops", "cpu", Integer32))
	require.NoError(t, tbl.SetDeltaInterval("ops", "cpu", 60))

	row, _ := tbl.Get("ops", "cpu")
	require.Equal(t, "$1 * 100 / $2", row.Expression)
	require.Equal(t, "cpu busy", row.Comment)
	require.Equal(t, Integer32, row.ValueType)
	require.Equal(t, int32(60), row.DeltaInterval)
}

func TestSetColumns_Errors(t *testing.T) {
	tbl := newTable(t)

	require.ErrorIs(t, tbl.SetExpression("ops", "cpu", "x"), ErrNoSuchName)
	require.ErrorIs(t, tbl.SetComment("ops", "cpu", "x"), ErrNoSuchName)

	require.NoError(t, tbl.SetStatus("ops", "cpu", CreateAndGo))
	require.ErrorIs(t, tbl.SetValueType("ops", "cpu", 9), ErrWrongValue)
	require.ErrorIs(t, tbl.SetDeltaInterval("ops", "cpu", -1), ErrWrongValue)
	require.ErrorIs(t, tbl.SetDeltaInterval("ops", "cpu", MaxDeltaInterval+1), ErrWrongValue)

	row, _ := tbl.Get("ops", "cpu")
	row.Storage = StorageReadOnly
	require.ErrorIs(t, tbl.SetComment("ops", "cpu", "x"), ErrNotWritable)
}

func TestStatusError_Message(t *testing.T) {
	err := statusErr(NotWritable, "ops", "cpu")

	require.EqualError(t, err, `expression "ops"/"cpu": notWritable`)
	require.NotErrorIs(t, err, ErrNoSuchName)
	require.Zero(t, StatusOf(ErrClosed))
}
