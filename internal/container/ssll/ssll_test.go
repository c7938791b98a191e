package ssll

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/mibstore/internal/container"
)

type intOrder struct{}

func (intOrder) Compare(lhs, rhs any) int { return lhs.(int) - rhs.(int) }

func initList(t *testing.T, l *List) *List {
	t.Helper()
	require.NoError(t, l.Init(intOrder{}))
	return l
}

func collect(l *List) []int {
	var out []int
	l.ForEach(func(item any) { out = append(out, item.(int)) })
	return out
}

func TestSorted_InsertOrderAndDuplicates(t *testing.T) {
	l := initList(t, New())
	for _, v := range []int{3, 1, 2, 5, 4} {
		require.NoError(t, l.Insert(v))
	}
	require.ErrorIs(t, l.Insert(3), container.ErrDuplicate)

	require.Equal(t, []int{1, 2, 3, 4, 5}, collect(l))
	require.Equal(t, 5, l.Size())
}

func TestSorted_RemoveStopsEarly(t *testing.T) {
	l := initList(t, New())
	require.NoError(t, l.Insert(1))
	require.NoError(t, l.Insert(3))

	require.ErrorIs(t, l.Remove(2), container.ErrNotFound)
	require.NoError(t, l.Remove(3))
	require.Equal(t, []int{1}, collect(l))

	// Tail was the removed node; appending must still work.
	require.NoError(t, l.Insert(9))
	require.Equal(t, []int{1, 9}, collect(l))
}

func TestFIFO_AppendsAtTail(t *testing.T) {
	l := initList(t, NewFIFO())
	for _, v := range []int{3, 1, 3, 2} {
		require.NoError(t, l.Insert(v))
	}
	require.Equal(t, []int{3, 1, 3, 2}, collect(l))

	require.NoError(t, l.Remove(2))
	require.NoError(t, l.Insert(7))
	require.Equal(t, []int{3, 1, 3, 7}, collect(l))

	got, ok := l.Find(1)
	require.True(t, ok)
	require.Equal(t, 1, got)

	next, ok := l.FindNext(3)
	require.True(t, ok)
	require.Equal(t, 7, next)
}

func TestLIFO_PushesAtHead(t *testing.T) {
	l := initList(t, NewLIFO())
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, l.Insert(v))
	}
	require.Equal(t, []int{3, 2, 1}, collect(l))

	require.NoError(t, l.Remove(1))
	require.NoError(t, l.Remove(3))
	require.Equal(t, []int{2}, collect(l))
	require.Equal(t, 1, l.Size())
}

func TestFree_EmptiesList(t *testing.T) {
	l := initList(t, New())
	require.NoError(t, l.Insert(1))
	require.NoError(t, l.Free())
	require.Zero(t, l.Size())
	require.Empty(t, collect(l))
}

func TestFactories(t *testing.T) {
	require.Equal(t, Name, Factory().Name())
	require.Equal(t, FIFOName, FIFOFactory().Name())
	require.Equal(t, LIFOName, LIFOFactory().Name())
	require.NotNil(t, LIFOFactory().Produce())
}

func TestSorted_MatchesReferenceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := New()
		require.NoError(rt, l.Init(intOrder{}))
		set := map[int]bool{}

		ops := rapid.SliceOfN(rapid.IntRange(-20, 20), 0, 60).Draw(rt, "ops")
		for _, v := range ops {
			// Negative values remove their absolute value, others insert.
			if v < 0 {
				err := l.Remove(-v)
				if set[-v] {
					require.NoError(rt, err)
					delete(set, -v)
				} else {
					require.ErrorIs(rt, err, container.ErrNotFound)
				}
				continue
			}
			err := l.Insert(v)
			if set[v] {
				require.ErrorIs(rt, err, container.ErrDuplicate)
			} else {
				require.NoError(rt, err)
				set[v] = true
			}
		}

		got := collect(l)
		require.Len(rt, got, len(set))
		require.Equal(rt, len(set), l.Size())
		for i := 1; i < len(got); i++ {
			require.Less(rt, got[i-1], got[i])
		}
	})
}
