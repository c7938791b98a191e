package compare

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// === Unit Tests: Mem ===

func TestMem(t *testing.T) {
	tests := []struct {
		name string
		lhs  string
		rhs  string
		want int
	}{
		{name: "prefix sorts first", lhs: "ab", rhs: "abc", want: -1},
		{name: "equal", lhs: "ab", rhs: "ab", want: 0},
		{name: "greater byte", lhs: "b", rhs: "a", want: 1},
		{name: "longer sorts last", lhs: "abc", rhs: "ab", want: 1},
		{name: "both empty", lhs: "", rhs: "", want: 0},
		{name: "empty vs non-empty", lhs: "", rhs: "a", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mem([]byte(tt.lhs), []byte(tt.rhs))
			require.Equal(t, tt.want, sign(got))
		})
	}
}

// === Unit Tests: OID ===

func TestOID(t *testing.T) {
	require.Equal(t, 0, OID([]uint32{1, 3, 6}, []uint32{1, 3, 6}))
	require.Equal(t, -1, OID([]uint32{1, 3}, []uint32{1, 3, 6}))
	require.Equal(t, 1, OID([]uint32{1, 4}, []uint32{1, 3, 6}))
	require.Equal(t, -1, OID(nil, []uint32{0}))
}

func TestNOID(t *testing.T) {
	require.Equal(t, 0, NOID([]uint32{1, 3, 6, 1}, []uint32{1, 3, 6}, 3))
	require.Equal(t, 0, NOID([]uint32{1, 3, 7}, []uint32{1, 3, 6}, 2))
	require.Equal(t, -1, NOID([]uint32{1, 3}, []uint32{1, 3, 6}, 3))
	require.Equal(t, 1, NOID([]uint32{1, 4}, []uint32{1, 3, 6}, 3))
}

// === Unit Tests: Strings ===

func TestNStrings_PrefixMatch(t *testing.T) {
	require.Equal(t, 0, NStrings("table_container", "table"))
	require.Negative(t, NStrings("tab", "table"))
	require.Positive(t, NStrings("tbble", "table"))
}

type named string

func (n named) Name() string { return string(n) }

func TestNamed(t *testing.T) {
	require.Negative(t, Named(named("binary_array"), named("null")))
	require.Zero(t, Named(named("null"), "null"))
	require.Zero(t, NNamed(named("linked_list"), named("linked")))
	require.Negative(t, Named(nil, named("a")))
}

// === Unit Tests: Index ===

func TestIndexFromStrings(t *testing.T) {
	idx := IndexFromStrings("ab", "c")
	require.Equal(t, []uint32{2, 'a', 'b', 1, 'c'}, idx.OIDs)

	parts, ok := idx.Strings(2)
	require.True(t, ok)
	require.Equal(t, []string{"ab", "c"}, parts)
}

func TestIndex_StringsRejectsMalformed(t *testing.T) {
	_, ok := Index{OIDs: []uint32{5, 'a'}}.Strings(1)
	require.False(t, ok)

	_, ok = Index{OIDs: []uint32{1, 300}}.Strings(1)
	require.False(t, ok)

	_, ok = Index{OIDs: []uint32{1, 'a', 9}}.Strings(1)
	require.False(t, ok)
}

func TestIndexFromStrings_ShorterOwnerSortsFirst(t *testing.T) {
	// Length prefix orders rows by owner length before content.
	require.Negative(t, CompareIndex(IndexFromStrings("zz", "x"), IndexFromStrings("aaa", "x")))
	require.Zero(t, NCompareIndex(IndexFromStrings("o", "n"), IndexFromStrings("o")))
}

type row struct{ idx Index }

func (r row) RowIndex() Index { return r.idx }

func TestFuncAdapters(t *testing.T) {
	require.Negative(t, OIDFunc([]uint32{1}, []uint32{2}))
	require.Negative(t, StringFunc("a", "b"))
	require.Positive(t, MemFunc([]byte("b"), []byte("a")))
	require.Zero(t, IndexFunc(row{IndexFromStrings("a")}, IndexFromStrings("a")))
	require.Zero(t, NIndexFunc(row{IndexFromStrings("a", "b")}, IndexFromStrings("a")))
}

// === Property Tests ===

func TestMem_AgreesWithStringOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.SliceOf(rapid.Byte()).Draw(rt, "a")
		b := rapid.SliceOf(rapid.Byte()).Draw(rt, "b")

		require.Equal(rt, sign(Strings(string(a), string(b))), sign(Mem(a, b)))
		require.Equal(rt, -sign(Mem(a, b)), sign(Mem(b, a)))
	})
}

func TestOID_Antisymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.SliceOfN(rapid.Uint32Range(0, 4), 0, 6).Draw(rt, "a")
		b := rapid.SliceOfN(rapid.Uint32Range(0, 4), 0, 6).Draw(rt, "b")

		require.Equal(rt, -OID(a, b), OID(b, a))
		if OID(a, b) == 0 {
			require.True(rt, slices.Equal(a, b))
		}
	})
}

func TestIndexFromStrings_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		owner := rapid.StringN(0, 8, 32).Draw(rt, "owner")
		name := rapid.StringN(0, 8, 32).Draw(rt, "name")

		parts, ok := IndexFromStrings(owner, name).Strings(2)
		require.True(rt, ok)
		require.Equal(rt, []string{owner, name}, parts)
	})
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
