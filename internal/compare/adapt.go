package compare

// OIDFunc adapts OID to items of type []uint32.
func OIDFunc(lhs, rhs any) int {
	l, _ := lhs.([]uint32)
	r, _ := rhs.([]uint32)
	return OID(l, r)
}

// IndexFunc orders items by their row index. Items may be Index values or
// implement Indexer; anything else sorts as the empty index.
func IndexFunc(lhs, rhs any) int {
	return CompareIndex(indexOf(lhs), indexOf(rhs))
}

// NIndexFunc is the prefix form of IndexFunc.
func NIndexFunc(lhs, rhs any) int {
	return NCompareIndex(indexOf(lhs), indexOf(rhs))
}

// StringFunc adapts Strings to string items.
func StringFunc(lhs, rhs any) int {
	l, _ := lhs.(string)
	r, _ := rhs.(string)
	return Strings(l, r)
}

// MemFunc adapts Mem to []byte items.
func MemFunc(lhs, rhs any) int {
	l, _ := lhs.([]byte)
	r, _ := rhs.([]byte)
	return Mem(l, r)
}

func indexOf(v any) Index {
	switch x := v.(type) {
	case Index:
		return x
	case *Index:
		if x != nil {
			return *x
		}
	case Indexer:
		return x.RowIndex()
	}
	return Index{}
}
