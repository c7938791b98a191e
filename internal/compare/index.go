package compare

// Index is a table row index expressed as an object identifier suffix.
type Index struct {
	OIDs []uint32
}

// Indexer is implemented by items that carry a row index.
type Indexer interface {
	RowIndex() Index
}

// CompareIndex orders two indexes by OID.
func CompareIndex(lhs, rhs Index) int {
	return OID(lhs.OIDs, rhs.OIDs)
}

// NCompareIndex compares lhs with rhs over the length of rhs, so an index
// that extends rhs compares equal.
func NCompareIndex(lhs, rhs Index) int {
	return NOID(lhs.OIDs, rhs.OIDs, len(rhs.OIDs))
}

// IndexFromStrings encodes each octet string as its length followed by one
// sub-identifier per byte, the usual encoding of variable length string
// index columns.
func IndexFromStrings(parts ...string) Index {
	n := 0
	for _, p := range parts {
		n += 1 + len(p)
	}
	oids := make([]uint32, 0, n)
	for _, p := range parts {
		oids = append(oids, uint32(len(p)))
		for i := 0; i < len(p); i++ {
			oids = append(oids, uint32(p[i]))
		}
	}
	return Index{OIDs: oids}
}

// Strings decodes an index built by IndexFromStrings. The second return is
// false when the OIDs do not form count length-prefixed strings of bytes.
func (idx Index) Strings(count int) ([]string, bool) {
	out := make([]string, 0, count)
	oids := idx.OIDs
	for range count {
		if len(oids) == 0 {
			return nil, false
		}
		l := int(oids[0])
		oids = oids[1:]
		if l > len(oids) {
			return nil, false
		}
		b := make([]byte, l)
		for i := range l {
			if oids[i] > 0xff {
				return nil, false
			}
			b[i] = byte(oids[i])
		}
		out = append(out, string(b))
		oids = oids[l:]
	}
	if len(oids) != 0 {
		return nil, false
	}
	return out, true
}
