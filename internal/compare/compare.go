// Package compare holds the ordering functions used by containers.
//
// Every function here is a pure total order returning a negative number when
// lhs sorts before rhs, zero when they are equal and a positive number
// otherwise. The N variants compare a bounded prefix and are used for
// "starts with" lookups.
package compare

import (
	"bytes"
	"strings"
)

// Func orders two container items.
type Func func(lhs, rhs any) int

// OID compares two object identifiers element by element.
// When one is a prefix of the other the shorter sorts first.
func OID(lhs, rhs []uint32) int {
	n := min(len(lhs), len(rhs))
	for i := range n {
		switch {
		case lhs[i] < rhs[i]:
			return -1
		case lhs[i] > rhs[i]:
			return 1
		}
	}
	switch {
	case len(lhs) < len(rhs):
		return -1
	case len(lhs) > len(rhs):
		return 1
	}
	return 0
}

// NOID compares at most n sub-identifiers of lhs and rhs.
func NOID(lhs, rhs []uint32, n int) int {
	limit := min(len(lhs), len(rhs))
	if n < limit {
		limit = n
	}
	for i := range limit {
		switch {
		case lhs[i] < rhs[i]:
			return -1
		case lhs[i] > rhs[i]:
			return 1
		}
	}
	if limit != n {
		switch {
		case len(lhs) < len(rhs):
			return -1
		case len(lhs) > len(rhs):
			return 1
		}
	}
	return 0
}

// Strings is the plain lexical string order.
func Strings(lhs, rhs string) int {
	return strings.Compare(lhs, rhs)
}

// NStrings compares lhs against rhs over at most len(rhs) bytes, so it
// returns zero whenever lhs starts with rhs.
func NStrings(lhs, rhs string) int {
	if len(lhs) > len(rhs) {
		lhs = lhs[:len(rhs)]
	}
	return strings.Compare(lhs, rhs)
}

// Mem compares the overlapping span of two byte strings; when the span is
// equal the shorter one sorts first.
func Mem(lhs, rhs []byte) int {
	n := min(len(lhs), len(rhs))
	if rc := bytes.Compare(lhs[:n], rhs[:n]); rc != 0 {
		return rc
	}
	switch {
	case len(lhs) < len(rhs):
		return -1
	case len(lhs) > len(rhs):
		return 1
	}
	return 0
}

// Namer is implemented by items ordered by name.
type Namer interface {
	Name() string
}

// Named orders two Namer items by name. Items that are not Namers, or nil,
// sort as the empty name.
func Named(lhs, rhs any) int {
	return Strings(nameOf(lhs), nameOf(rhs))
}

// NNamed is the prefix form of Named.
func NNamed(lhs, rhs any) int {
	return NStrings(nameOf(lhs), nameOf(rhs))
}

func nameOf(v any) string {
	switch n := v.(type) {
	case Namer:
		return n.Name()
	case string:
		return n
	}
	return ""
}
