// Package binarray is the sorted array container backend.
package binarray

import (
	"slices"

	"github.com/zjrosen/mibstore/internal/container"
)

// Name is the factory name of the backend.
const Name = "binary_array"

// Array keeps items in a slice sorted by the container comparator and finds
// them by binary search. Duplicates are rejected.
type Array struct {
	cmp   container.Comparer
	items []any
}

// New returns an empty, uninitialised array store.
func New() *Array {
	return &Array{}
}

// Factory produces binary array containers.
func Factory() container.Factory {
	return container.FactoryFunc(Name, "table", func() container.Store { return New() })
}

func (a *Array) Init(cmp container.Comparer) error {
	if cmp == nil {
		return container.ErrNoComparator
	}
	a.cmp = cmp
	a.items = nil
	return nil
}

func (a *Array) Free() error {
	a.items = nil
	return nil
}

func (a *Array) Size() int {
	return len(a.items)
}

func (a *Array) Insert(item any) error {
	i, found := a.search(item)
	if found {
		return container.ErrDuplicate
	}
	a.items = slices.Insert(a.items, i, item)
	return nil
}

func (a *Array) Remove(key any) error {
	i, found := a.search(key)
	if !found {
		return container.ErrNotFound
	}
	a.items = slices.Delete(a.items, i, i+1)
	return nil
}

func (a *Array) Find(key any) (any, bool) {
	i, found := a.search(key)
	if !found {
		return nil, false
	}
	return a.items[i], true
}

// FindNext returns the first item ordered strictly after key.
func (a *Array) FindNext(key any) (any, bool) {
	i, found := a.search(key)
	if found {
		i++
	}
	if i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

func (a *Array) ForEach(fn container.Visitor) {
	for _, item := range slices.Clone(a.items) {
		fn(item)
	}
}

func (a *Array) search(key any) (int, bool) {
	if a.cmp == nil {
		return 0, false
	}
	return slices.BinarySearchFunc(a.items, key, a.cmp.Compare)
}
