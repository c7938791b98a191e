// Package null is a container backend that stores nothing.
package null

import "github.com/zjrosen/mibstore/internal/container"

// Name is the factory name of the backend.
const Name = "null"

// Sink accepts every mutation and discards it.
type Sink struct{}

// New returns a sink store.
func New() *Sink {
	return &Sink{}
}

// Factory produces null containers.
func Factory() container.Factory {
	return container.FactoryFunc(Name, "null", func() container.Store { return New() })
}

func (*Sink) Init(container.Comparer) error { return nil }
func (*Sink) Free() error { return nil }
func (*Sink) Size() int { return 0 }
func (*Sink) Insert(any) error { return nil }
func (*Sink) Remove(any) error { return nil }
func (*Sink) Find(any) (any, bool) { return nil, false }
func (*Sink) ForEach(container.Visitor) {}
func (*Sink) Unordered() {}
