package container

import "github.com/zjrosen/mibstore/internal/log"

// Factory produces initialised containers of one backend type.
type Factory interface {
	// Name is the backend type the factory produces, e.g. "binary_array".
	Name() string
	// Product describes what the produced container is for.
	Product() string
	// Produce returns a new container, or nil when production failed.
	Produce() *Container
	// ProduceInto initialises caller-owned memory. dst must be the zero
	// value or a freed container.
	ProduceInto(dst *Container) error
}

type storeFactory struct {
	name     string
	product  string
	newStore func() Store
}

// FactoryFunc builds a Factory producing containers around the stores
// returned by newStore.
func FactoryFunc(name, product string, newStore func() Store) Factory {
	return &storeFactory{name: name, product: product, newStore: newStore}
}

func (f *storeFactory) Name() string { return f.name }
func (f *storeFactory) Product() string { return f.product }

func (f *storeFactory) Produce() *Container {
	c := &Container{}
	if err := f.ProduceInto(c); err != nil {
		log.ErrorErr(log.CatContainer, "Produce failed", err, "type", f.name)
		return nil
	}
	return c
}

func (f *storeFactory) ProduceInto(dst *Container) error {
	if dst == nil {
		return ErrNilContainer
	}
	if dst.store != nil && !dst.freed {
		return ErrBadDestination
	}
	var s Store
	if f.newStore != nil {
		s = f.newStore()
	}
	if s == nil {
		return &OpError{Op: OpInit, Type: f.name, Err: ErrNoStore}
	}
	*dst = Container{typ: f.name, store: s}
	return dst.Init()
}
