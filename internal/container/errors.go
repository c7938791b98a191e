package container

import (
	"errors"
	"fmt"
)

// Container errors
var (
	ErrDuplicate       = errors.New("item already present")
	ErrNotFound        = errors.New("item not found")
	ErrNotInitialised  = errors.New("container not initialised")
	ErrFreed           = errors.New("container already freed")
	ErrNilContainer    = errors.New("container cannot be nil")
	ErrSelfIndex       = errors.New("container cannot index itself")
	ErrAlreadyChained  = errors.New("container already part of an index chain")
	ErrNoComparator    = errors.New("container has no comparator")
	ErrFactoryNotFound = errors.New("factory not found")
	ErrBadDestination  = errors.New("destination holds a live container")
	ErrNoStore         = errors.New("factory produced no store")
)

// Op names a container operation.
type Op string

const (
	OpInit   Op = "init"
	OpInsert Op = "insert"
	OpRemove Op = "remove"
	OpFind   Op = "find"
	OpFree   Op = "free"
)

// OpError records a backend failure together with the operation and the
// container type it happened in.
type OpError struct {
	Op   Op
	Type string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Type, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
