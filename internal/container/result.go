package container

import (
	"errors"
	"fmt"
)

// IndexFailure describes one secondary index that did not apply a chained
// operation. Position is the 1-based place of the index in the chain.
type IndexFailure struct {
	Position int
	Type     string
	Err      error
}

func (f IndexFailure) Error() string {
	return fmt.Sprintf("index %d (%s): %v", f.Position, f.Type, f.Err)
}

func (f IndexFailure) Unwrap() error {
	return f.Err
}

// Result reports the secondary outcome of a chained operation.
type Result struct {
	Failures []IndexFailure
}

// Partial reports whether at least one secondary index failed.
func (r Result) Partial() bool {
	return len(r.Failures) > 0
}

// Err joins every secondary failure, or returns nil when there were none.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Observer receives the outcome of every chained mutation.
type Observer interface {
	ObserveChain(op Op, r Result)
}
