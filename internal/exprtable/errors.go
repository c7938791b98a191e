package exprtable

import (
	"errors"
	"fmt"
)

// ErrorStatus is an SNMP PDU error-status value.
type ErrorStatus int

const (
	NoSuchName        ErrorStatus = 2
	WrongType         ErrorStatus = 7
	WrongValue        ErrorStatus = 10
	InconsistentValue ErrorStatus = 12
	NotWritable       ErrorStatus = 17
	InconsistentName  ErrorStatus = 18
)

func (s ErrorStatus) String() string {
	switch s {
	case NoSuchName:
		return "noSuchName"
	case WrongType:
		return "wrongType"
	case WrongValue:
		return "wrongValue"
	case InconsistentValue:
		return "inconsistentValue"
	case NotWritable:
		return "notWritable"
	case InconsistentName:
		return "inconsistentName"
	default:
		return fmt.Sprintf("ErrorStatus(%d)", int(s))
	}
}

// StatusError is returned by set operations that an agent would answer
// with an error-status.
type StatusError struct {
	Status ErrorStatus
	Owner  string
	Name   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("expression %q/%q: %s", e.Owner, e.Name, e.Status)
}

// Is matches any StatusError carrying the same status, so the Err values
// below work with errors.Is.
func (e *StatusError) Is(target error) bool {
	var t *StatusError
	if !errors.As(target, &t) {
		return false
	}
	return t.Status == e.Status
}

// Status errors for errors.Is.
var (
	ErrNoSuchName        = &StatusError{Status: NoSuchName}
	ErrWrongType         = &StatusError{Status: WrongType}
	ErrWrongValue        = &StatusError{Status: WrongValue}
	ErrInconsistentValue = &StatusError{Status: InconsistentValue}
	ErrNotWritable       = &StatusError{Status: NotWritable}
	ErrInconsistentName  = &StatusError{Status: InconsistentName}
)

// ErrClosed is returned by operations on a closed table.
var ErrClosed = errors.New("expression table closed")

// StatusOf returns the error-status carried by err, or 0.
func StatusOf(err error) ErrorStatus {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func statusErr(s ErrorStatus, owner, name string) error {
	return &StatusError{Status: s, Owner: owner, Name: name}
}
