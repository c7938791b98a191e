// Package container implements the pluggable container framework.
//
// A Container is a handle around one Store, the operation set of a concrete
// backend (sorted array, sorted list, null sink and so on), plus the active
// comparator and an ordered chain of secondary index containers. Mutations
// through the handle are chained: an insert lands in the primary and then in
// every secondary, a remove or free walks the secondaries from the tail back
// to the head before touching the primary.
//
// # Failure model
//
// The primary store is canonical. A failed primary insert stops the chain and
// is returned as the error. Secondary failures never abort the operation;
// they are logged, reported to the Observer and returned in Result so the
// caller can decide whether the views need repair.
//
// # Factories
//
// A Factory produces initialised containers of one backend type, either as
// a new allocation (Produce) or into caller-owned memory (ProduceInto), which
// lets a Container be embedded by value in a larger struct. Factories are
// usually looked up by name through the registry package.
//
// Containers are not safe for concurrent mutation.
package container
