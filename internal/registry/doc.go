// Package registry maps names to container factories.
//
// A Registry is an explicit context object: construct one with New, call
// Init once at startup and Clear once at shutdown. Init registers the
// built-in backends (binary_array, sorted_singly_linked_list, fifo, lifo,
// null) and their aliases. The catalog of registered factories is itself a
// container produced by the binary array backend and ordered by name.
//
// Containers are requested either by a single name (Get, GetInto) or by a
// colon separated preference list such as "table_container:binary_array"
// (Find, FindInto), where the first registered name wins. Resolved lists are
// memoised until the next registration change.
//
// The registry takes no locks; all calls must come from one goroutine.
package registry
