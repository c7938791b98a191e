// Package exprtable keeps the rows of the DISMAN expression table in a
// container chosen by name from the factory registry.
//
// Rows are indexed by (owner, name). The primary container orders them by
// row index for GETNEXT walks; a secondary index orders them by name then
// owner. Both live in one chain, so Add, SetStatus(destroy) and Close keep
// them in step.
package exprtable
