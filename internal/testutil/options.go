package testutil

import "github.com/zjrosen/mibstore/internal/exprtable"

// RowOption configures a row during builder setup.
type RowOption func(*exprtable.Row)

// Expression sets expExpression.
func Expression(expr string) RowOption {
	return func(r *exprtable.Row) { r.Expression = expr }
}

// ValueType sets expExpressionValueType.
func ValueType(v exprtable.ValueType) RowOption {
	return func(r *exprtable.Row) { r.ValueType = v }
}

// Comment sets expExpressionComment.
func Comment(comment string) RowOption {
	return func(r *exprtable.Row) { r.Comment = comment }
}

// Delta sets expExpressionDeltaInterval.
func Delta(seconds int32) RowOption {
	return func(r *exprtable.Row) { r.DeltaInterval = seconds }
}

// Prefix sets expExpressionPrefix.
func Prefix(oid ...uint32) RowOption {
	return func(r *exprtable.Row) { r.Prefix = oid }
}

// Errors sets expExpressionErrors.
func Errors(n uint32) RowOption {
	return func(r *exprtable.Row) { r.Errors = n }
}

// Status sets expExpressionStatus.
func Status(s exprtable.RowStatus) RowOption {
	return func(r *exprtable.Row) { r.Status = s }
}

// Storage sets the row's storage type.
func Storage(s exprtable.StorageType) RowOption {
	return func(r *exprtable.Row) { r.Storage = s }
}
