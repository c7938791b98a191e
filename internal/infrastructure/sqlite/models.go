package sqlite

import (
	"time"

	"github.com/zjrosen/mibstore/internal/exprtable"
)

// ExpressionModel is the database row for the expressions table.
type ExpressionModel struct {
	ID            int64
	GUID          string
	Owner         []byte
	Name          []byte
	Expression    string
	ValueType     int
	Comment       string
	DeltaInterval int64
	Prefix        string
	Errors        int64
	Status        int
	Storage       int
	UpdatedAt     int64 // Unix timestamp
}

func toExpressionModel(row *exprtable.Row, now time.Time) *ExpressionModel {
	return &ExpressionModel{
		Owner:         blob(row.Owner),
		Name:          blob(row.Name),
		Expression:    row.Expression,
		ValueType:     int(row.ValueType),
		Comment:       row.Comment,
		DeltaInterval: int64(row.DeltaInterval),
		Prefix:        exprtable.FormatOID(row.Prefix),
		Errors:        int64(row.Errors),
		Status:        int(row.Status),
		Storage:       int(row.Storage),
		UpdatedAt:     now.Unix(),
	}
}

func (m *ExpressionModel) toRow() (*exprtable.Row, error) {
	prefix, err := exprtable.ParseOID(m.Prefix)
	if err != nil {
		return nil, err
	}
	return &exprtable.Row{
		Owner:         string(m.Owner),
		Name:          string(m.Name),
		Expression:    m.Expression,
		ValueType:     exprtable.ValueType(m.ValueType),
		Comment:       m.Comment,
		DeltaInterval: int32(m.DeltaInterval),
		Prefix:        prefix,
		Errors:        uint32(m.Errors),
		Status:        exprtable.RowStatus(m.Status),
		Storage:       exprtable.StorageType(m.Storage),
	}, nil
}
