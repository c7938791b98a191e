package exprtable

import (
	"github.com/zjrosen/mibstore/internal/log"
)

// MaxDeltaInterval is the upper bound of expExpressionDeltaInterval.
const MaxDeltaInterval = 86400

// SetStatus applies a RowStatus write to the row (owner, name).
//
// createAndGo and createAndWait create the row with default columns and
// leave it active or notInService. destroy removes it; destroying an absent
// row succeeds. An active row only accepts destroy.
func (t *Table) SetStatus(owner, name string, v RowStatus) error {
	if t.closed {
		return ErrClosed
	}
	if v < Active || v > Destroy || v == NotReady {
		return statusErr(InconsistentValue, owner, name)
	}

	row, ok := t.Get(owner, name)
	if !ok {
		switch v {
		case Active, NotInService:
			return statusErr(InconsistentValue, owner, name)
		case Destroy:
			return nil
		}
		if name == "" {
			return statusErr(InconsistentName, owner, name)
		}
		row = NewRow(owner, name)
		row.Status = Active
		if v == CreateAndWait {
			row.Status = NotInService
		}
		if _, err := t.Add(row); err != nil {
			return err
		}
		log.Info(log.CatTable, "Row created", "owner", owner, "name", name, "status", row.Status.String())
		return nil
	}

	if v == CreateAndGo || v == CreateAndWait {
		return statusErr(InconsistentValue, owner, name)
	}
	if row.Status == Active && v != Destroy {
		return statusErr(InconsistentValue, owner, name)
	}
	if row.Storage != StorageNonVolatile {
		return statusErr(NotWritable, owner, name)
	}

	if v == Destroy {
		if _, err := t.remove(row); err != nil {
			return err
		}
		log.Info(log.CatTable, "Row destroyed", "owner", owner, "name", name)
		return nil
	}
	row.Status = v
	log.Debug(log.CatTable, "Row status set", "owner", owner, "name", name, "status", v.String())
	return nil
}

// SetExpression writes expExpression.
func (t *Table) SetExpression(owner, name, expr string) error {
	row, err := t.writable(owner, name)
	if err != nil {
		return err
	}
	row.Expression = expr
	return nil
}

// SetComment writes expExpressionComment.
func (t *Table) SetComment(owner, name, comment string) error {
	row, err := t.writable(owner, name)
	if err != nil {
		return err
	}
	row.Comment = comment
	return nil
}

// SetValueType writes expExpressionValueType.
func (t *Table) SetValueType(owner, name string, v ValueType) error {
	row, err := t.writable(owner, name)
	if err != nil {
		return err
	}
	if !v.Valid() {
		return statusErr(WrongValue, owner, name)
	}
	row.ValueType = v
	return nil
}

// SetDeltaInterval writes expExpressionDeltaInterval in seconds.
func (t *Table) SetDeltaInterval(owner, name string, seconds int32) error {
	row, err := t.writable(owner, name)
	if err != nil {
		return err
	}
	if seconds < 0 || seconds > MaxDeltaInterval {
		return statusErr(WrongValue, owner, name)
	}
	row.DeltaInterval = seconds
	return nil
}

func (t *Table) writable(owner, name string) (*Row, error) {
	if t.closed {
		return nil, ErrClosed
	}
	row, ok := t.Get(owner, name)
	if !ok {
		return nil, statusErr(NoSuchName, owner, name)
	}
	if row.Storage != StorageNonVolatile {
		return nil, statusErr(NotWritable, owner, name)
	}
	return row, nil
}
