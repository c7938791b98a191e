package exprtable

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zjrosen/mibstore/internal/compare"
)

// ValueType is the expExpressionValueType of a row.
type ValueType int

const (
	Counter32   ValueType = 1
	Unsigned32  ValueType = 2
	TimeTicks   ValueType = 3
	Integer32   ValueType = 4
	IPAddress   ValueType = 5
	OctetString ValueType = 6
	ObjectID    ValueType = 7
	Counter64   ValueType = 8
)

var valueTypeNames = map[ValueType]string{
	Counter32:   "counter32",
	Unsigned32:  "unsigned32",
	TimeTicks:   "timeTicks",
	Integer32:   "integer32",
	IPAddress:   "ipAddress",
	OctetString: "octetString",
	ObjectID:    "objectId",
	Counter64:   "counter64",
}

func (v ValueType) String() string {
	if s, ok := valueTypeNames[v]; ok {
		return s
	}
	return fmt.Sprintf("ValueType(%d)", int(v))
}

// Valid reports whether v is one of the defined value types.
func (v ValueType) Valid() bool {
	_, ok := valueTypeNames[v]
	return ok
}

// ParseValueType accepts a value type name (case-insensitive) or its number.
func ParseValueType(s string) (ValueType, error) {
	for v, name := range valueTypeNames {
		if strings.EqualFold(s, name) {
			return v, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && ValueType(n).Valid() {
		return ValueType(n), nil
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

// RowStatus is the SNMPv2 RowStatus textual convention.
type RowStatus int

const (
	Active        RowStatus = 1
	NotInService  RowStatus = 2
	NotReady      RowStatus = 3
	CreateAndGo   RowStatus = 4
	CreateAndWait RowStatus = 5
	Destroy       RowStatus = 6
)

func (s RowStatus) String() string {
	switch s {
	case Active:
		return "active"
	case NotInService:
		return "notInService"
	case NotReady:
		return "notReady"
	case CreateAndGo:
		return "createAndGo"
	case CreateAndWait:
		return "createAndWait"
	case Destroy:
		return "destroy"
	default:
		return fmt.Sprintf("RowStatus(%d)", int(s))
	}
}

// ParseRowStatus accepts a status name (case-insensitive) or its number.
func ParseRowStatus(s string) (RowStatus, error) {
	for v := Active; v <= Destroy; v++ {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= int(Active) && n <= int(Destroy) {
		return RowStatus(n), nil
	}
	return 0, fmt.Errorf("unknown row status %q", s)
}

// stored reports whether s is a state a row can rest in.
func (s RowStatus) stored() bool {
	return s == Active || s == NotInService || s == NotReady
}

// StorageType is the StorageType textual convention.
type StorageType int

const (
	StorageOther       StorageType = 1
	StorageVolatile    StorageType = 2
	StorageNonVolatile StorageType = 3
	StoragePermanent   StorageType = 4
	StorageReadOnly    StorageType = 5
)

func (s StorageType) String() string {
	switch s {
	case StorageOther:
		return "other"
	case StorageVolatile:
		return "volatile"
	case StorageNonVolatile:
		return "nonVolatile"
	case StoragePermanent:
		return "permanent"
	case StorageReadOnly:
		return "readOnly"
	default:
		return fmt.Sprintf("StorageType(%d)", int(s))
	}
}

// Row is one expExpressionEntry.
type Row struct {
	Owner         string
	Name          string
	Expression    string
	ValueType     ValueType
	Comment       string
	DeltaInterval int32
	Prefix        []uint32
	Errors        uint32
	Status        RowStatus
	Storage       StorageType
}

// NewRow returns a row with the defaults of a freshly created entry.
func NewRow(owner, name string) *Row {
	return &Row{
		Owner:     owner,
		Name:      name,
		ValueType: Counter32,
		Prefix:    []uint32{0, 0},
		Storage:   StorageNonVolatile,
	}
}

// RowIndex returns the table index of the row.
func (r *Row) RowIndex() compare.Index {
	return compare.IndexFromStrings(r.Owner, r.Name)
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	c := *r
	c.Prefix = slices.Clone(r.Prefix)
	return &c
}

// FormatOID renders an OID in dotted form with a leading dot.
func FormatOID(oid []uint32) string {
	var sb strings.Builder
	for _, sub := range oid {
		fmt.Fprintf(&sb, ".%d", sub)
	}
	return sb.String()
}
