package driver

import (
	"fmt"
)

// Duration is a CQL duration.
type Duration struct {
	Months      int32
	Days        int32
	Nanoseconds int64
}

// Value is a decoded CQL value.
//
// Scalar holds the Go representation of simple types: int8, int16, int32,
// int64 (bigint, counter, timestamp in milliseconds since the epoch, time in
// nanoseconds since midnight), float32, float64, bool, string, []byte,
// uuid.UUID, net.IP, uint32 (date, days since the epoch centered on 2^31),
// decimal.Decimal, *big.Int and Duration.
type Value struct {
	Type   *DataType
	Null   bool
	Scalar any

	// Items holds list and set elements, tuple elements and UDT fields in
	// the order of Type.FieldNames.
	Items []*Value

	// Pairs holds map entries.
	Pairs []Pair
}

// Pair is a map entry.
type Pair struct {
	Key *Value
	Val *Value
}

// NullOf returns a null value of type t.
func NullOf(t *DataType) *Value { return &Value{Type: t, Null: true} }

// ScalarOf returns a non-null simple value.
func ScalarOf(t ValueType, v any) *Value { return &Value{Type: Simple(t), Scalar: v} }

// Count returns the number of items of a collection, tuple or UDT.
func (v *Value) Count() int {
	if v == nil || v.Null {
		return 0
	}
	if v.Type != nil && v.Type.Type == TypeMap {
		return len(v.Pairs)
	}
	return len(v.Items)
}

// ValueType returns the type code of v.
func (v *Value) ValueType() ValueType {
	if v == nil || v.Type == nil {
		return TypeUnknown
	}
	return v.Type.Type
}

func (v *Value) String() string {
	if v == nil || v.Null {
		return "null"
	}
	switch v.ValueType() {
	case TypeList, TypeSet, TypeTuple:
		return fmt.Sprintf("%v", v.Items)
	case TypeMap:
		return fmt.Sprintf("%v", v.Pairs)
	case TypeUDT:
		s := "{"
		for i, it := range v.Items {
			if i > 0 {
				s += ", "
			}
			name := ""
			if i < len(v.Type.FieldNames) {
				name = v.Type.FieldNames[i]
			}
			s += name + ": " + it.String()
		}
		return s + "}"
	case TypeBlob:
		return fmt.Sprintf("0x%x", v.Scalar)
	default:
		return fmt.Sprint(v.Scalar)
	}
}

// Row is one row of a result.
type Row struct {
	Values []*Value
}

// ColumnSpec describes a result column.
type ColumnSpec struct {
	Keyspace string
	Table    string
	Name     string
	Type     *DataType
}

// Result is one page of a query result.
type Result struct {
	Columns     []ColumnSpec
	Rows        []*Row
	PagingState []byte
	TracingID   []byte
}

// ColumnIndex returns the index of the named column or -1.
func (r *Result) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
