package driver

import (
	"fmt"
	"strings"
)

// ValueType is a CQL type code, numbered like CassValueType.
type ValueType uint16

const (
	TypeCustom    ValueType = 0x0000
	TypeASCII     ValueType = 0x0001
	TypeBigint    ValueType = 0x0002
	TypeBlob      ValueType = 0x0003
	TypeBoolean   ValueType = 0x0004
	TypeCounter   ValueType = 0x0005
	TypeDecimal   ValueType = 0x0006
	TypeDouble    ValueType = 0x0007
	TypeFloat     ValueType = 0x0008
	TypeInt       ValueType = 0x0009
	TypeText      ValueType = 0x000A
	TypeTimestamp ValueType = 0x000B
	TypeUUID      ValueType = 0x000C
	TypeVarchar   ValueType = 0x000D
	TypeVarint    ValueType = 0x000E
	TypeTimeUUID  ValueType = 0x000F
	TypeInet      ValueType = 0x0010
	TypeDate      ValueType = 0x0011
	TypeTime      ValueType = 0x0012
	TypeSmallInt  ValueType = 0x0013
	TypeTinyInt   ValueType = 0x0014
	TypeDuration  ValueType = 0x0015
	TypeList      ValueType = 0x0020
	TypeMap       ValueType = 0x0021
	TypeSet       ValueType = 0x0022
	TypeUDT       ValueType = 0x0030
	TypeTuple     ValueType = 0x0031
	TypeUnknown   ValueType = 0xFFFF
)

var typeNames = map[ValueType]string{
	TypeCustom:    "custom",
	TypeASCII:     "ascii",
	TypeBigint:    "bigint",
	TypeBlob:      "blob",
	TypeBoolean:   "boolean",
	TypeCounter:   "counter",
	TypeDecimal:   "decimal",
	TypeDouble:    "double",
	TypeFloat:     "float",
	TypeInt:       "int",
	TypeText:      "text",
	TypeTimestamp: "timestamp",
	TypeUUID:      "uuid",
	TypeVarchar:   "varchar",
	TypeVarint:    "varint",
	TypeTimeUUID:  "timeuuid",
	TypeInet:      "inet",
	TypeDate:      "date",
	TypeTime:      "time",
	TypeSmallInt:  "smallint",
	TypeTinyInt:   "tinyint",
	TypeDuration:  "duration",
	TypeList:      "list",
	TypeMap:       "map",
	TypeSet:       "set",
	TypeUDT:       "udt",
	TypeTuple:     "tuple",
}

func (t ValueType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// IsCollection reports whether t is a list, set or map.
func (t ValueType) IsCollection() bool {
	return t == TypeList || t == TypeSet || t == TypeMap
}

// DataType describes a CQL type, possibly nested.
type DataType struct {
	Type ValueType

	// Sub holds the element type of lists and sets, key and value of maps,
	// the element types of tuples and the field types of UDTs.
	Sub []*DataType

	// UDT only.
	Keyspace   string
	Name       string
	FieldNames []string

	Frozen bool
	Custom string
}

// Simple returns a DataType without sub types.
func Simple(t ValueType) *DataType { return &DataType{Type: t} }

// ListOf returns list<elem>.
func ListOf(elem *DataType) *DataType { return &DataType{Type: TypeList, Sub: []*DataType{elem}} }

// SetOf returns set<elem>.
func SetOf(elem *DataType) *DataType { return &DataType{Type: TypeSet, Sub: []*DataType{elem}} }

// MapOf returns map<key, val>.
func MapOf(key, val *DataType) *DataType {
	return &DataType{Type: TypeMap, Sub: []*DataType{key, val}}
}

// TupleOf returns tuple<elems...>.
func TupleOf(elems ...*DataType) *DataType { return &DataType{Type: TypeTuple, Sub: elems} }

// SubType returns the i-th sub type or nil.
func (d *DataType) SubType(i int) *DataType {
	if d == nil || i < 0 || i >= len(d.Sub) {
		return nil
	}
	return d.Sub[i]
}

// FieldType returns the type of a UDT field by name.
func (d *DataType) FieldType(name string) (*DataType, bool) {
	for i, n := range d.FieldNames {
		if n == name && i < len(d.Sub) {
			return d.Sub[i], true
		}
	}
	return nil, false
}

func (d *DataType) String() string {
	if d == nil {
		return "unknown"
	}
	var s string
	switch d.Type {
	case TypeList, TypeSet, TypeMap, TypeTuple:
		parts := make([]string, 0, len(d.Sub))
		for _, sub := range d.Sub {
			parts = append(parts, sub.String())
		}
		s = fmt.Sprintf("%s<%s>", d.Type, strings.Join(parts, ", "))
	case TypeUDT:
		s = d.Name
		if d.Keyspace != "" {
			s = d.Keyspace + "." + d.Name
		}
	case TypeCustom:
		s = fmt.Sprintf("'%s'", d.Custom)
	default:
		s = d.Type.String()
	}
	if d.Frozen {
		return "frozen<" + s + ">"
	}
	return s
}
