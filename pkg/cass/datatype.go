package cass

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

// DataTypeNew implements cass_data_type_new.
func DataTypeNew(t driver.ValueType) argconv.Ptr[DataType] {
	return argconv.ArcInto(driver.Simple(t))
}

// DataTypeNewFromExisting implements cass_data_type_new_from_existing: a
// deep copy owned by the caller.
func DataTypeNewFromExisting(p argconv.Ptr[DataType]) argconv.Ptr[DataType] {
	return argconv.ArcInto(copyDataType(argconv.MustArc(p)))
}

func copyDataType(t *DataType) *DataType {
	out := *t
	out.FieldNames = append([]string(nil), t.FieldNames...)
	out.Sub = make([]*DataType, len(t.Sub))
	for i, s := range t.Sub {
		out.Sub[i] = copyDataType(s)
	}
	return &out
}

// DataTypeFree implements cass_data_type_free.
func DataTypeFree(p argconv.Ptr[DataType]) {
	argconv.ArcFree(p)
}

// DataTypeType implements cass_data_type_type.
func DataTypeType(p argconv.Ptr[DataType]) driver.ValueType {
	return argconv.MustArc(p).Type
}

// DataTypeIsFrozen implements cass_data_type_is_frozen.
func DataTypeIsFrozen(p argconv.Ptr[DataType]) bool {
	return argconv.MustArc(p).Frozen
}

// DataTypeSubTypeCount implements cass_data_type_sub_type_count.
func DataTypeSubTypeCount(p argconv.Ptr[DataType]) int {
	return len(argconv.MustArc(p).Sub)
}

// DataTypeSubDataType implements cass_data_type_sub_data_type. The sub
// type is borrowed from p.
func DataTypeSubDataType(p argconv.Ptr[DataType], index int) argconv.Ptr[DataType] {
	return argconv.ArcBorrow(p.Addr(), argconv.MustArc(p).SubType(index))
}

// DataTypeSubDataTypeByName implements cass_data_type_sub_data_type_by_name.
func DataTypeSubDataTypeByName(p argconv.Ptr[DataType], name string) argconv.Ptr[DataType] {
	t := argconv.MustArc(p)
	if t.Type != driver.TypeUDT {
		return argconv.Null[DataType]()
	}
	sub, _ := t.FieldType(name)
	return argconv.ArcBorrow(p.Addr(), sub)
}

// DataTypeTypeName implements cass_data_type_type_name.
func DataTypeTypeName(p argconv.Ptr[DataType]) (string, casserr.Code) {
	t := argconv.MustArc(p)
	if t.Type != driver.TypeUDT {
		return "", casserr.LibInvalidValueType
	}
	return t.Name, casserr.OK
}

// DataTypeKeyspace implements cass_data_type_keyspace.
func DataTypeKeyspace(p argconv.Ptr[DataType]) (string, casserr.Code) {
	t := argconv.MustArc(p)
	if t.Type != driver.TypeUDT {
		return "", casserr.LibInvalidValueType
	}
	return t.Keyspace, casserr.OK
}

// DataTypeClassName implements cass_data_type_class_name.
func DataTypeClassName(p argconv.Ptr[DataType]) (string, casserr.Code) {
	t := argconv.MustArc(p)
	if t.Type != driver.TypeCustom {
		return "", casserr.LibInvalidValueType
	}
	return t.Custom, casserr.OK
}
