package cass

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

// IteratorType is a CassIteratorType.
type IteratorType int

const (
	IteratorTypeResult IteratorType = iota
	IteratorTypeRow
	IteratorTypeCollection
	IteratorTypeMap
	IteratorTypeTuple
	IteratorTypeUserTypeField
	IteratorTypeMetaField
	IteratorTypeKeyspaceMeta
	IteratorTypeTableMeta
	IteratorTypeTypeMeta
	IteratorTypeFunctionMeta
	IteratorTypeAggregateMeta
	IteratorTypeColumnMeta
	IteratorTypeIndexMeta
	IteratorTypeMaterializedViewMeta
)

type iterKind uint8

const (
	iterResult iterKind = iota
	iterRow
	iterCollection
	iterTuple
	iterMap
	iterUserTypeFields
	iterSchemaKeyspaces
	iterKeyspaceTables
	iterKeyspaceViews
	iterKeyspaceUserTypes
	iterTableColumns
	iterTableViews
	iterViewColumns
)

var iterTypes = map[iterKind]IteratorType{
	iterResult:            IteratorTypeResult,
	iterRow:               IteratorTypeRow,
	iterCollection:        IteratorTypeCollection,
	iterTuple:             IteratorTypeTuple,
	iterMap:               IteratorTypeMap,
	iterUserTypeFields:    IteratorTypeUserTypeField,
	iterSchemaKeyspaces:   IteratorTypeKeyspaceMeta,
	iterKeyspaceTables:    IteratorTypeTableMeta,
	iterKeyspaceViews:     IteratorTypeMaterializedViewMeta,
	iterKeyspaceUserTypes: IteratorTypeTypeMeta,
	iterTableColumns:      IteratorTypeColumnMeta,
	iterTableViews:        IteratorTypeMaterializedViewMeta,
	iterViewColumns:       IteratorTypeColumnMeta,
}

// Iterator is a CassIterator. It starts before the first item. Next moves
// it to the next item and, after the last one, to the end where it stays.
type Iterator struct {
	kind iterKind

	// parent is the address items are borrowed from.
	parent uintptr
	count  int

	// pos is -1 before the first item and count at the end.
	pos int

	result   *Result
	row      *Row
	value    *Value
	schema   *driver.Schema
	keyspace *KeyspaceMeta
	table    *TableMeta
}

func newIterator(it *Iterator) argconv.Ptr[Iterator] {
	it.pos = -1
	return argconv.BoxInto(it)
}

// IteratorFree implements cass_iterator_free.
func IteratorFree(p argconv.Ptr[Iterator]) {
	argconv.BoxFree(p)
}

// IteratorTypeOf implements cass_iterator_type.
func IteratorTypeOf(p argconv.Ptr[Iterator]) IteratorType {
	return iterTypes[argconv.MustBox(p).kind]
}

// IteratorNext implements cass_iterator_next.
func IteratorNext(p argconv.Ptr[Iterator]) bool {
	it := argconv.MustBox(p)
	if it.pos >= it.count {
		return false
	}
	it.pos++
	return it.pos < it.count
}

// at returns the current position when the iterator is of one of kinds and on an
// item.
func (it *Iterator) at(kinds ...iterKind) (int, bool) {
	if it.pos < 0 || it.pos >= it.count {
		return 0, false
	}
	for _, k := range kinds {
		if it.kind == k {
			return it.pos, true
		}
	}
	return 0, false
}

// IteratorFromResult implements cass_iterator_from_result.
func IteratorFromResult(p argconv.Ptr[Result]) argconv.Ptr[Iterator] {
	res := argconv.MustArc(p)
	return newIterator(&Iterator{kind: iterResult, parent: p.Addr(), count: len(res.Rows), result: res})
}

// IteratorFromRow implements cass_iterator_from_row.
func IteratorFromRow(p argconv.Ptr[Row]) argconv.Ptr[Iterator] {
	row := argconv.MustRef(p)
	return newIterator(&Iterator{kind: iterRow, parent: p.Addr(), count: len(row.Values), row: row})
}

func valueIterator(p argconv.Ptr[Value], kind iterKind, types ...driver.ValueType) argconv.Ptr[Iterator] {
	v := argconv.MustRef(p)
	for _, t := range types {
		if v.ValueType() == t {
			return newIterator(&Iterator{kind: kind, parent: p.Addr(), count: v.Count(), value: v})
		}
	}
	return argconv.Null[Iterator]()
}

// IteratorFromCollection implements cass_iterator_from_collection. It is
// null for values that are not lists or sets.
func IteratorFromCollection(p argconv.Ptr[Value]) argconv.Ptr[Iterator] {
	return valueIterator(p, iterCollection, driver.TypeList, driver.TypeSet)
}

// IteratorFromTuple implements cass_iterator_from_tuple.
func IteratorFromTuple(p argconv.Ptr[Value]) argconv.Ptr[Iterator] {
	return valueIterator(p, iterTuple, driver.TypeTuple)
}

// IteratorFromMap implements cass_iterator_from_map.
func IteratorFromMap(p argconv.Ptr[Value]) argconv.Ptr[Iterator] {
	return valueIterator(p, iterMap, driver.TypeMap)
}

// IteratorFieldsFromUserType implements cass_iterator_fields_from_user_type.
func IteratorFieldsFromUserType(p argconv.Ptr[Value]) argconv.Ptr[Iterator] {
	return valueIterator(p, iterUserTypeFields, driver.TypeUDT)
}

// IteratorKeyspacesFromSchemaMeta implements cass_iterator_keyspaces_from_schema_meta.
func IteratorKeyspacesFromSchemaMeta(p argconv.Ptr[SchemaMeta]) argconv.Ptr[Iterator] {
	s := argconv.MustBox(p).schema
	return newIterator(&Iterator{kind: iterSchemaKeyspaces, parent: p.Addr(), count: len(s.Keyspaces), schema: s})
}

// IteratorTablesFromKeyspaceMeta implements cass_iterator_tables_from_keyspace_meta.
func IteratorTablesFromKeyspaceMeta(p argconv.Ptr[KeyspaceMeta]) argconv.Ptr[Iterator] {
	k := argconv.MustRef(p)
	return newIterator(&Iterator{kind: iterKeyspaceTables, parent: p.Addr(), count: len(k.Tables), keyspace: k})
}

// IteratorMaterializedViewsFromKeyspaceMeta implements
// cass_iterator_materialized_views_from_keyspace_meta.
func IteratorMaterializedViewsFromKeyspaceMeta(p argconv.Ptr[KeyspaceMeta]) argconv.Ptr[Iterator] {
	k := argconv.MustRef(p)
	return newIterator(&Iterator{kind: iterKeyspaceViews, parent: p.Addr(), count: len(k.Views), keyspace: k})
}

// IteratorUserTypesFromKeyspaceMeta implements
// cass_iterator_user_types_from_keyspace_meta.
func IteratorUserTypesFromKeyspaceMeta(p argconv.Ptr[KeyspaceMeta]) argconv.Ptr[Iterator] {
	k := argconv.MustRef(p)
	return newIterator(&Iterator{kind: iterKeyspaceUserTypes, parent: p.Addr(), count: len(k.UserTypes), keyspace: k})
}

// IteratorColumnsFromTableMeta implements cass_iterator_columns_from_table_meta.
func IteratorColumnsFromTableMeta(p argconv.Ptr[TableMeta]) argconv.Ptr[Iterator] {
	t := argconv.MustRef(p)
	return newIterator(&Iterator{kind: iterTableColumns, parent: p.Addr(), count: len(t.Columns), table: t})
}

// IteratorMaterializedViewsFromTableMeta implements
// cass_iterator_materialized_views_from_table_meta.
func IteratorMaterializedViewsFromTableMeta(p argconv.Ptr[TableMeta]) argconv.Ptr[Iterator] {
	t := argconv.MustRef(p)
	return newIterator(&Iterator{kind: iterTableViews, parent: p.Addr(), count: len(t.Views), table: t})
}

// IteratorColumnsFromMaterializedViewMeta implements
// cass_iterator_columns_from_materialized_view_meta.
func IteratorColumnsFromMaterializedViewMeta(p argconv.Ptr[MaterializedViewMeta]) argconv.Ptr[Iterator] {
	t := viewTable(p)
	return newIterator(&Iterator{kind: iterViewColumns, parent: p.Addr(), count: len(t.Columns), table: t})
}

// IteratorGetRow implements cass_iterator_get_row.
func IteratorGetRow(p argconv.Ptr[Iterator]) argconv.Ptr[Row] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterResult)
	if !ok {
		return argconv.Null[Row]()
	}
	return argconv.RefInto(it.parent, it.result.Rows[i])
}

// IteratorGetColumn implements cass_iterator_get_column.
func IteratorGetColumn(p argconv.Ptr[Iterator]) argconv.Ptr[Value] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterRow)
	if !ok {
		return argconv.Null[Value]()
	}
	return argconv.RefInto(it.parent, it.row.Values[i])
}

// IteratorGetValue implements cass_iterator_get_value.
func IteratorGetValue(p argconv.Ptr[Iterator]) argconv.Ptr[Value] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterCollection, iterTuple)
	if !ok {
		return argconv.Null[Value]()
	}
	return argconv.RefInto(it.parent, it.value.Items[i])
}

// IteratorGetMapKey implements cass_iterator_get_map_key.
func IteratorGetMapKey(p argconv.Ptr[Iterator]) argconv.Ptr[Value] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterMap)
	if !ok {
		return argconv.Null[Value]()
	}
	return argconv.RefInto(it.parent, it.value.Pairs[i].Key)
}

// IteratorGetMapValue implements cass_iterator_get_map_value.
func IteratorGetMapValue(p argconv.Ptr[Iterator]) argconv.Ptr[Value] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterMap)
	if !ok {
		return argconv.Null[Value]()
	}
	return argconv.RefInto(it.parent, it.value.Pairs[i].Val)
}

// IteratorGetUserTypeFieldName implements cass_iterator_get_user_type_field_name.
func IteratorGetUserTypeFieldName(p argconv.Ptr[Iterator]) (string, casserr.Code) {
	it := argconv.MustBox(p)
	i, ok := it.at(iterUserTypeFields)
	if !ok || i >= len(it.value.Type.FieldNames) {
		return "", casserr.LibBadParams
	}
	return it.value.Type.FieldNames[i], casserr.OK
}

// IteratorGetUserTypeFieldValue implements cass_iterator_get_user_type_field_value.
func IteratorGetUserTypeFieldValue(p argconv.Ptr[Iterator]) argconv.Ptr[Value] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterUserTypeFields)
	if !ok {
		return argconv.Null[Value]()
	}
	return argconv.RefInto(it.parent, it.value.Items[i])
}

// IteratorGetKeyspaceMeta implements cass_iterator_get_keyspace_meta.
func IteratorGetKeyspaceMeta(p argconv.Ptr[Iterator]) argconv.Ptr[KeyspaceMeta] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterSchemaKeyspaces)
	if !ok {
		return argconv.Null[KeyspaceMeta]()
	}
	return argconv.RefInto(it.parent, it.schema.Keyspaces[i])
}

// IteratorGetTableMeta implements cass_iterator_get_table_meta.
func IteratorGetTableMeta(p argconv.Ptr[Iterator]) argconv.Ptr[TableMeta] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterKeyspaceTables)
	if !ok {
		return argconv.Null[TableMeta]()
	}
	return argconv.RefInto(it.parent, it.keyspace.Tables[i])
}

// IteratorGetMaterializedViewMeta implements
// cass_iterator_get_materialized_view_meta.
func IteratorGetMaterializedViewMeta(p argconv.Ptr[Iterator]) argconv.Ptr[MaterializedViewMeta] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterKeyspaceViews, iterTableViews)
	if !ok {
		return argconv.Null[MaterializedViewMeta]()
	}
	if it.kind == iterTableViews {
		return argconv.RefInto(it.parent, it.table.Views[i])
	}
	return argconv.RefInto(it.parent, it.keyspace.Views[i])
}

// IteratorGetUserType implements cass_iterator_get_user_type.
func IteratorGetUserType(p argconv.Ptr[Iterator]) argconv.Ptr[DataType] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterKeyspaceUserTypes)
	if !ok {
		return argconv.Null[DataType]()
	}
	return argconv.ArcBorrow(it.parent, it.keyspace.UserTypes[i])
}

// IteratorGetColumnMeta implements cass_iterator_get_column_meta.
func IteratorGetColumnMeta(p argconv.Ptr[Iterator]) argconv.Ptr[ColumnMeta] {
	it := argconv.MustBox(p)
	i, ok := it.at(iterTableColumns, iterViewColumns)
	if !ok {
		return argconv.Null[ColumnMeta]()
	}
	return argconv.RefInto(it.parent, it.table.Columns[i])
}
