package main

/*
#include "cassbridge.h"
*/
import "C"

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/casserr"
)

func iterator(it *C.CassIterator) argconv.Ptr[cass.Iterator] { return fromC[cass.Iterator](it) }

func iteratorToC(it argconv.Ptr[cass.Iterator]) *C.CassIterator { return toC[C.CassIterator](it) }

//export cass_iterator_free
func cass_iterator_free(it *C.CassIterator) {
	cass.IteratorFree(iterator(it))
}

//export cass_iterator_type
func cass_iterator_type(it *C.CassIterator) C.CassIteratorType {
	return C.CassIteratorType(cass.IteratorTypeOf(iterator(it)))
}

//export cass_iterator_next
func cass_iterator_next(it *C.CassIterator) C.cass_bool_t {
	return cbool(cass.IteratorNext(iterator(it)))
}

//export cass_iterator_from_result
func cass_iterator_from_result(r *C.CassResult) *C.CassIterator {
	return iteratorToC(cass.IteratorFromResult(result(r)))
}

//export cass_iterator_from_row
func cass_iterator_from_row(row *C.CassRow) *C.CassIterator {
	return iteratorToC(cass.IteratorFromRow(fromC[cass.Row](row)))
}

//export cass_iterator_from_collection
func cass_iterator_from_collection(v *C.CassValue) *C.CassIterator {
	return iteratorToC(cass.IteratorFromCollection(value(v)))
}

//export cass_iterator_from_map
func cass_iterator_from_map(v *C.CassValue) *C.CassIterator {
	return iteratorToC(cass.IteratorFromMap(value(v)))
}

//export cass_iterator_from_tuple
func cass_iterator_from_tuple(v *C.CassValue) *C.CassIterator {
	return iteratorToC(cass.IteratorFromTuple(value(v)))
}

//export cass_iterator_fields_from_user_type
func cass_iterator_fields_from_user_type(v *C.CassValue) *C.CassIterator {
	return iteratorToC(cass.IteratorFieldsFromUserType(value(v)))
}

//export cass_iterator_keyspaces_from_schema_meta
func cass_iterator_keyspaces_from_schema_meta(s *C.CassSchemaMeta) *C.CassIterator {
	return iteratorToC(cass.IteratorKeyspacesFromSchemaMeta(schemaMeta(s)))
}

//export cass_iterator_tables_from_keyspace_meta
func cass_iterator_tables_from_keyspace_meta(ks *C.CassKeyspaceMeta) *C.CassIterator {
	return iteratorToC(cass.IteratorTablesFromKeyspaceMeta(keyspaceMeta(ks)))
}

//export cass_iterator_materialized_views_from_keyspace_meta
func cass_iterator_materialized_views_from_keyspace_meta(ks *C.CassKeyspaceMeta) *C.CassIterator {
	return iteratorToC(cass.IteratorMaterializedViewsFromKeyspaceMeta(keyspaceMeta(ks)))
}

//export cass_iterator_user_types_from_keyspace_meta
func cass_iterator_user_types_from_keyspace_meta(ks *C.CassKeyspaceMeta) *C.CassIterator {
	return iteratorToC(cass.IteratorUserTypesFromKeyspaceMeta(keyspaceMeta(ks)))
}

//export cass_iterator_columns_from_table_meta
func cass_iterator_columns_from_table_meta(t *C.CassTableMeta) *C.CassIterator {
	return iteratorToC(cass.IteratorColumnsFromTableMeta(tableMeta(t)))
}

//export cass_iterator_materialized_views_from_table_meta
func cass_iterator_materialized_views_from_table_meta(t *C.CassTableMeta) *C.CassIterator {
	return iteratorToC(cass.IteratorMaterializedViewsFromTableMeta(tableMeta(t)))
}

//export cass_iterator_columns_from_materialized_view_meta
func cass_iterator_columns_from_materialized_view_meta(v *C.CassMaterializedViewMeta) *C.CassIterator {
	return iteratorToC(cass.IteratorColumnsFromMaterializedViewMeta(viewMeta(v)))
}

//export cass_iterator_get_row
func cass_iterator_get_row(it *C.CassIterator) *C.CassRow {
	return toC[C.CassRow](cass.IteratorGetRow(iterator(it)))
}

//export cass_iterator_get_column
func cass_iterator_get_column(it *C.CassIterator) *C.CassValue {
	return valueToC(cass.IteratorGetColumn(iterator(it)))
}

//export cass_iterator_get_value
func cass_iterator_get_value(it *C.CassIterator) *C.CassValue {
	return valueToC(cass.IteratorGetValue(iterator(it)))
}

//export cass_iterator_get_map_key
func cass_iterator_get_map_key(it *C.CassIterator) *C.CassValue {
	return valueToC(cass.IteratorGetMapKey(iterator(it)))
}

//export cass_iterator_get_map_value
func cass_iterator_get_map_value(it *C.CassIterator) *C.CassValue {
	return valueToC(cass.IteratorGetMapValue(iterator(it)))
}

//export cass_iterator_get_user_type_field_name
func cass_iterator_get_user_type_field_name(it *C.CassIterator, name **C.char, nameLength *C.size_t) C.CassError {
	p := iterator(it)
	n, code := cass.IteratorGetUserTypeFieldName(p)
	if code == casserr.OK {
		writeString(p.Addr(), n, name, nameLength)
	}
	return cerr(code)
}

//export cass_iterator_get_user_type_field_value
func cass_iterator_get_user_type_field_value(it *C.CassIterator) *C.CassValue {
	return valueToC(cass.IteratorGetUserTypeFieldValue(iterator(it)))
}

//export cass_iterator_get_keyspace_meta
func cass_iterator_get_keyspace_meta(it *C.CassIterator) *C.CassKeyspaceMeta {
	return toC[C.CassKeyspaceMeta](cass.IteratorGetKeyspaceMeta(iterator(it)))
}

//export cass_iterator_get_table_meta
func cass_iterator_get_table_meta(it *C.CassIterator) *C.CassTableMeta {
	return toC[C.CassTableMeta](cass.IteratorGetTableMeta(iterator(it)))
}

//export cass_iterator_get_materialized_view_meta
func cass_iterator_get_materialized_view_meta(it *C.CassIterator) *C.CassMaterializedViewMeta {
	return toC[C.CassMaterializedViewMeta](cass.IteratorGetMaterializedViewMeta(iterator(it)))
}

//export cass_iterator_get_user_type
func cass_iterator_get_user_type(it *C.CassIterator) *C.CassDataType {
	return dataTypeToC(cass.IteratorGetUserType(iterator(it)))
}

//export cass_iterator_get_column_meta
func cass_iterator_get_column_meta(it *C.CassIterator) *C.CassColumnMeta {
	return toC[C.CassColumnMeta](cass.IteratorGetColumnMeta(iterator(it)))
}
