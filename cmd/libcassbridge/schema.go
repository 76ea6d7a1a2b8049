package main

/*
#include "cassbridge.h"
*/
import "C"

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
)

func schemaMeta(s *C.CassSchemaMeta) argconv.Ptr[cass.SchemaMeta] {
	return fromC[cass.SchemaMeta](s)
}

func keyspaceMeta(ks *C.CassKeyspaceMeta) argconv.Ptr[cass.KeyspaceMeta] {
	return fromC[cass.KeyspaceMeta](ks)
}

func tableMeta(t *C.CassTableMeta) argconv.Ptr[cass.TableMeta] { return fromC[cass.TableMeta](t) }

func viewMeta(v *C.CassMaterializedViewMeta) argconv.Ptr[cass.MaterializedViewMeta] {
	return fromC[cass.MaterializedViewMeta](v)
}

func columnMeta(c *C.CassColumnMeta) argconv.Ptr[cass.ColumnMeta] { return fromC[cass.ColumnMeta](c) }

func columnToC(c argconv.Ptr[cass.ColumnMeta]) *C.CassColumnMeta { return toC[C.CassColumnMeta](c) }

func viewToC(v argconv.Ptr[cass.MaterializedViewMeta]) *C.CassMaterializedViewMeta {
	return toC[C.CassMaterializedViewMeta](v)
}

//export cass_schema_meta_free
func cass_schema_meta_free(s *C.CassSchemaMeta) {
	cass.SchemaMetaFree(schemaMeta(s))
}

//export cass_schema_meta_keyspace_by_name
func cass_schema_meta_keyspace_by_name(s *C.CassSchemaMeta, name *C.char) *C.CassKeyspaceMeta {
	return toC[C.CassKeyspaceMeta](cass.SchemaMetaKeyspaceByName(schemaMeta(s), goString(name)))
}

//export cass_schema_meta_keyspace_by_name_n
func cass_schema_meta_keyspace_by_name_n(s *C.CassSchemaMeta, name *C.char, length C.size_t) *C.CassKeyspaceMeta {
	return toC[C.CassKeyspaceMeta](cass.SchemaMetaKeyspaceByName(schemaMeta(s), goStringN(name, length)))
}

//export cass_keyspace_meta_name
func cass_keyspace_meta_name(ks *C.CassKeyspaceMeta, name **C.char, nameLength *C.size_t) {
	p := keyspaceMeta(ks)
	writeString(p.Addr(), cass.KeyspaceMetaName(p), name, nameLength)
}

//export cass_keyspace_meta_table_by_name
func cass_keyspace_meta_table_by_name(ks *C.CassKeyspaceMeta, name *C.char) *C.CassTableMeta {
	return toC[C.CassTableMeta](cass.KeyspaceMetaTableByName(keyspaceMeta(ks), goString(name)))
}

//export cass_keyspace_meta_table_by_name_n
func cass_keyspace_meta_table_by_name_n(ks *C.CassKeyspaceMeta, name *C.char, length C.size_t) *C.CassTableMeta {
	return toC[C.CassTableMeta](cass.KeyspaceMetaTableByName(keyspaceMeta(ks), goStringN(name, length)))
}

//export cass_keyspace_meta_materialized_view_by_name
func cass_keyspace_meta_materialized_view_by_name(ks *C.CassKeyspaceMeta, name *C.char) *C.CassMaterializedViewMeta {
	return viewToC(cass.KeyspaceMetaMaterializedViewByName(keyspaceMeta(ks), goString(name)))
}

//export cass_keyspace_meta_materialized_view_by_name_n
func cass_keyspace_meta_materialized_view_by_name_n(ks *C.CassKeyspaceMeta, name *C.char, length C.size_t) *C.CassMaterializedViewMeta {
	return viewToC(cass.KeyspaceMetaMaterializedViewByName(keyspaceMeta(ks), goStringN(name, length)))
}

//export cass_keyspace_meta_user_type_by_name
func cass_keyspace_meta_user_type_by_name(ks *C.CassKeyspaceMeta, name *C.char) *C.CassDataType {
	return dataTypeToC(cass.KeyspaceMetaUserTypeByName(keyspaceMeta(ks), goString(name)))
}

//export cass_keyspace_meta_user_type_by_name_n
func cass_keyspace_meta_user_type_by_name_n(ks *C.CassKeyspaceMeta, name *C.char, length C.size_t) *C.CassDataType {
	return dataTypeToC(cass.KeyspaceMetaUserTypeByName(keyspaceMeta(ks), goStringN(name, length)))
}

//export cass_table_meta_name
func cass_table_meta_name(t *C.CassTableMeta, name **C.char, nameLength *C.size_t) {
	p := tableMeta(t)
	writeString(p.Addr(), cass.TableMetaName(p), name, nameLength)
}

//export cass_table_meta_column_count
func cass_table_meta_column_count(t *C.CassTableMeta) C.size_t {
	return C.size_t(cass.TableMetaColumnCount(tableMeta(t)))
}

//export cass_table_meta_column
func cass_table_meta_column(t *C.CassTableMeta, index C.size_t) *C.CassColumnMeta {
	return columnToC(cass.TableMetaColumn(tableMeta(t), int(index)))
}

//export cass_table_meta_column_by_name
func cass_table_meta_column_by_name(t *C.CassTableMeta, name *C.char) *C.CassColumnMeta {
	return columnToC(cass.TableMetaColumnByName(tableMeta(t), goString(name)))
}

//export cass_table_meta_column_by_name_n
func cass_table_meta_column_by_name_n(t *C.CassTableMeta, name *C.char, length C.size_t) *C.CassColumnMeta {
	return columnToC(cass.TableMetaColumnByName(tableMeta(t), goStringN(name, length)))
}

//export cass_table_meta_partition_key_count
func cass_table_meta_partition_key_count(t *C.CassTableMeta) C.size_t {
	return C.size_t(cass.TableMetaPartitionKeyCount(tableMeta(t)))
}

//export cass_table_meta_partition_key
func cass_table_meta_partition_key(t *C.CassTableMeta, index C.size_t) *C.CassColumnMeta {
	return columnToC(cass.TableMetaPartitionKey(tableMeta(t), int(index)))
}

//export cass_table_meta_clustering_key_count
func cass_table_meta_clustering_key_count(t *C.CassTableMeta) C.size_t {
	return C.size_t(cass.TableMetaClusteringKeyCount(tableMeta(t)))
}

//export cass_table_meta_clustering_key
func cass_table_meta_clustering_key(t *C.CassTableMeta, index C.size_t) *C.CassColumnMeta {
	return columnToC(cass.TableMetaClusteringKey(tableMeta(t), int(index)))
}

//export cass_table_meta_materialized_view_by_name
func cass_table_meta_materialized_view_by_name(t *C.CassTableMeta, name *C.char) *C.CassMaterializedViewMeta {
	return viewToC(cass.TableMetaMaterializedViewByName(tableMeta(t), goString(name)))
}

//export cass_table_meta_materialized_view_by_name_n
func cass_table_meta_materialized_view_by_name_n(t *C.CassTableMeta, name *C.char, length C.size_t) *C.CassMaterializedViewMeta {
	return viewToC(cass.TableMetaMaterializedViewByName(tableMeta(t), goStringN(name, length)))
}

//export cass_table_meta_materialized_view_count
func cass_table_meta_materialized_view_count(t *C.CassTableMeta) C.size_t {
	return C.size_t(cass.TableMetaMaterializedViewCount(tableMeta(t)))
}

//export cass_table_meta_materialized_view
func cass_table_meta_materialized_view(t *C.CassTableMeta, index C.size_t) *C.CassMaterializedViewMeta {
	return viewToC(cass.TableMetaMaterializedView(tableMeta(t), int(index)))
}

//export cass_materialized_view_meta_name
func cass_materialized_view_meta_name(v *C.CassMaterializedViewMeta, name **C.char, nameLength *C.size_t) {
	p := viewMeta(v)
	writeString(p.Addr(), cass.MaterializedViewMetaName(p), name, nameLength)
}

//export cass_materialized_view_meta_base_table
func cass_materialized_view_meta_base_table(v *C.CassMaterializedViewMeta) *C.CassTableMeta {
	return toC[C.CassTableMeta](cass.MaterializedViewMetaBaseTable(viewMeta(v)))
}

//export cass_materialized_view_meta_column_count
func cass_materialized_view_meta_column_count(v *C.CassMaterializedViewMeta) C.size_t {
	return C.size_t(cass.MaterializedViewMetaColumnCount(viewMeta(v)))
}

//export cass_materialized_view_meta_column
func cass_materialized_view_meta_column(v *C.CassMaterializedViewMeta, index C.size_t) *C.CassColumnMeta {
	return columnToC(cass.MaterializedViewMetaColumn(viewMeta(v), int(index)))
}

//export cass_materialized_view_meta_column_by_name
func cass_materialized_view_meta_column_by_name(v *C.CassMaterializedViewMeta, name *C.char) *C.CassColumnMeta {
	return columnToC(cass.MaterializedViewMetaColumnByName(viewMeta(v), goString(name)))
}

//export cass_materialized_view_meta_column_by_name_n
func cass_materialized_view_meta_column_by_name_n(v *C.CassMaterializedViewMeta, name *C.char, length C.size_t) *C.CassColumnMeta {
	return columnToC(cass.MaterializedViewMetaColumnByName(viewMeta(v), goStringN(name, length)))
}

//export cass_column_meta_name
func cass_column_meta_name(c *C.CassColumnMeta, name **C.char, nameLength *C.size_t) {
	p := columnMeta(c)
	writeString(p.Addr(), cass.ColumnMetaName(p), name, nameLength)
}

//export cass_column_meta_type
func cass_column_meta_type(c *C.CassColumnMeta) C.CassColumnType {
	return C.CassColumnType(cass.ColumnMetaType(columnMeta(c)))
}

//export cass_column_meta_data_type
func cass_column_meta_data_type(c *C.CassColumnMeta) *C.CassDataType {
	return dataTypeToC(cass.ColumnMetaDataType(columnMeta(c)))
}
