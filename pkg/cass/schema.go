package cass

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/driver"
)

type (
	KeyspaceMeta         = driver.KeyspaceMeta
	TableMeta            = driver.TableMeta
	MaterializedViewMeta = driver.ViewMeta
	ColumnMeta           = driver.ColumnMeta
)

// SchemaMeta is a CassSchemaMeta: a snapshot of the schema. Everything
// reached from it is borrowed and dies with it.
type SchemaMeta struct {
	schema *driver.Schema
}

// SchemaMetaFree implements cass_schema_meta_free.
func SchemaMetaFree(p argconv.Ptr[SchemaMeta]) {
	argconv.BoxFree(p)
}

// SchemaMetaKeyspaceByName implements cass_schema_meta_keyspace_by_name.
func SchemaMetaKeyspaceByName(p argconv.Ptr[SchemaMeta], name string) argconv.Ptr[KeyspaceMeta] {
	meta := argconv.MustBox(p)
	return argconv.RefInto(p.Addr(), meta.schema.Keyspace(name))
}

// KeyspaceMetaName implements cass_keyspace_meta_name.
func KeyspaceMetaName(p argconv.Ptr[KeyspaceMeta]) string {
	return argconv.MustRef(p).Name
}

// KeyspaceMetaTableByName implements cass_keyspace_meta_table_by_name.
func KeyspaceMetaTableByName(p argconv.Ptr[KeyspaceMeta], name string) argconv.Ptr[TableMeta] {
	return argconv.RefInto(p.Addr(), argconv.MustRef(p).Table(name))
}

// KeyspaceMetaMaterializedViewByName implements
// cass_keyspace_meta_materialized_view_by_name.
func KeyspaceMetaMaterializedViewByName(p argconv.Ptr[KeyspaceMeta], name string) argconv.Ptr[MaterializedViewMeta] {
	return argconv.RefInto(p.Addr(), argconv.MustRef(p).View(name))
}

// KeyspaceMetaUserTypeByName implements cass_keyspace_meta_user_type_by_name.
func KeyspaceMetaUserTypeByName(p argconv.Ptr[KeyspaceMeta], name string) argconv.Ptr[DataType] {
	return argconv.ArcBorrow(p.Addr(), argconv.MustRef(p).UserType(name))
}

// TableMetaName implements cass_table_meta_name.
func TableMetaName(p argconv.Ptr[TableMeta]) string {
	return argconv.MustRef(p).Name
}

// TableMetaColumnCount implements cass_table_meta_column_count.
func TableMetaColumnCount(p argconv.Ptr[TableMeta]) int {
	return len(argconv.MustRef(p).Columns)
}

// TableMetaColumn implements cass_table_meta_column.
func TableMetaColumn(p argconv.Ptr[TableMeta], index int) argconv.Ptr[ColumnMeta] {
	return columnAt(p.Addr(), argconv.MustRef(p).Columns, index)
}

// TableMetaColumnByName implements cass_table_meta_column_by_name.
func TableMetaColumnByName(p argconv.Ptr[TableMeta], name string) argconv.Ptr[ColumnMeta] {
	return argconv.RefInto(p.Addr(), argconv.MustRef(p).Column(name))
}

// TableMetaPartitionKeyCount implements cass_table_meta_partition_key_count.
func TableMetaPartitionKeyCount(p argconv.Ptr[TableMeta]) int {
	return len(argconv.MustRef(p).PartitionKey)
}

// TableMetaPartitionKey implements cass_table_meta_partition_key.
func TableMetaPartitionKey(p argconv.Ptr[TableMeta], index int) argconv.Ptr[ColumnMeta] {
	return columnAt(p.Addr(), argconv.MustRef(p).PartitionKey, index)
}

// TableMetaClusteringKeyCount implements cass_table_meta_clustering_key_count.
func TableMetaClusteringKeyCount(p argconv.Ptr[TableMeta]) int {
	return len(argconv.MustRef(p).ClusteringKey)
}

// TableMetaClusteringKey implements cass_table_meta_clustering_key.
func TableMetaClusteringKey(p argconv.Ptr[TableMeta], index int) argconv.Ptr[ColumnMeta] {
	return columnAt(p.Addr(), argconv.MustRef(p).ClusteringKey, index)
}

// TableMetaMaterializedViewByName implements
// cass_table_meta_materialized_view_by_name.
func TableMetaMaterializedViewByName(p argconv.Ptr[TableMeta], name string) argconv.Ptr[MaterializedViewMeta] {
	return argconv.RefInto(p.Addr(), argconv.MustRef(p).View(name))
}

// TableMetaMaterializedViewCount implements cass_table_meta_materialized_view_count.
func TableMetaMaterializedViewCount(p argconv.Ptr[TableMeta]) int {
	return len(argconv.MustRef(p).Views)
}

// TableMetaMaterializedView implements cass_table_meta_materialized_view.
func TableMetaMaterializedView(p argconv.Ptr[TableMeta], index int) argconv.Ptr[MaterializedViewMeta] {
	views := argconv.MustRef(p).Views
	if index < 0 || index >= len(views) {
		return argconv.Null[MaterializedViewMeta]()
	}
	return argconv.RefInto(p.Addr(), views[index])
}

// MaterializedViewMetaName implements cass_materialized_view_meta_name.
func MaterializedViewMetaName(p argconv.Ptr[MaterializedViewMeta]) string {
	return argconv.MustRef(p).Name
}

// MaterializedViewMetaBaseTable implements
// cass_materialized_view_meta_base_table. It is null when the base table is
// unknown to the snapshot.
func MaterializedViewMetaBaseTable(p argconv.Ptr[MaterializedViewMeta]) argconv.Ptr[TableMeta] {
	base, ok := argconv.MustRef(p).BaseTable.Upgrade()
	if !ok {
		return argconv.Null[TableMeta]()
	}
	return argconv.RefInto(p.Addr(), base)
}

// MaterializedViewMetaColumnCount implements
// cass_materialized_view_meta_column_count.
func MaterializedViewMetaColumnCount(p argconv.Ptr[MaterializedViewMeta]) int {
	return len(viewTable(p).Columns)
}

// MaterializedViewMetaColumn implements cass_materialized_view_meta_column.
func MaterializedViewMetaColumn(p argconv.Ptr[MaterializedViewMeta], index int) argconv.Ptr[ColumnMeta] {
	return columnAt(p.Addr(), viewTable(p).Columns, index)
}

// MaterializedViewMetaColumnByName implements
// cass_materialized_view_meta_column_by_name.
func MaterializedViewMetaColumnByName(p argconv.Ptr[MaterializedViewMeta], name string) argconv.Ptr[ColumnMeta] {
	return argconv.RefInto(p.Addr(), viewTable(p).Column(name))
}

func viewTable(p argconv.Ptr[MaterializedViewMeta]) *TableMeta {
	v := argconv.MustRef(p)
	if v.Table == nil {
		return &TableMeta{}
	}
	return v.Table
}

// ColumnMetaName implements cass_column_meta_name.
func ColumnMetaName(p argconv.Ptr[ColumnMeta]) string {
	return argconv.MustRef(p).Name
}

// ColumnMetaType implements cass_column_meta_type.
func ColumnMetaType(p argconv.Ptr[ColumnMeta]) driver.ColumnKind {
	return argconv.MustRef(p).Kind
}

// ColumnMetaDataType implements cass_column_meta_data_type.
func ColumnMetaDataType(p argconv.Ptr[ColumnMeta]) argconv.Ptr[DataType] {
	return argconv.ArcBorrow(p.Addr(), argconv.MustRef(p).Type)
}

func columnAt(parent uintptr, columns []*ColumnMeta, index int) argconv.Ptr[ColumnMeta] {
	if index < 0 || index >= len(columns) {
		return argconv.Null[ColumnMeta]()
	}
	return argconv.RefInto(parent, columns[index])
}
