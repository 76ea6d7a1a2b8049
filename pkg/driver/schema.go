package driver

import (
	"sort"

	"github.com/grafana/cassbridge/pkg/argconv"
)

// ColumnKind uses the CassColumnType numbering.
type ColumnKind uint8

const (
	ColumnRegular       ColumnKind = 0
	ColumnPartitionKey  ColumnKind = 1
	ColumnClusteringKey ColumnKind = 2
	ColumnStatic        ColumnKind = 3
	ColumnCompactValue  ColumnKind = 4
)

// Schema is a snapshot of the cluster schema. Slices are sorted by name so
// iteration order is stable.
type Schema struct {
	Keyspaces []*KeyspaceMeta
}

// KeyspaceMeta describes a keyspace.
type KeyspaceMeta struct {
	Name      string
	Tables    []*TableMeta
	Views     []*ViewMeta
	UserTypes []*DataType
}

// TableMeta describes a table. The same shape is used for the columns of a
// materialized view.
type TableMeta struct {
	Keyspace      string
	Name          string
	Columns       []*ColumnMeta
	PartitionKey  []*ColumnMeta
	ClusteringKey []*ColumnMeta
	Views         []*ViewMeta
}

// ViewMeta describes a materialized view. BaseTable does not keep the base
// table alive, it resolves while the owning schema snapshot exists.
type ViewMeta struct {
	Name          string
	BaseTableName string
	Table         *TableMeta
	BaseTable     argconv.Weak[TableMeta]
}

// ColumnMeta describes a column.
type ColumnMeta struct {
	Name string
	Type *DataType
	Kind ColumnKind
}

// Keyspace returns the named keyspace.
func (s *Schema) Keyspace(name string) *KeyspaceMeta {
	for _, k := range s.Keyspaces {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// Table returns the named table.
func (k *KeyspaceMeta) Table(name string) *TableMeta {
	for _, t := range k.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// View returns the named materialized view.
func (k *KeyspaceMeta) View(name string) *ViewMeta {
	for _, v := range k.Views {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// UserType returns the named user defined type.
func (k *KeyspaceMeta) UserType(name string) *DataType {
	for _, t := range k.UserTypes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Column returns the named column.
func (t *TableMeta) Column(name string) *ColumnMeta {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// View returns the named view of the table.
func (t *TableMeta) View(name string) *ViewMeta {
	for _, v := range t.Views {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Link sorts the keyspace contents and connects every view with its base
// table: the view is listed under the table and gets a weak back-reference
// to it. Views whose base table is unknown stay unlinked.
func (k *KeyspaceMeta) Link() {
	sort.Slice(k.Tables, func(i, j int) bool { return k.Tables[i].Name < k.Tables[j].Name })
	sort.Slice(k.Views, func(i, j int) bool { return k.Views[i].Name < k.Views[j].Name })
	sort.Slice(k.UserTypes, func(i, j int) bool { return k.UserTypes[i].Name < k.UserTypes[j].Name })

	for _, t := range k.Tables {
		t.Views = t.Views[:0]
	}
	for _, v := range k.Views {
		base := k.Table(v.BaseTableName)
		if base == nil {
			continue
		}
		v.BaseTable = argconv.Downgrade(base)
		base.Views = append(base.Views, v)
	}
}

// NewSchema links every keyspace and sorts them by name.
func NewSchema(keyspaces []*KeyspaceMeta) *Schema {
	for _, k := range keyspaces {
		k.Link()
	}
	sort.Slice(keyspaces, func(i, j int) bool { return keyspaces[i].Name < keyspaces[j].Name })
	return &Schema{Keyspaces: keyspaces}
}

// SplitKeys fills PartitionKey and ClusteringKey from the column kinds.
// Columns must already be in component order.
func (t *TableMeta) SplitKeys() {
	t.PartitionKey = t.PartitionKey[:0]
	t.ClusteringKey = t.ClusteringKey[:0]
	for _, c := range t.Columns {
		switch c.Kind {
		case ColumnPartitionKey:
			t.PartitionKey = append(t.PartitionKey, c)
		case ColumnClusteringKey:
			t.ClusteringKey = append(t.ClusteringKey, c)
		}
	}
}
