package gocqldriver

import (
	"context"
	"sort"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/grafana/cassbridge/pkg/driver"
)

const schemaFetchConcurrency = 4

// fetchSchema builds a schema snapshot. Keyspaces are described
// concurrently, views come from system_schema since gocql does not expose
// their columns.
func fetchSchema(ctx context.Context, session *gocql.Session, logger log.Logger) (*driver.Schema, error) {
	var names []string
	iter := session.Query("SELECT keyspace_name FROM system_schema.keyspaces").WithContext(ctx).Iter()
	var name string
	for iter.Scan(&name) {
		names = append(names, name)
	}
	if err := iter.Close(); err != nil {
		return nil, toCassError(errors.Wrap(err, "list keyspaces"))
	}
	sort.Strings(names)

	var (
		mtx       sync.Mutex
		keyspaces = make([]*driver.KeyspaceMeta, 0, len(names))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(schemaFetchConcurrency)
	for _, ks := range names {
		g.Go(func() error {
			meta, err := session.KeyspaceMetadata(ks)
			if err != nil {
				return errors.Wrapf(err, "describe keyspace %s", ks)
			}
			k := keyspaceMeta(meta)
			if err := fetchViews(ctx, session, k, meta); err != nil {
				return err
			}
			mtx.Lock()
			keyspaces = append(keyspaces, k)
			mtx.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		level.Warn(logger).Log("msg", "failed to fetch schema", "err", err)
		return nil, toCassError(err)
	}
	return driver.NewSchema(keyspaces), nil
}

func keyspaceMeta(meta *gocql.KeyspaceMetadata) *driver.KeyspaceMeta {
	k := &driver.KeyspaceMeta{Name: meta.Name}
	for _, t := range meta.Tables {
		k.Tables = append(k.Tables, tableMeta(t))
	}
	for _, ut := range meta.UserTypes {
		dt := &driver.DataType{Type: driver.TypeUDT, Keyspace: ut.Keyspace, Name: ut.Name}
		for i, f := range ut.FieldNames {
			dt.FieldNames = append(dt.FieldNames, f)
			if i < len(ut.FieldTypes) {
				dt.Sub = append(dt.Sub, dataType(ut.FieldTypes[i]))
			} else {
				dt.Sub = append(dt.Sub, driver.Simple(driver.TypeUnknown))
			}
		}
		k.UserTypes = append(k.UserTypes, dt)
	}
	return k
}

func tableMeta(t *gocql.TableMetadata) *driver.TableMeta {
	out := &driver.TableMeta{Keyspace: t.Keyspace, Name: t.Name}
	for _, name := range t.OrderedColumns {
		c, ok := t.Columns[name]
		if !ok {
			continue
		}
		out.Columns = append(out.Columns, &driver.ColumnMeta{
			Name: c.Name,
			Type: dataType(c.Type),
			Kind: columnKind(c.Kind),
		})
	}
	for _, c := range t.PartitionKey {
		if col := out.Column(c.Name); col != nil {
			out.PartitionKey = append(out.PartitionKey, col)
		}
	}
	for _, c := range t.ClusteringColumns {
		if col := out.Column(c.Name); col != nil {
			out.ClusteringKey = append(out.ClusteringKey, col)
		}
	}
	return out
}

func columnKind(k gocql.ColumnKind) driver.ColumnKind {
	switch k {
	case gocql.ColumnPartitionKey:
		return driver.ColumnPartitionKey
	case gocql.ColumnClusteringKey:
		return driver.ColumnClusteringKey
	case gocql.ColumnStatic:
		return driver.ColumnStatic
	case gocql.ColumnCompact:
		return driver.ColumnCompactValue
	default:
		return driver.ColumnRegular
	}
}

func columnKindOf(kind string) driver.ColumnKind {
	switch kind {
	case "partition_key":
		return driver.ColumnPartitionKey
	case "clustering":
		return driver.ColumnClusteringKey
	case "static":
		return driver.ColumnStatic
	default:
		return driver.ColumnRegular
	}
}

type viewColumn struct {
	name     string
	kind     driver.ColumnKind
	position int
}

// fetchViews describes the materialized views of a keyspace. Column types
// are taken from the base table, a view only selects its columns.
func fetchViews(ctx context.Context, session *gocql.Session, k *driver.KeyspaceMeta, meta *gocql.KeyspaceMetadata) error {
	iter := session.Query(
		"SELECT view_name, base_table_name FROM system_schema.views WHERE keyspace_name = ?", k.Name,
	).WithContext(ctx).Iter()
	var viewName, baseName string
	for iter.Scan(&viewName, &baseName) {
		k.Views = append(k.Views, &driver.ViewMeta{Name: viewName, BaseTableName: baseName})
	}
	if err := iter.Close(); err != nil {
		return errors.Wrapf(err, "list views of %s", k.Name)
	}

	for _, v := range k.Views {
		cols, err := viewColumns(ctx, session, k.Name, v.Name)
		if err != nil {
			return err
		}
		base := meta.Tables[v.BaseTableName]
		table := &driver.TableMeta{Keyspace: k.Name, Name: v.Name}
		for _, c := range cols {
			dt := driver.Simple(driver.TypeUnknown)
			if base != nil {
				if bc, ok := base.Columns[c.name]; ok {
					dt = dataType(bc.Type)
				}
			}
			table.Columns = append(table.Columns, &driver.ColumnMeta{Name: c.name, Type: dt, Kind: c.kind})
		}
		table.SplitKeys()
		v.Table = table
	}
	return nil
}

// viewColumns lists the columns of a view in the same order gocql uses for
// tables: partition key, clustering key, then the others by name.
func viewColumns(ctx context.Context, session *gocql.Session, keyspace, view string) ([]viewColumn, error) {
	iter := session.Query(
		"SELECT column_name, kind, position FROM system_schema.columns WHERE keyspace_name = ? AND table_name = ?", keyspace, view,
	).WithContext(ctx).Iter()
	var (
		cols     []viewColumn
		name     string
		kind     string
		position int
	)
	for iter.Scan(&name, &kind, &position) {
		cols = append(cols, viewColumn{name: name, kind: columnKindOf(kind), position: position})
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrapf(err, "list columns of %s.%s", keyspace, view)
	}

	rank := func(k driver.ColumnKind) int {
		switch k {
		case driver.ColumnPartitionKey:
			return 0
		case driver.ColumnClusteringKey:
			return 1
		default:
			return 2
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		ri, rj := rank(cols[i].kind), rank(cols[j].kind)
		if ri != rj {
			return ri < rj
		}
		if ri < 2 {
			return cols[i].position < cols[j].position
		}
		return cols[i].name < cols[j].name
	})
	return cols, nil
}
