package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/driver"
)

func addSchemaCommand(app *kingpin.Application, global *globalOptions) {
	var keyspaces []string

	cmd := app.Command("schema", "Print keyspaces, tables, views and columns.")
	cmd.Arg("keyspace", "Only print these keyspaces.").StringsVar(&keyspaces)

	cmd.Action(func(_ *kingpin.ParseContext) error {
		cluster, session, err := global.connect()
		if err != nil {
			return err
		}
		defer cass.ClusterFree(cluster)
		defer cass.SessionFree(session)

		schema := cass.SessionGetSchemaMeta(session)
		if schema.IsNull() {
			return fmt.Errorf("schema metadata is not available")
		}
		defer cass.SchemaMetaFree(schema)
		return printSchema(os.Stdout, schema, keyspaces)
	})
}

func printSchema(w io.Writer, schema argconv.Ptr[cass.SchemaMeta], only []string) error {
	if len(only) > 0 {
		for _, name := range only {
			ks := cass.SchemaMetaKeyspaceByName(schema, name)
			if ks.IsNull() {
				return fmt.Errorf("keyspace %q does not exist", name)
			}
			printKeyspace(w, ks)
		}
		return nil
	}

	it := cass.IteratorKeyspacesFromSchemaMeta(schema)
	defer cass.IteratorFree(it)
	for cass.IteratorNext(it) {
		printKeyspace(w, cass.IteratorGetKeyspaceMeta(it))
	}
	return nil
}

func printKeyspace(w io.Writer, ks argconv.Ptr[cass.KeyspaceMeta]) {
	fmt.Fprintf(w, "keyspace %s\n", cass.KeyspaceMetaName(ks))

	types := cass.IteratorUserTypesFromKeyspaceMeta(ks)
	defer cass.IteratorFree(types)
	for cass.IteratorNext(types) {
		dt := cass.IteratorGetUserType(types)
		name, _ := cass.DataTypeTypeName(dt)
		fmt.Fprintf(w, "  type %s\n", name)
	}

	tables := cass.IteratorTablesFromKeyspaceMeta(ks)
	defer cass.IteratorFree(tables)
	for cass.IteratorNext(tables) {
		table := cass.IteratorGetTableMeta(tables)
		fmt.Fprintf(w, "  table %s\n", cass.TableMetaName(table))
		printColumns(w, cass.IteratorColumnsFromTableMeta(table))
	}

	views := cass.IteratorMaterializedViewsFromKeyspaceMeta(ks)
	defer cass.IteratorFree(views)
	for cass.IteratorNext(views) {
		view := cass.IteratorGetMaterializedViewMeta(views)
		base := "?"
		if t := cass.MaterializedViewMetaBaseTable(view); !t.IsNull() {
			base = cass.TableMetaName(t)
		}
		fmt.Fprintf(w, "  view %s on %s\n", cass.MaterializedViewMetaName(view), base)
		printColumns(w, cass.IteratorColumnsFromMaterializedViewMeta(view))
	}
}

func printColumns(w io.Writer, it argconv.Ptr[cass.Iterator]) {
	defer cass.IteratorFree(it)
	for cass.IteratorNext(it) {
		col := cass.IteratorGetColumnMeta(it)
		dt := argconv.MustArc(cass.ColumnMetaDataType(col))
		fmt.Fprintf(w, "    %s %s%s\n", cass.ColumnMetaName(col), dt, columnKind(cass.ColumnMetaType(col)))
	}
}

func columnKind(k driver.ColumnKind) string {
	switch k {
	case driver.ColumnPartitionKey:
		return " partition key"
	case driver.ColumnClusteringKey:
		return " clustering key"
	case driver.ColumnStatic:
		return " static"
	}
	return ""
}
