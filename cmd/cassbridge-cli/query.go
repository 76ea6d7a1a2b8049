package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

type queryOptions struct {
	statement   string
	consistency string
	pageSize    int
	maxPages    int
	timeoutMs   uint64
	tracing     bool
}

func addQueryCommand(app *kingpin.Application, global *globalOptions) {
	var opts queryOptions

	cmd := app.Command("query", "Execute a CQL statement and print the rows it returns.")
	cmd.Arg("statement", "CQL statement to execute.").Required().StringVar(&opts.statement)
	cmd.Flag("consistency", "Consistency level, e.g. LOCAL_QUORUM.").StringVar(&opts.consistency)
	cmd.Flag("page-size", "Rows per page.").Default("100").IntVar(&opts.pageSize)
	cmd.Flag("max-pages", "Stop after this many pages. 0 fetches all of them.").Default("0").IntVar(&opts.maxPages)
	cmd.Flag("timeout", "Request timeout in milliseconds. 0 disables it.").Default("12000").Uint64Var(&opts.timeoutMs)
	cmd.Flag("tracing", "Enable tracing and print the tracing id.").BoolVar(&opts.tracing)

	cmd.Action(func(_ *kingpin.ParseContext) error {
		cluster, session, err := global.connect()
		if err != nil {
			return err
		}
		defer cass.ClusterFree(cluster)
		defer cass.SessionFree(session)

		return runQuery(os.Stdout, session, opts)
	})
}

func runQuery(w io.Writer, session argconv.Ptr[cass.Session], opts queryOptions) error {
	stmt := cass.StatementNew(opts.statement, 0)
	defer cass.StatementFree(stmt)

	if opts.consistency != "" {
		c, ok := driver.ParseConsistency(strings.ToUpper(opts.consistency))
		if !ok {
			return fmt.Errorf("unknown consistency %q", opts.consistency)
		}
		if code := cass.StatementSetConsistency(stmt, c); code != casserr.OK {
			return fmt.Errorf("consistency %s: %s", c, code.Desc())
		}
	}
	cass.StatementSetPagingSize(stmt, opts.pageSize)
	cass.StatementSetRequestTimeout(stmt, opts.timeoutMs)
	cass.StatementSetTracing(stmt, opts.tracing)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	for page := 1; ; page++ {
		more, err := executePage(tw, session, stmt, page == 1, opts.tracing)
		if err != nil {
			return err
		}
		if !more || (opts.maxPages > 0 && page >= opts.maxPages) {
			return nil
		}
	}
}

// executePage prints one page and points stmt at the next one. It reports
// whether more pages remain.
func executePage(w io.Writer, session argconv.Ptr[cass.Session], stmt argconv.Ptr[cass.Statement], header, tracing bool) (bool, error) {
	f := cass.SessionExecute(session, stmt)
	defer cass.FutureFree(f)
	if err := futureErr(f); err != nil {
		return false, err
	}
	if tracing {
		if id, code := cass.FutureTracingID(f); code == casserr.OK {
			fmt.Fprintf(w, "tracing id: %s\n", id)
		}
	}

	res := cass.FutureGetResult(f)
	defer cass.ResultFree(res)

	if header && cass.ResultColumnCount(res) > 0 {
		names := make([]string, 0, cass.ResultColumnCount(res))
		for i := 0; i < cass.ResultColumnCount(res); i++ {
			name, _ := cass.ResultColumnName(res, i)
			names = append(names, name)
		}
		fmt.Fprintln(w, strings.Join(names, "\t"))
	}

	rows := cass.IteratorFromResult(res)
	defer cass.IteratorFree(rows)
	for cass.IteratorNext(rows) {
		fmt.Fprintln(w, formatRow(cass.IteratorGetRow(rows)))
	}

	if !cass.ResultHasMorePages(res) {
		return false, nil
	}
	if code := cass.StatementSetPagingState(stmt, res); code != casserr.OK {
		return false, fmt.Errorf("paging state: %s", code.Desc())
	}
	return true, nil
}

func formatRow(row argconv.Ptr[cass.Row]) string {
	cols := cass.IteratorFromRow(row)
	defer cass.IteratorFree(cols)

	var fields []string
	for cass.IteratorNext(cols) {
		fields = append(fields, formatValue(cass.IteratorGetColumn(cols)))
	}
	return strings.Join(fields, "\t")
}

// formatValue renders v in cqlsh style.
func formatValue(v argconv.Ptr[cass.Value]) string {
	if cass.ValueIsNull(v) {
		return "null"
	}

	switch t := cass.ValueType(v); t {
	case driver.TypeList, driver.TypeSet:
		start, end := "[", "]"
		if t == driver.TypeSet {
			start, end = "{", "}"
		}
		return start + joinItems(cass.IteratorFromCollection(v), func(it argconv.Ptr[cass.Iterator]) string {
			return formatValue(cass.IteratorGetValue(it))
		}) + end
	case driver.TypeTuple:
		return "(" + joinItems(cass.IteratorFromTuple(v), func(it argconv.Ptr[cass.Iterator]) string {
			return formatValue(cass.IteratorGetValue(it))
		}) + ")"
	case driver.TypeMap:
		return "{" + joinItems(cass.IteratorFromMap(v), func(it argconv.Ptr[cass.Iterator]) string {
			return formatValue(cass.IteratorGetMapKey(it)) + ": " + formatValue(cass.IteratorGetMapValue(it))
		}) + "}"
	case driver.TypeUDT:
		return "{" + joinItems(cass.IteratorFieldsFromUserType(v), func(it argconv.Ptr[cass.Iterator]) string {
			name, _ := cass.IteratorGetUserTypeFieldName(it)
			return name + ": " + formatValue(cass.IteratorGetUserTypeFieldValue(it))
		}) + "}"
	}
	return formatScalar(v)
}

func joinItems(it argconv.Ptr[cass.Iterator], format func(argconv.Ptr[cass.Iterator]) string) string {
	defer cass.IteratorFree(it)
	var parts []string
	for cass.IteratorNext(it) {
		parts = append(parts, format(it))
	}
	return strings.Join(parts, ", ")
}

func formatScalar(v argconv.Ptr[cass.Value]) string {
	switch cass.ValueType(v) {
	case driver.TypeASCII, driver.TypeText, driver.TypeVarchar:
		s, _ := cass.ValueGetString(v)
		return s
	case driver.TypeTinyInt:
		n, _ := cass.ValueGetInt8(v)
		return fmt.Sprint(n)
	case driver.TypeSmallInt:
		n, _ := cass.ValueGetInt16(v)
		return fmt.Sprint(n)
	case driver.TypeInt:
		n, _ := cass.ValueGetInt32(v)
		return fmt.Sprint(n)
	case driver.TypeDate:
		n, _ := cass.ValueGetUint32(v)
		return fmt.Sprint(n)
	case driver.TypeBigint, driver.TypeCounter, driver.TypeTimestamp, driver.TypeTime:
		n, _ := cass.ValueGetInt64(v)
		return fmt.Sprint(n)
	case driver.TypeFloat:
		n, _ := cass.ValueGetFloat(v)
		return fmt.Sprint(n)
	case driver.TypeDouble:
		n, _ := cass.ValueGetDouble(v)
		return fmt.Sprint(n)
	case driver.TypeBoolean:
		b, _ := cass.ValueGetBool(v)
		return fmt.Sprint(b)
	case driver.TypeUUID, driver.TypeTimeUUID:
		u, _ := cass.ValueGetUUID(v)
		return u.String()
	case driver.TypeInet:
		ip, _ := cass.ValueGetInet(v)
		return ip.String()
	case driver.TypeDuration:
		months, days, nanos, _ := cass.ValueGetDuration(v)
		return fmt.Sprintf("%dmo%dd%dns", months, days, nanos)
	}
	return argconv.MustRef(v).String()
}
