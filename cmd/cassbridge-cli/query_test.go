package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/driver"
	"github.com/grafana/cassbridge/pkg/driver/drivertest"
)

func newTestConnector(t *testing.T) *drivertest.Connector {
	c := drivertest.NewConnector()
	restore := cass.SetConnector(c)
	t.Cleanup(func() {
		cass.Drain()
		restore()
	})
	return c
}

func connectTest(t *testing.T, opts *globalOptions) argconv.Ptr[cass.Session] {
	cluster, session, err := opts.connect()
	require.NoError(t, err)
	t.Cleanup(func() {
		cass.SessionFree(session)
		cass.ClusterFree(cluster)
	})
	return session
}

func TestRunQueryFormatsValues(t *testing.T) {
	connector := newTestConnector(t)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	udt := &driver.DataType{Type: driver.TypeUDT, Keyspace: "ks", Name: "addr", FieldNames: []string{"street"}, Sub: []*driver.DataType{driver.Simple(driver.TypeText)}}

	connector.OnQuery = func(context.Context, *driver.Query) (*driver.Result, error) {
		return &driver.Result{
			Columns: []driver.ColumnSpec{
				{Name: "id", Type: driver.Simple(driver.TypeUUID)},
				{Name: "n", Type: driver.Simple(driver.TypeInt)},
				{Name: "tags", Type: driver.ListOf(driver.Simple(driver.TypeText))},
				{Name: "attrs", Type: driver.MapOf(driver.Simple(driver.TypeText), driver.Simple(driver.TypeBigint))},
				{Name: "home", Type: udt},
				{Name: "missing", Type: driver.Simple(driver.TypeText)},
			},
			Rows: []*driver.Row{{Values: []*driver.Value{
				driver.ScalarOf(driver.TypeUUID, id),
				driver.ScalarOf(driver.TypeInt, int32(7)),
				{Type: driver.ListOf(driver.Simple(driver.TypeText)), Items: []*driver.Value{
					driver.ScalarOf(driver.TypeText, "a"),
					driver.ScalarOf(driver.TypeText, "b"),
				}},
				{Type: driver.MapOf(driver.Simple(driver.TypeText), driver.Simple(driver.TypeBigint)), Pairs: []driver.Pair{
					{driver.ScalarOf(driver.TypeText, "k"), driver.ScalarOf(driver.TypeBigint, int64(1))},
				}},
				{Type: udt, Items: []*driver.Value{driver.ScalarOf(driver.TypeText, "main")}},
				driver.NullOf(driver.Simple(driver.TypeText)),
			}}},
		}, nil
	}

	session := connectTest(t, &globalOptions{hosts: "127.0.0.1", keyspace: "ks"})

	var out bytes.Buffer
	require.NoError(t, runQuery(&out, session, queryOptions{statement: "SELECT * FROM ks.t", consistency: "quorum", pageSize: 10}))

	assert.Contains(t, out.String(), "id")
	assert.Contains(t, out.String(), id.String())
	assert.Contains(t, out.String(), "[a, b]")
	assert.Contains(t, out.String(), "{k: 1}")
	assert.Contains(t, out.String(), "{street: main}")
	assert.Contains(t, out.String(), "null")

	q := connector.Last().Queries()[0]
	assert.Equal(t, driver.Quorum, q.Consistency)
	assert.Equal(t, int32(10), q.PageSize)
}

func TestRunQueryFollowsPages(t *testing.T) {
	connector := newTestConnector(t)
	connector.OnQuery = func(_ context.Context, q *driver.Query) (*driver.Result, error) {
		if len(q.PagingState) == 0 {
			res := drivertest.Rows([]string{"v"}, []string{"first"})
			res.PagingState = []byte{1}
			return res, nil
		}
		return drivertest.Rows([]string{"v"}, []string{"second"}), nil
	}

	session := connectTest(t, &globalOptions{hosts: "127.0.0.1"})

	var out bytes.Buffer
	require.NoError(t, runQuery(&out, session, queryOptions{statement: "SELECT v FROM ks.t", pageSize: 1}))
	assert.Contains(t, out.String(), "first")
	assert.Contains(t, out.String(), "second")
	assert.Len(t, connector.Last().Queries(), 2)

	out.Reset()
	require.NoError(t, runQuery(&out, session, queryOptions{statement: "SELECT v FROM ks.t", pageSize: 1, maxPages: 1}))
	assert.NotContains(t, out.String(), "second")
}

func TestRunQueryRejectsUnknownConsistency(t *testing.T) {
	newTestConnector(t)
	session := connectTest(t, &globalOptions{hosts: "127.0.0.1"})

	err := runQuery(&bytes.Buffer{}, session, queryOptions{statement: "SELECT 1", consistency: "most"})
	assert.ErrorContains(t, err, "unknown consistency")
}

func TestConnectError(t *testing.T) {
	connector := newTestConnector(t)
	connector.ConnectErr = assert.AnError

	_, _, err := (&globalOptions{hosts: "127.0.0.1"}).connect()
	assert.ErrorContains(t, err, "connect")
}
