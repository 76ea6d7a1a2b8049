// Package drivertest provides a scripted in-memory driver for tests.
package drivertest

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

// QueryHandler answers a query.
type QueryHandler func(ctx context.Context, q *driver.Query) (*driver.Result, error)

// Connector records connections and answers requests with its handlers.
// Handlers may be swapped between requests.
type Connector struct {
	mtx sync.Mutex

	// ConnectErr fails every Connect when set.
	ConnectErr error
	// CloseErr is returned by Conn.Close.
	CloseErr error

	OnQuery   QueryHandler
	OnBatch   func(ctx context.Context, b *driver.Batch) error
	OnPrepare func(ctx context.Context, statement string) error

	SchemaMeta *driver.Schema

	conns []*Conn
}

// NewConnector returns a Connector that answers every query with an empty
// result.
func NewConnector() *Connector {
	return &Connector{}
}

// Connect implements driver.Connector.
func (c *Connector) Connect(_ context.Context, cfg *driver.ClusterConfig) (driver.Conn, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	cfgCopy := *cfg
	conn := &Conn{connector: c, Config: &cfgCopy}
	c.conns = append(c.conns, conn)
	return conn, nil
}

// Conns returns every connection opened so far.
func (c *Connector) Conns() []*Conn {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]*Conn(nil), c.conns...)
}

// Last returns the most recent connection or nil.
func (c *Connector) Last() *Conn {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if len(c.conns) == 0 {
		return nil
	}
	return c.conns[len(c.conns)-1]
}

func (c *Connector) handlers() (QueryHandler, func(context.Context, *driver.Batch) error, func(context.Context, string) error, *driver.Schema) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.OnQuery, c.OnBatch, c.OnPrepare, c.SchemaMeta
}

// Conn is a recorded connection.
type Conn struct {
	connector *Connector
	Config    *driver.ClusterConfig

	mtx      sync.Mutex
	queries  []*driver.Query
	batches  []*driver.Batch
	prepared []string
	closed   bool
}

// Query implements driver.Conn.
func (c *Conn) Query(ctx context.Context, q *driver.Query) (*driver.Result, error) {
	if err := c.record(func() { c.queries = append(c.queries, q) }); err != nil {
		return nil, err
	}
	onQuery, _, _, _ := c.connector.handlers()
	if onQuery == nil {
		return &driver.Result{}, nil
	}
	return onQuery(ctx, q)
}

// Batch implements driver.Conn.
func (c *Conn) Batch(ctx context.Context, b *driver.Batch) error {
	if err := c.record(func() { c.batches = append(c.batches, b) }); err != nil {
		return err
	}
	_, onBatch, _, _ := c.connector.handlers()
	if onBatch == nil {
		return nil
	}
	return onBatch(ctx, b)
}

// Prepare implements driver.Conn.
func (c *Conn) Prepare(ctx context.Context, statement, keyspace string) (*driver.PreparedInfo, error) {
	if err := c.record(func() { c.prepared = append(c.prepared, statement) }); err != nil {
		return nil, err
	}
	_, _, onPrepare, _ := c.connector.handlers()
	if onPrepare != nil {
		if err := onPrepare(ctx, statement); err != nil {
			return nil, err
		}
	}
	count, names := driver.BindMarkers(statement)
	return &driver.PreparedInfo{
		Statement: statement,
		Keyspace:  keyspace,
		BindCount: count,
		BindNames: names,
	}, nil
}

// Schema implements driver.Conn.
func (c *Conn) Schema(context.Context) (*driver.Schema, error) {
	if err := c.record(func() {}); err != nil {
		return nil, err
	}
	_, _, _, schema := c.connector.handlers()
	if schema == nil {
		return driver.NewSchema(nil), nil
	}
	return schema, nil
}

// Close implements driver.Conn.
func (c *Conn) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.closed = true
	return c.connector.CloseErr
}

func (c *Conn) record(fn func()) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.closed {
		return errors.WithStack(casserr.New(casserr.LibNoHostsAvailable, "connection closed"))
	}
	fn()
	return nil
}

// Queries returns the queries executed on c.
func (c *Conn) Queries() []*driver.Query {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]*driver.Query(nil), c.queries...)
}

// Batches returns the batches executed on c.
func (c *Conn) Batches() []*driver.Batch {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]*driver.Batch(nil), c.batches...)
}

// Prepared returns the statements prepared on c.
func (c *Conn) Prepared() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]string(nil), c.prepared...)
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.closed
}

// Rows builds a result with one text column per name, holding the given
// row values.
func Rows(columns []string, rows ...[]string) *driver.Result {
	res := &driver.Result{}
	for _, name := range columns {
		res.Columns = append(res.Columns, driver.ColumnSpec{Keyspace: "ks", Table: "t", Name: name, Type: driver.Simple(driver.TypeText)})
	}
	for _, r := range rows {
		row := &driver.Row{}
		for _, v := range r {
			row.Values = append(row.Values, driver.ScalarOf(driver.TypeText, v))
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}
