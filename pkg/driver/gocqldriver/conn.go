package gocqldriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

type conn struct {
	session *gocql.Session
	cfg     *driver.ClusterConfig
	logger  log.Logger

	retryMtx      sync.Mutex
	retryPolicies map[driver.RetryPolicy]gocql.RetryPolicy
}

func newConn(session *gocql.Session, cfg *driver.ClusterConfig, logger log.Logger) *conn {
	return &conn{
		session:       session,
		cfg:           cfg,
		logger:        logger,
		retryPolicies: map[driver.RetryPolicy]gocql.RetryPolicy{},
	}
}

// requestSettings are the options of one request after applying the
// profile over the session defaults and the request over the profile.
type requestSettings struct {
	consistency       driver.Consistency
	serialConsistency driver.Consistency
	timeout           time.Duration
	retry             gocql.RetryPolicy
	speculative       gocql.SpeculativeExecutionPolicy
}

func (c *conn) settings(o *driver.RequestOptions) requestSettings {
	profile := c.cfg.DefaultProfile
	if o.Profile != nil {
		profile = o.Profile.Merge(profile)
	}

	s := requestSettings{
		consistency:       profile.Consistency,
		serialConsistency: profile.SerialConsistency,
		timeout:           profile.RequestTimeout,
	}
	if o.Consistency != driver.ConsistencyUnset {
		s.consistency = o.Consistency
	}
	if o.SerialConsistency != driver.ConsistencyUnset {
		s.serialConsistency = o.SerialConsistency
	}

	retry := profile.RetryPolicy
	if o.RetryPolicy != nil {
		retry = o.RetryPolicy
	}
	if retry != nil {
		s.retry = c.retryPolicy(*retry)
	}
	if sp := profile.Speculative; sp != nil && sp.MaxExecutions > 0 {
		s.speculative = &gocql.SimpleSpeculativeExecution{
			NumAttempts:  sp.MaxExecutions,
			TimeoutDelay: sp.Delay,
		}
	}
	if o.Profile != nil && o.Profile.LoadBalancing != nil {
		level.Debug(c.logger).Log("msg", "host selection is fixed per session, ignoring the profile load balancing", "profile", o.Profile.Name)
	}
	return s
}

// retryPolicy shares one gocql policy per configuration, so logging
// wrappers are not rebuilt for every request.
func (c *conn) retryPolicy(cfg driver.RetryPolicy) gocql.RetryPolicy {
	c.retryMtx.Lock()
	defer c.retryMtx.Unlock()
	if p, ok := c.retryPolicies[cfg]; ok {
		return p
	}
	p := newRetryPolicy(&cfg, c.logger)
	c.retryPolicies[cfg] = p
	return p
}

func (s requestSettings) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// idTracer keeps the tracing id of the request instead of fetching the
// trace events.
type idTracer struct {
	mtx sync.Mutex
	id  []byte
}

func (t *idTracer) Trace(traceID []byte) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.id = append([]byte(nil), traceID...)
}

func (t *idTracer) ID() []byte {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.id
}

func (c *conn) Query(ctx context.Context, q *driver.Query) (*driver.Result, error) {
	s := c.settings(&q.RequestOptions)
	ctx, cancel := s.context(ctx)
	defer cancel()

	if q.Keyspace != "" && q.Keyspace != c.cfg.Keyspace {
		level.Debug(c.logger).Log("msg", "per statement keyspace is not supported by the protocol version in use, qualify table names instead", "keyspace", q.Keyspace)
	}

	gq := c.session.Query(q.Statement, bindValues(q.Values)...).WithContext(ctx)
	if s.consistency != driver.ConsistencyUnset {
		gq = gq.Consistency(gocql.Consistency(s.consistency))
	}
	if s.serialConsistency.IsSerial() {
		gq = gq.SerialConsistency(gocql.SerialConsistency(s.serialConsistency))
	}
	if q.Timestamp != nil {
		gq = gq.WithTimestamp(*q.Timestamp)
	}
	gq = gq.Idempotent(q.Idempotent)
	if s.retry != nil {
		gq = gq.RetryPolicy(s.retry)
	}
	if s.speculative != nil {
		gq = gq.SetSpeculativeExecutionPolicy(s.speculative)
	}
	var tracer *idTracer
	if q.Tracing {
		tracer = &idTracer{}
		gq = gq.Trace(tracer)
	}
	if q.PageSize > 0 {
		gq = gq.PageSize(int(q.PageSize)).PageState(q.PagingState)
	} else {
		gq = gq.PageSize(0)
	}

	iter := gq.Iter()
	res, err := readIter(iter)
	if closeErr := iter.Close(); closeErr != nil {
		return nil, toCassError(errors.Wrap(closeErr, "execute query"))
	}
	if err != nil {
		return nil, err
	}
	if tracer != nil {
		res.TracingID = tracer.ID()
	}
	return res, nil
}

func readIter(iter *gocql.Iter) (*driver.Result, error) {
	cols := iter.Columns()
	res := &driver.Result{
		Columns: make([]driver.ColumnSpec, 0, len(cols)),
	}
	for _, c := range cols {
		res.Columns = append(res.Columns, driver.ColumnSpec{
			Keyspace: c.Keyspace,
			Table:    c.Table,
			Name:     c.Name,
			Type:     dataType(c.TypeInfo),
		})
	}
	if len(cols) == 0 {
		return res, nil
	}

	for {
		dests, err := safeColumnDests(cols)
		if err != nil {
			return nil, err
		}
		if !iter.Scan(dests...) {
			break
		}
		res.Rows = append(res.Rows, &driver.Row{Values: rowValues(cols, dests)})
	}
	if state := iter.PageState(); len(state) > 0 {
		res.PagingState = append([]byte(nil), state...)
	}
	return res, nil
}

func safeColumnDests(cols []gocql.ColumnInfo) (dests []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = casserr.Newf(casserr.LibInvalidValueType, "unsupported column type: %v", r)
		}
	}()
	return columnDests(cols), nil
}

func (c *conn) Batch(ctx context.Context, b *driver.Batch) error {
	s := c.settings(&b.RequestOptions)
	ctx, cancel := s.context(ctx)
	defer cancel()

	gb := c.session.NewBatch(gocql.BatchType(b.Type)).WithContext(ctx)
	for _, e := range b.Entries {
		gb.Entries = append(gb.Entries, gocql.BatchEntry{
			Stmt:       e.Statement,
			Args:       bindValues(e.Values),
			Idempotent: e.Idempotent || b.Idempotent,
		})
	}
	if s.consistency != driver.ConsistencyUnset {
		gb.SetConsistency(gocql.Consistency(s.consistency))
	}
	if s.serialConsistency.IsSerial() {
		gb = gb.SerialConsistency(gocql.SerialConsistency(s.serialConsistency))
	}
	if b.Timestamp != nil {
		gb = gb.WithTimestamp(*b.Timestamp)
	}
	if s.retry != nil {
		gb = gb.RetryPolicy(s.retry)
	}
	if s.speculative != nil {
		gb = gb.SpeculativeExecutionPolicy(s.speculative)
	}
	if b.Tracing {
		gb = gb.Trace(&idTracer{})
	}

	if err := c.session.ExecuteBatch(gb); err != nil {
		return toCassError(errors.Wrap(err, "execute batch"))
	}
	return nil
}

// Prepare has the server prepare the statement. gocql prepares lazily, the
// routing key lookup is the one entry point that forces it.
func (c *conn) Prepare(ctx context.Context, statement, keyspace string) (*driver.PreparedInfo, error) {
	count, names := driver.BindMarkers(statement)
	if keyspace == "" {
		keyspace = c.cfg.Keyspace
	}

	gq := c.session.Query(statement, make([]interface{}, count)...).WithContext(ctx)
	if err := forcePrepare(gq); err != nil {
		return nil, toCassError(errors.Wrap(err, "prepare"))
	}
	return &driver.PreparedInfo{
		Statement: statement,
		Keyspace:  keyspace,
		BindCount: count,
		BindNames: names,
	}, nil
}

func forcePrepare(q *gocql.Query) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("routing key: %v", r)
		}
	}()
	_, err = q.GetRoutingKey()
	return err
}

func (c *conn) Schema(ctx context.Context) (*driver.Schema, error) {
	if !c.cfg.FetchSchema {
		return driver.NewSchema(nil), nil
	}
	return fetchSchema(ctx, c.session, c.logger)
}

func (c *conn) Close() error {
	c.session.Close()
	return nil
}
