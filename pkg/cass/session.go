package cass

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
	"github.com/grafana/cassbridge/pkg/future"
	util_log "github.com/grafana/cassbridge/pkg/util/log"
)

const minSchemaFetchTimeout = 10 * time.Second

// Session is a CassSession. Requests hold the read lock while they run,
// connect, close and free take the write lock.
type Session struct {
	mtx   sync.RWMutex
	inner *sessionInner
}

type preparedKey struct {
	keyspace  string
	statement string
}

// sessionInner is the state of a connected session. It is frozen at
// connect time.
type sessionInner struct {
	conn     driver.Conn
	cfg      driver.ClusterConfig
	profiles map[string]*driver.Profile

	// prepared is nil when caching is disabled.
	prepared *lru.Cache[preparedKey, *driver.PreparedInfo]

	schemaMtx sync.Mutex
	schema    *driver.Schema
}

func newSessionInner(conn driver.Conn, params connectParams) (*sessionInner, error) {
	inner := &sessionInner{
		conn:     conn,
		cfg:      params.cfg,
		profiles: params.profiles,
	}
	if params.preparedCacheSize > 0 {
		cache, err := lru.New[preparedKey, *driver.PreparedInfo](params.preparedCacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create prepared statement cache")
		}
		inner.prepared = cache
	}
	return inner, nil
}

func (i *sessionInner) prepare(ctx context.Context, statement, keyspace string) (*driver.PreparedInfo, error) {
	if keyspace == "" {
		keyspace = i.cfg.Keyspace
	}
	key := preparedKey{keyspace: keyspace, statement: statement}
	if i.prepared != nil {
		if info, ok := i.prepared.Get(key); ok {
			return info, nil
		}
	}
	info, err := i.conn.Prepare(ctx, statement, keyspace)
	if err != nil {
		return nil, err
	}
	if i.prepared != nil {
		i.prepared.Add(key, info)
	}
	return info, nil
}

// schemaSnapshot fetches the current schema. On failure the last snapshot
// is returned.
func (i *sessionInner) schemaSnapshot() *driver.Schema {
	timeout := i.cfg.MaxSchemaWait
	if timeout < minSchemaFetchTimeout {
		timeout = minSchemaFetchTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	schema, err := i.conn.Schema(ctx)

	i.schemaMtx.Lock()
	defer i.schemaMtx.Unlock()
	if err != nil {
		level.Warn(util_log.Logger).Log("msg", "failed to fetch schema metadata", "err", err)
		if i.schema == nil {
			return driver.NewSchema(nil)
		}
		return i.schema
	}
	i.schema = schema
	return schema
}

// Release implements argconv.Releaser: the last reference closes a
// connected session synchronously.
func (s *Session) Release() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.inner == nil {
		return
	}
	if err := s.inner.conn.Close(); err != nil {
		level.Warn(util_log.Logger).Log("msg", "failed to close session", "err", err)
	}
	s.inner = nil
}

// SessionNew implements cass_session_new.
func SessionNew() argconv.Ptr[Session] {
	return argconv.ArcInto(&Session{})
}

// SessionFree implements cass_session_free.
func SessionFree(p argconv.Ptr[Session]) {
	argconv.ArcFree(p)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return getRuntime().tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SessionConnect implements cass_session_connect.
func SessionConnect(session argconv.Ptr[Session], cluster argconv.Ptr[Cluster]) argconv.Ptr[Future] {
	return sessionConnect(session, cluster, "")
}

// SessionConnectKeyspace implements cass_session_connect_keyspace.
func SessionConnectKeyspace(session argconv.Ptr[Session], cluster argconv.Ptr[Cluster], keyspace string) argconv.Ptr[Future] {
	return sessionConnect(session, cluster, keyspace)
}

func sessionConnect(session argconv.Ptr[Session], cluster argconv.Ptr[Cluster], keyspace string) argconv.Ptr[Future] {
	s := argconv.MustArc(session)
	params := argconv.MustBox(cluster).params()
	if keyspace != "" {
		params.cfg.Keyspace = keyspace
	}
	r := getRuntime()
	connector := r.getConnector()

	return newFuture(future.Make(r.exec, func(ctx context.Context) (_ outcome, err error) {
		ctx, span := startSpan(ctx, "cass.SessionConnect")
		defer func() { endSpan(span, err) }()
		span.SetAttributes(attribute.StringSlice("db.cassandra.contact_points", params.cfg.ContactPoints))

		s.mtx.Lock()
		defer s.mtx.Unlock()
		if s.inner != nil {
			return outcome{}, casserr.New(casserr.LibUnableToConnect, "Already connecting, closing, or connected")
		}

		conn, err := connector.Connect(ctx, &params.cfg)
		if err != nil {
			return outcome{}, err
		}
		inner, err := newSessionInner(conn, params)
		if err != nil {
			_ = conn.Close()
			return outcome{}, err
		}
		s.inner = inner
		level.Debug(util_log.Logger).Log("msg", "session connected", "client_id", params.cfg.ClientID, "keyspace", params.cfg.Keyspace)
		return outcome{}, nil
	}))
}

// SessionClose implements cass_session_close.
func SessionClose(session argconv.Ptr[Session]) argconv.Ptr[Future] {
	s := argconv.MustArc(session)
	r := getRuntime()
	return newFuture(future.Make(r.exec, func(ctx context.Context) (_ outcome, err error) {
		_, span := startSpan(ctx, "cass.SessionClose")
		defer func() { endSpan(span, err) }()

		s.mtx.Lock()
		defer s.mtx.Unlock()
		if s.inner == nil {
			return outcome{}, casserr.New(casserr.LibUnableToClose, "Already closing or closed")
		}
		conn := s.inner.conn
		s.inner = nil
		if err := conn.Close(); err != nil {
			return outcome{}, errors.Wrap(err, "close session")
		}
		return outcome{}, nil
	}))
}

func errNotConnected() error {
	return casserr.New(casserr.LibNoHostsAvailable, "Session is not connected")
}

// SessionExecute implements cass_session_execute. The statement is
// captured before the call returns, later changes to it do not affect this
// execution.
func SessionExecute(session argconv.Ptr[Session], stmt argconv.Ptr[Statement]) argconv.Ptr[Future] {
	s := argconv.MustArc(session)
	st := argconv.MustBox(stmt)
	snap := st.state.Snapshot()
	r := getRuntime()

	return newFuture(future.MakeWithTimeout(r.exec, st.requestTimeout, func(ctx context.Context) (_ outcome, err error) {
		defer snap.Release()
		ctx, span := startSpan(ctx, "cass.SessionExecute")
		defer func() { endSpan(span, err) }()

		s.mtx.RLock()
		defer s.mtx.RUnlock()
		if s.inner == nil {
			return outcome{}, errNotConnected()
		}
		if p := snap.Load().profile; p != nil {
			prof, err := p.resolve(s.inner)
			if err != nil {
				return outcome{}, err
			}
			if snap.Load().opts.Profile != prof {
				snap.Mutate(func(st *statementState) { st.opts.Profile = prof })
			}
		}

		q := snap.Load().request()
		span.SetAttributes(
			attribute.String("db.statement", q.Statement),
			attribute.Bool("db.cassandra.prepared", q.Prepared),
		)
		res, err := s.inner.conn.Query(ctx, q)
		if err != nil {
			return outcome{}, err
		}
		return outcome{result: res}, nil
	}))
}

// SessionExecuteBatch implements cass_session_execute_batch.
func SessionExecuteBatch(session argconv.Ptr[Session], batch argconv.Ptr[Batch]) argconv.Ptr[Future] {
	s := argconv.MustArc(session)
	b := argconv.MustBox(batch)
	snap := b.state.Snapshot()
	r := getRuntime()

	return newFuture(future.MakeWithTimeout(r.exec, b.requestTimeout, func(ctx context.Context) (_ outcome, err error) {
		defer snap.Release()
		ctx, span := startSpan(ctx, "cass.SessionExecuteBatch")
		defer func() { endSpan(span, err) }()

		s.mtx.RLock()
		defer s.mtx.RUnlock()
		if s.inner == nil {
			return outcome{}, errNotConnected()
		}
		if p := snap.Load().profile; p != nil {
			prof, err := p.resolve(s.inner)
			if err != nil {
				return outcome{}, err
			}
			if snap.Load().opts.Profile != prof {
				snap.Mutate(func(st *batchState) { st.opts.Profile = prof })
			}
		}

		req := snap.Load().request()
		span.SetAttributes(attribute.Int("db.cassandra.batch.size", len(req.Entries)))
		if err := s.inner.conn.Batch(ctx, req); err != nil {
			return outcome{}, err
		}
		return outcome{result: &Result{}}, nil
	}))
}

// SessionPrepare implements cass_session_prepare.
func SessionPrepare(session argconv.Ptr[Session], query string) argconv.Ptr[Future] {
	return sessionPrepare(argconv.MustArc(session), query, "")
}

// SessionPrepareFromExisting implements cass_session_prepare_from_existing.
// A statement that is already bound to a prepared statement resolves to it
// without a round trip.
func SessionPrepareFromExisting(session argconv.Ptr[Session], stmt argconv.Ptr[Statement]) argconv.Ptr[Future] {
	s := argconv.MustArc(session)
	st := argconv.MustBox(stmt).state.Load()
	if st.prepared != nil {
		return newFuture(future.Ready(outcome{prepared: st.prepared}, nil))
	}
	return sessionPrepare(s, st.query, st.keyspace)
}

func sessionPrepare(s *Session, query, keyspace string) argconv.Ptr[Future] {
	r := getRuntime()
	return newFuture(future.Make(r.exec, func(ctx context.Context) (_ outcome, err error) {
		ctx, span := startSpan(ctx, "cass.SessionPrepare")
		defer func() { endSpan(span, err) }()
		span.SetAttributes(attribute.String("db.statement", query))

		s.mtx.RLock()
		defer s.mtx.RUnlock()
		if s.inner == nil {
			return outcome{}, errNotConnected()
		}
		info, err := s.inner.prepare(ctx, query, keyspace)
		if err != nil {
			return outcome{}, err
		}
		return outcome{prepared: &Prepared{info: info}}, nil
	}))
}

// SessionGetClientID implements cass_session_get_client_id. It is the nil
// UUID while the session is not connected.
func SessionGetClientID(session argconv.Ptr[Session]) uuid.UUID {
	s := argconv.MustArc(session)
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.inner == nil {
		return uuid.Nil
	}
	return s.inner.cfg.ClientID
}

// SessionGetSchemaMeta implements cass_session_get_schema_meta. It blocks
// while the schema is fetched and yields null when not connected.
func SessionGetSchemaMeta(session argconv.Ptr[Session]) argconv.Ptr[SchemaMeta] {
	s := argconv.MustArc(session)
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.inner == nil {
		return argconv.Null[SchemaMeta]()
	}
	return argconv.BoxInto(&SchemaMeta{schema: s.inner.schemaSnapshot()})
}
