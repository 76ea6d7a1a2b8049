package cass

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
	"github.com/grafana/cassbridge/pkg/driver/drivertest"
)

func TestExecuteWithoutConnect(t *testing.T) {
	newTestConnector(t)
	session := SessionNew()
	defer SessionFree(session)
	stmt := StatementNew("SELECT now() FROM system.local", 0)
	defer StatementFree(stmt)

	f := SessionExecute(session, stmt)
	defer FutureFree(f)
	assert.Equal(t, casserr.LibNoHostsAvailable, FutureErrorCode(f))
	assert.Equal(t, "Session is not connected", FutureErrorMessage(f))
	assert.True(t, FutureGetResult(f).IsNull())
}

func TestConnectTwiceAndCloseTwice(t *testing.T) {
	connector := newTestConnector(t)
	cluster := newTestCluster(t)
	session := connectSession(t, cluster)

	code, msg := waitCode(t, SessionConnect(session, cluster))
	assert.Equal(t, casserr.LibUnableToConnect, code)
	assert.Equal(t, "Already connecting, closing, or connected", msg)
	require.Len(t, connector.Conns(), 1)

	waitOK(t, SessionClose(session))
	assert.True(t, connector.Last().Closed())

	code, _ = waitCode(t, SessionClose(session))
	assert.Equal(t, casserr.LibUnableToClose, code)
}

func TestConnectError(t *testing.T) {
	connector := newTestConnector(t)
	connector.ConnectErr = casserr.New(casserr.LibUnableToConnect, "no route")
	cluster := newTestCluster(t)
	session := SessionNew()
	defer SessionFree(session)

	code, msg := waitCode(t, SessionConnect(session, cluster))
	assert.Equal(t, casserr.LibUnableToConnect, code)
	assert.Equal(t, "no route", msg)
	assert.Equal(t, uuid.Nil, SessionGetClientID(session))
}

func TestSessionFreeClosesConnection(t *testing.T) {
	connector := newTestConnector(t)
	cluster := newTestCluster(t)
	session := SessionNew()
	waitOK(t, SessionConnect(session, cluster))

	clone := argconv.ArcClone(session)
	SessionFree(session)
	assert.False(t, connector.Last().Closed())
	SessionFree(clone)
	assert.True(t, connector.Last().Closed())
}

func TestConnectKeyspace(t *testing.T) {
	connector := newTestConnector(t)
	cluster := newTestCluster(t)
	session := SessionNew()
	defer SessionFree(session)

	waitOK(t, SessionConnectKeyspace(session, cluster, "metrics"))
	assert.Equal(t, "metrics", connector.Last().Config.Keyspace)
}

func TestClientID(t *testing.T) {
	newTestConnector(t)

	cluster := newTestCluster(t)
	session := connectSession(t, cluster)
	assert.NotEqual(t, uuid.Nil, SessionGetClientID(session))

	id := uuid.New()
	ClusterSetClientID(cluster, id)
	other := connectSession(t, cluster)
	assert.Equal(t, id, SessionGetClientID(other))
}

func TestExecutionProfileScenario(t *testing.T) {
	connector := newTestConnector(t)
	cluster := newTestCluster(t)
	stmt := StatementNew("SELECT * FROM ks.t", 0)
	defer StatementFree(stmt)
	require.Equal(t, casserr.OK, StatementSetExecutionProfile(stmt, "analytics"))

	// Unknown profile.
	session := connectSession(t, cluster)
	code, msg := waitCode(t, SessionExecute(session, stmt))
	assert.Equal(t, casserr.LibExecutionProfileInvalid, code)
	assert.Contains(t, msg, "analytics")
	waitOK(t, SessionClose(session))

	// Registered on the cluster, picked up by the next connect.
	profile := ExecutionProfileNew()
	defer ExecutionProfileFree(profile)
	require.Equal(t, casserr.OK, ExecutionProfileSetConsistency(profile, driver.Quorum))
	require.Equal(t, casserr.OK, ExecutionProfileSetRequestTimeout(profile, 500))
	require.Equal(t, casserr.OK, ClusterSetExecutionProfile(cluster, "analytics", profile))

	waitOK(t, SessionConnect(session, cluster))
	execute(t, session, stmt)
	execute(t, session, stmt)

	queries := connector.Last().Queries()
	require.Len(t, queries, 2)
	for _, q := range queries {
		require.NotNil(t, q.Profile)
		assert.Equal(t, "analytics", q.Profile.Name)
		assert.Equal(t, driver.Quorum, q.Profile.Consistency)
		assert.Equal(t, 500*time.Millisecond, q.Profile.RequestTimeout)
		assert.NotNil(t, q.Profile.LoadBalancing, "inherited from the default profile")
	}
	assert.Same(t, queries[0].Profile, queries[1].Profile)
}

func TestExecutionProfileReset(t *testing.T) {
	connector := newTestConnector(t)
	cluster := newTestCluster(t)
	profile := ExecutionProfileNew()
	defer ExecutionProfileFree(profile)
	require.Equal(t, casserr.OK, ClusterSetExecutionProfile(cluster, "p", profile))
	session := connectSession(t, cluster)

	stmt := StatementNew("SELECT * FROM ks.t", 0)
	defer StatementFree(stmt)
	require.Equal(t, casserr.OK, StatementSetExecutionProfile(stmt, "p"))
	execute(t, session, stmt)
	require.Equal(t, casserr.OK, StatementSetExecutionProfile(stmt, ""))
	execute(t, session, stmt)

	queries := connector.Last().Queries()
	require.Len(t, queries, 2)
	assert.NotNil(t, queries[0].Profile)
	assert.Nil(t, queries[1].Profile)
}

func TestExecuteCapturesStatement(t *testing.T) {
	connector := newTestConnector(t)
	started, release := make(chan struct{}), make(chan struct{})
	connector.OnQuery = func(_ context.Context, q *driver.Query) (*driver.Result, error) {
		close(started)
		<-release
		return &driver.Result{}, nil
	}
	session := connectSession(t, newTestCluster(t))

	stmt := StatementNew("INSERT INTO ks.t (k) VALUES (?)", 1)
	defer StatementFree(stmt)
	require.Equal(t, casserr.OK, StatementBindInt32(stmt, 0, 1))

	f := SessionExecute(session, stmt)
	defer FutureFree(f)
	<-started
	require.Equal(t, casserr.OK, StatementBindInt32(stmt, 0, 2))
	close(release)
	require.Equal(t, casserr.OK, FutureErrorCode(f))

	assert.Equal(t, []any{int32(1)}, connector.Last().Queries()[0].Values)
}

func TestStatementRequestTimeout(t *testing.T) {
	connector := newTestConnector(t)
	release := make(chan struct{})
	connector.OnQuery = func(context.Context, *driver.Query) (*driver.Result, error) {
		<-release
		return &driver.Result{}, nil
	}
	session := connectSession(t, newTestCluster(t))
	stmt := StatementNew("SELECT * FROM ks.t", 0)
	defer StatementFree(stmt)
	require.Equal(t, casserr.OK, StatementSetRequestTimeout(stmt, 20))

	code, _ := waitCode(t, SessionExecute(session, stmt))
	assert.Equal(t, casserr.LibRequestTimedOut, code)
	close(release)
}

func TestFutureWaitTimedHugeTimeout(t *testing.T) {
	connector := newTestConnector(t)
	release := make(chan struct{})
	connector.OnQuery = func(context.Context, *driver.Query) (*driver.Result, error) {
		<-release
		return &driver.Result{}, nil
	}
	session := connectSession(t, newTestCluster(t))
	stmt := StatementNew("SELECT * FROM ks.t", 0)
	defer StatementFree(stmt)

	f := SessionExecute(session, stmt)
	defer FutureFree(f)
	ready := make(chan bool, 1)
	go func() { ready <- FutureWaitTimed(f, math.MaxUint64) }()

	select {
	case <-ready:
		t.Fatal("wait returned before the future resolved")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case ok := <-ready:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not return")
	}
	assert.Equal(t, casserr.OK, FutureErrorCode(f))
}

func TestFutureCallback(t *testing.T) {
	newTestConnector(t)
	session := connectSession(t, newTestCluster(t))
	stmt := StatementNew("SELECT * FROM ks.t", 0)
	defer StatementFree(stmt)

	f := SessionExecute(session, stmt)
	defer FutureFree(f)
	done := make(chan struct{})
	require.Equal(t, casserr.OK, FutureSetCallback(f, func() { close(done) }))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback did not run")
	}
	assert.True(t, FutureReady(f))
	assert.True(t, FutureWaitTimed(f, 0))
	assert.Equal(t, casserr.LibCallbackAlreadySet, FutureSetCallback(f, func() {}))
}

func TestServerErrorResult(t *testing.T) {
	connector := newTestConnector(t)
	connector.OnQuery = func(context.Context, *driver.Query) (*driver.Result, error) {
		return nil, &casserr.Error{
			Code:    casserr.ServerWriteTimeout,
			Message: "Operation timed out - received only 1 responses.",
			Result: &casserr.ErrorResult{
				Code:              casserr.ServerWriteTimeout,
				Consistency:       uint16(driver.Quorum),
				ResponsesReceived: 1,
				ResponsesRequired: 2,
				WriteType:         "SIMPLE",
			},
		}
	}
	session := connectSession(t, newTestCluster(t))
	stmt := StatementNew("INSERT INTO ks.t (k) VALUES (1)", 0)
	defer StatementFree(stmt)

	f := SessionExecute(session, stmt)
	defer FutureFree(f)
	assert.Equal(t, casserr.ServerWriteTimeout, FutureErrorCode(f))
	assert.True(t, FutureGetResult(f).IsNull())

	er := FutureGetErrorResult(f)
	require.False(t, er.IsNull())
	defer ErrorResultFree(er)
	assert.Equal(t, er, FutureGetErrorResult(f), "same error result, one more reference")
	ErrorResultFree(er)

	assert.Equal(t, casserr.ServerWriteTimeout, ErrorResultCode(er))
	assert.Equal(t, driver.Quorum, ErrorResultConsistency(er))
	assert.Equal(t, int32(1), ErrorResultResponsesReceived(er))
	assert.Equal(t, int32(2), ErrorResultResponsesRequired(er))
	assert.False(t, ErrorResultDataPresent(er))
	wt, code := ErrorResultWriteType(er)
	assert.Equal(t, casserr.OK, code)
	assert.Equal(t, "SIMPLE", wt)
}

func TestPrepareAndBind(t *testing.T) {
	connector := newTestConnector(t)
	session := connectSession(t, newTestCluster(t))

	f := SessionPrepare(session, "INSERT INTO ks.t (k, v) VALUES (?, ?)")
	require.Equal(t, casserr.OK, FutureErrorCode(f))
	prepared := FutureGetPrepared(f)
	FutureFree(f)
	require.False(t, prepared.IsNull())
	defer PreparedFree(prepared)

	stmt := PreparedBind(prepared)
	defer StatementFree(stmt)
	assert.Equal(t, casserr.LibIndexOutOfBounds, StatementBindString(stmt, 2, "x"))
	require.Equal(t, casserr.OK, StatementBindInt32(stmt, 0, 7))
	execute(t, session, stmt)

	q := connector.Last().Queries()[0]
	assert.True(t, q.Prepared)
	assert.Equal(t, []any{int32(7), driver.Unset}, q.Values)

	// Already prepared: no round trip, same handle.
	f = SessionPrepareFromExisting(session, stmt)
	assert.Equal(t, prepared, FutureGetPrepared(f))
	FutureFree(f)
	PreparedFree(prepared)

	// Cached by the session.
	waitOK(t, SessionPrepare(session, "INSERT INTO ks.t (k, v) VALUES (?, ?)"))
	assert.Len(t, connector.Last().Prepared(), 1)
}

func TestPrepareFromSimpleStatement(t *testing.T) {
	connector := newTestConnector(t)
	session := connectSession(t, newTestCluster(t))
	stmt := StatementNew("SELECT v FROM ks.t WHERE k = ?", 1)
	defer StatementFree(stmt)

	f := SessionPrepareFromExisting(session, stmt)
	defer FutureFree(f)
	require.Equal(t, casserr.OK, FutureErrorCode(f))
	prepared := FutureGetPrepared(f)
	defer PreparedFree(prepared)
	assert.Equal(t, []string{"SELECT v FROM ks.t WHERE k = ?"}, connector.Last().Prepared())

	name, ok := PreparedParameterName(prepared, 0)
	assert.True(t, ok)
	assert.Equal(t, "", name)
}

func TestExecuteBatch(t *testing.T) {
	connector := newTestConnector(t)
	session := connectSession(t, newTestCluster(t))

	assert.True(t, BatchNew(driver.BatchType(7)).IsNull())
	batch := BatchNew(driver.UnloggedBatch)
	defer BatchFree(batch)

	stmt := StatementNew("INSERT INTO ks.t (k) VALUES (?)", 1)
	defer StatementFree(stmt)
	for i := int32(0); i < 3; i++ {
		require.Equal(t, casserr.OK, StatementBindInt32(stmt, 0, i))
		require.Equal(t, casserr.OK, BatchAddStatement(batch, stmt))
	}
	require.Equal(t, casserr.OK, BatchSetConsistency(batch, driver.LocalQuorum))
	assert.Equal(t, casserr.LibBadParams, BatchSetSerialConsistency(batch, driver.One))

	f := SessionExecuteBatch(session, batch)
	defer FutureFree(f)
	require.Equal(t, casserr.OK, FutureErrorCode(f))
	res := FutureGetResult(f)
	defer ResultFree(res)
	assert.Equal(t, 0, ResultRowCount(res))

	b := connector.Last().Batches()[0]
	assert.Equal(t, driver.UnloggedBatch, b.Type)
	assert.Equal(t, driver.LocalQuorum, b.Consistency)
	require.Len(t, b.Entries, 3)
	for i, e := range b.Entries {
		assert.Equal(t, []any{int32(i)}, e.Values)
	}
}

func TestPagingState(t *testing.T) {
	connector := newTestConnector(t)
	connector.OnQuery = func(_ context.Context, q *driver.Query) (*driver.Result, error) {
		res := drivertest.Rows([]string{"k"}, []string{"a"})
		if len(q.PagingState) == 0 {
			res.PagingState = []byte{0xca, 0xfe}
		}
		return res, nil
	}
	session := connectSession(t, newTestCluster(t))
	stmt := StatementNew("SELECT k FROM ks.t", 0)
	defer StatementFree(stmt)
	require.Equal(t, casserr.OK, StatementSetPagingSize(stmt, 1))

	res := execute(t, session, stmt)
	assert.True(t, ResultHasMorePages(res))
	token, code := ResultPagingStateToken(res)
	require.Equal(t, casserr.OK, code)
	assert.Equal(t, []byte{0xca, 0xfe}, token)

	require.Equal(t, casserr.OK, StatementSetPagingState(stmt, res))
	last := execute(t, session, stmt)
	assert.False(t, ResultHasMorePages(last))
	_, code = ResultPagingStateToken(last)
	assert.Equal(t, casserr.LibNoPagingState, code)

	queries := connector.Last().Queries()
	assert.Equal(t, int32(1), queries[1].PageSize)
	assert.Equal(t, []byte{0xca, 0xfe}, queries[1].PagingState)
}

func TestTracingID(t *testing.T) {
	connector := newTestConnector(t)
	id := uuid.New()
	connector.OnQuery = func(_ context.Context, q *driver.Query) (*driver.Result, error) {
		if !q.Tracing {
			return &driver.Result{}, nil
		}
		return &driver.Result{TracingID: id[:]}, nil
	}
	session := connectSession(t, newTestCluster(t))
	stmt := StatementNew("SELECT * FROM ks.t", 0)
	defer StatementFree(stmt)

	f := SessionExecute(session, stmt)
	_, code := FutureTracingID(f)
	assert.Equal(t, casserr.LibNoTracingID, code)
	FutureFree(f)

	require.Equal(t, casserr.OK, StatementSetTracing(stmt, true))
	f = SessionExecute(session, stmt)
	defer FutureFree(f)
	got, code := FutureTracingID(f)
	assert.Equal(t, casserr.OK, code)
	assert.Equal(t, id, got)
}
