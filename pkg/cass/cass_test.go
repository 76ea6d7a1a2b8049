package cass

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver/drivertest"
)

func TestMain(m *testing.M) {
	Registerer = prometheus.NewRegistry()
	goleak.VerifyTestMain(m)
}

func newTestConnector(t *testing.T) *drivertest.Connector {
	c := drivertest.NewConnector()
	restore := SetConnector(c)
	t.Cleanup(func() {
		Drain()
		restore()
	})
	return c
}

func newTestCluster(t *testing.T) argconv.Ptr[Cluster] {
	cluster := ClusterNew()
	require.Equal(t, casserr.OK, ClusterSetContactPoints(cluster, "127.0.0.1"))
	t.Cleanup(func() { ClusterFree(cluster) })
	return cluster
}

// waitOK waits for f, checks it succeeded and frees it.
func waitOK(t *testing.T, f argconv.Ptr[Future]) {
	t.Helper()
	defer FutureFree(f)
	require.Equal(t, casserr.OK, FutureErrorCode(f), FutureErrorMessage(f))
}

func waitCode(t *testing.T, f argconv.Ptr[Future]) (casserr.Code, string) {
	t.Helper()
	defer FutureFree(f)
	return FutureErrorCode(f), FutureErrorMessage(f)
}

func connectSession(t *testing.T, cluster argconv.Ptr[Cluster]) argconv.Ptr[Session] {
	t.Helper()
	session := SessionNew()
	t.Cleanup(func() { SessionFree(session) })
	waitOK(t, SessionConnect(session, cluster))
	return session
}

// execute runs stmt and returns the result, which the test owns.
func execute(t *testing.T, session argconv.Ptr[Session], stmt argconv.Ptr[Statement]) argconv.Ptr[Result] {
	t.Helper()
	f := SessionExecute(session, stmt)
	defer FutureFree(f)
	require.Equal(t, casserr.OK, FutureErrorCode(f), FutureErrorMessage(f))
	res := FutureGetResult(f)
	require.False(t, res.IsNull())
	t.Cleanup(func() { ResultFree(res) })
	return res
}
