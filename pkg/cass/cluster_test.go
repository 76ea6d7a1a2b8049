package cass

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

func TestClusterValidation(t *testing.T) {
	cluster := newTestCluster(t)
	profile := ExecutionProfileNew()
	defer ExecutionProfileFree(profile)

	for _, tc := range []struct {
		name string
		call func() casserr.Code
		want casserr.Code
	}{
		{"port zero", func() casserr.Code { return ClusterSetPort(cluster, 0) }, casserr.LibBadParams},
		{"port", func() casserr.Code { return ClusterSetPort(cluster, 19042) }, casserr.OK},
		{"protocol v3", func() casserr.Code { return ClusterSetProtocolVersion(cluster, 3) }, casserr.LibBadParams},
		{"protocol v4", func() casserr.Code { return ClusterSetProtocolVersion(cluster, 4) }, casserr.OK},
		{"beta protocol", func() casserr.Code { return ClusterSetUseBetaProtocolVersion(cluster, true) }, casserr.LibBadParams},
		{"consistency", func() casserr.Code { return ClusterSetConsistency(cluster, driver.Consistency(42)) }, casserr.LibBadParams},
		{"serial consistency", func() casserr.Code { return ClusterSetSerialConsistency(cluster, driver.Quorum) }, casserr.LibBadParams},
		{"dc aware without dc", func() casserr.Code { return ClusterSetLoadBalanceDCAware(cluster, "", 0, false) }, casserr.LibBadParams},
		{"dc aware deprecated", func() casserr.Code { return ClusterSetLoadBalanceDCAware(cluster, "dc1", 2, false) }, casserr.LibBadParams},
		{"dc aware", func() casserr.Code { return ClusterSetLoadBalanceDCAware(cluster, "dc1", 0, false) }, casserr.OK},
		{"reconnect base", func() casserr.Code { return ClusterSetExponentialReconnect(cluster, 1, 100) }, casserr.LibBadParams},
		{"reconnect max below base", func() casserr.Code { return ClusterSetExponentialReconnect(cluster, 100, 50) }, casserr.LibBadParams},
		{"reconnect", func() casserr.Code { return ClusterSetExponentialReconnect(cluster, 100, 5000) }, casserr.OK},
		{"speculative negative", func() casserr.Code { return ClusterSetConstantSpeculativeExecutionPolicy(cluster, -1, 2) }, casserr.LibBadParams},
		{"speculative", func() casserr.Code { return ClusterSetConstantSpeculativeExecutionPolicy(cluster, 10, 2) }, casserr.OK},
		{"profile without name", func() casserr.Code { return ClusterSetExecutionProfile(cluster, "", profile) }, casserr.LibBadParams},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.call())
		})
	}
}

func TestClusterConfigReachesConnector(t *testing.T) {
	connector := newTestConnector(t)
	cluster := newTestCluster(t)
	require.Equal(t, casserr.OK, ClusterSetContactPoints(cluster, " 10.0.0.2 ,10.0.0.3"))
	ClusterSetCredentials(cluster, "cassandra", "secret")
	ClusterSetCompression(cluster, CompressionLZ4)
	ClusterSetTCPKeepalive(cluster, true, 30)
	ClusterSetRequestTimeout(cluster, 0)
	ClusterSetLoadBalanceRoundRobin(cluster)
	ClusterSetTokenAwareRoutingShuffleReplicas(cluster, true)
	rp := RetryPolicyLoggingNew(RetryPolicyFallthroughNew())
	ClusterSetRetryPolicy(cluster, rp)
	RetryPolicyFree(rp)
	require.Equal(t, casserr.OK, ClusterSetExponentialReconnect(cluster, 100, 5000))

	connectSession(t, cluster)
	cfg := connector.Last().Config
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.2", "10.0.0.3"}, cfg.ContactPoints)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, driver.CompressionLZ4, cfg.Compression)
	assert.Equal(t, 30*time.Second, cfg.TCPKeepaliveDelay)
	assert.Equal(t, time.Duration(0), cfg.DefaultProfile.RequestTimeout)
	assert.Equal(t, driver.RoundRobin, cfg.DefaultProfile.LoadBalancing.Kind)
	assert.True(t, cfg.DefaultProfile.LoadBalancing.ShuffleReplicas)
	assert.Equal(t, &driver.RetryPolicy{Kind: driver.RetryFallthrough, Logging: true}, cfg.DefaultProfile.RetryPolicy)
	assert.True(t, cfg.Reconnect.Exponential)

	require.Equal(t, casserr.OK, ClusterSetContactPoints(cluster, ""))
	connectSession(t, cluster)
	assert.Empty(t, connector.Last().Config.ContactPoints)
}

func TestStatementValidation(t *testing.T) {
	stmt := StatementNew("SELECT * FROM ks.t WHERE k = ?", 1)
	defer StatementFree(stmt)

	assert.Equal(t, casserr.LibBadParams, StatementSetConsistency(stmt, driver.ConsistencyUnset))
	assert.Equal(t, casserr.LibBadParams, StatementSetSerialConsistency(stmt, driver.One))
	assert.Equal(t, casserr.OK, StatementSetSerialConsistency(stmt, driver.LocalSerial))
	assert.Equal(t, casserr.LibIndexOutOfBounds, StatementBindNull(stmt, 1))
	assert.Equal(t, casserr.LibIndexOutOfBounds, StatementBindNull(stmt, -1))
	assert.Equal(t, casserr.OK, StatementResetParameters(stmt, 2))
	assert.Equal(t, casserr.OK, StatementBindNull(stmt, 1))
}

func TestStatementMutationClonesOnlyWhenShared(t *testing.T) {
	stmt := StatementNew("SELECT * FROM ks.t", 0)
	defer StatementFree(stmt)
	s := argconv.MustBox(stmt)

	before := s.state.Inner()
	require.Equal(t, casserr.OK, StatementSetIsIdempotent(stmt, true))
	assert.Same(t, before, s.state.Inner(), "unique state is changed in place")

	snap := s.state.Snapshot()
	require.Equal(t, casserr.OK, StatementSetIsIdempotent(stmt, false))
	assert.NotSame(t, snap.Inner(), s.state.Inner())
	assert.True(t, snap.Load().opts.Idempotent)
	snap.Release()
}

func TestVarintEncoding(t *testing.T) {
	for _, tc := range []struct {
		n    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x00, 0x80}},
		{-1, []byte{0xff}},
		{-128, []byte{0x80}},
		{-129, []byte{0xff, 0x7f}},
		{-32768, []byte{0x80, 0x00}},
		{-32769, []byte{0xff, 0x7f, 0xff}},
	} {
		n := big.NewInt(tc.n)
		got := bigToVarint(n)
		assert.Equal(t, tc.want, got, "%d", tc.n)
		assert.Zero(t, n.Cmp(varintToBig(got)), "%d", tc.n)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 9042, cfg.Port)
	assert.Equal(t, "LOCAL_ONE", cfg.Consistency)

	path := filepath.Join(t.TempDir(), "cassbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9142
consistency: quorum
request_timeout: 2s
compression: lz4
prepared_cache_size: 0
`), 0o600))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9142, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)

	cc := cfg.clusterConfig()
	assert.Equal(t, driver.Quorum, cc.DefaultProfile.Consistency)
	assert.Equal(t, driver.CompressionLZ4, cc.Compression)

	require.NoError(t, os.WriteFile(path, []byte("compression: zstd\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("unknown_field: 1\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLogCallback(t *testing.T) {
	var got []*LogMessage
	LogSetCallback(func(msg *LogMessage) { got = append(got, msg) })
	LogSetLevel(LogInfo)
	defer func() {
		LogSetCallback(nil)
		LogSetLevel(LogWarn)
	}()

	stmt := StatementNew("SELECT 1", 0)
	StatementFree(stmt)
	StatementFree(stmt)

	require.Len(t, got, 1)
	assert.Equal(t, LogWarn, got[0].Severity)
	assert.Contains(t, got[0].Message, "pointer contract violation")
}
