package cass

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

// Cluster is a CassCluster: the configuration a session connects with.
type Cluster struct {
	cfg      driver.ClusterConfig
	useBeta  bool
	profiles map[string]*driver.Profile

	preparedCacheSize int
}

// ClusterNew implements cass_cluster_new. Defaults come from the flag
// defaults and the optional CASSBRIDGE_CONFIG_FILE.
func ClusterNew() argconv.Ptr[Cluster] {
	defaults := Defaults()
	return argconv.BoxInto(&Cluster{
		cfg:               defaults.clusterConfig(),
		profiles:          map[string]*driver.Profile{},
		preparedCacheSize: defaults.PreparedCacheSize,
	})
}

// ClusterFree implements cass_cluster_free.
func ClusterFree(p argconv.Ptr[Cluster]) {
	argconv.BoxFree(p)
}

// ClusterSetContactPoints implements cass_cluster_set_contact_points. The
// comma separated hosts are appended, an empty list clears them.
func ClusterSetContactPoints(p argconv.Ptr[Cluster], contactPoints string) casserr.Code {
	c := argconv.MustBox(p)
	if strings.TrimSpace(contactPoints) == "" {
		c.cfg.ContactPoints = nil
		return casserr.OK
	}
	for _, h := range strings.Split(contactPoints, ",") {
		if h = strings.TrimSpace(h); h != "" {
			c.cfg.ContactPoints = append(c.cfg.ContactPoints, h)
		}
	}
	return casserr.OK
}

// ClusterSetPort implements cass_cluster_set_port.
func ClusterSetPort(p argconv.Ptr[Cluster], port int) casserr.Code {
	c := argconv.MustBox(p)
	if port <= 0 {
		return casserr.LibBadParams
	}
	c.cfg.Port = port
	return casserr.OK
}

// ClusterSetCredentials implements cass_cluster_set_credentials.
func ClusterSetCredentials(p argconv.Ptr[Cluster], username, password string) {
	c := argconv.MustBox(p)
	c.cfg.Username, c.cfg.Password = username, password
}

// ClusterSetConsistency implements cass_cluster_set_consistency.
func ClusterSetConsistency(p argconv.Ptr[Cluster], consistency driver.Consistency) casserr.Code {
	return setConsistency(&argconv.MustBox(p).cfg.DefaultProfile, consistency)
}

// ClusterSetSerialConsistency implements cass_cluster_set_serial_consistency.
func ClusterSetSerialConsistency(p argconv.Ptr[Cluster], consistency driver.Consistency) casserr.Code {
	return setSerialConsistency(&argconv.MustBox(p).cfg.DefaultProfile, consistency)
}

// ClusterSetRequestTimeout implements cass_cluster_set_request_timeout.
// 0 disables the timeout.
func ClusterSetRequestTimeout(p argconv.Ptr[Cluster], timeoutMs uint) {
	argconv.MustBox(p).cfg.DefaultProfile.RequestTimeout = time.Duration(timeoutMs) * time.Millisecond
}

// ClusterSetConnectTimeout implements cass_cluster_set_connect_timeout.
func ClusterSetConnectTimeout(p argconv.Ptr[Cluster], timeoutMs uint) {
	argconv.MustBox(p).cfg.ConnectTimeout = time.Duration(timeoutMs) * time.Millisecond
}

// ClusterSetConnectionHeartbeatInterval implements
// cass_cluster_set_connection_heartbeat_interval. 0 disables heartbeats.
func ClusterSetConnectionHeartbeatInterval(p argconv.Ptr[Cluster], intervalSecs uint) {
	argconv.MustBox(p).cfg.HeartbeatInterval = time.Duration(intervalSecs) * time.Second
}

// ClusterSetConnectionIdleTimeout implements
// cass_cluster_set_connection_idle_timeout. 0 disables it.
func ClusterSetConnectionIdleTimeout(p argconv.Ptr[Cluster], timeoutSecs uint) {
	argconv.MustBox(p).cfg.IdleTimeout = time.Duration(timeoutSecs) * time.Second
}

// ClusterSetTCPKeepalive implements cass_cluster_set_tcp_keepalive.
func ClusterSetTCPKeepalive(p argconv.Ptr[Cluster], enabled bool, delaySecs uint) {
	c := argconv.MustBox(p)
	c.cfg.TCPKeepalive = enabled
	c.cfg.TCPKeepaliveDelay = 0
	if enabled {
		c.cfg.TCPKeepaliveDelay = time.Duration(delaySecs) * time.Second
	}
}

// ClusterSetTCPNodelay implements cass_cluster_set_tcp_nodelay.
func ClusterSetTCPNodelay(p argconv.Ptr[Cluster], enabled bool) {
	argconv.MustBox(p).cfg.TCPNoDelay = enabled
}

// ClusterSetProtocolVersion implements cass_cluster_set_protocol_version.
// Only version 4 is supported, and not together with the beta flag.
func ClusterSetProtocolVersion(p argconv.Ptr[Cluster], version int) casserr.Code {
	c := argconv.MustBox(p)
	if version != 4 || c.useBeta {
		return casserr.LibBadParams
	}
	c.cfg.ProtocolVersion = version
	return casserr.OK
}

// ClusterSetUseBetaProtocolVersion implements
// cass_cluster_set_use_beta_protocol_version. No beta version is supported.
func ClusterSetUseBetaProtocolVersion(p argconv.Ptr[Cluster], enable bool) casserr.Code {
	c := argconv.MustBox(p)
	if enable {
		return casserr.LibBadParams
	}
	c.useBeta = false
	return casserr.OK
}

// ClusterSetLoadBalanceRoundRobin implements cass_cluster_set_load_balance_round_robin.
func ClusterSetLoadBalanceRoundRobin(p argconv.Ptr[Cluster]) {
	setRoundRobin(&argconv.MustBox(p).cfg.DefaultProfile)
}

// ClusterSetLoadBalanceDCAware implements cass_cluster_set_load_balance_dc_aware.
func ClusterSetLoadBalanceDCAware(p argconv.Ptr[Cluster], localDC string, usedHostsPerRemoteDC uint, allowRemoteDCsForLocalCL bool) casserr.Code {
	return setDCAware(&argconv.MustBox(p).cfg.DefaultProfile, localDC, usedHostsPerRemoteDC, allowRemoteDCsForLocalCL)
}

// ClusterSetTokenAwareRouting implements cass_cluster_set_token_aware_routing.
func ClusterSetTokenAwareRouting(p argconv.Ptr[Cluster], enabled bool) {
	loadBalancing(&argconv.MustBox(p).cfg.DefaultProfile).TokenAware = enabled
}

// ClusterSetTokenAwareRoutingShuffleReplicas implements
// cass_cluster_set_token_aware_routing_shuffle_replicas.
func ClusterSetTokenAwareRoutingShuffleReplicas(p argconv.Ptr[Cluster], enabled bool) {
	loadBalancing(&argconv.MustBox(p).cfg.DefaultProfile).ShuffleReplicas = enabled
}

// ClusterSetLatencyAwareRouting implements cass_cluster_set_latency_aware_routing.
func ClusterSetLatencyAwareRouting(p argconv.Ptr[Cluster], enabled bool) {
	loadBalancing(&argconv.MustBox(p).cfg.DefaultProfile).LatencyAware = enabled
}

// ClusterSetRetryPolicy implements cass_cluster_set_retry_policy.
func ClusterSetRetryPolicy(p argconv.Ptr[Cluster], rp argconv.Ptr[RetryPolicy]) {
	c := argconv.MustBox(p)
	cfg := argconv.MustArc(rp).cfg
	c.cfg.DefaultProfile.RetryPolicy = &cfg
}

// ClusterSetConstantSpeculativeExecutionPolicy implements
// cass_cluster_set_constant_speculative_execution_policy.
func ClusterSetConstantSpeculativeExecutionPolicy(p argconv.Ptr[Cluster], delayMs int64, maxExecutions int) casserr.Code {
	return setSpeculative(&argconv.MustBox(p).cfg.DefaultProfile, delayMs, maxExecutions)
}

// ClusterSetNoSpeculativeExecutionPolicy implements
// cass_cluster_set_no_speculative_execution_policy.
func ClusterSetNoSpeculativeExecutionPolicy(p argconv.Ptr[Cluster]) casserr.Code {
	argconv.MustBox(p).cfg.DefaultProfile.Speculative = nil
	return casserr.OK
}

// Compression is a CassCompressionType.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionSnappy
	CompressionLZ4
)

// ClusterSetCompression implements cass_cluster_set_compression.
func ClusterSetCompression(p argconv.Ptr[Cluster], compression Compression) {
	c := argconv.MustBox(p)
	switch compression {
	case CompressionSnappy:
		c.cfg.Compression = driver.CompressionSnappy
	case CompressionLZ4:
		c.cfg.Compression = driver.CompressionLZ4
	default:
		c.cfg.Compression = driver.CompressionNone
	}
}

// ClusterSetConstantReconnect implements cass_cluster_set_constant_reconnect.
func ClusterSetConstantReconnect(p argconv.Ptr[Cluster], delayMs uint64) {
	d := time.Duration(delayMs) * time.Millisecond
	argconv.MustBox(p).cfg.Reconnect = driver.ReconnectPolicy{BaseDelay: d, MaxDelay: d}
}

// ClusterSetExponentialReconnect implements cass_cluster_set_exponential_reconnect.
func ClusterSetExponentialReconnect(p argconv.Ptr[Cluster], baseDelayMs, maxDelayMs uint64) casserr.Code {
	c := argconv.MustBox(p)
	if baseDelayMs <= 1 || maxDelayMs <= 1 || maxDelayMs < baseDelayMs {
		return casserr.LibBadParams
	}
	c.cfg.Reconnect = driver.ReconnectPolicy{
		Exponential: true,
		BaseDelay:   time.Duration(baseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(maxDelayMs) * time.Millisecond,
	}
	return casserr.OK
}

// ClusterSetExecutionProfile implements cass_cluster_set_execution_profile.
// The profile is copied, later changes to it do not affect the cluster.
func ClusterSetExecutionProfile(p argconv.Ptr[Cluster], name string, profile argconv.Ptr[ExecProfile]) casserr.Code {
	c := argconv.MustBox(p)
	prof, ok := argconv.BoxAsRef(profile)
	if name == "" || !ok {
		return casserr.LibBadParams
	}
	cp := prof.profile
	cp.Name = name
	c.profiles[name] = &cp
	return casserr.OK
}

// ClusterSetApplicationName implements cass_cluster_set_application_name.
func ClusterSetApplicationName(p argconv.Ptr[Cluster], name string) {
	argconv.MustBox(p).cfg.ApplicationName = name
}

// ClusterSetApplicationVersion implements cass_cluster_set_application_version.
func ClusterSetApplicationVersion(p argconv.Ptr[Cluster], version string) {
	argconv.MustBox(p).cfg.ApplicationVersion = version
}

// ClusterSetClientID implements cass_cluster_set_client_id.
func ClusterSetClientID(p argconv.Ptr[Cluster], id uuid.UUID) {
	argconv.MustBox(p).cfg.ClientID = id
}

// ClusterSetUseSchema implements cass_cluster_set_use_schema.
func ClusterSetUseSchema(p argconv.Ptr[Cluster], enabled bool) {
	argconv.MustBox(p).cfg.FetchSchema = enabled
}

// ClusterSetMaxSchemaWaitTime implements cass_cluster_set_max_schema_wait_time.
func ClusterSetMaxSchemaWaitTime(p argconv.Ptr[Cluster], waitMs uint) {
	argconv.MustBox(p).cfg.MaxSchemaWait = time.Duration(waitMs) * time.Millisecond
}

// ClusterSetSchemaAgreementInterval implements
// cass_cluster_set_schema_agreement_interval.
func ClusterSetSchemaAgreementInterval(p argconv.Ptr[Cluster], intervalMs uint) {
	argconv.MustBox(p).cfg.SchemaAgreementInterval = time.Duration(intervalMs) * time.Millisecond
}

// ClusterSetPreparedCacheSize sets how many prepared statements a session
// keeps. 0 disables the cache.
func ClusterSetPreparedCacheSize(p argconv.Ptr[Cluster], size uint) {
	argconv.MustBox(p).preparedCacheSize = int(size)
}

// connectParams is what a session keeps from the cluster at connect time.
type connectParams struct {
	cfg               driver.ClusterConfig
	profiles          map[string]*driver.Profile
	preparedCacheSize int
}

// params copies the cluster configuration. Execution profiles are merged
// over the default profile.
func (c *Cluster) params() connectParams {
	cfg := c.cfg
	cfg.ContactPoints = append([]string(nil), c.cfg.ContactPoints...)
	if cfg.ClientID == uuid.Nil {
		cfg.ClientID = uuid.New()
	}

	profiles := make(map[string]*driver.Profile, len(c.profiles))
	for name, p := range c.profiles {
		merged := p.Merge(cfg.DefaultProfile)
		profiles[name] = &merged
	}
	return connectParams{cfg: cfg, profiles: profiles, preparedCacheSize: c.preparedCacheSize}
}
