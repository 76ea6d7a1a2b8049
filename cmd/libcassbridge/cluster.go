package main

/*
#include "cassbridge.h"
*/
import "C"

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/driver"
)

func cluster(c *C.CassCluster) argconv.Ptr[cass.Cluster] { return fromC[cass.Cluster](c) }

//export cass_cluster_new
func cass_cluster_new() *C.CassCluster {
	return toC[C.CassCluster](cass.ClusterNew())
}

//export cass_cluster_free
func cass_cluster_free(c *C.CassCluster) {
	cass.ClusterFree(cluster(c))
}

//export cass_cluster_set_contact_points
func cass_cluster_set_contact_points(c *C.CassCluster, contactPoints *C.char) C.CassError {
	return cerr(cass.ClusterSetContactPoints(cluster(c), goString(contactPoints)))
}

//export cass_cluster_set_contact_points_n
func cass_cluster_set_contact_points_n(c *C.CassCluster, contactPoints *C.char, length C.size_t) C.CassError {
	return cerr(cass.ClusterSetContactPoints(cluster(c), goStringN(contactPoints, length)))
}

//export cass_cluster_set_port
func cass_cluster_set_port(c *C.CassCluster, port C.int) C.CassError {
	return cerr(cass.ClusterSetPort(cluster(c), int(port)))
}

//export cass_cluster_set_credentials
func cass_cluster_set_credentials(c *C.CassCluster, username, password *C.char) {
	cass.ClusterSetCredentials(cluster(c), goString(username), goString(password))
}

//export cass_cluster_set_credentials_n
func cass_cluster_set_credentials_n(c *C.CassCluster, username *C.char, usernameLength C.size_t, password *C.char, passwordLength C.size_t) {
	cass.ClusterSetCredentials(cluster(c), goStringN(username, usernameLength), goStringN(password, passwordLength))
}

//export cass_cluster_set_consistency
func cass_cluster_set_consistency(c *C.CassCluster, consistency C.CassConsistency) C.CassError {
	return cerr(cass.ClusterSetConsistency(cluster(c), driver.Consistency(consistency)))
}

//export cass_cluster_set_serial_consistency
func cass_cluster_set_serial_consistency(c *C.CassCluster, consistency C.CassConsistency) C.CassError {
	return cerr(cass.ClusterSetSerialConsistency(cluster(c), driver.Consistency(consistency)))
}

//export cass_cluster_set_request_timeout
func cass_cluster_set_request_timeout(c *C.CassCluster, timeoutMs C.uint) {
	cass.ClusterSetRequestTimeout(cluster(c), uint(timeoutMs))
}

//export cass_cluster_set_connect_timeout
func cass_cluster_set_connect_timeout(c *C.CassCluster, timeoutMs C.uint) {
	cass.ClusterSetConnectTimeout(cluster(c), uint(timeoutMs))
}

//export cass_cluster_set_connection_heartbeat_interval
func cass_cluster_set_connection_heartbeat_interval(c *C.CassCluster, intervalSecs C.uint) {
	cass.ClusterSetConnectionHeartbeatInterval(cluster(c), uint(intervalSecs))
}

//export cass_cluster_set_connection_idle_timeout
func cass_cluster_set_connection_idle_timeout(c *C.CassCluster, timeoutSecs C.uint) {
	cass.ClusterSetConnectionIdleTimeout(cluster(c), uint(timeoutSecs))
}

//export cass_cluster_set_tcp_keepalive
func cass_cluster_set_tcp_keepalive(c *C.CassCluster, enabled C.cass_bool_t, delaySecs C.uint) {
	cass.ClusterSetTCPKeepalive(cluster(c), gobool(enabled), uint(delaySecs))
}

//export cass_cluster_set_tcp_nodelay
func cass_cluster_set_tcp_nodelay(c *C.CassCluster, enabled C.cass_bool_t) {
	cass.ClusterSetTCPNodelay(cluster(c), gobool(enabled))
}

//export cass_cluster_set_protocol_version
func cass_cluster_set_protocol_version(c *C.CassCluster, version C.int) C.CassError {
	return cerr(cass.ClusterSetProtocolVersion(cluster(c), int(version)))
}

//export cass_cluster_set_use_beta_protocol_version
func cass_cluster_set_use_beta_protocol_version(c *C.CassCluster, enable C.cass_bool_t) C.CassError {
	return cerr(cass.ClusterSetUseBetaProtocolVersion(cluster(c), gobool(enable)))
}

//export cass_cluster_set_load_balance_round_robin
func cass_cluster_set_load_balance_round_robin(c *C.CassCluster) {
	cass.ClusterSetLoadBalanceRoundRobin(cluster(c))
}

//export cass_cluster_set_load_balance_dc_aware
func cass_cluster_set_load_balance_dc_aware(c *C.CassCluster, localDC *C.char, usedHostsPerRemoteDC C.uint, allowRemoteDCsForLocalCL C.cass_bool_t) C.CassError {
	return cerr(cass.ClusterSetLoadBalanceDCAware(cluster(c), goString(localDC), uint(usedHostsPerRemoteDC), gobool(allowRemoteDCsForLocalCL)))
}

//export cass_cluster_set_load_balance_dc_aware_n
func cass_cluster_set_load_balance_dc_aware_n(c *C.CassCluster, localDC *C.char, localDCLength C.size_t, usedHostsPerRemoteDC C.uint, allowRemoteDCsForLocalCL C.cass_bool_t) C.CassError {
	return cerr(cass.ClusterSetLoadBalanceDCAware(cluster(c), goStringN(localDC, localDCLength), uint(usedHostsPerRemoteDC), gobool(allowRemoteDCsForLocalCL)))
}

//export cass_cluster_set_token_aware_routing
func cass_cluster_set_token_aware_routing(c *C.CassCluster, enabled C.cass_bool_t) {
	cass.ClusterSetTokenAwareRouting(cluster(c), gobool(enabled))
}

//export cass_cluster_set_token_aware_routing_shuffle_replicas
func cass_cluster_set_token_aware_routing_shuffle_replicas(c *C.CassCluster, enabled C.cass_bool_t) {
	cass.ClusterSetTokenAwareRoutingShuffleReplicas(cluster(c), gobool(enabled))
}

//export cass_cluster_set_latency_aware_routing
func cass_cluster_set_latency_aware_routing(c *C.CassCluster, enabled C.cass_bool_t) {
	cass.ClusterSetLatencyAwareRouting(cluster(c), gobool(enabled))
}

//export cass_cluster_set_retry_policy
func cass_cluster_set_retry_policy(c *C.CassCluster, rp *C.CassRetryPolicy) {
	cass.ClusterSetRetryPolicy(cluster(c), fromC[cass.RetryPolicy](rp))
}

//export cass_cluster_set_constant_speculative_execution_policy
func cass_cluster_set_constant_speculative_execution_policy(c *C.CassCluster, delayMs C.cass_int64_t, maxExecutions C.int) C.CassError {
	return cerr(cass.ClusterSetConstantSpeculativeExecutionPolicy(cluster(c), int64(delayMs), int(maxExecutions)))
}

//export cass_cluster_set_no_speculative_execution_policy
func cass_cluster_set_no_speculative_execution_policy(c *C.CassCluster) C.CassError {
	return cerr(cass.ClusterSetNoSpeculativeExecutionPolicy(cluster(c)))
}

//export cass_cluster_set_compression
func cass_cluster_set_compression(c *C.CassCluster, compression C.CassCompressionType) {
	cass.ClusterSetCompression(cluster(c), cass.Compression(compression))
}

//export cass_cluster_set_constant_reconnect
func cass_cluster_set_constant_reconnect(c *C.CassCluster, delayMs C.cass_uint64_t) {
	cass.ClusterSetConstantReconnect(cluster(c), uint64(delayMs))
}

//export cass_cluster_set_exponential_reconnect
func cass_cluster_set_exponential_reconnect(c *C.CassCluster, baseDelayMs, maxDelayMs C.cass_uint64_t) C.CassError {
	return cerr(cass.ClusterSetExponentialReconnect(cluster(c), uint64(baseDelayMs), uint64(maxDelayMs)))
}

//export cass_cluster_set_execution_profile
func cass_cluster_set_execution_profile(c *C.CassCluster, name *C.char, profile *C.CassExecProfile) C.CassError {
	return cerr(cass.ClusterSetExecutionProfile(cluster(c), goString(name), fromC[cass.ExecProfile](profile)))
}

//export cass_cluster_set_execution_profile_n
func cass_cluster_set_execution_profile_n(c *C.CassCluster, name *C.char, nameLength C.size_t, profile *C.CassExecProfile) C.CassError {
	return cerr(cass.ClusterSetExecutionProfile(cluster(c), goStringN(name, nameLength), fromC[cass.ExecProfile](profile)))
}

//export cass_cluster_set_application_name
func cass_cluster_set_application_name(c *C.CassCluster, name *C.char) {
	cass.ClusterSetApplicationName(cluster(c), goString(name))
}

//export cass_cluster_set_application_name_n
func cass_cluster_set_application_name_n(c *C.CassCluster, name *C.char, length C.size_t) {
	cass.ClusterSetApplicationName(cluster(c), goStringN(name, length))
}

//export cass_cluster_set_application_version
func cass_cluster_set_application_version(c *C.CassCluster, version *C.char) {
	cass.ClusterSetApplicationVersion(cluster(c), goString(version))
}

//export cass_cluster_set_application_version_n
func cass_cluster_set_application_version_n(c *C.CassCluster, version *C.char, length C.size_t) {
	cass.ClusterSetApplicationVersion(cluster(c), goStringN(version, length))
}

//export cass_cluster_set_client_id
func cass_cluster_set_client_id(c *C.CassCluster, id C.CassUuid) {
	cass.ClusterSetClientID(cluster(c), uuidFromC(id))
}

//export cass_cluster_set_use_schema
func cass_cluster_set_use_schema(c *C.CassCluster, enabled C.cass_bool_t) {
	cass.ClusterSetUseSchema(cluster(c), gobool(enabled))
}

//export cass_cluster_set_max_schema_wait_time
func cass_cluster_set_max_schema_wait_time(c *C.CassCluster, waitMs C.uint) {
	cass.ClusterSetMaxSchemaWaitTime(cluster(c), uint(waitMs))
}

//export cass_cluster_set_schema_agreement_interval
func cass_cluster_set_schema_agreement_interval(c *C.CassCluster, intervalMs C.uint) {
	cass.ClusterSetSchemaAgreementInterval(cluster(c), uint(intervalMs))
}

//export cass_cluster_set_prepared_cache_size
func cass_cluster_set_prepared_cache_size(c *C.CassCluster, size C.uint) {
	cass.ClusterSetPreparedCacheSize(cluster(c), uint(size))
}

//export cass_execution_profile_new
func cass_execution_profile_new() *C.CassExecProfile {
	return toC[C.CassExecProfile](cass.ExecutionProfileNew())
}

//export cass_execution_profile_free
func cass_execution_profile_free(p *C.CassExecProfile) {
	cass.ExecutionProfileFree(fromC[cass.ExecProfile](p))
}

//export cass_execution_profile_set_consistency
func cass_execution_profile_set_consistency(p *C.CassExecProfile, consistency C.CassConsistency) C.CassError {
	return cerr(cass.ExecutionProfileSetConsistency(fromC[cass.ExecProfile](p), driver.Consistency(consistency)))
}

//export cass_execution_profile_set_serial_consistency
func cass_execution_profile_set_serial_consistency(p *C.CassExecProfile, consistency C.CassConsistency) C.CassError {
	return cerr(cass.ExecutionProfileSetSerialConsistency(fromC[cass.ExecProfile](p), driver.Consistency(consistency)))
}

//export cass_execution_profile_set_request_timeout
func cass_execution_profile_set_request_timeout(p *C.CassExecProfile, timeoutMs C.cass_uint64_t) C.CassError {
	return cerr(cass.ExecutionProfileSetRequestTimeout(fromC[cass.ExecProfile](p), uint64(timeoutMs)))
}

//export cass_execution_profile_set_retry_policy
func cass_execution_profile_set_retry_policy(p *C.CassExecProfile, rp *C.CassRetryPolicy) C.CassError {
	return cerr(cass.ExecutionProfileSetRetryPolicy(fromC[cass.ExecProfile](p), fromC[cass.RetryPolicy](rp)))
}

//export cass_execution_profile_set_load_balance_round_robin
func cass_execution_profile_set_load_balance_round_robin(p *C.CassExecProfile) C.CassError {
	return cerr(cass.ExecutionProfileSetLoadBalanceRoundRobin(fromC[cass.ExecProfile](p)))
}

//export cass_execution_profile_set_load_balance_dc_aware
func cass_execution_profile_set_load_balance_dc_aware(p *C.CassExecProfile, localDC *C.char, usedHostsPerRemoteDC C.uint, allowRemoteDCsForLocalCL C.cass_bool_t) C.CassError {
	return cerr(cass.ExecutionProfileSetLoadBalanceDCAware(fromC[cass.ExecProfile](p), goString(localDC), uint(usedHostsPerRemoteDC), gobool(allowRemoteDCsForLocalCL)))
}

//export cass_execution_profile_set_token_aware_routing
func cass_execution_profile_set_token_aware_routing(p *C.CassExecProfile, enabled C.cass_bool_t) C.CassError {
	return cerr(cass.ExecutionProfileSetTokenAwareRouting(fromC[cass.ExecProfile](p), gobool(enabled)))
}

//export cass_execution_profile_set_constant_speculative_execution_policy
func cass_execution_profile_set_constant_speculative_execution_policy(p *C.CassExecProfile, delayMs C.cass_int64_t, maxExecutions C.int) C.CassError {
	return cerr(cass.ExecutionProfileSetConstantSpeculativeExecutionPolicy(fromC[cass.ExecProfile](p), int64(delayMs), int(maxExecutions)))
}

//export cass_execution_profile_set_no_speculative_execution_policy
func cass_execution_profile_set_no_speculative_execution_policy(p *C.CassExecProfile) C.CassError {
	return cerr(cass.ExecutionProfileSetNoSpeculativeExecutionPolicy(fromC[cass.ExecProfile](p)))
}

//export cass_retry_policy_default_new
func cass_retry_policy_default_new() *C.CassRetryPolicy {
	return toC[C.CassRetryPolicy](cass.RetryPolicyDefaultNew())
}

//export cass_retry_policy_downgrading_consistency_new
func cass_retry_policy_downgrading_consistency_new() *C.CassRetryPolicy {
	return toC[C.CassRetryPolicy](cass.RetryPolicyDowngradingConsistencyNew())
}

//export cass_retry_policy_fallthrough_new
func cass_retry_policy_fallthrough_new() *C.CassRetryPolicy {
	return toC[C.CassRetryPolicy](cass.RetryPolicyFallthroughNew())
}

//export cass_retry_policy_logging_new
func cass_retry_policy_logging_new(child *C.CassRetryPolicy) *C.CassRetryPolicy {
	return toC[C.CassRetryPolicy](cass.RetryPolicyLoggingNew(fromC[cass.RetryPolicy](child)))
}

//export cass_retry_policy_free
func cass_retry_policy_free(rp *C.CassRetryPolicy) {
	cass.RetryPolicyFree(fromC[cass.RetryPolicy](rp))
}
