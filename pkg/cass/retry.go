package cass

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/driver"
)

// RetryPolicy is a CassRetryPolicy.
type RetryPolicy struct {
	cfg driver.RetryPolicy
}

// RetryPolicyDefaultNew implements cass_retry_policy_default_new.
func RetryPolicyDefaultNew() argconv.Ptr[RetryPolicy] {
	return argconv.ArcInto(&RetryPolicy{cfg: driver.RetryPolicy{Kind: driver.RetryDefault}})
}

// RetryPolicyDowngradingConsistencyNew implements
// cass_retry_policy_downgrading_consistency_new.
func RetryPolicyDowngradingConsistencyNew() argconv.Ptr[RetryPolicy] {
	return argconv.ArcInto(&RetryPolicy{cfg: driver.RetryPolicy{Kind: driver.RetryDowngradingConsistency}})
}

// RetryPolicyFallthroughNew implements cass_retry_policy_fallthrough_new.
func RetryPolicyFallthroughNew() argconv.Ptr[RetryPolicy] {
	return argconv.ArcInto(&RetryPolicy{cfg: driver.RetryPolicy{Kind: driver.RetryFallthrough}})
}

// RetryPolicyLoggingNew implements cass_retry_policy_logging_new. Null
// child policies yield null.
func RetryPolicyLoggingNew(child argconv.Ptr[RetryPolicy]) argconv.Ptr[RetryPolicy] {
	c, ok := argconv.ArcAsRef(child)
	if !ok {
		return argconv.Null[RetryPolicy]()
	}
	return argconv.ArcInto(&RetryPolicy{cfg: driver.RetryPolicy{Kind: c.cfg.Kind, Logging: true}})
}

// RetryPolicyFree implements cass_retry_policy_free.
func RetryPolicyFree(p argconv.Ptr[RetryPolicy]) {
	argconv.ArcFree(p)
}
