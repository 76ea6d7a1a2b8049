package cass

import (
	"sync"
	"time"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

// ExecProfile is a CassExecProfile. Unset fields inherit from the cluster
// default profile when a session connects.
type ExecProfile struct {
	profile driver.Profile
}

func unsetProfile() driver.Profile {
	return driver.Profile{
		Consistency:       driver.ConsistencyUnset,
		SerialConsistency: driver.ConsistencyUnset,
		RequestTimeout:    -1,
	}
}

// ExecutionProfileNew implements cass_execution_profile_new.
func ExecutionProfileNew() argconv.Ptr[ExecProfile] {
	return argconv.BoxInto(&ExecProfile{profile: unsetProfile()})
}

// ExecutionProfileFree implements cass_execution_profile_free.
func ExecutionProfileFree(p argconv.Ptr[ExecProfile]) {
	argconv.BoxFree(p)
}

// ExecutionProfileSetConsistency implements cass_execution_profile_set_consistency.
func ExecutionProfileSetConsistency(p argconv.Ptr[ExecProfile], c driver.Consistency) casserr.Code {
	return setConsistency(&argconv.MustBox(p).profile, c)
}

// ExecutionProfileSetSerialConsistency implements cass_execution_profile_set_serial_consistency.
func ExecutionProfileSetSerialConsistency(p argconv.Ptr[ExecProfile], c driver.Consistency) casserr.Code {
	return setSerialConsistency(&argconv.MustBox(p).profile, c)
}

// ExecutionProfileSetRequestTimeout implements cass_execution_profile_set_request_timeout.
// 0 disables the timeout.
func ExecutionProfileSetRequestTimeout(p argconv.Ptr[ExecProfile], timeoutMs uint64) casserr.Code {
	argconv.MustBox(p).profile.RequestTimeout = time.Duration(timeoutMs) * time.Millisecond
	return casserr.OK
}

// ExecutionProfileSetRetryPolicy implements cass_execution_profile_set_retry_policy.
func ExecutionProfileSetRetryPolicy(p argconv.Ptr[ExecProfile], rp argconv.Ptr[RetryPolicy]) casserr.Code {
	prof := argconv.MustBox(p)
	if rp.IsNull() {
		return casserr.LibBadParams
	}
	cfg := argconv.MustArc(rp).cfg
	prof.profile.RetryPolicy = &cfg
	return casserr.OK
}

// ExecutionProfileSetLoadBalanceRoundRobin implements cass_execution_profile_set_load_balance_round_robin.
func ExecutionProfileSetLoadBalanceRoundRobin(p argconv.Ptr[ExecProfile]) casserr.Code {
	setRoundRobin(&argconv.MustBox(p).profile)
	return casserr.OK
}

// ExecutionProfileSetLoadBalanceDCAware implements cass_execution_profile_set_load_balance_dc_aware.
func ExecutionProfileSetLoadBalanceDCAware(p argconv.Ptr[ExecProfile], localDC string, usedHostsPerRemoteDC uint, allowRemoteDCsForLocalCL bool) casserr.Code {
	return setDCAware(&argconv.MustBox(p).profile, localDC, usedHostsPerRemoteDC, allowRemoteDCsForLocalCL)
}

// ExecutionProfileSetTokenAwareRouting implements cass_execution_profile_set_token_aware_routing.
func ExecutionProfileSetTokenAwareRouting(p argconv.Ptr[ExecProfile], enabled bool) casserr.Code {
	lb := loadBalancing(&argconv.MustBox(p).profile)
	lb.TokenAware = enabled
	return casserr.OK
}

// ExecutionProfileSetConstantSpeculativeExecutionPolicy implements
// cass_execution_profile_set_constant_speculative_execution_policy.
func ExecutionProfileSetConstantSpeculativeExecutionPolicy(p argconv.Ptr[ExecProfile], delayMs int64, maxExecutions int) casserr.Code {
	return setSpeculative(&argconv.MustBox(p).profile, delayMs, maxExecutions)
}

// ExecutionProfileSetNoSpeculativeExecutionPolicy implements
// cass_execution_profile_set_no_speculative_execution_policy.
func ExecutionProfileSetNoSpeculativeExecutionPolicy(p argconv.Ptr[ExecProfile]) casserr.Code {
	argconv.MustBox(p).profile.Speculative = &driver.SpeculativePolicy{}
	return casserr.OK
}

func setConsistency(p *driver.Profile, c driver.Consistency) casserr.Code {
	if !c.Valid() {
		return casserr.LibBadParams
	}
	p.Consistency = c
	return casserr.OK
}

func setSerialConsistency(p *driver.Profile, c driver.Consistency) casserr.Code {
	if !c.IsSerial() {
		return casserr.LibBadParams
	}
	p.SerialConsistency = c
	return casserr.OK
}

// loadBalancing returns a private copy of the profile load balancing,
// installed in the profile, ready to be changed.
func loadBalancing(p *driver.Profile) *driver.LoadBalancing {
	lb := driver.LoadBalancing{Kind: driver.DCAware, TokenAware: true}
	if p.LoadBalancing != nil {
		lb = *p.LoadBalancing
	}
	p.LoadBalancing = &lb
	return &lb
}

func setRoundRobin(p *driver.Profile) {
	lb := loadBalancing(p)
	lb.Kind = driver.RoundRobin
	lb.LocalDC = ""
}

func setDCAware(p *driver.Profile, localDC string, usedHostsPerRemoteDC uint, allowRemoteDCsForLocalCL bool) casserr.Code {
	if localDC == "" {
		return casserr.LibBadParams
	}
	// Both parameters are deprecated and have no equivalent.
	if usedHostsPerRemoteDC != 0 || allowRemoteDCsForLocalCL {
		return casserr.LibBadParams
	}
	lb := loadBalancing(p)
	lb.Kind = driver.DCAware
	lb.LocalDC = localDC
	return casserr.OK
}

func setSpeculative(p *driver.Profile, delayMs int64, maxExecutions int) casserr.Code {
	if delayMs < 0 || maxExecutions < 0 {
		return casserr.LibBadParams
	}
	p.Speculative = &driver.SpeculativePolicy{
		Delay:         time.Duration(delayMs) * time.Millisecond,
		MaxExecutions: maxExecutions,
	}
	return casserr.OK
}

// perStatementProfile is the execution profile selected by name on a
// statement or batch. It is shared by the handle and the snapshots taken
// for execution, so a resolution made by one request serves the next ones.
// The cached profile belongs to one connected session: connecting again
// resolves the name anew.
type perStatementProfile struct {
	name string

	mtx      sync.Mutex
	owner    *sessionInner
	resolved *driver.Profile
}

func newPerStatementProfile(name string) *perStatementProfile {
	if name == "" {
		return nil
	}
	return &perStatementProfile{name: name}
}

// resolve returns the profile of the session. A failed lookup is not
// cached, the name stays unresolved and can be retried.
func (p *perStatementProfile) resolve(inner *sessionInner) (*driver.Profile, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.resolved != nil && p.owner == inner {
		return p.resolved, nil
	}
	prof, ok := inner.profiles[p.name]
	if !ok {
		return nil, casserr.Newf(casserr.LibExecutionProfileInvalid, "%s does not exist", p.name)
	}
	p.owner, p.resolved = inner, prof
	return prof, nil
}

// Name returns the selected profile name.
func (p *perStatementProfile) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}
