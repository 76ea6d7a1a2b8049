package gocqldriver

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"

	"github.com/grafana/cassbridge/pkg/driver"
)

// newRetryPolicy turns a retry configuration into a gocql policy. A nil
// configuration gets the default policy.
func newRetryPolicy(cfg *driver.RetryPolicy, logger log.Logger) gocql.RetryPolicy {
	var (
		kind    = driver.RetryDefault
		logging bool
	)
	if cfg != nil {
		kind, logging = cfg.Kind, cfg.Logging
	}

	var policy gocql.RetryPolicy
	switch kind {
	case driver.RetryFallthrough:
		policy = fallthroughRetryPolicy{}
	case driver.RetryDowngradingConsistency:
		policy = &gocql.DowngradingConsistencyRetryPolicy{
			ConsistencyLevelsToTry: []gocql.Consistency{gocql.Three, gocql.Two, gocql.One},
		}
	default:
		policy = defaultRetryPolicy{}
	}
	if logging {
		policy = loggingRetryPolicy{next: policy, kind: kind, logger: logger}
	}
	return policy
}

// defaultRetryPolicy retries at most once, and only when it is safe:
//   - read timeout: enough replicas answered but the data was missing;
//   - write timeout: only while writing the batch log;
//   - unavailable: once, on the next host;
//   - connection errors: next host.
type defaultRetryPolicy struct{}

func (defaultRetryPolicy) Attempt(q gocql.RetryableQuery) bool {
	return q.Attempts() <= 1
}

func (defaultRetryPolicy) GetRetryType(err error) gocql.RetryType {
	switch e := err.(type) {
	case *gocql.RequestErrReadTimeout:
		if e.Received >= e.BlockFor && !dataPresent(e) {
			return gocql.Retry
		}
		return gocql.Rethrow
	case *gocql.RequestErrWriteTimeout:
		if e.WriteType == "BATCH_LOG" {
			return gocql.Retry
		}
		return gocql.Rethrow
	case *gocql.RequestErrUnavailable:
		return gocql.RetryNextHost
	case gocql.RequestError:
		return gocql.Rethrow
	default:
		return gocql.RetryNextHost
	}
}

// fallthroughRetryPolicy never retries.
type fallthroughRetryPolicy struct{}

func (fallthroughRetryPolicy) Attempt(gocql.RetryableQuery) bool { return false }

func (fallthroughRetryPolicy) GetRetryType(error) gocql.RetryType { return gocql.Rethrow }

type loggingRetryPolicy struct {
	next   gocql.RetryPolicy
	kind   driver.RetryKind
	logger log.Logger
}

func (l loggingRetryPolicy) Attempt(q gocql.RetryableQuery) bool {
	ok := l.next.Attempt(q)
	if ok && q.Attempts() > 0 {
		level.Info(l.logger).Log("msg", "retrying request", "policy", l.kind, "attempt", q.Attempts(), "consistency", q.GetConsistency())
	}
	return ok
}

func (l loggingRetryPolicy) GetRetryType(err error) gocql.RetryType {
	rt := l.next.GetRetryType(err)
	level.Info(l.logger).Log("msg", "retry decision", "policy", l.kind, "decision", retryTypeName(rt), "err", err)
	return rt
}

func retryTypeName(rt gocql.RetryType) string {
	switch rt {
	case gocql.Retry:
		return "retry"
	case gocql.RetryNextHost:
		return "retry_next_host"
	case gocql.Ignore:
		return "ignore"
	default:
		return "rethrow"
	}
}
