package gocqldriver

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of the gocql driver.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	connects        *prometheus.CounterVec
}

// NewMetrics registers the driver metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cassbridge",
			Name:      "cassandra_request_duration_seconds",
			Help:      "Time spent doing Cassandra requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9),
		}, []string{"operation", "status_code"}),
		connects: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "cassbridge",
			Name:      "cassandra_connects_total",
			Help:      "Total number of session connects by outcome.",
		}, []string{"status"}),
	}
}

// observer records every attempt gocql makes, retries and speculative
// executions included.
type observer struct {
	metrics *Metrics
	logger  log.Logger
}

func statusCode(err error) string {
	if err == nil {
		return "200"
	}
	if reqErr, ok := err.(gocql.RequestError); ok {
		return fmt.Sprintf("0x%04x", reqErr.Code())
	}
	return "500"
}

func (o observer) ObserveQuery(_ context.Context, q gocql.ObservedQuery) {
	o.metrics.requestDuration.WithLabelValues("QUERY", statusCode(q.Err)).Observe(q.End.Sub(q.Start).Seconds())
	if q.Err != nil {
		level.Debug(o.logger).Log("msg", "query attempt failed", "keyspace", q.Keyspace, "attempt", q.Attempt, "err", q.Err)
	}
}

func (o observer) ObserveBatch(_ context.Context, b gocql.ObservedBatch) {
	o.metrics.requestDuration.WithLabelValues("BATCH", statusCode(b.Err)).Observe(b.End.Sub(b.Start).Seconds())
	if b.Err != nil {
		level.Debug(o.logger).Log("msg", "batch attempt failed", "keyspace", b.Keyspace, "statements", len(b.Statements), "attempt", b.Attempt, "err", b.Err)
	}
}
