package future

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/grafana/cassbridge/pkg/casserr"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
	outcomePanic   = "panic"
)

// Metrics of an Executor.
type Metrics struct {
	inflight  prometheus.Gauge
	completed *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewMetrics registers the executor metrics with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		inflight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "cassbridge",
			Name:      "futures_inflight",
			Help:      "Number of futures whose task has not finished yet.",
		}),
		completed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "cassbridge",
			Name:      "futures_completed_total",
			Help:      "Total number of futures that became ready, by outcome.",
		}, []string{"outcome"}),
		duration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "cassbridge",
			Name:      "future_duration_seconds",
			Help:      "Time from scheduling a task to its future becoming ready.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
}

// Executor runs tasks in the background. Every task gets its own goroutine,
// the Go scheduler multiplexes them over GOMAXPROCS threads, so scheduling
// never blocks the caller.
type Executor struct {
	wg      sync.WaitGroup
	metrics *Metrics
	logger  log.Logger
}

// NewExecutor returns an Executor reporting to reg.
func NewExecutor(logger log.Logger, reg prometheus.Registerer) *Executor {
	return &Executor{
		metrics: NewMetrics(reg),
		logger:  logger,
	}
}

// Wait blocks until every task scheduled so far has returned, including
// tasks whose future already resolved through a timeout.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Make schedules fn and returns a future for its outcome.
func Make[T any](e *Executor, fn func(ctx context.Context) (T, error)) *Future[T] {
	return MakeWithTimeout(e, 0, fn)
}

// MakeWithTimeout schedules fn. When d is positive and elapses first, the
// future resolves with a request timeout while fn keeps running. Its late
// outcome is discarded.
func MakeWithTimeout[T any](e *Executor, d time.Duration, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newPending[T]()
	start := time.Now()
	e.metrics.inflight.Inc()

	finish := func(o Outcome[T], label string) {
		if f.complete(o) {
			e.metrics.completed.WithLabelValues(label).Inc()
			e.metrics.duration.Observe(time.Since(start).Seconds())
		}
	}

	if d > 0 {
		timer := time.AfterFunc(d, func() {
			var zero T
			finish(Outcome[T]{Value: zero, Err: casserr.Timeout()}, outcomeTimeout)
		})
		go func() {
			<-f.done
			timer.Stop()
		}()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.metrics.inflight.Dec()
		defer func() {
			if r := recover(); r != nil {
				level.Error(e.logger).Log("msg", "task panicked", "err", r)
				var zero T
				finish(Outcome[T]{Value: zero, Err: casserr.Newf(casserr.LibInternalError, "task panicked: %v", r)}, outcomePanic)
			}
		}()

		v, err := fn(context.Background())
		label := outcomeSuccess
		if err != nil {
			label = outcomeError
		}
		finish(Outcome[T]{Value: v, Err: err}, label)
	}()

	return f
}

func (o Outcome[T]) String() string {
	if o.Err != nil {
		return fmt.Sprintf("error: %v", o.Err)
	}
	return fmt.Sprintf("value: %v", o.Value)
}
