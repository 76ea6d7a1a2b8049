// Package cass is the Go side of the cassandra.h C ABI.
//
// Every exported function mirrors one cass_* entry point: it takes and
// returns argconv pointers instead of raw C pointers and Go strings instead
// of char buffers. cmd/libcassbridge only converts arguments and forwards.
//
// Asynchronous operations return a Future handle at once. The work runs on
// the package executor against a driver.Conn obtained from the package
// connector, gocql unless replaced with SetConnector.
package cass

import (
	"sync"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
	"github.com/grafana/cassbridge/pkg/driver/gocqldriver"
	"github.com/grafana/cassbridge/pkg/future"
	util_log "github.com/grafana/cassbridge/pkg/util/log"
)

const tracerName = "github.com/grafana/cassbridge/pkg/cass"

type runtime struct {
	exec   *future.Executor
	tracer trace.Tracer

	mtx       sync.RWMutex
	connector driver.Connector
}

var (
	rtOnce sync.Once
	rt     *runtime

	// Registerer receives the executor and driver metrics. It must be set
	// before the first call into the package.
	Registerer prometheus.Registerer = prometheus.DefaultRegisterer
)

func getRuntime() *runtime {
	rtOnce.Do(func() {
		rt = &runtime{
			exec:   future.NewExecutor(util_log.Logger, Registerer),
			tracer: otel.Tracer(tracerName),
		}
	})
	return rt
}

func (r *runtime) getConnector() driver.Connector {
	r.mtx.RLock()
	c := r.connector
	r.mtx.RUnlock()
	if c != nil {
		return c
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.connector == nil {
		r.connector = gocqldriver.New(util_log.Logger, Registerer)
	}
	return r.connector
}

// SetConnector makes new sessions connect through c. The returned function
// restores the previous connector.
func SetConnector(c driver.Connector) (restore func()) {
	r := getRuntime()
	r.mtx.Lock()
	defer r.mtx.Unlock()
	prev := r.connector
	r.connector = c
	return func() {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		r.connector = prev
	}
}

// Drain blocks until every background task scheduled so far has returned,
// including tasks whose future already resolved through a timeout.
func Drain() {
	getRuntime().exec.Wait()
}

// ErrorDesc implements cass_error_desc.
func ErrorDesc(code casserr.Code) string {
	return code.Desc()
}

// ConsistencyString implements cass_consistency_string.
func ConsistencyString(c driver.Consistency) string {
	return c.String()
}

// LogLevel is a CassLogLevel.
type LogLevel int

const (
	LogDisabled LogLevel = iota
	LogCritical
	LogError
	LogWarn
	LogInfo
	LogDebug
	LogTrace
)

func (l LogLevel) String() string {
	switch l {
	case LogDisabled:
		return "DISABLED"
	case LogCritical:
		return "CRITICAL"
	case LogError:
		return "ERROR"
	case LogWarn:
		return "WARN"
	case LogInfo:
		return "INFO"
	case LogDebug:
		return "DEBUG"
	case LogTrace:
		return "TRACE"
	default:
		return ""
	}
}

func logLevelOf(v level.Value) LogLevel {
	switch v {
	case level.ErrorValue():
		return LogError
	case level.WarnValue():
		return LogWarn
	case level.InfoValue():
		return LogInfo
	case level.DebugValue():
		return LogDebug
	default:
		return LogInfo
	}
}
