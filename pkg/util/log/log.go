package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	swap = &log.SwapLogger{}

	// Logger is a shared go-kit logger.
	// The level filter and the output can be changed at runtime, so
	// components keep the reference instead of copying the current logger.
	Logger log.Logger = swap

	mtx          sync.Mutex
	plogger      *prometheusLogger
	currentLevel dslog.Level
	disabled     bool
	sink         Sink
)

func init() {
	_ = currentLevel.Set("warn")
	plogger = newPrometheusLogger(newStderrLogger(), nil)
	rebuild()
}

// Sink receives every record that passes the level filter. lvl is the go-kit
// level of the record, msg the "msg" value and fields the remaining
// key/values formatted as logfmt.
type Sink func(lvl level.Value, msg, fields string)

// InitLogger replaces the output of the shared logger. A nil writer means
// stderr. Log messages are counted by level when reg is not nil.
func InitLogger(lvl dslog.Level, w io.Writer, reg prometheus.Registerer) {
	mtx.Lock()
	defer mtx.Unlock()

	base := newStderrLogger()
	if w != nil {
		base = log.With(log.NewLogfmtLogger(log.NewSyncWriter(w)), "ts", log.DefaultTimestampUTC)
	}
	plogger = newPrometheusLogger(base, reg)
	currentLevel = lvl
	disabled = false
	rebuild()
}

// SetLevel changes the level filter of the shared logger.
func SetLevel(lvl dslog.Level) {
	mtx.Lock()
	defer mtx.Unlock()
	currentLevel = lvl
	disabled = false
	rebuild()
}

// Disable drops every record until the next SetLevel.
func Disable() {
	mtx.Lock()
	defer mtx.Unlock()
	disabled = true
	rebuild()
}

// SetSink redirects records to s. A nil sink restores the previous output.
func SetSink(s Sink) {
	mtx.Lock()
	defer mtx.Unlock()
	sink = s
	rebuild()
}

// CurrentLevel returns the active level filter.
func CurrentLevel() dslog.Level {
	mtx.Lock()
	defer mtx.Unlock()
	return currentLevel
}

func rebuild() {
	if disabled {
		swap.Swap(log.NewNopLogger())
		return
	}
	var out log.Logger = plogger
	if sink != nil {
		out = sinkLogger{sink: sink}
	}
	swap.Swap(level.NewFilter(out, currentLevel.Option))
}

func newStderrLogger() log.Logger {
	return log.With(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), "ts", log.DefaultTimestampUTC)
}

type prometheusLogger struct {
	baseLogger  log.Logger
	logMessages *prometheus.CounterVec
}

func newPrometheusLogger(base log.Logger, reg prometheus.Registerer) *prometheusLogger {
	pl := &prometheusLogger{baseLogger: base}
	if reg != nil {
		pl.logMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cassbridge",
			Name:      "log_messages_total",
			Help:      "Total number of log messages by level.",
		}, []string{"level"})
		if err := reg.Register(pl.logMessages); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				pl.logMessages = are.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	}
	return pl
}

func (pl *prometheusLogger) Log(kv ...interface{}) error {
	_ = pl.baseLogger.Log(kv...)
	if pl.logMessages == nil {
		return nil
	}
	l := "unknown"
	for i := 1; i < len(kv); i += 2 {
		if v, ok := kv[i].(level.Value); ok {
			l = v.String()
			break
		}
	}
	pl.logMessages.WithLabelValues(l).Inc()
	return nil
}

type sinkLogger struct {
	sink Sink
}

func (s sinkLogger) Log(kv ...interface{}) error {
	var (
		lvl    level.Value = level.InfoValue()
		msg    string
		fields []interface{}
	)
	for i := 0; i+1 < len(kv); i += 2 {
		if v, ok := kv[i+1].(level.Value); ok {
			lvl = v
			continue
		}
		if k, ok := kv[i].(string); ok && k == "msg" {
			msg = fmt.Sprint(kv[i+1])
			continue
		}
		fields = append(fields, kv[i], kv[i+1])
	}

	var buf bytes.Buffer
	if len(fields) > 0 {
		_ = log.NewLogfmtLogger(&buf).Log(fields...)
	}
	s.sink(lvl, msg, string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))))
	return nil
}

// LevelHandler shows or changes the current log level over HTTP.
func LevelHandler(currentLogLevel *dslog.Level) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			response := map[string]interface{}{
				"message": fmt.Sprintf("Current log level is %s", currentLogLevel.String()),
			}
			writeJSON(w, http.StatusOK, response)
		case "POST":
			logLevel := r.FormValue("log_level")

			var newLogLevel dslog.Level
			if err := newLogLevel.Set(logLevel); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{
					"message": fmt.Sprintf("%v", err),
					"status":  "failed",
				})
				return
			}

			*currentLogLevel = newLogLevel
			mtx.Lock()
			currentLevel = newLogLevel
			disabled = false
			if plogger != nil {
				rebuild()
			}
			mtx.Unlock()

			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status":  "success",
				"message": fmt.Sprintf("Log level set to %s", logLevel),
			})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
