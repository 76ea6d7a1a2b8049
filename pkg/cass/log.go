package cass

import (
	"time"

	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"

	util_log "github.com/grafana/cassbridge/pkg/util/log"
)

// LogMessage is a CassLogMessage.
type LogMessage struct {
	TimeMs   uint64
	Severity LogLevel
	File     string
	Line     int
	Function string
	Message  string
}

// LogCallback receives log records, on the goroutine that logged them.
type LogCallback func(msg *LogMessage)

// LogSetLevel implements cass_log_set_level. Critical maps to error and
// trace to debug, the closest go-kit levels.
func LogSetLevel(l LogLevel) {
	var name string
	switch l {
	case LogDisabled:
		util_log.Disable()
		return
	case LogCritical, LogError:
		name = "error"
	case LogWarn:
		name = "warn"
	case LogInfo:
		name = "info"
	default:
		name = "debug"
	}
	var lvl dslog.Level
	_ = lvl.Set(name)
	util_log.SetLevel(lvl)
}

// LogSetCallback implements cass_log_set_callback. A nil callback restores
// logging to stderr.
func LogSetCallback(cb LogCallback) {
	if cb == nil {
		util_log.SetSink(nil)
		return
	}
	util_log.SetSink(func(lvl level.Value, msg, fields string) {
		text := msg
		if fields != "" {
			text += " " + fields
		}
		cb(&LogMessage{
			TimeMs:   uint64(time.Now().UnixMilli()),
			Severity: logLevelOf(lvl),
			Function: "cassbridge",
			Message:  text,
		})
	})
}
