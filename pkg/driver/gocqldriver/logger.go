package gocqldriver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
)

var setLoggerOnce sync.Once

// gocqlLogger forwards the gocql package logger to go-kit at debug level.
type gocqlLogger struct {
	logger log.Logger
}

func (l gocqlLogger) Print(v ...interface{}) {
	level.Debug(l.logger).Log("msg", strings.TrimSpace(fmt.Sprint(v...)), "component", "gocql")
}

func (l gocqlLogger) Printf(format string, v ...interface{}) {
	level.Debug(l.logger).Log("msg", strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "gocql")
}

func (l gocqlLogger) Println(v ...interface{}) {
	level.Debug(l.logger).Log("msg", strings.TrimSpace(fmt.Sprintln(v...)), "component", "gocql")
}

func installLogger(logger log.Logger) {
	setLoggerOnce.Do(func() {
		gocql.Logger = gocqlLogger{logger: logger}
	})
}
