package log

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelHandler(t *testing.T) {
	var lvl dslog.Level
	err := lvl.Set("info")
	assert.NoError(t, err)
	plogger = &prometheusLogger{
		baseLogger: log.NewLogfmtLogger(io.Discard),
	}

	testCases := []struct {
		testName           string
		targetLogLevel     string
		expectedResponse   string
		expectedLogLevel   string
		expectedStatusCode int
	}{
		{"GetLogLevel", "", `{"message":"Current log level is info"}`, "info", 200},
		{"PostLogLevelInvalid", "invalid", `{"message":"unrecognized log level \"invalid\"", "status":"failed"}`, "info", 400},
		{"PostLogLevelEmpty", "", `{"message":"unrecognized log level \"\"", "status":"failed"}`, "info", 400},
		{"PostLogLevelDebug", "debug", `{"status": "success", "message":"Log level set to debug"}`, "debug", 200},
	}

	for _, testCase := range testCases {
		t.Run(testCase.testName, func(t *testing.T) {
			var (
				req *http.Request
				err error
			)

			if strings.HasPrefix(testCase.testName, "Get") {
				req, err = http.NewRequest("GET", "/", nil)
			} else if strings.HasPrefix(testCase.testName, "Post") {
				form := url.Values{"log_level": {testCase.targetLogLevel}}
				req, err = http.NewRequest("POST", "/", strings.NewReader(form.Encode()))
				req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
			}
			assert.NoError(t, err)

			rr := httptest.NewRecorder()
			handler := LevelHandler(&lvl)
			handler.ServeHTTP(rr, req)

			assert.JSONEq(t, testCase.expectedResponse, rr.Body.String())
			assert.Equal(t, testCase.expectedStatusCode, rr.Code)
			assert.Equal(t, testCase.expectedLogLevel, lvl.String())
		})
	}
}

func TestSinkReceivesFilteredRecords(t *testing.T) {
	type record struct {
		lvl    string
		msg    string
		fields string
	}
	var got []record

	var lvl dslog.Level
	require.NoError(t, lvl.Set("info"))
	InitLogger(lvl, io.Discard, nil)
	SetSink(func(l level.Value, msg, fields string) {
		got = append(got, record{l.String(), msg, fields})
	})
	defer SetSink(nil)

	level.Debug(Logger).Log("msg", "dropped")
	level.Warn(Logger).Log("msg", "session closed", "host", "127.0.0.1", "attempt", 2)

	require.Len(t, got, 1)
	assert.Equal(t, record{"warn", "session closed", "host=127.0.0.1 attempt=2"}, got[0])
}

func TestDisableAndCountMessages(t *testing.T) {
	var (
		buf bytes.Buffer
		lvl dslog.Level
		reg = prometheus.NewRegistry()
	)
	require.NoError(t, lvl.Set("debug"))
	InitLogger(lvl, &buf, reg)

	level.Info(Logger).Log("msg", "connected")
	assert.Contains(t, buf.String(), "msg=connected")
	assert.Equal(t, 1.0, testutil.ToFloat64(plogger.logMessages.WithLabelValues("info")))

	Disable()
	buf.Reset()
	level.Error(Logger).Log("msg", "hidden")
	assert.Empty(t, buf.String())

	SetLevel(lvl)
	level.Error(Logger).Log("msg", "visible")
	assert.Contains(t, buf.String(), "msg=visible")
	cur := CurrentLevel()
	assert.Equal(t, "debug", cur.String())
}
