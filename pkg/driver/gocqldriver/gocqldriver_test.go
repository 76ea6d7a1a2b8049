package gocqldriver

import (
	"bytes"
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/inf.v0"

	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

func native(t gocql.Type) gocql.TypeInfo {
	return gocql.NewNativeType(4, t, "")
}

func TestLZ4CompressorRoundTrip(t *testing.T) {
	c := LZ4Compressor{}
	require.Equal(t, "lz4", c.Name())

	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("select * from ks.t")},
		{"repetitive", bytes.Repeat([]byte("cassandra "), 1000)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := c.Encode(tc.data)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(encoded), 4)

			decoded, err := c.Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, len(tc.data), len(decoded))
			if len(tc.data) > 0 {
				require.Equal(t, tc.data, decoded)
			}
		})
	}

	_, err := c.Decode([]byte{0, 0})
	require.Error(t, err)
}

func TestNewCompressor(t *testing.T) {
	assert.Nil(t, newCompressor(driver.CompressionNone))
	assert.Equal(t, "snappy", newCompressor(driver.CompressionSnappy).Name())
	assert.Equal(t, "lz4", newCompressor(driver.CompressionLZ4).Name())
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := defaultRetryPolicy{}
	for _, tc := range []struct {
		name string
		err  error
		want gocql.RetryType
	}{
		{"read timeout without data", &gocql.RequestErrReadTimeout{Received: 2, BlockFor: 2}, gocql.Retry},
		{"read timeout with data", &gocql.RequestErrReadTimeout{Received: 2, BlockFor: 2, DataPresent: 1}, gocql.Rethrow},
		{"read timeout missing replicas", &gocql.RequestErrReadTimeout{Received: 1, BlockFor: 2}, gocql.Rethrow},
		{"batch log write timeout", &gocql.RequestErrWriteTimeout{WriteType: "BATCH_LOG"}, gocql.Retry},
		{"simple write timeout", &gocql.RequestErrWriteTimeout{WriteType: "SIMPLE"}, gocql.Rethrow},
		{"unavailable", &gocql.RequestErrUnavailable{}, gocql.RetryNextHost},
		{"connection error", errors.New("connection reset"), gocql.RetryNextHost},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, p.GetRetryType(tc.err))
		})
	}
}

func TestFallthroughRetryPolicy(t *testing.T) {
	p := newRetryPolicy(&driver.RetryPolicy{Kind: driver.RetryFallthrough}, log.NewNopLogger())
	require.False(t, p.Attempt(nil))
	require.Equal(t, gocql.Rethrow, p.GetRetryType(&gocql.RequestErrUnavailable{}))
}

func TestLoggingRetryPolicyDelegates(t *testing.T) {
	var buf bytes.Buffer
	p := newRetryPolicy(&driver.RetryPolicy{Kind: driver.RetryDefault, Logging: true}, log.NewLogfmtLogger(&buf))
	require.IsType(t, loggingRetryPolicy{}, p)
	require.Equal(t, gocql.RetryNextHost, p.GetRetryType(&gocql.RequestErrUnavailable{}))
	require.Contains(t, buf.String(), "decision=retry_next_host")

	d := newRetryPolicy(&driver.RetryPolicy{Kind: driver.RetryDowngradingConsistency}, log.NewNopLogger())
	require.IsType(t, &gocql.DowngradingConsistencyRetryPolicy{}, d)
}

func TestToCassError(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want casserr.Code
	}{
		{"nil", nil, 0},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "execute query"), casserr.LibRequestTimedOut},
		{"no response", gocql.ErrTimeoutNoResponse, casserr.LibRequestTimedOut},
		{"no connections", gocql.ErrNoConnections, casserr.LibNoHostsAvailable},
		{"no hosts", gocql.ErrNoHosts, casserr.LibNoHostsAvailable},
		{"closed session", gocql.ErrSessionClosed, casserr.LibUnableToConnect},
		{"too many statements", gocql.ErrTooManyStmts, casserr.LibInvalidItemCount},
		{"already mapped", casserr.New(casserr.LibBadParams, "bad"), casserr.LibBadParams},
		{"unknown", errors.New("boom"), casserr.LibInternalError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mapped := toCassError(tc.err)
			if tc.err == nil {
				require.NoError(t, mapped)
				return
			}
			require.Equal(t, tc.want, casserr.CodeOf(mapped))
		})
	}

	require.Equal(t, casserr.LibUnableToConnect, casserr.CodeOf(toConnectError(errors.New("dial tcp: refused"))))
}

func TestErrorResultDetails(t *testing.T) {
	res := errorResult(casserr.ServerReadTimeout, &gocql.RequestErrReadTimeout{
		Consistency: gocql.Quorum,
		Received:    1,
		BlockFor:    2,
		DataPresent: 1,
	})
	require.Equal(t, casserr.ServerReadTimeout, res.Code)
	require.Equal(t, uint16(driver.Quorum), res.Consistency)
	require.Equal(t, int32(1), res.ResponsesReceived)
	require.Equal(t, int32(2), res.ResponsesRequired)
	require.True(t, res.DataPresent)

	res = errorResult(casserr.ServerWriteTimeout, &gocql.RequestErrWriteTimeout{WriteType: "BATCH"})
	require.Equal(t, "BATCH", res.WriteType)
	require.False(t, res.DataPresent)
}

func TestDataType(t *testing.T) {
	udt := gocql.UDTTypeInfo{
		NativeType: native(gocql.TypeUDT).(gocql.NativeType),
		KeySpace:   "ks",
		Name:       "address",
		Elements: []gocql.UDTField{
			{Name: "street", Type: native(gocql.TypeText)},
			{Name: "zip", Type: native(gocql.TypeInt)},
		},
	}
	m := gocql.CollectionType{
		NativeType: native(gocql.TypeMap).(gocql.NativeType),
		Key:        native(gocql.TypeText),
		Elem:       udt,
	}

	dt := dataType(m)
	require.Equal(t, driver.TypeMap, dt.Type)
	require.Equal(t, driver.TypeText, dt.SubType(0).Type)
	require.Equal(t, driver.TypeUDT, dt.SubType(1).Type)
	require.Equal(t, []string{"street", "zip"}, dt.SubType(1).FieldNames)
	require.Equal(t, "ks", dt.SubType(1).Keyspace)

	tuple := gocql.TupleTypeInfo{
		NativeType: native(gocql.TypeTuple).(gocql.NativeType),
		Elems:      []gocql.TypeInfo{native(gocql.TypeInt), native(gocql.TypeUUID)},
	}
	require.Equal(t, driver.TypeTuple, dataType(tuple).Type)
	require.Len(t, dataType(tuple).Sub, 2)
	require.Equal(t, driver.TypeUnknown, dataType(nil).Type)
}

func TestToValueScalars(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.Equal(t, int32(7), toValue(native(gocql.TypeInt), 7).Scalar)
	require.Equal(t, ts.UnixMilli(), toValue(native(gocql.TypeTimestamp), ts).Scalar)
	require.Equal(t, uuid.UUID(id), toValue(native(gocql.TypeUUID), gocql.UUID(id)).Scalar)
	require.Equal(t, uint32(1<<31), toValue(native(gocql.TypeDate), time.Unix(0, 0).UTC()).Scalar)
	require.Equal(t, uint32(1<<31-1), toValue(native(gocql.TypeDate), time.Unix(-86400, 0).UTC()).Scalar)

	dec := toValue(native(gocql.TypeDecimal), inf.NewDec(12345, 2)).Scalar.(decimal.Decimal)
	require.True(t, dec.Equal(decimal.RequireFromString("123.45")))

	vi := toValue(native(gocql.TypeVarint), big.NewInt(42))
	require.Equal(t, big.NewInt(42), vi.Scalar)

	require.True(t, toValue(native(gocql.TypeText), nil).Null)
}

func TestToValueCollections(t *testing.T) {
	m := gocql.CollectionType{
		NativeType: native(gocql.TypeMap).(gocql.NativeType),
		Key:        native(gocql.TypeText),
		Elem:       native(gocql.TypeInt),
	}
	v := toValue(m, map[string]int{"b": 2, "a": 1, "c": 3})
	require.Equal(t, 3, v.Count())
	require.Equal(t, "a", v.Pairs[0].Key.Scalar)
	require.Equal(t, int32(1), v.Pairs[0].Val.Scalar)
	require.Equal(t, "c", v.Pairs[2].Key.Scalar)

	l := gocql.CollectionType{
		NativeType: native(gocql.TypeList).(gocql.NativeType),
		Elem:       native(gocql.TypeBigInt),
	}
	v = toValue(l, []int64{5, 6})
	require.Equal(t, 2, v.Count())
	require.Equal(t, int64(6), v.Items[1].Scalar)

	require.True(t, toValue(l, []int64(nil)).Null)
}

func TestScanDestsDetectNull(t *testing.T) {
	cols := []gocql.ColumnInfo{
		{Name: "id", TypeInfo: native(gocql.TypeInt)},
		{Name: "pair", TypeInfo: gocql.TupleTypeInfo{
			NativeType: native(gocql.TypeTuple).(gocql.NativeType),
			Elems:      []gocql.TypeInfo{native(gocql.TypeText), native(gocql.TypeInt)},
		}},
	}
	dests := columnDests(cols)
	require.Len(t, dests, 3)

	id := 9
	*(dests[0].(**int)) = &id
	name := "x"
	*(dests[1].(**string)) = &name

	values := rowValues(cols, dests)
	require.Len(t, values, 2)
	require.Equal(t, int32(9), values[0].Scalar)
	require.False(t, values[1].Null)
	require.Equal(t, "x", values[1].Items[0].Scalar)
	require.True(t, values[1].Items[1].Null)
}

func TestBindValue(t *testing.T) {
	id := uuid.New()
	require.Equal(t, gocql.UUID(id), bindValue(id))
	require.Equal(t, gocql.UnsetValue, bindValue(driver.Unset))
	require.Nil(t, bindValue(nil))

	d := bindValue(decimal.RequireFromString("-1.50")).(*inf.Dec)
	require.Equal(t, "-1.50", d.String())

	date := bindValue(uint32(1<<31 + 1)).(time.Time)
	require.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), date)

	dur := bindValue(driver.Duration{Months: 1, Days: 2, Nanoseconds: 3})
	require.Equal(t, gocql.Duration{Months: 1, Days: 2, Nanoseconds: 3}, dur)
}

func TestClusterConfig(t *testing.T) {
	c := New(log.NewNopLogger(), prometheus.NewRegistry())
	cfg := &driver.ClusterConfig{
		ContactPoints:   []string{"10.0.0.1", "10.0.0.2:9142"},
		Port:            9042,
		ProtocolVersion: 4,
		Keyspace:        "ks",
		Username:        "cassandra",
		Password:        "secret",
		Compression:     driver.CompressionLZ4,
		ConnectTimeout:  5 * time.Second,
		DefaultProfile: driver.Profile{
			Consistency:       driver.LocalQuorum,
			SerialConsistency: driver.LocalSerial,
			RequestTimeout:    12 * time.Second,
			LoadBalancing:     &driver.LoadBalancing{Kind: driver.DCAware, LocalDC: "dc1", TokenAware: true},
		},
		Reconnect: driver.ReconnectPolicy{Exponential: true, BaseDelay: time.Second, MaxDelay: time.Minute},
	}

	cluster := c.clusterConfig(cfg)
	require.Equal(t, []string{"10.0.0.1:9042", "10.0.0.2:9142"}, cluster.Hosts)
	require.Equal(t, "ks", cluster.Keyspace)
	require.Equal(t, 4, cluster.ProtoVersion)
	require.Zero(t, cluster.Timeout)
	require.Equal(t, gocql.LocalQuorum, cluster.Consistency)
	require.Equal(t, gocql.LocalSerial, cluster.SerialConsistency)
	require.Equal(t, "lz4", cluster.Compressor.Name())
	require.Equal(t, gocql.PasswordAuthenticator{Username: "cassandra", Password: "secret"}, cluster.Authenticator)
	require.IsType(t, &gocql.ExponentialReconnectionPolicy{}, cluster.ReconnectionPolicy)
	require.NotNil(t, cluster.PoolConfig.HostSelectionPolicy)
}

func TestRequestTimeoutIsContextOnly(t *testing.T) {
	c := New(log.NewNopLogger(), prometheus.NewRegistry())
	cfg := &driver.ClusterConfig{
		ContactPoints:   []string{"10.0.0.1"},
		Port:            9042,
		ProtocolVersion: 4,
		DefaultProfile:  driver.Profile{RequestTimeout: 0},
	}
	require.Zero(t, c.clusterConfig(cfg).Timeout, "0 disables the connection timer")

	cfg.DefaultProfile.RequestTimeout = time.Second
	require.Zero(t, c.clusterConfig(cfg).Timeout)

	for _, tc := range []struct {
		name    string
		timeout time.Duration
		want    bool
	}{
		{name: "disabled", timeout: 0, want: false},
		{name: "longer than the gocql default", timeout: time.Minute, want: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := requestSettings{timeout: tc.timeout}.context(context.Background())
			defer cancel()
			deadline, ok := ctx.Deadline()
			require.Equal(t, tc.want, ok)
			if ok {
				require.Greater(t, time.Until(deadline), 30*time.Second)
			}
		})
	}
}

func TestConnectWithoutContactPoints(t *testing.T) {
	c := New(log.NewNopLogger(), prometheus.NewRegistry())
	_, err := c.Connect(context.Background(), &driver.ClusterConfig{})
	require.Equal(t, casserr.LibNoHostsAvailable, casserr.CodeOf(err))
}
