package cass

import (
	"math/big"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/cow"
	"github.com/grafana/cassbridge/pkg/driver"
)

// statementState is the part of a statement captured by an execution.
type statementState struct {
	query    string
	prepared *Prepared
	values   []any

	keyspace    string
	pageSize    int32
	pagingState []byte

	opts    driver.RequestOptions
	profile *perStatementProfile
}

func (s statementState) Clone() statementState {
	out := s
	out.values = append([]any(nil), s.values...)
	out.pagingState = append([]byte(nil), s.pagingState...)
	if s.opts.Timestamp != nil {
		ts := *s.opts.Timestamp
		out.opts.Timestamp = &ts
	}
	return out
}

func (s *statementState) request() *driver.Query {
	q := &driver.Query{
		Statement:      s.query,
		Values:         s.values,
		Keyspace:       s.keyspace,
		PageSize:       s.pageSize,
		PagingState:    s.pagingState,
		RequestOptions: s.opts,
	}
	if s.prepared != nil {
		q.Statement = s.prepared.info.Statement
		q.Prepared = true
		if q.Keyspace == "" {
			q.Keyspace = s.prepared.info.Keyspace
		}
	}
	return q
}

func defaultRequestOptions() driver.RequestOptions {
	return driver.RequestOptions{
		Consistency:       driver.ConsistencyUnset,
		SerialConsistency: driver.ConsistencyUnset,
	}
}

// Statement is a CassStatement. The state is copy-on-write: executions
// keep the state they started with while the handle goes on changing.
type Statement struct {
	state *cow.Cell[statementState]

	// requestTimeout bounds the whole execution on the client side, 0
	// means none.
	requestTimeout time.Duration
}

func unsetValues(n int) []any {
	values := make([]any, n)
	for i := range values {
		values[i] = driver.Unset
	}
	return values
}

func newStatement(st statementState) *Statement {
	return &Statement{state: cow.New(st)}
}

// Release implements argconv.Releaser.
func (s *Statement) Release() {
	s.state.Release()
}

// StatementNew implements cass_statement_new.
func StatementNew(query string, parameterCount int) argconv.Ptr[Statement] {
	if parameterCount < 0 {
		parameterCount = 0
	}
	return argconv.BoxInto(newStatement(statementState{
		query:  query,
		values: unsetValues(parameterCount),
		opts:   defaultRequestOptions(),
	}))
}

// StatementFree implements cass_statement_free.
func StatementFree(p argconv.Ptr[Statement]) {
	argconv.BoxFree(p)
}

// StatementResetParameters implements cass_statement_reset_parameters.
func StatementResetParameters(p argconv.Ptr[Statement], count int) casserr.Code {
	if count < 0 {
		return casserr.LibBadParams
	}
	argconv.MustBox(p).state.Mutate(func(st *statementState) {
		st.values = unsetValues(count)
	})
	return casserr.OK
}

// StatementSetConsistency implements cass_statement_set_consistency.
func StatementSetConsistency(p argconv.Ptr[Statement], c driver.Consistency) casserr.Code {
	s := argconv.MustBox(p)
	if !c.Valid() {
		return casserr.LibBadParams
	}
	s.state.Mutate(func(st *statementState) { st.opts.Consistency = c })
	return casserr.OK
}

// StatementSetSerialConsistency implements cass_statement_set_serial_consistency.
func StatementSetSerialConsistency(p argconv.Ptr[Statement], c driver.Consistency) casserr.Code {
	s := argconv.MustBox(p)
	if !c.IsSerial() {
		return casserr.LibBadParams
	}
	s.state.Mutate(func(st *statementState) { st.opts.SerialConsistency = c })
	return casserr.OK
}

// StatementSetPagingSize implements cass_statement_set_paging_size. A
// non-positive size disables paging.
func StatementSetPagingSize(p argconv.Ptr[Statement], pageSize int) casserr.Code {
	s := argconv.MustBox(p)
	if pageSize <= 0 {
		pageSize = -1
	}
	s.state.Mutate(func(st *statementState) { st.pageSize = int32(pageSize) })
	return casserr.OK
}

// StatementSetPagingState implements cass_statement_set_paging_state: the
// next execution continues after the page held by result.
func StatementSetPagingState(p argconv.Ptr[Statement], result argconv.Ptr[Result]) casserr.Code {
	s := argconv.MustBox(p)
	res := argconv.MustArc(result)
	s.state.Mutate(func(st *statementState) {
		st.pagingState = append([]byte(nil), res.PagingState...)
	})
	return casserr.OK
}

// StatementSetPagingStateToken implements cass_statement_set_paging_state_token.
func StatementSetPagingStateToken(p argconv.Ptr[Statement], token []byte) casserr.Code {
	s := argconv.MustBox(p)
	s.state.Mutate(func(st *statementState) {
		st.pagingState = append([]byte(nil), token...)
	})
	return casserr.OK
}

// StatementSetTimestamp implements cass_statement_set_timestamp.
func StatementSetTimestamp(p argconv.Ptr[Statement], timestamp int64) casserr.Code {
	argconv.MustBox(p).state.Mutate(func(st *statementState) { st.opts.Timestamp = &timestamp })
	return casserr.OK
}

// StatementSetRequestTimeout implements cass_statement_set_request_timeout.
// The timeout covers the whole execution, 0 removes it.
func StatementSetRequestTimeout(p argconv.Ptr[Statement], timeoutMs uint64) casserr.Code {
	argconv.MustBox(p).requestTimeout = time.Duration(timeoutMs) * time.Millisecond
	return casserr.OK
}

// StatementSetIsIdempotent implements cass_statement_set_is_idempotent.
func StatementSetIsIdempotent(p argconv.Ptr[Statement], idempotent bool) casserr.Code {
	argconv.MustBox(p).state.Mutate(func(st *statementState) { st.opts.Idempotent = idempotent })
	return casserr.OK
}

// StatementSetTracing implements cass_statement_set_tracing.
func StatementSetTracing(p argconv.Ptr[Statement], enabled bool) casserr.Code {
	argconv.MustBox(p).state.Mutate(func(st *statementState) { st.opts.Tracing = enabled })
	return casserr.OK
}

// StatementSetRetryPolicy implements cass_statement_set_retry_policy. Null
// removes the statement policy.
func StatementSetRetryPolicy(p argconv.Ptr[Statement], rp argconv.Ptr[RetryPolicy]) casserr.Code {
	s := argconv.MustBox(p)
	policy := retryConfig(rp)
	s.state.Mutate(func(st *statementState) { st.opts.RetryPolicy = policy })
	return casserr.OK
}

func retryConfig(rp argconv.Ptr[RetryPolicy]) *driver.RetryPolicy {
	if rp.IsNull() {
		return nil
	}
	cfg := argconv.MustArc(rp).cfg
	return &cfg
}

// StatementSetKeyspace implements cass_statement_set_keyspace.
func StatementSetKeyspace(p argconv.Ptr[Statement], keyspace string) casserr.Code {
	argconv.MustBox(p).state.Mutate(func(st *statementState) { st.keyspace = keyspace })
	return casserr.OK
}

// StatementSetExecutionProfile implements cass_statement_set_execution_profile.
// An empty name goes back to the cluster default profile. The name is only
// checked when the statement runs.
func StatementSetExecutionProfile(p argconv.Ptr[Statement], name string) casserr.Code {
	profile := newPerStatementProfile(name)
	argconv.MustBox(p).state.Mutate(func(st *statementState) {
		st.profile = profile
		st.opts.Profile = nil
	})
	return casserr.OK
}

func bind(p argconv.Ptr[Statement], index int, v any) casserr.Code {
	s := argconv.MustBox(p)
	if index < 0 || index >= len(s.state.Load().values) {
		return casserr.LibIndexOutOfBounds
	}
	s.state.Mutate(func(st *statementState) { st.values[index] = v })
	return casserr.OK
}

// StatementBindNull implements cass_statement_bind_null.
func StatementBindNull(p argconv.Ptr[Statement], index int) casserr.Code {
	return bind(p, index, nil)
}

// StatementBindInt8 implements cass_statement_bind_int8.
func StatementBindInt8(p argconv.Ptr[Statement], index int, v int8) casserr.Code {
	return bind(p, index, v)
}

// StatementBindInt16 implements cass_statement_bind_int16.
func StatementBindInt16(p argconv.Ptr[Statement], index int, v int16) casserr.Code {
	return bind(p, index, v)
}

// StatementBindInt32 implements cass_statement_bind_int32.
func StatementBindInt32(p argconv.Ptr[Statement], index int, v int32) casserr.Code {
	return bind(p, index, v)
}

// StatementBindUint32 implements cass_statement_bind_uint32, used for dates.
func StatementBindUint32(p argconv.Ptr[Statement], index int, v uint32) casserr.Code {
	return bind(p, index, v)
}

// StatementBindInt64 implements cass_statement_bind_int64.
func StatementBindInt64(p argconv.Ptr[Statement], index int, v int64) casserr.Code {
	return bind(p, index, v)
}

// StatementBindFloat implements cass_statement_bind_float.
func StatementBindFloat(p argconv.Ptr[Statement], index int, v float32) casserr.Code {
	return bind(p, index, v)
}

// StatementBindDouble implements cass_statement_bind_double.
func StatementBindDouble(p argconv.Ptr[Statement], index int, v float64) casserr.Code {
	return bind(p, index, v)
}

// StatementBindBool implements cass_statement_bind_bool.
func StatementBindBool(p argconv.Ptr[Statement], index int, v bool) casserr.Code {
	return bind(p, index, v)
}

// StatementBindString implements cass_statement_bind_string.
func StatementBindString(p argconv.Ptr[Statement], index int, v string) casserr.Code {
	return bind(p, index, v)
}

// StatementBindBytes implements cass_statement_bind_bytes.
func StatementBindBytes(p argconv.Ptr[Statement], index int, v []byte) casserr.Code {
	return bind(p, index, append([]byte(nil), v...))
}

// StatementBindUUID implements cass_statement_bind_uuid.
func StatementBindUUID(p argconv.Ptr[Statement], index int, v uuid.UUID) casserr.Code {
	return bind(p, index, v)
}

// StatementBindInet implements cass_statement_bind_inet.
func StatementBindInet(p argconv.Ptr[Statement], index int, v net.IP) casserr.Code {
	return bind(p, index, append(net.IP(nil), v...))
}

// StatementBindDecimal implements cass_statement_bind_decimal. varint is
// the big-endian two's complement unscaled value.
func StatementBindDecimal(p argconv.Ptr[Statement], index int, varint []byte, scale int32) casserr.Code {
	return bind(p, index, decimal.NewFromBigInt(varintToBig(varint), -scale))
}

// StatementBindDuration implements cass_statement_bind_duration.
func StatementBindDuration(p argconv.Ptr[Statement], index int, months, days int32, nanos int64) casserr.Code {
	return bind(p, index, driver.Duration{Months: months, Days: days, Nanoseconds: nanos})
}

func varintToBig(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return n
}

// bigToVarint encodes n as big-endian two's complement.
func bigToVarint(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	size := (new(big.Int).Not(n).BitLen() + 8) / 8
	x := new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), uint(8*size)))
	return x.FillBytes(make([]byte, size))
}
