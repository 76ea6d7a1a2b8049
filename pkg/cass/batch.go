package cass

import (
	"time"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/cow"
	"github.com/grafana/cassbridge/pkg/driver"
)

type batchState struct {
	typ     driver.BatchType
	entries []driver.BatchEntry
	opts    driver.RequestOptions
	profile *perStatementProfile
}

func (s batchState) Clone() batchState {
	out := s
	out.entries = append([]driver.BatchEntry(nil), s.entries...)
	if s.opts.Timestamp != nil {
		ts := *s.opts.Timestamp
		out.opts.Timestamp = &ts
	}
	return out
}

func (s *batchState) request() *driver.Batch {
	return &driver.Batch{Type: s.typ, Entries: s.entries, RequestOptions: s.opts}
}

// Batch is a CassBatch.
type Batch struct {
	state          *cow.Cell[batchState]
	requestTimeout time.Duration
}

// Release implements argconv.Releaser.
func (b *Batch) Release() {
	b.state.Release()
}

// BatchNew implements cass_batch_new. Unknown batch types yield null.
func BatchNew(typ driver.BatchType) argconv.Ptr[Batch] {
	switch typ {
	case driver.LoggedBatch, driver.UnloggedBatch, driver.CounterBatch:
	default:
		return argconv.Null[Batch]()
	}
	return argconv.BoxInto(&Batch{state: cow.New(batchState{typ: typ, opts: defaultRequestOptions()})})
}

// BatchFree implements cass_batch_free.
func BatchFree(p argconv.Ptr[Batch]) {
	argconv.BoxFree(p)
}

// BatchSetConsistency implements cass_batch_set_consistency.
func BatchSetConsistency(p argconv.Ptr[Batch], c driver.Consistency) casserr.Code {
	b := argconv.MustBox(p)
	if !c.Valid() {
		return casserr.LibBadParams
	}
	b.state.Mutate(func(st *batchState) { st.opts.Consistency = c })
	return casserr.OK
}

// BatchSetSerialConsistency implements cass_batch_set_serial_consistency.
func BatchSetSerialConsistency(p argconv.Ptr[Batch], c driver.Consistency) casserr.Code {
	b := argconv.MustBox(p)
	if !c.IsSerial() {
		return casserr.LibBadParams
	}
	b.state.Mutate(func(st *batchState) { st.opts.SerialConsistency = c })
	return casserr.OK
}

// BatchSetTimestamp implements cass_batch_set_timestamp.
func BatchSetTimestamp(p argconv.Ptr[Batch], timestamp int64) casserr.Code {
	argconv.MustBox(p).state.Mutate(func(st *batchState) { st.opts.Timestamp = &timestamp })
	return casserr.OK
}

// BatchSetRequestTimeout implements cass_batch_set_request_timeout.
func BatchSetRequestTimeout(p argconv.Ptr[Batch], timeoutMs uint64) casserr.Code {
	argconv.MustBox(p).requestTimeout = time.Duration(timeoutMs) * time.Millisecond
	return casserr.OK
}

// BatchSetIsIdempotent implements cass_batch_set_is_idempotent.
func BatchSetIsIdempotent(p argconv.Ptr[Batch], idempotent bool) casserr.Code {
	argconv.MustBox(p).state.Mutate(func(st *batchState) { st.opts.Idempotent = idempotent })
	return casserr.OK
}

// BatchSetTracing implements cass_batch_set_tracing.
func BatchSetTracing(p argconv.Ptr[Batch], enabled bool) casserr.Code {
	argconv.MustBox(p).state.Mutate(func(st *batchState) { st.opts.Tracing = enabled })
	return casserr.OK
}

// BatchSetRetryPolicy implements cass_batch_set_retry_policy.
func BatchSetRetryPolicy(p argconv.Ptr[Batch], rp argconv.Ptr[RetryPolicy]) casserr.Code {
	b := argconv.MustBox(p)
	policy := retryConfig(rp)
	b.state.Mutate(func(st *batchState) { st.opts.RetryPolicy = policy })
	return casserr.OK
}

// BatchSetExecutionProfile implements cass_batch_set_execution_profile.
func BatchSetExecutionProfile(p argconv.Ptr[Batch], name string) casserr.Code {
	profile := newPerStatementProfile(name)
	argconv.MustBox(p).state.Mutate(func(st *batchState) {
		st.profile = profile
		st.opts.Profile = nil
	})
	return casserr.OK
}

// BatchAddStatement implements cass_batch_add_statement. The statement is
// copied with its current values.
func BatchAddStatement(p argconv.Ptr[Batch], stmt argconv.Ptr[Statement]) casserr.Code {
	b := argconv.MustBox(p)
	st := argconv.MustBox(stmt).state.Load()
	q := st.request()
	entry := driver.BatchEntry{
		Statement:  q.Statement,
		Values:     append([]any(nil), q.Values...),
		Idempotent: q.Idempotent,
	}
	b.state.Mutate(func(bs *batchState) { bs.entries = append(bs.entries, entry) })
	return casserr.OK
}
