package cass

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/future"
)

// outcome is what a session operation resolves to. Operations without a
// value leave both fields nil.
type outcome struct {
	result   *Result
	prepared *Prepared
}

// Future is a CassFuture.
type Future struct {
	f *future.Future[outcome]
}

func newFuture(f *future.Future[outcome]) argconv.Ptr[Future] {
	return argconv.BoxInto(&Future{f: f})
}

// Release implements argconv.Releaser.
func (f *Future) Release() {
	f.f.Free()
}

// FutureFree implements cass_future_free. A callback that has not started
// yet never runs.
func FutureFree(p argconv.Ptr[Future]) {
	argconv.BoxFree(p)
}

// FutureSetCallback implements cass_future_set_callback. cb runs at once
// when the future is already ready.
func FutureSetCallback(p argconv.Ptr[Future], cb func()) casserr.Code {
	f := argconv.MustBox(p)
	if err := f.f.SetCallback(cb); err != nil {
		return casserr.LibCallbackAlreadySet
	}
	return casserr.OK
}

// FutureReady implements cass_future_ready.
func FutureReady(p argconv.Ptr[Future]) bool {
	return argconv.MustBox(p).f.IsReady()
}

// FutureWait implements cass_future_wait.
func FutureWait(p argconv.Ptr[Future]) {
	argconv.MustBox(p).f.Wait()
}

// FutureWaitTimed implements cass_future_wait_timed. It reports whether the
// future became ready within timeoutUs microseconds.
func FutureWaitTimed(p argconv.Ptr[Future], timeoutUs uint64) bool {
	f := argconv.MustBox(p).f
	// Longer than time.Duration can hold.
	if timeoutUs > math.MaxInt64/uint64(time.Microsecond) {
		f.Wait()
		return true
	}
	_, ok := f.WaitTimed(time.Duration(timeoutUs) * time.Microsecond)
	return ok
}

// FutureGetResult implements cass_future_get_result. Each call hands out a
// new reference the caller must free. Failed futures and futures without a
// result yield null.
func FutureGetResult(p argconv.Ptr[Future]) argconv.Ptr[Result] {
	o := argconv.MustBox(p).f.Wait()
	if o.Err != nil || o.Value.result == nil {
		return argconv.Null[Result]()
	}
	return argconv.ArcInto(o.Value.result)
}

// FutureGetErrorResult implements cass_future_get_error_result. Only
// server errors carry one.
func FutureGetErrorResult(p argconv.Ptr[Future]) argconv.Ptr[ErrorResult] {
	o := argconv.MustBox(p).f.Wait()
	return argconv.ArcInto(casserr.ResultOf(o.Err))
}

// FutureGetPrepared implements cass_future_get_prepared.
func FutureGetPrepared(p argconv.Ptr[Future]) argconv.Ptr[Prepared] {
	o := argconv.MustBox(p).f.Wait()
	if o.Err != nil || o.Value.prepared == nil {
		return argconv.Null[Prepared]()
	}
	return argconv.ArcInto(o.Value.prepared)
}

// FutureErrorCode implements cass_future_error_code.
func FutureErrorCode(p argconv.Ptr[Future]) casserr.Code {
	return casserr.CodeOf(argconv.MustBox(p).f.Wait().Err)
}

// FutureErrorMessage implements cass_future_error_message. It is empty for
// successful futures.
func FutureErrorMessage(p argconv.Ptr[Future]) string {
	return casserr.MessageOf(argconv.MustBox(p).f.Wait().Err)
}

// FutureTracingID implements cass_future_tracing_id.
func FutureTracingID(p argconv.Ptr[Future]) (uuid.UUID, casserr.Code) {
	o := argconv.MustBox(p).f.Wait()
	if o.Err != nil || o.Value.result == nil {
		return uuid.Nil, casserr.LibNoTracingID
	}
	id, err := uuid.FromBytes(o.Value.result.TracingID)
	if err != nil {
		return uuid.Nil, casserr.LibNoTracingID
	}
	return id, casserr.OK
}
