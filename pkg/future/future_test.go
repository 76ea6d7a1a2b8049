package future

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/grafana/cassbridge/pkg/casserr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestExecutor(t *testing.T) (*Executor, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	e := NewExecutor(log.NewNopLogger(), reg)
	t.Cleanup(e.Wait)
	return e, reg
}

func TestReadyFuture(t *testing.T) {
	f := Ready(42, nil)
	assert.True(t, f.IsReady())
	assert.Equal(t, 42, f.Wait().Value)

	o, ok := f.WaitTimed(0)
	require.True(t, ok)
	assert.Equal(t, 42, o.Value)
}

func TestWaitDoesNotConsume(t *testing.T) {
	e, _ := newTestExecutor(t)
	f := Make(e, func(context.Context) (string, error) { return "rows", nil })

	assert.Equal(t, "rows", f.Wait().Value)
	assert.Equal(t, "rows", f.Wait().Value)
	o, ok := f.WaitTimed(time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, "rows", o.Value)
}

func TestWaitTimedExpires(t *testing.T) {
	e, _ := newTestExecutor(t)
	release := make(chan struct{})
	f := Make(e, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	_, ok := f.WaitTimed(10 * time.Millisecond)
	assert.False(t, ok)
	assert.False(t, f.IsReady())

	close(release)
	assert.Equal(t, 1, f.Wait().Value)
}

func TestConcurrentWaitersObserveSameOutcome(t *testing.T) {
	e, _ := newTestExecutor(t)
	release := make(chan struct{})
	boom := errors.New("boom")
	f := Make(e, func(context.Context) (int, error) {
		<-release
		return 0, boom
	})

	const waiters = 32
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.Wait().Err
		}(i)
	}
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.Same(t, boom, err)
	}
}

func TestCallbackAfterReadyRunsSynchronously(t *testing.T) {
	f := Ready("done", nil)
	called := false
	require.NoError(t, f.SetCallback(func() { called = true }))
	assert.True(t, called, "callback must run before SetCallback returns")
}

func TestCallbackBeforeReadyRunsOnce(t *testing.T) {
	e, _ := newTestExecutor(t)
	release := make(chan struct{})
	f := Make(e, func(context.Context) (int, error) {
		<-release
		return 7, nil
	})

	calls := atomic.NewInt32(0)
	fired := make(chan struct{})
	require.NoError(t, f.SetCallback(func() {
		calls.Inc()
		close(fired)
	}))
	assert.ErrorIs(t, f.SetCallback(func() { calls.Inc() }), ErrCallbackAlreadySet)

	close(release)
	<-fired
	e.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestSecondCallbackAfterReadyRejected(t *testing.T) {
	f := Ready(1, nil)
	require.NoError(t, f.SetCallback(func() {}))
	assert.Equal(t, ErrCallbackAlreadySet, f.SetCallback(func() { t.Fatal("must not run") }))
}

func TestFreeDetachesPendingCallback(t *testing.T) {
	e, _ := newTestExecutor(t)
	release := make(chan struct{})
	f := Make(e, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	require.NoError(t, f.SetCallback(func() { t.Error("callback ran after free") }))
	f.Free()
	close(release)
	e.Wait()
	assert.True(t, f.IsReady())
}

func TestTimeoutDoesNotCancelTask(t *testing.T) {
	e, reg := newTestExecutor(t)
	release := make(chan struct{})
	finished := atomic.NewBool(false)

	f := MakeWithTimeout(e, 5*time.Millisecond, func(ctx context.Context) (int, error) {
		<-release
		assert.NoError(t, ctx.Err())
		finished.Store(true)
		return 1, nil
	})

	o := f.Wait()
	require.Error(t, o.Err)
	assert.Equal(t, casserr.LibRequestTimedOut, casserr.CodeOf(o.Err))
	assert.False(t, finished.Load())

	close(release)
	e.Wait()
	assert.True(t, finished.Load())
	assert.Equal(t, casserr.LibRequestTimedOut, casserr.CodeOf(f.Wait().Err), "late outcome is discarded")

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "cassbridge_futures_completed_total"))
}

func TestPanicBecomesInternalError(t *testing.T) {
	e, _ := newTestExecutor(t)
	f := Make(e, func(context.Context) (int, error) {
		panic("kaboom")
	})
	o := f.Wait()
	assert.Equal(t, casserr.LibInternalError, casserr.CodeOf(o.Err))
	assert.Contains(t, o.Err.Error(), "kaboom")
}

func TestInflightGauge(t *testing.T) {
	e, _ := newTestExecutor(t)
	release := make(chan struct{})
	f := Make(e, func(context.Context) (int, error) {
		<-release
		return 0, nil
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.inflight))
	close(release)
	f.Wait()
	e.Wait()
	assert.Equal(t, 0.0, testutil.ToFloat64(e.metrics.inflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.completed.WithLabelValues(outcomeSuccess)))
}
