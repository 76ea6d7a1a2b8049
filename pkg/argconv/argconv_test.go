package argconv

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type session struct {
	name     string
	released *atomic.Int32
}

func (s *session) Release() { s.released.Inc() }

type row struct{ idx int }

type table struct{ name string }

func newSession() *session { return &session{name: "s", released: atomic.NewInt32(0)} }

func withRegistry(t *testing.T) {
	prev := handles
	handles = NewRegistry()
	t.Cleanup(func() { handles = prev })
}

func TestBoxRoundTrip(t *testing.T) {
	withRegistry(t)

	s := newSession()
	p := BoxInto(s)
	require.False(t, p.IsNull())
	assert.Equal(t, 1, Live())

	got, ok := BoxAsRef(p)
	require.True(t, ok)
	assert.Same(t, s, got)

	BoxFree(p)
	assert.Equal(t, int32(1), s.released.Load())
	assert.Equal(t, 0, Live())

	_, ok = BoxAsRef(p)
	assert.False(t, ok)
}

func TestBoxFromDoesNotRelease(t *testing.T) {
	withRegistry(t)

	s := newSession()
	p := BoxInto(s)
	got, ok := BoxFrom(p)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, int32(0), s.released.Load())
	assert.False(t, Alive(p.Addr()))
}

func TestNullHandling(t *testing.T) {
	withRegistry(t)

	assert.True(t, BoxInto[session](nil).IsNull())
	assert.True(t, ArcInto[session](nil).IsNull())
	assert.True(t, ArcClone(Null[session]()).IsNull())

	_, ok := BoxAsRef(Null[session]())
	assert.False(t, ok)
	_, ok = ArcAsRef(Null[session]())
	assert.False(t, ok)

	BoxFree(Null[session]())
	ArcFree(Null[session]())

	assert.PanicsWithValue(t,
		"argconv: null *argconv.session passed for a required exclusive pointer",
		func() { MustBox(Null[session]()) })
}

func TestDisciplineAndTypeMismatch(t *testing.T) {
	withRegistry(t)

	s := newSession()
	boxed := BoxInto(s)
	_, ok := ArcAsRef(boxed)
	assert.False(t, ok, "exclusive pointer must not resolve as shared")

	shared := ArcInto(newSession())
	_, ok = BoxAsRef(shared)
	assert.False(t, ok, "shared pointer must not resolve as exclusive")

	wrongType := FromAddr[table](boxed.Addr())
	_, ok = BoxAsRef(wrongType)
	assert.False(t, ok)

	assert.Panics(t, func() { MustArc(boxed) })
}

func TestArcCloneFreeDestroysOnce(t *testing.T) {
	withRegistry(t)

	s := newSession()
	p := ArcInto(s)
	q := ArcClone(p)
	assert.Equal(t, p, q)
	assert.Equal(t, int64(2), ArcCount(p))

	ArcFree(p)
	assert.Equal(t, int32(0), s.released.Load())
	_, ok := ArcAsRef(q)
	assert.True(t, ok)

	ArcFree(q)
	assert.Equal(t, int32(1), s.released.Load())
	assert.Equal(t, 0, Live())

	// Double free is a contract violation: ignored, never a second release.
	ArcFree(q)
	assert.Equal(t, int32(1), s.released.Load())
}

func TestArcIntoSameValueSharesAddress(t *testing.T) {
	withRegistry(t)

	s := newSession()
	p := ArcInto(s)
	q := ArcInto(s)
	assert.Equal(t, p.Addr(), q.Addr())
	assert.Equal(t, int64(2), ArcCount(p))
}

func TestConcurrentArcCloneFree(t *testing.T) {
	withRegistry(t)

	s := newSession()
	p := ArcInto(s)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ArcFree(ArcClone(p))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), s.released.Load())
	ArcFree(p)
	assert.Equal(t, int32(1), s.released.Load())
}

func TestBorrowedPurgedWithOwner(t *testing.T) {
	withRegistry(t)

	owner := ArcInto(newSession())
	r0 := &row{idx: 0}
	a := RefInto(owner.Addr(), r0)
	b := RefInto(owner.Addr(), r0)
	assert.Equal(t, a, b, "borrowing the same value twice yields the same address")

	nested := RefInto(a.Addr(), &row{idx: 1})
	assert.Equal(t, owner.Addr(), RootOf(nested.Addr()))

	got, ok := RefAsRef(a)
	require.True(t, ok)
	assert.Same(t, r0, got)

	ArcFree(owner)
	_, ok = RefAsRef(a)
	assert.False(t, ok)
	_, ok = RefAsRef(nested)
	assert.False(t, ok)
	assert.Equal(t, 0, Live())
}

func TestArcBorrowUpgradeOutlivesParent(t *testing.T) {
	withRegistry(t)

	parent := BoxInto(&table{name: "ks"})
	child := newSession()

	borrowed := ArcBorrow(parent.Addr(), child)
	assert.Equal(t, int64(0), ArcCount(borrowed))

	owned := ArcClone(borrowed)
	assert.Equal(t, borrowed, owned)

	BoxFree(parent)
	v, ok := ArcAsRef(owned)
	require.True(t, ok, "an upgraded pointer survives its parent")
	assert.Same(t, child, v)

	ArcFree(owned)
	assert.Equal(t, int32(1), child.released.Load())
	assert.Equal(t, 0, Live())
}

func TestArcBorrowWithoutUpgradeDiesWithParent(t *testing.T) {
	withRegistry(t)

	parent := BoxInto(&table{name: "ks"})
	child := newSession()
	borrowed := ArcBorrow(parent.Addr(), child)

	BoxFree(parent)
	_, ok := ArcAsRef(borrowed)
	assert.False(t, ok)
	assert.Equal(t, int32(0), child.released.Load(), "borrowed values are never released")
}

func TestAttachCleanup(t *testing.T) {
	withRegistry(t)

	owner := BoxInto(&table{})
	child := RefInto(owner.Addr(), &row{})

	var calls []string
	require.True(t, AttachCleanup(owner.Addr(), func() { calls = append(calls, "owner") }))
	require.True(t, AttachCleanup(child.Addr(), func() { calls = append(calls, "child") }))

	BoxFree(owner)
	assert.ElementsMatch(t, []string{"owner", "child"}, calls)
	assert.False(t, AttachCleanup(owner.Addr(), func() {}))
}

func TestWeakUpgrade(t *testing.T) {
	tbl := &table{name: "users"}
	w := Downgrade(tbl)

	got, ok := w.Upgrade()
	require.True(t, ok)
	assert.Equal(t, "users", got.name)
	runtime.KeepAlive(tbl)

	_, ok = Weak[table]{}.Upgrade()
	assert.False(t, ok)
}
