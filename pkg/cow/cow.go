// Package cow implements copy-on-write configuration shared between a
// mutable handle and the snapshots taken by in-flight requests.
//
// A handle owns a Cell. Taking a Snapshot aliases the current block and
// bumps its count. Mutating through the Cell works in place while nobody
// else holds the block, otherwise it clones the block once and swaps the
// clone in, so snapshots never observe later mutations.
package cow

import (
	"go.uber.org/atomic"
)

// Cloner is implemented by configuration values. Clone must return a deep
// copy: nothing reachable from the result may be mutated through the
// original.
type Cloner[T any] interface {
	Clone() T
}

type block[T any] struct {
	refs *atomic.Int32
	val  T
}

func newBlock[T any](v T) *block[T] {
	return &block[T]{refs: atomic.NewInt32(1), val: v}
}

func (b *block[T]) unique() bool { return b.refs.Load() == 1 }

// Cell is the handle side of a copy-on-write value. A Cell is used by one
// goroutine at a time, like the handle that owns it.
type Cell[T Cloner[T]] struct {
	b *block[T]
}

// New wraps v.
func New[T Cloner[T]](v T) *Cell[T] {
	return &Cell[T]{b: newBlock(v)}
}

// Load returns the current value. The pointer is only valid until the next
// Mutate.
func (c *Cell[T]) Load() *T {
	return &c.b.val
}

// Mutate applies f to a block that no snapshot can observe.
func (c *Cell[T]) Mutate(f func(*T)) {
	if !c.b.unique() {
		fresh := newBlock(c.b.val.Clone())
		c.b.refs.Dec()
		c.b = fresh
	}
	f(&c.b.val)
}

// Replace installs v without cloning the current block.
func (c *Cell[T]) Replace(v T) {
	if c.b.unique() {
		c.b.val = v
		return
	}
	c.b.refs.Dec()
	c.b = newBlock(v)
}

// Shared reports whether a snapshot still aliases the current block.
func (c *Cell[T]) Shared() bool {
	return !c.b.unique()
}

// Inner identifies the current block, for tests.
func (c *Cell[T]) Inner() *T {
	return &c.b.val
}

// Snapshot aliases the current block. The caller must Release it.
func (c *Cell[T]) Snapshot() *Snapshot[T] {
	c.b.refs.Inc()
	return &Snapshot[T]{b: c.b}
}

// Release drops the handle's reference.
func (c *Cell[T]) Release() {
	c.b.refs.Dec()
}

// Snapshot is a read-mostly alias of a Cell block, owned by one request.
type Snapshot[T Cloner[T]] struct {
	b        *block[T]
	released bool
}

// Load returns the snapshot value.
func (s *Snapshot[T]) Load() *T {
	return &s.b.val
}

// Mutate applies f to a private copy, cloning first when the block is still
// shared with the handle or other snapshots.
func (s *Snapshot[T]) Mutate(f func(*T)) {
	if !s.b.unique() {
		fresh := newBlock(s.b.val.Clone())
		s.b.refs.Dec()
		s.b = fresh
	}
	f(&s.b.val)
}

// Inner identifies the aliased block, for tests.
func (s *Snapshot[T]) Inner() *T {
	return &s.b.val
}

// Release drops the snapshot's reference. Releasing twice is a no-op.
func (s *Snapshot[T]) Release() {
	if s.released {
		return
	}
	s.released = true
	s.b.refs.Dec()
}
