package cow

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state struct {
	consistency int
	values      []int
}

func (s state) Clone() state {
	return state{consistency: s.consistency, values: slices.Clone(s.values)}
}

func TestMutateWithoutSnapshotStaysInPlace(t *testing.T) {
	c := New(state{values: []int{1}})
	before := c.Inner()

	c.Mutate(func(s *state) { s.consistency = 1 })
	c.Mutate(func(s *state) { s.values[0] = 2 })

	assert.Same(t, before, c.Inner())
	assert.Equal(t, 1, c.Load().consistency)
	assert.False(t, c.Shared())
}

func TestMutateWithSnapshotForksOnce(t *testing.T) {
	c := New(state{consistency: 1, values: []int{1, 2}})
	before := c.Inner()

	snap := c.Snapshot()
	require.True(t, c.Shared())
	assert.Same(t, before, snap.Inner())

	c.Mutate(func(s *state) {
		s.consistency = 6
		s.values[0] = 100
	})
	forked := c.Inner()
	assert.NotSame(t, before, forked)

	// The snapshot keeps the pre-mutation values.
	assert.Equal(t, 1, snap.Load().consistency)
	assert.Equal(t, []int{1, 2}, snap.Load().values)

	// The handle now owns its block alone: no second clone.
	c.Mutate(func(s *state) { s.consistency = 7 })
	assert.Same(t, forked, c.Inner())

	snap.Release()
}

func TestSnapshotMutateIsPrivate(t *testing.T) {
	c := New(state{consistency: 1})
	snap := c.Snapshot()

	snap.Mutate(func(s *state) { s.consistency = 9 })
	assert.Equal(t, 1, c.Load().consistency)
	assert.Equal(t, 9, snap.Load().consistency)
	assert.False(t, c.Shared(), "the snapshot moved to its own block")

	snap.Release()
	snap.Release()
	assert.False(t, c.Shared())
}

func TestSnapshotMutateInPlaceWhenHandleGone(t *testing.T) {
	c := New(state{consistency: 1})
	snap := c.Snapshot()
	c.Release()

	before := snap.Inner()
	snap.Mutate(func(s *state) { s.consistency = 2 })
	assert.Same(t, before, snap.Inner())
	snap.Release()
}

func TestReleasedSnapshotAllowsInPlaceMutation(t *testing.T) {
	c := New(state{})
	before := c.Inner()
	c.Snapshot().Release()

	c.Mutate(func(s *state) { s.consistency = 3 })
	assert.Same(t, before, c.Inner())
}

func TestReplace(t *testing.T) {
	c := New(state{consistency: 1})
	snap := c.Snapshot()
	c.Replace(state{consistency: 2})

	assert.Equal(t, 1, snap.Load().consistency)
	assert.Equal(t, 2, c.Load().consistency)
	snap.Release()
}

func TestConcurrentSnapshotsRead(t *testing.T) {
	c := New(state{values: []int{1, 2, 3}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		snap := c.Snapshot()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer snap.Release()
			assert.Equal(t, []int{1, 2, 3}, snap.Load().values)
		}()
		c.Mutate(func(s *state) { s.values = append(s.values[:0:0], 1, 2, 3) })
	}
	wg.Wait()
	assert.False(t, c.Shared())
}
