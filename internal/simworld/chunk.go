package simworld

import (
	"sync"

	"emberforge"
)

// Chunk is one cell of a World's grid. Queued block modifications are
// opaque byte-sized edits here — enough to exercise ApplyModifications'
// call sites without modeling real block state.
type Chunk struct {
	x, z        int32
	createdTick int64

	mu      sync.Mutex
	pending []Modification
	applied int
}

// Modification is a single queued edit against a chunk.
type Modification struct {
	X, Y, Z int32
	BlockID int32
}

var _ emberforge.Chunk = (*Chunk)(nil)

func newChunk(x, z int32, createdTick int64) *Chunk {
	return &Chunk{x: x, z: z, createdTick: createdTick}
}

func (c *Chunk) X() int32 { return c.x }
func (c *Chunk) Z() int32 { return c.z }

func (c *Chunk) CreatedTick() int64 { return c.createdTick }

// QueueModification enqueues an edit to be flushed on the next
// ApplyModifications call. Safe to call from any tick phase that holds a
// reference to the chunk.
func (c *Chunk) QueueModification(m Modification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, m)
}

// ApplyModifications flushes every modification queued since the last
// call. It is intentionally cheap: the reference world keeps no block
// grid, only a count of applied edits, since the tick loop only needs to
// know that the hook ran.
func (c *Chunk) ApplyModifications() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied += len(c.pending)
	c.pending = c.pending[:0]
}

// AppliedCount returns how many modifications have been flushed so far,
// for tests.
func (c *Chunk) AppliedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}
