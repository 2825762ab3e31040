package store

import (
	"github.com/willf/bitset"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
)

const (
	N     = mathx.ChunkSize
	Cells = N * N
)

type ChunkKey struct {
	CX int
	CY int
}

// Hash is the bucket value of the key (zigzag + Cantor pairing).
func (k ChunkKey) Hash() uint64 { return mathx.PairHash(k.CX, k.CY) }

type Chunk struct {
	CX, CY int

	blocks   [Cells]blocks.ID // x fastest, then y
	occupied *bitset.BitSet   // bit i set iff blocks[i] != Air
	dirty    bool
}

// NewChunk returns an all-air chunk that reports dirty.
func NewChunk(cx, cy int) *Chunk {
	return &Chunk{
		CX:       cx,
		CY:       cy,
		occupied: bitset.New(Cells),
		dirty:    true,
	}
}

func (c *Chunk) Key() ChunkKey { return ChunkKey{CX: c.CX, CY: c.CY} }

func inChunk(x, y int) bool { return x >= 0 && x < N && y >= 0 && y < N }

func index(x, y int) int { return x + y*N }

// Get returns Air outside [0,N).
func (c *Chunk) Get(x, y int) blocks.ID {
	if !inChunk(x, y) {
		return blocks.Air
	}
	return c.blocks[index(x, y)]
}

// Set ignores out-of-range coordinates and only marks the chunk dirty when
// the stored value changes.
func (c *Chunk) Set(x, y int, id blocks.ID) {
	if !inChunk(x, y) {
		return
	}
	i := index(x, y)
	if c.blocks[i] == id {
		return
	}
	c.blocks[i] = id
	if id == blocks.Air {
		c.occupied.Clear(uint(i))
	} else {
		c.occupied.Set(uint(i))
	}
	c.dirty = true
}

func (c *Chunk) IsEmpty() bool { return c.occupied.None() }

// NonAir counts non-air cells.
func (c *Chunk) NonAir() int { return int(c.occupied.Count()) }

func (c *Chunk) Dirty() bool { return c.dirty }
func (c *Chunk) MarkDirty()  { c.dirty = true }
func (c *Chunk) ClearDirty() { c.dirty = false }

// Blocks returns a copy of the cells in x-fastest order.
func (c *Chunk) Blocks() []blocks.ID {
	out := make([]blocks.ID, Cells)
	copy(out, c.blocks[:])
	return out
}

// EachNonAir visits occupied cells in index order.
func (c *Chunk) EachNonAir(fn func(x, y int, id blocks.ID)) {
	for i, ok := c.occupied.NextSet(0); ok; i, ok = c.occupied.NextSet(i + 1) {
		fn(int(i)%N, int(i)/N, c.blocks[i])
	}
}

func (c *Chunk) load(ids []blocks.ID) {
	c.occupied.ClearAll()
	for i, id := range ids {
		c.blocks[i] = id
		if id != blocks.Air {
			c.occupied.Set(uint(i))
		}
	}
	c.dirty = true
}
