package store

import (
	"testing"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/terrain/gen"
)

func TestChunkBoundsAndDirty(t *testing.T) {
	c := NewChunk(2, -3)
	if !c.Dirty() {
		t.Fatalf("new chunk should be dirty")
	}
	if !c.IsEmpty() {
		t.Fatalf("new chunk should be empty")
	}
	if c.Get(-1, 0) != blocks.Air || c.Get(0, N) != blocks.Air {
		t.Fatalf("out-of-range read must be air")
	}
	c.Set(N, 0, blocks.Stone)
	c.Set(0, -1, blocks.Stone)
	if !c.IsEmpty() {
		t.Fatalf("out-of-range write must be a no-op")
	}

	c.ClearDirty()
	c.Set(3, 4, blocks.Stone)
	if !c.Dirty() || c.Get(3, 4) != blocks.Stone {
		t.Fatalf("write did not land or mark dirty")
	}
	c.ClearDirty()
	c.Set(3, 4, blocks.Stone)
	if c.Dirty() {
		t.Fatalf("redundant write marked dirty")
	}
	if c.IsEmpty() || c.NonAir() != 1 {
		t.Fatalf("occupancy mismatch: empty=%v nonair=%d", c.IsEmpty(), c.NonAir())
	}
	c.Set(3, 4, blocks.Air)
	if !c.IsEmpty() {
		t.Fatalf("clearing the only block should empty the chunk")
	}
}

func TestChunkEachNonAir(t *testing.T) {
	c := NewChunk(0, 0)
	c.Set(1, 0, blocks.Dirt)
	c.Set(15, 15, blocks.Grass)
	var got [][3]int
	c.EachNonAir(func(x, y int, id blocks.ID) {
		got = append(got, [3]int{x, y, int(id)})
	})
	if len(got) != 2 || got[0] != [3]int{1, 0, int(blocks.Dirt)} || got[1] != [3]int{15, 15, int(blocks.Grass)} {
		t.Fatalf("unexpected visit order: %v", got)
	}
}

func TestStoreReadNeverCreates(t *testing.T) {
	s := NewChunkStore(gen.NewSine(gen.DefaultParams()))
	if s.GetBlock(5, 5) != blocks.Air || s.Len() != 0 {
		t.Fatalf("read created a chunk")
	}
	s.SetBlock(-1, -1, blocks.Stone)
	if s.Len() != 1 || s.Get(-1, -1) == nil {
		t.Fatalf("write should create chunk (-1,-1); keys=%v", s.LoadedChunkKeys())
	}
	if s.GetBlock(-1, -1) != blocks.Stone {
		t.Fatalf("write/read mismatch")
	}
}

func TestStoreKeysMatchChunks(t *testing.T) {
	s := NewChunkStore(gen.NewSine(gen.DefaultParams()))
	for cy := -2; cy <= 2; cy++ {
		for cx := -2; cx <= 2; cx++ {
			s.GetOrCreate(cx, cy)
		}
	}
	if _, created := s.GetOrCreate(0, 0); created {
		t.Fatalf("GetOrCreate must be idempotent")
	}
	for _, k := range s.LoadedChunkKeys() {
		if s.Get(k.CX, k.CY).Key() != k {
			t.Fatalf("chunk at key %v reports %v", k, s.Get(k.CX, k.CY).Key())
		}
	}
	if !s.Unload(0, 0) || s.Unload(0, 0) {
		t.Fatalf("Unload should succeed once")
	}
	if s.Len() != 24 || s.Generated() != 25 {
		t.Fatalf("len=%d generated=%d", s.Len(), s.Generated())
	}
}
