package store

import (
	"sort"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
	"blockworld.dev/internal/sim/world/terrain/gen"
)

// ChunkStore owns every loaded chunk. It is not safe for concurrent use.
type ChunkStore struct {
	Gen    gen.Generator
	chunks map[ChunkKey]*Chunk

	generated uint64
}

func NewChunkStore(g gen.Generator) *ChunkStore {
	return &ChunkStore{
		Gen:    g,
		chunks: map[ChunkKey]*Chunk{},
	}
}

func (s *ChunkStore) Len() int { return len(s.chunks) }

// Generated counts chunks produced by the generator since construction.
func (s *ChunkStore) Generated() uint64 { return s.generated }

// Get never creates; it returns nil when the chunk is not loaded.
func (s *ChunkStore) Get(cx, cy int) *Chunk {
	return s.chunks[ChunkKey{CX: cx, CY: cy}]
}

// GetOrCreate returns the loaded chunk or creates and generates it.
func (s *ChunkStore) GetOrCreate(cx, cy int) (ch *Chunk, created bool) {
	k := ChunkKey{CX: cx, CY: cy}
	if ch, ok := s.chunks[k]; ok {
		return ch, false
	}
	ch = NewChunk(cx, cy)
	if s.Gen != nil {
		s.Gen.Generate(cx, cy, ch)
		s.generated++
	}
	ch.MarkDirty()
	s.chunks[k] = ch
	return ch, true
}

// Unload drops the chunk; its content is discarded.
func (s *ChunkStore) Unload(cx, cy int) bool {
	k := ChunkKey{CX: cx, CY: cy}
	if _, ok := s.chunks[k]; !ok {
		return false
	}
	delete(s.chunks, k)
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CY < keys[j].CY
	})
	return keys
}

// Each visits loaded chunks in unspecified order. fn must not load or unload.
func (s *ChunkStore) Each(fn func(*Chunk)) {
	for _, ch := range s.chunks {
		fn(ch)
	}
}

func (s *ChunkStore) GetBlock(wx, wy int) blocks.ID {
	ch := s.Get(mathx.ChunkOf(wx), mathx.ChunkOf(wy))
	if ch == nil {
		return blocks.Air
	}
	return ch.Get(mathx.LocalOf(wx), mathx.LocalOf(wy))
}

func (s *ChunkStore) SetBlock(wx, wy int, id blocks.ID) {
	ch, _ := s.GetOrCreate(mathx.ChunkOf(wx), mathx.ChunkOf(wy))
	ch.Set(mathx.LocalOf(wx), mathx.LocalOf(wy), id)
}
