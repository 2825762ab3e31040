package store

import (
	"errors"
	"fmt"

	snapv1 "blockworld.dev/internal/persistence/snapshot"
	"blockworld.dev/internal/sim/encoding"
)

var ErrBadChunkShape = errors.New("snapshot chunk has wrong shape")

// ExportLoadedChunks converts loaded chunk data into snapshot chunks.
func ExportLoadedChunks(s *ChunkStore, keys []ChunkKey) []snapv1.ChunkV1 {
	out := make([]snapv1.ChunkV1, 0, len(keys))
	for _, k := range keys {
		ch := s.chunks[k]
		if ch == nil {
			continue
		}
		out = append(out, snapv1.ChunkV1{
			CX:     k.CX,
			CY:     k.CY,
			Blocks: encoding.EncodeRLE(ch.blocks[:]),
		})
	}
	return out
}

// ImportChunks installs snapshot chunks into s, replacing loaded chunks with
// the same key. Imported chunks are not regenerated.
func ImportChunks(s *ChunkStore, chunks []snapv1.ChunkV1) error {
	staged := make([]*Chunk, 0, len(chunks))
	for _, sc := range chunks {
		ids, err := encoding.DecodeRLE(sc.Blocks, Cells)
		if err != nil {
			return fmt.Errorf("%w: chunk (%d,%d): %v", ErrBadChunkShape, sc.CX, sc.CY, err)
		}
		ch := NewChunk(sc.CX, sc.CY)
		ch.load(ids)
		staged = append(staged, ch)
	}
	for _, ch := range staged {
		s.chunks[ch.Key()] = ch
	}
	return nil
}
