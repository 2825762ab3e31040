package world

import (
	snapv1 "blockworld.dev/internal/persistence/snapshot"
	storepkg "blockworld.dev/internal/sim/world/terrain/store"
)

// ExportChunks captures every loaded chunk, sorted by key.
func (w *World) ExportChunks() []snapv1.ChunkV1 {
	return storepkg.ExportLoadedChunks(w.chunks, w.chunks.LoadedChunkKeys())
}

// ImportChunks installs snapshot chunks as-is; they are not regenerated.
func (w *World) ImportChunks(chunks []snapv1.ChunkV1) error {
	if err := storepkg.ImportChunks(w.chunks, chunks); err != nil {
		return err
	}
	for _, c := range chunks {
		delete(w.meshCache, ChunkKey{CX: c.CX, CY: c.CY})
	}
	return nil
}
