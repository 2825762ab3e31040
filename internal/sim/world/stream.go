package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockworld.dev/internal/sim/world/logic/mathx"
)

// UpdateResult describes one streaming pass.
type UpdateResult struct {
	Focal   ChunkKey
	Created []ChunkKey
	Evicted []ChunkKey
}

// FocalChunkOf maps a float world position to its chunk coordinate.
func FocalChunkOf(pos mgl32.Vec2) ChunkKey {
	return ChunkKey{
		CX: mathx.ChunkOf(mathx.FloorF(pos.X())),
		CY: mathx.ChunkOf(mathx.FloorF(pos.Y())),
	}
}

// Update streams chunks around pos: every chunk within Chebyshev distance
// LoadRadius of the focal chunk is loaded, then every chunk farther than
// LoadRadius+Hysteresis is evicted. Eviction discards chunk content.
func (w *World) Update(pos mgl32.Vec2) UpdateResult {
	focal := FocalChunkOf(pos)
	res := UpdateResult{Focal: focal}
	r := w.cfg.LoadRadius

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			k := ChunkKey{CX: focal.CX + dx, CY: focal.CY + dy}
			if _, created := w.chunks.GetOrCreate(k.CX, k.CY); created {
				res.Created = append(res.Created, k)
			}
		}
	}

	limit := r + w.cfg.Hysteresis
	w.chunks.Each(func(ch *Chunk) {
		if mathx.Chebyshev(ch.CX, ch.CY, focal.CX, focal.CY) > limit {
			res.Evicted = append(res.Evicted, ch.Key())
		}
	})
	for _, k := range res.Evicted {
		w.chunks.Unload(k.CX, k.CY)
		delete(w.meshCache, k)
	}

	w.created += uint64(len(res.Created))
	w.evicted += uint64(len(res.Evicted))
	w.updates++
	if len(res.Created) > 0 || len(res.Evicted) > 0 {
		w.log.Printf("stream focal=(%d,%d) created=%d evicted=%d loaded=%d",
			focal.CX, focal.CY, len(res.Created), len(res.Evicted), w.chunks.Len())
	}
	w.focal = focal
	w.hasFocal = true
	return res
}
