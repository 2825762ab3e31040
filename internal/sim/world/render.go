package world

import (
	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
	"blockworld.dev/internal/sim/world/render"
)

// Render draws one quad per non-air block of every loaded chunk, then clears
// every chunk's dirty flag. Ids missing from the registry are skipped. The
// cached quads of a dirty chunk are dropped so RenderCached rebuilds them.
func (w *World) Render(r render.Renderer) {
	w.chunks.Each(func(ch *Chunk) {
		w.emitChunk(ch, r.DrawQuad)
		if ch.Dirty() {
			delete(w.meshCache, ch.Key())
		}
	})
	w.chunks.Each(func(ch *Chunk) { ch.ClearDirty() })
}

// RenderCached produces the same quads as Render but rebuilds a chunk's quad
// list only when the chunk is dirty.
func (w *World) RenderCached(r render.Renderer) {
	w.chunks.Each(func(ch *Chunk) {
		k := ch.Key()
		quads, ok := w.meshCache[k]
		if !ok || ch.Dirty() {
			quads = w.ChunkQuads(ch, quads[:0])
			w.meshCache[k] = quads
		}
		for _, q := range quads {
			r.DrawQuad(q)
		}
	})
	for k := range w.meshCache {
		if w.chunks.Get(k.CX, k.CY) == nil {
			delete(w.meshCache, k)
		}
	}
	w.chunks.Each(func(ch *Chunk) { ch.ClearDirty() })
}

// ChunkQuads appends the quads of one chunk to dst without touching its
// dirty flag.
func (w *World) ChunkQuads(ch *Chunk, dst []render.Quad) []render.Quad {
	w.emitChunk(ch, func(q render.Quad) { dst = append(dst, q) })
	return dst
}

func (w *World) emitChunk(ch *Chunk, draw func(render.Quad)) {
	ch.EachNonAir(func(x, y int, id blocks.ID) {
		props, ok := w.reg.Lookup(id)
		if !ok {
			return
		}
		draw(render.Quad{
			Pos:     [2]int{mathx.ToWorld(ch.CX, x), mathx.ToWorld(ch.CY, y)},
			Size:    render.UnitSize,
			Color:   props.Color,
			Texture: props.Texture,
		})
	})
}
