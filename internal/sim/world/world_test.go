package world

import (
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
	"blockworld.dev/internal/sim/world/render"
	"blockworld.dev/internal/sim/world/terrain/gen"
)

func newSineWorld(t *testing.T) *World {
	t.Helper()
	g, err := gen.New(gen.KindSine, 0, gen.DefaultParams())
	if err != nil {
		t.Fatalf("gen.New: %v", err)
	}
	return New(DefaultConfig(), blocks.Defaults(), g, nil)
}

func TestUpdateLoadsSquareAroundStart(t *testing.T) {
	w := newSineWorld(t)
	res := w.Update(mgl32.Vec2{0, 15})
	if res.Focal != (ChunkKey{CX: 0, CY: 0}) {
		t.Fatalf("focal = %+v", res.Focal)
	}
	if got := w.LoadedChunkCount(); got != 49 {
		t.Fatalf("loaded = %d, want 49", got)
	}
	if len(res.Created) != 49 || len(res.Evicted) != 0 {
		t.Fatalf("created=%d evicted=%d", len(res.Created), len(res.Evicted))
	}
	for _, k := range w.LoadedChunkKeys() {
		if k.CX < -3 || k.CX > 3 || k.CY < -3 || k.CY > 3 {
			t.Fatalf("unexpected chunk %+v", k)
		}
	}
}

func TestUpdateIdempotent(t *testing.T) {
	w := newSineWorld(t)
	w.Update(mgl32.Vec2{0, 15})
	before := w.LoadedChunkKeys()
	res := w.Update(mgl32.Vec2{0.5, 14})
	if len(res.Created) != 0 || len(res.Evicted) != 0 {
		t.Fatalf("second update changed set: %+v", res)
	}
	after := w.LoadedChunkKeys()
	if len(before) != len(after) {
		t.Fatalf("len %d != %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("key %d: %+v != %+v", i, before[i], after[i])
		}
	}
}

func TestUpdateEvictsBeyondHysteresis(t *testing.T) {
	w := newSineWorld(t)
	w.Update(mgl32.Vec2{0, 15})
	res := w.Update(mgl32.Vec2{float32(10 * mathx.ChunkSize), 15})
	if res.Focal.CX != 10 {
		t.Fatalf("focal = %+v", res.Focal)
	}
	for _, k := range w.LoadedChunkKeys() {
		if k.CX < 5 {
			t.Fatalf("chunk %+v should have been evicted", k)
		}
	}
	if len(res.Evicted) != 49 {
		t.Fatalf("evicted = %d, want 49", len(res.Evicted))
	}
}

func TestUpdateKeepsHysteresisBand(t *testing.T) {
	w := newSineWorld(t)
	w.Update(mgl32.Vec2{0, 15})
	// One chunk to the right: column -3 is at distance 4, inside r+2.
	res := w.Update(mgl32.Vec2{float32(mathx.ChunkSize), 15})
	if len(res.Evicted) != 0 {
		t.Fatalf("evicted inside band: %+v", res.Evicted)
	}
	if len(res.Created) != 7 {
		t.Fatalf("created = %d, want 7", len(res.Created))
	}
	if w.Chunk(-3, 0) == nil {
		t.Fatalf("chunk (-3,0) dropped")
	}
}

func TestLoadedChunksBoundedByRadius(t *testing.T) {
	w := newSineWorld(t)
	positions := []mgl32.Vec2{{0, 15}, {40, 15}, {-200, -90}, {-180, -70}, {3000, 0}, {2990, 5}}
	for _, p := range positions {
		res := w.Update(p)
		limit := w.LoadRadius() + w.Hysteresis()
		for _, k := range w.LoadedChunkKeys() {
			if d := mathx.Chebyshev(k.CX, k.CY, res.Focal.CX, res.Focal.CY); d > limit {
				t.Fatalf("after %v chunk %+v at distance %d", p, k, d)
			}
		}
		r := w.LoadRadius()
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if w.Chunk(res.Focal.CX+dx, res.Focal.CY+dy) == nil {
					t.Fatalf("after %v chunk (%d,%d) missing", p, res.Focal.CX+dx, res.Focal.CY+dy)
				}
			}
		}
	}
}

func TestFocalChunkNegative(t *testing.T) {
	got := FocalChunkOf(mgl32.Vec2{-0.5, -16.01})
	if got != (ChunkKey{CX: -1, CY: -2}) {
		t.Fatalf("focal = %+v", got)
	}
}

func TestSetBlockCreatesOwningChunk(t *testing.T) {
	w := New(DefaultConfig(), blocks.Defaults(), nil, nil)
	w.SetBlock(-1, -1, blocks.Stone)
	ch := w.Chunk(-1, -1)
	if ch == nil {
		t.Fatalf("chunk (-1,-1) not created")
	}
	if got := ch.Get(15, 15); got != blocks.Stone {
		t.Fatalf("local (15,15) = %d", got)
	}
	if got := w.GetBlock(-1, -1); got != blocks.Stone {
		t.Fatalf("GetBlock = %d", got)
	}
	if w.LoadedChunkCount() != 1 {
		t.Fatalf("loaded = %d", w.LoadedChunkCount())
	}
}

func TestGetBlockUnloadedIsAir(t *testing.T) {
	w := newSineWorld(t)
	if got := w.GetBlock(123, -456); got != blocks.Air {
		t.Fatalf("GetBlock = %d", got)
	}
	if w.LoadedChunkCount() != 0 {
		t.Fatalf("read created a chunk")
	}
}

func TestRenderDrawsNonAirAndClearsDirty(t *testing.T) {
	w := New(DefaultConfig(), blocks.Defaults(), nil, nil)
	w.SetBlock(0, 0, blocks.Stone)
	w.SetBlock(17, -2, blocks.Grass)
	if len(w.DirtyChunks()) != 2 {
		t.Fatalf("dirty = %v", w.DirtyChunks())
	}

	var rec render.Recorder
	w.Render(&rec)
	if len(rec.Quads) != 2 {
		t.Fatalf("quads = %d, want 2", len(rec.Quads))
	}
	sort.Slice(rec.Quads, func(i, j int) bool { return rec.Quads[i].Pos[0] < rec.Quads[j].Pos[0] })
	if rec.Quads[0].Pos != [2]int{0, 0} || rec.Quads[1].Pos != [2]int{17, -2} {
		t.Fatalf("positions = %v %v", rec.Quads[0].Pos, rec.Quads[1].Pos)
	}
	grass, _ := w.Registry().Lookup(blocks.Grass)
	if rec.Quads[1].Color != grass.Color || rec.Quads[1].Size != render.UnitSize {
		t.Fatalf("quad = %+v", rec.Quads[1])
	}
	if d := w.DirtyChunks(); len(d) != 0 {
		t.Fatalf("dirty after render = %v", d)
	}

	w.SetBlock(0, 0, blocks.Stone)
	if d := w.DirtyChunks(); len(d) != 0 {
		t.Fatalf("same-value write set dirty: %v", d)
	}
	w.SetBlock(0, 0, blocks.Air)
	if d := w.DirtyChunks(); len(d) != 1 || d[0] != (ChunkKey{CX: 0, CY: 0}) {
		t.Fatalf("dirty = %v", d)
	}
}

func TestRenderSkipsUnknownIDs(t *testing.T) {
	w := New(DefaultConfig(), blocks.Defaults(), nil, nil)
	w.SetBlock(1, 1, blocks.ID(999))
	w.SetBlock(2, 1, blocks.Dirt)
	var rec render.Recorder
	w.Render(&rec)
	if len(rec.Quads) != 1 || rec.Quads[0].Pos != [2]int{2, 1} {
		t.Fatalf("quads = %+v", rec.Quads)
	}
}

func TestRenderCachedMatchesRender(t *testing.T) {
	a, b := newSineWorld(t), newSineWorld(t)
	for _, w := range []*World{a, b} {
		w.Update(mgl32.Vec2{0, 15})
	}
	var full, cached render.Recorder
	steps := []func(w *World){
		func(w *World) {},
		func(w *World) { w.SetBlock(3, 11, blocks.Wood) },
		func(w *World) { w.SetBlock(3, 11, blocks.Air); w.Update(mgl32.Vec2{20, 15}) },
	}
	for i, step := range steps {
		step(a)
		step(b)
		full.Reset()
		cached.Reset()
		a.Render(&full)
		b.RenderCached(&cached)
		if !sameQuads(full.Quads, cached.Quads) {
			t.Fatalf("step %d: render %d quads, cached %d", i, len(full.Quads), len(cached.Quads))
		}
	}
}

func TestRenderAndRenderCachedInterleaved(t *testing.T) {
	w := newSineWorld(t)
	w.Update(mgl32.Vec2{0, 15})
	var full, cached render.Recorder
	w.RenderCached(&cached)

	w.SetBlock(0, 30, blocks.Stone)
	w.Render(&full)
	cached.Reset()
	w.RenderCached(&cached)
	if !sameQuads(full.Quads, cached.Quads) {
		t.Fatalf("after Render: render %d quads, cached %d", len(full.Quads), len(cached.Quads))
	}

	w.SetBlock(0, 30, blocks.Air)
	full.Reset()
	cached.Reset()
	w.Render(&full)
	w.RenderCached(&cached)
	if !sameQuads(full.Quads, cached.Quads) {
		t.Fatalf("after removal: render %d quads, cached %d", len(full.Quads), len(cached.Quads))
	}
}

func sameQuads(a, b []render.Quad) bool {
	if len(a) != len(b) {
		return false
	}
	count := map[render.Quad]int{}
	for _, q := range a {
		count[q]++
	}
	for _, q := range b {
		count[q]--
		if count[q] < 0 {
			return false
		}
	}
	return true
}

func TestEvictedChunkRegeneratesIdentically(t *testing.T) {
	g, err := gen.New(gen.KindLayered, 42, gen.DefaultParams())
	if err != nil {
		t.Fatalf("gen.New: %v", err)
	}
	w := New(DefaultConfig(), blocks.Defaults(), g, nil)
	w.Update(mgl32.Vec2{0, 64})
	focal, _ := w.FocalChunk()
	want := w.Chunk(focal.CX, focal.CY).Blocks()

	w.SetBlock(0, 64, blocks.Wood)
	w.Update(mgl32.Vec2{float32(20 * mathx.ChunkSize), 64})
	if w.Chunk(focal.CX, focal.CY) != nil {
		t.Fatalf("chunk not evicted")
	}
	w.Update(mgl32.Vec2{0, 64})
	got := w.Chunk(focal.CX, focal.CY).Blocks()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cell %d = %d, want %d", i, got[i], want[i])
		}
	}
	if st := w.Stats(); st.Evicted == 0 || st.Generated < 98 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestSetLoadRadiusClamps(t *testing.T) {
	w := newSineWorld(t)
	w.SetLoadRadius(-4)
	if w.LoadRadius() != 0 {
		t.Fatalf("radius = %d", w.LoadRadius())
	}
	w.Update(mgl32.Vec2{0, 0})
	if w.LoadedChunkCount() != 1 {
		t.Fatalf("loaded = %d", w.LoadedChunkCount())
	}
	w.SetLoadRadius(1000)
	if w.LoadRadius() != MaxLoadRadius {
		t.Fatalf("radius = %d", w.LoadRadius())
	}
}

func TestExportImportChunks(t *testing.T) {
	src := newSineWorld(t)
	src.Update(mgl32.Vec2{0, 15})
	src.SetBlock(5, 30, blocks.Sand)
	exported := src.ExportChunks()

	dst := New(DefaultConfig(), blocks.Defaults(), nil, nil)
	if err := dst.ImportChunks(exported); err != nil {
		t.Fatalf("ImportChunks: %v", err)
	}
	if dst.LoadedChunkCount() != 49 {
		t.Fatalf("loaded = %d", dst.LoadedChunkCount())
	}
	if got := dst.GetBlock(5, 30); got != blocks.Sand {
		t.Fatalf("GetBlock = %d", got)
	}
	if got, want := dst.GetBlock(0, 10), src.GetBlock(0, 10); got != want {
		t.Fatalf("GetBlock(0,10) = %d, want %d", got, want)
	}
}
