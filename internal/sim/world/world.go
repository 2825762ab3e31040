package world

import (
	"io"
	"log"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
	"blockworld.dev/internal/sim/world/render"
	"blockworld.dev/internal/sim/world/terrain/gen"
	storepkg "blockworld.dev/internal/sim/world/terrain/store"
)

type ChunkKey = storepkg.ChunkKey
type Chunk = storepkg.Chunk

const (
	DefaultLoadRadius = 3
	DefaultHysteresis = 2
	MaxLoadRadius     = 32
)

type Config struct {
	LoadRadius int
	Hysteresis int
}

func DefaultConfig() Config {
	return Config{LoadRadius: DefaultLoadRadius, Hysteresis: DefaultHysteresis}
}

// Stats are cumulative since construction.
type Stats struct {
	Created   uint64
	Evicted   uint64
	Generated uint64
	Updates   uint64
}

// World is a sparse, streamed 2D block grid. It has no internal locking:
// exactly one goroutine may use a World at a time.
type World struct {
	cfg    Config
	reg    *blocks.Registry
	chunks *storepkg.ChunkStore
	log    *log.Logger

	focal     ChunkKey
	hasFocal  bool
	meshCache map[ChunkKey][]render.Quad

	created uint64
	evicted uint64
	updates uint64
}

func New(cfg Config, reg *blocks.Registry, g gen.Generator, logger *log.Logger) *World {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if reg == nil {
		reg = blocks.Defaults()
	}
	if cfg.Hysteresis < 0 {
		cfg.Hysteresis = 0
	}
	w := &World{
		cfg:       cfg,
		reg:       reg,
		chunks:    storepkg.NewChunkStore(g),
		log:       logger,
		meshCache: map[ChunkKey][]render.Quad{},
	}
	w.SetLoadRadius(cfg.LoadRadius)
	return w
}

func (w *World) Registry() *blocks.Registry  { return w.reg }
func (w *World) Generator() gen.Generator    { return w.chunks.Gen }
func (w *World) LoadRadius() int             { return w.cfg.LoadRadius }
func (w *World) Hysteresis() int             { return w.cfg.Hysteresis }
func (w *World) LoadedChunkCount() int       { return w.chunks.Len() }
func (w *World) LoadedChunkKeys() []ChunkKey { return w.chunks.LoadedChunkKeys() }

// SetLoadRadius takes effect on the next Update. Values are clamped to
// [0, MaxLoadRadius].
func (w *World) SetLoadRadius(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxLoadRadius {
		n = MaxLoadRadius
	}
	w.cfg.LoadRadius = n
}

// SetHysteresis sets the eviction band beyond the load radius. Negative
// values become 0.
func (w *World) SetHysteresis(n int) {
	w.cfg.Hysteresis = max(n, 0)
}

// FocalChunk reports the focal chunk of the last Update.
func (w *World) FocalChunk() (ChunkKey, bool) { return w.focal, w.hasFocal }

// Chunk is a read-only lookup; it never creates.
func (w *World) Chunk(cx, cy int) *Chunk { return w.chunks.Get(cx, cy) }

func (w *World) GetBlock(wx, wy int) blocks.ID { return w.chunks.GetBlock(wx, wy) }

// SetBlock materialises the owning chunk (generating its terrain) if needed.
func (w *World) SetBlock(wx, wy int, id blocks.ID) {
	cx, cy := mathx.ChunkOf(wx), mathx.ChunkOf(wy)
	ch, created := w.chunks.GetOrCreate(cx, cy)
	if created {
		w.created++
	}
	ch.Set(mathx.LocalOf(wx), mathx.LocalOf(wy), id)
}

func (w *World) Stats() Stats {
	return Stats{
		Created:   w.created,
		Evicted:   w.evicted,
		Generated: w.chunks.Generated(),
		Updates:   w.updates,
	}
}

// DirtyChunks lists loaded chunks whose dirty flag is set, sorted.
func (w *World) DirtyChunks() []ChunkKey {
	var out []ChunkKey
	for _, k := range w.chunks.LoadedChunkKeys() {
		if w.chunks.Get(k.CX, k.CY).Dirty() {
			out = append(out, k)
		}
	}
	return out
}
