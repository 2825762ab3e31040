package gen

import (
	"math"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
)

// Sine is the side-view sandbox terrain: one sine wave of the world column
// gives the surface row; three rows of dirt sit on stone, grass on top.
type Sine struct {
	amplitude float64
	offset    float64
	frequency float64
}

func NewSine(p Params) *Sine {
	s := &Sine{amplitude: p.SineAmplitude, offset: p.SineOffset, frequency: p.SineFrequency}
	if s.frequency == 0 {
		s.frequency = 0.1
	}
	return s
}

func (s *Sine) Name() string { return KindSine }

// SurfaceAt returns the grass row of world column wx.
func (s *Sine) SurfaceAt(wx int) int {
	// Evaluated in float32; heights are truncated toward zero.
	n := float32(math.Sin(float64(float32(wx)*float32(s.frequency)))) * float32(s.amplitude)
	return int(float32(s.offset) + n)
}

// BlockAt classifies a single world cell.
func (s *Sine) BlockAt(wx, wy int) blocks.ID {
	return sineLayer(s.SurfaceAt(wx), wy)
}

func sineLayer(h, wy int) blocks.ID {
	switch {
	case wy < h-3:
		return blocks.Stone
	case wy < h:
		return blocks.Dirt
	case wy == h:
		return blocks.Grass
	default:
		return blocks.Air
	}
}

func (s *Sine) Generate(cx, cy int, dst Sink) {
	for x := 0; x < mathx.ChunkSize; x++ {
		wx := worldCol(cx, x)
		h := s.SurfaceAt(wx)
		for y := 0; y < mathx.ChunkSize; y++ {
			dst.Set(x, y, sineLayer(h, worldCol(cy, y)))
		}
	}
}
