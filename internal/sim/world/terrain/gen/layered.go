package gen

import (
	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
)

const (
	octaves       = 4
	oreFrequency  = 0.1
	dirtRows      = 3
	octaveYStride = 17.31
)

// Ore bands, rarest first. depth is measured from the bedrock row.
var oreBands = [...]struct {
	id       blocks.ID
	maxDepth int
	min      float64
}{
	{blocks.DiamondOre, 12, 0.90},
	{blocks.GoldOre, 16, 0.85},
	{blocks.IronOre, 24, 0.80},
	{blocks.CoalOre, 32, 0.70},
}

// Layered derives a height field from several octaves of Perlin noise, then
// stacks bedrock, stone (with ores), dirt, grass and water on it.
type Layered struct {
	p     Params
	noise *Perlin
}

func NewLayered(seed int64, p Params) *Layered {
	if p.MaxHeight <= 0 {
		p.MaxHeight = DefaultParams().MaxHeight
	}
	if p.Scale == 0 {
		p.Scale = DefaultParams().Scale
	}
	return &Layered{p: p, noise: NewPerlin(seed)}
}

func (l *Layered) Name() string { return KindLayered }

// SurfaceAt returns the top solid row of world column wx.
func (l *Layered) SurfaceAt(wx int) int {
	h := 0.0
	amp := 1.0
	freq := l.p.Scale
	for i := 0; i < octaves; i++ {
		h += l.noise.Noise2D(float64(wx)*freq, float64(i)*octaveYStride) * amp
		amp *= 0.5
		freq *= 2
	}
	top := l.p.BaseHeight + int(h*l.p.HeightMultiplier)
	lo := l.p.FloorY
	hi := l.p.FloorY + l.p.MaxHeight - 1
	if top < lo {
		top = lo
	}
	if top > hi {
		top = hi
	}
	return top
}

// oreSample is the raw ore noise in [-1, 1]; band thresholds apply to it
// unscaled.
func (l *Layered) oreSample(wx, wy int) float64 {
	return l.noise.Noise2D(float64(wx)*oreFrequency, float64(wy)*oreFrequency)
}

func (l *Layered) BlockAt(wx, wy int) blocks.ID {
	return l.classify(wx, wy, l.SurfaceAt(wx))
}

func (l *Layered) classify(wx, wy, height int) blocks.ID {
	switch {
	case wy < l.p.FloorY:
		return blocks.Air
	case wy == l.p.FloorY:
		return blocks.Bedrock
	case wy <= height:
		dry := height > l.p.WaterLevel
		if dry && wy == height {
			return blocks.Grass
		}
		if dry && wy >= height-dirtRows {
			return blocks.Dirt
		}
		depth := wy - l.p.FloorY
		ore := l.oreSample(wx, wy)
		for _, band := range oreBands {
			if depth < band.maxDepth && ore > band.min {
				return band.id
			}
		}
		return blocks.Stone
	case wy <= l.p.WaterLevel:
		return blocks.Water
	default:
		return blocks.Air
	}
}

func (l *Layered) Generate(cx, cy int, dst Sink) {
	for x := 0; x < mathx.ChunkSize; x++ {
		wx := worldCol(cx, x)
		h := l.SurfaceAt(wx)
		for y := 0; y < mathx.ChunkSize; y++ {
			dst.Set(x, y, l.classify(wx, worldCol(cy, y), h))
		}
	}
}
