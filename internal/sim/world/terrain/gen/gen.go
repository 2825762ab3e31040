package gen

import (
	"errors"
	"fmt"
	"strings"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
)

const (
	KindSine    = "sine"
	KindLayered = "layered"
)

var ErrUnknownGenerator = errors.New("unknown terrain generator")

// Sink receives generated cells in chunk-local coordinates.
type Sink interface {
	Set(x, y int, id blocks.ID)
}

// Generator fills a freshly created chunk. Implementations must be pure
// functions of (cx, cy) and their construction parameters so that an
// evicted chunk regenerates identically.
type Generator interface {
	Name() string
	Generate(cx, cy int, dst Sink)
}

// Params is the flat terrain configuration record.
type Params struct {
	Scale            float64
	HeightMultiplier float64
	BaseHeight       int
	WaterLevel       int
	FloorY           int
	MaxHeight        int

	SineAmplitude float64
	SineOffset    float64
	SineFrequency float64
}

func DefaultParams() Params {
	return Params{
		Scale:            0.05,
		HeightMultiplier: 32,
		BaseHeight:       64,
		WaterLevel:       62,
		FloorY:           0,
		MaxHeight:        256,
		SineAmplitude:    3,
		SineOffset:       10,
		SineFrequency:    0.1,
	}
}

func New(kind string, seed int64, p Params) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSine:
		return NewSine(p), nil
	case KindLayered:
		return NewLayered(seed, p), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, kind)
	}
}

func worldCol(c, local int) int { return mathx.ToWorld(c, local) }

// Name returns g.Name(), or "" for a nil generator.
func Name(g Generator) string {
	if g == nil {
		return ""
	}
	return g.Name()
}
