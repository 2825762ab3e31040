package gen

import (
	"math"

	"blockworld.dev/internal/sim/world/logic/mathx"
)

// grad2 are the lattice gradient directions.
var grad2 = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{0.70710678, 0.70710678}, {-0.70710678, 0.70710678},
	{0.70710678, -0.70710678}, {-0.70710678, -0.70710678},
}

// Perlin is seeded gradient lattice noise with quintic fade. The permutation
// table is fixed at construction, so sampling is read-only.
type Perlin struct {
	perm [512]int
}

func NewPerlin(seed int64) *Perlin {
	var p [256]int
	for i := range p {
		p[i] = i
	}
	for i := 255; i > 0; i-- {
		j := int(mathx.Hash2(seed, i, 0) % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}
	n := &Perlin{}
	for i := 0; i < 512; i++ {
		n.perm[i] = p[i&255]
	}
	return n
}

// Noise2D samples the field at (x, y). Output is roughly in [-1, 1].
func (n *Perlin) Noise2D(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	xf := x - fx
	yf := y - fy

	u := fade(xf)
	v := fade(yf)

	aa := n.perm[n.perm[xi]+yi]
	ab := n.perm[n.perm[xi]+yi+1]
	ba := n.perm[n.perm[xi+1]+yi]
	bb := n.perm[n.perm[xi+1]+yi+1]

	x1 := lerp(grad(aa, xf, yf), grad(ba, xf-1, yf), u)
	x2 := lerp(grad(ab, xf, yf-1), grad(bb, xf-1, yf-1), u)
	return lerp(x1, x2, v) * math.Sqrt2
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

func grad(hash int, x, y float64) float64 {
	g := grad2[hash&7]
	return g[0]*x + g[1]*y
}
