package mathx

import "math"

// ChunkSize is the edge length of a square chunk, in blocks.
const ChunkSize = 16

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ChunkOf maps a world coordinate to the coordinate of the chunk containing it.
func ChunkOf(w int) int { return FloorDiv(w, ChunkSize) }

// LocalOf maps a world coordinate to its offset inside its chunk, in [0, ChunkSize).
func LocalOf(w int) int { return Mod(w, ChunkSize) }

// ToWorld is the inverse of (ChunkOf, LocalOf).
func ToWorld(chunk, local int) int { return chunk*ChunkSize + local }

// FloorF floors a float world coordinate onto the block grid.
func FloorF(f float32) int {
	return int(math.Floor(float64(f)))
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Chebyshev is the max-coordinate distance between two grid points.
func Chebyshev(ax, ay, bx, by int) int {
	return MaxInt(AbsInt(ax-bx), AbsInt(ay-by))
}

func zigzag(v int) uint64 {
	if v >= 0 {
		return 2 * uint64(v)
	}
	return uint64(-2*int64(v) - 1)
}

// PairHash folds a signed 2D coordinate into one bucket value: each axis is
// zigzag-mapped onto the naturals, then combined with the Cantor pairing.
func PairHash(x, y int) uint64 {
	a := zigzag(x)
	b := zigzag(y)
	return (a+b)*(a+b+1)/2 + b
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, y int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
