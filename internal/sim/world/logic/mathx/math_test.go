package mathx

import "testing"

func TestChunkLocalRoundTrip(t *testing.T) {
	for w := -1000; w <= 1000; w++ {
		c := ChunkOf(w)
		l := LocalOf(w)
		if l < 0 || l >= ChunkSize {
			t.Fatalf("LocalOf(%d)=%d out of range", w, l)
		}
		if got := ToWorld(c, l); got != w {
			t.Fatalf("ToWorld(ChunkOf(%d), LocalOf(%d))=%d", w, w, got)
		}
	}
}

func TestChunkOfNegative(t *testing.T) {
	cases := []struct{ w, chunk, local int }{
		{-1, -1, 15},
		{-16, -1, 0},
		{-17, -2, 15},
		{0, 0, 0},
		{15, 0, 15},
		{16, 1, 0},
	}
	for _, c := range cases {
		if got := ChunkOf(c.w); got != c.chunk {
			t.Fatalf("ChunkOf(%d)=%d want %d", c.w, got, c.chunk)
		}
		if got := LocalOf(c.w); got != c.local {
			t.Fatalf("LocalOf(%d)=%d want %d", c.w, got, c.local)
		}
	}
}

func TestFloorF(t *testing.T) {
	if FloorF(-0.5) != -1 || FloorF(15.9) != 15 || FloorF(0) != 0 {
		t.Fatalf("FloorF mismatch: %d %d %d", FloorF(-0.5), FloorF(15.9), FloorF(0))
	}
}

func TestPairHashDistinctNearOrigin(t *testing.T) {
	seen := map[uint64][2]int{}
	for y := -20; y <= 20; y++ {
		for x := -20; x <= 20; x++ {
			h := PairHash(x, y)
			if prev, ok := seen[h]; ok {
				t.Fatalf("collision: (%d,%d) and (%d,%d) -> %d", x, y, prev[0], prev[1], h)
			}
			seen[h] = [2]int{x, y}
		}
	}
}

func TestChebyshev(t *testing.T) {
	if d := Chebyshev(0, 0, -3, 2); d != 3 {
		t.Fatalf("got %d want 3", d)
	}
}
