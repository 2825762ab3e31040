package render

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// UnitSize is the footprint of one block quad.
var UnitSize = mgl32.Vec2{1, 1}

// Quad is one block draw call in world units.
type Quad struct {
	Pos     [2]int
	Size    mgl32.Vec2
	Color   mgl32.Vec4
	Texture string // empty: draw with Color only
}

type Renderer interface {
	DrawQuad(q Quad)
}

// Recorder keeps every quad it is given.
type Recorder struct {
	Quads []Quad
}

func (r *Recorder) DrawQuad(q Quad) { r.Quads = append(r.Quads, q) }

func (r *Recorder) Reset() { r.Quads = r.Quads[:0] }

// Func adapts a function to Renderer.
type Func func(Quad)

func (f Func) DrawQuad(q Quad) { f(q) }

// ASCII rasterises quads inside [minX,maxX]x[minY,maxY] with y growing
// upward, one rune per block. Empty cells are '.'.
func ASCII(quads []Quad, minX, minY, maxX, maxY int, glyph func(Quad) rune) string {
	if maxX < minX || maxY < minY {
		return ""
	}
	w := maxX - minX + 1
	h := maxY - minY + 1
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(".", w))
	}
	for _, q := range quads {
		x, y := q.Pos[0], q.Pos[1]
		if x < minX || x > maxX || y < minY || y > maxY {
			continue
		}
		cells[maxY-y][x-minX] = glyph(q)
	}
	var b strings.Builder
	for i, row := range cells {
		b.WriteString(string(row))
		if i < len(cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
