package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestASCIIOrientation(t *testing.T) {
	quads := []Quad{
		{Pos: [2]int{0, 0}, Size: UnitSize, Color: mgl32.Vec4{1, 0, 0, 1}},
		{Pos: [2]int{2, 1}, Size: UnitSize},
		{Pos: [2]int{9, 9}, Size: UnitSize},
	}
	got := ASCII(quads, 0, 0, 2, 1, func(Quad) rune { return '#' })
	want := "..#\n#.."
	if got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var rr Renderer = &r
	rr.DrawQuad(Quad{Pos: [2]int{1, 2}})
	if len(r.Quads) != 1 || r.Quads[0].Pos != [2]int{1, 2} {
		t.Fatalf("unexpected quads: %+v", r.Quads)
	}
	r.Reset()
	if len(r.Quads) != 0 {
		t.Fatalf("Reset kept quads")
	}
}
