package sandbox

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/logic/mathx"
)

var (
	DefaultPlayerStart = mgl32.Vec2{0, 15}
	DefaultPlayerSize  = mgl32.Vec2{0.8, 1.8}
)

// Hotbar maps selection slots 1..5 to blocks.
var Hotbar = [5]blocks.ID{blocks.Stone, blocks.Dirt, blocks.Grass, blocks.Wood, blocks.Sand}

// Player is a box centred on Pos.
type Player struct {
	Pos      mgl32.Vec2
	Size     mgl32.Vec2
	Selected blocks.ID
}

func NewPlayer(pos mgl32.Vec2) *Player {
	return &Player{Pos: pos, Size: DefaultPlayerSize, Selected: Hotbar[0]}
}

// Bounds returns the min and max corners of the player's box.
func (p *Player) Bounds() (lo, hi mgl32.Vec2) {
	half := p.Size.Mul(0.5)
	return p.Pos.Sub(half), p.Pos.Add(half)
}

// Overlaps reports whether the unit cell at (x, y) intersects the player box.
// Touching edges do not count.
func (p *Player) Overlaps(x, y int) bool {
	lo, hi := p.Bounds()
	cx0, cy0 := float32(x), float32(y)
	cx1, cy1 := cx0+1, cy0+1
	return lo.X() < cx1 && hi.X() > cx0 && lo.Y() < cy1 && hi.Y() > cy0
}

// Cell is the block cell containing the player's centre.
func (p *Player) Cell() (int, int) {
	return mathx.FloorF(p.Pos.X()), mathx.FloorF(p.Pos.Y())
}

// cellsAt lists every cell the box touches when centred at pos, row by row.
func (p *Player) cellsAt(pos mgl32.Vec2) [][2]int {
	half := p.Size.Mul(0.5)
	lo, hi := pos.Sub(half), pos.Add(half)
	x0, y0 := mathx.FloorF(lo.X()), mathx.FloorF(lo.Y())
	x1, y1 := mathx.FloorF(hi.X()), mathx.FloorF(hi.Y())
	cells := make([][2]int, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			cells = append(cells, [2]int{x, y})
		}
	}
	return cells
}
