package sandbox

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld.dev/internal/protocol"
	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world"
	"blockworld.dev/internal/sim/world/logic/mathx"
)

const (
	// MaxReach bounds break/place targets, in cells from the player's centre cell.
	MaxReach = 6
	// MaxMoveStep bounds a single MOVE on each axis.
	MaxMoveStep = 32
)

// ActionError is a rejected action; Code is a protocol error code.
type ActionError struct {
	Code    string
	Message string
}

func (e *ActionError) Error() string { return e.Code + ": " + e.Message }

func reject(code, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Pos    [2]int `json:"pos"`
	From   uint16 `json:"from"`
	To     uint16 `json:"to"`
}

// Sandbox applies player actions to a World. It is single-goroutine like
// the World it wraps.
type Sandbox struct {
	World  *world.World
	Player *Player
}

func New(w *world.World, p *Player) *Sandbox {
	if p == nil {
		p = NewPlayer(DefaultPlayerStart)
	}
	return &Sandbox{World: w, Player: p}
}

func (s *Sandbox) inReach(x, y int) bool {
	px, py := s.Player.Cell()
	return mathx.Chebyshev(x, y, px, py) <= MaxReach
}

func (s *Sandbox) loaded(x, y int) bool {
	return s.World.Chunk(mathx.ChunkOf(x), mathx.ChunkOf(y)) != nil
}

// Break replaces a non-air block with air.
func (s *Sandbox) Break(x, y int) (AuditEntry, error) {
	if !s.inReach(x, y) {
		return AuditEntry{}, reject(protocol.ErrInvalidTarget, "(%d,%d) out of reach", x, y)
	}
	if !s.loaded(x, y) {
		return AuditEntry{}, reject(protocol.ErrInvalidTarget, "(%d,%d) not loaded", x, y)
	}
	from := s.World.GetBlock(x, y)
	switch from {
	case blocks.Air:
		return AuditEntry{}, reject(protocol.ErrInvalidTarget, "nothing to break at (%d,%d)", x, y)
	case blocks.Bedrock:
		return AuditEntry{}, reject(protocol.ErrBlocked, "bedrock at (%d,%d)", x, y)
	}
	s.World.SetBlock(x, y, blocks.Air)
	return AuditEntry{Action: protocol.ActBreak, Pos: [2]int{x, y}, From: uint16(from), To: uint16(blocks.Air)}, nil
}

// Place puts the selected block into an air cell that the player does not
// occupy.
func (s *Sandbox) Place(x, y int) (AuditEntry, error) {
	if !s.inReach(x, y) {
		return AuditEntry{}, reject(protocol.ErrInvalidTarget, "(%d,%d) out of reach", x, y)
	}
	if !s.loaded(x, y) {
		return AuditEntry{}, reject(protocol.ErrInvalidTarget, "(%d,%d) not loaded", x, y)
	}
	from := s.World.GetBlock(x, y)
	if from != blocks.Air {
		return AuditEntry{}, reject(protocol.ErrInvalidTarget, "(%d,%d) is occupied by %s", x, y, s.World.Registry().Name(from))
	}
	if s.Player.Overlaps(x, y) {
		return AuditEntry{}, reject(protocol.ErrBlocked, "(%d,%d) overlaps player", x, y)
	}
	to := s.Player.Selected
	s.World.SetBlock(x, y, to)
	return AuditEntry{Action: protocol.ActPlace, Pos: [2]int{x, y}, From: uint16(from), To: uint16(to)}, nil
}

// Select picks hotbar slot 1..5.
func (s *Sandbox) Select(slot int) error {
	if slot < 1 || slot > len(Hotbar) {
		return reject(protocol.ErrBadRequest, "slot %d not in 1..%d", slot, len(Hotbar))
	}
	s.Player.Selected = Hotbar[slot-1]
	return nil
}

// Move displaces the player. The move is refused when any cell under the
// destination box is solid.
func (s *Sandbox) Move(dx, dy float32) error {
	if dx < -MaxMoveStep || dx > MaxMoveStep || dy < -MaxMoveStep || dy > MaxMoveStep {
		return reject(protocol.ErrBadRequest, "step (%.2f,%.2f) exceeds %d", dx, dy, MaxMoveStep)
	}
	dst := s.Player.Pos.Add(mgl32.Vec2{dx, dy})
	if s.collides(dst) {
		return reject(protocol.ErrBlocked, "destination (%.2f,%.2f) is solid", dst.X(), dst.Y())
	}
	s.Player.Pos = dst
	return nil
}

func (s *Sandbox) collides(pos mgl32.Vec2) bool {
	reg := s.World.Registry()
	for _, c := range s.Player.cellsAt(pos) {
		if reg.IsSolid(s.World.GetBlock(c[0], c[1])) {
			return true
		}
	}
	return false
}

func (s *Sandbox) SetLoadRadius(n int) error {
	if n < 0 || n > world.MaxLoadRadius {
		return reject(protocol.ErrBadRequest, "radius %d not in 0..%d", n, world.MaxLoadRadius)
	}
	s.World.SetLoadRadius(n)
	return nil
}

// Apply dispatches one ACT. Block mutations return an audit entry.
func (s *Sandbox) Apply(act protocol.ActMsg) (*AuditEntry, error) {
	switch act.Action {
	case protocol.ActBreak:
		e, err := s.Break(act.X, act.Y)
		if err != nil {
			return nil, err
		}
		return &e, nil
	case protocol.ActPlace:
		e, err := s.Place(act.X, act.Y)
		if err != nil {
			return nil, err
		}
		return &e, nil
	case protocol.ActSelect:
		return nil, s.Select(act.Slot)
	case protocol.ActMove:
		return nil, s.Move(act.DX, act.DY)
	case protocol.ActSetRadius:
		return nil, s.SetLoadRadius(act.Radius)
	default:
		return nil, reject(protocol.ErrBadRequest, "unknown action %q", act.Action)
	}
}
