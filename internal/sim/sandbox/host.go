package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld.dev/internal/persistence/snapshot"
	"blockworld.dev/internal/protocol"
	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/encoding"
	"blockworld.dev/internal/sim/world"
	"blockworld.dev/internal/sim/world/logic/mathx"
	"blockworld.dev/internal/sim/world/render"
	"blockworld.dev/internal/sim/world/terrain/gen"
)

type HostConfig struct {
	WorldID            string
	TickRateHz         int
	SnapshotEveryTicks int
	Seed               int64
	Terrain            gen.Params
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick    uint64           `json:"tick"`
	Focal   [2]int           `json:"focal"`
	Player  [2]float32       `json:"player"`
	Loaded  int              `json:"loaded"`
	Created int              `json:"created"`
	Evicted int              `json:"evicted"`
	Quads   int              `json:"quads"`
	Actions []RecordedAction `json:"actions,omitempty"`
}

type RecordedAction struct {
	SessionID string          `json:"session_id"`
	Act       protocol.ActMsg `json:"act"`
	Code      string          `json:"code,omitempty"`
}

// ActionEnvelope is one ACT received from a session.
type ActionEnvelope struct {
	SessionID string
	Act       protocol.ActMsg
}

type JoinRequest struct {
	SessionID string
	Name      string
	Role      string
	Out       chan []byte
	Resp      chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type subscriber struct {
	name string
	role string
	out  chan []byte
	// full requests a frame carrying every loaded chunk, sent after join or
	// after a frame could not be delivered.
	full bool
}

// Host owns a Sandbox on a single goroutine and streams frames to
// subscribers.
type Host struct {
	cfg HostConfig
	sb  *Sandbox
	log *log.Logger

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	tick        atomic.Uint64
	subscribers map[string]*subscriber
	renderer    render.Renderer

	tickLogger   TickLogger
	auditLogger  AuditLogger
	snapshotSink chan<- snapshot.SnapshotV1

	metrics atomic.Pointer[Metrics]
}

// Metrics is published once per tick and safe to read from any goroutine.
type Metrics struct {
	Tick        uint64
	Loaded      int
	Quads       int
	Subscribers int
	Stats       world.Stats
}

func NewHost(cfg HostConfig, sb *Sandbox, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	if cfg.WorldID == "" {
		cfg.WorldID = "world_1"
	}
	return &Host{
		cfg:         cfg,
		sb:          sb,
		log:         logger,
		inbox:       make(chan ActionEnvelope, 1024),
		join:        make(chan JoinRequest, 64),
		leave:       make(chan string, 64),
		stop:        make(chan struct{}),
		subscribers: map[string]*subscriber{},
	}
}

func (h *Host) SetTickLogger(l TickLogger)                    { h.tickLogger = l }
func (h *Host) SetAuditLogger(l AuditLogger)                  { h.auditLogger = l }
func (h *Host) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { h.snapshotSink = ch }

// SetRenderer receives every quad drawn by the per-tick render pass.
func (h *Host) SetRenderer(r render.Renderer) { h.renderer = r }

func (h *Host) Inbox() chan<- ActionEnvelope { return h.inbox }
func (h *Host) Join() chan<- JoinRequest     { return h.join }
func (h *Host) Leave() chan<- string         { return h.leave }

func (h *Host) ID() string          { return h.cfg.WorldID }
func (h *Host) TickRateHz() int     { return h.cfg.TickRateHz }
func (h *Host) CurrentTick() uint64 { return h.tick.Load() }

func (h *Host) Metrics() Metrics {
	if m := h.metrics.Load(); m != nil {
		return *m
	}
	return Metrics{}
}

func (h *Host) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(h.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.stop:
			return nil
		case req := <-h.join:
			h.handleJoin(req)
		case id := <-h.leave:
			delete(h.subscribers, id)
		case env := <-h.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			h.StepOnce(pendingActions)
			pendingActions = pendingActions[:0]
		}
	}
}

func (h *Host) Stop() { close(h.stop) }

func (h *Host) handleJoin(req JoinRequest) {
	role := req.Role
	if role != protocol.RoleController {
		role = protocol.RoleViewer
	}
	if req.Out != nil {
		h.subscribers[req.SessionID] = &subscriber{name: req.Name, role: role, out: req.Out, full: true}
	}
	w := h.sb.World
	reg := w.Registry()
	table := protocol.BlockTable{Digest: reg.Digest(), Count: reg.Len()}
	for _, id := range reg.IDs() {
		p, _ := reg.Lookup(id)
		table.Blocks = append(table.Blocks, protocol.BlockInfo{
			ID:          uint16(id),
			Name:        p.Name,
			Solid:       p.Solid,
			Transparent: p.Transparent,
			Color:       [4]float32(p.Color),
			Texture:     p.Texture,
		})
	}
	resp := JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       req.SessionID,
		WorldID:         h.cfg.WorldID,
		Role:            role,
		WorldParams: protocol.WorldParams{
			TickRateHz: h.cfg.TickRateHz,
			ChunkSize:  mathx.ChunkSize,
			LoadRadius: w.LoadRadius(),
			Hysteresis: w.Hysteresis(),
			Seed:       h.cfg.Seed,
			Generator:  gen.Name(w.Generator()),
		},
		Blocks: table,
	}}
	h.log.Printf("join session=%s name=%q role=%s", req.SessionID, req.Name, role)
	if req.Resp != nil {
		select {
		case req.Resp <- resp:
		default:
		}
	}
}

// StepOnce advances one tick: streaming around the player, actions in arrival
// order, a second streaming pass when a move changed the focal chunk, the
// render pass, then frame fan-out. It returns the delta frame.
func (h *Host) StepOnce(actions []ActionEnvelope) protocol.FrameMsg {
	tick := h.tick.Load()
	w := h.sb.World

	res := w.Update(h.sb.Player.Pos)

	recorded := make([]RecordedAction, 0, len(actions))
	for _, env := range actions {
		recorded = append(recorded, h.apply(tick, env))
	}

	if world.FocalChunkOf(h.sb.Player.Pos) != res.Focal {
		res = mergeUpdates(res, w.Update(h.sb.Player.Pos))
	}

	delta := h.chunkFrames(w.DirtyChunks())
	var full []protocol.ChunkFrame
	for _, s := range h.subscribers {
		if s.full {
			full = h.chunkFrames(w.LoadedChunkKeys())
			break
		}
	}

	quads := 0
	w.RenderCached(render.Func(func(q render.Quad) {
		quads++
		if h.renderer != nil {
			h.renderer.DrawQuad(q)
		}
	}))

	frame := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Focal:           [2]int{res.Focal.CX, res.Focal.CY},
		Player: protocol.PlayerState{
			Pos:      [2]float32(h.sb.Player.Pos),
			Size:     [2]float32(h.sb.Player.Size),
			Selected: uint16(h.sb.Player.Selected),
		},
		Loaded: w.LoadedChunkCount(),
		Quads:  quads,
		Chunks: delta,
	}
	for _, k := range res.Evicted {
		frame.Evicted = append(frame.Evicted, [2]int{k.CX, k.CY})
	}
	h.broadcast(frame, full)

	if h.tickLogger != nil {
		entry := TickLogEntry{
			Tick:    tick,
			Focal:   frame.Focal,
			Player:  frame.Player.Pos,
			Loaded:  frame.Loaded,
			Created: len(res.Created),
			Evicted: len(res.Evicted),
			Quads:   quads,
			Actions: recorded,
		}
		if err := h.tickLogger.WriteTick(entry); err != nil {
			h.log.Printf("tick log: %v", err)
		}
	}

	if every := uint64(h.cfg.SnapshotEveryTicks); every > 0 && tick > 0 && tick%every == 0 && h.snapshotSink != nil {
		select {
		case h.snapshotSink <- h.ExportSnapshot(tick):
		default:
			h.log.Printf("snapshot sink full; skipped tick=%d", tick)
		}
	}

	h.metrics.Store(&Metrics{
		Tick:        tick,
		Loaded:      frame.Loaded,
		Quads:       quads,
		Subscribers: len(h.subscribers),
		Stats:       w.Stats(),
	})
	h.tick.Add(1)
	return frame
}

// mergeUpdates folds a second streaming pass of the same tick into the first.
// A chunk created by one pass and evicted by the other appears in neither list.
func mergeUpdates(a, b world.UpdateResult) world.UpdateResult {
	out := world.UpdateResult{Focal: b.Focal}
	evicted := make(map[world.ChunkKey]bool, len(b.Evicted))
	for _, k := range b.Evicted {
		evicted[k] = true
	}
	for _, k := range a.Created {
		if evicted[k] {
			delete(evicted, k)
			continue
		}
		out.Created = append(out.Created, k)
	}
	out.Created = append(out.Created, b.Created...)
	out.Evicted = append(out.Evicted, a.Evicted...)
	for _, k := range b.Evicted {
		if evicted[k] {
			out.Evicted = append(out.Evicted, k)
		}
	}
	return out
}

func (h *Host) apply(tick uint64, env ActionEnvelope) RecordedAction {
	rec := RecordedAction{SessionID: env.SessionID, Act: env.Act}
	result := protocol.ActResultMsg{
		Type:            protocol.TypeActResult,
		ProtocolVersion: protocol.Version,
		ActID:           env.Act.ActID,
		Tick:            tick,
		OK:              true,
	}

	var err error
	if s := h.subscribers[env.SessionID]; s != nil && s.role != protocol.RoleController {
		err = reject(protocol.ErrNoPermission, "session %s is a viewer", env.SessionID)
	} else {
		var audit *AuditEntry
		audit, err = h.sb.Apply(env.Act)
		if audit != nil && h.auditLogger != nil {
			audit.Tick = tick
			audit.Actor = env.SessionID
			if werr := h.auditLogger.WriteAudit(*audit); werr != nil {
				h.log.Printf("audit log: %v", werr)
			}
		}
	}
	if err != nil {
		var ae *ActionError
		if !errors.As(err, &ae) {
			ae = &ActionError{Code: protocol.ErrInternal, Message: err.Error()}
		}
		result.OK = false
		result.Code = ae.Code
		result.Message = ae.Message
		rec.Code = ae.Code
	}

	if s := h.subscribers[env.SessionID]; s != nil {
		if b, err := json.Marshal(result); err == nil {
			trySend(s.out, b)
		}
	}
	return rec
}

func (h *Host) chunkFrames(keys []world.ChunkKey) []protocol.ChunkFrame {
	w := h.sb.World
	out := make([]protocol.ChunkFrame, 0, len(keys))
	var scratch []render.Quad
	for _, k := range keys {
		ch := w.Chunk(k.CX, k.CY)
		if ch == nil {
			continue
		}
		scratch = w.ChunkQuads(ch, scratch[:0])
		out = append(out, protocol.ChunkFrame{
			CX:     k.CX,
			CY:     k.CY,
			Blocks: encoding.EncodeRLE(ch.Blocks()),
			Quads:  len(scratch),
		})
	}
	return out
}

func (h *Host) broadcast(delta protocol.FrameMsg, full []protocol.ChunkFrame) {
	if len(h.subscribers) == 0 {
		return
	}
	deltaBytes, err := json.Marshal(delta)
	if err != nil {
		h.log.Printf("frame marshal: %v", err)
		return
	}
	var fullBytes []byte
	if full != nil {
		f := delta
		f.Chunks = full
		if fullBytes, err = json.Marshal(f); err != nil {
			h.log.Printf("frame marshal: %v", err)
			return
		}
	}
	for _, s := range h.subscribers {
		b := deltaBytes
		if s.full && fullBytes != nil {
			b = fullBytes
		}
		s.full = !trySend(s.out, b)
	}
}

func trySend(ch chan []byte, b []byte) bool {
	select {
	case ch <- b:
		return true
	default:
		return false
	}
}

// ExportSnapshot captures the loaded world, player and generator settings.
func (h *Host) ExportSnapshot(tick uint64) snapshot.SnapshotV1 {
	w := h.sb.World
	p := h.cfg.Terrain
	return snapshot.SnapshotV1{
		Header:    snapshot.Header{Version: snapshot.Version, WorldID: h.cfg.WorldID, Tick: tick},
		Seed:      h.cfg.Seed,
		Generator: gen.Name(w.Generator()),
		Terrain: snapshot.TerrainV1{
			Scale:            p.Scale,
			HeightMultiplier: p.HeightMultiplier,
			BaseHeight:       p.BaseHeight,
			WaterLevel:       p.WaterLevel,
			FloorY:           p.FloorY,
			MaxHeight:        p.MaxHeight,
			SineAmplitude:    p.SineAmplitude,
			SineOffset:       p.SineOffset,
			SineFrequency:    p.SineFrequency,
		},
		LoadRadius:     w.LoadRadius(),
		Hysteresis:     w.Hysteresis(),
		RegistryDigest: w.Registry().Digest(),
		Player: snapshot.PlayerV1{
			Pos:      [2]float32(h.sb.Player.Pos),
			Selected: uint16(h.sb.Player.Selected),
		},
		Chunks: w.ExportChunks(),
	}
}

// ImportSnapshot restores chunks, streaming radii, player and tick. It must
// be called before Run.
func (h *Host) ImportSnapshot(snap snapshot.SnapshotV1) error {
	w := h.sb.World
	if snap.RegistryDigest != "" && snap.RegistryDigest != w.Registry().Digest() {
		h.log.Printf("snapshot registry digest %s differs from %s", snap.RegistryDigest, w.Registry().Digest())
	}
	if err := w.ImportChunks(snap.Chunks); err != nil {
		return fmt.Errorf("import chunks: %w", err)
	}
	w.SetLoadRadius(snap.LoadRadius)
	w.SetHysteresis(snap.Hysteresis)
	h.sb.Player.Pos = mgl32.Vec2(snap.Player.Pos)
	if snap.Player.Selected != 0 {
		h.sb.Player.Selected = blocks.ID(snap.Player.Selected)
	}
	h.tick.Store(snap.Header.Tick + 1)
	return nil
}

// TerrainParams converts stored generator parameters back.
func TerrainParams(t snapshot.TerrainV1) gen.Params {
	return gen.Params{
		Scale:            t.Scale,
		HeightMultiplier: t.HeightMultiplier,
		BaseHeight:       t.BaseHeight,
		WaterLevel:       t.WaterLevel,
		FloorY:           t.FloorY,
		MaxHeight:        t.MaxHeight,
		SineAmplitude:    t.SineAmplitude,
		SineOffset:       t.SineOffset,
		SineFrequency:    t.SineFrequency,
	}
}
