package protocol_test

import (
	"encoding/json"
	"testing"

	"blockworld.dev/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	samples := map[string]string{
		protocol.TypeHello: `{"type":"HELLO","protocol_version":"1.0","client_name":"viewer1","role":"viewer"}`,
		protocol.TypeAct:   `{"type":"ACT","protocol_version":"1.0","act_id":"a1","action":"PLACE","x":-3,"y":12}`,
		protocol.TypeActResult: `{"type":"ACT_RESULT","protocol_version":"1.0","act_id":"a1","tick":9,"ok":false,
		  "code":"E_BLOCKED","message":"overlaps player"}`,
	}
	for kind, raw := range samples {
		if err := protocol.Validate(kind, []byte(raw)); err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
	}
}

func TestSchemas_ValidateEncodedMessages(t *testing.T) {
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "s1",
		WorldID:         "w1",
		Role:            protocol.RoleController,
		WorldParams:     protocol.WorldParams{TickRateHz: 20, ChunkSize: 16, LoadRadius: 3, Hysteresis: 2, Seed: 1337, Generator: "sine"},
		Blocks: protocol.BlockTable{
			Digest: "deadbeef",
			Count:  1,
			Blocks: []protocol.BlockInfo{{ID: 0, Name: "AIR", Transparent: true}},
		},
	}
	frame := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Tick:            3,
		Focal:           [2]int{0, 0},
		Player:          protocol.PlayerState{Pos: [2]float32{0, 15}, Size: [2]float32{0.8, 1.8}, Selected: 1},
		Loaded:          49,
		Quads:           7,
		Chunks:          []protocol.ChunkFrame{{CX: -1, CY: 0, Blocks: "AQA=", Quads: 7}},
		Evicted:         [][2]int{{9, 9}},
	}
	for kind, msg := range map[string]any{protocol.TypeWelcome: welcome, protocol.TypeFrame: frame} {
		raw, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal %s: %v", kind, err)
		}
		if err := protocol.Validate(kind, raw); err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
	}
}

func TestSchemas_RejectInvalid(t *testing.T) {
	bad := map[string]string{
		protocol.TypeHello: `{"type":"HELLO","protocol_version":"1.0"}`,
		protocol.TypeAct:   `{"type":"ACT","protocol_version":"1.0","act_id":"a1","action":"EXPLODE"}`,
	}
	for kind, raw := range bad {
		if err := protocol.Validate(kind, []byte(raw)); err == nil {
			t.Fatalf("%s: expected validation error", kind)
		}
	}
	if err := protocol.Validate("NOPE", []byte(`{}`)); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := protocol.DecodeBase([]byte(`{"type":"ACT","protocol_version":"1.0","act_id":"x"}`))
	if err != nil {
		t.Fatalf("DecodeBase: %v", err)
	}
	if m.Type != protocol.TypeAct || m.ProtocolVersion != protocol.Version {
		t.Fatalf("got %+v", m)
	}
}
