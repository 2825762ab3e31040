package tuning

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"blockworld.dev/internal/sim/world/terrain/gen"
)

func TestDefaultsValid(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if d.World.LoadRadius != 3 || d.World.Hysteresis != 2 {
		t.Fatalf("world defaults: %+v", d.World)
	}
	if d.Server.PlayerStart != [2]float32{0, 15} {
		t.Fatalf("player start: %v", d.Server.PlayerStart)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := []byte("world:\n  generator: layered\n  load_radius: 5\nterrain:\n  water_level: 40\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.World.Generator != gen.KindLayered || got.World.LoadRadius != 5 {
		t.Fatalf("world: %+v", got.World)
	}
	if got.World.Hysteresis != 2 || got.Server.TickRateHz != 20 {
		t.Fatalf("defaults lost: %+v", got)
	}
	p := got.GenParams()
	if p.WaterLevel != 40 || p.BaseHeight != 64 {
		t.Fatalf("params: %+v", p)
	}
	g, err := got.Generator()
	if err != nil || g.Name() != gen.KindLayered {
		t.Fatalf("Generator: %v %v", g, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"tick":      "server:\n  tick_rate_hz: 0\n",
		"radius":    "world:\n  load_radius: -1\n",
		"generator": "world:\n  generator: caves\n",
		"yaml":      "world: [\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	path := filepath.Join(t.TempDir(), "gen.yaml")
	_ = os.WriteFile(path, []byte("world:\n  generator: caves\n"), 0o644)
	if _, err := Load(path); !errors.Is(err, gen.ErrUnknownGenerator) {
		t.Fatalf("expected ErrUnknownGenerator, got %v", err)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	got, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("got %+v", got)
	}
}

func TestShippedTuningMatchesDefaults(t *testing.T) {
	got, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("configs/tuning.yaml drifted from Defaults:\n got %+v\nwant %+v", got, Defaults())
	}
}
