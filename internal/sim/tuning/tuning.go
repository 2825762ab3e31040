package tuning

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"blockworld.dev/internal/sim/world"
	"blockworld.dev/internal/sim/world/terrain/gen"
)

type Tuning struct {
	World   WorldTuning   `yaml:"world"`
	Terrain TerrainTuning `yaml:"terrain"`
	Server  ServerTuning  `yaml:"server"`
}

type WorldTuning struct {
	Seed       int64  `yaml:"seed"`
	Generator  string `yaml:"generator"`
	LoadRadius int    `yaml:"load_radius"`
	Hysteresis int    `yaml:"hysteresis"`
}

// TerrainTuning is the flat terrain record handed to generators.
type TerrainTuning struct {
	Scale            float64 `yaml:"scale"`
	HeightMultiplier float64 `yaml:"height_multiplier"`
	BaseHeight       int     `yaml:"base_height"`
	WaterLevel       int     `yaml:"water_level"`
	FloorY           int     `yaml:"floor_y"`
	MaxHeight        int     `yaml:"max_height"`
	SineAmplitude    float64 `yaml:"sine_amplitude"`
	SineOffset       float64 `yaml:"sine_offset"`
	SineFrequency    float64 `yaml:"sine_frequency"`
}

type ServerTuning struct {
	TickRateHz         int        `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int        `yaml:"snapshot_every_ticks"`
	PlayerStart        [2]float32 `yaml:"player_start"`
}

func Defaults() Tuning {
	p := gen.DefaultParams()
	return Tuning{
		World: WorldTuning{
			Seed:       1337,
			Generator:  gen.KindSine,
			LoadRadius: world.DefaultLoadRadius,
			Hysteresis: world.DefaultHysteresis,
		},
		Terrain: TerrainTuning{
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
		Server: ServerTuning{
			TickRateHz:         20,
			SnapshotEveryTicks: 1200,
			PlayerStart:        [2]float32{0, 15},
		},
	}
}

// Load overlays the file onto Defaults; keys absent from the file keep their
// default value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// LoadOrDefault returns Defaults when the file does not exist.
func LoadOrDefault(path string) (Tuning, error) {
	t, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return t, err
}

func (t Tuning) Validate() error {
	if t.Server.TickRateHz <= 0 {
		return fmt.Errorf("server.tick_rate_hz must be > 0, got %d", t.Server.TickRateHz)
	}
	if t.Server.SnapshotEveryTicks < 0 {
		return fmt.Errorf("server.snapshot_every_ticks must be >= 0, got %d", t.Server.SnapshotEveryTicks)
	}
	if t.World.LoadRadius < 0 || t.World.LoadRadius > world.MaxLoadRadius {
		return fmt.Errorf("world.load_radius must be in [0,%d], got %d", world.MaxLoadRadius, t.World.LoadRadius)
	}
	if t.World.Hysteresis < 0 {
		return fmt.Errorf("world.hysteresis must be >= 0, got %d", t.World.Hysteresis)
	}
	switch strings.ToLower(t.World.Generator) {
	case "", gen.KindSine, gen.KindLayered:
	default:
		return fmt.Errorf("world.generator: %w: %q", gen.ErrUnknownGenerator, t.World.Generator)
	}
	if t.Terrain.MaxHeight < 0 {
		return fmt.Errorf("terrain.max_height must be >= 0, got %d", t.Terrain.MaxHeight)
	}
	return nil
}

func (t Tuning) GenParams() gen.Params {
	return gen.Params{
		Scale:            t.Terrain.Scale,
		HeightMultiplier: t.Terrain.HeightMultiplier,
		BaseHeight:       t.Terrain.BaseHeight,
		WaterLevel:       t.Terrain.WaterLevel,
		FloorY:           t.Terrain.FloorY,
		MaxHeight:        t.Terrain.MaxHeight,
		SineAmplitude:    t.Terrain.SineAmplitude,
		SineOffset:       t.Terrain.SineOffset,
		SineFrequency:    t.Terrain.SineFrequency,
	}
}

func (t Tuning) WorldConfig() world.Config {
	return world.Config{LoadRadius: t.World.LoadRadius, Hysteresis: t.World.Hysteresis}
}

// Generator builds the configured terrain generator.
func (t Tuning) Generator() (gen.Generator, error) {
	return gen.New(t.World.Generator, t.World.Seed, t.GenParams())
}
