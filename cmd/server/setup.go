package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld.dev/internal/persistence/snapshot"
	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/sandbox"
	"blockworld.dev/internal/sim/tuning"
	"blockworld.dev/internal/sim/world"
	"blockworld.dev/internal/sim/world/terrain/gen"
)

type hostOptions struct {
	WorldID  string
	Tuning   tuning.Tuning
	Registry *blocks.Registry
	// Snapshot, when set, resumes the world; its generator settings win over
	// the tuning file.
	Snapshot *snapshot.SnapshotV1
	Logger   *log.Logger
}

// loadRegistry reads <configDir>/blocks.json, falling back to the built-in
// palette when the file is absent.
func loadRegistry(configDir string) (*blocks.Registry, error) {
	reg, err := blocks.Load(filepath.Join(configDir, "blocks.json"))
	if errors.Is(err, os.ErrNotExist) {
		return blocks.Defaults(), nil
	}
	return reg, err
}

func buildHost(opts hostOptions) (*sandbox.Host, error) {
	tune := opts.Tuning
	seed, kind, params := tune.World.Seed, tune.World.Generator, tune.GenParams()
	if s := opts.Snapshot; s != nil {
		if s.Header.WorldID != "" && s.Header.WorldID != opts.WorldID {
			return nil, fmt.Errorf("snapshot world id mismatch: flag=%s snap=%s", opts.WorldID, s.Header.WorldID)
		}
		seed, kind, params = s.Seed, s.Generator, sandbox.TerrainParams(s.Terrain)
	}
	g, err := gen.New(kind, seed, params)
	if err != nil {
		return nil, err
	}

	w := world.New(tune.WorldConfig(), opts.Registry, g, opts.Logger)
	sb := sandbox.New(w, sandbox.NewPlayer(mgl32.Vec2(tune.Server.PlayerStart)))
	h := sandbox.NewHost(sandbox.HostConfig{
		WorldID:            opts.WorldID,
		TickRateHz:         tune.Server.TickRateHz,
		SnapshotEveryTicks: tune.Server.SnapshotEveryTicks,
		Seed:               seed,
		Terrain:            params,
	}, sb, opts.Logger)

	if opts.Snapshot != nil {
		if err := h.ImportSnapshot(*opts.Snapshot); err != nil {
			return nil, fmt.Errorf("import snapshot: %w", err)
		}
	}
	return h, nil
}
