// Command worldctl generates, inspects and draws worlds offline.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli/v2"

	persistlog "blockworld.dev/internal/persistence/log"
	"blockworld.dev/internal/persistence/snapshot"
	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/sandbox"
	"blockworld.dev/internal/sim/tuning"
	"blockworld.dev/internal/sim/world"
	"blockworld.dev/internal/sim/world/logic/mathx"
	"blockworld.dev/internal/sim/world/render"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	worldFlags := []cli.Flag{
		&cli.StringFlag{Name: "tuning", Usage: "tuning.yaml (defaults when absent)"},
		&cli.StringFlag{Name: "blocks", Usage: "blocks.json (built-in palette when empty)"},
		&cli.StringFlag{Name: "generator", Usage: "override world.generator (sine, layered)"},
		&cli.Int64Flag{Name: "seed", Usage: "override world.seed"},
	}
	return &cli.App{
		Name:   "worldctl",
		Usage:  "offline tools for block worlds",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "gen",
				Usage: "generate the chunks around a point and write a snapshot",
				Flags: append([]cli.Flag{
					&cli.Float64Flag{Name: "x", Usage: "player x"},
					&cli.Float64Flag{Name: "y", Value: 15, Usage: "player y"},
					&cli.IntFlag{Name: "radius", Value: -1, Usage: "load radius (tuning value when negative)"},
					&cli.StringFlag{Name: "world", Value: "world_1", Usage: "world id"},
					&cli.StringFlag{Name: "out", Usage: "snapshot path (summary only when empty)"},
				}, worldFlags...),
				Action: func(c *cli.Context) error {
					h, sb, _, err := hostFromFlags(c)
					if err != nil {
						return err
					}
					sb.Player.Pos = mgl32.Vec2{float32(c.Float64("x")), float32(c.Float64("y"))}
					if r := c.Int("radius"); r >= 0 {
						sb.World.SetLoadRadius(r)
					}
					f := h.StepOnce(nil)
					fmt.Fprintf(c.App.Writer, "focal=(%d,%d) loaded=%d quads=%d\n", f.Focal[0], f.Focal[1], f.Loaded, f.Quads)
					path := c.String("out")
					if path == "" {
						return nil
					}
					if err := snapshot.WriteSnapshot(path, h.ExportSnapshot(f.Tick)); err != nil {
						return fmt.Errorf("write snapshot: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
					return nil
				},
			},
			{
				Name:      "inspect",
				Usage:     "print a snapshot's header and contents",
				ArgsUsage: "<snapshot>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("need a snapshot path")
					}
					snap, err := snapshot.ReadSnapshot(c.Args().Get(0))
					if err != nil {
						return err
					}
					return inspect(c.App.Writer, snap)
				},
			},
			{
				Name:  "ascii",
				Usage: "draw a region of a world as text",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "snapshot", Usage: "draw this snapshot instead of fresh terrain"},
					&cli.IntFlag{Name: "min-x", Value: -32},
					&cli.IntFlag{Name: "min-y", Value: 0},
					&cli.IntFlag{Name: "max-x", Value: 31},
					&cli.IntFlag{Name: "max-y", Value: 31},
				}, worldFlags...),
				Action: func(c *cli.Context) error {
					_, sb, reg, err := hostFromFlags(c)
					if err != nil {
						return err
					}
					var chunks []snapshot.ChunkV1
					if p := c.String("snapshot"); p != "" {
						snap, err := snapshot.ReadSnapshot(p)
						if err != nil {
							return err
						}
						chunks = snap.Chunks
					}
					s, err := drawRegion(sb.World, reg, chunks, c.Int("min-x"), c.Int("min-y"), c.Int("max-x"), c.Int("max-y"))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, s)
					return nil
				},
			},
			{
				Name:      "events",
				Usage:     "summarise the tick and audit logs of a world directory",
				ArgsUsage: "<world dir>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("need a world directory")
					}
					return summariseLogs(c.App.Writer, c.Args().Get(0))
				},
			},
		},
	}
}

func hostFromFlags(c *cli.Context) (*sandbox.Host, *sandbox.Sandbox, *blocks.Registry, error) {
	tune := tuning.Defaults()
	if p := c.String("tuning"); p != "" {
		t, err := tuning.Load(p)
		if err != nil {
			return nil, nil, nil, err
		}
		tune = t
	}
	if c.IsSet("generator") {
		tune.World.Generator = c.String("generator")
	}
	if c.IsSet("seed") {
		tune.World.Seed = c.Int64("seed")
	}
	if err := tune.Validate(); err != nil {
		return nil, nil, nil, err
	}

	reg := blocks.Defaults()
	if p := c.String("blocks"); p != "" {
		r, err := blocks.Load(p)
		if err != nil {
			return nil, nil, nil, err
		}
		reg = r
	}
	g, err := tune.Generator()
	if err != nil {
		return nil, nil, nil, err
	}
	w := world.New(tune.WorldConfig(), reg, g, nil)
	sb := sandbox.New(w, sandbox.NewPlayer(mgl32.Vec2(tune.Server.PlayerStart)))
	h := sandbox.NewHost(sandbox.HostConfig{
		WorldID:    c.String("world"),
		TickRateHz: tune.Server.TickRateHz,
		Seed:       tune.World.Seed,
		Terrain:    tune.GenParams(),
	}, sb, nil)
	return h, sb, reg, nil
}

func inspect(out io.Writer, snap snapshot.SnapshotV1) error {
	fmt.Fprintf(out, "snapshot v%d world=%s tick=%d seed=%d generator=%s radius=%d hysteresis=%d chunks=%d\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.Generator,
		snap.LoadRadius, snap.Hysteresis, len(snap.Chunks))
	fmt.Fprintf(out, "player pos=(%.2f,%.2f) selected=%d\n", snap.Player.Pos[0], snap.Player.Pos[1], snap.Player.Selected)
	if len(snap.Chunks) == 0 {
		return nil
	}
	minX, minY := snap.Chunks[0].CX, snap.Chunks[0].CY
	maxX, maxY := minX, minY
	for _, ch := range snap.Chunks {
		minX, maxX = min(minX, ch.CX), max(maxX, ch.CX)
		minY, maxY = min(minY, ch.CY), max(maxY, ch.CY)
	}
	fmt.Fprintf(out, "chunk bounds x=[%d,%d] y=[%d,%d]\n", minX, maxX, minY, maxY)
	return nil
}

// drawRegion loads enough chunks to cover the region, overlays any stored
// chunks, and rasterises one rune per block.
func drawRegion(w *world.World, reg *blocks.Registry, chunks []snapshot.ChunkV1, minX, minY, maxX, maxY int) (string, error) {
	if maxX < minX || maxY < minY {
		return "", fmt.Errorf("empty region [%d,%d]x[%d,%d]", minX, maxX, minY, maxY)
	}
	center := mgl32.Vec2{float32(minX+maxX) / 2, float32(minY+maxY) / 2}
	focal := world.FocalChunkOf(center)
	r := 0
	for _, c := range [][2]int{{minX, minY}, {maxX, maxY}, {minX, maxY}, {maxX, minY}} {
		r = max(r, mathx.Chebyshev(mathx.ChunkOf(c[0]), mathx.ChunkOf(c[1]), focal.CX, focal.CY))
	}
	w.SetLoadRadius(r)
	w.Update(center)
	if err := w.ImportChunks(chunks); err != nil {
		return "", err
	}

	rec := &render.Recorder{}
	w.Render(rec)
	return render.ASCII(rec.Quads, minX, minY, maxX, maxY, glyphsFor(reg)), nil
}

func summariseLogs(out io.Writer, worldDir string) error {
	files, err := persistlog.Files(filepath.Join(worldDir, "events"), "events")
	if err != nil {
		return err
	}
	var (
		ticks, actions, rejected int
		first, last              uint64
		created, evicted         int
	)
	for _, f := range files {
		err := persistlog.ReadLines(f, func(e sandbox.TickLogEntry) error {
			if ticks == 0 {
				first = e.Tick
			}
			last = e.Tick
			ticks++
			created += e.Created
			evicted += e.Evicted
			actions += len(e.Actions)
			for _, a := range e.Actions {
				if a.Code != "" {
					rejected++
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	fmt.Fprintf(out, "ticks=%d first=%d last=%d created=%d evicted=%d actions=%d rejected=%d\n",
		ticks, first, last, created, evicted, actions, rejected)

	auditFiles, err := persistlog.Files(filepath.Join(worldDir, "audit"), "audit")
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	byAction := map[string]int{}
	for _, f := range auditFiles {
		err := persistlog.ReadLines(f, func(e sandbox.AuditEntry) error {
			byAction[e.Action]++
			return nil
		})
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	names := make([]string, 0, len(byAction))
	for k := range byAction {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(out, "audit %s=%d\n", k, byAction[k])
	}
	return nil
}
