package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	persistlog "blockworld.dev/internal/persistence/log"
	"blockworld.dev/internal/protocol"
	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/sandbox"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := newApp(&out).Run(append([]string{"worldctl"}, args...)); err != nil {
		t.Fatalf("worldctl %v: %v", args, err)
	}
	return out.String()
}

func TestGenInspectAscii(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0.snap.zst")

	out := run(t, "gen", "--out", path, "--world", "w9")
	if !strings.Contains(out, "focal=(0,0) loaded=49") {
		t.Fatalf("gen output = %q", out)
	}

	out = run(t, "inspect", path)
	for _, want := range []string{"world=w9", "tick=0", "generator=sine", "chunks=49", "chunk bounds x=[-3,3] y=[-3,3]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect missing %q: %q", want, out)
		}
	}

	want := strings.Join([]string{".", `"`, "d", "d", "d", "#", "#"}, "\n") + "\n"
	if got := run(t, "ascii", "--min-x", "0", "--max-x", "0", "--min-y", "5", "--max-y", "11"); got != want {
		t.Fatalf("ascii =\n%s\nwant\n%s", got, want)
	}
	if got := run(t, "ascii", "--snapshot", path, "--min-x", "0", "--max-x", "0", "--min-y", "5", "--max-y", "11"); got != want {
		t.Fatalf("ascii from snapshot =\n%s", got)
	}
}

func TestGenRadiusAndLayered(t *testing.T) {
	out := run(t, "gen", "--radius", "1", "--x", "40", "--generator", "layered", "--seed", "3")
	if !strings.Contains(out, "focal=(2,0) loaded=9") {
		t.Fatalf("gen output = %q", out)
	}
	var buf bytes.Buffer
	if err := newApp(&buf).Run([]string{"worldctl", "gen", "--generator", "fractal"}); err == nil {
		t.Fatalf("expected unknown generator error")
	}
}

func TestEventsSummary(t *testing.T) {
	dir := t.TempDir()
	tl := persistlog.NewTickLogger(dir)
	al := persistlog.NewAuditLogger(dir)
	_ = tl.WriteTick(sandbox.TickLogEntry{Tick: 0, Created: 49, Loaded: 49})
	_ = tl.WriteTick(sandbox.TickLogEntry{Tick: 1, Loaded: 49, Actions: []sandbox.RecordedAction{
		{SessionID: "s1", Act: protocol.ActMsg{Action: protocol.ActBreak}},
		{SessionID: "s2", Act: protocol.ActMsg{Action: protocol.ActPlace}, Code: protocol.ErrNoPermission},
	}})
	_ = al.WriteAudit(sandbox.AuditEntry{Tick: 1, Actor: "s1", Action: protocol.ActBreak, From: uint16(blocks.Grass)})
	if err := tl.Close(); err != nil {
		t.Fatalf("close tick log: %v", err)
	}
	if err := al.Close(); err != nil {
		t.Fatalf("close audit log: %v", err)
	}

	out := run(t, "events", dir)
	for _, want := range []string{"ticks=2 first=0 last=1 created=49 evicted=0 actions=2 rejected=1", "audit BREAK=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("events missing %q: %q", want, out)
		}
	}
}

func TestGlyphFallback(t *testing.T) {
	if glyphFor("stone") != '#' || glyphFor("Marble") != 'm' || glyphFor("") != '?' {
		t.Fatalf("glyphs: %q %q %q", glyphFor("stone"), glyphFor("Marble"), glyphFor(""))
	}
}
