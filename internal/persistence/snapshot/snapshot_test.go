package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := PathFor(dir, 120)
	in := SnapshotV1{
		Header:     Header{WorldID: "w1", Tick: 120},
		Seed:       1337,
		Generator:  "layered",
		Terrain:    TerrainV1{Scale: 0.05, BaseHeight: 64, WaterLevel: 62, MaxHeight: 256},
		LoadRadius: 3,
		Hysteresis: 2,
		Player:     PlayerV1{Pos: [2]float32{1.5, -3}, Selected: 4},
		Chunks:     []ChunkV1{{CX: -1, CY: 2, Blocks: "AIAC"}},
	}
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Version != Version || h.Tick != 120 || h.WorldID != "w1" {
		t.Fatalf("unexpected header: %+v", h)
	}

	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if out.Seed != 1337 || out.Generator != "layered" || out.Player.Pos != in.Player.Pos {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
	if len(out.Chunks) != 1 || out.Chunks[0].CX != -1 || out.Chunks[0].Blocks != "AIAC" {
		t.Fatalf("unexpected chunks: %+v", out.Chunks)
	}
}

func TestLatestPicksHighestTick(t *testing.T) {
	dir := t.TempDir()
	for _, tick := range []uint64{9, 100, 20} {
		if err := WriteSnapshot(PathFor(dir, tick), SnapshotV1{Header: Header{Tick: tick}}); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
	}
	if got := Latest(dir); filepath.Base(got) != "100.snap.zst" {
		t.Fatalf("Latest = %q", got)
	}
	if got := Latest(t.TempDir()); got != "" {
		t.Fatalf("Latest on empty dir = %q", got)
	}
}
