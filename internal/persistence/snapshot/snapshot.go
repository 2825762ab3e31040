package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed           int64     `json:"seed"`
	Generator      string    `json:"generator"`
	Terrain        TerrainV1 `json:"terrain"`
	LoadRadius     int       `json:"load_radius"`
	Hysteresis     int       `json:"hysteresis"`
	RegistryDigest string    `json:"registry_digest,omitempty"`

	Player PlayerV1  `json:"player"`
	Chunks []ChunkV1 `json:"chunks"`
}

// TerrainV1 captures generator parameters so a resumed world regenerates
// evicted chunks the same way.
type TerrainV1 struct {
	Scale            float64 `json:"scale"`
	HeightMultiplier float64 `json:"height_multiplier"`
	BaseHeight       int     `json:"base_height"`
	WaterLevel       int     `json:"water_level"`
	FloorY           int     `json:"floor_y"`
	MaxHeight        int     `json:"max_height"`
	SineAmplitude    float64 `json:"sine_amplitude"`
	SineOffset       float64 `json:"sine_offset"`
	SineFrequency    float64 `json:"sine_frequency"`
}

type PlayerV1 struct {
	Pos      [2]float32 `json:"pos"`
	Selected uint16     `json:"selected"`
}

// ChunkV1 stores one chunk; Blocks is the RLE/base64 form of the N*N cells.
type ChunkV1 struct {
	CX     int    `json:"cx"`
	CY     int    `json:"cy"`
	Blocks string `json:"blocks"`
}

// WriteSnapshot writes a JSON header line followed by a gob body, all inside
// one zstd stream. The file is replaced atomically.
func WriteSnapshot(path string, snap SnapshotV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func openStream(path string) (*os.File, *zstd.Decoder, *bufio.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, nil, err
	}
	return f, dec, bufio.NewReaderSize(dec, 256*1024), nil
}

// ReadHeader decodes only the leading header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, dec, br, err := openStream(path)
	if err != nil {
		return h, err
	}
	defer f.Close()
	defer dec.Close()

	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, dec, br, err := openStream(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	defer dec.Close()

	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// Latest returns the newest "<tick>.snap.zst" file in dir, or "" if none.
func Latest(dir string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.snap.zst"))
	best := ""
	var bestTick uint64
	for _, m := range matches {
		var tick uint64
		if _, err := fmt.Sscanf(filepath.Base(m), "%d.snap.zst", &tick); err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			best, bestTick = m, tick
		}
	}
	return best
}

// PathFor names the snapshot file for a tick inside dir.
func PathFor(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d.snap.zst", tick))
}
