package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"blockworld.dev/internal/sim/sandbox"
)

// DefaultSegmentBytes caps the uncompressed size of one segment.
const DefaultSegmentBytes = 64 << 20

const hourLayout = "2006-01-02-15"

// SegmentWriter appends JSON lines to zstd segments named
// <dir>/<prefix>-YYYY-MM-DD-HH-NNN.jsonl.zst. A new segment starts on every
// UTC hour, whenever the current one reaches MaxBytes, and on the first write
// after opening so a restarted server never appends to a file a crashed
// process left behind.
type SegmentWriter struct {
	dir      string
	prefix   string
	MaxBytes int64

	mu      sync.Mutex
	hour    string
	seq     int
	written int64
	f       *os.File
	enc     *zstd.Encoder
	buf     *bufio.Writer

	now func() time.Time
}

func NewSegmentWriter(dir, prefix string) *SegmentWriter {
	return &SegmentWriter{dir: dir, prefix: prefix, MaxBytes: DefaultSegmentBytes, now: time.Now}
}

func (w *SegmentWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s line: %w", w.prefix, err)
	}
	b = append(b, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	hour := w.now().UTC().Format(hourLayout)
	switch {
	case hour != w.hour:
		if err := w.openLocked(hour, -1); err != nil {
			return err
		}
	case w.MaxBytes > 0 && w.written > 0 && w.written+int64(len(b)) > w.MaxBytes:
		if err := w.openLocked(hour, w.seq+1); err != nil {
			return err
		}
	}
	if _, err := w.buf.Write(b); err != nil {
		return err
	}
	w.written += int64(len(b))
	return w.buf.Flush()
}

func (w *SegmentWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.closeLocked()
	w.hour = ""
	return err
}

// openLocked starts segment seq of hour; seq < 0 picks the first unused one.
func (w *SegmentWriter) openLocked(hour string, seq int) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if seq < 0 {
		seq = w.nextSeq(hour)
	}
	path := w.segmentPath(hour, seq)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("open segment: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.enc = f, enc
	w.buf = bufio.NewWriterSize(enc, 64*1024)
	w.hour, w.seq, w.written = hour, seq, 0
	return nil
}

func (w *SegmentWriter) closeLocked() error {
	if w.f == nil {
		return nil
	}
	ferr := w.buf.Flush()
	if err := w.enc.Close(); ferr == nil {
		ferr = err
	}
	if err := w.f.Close(); ferr == nil {
		ferr = err
	}
	w.f, w.enc, w.buf = nil, nil, nil
	return ferr
}

func (w *SegmentWriter) nextSeq(hour string) int {
	stem := fmt.Sprintf("%s-%s-", w.prefix, hour)
	next := 0
	ents, _ := os.ReadDir(w.dir)
	for _, e := range ents {
		name := e.Name()
		if !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, ".jsonl.zst") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, stem), ".jsonl.zst"))
		if err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

func (w *SegmentWriter) segmentPath(hour string, seq int) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s-%03d.jsonl.zst", w.prefix, hour, seq))
}

// TickLogger writes one line per host tick under <world>/events.
type TickLogger struct{ w *SegmentWriter }

func NewTickLogger(worldDir string) *TickLogger {
	return &TickLogger{w: NewSegmentWriter(filepath.Join(worldDir, "events"), "events")}
}

func (l *TickLogger) WriteTick(e sandbox.TickLogEntry) error { return l.w.Write(e) }
func (l *TickLogger) Close() error                         { return l.w.Close() }

// AuditLogger writes one line per block edit under <world>/audit.
type AuditLogger struct{ w *SegmentWriter }

func NewAuditLogger(worldDir string) *AuditLogger {
	return &AuditLogger{w: NewSegmentWriter(filepath.Join(worldDir, "audit"), "audit")}
}

func (l *AuditLogger) WriteAudit(e sandbox.AuditEntry) error { return l.w.Write(e) }
func (l *AuditLogger) Close() error                        { return l.w.Close() }
