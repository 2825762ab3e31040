package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"blockworld.dev/internal/persistence/snapshot"
	"blockworld.dev/internal/sim/sandbox"
)

const schemaVersion = "1"

// SQLiteIndex is a secondary, queryable index of ticks, block edits and
// snapshots. Writes are queued to a single writer goroutine and dropped when
// the queue is full; the JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu guards closing ch against concurrent enqueues.
	mu     sync.RWMutex
	closed bool

	dropTick     atomic.Uint64
	dropAudit    atomic.Uint64
	dropSnapshot atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqAudit
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     sandbox.TickLogEntry
	audit    sandbox.AuditEntry
	snapshot SnapshotRow
}

type SnapshotRow struct {
	Tick      uint64
	Path      string
	Seed      int64
	Generator string
	Chunks    int
}

type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	DropTickTotal     uint64
	DropAuditTotal    uint64
	DropSnapshotTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			focal_x INTEGER NOT NULL,
			focal_y INTEGER NOT NULL,
			loaded INTEGER NOT NULL,
			created INTEGER NOT NULL,
			evicted INTEGER NOT NULL,
			quads INTEGER NOT NULL,
			actions INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			from_block INTEGER NOT NULL,
			to_block INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_pos_tick ON audits(x, y, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			generator TEXT NOT NULL,
			chunks INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropAuditTotal:    s.dropAudit.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

// enqueue hands r to the writer goroutine. It reports false when the queue is
// full; requests after Close are discarded.
func (s *SQLiteIndex) enqueue(r req) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- r:
		return true
	default:
		return false
	}
}

func (s *SQLiteIndex) WriteTick(entry sandbox.TickLogEntry) error {
	if s == nil {
		return nil
	}
	if !s.enqueue(req{kind: reqTick, tick: entry}) {
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) WriteAudit(entry sandbox.AuditEntry) error {
	if s == nil {
		return nil
	}
	if !s.enqueue(req{kind: reqAudit, audit: entry}) {
		s.dropAudit.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil {
		return
	}
	r := SnapshotRow{
		Tick:      snap.Header.Tick,
		Path:      path,
		Seed:      snap.Seed,
		Generator: snap.Generator,
		Chunks:    len(snap.Chunks),
	}
	if !s.enqueue(req{kind: reqSnapshot, snapshot: r}) {
		s.dropSnapshot.Add(1)
	}
}

// SetMeta writes a key synchronously, outside the writer queue.
func (s *SQLiteIndex) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, key, value)
	return err
}

func (s *SQLiteIndex) Meta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// LatestSnapshot returns the indexed snapshot with the highest tick.
func (s *SQLiteIndex) LatestSnapshot(ctx context.Context) (SnapshotRow, bool, error) {
	var r SnapshotRow
	var tick int64
	err := s.db.QueryRowContext(ctx,
		`SELECT tick,path,seed,generator,chunks FROM snapshots ORDER BY tick DESC LIMIT 1`,
	).Scan(&tick, &r.Path, &r.Seed, &r.Generator, &r.Chunks)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotRow{}, false, nil
	}
	if err != nil {
		return SnapshotRow{}, false, err
	}
	r.Tick = uint64(tick)
	return r, true, nil
}

// TickCount reports how many ticks are indexed and the highest one.
func (s *SQLiteIndex) TickCount(ctx context.Context) (n int, maxTick uint64, err error) {
	var mx sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(tick) FROM ticks`).Scan(&n, &mx); err != nil {
		return 0, 0, err
	}
	if mx.Valid {
		maxTick = uint64(mx.Int64)
	}
	return n, maxTick, nil
}

// EditsAt lists audited edits of one cell, oldest first.
func (s *SQLiteIndex) EditsAt(ctx context.Context, x, y int) ([]sandbox.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick,actor,action,from_block,to_block FROM audits WHERE x=? AND y=? ORDER BY tick, seq`, x, y)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []sandbox.AuditEntry
	for rows.Next() {
		e := sandbox.AuditEntry{Pos: [2]int{x, y}}
		var tick int64
		if err := rows.Scan(&tick, &e.Actor, &e.Action, &e.From, &e.To); err != nil {
			return nil, err
		}
		e.Tick = uint64(tick)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,focal_x,focal_y,loaded,created,evicted,quads,actions,raw_json) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(tick,seq,actor,action,x,y,from_block,to_block) VALUES(?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,generator,chunks,recorded_at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertAudit, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastAuditTick uint64
		auditSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			t := r.tick
			raw, _ := json.Marshal(t)
			exec(insertTick, int64(t.Tick), t.Focal[0], t.Focal[1], t.Loaded, t.Created, t.Evicted, t.Quads, len(t.Actions), string(raw))

		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			exec(insertAudit, int64(a.Tick), seq, a.Actor, a.Action, a.Pos[0], a.Pos[1], int64(a.From), int64(a.To))

		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, int64(sn.Tick), sn.Path, sn.Seed, sn.Generator, sn.Chunks, time.Now().UTC().Format(time.RFC3339Nano))
		}
		// An open tx pins the only connection; release it once the queue drains.
		if tx != nil && (len(s.ch) == 0 || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
