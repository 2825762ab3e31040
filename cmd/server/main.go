package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"blockworld.dev/internal/configsrc"
	"blockworld.dev/internal/persistence/indexdb"
	persistlog "blockworld.dev/internal/persistence/log"
	"blockworld.dev/internal/persistence/snapshot"
	"blockworld.dev/internal/sim/sandbox"
	"blockworld.dev/internal/sim/tuning"
	"blockworld.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		configSrc  = flag.String("configs", "./configs", "config directory, or a go-getter source (git::, https://, s3::)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (ticks, audits, snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := signalContext()
	defer cancel()

	configDir, err := resolveConfigDir(ctx, *configSrc, *dataDir, logger)
	if err != nil {
		logger.Fatalf("configs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(configDir, "tuning.yaml")
	}
	tune, err := tuning.LoadOrDefault(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	reg, err := loadRegistry(configDir)
	if err != nil {
		logger.Fatalf("load blocks: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	snapDir := filepath.Join(worldDir, "snapshots")
	_ = os.MkdirAll(worldDir, 0o755)

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(snapDir)
	}
	opts := hostOptions{WorldID: *worldID, Tuning: tune, Registry: reg, Logger: logger}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		opts.Snapshot = &snap
	}
	host, err := buildHost(opts)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if opts.Snapshot != nil {
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), host.CurrentTick())
	}

	// Optional read-model index; the JSONL logs stay authoritative.
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.SetMeta(ctx, "world_id", *worldID); err != nil {
			logger.Printf("index backend: set meta: %v", err)
		}
		if err := idx.SetMeta(ctx, "registry_digest", reg.Digest()); err != nil {
			logger.Printf("index backend: set meta: %v", err)
		}
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	if idx != nil {
		host.SetTickLogger(persistlog.TeeTickLogger{tickLog, idx})
		host.SetAuditLogger(persistlog.TeeAuditLogger{auditLog, idx})
	} else {
		host.SetTickLogger(tickLog)
		host.SetAuditLogger(auditLog)
	}

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	host.SetSnapshotSink(snapCh)
	snapDone := make(chan struct{})
	defer func() { <-snapDone }()
	go func() {
		defer close(snapDone)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := snapshot.PathFor(snapDir, snap.Header.Tick)
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	// The index and the logs are closed by defers; both goroutines that write
	// to them are joined first.
	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		if err := host.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()
	defer func() { <-hostDone }()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(host, idx, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s world=%s generator=%s radius=%d", *addr, *worldID, tune.World.Generator, tune.World.LoadRadius)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// resolveConfigDir fetches remote config sources into <data>/configs. A
// missing local directory is not an error: every config file has a default.
func resolveConfigDir(ctx context.Context, src, dataDir string, logger *log.Logger) (string, error) {
	if configsrc.IsRemote(src) {
		dir, err := configsrc.Fetch(ctx, src, filepath.Join(dataDir, "configs"))
		if err != nil {
			return "", err
		}
		logger.Printf("fetched configs from %s into %s", src, dir)
		return dir, nil
	}
	dir, err := configsrc.Fetch(ctx, src, "")
	if os.IsNotExist(err) {
		logger.Printf("config directory %s not found; using defaults", src)
		return src, nil
	}
	return dir, err
}

func newMux(host *sandbox.Host, idx *indexdb.SQLiteIndex, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		var st *indexdb.Stats
		if idx != nil {
			s := idx.Stats()
			st = &s
		}
		writeMetrics(rw, host.ID(), host.Metrics(), st)
	})

	if envBool("BW_ENABLE_ADMIN_HTTP", true) {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string          `json:"world_id"`
				Tick    uint64          `json:"tick"`
				Metrics sandbox.Metrics `json:"metrics"`
			}{
				WorldID: host.ID(),
				Tick:    host.CurrentTick(),
				Metrics: host.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/edits", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if idx == nil {
				http.Error(rw, "index disabled", http.StatusServiceUnavailable)
				return
			}
			x, y, ok := parseCell(r.URL.Query().Get("x"), r.URL.Query().Get("y"))
			if !ok {
				http.Error(rw, "x and y must be integers", http.StatusBadRequest)
				return
			}
			edits, err := idx.EditsAt(r.Context(), x, y)
			if err != nil {
				http.Error(rw, err.Error(), http.StatusInternalServerError)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(map[string]any{"x": x, "y": y, "edits": edits})
		})
	} else {
		logger.Printf("admin endpoints disabled (BW_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("BW_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(host, logger).Handler())
	return mux
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
