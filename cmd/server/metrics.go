package main

import (
	"fmt"
	"io"

	"blockworld.dev/internal/persistence/indexdb"
	"blockworld.dev/internal/sim/sandbox"
)

// writeMetrics renders host and index counters in Prometheus text format.
// idx may be nil.
func writeMetrics(w io.Writer, worldID string, m sandbox.Metrics, idx *indexdb.Stats) {
	gauge := func(name, help string, v any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", name)
		fmt.Fprintf(w, "%s{world=%q} %v\n", name, worldID, v)
	}
	counter := func(name, help string, v uint64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s{world=%q} %d\n", name, worldID, v)
	}

	gauge("blockworld_tick", "Last completed tick.", m.Tick)
	gauge("blockworld_loaded_chunks", "Loaded chunk count.", m.Loaded)
	gauge("blockworld_quads", "Quads emitted by the last render pass.", m.Quads)
	gauge("blockworld_subscribers", "Connected sessions.", m.Subscribers)
	counter("blockworld_chunks_created_total", "Chunks created by streaming or edits.", m.Stats.Created)
	counter("blockworld_chunks_evicted_total", "Chunks evicted by streaming.", m.Stats.Evicted)
	counter("blockworld_chunks_generated_total", "Chunks filled by the terrain generator.", m.Stats.Generated)
	counter("blockworld_updates_total", "Streaming updates run.", m.Stats.Updates)

	if idx == nil {
		return
	}
	gauge("blockworld_index_queue_depth", "Index writer backlog.", idx.QueueDepth)
	gauge("blockworld_index_queue_capacity", "Index writer queue capacity.", idx.QueueCapacity)
	fmt.Fprintf(w, "# HELP blockworld_index_dropped_total Index writes dropped on a full queue.\n")
	fmt.Fprintf(w, "# TYPE blockworld_index_dropped_total counter\n")
	fmt.Fprintf(w, "blockworld_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "tick", idx.DropTickTotal)
	fmt.Fprintf(w, "blockworld_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "audit", idx.DropAuditTotal)
	fmt.Fprintf(w, "blockworld_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "snapshot", idx.DropSnapshotTotal)
}
