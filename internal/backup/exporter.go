package backup

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rkhatri/munim/internal/storage"
)

// Exporter is the debounced, best-effort background export. Mutations
// call Notify after every successful commit; once the ledger has been
// quiet for the quiescence window, the exporter snapshots state and
// writes the envelope to disk.
//
// It is fire-and-forget: Notify never blocks the mutating caller, and a
// failed write never affects the mutation that triggered it. Failure is
// logged and retried on the next triggering mutation. The snapshot is
// taken inside one storage transaction, so a racing mutation either
// fully precedes or fully follows an export.
type Exporter struct {
	store      storage.Store
	path       string
	quiescence time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	gen     uint64
	closed  bool
	wg      sync.WaitGroup

	// exportMu serializes export runs so two timer fires cannot
	// interleave writes to the same tmp file.
	exportMu sync.Mutex
}

// NewExporter creates an Exporter writing to path after the given
// quiescence window. It does nothing until the first Notify.
func NewExporter(store storage.Store, path string, quiescence time.Duration) *Exporter {
	return &Exporter{store: store, path: path, quiescence: quiescence}
}

// Notify marks pending changes and (re)starts the quiescence timer.
// Safe to call from any goroutine; returns immediately.
func (x *Exporter) Notify() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return
	}
	x.pending = true
	x.gen++
	if x.timer == nil {
		x.timer = time.AfterFunc(x.quiescence, x.fire)
		return
	}
	x.timer.Reset(x.quiescence)
}

// Close stops the timer and flushes synchronously if changes are pending.
func (x *Exporter) Close() error {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return nil
	}
	x.closed = true
	if x.timer != nil {
		x.timer.Stop()
	}
	x.mu.Unlock()

	x.wg.Wait()

	// Re-read after the wait: an in-flight export may have cleared the
	// flag, or a late Notify may have set it again.
	x.mu.Lock()
	pending := x.pending
	x.mu.Unlock()
	if pending {
		x.export()
	}
	return nil
}

// fire runs on the timer goroutine once the ledger has been quiet.
func (x *Exporter) fire() {
	x.mu.Lock()
	if x.closed || !x.pending {
		x.mu.Unlock()
		return
	}
	x.wg.Add(1)
	x.mu.Unlock()

	defer x.wg.Done()
	x.export()
}

func (x *Exporter) export() {
	x.exportMu.Lock()
	defer x.exportMu.Unlock()

	// Capture the notification generation before snapshotting: a Notify
	// that arrives while this export is in flight bumps it, and those
	// changes may not be in the snapshot.
	x.mu.Lock()
	gen := x.gen
	x.mu.Unlock()

	env, err := Snapshot(context.Background(), x.store)
	if err != nil {
		slog.Error("backup snapshot failed", "error", err)
		return
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		slog.Error("backup encode failed", "error", err)
		return
	}

	// Write-and-rename so a crash mid-write never corrupts the last
	// good backup. On failure, pending stays set and the next mutation
	// retries.
	tmp := x.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(x.path), 0755); err != nil {
		slog.Error("backup write failed", "path", x.path, "error", err)
		return
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		slog.Error("backup write failed", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, x.path); err != nil {
		slog.Error("backup rename failed", "path", x.path, "error", err)
		return
	}

	x.mu.Lock()
	// Clear pending only if no Notify raced this export; otherwise the
	// flag survives and the already-reset timer fires again.
	if x.gen == gen {
		x.pending = false
	}
	x.mu.Unlock()
	slog.Info("backup written",
		"path", x.path,
		"parties", len(env.Tables.Parties),
		"entries", len(env.Tables.Entries),
	)
}
