package writer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/levelfeed/internal/model"
)

var errNoPool = errors.New("writer has no database pool")

// snapshot is one accepted refresh waiting to be batched.
type snapshot struct {
	levels    []model.PriceLevel
	fetchedAt time.Time
}

// SnapshotWriter consumes accepted refreshes and writes them to level_snapshots.
type SnapshotWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	input chan snapshot

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []levelRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewSnapshotWriter creates a new SnapshotWriter.
func NewSnapshotWriter(cfg WriterConfig, db *pgxpool.Pool, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultWriterConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	return &SnapshotWriter{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  make(chan snapshot, cfg.QueueSize),
		batch:  make([]levelRow, 0, cfg.BatchSize),
	}
}

// Record queues one accepted refresh. It never blocks: the study calls it
// from inside a tick, so a full queue drops the snapshot and counts it.
func (w *SnapshotWriter) Record(levels []model.PriceLevel, fetchedAt time.Time) {
	s := snapshot{levels: append([]model.PriceLevel(nil), levels...), fetchedAt: fetchedAt}
	select {
	case w.input <- s:
	default:
		w.batchMu.Lock()
		w.metrics.Dropped++
		w.batchMu.Unlock()
		w.logger.Warn("snapshot queue full, dropping refresh", "levels", len(levels))
	}
}

// Start begins consuming snapshots and writing to the database.
func (w *SnapshotWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("snapshot writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *SnapshotWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping snapshot writer")

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("snapshot writer stopped")
	case <-ctx.Done():
		w.logger.Warn("snapshot writer stop timed out")
	}

	// Drain whatever was queued before cancellation, then a final flush.
drain:
	for {
		select {
		case s := <-w.input:
			w.handleSnapshot(s)
		default:
			break drain
		}
	}
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *SnapshotWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads queued snapshots and accumulates batches.
func (w *SnapshotWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case s := <-w.input:
			w.handleSnapshot(s)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *SnapshotWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleSnapshot transforms and adds a snapshot to the batch.
func (w *SnapshotWriter) handleSnapshot(s snapshot) {
	rows := w.transform(s)

	w.batchMu.Lock()
	w.batch = append(w.batch, rows...)
	w.metrics.Snapshots++
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform converts a snapshot to one row per level sharing a snapshot id.
func (w *SnapshotWriter) transform(s snapshot) []levelRow {
	id := uuid.New()
	rows := make([]levelRow, len(s.levels))
	for i, lvl := range s.levels {
		rows[i] = levelRow{
			SnapshotID: id,
			FetchedAt:  s.fetchedAt.UTC(),
			Position:   i,
			Price:      lvl.Price,
			Label:      lvl.Label,
			Color:      lvl.Color.Hex(),
		}
	}
	return rows
}

// flush writes the current batch to the database.
func (w *SnapshotWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]levelRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	if err := w.batchInsert(ctx, batch); err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch))
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed level snapshots",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch.
func (w *SnapshotWriter) batchInsert(ctx context.Context, rows []levelRow) error {
	if w.db == nil {
		return errNoPool
	}
	if ctx == nil || ctx.Err() != nil {
		ctx = context.Background()
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO level_snapshots (snapshot_id, fetched_at, position, price, label, color)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.SnapshotID, r.FetchedAt, r.Position, r.Price, r.Label, r.Color)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
