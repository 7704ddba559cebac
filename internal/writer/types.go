package writer

import (
	"time"

	"github.com/google/uuid"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// QueueSize bounds refreshes waiting to be batched. Record drops when full.
	QueueSize int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     500,
		FlushInterval: 5 * time.Second,
		QueueSize:     64,
	}
}

// WriterMetrics tracks writer activity.
type WriterMetrics struct {
	Snapshots int64
	Inserts   int64
	Errors    int64
	Dropped   int64
	Flushes   int64
}

// levelRow represents a row for the level_snapshots table.
type levelRow struct {
	SnapshotID uuid.UUID
	FetchedAt  time.Time
	Position   int
	Price      float64
	Label      string
	Color      string // RRGGBB
}
