package worker

import (
	"context"
	"sync"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

// MetricsRecorder abstracts prometheus metrics for the ingestion worker.
// keeps worker decoupled from metrics package.
type MetricsRecorder interface {
	RecordMealsIngested(result string, count int)
	SetBufferSize(size int)
}

// MealIngestionWorkerConfig holds configuration for the ingestion worker.
type MealIngestionWorkerConfig struct {
	// BufferSize is the size of the entry channel buffer.
	BufferSize int

	// BatchSize is the number of entries to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time to wait before flushing a partial batch.
	FlushInterval time.Duration

	// WorkerCount is the number of concurrent workers writing batches.
	WorkerCount int
}

// DefaultMealIngestionConfig returns sensible defaults for the worker.
func DefaultMealIngestionConfig() MealIngestionWorkerConfig {
	return MealIngestionWorkerConfig{
		BufferSize:    5000,
		BatchSize:     100,
		FlushInterval: 500 * time.Millisecond,
		WorkerCount:   2,
	}
}

func (c MealIngestionWorkerConfig) withDefaults() MealIngestionWorkerConfig {
	d := DefaultMealIngestionConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	return c
}

// MealIngestionWorker persists meal log entries from a buffered channel in batches.
type MealIngestionWorker struct {
	entryChan chan *domain.LogEntry
	repo      domain.MealLogRepository
	config    MealIngestionWorkerConfig
	logger    *logging.Logger
	metrics   MetricsRecorder

	// flushCtx outlives the Start context so a shutdown drain can still write
	flushCtx context.Context

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewMealIngestionWorker creates a new meal ingestion worker.
func NewMealIngestionWorker(
	repo domain.MealLogRepository,
	config MealIngestionWorkerConfig,
	logger *logging.Logger,
) *MealIngestionWorker {
	config = config.withDefaults()
	return &MealIngestionWorker{
		entryChan: make(chan *domain.LogEntry, config.BufferSize),
		repo:      repo,
		config:    config,
		logger:    logger.WithComponent("meal_ingestion_worker"),
		flushCtx:  context.Background(),
		stopped:   make(chan struct{}),
	}
}

// WithMetrics sets the metrics recorder for observability.
func (w *MealIngestionWorker) WithMetrics(m MetricsRecorder) *MealIngestionWorker {
	w.metrics = m
	return w
}

// EntryChannel returns the channel for submitting entries.
func (w *MealIngestionWorker) EntryChannel() chan<- *domain.LogEntry {
	return w.entryChan
}

// Start begins the worker goroutines.
// cancelling ctx stops the loops; Stop still drains whatever is left.
func (w *MealIngestionWorker) Start(ctx context.Context) {
	w.logger.Info("meal ingestion worker starting",
		"buffer_size", w.config.BufferSize,
		"batch_size", w.config.BatchSize,
		"flush_interval", w.config.FlushInterval.String(),
		"worker_count", w.config.WorkerCount,
	)

	w.flushCtx = context.WithoutCancel(ctx)
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i)
	}
}

// Stop gracefully shuts down the worker, draining remaining entries.
// no entry may be sent after Stop is called.
func (w *MealIngestionWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("meal ingestion worker stopping, draining buffer...")

		close(w.entryChan)
		w.wg.Wait()

		// workers that exited on context cancel leave entries behind
		var rest []*domain.LogEntry
		for entry := range w.entryChan {
			rest = append(rest, entry)
		}
		for start := 0; start < len(rest); start += w.config.BatchSize {
			end := min(start+w.config.BatchSize, len(rest))
			w.flushBatch(w.flushCtx, rest[start:end], -1)
		}

		close(w.stopped)
		w.logger.Info("meal ingestion worker stopped", "drained", len(rest))
	})
}

// Stopped returns a channel that closes when the worker has fully stopped.
func (w *MealIngestionWorker) Stopped() <-chan struct{} {
	return w.stopped
}

// QueueSize returns the current number of entries waiting in the buffer.
func (w *MealIngestionWorker) QueueSize() int {
	return len(w.entryChan)
}

// runWorker is the main worker loop.
func (w *MealIngestionWorker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	batch := make([]*domain.LogEntry, 0, w.config.BatchSize)
	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.flushBatch(w.flushCtx, batch, workerID)
		batch = make([]*domain.LogEntry, 0, w.config.BatchSize)
	}

	for {
		select {
		case entry, ok := <-w.entryChan:
			if !ok {
				flush()
				w.logger.Debug("worker exiting after drain", "worker_id", workerID)
				return
			}

			batch = append(batch, entry)
			if len(batch) >= w.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-ctx.Done():
			flush()
			w.logger.Debug("worker exiting on context cancel", "worker_id", workerID)
			return
		}
	}
}

// flushBatch persists a batch of entries.
func (w *MealIngestionWorker) flushBatch(ctx context.Context, batch []*domain.LogEntry, workerID int) {
	if len(batch) == 0 {
		return
	}

	start := time.Now()
	err := w.repo.SaveBatch(ctx, batch)
	duration := time.Since(start)

	if err != nil {
		w.logger.Error("batch save failed",
			"worker_id", workerID,
			"batch_size", len(batch),
			"error", err.Error(),
			"duration_ms", duration.Milliseconds(),
		)
		if w.metrics != nil {
			w.metrics.RecordMealsIngested("failed", len(batch))
		}
		return
	}

	if w.metrics != nil {
		w.metrics.RecordMealsIngested("saved", len(batch))
		w.metrics.SetBufferSize(len(w.entryChan))
	}

	w.logger.Debug("batch flushed",
		"worker_id", workerID,
		"batch_size", len(batch),
		"duration_ms", duration.Milliseconds(),
	)
}

// IngestionStats is a snapshot of the worker's buffer.
type IngestionStats struct {
	QueueSize   int `json:"queueSize"`
	BufferSize  int `json:"bufferSize"`
	WorkerCount int `json:"workerCount"`
}

// Stats returns current worker statistics.
func (w *MealIngestionWorker) Stats() IngestionStats {
	return IngestionStats{
		QueueSize:   len(w.entryChan),
		BufferSize:  w.config.BufferSize,
		WorkerCount: w.config.WorkerCount,
	}
}
