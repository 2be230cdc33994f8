package analytics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/url-shortener/domain/link"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/time/rate"
)

// AccessSink receives access events taken off the queue. linkID names the
// record incarnation the access was resolved against.
type AccessSink interface {
	RecordAccess(code, linkID string, event link.AccessEvent)
}

// RecorderConfig holds the access queue configuration.
type RecorderConfig struct {
	QueueSize  int
	NumWorkers int
}

// DefaultRecorderConfig returns the default queue configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		QueueSize:  1024,
		NumWorkers: 2,
	}
}

// RecorderStats reports queue counters. Processed counts every delivered
// access; Inline counts those recorded by the caller because the queue was
// full or the workers were stopped.
type RecorderStats struct {
	Queued    int    `json:"queued"`
	Capacity  int    `json:"capacity"`
	Processed uint64 `json:"processed"`
	Inline    uint64 `json:"inline"`
}

type accessJob struct {
	code   string
	linkID string
	event  link.AccessEvent
}

// Recorder decouples the redirect path from analytics bookkeeping. Notify
// puts the access on a bounded queue and returns at once; a pool of workers
// drains the queue into the sink. When the queue is full the access is
// recorded inline instead, so no access is lost.
type Recorder struct {
	config    RecorderConfig
	sink      AccessSink
	queue     chan accessJob
	wg        sync.WaitGroup
	mu        sync.RWMutex
	running   bool
	closed    bool
	processed atomic.Uint64
	inline    atomic.Uint64
	overflow  rate.Sometimes
	logger    types.Logger
}

// NewRecorder creates a recorder feeding sink. Accesses notified before
// Start wait in the queue.
func NewRecorder(cfg RecorderConfig, sink AccessSink, logger types.Logger) *Recorder {
	defaults := DefaultRecorderConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = defaults.NumWorkers
	}
	return &Recorder{
		config:   cfg,
		sink:     sink,
		queue:    make(chan accessJob, cfg.QueueSize),
		overflow: rate.Sometimes{Interval: 10 * time.Second},
		logger:   logger,
	}
}

// Start launches the workers.
func (r *Recorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("recorder is stopped")
	}
	if r.running {
		return fmt.Errorf("recorder is already running")
	}
	r.running = true

	for i := 0; i < r.config.NumWorkers; i++ {
		workerID := fmt.Sprintf("access-worker-%d", i+1)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.run(workerID)
		}()
	}

	r.logger.Info("Access recorder started",
		"workers", r.config.NumWorkers,
		"queueSize", r.config.QueueSize)
	return nil
}

// Notify queues an access to the linkID incarnation of code without
// blocking on the queue.
func (r *Recorder) Notify(code, linkID string, event link.AccessEvent) {
	job := accessJob{code: code, linkID: linkID, event: event}

	r.mu.RLock()
	reason := ""
	if r.closed {
		reason = "recorder stopped"
	} else {
		select {
		case r.queue <- job:
		default:
			reason = "queue full"
		}
	}
	r.mu.RUnlock()

	if reason != "" {
		r.recordInline(job, reason)
	}
}

func (r *Recorder) recordInline(job accessJob, reason string) {
	r.sink.RecordAccess(job.code, job.linkID, job.event)
	r.processed.Add(1)
	total := r.inline.Add(1)
	r.overflow.Do(func() {
		r.logger.Warn("Recording access inline",
			"shortCode", job.code,
			"reason", reason,
			"inlineTotal", total)
	})
}

// run drains the queue until it is closed.
func (r *Recorder) run(workerID string) {
	for job := range r.queue {
		r.sink.RecordAccess(job.code, job.linkID, job.event)
		r.processed.Add(1)
	}
	r.logger.Debug("Access worker stopped", "worker", workerID)
}

// Stop closes the queue and waits for the workers to drain it, or for ctx
// to expire.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	wasRunning := r.running
	r.running = false
	close(r.queue)
	r.mu.Unlock()

	if !wasRunning {
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Access recorder drained")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Timeout waiting for access workers to drain", "pending", len(r.queue))
		return ctx.Err()
	}
}

// Stats returns the queue counters.
func (r *Recorder) Stats() RecorderStats {
	return RecorderStats{
		Queued:    len(r.queue),
		Capacity:  cap(r.queue),
		Processed: r.processed.Load(),
		Inline:    r.inline.Load(),
	}
}
