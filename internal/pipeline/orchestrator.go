package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docrank/internal/analyze"
	"github.com/dgallion1/docrank/internal/config"
)

// ErrStopped is returned by Submit once the orchestrator is shutting down.
var ErrStopped = errors.New("pipeline stopped")

const cleanupInterval = 5 * time.Minute

// Orchestrator runs queued collection jobs on a fixed worker pool.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	analyzer *analyze.Analyzer
	stats    *Stats
	log      *slog.Logger
	cfg      config.Config

	// mu guards stopped and sends on queue so Stop never closes it mid-send.
	mu      sync.RWMutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, a *analyze.Analyzer, stats *Stats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		analyzer: a,
		stats:    stats,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches the workers and the job store janitor.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go o.runWorker(ctx, NewWorker(o.analyzer, o.stats, o.log.With("worker", i)))
	}
	o.wg.Add(1)
	go o.runCleanup(ctx, cleanupInterval)
}

func (o *Orchestrator) runWorker(ctx context.Context, w *Worker) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) runCleanup(ctx context.Context, every time.Duration) {
	defer o.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := o.jobs.Len()
			o.jobs.Cleanup()
			if evicted := before - o.jobs.Len(); evicted > 0 {
				o.log.Debug("expired jobs evicted", "count", evicted)
			}
		}
	}
}

// Stop cancels in-flight work, rejects new submissions and waits for the
// workers to exit. It is safe to call more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.mu.Unlock()

	o.wg.Wait()
}

// Submit registers job and queues it. A full queue fails the job
// immediately rather than blocking the caller.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the processing-time tracker shared with the API.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}
