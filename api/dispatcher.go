/*
dispatcher.go - Background collaborator jobs

PURPOSE:
  Runs the work that follows a computation (checkpoint writes, summary
  emails) off the request path. A collaborator failure never reaches the
  taxpayer: errors and panics are logged and discarded.

DESIGN:
  - Fixed pool of workers reading from a bounded queue
  - Submit never blocks; a full queue drops the job and logs it
  - Each job gets its own timeout context
  - Stop refuses new jobs, drains the queue and waits for workers

CONFIGURATION:
  - Workers:    Goroutines running jobs (default: 2)
  - QueueSize:  Buffered jobs before dropping (default: 256)
  - JobTimeout: Deadline per job (default: 10s)

USAGE:
  d := NewDispatcher(2, 256, 10*time.Second, logger)
  d.Start()
  d.Submit("save-checkpoint", func(ctx context.Context) error { ... })
  // ... later
  d.Stop()

SEE ALSO:
  - handlers.go: Checkpoint and email endpoints submit jobs
  - config/config.go: DispatcherConfig
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is one unit of background work.
type Job func(ctx context.Context) error

type namedJob struct {
	name string
	run  Job
}

// DispatcherStats counts job outcomes since Start.
type DispatcherStats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Queued    int   `json:"queued"`
}

// Dispatcher runs collaborator jobs on a bounded worker pool.
type Dispatcher struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration

	log  *zap.Logger
	jobs chan namedJob
	wg   sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher creates a dispatcher. Non-positive values fall back to the
// defaults.
func NewDispatcher(workers, queueSize int, jobTimeout time.Duration, log *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 2
	}
	if queueSize < 1 {
		queueSize = 256
	}
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		Workers:    workers,
		QueueSize:  queueSize,
		JobTimeout: jobTimeout,
		log:        log.Named("dispatcher"),
		jobs:       make(chan namedJob, queueSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.log.Info("dispatcher started",
		zap.Int("workers", d.Workers),
		zap.Int("queue_size", d.QueueSize),
		zap.Duration("job_timeout", d.JobTimeout))
}

// Stop stops accepting jobs, runs what is queued and waits for workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobs)
	started := d.started
	d.mu.Unlock()

	if started {
		d.wg.Wait()
	}
	stats := d.Stats()
	d.log.Info("dispatcher stopped",
		zap.Int64("processed", stats.Processed),
		zap.Int64("failed", stats.Failed),
		zap.Int64("dropped", stats.Dropped))
}

// Submit queues a job. It reports false when the job was dropped because
// the queue is full or the dispatcher is stopped.
func (d *Dispatcher) Submit(name string, job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.dropped.Add(1)
		d.log.Warn("job dropped: dispatcher stopped", zap.String("job", name))
		return false
	}
	select {
	case d.jobs <- namedJob{name: name, run: job}:
		return true
	default:
		d.dropped.Add(1)
		d.log.Warn("job dropped: queue full",
			zap.String("job", name),
			zap.Int("queue_size", d.QueueSize))
		return false
	}
}

// Stats returns the current counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Processed: d.processed.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
		Queued:    len(d.jobs),
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for j := range d.jobs {
		if err := d.run(j); err != nil {
			d.failed.Add(1)
			d.log.Error("job failed",
				zap.String("job", j.name),
				zap.Int("worker", id),
				zap.Error(err))
		}
		d.processed.Add(1)
	}
}

// run executes one job, converting a panic into an error.
func (d *Dispatcher) run(j namedJob) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	start := time.Now()
	err = j.run(ctx)
	d.log.Debug("job finished",
		zap.String("job", j.name),
		zap.Duration("duration", time.Since(start)))
	return err
}
