// Package resource bounds what a batch run may consume: concurrent
// origin workers and document I/O throughput.
package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrent origin workers.
	// If 0, defaults to 1.
	MaxWorkers int64

	// IOLimitBytesPerSec caps document read/write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared limits for one store instance.
type Controller struct {
	cfg Config

	workerSem *semaphore.Weighted
	ioLimiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// MaxWorkers returns the configured worker bound.
func (c *Controller) MaxWorkers() int64 {
	if c == nil {
		return 1
	}
	return c.cfg.MaxWorkers
}

// AcquireWorker reserves an origin worker slot, blocking until one is
// free or ctx is canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workerSem.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workerSem.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workerSem.Release(1)
}

// AcquireIO waits until the throughput limit allows bytes more bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	// WaitN cannot exceed the burst; split very large documents.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
