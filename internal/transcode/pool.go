package transcode

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent bounds parallel transcodes when the config does
// not say otherwise. Unbounded ffmpeg processes exhaust CPU and disk.
const DefaultMaxConcurrent = 2

// Pool bounds the number of concurrently running transcode processes.
// Callers block in Do until a slot frees up or their context is done.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool admitting up to max concurrent invocations.
func NewPool(max int64) *Pool {
	if max <= 0 {
		max = DefaultMaxConcurrent
	}
	return &Pool{sem: semaphore.NewWeighted(max)}
}

// Do runs fn once a slot is available. A canceled context while waiting
// returns the context error without running fn.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
