// Package resilience bounds how much statement work the API accepts at once.
package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrSaturated is returned by Acquire when every slot stayed busy for the
// whole wait window.
var ErrSaturated = errors.New("resilience: bulkhead saturated")

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem  chan struct{}
	wait time.Duration
}

// NewBulkhead creates a bulkhead with the given max concurrency. Callers
// queue for at most wait before giving up; a wait of zero fails fast.
func NewBulkhead(maxConcurrency int, wait time.Duration) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency), wait: wait}
}

// Acquire takes a slot. It returns ErrSaturated when the wait window runs
// out and ctx.Err() when the context ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}
	if b.wait <= 0 {
		return ErrSaturated
	}

	timer := time.NewTimer(b.wait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrSaturated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}

// InFlight reports how many slots are taken.
func (b *Bulkhead) InFlight() int {
	return len(b.sem)
}

// Capacity reports the slot count.
func (b *Bulkhead) Capacity() int {
	return cap(b.sem)
}
