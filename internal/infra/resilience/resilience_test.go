package resilience_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/monthly-statement/internal/infra/resilience"
)

func TestBulkhead_AcquireRelease(t *testing.T) {
	bh := resilience.NewBulkhead(2, 50*time.Millisecond)

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire, got %v", err)
	}
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire, got %v", err)
	}

	// Third acquire waits out the window
	if err := bh.Acquire(context.Background()); !errors.Is(err, resilience.ErrSaturated) {
		t.Fatalf("expected ErrSaturated, got %v", err)
	}

	bh.Release()

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire after release, got %v", err)
	}
	if bh.InFlight() != 2 {
		t.Errorf("expected 2 in flight, got %d", bh.InFlight())
	}
}

func TestBulkhead_FailFast(t *testing.T) {
	bh := resilience.NewBulkhead(1, 0)
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	err := bh.Acquire(context.Background())

	if !errors.Is(err, resilience.ErrSaturated) {
		t.Fatalf("expected ErrSaturated, got %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("fail-fast acquire should not wait")
	}
}

func TestBulkhead_RespectsContext(t *testing.T) {
	bh := resilience.NewBulkhead(1, time.Minute)
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := bh.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBulkhead_WaiterGetsReleasedSlot(t *testing.T) {
	bh := resilience.NewBulkhead(1, time.Second)
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var waitErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		waitErr = bh.Acquire(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	bh.Release()
	wg.Wait()

	if waitErr != nil {
		t.Fatalf("waiter should get the slot, got %v", waitErr)
	}
}

func TestNewBulkhead_MinimumCapacity(t *testing.T) {
	if got := resilience.NewBulkhead(0, 0).Capacity(); got != 1 {
		t.Errorf("expected capacity 1, got %d", got)
	}
}
