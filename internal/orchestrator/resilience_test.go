package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aristath/projplan/internal/persistence"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		InitialInterval:     time.Millisecond,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      500 * time.Millisecond,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// TestWriteWithRetry_TransientThenSuccess verifies transient failures are retried.
func TestWriteWithRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	write := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("database is locked (attempt %d)", calls)
		}
		return nil
	}

	err := writeWithRetry(context.Background(), newStoreBreaker(nil), fastRetry(), write)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

// TestWriteWithRetry_PermanentNotRetried verifies caller errors fail fast.
func TestWriteWithRetry_PermanentNotRetried(t *testing.T) {
	calls := 0
	write := func(ctx context.Context) error {
		calls++
		return fmt.Errorf("project %q: %w", "ghost", persistence.ErrNotFound)
	}

	cb := newStoreBreaker(nil)
	err := writeWithRetry(context.Background(), cb, fastRetry(), write)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("caller errors should not trip the breaker, state: %v", cb.State())
	}
}

// TestWriteWithRetry_CircuitOpens verifies the breaker stops retries after
// repeated store failures.
func TestWriteWithRetry_CircuitOpens(t *testing.T) {
	calls := 0
	write := func(ctx context.Context) error {
		calls++
		return errors.New("disk I/O error")
	}

	cb := newStoreBreaker(nil)
	err := writeWithRetry(context.Background(), cb, fastRetry(), write)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls before the circuit opened, got %d", calls)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("expected open circuit, got %v", cb.State())
	}
}

// TestWriteWithRetry_ContextCancelled verifies cancellation stops retries
// without counting as a store failure.
func TestWriteWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	write := func(ctx context.Context) error {
		calls++
		return ctx.Err()
	}

	cb := newStoreBreaker(nil)
	for i := 0; i < 5; i++ {
		err := writeWithRetry(ctx, cb, fastRetry(), write)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("call %d: expected context.Canceled, got %v", i+1, err)
		}
	}
	if calls != 0 {
		t.Errorf("expected no writes with a cancelled context, got %d", calls)
	}

	// Cancellation reported by the write itself is not a store fault either
	for i := 0; i < 5; i++ {
		_ = writeWithRetry(context.Background(), cb, fastRetry(), func(context.Context) error {
			return context.Canceled
		})
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed circuit, got %v", cb.State())
	}
}
