package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend failure")

func newBreaker(timeout time.Duration) *CircuitBreaker {
	return New("test", Config{
		MaxRequests:      5,
		Timeout:          timeout,
		FailureThreshold: 3,
		SuccessThreshold: 2,
	})
}

func TestExecuteClosedPassesThrough(t *testing.T) {
	cb := newBreaker(time.Minute)

	calls := 0
	err := cb.Execute(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecuteNeverRetries(t *testing.T) {
	cb := newBreaker(time.Minute)

	calls := 0
	err := cb.Execute(context.Background(), func() error {
		calls++
		return errBackend
	})
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 1, calls)
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := newBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func() error { return errBackend })
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func() error {
		t.Fatal("must not be called while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := newBreaker(time.Minute)

	_ = cb.Execute(context.Background(), func() error { return errBackend })
	_ = cb.Execute(context.Background(), func() error { return errBackend })
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	_ = cb.Execute(context.Background(), func() error { return errBackend })

	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func() error { return errBackend })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func() error { return errBackend })
	}
	time.Sleep(20 * time.Millisecond)

	_ = cb.Execute(context.Background(), func() error { return errBackend })
	assert.Equal(t, StateOpen, cb.State())
}

func TestExecuteRespectsContext(t *testing.T) {
	cb := newBreaker(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func() error {
		t.Fatal("must not run with cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
