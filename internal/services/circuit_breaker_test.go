package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeClock is advanced by tests instead of sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	cb := NewCircuitBreaker("reasoner", CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	}, quietLogger())
	cb.now = clock.Now
	return cb
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("defaults", CircuitBreakerConfig{}, quietLogger())
	assert.Equal(t, 5, cb.config.FailureThreshold)
	assert.Equal(t, 1, cb.config.SuccessThreshold)
	assert.Equal(t, 30*time.Second, cb.config.OpenTimeout)
	assert.Equal(t, Closed, cb.GetState())
	assert.Equal(t, "defaults", cb.Name())
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		err := cb.Execute(context.Background(), func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, Open, cb.GetState())

	called := false
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, int64(1), cb.GetStats().RejectedRequests)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(newFakeClock())
	ctx := context.Background()

	_ = cb.Execute(ctx, func(ctx context.Context) error { return errors.New("once") })
	require.NoError(t, cb.Execute(ctx, func(ctx context.Context) error { return nil }))
	_ = cb.Execute(ctx, func(ctx context.Context) error { return errors.New("twice") })

	assert.Equal(t, Closed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock)
	ctx := context.Background()
	fail := func(ctx context.Context) error { return errors.New("down") }

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	require.Equal(t, Open, cb.GetState())

	clock.Advance(2 * time.Minute)
	require.NoError(t, cb.Execute(ctx, func(ctx context.Context) error { return nil }))
	assert.Equal(t, Closed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock)
	ctx := context.Background()
	fail := func(ctx context.Context) error { return errors.New("down") }

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	clock.Advance(2 * time.Minute)

	_ = cb.Execute(ctx, fail)
	assert.Equal(t, Open, cb.GetState())
	assert.ErrorIs(t, cb.Execute(ctx, fail), ErrCircuitOpen)
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := newTestBreaker(newFakeClock())
	ctx := context.Background()
	fail := func(ctx context.Context) error { return errors.New("down") }
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)

	cb.Reset()
	assert.Equal(t, Closed, cb.GetState())
	assert.Equal(t, "closed", cb.GetState().String())
}

func TestCircuitBreaker_ConcurrentCalls(t *testing.T) {
	cb := NewCircuitBreaker("concurrent", CircuitBreakerConfig{FailureThreshold: 1000}, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cb.Execute(context.Background(), func(ctx context.Context) error {
				if i%2 == 0 {
					return errors.New("odd one out")
				}
				return nil
			})
		}(i)
	}
	wg.Wait()

	stats := cb.GetStats()
	assert.Equal(t, int64(50), stats.TotalRequests)
	assert.Equal(t, int64(25), stats.FailedRequests)
	assert.Equal(t, int64(25), stats.SuccessfulRequests)
}
