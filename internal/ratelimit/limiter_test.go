package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"symscan/internal/metrics"
)

func TestLimiter_DisabledNeverBlocks(t *testing.T) {
	metrics.Init()

	l := New(Config{})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_Throttles(t *testing.T) {
	metrics.Init()

	// 10 per second means one token every 100ms after the initial burst.
	l := New(Config{PerSecond: 10, Burst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestLimiter_CanceledContext(t *testing.T) {
	metrics.Init()

	l := New(Config{PerSecond: 0.001, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx))

	cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
