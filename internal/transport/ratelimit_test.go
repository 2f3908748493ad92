package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60, 2)
	rl.now = func() time.Time { return now }
	require.Equal(t, time.Minute, rl.idleTTL)

	for i := 0; i < 2; i++ {
		require.True(t, rl.GetLimiter("10.0.0.1").Allow())
	}
	rl.GetLimiter("10.0.0.2")
	assert.Len(t, rl.ips, 2)

	now = now.Add(30 * time.Second)
	rl.GetLimiter("10.0.0.2")

	now = now.Add(40 * time.Second)
	rl.GetLimiter("10.0.0.3")

	assert.NotContains(t, rl.ips, "10.0.0.1")
	assert.Contains(t, rl.ips, "10.0.0.2")
	assert.Contains(t, rl.ips, "10.0.0.3")
}

func TestRateLimiter_KeepsActiveClientLimited(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }
	require.Equal(t, 2*time.Minute, rl.idleTTL)

	limiter := rl.GetLimiter("10.0.0.1")
	require.True(t, limiter.AllowN(now, 2))

	now = now.Add(90 * time.Second)
	rl.GetLimiter("10.0.0.9")

	assert.Same(t, limiter, rl.GetLimiter("10.0.0.1"))
	assert.Len(t, rl.ips, 2)
}
