package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Year  int   `json:"year"`
	Total int64 `json:"total"`
}

// exercise runs the behavior every Cache must share.
func exercise(t *testing.T, c Cache) {
	ctx := context.Background()

	var got report
	hit, err := c.Get(ctx, "awards:stats:2024", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "awards:stats:2024", report{Year: 2024, Total: 9000}, time.Minute))
	require.NoError(t, c.Set(ctx, "awards:stats:all", report{Total: 1}, time.Minute))
	require.NoError(t, c.Set(ctx, "scores:stats", report{Total: 2}, time.Minute))

	hit, err = c.Get(ctx, "awards:stats:2024", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, report{Year: 2024, Total: 9000}, got)

	require.NoError(t, c.InvalidatePrefix(ctx, "awards:"))
	hit, _ = c.Get(ctx, "awards:stats:all", &got)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "scores:stats", &got)
	assert.True(t, hit)

	require.NoError(t, c.Delete(ctx, "scores:stats", "missing"))
	hit, _ = c.Get(ctx, "scores:stats", &got)
	assert.False(t, hit)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemory_Expiry(t *testing.T) {
	// GIVEN: A cache with a controllable clock
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.Now = func() time.Time { return now }
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "forever", 2, 0))

	// WHEN: The ttl passes
	now = now.Add(time.Minute)

	// THEN: Only the entry without ttl remains
	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "forever", &v)
	assert.True(t, hit)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

// TestRedis needs a live server: HR_TEST_REDIS_ADDR=localhost:6379.
func TestRedis(t *testing.T) {
	addr := os.Getenv("HR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HR_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedis(ctx, RedisOptions{Addr: addr, Namespace: "hr-test:" + time.Now().Format("150405.000") + ":"})
	require.NoError(t, err)
	defer c.Close()

	exercise(t, c)
}
