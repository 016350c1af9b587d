package holiday

import (
	"context"
	"testing"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/repository/inmem"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKeys(t *testing.T) {
	t.Parallel()

	branch := 12
	assert.Equal(t, "attendance:holiday:3", tenantKey(3))
	assert.Equal(t, "*", branchField(nil))
	assert.Equal(t, "12", branchField(&branch))
}

// An unreachable redis must never fail a lookup or a write.
func TestCacheFallsThroughWhenRedisIsDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	cache := NewCache(inmem.NewRules(), rdb, time.Minute, zap.NewNop().Sugar())

	start := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	created, err := cache.Create(ctx, entity.HolidayRule{
		TenantID: 1, Name: "Christmas", Type: entity.HolidayGovernment, StartDate: &start, IsRecurring: true, IsActive: true,
	})
	require.NoError(t, err)

	rules, err := cache.ActiveRules(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, created.ID, rules[0].ID)

	require.NoError(t, cache.Delete(ctx, 1, created.ID))

	rules, err = cache.ActiveRules(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
}
