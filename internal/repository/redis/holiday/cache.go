// Package holiday caches active holiday rules in redis in front of a
// persistent rule store.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/service/holiday"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "attendance:holiday:"

// Cache keeps one hash per tenant; each field holds the active rule set of a
// branch scope. Any write through the cache drops the tenant's hash. Redis
// failures fall through to the next store.
type Cache struct {
	next holiday.Store
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *zap.SugaredLogger
}

func NewCache(next holiday.Store, rdb redis.Cmdable, ttl time.Duration, log *zap.SugaredLogger) *Cache {
	return &Cache{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *Cache) ActiveRules(ctx context.Context, tenantID int, branchID *int) ([]entity.HolidayRule, error) {
	key, field := tenantKey(tenantID), branchField(branchID)

	raw, err := c.rdb.HGet(ctx, key, field).Bytes()
	switch {
	case err == nil:
		var rules []entity.HolidayRule
		if err := json.Unmarshal(raw, &rules); err == nil {
			return rules, nil
		}
		c.log.Warnw("holiday cache: dropping undecodable entry", "key", key, "field", field)
	case !errors.Is(err, redis.Nil):
		c.log.Warnw("holiday cache: read failed", "key", key, "error", err)
	}

	rules, err := c.next.ActiveRules(ctx, tenantID, branchID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rules); err == nil {
		pipe := c.rdb.TxPipeline()
		pipe.HSet(ctx, key, field, data)
		pipe.Expire(ctx, key, c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			c.log.Warnw("holiday cache: write failed", "key", key, "error", err)
		}
	}

	return rules, nil
}

func (c *Cache) List(ctx context.Context, tenantID int) ([]entity.HolidayRule, error) {
	return c.next.List(ctx, tenantID)
}

func (c *Cache) GetByID(ctx context.Context, tenantID, id int) (entity.HolidayRule, error) {
	return c.next.GetByID(ctx, tenantID, id)
}

func (c *Cache) Create(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error) {
	out, err := c.next.Create(ctx, rule)
	if err != nil {
		return out, err
	}
	c.invalidate(ctx, rule.TenantID)
	return out, nil
}

func (c *Cache) Update(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error) {
	out, err := c.next.Update(ctx, rule)
	if err != nil {
		return out, err
	}
	c.invalidate(ctx, rule.TenantID)
	return out, nil
}

func (c *Cache) Delete(ctx context.Context, tenantID, id int) error {
	if err := c.next.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	c.invalidate(ctx, tenantID)
	return nil
}

func (c *Cache) invalidate(ctx context.Context, tenantID int) {
	if err := c.rdb.Del(ctx, tenantKey(tenantID)).Err(); err != nil {
		c.log.Warnw("holiday cache: invalidation failed", "tenant_id", tenantID, "error", err)
	}
}

func tenantKey(tenantID int) string {
	return fmt.Sprintf("%s%d", keyPrefix, tenantID)
}

func branchField(branchID *int) string {
	if branchID == nil {
		return "*"
	}
	return strconv.Itoa(*branchID)
}
