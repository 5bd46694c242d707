package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"meetingscheduler/internal/domain"
)

const (
	deptKeyPrefix = "dept:"
	deptListKey   = "dept:all"
)

// departmentCache decorates a DepartmentRepository with a Redis read-through
// cache. Departments change rarely and are read on every booking, so a short
// TTL removes most directory queries. Cache failures fall through to the
// underlying repository; they are logged, never surfaced.
type departmentCache struct {
	inner  domain.DepartmentRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewDepartmentCache(inner domain.DepartmentRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) domain.DepartmentRepository {
	return &departmentCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *departmentCache) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	key := deptKeyPrefix + id
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var dept domain.Department
		if err := json.Unmarshal(raw, &dept); err == nil {
			return &dept, nil
		}
		c.logger.Warn("corrupt cache entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", "key", key, "err", err)
	}

	dept, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, dept)
	return dept, nil
}

func (c *departmentCache) List(ctx context.Context) ([]*domain.Department, error) {
	raw, err := c.client.Get(ctx, deptListKey).Bytes()
	if err == nil {
		var depts []*domain.Department
		if err := json.Unmarshal(raw, &depts); err == nil {
			return depts, nil
		}
		c.logger.Warn("corrupt cache entry", "key", deptListKey)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", "key", deptListKey, "err", err)
	}

	depts, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, deptListKey, depts)
	return depts, nil
}

func (c *departmentCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	}
}
