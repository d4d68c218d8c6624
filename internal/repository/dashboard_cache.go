package repository

import (
	"context"
	"encoding/json"
	"errors"
	"logicfy_backend/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

const adminDashboardKey = "logicfy:dashboard:admin"

// DashboardCache 管理端仪表盘快照缓存
type DashboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDashboardCache(rdb *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{rdb: rdb, ttl: ttl}
}

func (c *DashboardCache) Enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Get 未命中时返回 (nil, nil)
func (c *DashboardCache) Get(ctx context.Context) (*model.AdminDashboard, error) {
	raw, err := c.rdb.Get(ctx, adminDashboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d model.AdminDashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DashboardCache) Set(ctx context.Context, d *model.AdminDashboard) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, adminDashboardKey, raw, c.ttl).Err()
}

func (c *DashboardCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, adminDashboardKey).Err()
}
