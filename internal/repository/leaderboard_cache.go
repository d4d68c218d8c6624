package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "logicfy:leaderboard:xp"

// LeaderboardCache 经验排行榜（Redis 有序集合），score 为用户总经验
type LeaderboardCache struct {
	rdb *redis.Client
}

func NewLeaderboardCache(rdb *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb}
}

// Enabled 未配置 Redis 时调用方回退到数据库
func (c *LeaderboardCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// SetTotal 写入用户的绝对总经验，重复写入结果一致
func (c *LeaderboardCache) SetTotal(ctx context.Context, userID uint, total int) error {
	return c.rdb.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(total),
		Member: memberKey(userID),
	}).Err()
}

// LeaderboardScore 排行榜中的一项
type LeaderboardScore struct {
	UserID uint
	XP     int
}

func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]LeaderboardScore, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardScore, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := parseMember(member)
		if err != nil {
			continue
		}
		out = append(out, LeaderboardScore{UserID: id, XP: int(z.Score)})
	}
	return out, nil
}

func (c *LeaderboardCache) Remove(ctx context.Context, userID uint) error {
	return c.rdb.ZRem(ctx, leaderboardKey, memberKey(userID)).Err()
}

func memberKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func parseMember(member string) (uint, error) {
	id, err := strconv.ParseUint(member, 10, 64)
	return uint(id), err
}
