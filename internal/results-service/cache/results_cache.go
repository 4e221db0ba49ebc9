package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyResult(lotteryType, drawDate string) string {
	return "result:" + lotteryType + ":" + drawDate
}

func (c *Cache) GetResult(ctx context.Context, lotteryType, drawDate string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyResult(lotteryType, drawDate)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetResult(ctx context.Context, lotteryType, drawDate string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyResult(lotteryType, drawDate), b, ttl).Err()
}
