package identity

import (
	"context"
	"encoding/json"
	"time"
	"upscoverflow/internal/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SharedCache is a cache shared between server instances.
type SharedCache interface {
	Get(ctx context.Context, userID string) (Profile, bool, error)
	Set(ctx context.Context, p Profile, ttl time.Duration) error
}

// CachedDirectory puts an in-process LRU, and optionally a shared cache, in front
// of another Directory. Failed lookups are never cached.
type CachedDirectory struct {
	next   Directory
	local  *utils.Cache[Profile]
	shared SharedCache
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedDirectory(next Directory, size int, ttl time.Duration, shared SharedCache, log *zap.Logger) (*CachedDirectory, error) {
	local, err := utils.NewCache[Profile](size)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedDirectory{next: next, local: local, shared: shared, ttl: ttl, log: log}, nil
}

func (d *CachedDirectory) Profile(ctx context.Context, userID string) (Profile, error) {
	if p, ok := d.local.Get(userID); ok {
		return p, nil
	}

	if d.shared != nil {
		p, ok, err := d.shared.Get(ctx, userID)
		if err != nil {
			d.log.Warn("shared profile cache read failed", zap.String("user_id", userID), zap.Error(err))
		} else if ok {
			d.local.Set(userID, p, d.ttl)
			return p, nil
		}
	}

	p, err := d.next.Profile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	d.local.Set(userID, p, d.ttl)
	if d.shared != nil {
		if err := d.shared.Set(ctx, p, d.ttl); err != nil {
			d.log.Warn("shared profile cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return p, nil
}

// RedisCache stores profiles as JSON under "profile:{id}".
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func profileKey(userID string) string {
	return "profile:" + userID
}

func (c *RedisCache) Get(ctx context.Context, userID string) (Profile, bool, error) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err == redis.Nil {
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, err
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, p Profile, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, profileKey(p.ID), data, ttl).Err()
}
