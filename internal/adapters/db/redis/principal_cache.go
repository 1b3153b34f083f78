package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
)

// PrincipalCache is the redis-backed implementation of repo.PrincipalCache.
// Entries live under "user:<id>" as JSON and expire after ttl. Connectivity
// problems are logged and answered as a miss so the read path stays safe to
// run as if the cache were empty.
type PrincipalCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewPrincipalCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *PrincipalCache {
	return &PrincipalCache{client: client, ttl: ttl, log: log}
}

func key(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func (c *PrincipalCache) Get(ctx context.Context, userID uint) (model.Principal, bool) {
	raw, err := c.client.Get(ctx, key(userID)).Result()
	switch {
	case err == redis.Nil:
		return model.Principal{}, false
	case err != nil:
		c.log.Warn("principal cache get failed, treating as miss",
			zap.Uint("user_id", userID), zap.Error(err))
		return model.Principal{}, false
	}

	var p model.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.log.Warn("principal cache entry corrupt, treating as miss",
			zap.Uint("user_id", userID), zap.Error(err))
		return model.Principal{}, false
	}
	return p, true
}

func (c *PrincipalCache) Put(ctx context.Context, p model.Principal) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("principal cache marshal failed", zap.Uint("user_id", p.ID), zap.Error(err))
		return
	}
	if err := c.client.SetEx(ctx, key(p.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("principal cache put failed", zap.Uint("user_id", p.ID), zap.Error(err))
	}
}

func (c *PrincipalCache) Invalidate(ctx context.Context, userID uint) {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		c.log.Warn("principal cache invalidate failed",
			zap.Uint("user_id", userID), zap.Error(err))
	}
}
