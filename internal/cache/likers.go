package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	likersKeyPrefix  = "post:%s:likers"
	versionKeyPrefix = "post:%s:likers:version"
)

// DefaultLikersTTL bounds how stale a cached likers list can get
const DefaultLikersTTL = 2 * time.Minute

// versionTTL keeps invalidation counters far longer than any database read
const versionTTL = 24 * time.Hour

// LikersKey is the cache key of a post's likers list
func LikersKey(postID string) string {
	return fmt.Sprintf(likersKeyPrefix, postID)
}

// LikersVersionKey holds the invalidation counter of a post's likers
func LikersVersionKey(postID string) string {
	return fmt.Sprintf(versionKeyPrefix, postID)
}

// LikersCache caches the "who liked this" list per post. A nil client turns
// every call into a miss/no-op.
type LikersCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLikersCache(client *redis.Client, ttl time.Duration) *LikersCache {
	if ttl <= 0 {
		ttl = DefaultLikersTTL
	}
	return &LikersCache{client: client, ttl: ttl}
}

// Get returns the cached likers and whether the lookup hit
func (c *LikersCache) Get(ctx context.Context, postID string) ([]models.Liker, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, LikersKey(postID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var likers []models.Liker
	if err := json.Unmarshal(raw, &likers); err != nil {
		// drop the corrupt entry so the next read repopulates it
		c.client.Del(ctx, LikersKey(postID))
		return nil, false, nil
	}
	return likers, true, nil
}

// Version returns the invalidation counter of a post. Read it before loading
// the likers from the database and hand it to Set.
func (c *LikersCache) Version(ctx context.Context, postID string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	v, err := c.client.Get(ctx, LikersVersionKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores likers unless the post was invalidated after version was read.
// It reports whether the list was stored.
func (c *LikersCache) Set(ctx context.Context, postID string, version int64, likers []models.Liker) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := json.Marshal(likers)
	if err != nil {
		return false, err
	}

	stored := false
	vkey := LikersVersionKey(postID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if errors.Is(err, redis.Nil) {
			current, err = 0, nil
		}
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, LikersKey(postID), raw, c.ttl)
			return nil
		})
		stored = err == nil
		return err
	}, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		// an Invalidate raced the write
		return false, nil
	}
	return stored, err
}

// Invalidate drops the cached list and bumps the version so in-flight reads
// do not store what they loaded.
func (c *LikersCache) Invalidate(ctx context.Context, postID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	vkey := LikersVersionKey(postID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, vkey)
	pipe.Expire(ctx, vkey, versionTTL)
	pipe.Del(ctx, LikersKey(postID))
	_, err := pipe.Exec(ctx)
	return err
}
