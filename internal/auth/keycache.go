package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/OpenQueue/API/internal/cache"
	"github.com/OpenQueue/API/internal/domain/types"
)

const keyCachePrefix = "api-key-"

// CachedResolution is what one successful API-key lookup produces: the
// key's league handle, its owning user and the aggregated visibility map.
// It is stored verbatim for the TTL; a revoked key keeps resolving from
// cache until the entry expires, which is the accepted staleness window.
type CachedResolution struct {
	League *types.LeagueHandle `json:"league"`
	UserID string              `json:"user_id"`
	Scopes types.ScopeMap      `json:"scopes"`
}

// KeyCache is the cache-aside layer over the credential store, keyed by
// the raw API key string.
type KeyCache struct {
	client cache.Client
	ttl    time.Duration
}

// NewKeyCache builds a key cache with the given TTL (180s when zero).
func NewKeyCache(client cache.Client, ttl time.Duration) *KeyCache {
	if ttl == 0 {
		ttl = 180 * time.Second
	}
	return &KeyCache{client: client, ttl: ttl}
}

// Get returns the cached resolution for key, or (nil, nil) on a miss.
// Backend failures propagate; an undecodable entry counts as a miss.
func (k *KeyCache) Get(ctx context.Context, key string) (*CachedResolution, error) {
	raw, err := k.client.Get(ctx, keyCachePrefix+key)
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var res CachedResolution
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, nil
	}
	return &res, nil
}

// Set stores res under key for the TTL.
func (k *KeyCache) Set(ctx context.Context, key string, res *CachedResolution) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return k.client.Set(ctx, keyCachePrefix+key, string(raw), k.ttl)
}

// Exists reports whether a resolution is cached for key.
func (k *KeyCache) Exists(ctx context.Context, key string) (bool, error) {
	return k.client.Exists(ctx, keyCachePrefix+key)
}

// Invalidate drops the cached resolution for key. Nothing calls it on
// the hot path; it exists for the credential-revocation boundary.
func (k *KeyCache) Invalidate(ctx context.Context, key string) error {
	return k.client.Delete(ctx, keyCachePrefix+key)
}
