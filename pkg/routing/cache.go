package routing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"

	"github.com/transitlive/transitlive/pkg/transit"
)

// PathCache keeps stitched paths in redis so reselecting a trip doesn't hit
// the routing service again. Stop lists barely change within a day, so a
// generous expiry is fine.
type PathCache struct {
	cache *cache.Cache[string]
}

func NewPathCache(redisClient *redis.Client, expiration time.Duration) *PathCache {
	redisStore := redisstore.NewRedis(redisClient, store.WithExpiration(expiration))

	return &PathCache{
		cache: cache.New[string](redisStore),
	}
}

func (p *PathCache) Get(ctx context.Context, tripID string) (*transit.RoutedPath, bool) {
	if p == nil {
		return nil, false
	}

	cached, err := p.cache.Get(ctx, cacheKey(tripID))
	if err != nil {
		return nil, false
	}

	var path transit.RoutedPath
	if err := json.Unmarshal([]byte(cached), &path); err != nil {
		return nil, false
	}

	return &path, true
}

func (p *PathCache) Set(ctx context.Context, path *transit.RoutedPath) {
	if p == nil {
		return
	}

	encoded, err := json.Marshal(path)
	if err != nil {
		return
	}

	// best effort - a cache miss next time is the worst outcome
	_ = p.cache.Set(ctx, cacheKey(path.TripID), string(encoded))
}

func cacheKey(tripID string) string {
	return "transitlive/routedpath/" + tripID
}
