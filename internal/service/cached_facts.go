package service

import (
	"context"

	"github.com/noah-isme/ta-hiring-api/pkg/cache"
)

// CachedCandidateFacts serves ratings and experience counts from the cache when
// possible. Cache failures fall through to the live provider; only the provider
// itself can fail a lookup.
type CachedCandidateFacts struct {
	live  CandidateFacts
	cache *CacheService
}

// NewCachedCandidateFacts wraps live with cache. A nil or disabled cache passes every call through.
func NewCachedCandidateFacts(live CandidateFacts, cache *CacheService) *CachedCandidateFacts {
	return &CachedCandidateFacts{live: live, cache: cache}
}

func ratingsCacheKey(username string) string {
	return cache.Key("facts", "ratings", username)
}

func experienceCacheKey(username string) string {
	return cache.Key("facts", "experience", username)
}

// Ratings implements CandidateFacts.
func (c *CachedCandidateFacts) Ratings(ctx context.Context, username string) ([]int, error) {
	var ratings []int
	if hit, _ := c.cache.Get(ctx, ratingsCacheKey(username), &ratings); hit {
		if ratings == nil {
			ratings = []int{}
		}
		return ratings, nil
	}
	ratings, err := c.live.Ratings(ctx, username)
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, ratingsCacheKey(username), ratings, 0)
	return ratings, nil
}

// ExperienceCount implements CandidateFacts.
func (c *CachedCandidateFacts) ExperienceCount(ctx context.Context, username string) (int, error) {
	var count int
	if hit, _ := c.cache.Get(ctx, experienceCacheKey(username), &count); hit {
		return count, nil
	}
	count, err := c.live.ExperienceCount(ctx, username)
	if err != nil {
		return 0, err
	}
	_ = c.cache.Set(ctx, experienceCacheKey(username), count, 0)
	return count, nil
}

// Forget drops cached facts for username.
func (c *CachedCandidateFacts) Forget(ctx context.Context, username string) error {
	return c.cache.Invalidate(ctx, cache.Key("facts", "*", username))
}
