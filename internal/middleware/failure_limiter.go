package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultFailuresPerMin = 5
	failureWindow         = time.Minute
	failurePrefix         = "rl:auth:"
)

// FailureLimiter counts failed authentication attempts per subject in
// Redis. Without Redis, or on cache errors, it fails open.
type FailureLimiter struct {
	cache     *redis.Client
	maxPerMin int
}

// NewFailureLimiter builds a limiter allowing maxPerMin failures per minute.
func NewFailureLimiter(cache *redis.Client, maxPerMin int) *FailureLimiter {
	if maxPerMin <= 0 {
		maxPerMin = defaultFailuresPerMin
	}
	return &FailureLimiter{cache: cache, maxPerMin: maxPerMin}
}

// Blocked reports whether subject exhausted its failure budget.
func (l *FailureLimiter) Blocked(ctx context.Context, subject string) bool {
	if l == nil || l.cache == nil {
		return false
	}
	cnt, err := l.cache.Get(ctx, failurePrefix+subject).Int64()
	if err != nil {
		return false
	}
	return cnt >= int64(l.maxPerMin)
}

// Record counts one failed attempt for subject.
func (l *FailureLimiter) Record(ctx context.Context, subject string) {
	if l == nil || l.cache == nil {
		return
	}
	key := failurePrefix + subject
	cnt, err := l.cache.Incr(ctx, key).Result()
	if err == nil && cnt == 1 {
		l.cache.Expire(ctx, key, failureWindow)
	}
}
