package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a refilling token bucket guarding one user+action pair.
type TokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	lastUsed   time.Time
	mutex      sync.Mutex
}

// Limit describes how a single action refills.
type Limit struct {
	Burst       int
	RefillRate  int
	RefillEvery time.Duration
}

// RateLimiter manages per-user, per-action token buckets.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	limits  map[string]Limit
	mutex   sync.RWMutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		limits: map[string]Limit{
			"send_message":         {Burst: 15, RefillRate: 1, RefillEvery: 2 * time.Second},
			"resolve_conversation": {Burst: 5, RefillRate: 1, RefillEvery: 10 * time.Second},
			"create_offer":         {Burst: 5, RefillRate: 1, RefillEvery: 30 * time.Second},
			"create_listing":       {Burst: 5, RefillRate: 1, RefillEvery: 30 * time.Second},
		},
	}
}

func newTokenBucket(limit Limit) *TokenBucket {
	now := time.Now()
	return &TokenBucket{
		tokens:     limit.Burst,
		maxTokens:  limit.Burst,
		refillRate: limit.RefillRate,
		refillTime: limit.RefillEvery,
		lastRefill: now,
		lastUsed:   now,
	}
}

// Allow consumes a token when one is available, otherwise reports how long
// the caller must wait.
func (tb *TokenBucket) Allow() (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	tb.lastUsed = now

	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int(elapsed/tb.refillTime) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}

	nextRefill := tb.lastRefill.Add(tb.refillTime)
	return false, nextRefill.Sub(now)
}

// Allow checks whether the user may perform the action now. Actions without a
// configured limit are always allowed.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	limit, limited := rl.limits[action]
	if !limited {
		return true, 0
	}

	key := userID + ":" + action

	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		bucket, exists = rl.buckets[key]
		if !exists {
			bucket = newTokenBucket(limit)
			rl.buckets[key] = bucket
		}
		rl.mutex.Unlock()
	}

	return bucket.Allow()
}

// StartCleanupRoutine drops buckets idle for over an hour.
func (rl *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().Add(-time.Hour)

			rl.mutex.Lock()
			for key, bucket := range rl.buckets {
				bucket.mutex.Lock()
				stale := bucket.lastUsed.Before(cutoff)
				bucket.mutex.Unlock()
				if stale {
					delete(rl.buckets, key)
				}
			}
			rl.mutex.Unlock()
		}
	}()
}
