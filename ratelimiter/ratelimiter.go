package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	DefaultBucketSize = 10
	DefaultRefillRate = time.Second
)

// ErrStopped is returned by Wait after the bucket has been stopped.
var ErrStopped = errors.New("rate limiter stopped")

// TokenBucket is a refilling token bucket. A full bucket is allocated up
// front so bursts up to the bucket size pass without waiting.
type TokenBucket struct {
	bucketSize int
	refillRate time.Duration
	tokens     chan struct{}
	ticker     *time.Ticker
	stopCh     chan struct{}
	mu         sync.RWMutex
	stopped    bool
}

func NewTokenBucket(bucketSize int, refillRate time.Duration) *TokenBucket {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	if refillRate <= 0 {
		refillRate = DefaultRefillRate
	}

	tb := &TokenBucket{
		bucketSize: bucketSize,
		refillRate: refillRate,
		tokens:     make(chan struct{}, bucketSize),
		ticker:     time.NewTicker(refillRate),
		stopCh:     make(chan struct{}),
	}

	for i := 0; i < bucketSize; i++ {
		tb.tokens <- struct{}{}
	}

	go tb.refill()

	return tb
}

// NewPerMinute builds a bucket that admits n operations per minute.
func NewPerMinute(n int) *TokenBucket {
	if n <= 0 {
		n = DefaultBucketSize
	}
	return NewTokenBucket(n, time.Minute/time.Duration(n))
}

func (tb *TokenBucket) refill() {
	for {
		select {
		case <-tb.ticker.C:
			select {
			case tb.tokens <- struct{}{}:
			default:
			}
		case <-tb.stopCh:
			return
		}
	}
}

// Allow reports whether a token was available, consuming it if so.
func (tb *TokenBucket) Allow() bool {
	tb.mu.RLock()
	if tb.stopped {
		tb.mu.RUnlock()
		return false
	}
	tb.mu.RUnlock()

	select {
	case <-tb.tokens:
		return true
	default:
		return false
	}
}

// Wait blocks until a token is available, the context is done, or the
// bucket is stopped.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	tb.mu.RLock()
	if tb.stopped {
		tb.mu.RUnlock()
		return ErrStopped
	}
	tb.mu.RUnlock()

	select {
	case <-tb.tokens:
		return nil
	case <-tb.stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (tb *TokenBucket) Stop() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.stopped {
		return
	}

	tb.stopped = true
	tb.ticker.Stop()
	close(tb.stopCh)
}

func (tb *TokenBucket) AvailableTokens() int {
	return len(tb.tokens)
}

func (tb *TokenBucket) BucketSize() int {
	return tb.bucketSize
}

func (tb *TokenBucket) RefillRate() time.Duration {
	return tb.refillRate
}
