package nonce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "oauth-state-"

// RedisClient is the subset of redis.Cmdable the ledger needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

var _ Ledger = &RedisLedger{}

// RedisLedger keeps outstanding nonces in Redis with a TTL and consumes
// them atomically with GETDEL.
type RedisLedger struct {
	client RedisClient
}

// NewRedisLedger wraps a redis client (any redis.Cmdable works).
func NewRedisLedger(client RedisClient) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Save(ctx context.Context, nonce string, ttl time.Duration) error {
	if err := l.client.Set(ctx, keyPrefix+nonce, "1", ttl).Err(); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (l *RedisLedger) Consume(ctx context.Context, nonce string) (bool, error) {
	err := l.client.GetDel(ctx, keyPrefix+nonce).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load state: %w", err)
	}
	return true, nil
}

var _ Ledger = &MemoryLedger{}

// MemoryLedger is an in-process Ledger for single-instance deployments.
type MemoryLedger struct {
	mu      sync.Mutex
	pending map[string]time.Time
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{pending: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryLedger) Save(_ context.Context, nonce string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for n, exp := range l.pending {
		if now.After(exp) {
			delete(l.pending, n)
		}
	}
	l.pending[nonce] = now.Add(ttl)
	return nil
}

func (l *MemoryLedger) Consume(_ context.Context, nonce string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.pending[nonce]
	delete(l.pending, nonce)
	return ok && !l.now().After(exp), nil
}
