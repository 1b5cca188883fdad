// Package flash stores one-shot messages shown on the next page view after
// a redirect. Messages are keyed by an opaque per-browser id kept in a
// cookie.
package flash

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "newsletter_flash"
	keyPrefix  = "newsletter:flash:"
	defaultTTL = 10 * time.Minute
)

// Store keeps pending messages per id. Pop returns and removes them.
type Store interface {
	Push(ctx context.Context, id, message string) error
	Pop(ctx context.Context, id string) ([]string, error)
}

// RedisStore keeps messages in a redis list that expires after ttl.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Push(ctx context.Context, id, message string) error {
	key := keyPrefix + id
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, message)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("flash push: %w", err)
	}
	return nil
}

func (s *RedisStore) Pop(ctx context.Context, id string) ([]string, error) {
	key := keyPrefix + id
	pipe := s.rdb.TxPipeline()
	list := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("flash pop: %w", err)
	}
	return list.Val(), nil
}

// MemoryStore is a process-local Store for single-instance and test setups.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

type memoryEntry struct {
	messages []string
	expires  time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{items: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Push(_ context.Context, id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	e := s.items[id]
	e.messages = append(e.messages, message)
	e.expires = now.Add(s.ttl)
	s.items[id] = e
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	delete(s.items, id)
	if !ok || s.now().After(e.expires) {
		return nil, nil
	}
	return e.messages, nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for id, e := range s.items {
		if now.After(e.expires) {
			delete(s.items, id)
		}
	}
}

// Add queues message for the browser behind c, issuing the id cookie if
// needed.
func Add(c *gin.Context, store Store, message string) error {
	id := c.GetString(CookieName)
	if id == "" {
		if v, err := c.Cookie(CookieName); err == nil {
			id = v
		}
	}
	if id == "" {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, 0, "/", "", c.Request.TLS != nil, true)
	}
	c.Set(CookieName, id)
	return store.Push(c.Request.Context(), id, message)
}

// Consume returns and clears the pending messages for the browser behind c.
func Consume(c *gin.Context, store Store) []string {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return nil
	}
	messages, err := store.Pop(c.Request.Context(), id)
	if err != nil {
		return nil
	}
	return messages
}
