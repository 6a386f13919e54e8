// Package cache holds completed quiz responses in memory so repeated
// prompts skip the expensive generate-and-validate path. Entries are
// best-effort: nothing survives a process restart.
package cache

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"

	"songquiz/internal/quiz"
)

// DefaultTTL is how long a cached quiz stays valid.
const DefaultTTL = 24 * time.Hour

type entry struct {
	quiz     *quiz.Quiz
	storedAt time.Time
}

// Cache is a TTL-bounded in-memory quiz cache, safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Cache. A zero ttl uses DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key derives the cache key for a quiz request.
func Key(prompt string, count int, d quiz.Difficulty) string {
	return fmt.Sprintf("%x", md5.Sum(fmt.Appendf(nil, "%s:%d:%s", prompt, count, d)))
}

// Get returns the cached quiz for key, or nil if absent or expired.
func (c *Cache) Get(key string) *quiz.Quiz {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil
	}
	return e.quiz
}

// Set stores a quiz under key.
func (c *Cache) Set(key string, q *quiz.Quiz) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{quiz: q, storedAt: c.now()}
}
