package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store decides whether a request identified by key may proceed.
type Store interface {
	Allow(key string) bool
}

type window struct {
	start time.Time
	count int
}

// LRUStore counts requests per key in fixed windows. Counters live in an
// expiring LRU, so idle keys disappear after one window and the number of
// tracked keys never exceeds maxKeys.
type LRUStore struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	cache  *expirable.LRU[string, *window]
}

var _ Store = (*LRUStore)(nil)

// NewLRUStore allows limit requests per key in each window.
func NewLRUStore(limit int, windowSize time.Duration, maxKeys int) *LRUStore {
	if limit <= 0 || windowSize <= 0 || maxKeys <= 0 {
		panic("ratelimit: limit, window and maxKeys must be positive")
	}
	return &LRUStore{
		limit:  limit,
		window: windowSize,
		now:    time.Now,
		cache:  expirable.NewLRU[string, *window](maxKeys, nil, windowSize),
	}
}

// Window is the length of one counting window.
func (s *LRUStore) Window() time.Duration {
	return s.window
}

// Allow implements Store.
func (s *LRUStore) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.cache.Get(key)
	if !ok || now.Sub(w.start) >= s.window {
		s.cache.Add(key, &window{start: now, count: 1})
		return true
	}
	if w.count >= s.limit {
		return false
	}
	w.count++
	return true
}
