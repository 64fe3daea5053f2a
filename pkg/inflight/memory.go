package inflight

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryGuard is a single-process Guard backed by go-cache.
type MemoryGuard struct {
	// mu makes the release compare-and-delete atomic with respect to Add.
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		cache: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

func (g *MemoryGuard) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	g.mu.Lock()
	// Add fails when a non-expired item already exists.
	err := g.cache.Add(key, token, g.ttl)
	g.mu.Unlock()
	if err != nil {
		return nil, ErrHeld
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			// An expired lease may have been re-acquired by someone else.
			if current, found := g.cache.Get(key); found && current == token {
				g.cache.Delete(key)
			}
		})
	}, nil
}
