package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
)

// LRU keeps spent solutions in a bounded in-process cache. Once the cache is
// full the oldest entries are evicted even if unexpired, so size must cover
// the solutions accepted within one challenge TTL.
type LRU struct {
	mu    sync.Mutex
	cache *lru.Cache
	now   func() time.Time
}

func NewLRU(size int) (*LRU, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("new lru: %w", err)
	}
	return &LRU{cache: c, now: time.Now}, nil
}

func (l *LRU) MarkSpent(ctx context.Context, key []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := string(key)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.cache.Get(k); ok {
		if now.Before(v.(time.Time)) {
			return entity.ErrSolutionSpent
		}
	}
	l.cache.Add(k, now.Add(ttl))
	return nil
}

func (l *LRU) Len() int {
	return l.cache.Len()
}

func (l *LRU) Close() error {
	l.cache.Purge()
	return nil
}
