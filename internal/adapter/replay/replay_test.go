package replay

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
	"github.com/dayanaadylkhanova/powgate/internal/service"
)

var (
	_ service.ReplayStore = (*Badger)(nil)
	_ service.ReplayStore = (*LRU)(nil)
)

type store interface {
	service.ReplayStore
	Close() error
}

func stores(t *testing.T) map[string]store {
	t.Helper()

	b, err := NewBadger("")
	require.NoError(t, err)
	l, err := NewLRU(128)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = b.Close()
		_ = l.Close()
	})
	return map[string]store{"badger": b, "lru": l}
}

func TestMarkSpent_SecondUseRejected(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := []byte("spent:2:8:1")

			require.NoError(t, s.MarkSpent(ctx, key, time.Minute))
			assert.ErrorIs(t, s.MarkSpent(ctx, key, time.Minute), entity.ErrSolutionSpent)
			assert.NoError(t, s.MarkSpent(ctx, []byte("spent:2:13:1"), time.Minute))
		})
	}
}

func TestMarkSpent_CancelledContext(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			assert.ErrorIs(t, s.MarkSpent(ctx, []byte("k"), time.Minute), context.Canceled)
		})
	}
}

func TestMarkSpent_ConcurrentSameKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			const N = 32
			var (
				accepted atomic.Int32
				wg       sync.WaitGroup
			)
			wg.Add(N)
			for i := 0; i < N; i++ {
				go func() {
					defer wg.Done()
					err := s.MarkSpent(context.Background(), []byte("spent:7:39:1"), time.Minute)
					if err == nil {
						accepted.Add(1)
						return
					}
					assert.ErrorIs(t, err, entity.ErrSolutionSpent)
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), accepted.Load())
		})
	}
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	key := []byte("spent:2:684:2")

	b, err := NewBadger(dir)
	require.NoError(t, err)
	require.NoError(t, b.MarkSpent(context.Background(), key, time.Hour))
	require.NoError(t, b.Close())

	b, err = NewBadger(dir)
	require.NoError(t, err)
	defer b.Close()
	assert.ErrorIs(t, b.MarkSpent(context.Background(), key, time.Hour), entity.ErrSolutionSpent)
}

func TestLRU_ExpiredEntryCanBeReused(t *testing.T) {
	l, err := NewLRU(4)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	key := []byte("spent:2:8:1")

	require.NoError(t, l.MarkSpent(context.Background(), key, time.Minute))
	now = now.Add(30 * time.Second)
	assert.ErrorIs(t, l.MarkSpent(context.Background(), key, time.Minute), entity.ErrSolutionSpent)

	now = now.Add(31 * time.Second)
	assert.NoError(t, l.MarkSpent(context.Background(), key, time.Minute))
}

func TestLRU_EvictsOldest(t *testing.T) {
	l, err := NewLRU(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.MarkSpent(ctx, []byte("a"), time.Minute))
	require.NoError(t, l.MarkSpent(ctx, []byte("b"), time.Minute))
	require.NoError(t, l.MarkSpent(ctx, []byte("c"), time.Minute))
	assert.Equal(t, 2, l.Len())
	assert.NoError(t, l.MarkSpent(ctx, []byte("a"), time.Minute), "evicted key is forgotten")
}

func TestNewLRU_InvalidSize(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)
}
