package puzzle

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
)

// checkEvery is how many nonces a worker hashes between context checks.
const checkEvery = 1024

var errFound = errors.New("puzzle: solution found")

// MineOptions tunes MineParallel.
type MineOptions struct {
	// Workers is the number of shards searched concurrently. Zero means
	// runtime.NumCPU().
	Workers int
	// Hashrate, when set, is marked with the number of inputs hashed.
	Hashrate metrics.Meter
}

// MineParallel searches [from, to) split into contiguous shards, one goroutine
// per shard. The first worker to find a solution cancels the rest.
//
// When several workers win before they observe the cancellation the lowest
// nonce is returned, so the result may differ from MineRange on the same
// range. Any returned Input verifies. Exhaustion is (Input{}, false, nil); a
// cancelled ctx yields ctx's error.
func MineParallel(ctx context.Context, ts uint64, difficulty uint16, from, to uint64, opts MineOptions) (Input, bool, error) {
	if difficulty < 1 {
		return Input{}, false, ErrZeroDifficulty
	}
	if err := ctx.Err(); err != nil {
		return Input{}, false, err
	}
	if to <= from {
		return Input{}, false, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	span := to - from
	if uint64(workers) > span {
		workers = int(span)
	}
	chunk, rem := span/uint64(workers), span%uint64(workers)

	var (
		mu    sync.Mutex
		best  Input
		found bool
	)
	g, gctx := errgroup.WithContext(ctx)

	lo := from
	for w := 0; w < workers; w++ {
		hi := lo + chunk
		if uint64(w) < rem {
			hi++
		}
		shardLo, shardHi := lo, hi
		g.Go(func() error {
			in, ok, err := mineShard(gctx, ts, difficulty, shardLo, shardHi, opts.Hashrate)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			mu.Lock()
			if !found || in.Nonce < best.Nonce {
				best, found = in, true
			}
			mu.Unlock()
			return errFound
		})
		lo = hi
	}

	err := g.Wait()
	if found {
		return best, true, nil
	}
	if err != nil {
		return Input{}, false, err
	}
	return Input{}, false, nil
}

func mineShard(ctx context.Context, ts uint64, difficulty uint16, from, to uint64, hashrate metrics.Meter) (Input, bool, error) {
	var done int64
	defer func() {
		if hashrate != nil && done > 0 {
			hashrate.Mark(done)
		}
	}()

	for nonce := from; nonce < to; nonce++ {
		if done == checkEvery {
			if hashrate != nil {
				hashrate.Mark(done)
			}
			done = 0
			if err := ctx.Err(); err != nil {
				return Input{}, false, err
			}
		}
		done++

		in := Input{Timestamp: ts, Nonce: nonce, Difficulty: difficulty}
		if Verify(in) {
			return in, true, nil
		}
	}
	return Input{}, false, nil
}
