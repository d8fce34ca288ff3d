package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

var ErrExhausted = errors.New("nonce space exhausted")

// Solver is the client side: it mines a challenge one batch at a time,
// moving to the next nonce range after each empty batch, until a solution is
// found or the challenge expires.
type Solver struct {
	Batch uint64
	Mine  puzzle.MineOptions
	Log   *slog.Logger
}

func (s Solver) Solve(ctx context.Context, ch entity.Challenge) (entity.Solution, error) {
	if ch.Algo != entity.ChallengeAlgo || ch.Version != entity.ChallengeVersion {
		return entity.Solution{}, ErrUnsupported
	}
	batch := s.Batch
	if batch == 0 {
		batch = 1 << 20
	}

	mctx, cancel := context.WithDeadline(ctx, time.Unix(ch.Expires, 0).Add(time.Second))
	defer cancel()

	for from := uint64(0); ; {
		to := from + batch
		if to < from {
			to = math.MaxUint64
		}

		in, ok, err := puzzle.MineParallel(mctx, ch.Timestamp, ch.Difficulty, from, to, s.Mine)
		switch {
		case err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded):
			return entity.Solution{}, ErrExpired
		case err != nil:
			return entity.Solution{}, fmt.Errorf("mine [%d,%d): %w", from, to, err)
		case ok:
			return entity.Solution{Nonce: in.Nonce}, nil
		}

		if s.Log != nil {
			s.Log.Debug("batch exhausted", "from", from, "to", to, "difficulty", ch.Difficulty)
		}
		if to == math.MaxUint64 {
			return entity.Solution{}, ErrExhausted
		}
		from = to
	}
}
