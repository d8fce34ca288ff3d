package tcp

import (
	"context"
	"time"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
)

//go:generate mockgen -source=interfaces.go -destination=./server_mock.go -package=tcp

type PoW interface {
	NewChallenge(difficulty uint16, ttl time.Duration) (entity.Challenge, error)
	Verify(ctx context.Context, ch entity.Challenge, sol entity.Solution) error
}

type Quote interface {
	Random() string
}
