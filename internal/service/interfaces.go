package service

import (
	"context"
	"time"
)

//go:generate mockgen -source=interfaces.go -destination=./service_mock.go -package=service

// ReplayStore remembers accepted solutions until their challenge expires.
// MarkSpent returns entity.ErrSolutionSpent when key was already marked.
type ReplayStore interface {
	MarkSpent(ctx context.Context, key []byte, ttl time.Duration) error
}
