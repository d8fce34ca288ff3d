package service

import (
	"context"
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

var (
	ErrUnsupported = errors.New("unsupported challenge")
	ErrForged      = errors.New("challenge signature mismatch")
	ErrExpired     = errors.New("challenge expired")
	ErrInvalid     = errors.New("pow invalid")
)

// SHA512 issues and checks double SHA-512 puzzles. Challenges are signed so
// that a client may solve one offline and redeem it later. The puzzle itself
// has no replay protection, so every accepted solution is recorded in the
// store until its challenge expires.
type SHA512 struct {
	store  ReplayStore
	secret []byte
	now    func() time.Time
	last   atomic.Uint64
}

type Option func(*SHA512)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SHA512) { s.now = now }
}

// WithSecret sets the challenge signing key. Without it a random key is
// generated, and challenges do not survive a restart.
func WithSecret(secret []byte) Option {
	return func(s *SHA512) { s.secret = secret }
}

func NewSHA512(store ReplayStore, opts ...Option) (*SHA512, error) {
	s := &SHA512{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := crand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
	}
	return s, nil
}

func (s *SHA512) NewChallenge(difficulty uint16, ttl time.Duration) (entity.Challenge, error) {
	if difficulty < 1 {
		return entity.Challenge{}, puzzle.ErrZeroDifficulty
	}
	now := s.now()
	ch := entity.Challenge{
		Version:    entity.ChallengeVersion,
		Algo:       entity.ChallengeAlgo,
		Timestamp:  s.nextTimestamp(now),
		Difficulty: difficulty,
		Expires:    now.Add(ttl).Unix(),
	}
	ch.MAC = s.sign(ch)
	return ch, nil
}

// sign returns the hex HMAC-SHA256 of every challenge field except MAC.
func (s *SHA512) sign(ch entity.Challenge) string {
	var buf [8 + 8 + 2 + 8]byte
	binary.BigEndian.PutUint64(buf[0:], uint64(ch.Version))
	binary.BigEndian.PutUint64(buf[8:], ch.Timestamp)
	binary.BigEndian.PutUint16(buf[16:], ch.Difficulty)
	binary.BigEndian.PutUint64(buf[18:], uint64(ch.Expires))

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(buf[:])
	mac.Write([]byte(ch.Algo))
	return hex.EncodeToString(mac.Sum(nil))
}

// nextTimestamp returns now in nanoseconds, bumped past the previous value so
// two challenges never share a preimage.
func (s *SHA512) nextTimestamp(now time.Time) uint64 {
	ts := uint64(now.UnixNano())
	for {
		last := s.last.Load()
		next := ts
		if next <= last {
			next = last + 1
		}
		if s.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

func (s *SHA512) Verify(ctx context.Context, ch entity.Challenge, sol entity.Solution) error {
	if ch.Algo != entity.ChallengeAlgo || ch.Version != entity.ChallengeVersion || ch.Difficulty == 0 {
		return ErrUnsupported
	}
	if !hmac.Equal([]byte(ch.MAC), []byte(s.sign(ch))) {
		return ErrForged
	}
	now := s.now()
	if now.Unix() > ch.Expires {
		return ErrExpired
	}

	in := ch.Input(sol.Nonce)
	if !puzzle.Verify(in) {
		return ErrInvalid
	}

	ttl := time.Unix(ch.Expires, 0).Sub(now) + time.Second
	if err := s.store.MarkSpent(ctx, SpentKey(in), ttl); err != nil {
		return fmt.Errorf("replay check: %w", err)
	}
	return nil
}

// SpentKey is the replay-store key of an accepted input.
func SpentKey(in puzzle.Input) []byte {
	return []byte("spent:" + in.String())
}
