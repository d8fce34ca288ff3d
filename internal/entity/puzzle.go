package entity

import (
	"errors"

	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

const (
	// ChallengeVersion is the wire format version of Challenge.
	ChallengeVersion = 1
	// ChallengeAlgo names the puzzle: double SHA-512 over hex, solved by a
	// leading run of '0' digest characters.
	ChallengeAlgo = "sha512x2-hex-zero-prefix"
)

// Challenge is sent to the client as the first JSON line of a session.
type Challenge struct {
	Version    int    `json:"version"`
	Algo       string `json:"algo"`
	Timestamp  uint64 `json:"timestamp"`
	Difficulty uint16 `json:"difficulty"`
	Expires    int64  `json:"expires"`
	MAC        string `json:"mac"`
}

// Input builds the puzzle candidate for nonce.
func (c Challenge) Input(nonce uint64) puzzle.Input {
	return puzzle.New(c.Timestamp, nonce, c.Difficulty)
}

// Solution answers the challenge of the current session, or the signed
// Challenge it carries when the puzzle was solved ahead of time.
type Solution struct {
	Nonce     uint64     `json:"nonce"`
	Challenge *Challenge `json:"challenge,omitempty"`
}

// ErrSolutionSpent is returned by replay stores for a solution that was
// already accepted.
var ErrSolutionSpent = errors.New("solution already spent")
