// Package puzzle implements a client-side proof-of-work puzzle: find a nonce such
// that the double SHA-512 digest of (timestamp, nonce, difficulty) starts with
// difficulty '0' characters.
//
// The package has no state and does no I/O. It carries no replay protection:
// callers that accept solutions must reject reused inputs themselves.
package puzzle

import "strconv"

// Input is a candidate puzzle solution. It is a plain value and is never
// mutated by this package.
type Input struct {
	Timestamp  uint64 `json:"timestamp"`
	Nonce      uint64 `json:"nonce"`
	Difficulty uint16 `json:"difficulty"`
}

// New returns the Input for the given triple.
func New(ts, nonce uint64, difficulty uint16) Input {
	return Input{Timestamp: ts, Nonce: nonce, Difficulty: difficulty}
}

// String returns the hash preimage "{timestamp}:{nonce}:{difficulty}".
func (in Input) String() string {
	return string(in.appendPreimage(make([]byte, 0, 48)))
}

func (in Input) appendPreimage(b []byte) []byte {
	b = strconv.AppendUint(b, in.Timestamp, 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, in.Nonce, 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, uint64(in.Difficulty), 10)
	return b
}
