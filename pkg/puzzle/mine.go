package puzzle

import "errors"

// ErrZeroDifficulty is returned for mining requests with difficulty 0. Such a
// request is a caller bug, not a retryable outcome.
var ErrZeroDifficulty = errors.New("puzzle: difficulty must be greater than 0")

// Mine searches nonces 0..batchSize-1 in order and returns the first winning
// Input. The bool is false when the batch holds no solution; that is a normal
// result and the caller decides whether to try another batch.
func Mine(ts uint64, difficulty uint16, batchSize uint64) (Input, bool, error) {
	return MineRange(ts, difficulty, 0, batchSize)
}

// MineRange is Mine over the nonce range [from, to). An empty range yields no
// solution.
func MineRange(ts uint64, difficulty uint16, from, to uint64) (Input, bool, error) {
	if difficulty < 1 {
		return Input{}, false, ErrZeroDifficulty
	}
	for nonce := from; nonce < to; nonce++ {
		in := Input{Timestamp: ts, Nonce: nonce, Difficulty: difficulty}
		if Verify(in) {
			return in, true, nil
		}
	}
	return Input{}, false, nil
}

// MustMine is like Mine but panics on a zero difficulty.
func MustMine(ts uint64, difficulty uint16, batchSize uint64) (Input, bool) {
	in, ok, err := Mine(ts, difficulty, batchSize)
	if err != nil {
		panic(err)
	}
	return in, ok
}
