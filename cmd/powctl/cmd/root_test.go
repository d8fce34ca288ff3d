package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithLog(t, args...)
	return out, err
}

func runWithLog(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return strings.TrimSpace(out.String()), errOut.String(), err
}

func TestSelfTest(t *testing.T) {
	out, err := run(t, "selftest")
	require.NoError(t, err)
	assert.Equal(t, puzzle.SelfTest(), out)
}

func TestHash(t *testing.T) {
	out, err := run(t, "hash", "--ts", "2", "--nonce", "1", "--difficulty", "1")
	require.NoError(t, err)
	assert.Equal(t, puzzle.Hash(puzzle.New(2, 1, 1)), out)
	assert.Len(t, out, puzzle.DigestLen)
}

func TestVerify(t *testing.T) {
	out, err := run(t, "verify", "--ts", "2", "--nonce", "8", "--difficulty", "1")
	require.NoError(t, err)
	assert.Equal(t, "true", out)

	out, err = run(t, "verify", "--ts", "2", "--nonce", "1", "--difficulty", "1")
	require.Error(t, err)
	assert.Equal(t, "false", out)
}

func TestMine(t *testing.T) {
	for _, workers := range []string{"1", "4"} {
		t.Run("workers_"+workers, func(t *testing.T) {
			out, err := run(t, "mine", "--ts", "2", "--difficulty", "1", "--batch", "1000", "--workers", workers)
			require.NoError(t, err)

			var got struct {
				puzzle.Input
				Digest string `json:"digest"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.True(t, puzzle.Verify(got.Input))
			assert.Equal(t, puzzle.Hash(got.Input), got.Digest)
			if workers == "1" {
				assert.Equal(t, uint64(8), got.Nonce)
			}
		})
	}
}

func TestMine_LogsHashesSearched(t *testing.T) {
	// ts=2 difficulty=1 wins at nonce 8: nine inputs hashed.
	_, logs, err := runWithLog(t, "--log-level", "debug", "mine", "--ts", "2", "--difficulty", "1", "--batch", "1000")
	require.NoError(t, err)
	assert.Contains(t, logs, "search done")
	assert.Contains(t, logs, "hashes=9")
}

func TestMine_FromOffset(t *testing.T) {
	out, err := run(t, "mine", "--ts", "2", "--difficulty", "1", "--from", "9", "--batch", "100")
	require.NoError(t, err)
	assert.Contains(t, out, `"nonce":13`)
}

func TestMine_NoSolution(t *testing.T) {
	_, err := run(t, "mine", "--ts", "2", "--difficulty", "1", "--batch", "8")
	assert.ErrorIs(t, err, errNoSolution)
}

func TestMine_ZeroDifficulty(t *testing.T) {
	_, err := run(t, "mine", "--ts", "2", "--difficulty", "0", "--batch", "8")
	assert.ErrorIs(t, err, puzzle.ErrZeroDifficulty)
}

func TestMine_Overflow(t *testing.T) {
	_, err := run(t, "mine", "--from", "18446744073709551615", "--batch", "2")
	assert.ErrorContains(t, err, "overflows")
}

func TestUnknownArgsRejected(t *testing.T) {
	_, err := run(t, "hash", "extra")
	assert.Error(t, err)
}
