package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"

	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

func newMineCmd() *cobra.Command {
	var (
		f       inputFlags
		batch   uint64
		from    uint64
		workers int
	)
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "search nonces [from, from+batch) for a solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			to := from + batch
			if to < from {
				return fmt.Errorf("range [%d, %d+%d) overflows", from, from, batch)
			}

			hashrate := metrics.NewMeter()
			defer hashrate.Stop()
			started := time.Now()

			// One worker searches its range in order, so the result matches MineRange.
			in, ok, err := puzzle.MineParallel(cmd.Context(), f.ts, f.difficulty, from, to,
				puzzle.MineOptions{Workers: workers, Hashrate: hashrate})
			if err != nil {
				return err
			}
			log.Debug("search done", "elapsed", time.Since(started).String(), "hashes", hashrate.Count())
			if !ok {
				return errNoSolution
			}

			return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
				puzzle.Input
				Digest string `json:"digest"`
			}{in, puzzle.Hash(in)})
		},
	}
	f.register(cmd, false)
	cmd.Flags().Uint64Var(&batch, "batch", 1_000_000, "number of nonces to try")
	cmd.Flags().Uint64Var(&from, "from", 0, "first nonce of the batch")
	cmd.Flags().IntVar(&workers, "workers", 1, "parallel workers, 0 for one per CPU")
	return cmd
}
