package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dayanaadylkhanova/powgate/pkg/logger"
)

// errNoSolution is returned by mine when the batch holds no solution.
var errNoSolution = errors.New("no solution in batch")

var logLevel string

// NewRootCmd builds the powctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "powctl",
		Short:         "hash, verify and mine sha512 proof-of-work puzzles",
		Long:          `use "powctl help [<command>]" for detailed usage`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newHashCmd(), newVerifyCmd(), newMineCmd(), newSelfTestCmd())
	return root
}

// Execute runs powctl. Exit code 2 means the batch held no solution, 1 any
// other failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if errors.Is(err, errNoSolution) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return logger.NewText(cmd.ErrOrStderr(), logger.ParseLevel(logLevel))
}

// inputFlags are shared by the commands that take a full puzzle input.
type inputFlags struct {
	ts         uint64
	nonce      uint64
	difficulty uint16
}

func (f *inputFlags) register(cmd *cobra.Command, withNonce bool) {
	cmd.Flags().Uint64Var(&f.ts, "ts", 0, "puzzle timestamp")
	cmd.Flags().Uint16Var(&f.difficulty, "difficulty", 1, "number of leading '0' digest characters")
	if withNonce {
		cmd.Flags().Uint64Var(&f.nonce, "nonce", 0, "candidate nonce")
	}
}
