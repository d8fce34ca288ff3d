package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

func newHashCmd() *cobra.Command {
	var f inputFlags
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "print the digest of (ts, nonce, difficulty)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), puzzle.Hash(puzzle.New(f.ts, f.nonce, f.difficulty)))
			return err
		},
	}
	f.register(cmd, true)
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var f inputFlags
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "check whether (ts, nonce, difficulty) is a solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := puzzle.New(f.ts, f.nonce, f.difficulty)
			ok := puzzle.Verify(in)
			newLogger(cmd).Debug("verify", "input", in.String(), "digest", puzzle.Hash(in))
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), ok); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not a solution", in)
			}
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func newSelfTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "print the digest of the fixed input (2, 1, 1)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), puzzle.SelfTest())
			return err
		},
	}
}
