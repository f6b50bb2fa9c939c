package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gocalc/pkg/fixtures"
)

func newCheckCmd(cfg *config) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check [suite.yaml]",
		Short: "Run a fixture suite",
		Long: `Evaluate every case of a YAML fixture suite and compare the results
with the expected values. Without an argument the built-in suite of
arithmetic examples is used.

Combine with --wasm to check the WASI build against the same suite.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				suite *fixtures.Suite
				err   error
			)
			if len(args) == 1 {
				suite, err = fixtures.LoadFile(args[0])
			} else {
				suite, err = fixtures.Default()
			}
			if err != nil {
				return err
			}

			b, release, err := cfg.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			report, err := fixtures.Check(cmd.Context(), suite, b.Evaluate)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range report.Results {
				switch {
				case !r.Passed:
					fmt.Fprintf(out, "FAIL  %-36s %q: %s\n", r.Case.Name, r.Case.Expr, r.Reason)
				case !quiet:
					fmt.Fprintf(out, "ok    %-36s %q\n", r.Case.Name, r.Case.Expr)
				}
			}
			fmt.Fprintf(out, "%s: %d passed, %d failed\n", report.Suite, report.Passed, report.Failed)

			if !report.OK() {
				return fmt.Errorf("suite %s: %d cases failed", report.Suite, report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print failures and the summary")
	return cmd
}
