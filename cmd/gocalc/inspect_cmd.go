package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gocalc/pkg/parser"
)

func newTokensCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <expression>",
		Short: "Print the token stream of an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := strings.Join(args, " ")

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tTYPE\tTEXT")
			for tok, err := range parser.NewLexer(expr).All() {
				if err != nil {
					_ = tw.Flush()
					writeError(cmd.ErrOrStderr(), expr, err)
					return err
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", tok.Position, tok.Type, tok.Value)
			}
			cfg.logger.Debug("tokenized expression", "expression", expr)
			return tw.Flush()
		},
	}
}

func newASTCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "ast <expression>",
		Short: "Print the parsed expression tree in prefix form",
		Long: `Print the parsed expression tree fully parenthesised in prefix form,
which shows how precedence and associativity grouped the operands:

  $ gocalc ast "10 - 3 - 2 * 4"
  (- (- 10 3) (* 2 4))`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := strings.Join(args, " ")

			compiled, err := parser.Compile(expr, parser.WithMaxDepth(cfg.maxDepth))
			if err != nil {
				writeError(cmd.ErrOrStderr(), expr, err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), compiled.Root())
			return nil
		},
	}
}
