package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gocalc/pkg/types"
)

type evalOutput struct {
	Expression string       `json:"expression"`
	Result     *types.Value `json:"result,omitempty"`
	Error      *types.Error `json:"error,omitempty"`
	Failure    string       `json:"failure,omitempty"` // errors without a code
}

func newEvalCmd(cfg *config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an expression",
		Long: `Evaluate an arithmetic expression and print its value.

The arguments are joined with spaces into a single expression. Without
arguments, every non-blank line of standard input is evaluated.

Examples:
  gocalc eval "(2 + 3) * 4"
  gocalc eval 7 / 2
  printf '1 + 1\n3.14 * 2\n' | gocalc eval --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exprs, err := collectExpressions(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			b, release, err := cfg.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			failed := 0
			for _, expr := range exprs {
				v, err := b.Evaluate(cmd.Context(), expr)
				if err != nil {
					failed++
					cfg.logger.Debug("evaluation failed", "expression", expr, "error", err)
				}

				if asJSON {
					o := evalOutput{Expression: expr}
					var te *types.Error
					switch {
					case err == nil:
						o.Result = &v
					case errors.As(err, &te):
						o.Error = te
					default:
						o.Failure = err.Error()
					}
					if encErr := enc.Encode(o); encErr != nil {
						return encErr
					}
					continue
				}

				if err != nil {
					writeError(cmd.ErrOrStderr(), expr, err)
					continue
				}
				fmt.Fprintln(out, v)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d expressions failed", failed, len(exprs))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per expression")
	return cmd
}

// collectExpressions joins args into one expression, or reads one expression
// per non-blank line of r when there are no args.
func collectExpressions(r io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}

	var exprs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		exprs = append(exprs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read expressions: %w", err)
	}
	if len(exprs) == 0 {
		return nil, errors.New("no expression given")
	}
	return exprs, nil
}

// writeError prints err, pointing at the offending column when the
// expression fits on one line.
func writeError(w io.Writer, expr string, err error) {
	var te *types.Error
	if errors.As(err, &te) && te.Line == 1 && te.Column > 0 && !strings.ContainsRune(expr, '\n') {
		fmt.Fprintf(w, "  %s\n  %s^\n", expr, strings.Repeat(" ", te.Column-1))
	}
	fmt.Fprintf(w, "%s: %v\n", kindOf(err), err)
}

func kindOf(err error) string {
	var te *types.Error
	if errors.As(err, &te) {
		return te.Kind().String()
	}
	return "error"
}
