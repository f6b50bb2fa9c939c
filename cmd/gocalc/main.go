// Command gocalc evaluates arithmetic expressions from the command line.
//
//	gocalc eval "((10 + 5) * (10 - 5)) / 2"
//	gocalc tokens "2 + 3 * 4"
//	gocalc ast "2 + 3 * 4"
//	gocalc check suite.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gocalc"
	"github.com/sandrolain/gocalc/pkg/evaluator"
	"github.com/sandrolain/gocalc/pkg/parser"
	"github.com/sandrolain/gocalc/pkg/types"
	"github.com/sandrolain/gocalc/pkg/wasmhost"
)

// config holds the persistent flags shared by every subcommand.
type config struct {
	maxDepth  int
	cacheSize int
	verbose   bool
	wasmPath  string

	logger *slog.Logger
}

// backend evaluates a single expression.
type backend interface {
	Evaluate(ctx context.Context, expression string) (types.Value, error)
}

// nativeBackend adapts an in-process evaluator.
type nativeBackend struct {
	ev *evaluator.Evaluator
}

func (b nativeBackend) Evaluate(ctx context.Context, expression string) (types.Value, error) {
	return b.ev.EvalString(ctx, expression)
}

// backend returns the evaluator selected by the flags and a function that
// releases it.
func (c *config) backend(ctx context.Context) (backend, func(), error) {
	if c.wasmPath != "" {
		c.logger.Debug("loading wasm module", "path", c.wasmPath)
		r, err := wasmhost.NewFromFile(ctx, c.wasmPath, wasmhost.WithLogger(c.logger))
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close(context.Background()) }, nil
	}

	opts := []evaluator.EvalOption{
		evaluator.WithMaxDepth(c.maxDepth),
		evaluator.WithLogger(c.logger),
		evaluator.WithDebug(c.verbose),
	}
	if c.cacheSize > 0 {
		opts = append(opts, evaluator.WithCaching(true), evaluator.WithCacheSize(c.cacheSize))
	}
	return nativeBackend{ev: evaluator.New(opts...)}, func() {}, nil
}

func newRootCmd() *cobra.Command {
	cfg := &config{}

	root := &cobra.Command{
		Use:   "gocalc",
		Short: "Evaluate arithmetic expressions",
		Long: `gocalc evaluates arithmetic expressions with integer and decimal
literals, the operators + - * / % and parentheses.

Integer operands give integer results with truncating division; a decimal
operand anywhere in an operation promotes it to floating point.`,
		Version:       gocalc.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg.logger = newLogger(cmd.ErrOrStderr(), cfg.verbose)
		},
	}

	root.PersistentFlags().IntVar(&cfg.maxDepth, "max-depth", parser.DefaultMaxDepth, "Maximum nesting depth of an expression")
	root.PersistentFlags().IntVar(&cfg.cacheSize, "cache-size", 256, "Compiled expression cache size (0 disables caching)")
	root.PersistentFlags().BoolVarP(&cfg.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&cfg.wasmPath, "wasm", os.Getenv("GOCALC_WASM"), "Evaluate with this WASI module instead of in-process (env GOCALC_WASM)")

	root.AddCommand(
		newEvalCmd(cfg),
		newTokensCmd(cfg),
		newASTCmd(cfg),
		newCheckCmd(cfg),
	)
	return root
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
