// Package evaluator computes the value of a compiled arithmetic expression.
//
// The evaluator walks the expression tree bottom-up and produces a single
// [types.Value]. Evaluation is pure: it never prints, and logs only when a
// logger is supplied and debug output is enabled.
//
// # Example
//
//	ev := evaluator.New()
//	expr, err := parser.Parse("((10 + 5) * (10 - 5)) / 2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := ev.Eval(ctx, expr) // int 37
//
// # Numeric semantics
//
// Integer operands produce integer results; a float on either side promotes
// the operation to float. Integer division truncates toward zero and the
// remainder takes the sign of the dividend. Modulo on a float operand is a
// TypeError; a zero divisor is DivisionByZero.
package evaluator

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandrolain/gocalc/pkg/cache"
	"github.com/sandrolain/gocalc/pkg/parser"
	"github.com/sandrolain/gocalc/pkg/types"
)

// Evaluator evaluates compiled expressions. It is safe for concurrent use.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when caching is enabled
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables caching of compiled expressions in EvalString and
	// Compile, keyed by source text.
	Caching bool
	// CacheSize sets the maximum number of cached expressions.
	// Only used when Caching is true and no Cache is provided. Defaults to 256.
	CacheSize int
	// Cache is a custom expression cache. If non-nil, caching is implicitly enabled.
	Cache *cache.Cache
	// MaxDepth limits expression nesting when compiling source text.
	MaxDepth int
	// Debug enables debug logging of each evaluation.
	Debug bool
	// Logger for structured logging. Defaults to a handler that discards
	// everything.
	Logger *slog.Logger
}

// New creates a new Evaluator.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: parser.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  c,
	}
}

// Cache returns the expression cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Compile parses source, going through the cache when one is configured.
func (e *Evaluator) Compile(source string) (*types.Expression, error) {
	compile := func() (*types.Expression, error) {
		return parser.Compile(source, parser.WithMaxDepth(e.opts.MaxDepth))
	}
	if e.cache == nil {
		return compile()
	}
	return e.cache.GetOrCompile(source, compile)
}

// Eval evaluates a compiled expression.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression) (types.Value, error) {
	if expr == nil || expr.Root() == nil {
		return types.Value{}, types.NewError(types.ErrInvalidNode, "invalid expression", -1)
	}
	if err := ctx.Err(); err != nil {
		return types.Value{}, err
	}

	var start time.Time
	if e.opts.Debug {
		start = time.Now()
	}

	v, err := e.evalTree(expr.Root())
	if err != nil {
		if te, ok := err.(*types.Error); ok {
			te.WithSource(expr.Source())
		}
		if e.opts.Debug {
			e.logger.DebugContext(ctx, "evaluation failed",
				"source", expr.Source(),
				"error", err)
		}
		return types.Value{}, err
	}

	if e.opts.Debug {
		e.logger.DebugContext(ctx, "evaluated expression",
			"source", expr.Source(),
			"kind", v.Kind.String(),
			"result", v.String(),
			"duration", time.Since(start))
	}
	return v, nil
}

// EvalString compiles and evaluates source in one call.
func (e *Evaluator) EvalString(ctx context.Context, source string) (types.Value, error) {
	expr, err := e.Compile(source)
	if err != nil {
		if e.opts.Debug {
			e.logger.DebugContext(ctx, "compilation failed",
				"source", source,
				"error", err)
		}
		return types.Value{}, err
	}
	return e.Eval(ctx, expr)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables expression caching.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached expressions.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external expression cache.
// The evaluator will use this cache regardless of the Caching flag.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithMaxDepth sets the maximum nesting depth accepted when compiling.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}
