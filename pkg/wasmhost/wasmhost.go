// Package wasmhost evaluates expressions with the WASI build of gocalc
// (cmd/wasm/wasi) running inside the wazero runtime.
//
// A Runner compiles the module once and instantiates a fresh, isolated
// instance per evaluation, so a misbehaving expression cannot affect later
// ones. Results and errors have the same shape as gocalc.Evaluate:
//
//	r, err := wasmhost.NewFromFile(ctx, "gocalc.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close(ctx)
//	v, err := r.Evaluate(ctx, "(2 + 3) * 4")
package wasmhost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/sandrolain/gocalc/pkg/types"
)

type request struct {
	Expression string `json:"expression"`
}

type response struct {
	Result *types.Value `json:"result,omitempty"`
	Error  *types.Error `json:"error,omitempty"`
}

type options struct {
	logger           *slog.Logger
	timeout          time.Duration
	memoryLimitPages uint32
}

// Option configures a Runner.
type Option func(*options)

// WithLogger sets the logger used for per-run debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTimeout bounds each evaluation. Zero means no limit beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithMemoryLimitPages caps guest memory in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(o *options) {
		o.memoryLimitPages = pages
	}
}

// Runner owns a wazero runtime with the compiled gocalc module.
// It is safe for concurrent use and must be closed.
type Runner struct {
	runtime wazero.Runtime
	module  wazero.CompiledModule
	opts    options
}

// New compiles wasm and prepares a runtime with WASI imports.
func New(ctx context.Context, wasm []byte, opts ...Option) (*Runner, error) {
	o := options{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if o.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(o.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("wasmhost: instantiate WASI: %w", err)
	}

	mod, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("wasmhost: compile module: %w", err)
	}

	return &Runner{runtime: rt, module: mod, opts: o}, nil
}

// NewFromFile reads a wasm binary from path and calls New.
func NewFromFile(ctx context.Context, path string, opts ...Option) (*Runner, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wasmhost: read %s: %w", path, err)
	}
	return New(ctx, wasm, opts...)
}

// Evaluate runs one expression in a fresh module instance.
func (r *Runner) Evaluate(ctx context.Context, expression string) (types.Value, error) {
	if err := ctx.Err(); err != nil {
		return types.Value{}, fmt.Errorf("wasmhost: evaluation aborted: %w", err)
	}
	if r.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.timeout)
		defer cancel()
	}

	req, err := json.Marshal(request{Expression: expression})
	if err != nil {
		return types.Value{}, fmt.Errorf("wasmhost: encode request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName(""). // anonymous, so instances can run side by side
		WithArgs("gocalc").
		WithStdin(bytes.NewReader(req)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	start := time.Now()
	exitCode := uint32(0)
	mod, err := r.runtime.InstantiateModule(ctx, r.module, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Value{}, fmt.Errorf("wasmhost: evaluation aborted: %w", ctxErr)
		}
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) {
			return types.Value{}, fmt.Errorf("wasmhost: run module: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	r.opts.logger.DebugContext(ctx, "wasm evaluation finished",
		"expression", expression,
		"exit_code", exitCode,
		"duration", time.Since(start))

	var resp response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return types.Value{}, fmt.Errorf("wasmhost: decode response (exit code %d, stderr %q): %w",
			exitCode, stderr.String(), err)
	}
	if resp.Error != nil {
		return types.Value{}, resp.Error
	}
	if resp.Result == nil {
		return types.Value{}, fmt.Errorf("wasmhost: empty response (exit code %d)", exitCode)
	}
	return *resp.Result, nil
}

// Close releases the runtime and every module compiled into it.
func (r *Runner) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}
