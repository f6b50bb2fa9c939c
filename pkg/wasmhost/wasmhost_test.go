package wasmhost_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gocalc/pkg/evaluator"
	"github.com/sandrolain/gocalc/pkg/fixtures"
	"github.com/sandrolain/gocalc/pkg/types"
	"github.com/sandrolain/gocalc/pkg/wasmhost"
)

var (
	buildOnce sync.Once
	buildDir  string
	buildErr  error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if buildDir != "" {
		_ = os.RemoveAll(buildDir)
	}
	os.Exit(code)
}

// wasmPath returns the WASI build to test against. GOCALC_WASM or a
// prebuilt cmd/wasm/wasi/gocalc.wasm is used when present; otherwise the
// module is compiled once per test binary:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gocalc.wasm ./cmd/wasm/wasi/
func wasmPath(t *testing.T) string {
	t.Helper()
	if path := os.Getenv("GOCALC_WASM"); path != "" {
		return path
	}
	prebuilt := filepath.Join("..", "..", "cmd", "wasm", "wasi", "gocalc.wasm")
	if _, err := os.Stat(prebuilt); err == nil {
		return prebuilt
	}

	if testing.Short() {
		t.Skip("skipping WASI build in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not on PATH; set GOCALC_WASM to a prebuilt module")
	}

	buildOnce.Do(func() {
		buildDir, buildErr = os.MkdirTemp("", "gocalc-wasm-")
		if buildErr != nil {
			return
		}
		cmd := exec.Command(goBin, "build", "-o", filepath.Join(buildDir, "gocalc.wasm"), "./cmd/wasm/wasi")
		cmd.Dir = filepath.Join("..", "..")
		cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm")
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = fmt.Errorf("build WASI module: %w\n%s", err, out)
		}
	})
	require.NoError(t, buildErr)
	return filepath.Join(buildDir, "gocalc.wasm")
}

func newRunner(t *testing.T) *wasmhost.Runner {
	t.Helper()
	ctx := context.Background()
	r, err := wasmhost.NewFromFile(ctx, wasmPath(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(ctx) })
	return r
}

func TestNewRejectsInvalidModule(t *testing.T) {
	_, err := wasmhost.New(context.Background(), []byte("not wasm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile module")
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := wasmhost.NewFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.wasm"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunnerEvaluate(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()

	v, err := r.Evaluate(ctx, "((10 + 5) * (10 - 5)) / 2")
	require.NoError(t, err)
	assert.Equal(t, types.Int(37), v)

	v, err = r.Evaluate(ctx, "3.14 + 2")
	require.NoError(t, err)
	assert.True(t, v.IsFloat())
	assert.InDelta(t, 5.14, v.Float, 1e-9)

	_, err = r.Evaluate(ctx, "10 / 0")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDivisionByZero)

	var te *types.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.ErrDivideByZero, te.Code)
	assert.Equal(t, 3, te.Position)
	assert.Equal(t, 4, te.Column)
}

func TestRunnerMatchesDefaultSuite(t *testing.T) {
	r := newRunner(t)
	suite, err := fixtures.Default()
	require.NoError(t, err)

	report, err := fixtures.Check(context.Background(), suite, r.Evaluate)
	require.NoError(t, err)
	for _, res := range report.Results {
		assert.True(t, res.Passed, "%s (%q): %s", res.Case.Name, res.Case.Expr, res.Reason)
	}
}

func TestRunnerConcurrent(t *testing.T) {
	r := newRunner(t)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Evaluate(context.Background(), "2 + 3 * 4")
			if assert.NoError(t, err) {
				assert.Equal(t, types.Int(14), v)
			}
		}()
	}
	wg.Wait()
}

func TestRunnerCancelledContext(t *testing.T) {
	r := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Evaluate(ctx, "1 + 1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerMatchesNative(t *testing.T) {
	r := newRunner(t)
	native := evaluator.New()
	ctx := context.Background()

	big := "1" + strings.Repeat("0", 300) + ".0"
	expressions := []string{
		"2 + 3 * 4",
		"-7 / 2",
		"-7 % 3",
		"7 % -3",
		"(-9223372036854775807 - 1) / -1",
		"(-9223372036854775807 - 1) % -1",
		"9223372036854775807 + 1",
		"0.1 + 0.2",
		"1 / 3.0",
		big + " * " + big,
		"-" + big + " * " + big,
		big + " * " + big + " - " + big + " * " + big,
		"10 / 0",
		"1.0 / 0.0",
		"5.5 % 2",
		"(2 + 3",
		"2 + @",
		"9223372036854775808",
		"",
	}

	for _, expr := range expressions {
		t.Run(expr, func(t *testing.T) {
			want, wantErr := native.EvalString(ctx, expr)
			got, gotErr := r.Evaluate(ctx, expr)

			if wantErr != nil {
				var wantTE, gotTE *types.Error
				require.True(t, errors.As(wantErr, &wantTE))
				require.ErrorAs(t, gotErr, &gotTE)
				assert.Equal(t, wantTE.Code, gotTE.Code)
				assert.Equal(t, wantTE.Position, gotTE.Position)
				assert.Equal(t, wantTE.Message, gotTE.Message)
				return
			}

			require.NoError(t, gotErr)
			assert.Equal(t, want.Kind, got.Kind)
			if want.IsFloat() && math.IsNaN(want.Float) {
				assert.True(t, math.IsNaN(got.Float))
				return
			}
			assert.Equal(t, want, got)
		})
	}
}
