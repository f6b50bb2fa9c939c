package evaluator_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/sandrolain/gocalc/pkg/evaluator"
	"github.com/sandrolain/gocalc/pkg/types"
)

func FuzzEvaluate(f *testing.F) {
	seeds := []string{
		`2 + 3 * 4`,
		`((10 + 5) * (10 - 5)) / 2`,
		`10 / 0`,
		`5.5 % 2`,
		`-9223372036854775807 - 1`,
		`(-9223372036854775807 - 1) / -1`,
		`1e5`,
		`--+-1`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	ev := evaluator.New()
	f.Fuzz(func(t *testing.T, input string) {
		v, err := ev.EvalString(context.Background(), input)
		if err != nil {
			var te *types.Error
			if !errors.As(err, &te) {
				t.Fatalf("untyped error for %q: %v", input, err)
			}
			if te.Kind() == types.KindUnknown {
				t.Fatalf("error without a kind for %q: %v", input, err)
			}
			return
		}
		if v.Kind != types.KindInt && v.Kind != types.KindFloat {
			t.Fatalf("unexpected value kind %d for %q", v.Kind, input)
		}
	})
}

// intLiteral writes n so that it lexes back to n. The minimum int64 has no
// literal form.
func intLiteral(n int64) string {
	if n == math.MinInt64 {
		return "(-9223372036854775807 - 1)"
	}
	return strconv.FormatInt(n, 10)
}

// FuzzIntDivMod checks integer / and % against Go's truncating operators,
// including the wrapping MinInt64 / -1 case.
func FuzzIntDivMod(f *testing.F) {
	seeds := [][2]int64{
		{7, 2}, {-7, 2}, {7, -2}, {-7, -2},
		{0, 5}, {1, 1},
		{math.MaxInt64, -1},
		{math.MinInt64, -1},
		{math.MinInt64, 2},
		{math.MaxInt64, math.MinInt64},
	}
	for _, s := range seeds {
		f.Add(s[0], s[1])
	}

	ev := evaluator.New()
	f.Fuzz(func(t *testing.T, a, b int64) {
		ctx := context.Background()
		quo := fmt.Sprintf("%s / %s", intLiteral(a), intLiteral(b))
		rem := fmt.Sprintf("%s %% %s", intLiteral(a), intLiteral(b))

		if b == 0 {
			for _, expr := range []string{quo, rem} {
				if _, err := ev.EvalString(ctx, expr); !errors.Is(err, types.ErrDivisionByZero) {
					t.Fatalf("%s: expected DivisionByZero, got %v", expr, err)
				}
			}
			return
		}

		v, err := ev.EvalString(ctx, quo)
		if err != nil {
			t.Fatalf("%s: %v", quo, err)
		}
		if v != types.Int(a/b) {
			t.Fatalf("%s = %s, want %d", quo, v, a/b)
		}

		v, err = ev.EvalString(ctx, rem)
		if err != nil {
			t.Fatalf("%s: %v", rem, err)
		}
		if v != types.Int(a%b) {
			t.Fatalf("%s = %s, want %d", rem, v, a%b)
		}
	})
}
