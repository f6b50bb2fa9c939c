// Package fixtures loads YAML suites of expressions with their expected
// results and checks an evaluator against them.
//
// A suite looks like:
//
//	name: arithmetic-examples
//	tolerance: 1e-9
//	cases:
//	  - name: precedence
//	    expr: "2 + 3 * 4"
//	    int: 14
//	  - name: promotion
//	    expr: "3.14 + 2"
//	    float: 5.14
//	  - name: division by zero
//	    expr: "10 / 0"
//	    error: DivisionByZero
//
// Each case sets exactly one of int, float or error. Error names are the
// kinds reported by types.ErrorKind.
package fixtures

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gocalc/pkg/types"
)

//go:embed suites/*.yaml
var suitesFS embed.FS

// DefaultTolerance is the relative tolerance for float results when a suite
// does not set one.
const DefaultTolerance = 1e-9

// Case is a single expression and its expected outcome.
type Case struct {
	Name  string   `yaml:"name"`
	Expr  string   `yaml:"expr"`
	Int   *int64   `yaml:"int,omitempty"`
	Float *float64 `yaml:"float,omitempty"`
	Error string   `yaml:"error,omitempty"`
}

// Suite is a named list of cases.
type Suite struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Tolerance   float64 `yaml:"tolerance,omitempty"`
	Cases       []Case  `yaml:"cases"`
}

// Load decodes a suite from r and validates it.
func Load(r io.Reader) (*Suite, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("fixtures: empty suite")
		}
		return nil, fmt.Errorf("fixtures: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a suite from disk.
func LoadFile(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Default returns the embedded suite built from the arithmetic teaching
// examples.
func Default() (*Suite, error) {
	data, err := suitesFS.ReadFile("suites/arithmetic.yaml")
	if err != nil {
		return nil, fmt.Errorf("fixtures: read embedded suite: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Validate checks that every case names exactly one expected outcome.
func (s *Suite) Validate() error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("fixtures: suite %q has no cases", s.Name)
	}
	for i, c := range s.Cases {
		set := 0
		if c.Int != nil {
			set++
		}
		if c.Float != nil {
			set++
		}
		if c.Error != "" {
			set++
			if _, ok := parseKind(c.Error); !ok {
				return fmt.Errorf("fixtures: case %d (%s): unknown error kind %q", i, c.Name, c.Error)
			}
		}
		if set != 1 {
			return fmt.Errorf("fixtures: case %d (%s): exactly one of int, float or error must be set", i, c.Name)
		}
	}
	return nil
}

func parseKind(name string) (types.ErrorKind, bool) {
	for _, k := range []types.ErrorKind{
		types.KindLexError,
		types.KindParseError,
		types.KindDivisionByZero,
		types.KindTypeError,
	} {
		if k.String() == name {
			return k, true
		}
	}
	return types.KindUnknown, false
}

// EvalFunc evaluates one expression.
type EvalFunc func(ctx context.Context, expression string) (types.Value, error)

// Result is the outcome of one case.
type Result struct {
	Case   Case
	Passed bool
	Got    types.Value
	Err    error
	Reason string // why the case failed
}

// Report summarizes a suite run.
type Report struct {
	Suite   string
	Results []Result
	Passed  int
	Failed  int
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Check runs every case of s through eval. It stops early only if ctx is
// cancelled.
func Check(ctx context.Context, s *Suite, eval EvalFunc) (*Report, error) {
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	report := &Report{Suite: s.Name, Results: make([]Result, 0, len(s.Cases))}
	for _, c := range s.Cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		got, err := eval(ctx, c.Expr)
		res := Result{Case: c, Got: got, Err: err}
		res.Reason = compare(c, got, err, tol)
		res.Passed = res.Reason == ""
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// compare returns an empty string when the outcome matches c.
func compare(c Case, got types.Value, err error, tol float64) string {
	if c.Error != "" {
		if err == nil {
			return fmt.Sprintf("expected %s, got %s %s", c.Error, got.Kind, got)
		}
		var te *types.Error
		if !errors.As(err, &te) {
			return fmt.Sprintf("expected %s, got untyped error: %v", c.Error, err)
		}
		if te.Kind().String() != c.Error {
			return fmt.Sprintf("expected %s, got %s: %v", c.Error, te.Kind(), err)
		}
		return ""
	}

	if err != nil {
		return fmt.Sprintf("unexpected error: %v", err)
	}

	if c.Int != nil {
		if !got.IsInt() {
			return fmt.Sprintf("expected int %d, got %s %s", *c.Int, got.Kind, got)
		}
		if got.Int != *c.Int {
			return fmt.Sprintf("expected %d, got %d", *c.Int, got.Int)
		}
		return ""
	}

	if !got.IsFloat() {
		return fmt.Sprintf("expected float %g, got %s %s", *c.Float, got.Kind, got)
	}
	want := *c.Float
	if math.Abs(got.Float-want) > tol*math.Max(1, math.Abs(want)) {
		return fmt.Sprintf("expected %g, got %g", want, got.Float)
	}
	return ""
}
