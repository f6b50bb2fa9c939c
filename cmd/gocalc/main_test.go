package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gocalc/pkg/types"
)

// run executes the root command with args and stdin, returning stdout,
// stderr and the command error.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("GOCALC_WASM", "")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single argument", []string{"eval", "(2 + 3) * 4"}, "20\n"},
		{"joined arguments", []string{"eval", "7", "/", "2"}, "3\n"},
		{"float", []string{"eval", "7.0 / 2"}, "3.5\n"},
		{"float without fraction", []string{"eval", "2.5 * 2"}, "5.0\n"},
		{"without cache", []string{"--cache-size", "0", "eval", "10 - 3 - 2"}, "5\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stdout, _, err := run(t, "", test.args...)
			require.NoError(t, err)
			assert.Equal(t, test.want, stdout)
		})
	}
}

func TestEvalCommandError(t *testing.T) {
	stdout, stderr, err := run(t, "", "eval", "10 / 0")
	require.Error(t, err)
	assert.Equal(t, "1 of 1 expressions failed", err.Error())
	assert.Empty(t, stdout)
	assert.Equal(t,
		"  10 / 0\n     ^\nDivisionByZero: E1001 at line 1, column 4: division by zero in operator /\n",
		stderr)
}

func TestEvalCommandStdin(t *testing.T) {
	stdout, stderr, err := run(t, "1 + 1\n\n  3 * 2  \n5.5 % 2\n", "eval")
	require.Error(t, err)
	assert.Equal(t, "1 of 3 expressions failed", err.Error())
	assert.Equal(t, "2\n6\n", stdout)
	assert.Contains(t, stderr, "TypeError: E1002")
}

func TestEvalCommandJSON(t *testing.T) {
	stdout, _, err := run(t, "2 + 3 * 4\n(2 + 3\n", "eval", "--json")
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	var ok evalOutput
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	assert.Equal(t, "2 + 3 * 4", ok.Expression)
	require.NotNil(t, ok.Result)
	assert.Equal(t, types.Int(14), *ok.Result)
	assert.Nil(t, ok.Error)

	var failed evalOutput
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.Nil(t, failed.Result)
	require.NotNil(t, failed.Error)
	assert.Equal(t, types.ErrUnmatchedParen, failed.Error.Code)
	assert.Equal(t, 6, failed.Error.Position)
}

func TestEvalCommandJSONNonFinite(t *testing.T) {
	big := "1" + strings.Repeat("0", 300) + ".0"
	product := big + " * " + big
	stdout, _, err := run(t, product+"\n"+product+" - "+product+"\n", "eval", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	var inf, nan evalOutput
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inf))
	require.NotNil(t, inf.Result)
	assert.True(t, math.IsInf(inf.Result.Float, 1))
	assert.Contains(t, lines[0], `"value":"+Inf"`)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &nan))
	require.NotNil(t, nan.Result)
	assert.True(t, math.IsNaN(nan.Result.Float))
}

func TestEvalCommandNoInput(t *testing.T) {
	_, _, err := run(t, "\n  \n", "eval")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no expression given")
}

func TestEvalCommandMaxDepth(t *testing.T) {
	_, stderr, err := run(t, "", "--max-depth", "2", "eval", "(((1)))")
	require.Error(t, err)
	assert.Contains(t, stderr, "ParseError: P0205")
}

func TestEvalCommandVerboseLogs(t *testing.T) {
	_, stderr, err := run(t, "", "-v", "eval", "1 + 1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "evaluated expression")
	assert.Contains(t, stderr, "level=DEBUG")

	_, stderr, err = run(t, "", "eval", "1 + 1")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestTokensCommand(t *testing.T) {
	stdout, _, err := run(t, "", "tokens", "12 * (3)")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, []string{"POS", "TYPE", "TEXT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "(number)", "12"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"3", "*", "*"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"8", "(eof)"}, strings.Fields(lines[6]))
}

func TestTokensCommandLexError(t *testing.T) {
	_, stderr, err := run(t, "", "tokens", "1 + $")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrLex)
	assert.Contains(t, stderr, "LexError: L0101")
	assert.Contains(t, stderr, "    ^")
}

func TestASTCommand(t *testing.T) {
	stdout, _, err := run(t, "", "ast", "10 - 3 - 2 * 4")
	require.NoError(t, err)
	assert.Equal(t, "(- (- 10 3) (* 2 4))\n", stdout)

	_, stderr, err := run(t, "", "ast", "2 +")
	require.Error(t, err)
	assert.Contains(t, stderr, "ParseError")
}

func TestCheckCommandDefaultSuite(t *testing.T) {
	stdout, _, err := run(t, "", "check", "--quiet")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "FAIL")
	assert.Regexp(t, `^arithmetic-examples: \d+ passed, 0 failed\n$`, stdout)

	stdout, _, err = run(t, "", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok    precedence")
}

func TestCheckCommandFailingSuite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: bad
cases:
  - name: wrong
    expr: "2 + 2"
    int: 5
  - name: right
    expr: "2 + 2"
    int: 4
`), 0o600))

	stdout, _, err := run(t, "", "check", path)
	require.Error(t, err)
	assert.Equal(t, "suite bad: 1 cases failed", err.Error())
	assert.Contains(t, stdout, "FAIL  wrong")
	assert.Contains(t, stdout, "expected 5, got 4")
	assert.Contains(t, stdout, "bad: 1 passed, 1 failed")
}

func TestCheckCommandMissingWasm(t *testing.T) {
	_, _, err := run(t, "", "--wasm", filepath.Join(t.TempDir(), "missing.wasm"), "check")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gocalc version v")
}
