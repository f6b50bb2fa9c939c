//go:build wasip1

// Command gocalc-wasi is the WASI (wasip1) entrypoint for evaluating
// expressions from any host that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "expression": "<arithmetic expression>" }
//	stdout: { "result": { "kind": "int", "value": 14 } }   on success
//	        { "error":  { "code": "E1001", ... } }         on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o cmd/wasm/wasi/gocalc.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"expression":"(2 + 3) * 4"}' | wasmtime gocalc.wasm
//
// From Go, package wasmhost runs the module inside wazero.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sandrolain/gocalc"
	"github.com/sandrolain/gocalc/pkg/types"
)

type request struct {
	Expression string `json:"expression"`
}

type response struct {
	Result *types.Value `json:"result,omitempty"`
	Error  *types.Error `json:"error,omitempty"`
}

// writeResponse prints r and exits. A response that cannot be encoded is
// replaced by an error object; if even that fails the exit code is 2.
func writeResponse(r response, exitCode int) {
	data, err := json.Marshal(r)
	if err != nil {
		exitCode = 1
		data, err = json.Marshal(response{Error: &types.Error{
			Message:  "encode response: " + err.Error(),
			Position: -1,
		}})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	data = append(data, '\n')
	if _, err := os.Stdout.Write(data); err != nil {
		os.Exit(2)
	}
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: &types.Error{
			Message:  "invalid request JSON: " + err.Error(),
			Position: -1,
		}}, 1)
	}

	v, err := gocalc.EvaluateWithContext(context.Background(), req.Expression)
	if err != nil {
		var te *types.Error
		if !errors.As(err, &te) {
			te = &types.Error{Message: err.Error(), Position: -1}
		}
		writeResponse(response{Error: te}, 1)
	}

	writeResponse(response{Result: &v}, 0)
}
