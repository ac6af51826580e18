//go:build wasip1

// Command godice-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "expression": "<dice>", "extreme": "min" | "max", "seed": <int> }
//	stdout: { "result": <number or array> }    on success
//	        { "error":  "<message>", "code": "<code>", "position": <int> }
//	                                           on failure (exit code 1)
//
// "extreme" and "seed" are optional.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o godice.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"expression":"4d6h3"}' | wasmtime godice.wasm
package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/sandrolain/godice"
	"github.com/sandrolain/godice/pkg/evaluator"
	"github.com/sandrolain/godice/pkg/roller"
	"github.com/sandrolain/godice/pkg/types"
)

type request struct {
	Expression string `json:"expression"`
	Extreme    string `json:"extreme,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

type response struct {
	Result   interface{} `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
	Code     string      `json:"code,omitempty"`
	Position *int        `json:"position,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func writeError(err error) {
	r := response{Error: err.Error()}
	var derr *types.Error
	if errors.As(err, &derr) {
		r.Error = derr.Message
		r.Code = string(derr.Code)
		r.Position = &derr.Position
	}
	writeResponse(r, 1)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	var opts []evaluator.EvalOption
	switch req.Extreme {
	case "":
	case "min":
		opts = append(opts, godice.WithForceExtreme(types.ExtremeMin))
	case "max":
		opts = append(opts, godice.WithForceExtreme(types.ExtremeMax))
	default:
		writeResponse(response{Error: `extreme must be "min" or "max"`}, 1)
	}
	if req.Seed != nil {
		opts = append(opts, godice.WithRandom(roller.NewSeeded(*req.Seed)))
	}

	result, err := godice.Roll(req.Expression, opts...)
	if err != nil {
		writeError(err)
	}

	writeResponse(response{Result: result}, 0)
}
