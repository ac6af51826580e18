//go:build js && wasm

// Command godice-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `godice` object with the following API:
//
//	godice.version()          → string
//	godice.roll(expression)   → resultJSON  (throws on error)
//	godice.rollMin(expression) → resultJSON (throws on error)
//	godice.rollMax(expression) → resultJSON (throws on error)
//	godice.compile(expression) → { roll() → resultJSON }  (throws on error)
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o godice.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const gd = await load()
//	console.log(JSON.parse(gd.roll('4d6h3'))) // [5, 3, 6]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/godice"
	"github.com/sandrolain/godice/pkg/evaluator"
	"github.com/sandrolain/godice/pkg/types"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	js.Global().Get("Error").New(msg)
	panic(msg)
}

func errorMessage(err error) string {
	if derr, ok := err.(*types.Error); ok {
		return derr.Error() + "\n" + types.PrettyPrint(derr)
	}
	return err.Error()
}

func encode(name string, result interface{}) string {
	out, err := json.Marshal(result)
	if err != nil {
		jsThrow(fmt.Sprintf("godice.%s: marshal result: %v", name, err))
	}
	return string(out)
}

// rollFunc wraps one of the root roll functions as godice.<name>(expression).
func rollFunc(name string, roll func(string, ...evaluator.EvalOption) (interface{}, error)) js.Func {
	return js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			jsThrow(fmt.Sprintf("godice.%s requires 1 argument: expression (string)", name))
		}
		result, err := roll(args[0].String())
		if err != nil {
			jsThrow(fmt.Sprintf("godice.%s: %s", name, errorMessage(err)))
		}
		return encode(name, result)
	})
}

// jsCompile implements godice.compile(expression) → { roll() → resultJSON }.
func jsCompile(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("godice.compile requires 1 argument: expression (string)")
	}

	expr, err := godice.Compile(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("godice.compile: %s", errorMessage(err)))
	}

	ev := evaluator.New()

	rollFn := js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
		r, e := ev.EvalFresh(context.Background(), expr)
		if e != nil {
			jsThrow(fmt.Sprintf("compiled.roll: %s", errorMessage(e)))
		}
		return encode("compiled.roll", r)
	})

	return js.ValueOf(map[string]interface{}{"roll": rollFn})
}

func main() {
	api := map[string]interface{}{
		"roll":    rollFunc("roll", godice.Roll),
		"rollMin": rollFunc("rollMin", godice.RollMin),
		"rollMax": rollFunc("rollMax", godice.RollMax),
		"compile": js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return godice.Version()
		}),
	}
	js.Global().Set("godice", js.ValueOf(api))

	// Block forever — the JS event loop owns execution from here.
	select {}
}
