//go:build js && wasm

// Command wasm exposes headless drive replays to the browser via WebAssembly.
// After loading, it registers two global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString
//	summarizeRoute(stepsJSON) -> jsonString
//
// runSimulation takes a SimulationInput and returns a SimulationLog, the same
// contract the cli command uses. summarizeRoute takes the step list returned
// by the route service and returns its distance, bounds and ETA.
package main

import (
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/cxd309/lifeflow-engine/internal/engine"
	"github.com/cxd309/lifeflow-engine/internal/route"
)

type routeSummary struct {
	route.Summary
	ETASeconds float64 `json:"eta_seconds"`
}

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	js.Global().Set("summarizeRoute", js.FuncOf(summarizeRoute))
	select {} // keep the WASM module alive until the page is closed
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("no input provided")
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return result
}

func summarizeRoute(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("no route provided")
	}

	var steps []route.Step
	if err := json.Unmarshal([]byte(args[0].String()), &steps); err != nil {
		return errorResult("parsing route: " + err.Error())
	}
	s, err := route.Summarize(steps)
	if err != nil {
		return errorResult(err.Error())
	}
	b, err := json.Marshal(routeSummary{
		Summary:    s,
		ETASeconds: route.EstimateTravelTime(steps, time.Now(), 1).Seconds(),
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return string(b)
}

func errorResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}
