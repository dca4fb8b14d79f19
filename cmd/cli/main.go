// Command cli replays a scripted drive headlessly. It reads a SimulationInput
// JSON from a file argument (or stdin), runs it, and writes the
// SimulationLog JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cxd309/lifeflow-engine/internal/engine"
	"github.com/cxd309/lifeflow-engine/internal/logging"
	"github.com/cxd309/lifeflow-engine/internal/telemetry"
)

var (
	logLevel  = flag.String("log-level", "warn", "Log level written to stderr")
	pretty    = flag.Bool("pretty", false, "Indent the output JSON")
	chartFile = flag.String("chart", "", "Write an HTML speed chart of the run to this file")
)

func main() {
	flag.Parse()

	var (
		data []byte
		err  error
	)
	if flag.NArg() > 0 {
		data, err = os.ReadFile(flag.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}

	result, err := run(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(result))
}

func run(data []byte) ([]byte, error) {
	var in engine.SimulationInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing input JSON: %w", err)
	}

	logger := logging.New(*logLevel, os.Stderr, nil)
	ctx := context.Background()
	sim, err := engine.NewSimulation(ctx, in, logger)
	if err != nil {
		return nil, err
	}
	log, err := sim.Run(ctx)
	if err != nil {
		return nil, err
	}

	if *chartFile != "" {
		if err := writeChart(*chartFile, in.Meta.SimulationID, log); err != nil {
			return nil, err
		}
	}

	if *pretty {
		return json.MarshalIndent(log, "", "  ")
	}
	return json.Marshal(log)
}

func writeChart(path, title string, log engine.SimulationLog) error {
	samples := make([]telemetry.Sample, len(log.Output))
	for i, row := range log.Output {
		samples[i] = telemetry.NewSample(row.Frame, row.Timestamp, row.Vehicle)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()
	return telemetry.RenderChart(f, title, samples)
}
