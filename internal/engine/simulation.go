package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/input"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
	"github.com/cxd309/lifeflow-engine/internal/route"
	"github.com/cxd309/lifeflow-engine/internal/telemetry"
)

// Limits on a headless run.
const (
	MaxRunTime = 3600.0  // seconds
	MaxFrames  = 1 << 20 // ticks
)

// Simulation replays a key script against a route without a window.
type Simulation struct {
	Meta     SimulationMeta
	game     *Game
	script   *input.Script
	step     kinematics.FixedStep
	samples  *telemetry.Memory
	route    route.Summary
	eta      time.Duration
	frames   int
}

// staticDrivers serves a fixed driver list as if fetched.
type staticDrivers []drivers.Driver

func (s staticDrivers) Fetch(context.Context) ([]drivers.Driver, error) {
	return s, nil
}

// NewSimulation validates input and builds the game it will drive.
func NewSimulation(ctx context.Context, in SimulationInput, logger zerolog.Logger) (*Simulation, error) {
	runTime, timeStep := in.Meta.RunTime, in.Meta.TimeStep
	if math.IsNaN(runTime) || runTime <= 0 || runTime > MaxRunTime {
		return nil, fmt.Errorf("run_time must be in (0, %v], got %v", MaxRunTime, runTime)
	}
	if math.IsNaN(timeStep) || math.IsInf(timeStep, 0) || timeStep < 0 {
		return nil, fmt.Errorf("time_step must be finite and not negative, got %v", timeStep)
	}
	step := kinematics.FixedStep{Duration: timeStep}
	frames := math.Floor(runTime/step.Next() + 1e-9)
	if frames > MaxFrames {
		return nil, fmt.Errorf("run_time %v at time_step %v needs %v frames, more than %d", runTime, step.Next(), frames, MaxFrames)
	}

	summary, err := route.Summarize(in.Route)
	if err != nil {
		return nil, fmt.Errorf("summarising route: %w", err)
	}

	model, err := kinematics.ParseModel(in.Vehicle)
	if err != nil {
		return nil, err
	}

	script, err := input.NewScript(in.Script)
	if err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}

	samples := &telemetry.Memory{}
	deps := Dependencies{
		Model:    model,
		Scale:    in.Meta.Scale,
		Rand:     rand.New(rand.NewPCG(in.Meta.Seed, in.Meta.Seed^0x9e3779b97f4a7c15)),
		Recorder: samples,
		Logger:   logger,
	}
	if in.Traffic != nil {
		cfg := in.Traffic.Config
		deps.Traffic = &cfg
		if len(in.Traffic.Drivers) > 0 {
			deps.Drivers = staticDrivers(in.Traffic.Drivers)
		}
	}

	game, err := NewGame(ctx, in.Route, deps)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		Meta:    in.Meta,
		game:    game,
		script:  script,
		step:    step,
		frames:  int(frames),
		samples: samples,
		route:   summary,
		eta:     route.EstimateTravelTime(in.Route, time.Now(), 1),
	}, nil
}

// Run ticks until RunTime has elapsed, or until arrival when StopOnArrival
// is set.
func (s *Simulation) Run(ctx context.Context) (SimulationLog, error) {
	dt := s.step.Next()
	out := []FrameLog{}

	for s.script.Frame() < s.frames {
		if err := ctx.Err(); err != nil {
			return SimulationLog{}, err
		}
		row, err := s.game.Tick(ctx, s.script.Next(), dt)
		if err != nil {
			return SimulationLog{}, err
		}
		out = append(out, row)

		if s.Meta.StopOnArrival && s.game.Arrived() {
			break
		}
	}

	return SimulationLog{
		Meta:          s.Meta,
		Route:         s.route,
		ETASeconds:    s.eta.Seconds(),
		DriversSource: s.game.Drivers().Source,
		Telemetry:     telemetry.Summarize(s.samples.Samples),
		Output:        out,
	}, nil
}

// RunJSON parses a SimulationInput document, runs it and returns the
// SimulationLog as JSON.
func RunJSON(inputJSON string) (string, error) {
	var in SimulationInput
	if err := json.Unmarshal([]byte(inputJSON), &in); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	ctx := context.Background()
	sim, err := NewSimulation(ctx, in, zerolog.Nop())
	if err != nil {
		return "", err
	}

	log, err := sim.Run(ctx)
	if err != nil {
		return "", err
	}

	b, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(b), nil
}
