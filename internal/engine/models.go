package engine

import (
	"encoding/json"

	"github.com/cxd309/lifeflow-engine/internal/camera"
	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/hud"
	"github.com/cxd309/lifeflow-engine/internal/input"
	"github.com/cxd309/lifeflow-engine/internal/route"
	"github.com/cxd309/lifeflow-engine/internal/telemetry"
	"github.com/cxd309/lifeflow-engine/internal/traffic"
	"github.com/cxd309/lifeflow-engine/internal/vehicle"
)

// SimulationMeta holds the identity and timing parameters for a headless run.
type SimulationMeta struct {
	SimulationID  string  `json:"simulation_id"`
	RunTime       float64 `json:"run_time"`  // seconds
	TimeStep      float64 `json:"time_step"` // seconds; 0 = nominal frame
	Scale         float64 `json:"scale"`     // world units per metre; 0 = 1
	Seed          uint64  `json:"seed"`
	StopOnArrival bool    `json:"stop_on_arrival"`
}

// TrafficInput enables traffic in a headless run. Drivers replaces the
// built-in driver set when non-empty. Omitted settings keep their defaults.
type TrafficInput struct {
	traffic.Config
	Drivers []drivers.Driver `json:"drivers,omitempty"`
}

func (t *TrafficInput) UnmarshalJSON(data []byte) error {
	type plain TrafficInput
	p := plain{Config: traffic.DefaultConfig()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = TrafficInput(p)
	return nil
}

// SimulationInput is the JSON-serialisable input to a headless run.
type SimulationInput struct {
	Meta    SimulationMeta  `json:"simulation_meta"`
	Route   []route.Step    `json:"route"`
	Vehicle json.RawMessage `json:"vehicle,omitempty"` // kinematics model; default arcade
	Script  []input.Span    `json:"script"`
	Traffic *TrafficInput   `json:"traffic,omitempty"`
}

// FrameLog is the state of the game after one tick.
type FrameLog struct {
	Frame     int                  `json:"frame"`
	Timestamp float64              `json:"timestamp"` // seconds, after this tick
	Keys      []input.Key          `json:"keys,omitempty"`
	Vehicle   vehicle.State        `json:"vehicle"`
	Lights    vehicle.Lights       `json:"lights"`
	Camera    camera.Pose          `json:"camera"`
	HUD       hud.Status           `json:"hud"`
	Advanced  bool                 `json:"advanced"`
	Yields    []traffic.YieldEvent `json:"yields,omitempty"`
	Traffic   []traffic.Car        `json:"traffic,omitempty"`
}

// SimulationLog is the complete output of a headless run.
type SimulationLog struct {
	Meta          SimulationMeta    `json:"simulation_meta"`
	Route         route.Summary     `json:"route"`
	ETASeconds    float64           `json:"eta_seconds"`
	DriversSource drivers.Source    `json:"drivers_source,omitempty"`
	Telemetry     telemetry.Summary `json:"telemetry"`
	Output        []FrameLog        `json:"output"`
}
