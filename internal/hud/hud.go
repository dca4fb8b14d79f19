// Package hud builds the driver-facing status line and reports it.
package hud

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cxd309/lifeflow-engine/internal/route"
	"github.com/cxd309/lifeflow-engine/internal/vehicle"
)

// Status is what the HUD shows for one frame.
type Status struct {
	Step       int     `json:"step"` // 1-based
	TotalSteps int     `json:"total_steps"`
	StreetName string  `json:"street_name,omitempty"`
	Progress   float64 `json:"progress"` // percent
	Speed      float64 `json:"speed"`
	LightsOn   bool    `json:"lights_on"`
	Arrived    bool    `json:"arrived"`
}

// NewStatus builds the HUD status from a vehicle snapshot and the route it
// is following.
func NewStatus(s vehicle.State, steps []route.Step) Status {
	st := Status{
		TotalSteps: len(steps),
		Progress:   s.StepProgress,
		Speed:      s.Speed,
		LightsOn:   s.LightsOn,
		Arrived:    len(steps) > 0 && s.WaypointIndex >= len(steps),
	}
	idx := min(s.WaypointIndex, len(steps)-1)
	if idx >= 0 {
		st.Step = idx + 1
		st.StreetName = steps[idx].StreetName
	}
	if st.Arrived {
		st.Progress = 100
	}
	return st
}

// String renders the status as a single HUD line.
func (s Status) String() string {
	lights := "off"
	if s.LightsOn {
		lights = "on"
	}
	if s.Arrived {
		return fmt.Sprintf("Arrived | Speed: %.1f | Lights: %s", s.Speed, lights)
	}
	line := fmt.Sprintf("Step %d/%d | Progress: %.0f%% | Speed: %.1f | Lights: %s",
		s.Step, s.TotalSteps, s.Progress, s.Speed, lights)
	if s.StreetName != "" {
		line += " | " + s.StreetName
	}
	return line
}

// Reporter receives the HUD status once per frame.
type Reporter interface {
	Report(frame int, s Status)
}

// Discard drops every report.
type Discard struct{}

func (Discard) Report(int, Status) {}

// LogReporter writes the status through zerolog whenever the step changes and
// every Every frames otherwise. Every <= 0 only logs step changes.
type LogReporter struct {
	Logger zerolog.Logger
	Every  int

	started  bool
	lastStep int
	arrived  bool
}

// NewLogReporter creates a LogReporter logging every frames.
func NewLogReporter(logger zerolog.Logger, every int) *LogReporter {
	return &LogReporter{Logger: logger, Every: every}
}

func (r *LogReporter) Report(frame int, s Status) {
	changed := !r.started || s.Step != r.lastStep || s.Arrived != r.arrived
	r.started, r.lastStep, r.arrived = true, s.Step, s.Arrived
	if !changed && (r.Every <= 0 || frame%r.Every != 0) {
		return
	}
	r.Logger.Info().
		Int("frame", frame).
		Bool("step_changed", changed).
		Int("step", s.Step).
		Int("total_steps", s.TotalSteps).
		Float64("progress", s.Progress).
		Float64("speed", s.Speed).
		Bool("lights_on", s.LightsOn).
		Msg(s.String())
}
