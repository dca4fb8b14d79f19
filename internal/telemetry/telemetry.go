// Package telemetry records per-frame vehicle samples, persists them and
// summarises a drive.
package telemetry

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/cxd309/lifeflow-engine/internal/vehicle"
)

// Sample is one frame of the ambulance's state.
type Sample struct {
	Frame         int     `json:"frame"`
	Time          float64 `json:"time"` // seconds since start
	Speed         float64 `json:"speed"`
	WaypointIndex int     `json:"current_waypoint_index"`
	Progress      float64 `json:"step_progress"`
	X             float64 `json:"x"`
	Z             float64 `json:"z"`
}

// NewSample captures s at frame.
func NewSample(frame int, t float64, s vehicle.State) Sample {
	return Sample{
		Frame:         frame,
		Time:          t,
		Speed:         s.Speed,
		WaypointIndex: s.WaypointIndex,
		Progress:      s.StepProgress,
		X:             s.Position.X(),
		Z:             s.Position.Z(),
	}
}

// Recorder receives one sample per frame.
type Recorder interface {
	Record(s Sample) error
}

// Memory keeps samples in a slice.
type Memory struct {
	Samples []Sample
}

func (m *Memory) Record(s Sample) error {
	m.Samples = append(m.Samples, s)
	return nil
}

// Summary describes the speed profile of a drive.
type Summary struct {
	Samples   int     `json:"samples"`
	MeanSpeed float64 `json:"mean_speed"`
	MaxSpeed  float64 `json:"max_speed"`
	StdDev    float64 `json:"std_dev"`
	P85Speed  float64 `json:"p85_speed"`
	Distance  float64 `json:"distance"` // path length in world units
}

// Summarize computes speed statistics over samples.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	speeds := make([]float64, len(samples))
	sum := Summary{Samples: len(samples), MaxSpeed: math.Inf(-1)}
	for i, s := range samples {
		speeds[i] = s.Speed
		sum.MaxSpeed = math.Max(sum.MaxSpeed, s.Speed)
		if i > 0 {
			sum.Distance += math.Hypot(s.X-samples[i-1].X, s.Z-samples[i-1].Z)
		}
	}
	if len(speeds) > 1 {
		sum.MeanSpeed, sum.StdDev = stat.MeanStdDev(speeds, nil)
	} else {
		sum.MeanSpeed = speeds[0]
	}
	slices.Sort(speeds)
	sum.P85Speed = stat.Quantile(0.85, stat.Empirical, speeds, nil)
	return sum
}
