package kinematics

import "time"

// NominalFrame is the fixed per-frame duration used when wall time is not
// measured (60 fps).
const NominalFrame = 0.016

// Timestep yields the duration, in seconds, used to integrate one tick.
type Timestep interface {
	Next() float64
}

// FixedStep always returns the same duration, independent of wall time.
type FixedStep struct {
	Duration float64
}

func (f FixedStep) Next() float64 {
	if f.Duration <= 0 {
		return NominalFrame
	}
	return f.Duration
}

// Clock abstracts wall time so MeasuredStep can be driven by tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// MeasuredStep returns the wall time elapsed since the previous call, capped
// at MaxStep. The first call returns NominalFrame.
type MeasuredStep struct {
	Clock   Clock
	MaxStep float64
	last    time.Time
}

// NewMeasuredStep returns a MeasuredStep on the system clock capped at 0.1 s.
func NewMeasuredStep() *MeasuredStep {
	return &MeasuredStep{Clock: systemClock{}, MaxStep: 0.1}
}

func (m *MeasuredStep) Next() float64 {
	if m.Clock == nil {
		m.Clock = systemClock{}
	}
	now := m.Clock.Now()
	if m.last.IsZero() {
		m.last = now
		return NominalFrame
	}
	dt := now.Sub(m.last).Seconds()
	m.last = now
	if dt < 0 {
		return 0
	}
	if m.MaxStep > 0 && dt > m.MaxStep {
		return m.MaxStep
	}
	return dt
}
