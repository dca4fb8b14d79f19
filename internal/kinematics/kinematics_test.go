package kinematics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArcade_AccelerateClampsToCap(t *testing.T) {
	m := DefaultArcade()
	a := 0.0
	for range 100 {
		a = m.Accelerate(a, ThrottleForward, false)
	}
	assert.InDelta(t, m.AccelCap, a, 1e-9)

	for range 200 {
		a = m.Accelerate(a, ThrottleBackward, false)
	}
	assert.InDelta(t, -m.AccelCap, a, 1e-9)
}

func TestArcade_AccelerateDecaysWithoutThrottle(t *testing.T) {
	m := DefaultArcade()
	a := 5.0
	ticks := 0
	for ; ticks < 100 && a > 0.05; ticks++ {
		a = m.Accelerate(a, ThrottleNone, false)
	}
	assert.Less(t, ticks, 100)
	assert.Less(t, a, 0.05)
}

func TestArcade_BrakeDampsAcceleration(t *testing.T) {
	m := DefaultArcade()
	assert.InDelta(t, 5*0.95*0.9, m.Accelerate(5, ThrottleNone, true), 1e-9)
	assert.InDelta(t, (1.0+0.1)*0.9, m.Accelerate(1, ThrottleForward, true), 1e-9)
}

func TestArcade_SteerClamps(t *testing.T) {
	m := DefaultArcade()
	s := 0.0
	for range 50 {
		s = m.Steer(s, SteerLeft)
	}
	assert.InDelta(t, -m.MaxSteering(), s, 1e-12)
	for range 50 {
		s = m.Steer(s, SteerRight)
	}
	assert.InDelta(t, m.MaxSteering(), s, 1e-12)
	assert.InDelta(t, m.MaxSteering()*0.9, m.Steer(s, SteerNone), 1e-12)
}

func TestArcade_IntegrateSpeed(t *testing.T) {
	m := DefaultArcade()

	tests := []struct {
		name    string
		v, a    float64
		braking bool
		want    float64
	}{
		{"forward clamp", 5.5, 2, false, 6},
		{"reverse clamp", -2.5, -2, false, -3},
		{"brake forward", 3, 0, true, 2.6},
		{"brake does not overshoot forward", 0.3, 0, true, 0},
		{"brake reverse", -1, 0, true, -0.6},
		{"brake does not overshoot reverse", -0.2, 0, true, 0},
		{"brake at rest", 0, 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.IntegrateSpeed(tt.v, tt.a, tt.braking), 1e-9)
		})
	}
}

func TestArcade_HeadingDelta(t *testing.T) {
	m := DefaultArcade()
	assert.Zero(t, m.HeadingDelta(0.05, 0.02), "dead zone")
	assert.InDelta(t, -0.02*1/6.0, m.HeadingDelta(1, 0.02), 1e-12)
	// speed effectiveness is capped
	assert.InDelta(t, -0.02*2/6.0, m.HeadingDelta(6, 0.02), 1e-12)
	// reversing inverts the turn
	assert.InDelta(t, 0.02*1/6.0, m.HeadingDelta(-1, 0.02), 1e-12)
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultArcade(), m)

	m, err = ParseModel([]byte(`{"model":"arcade","max_speed":10}`))
	require.NoError(t, err)
	a, ok := m.(Arcade)
	require.True(t, ok)
	assert.Equal(t, 10.0, a.MaxSpeed())
	assert.Equal(t, DefaultArcade().AccelStep, a.AccelStep)

	_, err = ParseModel([]byte(`{"model":"bicycle"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown vehicle model")

	_, err = ParseModel([]byte(`{`))
	require.Error(t, err)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestMeasuredStep(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	ts := &MeasuredStep{Clock: clk, MaxStep: 0.1}

	assert.Equal(t, NominalFrame, ts.Next())

	clk.now = clk.now.Add(20 * time.Millisecond)
	assert.InDelta(t, 0.02, ts.Next(), 1e-9)

	clk.now = clk.now.Add(2 * time.Second)
	assert.Equal(t, 0.1, ts.Next(), "capped after a stall")
}

func TestFixedStep(t *testing.T) {
	assert.Equal(t, NominalFrame, FixedStep{}.Next())
	assert.Equal(t, 0.02, FixedStep{Duration: 0.02}.Next())
}
