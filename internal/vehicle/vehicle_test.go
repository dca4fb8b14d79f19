package vehicle

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/lifeflow-engine/internal/input"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
	"github.com/cxd309/lifeflow-engine/internal/route"
)

const dt = kinematics.NominalFrame

func straightRoute() []route.Segment {
	return []route.Segment{{From: mgl64.Vec3{0, 0, 0}, To: mgl64.Vec3{0, 0, -100}}}
}

func newTestVehicle() *Vehicle {
	return New(kinematics.DefaultArcade(), mgl64.Vec3{})
}

func TestNew(t *testing.T) {
	start := mgl64.Vec3{3, 0, 4}
	v := New(kinematics.DefaultArcade(), start)
	s := v.State()
	assert.Equal(t, start, s.Position)
	assert.True(t, s.LightsOn)
	assert.Zero(t, s.Speed)
	assert.Zero(t, s.WaypointIndex)
	assert.True(t, v.Forward().ApproxEqual(mgl64.Vec3{0, 0, -1}))
}

func TestUpdate_ForwardAdvancesWaypoint(t *testing.T) {
	v := newTestVehicle()
	segs := straightRoute()

	advanced := false
	ticks := 0
	for ; ticks < 3000 && !advanced; ticks++ {
		advanced = v.Update(input.Held(input.Forward), segs, dt)
	}
	require.True(t, advanced, "never reached the end of the segment")

	s := v.State()
	assert.Equal(t, 1, s.WaypointIndex)
	assert.Zero(t, s.StepProgress)
	assert.InDelta(t, 0, s.Position.X(), 1e-9, "no steering, no drift")
	assert.Less(t, s.Position.Z(), -95.0)
}

func TestUpdate_ProgressGrowsAlongSegment(t *testing.T) {
	v := newTestVehicle()
	segs := straightRoute()

	last := 0.0
	for range 400 {
		v.Update(input.Held(input.Forward), segs, dt)
		s := v.State()
		require.GreaterOrEqual(t, s.StepProgress, last)
		last = s.StepProgress
	}
	assert.Greater(t, last, 0.0)
	assert.Less(t, last, 100.0)
}

func TestUpdate_InvariantsUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	v := newTestVehicle()
	m := kinematics.DefaultArcade()
	segs := []route.Segment{
		{From: mgl64.Vec3{0, 0, 0}, To: mgl64.Vec3{0, 0, -10}},
		{From: mgl64.Vec3{0, 0, -10}, To: mgl64.Vec3{10, 0, -10}},
		{From: mgl64.Vec3{10, 0, -10}, To: mgl64.Vec3{10, 0, 0}},
	}
	keys := []input.Key{input.Forward, input.Backward, input.Left, input.Right, input.Brake, input.ToggleLights}

	lastIndex := 0
	for range 5000 {
		snap := input.Snapshot{}
		for _, k := range keys {
			snap[k] = rng.IntN(3) == 0
		}
		advanced := v.Update(snap, segs, dt)
		s := v.State()

		require.GreaterOrEqual(t, s.Speed, -m.MaxSpeed()/2)
		require.LessOrEqual(t, s.Speed, m.MaxSpeed())
		require.GreaterOrEqual(t, s.Steering, -m.MaxSteering())
		require.LessOrEqual(t, s.Steering, m.MaxSteering())
		require.GreaterOrEqual(t, s.WaypointIndex, lastIndex)
		require.LessOrEqual(t, s.WaypointIndex, len(segs))
		require.GreaterOrEqual(t, s.StepProgress, 0.0)
		require.LessOrEqual(t, s.StepProgress, 100.0)
		if advanced {
			require.Zero(t, s.StepProgress)
		}
		lastIndex = s.WaypointIndex
	}
}

func TestUpdate_AccelerationDecays(t *testing.T) {
	v := newTestVehicle()
	v.acceleration = 5

	ticks := 0
	for ; ticks < 100 && math.Abs(v.State().Acceleration) > 0.05; ticks++ {
		v.Update(input.Snapshot{}, nil, dt)
	}
	assert.Less(t, ticks, 100)
}

func TestUpdate_SpeedSettlesAtZero(t *testing.T) {
	v := newTestVehicle()
	v.speed = 0.05
	for range 200 {
		v.Update(input.Snapshot{}, nil, dt)
	}
	assert.InDelta(t, 0.05, v.State().Speed, 1e-9, "no acceleration, no drift")

	v.speed = 0.2
	v.Update(input.Held(input.Brake), nil, dt)
	assert.Zero(t, v.State().Speed)
	for range 10 {
		v.Update(input.Snapshot{}, nil, dt)
	}
	assert.Zero(t, v.State().Speed)
}

func TestUpdate_BrakeNeverOvershoots(t *testing.T) {
	m := kinematics.DefaultArcade()
	v := newTestVehicle()
	v.speed = 3

	prev := v.State().Speed
	for range 20 {
		v.Update(input.Held(input.Brake), nil, dt)
		s := v.State()
		require.GreaterOrEqual(t, s.Speed, 0.0)
		require.LessOrEqual(t, prev-s.Speed, m.BrakeSpeedStep+1e-12)
		prev = s.Speed
	}
	assert.Zero(t, prev)

	v.speed = -2
	v.Update(input.Held(input.Brake), nil, dt)
	assert.InDelta(t, -1.6, v.State().Speed, 1e-9)
}

func TestUpdate_SteeringTurnsOnlyWhenMoving(t *testing.T) {
	v := newTestVehicle()
	for range 30 {
		v.Update(input.Held(input.Left), nil, dt)
	}
	assert.Zero(t, v.State().Heading, "stationary vehicles do not turn")
	assert.InDelta(t, -0.02, v.State().Steering, 1e-12)

	for range 60 {
		v.Update(input.Held(input.Forward, input.Left), nil, dt)
	}
	// heading -= steering * ..., so steering left (negative) increases yaw,
	// turning the nose toward -x.
	s := v.State()
	assert.Greater(t, s.Heading, 0.0)
	assert.Less(t, s.Position.X(), 0.0)
}

func TestUpdate_EmptyWaypointsAreNoop(t *testing.T) {
	v := newTestVehicle()
	for range 500 {
		v.Update(input.Held(input.Forward), nil, dt)
		s := v.State()
		require.Zero(t, s.WaypointIndex)
		require.Zero(t, s.StepProgress)
	}
	// reset with no route returns to the start position
	v.Update(input.Held(input.Reset), nil, dt)
	assert.Equal(t, mgl64.Vec3{0, ResetHeight, 0}, v.State().Position)
}

func TestUpdate_ToggleFlipsEveryHeldTick(t *testing.T) {
	v := newTestVehicle()
	want := true
	for range 5 {
		v.Update(input.Held(input.ToggleLights), nil, dt)
		want = !want
		assert.Equal(t, want, v.State().LightsOn)
	}
	v.Update(input.Snapshot{}, nil, dt)
	assert.Equal(t, want, v.State().LightsOn)
}

func TestUpdate_ResetKey(t *testing.T) {
	v := newTestVehicle()
	segs := []route.Segment{{From: mgl64.Vec3{5, 0, 5}, To: mgl64.Vec3{5, 0, -95}}}
	for range 300 {
		v.Update(input.Held(input.Forward, input.Right), segs, dt)
	}
	require.NotZero(t, v.State().Speed)

	v.Update(input.Held(input.Reset), segs, dt)
	s := v.State()
	assert.Equal(t, mgl64.Vec3{5, ResetHeight, 5}, s.Position)
	assert.Zero(t, s.Speed)
	assert.Zero(t, s.Acceleration)
	assert.Zero(t, s.Heading)
	assert.Zero(t, s.WaypointIndex)
	assert.Zero(t, s.StepProgress)
	assert.InDelta(t, dt, s.LightBlinkTimer, 1e-12, "timer restarts from the reset tick")
}

func TestReset_Idempotent(t *testing.T) {
	v := newTestVehicle()
	segs := straightRoute()
	for range 1200 {
		v.Update(input.Held(input.Forward), segs, dt)
	}

	start := mgl64.Vec3{1, 0, 2}
	v.Reset(start)
	once := v.State()
	v.Reset(start)
	twice := v.State()

	assert.Equal(t, once, twice)
	assert.Equal(t, mgl64.Vec3{1, ResetHeight, 2}, twice.Position)
	assert.Zero(t, twice.Speed)
	assert.Zero(t, twice.WaypointIndex)
	assert.Zero(t, twice.StepProgress)
}

func TestUpdate_PositionUsesTimestep(t *testing.T) {
	a := newTestVehicle()
	b := newTestVehicle()
	for range 10 {
		a.Update(input.Held(input.Forward), nil, 0.016)
		b.Update(input.Held(input.Forward), nil, 0.032)
	}
	assert.Equal(t, a.State().Speed, b.State().Speed, "speed is per tick")
	assert.InDelta(t, 2*a.State().Position.Z(), b.State().Position.Z(), 1e-9)
}

func TestLightsAt(t *testing.T) {
	tests := []struct {
		timer     float64
		on        bool
		phase     int
		red, blue bool
	}{
		{0, true, 0, true, false},
		{0.6, true, 1, true, false},
		{1.1, true, 2, false, true},
		{1.9, true, 3, false, true},
		{2.0, true, 0, true, false},
		{1.1, false, 2, false, false},
	}
	for _, tt := range tests {
		l := LightsAt(tt.timer, tt.on)
		assert.Equal(t, tt.phase, l.Phase, "timer %v", tt.timer)
		assert.Equal(t, tt.red, l.Red.On, "red at %v", tt.timer)
		assert.Equal(t, tt.blue, l.Blue.On, "blue at %v", tt.timer)
	}

	lit := LightsAt(0, true).Red
	assert.Equal(t, Lamp{On: true, Emissive: LitEmissive, Point: LitPoint}, lit)
	dark := LightsAt(0, true).Blue
	assert.Equal(t, Lamp{Emissive: UnlitEmissive, Point: UnlitPoint}, dark)
}

func TestVehicle_LightsFollowTimer(t *testing.T) {
	v := newTestVehicle()
	for range 70 { // 1.12 s
		v.Update(input.Snapshot{}, nil, dt)
	}
	l := v.Lights()
	assert.Equal(t, 2, l.Phase)
	assert.True(t, l.Blue.On)
}
