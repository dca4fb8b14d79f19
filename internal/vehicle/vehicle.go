// Package vehicle implements the player's ambulance: a per-tick kinematic
// controller that reads held keys, integrates speed, heading and position,
// and follows the route's waypoint segments.
package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/lifeflow-engine/internal/input"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
	"github.com/cxd309/lifeflow-engine/internal/route"
)

// ResetHeight is the y the vehicle is placed at on reset, just above the
// road plane.
const ResetHeight = 0.1

var (
	forwardAxis = mgl64.Vec3{0, 0, -1}
	upAxis      = mgl64.Vec3{0, 1, 0}
)

// State is a point-in-time snapshot of the vehicle.
type State struct {
	Position        mgl64.Vec3 `json:"position"`
	Heading         float64    `json:"heading"` // yaw, radians
	Speed           float64    `json:"speed"`
	Acceleration    float64    `json:"acceleration"`
	Steering        float64    `json:"steering"`
	WaypointIndex   int        `json:"current_waypoint_index"`
	StepProgress    float64    `json:"step_progress"` // percent, [0, 100]
	LightsOn        bool       `json:"lights_on"`
	LightBlinkTimer float64    `json:"light_blink_timer"` // seconds
}

// Vehicle is the ambulance controller. It exclusively owns its state.
type Vehicle struct {
	model kinematics.MotionModel
	start mgl64.Vec3

	position     mgl64.Vec3
	heading      float64
	speed        float64
	acceleration float64
	steering     float64
	tracker      route.Tracker
	lightsOn     bool
	blinkTimer   float64
}

// New creates a vehicle at start, facing the forward axis, lights on.
func New(model kinematics.MotionModel, start mgl64.Vec3) *Vehicle {
	return &Vehicle{
		model:    model,
		start:    start,
		position: start,
		lightsOn: true,
	}
}

// Update advances the vehicle by one tick. dt is the integration step in
// seconds and only affects position and the light timer.
func (v *Vehicle) Update(src input.Source, waypoints []route.Segment, dt float64) (advanced bool) {
	v.handleInput(src, waypoints)
	v.updatePhysics(src, dt)
	advanced = v.tracker.Follow(v.position, waypoints, v.model.WaypointThreshold())
	v.blinkTimer += dt
	return advanced
}

func (v *Vehicle) handleInput(src input.Source, waypoints []route.Segment) {
	braking := src.IsPressed(input.Brake)

	throttle := kinematics.ThrottleNone
	switch {
	case src.IsPressed(input.Forward):
		throttle = kinematics.ThrottleForward
	case src.IsPressed(input.Backward):
		throttle = kinematics.ThrottleBackward
	}
	v.acceleration = v.model.Accelerate(v.acceleration, throttle, braking)

	steer := kinematics.SteerNone
	switch {
	case src.IsPressed(input.Left):
		steer = kinematics.SteerLeft
	case src.IsPressed(input.Right):
		steer = kinematics.SteerRight
	}
	v.steering = v.model.Steer(v.steering, steer)

	// Level-sensitive: flips on every tick the key is held.
	if src.IsPressed(input.ToggleLights) {
		v.lightsOn = !v.lightsOn
	}

	if src.IsPressed(input.Reset) {
		start := v.start
		if len(waypoints) > 0 {
			start = waypoints[0].From
		}
		v.Reset(start)
	}
}

func (v *Vehicle) updatePhysics(src input.Source, dt float64) {
	v.speed = v.model.IntegrateSpeed(v.speed, v.acceleration, src.IsPressed(input.Brake))
	v.heading += v.model.HeadingDelta(v.speed, v.steering)
	v.position = v.position.Add(v.Forward().Mul(v.speed * dt))
}

// Forward returns the unit vector the vehicle is facing.
func (v *Vehicle) Forward() mgl64.Vec3 {
	return mgl64.QuatRotate(v.heading, upAxis).Rotate(forwardAxis)
}

// Reset moves the vehicle to start, lifted to ResetHeight, and clears its
// motion, route progress and light timer. Steering and the light switch are
// kept.
func (v *Vehicle) Reset(start mgl64.Vec3) {
	v.position = mgl64.Vec3{start.X(), ResetHeight, start.Z()}
	v.heading = 0
	v.speed = 0
	v.acceleration = 0
	v.tracker.Reset()
	v.blinkTimer = 0
}

// State returns a snapshot of the vehicle.
func (v *Vehicle) State() State {
	return State{
		Position:        v.position,
		Heading:         v.heading,
		Speed:           v.speed,
		Acceleration:    v.acceleration,
		Steering:        v.steering,
		WaypointIndex:   v.tracker.Index,
		StepProgress:    v.tracker.Progress,
		LightsOn:        v.lightsOn,
		LightBlinkTimer: v.blinkTimer,
	}
}

// Lights returns the current light bar render state.
func (v *Vehicle) Lights() Lights {
	return LightsAt(v.blinkTimer, v.lightsOn)
}

// Model returns the vehicle's motion model.
func (v *Vehicle) Model() kinematics.MotionModel { return v.model }
