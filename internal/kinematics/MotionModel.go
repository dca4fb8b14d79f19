// Package kinematics defines the MotionModel interface for the player vehicle's
// per-tick acceleration, steering and speed rules, along with built-in
// implementations and the timestep policies used to integrate position.
//
// Adding a new handling model requires only implementing MotionModel and
// registering it in ParseModel. The vehicle controller itself never needs to
// change.
package kinematics

import (
	"encoding/json"
	"fmt"
)

// Throttle is the longitudinal command derived from the held keys for one tick.
type Throttle int

const (
	ThrottleNone Throttle = iota
	ThrottleForward
	ThrottleBackward
)

// SteerDirection is the lateral command derived from the held keys for one tick.
type SteerDirection int

const (
	SteerNone SteerDirection = iota
	SteerLeft
	SteerRight
)

// MotionModel is the handling contract every vehicle model must satisfy.
// Speeds are in world units per second, steering and heading in radians.
// Acceleration, steering and braking steps are applied once per tick.
type MotionModel interface {
	// MaxSpeed returns the forward speed cap. Reverse is capped at half of it.
	MaxSpeed() float64

	// MaxSteering returns the steering angle cap (both directions).
	MaxSteering() float64

	// WaypointThreshold returns the distance to a segment's end point at which
	// the vehicle is considered to have reached it.
	WaypointThreshold() float64

	// Accelerate returns the acceleration after applying one tick of throttle
	// and, if braking, the extra brake damping.
	Accelerate(a float64, t Throttle, braking bool) float64

	// Steer returns the steering angle after one tick of input.
	Steer(s float64, d SteerDirection) float64

	// IntegrateSpeed adds a to v, clamps the result to [-MaxSpeed/2, MaxSpeed]
	// and, if braking, pulls it toward zero without crossing it.
	IntegrateSpeed(v, a float64, braking bool) float64

	// HeadingDelta returns the heading change for one tick at speed v.
	// It is zero inside the steering dead zone.
	HeadingDelta(v, steering float64) float64
}

// modelDisc is the minimum JSON structure needed to read the model discriminator.
type modelDisc struct {
	Model string `json:"model"`
}

// ParseModel resolves a JSON vehicle model. The object must contain a "model"
// discriminator key that selects the concrete implementation; the rest of the
// object is forwarded to that implementation's own unmarshaler. An empty
// document yields DefaultArcade.
//
// Supported models:
//   - "arcade": fixed per-tick steps and geometric damping.
func ParseModel(data []byte) (MotionModel, error) {
	if len(data) == 0 || string(data) == "null" {
		return DefaultArcade(), nil
	}

	var disc modelDisc
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, fmt.Errorf("reading vehicle model discriminator: %w", err)
	}

	switch disc.Model {
	case ArcadeModelName, "":
		a := DefaultArcade()
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parsing arcade model: %w", err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown vehicle model %q", disc.Model)
	}
}
