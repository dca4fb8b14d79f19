package kinematics

import "math"

// ArcadeModelName is the JSON discriminator string for the Arcade model.
const ArcadeModelName = "arcade"

// Arcade implements MotionModel with fixed per-tick steps and geometric decay.
// This is the default handling of the ambulance.
//
// JSON discriminator: "model": "arcade"
type Arcade struct {
	MaxSpeedVal       float64 `json:"max_speed" mapstructure:"maxSpeed"`
	AccelStep         float64 `json:"accel_step" mapstructure:"accelStep"`
	AccelCap          float64 `json:"accel_cap" mapstructure:"accelCap"`
	AccelDamping      float64 `json:"accel_damping" mapstructure:"accelDamping"`            // per tick, coasting
	BrakeAccelDamping float64 `json:"brake_accel_damping" mapstructure:"brakeAccelDamping"` // per tick, on top of AccelDamping
	BrakeSpeedStep    float64 `json:"brake_speed_step" mapstructure:"brakeSpeedStep"`
	SteeringStep      float64 `json:"steering_step" mapstructure:"steeringStep"`
	MaxSteeringVal    float64 `json:"max_steering" mapstructure:"maxSteering"`
	SteeringDamping   float64 `json:"steering_damping" mapstructure:"steeringDamping"`
	SteeringDeadZone  float64 `json:"steering_dead_zone" mapstructure:"steeringDeadZone"` // |v| at or below which heading is frozen
	EffectiveSpeedCap float64 `json:"effective_speed_cap" mapstructure:"effectiveSpeedCap"`
	Threshold         float64 `json:"waypoint_threshold" mapstructure:"waypointThreshold"`
}

// DefaultArcade returns the stock ambulance handling.
func DefaultArcade() Arcade {
	return Arcade{
		MaxSpeedVal:       6,
		AccelStep:         0.1,
		AccelCap:          5,
		AccelDamping:      0.95,
		BrakeAccelDamping: 0.9,
		BrakeSpeedStep:    0.4,
		SteeringStep:      0.003,
		MaxSteeringVal:    0.02,
		SteeringDamping:   0.9,
		SteeringDeadZone:  0.1,
		EffectiveSpeedCap: 2,
		Threshold:         5,
	}
}

func (m Arcade) MaxSpeed() float64          { return m.MaxSpeedVal }
func (m Arcade) MaxSteering() float64       { return m.MaxSteeringVal }
func (m Arcade) WaypointThreshold() float64 { return m.Threshold }

func (m Arcade) Accelerate(a float64, t Throttle, braking bool) float64 {
	switch t {
	case ThrottleForward:
		a = math.Min(a+m.AccelStep, m.AccelCap)
	case ThrottleBackward:
		a = math.Max(a-m.AccelStep, -m.AccelCap)
	default:
		a *= m.AccelDamping
	}
	if braking {
		a *= m.BrakeAccelDamping
	}
	return a
}

func (m Arcade) Steer(s float64, d SteerDirection) float64 {
	switch d {
	case SteerLeft:
		return math.Max(s-m.SteeringStep, -m.MaxSteeringVal)
	case SteerRight:
		return math.Min(s+m.SteeringStep, m.MaxSteeringVal)
	default:
		return s * m.SteeringDamping
	}
}

func (m Arcade) IntegrateSpeed(v, a float64, braking bool) float64 {
	v = clamp(v+a, -m.MaxSpeedVal/2, m.MaxSpeedVal)
	if !braking {
		return v
	}
	// Pull toward zero by a fixed step without overshooting.
	if v > 0 {
		return math.Max(0, v-m.BrakeSpeedStep)
	}
	if v < 0 {
		return math.Min(0, v+m.BrakeSpeedStep)
	}
	return v
}

func (m Arcade) HeadingDelta(v, steering float64) float64 {
	if math.Abs(v) <= m.SteeringDeadZone || m.MaxSpeedVal <= 0 {
		return 0
	}
	effective := math.Min(v, m.EffectiveSpeedCap)
	return -steering * effective / m.MaxSpeedVal
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}
