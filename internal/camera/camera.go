// Package camera computes the trailing chase-camera pose for the vehicle.
package camera

import "github.com/go-gl/mathgl/mgl64"

var (
	forwardAxis = mgl64.Vec3{0, 0, -1}
	upAxis      = mgl64.Vec3{0, 1, 0}
)

// Default chase offsets.
const (
	DefaultDistance = 15
	DefaultHeight   = 8
)

// Pose is a camera placement looking at a target.
type Pose struct {
	Eye    mgl64.Vec3 `json:"eye"`
	Target mgl64.Vec3 `json:"target"`
}

// View returns the right-handed view matrix for the pose.
func (p Pose) View() mgl64.Mat4 {
	return mgl64.LookAtV(p.Eye, p.Target, upAxis)
}

// Follower places the camera Distance behind the vehicle and Height above it.
// It holds no state between frames.
type Follower struct {
	Distance float64 `json:"follow_distance" mapstructure:"followDistance"`
	Height   float64 `json:"height" mapstructure:"height"`
}

// DefaultFollower returns the standard chase offsets.
func DefaultFollower() Follower {
	return Follower{Distance: DefaultDistance, Height: DefaultHeight}
}

// Pose computes the camera for a vehicle at position with the given heading.
func (f Follower) Pose(position mgl64.Vec3, heading float64) Pose {
	forward := mgl64.QuatRotate(heading, upAxis).Rotate(forwardAxis)
	offset := forward.Mul(-f.Distance)
	offset[1] = f.Height
	return Pose{
		Eye:    position.Add(offset),
		Target: position,
	}
}
