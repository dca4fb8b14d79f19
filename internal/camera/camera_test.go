package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestFollower_PoseBehindAndAbove(t *testing.T) {
	f := DefaultFollower()
	pos := mgl64.Vec3{10, 0, 20}

	p := f.Pose(pos, 0)
	assert.True(t, p.Eye.ApproxEqual(mgl64.Vec3{10, 8, 35}), "eye %v", p.Eye)
	assert.Equal(t, pos, p.Target)

	// facing west (-x), the camera sits to the east
	p = f.Pose(pos, math.Pi/2)
	assert.InDeltaSlice(t, []float64{25, 8, 20}, p.Eye[:], 1e-9, "eye %v", p.Eye)
}

func TestFollower_HeightIsAbsoluteOffset(t *testing.T) {
	f := Follower{Distance: 5, Height: 2}
	p := f.Pose(mgl64.Vec3{0, 1, 0}, 0)
	assert.InDelta(t, 3, p.Eye.Y(), 1e-12)
	assert.InDelta(t, 5, p.Eye.Z(), 1e-12)
}

func TestPose_ViewMapsTargetOntoAxis(t *testing.T) {
	p := DefaultFollower().Pose(mgl64.Vec3{3, 0, -4}, 0.7)
	target := p.View().Mul4x1(p.Target.Vec4(1))
	// in view space the target lies straight ahead on -z
	assert.InDelta(t, 0, target.X(), 1e-9)
	assert.InDelta(t, 0, target.Y(), 1e-9)
	assert.Less(t, target.Z(), 0.0)
}
