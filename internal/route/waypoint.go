package route

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Segment is one directed leg of the route in game-plane coordinates.
type Segment struct {
	From mgl64.Vec3 `json:"from"`
	To   mgl64.Vec3 `json:"to"`
}

// Length returns the straight-line length of the segment.
func (s Segment) Length() float64 { return s.To.Sub(s.From).Len() }

// Direction returns the unit vector from From to To, or zero for a degenerate segment.
func (s Segment) Direction() mgl64.Vec3 {
	d := s.To.Sub(s.From)
	if d.Len() == 0 {
		return mgl64.Vec3{}
	}
	return d.Normalize()
}

// Heading returns the yaw that turns the forward axis (0, 0, -1) toward To.
func (s Segment) Heading() float64 {
	d := s.To.Sub(s.From)
	return math.Atan2(-d.X(), -d.Z())
}

// Lerp returns the point at fraction t along the segment.
func (s Segment) Lerp(t float64) mgl64.Vec3 {
	return s.From.Add(s.To.Sub(s.From).Mul(t))
}

// Waypoints converts route steps into segments, one per step, in travel order.
func Waypoints(steps []Step, p *Projector) []Segment {
	segments := make([]Segment, 0, len(steps))
	for _, st := range steps {
		segments = append(segments, Segment{
			From: p.Project(st.FromLat, st.FromLng),
			To:   p.Project(st.ToLat, st.ToLng),
		})
	}
	return segments
}

// Points returns the first step's start followed by every step's end.
func Points(steps []Step, p *Projector) []mgl64.Vec3 {
	if len(steps) == 0 {
		return nil
	}
	points := make([]mgl64.Vec3, 0, len(steps)+1)
	points = append(points, p.Project(steps[0].FromLat, steps[0].FromLng))
	for _, st := range steps {
		points = append(points, p.Project(st.ToLat, st.ToLng))
	}
	return points
}
