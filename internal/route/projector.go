package route

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/wroge/wgs84"
)

// Projector maps WGS84 lat/lng onto the flat game plane.
// Coordinates are projected to web mercator (EPSG:3857) in metres, translated
// so the origin sits at (0, 0, 0), and scaled. East is +x and north is -z,
// so the canonical forward axis (0, 0, -1) points north.
type Projector struct {
	OriginLat float64
	OriginLng float64
	Scale     float64

	toMercator       func(a, b, c float64) (float64, float64, float64)
	originX, originY float64
}

// NewProjector returns a Projector centred on the given coordinate.
// A non-positive scale is treated as 1.
func NewProjector(originLat, originLng, scale float64) *Projector {
	if scale <= 0 {
		scale = 1
	}
	p := &Projector{
		OriginLat:  originLat,
		OriginLng:  originLng,
		Scale:      scale,
		toMercator: wgs84.EPSG().Transform(4326, 3857),
	}
	p.originX, p.originY, _ = p.toMercator(originLng, originLat, 0)
	return p
}

// Mercator returns the EPSG:3857 x/y of a coordinate, in metres.
func (p *Projector) Mercator(lat, lng float64) (float64, float64) {
	x, y, _ := p.toMercator(lng, lat, 0)
	return x, y
}

// Project converts a coordinate into a game-plane point with y = 0.
func (p *Projector) Project(lat, lng float64) mgl64.Vec3 {
	x, y := p.Mercator(lat, lng)
	return mgl64.Vec3{
		(x - p.originX) * p.Scale,
		0,
		-(y - p.originY) * p.Scale,
	}
}

// ProjectorFor returns a Projector whose origin is the first step's start.
func ProjectorFor(steps []Step, scale float64) *Projector {
	if len(steps) == 0 {
		return NewProjector(0, 0, scale)
	}
	return NewProjector(steps[0].FromLat, steps[0].FromLng, scale)
}
