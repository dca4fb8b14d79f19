package route

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
)

// Bounds is a lat/lng bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Summary holds the headline figures of a calculated route.
type Summary struct {
	Steps          int     `json:"steps"`
	DistanceMeters float64 `json:"distance_meters"` // sum of step distances reported by the service
	GeometryMeters float64 `json:"geometry_meters"` // length of the projected polyline
	Bounds         Bounds  `json:"bounds"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
}

// routeXYs returns the lng/lat of the first start and then every end.
func routeXYs(steps []Step) []geom.XY {
	if len(steps) == 0 {
		return nil
	}
	xys := make([]geom.XY, 0, len(steps)+1)
	xys = append(xys, geom.XY{X: steps[0].FromLng, Y: steps[0].FromLat})
	for _, st := range steps {
		xys = append(xys, geom.XY{X: st.ToLng, Y: st.ToLat})
	}
	return xys
}

// lineString builds a line through xys. Points that all coincide give the
// empty line rather than an error.
func lineString(xys []geom.XY) (geom.LineString, error) {
	if !hasDistinct(xys) {
		return geom.LineString{}, nil
	}
	coords := make([]float64, 0, 2*len(xys))
	for _, xy := range xys {
		coords = append(coords, xy.X, xy.Y)
	}
	ls, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("building route polyline: %w", err)
	}
	return ls, nil
}

func hasDistinct(xys []geom.XY) bool {
	for _, xy := range xys {
		if xy != xys[0] {
			return true
		}
	}
	return false
}

// Polyline returns the route as a lng/lat line string, first start then every
// end. A route that never leaves its start point gives the empty line.
func Polyline(steps []Step) (geom.LineString, error) {
	return lineString(routeXYs(steps))
}

// Summarize computes distance, bounds and endpoints for a route. Zero-length
// routes are summarised with zero geometry length.
func Summarize(steps []Step) (Summary, error) {
	if len(steps) == 0 {
		return Summary{}, ErrNoRoute
	}

	s := Summary{
		Steps:       len(steps),
		Origin:      steps[0].From,
		Destination: steps[len(steps)-1].To,
	}
	for _, st := range steps {
		s.DistanceMeters += st.DistanceMeters
	}

	env, err := geom.NewEnvelope(routeXYs(steps))
	if err != nil {
		return Summary{}, fmt.Errorf("route bounds: %w", err)
	}
	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return Summary{}, fmt.Errorf("route has an empty envelope")
	}
	s.Bounds = Bounds{MinLat: lo.Y, MinLng: lo.X, MaxLat: hi.Y, MaxLng: hi.X}

	// Length in metres needs a projected line; mercator stretches with
	// latitude, so correct by the scale factor at the route's origin.
	p := ProjectorFor(steps, 1)
	points := Points(steps, p)
	projected := make([]geom.XY, len(points))
	for i, pt := range points {
		projected[i] = geom.XY{X: pt.X(), Y: pt.Z()}
	}
	line, err := lineString(projected)
	if err != nil {
		return Summary{}, err
	}
	s.GeometryMeters = line.Length() * mercatorScale(steps[0].FromLat)

	return s, nil
}
