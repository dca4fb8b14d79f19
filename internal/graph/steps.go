package graph

import (
	"math"

	"github.com/cxd309/lifeflow-engine/internal/route"
)

const earthRadius = 6371008.8 // metres, mean

// haversine returns the great-circle distance in metres.
func haversine(a, b Intersection) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLng := (b.Lng - a.Lng) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Route resolves the addresses and returns the step-by-step route from start
// to end through via in order. It returns route.ErrNoRoute when start and
// end resolve to the same intersection with no via stops.
func (g *Graph) Route(start, end string, via ...string) ([]route.Step, error) {
	stops := make([]Intersection, 0, len(via)+2)
	for _, addr := range append(append([]string{start}, via...), end) {
		n, err := g.FindAddress(addr)
		if err != nil {
			return nil, err
		}
		stops = append(stops, n)
	}

	var (
		roads []Road
		total float64
	)
	for i := 1; i < len(stops); i++ {
		p, err := g.ShortestPath(stops[i-1].ID, stops[i].ID)
		if err != nil {
			return nil, err
		}
		for _, id := range p.Roads {
			r, err := g.RoadByID(id)
			if err != nil {
				return nil, err
			}
			roads = append(roads, r)
		}
		total += p.Length
	}
	if len(roads) == 0 {
		return nil, route.ErrNoRoute
	}

	dest := stops[len(stops)-1]
	steps := make([]route.Step, len(roads))
	for i, r := range roads {
		from, to := g.nodeMap[r.From], g.nodeMap[r.To]
		s := route.Step{
			Index:          i + 1,
			From:           from.Address,
			To:             to.Address,
			StreetName:     r.Name,
			RoadType:       r.Highway,
			Oneway:         route.OnewayNo,
			DistanceMeters: r.Length,
			StraightToDest: haversine(from, dest),
			Instruction:    route.InstructionContinue,
			FromLat:        from.Lat,
			FromLng:        from.Lng,
			ToLat:          to.Lat,
			ToLng:          to.Lng,
		}
		if r.Oneway {
			s.Oneway = route.OnewayYes
		}
		if r.MaxSpeed != nil {
			s.MaxSpeed = route.Limit(*r.MaxSpeed)
		}
		switch i {
		case 0:
			s.Instruction = route.InstructionStart
			s.TotalDistance = &total
		case len(roads) - 1:
			s.Instruction = route.InstructionArrive
		}
		steps[i] = s
	}
	return steps, nil
}
