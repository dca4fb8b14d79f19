// Package graph provides the street network the route service searches:
// intersections joined by directed road segments, address lookup and
// shortest-path computation.
package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// IntersectionID, RoadID, PathID are string aliases used as identifiers.
type (
	IntersectionID = string
	RoadID         = string
	PathID         = string
)

// Intersection is a node of the street network with a street address.
type Intersection struct {
	ID      IntersectionID `json:"id"`
	Address string         `json:"address"`
	Lat     float64        `json:"lat"`
	Lng     float64        `json:"lng"`
}

// Road is a directed street segment between two intersections. Two-way
// streets appear once per direction.
type Road struct {
	ID       RoadID         `json:"id"`
	From     IntersectionID `json:"from"`
	To       IntersectionID `json:"to"`
	Name     string         `json:"name"`
	Highway  string         `json:"highway"` // OSM highway class
	Oneway   bool           `json:"oneway"`
	Length   float64        `json:"length"`              // metres
	MaxSpeed *float64       `json:"max_speed,omitempty"` // km/h; nil = unknown
}

// GraphData is the serialisable form of a street network.
type GraphData struct {
	Intersections []Intersection `json:"intersections"`
	Roads         []Road         `json:"roads"`
}

// PathInfo holds the result of a shortest-path computation.
type PathInfo struct {
	ID     PathID
	Route  []IntersectionID // ordered from start to end
	Roads  []RoadID         // len(Route)-1 roads joining consecutive intersections
	Length float64          // metres
}

// Graph is a directed weighted street network with cached shortest paths.
// It is read-only after construction and safe for concurrent queries.
type Graph struct {
	intersections []Intersection
	nodeMap       map[IntersectionID]Intersection
	roadMap       map[RoadID]Road
	out           map[IntersectionID][]Road

	mu        sync.Mutex
	pathCache map[PathID]PathInfo
}

// NewGraph builds a Graph from GraphData, returning an error if any
// intersection or road reference is invalid.
func NewGraph(data GraphData) (*Graph, error) {
	g := &Graph{
		nodeMap:   make(map[IntersectionID]Intersection),
		roadMap:   make(map[RoadID]Road),
		out:       make(map[IntersectionID][]Road),
		pathCache: make(map[PathID]PathInfo),
	}
	for _, n := range data.Intersections {
		if err := g.addIntersection(n); err != nil {
			return nil, err
		}
	}
	for _, r := range data.Roads {
		if err := g.addRoad(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// LoadFile reads a JSON GraphData file.
func LoadFile(path string) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	var data GraphData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing graph %s: %w", path, err)
	}
	g, err := NewGraph(data)
	if err != nil {
		return nil, fmt.Errorf("building graph %s: %w", path, err)
	}
	return g, nil
}

func (g *Graph) addIntersection(n Intersection) error {
	if _, exists := g.nodeMap[n.ID]; exists {
		return fmt.Errorf("intersection %q already exists", n.ID)
	}
	g.intersections = append(g.intersections, n)
	g.nodeMap[n.ID] = n
	return nil
}

func (g *Graph) addRoad(r Road) error {
	if _, exists := g.roadMap[r.ID]; exists {
		return fmt.Errorf("road %q already exists", r.ID)
	}
	if _, ok := g.nodeMap[r.From]; !ok {
		return fmt.Errorf("road %q: source intersection %q not found", r.ID, r.From)
	}
	if _, ok := g.nodeMap[r.To]; !ok {
		return fmt.Errorf("road %q: target intersection %q not found", r.ID, r.To)
	}
	if r.Length < 0 {
		return fmt.Errorf("road %q: negative length %v", r.ID, r.Length)
	}
	g.roadMap[r.ID] = r
	g.out[r.From] = append(g.out[r.From], r)
	return nil
}

// pathKey returns a canonical string key for a start→end pair.
func pathKey(start, end IntersectionID) PathID { return start + "->" + end }

// Intersection looks up an intersection by ID.
func (g *Graph) Intersection(id IntersectionID) (Intersection, error) {
	n, ok := g.nodeMap[id]
	if !ok {
		return Intersection{}, fmt.Errorf("intersection %q not found", id)
	}
	return n, nil
}

// Intersections returns every intersection in load order.
func (g *Graph) Intersections() []Intersection { return g.intersections }

// RoadByID looks up a road by its ID.
func (g *Graph) RoadByID(id RoadID) (Road, error) {
	r, ok := g.roadMap[id]
	if !ok {
		return Road{}, fmt.Errorf("road %q not found", id)
	}
	return r, nil
}

// Road returns the shortest direct road from u to v.
func (g *Graph) Road(u, v IntersectionID) (Road, error) {
	var (
		best  Road
		found bool
	)
	for _, r := range g.out[u] {
		if r.To == v && (!found || r.Length < best.Length) {
			best, found = r, true
		}
	}
	if !found {
		return Road{}, fmt.Errorf("no road from %q to %q", u, v)
	}
	return best, nil
}
