package graph

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

// ErrNoPath is returned when the destination is unreachable.
var ErrNoPath = errors.New("no path")

type queueItem struct {
	id   IntersectionID
	dist float64
}

type distQueue []queueItem

func (q distQueue) Len() int           { return len(q) }
func (q distQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)        { *q = append(*q, x.(queueItem)) }
func (q *distQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// dijkstra returns the shortest path from start to end over road lengths.
func (g *Graph) dijkstra(start, end IntersectionID) (PathInfo, bool) {
	dist := map[IntersectionID]float64{start: 0}
	via := map[IntersectionID]Road{}
	done := map[IntersectionID]bool{}

	q := &distQueue{{id: start}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(queueItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == end {
			break
		}
		for _, r := range g.out[cur.id] {
			d := cur.dist + r.Length
			if old, ok := dist[r.To]; !ok || d < old {
				dist[r.To] = d
				via[r.To] = r
				heap.Push(q, queueItem{id: r.To, dist: d})
			}
		}
	}

	d, ok := dist[end]
	if !ok || math.IsInf(d, 1) {
		return PathInfo{}, false
	}

	var roads []Road
	for n := end; n != start; {
		r := via[n]
		roads = append(roads, r)
		n = r.From
	}
	p := PathInfo{ID: pathKey(start, end), Route: []IntersectionID{start}, Length: d}
	for i := len(roads) - 1; i >= 0; i-- {
		p.Route = append(p.Route, roads[i].To)
		p.Roads = append(p.Roads, roads[i].ID)
	}
	return p, true
}

// ShortestPath returns the shortest path between start and end, using a
// cache. Returns an error wrapping ErrNoPath if end is unreachable.
func (g *Graph) ShortestPath(start, end IntersectionID) (PathInfo, error) {
	if _, ok := g.nodeMap[start]; !ok {
		return PathInfo{}, fmt.Errorf("intersection %q not found", start)
	}
	if _, ok := g.nodeMap[end]; !ok {
		return PathInfo{}, fmt.Errorf("intersection %q not found", end)
	}
	if start == end {
		return PathInfo{ID: pathKey(start, end), Route: []IntersectionID{start}, Length: 0}, nil
	}

	key := pathKey(start, end)
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.pathCache[key]; ok {
		return p, nil
	}
	p, ok := g.dijkstra(start, end)
	if !ok {
		return PathInfo{}, fmt.Errorf("%w from %q to %q", ErrNoPath, start, end)
	}
	g.pathCache[key] = p
	return p, nil
}
