package route

import (
	"errors"
	"math"
)

// ErrNoRoute is returned when a route has no steps.
var ErrNoRoute = errors.New("no route steps")

// mercatorScale is the ground distance covered by one web mercator metre at lat.
func mercatorScale(lat float64) float64 {
	return math.Cos(lat * math.Pi / 180)
}
