package route

import (
	"time"
)

// Traffic multipliers applied to free-flow travel time by time of week.
const (
	TrafficMorningRush = 1.8 // weekdays 07-09
	TrafficEveningRush = 2.0 // weekdays 17-19
	TrafficMidday      = 1.2 // weekdays 10-16
	TrafficLow         = 0.9 // weekdays otherwise
	TrafficWeekend     = 1.3 // weekends 10-16
	TrafficWeekendLow  = 0.8 // weekends otherwise
)

// DefaultSpeedKmh is assumed for steps without a usable speed limit.
const DefaultSpeedKmh = 20

// DefaultRoadType is assumed for steps the service did not classify.
const DefaultRoadType = "secondary"

var roadTypeMultipliers = map[string]float64{
	"primary":     2.0,
	"secondary":   1.5,
	"tertiary":    1.2,
	"residential": 0.8,
}

// TrafficIndex returns the expected congestion multiplier at t.
func TrafficIndex(t time.Time) float64 {
	h := t.Hour()
	weekend := t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
	if weekend {
		if h >= 10 && h <= 16 {
			return TrafficWeekend
		}
		return TrafficWeekendLow
	}
	switch {
	case h >= 7 && h <= 9:
		return TrafficMorningRush
	case h >= 17 && h <= 19:
		return TrafficEveningRush
	case h >= 10 && h <= 16:
		return TrafficMidday
	default:
		return TrafficLow
	}
}

// RoadTypeMultiplier returns the congestion weight of an OSM highway class.
// An empty class counts as DefaultRoadType; unknown classes weigh 1.
func RoadTypeMultiplier(roadType string) float64 {
	if roadType == "" {
		roadType = DefaultRoadType
	}
	if m, ok := roadTypeMultipliers[roadType]; ok {
		return m
	}
	return 1.0
}

// EstimateTravelTime estimates driving time for steps departing at t.
// A realtime factor other than 1 (for example measured duration over
// free-flow duration from a traffic provider) replaces the time-of-week index.
func EstimateTravelTime(steps []Step, at time.Time, realtimeFactor float64) time.Duration {
	if len(steps) == 0 {
		return 0
	}
	traffic := TrafficIndex(at)
	if realtimeFactor > 0 && realtimeFactor != 1.0 {
		traffic = realtimeFactor
	}

	var hours float64
	for _, st := range steps {
		speed := st.MaxSpeed.Or(DefaultSpeedKmh)
		// Long legs keep closer to the limit than short urban ones.
		avg := speed * 0.6
		if st.DistanceMeters > 5000 {
			avg = speed * 0.8
		}
		base := (st.DistanceMeters / 1000) / avg * 1.15
		hours += base * traffic * RoadTypeMultiplier(st.RoadType)
	}
	return time.Duration(hours * float64(time.Hour))
}
