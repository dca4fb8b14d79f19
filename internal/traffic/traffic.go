// Package traffic populates the route with civilian cars that drive ahead of
// the ambulance in lanes, keep their distance, and pull over when it closes
// in on them.
package traffic

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/route"
)

// Config tunes the traffic population. Distances are in world units.
type Config struct {
	Count          int     `json:"count" mapstructure:"count"`
	Lanes          int     `json:"lanes" mapstructure:"lanes"`
	LaneWidth      float64 `json:"lane_width" mapstructure:"laneWidth"`
	CruiseSpeed    float64 `json:"cruise_speed" mapstructure:"cruiseSpeed"` // units/s for a level-100 driver
	MinGap         float64 `json:"min_gap" mapstructure:"minGap"`
	YieldDistance  float64 `json:"yield_distance" mapstructure:"yieldDistance"`
	LaneChangeRate float64 `json:"lane_change_rate" mapstructure:"laneChangeRate"` // units/s sideways
	SpawnSpread    int     `json:"spawn_spread" mapstructure:"spawnSpread"`        // segments ahead of the player
	Threshold      float64 `json:"waypoint_threshold" mapstructure:"waypointThreshold"`
}

// DefaultConfig returns the standard population.
func DefaultConfig() Config {
	return Config{
		Count:          8,
		Lanes:          2,
		LaneWidth:      3,
		CruiseSpeed:    4,
		MinGap:         8,
		YieldDistance:  20,
		LaneChangeRate: 2,
		SpawnSpread:    3,
		Threshold:      5,
	}
}

// Car is one civilian vehicle.
type Car struct {
	ID       int            `json:"id"`
	Driver   drivers.Driver `json:"driver"`
	Lane     int            `json:"lane"`
	Position mgl64.Vec3     `json:"position"`
	Heading  float64        `json:"heading"`
	Speed    float64        `json:"speed"`
	Segment  int            `json:"segment"`
	Yielding bool           `json:"yielding"`

	along   float64
	lateral float64
	tracker route.Tracker
}

// YieldEvent records a car pulling over for the ambulance.
type YieldEvent struct {
	CarID int    `json:"car_id"`
	Plate string `json:"plate"`
	Level int    `json:"level"`
	Lane  int    `json:"lane"`
}

// Manager owns the traffic cars. It is driven from the game tick and is not
// safe for concurrent use.
type Manager struct {
	cfg      Config
	segments []route.Segment
	pool     *drivers.Pool
	rng      *rand.Rand
	logger   zerolog.Logger

	cars   []*Car
	nextID int
}

// NewManager creates a manager for segments drawing drivers from pool.
func NewManager(cfg Config, segments []route.Segment, pool *drivers.Pool, rng *rand.Rand, logger zerolog.Logger) *Manager {
	if cfg.Lanes < 1 {
		cfg.Lanes = 1
	}
	if cfg.SpawnSpread < 1 {
		cfg.SpawnSpread = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Manager{
		cfg:      cfg,
		segments: segments,
		pool:     pool,
		rng:      rng,
		logger:   logger,
	}
}

// Populate spawns Count cars ahead of the player's segment, replacing any
// existing cars.
func (m *Manager) Populate(playerSegment int) {
	for _, c := range m.cars {
		m.pool.Release(c.Driver.Plate)
	}
	m.cars = m.cars[:0]
	if len(m.segments) == 0 {
		return
	}
	for range m.cfg.Count {
		c := &Car{ID: m.nextID}
		m.nextID++
		m.spawn(c, playerSegment)
		m.cars = append(m.cars, c)
	}
	m.logger.Debug().Int("cars", len(m.cars)).Int("segment", playerSegment).Msg("traffic populated")
}

func (m *Manager) spawn(c *Car, playerSegment int) {
	seg := min(playerSegment+1+m.rng.IntN(m.cfg.SpawnSpread), len(m.segments)-1)
	seg = max(seg, 0)

	c.Driver = m.pool.Acquire()
	c.Lane = m.rng.IntN(m.cfg.Lanes)
	c.Yielding = false
	c.Speed = 0
	c.tracker = route.Tracker{Index: seg}
	c.along = m.rng.Float64() * m.segments[seg].Length() * 0.8
	c.lateral = m.laneOffset(c.Lane)
	m.place(c)
}

// laneOffset is the signed distance right of the centre line for lane.
func (m *Manager) laneOffset(lane int) float64 {
	return (float64(lane) - float64(m.cfg.Lanes-1)/2) * m.cfg.LaneWidth
}

func right(dir mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{-dir.Z(), 0, dir.X()} }

func (m *Manager) place(c *Car) {
	c.Segment = c.tracker.Index
	if c.tracker.Done(len(m.segments)) {
		return
	}
	seg := m.segments[c.tracker.Index]
	dir := seg.Direction()
	c.Position = seg.From.Add(dir.Mul(c.along)).Add(right(dir).Mul(c.lateral))
	c.Heading = seg.Heading()
}

// cruise is the free-road speed for a driver: better drivers go faster.
func (m *Manager) cruise(c *Car) float64 {
	v := m.cfg.CruiseSpeed * (0.5 + float64(c.Driver.Level)/200)
	if c.Yielding {
		v /= 2
	}
	return v
}

// Update advances every car by dt seconds. playerPos and playerSegment are
// the ambulance's position and waypoint index. It returns the cars that
// started yielding this tick.
func (m *Manager) Update(dt float64, playerPos mgl64.Vec3, playerSegment int) []YieldEvent {
	if len(m.segments) == 0 {
		return nil
	}
	events := m.yieldTo(playerPos, playerSegment)

	// Movement authority: a car may not close within MinGap of the car ahead
	// in its lane on the same segment.
	for _, c := range m.cars {
		if c.tracker.Done(len(m.segments)) {
			continue
		}
		seg := m.segments[c.tracker.Index]
		step := m.cruise(c) * dt
		if lead, ok := m.leader(c); ok {
			step = math.Min(step, math.Max(0, lead.along-m.cfg.MinGap-c.along))
		}
		if dt > 0 {
			c.Speed = step / dt
		}
		c.along = math.Min(c.along+step, seg.Length())

		target := m.laneOffset(c.Lane)
		shift := m.cfg.LaneChangeRate * dt
		c.lateral += math.Max(-shift, math.Min(shift, target-c.lateral))

		centre := seg.From.Add(seg.Direction().Mul(c.along))
		if c.tracker.Follow(centre, m.segments, m.cfg.Threshold) {
			c.along = 0
		}
		m.place(c)
	}

	for _, c := range m.cars {
		behind := playerSegment < len(m.segments) && c.tracker.Index < playerSegment
		if behind || c.tracker.Done(len(m.segments)) {
			m.pool.Release(c.Driver.Plate)
			m.spawn(c, playerSegment)
		}
	}
	return events
}

// leader returns the nearest car ahead of c in its lane on its segment.
func (m *Manager) leader(c *Car) (*Car, bool) {
	var lead *Car
	for _, o := range m.cars {
		if o == c || o.Lane != c.Lane || o.tracker.Index != c.tracker.Index || o.along <= c.along {
			continue
		}
		if lead == nil || o.along < lead.along {
			lead = o
		}
	}
	return lead, lead != nil
}

// yieldTo picks one car among those just ahead of the player on its segment
// to pull over into the curb lane.
func (m *Manager) yieldTo(playerPos mgl64.Vec3, playerSegment int) []YieldEvent {
	if playerSegment < 0 || playerSegment >= len(m.segments) {
		return nil
	}
	seg := m.segments[playerSegment]
	playerAlong := playerPos.Sub(seg.From).Dot(seg.Direction())

	var ahead []*Car
	for _, c := range m.cars {
		if c.Yielding || c.tracker.Index != playerSegment {
			continue
		}
		if gap := c.along - playerAlong; gap > 0 && gap <= m.cfg.YieldDistance {
			ahead = append(ahead, c)
		}
	}
	if len(ahead) == 0 {
		return nil
	}
	slices.SortStableFunc(ahead, func(a, b *Car) int {
		switch {
		case a.along < b.along:
			return -1
		case a.along > b.along:
			return 1
		}
		return a.ID - b.ID
	})

	ds := make([]drivers.Driver, len(ahead))
	for i, c := range ahead {
		ds[i] = c.Driver
	}
	i, ok := drivers.ChooseYielding(m.cfg.Lanes, ds)
	if !ok {
		return nil
	}
	c := ahead[i]
	c.Yielding = true
	c.Lane = m.cfg.Lanes - 1
	m.logger.Debug().Int("car", c.ID).Str("plate", c.Driver.Plate).Int("level", c.Driver.Level).Msg("car yielding")
	return []YieldEvent{{CarID: c.ID, Plate: c.Driver.Plate, Level: c.Driver.Level, Lane: c.Lane}}
}

// Cars returns a snapshot of every car.
func (m *Manager) Cars() []Car {
	out := make([]Car, len(m.cars))
	for i, c := range m.cars {
		out[i] = *c
	}
	return out
}
