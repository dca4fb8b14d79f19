package traffic

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/route"
)

const dt = 0.016

func testPool(n int) *drivers.Pool {
	ds := make([]drivers.Driver, n)
	for i := range ds {
		ds[i] = drivers.Driver{Plate: fmt.Sprintf("D%02d", i), Level: 50}
	}
	return drivers.NewPool(ds, rand.New(rand.NewPCG(5, 6)))
}

func straight(n int, length float64) []route.Segment {
	segs := make([]route.Segment, n)
	for i := range segs {
		segs[i] = route.Segment{
			From: mgl64.Vec3{0, 0, -float64(i) * length},
			To:   mgl64.Vec3{0, 0, -float64(i+1) * length},
		}
	}
	return segs
}

func newTestManager(cfg Config, segs []route.Segment, pool *drivers.Pool) *Manager {
	return NewManager(cfg, segs, pool, rand.New(rand.NewPCG(9, 10)), zerolog.Nop())
}

func addCar(m *Manager, lane int, along float64, level int) *Car {
	c := &Car{ID: m.nextID, Driver: drivers.Driver{Plate: fmt.Sprintf("T%02d", m.nextID), Level: level}, Lane: lane}
	m.nextID++
	c.along = along
	c.lateral = m.laneOffset(lane)
	m.place(c)
	m.cars = append(m.cars, c)
	return c
}

func TestPopulate(t *testing.T) {
	pool := testPool(10)
	m := newTestManager(DefaultConfig(), straight(6, 100), pool)
	m.Populate(0)

	cars := m.Cars()
	require.Len(t, cars, 8)
	assert.Equal(t, 8, pool.InUse())
	plates := map[string]bool{}
	for _, c := range cars {
		assert.GreaterOrEqual(t, c.Segment, 1)
		assert.LessOrEqual(t, c.Segment, 3)
		assert.False(t, plates[c.Driver.Plate], "duplicate plate %s", c.Driver.Plate)
		plates[c.Driver.Plate] = true
		// straight route along -z: lanes sit 1.5 either side of x = 0
		assert.InDelta(t, 1.5, math.Abs(c.Position.X()), 1e-9)
	}

	m.Populate(0)
	assert.Len(t, m.Cars(), 8)
	assert.Equal(t, 8, pool.InUse(), "repopulating releases the old drivers")
}

func TestPopulate_EmptyRoute(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, testPool(3))
	m.Populate(0)
	assert.Empty(t, m.Cars())
	assert.Nil(t, m.Update(dt, mgl64.Vec3{}, 0))
}

func TestLaneOffset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lanes = 3
	m := newTestManager(cfg, nil, testPool(1))
	assert.Equal(t, -3.0, m.laneOffset(0))
	assert.Equal(t, 0.0, m.laneOffset(1))
	assert.Equal(t, 3.0, m.laneOffset(2))
}

func TestUpdate_KeepsGap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 0
	m := newTestManager(cfg, straight(1, 1000), testPool(1))
	lead := addCar(m, 0, 100, 0)     // 2 units/s
	follower := addCar(m, 0, 50, 99) // 3.98 units/s

	far := mgl64.Vec3{0, 0, 500} // behind the segment start, never close enough to yield
	for range 2000 {
		m.Update(dt, far, 0)
		require.GreaterOrEqual(t, lead.along-follower.along, cfg.MinGap-1e-9)
	}
	assert.InDelta(t, cfg.MinGap, lead.along-follower.along, 1e-6)
	assert.InDelta(t, lead.Speed, follower.Speed, 1e-6)
}

func TestUpdate_OtherLaneDoesNotBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 0
	m := newTestManager(cfg, straight(1, 1000), testPool(1))
	slow := addCar(m, 0, 100, 0)
	fast := addCar(m, 1, 95, 99)

	for range 500 {
		m.Update(dt, mgl64.Vec3{0, 0, 500}, 0)
	}
	assert.Greater(t, fast.along, slow.along)
}

func TestUpdate_Yield(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 0
	m := newTestManager(cfg, straight(1, 1000), testPool(1))
	a := addCar(m, 0, 10, 40)
	b := addCar(m, 0, 15, 80)
	c := addCar(m, 1, 50, 99) // out of range

	events := m.Update(dt, mgl64.Vec3{}, 0)
	require.Len(t, events, 1)
	assert.Equal(t, YieldEvent{CarID: b.ID, Plate: b.Driver.Plate, Level: 80, Lane: 1}, events[0])
	assert.True(t, b.Yielding)
	assert.Equal(t, 1, b.Lane)

	events = m.Update(dt, mgl64.Vec3{}, 0)
	require.Len(t, events, 1)
	assert.Equal(t, a.ID, events[0].CarID)
	assert.False(t, c.Yielding)

	assert.Empty(t, m.Update(dt, mgl64.Vec3{}, 0))

	// yielding cars drift to the curb lane and slow down
	for range 200 {
		m.Update(dt, mgl64.Vec3{}, 0)
	}
	assert.InDelta(t, m.laneOffset(1), b.lateral, 1e-9)
	assert.Less(t, b.Speed, m.cfg.CruiseSpeed*(0.5+80.0/200))
}

func TestUpdate_RespawnAtRouteEnd(t *testing.T) {
	pool := testPool(4)
	cfg := DefaultConfig()
	cfg.Count = 1
	m := newTestManager(cfg, straight(3, 10), pool)
	m.Populate(0)
	require.Equal(t, 1, pool.InUse())

	c := m.cars[0]
	c.tracker = route.Tracker{Index: 2}
	c.along = 9.99
	c.Yielding = true

	m.Update(dt, mgl64.Vec3{}, 0)
	assert.False(t, c.tracker.Done(3))
	assert.Contains(t, []int{1, 2}, c.Segment)
	assert.False(t, c.Yielding)
	assert.Equal(t, 1, pool.InUse(), "old driver released, new one acquired")
}

func TestUpdate_RespawnWhenPassed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 0
	m := newTestManager(cfg, straight(3, 100), testPool(2))
	c := addCar(m, 0, 10, 50)

	m.Update(dt, mgl64.Vec3{0, 0, -250}, 2)
	assert.Equal(t, 2, c.Segment)
	assert.InDelta(t, 0, c.Heading, 1e-12)
}
