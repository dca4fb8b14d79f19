// Package engine runs the driving game loop.
//
// Each tick runs the stages in order on the caller's goroutine:
//
//  1. Vehicle - read held keys, integrate motion, follow the waypoints.
//  2. Camera - place the chase camera behind the vehicle.
//  3. HUD - build and report the status line.
//  4. Traffic - move civilian cars and pick who yields.
//  5. Telemetry - record the frame sample.
//
// Rendering reads the resulting state and is left to the caller.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cxd309/lifeflow-engine/internal/camera"
	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/hud"
	"github.com/cxd309/lifeflow-engine/internal/input"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
	"github.com/cxd309/lifeflow-engine/internal/route"
	"github.com/cxd309/lifeflow-engine/internal/telemetry"
	"github.com/cxd309/lifeflow-engine/internal/traffic"
	"github.com/cxd309/lifeflow-engine/internal/vehicle"
)

const instrumentationName = "github.com/cxd309/lifeflow-engine/internal/engine"

// Dependencies are the collaborators a Game is built with. Zero values pick
// the defaults noted on each field.
type Dependencies struct {
	Model    kinematics.MotionModel // nil = arcade defaults
	Camera   camera.Follower        // zero = default chase offsets
	Scale    float64                // world units per metre; <= 0 = 1
	Drivers  drivers.Fetcher        // nil = built-in driver set
	Traffic  *traffic.Config        // nil = no traffic
	Rand     *rand.Rand             // nil = randomly seeded
	Reporter hud.Reporter           // nil = discard
	Recorder telemetry.Recorder     // nil = no telemetry
	Logger   zerolog.Logger
	Meter    metric.Meter // nil = global otel meter
}

// Game is one drive along a route. It is not safe for concurrent use.
type Game struct {
	steps     []route.Step
	projector *route.Projector
	segments  []route.Segment
	points    []mgl64.Vec3

	vehicle  *vehicle.Vehicle
	follower camera.Follower
	pose     camera.Pose
	status   hud.Status
	traffic  *traffic.Manager
	drivers  drivers.LoadResult

	reporter hud.Reporter
	recorder telemetry.Recorder
	logger   zerolog.Logger

	frame int
	time  float64

	frames   metric.Int64Counter
	advances metric.Int64Counter
	yields   metric.Int64Counter
}

// NewGame converts steps into waypoint segments, places the vehicle at the
// first route point, loads drivers and populates traffic.
func NewGame(ctx context.Context, steps []route.Step, deps Dependencies) (*Game, error) {
	model := deps.Model
	if model == nil {
		model = kinematics.DefaultArcade()
	}
	follower := deps.Camera
	if follower == (camera.Follower{}) {
		follower = camera.DefaultFollower()
	}
	reporter := deps.Reporter
	if reporter == nil {
		reporter = hud.Discard{}
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	g := &Game{
		steps:     steps,
		projector: route.ProjectorFor(steps, deps.Scale),
		follower:  follower,
		reporter:  reporter,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
	}
	g.segments = route.Waypoints(steps, g.projector)
	g.points = route.Points(steps, g.projector)

	start := mgl64.Vec3{}
	if len(g.points) > 0 {
		start = g.points[0]
	}
	g.vehicle = vehicle.New(model, start)

	if err := g.initMetrics(deps.Meter); err != nil {
		return nil, err
	}

	if deps.Traffic != nil {
		g.drivers = drivers.Load(ctx, deps.Drivers)
		if g.drivers.Err != nil {
			g.logger.Warn().Err(g.drivers.Err).Msg("driver data unavailable, using fallback drivers")
		} else {
			g.logger.Info().Int("drivers", len(g.drivers.Drivers)).Str("source", string(g.drivers.Source)).Msg("drivers loaded")
		}
		pool := drivers.NewPool(g.drivers.Drivers, rng)
		g.traffic = traffic.NewManager(*deps.Traffic, g.segments, pool, rng, g.logger)
		g.traffic.Populate(0)
	}

	g.pose = g.follower.Pose(g.vehicle.State().Position, 0)
	g.status = hud.NewStatus(g.vehicle.State(), steps)
	return g, nil
}

func (g *Game) initMetrics(m metric.Meter) error {
	if m == nil {
		m = otel.Meter(instrumentationName)
	}
	var err error
	g.frames, err = m.Int64Counter("lifeflow.frames", metric.WithDescription("Game ticks run"))
	if err != nil {
		return fmt.Errorf("creating frames counter: %w", err)
	}
	g.advances, err = m.Int64Counter("lifeflow.waypoint.advances", metric.WithDescription("Waypoints reached by the ambulance"))
	if err != nil {
		return fmt.Errorf("creating advances counter: %w", err)
	}
	g.yields, err = m.Int64Counter("lifeflow.traffic.yields", metric.WithDescription("Civilian cars that pulled over"))
	if err != nil {
		return fmt.Errorf("creating yields counter: %w", err)
	}
	return nil
}

// Tick runs one frame with the keys held in src, integrating over dt seconds.
func (g *Game) Tick(ctx context.Context, src input.Source, dt float64) (FrameLog, error) {
	keys := input.Capture(src)

	advanced := g.vehicle.Update(keys, g.segments, dt)
	state := g.vehicle.State()
	g.time += dt
	g.frames.Add(ctx, 1)
	if advanced {
		g.advances.Add(ctx, 1)
		g.logger.Debug().Int("waypoint", state.WaypointIndex).Int("frame", g.frame).Msg("waypoint reached")
	}

	g.pose = g.follower.Pose(state.Position, state.Heading)

	g.status = hud.NewStatus(state, g.steps)
	g.reporter.Report(g.frame, g.status)

	var yields []traffic.YieldEvent
	if g.traffic != nil {
		yields = g.traffic.Update(dt, state.Position, state.WaypointIndex)
		for _, y := range yields {
			g.yields.Add(ctx, 1, metric.WithAttributes(attribute.String("level", drivers.LevelName(y.Level))))
		}
	}

	if g.recorder != nil {
		if err := g.recorder.Record(telemetry.NewSample(g.frame, g.time, state)); err != nil {
			return FrameLog{}, fmt.Errorf("frame %d: recording telemetry: %w", g.frame, err)
		}
	}

	row := FrameLog{
		Frame:     g.frame,
		Timestamp: g.time,
		Keys:      keys.Pressed(),
		Vehicle:   state,
		Lights:    g.vehicle.Lights(),
		Camera:    g.pose,
		HUD:       g.status,
		Advanced:  advanced,
		Yields:    yields,
		Traffic:   g.Traffic(),
	}
	g.frame++
	return row, nil
}

// Arrived reports whether the vehicle has reached every waypoint.
func (g *Game) Arrived() bool {
	return len(g.segments) > 0 && g.vehicle.State().WaypointIndex >= len(g.segments)
}

func (g *Game) Vehicle() *vehicle.Vehicle   { return g.vehicle }
func (g *Game) Steps() []route.Step         { return g.steps }
func (g *Game) Segments() []route.Segment   { return g.segments }
func (g *Game) Points() []mgl64.Vec3        { return g.points }
func (g *Game) Camera() camera.Pose         { return g.pose }
func (g *Game) Status() hud.Status          { return g.status }
func (g *Game) Drivers() drivers.LoadResult { return g.drivers }
func (g *Game) Projector() *route.Projector { return g.projector }
func (g *Game) Frame() int                  { return g.frame }

// Traffic returns a snapshot of the civilian cars, or nil without traffic.
func (g *Game) Traffic() []traffic.Car {
	if g.traffic == nil {
		return nil
	}
	return g.traffic.Cars()
}
