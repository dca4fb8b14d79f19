// Package viewer draws the game top-down in a window and feeds it keyboard
// input. The view is centred on the ambulance and rotated so it always drives
// up the screen.
package viewer

import (
	"context"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/engine"
	"github.com/cxd309/lifeflow-engine/internal/input"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
)

var (
	groundColor    = color.RGBA{R: 40, G: 90, B: 40, A: 255}
	roadColor      = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	nextColor      = color.RGBA{R: 255, G: 200, B: 0, A: 255}
	ambulanceColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	redLight       = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	blueLight      = color.RGBA{R: 0, G: 80, B: 255, A: 255}
	darkLight      = color.RGBA{R: 60, G: 60, B: 60, A: 255}
)

// physicalKeys binds keymap names to ebiten keys.
var physicalKeys = map[string]ebiten.Key{
	"KeyW":       ebiten.KeyW,
	"KeyA":       ebiten.KeyA,
	"KeyS":       ebiten.KeyS,
	"KeyD":       ebiten.KeyD,
	"KeyL":       ebiten.KeyL,
	"KeyR":       ebiten.KeyR,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"Space":      ebiten.KeySpace,
}

// keyboard reports physical key state from ebiten.
type keyboard struct{}

func (keyboard) IsPhysicalPressed(name string) bool {
	k, ok := physicalKeys[name]
	return ok && ebiten.IsKeyPressed(k)
}

// Options configure the window.
type Options struct {
	Width         int
	Height        int
	PixelsPerUnit float64
	Title         string
	Keymap        input.Keymap        // nil = default bindings
	Timestep      kinematics.Timestep // nil = measured wall time
}

// Viewer is an ebiten.Game driving an engine.Game.
type Viewer struct {
	ctx    context.Context
	game   *engine.Game
	source input.Source
	step   kinematics.Timestep
	opts   Options
	logger zerolog.Logger
}

// New wraps game in a window.
func New(ctx context.Context, game *engine.Game, opts Options, logger zerolog.Logger) *Viewer {
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	if opts.PixelsPerUnit <= 0 {
		opts.PixelsPerUnit = 4
	}
	if opts.Keymap == nil {
		opts.Keymap = input.DefaultKeymap()
	}
	step := opts.Timestep
	if step == nil {
		step = kinematics.NewMeasuredStep()
	}
	return &Viewer{
		ctx:    ctx,
		game:   game,
		source: input.Mapped{Keymap: opts.Keymap, State: keyboard{}},
		step:   step,
		opts:   opts,
		logger: logger,
	}
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() error {
	ebiten.SetWindowSize(v.opts.Width, v.opts.Height)
	ebiten.SetWindowTitle(v.opts.Title)
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}

func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || v.ctx.Err() != nil {
		return ebiten.Termination
	}
	if _, err := v.game.Tick(v.ctx, v.source, v.step.Next()); err != nil {
		v.logger.Error().Err(err).Msg("tick failed")
		return err
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(groundColor)
	cam := v.view()

	points := v.game.Points()
	for i := 1; i < len(points); i++ {
		a, b := cam.project(points[i-1]), cam.project(points[i])
		vector.StrokeLine(screen, a[0], a[1], b[0], b[1], 12, roadColor, true)
	}
	state := v.game.Vehicle().State()
	if state.WaypointIndex < len(v.game.Segments()) {
		next := cam.project(v.game.Segments()[state.WaypointIndex].To)
		vector.DrawFilledCircle(screen, next[0], next[1], 6, nextColor, true)
	}

	for _, car := range v.game.Traffic() {
		p := cam.project(car.Position)
		vector.DrawFilledRect(screen, p[0]-4, p[1]-4, 8, 8, hexColor(drivers.LevelColor(car.Driver.Level)), true)
	}

	me := cam.project(state.Position)
	vector.DrawFilledRect(screen, me[0]-5, me[1]-8, 10, 16, ambulanceColor, true)
	lights := v.game.Vehicle().Lights()
	vector.DrawFilledRect(screen, me[0]-5, me[1]-8, 5, 3, lampColor(lights.Red.On, redLight), true)
	vector.DrawFilledRect(screen, me[0], me[1]-8, 5, 3, lampColor(lights.Blue.On, blueLight), true)

	ebitenutil.DebugPrint(screen, v.game.Status().String())
}

func (v *Viewer) Layout(int, int) (int, int) {
	return v.opts.Width, v.opts.Height
}

func (v *Viewer) view() view {
	s := v.game.Vehicle()
	return view{
		centre:  s.State().Position,
		forward: s.Forward(),
		ppu:     v.opts.PixelsPerUnit,
		width:   float64(v.opts.Width),
		height:  float64(v.opts.Height),
	}
}

// view maps the ground plane onto the screen, vehicle-up.
type view struct {
	centre  mgl64.Vec3
	forward mgl64.Vec3
	ppu     float64
	width   float64
	height  float64
}

// project returns the screen position of a world point. The vehicle sits
// two thirds of the way down the screen.
func (w view) project(p mgl64.Vec3) [2]float32 {
	r := p.Sub(w.centre)
	right := mgl64.Vec3{-w.forward.Z(), 0, w.forward.X()}
	x := w.width/2 + r.Dot(right)*w.ppu
	y := w.height*2/3 - r.Dot(w.forward)*w.ppu
	return [2]float32{float32(x), float32(y)}
}

func lampColor(on bool, lit color.RGBA) color.RGBA {
	if on {
		return lit
	}
	return darkLight
}

// hexColor parses "#rrggbb"; anything else is white.
func hexColor(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return ambulanceColor
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
