// Command drive opens the ambulance driving window. It asks the route
// service for a route between two addresses, falling back to a saved route
// file, and drives it with the keyboard:
//
//	W/Up forward, S/Down reverse, A/D or Left/Right steer, Space brake,
//	L toggle lights, R reset to start, Esc quit.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cxd309/lifeflow-engine/internal/config"
	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/engine"
	"github.com/cxd309/lifeflow-engine/internal/hud"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
	"github.com/cxd309/lifeflow-engine/internal/logging"
	"github.com/cxd309/lifeflow-engine/internal/route"
	"github.com/cxd309/lifeflow-engine/internal/routing"
	"github.com/cxd309/lifeflow-engine/internal/telemetry"
	"github.com/cxd309/lifeflow-engine/internal/telemetry/sqlstore"
	"github.com/cxd309/lifeflow-engine/internal/viewer"
)

var (
	configDir = flag.String("config", ".", "Directory containing lifeflow.yaml")
	start     = flag.String("start", "", "Start address (overrides drive.start)")
	end       = flag.String("end", "", "Destination address (overrides drive.end)")
	via       = flag.String("via", "", "Comma-separated addresses to pass through")
	routeFile = flag.String("route", "", "Route JSON to drive instead of asking the route service")
	noTraffic = flag.Bool("no-traffic", false, "Drive with no civilian cars")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "drive: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configDir)
	if err != nil {
		return err
	}
	if *start != "" {
		cfg.Drive.Start = *start
	}
	if *end != "" {
		cfg.Drive.End = *end
	}
	if *routeFile != "" {
		cfg.Drive.RouteFile = *routeFile
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogsDir, "drive")
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	steps, source, err := loadRoute(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if summary, err := route.Summarize(steps); err == nil {
		logger.Info().
			Str("source", source).
			Int("steps", summary.Steps).
			Float64("distance_m", summary.DistanceMeters).
			Str("origin", summary.Origin).
			Str("destination", summary.Destination).
			Dur("eta", route.EstimateTravelTime(steps, time.Now(), 1)).
			Msg("route loaded")
	}

	deps := engine.Dependencies{
		Model:    cfg.Vehicle,
		Camera:   cfg.Camera,
		Scale:    cfg.Drive.Scale,
		Drivers:  drivers.NewClient(&http.Client{Timeout: cfg.Drivers.Timeout}, cfg.Drivers.URL),
		Reporter: hud.NewLogReporter(logger, cfg.Drive.HUDEvery),
		Logger:   logger,
	}
	if !*noTraffic {
		deps.Traffic = &cfg.Traffic
	}

	var store *sqlstore.Store
	if cfg.Telemetry.DBPath != "" {
		store, err = sqlstore.Open(cfg.Telemetry.DBPath, cfg.Telemetry.BatchSize, len(steps), source)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Recorder = store
		logger.Info().Str("session", store.SessionID()).Str("db", cfg.Telemetry.DBPath).Msg("recording telemetry")
	}

	game, err := engine.NewGame(ctx, steps, deps)
	if err != nil {
		return err
	}

	var step kinematics.Timestep = kinematics.NewMeasuredStep()
	if cfg.Drive.Timestep == config.TimestepFixed {
		step = kinematics.FixedStep{}
	}
	title := "LifeFlow"
	if len(steps) > 0 {
		title = fmt.Sprintf("LifeFlow: %s to %s", steps[0].From, steps[len(steps)-1].To)
	}
	v := viewer.New(ctx, game, viewer.Options{Title: title, Timestep: step}, logger)
	if err := v.Run(); err != nil {
		return err
	}
	logger.Info().Int("frames", game.Frame()).Bool("arrived", game.Arrived()).Msg("drive finished")

	if store != nil {
		return finishTelemetry(store, cfg.Telemetry.ChartFile, title, logger)
	}
	return nil
}

// loadRoute asks the route service when both addresses are known and falls
// back to the route file.
func loadRoute(ctx context.Context, cfg config.Config, logger zerolog.Logger) ([]route.Step, string, error) {
	if cfg.Drive.Start != "" && cfg.Drive.End != "" {
		client := routing.NewClient(&http.Client{Timeout: cfg.Routing.Timeout}, cfg.Routing.BaseURL)
		req := routing.Request{StartLocation: cfg.Drive.Start, EndLocation: cfg.Drive.End}
		if *via != "" {
			req.Waypoints = strings.Split(*via, ",")
		}
		steps, err := client.Calculate(ctx, req)
		if err == nil {
			return steps, "service", nil
		}
		if cfg.Drive.RouteFile == "" {
			return nil, "", fmt.Errorf("calculating route: %w", err)
		}
		logger.Warn().Err(err).Str("file", cfg.Drive.RouteFile).Msg("route service unavailable, using route file")
	}
	if cfg.Drive.RouteFile == "" {
		return nil, "", fmt.Errorf("no route: set -start and -end, or -route")
	}

	data, err := os.ReadFile(cfg.Drive.RouteFile)
	if err != nil {
		return nil, "", fmt.Errorf("reading route file: %w", err)
	}
	var steps []route.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, "", fmt.Errorf("parsing route file: %w", err)
	}
	if len(steps) == 0 {
		return nil, "", route.ErrNoRoute
	}
	return steps, "file", nil
}

func finishTelemetry(store *sqlstore.Store, chartFile, title string, logger zerolog.Logger) error {
	if err := store.Flush(); err != nil {
		return err
	}
	samples, err := store.Samples(store.SessionID())
	if err != nil {
		return err
	}
	summary := telemetry.Summarize(samples)
	logger.Info().
		Int("samples", summary.Samples).
		Float64("mean_speed", summary.MeanSpeed).
		Float64("max_speed", summary.MaxSpeed).
		Float64("p85_speed", summary.P85Speed).
		Float64("distance", summary.Distance).
		Msg("telemetry summary")

	if chartFile == "" {
		return nil
	}
	f, err := os.Create(chartFile)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()
	if err := telemetry.RenderChart(f, title, samples); err != nil {
		return err
	}
	logger.Info().Str("file", chartFile).Msg("speed chart written")
	return nil
}
