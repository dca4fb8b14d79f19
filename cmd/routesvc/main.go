// Command routesvc serves shortest paths over the street graph and the
// driver table the game assigns to traffic.
//
//	POST /shortest-path  {"start_location", "end_location", "waypoints"}
//	GET  /whole-csv
//	GET  /change-lanes?num_lanes=2
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cxd309/lifeflow-engine/internal/config"
	"github.com/cxd309/lifeflow-engine/internal/graph"
	"github.com/cxd309/lifeflow-engine/internal/logging"
	"github.com/cxd309/lifeflow-engine/internal/server"
)

var (
	configDir = flag.String("config", ".", "Directory containing lifeflow.yaml")
	listen    = flag.String("listen", "", "Listen address (overrides server.addr)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "routesvc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configDir)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Server.Addr = *listen
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogsDir, "routesvc")
	if err != nil {
		return err
	}
	defer closeLog()

	g, err := graph.LoadFile(cfg.Server.GraphFile)
	if err != nil {
		return err
	}
	logger.Info().
		Str("file", cfg.Server.GraphFile).
		Int("intersections", len(g.Intersections())).
		Msg("street graph loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(g, cfg.Server.DriversCSV, logger, nil)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return err
	}
	logger.Info().Msg("route service stopped")
	return nil
}
