// Package server exposes the route service over HTTP: route calculation on
// the street graph, the driver table, and the lane-change advisor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/graph"
	"github.com/cxd309/lifeflow-engine/internal/route"
	"github.com/cxd309/lifeflow-engine/internal/routing"
)

// SampleSize is how many drivers /change-lanes draws from the table.
const SampleSize = 4

// Server holds the route service dependencies.
type Server struct {
	graph      *graph.Graph
	driversCSV string
	logger     zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewServer creates a server over g serving drivers from the CSV file at
// driversCSV. A nil rng uses a randomly seeded source.
func NewServer(g *graph.Graph, driversCSV string, logger zerolog.Logger, rng *rand.Rand) *Server {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Server{
		graph:      g,
		driversCSV: driversCSV,
		logger:     logger,
		rng:        rng,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status and duration, and allows
// cross-origin calls from the map page.
func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ServeMux returns the route service handlers.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/shortest-path", s.shortestPath)
	mux.HandleFunc("/whole-csv", s.wholeCSV)
	mux.HandleFunc("/change-lanes", s.changeLanes)
	return mux
}

// Handler is ServeMux wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	return s.LoggingMiddleware(s.ServeMux())
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info().Str("addr", addr).Msg("route service listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) shortestPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req routing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StartLocation == "" || req.EndLocation == "" {
		writeJSONError(w, http.StatusBadRequest, "start_location and end_location are required")
		return
	}

	steps, err := s.graph.Route(req.StartLocation, req.EndLocation, req.Waypoints...)
	switch {
	case errors.Is(err, graph.ErrAddressNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, graph.ErrNoPath), errors.Is(err, route.ErrNoRoute):
		writeJSON(w, http.StatusOK, []route.Step{})
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("route calculation failed")
		writeJSONError(w, http.StatusInternalServerError, "Route calculation failed")
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *Server) wholeCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ds, err := readDriversFile(s.driversCSV)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.driversCSV).Msg("driver table unavailable")
		writeJSONError(w, http.StatusInternalServerError, "Driver table unavailable")
		return
	}
	if ds == nil {
		ds = []drivers.Driver{}
	}
	writeJSON(w, http.StatusOK, ds)
}

type chosenDriver struct {
	Index int    `json:"index"`
	Plate string `json:"placa"`
	Owner string `json:"dueño"`
	Level int    `json:"nivel de conduccion"`
}

// ChangeLanesResponse is the /change-lanes payload.
type ChangeLanesResponse struct {
	CarsInFront  []drivers.Driver `json:"cars_in_front"`
	DriverChosen []chosenDriver   `json:"driver_chosen"`
}

func (s *Server) changeLanes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	lanes := 2
	if v := r.URL.Query().Get("num_lanes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "Invalid 'num_lanes' parameter")
			return
		}
		lanes = n
	}

	ds, err := readDriversFile(s.driversCSV)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.driversCSV).Msg("driver table unavailable")
		writeJSONError(w, http.StatusInternalServerError, "Driver table unavailable")
		return
	}

	s.mu.Lock()
	sample := drivers.NewPool(ds, s.rng).Sample(SampleSize)
	s.mu.Unlock()

	ahead := sample[:min(lanes, len(sample))]
	resp := ChangeLanesResponse{CarsInFront: ahead, DriverChosen: []chosenDriver{}}
	if i, ok := drivers.ChooseYielding(lanes, sample); ok {
		d := sample[i]
		resp.DriverChosen = append(resp.DriverChosen, chosenDriver{Index: i, Plate: d.Plate, Owner: d.Owner, Level: d.Level})
	}
	writeJSON(w, http.StatusOK, resp)
}
