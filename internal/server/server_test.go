package server

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/lifeflow-engine/internal/drivers"
	"github.com/cxd309/lifeflow-engine/internal/graph"
	"github.com/cxd309/lifeflow-engine/internal/route"
)

const driverTable = `placa,clase,marca,modelo,dueño,nivel de conduccion,extra
ABC123,Sedan,Toyota,2020,Juan Pérez,85,x
DEF456,SUV,Honda,2019,María García,45,y
GHI789,Hatchback,Nissan,2021,Carlos López,60,z
JKL012,Pickup,Ford,2018,Rosa Díaz,72.0,w
`

func testServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	g, err := graph.NewGraph(graph.GraphData{
		Intersections: []graph.Intersection{
			{ID: "a", Address: "Av. Perú 100", Lat: -12.05, Lng: -77.04},
			{ID: "b", Address: "Jr. Lampa 200", Lat: -12.049, Lng: -77.04},
			{ID: "c", Address: "Plaza Sola 1", Lat: -12.04, Lng: -77.03},
		},
		Roads: []graph.Road{{ID: "ab", From: "a", To: "b", Name: "Av. Perú", Length: 110}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "placas.csv")
	require.NoError(t, os.WriteFile(path, []byte(driverTable), 0o644))

	var logs bytes.Buffer
	return NewServer(g, path, zerolog.New(&logs), rand.New(rand.NewPCG(3, 4))), &logs
}

func TestReadDriversCSV(t *testing.T) {
	ds, err := ReadDriversCSV(strings.NewReader(driverTable))
	require.NoError(t, err)
	require.Len(t, ds, 4)
	assert.Equal(t, drivers.Driver{Plate: "ABC123", Class: "Sedan", Brand: "Toyota", Model: "2020", Owner: "Juan Pérez", Level: 85}, ds[0])
	assert.Equal(t, 72, ds[3].Level)

	_, err = ReadDriversCSV(strings.NewReader("placa,clase\nA,B\n"))
	assert.ErrorContains(t, err, `missing column "marca"`)

	_, err = ReadDriversCSV(strings.NewReader("placa,clase,marca,modelo,dueño,nivel de conduccion\nA,B,C,D,E,high\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestShortestPath(t *testing.T) {
	s, logs := testServer(t)
	h := s.Handler()

	body := `{"start_location": "av peru 100", "end_location": "Jr. Lampa 200"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shortest-path", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	var steps []route.Step
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	require.Len(t, steps, 1)
	assert.Equal(t, route.InstructionStart, steps[0].Instruction)
	assert.Equal(t, 110.0, steps[0].DistanceMeters)
	assert.Contains(t, logs.String(), `"uri":"/shortest-path"`)
}

func TestShortestPath_Errors(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	tests := []struct {
		name   string
		method string
		body   string
		status int
		want   string
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed, "error"},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest, "error"},
		{"missing end", http.MethodPost, `{"start_location":"a"}`, http.StatusBadRequest, "required"},
		{"unknown address", http.MethodPost, `{"start_location":"Av. Perú 100","end_location":"Calle Falsa"}`, http.StatusNotFound, "address not found"},
		{"unreachable", http.MethodPost, `{"start_location":"Av. Perú 100","end_location":"Plaza Sola 1"}`, http.StatusOK, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/shortest-path", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestWholeCSV(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whole-csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var ds []drivers.Driver
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	assert.Len(t, ds, 4)
	assert.Contains(t, rec.Body.String(), `"nivel de conduccion":85`)
}

func TestWholeCSV_MissingFile(t *testing.T) {
	s, logs := testServer(t)
	s.driversCSV = filepath.Join(t.TempDir(), "missing.csv")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whole-csv", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "driver table unavailable")
}

func TestChangeLanes(t *testing.T) {
	s, _ := testServer(t)

	for _, lanes := range []int{1, 2, 3, 4, 6} {
		rec := httptest.NewRecorder()
		url := "/change-lanes?num_lanes=" + strconv.Itoa(lanes)
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ChangeLanesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.CarsInFront, min(lanes, SampleSize))
		require.Len(t, resp.DriverChosen, 1)

		chosen := resp.DriverChosen[0]
		want, ok := drivers.ChooseYielding(lanes, resp.CarsInFront)
		require.True(t, ok)
		assert.Equal(t, want, chosen.Index)
		assert.Equal(t, resp.CarsInFront[chosen.Index].Plate, chosen.Plate)
	}
}

func TestChangeLanes_BadParam(t *testing.T) {
	s, _ := testServer(t)
	for _, q := range []string{"0", "x", "-1"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/change-lanes?num_lanes="+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestPreflight(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/shortest-path", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
