package telemetry

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/lifeflow-engine/internal/vehicle"
)

func ramp(n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = Sample{Frame: i, Time: float64(i) * 0.016, Speed: float64(i), X: 0, Z: -float64(i) * 2}
	}
	return out
}

func TestNewSample(t *testing.T) {
	s := NewSample(4, 0.064, vehicle.State{
		Position:      mgl64.Vec3{1, 0, -2},
		Speed:         3,
		WaypointIndex: 2,
		StepProgress:  40,
	})
	assert.Equal(t, Sample{Frame: 4, Time: 0.064, Speed: 3, WaypointIndex: 2, Progress: 40, X: 1, Z: -2}, s)
}

func TestSummarize(t *testing.T) {
	sum := Summarize(ramp(5)) // speeds 0..4
	assert.Equal(t, 5, sum.Samples)
	assert.InDelta(t, 2, sum.MeanSpeed, 1e-12)
	assert.Equal(t, 4.0, sum.MaxSpeed)
	assert.InDelta(t, 1.5811388, sum.StdDev, 1e-6)
	assert.Equal(t, 4.0, sum.P85Speed)
	assert.InDelta(t, 8, sum.Distance, 1e-12)

	one := Summarize([]Sample{{Speed: 2.5}})
	assert.Equal(t, Summary{Samples: 1, MeanSpeed: 2.5, MaxSpeed: 2.5, P85Speed: 2.5}, one)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestMemory(t *testing.T) {
	var m Memory
	for _, s := range ramp(3) {
		require.NoError(t, m.Record(s))
	}
	assert.Len(t, m.Samples, 3)
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, "Drive", ramp(20)))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Drive")
	assert.Contains(t, html, "step progress %")
}
