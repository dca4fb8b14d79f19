package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/lifeflow-engine/internal/camera"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
	"github.com/cxd309/lifeflow-engine/internal/traffic"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://0.0.0.0:8082", cfg.Routing.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Routing.Timeout)
	assert.Equal(t, "http://0.0.0.0:8082/whole-csv", cfg.Drivers.URL)
	assert.Equal(t, 10*time.Second, cfg.Drivers.Timeout)
	assert.Equal(t, "0.0.0.0:8082", cfg.Server.Addr)
	assert.Equal(t, 500, cfg.Telemetry.BatchSize)
	assert.Equal(t, "measured", cfg.Drive.Timestep)
	assert.Equal(t, 1.0, cfg.Drive.Scale)
	assert.Equal(t, kinematics.DefaultArcade(), cfg.Vehicle)
	assert.Equal(t, camera.DefaultFollower(), cfg.Camera)
	assert.Equal(t, traffic.DefaultConfig(), cfg.Traffic)
}

func TestLoad_WithConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	yaml := `
logLevel: debug
drive:
  start: Av. Perú 100
  end: Jr. Lampa 300
  timestep: fixed
vehicle:
  maxSpeed: 9
traffic:
  count: 3
routing:
  timeout: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lifeflow.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Av. Perú 100", cfg.Drive.Start)
	assert.Equal(t, "fixed", cfg.Drive.Timestep)
	assert.Equal(t, 9.0, cfg.Vehicle.MaxSpeedVal)
	assert.Equal(t, 0.1, cfg.Vehicle.AccelStep, "unset keys keep defaults")
	assert.Equal(t, 3, cfg.Traffic.Count)
	assert.Equal(t, 2, cfg.Traffic.Lanes)
	assert.Equal(t, 5*time.Second, cfg.Routing.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("LIFEFLOW_DRIVE_END", "Plaza Sola 1")
	t.Setenv("LIFEFLOW_TRAFFIC_COUNT", "12")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "Plaza Sola 1", cfg.Drive.End)
	assert.Equal(t, 12, cfg.Traffic.Count)
}

func TestLoad_Invalid(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lifeflow.yaml"), []byte("drive:\n  timestep: sometimes\n"), 0o644))
	_, err := Load(dir)
	assert.ErrorContains(t, err, "drive.timestep")

	viper.Reset()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lifeflow.yaml"), []byte("drive: [unclosed\n"), 0o644))
	_, err = Load(dir)
	assert.ErrorContains(t, err, "error reading config file")
}
