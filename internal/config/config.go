// Package config loads lifeflow settings from lifeflow.yaml, LIFEFLOW_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cxd309/lifeflow-engine/internal/camera"
	"github.com/cxd309/lifeflow-engine/internal/kinematics"
	"github.com/cxd309/lifeflow-engine/internal/traffic"
)

// FileName is the config file looked up in the config dir.
const FileName = "lifeflow"

// Drive timestep modes.
const (
	TimestepMeasured = "measured"
	TimestepFixed    = "fixed"
)

// RoutingConfig points at the route service.
type RoutingConfig struct {
	BaseURL string        `json:"baseUrl" mapstructure:"baseUrl"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DriversConfig points at the driver table.
type DriversConfig struct {
	URL     string        `json:"url" mapstructure:"url"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// ServerConfig configures the route service.
type ServerConfig struct {
	Addr       string `json:"addr" mapstructure:"addr"`
	GraphFile  string `json:"graphFile" mapstructure:"graphFile"`
	DriversCSV string `json:"driversCsv" mapstructure:"driversCsv"`
}

// TelemetryConfig configures sample persistence. An empty DBPath disables it.
type TelemetryConfig struct {
	DBPath    string `json:"dbPath" mapstructure:"dbPath"`
	BatchSize int    `json:"batchSize" mapstructure:"batchSize"`
	ChartFile string `json:"chartFile" mapstructure:"chartFile"`
}

// DriveConfig configures the interactive drive.
type DriveConfig struct {
	Start     string  `json:"start" mapstructure:"start"`
	End       string  `json:"end" mapstructure:"end"`
	RouteFile string  `json:"routeFile" mapstructure:"routeFile"` // used when the route service is unavailable
	Scale     float64 `json:"scale" mapstructure:"scale"`         // world units per metre
	Timestep  string  `json:"timestep" mapstructure:"timestep"`   // "measured" or "fixed"
	HUDEvery  int     `json:"hudEvery" mapstructure:"hudEvery"`   // frames between HUD log lines
}

// Config is the full configuration.
type Config struct {
	LogLevel  string            `json:"logLevel" mapstructure:"logLevel"`
	LogsDir   string            `json:"logsDir" mapstructure:"logsDir"`
	Routing   RoutingConfig     `json:"routing" mapstructure:"routing"`
	Drivers   DriversConfig     `json:"drivers" mapstructure:"drivers"`
	Server    ServerConfig      `json:"server" mapstructure:"server"`
	Telemetry TelemetryConfig   `json:"telemetry" mapstructure:"telemetry"`
	Drive     DriveConfig       `json:"drive" mapstructure:"drive"`
	Vehicle   kinematics.Arcade `json:"vehicle" mapstructure:"vehicle"`
	Camera    camera.Follower   `json:"camera" mapstructure:"camera"`
	Traffic   traffic.Config    `json:"traffic" mapstructure:"traffic"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")

	viper.SetDefault("routing.baseUrl", "http://0.0.0.0:8082")
	viper.SetDefault("routing.timeout", "30s")

	viper.SetDefault("drivers.url", "http://0.0.0.0:8082/whole-csv")
	viper.SetDefault("drivers.timeout", "10s")

	viper.SetDefault("server.addr", "0.0.0.0:8082")
	viper.SetDefault("server.graphFile", "data/graph.json")
	viper.SetDefault("server.driversCsv", "data/placas_carros.csv")

	viper.SetDefault("telemetry.dbPath", "")
	viper.SetDefault("telemetry.batchSize", 500)
	viper.SetDefault("telemetry.chartFile", "")

	viper.SetDefault("drive.start", "")
	viper.SetDefault("drive.end", "")
	viper.SetDefault("drive.routeFile", "")
	viper.SetDefault("drive.scale", 1.0)
	viper.SetDefault("drive.timestep", TimestepMeasured)
	viper.SetDefault("drive.hudEvery", 60)

	v := kinematics.DefaultArcade()
	viper.SetDefault("vehicle.maxSpeed", v.MaxSpeedVal)
	viper.SetDefault("vehicle.accelStep", v.AccelStep)
	viper.SetDefault("vehicle.accelCap", v.AccelCap)
	viper.SetDefault("vehicle.accelDamping", v.AccelDamping)
	viper.SetDefault("vehicle.brakeAccelDamping", v.BrakeAccelDamping)
	viper.SetDefault("vehicle.brakeSpeedStep", v.BrakeSpeedStep)
	viper.SetDefault("vehicle.steeringStep", v.SteeringStep)
	viper.SetDefault("vehicle.maxSteering", v.MaxSteeringVal)
	viper.SetDefault("vehicle.steeringDamping", v.SteeringDamping)
	viper.SetDefault("vehicle.steeringDeadZone", v.SteeringDeadZone)
	viper.SetDefault("vehicle.effectiveSpeedCap", v.EffectiveSpeedCap)
	viper.SetDefault("vehicle.waypointThreshold", v.Threshold)

	c := camera.DefaultFollower()
	viper.SetDefault("camera.followDistance", c.Distance)
	viper.SetDefault("camera.height", c.Height)

	t := traffic.DefaultConfig()
	viper.SetDefault("traffic.count", t.Count)
	viper.SetDefault("traffic.lanes", t.Lanes)
	viper.SetDefault("traffic.laneWidth", t.LaneWidth)
	viper.SetDefault("traffic.cruiseSpeed", t.CruiseSpeed)
	viper.SetDefault("traffic.minGap", t.MinGap)
	viper.SetDefault("traffic.yieldDistance", t.YieldDistance)
	viper.SetDefault("traffic.laneChangeRate", t.LaneChangeRate)
	viper.SetDefault("traffic.spawnSpread", t.SpawnSpread)
	viper.SetDefault("traffic.waypointThreshold", t.Threshold)
}

// Load reads lifeflow.yaml from configDir over the defaults and applies
// LIFEFLOW_* environment overrides (LIFEFLOW_DRIVE_START for drive.start).
// A missing config file is not an error.
func Load(configDir string) (Config, error) {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	if configDir != "" {
		viper.AddConfigPath(configDir)
	}
	viper.SetEnvPrefix("LIFEFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Drive.Timestep != TimestepMeasured && cfg.Drive.Timestep != TimestepFixed {
		return Config{}, fmt.Errorf("drive.timestep must be \"measured\" or \"fixed\", got %q", cfg.Drive.Timestep)
	}
	return cfg, nil
}
