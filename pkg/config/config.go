// Package config loads application settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the simulator.
type Config struct {
	Physics   PhysicsConfig   `json:"physics" yaml:"physics"`
	Driver    DriverConfig    `json:"driver" yaml:"driver"`
	Window    WindowConfig    `json:"window" yaml:"window"`
	Scenarios ScenariosConfig `json:"scenarios" yaml:"scenarios"`
	Stream    StreamConfig    `json:"stream" yaml:"stream"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// PhysicsConfig configures the force law.
type PhysicsConfig struct {
	// G is the gravitational constant at simulation scale.
	G float64 `json:"g" yaml:"g"`

	// Softening is the Plummer softening length. 0 disables softening.
	Softening float64 `json:"softening" yaml:"softening"`

	// Workers bounds the goroutines used per acceleration pass.
	Workers int `json:"workers" yaml:"workers"`
}

// DriverConfig configures the step loop.
type DriverConfig struct {
	// TimeStep is dt in simulation time units.
	TimeStep float64 `json:"time_step" yaml:"time_step"`

	// TickInterval is the wall-clock delay between steps in headless mode.
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval"`

	// StepsPerFrame is how many steps run between two published frames.
	StepsPerFrame int `json:"steps_per_frame" yaml:"steps_per_frame"`

	// MaxTracePoints caps the number of path points kept per body.
	MaxTracePoints int `json:"max_trace_points" yaml:"max_trace_points"`

	// ShowPaths toggles path drawing at startup.
	ShowPaths bool `json:"show_paths" yaml:"show_paths"`
}

type WindowConfig struct {
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Title  string `json:"title" yaml:"title"`
}

// ScenariosConfig selects the configuration file and initial entry.
type ScenariosConfig struct {
	// File is a YAML or JSON scenario file. Empty uses the embedded set.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Default is the configuration prepared at startup. Empty picks the
	// first one in the file.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

type StreamConfig struct {
	Addr string `json:"addr" yaml:"addr"`

	// FrameRate caps websocket frames per second.
	FrameRate float64 `json:"frame_rate" yaml:"frame_rate"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

type LoggingConfig struct {
	// Level is "info" (default), "debug" or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Physics: PhysicsConfig{
			G:       10000,
			Workers: 1,
		},
		Driver: DriverConfig{
			TimeStep:       0.0005,
			TickInterval:   time.Millisecond,
			StepsPerFrame:  10,
			MaxTracePoints: 200,
			ShowPaths:      true,
		},
		Window: WindowConfig{
			Width:  900,
			Height: 700,
			Title:  "Gravity Simulator",
		},
		Stream: StreamConfig{
			Addr:      ":8080",
			FrameRate: 30,
		},
		Store: StoreConfig{
			Path: "trajectories.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GRAVITY_* environment variables.
func (c *Config) ApplyEnv() error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"GRAVITY_G", &c.Physics.G},
		{"GRAVITY_DT", &c.Driver.TimeStep},
		{"GRAVITY_SOFTENING", &c.Physics.Softening},
	}
	for _, f := range floats {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = x
	}
	if v := os.Getenv("GRAVITY_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GRAVITY_WORKERS: %w", err)
		}
		c.Physics.Workers = n
	}
	if v := os.Getenv("GRAVITY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GRAVITY_SCENARIOS"); v != "" {
		c.Scenarios.File = v
	}
	if v := os.Getenv("GRAVITY_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	if !finitePositive(c.Physics.G) {
		return fmt.Errorf("physics.g must be finite and positive, got %v", c.Physics.G)
	}
	if c.Physics.Softening < 0 || math.IsNaN(c.Physics.Softening) || math.IsInf(c.Physics.Softening, 0) {
		return fmt.Errorf("physics.softening must be finite and non-negative, got %v", c.Physics.Softening)
	}
	if c.Physics.Workers < 1 {
		return fmt.Errorf("physics.workers must be at least 1, got %d", c.Physics.Workers)
	}
	if !finitePositive(c.Driver.TimeStep) {
		return fmt.Errorf("driver.time_step must be finite and positive, got %v", c.Driver.TimeStep)
	}
	if c.Driver.TickInterval <= 0 {
		return fmt.Errorf("driver.tick_interval must be positive, got %v", c.Driver.TickInterval)
	}
	if c.Driver.StepsPerFrame < 1 {
		return fmt.Errorf("driver.steps_per_frame must be at least 1, got %d", c.Driver.StepsPerFrame)
	}
	if c.Driver.MaxTracePoints < 0 {
		return fmt.Errorf("driver.max_trace_points must not be negative, got %d", c.Driver.MaxTracePoints)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Stream.FrameRate <= 0 {
		return fmt.Errorf("stream.frame_rate must be positive, got %v", c.Stream.FrameRate)
	}
	return nil
}

func finitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
