// Package config handles mcassets configuration loading and management.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Faultbox/mcassets/internal/engine/lighting"
	"github.com/Faultbox/mcassets/internal/logger"
)

// Config holds all tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Render  RenderConfig  `yaml:"render"`
	Cache   CacheConfig   `yaml:"cache"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds asset source locations.
type DataConfig struct {
	Archive string   `yaml:"archive"` // Vanilla client jar
	Version string   `yaml:"version"` // Detected from the archive name when empty
	Roots   []string `yaml:"roots"`   // Project resource roots, highest priority first
}

// RenderConfig holds icon rendering settings.
type RenderConfig struct {
	Size    int    `yaml:"size"`
	Workers int    `yaml:"workers"` // 0 means one per CPU
	Format  string `yaml:"format"`  // png or webp
	// Light overrides the icon shading light. Nil keeps the default.
	Light *LightConfig `yaml:"light,omitempty"`
}

// LightConfig places the shading light, in degrees.
type LightConfig struct {
	Longitude float64 `yaml:"longitude"` // Rotation around the vertical axis
	Latitude  float64 `yaml:"latitude"`  // Elevation above the horizon
	Strength  float64 `yaml:"strength"`  // Zero means the default strength
}

// CacheConfig holds cache capacities.
type CacheConfig struct {
	Models      int `yaml:"models"`
	Meshes      int `yaml:"meshes"`
	Textures    int `yaml:"textures"`
	Icons       int `yaml:"icons"`
	Blockstates int `yaml:"blockstates"`
}

// WatchConfig holds project watcher settings.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // Empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console or json
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Archive: "client.jar",
		},
		Render: RenderConfig{
			Size:    32,
			Workers: 0,
			Format:  "png",
		},
		Cache: CacheConfig{
			Models:      2048,
			Meshes:      1024,
			Textures:    512,
			Icons:       1024,
			Blockstates: 512,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  logger.FormatConsole,
			LogFile: "",
		},
	}
}

// RenderWorkers returns the effective worker count.
func (c *Config) RenderWorkers() int {
	if c.Render.Workers > 0 {
		return c.Render.Workers
	}
	return runtime.NumCPU()
}

// RenderLight returns the configured shading light, or nil for the default.
func (c *Config) RenderLight() *lighting.Sun {
	l := c.Render.Light
	if l == nil {
		return nil
	}
	strength := l.Strength
	if strength == 0 {
		strength = lighting.DefaultStrength
	}
	sun := lighting.FromAngles(l.Longitude, l.Latitude, strength)
	return &sun
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Render.Size <= 0 {
		return fmt.Errorf("render.size must be positive, got %d", c.Render.Size)
	}
	switch c.Render.Format {
	case "png", "webp":
	default:
		return fmt.Errorf("render.format must be png or webp, got %q", c.Render.Format)
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("render.workers must not be negative, got %d", c.Render.Workers)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if l := c.Render.Light; l != nil {
		if l.Latitude < -90 || l.Latitude > 90 {
			return fmt.Errorf("render.light.latitude must be within [-90, 90], got %g", l.Latitude)
		}
		if l.Strength < 0 || l.Strength > 1 {
			return fmt.Errorf("render.light.strength must be within [0, 1], got %g", l.Strength)
		}
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "", logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
