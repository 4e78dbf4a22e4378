package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config  string
	Debug   bool
	Archive string
	Version string
	Roots   []string
	Size    int
	Workers int
	Format  string
	Watch   bool
	Metrics string
	Light   []float64
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Archive, "archive", "", "Vanilla client jar")
	fs.StringVar(&f.Version, "version-id", "", "Game version of the archive")
	fs.StringSliceVarP(&f.Roots, "root", "r", nil, "Project resource root (repeatable, first wins)")
	fs.IntVar(&f.Size, "size", 0, "Icon size in pixels")
	fs.IntVar(&f.Workers, "workers", 0, "Render workers")
	fs.StringVar(&f.Format, "format", "", "Icon format: png or webp")
	fs.BoolVar(&f.Watch, "watch", false, "Watch project roots for changes")
	fs.StringVar(&f.Metrics, "metrics-listen", "", "Serve Prometheus metrics on this address")
	fs.Float64SliceVar(&f.Light, "light", nil, "Shading light as longitude,latitude[,strength] in degrees")
	return f
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// validate rejects flag values that cannot be applied.
func (f *Flags) validate() error {
	if f == nil {
		return nil
	}
	if n := len(f.Light); n != 0 && n != 2 && n != 3 {
		return fmt.Errorf("--light takes longitude,latitude[,strength], got %d values", n)
	}
	return nil
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Archive != "" {
		cfg.Data.Archive = f.Archive
	}
	if f.Version != "" {
		cfg.Data.Version = f.Version
	}
	if len(f.Roots) > 0 {
		cfg.Data.Roots = f.Roots
	}
	if f.Size > 0 {
		cfg.Render.Size = f.Size
	}
	if f.Workers > 0 {
		cfg.Render.Workers = f.Workers
	}
	if f.Format != "" {
		cfg.Render.Format = f.Format
	}
	if f.Watch {
		cfg.Watch.Enabled = true
	}
	if f.Metrics != "" {
		cfg.Metrics.Listen = f.Metrics
	}
	if n := len(f.Light); n == 2 || n == 3 {
		light := &LightConfig{Longitude: f.Light[0], Latitude: f.Light[1]}
		if n == 3 {
			light.Strength = f.Light[2]
		}
		cfg.Render.Light = light
	}
}
