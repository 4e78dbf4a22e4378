// assettool is a CLI for inspecting game asset catalogs and rendering icons.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/mcassets/internal/config"
	"github.com/Faultbox/mcassets/internal/icons"
	"github.com/Faultbox/mcassets/internal/logger"
	"github.com/Faultbox/mcassets/internal/metrics"
)

// app carries state shared by the subcommands.
type app struct {
	flags   *config.Flags
	cfg     *config.Config
	metrics *metrics.Metrics
	service *icons.Service
}

func main() {
	a := &app{}
	root := newRootCmd(a)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "assettool",
		Short:         "Inspect game asset catalogs and render item icons",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	a.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newInfoCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newResolveCmd(a),
		newTagsCmd(a),
		newRenderCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads config, initialises logging and creates the service.
func (a *app) setup() error {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.InitCLI(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	version := cfg.Data.Version
	if version == "" {
		version = icons.VersionFromArchive(cfg.Data.Archive)
	}
	logger.Debug("configuration loaded",
		zap.String("archive", cfg.Data.Archive),
		zap.String("version", version),
		zap.Strings("roots", cfg.Data.Roots),
	)

	a.metrics = metrics.New()
	a.service = icons.New(
		icons.FileArchive{Path: cfg.Data.Archive},
		icons.StaticVersion(version),
		icons.Options{
			Roots:   cfg.Data.Roots,
			Workers: cfg.RenderWorkers(),
			Capacities: icons.Capacities{
				Models:      cfg.Cache.Models,
				Meshes:      cfg.Cache.Meshes,
				Textures:    cfg.Cache.Textures,
				Icons:       cfg.Cache.Icons,
				Blockstates: cfg.Cache.Blockstates,
			},
			Metrics: a.metrics,
			Light:   cfg.RenderLight(),
		},
	)
	return nil
}

func (a *app) teardown() {
	if a.service != nil {
		a.service.Close()
	}
	logger.Sync()
}
