package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/mcassets/internal/batch"
	"github.com/Faultbox/mcassets/internal/logger"
	"github.com/Faultbox/mcassets/internal/watch"
	"github.com/Faultbox/mcassets/pkg/resource"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		block  bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render one icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := resource.Parse(args[0])
			size := a.cfg.Render.Size

			render := a.service.RenderItemSync
			if block {
				render = a.service.RenderBlockIDSync
			}
			img, err := render(cmd.Context(), id, size)
			if err != nil {
				return err
			}

			if output == "" {
				output = path.Base(id.Path) + "." + a.cfg.Render.Format
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			if err := batch.Encode(f, img, a.cfg.Render.Format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Printf("Rendered: %s (%dx%d)\n", output, size, size)
			return nil
		},
	}
	cmd.Flags().BoolVar(&block, "block", false, "Render through the blockstate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <name>.<format>)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		blocks  bool
		pattern string
	)
	cmd := &cobra.Command{
		Use:   "export <output_dir>",
		Short: "Render every item (or block) icon and write a manifest",
		Long: "Render every item (or block) icon and write a manifest.\n" +
			"With --watch the export is repeated whenever the project roots change.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := args[0]
			export := func(ctx context.Context) error {
				return exportIcons(ctx, a, outDir, blocks, pattern)
			}

			if err := export(cmd.Context()); err != nil || !a.cfg.Watch.Enabled {
				return err
			}
			if len(a.cfg.Data.Roots) == 0 {
				return errors.New("--watch needs at least one project root")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, err := watch.New(a.cfg.Data.Roots, a.cfg.Watch.Debounce, func() {
				a.service.InvalidateProject()
				if err := export(ctx); err != nil {
					logger.Warn("re-export failed", zap.Error(err))
				}
			})
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Println("Watching for changes; press Ctrl+C to stop")
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&blocks, "blocks", false, "Export block ids instead of item ids")
	cmd.Flags().StringVar(&pattern, "match", "", "Only export ids matching this glob")
	return cmd
}

func exportIcons(ctx context.Context, a *app, outDir string, blocks bool, pattern string) error {
	sess, err := a.service.Session(ctx)
	if err != nil {
		return err
	}

	ids := sess.Catalog().ItemIDs()
	if blocks {
		ids = sess.Catalog().BlockIDs()
	}
	if pattern != "" {
		match, err := compilePattern(pattern)
		if err != nil {
			return err
		}
		kept := ids[:0]
		for _, id := range ids {
			if match.Match(id.String()) || match.Match(id.Path) {
				kept = append(kept, id)
			}
		}
		ids = kept
	}

	jobs := make([]batch.Job, len(ids))
	for i, id := range ids {
		jobs[i] = batch.Job{ID: id, Kind: iconKind(blocks)}
	}

	cfg := batch.Config{
		OutputDir:   outDir,
		Size:        a.cfg.Render.Size,
		Format:      a.cfg.Render.Format,
		Workers:     a.cfg.RenderWorkers(),
		DisplayName: sess.DisplayName,
	}
	results, runErr := batch.Run(ctx, a.service, cfg, jobs)

	manifest := batch.NewManifest(cfg, results)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := batch.WriteManifest(filepath.Join(outDir, "manifest.json"), manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Printf("Exported %d icons (%d failed) to %s\n", manifest.Total-manifest.Failed, manifest.Failed, outDir)
	return runErr
}
