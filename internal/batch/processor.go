// Package batch renders many icons to disk with a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/mcassets/internal/icons"
	"github.com/Faultbox/mcassets/internal/logger"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Renderer produces icons synchronously. *icons.Service satisfies it.
type Renderer interface {
	RenderItemSync(ctx context.Context, id resource.Location, size int) (*image.NRGBA, error)
	RenderBlockIDSync(ctx context.Context, id resource.Location, size int) (*image.NRGBA, error)
}

// Job is one icon to export.
type Job struct {
	ID   resource.Location
	Kind icons.Kind
}

// Config holds the shared settings of a batch run.
type Config struct {
	OutputDir   string
	Size        int
	Format      string
	Workers     int
	DisplayName func(resource.Location) (string, bool) // Optional
}

// Result holds the outcome of one job.
type Result struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Image   string `json:"image,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Run exports every job. Individual failures are recorded in the results;
// the error is non-nil only when ctx ends early.
func Run(ctx context.Context, r Renderer, cfg Config, jobs []Job) ([]Result, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Format == "" {
		cfg.Format = FormatPNG
	}
	log := logger.Named("batch")

	results := make([]Result, len(jobs))
	var processed, failed atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = processJob(gctx, r, cfg, job)
			if !results[i].Success {
				failed.Add(1)
			}
			if n := processed.Add(1); n%250 == 0 {
				log.Info("progress", zap.Int64("done", n), zap.Int("total", len(jobs)))
			}
			return gctx.Err()
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	log.Info("batch finished",
		zap.Int64("processed", processed.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, err
}

func processJob(ctx context.Context, r Renderer, cfg Config, job Job) Result {
	res := Result{ID: job.ID.String(), Kind: string(job.Kind)}
	if cfg.DisplayName != nil {
		res.Name, _ = cfg.DisplayName(job.ID)
	}

	var (
		img *image.NRGBA
		err error
	)
	switch job.Kind {
	case icons.KindBlock:
		img, err = r.RenderBlockIDSync(ctx, job.ID, cfg.Size)
	default:
		img, err = r.RenderItemSync(ctx, job.ID, cfg.Size)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	rel := OutputPath(job.ID, cfg.Format)
	if err := writeImage(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel)), img, cfg.Format); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Image = rel
	res.Success = true
	return res
}

// OutputPath returns the slash-separated file path of an icon relative to
// the output directory: <namespace>/<path>.<format>.
func OutputPath(id resource.Location, format string) string {
	return id.Namespace + "/" + id.Path + "." + format
}

func writeImage(path string, img image.Image, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
