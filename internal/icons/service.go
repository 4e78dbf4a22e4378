// Package icons is the public facade: it acquires and indexes asset sources
// at most once per key, layers them into a catalog session and renders icons
// asynchronously on a fixed worker pool.
package icons

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/mcassets/internal/cache"
	"github.com/Faultbox/mcassets/internal/engine/lighting"
	"github.com/Faultbox/mcassets/internal/index"
	"github.com/Faultbox/mcassets/internal/logger"
	"github.com/Faultbox/mcassets/internal/metrics"
	"github.com/Faultbox/mcassets/internal/model"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// ErrClosed is returned for renders requested after Close.
var ErrClosed = errors.New("service closed")

// Kind selects the render path of an icon.
type Kind string

// Icon kinds.
const (
	KindItem  Kind = "item"
	KindBlock Kind = "block"
)

// Key identifies one icon.
type Key struct {
	ID   resource.Location
	Size int
	Kind Kind
}

// Options configures a Service.
type Options struct {
	Roots      []string // Project resource roots, first wins
	Workers    int      // Zero means one per CPU
	Capacities Capacities
	Metrics    *metrics.Metrics
	Light      *lighting.Sun // Nil shades with lighting.Default()
}

// Stats summarises service activity.
type Stats struct {
	Renders     uint64
	Models      cache.Stats
	Meshes      cache.Stats
	Textures    cache.Stats
	Icons       cache.Stats
	Blockstates cache.Stats
}

// Service renders icons from a vanilla archive layered under project roots.
type Service struct {
	archives ArchiveProvider
	versions VersionDetector
	roots    []string
	caps     Capacities
	light    *lighting.Sun
	metrics  *metrics.Metrics
	log      *zap.Logger

	group   singleflight.Group
	workers *pool
	icons   *cache.FutureCache[Key, *image.NRGBA]
	renders atomic.Uint64

	mu      sync.Mutex
	gen     uint64
	epochs  map[string]uint64 // per index source, bumped when its indexes are dropped
	indexes map[string]indexResult
	session *Session
}

type indexResult struct {
	idx   *index.Index
	err   error
	epoch uint64
}

// New creates a service. Workers start immediately; call Close to stop them.
func New(archives ArchiveProvider, versions VersionDetector, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	caps := opts.Capacities
	def := DefaultCapacities()
	if caps.Models <= 0 {
		caps.Models = def.Models
	}
	if caps.Meshes <= 0 {
		caps.Meshes = def.Meshes
	}
	if caps.Textures <= 0 {
		caps.Textures = def.Textures
	}
	if caps.Icons <= 0 {
		caps.Icons = def.Icons
	}
	if caps.Blockstates <= 0 {
		caps.Blockstates = def.Blockstates
	}

	s := &Service{
		archives: archives,
		versions: versions,
		roots:    append([]string(nil), opts.Roots...),
		caps:     caps,
		light:    opts.Light,
		metrics:  opts.Metrics,
		log:      logger.Named("icons"),
		workers:  newPool(opts.Workers),
		icons:    cache.NewFutureCache[Key, *image.NRGBA](caps.Icons),
		epochs:   make(map[string]uint64),
		indexes:  make(map[string]indexResult),
	}

	s.metrics.TrackCache("icons", s.icons.Stats)
	s.metrics.TrackCache("models", func() cache.Stats { return s.sessionStats().Models })
	s.metrics.TrackCache("meshes", func() cache.Stats { return s.sessionStats().Meshes })
	s.metrics.TrackCache("textures", func() cache.Stats { return s.sessionStats().Textures })
	s.metrics.TrackCache("blockstates", func() cache.Stats { return s.sessionStats().Blockstates })
	return s
}

// Close stops the workers after draining queued renders.
func (s *Service) Close() {
	s.workers.close()
}

// Session returns the current catalog session, building it on first use.
// Concurrent callers share one build. The error is non-nil only when ctx
// ends first; acquisition failures are reported by Session.Err.
func (s *Service) Session(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	if sess := s.session; sess != nil {
		s.mu.Unlock()
		return sess, nil
	}
	gen := s.gen
	s.mu.Unlock()

	ch := s.group.DoChan(fmt.Sprintf("session:%d", gen), func() (any, error) {
		sess := s.buildSession()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen == gen && s.session == nil {
			s.session = sess
		}
		return sess, nil
	})

	select {
	case res := <-ch:
		return res.Val.(*Session), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) buildSession() *Session {
	vanilla, verr := s.vanillaIndex()
	project, perr := s.projectIndex()
	err := errors.Join(verr, perr)
	if err != nil {
		s.log.Warn("catalog built with missing sources", zap.Error(err))
	}
	return newSession(project, vanilla, s.caps, s.light, err)
}

func (s *Service) vanillaIndex() (*index.Index, error) {
	if s.versions == nil || s.archives == nil {
		return index.Empty("vanilla"), nil
	}

	ctx := context.Background()
	version, err := s.versions.DetectVersion(ctx)
	if err != nil {
		return index.Empty("vanilla"), fmt.Errorf("detecting version: %w", err)
	}
	version = strings.TrimSpace(version)

	return s.loadIndex("vanilla:"+NormalizeVersion(version), "vanilla", func() (*index.Index, error) {
		data, err := s.archives.ArchiveBytes(ctx, version)
		if err != nil {
			return index.Empty("vanilla"), fmt.Errorf("acquiring archive %s: %w", version, err)
		}
		return index.FromArchiveBytes("vanilla", data)
	})
}

func (s *Service) projectIndex() (*index.Index, error) {
	if len(s.roots) == 0 {
		return index.Empty("project"), nil
	}
	return s.loadIndex("project:"+strings.Join(s.roots, ";"), "project", func() (*index.Index, error) {
		return index.FromDirs("project", s.roots...), nil
	})
}

// loadIndex builds the index for key at most once. Results, failures
// included, stay cached until Invalidate. At most one pass per key runs at a
// time: a caller that joins a pass started before the last invalidation waits
// for it and then starts a fresh one.
func (s *Service) loadIndex(key, source string, build func() (*index.Index, error)) (*index.Index, error) {
	for {
		s.mu.Lock()
		if r, ok := s.indexes[key]; ok {
			s.mu.Unlock()
			return r.idx, r.err
		}
		epoch := s.epochs[source]
		s.mu.Unlock()

		v, _, _ := s.group.Do(key, func() (any, error) {
			start := time.Now()
			idx, err := build()
			s.metrics.ObserveIndex(source, time.Since(start), err)
			if err != nil {
				s.log.Warn("index acquisition failed", zap.String("key", key), zap.Error(err))
			} else {
				s.log.Info("index ready", zap.String("key", key), zap.Stringer("stats", idx.Stats()))
			}

			r := indexResult{idx: idx, err: err, epoch: epoch}
			s.mu.Lock()
			if s.epochs[source] == epoch {
				s.indexes[key] = r
			}
			s.mu.Unlock()
			return r, nil
		})
		if r := v.(indexResult); r.epoch >= epoch {
			return r.idx, r.err
		}
		s.log.Debug("index pass outdated, rebuilding", zap.String("key", key))
	}
}

// RenderItem returns the future icon of an item id. The first request for a
// key schedules exactly one render; later requests share its future.
func (s *Service) RenderItem(id resource.Location, size int) *cache.Future[*image.NRGBA] {
	return s.render(Key{ID: id, Size: size, Kind: KindItem})
}

// RenderBlockID returns the future icon of a block id.
func (s *Service) RenderBlockID(id resource.Location, size int) *cache.Future[*image.NRGBA] {
	return s.render(Key{ID: id, Size: size, Kind: KindBlock})
}

// RenderItemSync renders an item icon and waits for it.
func (s *Service) RenderItemSync(ctx context.Context, id resource.Location, size int) (*image.NRGBA, error) {
	return s.RenderItem(id, size).Wait(ctx)
}

// RenderBlockIDSync renders a block icon and waits for it.
func (s *Service) RenderBlockIDSync(ctx context.Context, id resource.Location, size int) (*image.NRGBA, error) {
	return s.RenderBlockID(id, size).Wait(ctx)
}

func (s *Service) render(key Key) *cache.Future[*image.NRGBA] {
	placeholder := image.NewNRGBA(image.Rect(0, 0, max(key.Size, 0), max(key.Size, 0)))
	future, complete := s.icons.Reserve(key, placeholder)
	s.metrics.IconRequest(complete != nil)
	if complete == nil {
		return future
	}

	if !s.workers.submit(func() { complete(s.renderNow(key)) }) {
		complete(nil, ErrClosed)
	}
	return future
}

func (s *Service) renderNow(key Key) (*image.NRGBA, error) {
	s.renders.Add(1)
	start := time.Now()

	sess, err := s.Session(context.Background())
	if err != nil {
		return nil, err
	}

	var img *image.NRGBA
	switch key.Kind {
	case KindBlock:
		img, err = sess.pipeline.RenderBlock(key.ID, key.Size)
	default:
		img, err = sess.pipeline.RenderItem(key.ID, key.Size)
	}

	s.metrics.ObserveRender(string(key.Kind), time.Since(start), err)
	if err != nil {
		s.log.Debug("render failed", zap.Stringer("id", key.ID), zap.String("kind", string(key.Kind)), zap.Error(err))
	}
	return img, err
}

// ClearCaches discards the session and every cached icon. Indexes are kept.
func (s *Service) ClearCaches() {
	s.mu.Lock()
	s.gen++
	s.session = nil
	s.mu.Unlock()
	s.icons.Clear()
}

// Invalidate discards the session, icons and every cached index, including
// cached acquisition failures.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.session = nil
	s.epochs["vanilla"]++
	s.epochs["project"]++
	s.indexes = make(map[string]indexResult)
	s.mu.Unlock()
	s.icons.Clear()
}

// InvalidateProject re-indexes the project roots on next use and keeps the
// vanilla index.
func (s *Service) InvalidateProject() {
	s.mu.Lock()
	s.gen++
	s.session = nil
	s.epochs["project"]++
	for key := range s.indexes {
		if strings.HasPrefix(key, "project:") {
			delete(s.indexes, key)
		}
	}
	s.mu.Unlock()
	s.icons.Clear()
}

// Stats returns render and cache statistics for the current session.
func (s *Service) Stats() Stats {
	st := s.sessionStats()
	st.Renders = s.renders.Load()
	st.Icons = s.icons.Stats()
	return st
}

func (s *Service) sessionStats() Stats {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return Stats{}
	}
	return Stats{
		Models:      sess.models.Stats(),
		Meshes:      sess.meshes.Stats(),
		Textures:    sess.textures.Stats(),
		Blockstates: sess.catalog.BlockstateStats(),
	}
}

// ResolveModel resolves an item id or model location.
func (s *Service) ResolveModel(ctx context.Context, id resource.Location) (*model.Resolved, bool, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, false, err
	}
	res, ok := sess.ResolveModel(id)
	return res, ok, nil
}

// TexturesForModel returns the resolved texture map of a model location.
func (s *Service) TexturesForModel(ctx context.Context, loc resource.Location) (map[string]resource.Location, bool, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, false, err
	}
	textures, ok := sess.TexturesForModel(loc)
	return textures, ok, nil
}

// DisplayName returns the translated name of an id.
func (s *Service) DisplayName(ctx context.Context, id resource.Location) (string, bool, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return "", false, err
	}
	name, ok := sess.DisplayName(id)
	return name, ok, nil
}

// HasItem reports whether id is a known item or block.
func (s *Service) HasItem(ctx context.Context, id resource.Location) (bool, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return false, err
	}
	return sess.HasItem(id), nil
}

// HasTag reports whether id names a tag in any table.
func (s *Service) HasTag(ctx context.Context, id string) (bool, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return false, err
	}
	return sess.HasTag(id), nil
}

// AllFluidIDs returns every fluid id reachable from the fluid tags.
func (s *Service) AllFluidIDs(ctx context.Context) ([]resource.Location, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sess.AllFluidIDs(), nil
}

// OpenModelStream opens a model file, project first.
func (s *Service) OpenModelStream(ctx context.Context, loc resource.Location) (io.ReadCloser, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sess.OpenModelStream(loc)
}

// OpenTextureStream opens a texture file, project first.
func (s *Service) OpenTextureStream(ctx context.Context, loc resource.Location) (io.ReadCloser, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sess.OpenTextureStream(loc)
}

// OpenBlockstateStream opens a blockstate file, project first.
func (s *Service) OpenBlockstateStream(ctx context.Context, loc resource.Location) (io.ReadCloser, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sess.OpenBlockstateStream(loc)
}
