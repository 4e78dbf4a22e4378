package icons

import (
	"io"
	"sort"

	"github.com/Faultbox/mcassets/internal/assets"
	"github.com/Faultbox/mcassets/internal/engine/lighting"
	"github.com/Faultbox/mcassets/internal/engine/mesh"
	"github.com/Faultbox/mcassets/internal/engine/renderer"
	"github.com/Faultbox/mcassets/internal/engine/texture"
	"github.com/Faultbox/mcassets/internal/index"
	"github.com/Faultbox/mcassets/internal/model"
	"github.com/Faultbox/mcassets/internal/tags"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// Capacities bounds the per-session caches.
type Capacities struct {
	Models      int
	Meshes      int
	Textures    int
	Icons       int
	Blockstates int
}

// DefaultCapacities returns the default cache sizes.
func DefaultCapacities() Capacities {
	return Capacities{
		Models:      model.DefaultCapacity,
		Meshes:      mesh.DefaultCapacity,
		Textures:    texture.DefaultCapacity,
		Icons:       1024,
		Blockstates: assets.DefaultBlockstateCapacity,
	}
}

// Session is one catalog generation with its derived caches. It is discarded
// wholesale by ClearCaches and Invalidate.
type Session struct {
	catalog  *assets.Catalog
	models   *model.Resolver
	meshes   *mesh.Builder
	textures *texture.Cache
	tags     *tags.Resolver
	pipeline *renderer.Pipeline
	err      error
}

func newSession(project, vanilla *index.Index, caps Capacities, light *lighting.Sun, err error) *Session {
	catalog := assets.NewSized(project, vanilla, caps.Blockstates)
	s := &Session{
		catalog:  catalog,
		models:   model.NewResolver(catalog, caps.Models),
		meshes:   mesh.NewBuilder(caps.Meshes),
		textures: texture.NewCache(catalog, caps.Textures),
		tags:     tags.NewResolver(catalog),
		err:      err,
	}
	r := renderer.New(s.textures)
	if light != nil {
		r = r.WithLight(*light)
	}
	s.pipeline = renderer.NewPipeline(s.models, s.meshes, r)
	return s
}

// Err reports acquisition failures hit while building the session. The
// session stays usable; failed sources are empty.
func (s *Session) Err() error { return s.err }

// Catalog returns the layered catalog.
func (s *Session) Catalog() *assets.Catalog { return s.catalog }

// Models returns the model resolver.
func (s *Session) Models() *model.Resolver { return s.models }

// Tags returns the tag resolver.
func (s *Session) Tags() *tags.Resolver { return s.tags }

// ResolveModel resolves an item id (or model location) to its merged model.
func (s *Session) ResolveModel(id resource.Location) (*model.Resolved, bool) {
	return s.models.ResolveModel(id)
}

// TexturesForModel returns the resolved texture map of a model location.
func (s *Session) TexturesForModel(loc resource.Location) (map[string]resource.Location, bool) {
	return s.models.TexturesForModel(loc)
}

// IndexedTextures returns the texture map flattened at index time by the
// layer that defines loc, without cross-layer parents.
func (s *Session) IndexedTextures(loc resource.Location) (map[string]resource.Location, bool) {
	return s.catalog.IndexedTextures(loc)
}

// MissingTextures returns the sorted keys of textures whose location is not
// present in any layer.
func (s *Session) MissingTextures(textures map[string]resource.Location) []string {
	var missing []string
	for key, loc := range textures {
		if !s.catalog.HasTexture(loc) {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// DisplayName returns the translated name of an id.
func (s *Session) DisplayName(id resource.Location) (string, bool) {
	return s.catalog.DisplayName(id)
}

// HasItem reports whether id is a known item or block.
func (s *Session) HasItem(id resource.Location) bool {
	return s.catalog.HasItem(id)
}

// HasTag reports whether id, with or without a leading '#', names a tag.
func (s *Session) HasTag(id string) bool {
	return s.tags.HasTag(id)
}

// AllFluidIDs returns every fluid id reachable from the fluid tags.
func (s *Session) AllFluidIDs() []resource.Location {
	return s.tags.AllFluidIDs()
}

// OpenModelStream opens a model file, project first.
func (s *Session) OpenModelStream(loc resource.Location) (io.ReadCloser, error) {
	return s.catalog.OpenModelStream(loc)
}

// OpenTextureStream opens a texture file, project first.
func (s *Session) OpenTextureStream(loc resource.Location) (io.ReadCloser, error) {
	return s.catalog.OpenTextureStream(loc)
}

// OpenBlockstateStream opens a blockstate file, project first.
func (s *Session) OpenBlockstateStream(loc resource.Location) (io.ReadCloser, error) {
	return s.catalog.OpenBlockstateStream(loc)
}
