// Package assets provides the catalog: a read-only view of a project index
// layered over a vanilla index. Project entries shadow vanilla entries with
// the same normalised key.
package assets

import (
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/mcassets/internal/cache"
	"github.com/Faultbox/mcassets/internal/index"
	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// ErrNotFound is returned when no layer provides an entry.
var ErrNotFound = errors.New("asset not found")

// DefaultBlockstateCapacity bounds the parsed-blockstate cache.
const DefaultBlockstateCapacity = 512

// Catalog merges a project index over a vanilla index.
type Catalog struct {
	project *index.Index
	vanilla *index.Index

	blockstates *cache.LRU[resource.Location, *formats.Blockstate]
}

// New creates a catalog with the default blockstate cache. A nil index is
// treated as empty.
func New(project, vanilla *index.Index) *Catalog {
	return NewSized(project, vanilla, DefaultBlockstateCapacity)
}

// NewSized is New with an explicit parsed-blockstate cache capacity.
func NewSized(project, vanilla *index.Index, blockstates int) *Catalog {
	if project == nil {
		project = index.Empty("project")
	}
	if vanilla == nil {
		vanilla = index.Empty("vanilla")
	}
	return &Catalog{
		project:     project,
		vanilla:     vanilla,
		blockstates: cache.NewLRU[resource.Location, *formats.Blockstate](blockstates),
	}
}

// Project returns the project layer.
func (c *Catalog) Project() *index.Index { return c.project }

// Vanilla returns the vanilla layer.
func (c *Catalog) Vanilla() *index.Index { return c.vanilla }

// layers returns indexes in priority order (highest first).
func (c *Catalog) layers() [2]*index.Index {
	return [2]*index.Index{c.project, c.vanilla}
}

// RawModel returns the highest-priority raw definition of a model location.
func (c *Catalog) RawModel(loc resource.Location) (*formats.Model, bool) {
	for _, idx := range c.layers() {
		if m, ok := idx.Models[loc]; ok {
			return m, true
		}
	}
	return nil, false
}

// ModelFor maps an id to its model location.
func (c *Catalog) ModelFor(id resource.Location) (resource.Location, bool) {
	for _, idx := range c.layers() {
		if loc, ok := idx.ModelsByID[id]; ok {
			return loc, true
		}
	}
	return resource.Location{}, false
}

// IndexedTextures returns the texture map flattened at index time by the
// layer that defines the model. Unlike the resolver it cannot see parents in
// other layers.
func (c *Catalog) IndexedTextures(loc resource.Location) (map[string]resource.Location, bool) {
	for _, idx := range c.layers() {
		if t, ok := idx.ModelTextures[loc]; ok {
			return t, true
		}
	}
	return nil, false
}

// Blockstate returns the parsed blockstate of a block id.
func (c *Catalog) Blockstate(id resource.Location) (*formats.Blockstate, bool) {
	return c.blockstates.GetOrCompute(id, func() (*formats.Blockstate, bool) {
		data, err := c.read(id.BlockstatePath())
		if err != nil {
			return nil, false
		}
		bs, err := formats.ParseBlockstate(data)
		if err != nil {
			return nil, false
		}
		return bs, true
	})
}

// BlockstateStats reports the parsed-blockstate cache.
func (c *Catalog) BlockstateStats() cache.Stats {
	return c.blockstates.Stats()
}

// DisplayName returns the translated name of an item, block or fluid id.
func (c *Catalog) DisplayName(id resource.Location) (string, bool) {
	for _, idx := range c.layers() {
		if name, ok := idx.DisplayNames[id]; ok {
			return name, true
		}
	}
	return "", false
}

// HasItem reports whether id is a known item or block, or has a model.
func (c *Catalog) HasItem(id resource.Location) bool {
	for _, idx := range c.layers() {
		if idx.ItemIDs.Has(id) || idx.BlockIDs.Has(id) {
			return true
		}
		if _, ok := idx.ModelsByID[id]; ok {
			return true
		}
	}
	return false
}

// HasTexture reports whether a texture id exists in any layer.
func (c *Catalog) HasTexture(loc resource.Location) bool {
	return c.project.Textures.Has(loc) || c.vanilla.Textures.Has(loc)
}

// TagValues returns the raw values of a tag; project tags shadow vanilla.
func (c *Catalog) TagValues(kind index.TagKind, tag resource.Location) ([]string, bool) {
	for _, idx := range c.layers() {
		if values, ok := idx.Tags.Table(kind)[tag]; ok {
			return values, true
		}
	}
	return nil, false
}

// TagIDs returns every tag id of kind, sorted.
func (c *Catalog) TagIDs(kind index.TagKind) []resource.Location {
	set := make(resource.Set)
	for _, idx := range c.layers() {
		for tag := range idx.Tags.Table(kind) {
			set.Add(tag)
		}
	}
	return set.Sorted()
}

// ItemIDs returns the union of item ids, sorted.
func (c *Catalog) ItemIDs() []resource.Location {
	return union(c.project.ItemIDs, c.vanilla.ItemIDs)
}

// BlockIDs returns the union of block ids, sorted.
func (c *Catalog) BlockIDs() []resource.Location {
	return union(c.project.BlockIDs, c.vanilla.BlockIDs)
}

// TextureIDs returns the union of texture ids, sorted.
func (c *Catalog) TextureIDs() []resource.Location {
	return union(c.project.Textures, c.vanilla.Textures)
}

// ModelLocations returns every model location, sorted.
func (c *Catalog) ModelLocations() []resource.Location {
	set := make(resource.Set)
	for _, idx := range c.layers() {
		for loc := range idx.Models {
			set.Add(loc)
		}
	}
	return set.Sorted()
}

func union(a, b resource.Set) []resource.Location {
	set := make(resource.Set, len(a)+len(b))
	for l := range a {
		set.Add(l)
	}
	for l := range b {
		set.Add(l)
	}
	return set.Sorted()
}

// OpenModelStream opens the model definition at loc.
func (c *Catalog) OpenModelStream(loc resource.Location) (io.ReadCloser, error) {
	return c.open(loc.ModelPath())
}

// OpenTextureStream opens the PNG of a texture id.
func (c *Catalog) OpenTextureStream(loc resource.Location) (io.ReadCloser, error) {
	return c.open(loc.TexturePath())
}

// OpenBlockstateStream opens the blockstate of a block id.
func (c *Catalog) OpenBlockstateStream(loc resource.Location) (io.ReadCloser, error) {
	return c.open(loc.BlockstatePath())
}

// open searches layers in priority order.
func (c *Catalog) open(entryPath string) (io.ReadCloser, error) {
	for _, idx := range c.layers() {
		rc, err := idx.Open(entryPath)
		if err == nil {
			return rc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, entryPath)
}

// read reads an entry fully from the highest-priority layer providing it.
func (c *Catalog) read(entryPath string) ([]byte, error) {
	rc, err := c.open(entryPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", entryPath, err)
	}
	return data, nil
}

// ReadTexture reads the PNG bytes of a texture id.
func (c *Catalog) ReadTexture(loc resource.Location) ([]byte, error) {
	return c.read(loc.TexturePath())
}
