package model

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/mcassets/internal/cache"
	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// Built-in bases that mark an item model as a flat layered sprite.
var (
	ItemGenerated    = resource.New("minecraft", "item/generated")
	BuiltinGenerated = resource.New("minecraft", "builtin/generated")
)

// Model directory prefixes.
const (
	BlockPrefix = "block/"
	ItemPrefix  = "item/"
)

// DefaultCapacity is the resolved-model cache size used when none is given.
const DefaultCapacity = 2048

// Source is the catalog view the resolver works against.
type Source interface {
	Lookup
	// ModelFor maps an item/block id to its preferred model location.
	ModelFor(id resource.Location) (resource.Location, bool)
	// Blockstate returns the parsed blockstate of a block id.
	Blockstate(id resource.Location) (*formats.Blockstate, bool)
}

// Resolved is a fully resolved model. Values are shared through the cache
// and must be treated as read-only.
type Resolved struct {
	ID         resource.Location
	Textures   map[string]resource.Location // No "#" references left
	Elements   []formats.Element            // Nearest non-empty list up the chain
	Display    *formats.Transform           // Nearest gui transform up the chain
	Generated  bool                         // Derives from a generated base
	BlockModel *resource.Location           // Item delegating to a block model
	Chain      []resource.Location          // ID first, then parents
}

// IsBlock reports whether the model lives under models/block.
func (r *Resolved) IsBlock() bool {
	return strings.HasPrefix(r.ID.Path, BlockPrefix)
}

// Layers returns layer0..layerN textures in numeric order.
func (r *Resolved) Layers() []resource.Location {
	type layer struct {
		n   int
		loc resource.Location
	}
	var layers []layer
	for key, loc := range r.Textures {
		if !strings.HasPrefix(key, "layer") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, "layer"))
		if err != nil || n < 0 {
			continue
		}
		layers = append(layers, layer{n, loc})
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i].n < layers[j].n })

	out := make([]resource.Location, len(layers))
	for i, l := range layers {
		out[i] = l.loc
	}
	return out
}

// Resolver resolves and memoises models over a Source.
type Resolver struct {
	src   Source
	cache *cache.LRU[resource.Location, *Resolved]
}

// NewResolver creates a resolver with a bounded result cache.
func NewResolver(src Source, capacity int) *Resolver {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Resolver{
		src:   src,
		cache: cache.NewLRU[resource.Location, *Resolved](capacity),
	}
}

// Resolve resolves the model at loc (a model location such as
// "minecraft:block/stone").
func (r *Resolver) Resolve(loc resource.Location) (*Resolved, bool) {
	return r.cache.GetOrCompute(loc, func() (*Resolved, bool) {
		return r.resolve(loc)
	})
}

func (r *Resolver) resolve(loc resource.Location) (*Resolved, bool) {
	if _, ok := r.src.RawModel(loc); !ok {
		return nil, false
	}

	res := &Resolved{
		ID:       loc,
		Textures: Flatten(MergeTextures(r.src, loc, NewMergeState())),
		Chain:    r.chain(loc),
	}

	isItem := strings.HasPrefix(loc.Path, ItemPrefix)
	for i, link := range res.Chain {
		if link == ItemGenerated || link == BuiltinGenerated {
			res.Generated = true
		}
		if isItem && i > 0 && res.BlockModel == nil && strings.HasPrefix(link.Path, BlockPrefix) {
			block := link
			res.BlockModel = &block
		}

		m, ok := r.src.RawModel(link)
		if !ok {
			continue
		}
		if res.Elements == nil && len(m.Elements) > 0 {
			res.Elements = m.Elements
		}
		if res.Display == nil {
			if gui, ok := m.GUI(); ok {
				res.Display = &gui
			}
		}
	}

	return res, true
}

// chain lists loc and its ancestors. It stops at the first cycle and after
// the first parent that has no definition.
func (r *Resolver) chain(loc resource.Location) []resource.Location {
	visiting := make(resource.Set)
	var out []resource.Location
	current := loc
	for !visiting.Has(current) {
		visiting.Add(current)
		out = append(out, current)

		m, ok := r.src.RawModel(current)
		if !ok {
			break
		}
		parent, ok := ParentOf(m)
		if !ok {
			break
		}
		current = parent
	}
	return out
}

// ResolveModel resolves an item or block id (or a model location) to its
// model. Item models are preferred over block models.
func (r *Resolver) ResolveModel(id resource.Location) (*Resolved, bool) {
	for _, candidate := range r.candidates(id) {
		if res, ok := r.Resolve(candidate); ok {
			return res, true
		}
	}
	return nil, false
}

func (r *Resolver) candidates(id resource.Location) []resource.Location {
	var out []resource.Location
	if loc, ok := r.src.ModelFor(id); ok {
		out = append(out, loc)
	}
	if strings.HasPrefix(id.Path, ItemPrefix) || strings.HasPrefix(id.Path, BlockPrefix) {
		out = append(out, id)
	}
	return append(out, id.WithPrefix(ItemPrefix), id.WithPrefix(BlockPrefix))
}

// BlockstateModel returns the model referenced by the first variant of a
// block's blockstate, or by the first multipart branch.
func (r *Resolver) BlockstateModel(blockID resource.Location) (resource.Location, bool) {
	bs, ok := r.src.Blockstate(blockID)
	if !ok {
		return resource.Location{}, false
	}
	model, ok := bs.FirstModel()
	if !ok {
		return resource.Location{}, false
	}
	return resource.Parse(model), true
}

// ResolveBlock resolves a block id through its blockstate, falling back to
// the block model of the same name.
func (r *Resolver) ResolveBlock(blockID resource.Location) (*Resolved, bool) {
	if loc, ok := r.BlockstateModel(blockID); ok {
		if res, ok := r.Resolve(loc); ok {
			return res, true
		}
	}
	return r.Resolve(blockID.WithPrefix(BlockPrefix))
}

// TexturesForModel returns the flattened texture map of a model location.
func (r *Resolver) TexturesForModel(loc resource.Location) (map[string]resource.Location, bool) {
	res, ok := r.Resolve(loc)
	if !ok {
		return nil, false
	}
	return res.Textures, true
}

// Stats returns cache statistics.
func (r *Resolver) Stats() cache.Stats {
	return r.cache.Stats()
}

// Clear drops all memoised results.
func (r *Resolver) Clear() {
	r.cache.Clear()
}
