package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/mcassets/internal/engine/mesh"
	"github.com/Faultbox/mcassets/internal/model"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// ErrNoModel is returned when an id resolves to no model at all.
var ErrNoModel = errors.New("no model")

// ErrNoGeometry is returned when a model resolves but has nothing to draw.
var ErrNoGeometry = errors.New("no drawable geometry")

// Models resolves ids to merged models.
type Models interface {
	Resolve(loc resource.Location) (*model.Resolved, bool)
	ResolveModel(id resource.Location) (*model.Resolved, bool)
	ResolveBlock(blockID resource.Location) (*model.Resolved, bool)
	BlockstateModel(blockID resource.Location) (resource.Location, bool)
}

// Meshes builds (and usually caches) a mesh per resolved model.
type Meshes interface {
	ForModel(res *model.Resolved) *mesh.Mesh
}

// Pipeline renders item and block ids end to end.
type Pipeline struct {
	models   Models
	meshes   Meshes
	renderer *Renderer
}

// NewPipeline wires a model resolver, mesh builder and renderer together.
func NewPipeline(models Models, meshes Meshes, r *Renderer) *Pipeline {
	return &Pipeline{models: models, meshes: meshes, renderer: r}
}

// RenderItem renders an item id. Generated items with layers are drawn flat;
// everything else goes through the mesh path, falling back to the block's
// blockstate model when the item's own geometry yields no faces.
func (p *Pipeline) RenderItem(id resource.Location, size int) (*image.NRGBA, error) {
	res, ok := p.models.ResolveModel(id)
	if !ok {
		res, ok = p.models.ResolveBlock(id)
	}
	if !ok {
		return nil, fmt.Errorf("rendering %s: %w", id, ErrNoModel)
	}

	if res.Generated {
		if layers := res.Layers(); len(layers) > 0 {
			if img, n := p.renderer.RenderFlat(layers, res.Display, size); n > 0 {
				return img, nil
			}
		}
	}

	if img, n := p.renderMesh(res, size); n > 0 {
		return img, nil
	}
	if img, ok := p.renderBlockstate(id, size); ok {
		return img, nil
	}
	return nil, fmt.Errorf("rendering %s: %w", id, ErrNoGeometry)
}

// RenderBlock renders a block id through its blockstate, falling back to the
// item path when the block has no geometry.
func (p *Pipeline) RenderBlock(id resource.Location, size int) (*image.NRGBA, error) {
	if res, ok := p.models.ResolveBlock(id); ok {
		if img, n := p.renderMesh(res, size); n > 0 {
			return img, nil
		}
	}
	return p.RenderItem(id, size)
}

func (p *Pipeline) renderMesh(res *model.Resolved, size int) (*image.NRGBA, int) {
	m := p.meshes.ForModel(res)
	if m == nil || len(m.Faces) == 0 {
		return nil, 0
	}
	return p.renderer.RenderMesh(m, res.Display, size)
}

func (p *Pipeline) renderBlockstate(id resource.Location, size int) (*image.NRGBA, bool) {
	loc, ok := p.models.BlockstateModel(id)
	if !ok {
		return nil, false
	}
	res, ok := p.models.Resolve(loc)
	if !ok {
		return nil, false
	}
	img, n := p.renderMesh(res, size)
	return img, n > 0
}
