package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// fakeSource is an in-memory Source.
type fakeSource struct {
	models      map[resource.Location]*formats.Model
	byID        map[resource.Location]resource.Location
	blockstates map[resource.Location]*formats.Blockstate
	lookups     int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		models:      make(map[resource.Location]*formats.Model),
		byID:        make(map[resource.Location]resource.Location),
		blockstates: make(map[resource.Location]*formats.Blockstate),
	}
}

func (s *fakeSource) add(id, parent string, textures map[string]string) *formats.Model {
	m := &formats.Model{Parent: parent, Textures: textures}
	s.models[resource.Parse(id)] = m
	return m
}

func (s *fakeSource) RawModel(loc resource.Location) (*formats.Model, bool) {
	s.lookups++
	m, ok := s.models[loc]
	return m, ok
}

func (s *fakeSource) ModelFor(id resource.Location) (resource.Location, bool) {
	loc, ok := s.byID[id]
	return loc, ok
}

func (s *fakeSource) Blockstate(id resource.Location) (*formats.Blockstate, bool) {
	bs, ok := s.blockstates[id]
	return bs, ok
}

func loc(s string) resource.Location { return resource.Parse(s) }

func TestMergeTexturesChildOverridesParent(t *testing.T) {
	src := newFakeSource()
	src.add("block/parent", "", map[string]string{"side": "block/a", "top": "block/b"})
	src.add("block/child", "block/parent", map[string]string{"top": "block/c", "bottom": "block/d"})

	merged := MergeTextures(src, loc("block/child"), nil)
	assert.Equal(t, map[string]string{
		"side":   "block/a",
		"top":    "block/c",
		"bottom": "block/d",
	}, merged)
}

func TestMergeTexturesParentCycleTerminates(t *testing.T) {
	src := newFakeSource()
	src.add("block/a", "block/b", map[string]string{"x": "block/from_a"})
	src.add("block/b", "block/a", map[string]string{"x": "block/from_b", "y": "block/y"})

	merged := MergeTextures(src, loc("block/a"), NewMergeState())
	assert.Equal(t, "block/from_a", merged["x"])
	assert.Equal(t, "block/y", merged["y"])

	selfRef := newFakeSource()
	selfRef.add("block/self", "block/self", map[string]string{"all": "block/s"})
	assert.Equal(t, map[string]string{"all": "block/s"}, MergeTextures(selfRef, loc("block/self"), nil))
}

func TestMergeTexturesMemoised(t *testing.T) {
	src := newFakeSource()
	src.add("block/root", "", map[string]string{"a": "block/a"})
	src.add("block/one", "block/root", nil)
	src.add("block/two", "block/root", nil)

	st := NewMergeState()
	MergeTextures(src, loc("block/one"), st)
	before := src.lookups
	MergeTextures(src, loc("block/one"), st)
	assert.Equal(t, before, src.lookups, "second merge served from memo")
}

func TestResolveRef(t *testing.T) {
	textures := map[string]string{
		"a":    "#b",
		"b":    "#c",
		"c":    "ns:block/literal",
		"self": "#self",
		"gap":  "#missing",
	}

	got, ok := ResolveRef(textures, "#a")
	require.True(t, ok)
	assert.Equal(t, loc("ns:block/literal"), got)

	_, ok = ResolveRef(textures, "#self")
	assert.False(t, ok)

	_, ok = ResolveRef(textures, "#gap")
	assert.False(t, ok)

	_, ok = ResolveRef(textures, "")
	assert.False(t, ok)

	got, ok = ResolveRef(nil, "block/stone")
	require.True(t, ok)
	assert.Equal(t, loc("minecraft:block/stone"), got)
}

func TestResolveRefDepthBound(t *testing.T) {
	chain := func(n int) map[string]string {
		m := make(map[string]string)
		for i := 0; i < n; i++ {
			m[fmt.Sprintf("k%d", i)] = fmt.Sprintf("#k%d", i+1)
		}
		m[fmt.Sprintf("k%d", n)] = "ns:block/end"
		return m
	}

	// "#k0" takes n+1 hops to reach the literal.
	_, ok := ResolveRef(chain(MaxIndirection-1), "#k0")
	assert.True(t, ok, "chain within the bound resolves")

	_, ok = ResolveRef(chain(MaxIndirection), "#k0")
	assert.False(t, ok, "chain beyond the bound is unresolved")
}

func TestFlattenDropsUnresolved(t *testing.T) {
	flat := Flatten(map[string]string{
		"all":      "block/stone",
		"particle": "#all",
		"broken":   "#nothing",
	})
	assert.Equal(t, map[string]resource.Location{
		"all":      loc("block/stone"),
		"particle": loc("block/stone"),
	}, flat)
}

func TestResolverInheritsElementsAndDisplay(t *testing.T) {
	src := newFakeSource()
	cube := src.add("block/cube", "", map[string]string{"particle": "#north"})
	cube.Elements = []formats.Element{{To: [3]float64{16, 16, 16}}}
	cubeAll := src.add("block/cube_all", "block/cube", map[string]string{"north": "#all"})
	cubeAll.Display = map[string]formats.Transform{"gui": {Rotation: [3]float64{30, 45, 0}, Scale: [3]float64{1, 1, 1}}}
	src.add("ns:block/stone", "block/cube_all", map[string]string{"all": "ns:block/stone"})

	r := NewResolver(src, 8)
	res, ok := r.Resolve(loc("ns:block/stone"))
	require.True(t, ok)

	assert.True(t, res.IsBlock())
	assert.Len(t, res.Elements, 1)
	require.NotNil(t, res.Display)
	assert.Equal(t, 45.0, res.Display.Rotation[1])
	assert.Equal(t, loc("ns:block/stone"), res.Textures["particle"])
	assert.False(t, res.Generated)
	assert.Nil(t, res.BlockModel)
	assert.Equal(t, []resource.Location{loc("ns:block/stone"), loc("block/cube_all"), loc("block/cube")}, res.Chain)

	for _, v := range res.Textures {
		assert.NotEqual(t, "#", v.Path[:1])
	}
}

func TestResolverGeneratedAndLayers(t *testing.T) {
	src := newFakeSource()
	src.add("item/generated", "builtin/generated", nil)
	src.add("ns:item/wand", "item/generated", map[string]string{
		"layer10": "ns:item/c",
		"layer2":  "ns:item/b",
		"layer0":  "ns:item/a",
		"layerx":  "ns:item/ignored",
	})

	r := NewResolver(src, 8)
	res, ok := r.Resolve(loc("ns:item/wand"))
	require.True(t, ok)
	assert.True(t, res.Generated)
	assert.Equal(t, []resource.Location{loc("ns:item/a"), loc("ns:item/b"), loc("ns:item/c")}, res.Layers())
}

func TestResolverGeneratedWithoutVanillaBase(t *testing.T) {
	// The parent has no definition but still counts as the generated base.
	src := newFakeSource()
	src.add("ns:item/stick", "item/generated", map[string]string{"layer0": "ns:item/stick"})

	res, ok := NewResolver(src, 8).Resolve(loc("ns:item/stick"))
	require.True(t, ok)
	assert.True(t, res.Generated)
}

func TestResolverBlockDelegate(t *testing.T) {
	src := newFakeSource()
	src.add("ns:block/lamp", "block/cube_all", map[string]string{"all": "ns:block/lamp"})
	src.add("ns:item/lamp", "ns:block/lamp", nil)
	src.byID[loc("ns:lamp")] = loc("ns:item/lamp")

	r := NewResolver(src, 8)
	res, ok := r.ResolveModel(loc("ns:lamp"))
	require.True(t, ok)
	require.NotNil(t, res.BlockModel)
	assert.Equal(t, loc("ns:block/lamp"), *res.BlockModel)
}

func TestResolveModelCandidates(t *testing.T) {
	src := newFakeSource()
	src.add("ns:block/ore", "", nil)
	src.add("ns:item/ore", "ns:block/ore", nil)

	r := NewResolver(src, 8)

	res, ok := r.ResolveModel(loc("ns:ore"))
	require.True(t, ok)
	assert.Equal(t, loc("ns:item/ore"), res.ID, "item model preferred")

	res, ok = r.ResolveModel(loc("ns:block/ore"))
	require.True(t, ok)
	assert.Equal(t, loc("ns:block/ore"), res.ID)

	_, ok = r.ResolveModel(loc("ns:nothing"))
	assert.False(t, ok)
}

func TestResolverCycleTerminates(t *testing.T) {
	src := newFakeSource()
	src.add("block/a", "block/b", map[string]string{"all": "block/x"})
	src.add("block/b", "block/a", nil)

	res, ok := NewResolver(src, 8).Resolve(loc("block/a"))
	require.True(t, ok)
	assert.Equal(t, []resource.Location{loc("block/a"), loc("block/b")}, res.Chain)
}

func TestResolverIsMemoised(t *testing.T) {
	src := newFakeSource()
	src.add("block/a", "", map[string]string{"all": "block/x"})

	r := NewResolver(src, 8)
	first, _ := r.Resolve(loc("block/a"))
	second, _ := r.Resolve(loc("block/a"))
	assert.Same(t, first, second)
	assert.Equal(t, uint64(1), r.Stats().Hits)

	r.Clear()
	third, _ := r.Resolve(loc("block/a"))
	assert.NotSame(t, first, third)
	assert.Equal(t, first, third)
}

func TestBlockstateMultipartResolves(t *testing.T) {
	src := newFakeSource()
	src.add("ns:block/x", "", map[string]string{"all": "ns:block/x"})
	bs, err := formats.ParseBlockstate([]byte(`{"variants": {}, "multipart": [{"apply": {"model": "ns:block/x"}}]}`))
	require.NoError(t, err)
	src.blockstates[loc("ns:fence")] = bs

	r := NewResolver(src, 8)
	model, ok := r.BlockstateModel(loc("ns:fence"))
	require.True(t, ok)
	assert.Equal(t, loc("ns:block/x"), model)

	res, ok := r.ResolveBlock(loc("ns:fence"))
	require.True(t, ok)
	assert.Equal(t, loc("ns:block/x"), res.ID)

	textures, ok := r.TexturesForModel(loc("ns:block/x"))
	require.True(t, ok)
	assert.Equal(t, loc("ns:block/x"), textures["all"])
}
