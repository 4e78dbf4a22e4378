package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/mcassets/pkg/resource"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
		kind Kind
		loc  string
		tag  TagKind
	}{
		{"assets/minecraft/lang/en_us.json", true, KindLang, "minecraft:", ""},
		{"assets/minecraft/lang/de_de.json", false, KindUnknown, "", ""},
		{"assets/ns/models/block/stone.json", true, KindModel, "ns:block/stone", ""},
		{"assets/ns/models/item/tools/pick.json", true, KindModel, "ns:item/tools/pick", ""},
		{"assets/ns/models/entity/pig.json", false, KindUnknown, "", ""},
		{"Assets\\NS\\Models\\Block\\Stone.JSON", true, KindModel, "ns:block/stone", ""},
		{"/assets/ns/textures/block/stone.png", true, KindTexture, "ns:block/stone", ""},
		{"assets/ns/textures/block/water.png.mcmeta", false, KindUnknown, "", ""},
		{"assets/ns/blockstates/oak_log.json", true, KindBlockstate, "ns:oak_log", ""},
		{"data/ns/tags/items/logs.json", true, KindTag, "ns:logs", TagItems},
		{"data/ns/tags/block/mineable/pickaxe.json", true, KindTag, "ns:mineable/pickaxe", TagBlocks},
		{"data/ns/tags/fluids/water.json", true, KindTag, "ns:water", TagFluids},
		{"data/ns/tags/entity_types/x.json", false, KindUnknown, "", ""},
		{"data/ns/recipes/x.json", false, KindUnknown, "", ""},
		{"assets//models/block/x.json", false, KindUnknown, "", ""},
		{"assets/ns/models/block/.json", false, KindUnknown, "", ""},
		{"pack.mcmeta", false, KindUnknown, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, ok := Classify(tt.path)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.kind, e.Kind)
			if tt.kind == KindLang {
				assert.Equal(t, "minecraft", e.Location.Namespace)
			} else {
				assert.Equal(t, resource.Parse(tt.loc), e.Location)
			}
			assert.Equal(t, tt.tag, e.TagKind)
		})
	}
}

func TestLangID(t *testing.T) {
	kind, id, ok := langID("item.ns.stick")
	assert.True(t, ok)
	assert.Equal(t, "item", kind)
	assert.Equal(t, resource.New("ns", "stick"), id)

	for _, key := range []string{"item.ns", "item.ns.potion.effect", "entity.ns.pig", "block..x", "gui.ns.title"} {
		_, _, ok := langID(key)
		assert.False(t, ok, key)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "model", KindModel.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
