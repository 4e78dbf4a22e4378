package index

import (
	"go.uber.org/zap"

	"github.com/Faultbox/mcassets/internal/logger"
	"github.com/Faultbox/mcassets/internal/model"
	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// builder applies the classification rules shared by both indexers. Every
// table is first-wins, so earlier roots shadow later ones.
type builder struct {
	idx     *Index
	log     *zap.Logger
	skipped int
}

func newBuilder(name string) *builder {
	return &builder{
		idx: Empty(name),
		log: logger.Named("index").With(zap.String("source", name)),
	}
}

// add indexes one classified entry. read is only called for entries whose
// content is needed.
func (b *builder) add(path string, e Entry, read func() ([]byte, error)) {
	switch e.Kind {
	case KindTexture:
		b.idx.Textures.Add(e.Location)
	case KindBlockstate:
		b.idx.Blockstates.Add(e.Location)
		b.idx.BlockIDs.Add(e.Location)
	case KindModel:
		if _, seen := b.idx.Models[e.Location]; seen {
			return
		}
		data, ok := b.read(path, read)
		if !ok {
			return
		}
		m, err := formats.ParseModel(data)
		if err != nil {
			b.skip(path, err)
			return
		}
		b.addModel(e.Location, m)
	case KindLang:
		data, ok := b.read(path, read)
		if !ok {
			return
		}
		entries, err := formats.ParseLang(data)
		if err != nil {
			b.skip(path, err)
			return
		}
		b.addLang(entries)
	case KindTag:
		table := b.idx.Tags.Table(e.TagKind)
		if _, seen := table[e.Location]; seen {
			return
		}
		data, ok := b.read(path, read)
		if !ok {
			return
		}
		tf, err := formats.ParseTagFile(data)
		if err != nil {
			b.skip(path, err)
			return
		}
		table[e.Location] = dedupe(tf.Values)
	}
}

func (b *builder) read(path string, read func() ([]byte, error)) ([]byte, bool) {
	data, err := read()
	if err != nil {
		b.skip(path, err)
		return nil, false
	}
	return data, true
}

func (b *builder) skip(path string, err error) {
	b.skipped++
	b.log.Debug("skipping entry", zap.String("path", path), zap.Error(err))
}

func (b *builder) addModel(loc resource.Location, m *formats.Model) {
	b.idx.Models[loc] = m

	if id, ok := loc.TrimPrefix(model.ItemPrefix); ok {
		b.idx.ItemIDs.Add(id)
		// Item models take precedence over block models of the same id.
		if existing, ok := b.idx.ModelsByID[id]; !ok || !isItemModel(existing) {
			b.idx.ModelsByID[id] = loc
		}
		return
	}
	if id, ok := loc.TrimPrefix(model.BlockPrefix); ok {
		b.idx.BlockIDs.Add(id)
		if _, ok := b.idx.ModelsByID[id]; !ok {
			b.idx.ModelsByID[id] = loc
		}
	}
}

func isItemModel(loc resource.Location) bool {
	_, ok := loc.TrimPrefix(model.ItemPrefix)
	return ok
}

func (b *builder) addLang(entries []formats.LangEntry) {
	for _, e := range entries {
		kind, id, ok := langID(e.Key)
		if !ok {
			continue
		}
		if _, seen := b.idx.DisplayNames[id]; !seen {
			b.idx.DisplayNames[id] = e.Value
		}
		switch kind {
		case "block":
			b.idx.BlockIDs.Add(id)
		case "item":
			b.idx.ItemIDs.Add(id)
		}
	}
}

// finish runs the texture resolution pass over this source's own models.
func (b *builder) finish(src Source) *Index {
	st := model.NewMergeState()
	for _, loc := range sortedModels(b.idx.Models) {
		merged := model.MergeTextures(b.idx, loc, st)
		b.idx.ModelTextures[loc] = model.Flatten(merged)
	}
	b.idx.src = src

	b.log.Info("index built",
		zap.Stringer("stats", b.idx.Stats()),
		zap.Int("skipped", b.skipped))
	return b.idx
}

func sortedModels(models map[resource.Location]*formats.Model) []resource.Location {
	out := make([]resource.Location, 0, len(models))
	for loc := range models {
		out = append(out, loc)
	}
	resource.Sort(out)
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
