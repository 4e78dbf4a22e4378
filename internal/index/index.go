package index

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// ErrNotFound is returned when an entry is not present in an index source.
var ErrNotFound = errors.New("entry not found")

// Source opens raw entries of an indexed source by normalised entry path.
type Source interface {
	Open(entryPath string) (io.ReadCloser, error)
}

// TagTable maps a tag id to its raw values ("ns:id" or "#ns:tag").
type TagTable map[resource.Location][]string

// TagIndex holds the three raw tag tables.
type TagIndex struct {
	Items  TagTable
	Blocks TagTable
	Fluids TagTable
}

// NewTagIndex returns empty tables.
func NewTagIndex() TagIndex {
	return TagIndex{
		Items:  make(TagTable),
		Blocks: make(TagTable),
		Fluids: make(TagTable),
	}
}

// Table returns the table for kind.
func (t TagIndex) Table(kind TagKind) TagTable {
	switch kind {
	case TagItems:
		return t.Items
	case TagBlocks:
		return t.Blocks
	case TagFluids:
		return t.Fluids
	}
	return nil
}

// Index is the asset index of one source. It is immutable once built;
// re-indexing produces a new Index.
type Index struct {
	Name string // e.g. "vanilla:1.20.1" or "project"

	ModelsByID    map[resource.Location]resource.Location            // id → model location
	Models        map[resource.Location]*formats.Model               // model location → raw definition
	ModelTextures map[resource.Location]map[string]resource.Location // model location → flattened textures
	DisplayNames  map[resource.Location]string                       // id → display name
	Textures      resource.Set
	Blockstates   resource.Set
	BlockIDs      resource.Set
	ItemIDs       resource.Set
	Tags          TagIndex

	src Source
}

// Empty returns an index with no entries.
func Empty(name string) *Index {
	return &Index{
		Name:          name,
		ModelsByID:    make(map[resource.Location]resource.Location),
		Models:        make(map[resource.Location]*formats.Model),
		ModelTextures: make(map[resource.Location]map[string]resource.Location),
		DisplayNames:  make(map[resource.Location]string),
		Textures:      make(resource.Set),
		Blockstates:   make(resource.Set),
		BlockIDs:      make(resource.Set),
		ItemIDs:       make(resource.Set),
		Tags:          NewTagIndex(),
	}
}

// RawModel returns the raw definition of a model location.
func (idx *Index) RawModel(loc resource.Location) (*formats.Model, bool) {
	m, ok := idx.Models[loc]
	return m, ok
}

// Open opens a raw entry of the underlying source.
func (idx *Index) Open(entryPath string) (io.ReadCloser, error) {
	if idx.src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, entryPath)
	}
	return idx.src.Open(NormalizePath(entryPath))
}

// Read reads a raw entry fully.
func (idx *Index) Read(entryPath string) ([]byte, error) {
	rc, err := idx.Open(entryPath)
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

// Stats summarises index contents.
type Stats struct {
	Models       int
	Textures     int
	Blockstates  int
	DisplayNames int
	Blocks       int
	Items        int
	Tags         int
}

// Stats returns entry counts.
func (idx *Index) Stats() Stats {
	return Stats{
		Models:       len(idx.Models),
		Textures:     len(idx.Textures),
		Blockstates:  len(idx.Blockstates),
		DisplayNames: len(idx.DisplayNames),
		Blocks:       len(idx.BlockIDs),
		Items:        len(idx.ItemIDs),
		Tags:         len(idx.Tags.Items) + len(idx.Tags.Blocks) + len(idx.Tags.Fluids),
	}
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return fmt.Sprintf("%d models, %d textures, %d blockstates, %d names, %d blocks, %d items, %d tags",
		s.Models, s.Textures, s.Blockstates, s.DisplayNames, s.Blocks, s.Items, s.Tags)
}

// langID parses a "block.<ns>.<id>" style key. Keys must have exactly three
// dot-separated segments.
func langID(key string) (kind string, id resource.Location, ok bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", resource.Location{}, false
	}
	switch parts[0] {
	case "block", "item", "fluid":
		return parts[0], resource.New(parts[1], parts[2]), true
	}
	return "", resource.Location{}, false
}
