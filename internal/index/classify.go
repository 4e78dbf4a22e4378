// Package index builds asset indexes from a vanilla archive or from layered
// resource-root directories. Both indexers share one classifier so that the
// same entry path always lands in the same table.
package index

import (
	"strings"

	"github.com/Faultbox/mcassets/pkg/resource"
)

// Kind classifies an entry path.
type Kind int

// Entry kinds.
const (
	KindUnknown Kind = iota
	KindLang
	KindModel
	KindTexture
	KindBlockstate
	KindTag
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLang:
		return "lang"
	case KindModel:
		return "model"
	case KindTexture:
		return "texture"
	case KindBlockstate:
		return "blockstate"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// TagKind names one of the three tag tables.
type TagKind string

// Tag tables.
const (
	TagItems  TagKind = "items"
	TagBlocks TagKind = "blocks"
	TagFluids TagKind = "fluids"
)

// TagKinds lists the tag tables in a fixed order.
var TagKinds = []TagKind{TagItems, TagBlocks, TagFluids}

// tagDirs maps both the plural and the singular directory spellings.
var tagDirs = map[string]TagKind{
	"items":  TagItems,
	"item":   TagItems,
	"blocks": TagBlocks,
	"block":  TagBlocks,
	"fluids": TagFluids,
	"fluid":  TagFluids,
}

// LangFile is the only language file indexed.
const LangFile = "en_us.json"

// Entry is a classified entry path.
type Entry struct {
	Kind Kind

	// Location is the model location ("ns:block/stone"), texture id
	// ("ns:block/stone"), blockstate id ("ns:stone"), tag id or, for lang
	// files, the namespace with an empty path.
	Location resource.Location

	// TagKind is set for KindTag entries.
	TagKind TagKind
}

// NormalizePath lower-cases p, uses forward slashes and strips leading "/".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	return strings.ToLower(p)
}

// Classify maps a root-relative entry path to its kind. Paths outside the
// indexed layout return ok=false.
func Classify(relPath string) (Entry, bool) {
	p := NormalizePath(relPath)
	parts := strings.SplitN(p, "/", 4)
	if len(parts) < 4 || parts[1] == "" {
		return Entry{}, false
	}
	root, ns, section, rest := parts[0], parts[1], parts[2], parts[3]

	switch root {
	case "assets":
		return classifyAsset(ns, section, rest)
	case "data":
		return classifyData(ns, section, rest)
	}
	return Entry{}, false
}

func classifyAsset(ns, section, rest string) (Entry, bool) {
	switch section {
	case "lang":
		if rest == LangFile {
			return Entry{Kind: KindLang, Location: resource.Location{Namespace: ns}}, true
		}
	case "models":
		name, ok := trimExt(rest, ".json")
		if !ok {
			break
		}
		if strings.HasPrefix(name, "block/") || strings.HasPrefix(name, "item/") {
			return Entry{Kind: KindModel, Location: resource.New(ns, name)}, true
		}
	case "textures":
		if name, ok := trimExt(rest, ".png"); ok {
			return Entry{Kind: KindTexture, Location: resource.New(ns, name)}, true
		}
	case "blockstates":
		if name, ok := trimExt(rest, ".json"); ok {
			return Entry{Kind: KindBlockstate, Location: resource.New(ns, name)}, true
		}
	}
	return Entry{}, false
}

func classifyData(ns, section, rest string) (Entry, bool) {
	if section != "tags" {
		return Entry{}, false
	}
	dir, tail, found := strings.Cut(rest, "/")
	if !found {
		return Entry{}, false
	}
	kind, ok := tagDirs[dir]
	if !ok {
		return Entry{}, false
	}
	name, ok := trimExt(tail, ".json")
	if !ok {
		return Entry{}, false
	}
	return Entry{Kind: KindTag, Location: resource.New(ns, name), TagKind: kind}, true
}

func trimExt(p, ext string) (string, bool) {
	if !strings.HasSuffix(p, ext) {
		return "", false
	}
	name := strings.TrimSuffix(p, ext)
	if name == "" || strings.HasSuffix(name, "/") {
		return "", false
	}
	return name, true
}
