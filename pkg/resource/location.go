// Package resource provides namespaced asset identifiers and the archive
// entry paths derived from them.
package resource

import (
	"sort"
	"strings"
)

// DefaultNamespace is used when a location string carries no namespace.
const DefaultNamespace = "minecraft"

// Location is a canonical "namespace:path" asset identifier.
// The zero value is not a valid location; use Parse or New.
type Location struct {
	Namespace string
	Path      string
}

// New builds a location from explicit parts, applying the same
// normalisation as Parse.
func New(namespace, path string) Location {
	namespace = strings.ToLower(strings.TrimSpace(namespace))
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Location{
		Namespace: namespace,
		Path:      normalizePath(path),
	}
}

// Parse converts any string into a location. It never fails: input without a
// namespace gets DefaultNamespace, and malformed input is still representable
// so that "not found" is decided at lookup time.
func Parse(s string) Location {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return New(s[:i], s[i+1:])
	}
	return New("", s)
}

func normalizePath(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimLeft(p, "/")
}

// String returns "namespace:path".
func (l Location) String() string {
	return l.Namespace + ":" + l.Path
}

// IsZero reports whether l is the zero location.
func (l Location) IsZero() bool {
	return l.Namespace == "" && l.Path == ""
}

// Less orders locations by their string form.
func (l Location) Less(other Location) bool {
	return l.String() < other.String()
}

// WithPrefix returns a location in the same namespace with prefix joined in
// front of the path, e.g. "item/" + "stick".
func (l Location) WithPrefix(prefix string) Location {
	return Location{Namespace: l.Namespace, Path: prefix + l.Path}
}

// TrimPrefix strips a leading path prefix, reporting whether it was present.
func (l Location) TrimPrefix(prefix string) (Location, bool) {
	if !strings.HasPrefix(l.Path, prefix) {
		return l, false
	}
	return Location{Namespace: l.Namespace, Path: strings.TrimPrefix(l.Path, prefix)}, true
}

// ModelPath is the archive entry of a model definition.
func (l Location) ModelPath() string {
	return "assets/" + l.Namespace + "/models/" + l.Path + ".json"
}

// TexturePath is the archive entry of a texture image.
func (l Location) TexturePath() string {
	return "assets/" + l.Namespace + "/textures/" + l.Path + ".png"
}

// BlockstatePath is the archive entry of a blockstate definition.
func (l Location) BlockstatePath() string {
	return "assets/" + l.Namespace + "/blockstates/" + l.Path + ".json"
}

// LangPath is the archive entry of the en_us language file for a namespace.
func LangPath(namespace string) string {
	return "assets/" + namespace + "/lang/en_us.json"
}

// IsTagRef reports whether s is a "#"-prefixed reference.
func IsTagRef(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "#")
}

// TrimTagRef strips a leading "#" and parses the remainder.
func TrimTagRef(s string) Location {
	return Parse(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}

// Sort orders a slice of locations in place.
func Sort(locs []Location) {
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })
}

// Set is an unordered collection of locations.
type Set map[Location]struct{}

// Add inserts l.
func (s Set) Add(l Location) { s[l] = struct{}{} }

// Has reports membership.
func (s Set) Has(l Location) bool {
	_, ok := s[l]
	return ok
}

// Sorted returns the members in canonical order.
func (s Set) Sorted() []Location {
	out := make([]Location, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	Sort(out)
	return out
}
