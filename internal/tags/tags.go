// Package tags answers tag membership questions over a catalog's raw tag
// tables. Tag graphs may be cyclic; expansion uses a per-call visiting set so
// a revisited tag contributes nothing further.
package tags

import (
	"github.com/Faultbox/mcassets/internal/index"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// Source provides raw tag tables.
type Source interface {
	TagValues(kind index.TagKind, tag resource.Location) ([]string, bool)
	TagIDs(kind index.TagKind) []resource.Location
}

// Resolver expands tags.
type Resolver struct {
	src Source
}

// NewResolver creates a resolver over src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// HasTag reports whether id (with or without a leading "#") is itself a tag
// in any table. Membership is not expanded.
func (r *Resolver) HasTag(id string) bool {
	tag := resource.TrimTagRef(id)
	for _, kind := range index.TagKinds {
		if _, ok := r.src.TagValues(kind, tag); ok {
			return true
		}
	}
	return false
}

// Expand returns the concrete members of a tag, following "#" references
// into other tags of the same kind. The result is sorted.
func (r *Resolver) Expand(kind index.TagKind, tag resource.Location) []resource.Location {
	out := make(resource.Set)
	r.expand(kind, tag, make(resource.Set), out)
	return out.Sorted()
}

func (r *Resolver) expand(kind index.TagKind, tag resource.Location, visiting, out resource.Set) {
	if visiting.Has(tag) {
		return
	}
	visiting.Add(tag)

	values, ok := r.src.TagValues(kind, tag)
	if !ok {
		return
	}
	for _, v := range values {
		if resource.IsTagRef(v) {
			r.expand(kind, resource.TrimTagRef(v), visiting, out)
			continue
		}
		out.Add(resource.Parse(v))
	}
}

// All expands every tag of kind into one sorted set of ids.
func (r *Resolver) All(kind index.TagKind) []resource.Location {
	out := make(resource.Set)
	visiting := make(resource.Set)
	for _, tag := range r.src.TagIDs(kind) {
		r.expand(kind, tag, visiting, out)
	}
	return out.Sorted()
}

// AllFluidIDs returns every fluid id reachable from any fluid tag.
func (r *Resolver) AllFluidIDs() []resource.Location {
	return r.All(index.TagFluids)
}

// TagsOf returns the tags that list id directly, sorted.
func (r *Resolver) TagsOf(kind index.TagKind, id resource.Location) []resource.Location {
	var out []resource.Location
	for _, tag := range r.src.TagIDs(kind) {
		values, _ := r.src.TagValues(kind, tag)
		for _, v := range values {
			if !resource.IsTagRef(v) && resource.Parse(v) == id {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}
