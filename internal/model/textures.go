// Package model resolves model parent chains into flat texture maps and the
// geometry, display and classification data the renderer needs.
//
// Asset data is third-party and frequently cyclic or broken. Every recursive
// walk here is bounded, either by an explicit visiting set (parent chains) or
// by MaxIndirection (texture "#ref" hops), and degrades to a partial result
// instead of failing.
package model

import (
	"strings"

	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// MaxIndirection bounds "#key" hops when resolving a texture reference.
const MaxIndirection = 16

// Lookup provides raw model definitions by model location.
type Lookup interface {
	RawModel(loc resource.Location) (*formats.Model, bool)
}

// MergeState carries the visiting set and memo of one resolution pass.
type MergeState struct {
	visiting resource.Set
	memo     map[resource.Location]map[string]string
}

// NewMergeState creates an empty pass state.
func NewMergeState() *MergeState {
	return &MergeState{
		visiting: make(resource.Set),
		memo:     make(map[resource.Location]map[string]string),
	}
}

// ParentOf returns the parsed parent location of m.
func ParentOf(m *formats.Model) (resource.Location, bool) {
	if m == nil || strings.TrimSpace(m.Parent) == "" {
		return resource.Location{}, false
	}
	return resource.Parse(m.Parent), true
}

// MergeTextures returns the raw texture map of loc merged over its parent
// chain: parent entries first, the child overriding by key. A model reached
// again while it is still being visited contributes nothing. The returned
// map is shared with the memo and must not be modified.
func MergeTextures(lookup Lookup, loc resource.Location, st *MergeState) map[string]string {
	if st == nil {
		st = NewMergeState()
	}
	merged, _ := mergeTextures(lookup, loc, st)
	return merged
}

// mergeTextures reports complete=false when a cycle truncated the result;
// such results are not memoised since they depend on the entry point.
func mergeTextures(lookup Lookup, loc resource.Location, st *MergeState) (map[string]string, bool) {
	if cached, ok := st.memo[loc]; ok {
		return cached, true
	}
	if st.visiting.Has(loc) {
		return nil, false
	}

	m, ok := lookup.RawModel(loc)
	if !ok {
		return nil, true
	}

	st.visiting.Add(loc)
	defer delete(st.visiting, loc)

	complete := true
	var inherited map[string]string
	if parent, ok := ParentOf(m); ok {
		inherited, complete = mergeTextures(lookup, parent, st)
	}

	merged := make(map[string]string, len(inherited)+len(m.Textures))
	for k, v := range inherited {
		merged[k] = v
	}
	for k, v := range m.Textures {
		merged[k] = v
	}

	if complete {
		st.memo[loc] = merged
	}
	return merged, complete
}

// ResolveRef follows "#key" indirection inside textures until a literal is
// found. Missing keys and chains longer than MaxIndirection yield not-ok.
func ResolveRef(textures map[string]string, value string) (resource.Location, bool) {
	current := strings.TrimSpace(value)
	for hops := 0; ; hops++ {
		if current == "" {
			return resource.Location{}, false
		}
		if !strings.HasPrefix(current, "#") {
			return resource.Parse(current), true
		}
		if hops >= MaxIndirection {
			return resource.Location{}, false
		}
		next, ok := textures[strings.TrimPrefix(current, "#")]
		if !ok {
			return resource.Location{}, false
		}
		current = strings.TrimSpace(next)
	}
}

// Flatten resolves every key of a merged texture map. Keys whose reference
// cannot be resolved are dropped, so the result never holds "#" values.
func Flatten(textures map[string]string) map[string]resource.Location {
	out := make(map[string]resource.Location, len(textures))
	for key, value := range textures {
		if loc, ok := ResolveRef(textures, value); ok {
			out[key] = loc
		}
	}
	return out
}
