// Blockstate format (assets/<ns>/blockstates/**.json).
package formats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Faultbox/mcassets/pkg/encoding"
)

// ModelRef points a blockstate variant at a model.
type ModelRef struct {
	Model  string `json:"model"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	UVLock bool   `json:"uvlock"`
	Weight *int   `json:"weight"`
}

// Variant is one "variants" entry. Entries keep document order.
type Variant struct {
	Key    string
	Models []ModelRef
}

// Part is one "multipart" branch.
type Part struct {
	When  json.RawMessage
	Apply []ModelRef
}

// Blockstate maps block property combinations to models.
type Blockstate struct {
	Variants  []Variant
	Multipart []Part
}

// ParseBlockstate parses a blockstate definition, preserving variant order.
// Variants or multipart branches with an unusable shape are skipped.
func ParseBlockstate(data []byte) (*Blockstate, error) {
	var raw struct {
		Variants  json.RawMessage `json:"variants"`
		Multipart []struct {
			When  json.RawMessage `json:"when"`
			Apply json.RawMessage `json:"apply"`
		} `json:"multipart"`
	}
	if err := encoding.UnmarshalJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	bs := &Blockstate{}
	if len(raw.Variants) > 0 {
		bs.Variants = parseVariants(raw.Variants)
	}
	for _, mp := range raw.Multipart {
		refs, ok := parseModelRefs(mp.Apply)
		if !ok {
			continue
		}
		bs.Multipart = append(bs.Multipart, Part{When: mp.When, Apply: refs})
	}
	return bs, nil
}

// parseVariants walks the variants object token by token so the first
// declared variant stays first.
func parseVariants(data json.RawMessage) []Variant {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var out []Variant
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return out
		}
		refs, ok := parseModelRefs(value)
		if !ok {
			continue
		}
		out = append(out, Variant{Key: key, Models: refs})
	}
	return out
}

// parseModelRefs accepts a single model object or an array of weighted ones.
func parseModelRefs(data json.RawMessage) ([]ModelRef, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false
	}

	var refs []ModelRef
	if data[0] == '[' {
		if err := json.Unmarshal(data, &refs); err != nil {
			return nil, false
		}
	} else {
		var ref ModelRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return nil, false
		}
		refs = append(refs, ref)
	}

	kept := refs[:0]
	for _, r := range refs {
		if r.Model != "" {
			kept = append(kept, r)
		}
	}
	return kept, len(kept) > 0
}

// FirstModel returns the model of the first variant, or, when there are no
// variants, the first model applied by the first multipart branch.
func (b *Blockstate) FirstModel() (string, bool) {
	if b == nil {
		return "", false
	}
	for _, v := range b.Variants {
		if len(v.Models) > 0 {
			return v.Models[0].Model, true
		}
	}
	for _, p := range b.Multipart {
		if len(p.Apply) > 0 {
			return p.Apply[0].Model, true
		}
	}
	return "", false
}
