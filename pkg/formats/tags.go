// Tag and language file formats.
package formats

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Faultbox/mcassets/pkg/encoding"
)

// TagFile is a tag membership document (data/<ns>/tags/<kind>/**.json).
type TagFile struct {
	Replace bool
	Values  []string // String entries only, in document order
}

// ParseTagFile parses a tag document. Entries that are not strings (for
// example optional-entry objects) are skipped.
func ParseTagFile(data []byte) (*TagFile, error) {
	var raw struct {
		Replace bool              `json:"replace"`
		Values  []json.RawMessage `json:"values"`
	}
	if err := encoding.UnmarshalJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	tf := &TagFile{Replace: raw.Replace}
	for _, v := range raw.Values {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		tf.Values = append(tf.Values, s)
	}
	return tf, nil
}

// LangEntry is one translation key/value pair.
type LangEntry struct {
	Key   string
	Value string
}

// ParseLang parses a flat language map, returning string entries sorted by
// key so that callers see a deterministic order.
func ParseLang(data []byte) ([]LangEntry, error) {
	var raw map[string]json.RawMessage
	if err := encoding.UnmarshalJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]LangEntry, 0, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			continue
		}
		out = append(out, LangEntry{Key: key, Value: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
