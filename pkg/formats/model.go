// Model definition format (assets/<ns>/models/**.json).
package formats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Faultbox/mcassets/pkg/encoding"
)

// ErrMalformed is returned for documents that are not valid JSON objects of
// the expected shape.
var ErrMalformed = errors.New("malformed asset document")

// DisplayGUI is the display context used for inventory icons.
const DisplayGUI = "gui"

// Face directions of a block element.
const (
	North = "north"
	South = "south"
	East  = "east"
	West  = "west"
	Up    = "up"
	Down  = "down"
)

// Directions lists face directions in emission order.
var Directions = []string{North, South, East, West, Up, Down}

// Model is a raw model definition. Texture values are either literal texture
// ids or "#key" references into the same (merged) texture map.
type Model struct {
	Parent   string               // Parent model id (empty for roots)
	Textures map[string]string    // Texture slot → raw reference
	Elements []Element            // Cuboids, empty when inherited
	Display  map[string]Transform // Display context → transform
}

// Element is a cuboid in the 0..16 block coordinate space.
type Element struct {
	From     [3]float64      `json:"from"`
	To       [3]float64      `json:"to"`
	Rotation *Rotation       `json:"rotation,omitempty"`
	Shade    *bool           `json:"shade,omitempty"`
	Faces    map[string]Face `json:"faces"`
}

// Face is one side of an element.
type Face struct {
	Texture   string      `json:"texture"`
	UV        *[4]float64 `json:"uv,omitempty"`
	CullFace  string      `json:"cullface,omitempty"`
	Rotation  int         `json:"rotation,omitempty"`
	TintIndex *int        `json:"tintindex,omitempty"`
}

// Rotation rotates an element about a single axis through Origin.
type Rotation struct {
	Origin  [3]float64 `json:"origin"`
	Axis    string     `json:"axis"`
	Angle   float64    `json:"angle"`
	Rescale bool       `json:"rescale"`
}

// Transform is a display transform: degrees, 1/16 block units and factors.
type Transform struct {
	Rotation    [3]float64 `json:"rotation"`
	Translation [3]float64 `json:"translation"`
	Scale       [3]float64 `json:"scale"`
}

// rawModel mirrors the document with lenient field types.
type rawModel struct {
	Parent   json.RawMessage            `json:"parent"`
	Textures map[string]json.RawMessage `json:"textures"`
	Elements json.RawMessage            `json:"elements"`
	Display  map[string]json.RawMessage `json:"display"`
}

// ParseModel parses a model definition. Only a document that is not a JSON
// object fails; ill-typed fields inside it are dropped individually.
func ParseModel(data []byte) (*Model, error) {
	var raw rawModel
	if err := encoding.UnmarshalJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m := &Model{
		Textures: make(map[string]string, len(raw.Textures)),
	}

	if len(raw.Parent) > 0 {
		var parent string
		if err := json.Unmarshal(raw.Parent, &parent); err == nil {
			m.Parent = parent
		}
	}

	for key, value := range raw.Textures {
		var ref string
		if err := json.Unmarshal(value, &ref); err != nil {
			continue
		}
		m.Textures[key] = ref
	}

	if len(raw.Elements) > 0 {
		var elements []Element
		if err := json.Unmarshal(raw.Elements, &elements); err == nil {
			m.Elements = elements
		}
	}

	for context, value := range raw.Display {
		t, ok := parseTransform(value)
		if !ok {
			continue
		}
		if m.Display == nil {
			m.Display = make(map[string]Transform)
		}
		m.Display[context] = t
	}

	return m, nil
}

func parseTransform(data json.RawMessage) (Transform, bool) {
	var raw struct {
		Rotation    *[3]float64 `json:"rotation"`
		Translation *[3]float64 `json:"translation"`
		Scale       *[3]float64 `json:"scale"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Transform{}, false
	}

	t := Transform{Scale: [3]float64{1, 1, 1}}
	if raw.Rotation != nil {
		t.Rotation = *raw.Rotation
	}
	if raw.Translation != nil {
		t.Translation = *raw.Translation
	}
	if raw.Scale != nil {
		t.Scale = *raw.Scale
	}
	return t, true
}

// GUI returns the inventory display transform if the model declares one.
func (m *Model) GUI() (Transform, bool) {
	if m == nil || m.Display == nil {
		return Transform{}, false
	}
	t, ok := m.Display[DisplayGUI]
	return t, ok
}
