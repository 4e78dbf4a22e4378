// Package encoding provides text decoding helpers for asset files.
//
// Resource packs are hand-edited on every platform, so JSON files regularly
// carry a UTF-8 (or even UTF-16) byte order mark that encoding/json rejects.
package encoding

import (
	"encoding/json"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ToUTF8 strips a byte order mark and converts UTF-16 input to UTF-8.
// Returns the original bytes if conversion fails.
func ToUTF8(data []byte) []byte {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return data
	}
	return result
}

// UnmarshalJSON decodes BOM-tolerant JSON data into v.
func UnmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(ToUTF8(data), v)
}
