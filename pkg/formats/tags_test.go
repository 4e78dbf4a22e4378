package formats

import (
	"errors"
	"testing"
)

func TestParseTagFile(t *testing.T) {
	data := []byte(`{
		"replace": true,
		"values": ["minecraft:water", "#minecraft:lava", {"id": "x:y", "required": false}, 3]
	}`)

	tf, err := ParseTagFile(data)
	if err != nil {
		t.Fatalf("ParseTagFile: %v", err)
	}
	if !tf.Replace {
		t.Error("expected replace=true")
	}
	want := []string{"minecraft:water", "#minecraft:lava"}
	if len(tf.Values) != len(want) {
		t.Fatalf("values = %v, want %v", tf.Values, want)
	}
	for i := range want {
		if tf.Values[i] != want[i] {
			t.Errorf("values[%d] = %q, want %q", i, tf.Values[i], want[i])
		}
	}
}

func TestParseTagFile_Malformed(t *testing.T) {
	if _, err := ParseTagFile([]byte(`{"values": [`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
	if _, err := ParseTagFile([]byte(`{"values": "oops"}`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for non-array values, got %v", err)
	}
}

func TestParseLang(t *testing.T) {
	data := []byte(`{
		"item.minecraft.stick": "Stick",
		"block.minecraft.stone": "Stone",
		"weird": 42
	}`)

	entries, err := ParseLang(data)
	if err != nil {
		t.Fatalf("ParseLang: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", entries)
	}
	if entries[0].Key != "block.minecraft.stone" || entries[1].Value != "Stick" {
		t.Errorf("entries not sorted by key: %v", entries)
	}
}
