package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mcassets/internal/icons"
	"github.com/Faultbox/mcassets/pkg/resource"
)

type fakeRenderer struct{}

func (fakeRenderer) RenderItemSync(_ context.Context, id resource.Location, size int) (*image.NRGBA, error) {
	if id.Path == "broken" {
		return nil, errors.New("no model")
	}
	return image.NewNRGBA(image.Rect(0, 0, size, size)), nil
}

func (fakeRenderer) RenderBlockIDSync(ctx context.Context, id resource.Location, size int) (*image.NRGBA, error) {
	return image.NewNRGBA(image.Rect(0, 0, size, size)), nil
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	cfg := Config{
		OutputDir: out,
		Size:      16,
		Format:    FormatPNG,
		Workers:   3,
		DisplayName: func(id resource.Location) (string, bool) {
			return "Name of " + id.Path, true
		},
	}
	jobs := []Job{
		{ID: resource.Parse("stick"), Kind: icons.KindItem},
		{ID: resource.Parse("modid:gear"), Kind: icons.KindItem},
		{ID: resource.Parse("stone"), Kind: icons.KindBlock},
		{ID: resource.Parse("broken"), Kind: icons.KindItem},
	}

	results, err := Run(context.Background(), fakeRenderer{}, cfg, jobs)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Success)
	assert.Equal(t, "minecraft/stick.png", results[0].Image)
	assert.Equal(t, "Name of stick", results[0].Name)
	assert.Equal(t, "modid/gear.png", results[1].Image)
	assert.False(t, results[3].Success)
	assert.Equal(t, "no model", results[3].Error)

	data, err := os.ReadFile(filepath.Join(out, "modid", "gear.png"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, fakeRenderer{}, Config{OutputDir: t.TempDir(), Size: 8},
		[]Job{{ID: resource.Parse("stick"), Kind: icons.KindItem}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, FormatWebP))
	assert.Equal(t, "RIFF", string(buf.Bytes()[:4]))
	assert.Equal(t, "WEBP", string(buf.Bytes()[8:12]))

	buf.Reset()
	require.NoError(t, Encode(&buf, img, FormatPNG))
	assert.Equal(t, "\x89PNG", string(buf.Bytes()[:4]))

	assert.Error(t, Encode(&buf, img, "bmp"))
}

func TestManifest(t *testing.T) {
	results := []Result{
		{ID: "minecraft:stone", Kind: "item", Success: true, Image: "minecraft/stone.png"},
		{ID: "minecraft:apple", Kind: "item", Error: "boom"},
		{ID: "minecraft:stone", Kind: "block", Success: true},
	}
	m := NewManifest(Config{Size: 32, Format: FormatPNG}, results)
	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, "minecraft:apple", m.Entries[0].ID)
	assert.Equal(t, "block", m.Entries[1].Kind)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m, decoded)
}
