package icons

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mcassets/internal/engine/lighting"
	"github.com/Faultbox/mcassets/internal/engine/renderer"
	"github.com/Faultbox/mcassets/pkg/resource"
)

func solidPNG(t *testing.T, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.String()
}

func vanillaFiles(t *testing.T) map[string]string {
	return map[string]string{
		"assets/minecraft/lang/en_us.json": `{"block.minecraft.stone": "Stone", "item.minecraft.stick": "Stick"}`,
		"assets/minecraft/models/block/cube_all.json": `{
			"elements": [{"from": [0,0,0], "to": [16,16,16], "faces": {
				"north": {"texture": "#all"}, "south": {"texture": "#all"},
				"east":  {"texture": "#all"}, "west":  {"texture": "#all"},
				"up":    {"texture": "#all"}, "down":  {"texture": "#all"}
			}}]
		}`,
		"assets/minecraft/models/block/stone.json":  `{"parent": "block/cube_all", "textures": {"all": "block/stone"}}`,
		"assets/minecraft/models/item/stone.json":   `{"parent": "block/stone"}`,
		"assets/minecraft/models/item/stick.json":   `{"parent": "item/generated", "textures": {"layer0": "item/stick"}}`,
		"assets/minecraft/textures/block/stone.png": solidPNG(t, color.NRGBA{R: 120, G: 120, B: 120, A: 255}),
		"assets/minecraft/textures/item/stick.png":  solidPNG(t, color.NRGBA{R: 140, G: 90, B: 40, A: 255}),
		"assets/minecraft/blockstates/stone.json":   `{"variants": {"": {"model": "block/stone"}}}`,
		"data/minecraft/tags/fluids/water.json":     `{"values": ["minecraft:water", "minecraft:flowing_water"]}`,
	}
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// countingArchive serves fixed bytes and counts fetches, tracking the most
// fetches ever in flight at once.
type countingArchive struct {
	data     []byte
	err      error
	delay    time.Duration
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
}

func (a *countingArchive) ArchiveBytes(ctx context.Context, version string) ([]byte, error) {
	a.calls.Add(1)
	n := a.inflight.Add(1)
	defer a.inflight.Add(-1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(a.delay)
	return a.data, a.err
}

func newTestService(t *testing.T, archive *countingArchive, roots ...string) *Service {
	t.Helper()
	s := New(archive, StaticVersion("1.20.1"), Options{Roots: roots, Workers: 4})
	t.Cleanup(s.Close)
	return s
}

func TestSessionBuiltOnce(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t)), delay: 20 * time.Millisecond}
	s := newTestService(t, archive)

	var wg sync.WaitGroup
	sessions := make([]*Session, 16)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := s.Session(context.Background())
			assert.NoError(t, err)
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), archive.calls.Load())
	for _, sess := range sessions {
		assert.Same(t, sessions[0], sess)
	}
	assert.NoError(t, sessions[0].Err())
}

func TestInvalidateDuringIndexPass(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t)), delay: 100 * time.Millisecond}
	s := newTestService(t, archive)
	ctx := context.Background()

	first := make(chan *Session, 1)
	go func() {
		sess, err := s.Session(ctx)
		assert.NoError(t, err)
		first <- sess
	}()
	require.Eventually(t, func() bool { return archive.calls.Load() == 1 }, time.Second, time.Millisecond)

	s.Invalidate()
	sess, err := s.Session(ctx)
	require.NoError(t, err)
	<-first

	assert.Equal(t, int32(2), archive.calls.Load(), "the outdated pass is followed by a fresh one")
	assert.Equal(t, int32(1), archive.peak.Load(), "passes for one key never overlap")
	assert.NoError(t, sess.Err())
	assert.True(t, sess.HasItem(resource.Parse("stone")))

	again, err := s.Session(ctx)
	require.NoError(t, err)
	assert.Same(t, sess, again)
	assert.Equal(t, int32(2), archive.calls.Load())
}

func TestRenderExactlyOncePerKey(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t))}
	s := newTestService(t, archive)
	stone := resource.Parse("stone")

	var wg sync.WaitGroup
	futures := make([]any, 32)
	for i := range futures {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			futures[i] = s.RenderItem(stone, 32)
		}(i)
	}
	wg.Wait()

	for _, f := range futures {
		assert.Same(t, futures[0], f)
	}

	img, err := s.RenderItemSync(context.Background(), stone, 32)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Rect)
	assert.Equal(t, uint8(255), img.NRGBAAt(16, 12).A)
	assert.Equal(t, uint64(1), s.Stats().Renders)

	_, err = s.RenderItemSync(context.Background(), stone, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Stats().Renders, "a new size is a new key")
}

func TestRenderPlaceholderAndCallbacks(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t)), delay: 20 * time.Millisecond}
	s := newTestService(t, archive)

	f := s.RenderItem(resource.Parse("stick"), 16)
	assert.Equal(t, image.Rect(0, 0, 16, 16), f.Placeholder().Rect)

	got := make(chan error, 1)
	f.OnDone(func(_ *image.NRGBA, err error) { got <- err })

	select {
	case err := <-got:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("callback never ran")
	}

	img, err, ok := f.Result()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.NRGBAAt(8, 8).A)
}

func TestRenderFailureCached(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t))}
	s := newTestService(t, archive)
	missing := resource.Parse("nothing_here")

	_, err := s.RenderItemSync(context.Background(), missing, 16)
	assert.True(t, errors.Is(err, renderer.ErrNoModel))

	_, err = s.RenderItemSync(context.Background(), missing, 16)
	assert.Error(t, err)
	assert.Equal(t, uint64(1), s.Stats().Renders)
}

func TestRenderBlockID(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t))}
	s := newTestService(t, archive)

	img, err := s.RenderBlockIDSync(context.Background(), resource.Parse("stone"), 32)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.NRGBAAt(16, 12).A)
}

func TestAcquisitionFailureCachedUntilInvalidate(t *testing.T) {
	archive := &countingArchive{err: errors.New("offline")}
	s := newTestService(t, archive)
	ctx := context.Background()

	sess, err := s.Session(ctx)
	require.NoError(t, err)
	assert.Error(t, sess.Err())
	assert.False(t, sess.HasItem(resource.Parse("stone")))

	s.ClearCaches()
	sess, err = s.Session(ctx)
	require.NoError(t, err)
	assert.Error(t, sess.Err())
	assert.Equal(t, int32(1), archive.calls.Load(), "failure is cached across sessions")

	archive.err = nil
	archive.data = buildZip(t, vanillaFiles(t))
	s.Invalidate()
	sess, err = s.Session(ctx)
	require.NoError(t, err)
	assert.NoError(t, sess.Err())
	assert.Equal(t, int32(2), archive.calls.Load())
	assert.True(t, sess.HasItem(resource.Parse("stone")))
}

func TestGarbageArchive(t *testing.T) {
	archive := &countingArchive{data: []byte("definitely not a zip")}
	s := newTestService(t, archive)

	sess, err := s.Session(context.Background())
	require.NoError(t, err)
	assert.Error(t, sess.Err())
}

func TestProjectShadowsVanilla(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "assets", "minecraft", "lang", "en_us.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"block.minecraft.stone": "Project Stone"}`), 0o644))

	archive := &countingArchive{data: buildZip(t, vanillaFiles(t))}
	s := newTestService(t, archive, root)
	ctx := context.Background()

	name, ok, err := s.DisplayName(ctx, resource.Parse("stone"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Project Stone", name)

	name, _, _ = s.DisplayName(ctx, resource.Parse("stick"))
	assert.Equal(t, "Stick", name)

	require.NoError(t, os.WriteFile(path, []byte(`{"block.minecraft.stone": "Renamed"}`), 0o644))
	s.InvalidateProject()
	name, _, _ = s.DisplayName(ctx, resource.Parse("stone"))
	assert.Equal(t, "Renamed", name)
	assert.Equal(t, int32(1), archive.calls.Load(), "vanilla index survives a project invalidation")
}

func TestServiceQueries(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t))}
	s := newTestService(t, archive)
	ctx := context.Background()

	res, ok, err := s.ResolveModel(ctx, resource.Parse("stick"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, res.Generated)

	textures, ok, err := s.TexturesForModel(ctx, resource.Parse("block/stone"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resource.Parse("block/stone"), textures["all"])

	hasTag, err := s.HasTag(ctx, "#minecraft:water")
	require.NoError(t, err)
	assert.True(t, hasTag)

	fluids, err := s.AllFluidIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, fluids, 2)

	rc, err := s.OpenTextureStream(ctx, resource.Parse("block/stone"))
	require.NoError(t, err)
	rc.Close()

	rc, err = s.OpenBlockstateStream(ctx, resource.Parse("stone"))
	require.NoError(t, err)
	rc.Close()

	_, err = s.OpenModelStream(ctx, resource.Parse("block/missing"))
	assert.Error(t, err)
}

func TestSessionTextureChecks(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t))}
	s := newTestService(t, archive)
	sess, err := s.Session(context.Background())
	require.NoError(t, err)

	indexed, ok := sess.IndexedTextures(resource.Parse("block/stone"))
	require.True(t, ok)
	assert.Equal(t, resource.Parse("block/stone"), indexed["all"])
	_, ok = sess.IndexedTextures(resource.Parse("block/missing"))
	assert.False(t, ok)

	missing := sess.MissingTextures(map[string]resource.Location{
		"all":   resource.Parse("block/stone"),
		"side":  resource.Parse("block/nope"),
		"layer": resource.Parse("item/gone"),
	})
	assert.Equal(t, []string{"layer", "side"}, missing)
	assert.Empty(t, sess.MissingTextures(indexed))
}

func TestSessionContextCancelled(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t)), delay: 200 * time.Millisecond}
	s := newTestService(t, archive)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Session(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRenderAfterClose(t *testing.T) {
	archive := &countingArchive{data: buildZip(t, vanillaFiles(t))}
	s := New(archive, StaticVersion("1.20.1"), Options{Workers: 1})
	s.Close()

	_, err := s.RenderItemSync(context.Background(), resource.Parse("stone"), 16)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLightOptionChangesShading(t *testing.T) {
	data := buildZip(t, vanillaFiles(t))
	stone := resource.Parse("stone")

	lit := newTestService(t, &countingArchive{data: data})
	below := lighting.FromAngles(0, -90, 1)
	underlit := New(&countingArchive{data: data}, StaticVersion("1.20.1"), Options{Workers: 2, Light: &below})
	t.Cleanup(underlit.Close)

	ctx := context.Background()
	a, err := lit.RenderItemSync(ctx, stone, 32)
	require.NoError(t, err)
	b, err := underlit.RenderItemSync(ctx, stone, 32)
	require.NoError(t, err)

	// The top face faces away from a light below and goes fully dark.
	top := a.NRGBAAt(16, 12)
	dark := b.NRGBAAt(16, 12)
	require.Equal(t, uint8(255), top.A)
	assert.Less(t, dark.R, top.R)
	assert.Equal(t, uint8(0), dark.R)
}
