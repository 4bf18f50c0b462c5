package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSoftwareRenderer(t *testing.T, w, h int) Renderer {
	t.Helper()
	r := NewRenderer(BackendTypeSoftware, nil, WithSurfaceSize(w, h), WithSoftwareWorkers(1))
	t.Cleanup(r.Release)
	return r
}

func TestNewRenderer_Software(t *testing.T) {
	r := newSoftwareRenderer(t, 32, 16)

	assert.Equal(t, BackendTypeSoftware, r.BackendType())
	back := r.Device().BackBuffer()
	require.NotNil(t, back)
	assert.Equal(t, 32, back.Width())
	assert.Equal(t, 16, back.Height())
	assert.Equal(t, postprocess.FormatRGBA8, back.Format())
	assert.Equal(t, postprocess.Capabilities{R16F: true}, r.Device().Capabilities())
}

func TestRenderer_FrameLifecycle(t *testing.T) {
	r := newSoftwareRenderer(t, 8, 8)

	for range 3 {
		require.NoError(t, r.BeginFrame())
		require.NoError(t, r.Device().Clear(r.Device().BackBuffer(), [4]float32{1, 0, 0, 1}))
		r.EndFrame()
		r.Present()
	}
	assert.Equal(t, uint64(3), r.Frames())

	img, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	cr, cg, _, ca := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), cr)
	assert.Equal(t, uint32(0), cg)
	assert.Equal(t, uint32(0xffff), ca)
}

func TestRenderer_Resize(t *testing.T) {
	r := newSoftwareRenderer(t, 8, 8)
	r.SetPresentMode(PresentModeVSync)
	r.Resize(20, 10)

	img, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestRenderer_ForeignTexture(t *testing.T) {
	a := newSoftwareRenderer(t, 4, 4)
	b := newSoftwareRenderer(t, 4, 4)

	tex, err := b.Device().CreateTexture(postprocess.TextureDesc{Label: "other", Width: 4, Height: 4, Format: postprocess.FormatRGBA16F})
	require.NoError(t, err)

	err = a.Device().Clear(tex, [4]float32{})
	assert.True(t, errors.Is(err, ErrForeignTexture))

	tex.Release()
	err = b.Device().Clear(tex, [4]float32{})
	assert.True(t, errors.Is(err, ErrReleasedTexture))
}

func TestNewRenderer_WGPUNeedsWindow(t *testing.T) {
	assert.Panics(t, func() { NewRenderer(BackendTypeWGPU, nil) })
}

func TestTechniqueEntries(t *testing.T) {
	s, err := shader.NewShader(shader.KeyTechnique)
	require.NoError(t, err)

	for tech := postprocess.TechniqueDownScale4x4; tech <= postprocess.TechniqueFinalScenePass; tech++ {
		entry, ok := techniqueEntries[tech]
		require.True(t, ok, tech.String())
		assert.True(t, s.HasFragmentEntry(entry), "%s -> %s", tech, entry)
	}
}

func TestIntersectRect(t *testing.T) {
	a := postprocess.Rect{W: 10, H: 10}
	assert.Equal(t, postprocess.Rect{X: 2, Y: 3, W: 8, H: 4}, intersectRect(a, postprocess.Rect{X: 2, Y: 3, W: 20, H: 4}))
	assert.True(t, intersectRect(a, postprocess.Rect{X: 12, Y: 0, W: 2, H: 2}).Empty())
}

func TestBackendTypeString(t *testing.T) {
	assert.Equal(t, "wgpu", BackendTypeWGPU.String())
	assert.Equal(t, "software", BackendTypeSoftware.String())
	assert.Equal(t, "unknown", RendererBackendType(9).String())
}

func TestWGPUTextureRelease(t *testing.T) {
	tex := &wgpuTexture{label: "t", width: 4, height: 2, format: postprocess.FormatR16F}
	assert.Equal(t, "t", tex.Label())
	assert.Equal(t, postprocess.FormatR16F, tex.Format())
	tex.Release()
	tex.Release()
	assert.True(t, tex.released)
}
