package software

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/kernel"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

const eps = 1e-4

func newTestDevice(t *testing.T, w, h, workers int) Device {
	t.Helper()
	d := NewDevice(WithSize(w, h), WithWorkers(workers))
	t.Cleanup(d.Release)
	return d
}

func mustTexture(t *testing.T, d Device, label string, w, h int, f postprocess.Format) *texture {
	t.Helper()
	tex, err := d.CreateTexture(postprocess.TextureDesc{Label: label, Width: w, Height: h, Format: f})
	require.NoError(t, err)
	return tex.(*texture)
}

func TestCreateTextureValidation(t *testing.T) {
	d := newTestDevice(t, 8, 8, 1)

	_, err := d.CreateTexture(postprocess.TextureDesc{Label: "empty", Width: 0, Height: 4, Format: postprocess.FormatRGBA8})
	assert.Error(t, err)

	_, err = d.CreateTexture(postprocess.TextureDesc{Label: "bogus", Width: 4, Height: 4, Format: postprocess.Format(99)})
	assert.Error(t, err)

	tex := mustTexture(t, d, "ok", 4, 2, postprocess.FormatRGBA16F)
	assert.Equal(t, "ok", tex.Label())
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 2, tex.Height())
	assert.Equal(t, 1, d.LiveTextures())

	tex.Release()
	assert.Equal(t, 0, d.LiveTextures())
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name   string
		format postprocess.Format
		in     [4]float32
		want   [4]float32
	}{
		{"rgba8 saturates", postprocess.FormatRGBA8, [4]float32{2, -1, 0.5, 1}, [4]float32{1, 0, 128.0 / 255, 1}},
		{"rgba16f keeps range", postprocess.FormatRGBA16F, [4]float32{12.5, -3, 0, 1e6}, [4]float32{12.5, -3, 0, maxHalf}},
		{"r16f drops channels", postprocess.FormatR16F, [4]float32{0.3, 0.7, 0.9, 0.2}, [4]float32{0.3, 0, 0, 1}},
		{"r32f keeps red", postprocess.FormatR32F, [4]float32{1e6, 5, 5, 5}, [4]float32{1e6, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quantize(tt.format, tt.in)
			for k := range 4 {
				assert.InDelta(t, tt.want[k], got[k], eps, "channel %d", k)
			}
		})
	}
}

func TestSampleBilinear(t *testing.T) {
	tex := newTexture("ramp", 2, 1, postprocess.FormatRGBA16F)
	tex.write(0, 0, [4]float32{0, 0, 0, 1}, material.BlendOpaque)
	tex.write(1, 0, [4]float32{1, 0, 0, 1}, material.BlendOpaque)

	assert.InDelta(t, 0, tex.Sample(0.25, 0.5)[0], eps)
	assert.InDelta(t, 1, tex.Sample(0.75, 0.5)[0], eps)
	assert.InDelta(t, 0.5, tex.Sample(0.5, 0.5)[0], eps)
	// clamp to edge
	assert.InDelta(t, 0, tex.Sample(-1, 0.5)[0], eps)
	assert.InDelta(t, 1, tex.Sample(2, 0.5)[0], eps)
}

// rampTexture stores the column index in red.
func rampTexture(t *testing.T, d Device, w, h int) *texture {
	t.Helper()
	tex := mustTexture(t, d, "ramp", w, h, postprocess.FormatRGBA16F)
	for y := range h {
		for x := range w {
			tex.write(x, y, [4]float32{float32(x), 1, 0, 1}, material.BlendOpaque)
		}
	}
	return tex
}

func TestDrawDownScale4x4(t *testing.T) {
	for _, workers := range []int{1, 4} {
		d := newTestDevice(t, 8, 8, workers)
		src := rampTexture(t, d, 16, 16)
		dst := mustTexture(t, d, "scaled", 4, 4, postprocess.FormatRGBA16F)

		p := postprocess.Pass{
			Technique: postprocess.TechniqueDownScale4x4,
			Target:    dst,
			Inputs:    []postprocess.Texture{src},
			Coords:    postprocess.CoordRect{U1: 1, V1: 1},
		}
		p.Params.SetSamples(kernel.DownScale4x4(16, 16))
		require.NoError(t, d.Draw(p))

		for y := range 4 {
			for x := range 4 {
				c := dst.Texel(x, y)
				assert.InDelta(t, float32(4*x)+1.5, c[0], eps, "workers %d texel (%d,%d)", workers, x, y)
				assert.InDelta(t, 1, c[1], eps)
			}
		}
		passes, scenes := d.Stats()
		assert.Equal(t, 1, passes)
		assert.Equal(t, 0, scenes)
	}
}

func TestDrawScissorAndAdditiveBlend(t *testing.T) {
	d := newTestDevice(t, 8, 8, 2)
	src := mustTexture(t, d, "src", 8, 8, postprocess.FormatRGBA16F)
	dst := mustTexture(t, d, "dst", 8, 8, postprocess.FormatRGBA16F)
	require.NoError(t, d.Clear(src, [4]float32{0.5, 0.25, 0, 1}))
	require.NoError(t, d.Clear(dst, [4]float32{1, 1, 1, 0}))

	p := postprocess.Pass{
		Technique: postprocess.TechniqueMergeTextures,
		Target:    dst,
		Inputs:    []postprocess.Texture{src},
		Coords:    postprocess.CoordRect{U1: 1, V1: 1},
		Scissor:   &postprocess.Rect{X: 2, Y: 2, W: 4, H: 4},
		Blend:     material.BlendAdditive,
	}
	p.Params.Weights[0] = [4]float32{2, 2, 2, 1}
	require.NoError(t, d.Draw(p))

	inside := dst.Texel(3, 3)
	assert.InDelta(t, 2, inside[0], eps)
	assert.InDelta(t, 1.5, inside[1], eps)
	assert.InDelta(t, 1, inside[2], eps)
	assert.InDelta(t, 1, inside[3], eps)

	outside := dst.Texel(0, 0)
	assert.Equal(t, [4]float32{1, 1, 1, 0}, outside)
	assert.Equal(t, [4]float32{1, 1, 1, 0}, dst.Texel(6, 6))
}

func TestDrawEmptyScissor(t *testing.T) {
	d := newTestDevice(t, 8, 8, 1)
	src := mustTexture(t, d, "src", 4, 4, postprocess.FormatRGBA8)
	dst := mustTexture(t, d, "dst", 4, 4, postprocess.FormatRGBA8)
	require.NoError(t, d.Clear(src, [4]float32{1, 1, 1, 1}))

	p := postprocess.Pass{
		Technique: postprocess.TechniqueMergeTextures,
		Target:    dst,
		Inputs:    []postprocess.Texture{src},
		Coords:    postprocess.CoordRect{U1: 1, V1: 1},
		Scissor:   &postprocess.Rect{X: 10, Y: 10, W: 4, H: 4},
	}
	p.Params.Weights[0] = [4]float32{1, 1, 1, 1}
	require.NoError(t, d.Draw(p))
	assert.Equal(t, [4]float32{}, dst.Texel(1, 1))
}

func TestDrawCalculateAdaptedLum(t *testing.T) {
	d := newTestDevice(t, 8, 8, 1)
	last := mustTexture(t, d, "adapted_a", 1, 1, postprocess.FormatR32F)
	measured := mustTexture(t, d, "tonemap_0", 1, 1, postprocess.FormatR32F)
	current := mustTexture(t, d, "adapted_b", 1, 1, postprocess.FormatR32F)
	require.NoError(t, d.Clear(last, [4]float32{0.5}))
	require.NoError(t, d.Clear(measured, [4]float32{1.5}))

	p := postprocess.Pass{
		Technique: postprocess.TechniqueCalculateAdaptedLum,
		Target:    current,
		Inputs:    []postprocess.Texture{last, measured},
		Coords:    postprocess.CoordRect{U1: 1, V1: 1},
	}
	p.Params.ElapsedTime = 0.1
	require.NoError(t, d.Draw(p))

	want := postprocess.AdaptedLuminance(0.5, 1.5, 0.1)
	assert.InDelta(t, want, current.Texel(0, 0)[0], eps)
}

func TestDrawLuminanceChain(t *testing.T) {
	d := newTestDevice(t, 8, 8, 1)
	src := mustTexture(t, d, "scaled", 4, 4, postprocess.FormatRGBA16F)
	require.NoError(t, d.Clear(src, [4]float32{2, 2, 2, 1}))

	logLum := mustTexture(t, d, "tonemap_1", 4, 4, postprocess.FormatR32F)
	p := postprocess.Pass{
		Technique: postprocess.TechniqueSampleAvgLum,
		Target:    logLum,
		Inputs:    []postprocess.Texture{src},
		Coords:    postprocess.CoordRect{U1: 1, V1: 1},
	}
	p.Params.SetSamples(kernel.LuminanceSample3x3(4, 4))
	require.NoError(t, d.Draw(p))
	l := postprocess.LogLuminance([4]float32{2, 2, 2, 1})
	assert.InDelta(t, l, logLum.Texel(2, 2)[0], eps)

	avg := mustTexture(t, d, "tonemap_0", 1, 1, postprocess.FormatR32F)
	p = postprocess.Pass{
		Technique: postprocess.TechniqueResampleAvgLumExp,
		Target:    avg,
		Inputs:    []postprocess.Texture{logLum},
		Coords:    postprocess.CoordRect{U1: 1, V1: 1},
	}
	p.Params.SetSamples(kernel.DownScale4x4(4, 4))
	require.NoError(t, d.Draw(p))
	assert.InDelta(t, math32.Exp(l), avg.Texel(0, 0)[0], 1e-3)
}

func TestDrawRejectsBadPasses(t *testing.T) {
	d := newTestDevice(t, 8, 8, 1)
	other := newTestDevice(t, 8, 8, 1)
	src := mustTexture(t, d, "src", 4, 4, postprocess.FormatRGBA8)
	dst := mustTexture(t, d, "dst", 4, 4, postprocess.FormatRGBA8)
	foreign := mustTexture(t, other, "foreign", 4, 4, postprocess.FormatRGBA8)

	err := d.Draw(postprocess.Pass{Technique: postprocess.TechniqueDownScale2x2, Target: dst})
	assert.ErrorIs(t, err, postprocess.ErrInvalidPass)

	err = d.Draw(postprocess.Pass{
		Technique: postprocess.TechniqueDownScale2x2,
		Target:    dst,
		Inputs:    []postprocess.Texture{fakeTexture{}},
	})
	assert.ErrorIs(t, err, ErrForeignTexture)
	err = d.Draw(postprocess.Pass{
		Technique: postprocess.TechniqueDownScale2x2,
		Target:    dst,
		Inputs:    []postprocess.Texture{foreign},
	})
	assert.ErrorIs(t, err, ErrForeignTexture)

	src.Release()
	err = d.Draw(postprocess.Pass{
		Technique: postprocess.TechniqueDownScale2x2,
		Target:    dst,
		Inputs:    []postprocess.Texture{src},
	})
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, d.Clear(src, [4]float32{}), ErrReleased)
}

type fakeTexture struct{}

func (fakeTexture) Label() string              { return "fake" }
func (fakeTexture) Width() int                 { return 1 }
func (fakeTexture) Height() int                { return 1 }
func (fakeTexture) Format() postprocess.Format { return postprocess.FormatRGBA8 }
func (fakeTexture) Release()                   {}

// lookDownZ is a camera at the origin looking along -z with a 90 degree field of view.
func lookDownZ() (view, projection [16]float32) {
	common.LookAt(view[:], [3]float32{}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0})
	common.Perspective(projection[:], math32.Pi/2, 1, 1, 100)
	return view, projection
}

func emissiveSphere(t *testing.T, name string, center [3]float32, radius float32, c [4]float32) postprocess.MeshDraw {
	t.Helper()
	var m [16]float32
	common.BuildModelMatrix(m[:], center, [3]float32{}, [3]float32{1, 1, 1})
	return postprocess.MeshDraw{
		Model:       model.NewSphere(name, radius, 12, 16, [4]float32{1, 1, 1, 1}),
		ModelMatrix: m,
		Material: material.NewMaterial(
			material.WithName(name),
			material.WithAlbedo([4]float32{0, 0, 0, 1}),
			material.WithEmissive(c),
		),
	}
}

func TestDrawSceneMeshCoversCenter(t *testing.T) {
	d := newTestDevice(t, 32, 32, 2)
	target := mustTexture(t, d, "scene", 32, 32, postprocess.FormatRGBA16F)
	view, proj := lookDownZ()

	err := d.DrawScene(postprocess.ScenePass{
		Target:     target,
		Clear:      true,
		ClearColor: [4]float32{0, 0, 0.25, 1},
		View:       view,
		Projection: proj,
		Meshes:     []postprocess.MeshDraw{emissiveSphere(t, "moon", [3]float32{0, 0, -10}, 2, [4]float32{3, 0, 0, 1})},
	})
	require.NoError(t, err)

	center := target.Texel(16, 16)
	assert.InDelta(t, 3, center[0], eps)
	assert.InDelta(t, 0, center[2], eps)
	assert.Equal(t, [4]float32{0, 0, 0.25, 1}, target.Texel(0, 0))

	_, scenes := d.Stats()
	assert.Equal(t, 1, scenes)
}

func TestDrawSceneLitShading(t *testing.T) {
	d := newTestDevice(t, 32, 32, 1)
	target := mustTexture(t, d, "scene", 32, 32, postprocess.FormatRGBA16F)
	view, proj := lookDownZ()

	var m [16]float32
	common.BuildModelMatrix(m[:], [3]float32{0, 0, -10}, [3]float32{}, [3]float32{1, 1, 1})
	draw := postprocess.MeshDraw{
		Model:       model.NewSphere("lit", 2, 16, 24, [4]float32{1, 1, 1, 1}),
		ModelMatrix: m,
		Material:    material.NewMaterial(material.WithAlbedo([4]float32{0.5, 0.5, 0.5, 1})),
	}

	// light travels toward the camera: the visible hemisphere is unlit
	require.NoError(t, d.DrawScene(postprocess.ScenePass{
		Target: target, Clear: true, View: view, Projection: proj,
		Light:  light.GPULight{Direction: [3]float32{0, 0, 1}, Color: [3]float32{1, 1, 1}},
		Meshes: []postprocess.MeshDraw{draw},
	}))
	assert.InDelta(t, 0, target.Texel(16, 16)[0], eps)

	// light travels away from the camera: the facing point gets full diffuse
	require.NoError(t, d.DrawScene(postprocess.ScenePass{
		Target: target, Clear: true, View: view, Projection: proj,
		Light:  light.GPULight{Direction: [3]float32{0, 0, -1}, Color: [3]float32{1, 1, 1}},
		Meshes: []postprocess.MeshDraw{draw},
	}))
	assert.InDelta(t, 0.5, target.Texel(16, 16)[0], 0.05)
}

func TestDrawSceneDepthAndCulling(t *testing.T) {
	d := newTestDevice(t, 32, 32, 3)
	target := mustTexture(t, d, "scene", 32, 32, postprocess.FormatRGBA16F)
	view, proj := lookDownZ()

	near := emissiveSphere(t, "near", [3]float32{0, 0, -5}, 1, [4]float32{1, 0, 0, 1})
	far := emissiveSphere(t, "far", [3]float32{0, 0, -20}, 6, [4]float32{0, 1, 0, 1})
	require.NoError(t, d.DrawScene(postprocess.ScenePass{
		Target: target, Clear: true, View: view, Projection: proj,
		Meshes: []postprocess.MeshDraw{near, far},
	}))
	center := target.Texel(16, 16)
	assert.InDelta(t, 1, center[0], eps, "nearer sphere wins the depth test")
	assert.InDelta(t, 0, center[1], eps)

	// from inside a sphere every visible triangle faces away and is culled
	inside := emissiveSphere(t, "shell", [3]float32{}, 5, [4]float32{1, 1, 1, 1})
	require.NoError(t, d.DrawScene(postprocess.ScenePass{
		Target: target, Clear: true, View: view, Projection: proj,
		Meshes: []postprocess.MeshDraw{inside},
	}))
	assert.Equal(t, [4]float32{}, target.Texel(16, 16))
}

func TestDrawSceneParticlesAndPoints(t *testing.T) {
	d := newTestDevice(t, 32, 32, 2)
	target := mustTexture(t, d, "scene", 32, 32, postprocess.FormatRGBA16F)
	view, proj := lookDownZ()

	white := &common.TextureStagingData{Width: 2, Height: 2, Pixels: make([]byte, 16)}
	for i := range white.Pixels {
		white.Pixels[i] = 255
	}
	require.NoError(t, d.RegisterSprite(particle.SpriteSpark, white))

	c := f32.Vec4{0.5, 0.25, 0, 1}
	quad := []particle.Vertex{
		{Position: f32.Vec3{-1, -1, -5}, Color: c, UV: [2]float32{0, 1}},
		{Position: f32.Vec3{-1, 1, -5}, Color: c, UV: [2]float32{0, 0}},
		{Position: f32.Vec3{1, -1, -5}, Color: c, UV: [2]float32{1, 1}},
		{Position: f32.Vec3{1, 1, -5}, Color: c, UV: [2]float32{1, 0}},
	}
	err := d.DrawScene(postprocess.ScenePass{
		Target:     target,
		Clear:      true,
		ClearColor: [4]float32{0.1, 0.1, 0.1, 0},
		View:       view,
		Projection: proj,
		Particles:  []postprocess.ParticleBatch{{Sprite: particle.SpriteSpark, Vertices: quad}},
		Points:     []postprocess.PointVertex{{Position: [3]float32{0, 0, -50}, Color: [4]float32{0, 0, 1, 1}}},
	})
	require.NoError(t, err)

	// off the shared diagonal so the pixel is covered by exactly one triangle
	lit := target.Texel(14, 17)
	assert.InDelta(t, 0.6, lit[0], eps)
	assert.InDelta(t, 0.35, lit[1], eps)
	assert.InDelta(t, 0.1, lit[2], eps)
	assert.Equal(t, [4]float32{0.1, 0.1, 0.1, 0}, target.Texel(2, 2))

	// the point lands on the center and overwrites whatever is there
	assert.Equal(t, [4]float32{0, 0, 1, 1}, target.Texel(16, 16))
}

func TestDrawSceneMissingSprite(t *testing.T) {
	d := newTestDevice(t, 8, 8, 1)
	target := mustTexture(t, d, "scene", 8, 8, postprocess.FormatRGBA16F)
	err := d.DrawScene(postprocess.ScenePass{
		Target:    target,
		Particles: []postprocess.ParticleBatch{{Sprite: "nope"}},
	})
	assert.Error(t, err)
	_, scenes := d.Stats()
	assert.Equal(t, 0, scenes)
}

func TestRegisterSpriteValidation(t *testing.T) {
	d := newTestDevice(t, 8, 8, 1)
	assert.Error(t, d.RegisterSprite("nil", nil))
	assert.Error(t, d.RegisterSprite("short", &common.TextureStagingData{Width: 2, Height: 2, Pixels: make([]byte, 4)}))
}

func TestSnapshotAndConfigureSurface(t *testing.T) {
	d := newTestDevice(t, 4, 3, 1)
	require.NoError(t, d.Clear(d.BackBuffer(), [4]float32{1, 0.5, 0, 0}))

	img, err := d.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, img.At(2, 1))

	old := d.BackBuffer()
	d.ConfigureSurface(10, 6)
	assert.Equal(t, 10, d.BackBuffer().Width())
	assert.Equal(t, 6, d.BackBuffer().Height())
	assert.ErrorIs(t, d.Clear(old, [4]float32{}), ErrReleased)
}

func TestParallelMatchesSerial(t *testing.T) {
	render := func(workers int) []float32 {
		d := newTestDevice(t, 64, 64, workers)
		target := mustTexture(t, d, "scene", 64, 64, postprocess.FormatRGBA16F)
		view, proj := lookDownZ()
		require.NoError(t, d.DrawScene(postprocess.ScenePass{
			Target: target, Clear: true, View: view, Projection: proj,
			Light:  light.GPULight{Direction: [3]float32{-1, 0, -1}, Color: [3]float32{1, 1, 1}},
			Meshes: []postprocess.MeshDraw{emissiveSphere(t, "a", [3]float32{1, 0, -8}, 2, [4]float32{0.2, 0.1, 0, 1})},
		}))
		return append([]float32(nil), target.pix...)
	}
	assert.Equal(t, render(1), render(6))
}

func TestHDRPipelineRendersSun(t *testing.T) {
	d := newTestDevice(t, 64, 64, 2)
	h := postprocess.NewHDR()
	require.NoError(t, h.Create(d))
	require.NoError(t, h.Reset(64, 64))
	created := d.LiveTextures()
	assert.Greater(t, created, 20)

	var view, proj [16]float32
	common.LookAt(view[:], [3]float32{}, h.LightPosition(), [3]float32{0, 1, 0})
	common.Perspective(proj[:], 0.05, 1, 1, 1000)

	require.NoError(t, d.BeginFrame())
	h.Update(0.1)
	require.NoError(t, h.Render(view, proj, nil))

	passes, scenes := d.Stats()
	assert.Equal(t, 1, scenes)
	assert.Greater(t, passes, 10)

	img, err := d.Snapshot()
	require.NoError(t, err)
	r, _, _, _ := img.At(32, 32).RGBA()
	assert.Greater(t, r>>8, uint32(200), "the sun is drawn at the center of the back buffer")

	h.Destroy()
	assert.Equal(t, 0, d.LiveTextures())
}

func TestHDRAdaptationSplitUpdatesMatchSingle(t *testing.T) {
	render := func(steps ...float32) []uint8 {
		d := newTestDevice(t, 64, 64, 2)
		h := postprocess.NewHDR()
		require.NoError(t, h.Create(d))
		require.NoError(t, h.Reset(64, 64))
		t.Cleanup(h.Destroy)

		var view, proj [16]float32
		common.LookAt(view[:], [3]float32{}, h.LightPosition(), [3]float32{0, 1, 0})
		common.Perspective(proj[:], 0.05, 1, 1, 1000)

		require.NoError(t, d.BeginFrame())
		for _, dt := range steps {
			h.Update(dt)
		}
		require.NoError(t, h.Render(view, proj, nil))
		img, err := d.Snapshot()
		require.NoError(t, err)
		return img.(*image.RGBA).Pix
	}

	assert.Equal(t, render(0.2), render(0.1, 0.1))
}

func TestReleaseFreesEverything(t *testing.T) {
	d := NewDevice(WithSize(8, 8), WithWorkers(2))
	tex := mustTexture(t, d, "t", 4, 4, postprocess.FormatRGBA8)
	d.Release()
	assert.Equal(t, 0, d.LiveTextures())
	assert.True(t, errors.Is(d.Clear(tex, [4]float32{}), ErrReleased))
}
