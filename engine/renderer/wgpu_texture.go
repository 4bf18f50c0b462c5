package renderer

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuFormats maps render target formats to their wgpu texture format. The back buffer uses the
// surface format instead.
var wgpuFormats = map[postprocess.Format]wgpu.TextureFormat{
	postprocess.FormatRGBA8:   wgpu.TextureFormatRGBA8Unorm,
	postprocess.FormatRGBA16F: wgpu.TextureFormatRGBA16Float,
	postprocess.FormatR16F:    wgpu.TextureFormatR16Float,
	postprocess.FormatR32F:    wgpu.TextureFormatR32Float,
}

// wgpuTexture is a render target on the GPU. The back buffer has no texture of its own; its view
// is swapped in by BeginFrame and cleared by Present.
type wgpuTexture struct {
	owner *wgpuRendererBackend

	label         string
	width, height int
	format        postprocess.Format
	wgpuFormat    wgpu.TextureFormat

	texture *wgpu.Texture
	view    *wgpu.TextureView

	// Scene attachments are created by the first DrawScene into the texture.
	sceneSamples     uint32
	msaaTexture      *wgpu.Texture
	msaaView         *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthView        *wgpu.TextureView
	depthInitialized bool

	released bool
}

var _ postprocess.Texture = &wgpuTexture{}

func (t *wgpuTexture) Label() string              { return t.label }
func (t *wgpuTexture) Width() int                 { return t.width }
func (t *wgpuTexture) Height() int                { return t.height }
func (t *wgpuTexture) Format() postprocess.Format { return t.format }

func (t *wgpuTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.releaseSceneAttachments()
	if t.texture == nil {
		return
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	t.texture.Release()
	t.texture = nil
}

// releaseSceneAttachments frees the multisample color and depth buffers.
func (t *wgpuTexture) releaseSceneAttachments() {
	for _, v := range []*wgpu.TextureView{t.msaaView, t.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{t.msaaTexture, t.depthTexture} {
		if tex != nil {
			tex.Release()
		}
	}
	t.msaaTexture, t.msaaView = nil, nil
	t.depthTexture, t.depthView = nil, nil
	t.sceneSamples = 0
	t.depthInitialized = false
}
