package software

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

// maxHalf is the largest finite half-float value.
const maxHalf = 65504

// texture is a CPU render target holding four float32 channels per texel, quantized on every
// write to what the declared format can represent.
type texture struct {
	label  string
	width  int
	height int
	format postprocess.Format

	pix   []float32
	depth []float32

	released bool
}

var _ postprocess.Texture = &texture{}

func newTexture(label string, width, height int, format postprocess.Format) *texture {
	return &texture{
		label:  label,
		width:  width,
		height: height,
		format: format,
		pix:    make([]float32, width*height*4),
	}
}

// textureFromStaging converts RGBA8 staging pixels into an RGBA8 texture.
func textureFromStaging(label string, data *common.TextureStagingData) *texture {
	t := newTexture(label, int(data.Width), int(data.Height), postprocess.FormatRGBA8)
	for i, b := range data.Pixels[:len(t.pix)] {
		t.pix[i] = float32(b) / 255
	}
	return t
}

func (t *texture) Label() string              { return t.label }
func (t *texture) Width() int                 { return t.width }
func (t *texture) Height() int                { return t.height }
func (t *texture) Format() postprocess.Format { return t.format }

func (t *texture) Release() {
	t.pix = nil
	t.depth = nil
	t.released = true
}

// Texel returns the stored value at (x, y), clamped to the edge.
func (t *texture) Texel(x, y int) [4]float32 {
	x = common.Clamp(x, 0, t.width-1)
	y = common.Clamp(y, 0, t.height-1)
	i := (y*t.width + x) * 4
	p := t.pix[i : i+4 : i+4]
	return [4]float32{p[0], p[1], p[2], p[3]}
}

// Sample filters the texture bilinearly at (u, v) with clamp-to-edge addressing. Texel centers
// sit at half-integer coordinates.
func (t *texture) Sample(u, v float32) [4]float32 {
	fx := u*float32(t.width) - 0.5
	fy := v*float32(t.height) - 0.5
	x0f := math32.Floor(fx)
	y0f := math32.Floor(fy)
	tx := fx - x0f
	ty := fy - y0f
	x0, y0 := int(x0f), int(y0f)

	a := t.Texel(x0, y0)
	b := t.Texel(x0+1, y0)
	c := t.Texel(x0, y0+1)
	d := t.Texel(x0+1, y0+1)

	var out [4]float32
	for k := range 4 {
		top := a[k] + (b[k]-a[k])*tx
		bottom := c[k] + (d[k]-c[k])*tx
		out[k] = top + (bottom-top)*ty
	}
	return out
}

// write stores c at (x, y) after blending with the destination.
func (t *texture) write(x, y int, c [4]float32, blend material.BlendMode) {
	i := (y*t.width + x) * 4
	p := t.pix[i : i+4 : i+4]
	if blend == material.BlendAdditive {
		a := c[3]
		c = [4]float32{p[0] + c[0]*a, p[1] + c[1]*a, p[2] + c[2]*a, p[3] + a}
	}
	c = quantize(t.format, c)
	p[0], p[1], p[2], p[3] = c[0], c[1], c[2], c[3]
}

func (t *texture) fill(c [4]float32) {
	c = quantize(t.format, c)
	for i := 0; i < len(t.pix); i += 4 {
		t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c[0], c[1], c[2], c[3]
	}
}

// depthBuffer returns the depth attachment, allocating it cleared to the far plane.
func (t *texture) depthBuffer() []float32 {
	if t.depth == nil {
		t.depth = make([]float32, t.width*t.height)
		t.clearDepth()
	}
	return t.depth
}

func (t *texture) clearDepth() {
	for i := range t.depth {
		t.depth[i] = 1
	}
}

// Image converts the texture to 8-bit RGBA, forcing alpha to opaque.
func (t *texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := range t.height {
		for x := range t.width {
			c := t.Texel(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: 255,
			})
		}
	}
	return img
}

// quantize reduces a color to the precision and channel count of the format.
func quantize(f postprocess.Format, c [4]float32) [4]float32 {
	switch f {
	case postprocess.FormatRGBA8:
		for k := range 4 {
			c[k] = math32.Round(common.Saturate(c[k])*255) / 255
		}
	case postprocess.FormatRGBA16F:
		for k := range 4 {
			c[k] = common.Clamp(c[k], -maxHalf, maxHalf)
		}
	case postprocess.FormatR16F:
		c = [4]float32{common.Clamp(c[0], -maxHalf, maxHalf), 0, 0, 1}
	case postprocess.FormatR32F:
		c = [4]float32{c[0], 0, 0, 1}
	}
	return c
}

func toByte(v float32) uint8 {
	return uint8(common.Saturate(v)*255 + 0.5)
}
