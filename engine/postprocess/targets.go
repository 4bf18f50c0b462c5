package postprocess

import (
	"fmt"
)

const (
	// NumToneMapTextures is the number of luminance reduction levels (64, 16, 4 and 1 texels square).
	NumToneMapTextures = 4
	// NumStarTextures holds two work buffers, two spares and up to eight streak directions.
	NumStarTextures = 12
	// NumBloomTextures is the number of bloom work buffers.
	NumBloomTextures = 3

	starLineBase = 4
)

// CropSize rounds the back buffer down to a multiple of 8 so every block reduction is exact.
//
// Parameters:
//   - width, height: back buffer size
//
// Returns:
//   - int, int: the cropped size
func CropSize(width, height int) (int, int) {
	return width - width%8, height - height%8
}

// targets is the render target chain for one back buffer size.
type targets struct {
	cropW, cropH int

	scene       Texture
	sceneScaled Texture
	brightPass  Texture
	starSource  Texture
	bloomSource Texture
	toneMap     [NumToneMapTextures]Texture
	bloom       [NumBloomTextures]Texture
	star        [NumStarTextures]Texture
	adaptation  Adaptation
}

// createTargets allocates the whole chain. On failure every texture created so far is
// released and the error is returned.
func createTargets(dev Device, width, height int, lumFormat Format) (*targets, error) {
	t := &targets{}
	t.cropW, t.cropH = CropSize(width, height)
	if t.cropW < 8 || t.cropH < 8 {
		return nil, fmt.Errorf("back buffer %dx%d is smaller than one 8x8 block", width, height)
	}

	var err error
	mk := func(label string, w, h int, format Format) Texture {
		if err != nil {
			return nil
		}
		var tex Texture
		tex, err = dev.CreateTexture(TextureDesc{Label: label, Width: w, Height: h, Format: format})
		if err != nil {
			err = fmt.Errorf("failed to create %s target: %w", label, err)
		}
		return tex
	}

	cw, ch := t.cropW, t.cropH
	t.scene = mk("scene", width, height, FormatRGBA16F)
	t.sceneScaled = mk("scene_scaled", cw/4, ch/4, FormatRGBA16F)
	t.brightPass = mk("bright_pass", cw/4+2, ch/4+2, FormatRGBA8)
	t.starSource = mk("star_source", cw/4+2, ch/4+2, FormatRGBA8)
	t.bloomSource = mk("bloom_source", cw/8+2, ch/8+2, FormatRGBA8)
	t.adaptation.Set(mk("adapted_lum_a", 1, 1, lumFormat), mk("adapted_lum_b", 1, 1, lumFormat))
	for i := range t.toneMap {
		size := 1 << (2 * i)
		t.toneMap[i] = mk(fmt.Sprintf("tonemap_%d", i), size, size, lumFormat)
	}
	for i := 1; i < NumBloomTextures; i++ {
		t.bloom[i] = mk(fmt.Sprintf("bloom_%d", i), cw/8+2, ch/8+2, FormatRGBA8)
	}
	t.bloom[0] = mk("bloom_0", cw/8, ch/8, FormatRGBA8)
	for i := range t.star {
		t.star[i] = mk(fmt.Sprintf("star_%d", i), cw/4, ch/4, FormatRGBA16F)
	}

	if err != nil {
		t.release()
		return nil, err
	}
	return t, nil
}

// clearBorders zeroes the textures whose 1-texel border is never written by a pass, plus the
// adaptation pair.
func (t *targets) clearBorders(dev Device) error {
	cleared := []Texture{
		t.adaptation.Current(), t.adaptation.Last(),
		t.bloomSource, t.brightPass, t.starSource,
	}
	cleared = append(cleared, t.bloom[:]...)
	for _, tex := range cleared {
		if err := dev.Clear(tex, [4]float32{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tex.Label(), err)
		}
	}
	return nil
}

// all lists every texture in the chain, skipping nil slots.
func (t *targets) all() []Texture {
	list := []Texture{t.scene, t.sceneScaled, t.brightPass, t.starSource, t.bloomSource}
	list = append(list, t.toneMap[:]...)
	list = append(list, t.bloom[:]...)
	list = append(list, t.star[:]...)
	out := list[:0]
	for _, tex := range list {
		if tex != nil {
			out = append(out, tex)
		}
	}
	return out
}

func (t *targets) release() {
	for _, tex := range t.all() {
		tex.Release()
	}
	t.adaptation.Release()
	*t = targets{}
}
