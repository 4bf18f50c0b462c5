// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// TextureStagingData holds RGBA8 pixel data for a texture pending upload to a render device.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// At returns the normalized RGBA color of the texel at (x, y), clamped to the image edge.
//
// Parameters:
//   - x, y: texel coordinates
//
// Returns:
//   - [4]float32: color in [0, 1]
func (t *TextureStagingData) At(x, y int) [4]float32 {
	x = Clamp(x, 0, int(t.Width)-1)
	y = Clamp(y, 0, int(t.Height)-1)
	i := (y*int(t.Width) + x) * 4
	p := t.Pixels[i : i+4 : i+4]
	return [4]float32{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
}

// ErrNoImageSource is returned by SpriteImage.Decode when neither Data nor Path is set.
var ErrNoImageSource = errors.New("sprite has neither data nor path")

// SpriteImage describes a small sprite texture to be decoded from memory or disk.
type SpriteImage struct {
	// Name identifies the sprite (e.g. "spark", "flare").
	Name string

	// Path is an image file on disk (PNG or JPEG).
	Path string

	// Data contains raw encoded image bytes. Takes precedence over Path.
	Data []byte

	// Size, when non-zero, resamples the decoded image to Size x Size.
	Size int
}

// Decode decodes the sprite to RGBA8 pixel data, resampling it when Size is set.
//
// Returns:
//   - *TextureStagingData: the decoded pixels
//   - error: error if the source is missing or decoding fails
func (s *SpriteImage) Decode() (*TextureStagingData, error) {
	if s == nil {
		return nil, fmt.Errorf("sprite is nil")
	}

	var img image.Image
	var err error
	switch {
	case len(s.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(s.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode sprite %s: %w", s.Name, err)
		}
	case s.Path != "":
		file, openErr := os.Open(s.Path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open sprite file %s: %w", s.Path, openErr)
		}
		defer file.Close()
		img, _, err = image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode sprite file %s: %w", s.Path, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", s.Name, ErrNoImageSource)
	}

	return ImageToStaging(img, s.Size), nil
}

// ImageToStaging converts an image to RGBA8 staging data. When size is positive
// the image is resampled to size x size with a Catmull-Rom filter.
//
// Parameters:
//   - img: the source image
//   - size: target edge length, or 0 to keep the source bounds
//
// Returns:
//   - *TextureStagingData: the converted pixels
func ImageToStaging(img image.Image, size int) *TextureStagingData {
	bounds := img.Bounds()
	var rgba *image.RGBA
	if size > 0 && (bounds.Dx() != size || bounds.Dy() != size) {
		rgba = image.NewRGBA(image.Rect(0, 0, size, size))
		xdraw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, xdraw.Src, nil)
	} else {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return &TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(rgba.Bounds().Dx()),
		Height: uint32(rgba.Bounds().Dy()),
	}
}
