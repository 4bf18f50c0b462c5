package particle

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-hdr/common"
)

const (
	// SpriteSpark is a soft round dot.
	SpriteSpark = "spark"
	// SpriteFlare is a bright core with four thin streaks.
	SpriteFlare = "flare"

	// DefaultSpriteSize is the edge length of generated sprites.
	DefaultSpriteSize = 64

	minSpriteSize = 4
)

// GenerateSprite renders one of the built-in sprites and softens it with a small gaussian blur.
//
// Parameters:
//   - name: SpriteSpark or SpriteFlare
//   - size: edge length in pixels, at least 4
//
// Returns:
//   - *common.TextureStagingData: RGBA8 pixels with premultiplied-looking white on black
//   - error: error if the name is unknown or the size is too small
func GenerateSprite(name string, size int) (*common.TextureStagingData, error) {
	if size < minSpriteSize {
		return nil, fmt.Errorf("sprite %s: size %d is below %d", name, size, minSpriteSize)
	}

	var shape func(dx, dy float32) float32
	switch name {
	case SpriteSpark:
		shape = sparkIntensity
	case SpriteFlare:
		shape = flareIntensity
	default:
		return nil, fmt.Errorf("unknown sprite %q", name)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := float32(size) / 2
	for y := range size {
		for x := range size {
			dx := (float32(x) + 0.5 - half) / half
			dy := (float32(y) + 0.5 - half) / half
			v := uint8(common.Saturate(shape(dx, dy))*255 + 0.5)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: v})
		}
	}

	soft := blur.Gaussian(img, float64(size)/48)
	return common.ImageToStaging(soft, 0), nil
}

// LoadSprite decodes a sprite from disk or memory when a source is given, and generates the
// built-in sprite of the same name otherwise.
//
// Parameters:
//   - s: the sprite description
//
// Returns:
//   - *common.TextureStagingData: RGBA8 pixels
//   - error: error if decoding or generation fails
func LoadSprite(s common.SpriteImage) (*common.TextureStagingData, error) {
	if s.Path != "" || len(s.Data) > 0 {
		return s.Decode()
	}
	return GenerateSprite(s.Name, common.Coalesce(s.Size, DefaultSpriteSize))
}

// sparkIntensity falls off quadratically from the center to zero at the edge.
func sparkIntensity(dx, dy float32) float32 {
	r := math32.Sqrt(dx*dx + dy*dy)
	if r >= 1 {
		return 0
	}
	f := 1 - r
	return f * f
}

func flareIntensity(dx, dy float32) float32 {
	r := math32.Sqrt(dx*dx + dy*dy)
	if r >= 1 {
		return 0
	}
	core := math32.Exp(-r * r * 24)
	fade := 1 - r
	streakX := math32.Exp(-dy*dy*400) * fade
	streakY := math32.Exp(-dx*dx*400) * fade
	return core + 0.6*(streakX+streakY)
}
