package postprocess

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/glare"
)

// HDRBuilderOption is a functional option for configuring the HDR pipeline.
type HDRBuilderOption func(*hdr)

// WithLightIntensity sets the sun's initial exposure step (mantissa = 1 + step%9,
// exponent = -4 + step/9).
//
// Parameters:
//   - step: the exposure step
//
// Returns:
//   - HDRBuilderOption: option applying the step
func WithLightIntensity(step int) HDRBuilderOption {
	return func(h *hdr) {
		h.sunStep = step
	}
}

// WithBloomIntensity sets the key value as a percentage of middle gray.
//
// Parameters:
//   - percent: key value × 100
//
// Returns:
//   - HDRBuilderOption: option applying the key value
func WithBloomIntensity(percent float32) HDRBuilderOption {
	return func(h *hdr) {
		h.keyValue = percent / 100
	}
}

// WithBloomScale sets how strongly the bloom texture is added in the final pass.
func WithBloomScale(scale float32) HDRBuilderOption {
	return func(h *hdr) {
		h.bloomScale = scale
	}
}

// WithStarScale sets how strongly the star texture is added in the final pass.
func WithStarScale(scale float32) HDRBuilderOption {
	return func(h *hdr) {
		h.starScale = scale
	}
}

// WithSunSphere sets the geometry of the sphere drawn at the light position.
//
// Parameters:
//   - radius: sphere radius before the 0.05 scale
//   - stacks, slices: tessellation
//
// Returns:
//   - HDRBuilderOption: option applying the geometry
func WithSunSphere(radius float32, stacks, slices int) HDRBuilderOption {
	return func(h *hdr) {
		h.sunRadius = radius
		h.sunStacks = stacks
		h.sunSlices = slices
	}
}

// WithGlare sets the initial glare preset. Unknown types keep the default.
func WithGlare(t glare.Type) HDRBuilderOption {
	return func(h *hdr) {
		if t.Valid() {
			h.glareType = t
		}
	}
}

// WithToneMap sets whether luminance is measured and the scene tone mapped.
func WithToneMap(enabled bool) HDRBuilderOption {
	return func(h *hdr) {
		h.toneMap = enabled
	}
}

// WithBlueShift sets whether dark scenes shift toward rod (blue) vision.
func WithBlueShift(enabled bool) HDRBuilderOption {
	return func(h *hdr) {
		h.blueShift = enabled
	}
}
