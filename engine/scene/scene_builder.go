package scene

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithWorkers sets how many pooled goroutines update the objects each frame.
//
// Parameters:
//   - n: worker count, at least 1
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.workers = max(n, 1)
	}
}

// WithSeed makes every emitter and the star field deterministic.
//
// Parameters:
//   - seed: the seed shared by all random sources, each on its own stream
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSeed(seed uint64) SceneBuilderOption {
	return func(s *scene) {
		s.seed = &seed
	}
}

// WithHDROptions passes options through to the HDR sun pipeline.
//
// Parameters:
//   - options: HDR builder options
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithHDROptions(options ...postprocess.HDRBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.hdrOptions = append(s.hdrOptions, options...)
	}
}

// WithStarmapOptions passes options through to the star field.
func WithStarmapOptions(options ...StarmapBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.starOptions = append(s.starOptions, options...)
	}
}

// WithSpriteSize sets the edge length of the generated particle sprites.
func WithSpriteSize(size int) SceneBuilderOption {
	return func(s *scene) {
		s.spriteSize = size
	}
}
