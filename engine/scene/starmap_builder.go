package scene

import "math/rand/v2"

type StarmapBuilderOption func(*Starmap)

// WithFarPlane sets the far plane the stars sit just inside of.
//
// Parameters:
//   - far: the camera's far plane distance
//
// Returns:
//   - StarmapBuilderOption: a function that sets the far plane
func WithFarPlane(far float32) StarmapBuilderOption {
	return func(s *Starmap) {
		s.farPlane = far
	}
}

// WithStarCount sets how many stars are generated.
func WithStarCount(n int) StarmapBuilderOption {
	return func(s *Starmap) {
		s.count = n
	}
}

// WithBrightness sets the brightness range in 0..200 color steps.
//
// Parameters:
//   - low: dimmest star
//   - high: brightest star
//
// Returns:
//   - StarmapBuilderOption: a function that sets the range
func WithBrightness(low, high int) StarmapBuilderOption {
	return func(s *Starmap) {
		s.low = low
		s.high = high
	}
}

// WithStarSource replaces the random source, e.g. a seeded PCG in tests.
func WithStarSource(src rand.Source) StarmapBuilderOption {
	return func(s *Starmap) {
		s.rng = rand.New(src)
	}
}
