package particle

import (
	"math/rand/v2"

	"golang.org/x/image/math/f32"
)

type ParticleSystemBuilderOption func(*particleSystemImpl)

// WithCapacity sets the pool size. Values above MaxParticles are capped; values below 1 are raised to 1.
//
// Parameters:
//   - n: the requested number of particles
//
// Returns:
//   - ParticleSystemBuilderOption: a function that sizes the pool
func WithCapacity(n int) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.pool = make([]Particle, max(1, min(MaxParticles, n)))
	}
}

// WithPosition sets the emitter position.
//
// Parameters:
//   - pos: world-space emitter position
//
// Returns:
//   - ParticleSystemBuilderOption: a function that places the emitter
func WithPosition(pos f32.Vec3) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.emitter = pos
	}
}

// WithAngles sets the emission direction in degrees.
//
// Parameters:
//   - pitchDeg: elevation, clamped to [-90, 90]
//   - yawDeg: heading, clamped to [-360, 360]
//
// Returns:
//   - ParticleSystemBuilderOption: a function that aims the emitter
func WithAngles(pitchDeg, yawDeg float32) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.setAngles(pitchDeg, yawDeg)
	}
}

// WithVariation sets the emission cone spread in degrees.
//
// Parameters:
//   - pitchVarDeg: pitch spread, clamped to [0, 180]
//   - yawVarDeg: yaw spread, clamped to [0, 360]
//
// Returns:
//   - ParticleSystemBuilderOption: a function that widens the cone
func WithVariation(pitchVarDeg, yawVarDeg float32) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.setVariation(pitchVarDeg, yawVarDeg)
	}
}

// WithColors sets the start/end colors and their variances.
//
// Returns:
//   - ParticleSystemBuilderOption: a function that sets the color ramp
func WithColors(start, startVariance, end, endVariance f32.Vec4) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.colorStart, ps.colorStartVariance = start, startVariance
		ps.colorEnd, ps.colorEndVariance = end, endVariance
	}
}

// WithLife sets the lifetime range in seconds.
func WithLife(minLife, maxLife float32) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.minLife, ps.maxLife = minLife, maxLife
	}
}

// WithSize sets the size at emission and at end of life.
func WithSize(start, end float32) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.size, ps.sizeVariance = start, end-start
	}
}

// WithVelocity sets the speed range in units per second.
func WithVelocity(minVelocity, maxVelocity float32) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.minVelocity, ps.maxVelocity = minVelocity, maxVelocity
	}
}

// WithSprite names the sprite texture drawn for each particle.
func WithSprite(name string) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.sprite = name
	}
}

// WithRandSource replaces the random source used for emission, e.g. a seeded PCG in tests.
//
// Parameters:
//   - src: the random source
//
// Returns:
//   - ParticleSystemBuilderOption: a function that sets the random source
func WithRandSource(src rand.Source) ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.rng = rand.New(src)
	}
}

// WithEmitting starts the emitter immediately.
func WithEmitting() ParticleSystemBuilderOption {
	return func(ps *particleSystemImpl) {
		ps.emitting = true
	}
}
