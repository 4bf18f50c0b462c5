package particle

import (
	"math/rand/v2"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"
)

func seeded() ParticleSystemBuilderOption {
	return WithRandSource(rand.NewPCG(1, 2))
}

func TestParticleUpdate(t *testing.T) {
	var p Particle
	p.Update(1)
	assert.False(t, p.Alive, "zero value stays dead")

	p.Init(f32.Vec3{0, 0, 0}, f32.Vec3{1, 2, 3}, f32.Vec4{1, 1, 1, 1}, f32.Vec4{-0.5, 0, 0, -0.25}, 2, 4, 1)
	p.Update(0.5)
	assert.True(t, p.Alive)
	assert.Equal(t, f32.Vec3{0.5, 1, 1.5}, p.Position)
	assert.Equal(t, f32.Vec4{0.75, 1, 1, 0.875}, p.Color)
	assert.Equal(t, float32(4.5), p.Size)
	assert.Equal(t, float32(1.5), p.Life)

	before := p.Position
	p.Update(1.5)
	assert.False(t, p.Alive)
	assert.Equal(t, before, p.Position, "an expiring particle does not move")

	p.Update(1)
	assert.Equal(t, before, p.Position)
}

func TestDormantSystemIsNoop(t *testing.T) {
	ps := NewParticleSystem(WithCapacity(10), WithLife(1, 2), seeded())
	ps.Update(1)
	assert.Zero(t, ps.AliveCount())
	for _, p := range ps.Particles() {
		assert.False(t, p.Alive)
	}
	assert.Nil(t, ps.Billboards([16]float32{}))
}

func TestEmittingFillsPool(t *testing.T) {
	ps := NewParticleSystem(WithCapacity(50), WithLife(1, 2), WithVelocity(1, 2), seeded())
	ps.Start()
	ps.Update(0.016)
	assert.Equal(t, 50, ps.AliveCount())
	assert.LessOrEqual(t, ps.AliveCount(), ps.Capacity())

	ps.Update(0.016)
	assert.Equal(t, 50, ps.AliveCount(), "dead slots are recycled while emitting")
}

func TestFixedLifeEmitterRespawnsAtEmitter(t *testing.T) {
	emitter := f32.Vec3{3, 4, 5}
	ps := NewParticleSystem(
		WithCapacity(10), WithLife(1, 1), WithVelocity(0, 0),
		WithPosition(emitter), WithEmitting(), seeded(),
	)

	for frame := range 2 {
		ps.Update(1.0)
		require.Equal(t, 10, ps.AliveCount(), "frame %d", frame)
		for i, p := range ps.Particles() {
			assert.True(t, p.Alive, "particle %d", i)
			assert.Equal(t, float32(1), p.Life, "particle %d", i)
			assert.Equal(t, emitter, p.Position, "particle %d", i)
		}
	}
}

func TestStoppedSystemDrains(t *testing.T) {
	ps := NewParticleSystem(WithCapacity(20), WithLife(0.5, 1), WithEmitting(), seeded())
	ps.Update(0.1)
	require.Equal(t, 20, ps.AliveCount())

	ps.Stop()
	ps.Update(0.4)
	assert.LessOrEqual(t, ps.AliveCount(), 20)
	ps.Update(1)
	assert.Zero(t, ps.AliveCount())

	snapshot := ps.Particles()
	ps.Update(1)
	assert.Equal(t, snapshot, ps.Particles())
}

func TestCapacityIsCapped(t *testing.T) {
	assert.Equal(t, MaxParticles, NewParticleSystem(WithCapacity(5000)).Capacity())
	assert.Equal(t, 200, NewParticleSystem(WithCapacity(200)).Capacity())
	assert.Equal(t, MaxParticles, NewParticleSystem().Capacity())
}

func TestEmissionDirectionAndClamping(t *testing.T) {
	ps := NewParticleSystem(
		WithCapacity(1),
		WithAngles(200, 0), // clamped to 90
		WithVelocity(2, 2),
		WithLife(1, 1),
		WithEmitting(),
		seeded(),
	)
	ps.Update(0)
	p := ps.Particles()[0]
	require.True(t, p.Alive)
	assert.InDelta(t, 0, p.Velocity[0], 1e-5)
	assert.InDelta(t, 2, p.Velocity[1], 1e-5)
	assert.InDelta(t, 0, p.Velocity[2], 1e-5)
}

func TestEmissionStaysInsideCone(t *testing.T) {
	ps := NewParticleSystem(
		WithCapacity(200),
		WithAngles(30, -25),
		WithVariation(30, 30),
		WithVelocity(1, 1),
		WithLife(5, 5),
		WithEmitting(),
		seeded(),
	)
	ps.Update(0)
	axis := Direction(30*degToRad, -25*degToRad)
	for _, p := range ps.Particles() {
		dot := p.Velocity[0]*axis[0] + p.Velocity[1]*axis[1] + p.Velocity[2]*axis[2]
		// half-spreads of 15° on both axes keep every direction within ~22° of the axis
		assert.Greater(t, dot, math32.Cos(23*degToRad))
	}
}

func TestColorAndSizeDeltas(t *testing.T) {
	ps := NewParticleSystem(
		WithCapacity(1),
		WithLife(2, 2),
		WithColors(f32.Vec4{1, 0, 0, 1}, f32.Vec4{}, f32.Vec4{0, 0, 1, 0}, f32.Vec4{}),
		WithSize(3, 15),
		WithEmitting(),
		seeded(),
	)
	ps.Update(0)
	p := ps.Particles()[0]
	assert.Equal(t, f32.Vec4{-0.5, 0, 0.5, -0.5}, p.ColorDelta)
	assert.Equal(t, float32(3), p.Size)
	assert.Equal(t, float32(6), p.SizeDelta)
}

func TestColorsAreClamped(t *testing.T) {
	ps := NewParticleSystem(
		WithCapacity(100),
		WithLife(1, 1),
		WithColors(f32.Vec4{1, 1, 0, 1}, f32.Vec4{0.6, 0.6, 0.6, 0}, f32.Vec4{1, 0, 0, 0}, f32.Vec4{0.1, 0.1, 0.1, 0}),
		WithEmitting(),
		seeded(),
	)
	ps.Update(0)
	for _, p := range ps.Particles() {
		for _, c := range p.Color {
			assert.GreaterOrEqual(t, c, float32(0))
			assert.LessOrEqual(t, c, float32(1))
		}
		assert.Equal(t, float32(1), p.Color[0])
		assert.Equal(t, float32(1), p.Color[1])
	}
}

func TestSeededSystemsAreDeterministic(t *testing.T) {
	build := func() ParticleSystem {
		return NewParticleSystem(WithCapacity(30), WithVariation(40, 40), WithLife(1, 3), WithVelocity(0, 10), WithEmitting(), seeded())
	}
	a, b := build(), build()
	for range 5 {
		a.Update(0.3)
		b.Update(0.3)
	}
	assert.Equal(t, a.Particles(), b.Particles())
}

func TestBillboards(t *testing.T) {
	ps := NewParticleSystem(
		WithCapacity(1),
		WithPosition(f32.Vec3{1, 2, 3}),
		WithSize(2, 2),
		WithLife(10, 10),
		WithColors(f32.Vec4{0.5, 0.5, 0.5, 1}, f32.Vec4{}, f32.Vec4{0.5, 0.5, 0.5, 1}, f32.Vec4{}),
		WithEmitting(),
		seeded(),
	)
	ps.Update(0)

	identity := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	quads := ps.Billboards(identity)
	require.Len(t, quads, 4)

	assert.Equal(t, f32.Vec3{0, 1, 3}, quads[0].Position)
	assert.Equal(t, f32.Vec3{0, 3, 3}, quads[1].Position)
	assert.Equal(t, f32.Vec3{2, 1, 3}, quads[2].Position)
	assert.Equal(t, f32.Vec3{2, 3, 3}, quads[3].Position)
	assert.Equal(t, [2]float32{0, 1}, quads[0].UV)
	assert.Equal(t, [2]float32{0, 0}, quads[1].UV)
	assert.Equal(t, [2]float32{1, 1}, quads[2].UV)
	assert.Equal(t, [2]float32{1, 0}, quads[3].UV)
	assert.Equal(t, f32.Vec4{0.5, 0.5, 0.5, 1}, quads[0].Color)

	translate := identity
	translate[12], translate[13], translate[14] = -1, -2, -3
	moved := ps.Billboards(translate)
	assert.Equal(t, f32.Vec3{-1, -1, 0}, moved[0].Position)
}

func TestQuadIndices(t *testing.T) {
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3, 4, 5, 6, 6, 5, 7}, QuadIndices(2))
	assert.Empty(t, QuadIndices(0))
}

func TestDirection(t *testing.T) {
	d := Direction(0, 0)
	assert.InDelta(t, 0, d[0], 1e-6)
	assert.InDelta(t, 0, d[1], 1e-6)
	assert.InDelta(t, 1, d[2], 1e-6)

	d = Direction(0, math32.Pi/2)
	assert.InDelta(t, -1, d[0], 1e-6)
}

func TestSetters(t *testing.T) {
	ps := NewParticleSystem(WithSprite("spark"))
	assert.Equal(t, "spark", ps.Sprite())
	ps.SetPosition(f32.Vec3{4, 5, 6})
	assert.Equal(t, f32.Vec3{4, 5, 6}, ps.Position())
	assert.False(t, ps.Emitting())
	ps.Start()
	assert.True(t, ps.Emitting())
}
