// Package particle implements a fixed-capacity CPU particle emitter whose particles are
// recycled in place while the emitter is running.
package particle

import (
	"golang.org/x/image/math/f32"
)

// Particle is a single pooled particle. The zero value is a dead particle.
type Particle struct {
	Position   f32.Vec3
	Velocity   f32.Vec3
	Color      f32.Vec4
	ColorDelta f32.Vec4
	Size       float32
	SizeDelta  float32
	Life       float32
	Alive      bool
}

// Init resets the particle to a freshly emitted, alive state.
//
// Parameters:
//   - position: world-space spawn position
//   - velocity: world-space velocity in units per second
//   - color: starting color
//   - colorDelta: color change per second
//   - life: remaining lifetime in seconds
//   - size: starting size
//   - sizeDelta: size change per second
func (p *Particle) Init(position, velocity f32.Vec3, color, colorDelta f32.Vec4, life, size, sizeDelta float32) {
	*p = Particle{
		Position:   position,
		Velocity:   velocity,
		Color:      color,
		ColorDelta: colorDelta,
		Size:       size,
		SizeDelta:  sizeDelta,
		Life:       life,
		Alive:      true,
	}
}

// Update advances the particle by dt seconds. Dead particles are left untouched; a particle
// whose life runs out is marked dead without being moved.
//
// Parameters:
//   - dt: elapsed time in seconds
func (p *Particle) Update(dt float32) {
	if !p.Alive {
		return
	}
	p.Life -= dt
	if p.Life <= 0 {
		p.Alive = false
		return
	}
	for i := range 3 {
		p.Position[i] += p.Velocity[i] * dt
	}
	for i := range 4 {
		p.Color[i] += p.ColorDelta[i] * dt
	}
	p.Size += p.SizeDelta * dt
}
