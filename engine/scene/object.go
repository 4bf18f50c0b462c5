package scene

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"golang.org/x/image/math/f32"
)

// Object is one body of the space scene. The set is closed: *Planet, *Comet and *Spaceship.
// Each object owns its body and emitters; Update and Draw are never called concurrently on
// the same object.
type Object interface {
	// Name returns the object's identifier.
	Name() string

	// Body returns the transform and mesh the object draws.
	Body() game_object.GameObject

	// Position returns the body's world-space position.
	Position() [3]float32

	// Update advances the body and its emitters by dt seconds.
	Update(dt float32)

	// Draw appends the object's meshes and particle batches to a scene pass. Particle quads
	// are built in the pass's view space.
	Draw(pass *postprocess.ScenePass)

	// Emitters returns the object's particle systems.
	Emitters() []particle.ParticleSystem

	object()
}

// drawBody appends the body's mesh when it is enabled and has one.
func drawBody(pass *postprocess.ScenePass, body game_object.GameObject) {
	if !body.Enabled() || body.Model() == nil {
		return
	}
	pass.Meshes = append(pass.Meshes, postprocess.MeshDraw{
		Model:       body.Model(),
		ModelMatrix: body.ModelMatrix(),
		Material:    body.Material(),
	})
}

// drawEmitter appends one particle batch if the emitter has anything alive.
func drawEmitter(pass *postprocess.ScenePass, ps particle.ParticleSystem) {
	vertices := ps.Billboards(pass.View)
	if len(vertices) == 0 {
		return
	}
	pass.Particles = append(pass.Particles, postprocess.ParticleBatch{
		Sprite:   ps.Sprite(),
		Vertices: vertices,
	})
}

// offset returns p moved by d, as an emitter position.
func offset(p [3]float32, d [3]float32) f32.Vec3 {
	return f32.Vec3{p[0] + d[0], p[1] + d[1], p[2] + d[2]}
}
