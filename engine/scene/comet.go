package scene

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
)

// Comet is a drifting, tumbling nucleus trailing a particle tail from its center.
type Comet struct {
	name string
	body game_object.GameObject
	tail particle.ParticleSystem
}

var _ Object = &Comet{}

// NewComet wraps a body and its tail emitter. The tail is moved onto the body every update.
//
// Parameters:
//   - name: the object identifier
//   - body: the nucleus, carrying its drift velocity and tumble speed
//   - tail: the tail emitter
//
// Returns:
//   - *Comet: the comet
func NewComet(name string, body game_object.GameObject, tail particle.ParticleSystem) *Comet {
	c := &Comet{name: name, body: body, tail: tail}
	c.tail.SetPosition(offset(body.Position(), [3]float32{}))
	return c
}

func (c *Comet) object() {}

func (c *Comet) Name() string {
	return c.name
}

func (c *Comet) Body() game_object.GameObject {
	return c.body
}

func (c *Comet) Position() [3]float32 {
	return c.body.Position()
}

func (c *Comet) Update(dt float32) {
	c.body.Update(dt)
	c.tail.SetPosition(offset(c.body.Position(), [3]float32{}))
	c.tail.Update(dt)
}

func (c *Comet) Draw(pass *postprocess.ScenePass) {
	drawBody(pass, c.body)
	drawEmitter(pass, c.tail)
}

func (c *Comet) Emitters() []particle.ParticleSystem {
	return []particle.ParticleSystem{c.tail}
}
