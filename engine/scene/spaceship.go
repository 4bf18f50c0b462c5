package scene

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
)

// Emitter offsets from the ship's origin along Z.
var (
	ExhaustOffset = [3]float32{0, 0, 8}
	DustOffset    = [3]float32{0, 0, -100}
)

// Spaceship is a hull with an engine exhaust behind it and a stream of dust ahead of it.
type Spaceship struct {
	name    string
	body    game_object.GameObject
	exhaust particle.ParticleSystem
	dust    particle.ParticleSystem
}

var _ Object = &Spaceship{}

// NewSpaceship wraps a hull and its two emitters, placing them at ExhaustOffset and DustOffset.
//
// Parameters:
//   - name: the object identifier
//   - body: the hull
//   - exhaust: the engine flame emitter
//   - dust: the dust emitter
//
// Returns:
//   - *Spaceship: the ship
func NewSpaceship(name string, body game_object.GameObject, exhaust, dust particle.ParticleSystem) *Spaceship {
	s := &Spaceship{name: name, body: body, exhaust: exhaust, dust: dust}
	s.follow()
	return s
}

func (s *Spaceship) object() {}

func (s *Spaceship) Name() string {
	return s.name
}

func (s *Spaceship) Body() game_object.GameObject {
	return s.body
}

func (s *Spaceship) Position() [3]float32 {
	return s.body.Position()
}

func (s *Spaceship) Update(dt float32) {
	s.body.Update(dt)
	s.follow()
	s.exhaust.Update(dt)
	s.dust.Update(dt)
}

func (s *Spaceship) follow() {
	p := s.body.Position()
	s.exhaust.SetPosition(offset(p, ExhaustOffset))
	s.dust.SetPosition(offset(p, DustOffset))
}

func (s *Spaceship) Draw(pass *postprocess.ScenePass) {
	drawBody(pass, s.body)
	drawEmitter(pass, s.exhaust)
	drawEmitter(pass, s.dust)
}

func (s *Spaceship) Emitters() []particle.ParticleSystem {
	return []particle.ParticleSystem{s.exhaust, s.dust}
}
