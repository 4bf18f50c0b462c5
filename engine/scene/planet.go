package scene

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

// Glow describes an atmosphere drawn as Detail additive shells around a planet, each pushed
// out a further Thickness/Detail along the surface normal.
type Glow struct {
	Color     [3]float32
	Thickness float32
	Detail    int
	Bias      float32
}

// Planet is a lit body with an optional glowing atmosphere.
type Planet struct {
	name string
	body game_object.GameObject

	shells       int
	shellStep    float32
	glowMaterial material.Material
}

var _ Object = &Planet{}

// NewPlanet wraps a body as a planet. A nil glow draws the bare body.
//
// Parameters:
//   - name: the object identifier
//   - body: the planet's transform, mesh and surface material
//   - glow: the atmosphere, or nil
//
// Returns:
//   - *Planet: the planet
func NewPlanet(name string, body game_object.GameObject, glow *Glow) *Planet {
	p := &Planet{name: name, body: body}
	if glow != nil {
		detail := max(glow.Detail, 1)
		// The shells add up, so each one carries 1/detail of the color.
		d := float32(detail)
		p.shells = detail
		p.shellStep = glow.Thickness / d
		p.glowMaterial = material.NewMaterial(
			material.WithName(name+"_glow"),
			material.WithGlow([4]float32{glow.Color[0] / d, glow.Color[1] / d, glow.Color[2] / d, 1}, min(glow.Bias, 1)),
		)
	}
	return p
}

func (p *Planet) object() {}

func (p *Planet) Name() string {
	return p.name
}

func (p *Planet) Body() game_object.GameObject {
	return p.body
}

func (p *Planet) Position() [3]float32 {
	return p.body.Position()
}

func (p *Planet) Update(dt float32) {
	p.body.Update(dt)
}

// Shells returns the number of glow shells drawn around the body.
func (p *Planet) Shells() int {
	return p.shells
}

func (p *Planet) Draw(pass *postprocess.ScenePass) {
	drawBody(pass, p.body)
	if p.shells == 0 || !p.body.Enabled() || p.body.Model() == nil {
		return
	}
	m := p.body.ModelMatrix()
	for i := 1; i <= p.shells; i++ {
		pass.Meshes = append(pass.Meshes, postprocess.MeshDraw{
			Model:       p.body.Model(),
			ModelMatrix: m,
			Material:    p.glowMaterial,
			ShellOffset: p.shellStep * float32(i),
		})
	}
}

func (p *Planet) Emitters() []particle.ParticleSystem {
	return nil
}
