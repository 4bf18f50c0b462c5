package scene

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// Object indices in the space scene. Camera modes 0 and 2 draw the first three, mode 1 only
// the spaceship.
const (
	ObjectMoon = iota
	ObjectVenus
	ObjectComet
	ObjectSpaceship
	objectCount
)

// Starting transforms and motion.
var (
	MoonPosition      = [3]float32{0, 0, -15}
	CometPosition     = [3]float32{-150, 50, 400}
	CometVelocity     = [3]float32{-0.2, -0.2, 0}
	SpaceshipPosition = [3]float32{100, 0, 16}
)

const (
	venusScale = 5
	// cometTumble is the comet's spin about X in radians per second.
	cometTumble = 20 * math32.Pi / 180
)

// VenusGlow is the reddish atmosphere around the second planet.
var VenusGlow = Glow{Color: [3]float32{0.5, 0.2, 0.2}, Thickness: 0.2, Detail: 7, Bias: 0.2}

// newSpaceObjects builds the moon, Venus, the comet and the spaceship in index order.
// source returns the random source for the n-th emitter.
func newSpaceObjects(source func(n uint64) rand.Source) []Object {
	objects := make([]Object, objectCount)

	objects[ObjectMoon] = NewPlanet("moon", game_object.NewGameObject(
		game_object.WithID(ObjectMoon),
		game_object.WithModel(model.NewSphere("moon", 4, 24, 32, [4]float32{1, 1, 1, 1})),
		game_object.WithMaterial(material.NewMaterial(material.WithName("moon"), material.WithAlbedo([4]float32{0.55, 0.55, 0.6, 1}))),
		game_object.WithPosition(MoonPosition),
	), nil)

	glow := VenusGlow
	objects[ObjectVenus] = NewPlanet("venus", game_object.NewGameObject(
		game_object.WithID(ObjectVenus),
		game_object.WithModel(model.NewSphere("venus", 2, 32, 48, [4]float32{1, 1, 1, 1})),
		game_object.WithMaterial(material.NewMaterial(material.WithName("venus"), material.WithAlbedo([4]float32{0.9, 0.75, 0.45, 1}))),
		game_object.WithScale([3]float32{venusScale, venusScale, venusScale}),
	), &glow)

	tail := particle.NewParticleSystem(
		particle.WithCapacity(500),
		particle.WithAngles(30, -25),
		particle.WithVariation(30, 30),
		particle.WithColors(f32.Vec4{1, 1, 0, 1}, f32.Vec4{0.6, 0.6, 0.6, 0}, f32.Vec4{1, 0, 0, 0}, f32.Vec4{0.1, 0.1, 0.1, 0}),
		particle.WithLife(1, 20),
		particle.WithSize(3, 15),
		particle.WithVelocity(2, 6),
		particle.WithSprite(particle.SpriteSpark),
		particle.WithRandSource(source(0)),
		particle.WithEmitting(),
	)
	objects[ObjectComet] = NewComet("comet", game_object.NewGameObject(
		game_object.WithID(ObjectComet),
		game_object.WithModel(model.NewComet("comet", 6, [4]float32{1, 1, 1, 1})),
		game_object.WithMaterial(material.NewMaterial(material.WithName("comet"), material.WithAlbedo([4]float32{0.45, 0.45, 0.5, 1}))),
		game_object.WithPosition(CometPosition),
		game_object.WithVelocity(CometVelocity),
		game_object.WithRotationSpeed([3]float32{cometTumble, 0, 0}),
	), tail)

	exhaust := particle.NewParticleSystem(
		particle.WithCapacity(200),
		particle.WithAngles(0, 0),
		particle.WithVariation(30, 30),
		particle.WithColors(f32.Vec4{1, 0.8, 0.5, 1}, f32.Vec4{0.1, 0.1, 0.1, 0}, f32.Vec4{0, 0, 1, 0}, f32.Vec4{0.1, 0.1, 0.1, 0}),
		particle.WithLife(0.4, 0.8),
		particle.WithSize(2, 6),
		particle.WithVelocity(0, 36),
		particle.WithSprite(particle.SpriteFlare),
		particle.WithRandSource(source(1)),
		particle.WithEmitting(),
	)
	dust := particle.NewParticleSystem(
		particle.WithCapacity(1000),
		particle.WithAngles(0, 0),
		particle.WithVariation(40, 40),
		particle.WithColors(f32.Vec4{0.8, 0.8, 1, 1}, f32.Vec4{0.6, 0.6, 0, 0}, f32.Vec4{0, 0, 0, 0}, f32.Vec4{0.1, 0.1, 0.1, 0}),
		particle.WithLife(2, 10),
		particle.WithSize(0, 4),
		particle.WithVelocity(50, 150),
		particle.WithSprite(particle.SpriteSpark),
		particle.WithRandSource(source(2)),
		particle.WithEmitting(),
	)
	objects[ObjectSpaceship] = NewSpaceship("spaceship", game_object.NewGameObject(
		game_object.WithID(ObjectSpaceship),
		game_object.WithModel(model.NewSpaceship("spaceship", [4]float32{1, 1, 1, 1})),
		game_object.WithMaterial(material.NewMaterial(material.WithName("spaceship"), material.WithAlbedo([4]float32{0.7, 0.7, 0.75, 1}))),
		game_object.WithPosition(SpaceshipPosition),
	), exhaust, dust)

	return objects
}
