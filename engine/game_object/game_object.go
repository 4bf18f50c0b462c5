package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

type gameObject struct {
	id       uint64
	enabled  atomic.Bool
	mdl      model.Model
	material material.Material

	position      [3]float32
	velocity      [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	scale         [3]float32
}

// GameObject defines the interface for a mesh-backed body in the scene.
// A body integrates its own position and rotation each tick; it is owned by exactly
// one scene object, so the transform is not synchronized.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Material returns the Material the body is drawn with, or nil if not set.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// Position returns the world-space position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// Velocity returns the linear velocity in units per second.
	//
	// Returns:
	//   - [3]float32: the velocity
	Velocity() [3]float32

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: rotation about X, Y and Z
	Rotation() [3]float32

	// RotationSpeed returns the angular velocity in radians per second.
	//
	// Returns:
	//   - [3]float32: angular velocity about X, Y and Z
	RotationSpeed() [3]float32

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - [3]float32: the scale
	Scale() [3]float32

	// Update advances position by velocity and rotation by rotation speed.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// ModelMatrix builds the column-major model matrix from the current transform.
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition moves the body.
	//
	// Parameters:
	//   - pos: the new position
	SetPosition(pos [3]float32)

	// SetVelocity sets the linear velocity.
	//
	// Parameters:
	//   - vel: units per second
	SetVelocity(vel [3]float32)

	// SetRotation sets the Euler rotation.
	//
	// Parameters:
	//   - rot: radians about X, Y and Z
	SetRotation(rot [3]float32)

	// SetRotationSpeed sets the angular velocity.
	//
	// Parameters:
	//   - speed: radians per second about X, Y and Z
	SetRotationSpeed(speed [3]float32)

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - scale: the new scale
	SetScale(scale [3]float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects start enabled with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Material() material.Material {
	return g.material
}

func (g *gameObject) Position() [3]float32 {
	return g.position
}

func (g *gameObject) Velocity() [3]float32 {
	return g.velocity
}

func (g *gameObject) Rotation() [3]float32 {
	return g.rotation
}

func (g *gameObject) RotationSpeed() [3]float32 {
	return g.rotationSpeed
}

func (g *gameObject) Scale() [3]float32 {
	return g.scale
}

func (g *gameObject) Update(dt float32) {
	g.position = common.Add3(g.position, common.Scale3(g.velocity, dt))
	g.rotation = common.Add3(g.rotation, common.Scale3(g.rotationSpeed, dt))
}

func (g *gameObject) ModelMatrix() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:], g.position, g.rotation, g.scale)
	return m
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(pos [3]float32) {
	g.position = pos
}

func (g *gameObject) SetVelocity(vel [3]float32) {
	g.velocity = vel
}

func (g *gameObject) SetRotation(rot [3]float32) {
	g.rotation = rot
}

func (g *gameObject) SetRotationSpeed(speed [3]float32) {
	g.rotationSpeed = speed
}

func (g *gameObject) SetScale(scale [3]float32) {
	g.scale = scale
}
