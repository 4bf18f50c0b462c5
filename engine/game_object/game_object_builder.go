package game_object

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the mesh the GameObject is drawn with.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithMaterial sets the material the GameObject is drawn with.
//
// Parameters:
//   - m: the Material to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Material
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.material = m
	}
}

// WithPosition sets the initial position.
//
// Parameters:
//   - pos: world-space position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(pos [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = pos
	}
}

// WithVelocity sets the linear velocity.
//
// Parameters:
//   - vel: units per second
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the velocity
func WithVelocity(vel [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.velocity = vel
	}
}

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - rot: rotation about X, Y and Z
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(rot [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = rot
	}
}

// WithRotationSpeed sets the angular velocity in radians per second.
//
// Parameters:
//   - speed: angular velocity about X, Y and Z
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation speed
func WithRotationSpeed(speed [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = speed
	}
}

// WithScale sets the per-axis scale.
//
// Parameters:
//   - scale: scale factors
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(scale [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = scale
	}
}
