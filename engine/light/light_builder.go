package light

import "github.com/Carmen-Shannon/oxy-hdr/common"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition places the light in world space. Only point lights use it; the sun sits at
// SunPosition.
//
// Parameters:
//   - x, y, z: world-space position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithDirection sets the direction a directional light travels in. A zero vector keeps the
// default straight-down direction.
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		if x == 0 && y == 0 && z == 0 {
			return
		}
		l.direction = common.Normalize3([3]float32{x, y, z})
	}
}

// WithAim positions the light at from and points it at to.
//
// Parameters:
//   - from: world-space origin of the light
//   - to: world-space point the light travels toward
//
// Returns:
//   - LightBuilderOption: a function that applies both options to a lightImpl
func WithAim(from, to [3]float32) LightBuilderOption {
	return func(l *lightImpl) {
		WithPosition(from[0], from[1], from[2])(l)
		d := common.Sub3(to, from)
		WithDirection(d[0], d[1], d[2])(l)
	}
}

// WithColor sets the RGB color of the light before intensity is applied.
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity sets the linear intensity. The sun overrides it from its exposure step.
//
// Parameters:
//   - intensity: the intensity value, clamped at 0
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = max(intensity, 0)
	}
}

// WithAmbient sets the ambient term uploaded with the light, which keeps the unlit side of
// the bodies from going fully black.
//
// Parameters:
//   - ambient: ambient factor in [0, 1]
//
// Returns:
//   - LightBuilderOption: a function that applies the ambient option to a lightImpl
func WithAmbient(ambient float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = common.Saturate(ambient)
	}
}

// WithEnabled sets whether the light starts enabled.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
