package light

import (
	"github.com/chewxy/math32"
)

const (
	// DefaultSunIntensity is the initial exposure step of the sun, giving 8·10^1.
	DefaultSunIntensity = 52

	minLogIntensity = -4
	maxLogIntensity = 7
)

// SunPosition is the world-space position of the sun.
var SunPosition = [3]float32{250, 0, 250}

// Sun is a point light whose intensity moves in decimal steps: mantissa·10^exponent with the
// mantissa in 1..9 and the exponent in [-4, 7].
type Sun struct {
	Light
	mantissa int
	exponent int
}

// NewSun creates the sun point light from an integer exposure step.
//
// Parameters:
//   - step: initial exposure step, mantissa = 1 + step%9 and exponent = -4 + step/9
//   - opts: additional options applied to the underlying point light
//
// Returns:
//   - *Sun: the sun light
func NewSun(step int, opts ...LightBuilderOption) *Sun {
	step = max(step, 0)
	base := append([]LightBuilderOption{WithPosition(SunPosition[0], SunPosition[1], SunPosition[2])}, opts...)
	s := &Sun{
		Light:    NewLight(LightTypePoint, base...),
		mantissa: 1 + step%9,
		exponent: minLogIntensity + step/9,
	}
	s.refresh()
	return s
}

// Mantissa returns the leading digit of the intensity.
func (s *Sun) Mantissa() int {
	return s.mantissa
}

// Exponent returns the decimal exponent of the intensity.
func (s *Sun) Exponent() int {
	return s.exponent
}

// Adjust steps the intensity one mantissa up or down. Increments are ignored once the
// exponent reaches 7 and decrements once it reaches -4.
//
// Parameters:
//   - increment: true to brighten, false to dim
//
// Returns:
//   - bool: true if the intensity changed
func (s *Sun) Adjust(increment bool) bool {
	switch {
	case increment && s.exponent < maxLogIntensity:
		s.mantissa++
		if s.mantissa > 9 {
			s.mantissa = 1
			s.exponent++
		}
	case !increment && s.exponent > minLogIntensity:
		s.mantissa--
		if s.mantissa < 1 {
			s.mantissa = 9
			s.exponent--
		}
	default:
		return false
	}
	s.refresh()
	return true
}

func (s *Sun) refresh() {
	s.SetIntensity(float32(s.mantissa) * math32.Pow(10, float32(s.exponent)))
}

// Sunlight builds the directional light the bodies are shaded with. It travels from the sun
// toward the origin in white at unit intensity: only the sun sphere carries the exposure, so
// Adjust does not reach it.
//
// Parameters:
//   - opts: options applied after the defaults, typically WithAmbient
//
// Returns:
//   - Light: the directional light
func (s *Sun) Sunlight(opts ...LightBuilderOption) Light {
	base := []LightBuilderOption{
		WithAim(s.Position(), [3]float32{}),
		WithColor(1, 1, 1),
		WithIntensity(1),
	}
	return NewLight(LightTypeDirectional, append(base, opts...)...)
}

// SetStep jumps to an exposure step as NewSun interprets it.
//
// Parameters:
//   - step: exposure step, clamped at 0
func (s *Sun) SetStep(step int) {
	step = max(step, 0)
	s.mantissa = 1 + step%9
	s.exponent = min(minLogIntensity+step/9, maxLogIntensity)
	s.refresh()
}
