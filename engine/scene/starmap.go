package scene

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/chewxy/math32"
)

// Starmap defaults and the brightness ceiling, in 0..255 color steps.
const (
	DefaultStarCount     = 70600
	DefaultStarLow       = 10
	DefaultStarHigh      = 200
	maxStarBrightness    = 200
	starGreenJitter      = 15
	starBlueJitter       = 55
	starBandDivisorRange = 17
)

// Starmap is a fixed set of colored points on a sphere just inside the far plane. It moves
// with the camera but never rotates, so it reads as infinitely far away.
type Starmap struct {
	farPlane float32
	count    int
	low      int
	high     int
	rng      *rand.Rand

	stars  []postprocess.PointVertex
	points []postprocess.PointVertex
}

// NewStarmap generates the star field. Stars bunch toward the XZ plane like a galactic band.
// Out-of-range settings (brightness outside 0..200 or inverted, no stars, far plane of 1 or
// less) produce an empty map.
//
// Parameters:
//   - options: functional options to configure the starmap
//
// Returns:
//   - *Starmap: the star field
func NewStarmap(options ...StarmapBuilderOption) *Starmap {
	s := &Starmap{
		farPlane: 1000,
		count:    DefaultStarCount,
		low:      DefaultStarLow,
		high:     DefaultStarHigh,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, option := range options {
		option(s)
	}
	if s.high > maxStarBrightness || s.low < 0 || s.high < s.low || s.count <= 0 || s.farPlane <= 1 {
		s.count = 0
		return s
	}
	s.generate()
	return s
}

func (s *Starmap) generate() {
	radius := s.farPlane - 1
	s.stars = make([]postprocess.PointVertex, s.count)
	for i := range s.stars {
		var x, y, z, d float32
		for {
			x = s.rng.Float32()
			y = s.rng.Float32() / float32(s.rng.IntN(starBandDivisorRange)+1)
			z = s.rng.Float32()
			d = x*x + y*y + z*z
			if d <= 1 && d > 0 {
				break
			}
		}
		if s.rng.IntN(2) == 0 {
			x = -x
		}
		if s.rng.IntN(2) == 0 {
			y = -y
		}
		if s.rng.IntN(2) == 0 {
			z = -z
		}
		k := radius / math32.Sqrt(d)

		c := s.low + s.rng.IntN(s.high-s.low+1)
		s.stars[i] = postprocess.PointVertex{
			Position: [3]float32{x * k, y * k, z * k},
			Color: [4]float32{
				channel(c),
				channel(c + s.rng.IntN(starGreenJitter)),
				channel(c + s.rng.IntN(starBlueJitter)),
				1,
			},
		}
	}
	s.points = make([]postprocess.PointVertex, s.count)
}

func channel(v int) float32 {
	return float32(min(v, 255)) / 255
}

// Count returns the number of stars.
func (s *Starmap) Count() int {
	return s.count
}

// Radius returns the distance of every star from the eye.
func (s *Starmap) Radius() float32 {
	return s.farPlane - 1
}

// Stars returns the star positions relative to the eye. The slice is shared; do not modify it.
func (s *Starmap) Stars() []postprocess.PointVertex {
	return s.stars
}

// Points returns the stars translated to the eye position. The returned slice is reused by the
// next call.
//
// Parameters:
//   - eye: the camera position
//
// Returns:
//   - []postprocess.PointVertex: world-space star points
func (s *Starmap) Points(eye [3]float32) []postprocess.PointVertex {
	for i, st := range s.stars {
		s.points[i] = postprocess.PointVertex{
			Position: [3]float32{st.Position[0] + eye[0], st.Position[1] + eye[1], st.Position[2] + eye[2]},
			Color:    st.Color,
		}
	}
	return s.points
}
