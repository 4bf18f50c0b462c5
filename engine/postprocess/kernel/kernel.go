// Package kernel generates the texture-coordinate offsets and weights consumed by the
// post-process techniques. Every function is pure and deterministic: kernels are rebuilt
// from the current texture dimensions on each call and never cached.
package kernel

import (
	"github.com/chewxy/math32"
)

// MaxSamples is the number of offset/weight slots every technique receives.
const MaxSamples = 16

// Samples is an ordered set of 2D sample offsets and RGBA weights. Slots past Count are zero.
type Samples struct {
	Offsets [MaxSamples][2]float32
	Weights [MaxSamples][4]float32
	Count   int
}

// Line is a one-dimensional kernel applied along a single axis.
type Line struct {
	Offsets [MaxSamples]float32
	Weights [MaxSamples][4]float32
	Count   int
}

// Horizontal expands the line into 2D offsets along X.
//
// Returns:
//   - Samples: the offsets (o, 0) with the line's weights
func (l Line) Horizontal() Samples {
	s := Samples{Weights: l.Weights, Count: l.Count}
	for i := range l.Count {
		s.Offsets[i] = [2]float32{l.Offsets[i], 0}
	}
	return s
}

// Vertical expands the line into 2D offsets along Y.
//
// Returns:
//   - Samples: the offsets (0, o) with the line's weights
func (l Line) Vertical() Samples {
	s := Samples{Weights: l.Weights, Count: l.Count}
	for i := range l.Count {
		s.Offsets[i] = [2]float32{0, l.Offsets[i]}
	}
	return s
}

// GaussianDistribution evaluates the 2D Gaussian 1/sqrt(2πρ²)·exp(−(x²+y²)/(2ρ²)).
//
// Parameters:
//   - x, y: the sample offset in texels
//   - rho: the standard deviation
//
// Returns:
//   - float32: the unnormalized weight
func GaussianDistribution(x, y, rho float32) float32 {
	g := 1.0 / math32.Sqrt(2.0*math32.Pi*rho*rho)
	return g * math32.Exp(-(x*x+y*y)/(2*rho*rho))
}

// DownScale4x4 returns the 16 offsets that sample the texel centers of a 4x4 block.
//
// Parameters:
//   - width, height: dimensions of the source texture
//
// Returns:
//   - Samples: 16 offsets ((x − 1.5)/w, (y − 1.5)/h), y outer, x inner, with unit weights
func DownScale4x4(width, height int) Samples {
	return blockOffsets(width, height, 4)
}

// DownScale2x2 returns the 4 offsets that sample the texel centers of a 2x2 block.
//
// Parameters:
//   - width, height: dimensions of the source texture
//
// Returns:
//   - Samples: 4 offsets ((x − 0.5)/w, (y − 0.5)/h) with unit weights
func DownScale2x2(width, height int) Samples {
	return blockOffsets(width, height, 2)
}

func blockOffsets(width, height, n int) Samples {
	tU := 1.0 / float32(width)
	tV := 1.0 / float32(height)
	center := float32(n-1) / 2

	var s Samples
	for y := range n {
		for x := range n {
			s.Offsets[s.Count] = [2]float32{(float32(x) - center) * tU, (float32(y) - center) * tV}
			s.Weights[s.Count] = [4]float32{1, 1, 1, 1}
			s.Count++
		}
	}
	return s
}

// LuminanceSample3x3 returns the 9 offsets used by the first luminance measurement pass.
// The step is a third of a destination texel so the 3x3 grid covers the source footprint.
//
// Parameters:
//   - width, height: dimensions of the destination luminance texture
//
// Returns:
//   - Samples: 9 offsets (x/(3w), y/(3h)), x outer, with unit weights
func LuminanceSample3x3(width, height int) Samples {
	tU := 1.0 / (3.0 * float32(width))
	tV := 1.0 / (3.0 * float32(height))

	var s Samples
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			s.Offsets[s.Count] = [2]float32{float32(x) * tU, float32(y) * tV}
			s.Weights[s.Count] = [4]float32{1, 1, 1, 1}
			s.Count++
		}
	}
	return s
}

// GaussBlur5x5 returns a 13-tap approximation of a 5x5 Gaussian kernel. Taps with a block
// distance greater than 2 are dropped; the remaining weights sum to multiplier.
//
// Parameters:
//   - width, height: dimensions of the source texture
//   - multiplier: scales the normalized weights to add or remove intensity
//
// Returns:
//   - Samples: 13 offsets and weights, x outer, y inner
func GaussBlur5x5(width, height int, multiplier float32) Samples {
	tU := 1.0 / float32(width)
	tV := 1.0 / float32(height)

	var s Samples
	var total float32
	for x := -2; x <= 2; x++ {
		for y := -2; y <= 2; y++ {
			if abs(x)+abs(y) > 2 {
				continue
			}
			g := GaussianDistribution(float32(x), float32(y), 1)
			s.Offsets[s.Count] = [2]float32{float32(x) * tU, float32(y) * tV}
			s.Weights[s.Count] = [4]float32{g, g, g, g}
			total += g
			s.Count++
		}
	}

	for i := range s.Count {
		for c := range 4 {
			s.Weights[i][c] = s.Weights[i][c] / total * multiplier
		}
	}
	return s
}

// Bloom returns the 15-tap separable Gaussian used by the bloom passes.
//
// Parameters:
//   - size: texture extent along the blur axis
//   - deviation: Gaussian standard deviation in texels
//   - multiplier: scales every weight
//
// Returns:
//   - Line: the center tap, 7 positive taps, and their 7 mirrored counterparts
func Bloom(size int, deviation, multiplier float32) Line {
	tU := 1.0 / float32(size)

	var l Line
	w := multiplier * GaussianDistribution(0, 0, deviation)
	l.Weights[0] = [4]float32{w, w, w, 1}

	for i := 1; i < 8; i++ {
		w = multiplier * GaussianDistribution(float32(i), 0, deviation)
		l.Offsets[i] = float32(i) * tU
		l.Weights[i] = [4]float32{w, w, w, 1}
	}
	for i := 8; i < 15; i++ {
		l.Weights[i] = l.Weights[i-7]
		l.Offsets[i] = -l.Offsets[i-7]
	}
	l.Count = 15
	return l
}

// Star returns the 15-tap line kernel for streak passes; it is Bloom with a unit multiplier.
//
// Parameters:
//   - size: texture extent along the streak axis
//   - deviation: Gaussian standard deviation in texels
//
// Returns:
//   - Line: the streak kernel
func Star(size int, deviation float32) Line {
	return Bloom(size, deviation, 1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
