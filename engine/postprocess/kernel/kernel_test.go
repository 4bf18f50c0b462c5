package kernel

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownScale4x4Offsets(t *testing.T) {
	s := DownScale4x4(100, 50)
	assert.Equal(t, 16, s.Count)

	// y outer, x inner
	assert.InDelta(t, -1.5/100.0, s.Offsets[0][0], 1e-7)
	assert.InDelta(t, -1.5/50.0, s.Offsets[0][1], 1e-7)
	assert.InDelta(t, -0.5/100.0, s.Offsets[1][0], 1e-7)
	assert.InDelta(t, -1.5/50.0, s.Offsets[1][1], 1e-7)
	assert.InDelta(t, 1.5/100.0, s.Offsets[15][0], 1e-7)
	assert.InDelta(t, 1.5/50.0, s.Offsets[15][1], 1e-7)

	var sum [2]float32
	for i := range s.Count {
		sum[0] += s.Offsets[i][0]
		sum[1] += s.Offsets[i][1]
	}
	assert.InDelta(t, 0, sum[0], 1e-6)
	assert.InDelta(t, 0, sum[1], 1e-6)
}

func TestDownScale4x4SquareTexture(t *testing.T) {
	const size = 64
	s := DownScale4x4(size, size)
	require.Equal(t, 16, s.Count)

	for i := range s.Count {
		for axis, v := range s.Offsets[i] {
			assert.GreaterOrEqual(t, v, float32(-2.5/size), "sample %d axis %d", i, axis)
			assert.LessOrEqual(t, v, float32(1.5/size), "sample %d axis %d", i, axis)
			// Texel centers: a whole number of texels plus a half.
			texels := float64(v)*size + 0.5
			assert.Equal(t, math.Round(texels), texels, "sample %d axis %d", i, axis)
		}
	}

	// Neighbouring samples sit exactly one texel apart on both axes.
	for x := 1; x < 4; x++ {
		assert.Equal(t, float32(1.0/size), s.Offsets[x][0]-s.Offsets[x-1][0])
		assert.Equal(t, float32(1.0/size), s.Offsets[x*4][1]-s.Offsets[(x-1)*4][1])
	}
}

func TestDownScale2x2Offsets(t *testing.T) {
	s := DownScale2x2(8, 4)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, [2]float32{-0.5 / 8, -0.5 / 4}, s.Offsets[0])
	assert.Equal(t, [2]float32{0.5 / 8, -0.5 / 4}, s.Offsets[1])
	assert.Equal(t, [2]float32{-0.5 / 8, 0.5 / 4}, s.Offsets[2])
	assert.Equal(t, [2]float32{}, s.Offsets[4])
}

func TestLuminanceSample3x3(t *testing.T) {
	s := LuminanceSample3x3(64, 64)
	assert.Equal(t, 9, s.Count)
	step := float32(1.0 / (3.0 * 64.0))
	// x outer
	assert.Equal(t, [2]float32{-step, -step}, s.Offsets[0])
	assert.Equal(t, [2]float32{-step, 0}, s.Offsets[1])
	assert.Equal(t, [2]float32{0, 0}, s.Offsets[4])
	assert.Equal(t, [2]float32{step, step}, s.Offsets[8])
}

func TestGaussBlur5x5(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float32
	}{
		{"unit", 1},
		{"double", 2},
		{"half", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := GaussBlur5x5(32, 16, tt.multiplier)
			assert.Equal(t, 13, s.Count)

			var total float32
			for i := range s.Count {
				total += s.Weights[i][0]
				assert.Equal(t, s.Weights[i][0], s.Weights[i][3])
			}
			assert.InDelta(t, tt.multiplier, total, 1e-5)
		})
	}
}

func TestGaussBlur5x5Ordering(t *testing.T) {
	s := GaussBlur5x5(10, 10, 1)
	// x = -2 contributes a single tap at y = 0
	assert.InDelta(t, -0.2, s.Offsets[0][0], 1e-7)
	assert.InDelta(t, 0, s.Offsets[0][1], 1e-7)
	// center tap is the heaviest
	center := s.Weights[6][0]
	assert.Equal(t, [2]float32{0, 0}, s.Offsets[6])
	for i := range s.Count {
		assert.LessOrEqual(t, s.Weights[i][0], center)
	}
}

func TestBloomSymmetry(t *testing.T) {
	l := Bloom(64, 3, 2)
	assert.Equal(t, 15, l.Count)
	assert.Equal(t, float32(0), l.Offsets[0])
	assert.InDelta(t, 2*GaussianDistribution(0, 0, 3), l.Weights[0][0], 1e-7)
	assert.Equal(t, float32(1), l.Weights[0][3])

	for i := 1; i < 8; i++ {
		assert.InDelta(t, float32(i)/64, l.Offsets[i], 1e-7)
		assert.Equal(t, -l.Offsets[i], l.Offsets[i+7])
		assert.Equal(t, l.Weights[i], l.Weights[i+7])
		assert.Less(t, l.Weights[i][0], l.Weights[i-1][0])
	}
}

func TestBloomAxes(t *testing.T) {
	l := Bloom(32, 3, 2)
	h := l.Horizontal()
	v := l.Vertical()
	for i := range l.Count {
		assert.Equal(t, [2]float32{l.Offsets[i], 0}, h.Offsets[i])
		assert.Equal(t, [2]float32{0, l.Offsets[i]}, v.Offsets[i])
	}
	assert.Equal(t, l.Weights, h.Weights)
}

func TestStarIsUnitBloom(t *testing.T) {
	assert.Equal(t, Bloom(128, 2, 1), Star(128, 2))
}

func TestGaussianDistribution(t *testing.T) {
	assert.InDelta(t, 1/math32.Sqrt(2*math32.Pi), GaussianDistribution(0, 0, 1), 1e-7)
	assert.InDelta(t, GaussianDistribution(1, 2, 1.5), GaussianDistribution(-2, 1, 1.5), 1e-7)
}

func TestKernelsAreReproducible(t *testing.T) {
	assert.Equal(t, GaussBlur5x5(77, 33, 1), GaussBlur5x5(77, 33, 1))
	assert.Equal(t, DownScale4x4(320, 240), DownScale4x4(320, 240))
}
