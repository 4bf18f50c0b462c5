package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], [3]float32{1, 2, 3}, [3]float32{0.3, 0.2, 0.1}, [3]float32{2, 2, 2})
	id := IdentityMatrix()

	var out [16]float32
	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestInvert4RoundTrip(t *testing.T) {
	var m, inv, prod [16]float32
	BuildModelMatrix(m[:], [3]float32{5, -1, 4}, [3]float32{0.5, 1.1, -0.3}, [3]float32{1, 3, 2})
	require.True(t, Invert4(inv[:], m[:]))
	Mul4(prod[:], m[:], inv[:])

	id := IdentityMatrix()
	for i := range prod {
		assert.InDelta(t, id[i], prod[i], 1e-4, "element %d", i)
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero, out [16]float32
	out[0] = 42
	assert.False(t, Invert4(out[:], zero[:]))
	assert.Equal(t, float32(42), out[0])
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	var view [16]float32
	eye := [3]float32{10, 4, -3}
	LookAt(view[:], eye, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})

	p := TransformPoint(view[:], eye)
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, 0, p[2], 1e-5)

	// the target lies straight down the -Z axis
	target := TransformPoint(view[:], [3]float32{0, 0, 0})
	assert.InDelta(t, 0, target[0], 1e-4)
	assert.InDelta(t, 0, target[1], 1e-4)
	assert.InDelta(t, -math32.Sqrt(125), target[2], 1e-4)
}

func TestPerspectiveDepthRange(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], math32.Pi/3, 1, 1, 1000)

	near := TransformPoint(proj[:], [3]float32{0, 0, -1})
	far := TransformPoint(proj[:], [3]float32{0, 0, -1000})
	assert.InDelta(t, 0, near[2]/near[3], 1e-5)
	assert.InDelta(t, 1, far[2]/far[3], 1e-4)
}

func TestFrustumSphereVisible(t *testing.T) {
	var view, proj, vp [16]float32
	LookAt(view[:], [3]float32{0, 0, 10}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	Perspective(proj[:], math32.Pi/2, 1, 1, 100)
	Mul4(vp[:], proj[:], view[:])
	f := ExtractFrustum(vp[:])

	tests := []struct {
		name    string
		center  [3]float32
		radius  float32
		visible bool
	}{
		{"in front", [3]float32{0, 0, 0}, 1, true},
		{"behind camera", [3]float32{0, 0, 20}, 1, false},
		{"beyond far plane", [3]float32{0, 0, -200}, 1, false},
		{"far left", [3]float32{-100, 0, 0}, 1, false},
		{"straddling the left plane", [3]float32{-10.5, 0, 0}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, f.SphereVisible(tt.center, tt.radius))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(5, 0, 3))
	assert.Equal(t, float32(-1), Clamp[float32](-4, -1, 1))
	assert.Equal(t, float32(0.5), Saturate(0.5))
	assert.Equal(t, float32(1), Saturate(7))
	assert.Equal(t, "b", Coalesce("", "b", "c"))
}
