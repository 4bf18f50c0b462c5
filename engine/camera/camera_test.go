package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-3

func position(oc OrbitController) [3]float32 {
	x, y, z := oc.Position()
	return [3]float32{x, y, z}
}

func TestNewOrbitController_StartsInModeZero(t *testing.T) {
	oc := NewOrbitController()

	assert.Equal(t, 0, oc.Mode())
	assert.Equal(t, 3, oc.Modes())
	assert.InDelta(t, 2*math32.Pi, oc.Angle(), eps)
	assert.InDelta(t, 0.12*math32.Pi, oc.Fov(), eps)

	p := position(oc)
	assert.InDelta(t, 90, p[0], eps)
	assert.InDelta(t, 0, p[1], eps)
	assert.InDelta(t, 0, p[2], eps)
}

func TestOrbitController_UpdateUsesAngleBeforeAdvancing(t *testing.T) {
	oc := NewOrbitController()
	require.True(t, oc.SetMode(1, [3]float32{5, 0, 0}))
	start := oc.Angle()

	oc.Update(45)

	p := position(oc)
	assert.InDelta(t, math32.Cos(start)*60+5, p[0], eps)
	assert.InDelta(t, 10, p[1], eps)
	assert.InDelta(t, math32.Sin(start)*60, p[2], eps)
	assert.InDelta(t, start+1, oc.Angle(), eps)

	x, y, z := oc.Target()
	assert.Equal(t, [3]float32{5, 0, 0}, [3]float32{x, y, z})
}

func TestOrbitController_AngleWraps(t *testing.T) {
	oc := NewOrbitController()

	// Mode 0 starts at 2π, already past the wrap point.
	oc.Update(0.1)
	assert.Equal(t, float32(0), oc.Angle())

	oc.Update(30 * 3)
	assert.InDelta(t, 3, oc.Angle(), eps)
	oc.Update(30 * 3.5)
	assert.Equal(t, float32(0), oc.Angle())
}

func TestOrbitController_ModesRememberAngles(t *testing.T) {
	oc := NewOrbitController()
	require.True(t, oc.SetMode(1, [3]float32{}))
	oc.Update(45 * 0.5)
	remembered := oc.Angle()

	require.True(t, oc.SetMode(2, [3]float32{1, 2, 3}))
	assert.InDelta(t, 115*math32.Pi/180, oc.Angle(), eps)
	oc.Update(70)

	require.True(t, oc.SetMode(1, [3]float32{}))
	assert.InDelta(t, remembered, oc.Angle(), eps)
}

func TestOrbitController_IgnoresInvalidModes(t *testing.T) {
	oc := NewOrbitController()
	require.True(t, oc.SetMode(2, [3]float32{}))
	before := position(oc)

	assert.False(t, oc.SetMode(3, [3]float32{9, 9, 9}))
	assert.False(t, oc.SetMode(-1, [3]float32{9, 9, 9}))
	assert.Equal(t, 2, oc.Mode())
	assert.Equal(t, before, position(oc))
}

func TestOrbitController_Nudge(t *testing.T) {
	oc := NewOrbitController()
	require.True(t, oc.SetMode(2, [3]float32{}))
	start := oc.Angle()

	oc.Nudge(math32.Pi / 32)

	want := start + math32.Pi/32
	assert.InDelta(t, want, oc.Angle(), eps)
	p := position(oc)
	assert.InDelta(t, math32.Cos(want)*120, p[0], eps)
	assert.InDelta(t, math32.Sin(want)*120, p[2], eps)
}

func TestOrbitController_Zoom(t *testing.T) {
	oc := NewOrbitController()

	assert.True(t, oc.Zoom(-0.1))
	assert.InDelta(t, 0.12*math32.Pi-0.1, oc.Fov(), eps)
	assert.False(t, oc.Zoom(-0.5))
	assert.InDelta(t, 0.12*math32.Pi-0.1, oc.Fov(), eps)

	// Selecting a mode restores its field of view.
	require.True(t, oc.SetMode(0, [3]float32{}))
	assert.InDelta(t, 0.12*math32.Pi, oc.Fov(), eps)

	// Mode 1 already sits above 1 radian, so widening is refused.
	require.True(t, oc.SetMode(1, [3]float32{}))
	assert.False(t, oc.Zoom(0.01))
	assert.True(t, oc.Zoom(-0.1))
}

func TestWithOrbitModes(t *testing.T) {
	oc := NewOrbitController(WithOrbitModes(OrbitMode{DistanceX: 1, DistanceY: 1, Fov: 0.5, RotateDelay: 1}))
	assert.Equal(t, 1, oc.Modes())
	assert.False(t, oc.SetMode(1, [3]float32{}))
	assert.InDelta(t, 1, position(oc)[0], eps)

	assert.Equal(t, 3, NewOrbitController(WithOrbitModes()).Modes())
}

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, DefaultNear, c.Near())
	assert.Equal(t, DefaultFar, c.Far())
	assert.Nil(t, c.Controller())
	c.Update()
	assert.Equal(t, [3]float32{}, c.Position())
}

func TestCamera_FollowsController(t *testing.T) {
	oc := NewOrbitController()
	require.True(t, oc.SetMode(2, [3]float32{10, 0, 0}))
	c := NewCamera(WithOrbit(oc), WithClipPlanes(1, 1000))

	assert.Equal(t, oc.Fov(), c.Fov())
	assert.Equal(t, position(oc), c.Position())
	assert.Equal(t, [3]float32{10, 0, 0}, c.Target())

	// The target lies straight ahead, down -Z in view space.
	view := c.ViewMatrix()
	p := common.TransformPoint(view[:], c.Target())
	assert.InDelta(t, 0, p[0], eps)
	assert.InDelta(t, 0, p[1], eps)
	assert.InDelta(t, -120, p[2], eps)

	assert.True(t, c.Frustum().SphereVisible(c.Target(), 1))

	oc.Update(70)
	c.Update()
	assert.Equal(t, position(oc), c.Position())

	u := c.Uniform()
	for i := range 3 {
		assert.InDelta(t, c.Position()[i], u.CameraPosition[i], 1e-2)
	}
}

func TestCamera_SetViewport(t *testing.T) {
	c := NewCamera()
	c.SetViewport(200, 100)
	assert.InDelta(t, 2, c.Aspect(), eps)
	c.SetViewport(200, 0)
	assert.InDelta(t, 2, c.Aspect(), eps)
}

func TestCameraBuilderOptions(t *testing.T) {
	c := NewCamera(WithViewport(320, 240), WithFov(0.5), WithClipPlanes(2, 500), WithUp(0, 0, 1))
	assert.InDelta(t, 4.0/3, c.Aspect(), eps)
	assert.Equal(t, float32(0.5), c.Fov())
	assert.Equal(t, float32(2), c.Near())
	assert.Equal(t, float32(500), c.Far())
	x, y, z := c.Up()
	assert.Equal(t, [3]float32{0, 0, 1}, [3]float32{x, y, z})

	// Unusable values keep the defaults.
	d := NewCamera(WithViewport(0, 240), WithFov(4), WithFov(-1), WithClipPlanes(10, 5), WithClipPlanes(0, 100))
	assert.Equal(t, float32(1), d.Aspect())
	assert.InDelta(t, 0.25*math32.Pi, d.Fov(), eps)
	assert.Equal(t, DefaultNear, d.Near())
	assert.Equal(t, DefaultFar, d.Far())
}
