package scene

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/glare"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/software"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDevice forwards to a software device and keeps every scene pass.
type recordingDevice struct {
	postprocess.Device
	scenes []postprocess.ScenePass
}

func (r *recordingDevice) DrawScene(p postprocess.ScenePass) error {
	p.Points = append([]postprocess.PointVertex(nil), p.Points...)
	r.scenes = append(r.scenes, p)
	return r.Device.DrawScene(p)
}

func newTestScene(options ...SceneBuilderOption) Scene {
	base := []SceneBuilderOption{
		WithSeed(7),
		WithWorkers(2),
		WithSpriteSize(8),
		WithStarmapOptions(WithStarCount(200)),
	}
	return NewScene(append(base, options...)...)
}

func newRecordingDevice(t *testing.T, w, h int) *recordingDevice {
	t.Helper()
	dev := software.NewDevice(software.WithSize(w, h), software.WithWorkers(1))
	t.Cleanup(dev.Release)
	return &recordingDevice{Device: dev}
}

func names(objects []Object) []string {
	out := make([]string, 0, len(objects))
	for _, o := range objects {
		out = append(out, o.Name())
	}
	return out
}

func TestNewScene_Content(t *testing.T) {
	s := newTestScene()

	require.Len(t, s.Objects(), 4)
	assert.Equal(t, []string{"moon", "venus", "comet", "spaceship"}, names(s.Objects()))
	assert.Equal(t, MoonPosition, s.Objects()[ObjectMoon].Position())
	assert.Equal(t, CometPosition, s.Objects()[ObjectComet].Position())
	assert.Equal(t, SpaceshipPosition, s.Objects()[ObjectSpaceship].Position())
	assert.Equal(t, [3]float32{5, 5, 5}, s.Objects()[ObjectVenus].Body().Scale())

	assert.Equal(t, 0, s.CameraMode())
	assert.Equal(t, 200, s.Starmap().Count())
	assert.Equal(t, float32(1), s.Camera().Near())
	assert.Equal(t, float32(1000), s.Camera().Far())
	assert.False(t, s.Paused())
}

func TestScene_VisibilityPerCameraMode(t *testing.T) {
	s := newTestScene()

	assert.Equal(t, []string{"moon", "venus", "comet"}, names(s.Visible()))
	require.True(t, s.SetCameraMode(1))
	assert.Equal(t, []string{"spaceship"}, names(s.Visible()))
	require.True(t, s.SetCameraMode(2))
	assert.Equal(t, []string{"moon", "venus", "comet"}, names(s.Visible()))
}

func TestScene_SetCameraModeCapturesTarget(t *testing.T) {
	s := newTestScene()

	require.True(t, s.SetCameraMode(2))
	assert.Equal(t, CometPosition, s.Camera().Target())
	assert.InDelta(t, 0.22*math32.Pi, s.Camera().Fov(), 1e-4)

	require.True(t, s.SetCameraMode(1))
	assert.Equal(t, SpaceshipPosition, s.Camera().Target())

	assert.False(t, s.SetCameraMode(3))
	assert.False(t, s.SetCameraMode(-1))
	assert.Equal(t, 1, s.CameraMode())
}

func TestScene_UpdateMovesBodiesAndCamera(t *testing.T) {
	s := newTestScene()

	s.Update(1)

	comet := s.Objects()[ObjectComet].Position()
	assert.InDelta(t, CometPosition[0]+CometVelocity[0], comet[0], 1e-4)
	assert.InDelta(t, CometPosition[1]+CometVelocity[1], comet[1], 1e-4)
	assert.InDelta(t, 20*math32.Pi/180, s.Objects()[ObjectComet].Body().Rotation()[0], 1e-4)

	for _, ps := range s.Objects()[ObjectComet].Emitters() {
		assert.Positive(t, ps.AliveCount())
		assert.Equal(t, comet, [3]float32(ps.Position()))
	}

	ship := s.Objects()[ObjectSpaceship].(*Spaceship)
	emitters := ship.Emitters()
	require.Len(t, emitters, 2)
	assert.Equal(t, [3]float32{100, 0, 24}, [3]float32(emitters[0].Position()))
	assert.Equal(t, [3]float32{100, 0, -84}, [3]float32(emitters[1].Position()))

	// Mode 0 starts at 2π, which wraps on the first update.
	assert.Equal(t, float32(0), s.Orbit().Angle())
}

func TestScene_PauseFreezesUpdate(t *testing.T) {
	s := newTestScene()
	require.True(t, s.TogglePause())

	s.Update(5)
	assert.Equal(t, CometPosition, s.Objects()[ObjectComet].Position())
	assert.InDelta(t, 2*math32.Pi, s.Orbit().Angle(), 1e-4)

	assert.False(t, s.TogglePause())
	s.Update(5)
	assert.NotEqual(t, CometPosition, s.Objects()[ObjectComet].Position())
}

func TestScene_RotateCamera(t *testing.T) {
	s := newTestScene()
	require.True(t, s.SetCameraMode(2))
	before := s.Orbit().Angle()

	s.RotateCamera(RotateStep)
	assert.InDelta(t, before+math32.Pi/32, s.Orbit().Angle(), 1e-5)
	s.RotateCamera(-RotateStep)
	s.RotateCamera(-RotateStep)
	assert.InDelta(t, before-math32.Pi/32, s.Orbit().Angle(), 1e-5)

	want := [3]float32{
		math32.Cos(s.Orbit().Angle())*120 + CometPosition[0],
		CometPosition[1],
		math32.Sin(s.Orbit().Angle())*120 + CometPosition[2],
	}
	got := s.Camera().Position()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-3)
	}
}

func TestScene_Zoom(t *testing.T) {
	s := newTestScene()
	fov := s.Camera().Fov()

	assert.True(t, s.Zoom(ZoomStep))
	assert.InDelta(t, fov+ZoomStep, s.Camera().Fov(), 1e-5)
	s.HandleScroll(1)
	assert.InDelta(t, fov, s.Camera().Fov(), 1e-5)

	require.True(t, s.SetCameraMode(1))
	assert.False(t, s.Zoom(ZoomStep))
	s.HandleScroll(-1)
	assert.InDelta(t, 0.32*math32.Pi, s.Camera().Fov(), 1e-5)
	assert.True(t, s.HandleKey(common.KeyPageUp))
	assert.InDelta(t, 0.32*math32.Pi-ZoomStep, s.Camera().Fov(), 1e-5)
}

func TestScene_HandleKey(t *testing.T) {
	s := newTestScene()

	require.Equal(t, glare.Default, s.HDR().Glare())
	assert.True(t, s.HandleKey(common.KeyG))
	assert.Equal(t, glare.Default.Next(), s.HDR().Glare())

	assert.True(t, s.HandleKey(common.KeyT))
	assert.False(t, s.HDR().ToneMap())
	assert.True(t, s.HandleKey(common.KeyB))
	assert.False(t, s.HDR().BlueShift())

	intensity := s.HDR().LightIntensity()
	assert.True(t, s.HandleKey(common.KeyUp))
	assert.Greater(t, s.HDR().LightIntensity(), intensity)
	assert.True(t, s.HandleKey(common.KeyDown))
	assert.InDelta(t, intensity, s.HDR().LightIntensity(), 1e-3)

	assert.True(t, s.HandleKey(common.Key3))
	assert.Equal(t, 2, s.CameraMode())
	assert.True(t, s.HandleKey(common.KeySpace))
	assert.True(t, s.Paused())

	assert.False(t, s.HandleKey('Q'))
}

func TestScene_ApplyConfig(t *testing.T) {
	s := newTestScene()
	cfg := config.Default().HDR
	cfg.Glare = glare.CineCamVertical.String()
	cfg.ToneMap = false
	cfg.KeyValue = 0.5
	cfg.BloomScale = 1
	cfg.StarScale = 2
	cfg.LightIntensity = 0

	s.ApplyConfig(cfg)

	assert.Equal(t, glare.CineCamVertical, s.HDR().Glare())
	assert.False(t, s.HDR().ToneMap())
	assert.InDelta(t, 0.5, s.HDR().KeyValue(), 1e-6)
	bloom, star := s.HDR().Scales()
	assert.Equal(t, float32(1), bloom)
	assert.Equal(t, float32(2), star)
	assert.InDelta(t, 1e-4, s.HDR().LightIntensity(), 1e-9)
}

func TestScene_RenderBeforeCreate(t *testing.T) {
	s := newTestScene()
	assert.True(t, errors.Is(s.Render(0), postprocess.ErrNotReady))
}

func TestScene_RenderFrame(t *testing.T) {
	dev := newRecordingDevice(t, 64, 48)
	s := newTestScene()
	require.NoError(t, s.Create(dev))
	require.NoError(t, s.Reset(64, 48))
	t.Cleanup(s.Destroy)

	s.Update(0.1)
	gen := s.HDR().AdaptedLuminance()
	require.NoError(t, s.Render(0.1))
	require.NoError(t, s.Render(0.1))
	// Adaptation runs once per update, however many frames are drawn.
	assert.Equal(t, gen+1, s.HDR().AdaptedLuminance())

	require.Len(t, dev.scenes, 4)
	stars := dev.scenes[0]
	assert.Equal(t, dev.BackBuffer(), stars.Target)
	assert.Len(t, stars.Points, 200)
	assert.Empty(t, stars.Meshes)

	hdrPass := dev.scenes[1]
	assert.NotEqual(t, dev.BackBuffer(), hdrPass.Target)
	// sun, moon, venus with its shells, comet
	assert.Len(t, hdrPass.Meshes, 1+1+1+VenusGlow.Detail+1)
	require.Len(t, hdrPass.Particles, 1)
	assert.Equal(t, "spark", hdrPass.Particles[0].Sprite)

	require.True(t, s.SetCameraMode(1))
	s.Update(0.1)
	dev.scenes = nil
	require.NoError(t, s.Render(0.1))
	require.Len(t, dev.scenes, 2)
	assert.Len(t, dev.scenes[1].Meshes, 2)
	assert.Len(t, dev.scenes[1].Particles, 2)
}

// texelReader is the read side of a software render target.
type texelReader interface {
	Texel(x, y int) [4]float32
}

func requireFinite(t *testing.T, tex postprocess.Texture) {
	t.Helper()
	r, ok := tex.(texelReader)
	require.True(t, ok, "%s is not readable", tex.Label())
	for y := 0; y < tex.Height(); y++ {
		for x := 0; x < tex.Width(); x++ {
			for c, v := range r.Texel(x, y) {
				if math32.IsNaN(v) || math32.IsInf(v, 0) {
					require.Failf(t, "non-finite texel", "%s (%d,%d) channel %d = %v", tex.Label(), x, y, c, v)
				}
			}
		}
	}
}

func TestScene_RenderOutputIsFinite(t *testing.T) {
	const w, h = 320, 240
	dev := newRecordingDevice(t, w, h)
	s := newTestScene()
	require.NoError(t, s.Create(dev))
	require.NoError(t, s.Reset(w, h))
	t.Cleanup(s.Destroy)

	for mode := range 3 {
		require.True(t, s.SetCameraMode(mode))
		for range 2 {
			dev.scenes = nil
			s.Update(0.1)
			require.NoError(t, s.Render(0.1))

			require.Len(t, dev.scenes, 2)
			requireFinite(t, dev.scenes[1].Target)
			requireFinite(t, dev.BackBuffer())
		}
	}
}

func TestScene_LostAndReset(t *testing.T) {
	dev := newRecordingDevice(t, 32, 32)
	s := newTestScene()
	require.NoError(t, s.Create(dev))
	require.NoError(t, s.Reset(32, 32))

	s.Lost()
	assert.ErrorIs(t, s.Render(0), postprocess.ErrNotReady)
	require.NoError(t, s.Reset(32, 32))
	assert.NoError(t, s.Render(0))

	s.Destroy()
	assert.ErrorIs(t, s.Render(0), postprocess.ErrNotReady)
}

func TestStarmap(t *testing.T) {
	m := NewStarmap(WithStarCount(500), WithStarSource(rand.NewPCG(1, 2)))
	require.Equal(t, 500, m.Count())

	for _, st := range m.Stars() {
		p := st.Position
		assert.InDelta(t, 999, math32.Sqrt(p[0]*p[0]+p[1]*p[1]+p[2]*p[2]), 0.05)
		assert.GreaterOrEqual(t, st.Color[0], float32(10)/255)
		assert.LessOrEqual(t, st.Color[0], float32(200)/255)
		assert.GreaterOrEqual(t, st.Color[1], st.Color[0])
		assert.GreaterOrEqual(t, st.Color[2], st.Color[0])
	}

	eye := [3]float32{1, 2, 3}
	pts := m.Points(eye)
	require.Len(t, pts, 500)
	assert.Equal(t, m.Stars()[0].Position[0]+1, pts[0].Position[0])
	assert.Equal(t, m.Stars()[0].Position[2]+3, pts[0].Position[2])
}

func TestStarmap_Deterministic(t *testing.T) {
	a := NewStarmap(WithStarCount(10), WithStarSource(rand.NewPCG(3, 4)))
	b := NewStarmap(WithStarCount(10), WithStarSource(rand.NewPCG(3, 4)))
	assert.Equal(t, a.Stars(), b.Stars())
}

func TestStarmap_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		opts []StarmapBuilderOption
	}{
		{"too bright", []StarmapBuilderOption{WithBrightness(10, 201)}},
		{"negative", []StarmapBuilderOption{WithBrightness(-1, 100)}},
		{"inverted", []StarmapBuilderOption{WithBrightness(100, 50)}},
		{"no stars", []StarmapBuilderOption{WithStarCount(0)}},
		{"far plane", []StarmapBuilderOption{WithFarPlane(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStarmap(tt.opts...)
			assert.Equal(t, 0, m.Count())
			assert.Empty(t, m.Points([3]float32{}))
		})
	}
}

func TestPlanet_GlowShells(t *testing.T) {
	body := game_object.NewGameObject(
		game_object.WithModel(model.NewSphere("p", 1, 4, 6, [4]float32{1, 1, 1, 1})),
		game_object.WithMaterial(material.NewMaterial()),
	)
	p := NewPlanet("p", body, &Glow{Color: [3]float32{0.5, 0.2, 0.2}, Thickness: 0.3, Detail: 3, Bias: 2})
	require.Equal(t, 3, p.Shells())

	var pass postprocess.ScenePass
	p.Draw(&pass)
	require.Len(t, pass.Meshes, 4)
	assert.Equal(t, float32(0), pass.Meshes[0].ShellOffset)
	assert.InDelta(t, 0.1, pass.Meshes[1].ShellOffset, 1e-6)
	assert.InDelta(t, 0.3, pass.Meshes[3].ShellOffset, 1e-6)

	glow := pass.Meshes[1].Material
	assert.Equal(t, material.ShadingGlow, glow.Shading())
	assert.InDelta(t, 0.5/3, glow.Glow()[0], 1e-6)
	assert.Equal(t, float32(1), glow.GlowBias())

	bare := NewPlanet("b", body, &Glow{Detail: 0})
	assert.Equal(t, 1, bare.Shells())

	body.SetEnabled(false)
	pass = postprocess.ScenePass{}
	p.Draw(&pass)
	assert.Empty(t, pass.Meshes)
}
