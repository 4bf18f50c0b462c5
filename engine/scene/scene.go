package scene

import (
	"fmt"
	"log"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/glare"
	"github.com/chewxy/math32"
)

// Input steps.
const (
	RotateStep float32 = math32.Pi / 32
	ZoomStep   float32 = 0.02
)

// Scene composes the space bodies, the star field and the HDR sun, and drives the camera
// orbit. Update, Render and the commands are serialized, so any goroutine may call them.
type Scene interface {
	// Create binds the device, uploads the particle sprites and builds the HDR pipeline's
	// size-independent resources.
	//
	// Parameters:
	//   - dev: the render device
	//
	// Returns:
	//   - error: a wrapped sprite or pipeline error
	Create(dev postprocess.Device) error

	// Reset sizes the projection and every render target for a back buffer.
	//
	// Parameters:
	//   - width, height: back buffer size
	//
	// Returns:
	//   - error: the wrapped target creation error
	Reset(width, height int) error

	// Lost releases the size-dependent targets.
	Lost()

	// Destroy releases everything bound to the device.
	Destroy()

	// Update advances the bodies in parallel, then the camera orbit, then marks the
	// adaptation due. Does nothing while paused.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// Render draws the star field into the back buffer, then runs the HDR chain over the
	// bodies visible in the current camera mode.
	//
	// Parameters:
	//   - dt: elapsed seconds
	//
	// Returns:
	//   - error: postprocess.ErrNotReady before Create and Reset
	Render(dt float32) error

	// TogglePause flips the pause state.
	//
	// Returns:
	//   - bool: true if the scene is now paused
	TogglePause() bool
	Paused() bool

	// SetCameraMode switches the orbit, capturing the mode's target where it is now.
	// Modes outside 0..2 are ignored.
	//
	// Returns:
	//   - bool: false if the mode was ignored
	SetCameraMode(mode int) bool
	CameraMode() int

	// RotateCamera nudges the orbit angle and re-places the camera.
	RotateCamera(delta float32)

	// Zoom changes the field of view. Changes leaving [0, 1] radians are rejected.
	//
	// Returns:
	//   - bool: true if the field of view changed
	Zoom(delta float32) bool

	// AdjustLight steps the sun intensity.
	AdjustLight(increment bool) bool

	// SetGlare switches the glare preset. Unknown types are ignored.
	SetGlare(t glare.Type) bool

	// CycleGlare advances to the next glare preset.
	CycleGlare() glare.Type

	// ToggleToneMap flips tone mapping and returns the new state.
	ToggleToneMap() bool

	// ToggleBlueShift flips the night-vision blue shift and returns the new state.
	ToggleBlueShift() bool

	// ApplyConfig re-applies the live HDR settings.
	ApplyConfig(cfg config.HDR)

	// HandleKey runs the command bound to a glfw key code. Unbound keys are ignored.
	//
	// Returns:
	//   - bool: true if the key was bound
	HandleKey(keyCode uint32) bool

	// HandleScroll zooms by one step per wheel notch: up zooms in.
	HandleScroll(delta float32)

	// Objects returns the bodies in index order.
	Objects() []Object

	// Visible returns the bodies drawn in the current camera mode.
	Visible() []Object

	Camera() camera.Camera
	Orbit() camera.OrbitController
	HDR() postprocess.HDR
	Starmap() *Starmap
}

type scene struct {
	mu *sync.Mutex

	dev     postprocess.Device
	hdr     postprocess.HDR
	cam     camera.Camera
	orbit   camera.OrbitController
	objects []Object
	stars   *Starmap

	paused     bool
	spriteSize int
	seed       *uint64

	hdrOptions  []postprocess.HDRBuilderOption
	starOptions []StarmapBuilderOption

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int
}

var _ Scene = &scene{}

// NewScene builds the space scene in camera mode 0. No device is bound until Create.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.Mutex{},
		spriteSize: particle.DefaultSpriteSize,
		workers:    max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}

	source := func(n uint64) rand.Source {
		if s.seed != nil {
			return rand.NewPCG(*s.seed, n)
		}
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	s.objects = newSpaceObjects(source)

	starOpts := []StarmapBuilderOption{WithFarPlane(camera.DefaultFar)}
	if s.seed != nil {
		starOpts = append(starOpts, WithStarSource(source(objectCount)))
	}
	s.stars = NewStarmap(append(starOpts, s.starOptions...)...)

	s.hdr = postprocess.NewHDR(s.hdrOptions...)
	s.orbit = camera.NewOrbitController()
	s.cam = camera.NewCamera(
		camera.WithOrbit(s.orbit),
		camera.WithClipPlanes(camera.DefaultNear, camera.DefaultFar),
	)
	s.pool = worker.NewDynamicWorkerPool(s.workers, 64, 1*time.Second)
	return s
}

func (s *scene) Create(dev postprocess.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{particle.SpriteSpark, particle.SpriteFlare} {
		data, err := particle.GenerateSprite(name, s.spriteSize)
		if err != nil {
			return fmt.Errorf("scene sprite %s: %w", name, err)
		}
		if err := dev.RegisterSprite(name, data); err != nil {
			return fmt.Errorf("scene sprite %s: %w", name, err)
		}
	}
	if err := s.hdr.Create(dev); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	s.dev = dev
	log.Printf("[Scene] created with %d objects and %d stars", len(s.objects), s.stars.Count())
	return nil
}

func (s *scene) Reset(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cam.SetViewport(width, height)
	s.orbit.Update(0)
	s.cam.Update()
	if err := s.hdr.Reset(width, height); err != nil {
		return fmt.Errorf("scene reset: %w", err)
	}
	return nil
}

func (s *scene) Lost() {
	s.hdr.Lost()
}

func (s *scene) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hdr.Destroy()
	s.dev = nil
}

func (s *scene) Update(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}

	// Each object's state is touched only by its own task.
	var wg sync.WaitGroup
	for _, obj := range s.objects {
		wg.Add(1)
		o := obj
		id := s.taskID
		s.taskID++
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				o.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()

	s.orbit.Update(dt)
	s.cam.Update()
	s.hdr.Update(dt)
}

func (s *scene) Render(dt float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev == nil || !s.hdr.Ready() {
		return postprocess.ErrNotReady
	}

	view := s.cam.ViewMatrix()
	projection := s.cam.ProjectionMatrix()

	back := s.dev.BackBuffer()
	if err := s.dev.Clear(back, [4]float32{}); err != nil {
		log.Printf("[Scene] back buffer clear failed: %v", err)
	}
	if s.stars.Count() > 0 {
		err := s.dev.DrawScene(postprocess.ScenePass{
			Target:     back,
			View:       view,
			Projection: projection,
			Points:     s.stars.Points(s.cam.Position()),
		})
		if err != nil {
			log.Printf("[Scene] starfield failed: %v", err)
		}
	}

	visible := s.visible()
	return s.hdr.Render(view, projection, func(pass *postprocess.ScenePass) {
		for _, o := range visible {
			o.Draw(pass)
		}
	})
}

func (s *scene) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

func (s *scene) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *scene) SetCameraMode(mode int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.orbit.SetMode(mode, s.modeTarget(mode)) {
		return false
	}
	s.cam.SetFov(s.orbit.Fov())
	s.cam.Update()
	return true
}

func (s *scene) CameraMode() int {
	return s.orbit.Mode()
}

func (s *scene) RotateCamera(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orbit.Nudge(delta)
	s.cam.Update()
}

func (s *scene) Zoom(delta float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.orbit.Zoom(delta) {
		return false
	}
	s.cam.SetFov(s.orbit.Fov())
	return true
}

func (s *scene) AdjustLight(increment bool) bool {
	return s.hdr.AdjustLight(increment)
}

func (s *scene) SetGlare(t glare.Type) bool {
	return s.hdr.SetGlare(t)
}

func (s *scene) CycleGlare() glare.Type {
	next := s.hdr.Glare().Next()
	s.hdr.SetGlare(next)
	log.Printf("[Scene] glare: %s", next)
	return next
}

func (s *scene) ToggleToneMap() bool {
	enabled := !s.hdr.ToneMap()
	s.hdr.SetToneMap(enabled)
	return enabled
}

func (s *scene) ToggleBlueShift() bool {
	enabled := !s.hdr.BlueShift()
	s.hdr.SetBlueShift(enabled)
	return enabled
}

func (s *scene) ApplyConfig(cfg config.HDR) {
	s.hdr.SetGlare(cfg.GlareType())
	s.hdr.SetToneMap(cfg.ToneMap)
	s.hdr.SetBlueShift(cfg.BlueShift)
	s.hdr.SetLightStep(cfg.LightIntensity)
	s.hdr.SetKeyValue(cfg.KeyValue)
	s.hdr.SetScales(cfg.BloomScale, cfg.StarScale)
}

func (s *scene) Objects() []Object {
	return s.objects
}

func (s *scene) Visible() []Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible()
}

// visible picks the bodies for the camera mode. Caller must hold the mutex.
func (s *scene) visible() []Object {
	if s.orbit.Mode() == 1 {
		return s.objects[ObjectSpaceship : ObjectSpaceship+1]
	}
	return s.objects[:ObjectSpaceship]
}

// modeTarget is the point a camera mode circles. Caller must hold the mutex.
func (s *scene) modeTarget(mode int) [3]float32 {
	switch mode {
	case 1:
		return s.objects[ObjectSpaceship].Position()
	case 2:
		return s.objects[ObjectComet].Position()
	default:
		return [3]float32{}
	}
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Orbit() camera.OrbitController {
	return s.orbit
}

func (s *scene) HDR() postprocess.HDR {
	return s.hdr
}

func (s *scene) Starmap() *Starmap {
	return s.stars
}
