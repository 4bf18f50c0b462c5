package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/Carmen-Shannon/oxy-hdr/engine/window"
)

var (
	// ErrNoRenderer is returned when the engine is started without a renderer.
	ErrNoRenderer = errors.New("engine has no renderer")

	// ErrNoScene is returned when the engine is started without a scene.
	ErrNoScene = errors.New("engine has no scene")

	// ErrNoWindow is returned by Run when the engine was built without a window.
	ErrNoWindow = errors.New("engine has no window")
)

// engine implements the Engine interface.
// Coordinates the tick, render and window threads around one scene.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene

	// frameMu keeps surface reconfiguration out of an in-flight frame.
	frameMu sync.Mutex
	created bool

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the demo.
// It orchestrates the tick loop, the render loop and the window, and routes input to the scene.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer the scene draws through.
	Renderer() renderer.Renderer

	// Scene returns the driven scene.
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// ProfilerEnabled reports whether profiling output is on.
	ProfilerEnabled() bool

	// SetTickRate sets the engine tick rate in frames per second.
	// The scene is updated at this rate.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Start binds the scene to the renderer's device and sizes it for the current surface.
	// Run and RunFrames call it on first use.
	//
	// Parameters:
	//   - width, height: initial back buffer size
	//
	// Returns:
	//   - error: ErrNoRenderer, ErrNoScene or a wrapped scene error
	Start(width, height int) error

	// RunFrames drives the scene headless: each frame updates by dt and renders once.
	//
	// Parameters:
	//   - n: number of frames
	//   - dt: seconds per frame
	//
	// Returns:
	//   - error: a start error or the first frame error
	RunFrames(n int, dt float32) error

	// Run starts the tick and render goroutines and runs the window message loop.
	// Blocks until the window closes, then stops the goroutines and releases the scene.
	//
	// Returns:
	//   - error: ErrNoWindow or a start error
	Run() error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// When a window is supplied its resize, key and scroll callbacks are routed to the renderer and scene.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, scene, profiling, tick rate)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		wg:              sync.WaitGroup{},
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
		e.window.SetKeyDownCallback(func(keyCode uint32) {
			if e.scene != nil {
				e.scene.HandleKey(keyCode)
			}
		})
		e.window.SetScrollCallback(func(delta float32) {
			if e.scene != nil {
				e.scene.HandleScroll(delta)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Start(width, height int) error {
	if e.renderer == nil {
		return ErrNoRenderer
	}
	if e.scene == nil {
		return ErrNoScene
	}

	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	if e.created {
		return nil
	}
	if err := e.scene.Create(e.renderer.Device()); err != nil {
		return fmt.Errorf("engine start: %w", err)
	}
	if err := e.scene.Reset(width, height); err != nil {
		e.scene.Destroy()
		return fmt.Errorf("engine start: %w", err)
	}
	e.created = true
	return nil
}

func (e *engine) RunFrames(n int, dt float32) error {
	if err := e.Start(e.surfaceSize()); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		e.scene.Update(dt)
		if err := e.renderFrame(dt); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	if err := e.Start(e.window.Width(), e.window.Height()); err != nil {
		return err
	}

	e.running.Store(true)
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()

	e.frameMu.Lock()
	e.scene.Destroy()
	e.renderer.Release()
	e.created = false
	e.frameMu.Unlock()
	log.Printf("[Engine] stopped after %d frames", e.renderer.Frames())
	return nil
}

// Quit signals all engine goroutines to stop and closes the window if there is one.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// surfaceSize is the window's client size, or the renderer's default surface when headless.
func (e *engine) surfaceSize() (int, int) {
	if e.window != nil {
		return e.window.Width(), e.window.Height()
	}
	if e.renderer != nil {
		return e.renderer.Size()
	}
	return 0, 0
}

// resize reconfigures the surface and rebuilds the scene's size-dependent targets.
// A minimized window reports a zero size and is skipped.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 || e.renderer == nil || e.scene == nil {
		return
	}
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	e.renderer.Resize(width, height)
	if !e.created {
		return
	}
	e.scene.Lost()
	if err := e.scene.Reset(width, height); err != nil {
		log.Printf("[Engine] resize to %dx%d failed: %v", width, height, err)
	}
}

// renderFrame runs one acquire, draw, end and present cycle.
// A scene that is not ready yet skips the frame without error.
func (e *engine) renderFrame(dt float32) error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if err := e.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	err := e.scene.Render(dt)
	e.renderer.EndFrame()
	e.renderer.Present()
	if err != nil && !errors.Is(err, postprocess.ErrNotReady) {
		return err
	}
	return nil
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Updates the scene at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.scene.Update(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if err := e.renderFrame(dt); err != nil {
				log.Printf("[Engine] frame failed: %v", err)
			}

			if e.profilingEnabled.Load() && e.profiler != nil {
				e.profiler.Tick()
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then closes the window so the
// message loop returns.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
	if e.window != nil && e.window.IsRunning() {
		e.window.RequestClose()
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) ProfilerEnabled() bool {
	return e.profilingEnabled.Load()
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send; a pending update is replaced
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
