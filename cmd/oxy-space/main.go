// Command oxy-space renders the HDR space demo: a moon, Venus with its glow, a comet and a
// spaceship with particle trails, lit by a sun that blooms and flares through the HDR chain.
//
// Run windowed on the GPU, or headless with -snapshot to write a PNG from the CPU backend.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-hdr/engine"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/Carmen-Shannon/oxy-hdr/engine/window"
	"github.com/anthonynsimon/bild/imgio"
)

// snapshotStep is the simulated time per headless frame.
const snapshotStep float32 = 1.0 / 30

type options struct {
	configPath string
	snapshot   string
	frames     int
	width      int
	height     int
	seed       uint64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "TOML config file; watched for live changes in windowed mode")
	flag.StringVar(&opts.snapshot, "snapshot", "", "render headless on the CPU and write the last frame to this PNG")
	flag.IntVar(&opts.frames, "frames", 60, "frames to simulate before a snapshot")
	flag.IntVar(&opts.width, "width", 0, "override the configured width")
	flag.IntVar(&opts.height, "height", 0, "override the configured height")
	flag.Uint64Var(&opts.seed, "seed", 0, "seed for the stars and particles; 0 picks one at random")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("[Main] %v", err)
	}
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.snapshot != "" {
		return runSnapshot(cfg, opts)
	}
	return runWindowed(cfg, opts)
}

// loadConfig reads the config file, or the defaults without one, then applies the size flags.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	if opts.width > 0 {
		cfg.Window.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Window.Height = opts.height
	}
	if opts.frames < 0 {
		return cfg, fmt.Errorf("frames %d: %w", opts.frames, config.ErrInvalid)
	}
	return cfg, cfg.Validate()
}

func newScene(cfg config.Config, seed uint64) scene.Scene {
	if seed == 0 {
		seed = rand.Uint64()
	}
	s := scene.NewScene(scene.WithSeed(seed))
	s.ApplyConfig(cfg.HDR)
	return s
}

func rendererOptions(cfg config.Config) []renderer.RendererBuilderOption {
	mode := renderer.PresentModeVSync
	if cfg.Renderer.Uncapped() {
		mode = renderer.PresentModeUncapped
	}
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceFallbackAdapter),
		renderer.WithSurfaceSize(cfg.Window.Width, cfg.Window.Height),
		renderer.WithSoftwareWorkers(cfg.Renderer.Workers),
	}
}

// runSnapshot simulates the configured number of frames on the CPU backend and saves the
// back buffer.
func runSnapshot(cfg config.Config, opts options) error {
	r := renderer.NewRenderer(renderer.BackendTypeSoftware, nil, rendererOptions(cfg)...)
	defer r.Release()

	s := newScene(cfg, opts.seed)
	defer s.Destroy()

	e := engine.NewEngine(
		engine.WithRenderer(r),
		engine.WithScene(s),
		engine.WithProfiling(cfg.Profiler.Enabled),
	)
	if err := e.RunFrames(max(opts.frames, 1), snapshotStep); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	img, err := r.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := imgio.Save(opts.snapshot, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("snapshot %s: %w", opts.snapshot, err)
	}
	log.Printf("[Main] wrote %s (%dx%d) after %d frames", opts.snapshot, cfg.Window.Width, cfg.Window.Height, r.Frames())
	return nil
}

// runWindowed opens the window on the GPU backend and blocks until it closes.
func runWindowed(cfg config.Config, opts options) error {
	if cfg.Renderer.Software() {
		return errors.New("the software backend has no window surface; use -snapshot")
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := win.Close(); err != nil {
			log.Printf("[Main] window close: %v", err)
		}
	}()

	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win, rendererOptions(cfg)...)
	s := newScene(cfg, opts.seed)
	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithScene(s),
		engine.WithProfiling(cfg.Profiler.Enabled),
	)

	if opts.configPath != "" {
		w, err := config.Watch(opts.configPath, func(next config.Config) {
			s.ApplyConfig(next.HDR)
			if next.Profiler.Enabled {
				e.EnableProfiler()
			} else {
				e.DisableProfiler()
			}
			log.Printf("[Main] reloaded %s", opts.configPath)
		})
		if err != nil {
			log.Printf("[Main] config watch disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	return e.Run()
}
