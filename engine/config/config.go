package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/glare"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("invalid config")

// Config is the demo's settings file. Keys missing from the file keep their Default values.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	HDR      HDR      `toml:"hdr"`
	Profiler Profiler `toml:"profiler"`
}

// Window describes the platform window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Renderer selects the render device and how it presents.
type Renderer struct {
	// Backend is "wgpu" or "software".
	Backend string `toml:"backend"`
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the scene sample count, 1 or 4.
	MSAA int `toml:"msaa"`
	// ForceFallbackAdapter requests the platform's software adapter from the GPU backend.
	ForceFallbackAdapter bool `toml:"force_fallback_adapter"`
	// Workers is the software backend's worker count; 0 picks one per CPU.
	Workers int `toml:"workers"`
}

// HDR holds the post-processing settings. These are the ones re-applied on hot reload.
type HDR struct {
	// Glare is a preset display name, matched case-insensitively.
	Glare     string `toml:"glare"`
	ToneMap   bool   `toml:"tone_map"`
	BlueShift bool   `toml:"blue_shift"`
	// LightIntensity is the sun's exposure step: mantissa 1 + n%9, exponent -4 + n/9.
	LightIntensity int `toml:"light_intensity"`
	// KeyValue is the middle gray the scene is exposed to.
	KeyValue   float32 `toml:"key_value"`
	BloomScale float32 `toml:"bloom_scale"`
	StarScale  float32 `toml:"star_scale"`
}

// Profiler toggles the once-per-second frame statistics log.
type Profiler struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the settings the demo runs with when no file is given.
//
// Returns:
//   - Config: the default settings
func Default() Config {
	return Config{
		Window: Window{Title: "oxy-space", Width: 1280, Height: 720},
		Renderer: Renderer{
			Backend:     "wgpu",
			PresentMode: "vsync",
			MSAA:        4,
		},
		HDR: HDR{
			Glare:          glare.Default.String(),
			ToneMap:        true,
			BlueShift:      true,
			LightIntensity: light.DefaultSunIntensity,
			KeyValue:       0.28,
			BloomScale:     3.0,
			StarScale:      0.5,
		},
	}
}

// Parse decodes TOML on top of the defaults and validates the result. Unknown keys are errors.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the parsed settings
//   - error: a decode error, or an error wrapping ErrInvalid
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a settings file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the parsed settings
//   - error: error if the file cannot be read or parsed
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes the settings as TOML.
//
// Returns:
//   - []byte: the TOML document
//   - error: error if encoding fails
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports every out-of-range setting at once.
//
// Returns:
//   - error: nil, or the joined problems, each wrapping ErrInvalid
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	switch strings.ToLower(c.Renderer.Backend) {
	case "wgpu", "software":
	default:
		bad("renderer backend %q", c.Renderer.Backend)
	}
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "vsync", "uncapped":
	default:
		bad("present mode %q", c.Renderer.PresentMode)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		bad("msaa %d, want 1 or 4", c.Renderer.MSAA)
	}
	if c.Renderer.Workers < 0 {
		bad("workers %d", c.Renderer.Workers)
	}
	if _, err := glare.Parse(c.HDR.Glare); err != nil {
		bad("%v", err)
	}
	if c.HDR.LightIntensity < 0 {
		bad("light intensity %d", c.HDR.LightIntensity)
	}
	if c.HDR.KeyValue <= 0 {
		bad("key value %g", c.HDR.KeyValue)
	}
	if c.HDR.BloomScale < 0 || c.HDR.StarScale < 0 {
		bad("bloom scale %g, star scale %g", c.HDR.BloomScale, c.HDR.StarScale)
	}
	return errors.Join(errs...)
}

// GlareType resolves the glare preset name. Invalid names fall back to the default preset.
//
// Returns:
//   - glare.Type: the preset
func (h HDR) GlareType() glare.Type {
	t, err := glare.Parse(h.Glare)
	if err != nil {
		return glare.Default
	}
	return t
}

// Software reports whether the software backend is selected.
func (r Renderer) Software() bool {
	return strings.EqualFold(r.Backend, "software")
}

// Uncapped reports whether presentation should skip vsync.
func (r Renderer) Uncapped() bool {
	return strings.EqualFold(r.PresentMode, "uncapped")
}
