package postprocess

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/glare"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

// EmissiveCoefficient converts the sun's illuminance into the radiance its sphere is drawn with:
// a light of 80 lum/sr is drawn at 3183 lum/m²/sr.
const EmissiveCoefficient = 39.78

const sunSphereScale = 0.05

// sceneAmbient keeps the night side of the bodies from going fully black.
const sceneAmbient = 0.02

// ErrNotReady is returned by Render when the device or the target chain is missing.
var ErrNotReady = errors.New("hdr pipeline is not ready")

// SceneDrawer appends the scene's geometry to the HDR scene pass.
type SceneDrawer func(pass *ScenePass)

type hdr struct {
	mu sync.Mutex

	dev       Device
	caps      Capabilities
	lumFormat Format
	t         *targets

	sun         *light.Sun
	sunlight    light.Light
	sunStep     int
	sunRadius   float32
	sunStacks   int
	sunSlices   int
	sunSphere   model.Model
	sunMaterial material.Material

	glareType  glare.Type
	glareDef   glare.Def
	toneMap    bool
	blueShift  bool
	keyValue   float32
	bloomScale float32
	starScale  float32
	elapsed    float32 // seconds since the last adaptation pass
}

// HDR owns the render target chain and runs the post-process passes that turn the HDR scene
// into the tone-mapped back buffer with bloom and star glare.
type HDR interface {
	// Create binds the device and builds the size-independent resources.
	//
	// Parameters:
	//   - dev: the render device
	//
	// Returns:
	//   - error: error if the sun's resources cannot be built
	Create(dev Device) error

	// Reset (re)allocates every size-dependent target for a back buffer size. On failure the
	// pipeline is left without targets and Render returns ErrNotReady.
	//
	// Parameters:
	//   - width, height: back buffer size
	//
	// Returns:
	//   - error: the wrapped target creation error
	Reset(width, height int) error

	// Lost releases every size-dependent target.
	Lost()

	// Destroy releases everything and unbinds the device.
	Destroy()

	// Update adds the frame time to the time pending adaptation and marks the adaptation as
	// due. It is not called while the scene is paused, which freezes the exposure.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// Render runs the full pass chain into the device back buffer.
	//
	// Parameters:
	//   - view: world-to-view matrix
	//   - projection: view-to-clip matrix
	//   - draw: appends the scene's meshes and particles to the scene pass, may be nil
	//
	// Returns:
	//   - error: ErrNotReady when there is nothing to render with
	Render(view, projection [16]float32, draw SceneDrawer) error

	// AdjustLight steps the sun intensity one mantissa up or down.
	//
	// Returns:
	//   - bool: true if the intensity changed
	AdjustLight(increment bool) bool

	// SetLightStep jumps the sun to an exposure step.
	SetLightStep(step int)

	// SetGlare switches the glare preset. Unknown types are ignored.
	//
	// Returns:
	//   - bool: true if the preset was applied
	SetGlare(t glare.Type) bool

	// Glare returns the active glare preset.
	Glare() glare.Type

	SetToneMap(enabled bool)
	ToneMap() bool
	SetBlueShift(enabled bool)
	BlueShift() bool

	// SetKeyValue sets the middle gray the scene is exposed to.
	SetKeyValue(key float32)
	KeyValue() float32

	// SetScales sets how strongly bloom and star glare are added in the final pass.
	SetScales(bloom, star float32)
	Scales() (bloom, star float32)

	// LightIntensity returns the sun's current intensity.
	LightIntensity() float32

	// LightPosition returns the sun's world-space position.
	LightPosition() [3]float32

	// AdaptedLuminance returns the generation of the current adaptation slot; it advances
	// by one each time the adaptation runs.
	AdaptedLuminance() int

	// Ready reports whether Render can run.
	Ready() bool
}

var _ HDR = &hdr{}

// NewHDR creates the HDR pipeline configured with the given options.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - HDR: the pipeline, not yet bound to a device
func NewHDR(options ...HDRBuilderOption) HDR {
	h := &hdr{
		sunStep:    light.DefaultSunIntensity,
		sunRadius:  80,
		sunStacks:  32,
		sunSlices:  20,
		glareType:  glare.Default,
		toneMap:    true,
		blueShift:  true,
		keyValue:   0.28,
		bloomScale: 3.0,
		starScale:  0.5,
	}
	for _, option := range options {
		option(h)
	}
	h.glareDef = glare.Lookup(h.glareType)
	h.sun = light.NewSun(h.sunStep)
	h.sunlight = h.sun.Sunlight(light.WithAmbient(sceneAmbient))
	return h
}

func (h *hdr) Create(dev Device) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if dev == nil {
		return fmt.Errorf("hdr: %w", ErrNotReady)
	}
	h.dev = dev
	h.caps = dev.Capabilities()
	h.lumFormat = FormatR16F
	if !h.caps.R16F {
		h.lumFormat = FormatR32F
		log.Printf("[HDR] R16F render targets unsupported, luminance uses %s", h.lumFormat)
	}
	if !h.caps.Multisample {
		log.Printf("[HDR] multisampled float targets unsupported, scene renders without MSAA")
	}

	h.sunSphere = model.NewSphere("sun", h.sunRadius, h.sunStacks, h.sunSlices, [4]float32{1, 1, 1, 1})
	h.sunMaterial = material.NewMaterial(material.WithName("sun"), material.WithAlbedo([4]float32{}))
	h.refreshSun()
	return nil
}

func (h *hdr) Reset(width, height int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dev == nil {
		return fmt.Errorf("reset before create: %w", ErrNotReady)
	}
	if h.t != nil {
		h.t.release()
		h.t = nil
	}

	t, err := createTargets(h.dev, width, height, h.lumFormat)
	if err != nil {
		return fmt.Errorf("hdr reset %dx%d: %w", width, height, err)
	}
	if err := t.clearBorders(h.dev); err != nil {
		t.release()
		return fmt.Errorf("hdr reset %dx%d: %w", width, height, err)
	}
	h.t = t
	return nil
}

func (h *hdr) Lost() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.t != nil {
		h.t.release()
		h.t = nil
	}
}

func (h *hdr) Destroy() {
	h.Lost()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dev = nil
	h.sunSphere = nil
}

func (h *hdr) Update(dt float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.elapsed += dt
	if h.t != nil {
		h.t.adaptation.Invalidate()
	}
}

func (h *hdr) Render(view, projection [16]float32, draw SceneDrawer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dev == nil || h.t == nil {
		return ErrNotReady
	}

	h.renderScene(view, projection, draw)
	h.sceneToSceneScaled()
	if h.toneMap {
		h.measureLuminance()
	}
	if h.t.adaptation.Consume() {
		h.calculateAdaptation()
	}
	h.sceneScaledToBrightPass()
	h.brightPassToStarSource()
	h.starSourceToBloomSource()
	h.renderBloom()
	h.renderStar()
	h.finalScenePass()
	return nil
}

func (h *hdr) AdjustLight(increment bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	changed := h.sun.Adjust(increment)
	if changed {
		h.refreshSun()
	}
	return changed
}

func (h *hdr) SetLightStep(step int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sun.SetStep(step)
	h.refreshSun()
}

func (h *hdr) SetGlare(t glare.Type) bool {
	if !t.Valid() {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.glareType = t
	h.glareDef = glare.Lookup(t)
	return true
}

func (h *hdr) Glare() glare.Type {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.glareType
}

func (h *hdr) SetToneMap(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toneMap = enabled
}

func (h *hdr) ToneMap() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.toneMap
}

func (h *hdr) SetBlueShift(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.blueShift = enabled
}

func (h *hdr) BlueShift() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.blueShift
}

func (h *hdr) SetKeyValue(key float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keyValue = key
}

func (h *hdr) KeyValue() float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.keyValue
}

func (h *hdr) SetScales(bloom, star float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bloomScale = bloom
	h.starScale = star
}

func (h *hdr) Scales() (bloom, star float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bloomScale, h.starScale
}

func (h *hdr) LightIntensity() float32 {
	return h.sun.Intensity()
}

func (h *hdr) LightPosition() [3]float32 {
	return h.sun.Position()
}

func (h *hdr) AdaptedLuminance() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.t == nil {
		return 0
	}
	return h.t.adaptation.Generation()
}

func (h *hdr) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dev != nil && h.t != nil
}

// refreshSun pushes the sun intensity into the sphere's emissive color.
func (h *hdr) refreshSun() {
	if h.sunMaterial == nil {
		return
	}
	i := h.sun.Intensity() * EmissiveCoefficient
	h.sunMaterial.SetEmissive([4]float32{i, i, i, EmissiveCoefficient})
}

// sunDraw places the sun sphere at the light position.
func (h *hdr) sunDraw() MeshDraw {
	var m [16]float32
	s := float32(sunSphereScale)
	common.BuildModelMatrix(m[:], h.sun.Position(), [3]float32{}, [3]float32{s, s, s})
	return MeshDraw{Model: h.sunSphere, ModelMatrix: m, Material: h.sunMaterial}
}

// sunLight is the uniform block of the light the bodies are shaded with.
func (h *hdr) sunLight() light.GPULight {
	return light.ToGPULight(h.sunlight)
}
