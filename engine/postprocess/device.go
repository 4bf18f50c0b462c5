package postprocess

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/kernel"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

// Format is the pixel format of a render target.
type Format int

const (
	// FormatRGBA8 is the display format of the back buffer.
	FormatRGBA8 Format = iota
	// FormatRGBA16F is the half-float HDR format of every color target in the chain.
	FormatRGBA16F
	// FormatR16F is the single-channel half-float format of the luminance targets.
	FormatR16F
	// FormatR32F is the single-channel fallback when FormatR16F cannot be rendered to.
	FormatR32F
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatR16F:
		return "R16F"
	case FormatR32F:
		return "R32F"
	}
	return "Unknown"
}

// Technique names one full-screen post-process program.
type Technique int

const (
	TechniqueDownScale4x4 Technique = iota
	TechniqueDownScale2x2
	TechniqueSampleAvgLum
	TechniqueResampleAvgLum
	TechniqueResampleAvgLumExp
	TechniqueCalculateAdaptedLum
	TechniqueBrightPassFilter
	TechniqueGaussBlur5x5
	TechniqueBloom
	TechniqueStar
	// TechniqueMergeTextures sums up to 8 inputs, each scaled by its weight.
	TechniqueMergeTextures
	TechniqueFinalScenePass
)

var techniqueNames = [...]string{
	"DownScale4x4",
	"DownScale2x2",
	"SampleAvgLum",
	"ResampleAvgLum",
	"ResampleAvgLumExp",
	"CalculateAdaptedLum",
	"BrightPassFilter",
	"GaussBlur5x5",
	"Bloom",
	"Star",
	"MergeTextures",
	"FinalScenePass",
}

func (t Technique) String() string {
	if t < 0 || int(t) >= len(techniqueNames) {
		return "Unknown"
	}
	return techniqueNames[t]
}

// MaxMergeInputs bounds the number of textures a MergeTextures pass reads.
const MaxMergeInputs = 8

// Texture is a render target owned by a Device.
type Texture interface {
	// Label is the debug name given at creation.
	Label() string
	Width() int
	Height() int
	Format() Format
	// Release frees the device resources. The texture must not be used afterward.
	Release()
}

// TextureDesc describes a render target to create.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Format Format
}

// Capabilities is what a device reports once at creation.
type Capabilities struct {
	// R16F reports whether single-channel half floats are renderable.
	R16F bool
	// Multisample reports whether the scene pass can render to a multisampled float target.
	Multisample bool
}

// Rect is an integer pixel rectangle.
type Rect struct {
	X, Y, W, H int
}

// Inset shrinks the rectangle by n on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// CoordRect is the texture coordinate range sampled across the whole target: (U0, V0) at the
// top-left corner of the target and (U1, V1) at the bottom-right.
type CoordRect struct {
	U0, V0, U1, V1 float32
}

// Params is the technique parameter block for one pass.
type Params struct {
	Offsets     [kernel.MaxSamples][2]float32
	Weights     [kernel.MaxSamples][4]float32
	SampleCount int

	ElapsedTime float32
	MiddleGray  float32
	BloomScale  float32
	StarScale   float32
	ToneMap     bool
	BlueShift   bool
}

// SetSamples copies a 2D kernel into the parameter block.
func (p *Params) SetSamples(s kernel.Samples) {
	p.Offsets = s.Offsets
	p.Weights = s.Weights
	p.SampleCount = s.Count
}

// SetLine copies a 1D kernel into the parameter block, laid out horizontally or vertically.
func (p *Params) SetLine(l kernel.Line, horizontal bool) {
	if horizontal {
		p.SetSamples(l.Horizontal())
	} else {
		p.SetSamples(l.Vertical())
	}
}

// Pass is one full-screen technique draw. The target is covered by a single quad whose texture
// coordinates span Coords; writes are limited to Scissor when it is set.
type Pass struct {
	Technique Technique
	Target    Texture
	Inputs    []Texture
	Coords    CoordRect
	Scissor   *Rect
	Blend     material.BlendMode
	Params    Params
}

// ErrInvalidPass is wrapped by Pass.Validate.
var ErrInvalidPass = errors.New("invalid pass")

// InputRange returns the minimum and maximum number of input textures the technique reads.
func (t Technique) InputRange() (lo, hi int) {
	switch t {
	case TechniqueCalculateAdaptedLum, TechniqueBrightPassFilter:
		return 2, 2
	case TechniqueMergeTextures:
		return 1, MaxMergeInputs
	case TechniqueFinalScenePass:
		return 4, 4
	default:
		return 1, 1
	}
}

// Validate checks that the pass names a known technique, has a target, and carries the inputs
// its technique reads. A pass may not read its own target.
//
// Returns:
//   - error: an error wrapping ErrInvalidPass, or nil
func (p *Pass) Validate() error {
	if p.Technique < 0 || int(p.Technique) >= len(techniqueNames) {
		return fmt.Errorf("technique %d: %w: unknown technique", p.Technique, ErrInvalidPass)
	}
	if p.Target == nil {
		return fmt.Errorf("%s: %w: no target", p.Technique, ErrInvalidPass)
	}
	lo, hi := p.Technique.InputRange()
	if len(p.Inputs) < lo || len(p.Inputs) > hi {
		return fmt.Errorf("%s: %w: %d inputs, want %d..%d", p.Technique, ErrInvalidPass, len(p.Inputs), lo, hi)
	}
	for i, in := range p.Inputs {
		if in == nil {
			return fmt.Errorf("%s: %w: input %d is nil", p.Technique, ErrInvalidPass, i)
		}
		if in == p.Target {
			return fmt.Errorf("%s: %w: input %d is the target", p.Technique, ErrInvalidPass, i)
		}
	}
	if p.Params.SampleCount < 0 || p.Params.SampleCount > kernel.MaxSamples {
		return fmt.Errorf("%s: %w: %d samples", p.Technique, ErrInvalidPass, p.Params.SampleCount)
	}
	return nil
}

// MeshDraw is one mesh drawn by a ScenePass.
type MeshDraw struct {
	Model       model.Model
	ModelMatrix [16]float32
	Material    material.Material
	// ShellOffset pushes vertices along their normal, used by glow shells.
	ShellOffset float32
}

// ParticleBatch is a set of view-space particle quads sharing one sprite. Quads are
// 4-vertex strips, indexed with particle.QuadIndices.
type ParticleBatch struct {
	Sprite   string
	Vertices []particle.Vertex
}

// PointVertex is one world-space point of a point list.
type PointVertex struct {
	Position [3]float32
	Color    [4]float32
}

// ScenePass draws geometry into a target with depth testing. Meshes draw in order, then
// particles (additive, depth write off), then points, which ignore depth.
type ScenePass struct {
	Target     Texture
	Clear      bool
	ClearColor [4]float32
	View       [16]float32
	Projection [16]float32
	Light      light.GPULight
	Meshes     []MeshDraw
	Particles  []ParticleBatch
	Points     []PointVertex
}

// Device is the render device the HDR pipeline and the scene draw through.
type Device interface {
	// Capabilities reports what the device supports.
	Capabilities() Capabilities

	// CreateTexture allocates a render target.
	//
	// Parameters:
	//   - desc: the target description
	//
	// Returns:
	//   - Texture: the new target
	//   - error: error if the device could not allocate it
	CreateTexture(desc TextureDesc) (Texture, error)

	// BackBuffer returns the display target for the current frame.
	BackBuffer() Texture

	// RegisterSprite uploads a particle sprite under a name referenced by ParticleBatch.
	//
	// Parameters:
	//   - name: the sprite name
	//   - data: RGBA8 pixels
	//
	// Returns:
	//   - error: error if the upload fails
	RegisterSprite(name string, data *common.TextureStagingData) error

	// Clear fills a whole target with a color.
	Clear(target Texture, color [4]float32) error

	// Draw runs one technique pass.
	Draw(pass Pass) error

	// DrawScene draws geometry.
	DrawScene(pass ScenePass) error
}
