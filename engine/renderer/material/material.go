package material

// BlendMode selects how a material's fragments combine with the render target.
type BlendMode int

const (
	// BlendOpaque replaces the destination color.
	BlendOpaque BlendMode = iota
	// BlendAdditive adds the source color weighted by its alpha (src-alpha, one).
	BlendAdditive
)

// Shading selects the lighting model evaluated for a material.
type Shading int

const (
	// ShadingLit is emissive + albedo * (ambient + max(0, N.-L)).
	ShadingLit Shading = iota
	// ShadingGlow is the atmosphere shell model: glow * saturate(N.-L + bias) * (1 - |N.V|).
	ShadingGlow
)

// material is the implementation of the Material interface.
type material struct {
	name       string
	albedo     [4]float32
	emissive   [4]float32
	glow       [4]float32
	glowBias   float32
	shading    Shading
	blend      BlendMode
	depthWrite bool
}

// Material defines the surface description consumed by the render device when drawing a mesh.
//
// Surface properties are fixed at construction except for the emissive color,
// which the HDR sun updates whenever the light intensity changes.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Albedo retrieves the diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the albedo as RGBA values
	Albedo() [4]float32

	// Emissive retrieves the HDR emissive color added after lighting.
	//
	// Returns:
	//   - [4]float32: the emissive color, unbounded
	Emissive() [4]float32

	// Glow retrieves the glow shell color used by ShadingGlow.
	//
	// Returns:
	//   - [4]float32: the glow color
	Glow() [4]float32

	// GlowBias retrieves the bias added to N.-L before saturation in ShadingGlow.
	//
	// Returns:
	//   - float32: the glow bias
	GlowBias() float32

	// Shading retrieves the lighting model.
	//
	// Returns:
	//   - Shading: the lighting model
	Shading() Shading

	// Blend retrieves the blend mode.
	//
	// Returns:
	//   - BlendMode: the blend mode
	Blend() BlendMode

	// DepthWrite reports whether drawing with this material writes depth.
	//
	// Returns:
	//   - bool: true if depth is written
	DepthWrite() bool

	// SetEmissive replaces the emissive color.
	//
	// Parameters:
	//   - emissive: the new emissive color
	SetEmissive(emissive [4]float32)
}

var _ Material = &material{}

// NewMaterial creates a new Material configured with the given options.
// Defaults to an opaque, lit, depth-writing white surface.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the newly created material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		albedo:     [4]float32{1, 1, 1, 1},
		depthWrite: true,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Albedo() [4]float32 {
	return m.albedo
}

func (m *material) Emissive() [4]float32 {
	return m.emissive
}

func (m *material) Glow() [4]float32 {
	return m.glow
}

func (m *material) GlowBias() float32 {
	return m.glowBias
}

func (m *material) Shading() Shading {
	return m.shading
}

func (m *material) Blend() BlendMode {
	return m.blend
}

func (m *material) DepthWrite() bool {
	return m.depthWrite
}

func (m *material) SetEmissive(emissive [4]float32) {
	m.emissive = emissive
}
