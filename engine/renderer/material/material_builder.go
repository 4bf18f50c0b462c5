package material

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithAlbedo is an option builder that sets the diffuse RGBA color of the material.
//
// Parameters:
//   - color: the albedo as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo option to a material
func WithAlbedo(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.albedo = color
	}
}

// WithEmissive is an option builder that sets the HDR emissive color of the material.
//
// Parameters:
//   - color: the emissive color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emissive option to a material
func WithEmissive(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = color
	}
}

// WithGlow is an option builder that switches the material to ShadingGlow.
// Glow materials blend additively and do not write depth.
//
// Parameters:
//   - color: the glow shell color
//   - bias: the bias added to N.-L before saturation
//
// Returns:
//   - MaterialBuilderOption: a function that applies the glow option to a material
func WithGlow(color [4]float32, bias float32) MaterialBuilderOption {
	return func(m *material) {
		m.glow = color
		m.glowBias = bias
		m.shading = ShadingGlow
		m.blend = BlendAdditive
		m.depthWrite = false
	}
}

// WithBlend is an option builder that sets the blend mode.
//
// Parameters:
//   - blend: the blend mode
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blend option to a material
func WithBlend(blend BlendMode) MaterialBuilderOption {
	return func(m *material) {
		m.blend = blend
	}
}

// WithDepthWrite is an option builder that sets whether drawing writes depth.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - MaterialBuilderOption: a function that applies the depth write option to a material
func WithDepthWrite(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.depthWrite = enabled
	}
}
