package shader

// ShaderBuilderOption is a functional option applied to a shader before it is loaded.
type ShaderBuilderOption func(*shader)

// WithSource supplies the WGSL source instead of reading the embedded asset.
//
// Parameters:
//   - source: WGSL source, annotations allowed
//
// Returns:
//   - ShaderBuilderOption: a function that sets the source
func WithSource(source string) ShaderBuilderOption {
	return func(s *shader) {
		s.source = source
	}
}

// WithPreProcessor replaces the default pre-processor.
//
// Parameters:
//   - pp: the pre-processor to expand annotations with
//
// Returns:
//   - ShaderBuilderOption: a function that sets the pre-processor
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		if pp != nil {
			s.pp = pp
		}
	}
}
