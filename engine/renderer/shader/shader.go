package shader

import (
	"embed"
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/*.wgsl
var assets embed.FS

// Keys of the shaders shipped with the engine.
const (
	// KeyTechnique holds every full-screen post-process technique.
	KeyTechnique = "technique"
	// KeyMesh holds the lit and glow mesh shading.
	KeyMesh = "mesh"
	// KeyParticle holds the particle sprite shading.
	KeyParticle = "particle"
	// KeyPoints holds the point list shading.
	KeyPoints = "points"
)

// shader holds a pre-processed WGSL module and the layout data parsed from it.
type shader struct {
	key    string
	source string

	vertexEntry     string
	fragmentEntries []string
	vertexLayouts   []wgpu.VertexBufferLayout
	bindGroups      []wgpu.BindGroupLayoutDescriptor
	bindingVarNames map[int]map[int]string
	declarations    []Annotation
	module          *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a parsed WGSL module with one vertex entry point and one or more fragment entry
// points. Pipelines pick the fragment entry they run.
type Shader interface {
	// Key returns the unique identifier of this shader.
	Key() string

	// Source returns the pre-processed WGSL source.
	Source() string

	// Module returns the shader module descriptor for device creation.
	Module() *wgpu.ShaderModuleDescriptor

	// VertexEntry returns the name of the @vertex function.
	VertexEntry() string

	// FragmentEntries returns the names of every @fragment function, in source order.
	FragmentEntries() []string

	// HasFragmentEntry reports whether the module declares the fragment entry point.
	//
	// Parameters:
	//   - name: the function name
	//
	// Returns:
	//   - bool: true if the function is a @fragment entry point
	HasFragmentEntry(name string) bool

	// VertexLayouts returns the vertex buffer layouts of the vertex entry point's input struct.
	// Entry points that only read builtins return none.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns one descriptor per bind group, indexed by group. Entries
	// are visible to both the vertex and fragment stages.
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable bound at (group, binding).
	//
	// Parameters:
	//   - group: the @group index
	//   - binding: the @binding index
	//
	// Returns:
	//   - string: the variable name, or empty if nothing is bound there
	BindGroupVarName(group, binding int) string

	// Declarations returns the @oxy:group annotations the source was expanded from.
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader loads, pre-processes and parses a WGSL module. The source defaults to the engine's
// embedded asset named after the key; WithSource replaces it.
//
// Parameters:
//   - key: the shader key, and the embedded asset name without extension
//   - options: functional options applied before loading
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the source is missing, an annotation is malformed, or the module has no
//     vertex or fragment entry point
func NewShader(key string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key: key,
		pp:  NewPreProcessor(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.source == "" {
		data, err := assets.ReadFile("assets/" + key + ".wgsl")
		if err != nil {
			return nil, fmt.Errorf("shader %q: %w", key, err)
		}
		s.source = string(data)
	}
	if err := s.parseSource(); err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) VertexEntry() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntries() []string {
	return s.fragmentEntries
}

func (s *shader) HasFragmentEntry(name string) bool {
	return slices.Contains(s.fragmentEntries, name)
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return s.bindGroups
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

// parseSource expands annotations, then extracts entry points and layouts.
func (s *shader) parseSource() error {
	processed, err := s.pp.Process(s.source)
	if err != nil {
		return err
	}
	s.source = processed
	s.declarations = slices.Clone(s.pp.Declarations())

	vertex := parseEntryPoints(s.source, stageVertex)
	if len(vertex) == 0 {
		return fmt.Errorf("no @vertex entry point")
	}
	s.vertexEntry = vertex[0]
	s.fragmentEntries = parseEntryPoints(s.source, stageFragment)
	if len(s.fragmentEntries) == 0 {
		return fmt.Errorf("no @fragment entry point")
	}

	if s.vertexLayouts, err = parseVertexLayouts(s.source, s.vertexEntry); err != nil {
		return err
	}
	s.bindGroups, s.bindingVarNames = parseBindGroupLayouts(s.source, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return nil
}
