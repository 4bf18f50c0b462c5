package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL vertex attribute types to their vertex format and byte size.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

// wgslSampledTextureMap maps WGSL sampled texture types to their view dimension.
var wgslSampledTextureMap = map[string]sampledTextureInfo{
	"texture_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":        {wgpu.TextureViewDimension2DArray, false},
	"texture_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_multisampled_2d": {wgpu.TextureViewDimension2D, true},
	"texture_depth_2d":        {wgpu.TextureViewDimension2D, false},
}

// wgslSampleTypeMap maps a texture's scalar parameter to its sample type.
var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var (
	// structBlockRegex captures the name and body of a struct declaration.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex captures the name and type of a struct field or function parameter after any
	// attributes. The type is greedy to keep parameterized types such as array<T, N> whole.
	fieldRegex = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, address space, variable name and type of
	// declarations such as "@group(0) @binding(0) var<uniform> params: Params;".
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoints returns the names of every entry point of a stage, in source order.
//
// Parameters:
//   - source: WGSL source
//   - stage: the pipeline stage
//
// Returns:
//   - []string: the entry point names
func parseEntryPoints(source string, stage shaderStage) []string {
	re := vertexEntryRegex
	if stage == stageFragment {
		re = fragmentEntryRegex
	}
	var names []string
	for _, m := range re.FindAllStringSubmatch(stripComments(source), -1) {
		names = append(names, m[1])
	}
	return names
}

// parseVertexLayouts builds one vertex buffer layout per struct parameter of the entry point.
// Each struct becomes its own buffer slot in parameter order; builtin parameters take no slot.
//
// Parameters:
//   - source: WGSL source
//   - entry: the @vertex function name
//
// Returns:
//   - []wgpu.VertexBufferLayout: the layouts, indexed by buffer slot
//   - error: an error if a parameter is not a vertex input struct the parser can lay out
func parseVertexLayouts(source, entry string) ([]wgpu.VertexBufferLayout, error) {
	cleaned := stripComments(source)
	params, ok := functionParams(cleaned, entry)
	if !ok {
		return nil, fmt.Errorf("vertex entry point %q not found", entry)
	}
	structs := parseStructBlocks(cleaned)

	var layouts []wgpu.VertexBufferLayout
	for _, param := range splitAtTopLevelCommas(params) {
		param = strings.TrimSpace(param)
		if param == "" || builtinRegex.MatchString(param) {
			continue
		}
		m := fieldRegex.FindStringSubmatch(param)
		if m == nil {
			return nil, fmt.Errorf("vertex entry point %q: cannot parse parameter %q", entry, param)
		}
		typeName := strings.TrimSpace(m[2])
		i := slices.IndexFunc(structs, func(ps parsedStruct) bool { return ps.name == typeName })
		if i < 0 || !isVertexInputStruct(structs[i]) {
			return nil, fmt.Errorf("vertex entry point %q: parameter type %q is not a vertex input struct", entry, typeName)
		}
		layout, ok := buildVertexBufferLayout(structs[i])
		if !ok {
			return nil, fmt.Errorf("vertex entry point %q: struct %q has a field with no vertex format", entry, typeName)
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

// parseBindGroupLayouts builds bind group layout descriptors from every @group/@binding
// declaration. Entries are sorted by binding, and buffer entries carry the minimum binding size
// of their struct. A group that declares no sampler only reads its textures with textureLoad,
// so its float textures are declared unfilterable, which lets 32-bit float targets bind there.
//
// Parameters:
//   - source: WGSL source
//   - visibility: the stages every entry is visible to
//
// Returns:
//   - []wgpu.BindGroupLayoutDescriptor: descriptors indexed by group; gaps hold empty descriptors
//   - map[int]map[int]string: variable names keyed by group and binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) ([]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	maxGroup := -1
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		addressSpace := strings.TrimSpace(m[3])
		typeName := strings.TrimSpace(m[5])

		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
				entry.Buffer.MinBindingSize = layout.size
			}
		}
		groups[group] = append(groups[group], entry)

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = strings.TrimSpace(m[4])
		maxGroup = max(maxGroup, group)
	}

	result := make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1)
	for g, entries := range groups {
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		hasSampler := slices.ContainsFunc(entries, func(e wgpu.BindGroupLayoutEntry) bool {
			return e.Sampler.Type != wgpu.SamplerBindingTypeUndefined
		})
		if !hasSampler {
			for i := range entries {
				if entries[i].Texture.SampleType == wgpu.TextureSampleTypeFloat {
					entries[i].Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
				}
			}
		}
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, varNames
}

// parseStructBlocks finds every struct declaration in comment-free source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

// parseStructFields parses a struct body into fields with their @location and @builtin
// attributes. Fields without @location get location -1.
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if lm := locationRegex.FindStringSubmatch(part); lm != nil {
			field.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, field)
	}
	return fields
}
