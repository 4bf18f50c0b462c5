package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks a WGSL line comment as a pre-processor annotation.
const annotationPrefix = "//@oxy:"

// AnnotationType identifies what a pre-processor annotation expands to.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct.
	//
	//	//@oxy:include <struct>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration typed with a
	// registered struct.
	//
	//	//@oxy:group <group> <binding> <address space> <variable> <struct>
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is one parsed pre-processor annotation.
type Annotation struct {
	Type AnnotationType

	// Args holds the annotation arguments after the group and binding indices:
	//   - include: [0] = struct
	//   - group: [0] = address space, [1] = variable name, [2] = struct
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group and Binding are set for group annotations only.
	Group   *int
	Binding *int
}

// AnnotationArg is a typed annotation argument: a registered struct key, an address space, or
// a variable name.
type AnnotationArg string

// Registered struct keys. Each names a Go GPU type whose package embeds the matching WGSL.
const (
	// AnnotationArgCamera is CameraUniform from engine/camera.
	AnnotationArgCamera AnnotationArg = "camera"
	// AnnotationArgLight is SceneLight from engine/light.
	AnnotationArgLight AnnotationArg = "light"
	// AnnotationArgVertex is the mesh VertexInput from engine/model.
	AnnotationArgVertex AnnotationArg = "vertex"
	// AnnotationArgModelData is the per-draw ModelData from engine/model.
	AnnotationArgModelData AnnotationArg = "model_data"
	// AnnotationArgMaterial is MaterialUniform from engine/renderer/material.
	AnnotationArgMaterial AnnotationArg = "material"
	// AnnotationArgParticleVertex is ParticleVertex from engine/particle.
	AnnotationArgParticleVertex AnnotationArg = "particle_vertex"
	// AnnotationArgPointVertex is PointVertex from engine/postprocess.
	AnnotationArgPointVertex AnnotationArg = "point_vertex"
	// AnnotationArgParams is the technique Params block from engine/postprocess.
	AnnotationArgParams AnnotationArg = "params"
)

// Address spaces accepted by group annotations.
const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgVertex,
	AnnotationArgModelData,
	AnnotationArgMaterial,
	AnnotationArgParticleVertex,
	AnnotationArgPointVertex,
	AnnotationArgParams,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// parseAnnotation parses one WGSL source line. Lines without the annotation prefix return nil
// and no error.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires five arguments (group, binding, address space, variable, struct)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy group annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy group annotation", lineNum, args[2])
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
