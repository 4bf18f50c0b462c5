// pre_processor.go implements the WGSL pre-processor. It replaces @oxy: annotations with the
// WGSL of registered GPU structs, or with generated binding declarations, and records the
// declarations so callers can see which struct each binding carries.
//
// The struct registry maps AnnotationArg keys to the WGSL embedded by each GPU type's package,
// so the Go layout and the WGSL layout live side by side.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

// registryEntry pairs a struct's WGSL source with its WGSL type name.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations holds the group annotations of the last Process call.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source.
type PreProcessor interface {
	// Process replaces every annotation line. Include annotations expand to the struct source
	// once per struct; repeated includes of the same struct expand to nothing. Group annotations
	// expand to a @group/@binding declaration.
	//
	// Parameters:
	//   - source: WGSL source with annotations
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if an annotation is malformed
	Process(source string) (string, error)

	// Declarations returns the group annotations found by the last Process call, in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every GPU struct of the engine registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:         {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLight:          {Source: light.GPULightSource, Type: "SceneLight"},
			AnnotationArgVertex:         {Source: model.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgModelData:      {Source: model.GPUModelDataSource, Type: "ModelData"},
			AnnotationArgMaterial:       {Source: material.GPUMaterialSource, Type: "MaterialUniform"},
			AnnotationArgParticleVertex: {Source: particle.GPUVertexSource, Type: "ParticleVertex"},
			AnnotationArgPointVertex:    {Source: postprocess.GPUPointVertexSource, Type: "PointVertex"},
			AnnotationArgParams:         {Source: postprocess.GPUParamsSource, Type: "Params"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", a.Line, a.Args[0])
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(entry.Source, "\n"))

		case AnnotationTypeBindingGroup:
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:group struct %q", a.Line, a.Args[2])
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
