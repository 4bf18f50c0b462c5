package pipeline

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the depth attachment format of every scene pass.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// pipeline is the implementation of the Pipeline interface. It carries the render state used to
// build a render pipeline and, once registered, the created GPU objects.
type pipeline struct {
	pipelineKey   string
	shader        shader.Shader
	fragmentEntry string

	format      wgpu.TextureFormat
	sampleCount uint32

	depthAttachment   bool
	depthTestEnabled  bool
	depthWriteEnabled bool
	blend             material.BlendMode
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask

	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout
}

// Pipeline describes one render pipeline: a shader with a chosen fragment entry point, the
// color target it writes, and its depth, blend and rasterization state.
type Pipeline interface {
	// PipelineKey returns the unique key of this pipeline, used for caching.
	PipelineKey() string

	// Shader returns the shader module the pipeline runs.
	Shader() shader.Shader

	// FragmentEntry returns the fragment entry point.
	FragmentEntry() string

	// Format returns the color target format.
	Format() wgpu.TextureFormat

	// SampleCount returns the multisample count of the color and depth attachments.
	SampleCount() uint32

	// DepthAttachment reports whether the pipeline renders with a depth attachment.
	DepthAttachment() bool

	// DepthTestEnabled reports whether fragments are tested against the depth buffer. Without a
	// test the compare function is Always.
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write depth.
	DepthWriteEnabled() bool

	// Blend returns the blend mode of the color target.
	Blend() material.BlendMode

	// BlendState returns the wgpu blend state for Blend, or nil for opaque writes.
	BlendState() *wgpu.BlendState

	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask

	// Descriptor builds the render pipeline descriptor from the pipeline state.
	//
	// Parameters:
	//   - layout: the pipeline layout
	//   - module: the compiled shader module
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor to create the pipeline with
	Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor

	// Pipeline returns the created render pipeline, or nil before registration.
	Pipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the created render pipeline.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// BindGroupLayout returns the layout created for a bind group, or nil.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// SetBindGroupLayouts stores the layouts created for the shader's bind groups.
	SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout)

	// Release frees the created GPU objects.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates the description of a render pipeline. The defaults are an opaque,
// single-sampled RGBA16Float target without depth, no culling, triangle lists and
// counter-clockwise front faces.
//
// Parameters:
//   - pipelineKey: the unique key of the pipeline
//   - s: the shader the pipeline runs
//   - opts: functional options configuring the pipeline
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey string, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		shader:      s,
		format:      wgpu.TextureFormatRGBA16Float,
		sampleCount: 1,
		cullMode:    wgpu.CullModeNone,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
	}
	if s != nil && len(s.FragmentEntries()) > 0 {
		p.fragmentEntry = s.FragmentEntries()[0]
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key joins the parts that distinguish one pipeline from another into a cache key.
//
// Parameters:
//   - parts: values that select the pipeline state
//
// Returns:
//   - string: the parts joined with "/"
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, part := range parts {
		s[i] = fmt.Sprint(part)
	}
	return strings.Join(s, "/")
}

// BlendStateFor maps a material blend mode to its wgpu blend state. Additive blending adds
// src·srcAlpha to the color and srcAlpha to the alpha already in the target.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - *wgpu.BlendState: the blend state, or nil for opaque writes
func BlendStateFor(mode material.BlendMode) *wgpu.BlendState {
	if mode != material.BlendAdditive {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) FragmentEntry() string {
	return p.fragmentEntry
}

func (p *pipeline) Format() wgpu.TextureFormat {
	return p.format
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) DepthAttachment() bool {
	return p.depthAttachment
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) Blend() material.BlendMode {
	return p.blend
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return BlendStateFor(p.blend)
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor {
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.shader.VertexEntry(),
			Buffers:    p.shader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.fragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    p.format,
				Blend:     p.BlendState(),
				WriteMask: p.writeMask,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if p.depthAttachment {
		compare := wgpu.CompareFunctionLess
		if !p.depthTestEnabled {
			compare = wgpu.CompareFunctionAlways
		}
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      compare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}
	return desc
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout) {
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}
