package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshShader(t *testing.T) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(shader.KeyMesh)
	require.NoError(t, err)
	return s
}

func TestNewPipeline_Defaults(t *testing.T) {
	s := meshShader(t)
	p := NewPipeline("mesh", s)

	assert.Equal(t, "mesh", p.PipelineKey())
	assert.Equal(t, "fs_lit", p.FragmentEntry())
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, p.Format())
	assert.Equal(t, uint32(1), p.SampleCount())
	assert.False(t, p.DepthAttachment())
	assert.Equal(t, material.BlendOpaque, p.Blend())
	assert.Nil(t, p.BlendState())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Nil(t, p.Pipeline())
	assert.Nil(t, p.BindGroupLayout(0))
}

func TestDescriptor_MeshState(t *testing.T) {
	p := NewPipeline("mesh/glow", meshShader(t),
		WithFragmentEntry("fs_glow"),
		WithFormat(wgpu.TextureFormatBGRA8Unorm),
		WithSampleCount(4),
		WithDepth(true, false),
		WithBlend(material.BlendAdditive),
		WithCullMode(wgpu.CullModeBack),
	)

	desc := p.Descriptor(nil, nil)
	assert.Equal(t, "mesh/glow", desc.Label)
	assert.Equal(t, "vs_mesh", desc.Vertex.EntryPoint)
	require.Len(t, desc.Vertex.Buffers, 1)
	assert.Equal(t, uint64(48), desc.Vertex.Buffers[0].ArrayStride)

	require.NotNil(t, desc.Fragment)
	assert.Equal(t, "fs_glow", desc.Fragment.EntryPoint)
	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, desc.Fragment.Targets[0].Format)
	require.NotNil(t, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, desc.Fragment.Targets[0].Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, desc.Fragment.Targets[0].Blend.Color.DstFactor)

	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, uint32(4), desc.Multisample.Count)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, DepthFormat, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
}

func TestDescriptor_DepthWithoutTest(t *testing.T) {
	p := NewPipeline("points", meshShader(t), WithDepth(false, false), WithSampleCount(0))
	desc := p.Descriptor(nil, nil)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.CompareFunctionAlways, desc.DepthStencil.DepthCompare)
	assert.Equal(t, uint32(1), p.SampleCount())
}

func TestDescriptor_NoDepth(t *testing.T) {
	p := NewPipeline("technique", meshShader(t))
	assert.Nil(t, p.Descriptor(nil, nil).DepthStencil)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "fs_final/23/1", Key("fs_final", 23, material.BlendAdditive))
	assert.Equal(t, "", Key())
}

func TestBlendStateFor(t *testing.T) {
	assert.Nil(t, BlendStateFor(material.BlendOpaque))

	b := BlendStateFor(material.BlendAdditive)
	require.NotNil(t, b)
	assert.Equal(t, wgpu.BlendFactorOne, b.Alpha.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, b.Alpha.DstFactor)
	assert.Equal(t, wgpu.BlendOperationAdd, b.Alpha.Operation)
}
