package renderer

import (
	"errors"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// uniformAlign is the minimum uniform buffer offset alignment of the default limits.
	uniformAlign = 256

	// sceneLightOffset is where the light block follows the camera block in the scene buffer.
	sceneLightOffset = uniformAlign

	// drawStride is the per-mesh block of the draw buffer: model data at 0, material at 256.
	drawStride = 2 * uniformAlign
)

// techniqueEntries maps each technique to the fragment entry point that evaluates it.
var techniqueEntries = map[postprocess.Technique]string{
	postprocess.TechniqueDownScale4x4:        "fs_average",
	postprocess.TechniqueDownScale2x2:        "fs_average",
	postprocess.TechniqueResampleAvgLum:      "fs_average",
	postprocess.TechniqueResampleAvgLumExp:   "fs_average_exp",
	postprocess.TechniqueSampleAvgLum:        "fs_sample_avg_lum",
	postprocess.TechniqueCalculateAdaptedLum: "fs_adapted_lum",
	postprocess.TechniqueBrightPassFilter:    "fs_bright_pass",
	postprocess.TechniqueGaussBlur5x5:        "fs_weighted_sum",
	postprocess.TechniqueBloom:               "fs_weighted_sum",
	postprocess.TechniqueStar:                "fs_weighted_sum",
	postprocess.TechniqueMergeTextures:       "fs_merge",
	postprocess.TechniqueFinalScenePass:      "fs_final",
}

// meshBuffers are the uploaded vertex and index buffers of one model.
type meshBuffers struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
}

type wgpuRendererBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount

	back         *wgpuTexture
	frameSurface *wgpu.Texture

	shaders   map[string]shader.Shader
	modules   map[string]*wgpu.ShaderModule
	pipelines map[string]pipeline.Pipeline

	paramsBuffer *wgpu.Buffer
	sceneBuffer  *wgpu.Buffer
	drawBuffer   *wgpu.Buffer
	drawCapacity uint64

	dummy         *wgpu.Texture
	dummyView     *wgpu.TextureView
	spriteSampler *wgpu.Sampler

	sprites map[string]*wgpuTexture
	meshes  map[model.Model]*meshBuffers
	live    map[*wgpuTexture]struct{}

	// transient holds per-frame bind groups and buffers, freed by EndFrame.
	transientGroups  []*wgpu.BindGroup
	transientBuffers []*wgpu.Buffer

	msaaWarned bool
}

var _ RendererBackend = &wgpuRendererBackend{}

// newWGPURendererBackend creates the GPU device for a window surface. GPU initialization
// failures panic.
//
// Parameters:
//   - surfaceDescriptor: the platform surface of the window
//   - forceFallbackAdapter: whether to request the CPU fallback adapter
//   - sampleCount: the scene pass sample count
//
// Returns:
//   - *wgpuRendererBackend: the backend, with its shaders parsed and shared buffers created
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) *wgpuRendererBackend {
	runtime.LockOSThread()
	b := &wgpuRendererBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: max(sampleCount, MSAAOff),
		shaders:     make(map[string]shader.Shader),
		modules:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]pipeline.Pipeline),
		sprites:     make(map[string]*wgpuTexture),
		meshes:      make(map[model.Model]*meshBuffers),
		live:        make(map[*wgpuTexture]struct{}),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	for _, key := range []string{shader.KeyTechnique, shader.KeyMesh, shader.KeyParticle, shader.KeyPoints} {
		s, err := shader.NewShader(key)
		if err != nil {
			panic(err)
		}
		b.shaders[key] = s
	}
	if err := b.createSharedResources(); err != nil {
		panic(err)
	}
	b.back = &wgpuTexture{owner: b, label: "back_buffer", format: postprocess.FormatRGBA8}
	return b
}

// createSharedResources creates the uniform buffers, the placeholder input texture and the
// sprite sampler used by every frame.
func (b *wgpuRendererBackend) createSharedResources() error {
	var err error
	params := postprocess.GPUParams{}
	if b.paramsBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Params Buffer",
		Size:  uint64(params.Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	}); err != nil {
		return fmt.Errorf("params buffer: %w", err)
	}
	if b.sceneBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Scene Buffer",
		Size:  2 * uniformAlign,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	}); err != nil {
		return fmt.Errorf("scene buffer: %w", err)
	}
	if err = b.ensureDrawBuffer(16 * drawStride); err != nil {
		return err
	}

	if b.dummy, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Unused Input",
		Size:          wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA16Float,
		Usage:         wgpu.TextureUsageTextureBinding,
	}); err != nil {
		return fmt.Errorf("placeholder texture: %w", err)
	}
	if b.dummyView, err = b.dummy.CreateView(nil); err != nil {
		return fmt.Errorf("placeholder view: %w", err)
	}

	if b.spriteSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Sprite Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}); err != nil {
		return fmt.Errorf("sprite sampler: %w", err)
	}
	return nil
}

// ensureDrawBuffer grows the per-mesh uniform buffer to at least size bytes.
func (b *wgpuRendererBackend) ensureDrawBuffer(size uint64) error {
	if size <= b.drawCapacity {
		return nil
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Draw Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("draw buffer: %w", err)
	}
	if b.drawBuffer != nil {
		b.transientBuffers = append(b.transientBuffers, b.drawBuffer)
	}
	b.drawBuffer, b.drawCapacity = buf, size
	return nil
}

func (b *wgpuRendererBackend) Capabilities() postprocess.Capabilities {
	return postprocess.Capabilities{R16F: true, Multisample: b.sampleCount > MSAAOff}
}

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			b.surfaceFormat = f
			break
		}
	}

	width, height = max(width, 1), max(height, 1)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.back.width, b.back.height = width, height
	b.back.wgpuFormat = b.surfaceFormat
	b.back.releaseSceneAttachments()
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackend) CreateTexture(desc postprocess.TextureDesc) (postprocess.Texture, error) {
	format, ok := wgpuFormats[desc.Format]
	if !ok {
		return nil, fmt.Errorf("texture %q: unsupported format %s", desc.Label, desc.Format)
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          wgpu.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage: wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %q view: %w", desc.Label, err)
	}

	t := &wgpuTexture{
		owner:      b,
		label:      desc.Label,
		width:      desc.Width,
		height:     desc.Height,
		format:     desc.Format,
		wgpuFormat: format,
		texture:    tex,
		view:       view,
	}
	b.live[t] = struct{}{}
	return t, nil
}

func (b *wgpuRendererBackend) BackBuffer() postprocess.Texture {
	return b.back
}

func (b *wgpuRendererBackend) RegisterSprite(name string, data *common.TextureStagingData) error {
	if data == nil || data.Width == 0 || data.Height == 0 {
		return fmt.Errorf("sprite %q: empty image", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	size := wgpu.Extent3D{Width: data.Width, Height: data.Height, DepthOrArrayLayers: 1}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         name,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("sprite %q: %w", name, err)
	}
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: tex, Aspect: wgpu.TextureAspectAll},
		data.Pixels,
		&wgpu.TextureDataLayout{BytesPerRow: data.Width * 4, RowsPerImage: data.Height},
		&size,
	)
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("sprite %q view: %w", name, err)
	}

	if old, ok := b.sprites[name]; ok {
		old.Release()
	}
	b.sprites[name] = &wgpuTexture{
		owner:      b,
		label:      name,
		width:      int(data.Width),
		height:     int(data.Height),
		format:     postprocess.FormatRGBA8,
		wgpuFormat: wgpu.TextureFormatRGBA8Unorm,
		texture:    tex,
		view:       view,
	}
	return nil
}

func (b *wgpuRendererBackend) Clear(target postprocess.Texture, c [4]float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.resolve(target)
	if err != nil {
		return err
	}
	return b.submit(func(encoder *wgpu.CommandEncoder) error {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       t.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: toColor(c),
			}},
		})
		pass.End()
		return nil
	})
}

func (b *wgpuRendererBackend) Draw(p postprocess.Pass) error {
	if err := p.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	target, err := b.resolve(p.Target)
	if err != nil {
		return fmt.Errorf("%s target: %w", p.Technique, err)
	}
	views := make([]*wgpu.TextureView, postprocess.MaxMergeInputs)
	for i := range views {
		views[i] = b.dummyView
	}
	for i, in := range p.Inputs {
		t, err := b.resolve(in)
		if err != nil {
			return fmt.Errorf("%s input %d: %w", p.Technique, i, err)
		}
		views[i] = t.view
	}

	area := postprocess.TextureRect(target)
	if p.Scissor != nil {
		area = intersectRect(area, *p.Scissor)
	}
	if area.Empty() {
		return nil
	}

	pl, err := b.techniquePipeline(techniqueEntries[p.Technique], target.wgpuFormat, p.Blend)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Technique, err)
	}

	params := postprocess.ToGPUParams(&p)
	b.queue.WriteBuffer(b.paramsBuffer, 0, params.Marshal())

	entries := make([]wgpu.BindGroupEntry, 0, 1+len(views))
	entries = append(entries, wgpu.BindGroupEntry{Binding: 0, Buffer: b.paramsBuffer, Size: uint64(params.Size())})
	for i, v := range views {
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i + 1), TextureView: v})
	}
	group, err := b.bindGroup(p.Technique.String(), pl.BindGroupLayout(0), entries)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Technique, err)
	}

	return b.submit(func(encoder *wgpu.CommandEncoder) error {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:    target.view,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			}},
		})
		pass.SetPipeline(pl.Pipeline())
		pass.SetBindGroup(0, group, nil)
		pass.SetScissorRect(uint32(area.X), uint32(area.Y), uint32(area.W), uint32(area.H))
		pass.Draw(3, 1, 0, 0)
		pass.End()
		return nil
	})
}

func (b *wgpuRendererBackend) DrawScene(p postprocess.ScenePass) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	target, err := b.resolve(p.Target)
	if err != nil {
		return fmt.Errorf("scene target: %w", err)
	}
	for _, batch := range p.Particles {
		if _, ok := b.sprites[batch.Sprite]; !ok {
			return fmt.Errorf("particle sprite %q is not registered", batch.Sprite)
		}
	}
	if err := b.ensureSceneAttachments(target); err != nil {
		return fmt.Errorf("scene target %q: %w", target.label, err)
	}
	samples := target.sceneSamples

	cam := camera.NewGPUCameraUniform(p.View, p.Projection)
	b.queue.WriteBuffer(b.sceneBuffer, 0, cam.Marshal())
	b.queue.WriteBuffer(b.sceneBuffer, sceneLightOffset, p.Light.Marshal())

	if err := b.ensureDrawBuffer(uint64(max(len(p.Meshes), 1)) * drawStride); err != nil {
		return err
	}
	for i, m := range p.Meshes {
		data := model.GPUModelData{Model: m.ModelMatrix}
		common.Mul4(data.ModelViewProj[:], cam.ViewProj[:], m.ModelMatrix[:])
		mat := material.ToGPUMaterial(m.Material, m.ShellOffset)
		offset := uint64(i) * drawStride
		b.queue.WriteBuffer(b.drawBuffer, offset, data.Marshal())
		b.queue.WriteBuffer(b.drawBuffer, offset+uniformAlign, mat.Marshal())
	}

	recorder := &sceneRecorder{b: b, format: target.wgpuFormat, samples: samples, sceneGroups: make(map[pipeline.Pipeline]*wgpu.BindGroup)}
	if err := recorder.prepare(&p); err != nil {
		return err
	}

	color := wgpu.RenderPassColorAttachment{
		View:       target.view,
		LoadOp:     wgpu.LoadOpLoad,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: toColor(p.ClearColor),
	}
	if p.Clear {
		color.LoadOp = wgpu.LoadOpClear
	}
	if target.msaaView != nil {
		color.View, color.ResolveTarget = target.msaaView, target.view
	}
	depthLoad := wgpu.LoadOpLoad
	if p.Clear || !target.depthInitialized {
		depthLoad = wgpu.LoadOpClear
	}
	target.depthInitialized = true

	return b.submit(func(encoder *wgpu.CommandEncoder) error {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{color},
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            target.depthView,
				DepthLoadOp:     depthLoad,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		})
		recorder.record(pass)
		pass.End()
		return nil
	})
}

// sceneRecorder resolves every pipeline, bind group and buffer of a scene pass before the
// render pass opens, then records the draws.
type sceneRecorder struct {
	b       *wgpuRendererBackend
	format  wgpu.TextureFormat
	samples uint32

	sceneGroups map[pipeline.Pipeline]*wgpu.BindGroup
	draws       []func(pass *wgpu.RenderPassEncoder)
}

func (r *sceneRecorder) prepare(p *postprocess.ScenePass) error {
	b := r.b
	for i, m := range p.Meshes {
		entry := "fs_lit"
		if m.Material.Shading() == material.ShadingGlow {
			entry = "fs_glow"
		}
		pl, err := b.scenePipeline(shader.KeyMesh, entry, r.format, r.samples, m.Material.Blend(),
			pipeline.WithDepth(true, m.Material.DepthWrite()),
			pipeline.WithCullMode(wgpu.CullModeBack))
		if err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		scene, err := r.sceneGroup(pl)
		if err != nil {
			return err
		}
		offset := uint64(i) * drawStride
		draw, err := b.bindGroup("mesh draw", pl.BindGroupLayout(1), []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.drawBuffer, Offset: offset, Size: 128},
			{Binding: 1, Buffer: b.drawBuffer, Offset: offset + uniformAlign, Size: 64},
		})
		if err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		mesh, err := b.meshBuffersFor(m.Model)
		if err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		r.draws = append(r.draws, func(pass *wgpu.RenderPassEncoder) {
			pass.SetPipeline(pl.Pipeline())
			pass.SetBindGroup(0, scene, nil)
			pass.SetBindGroup(1, draw, nil)
			pass.SetVertexBuffer(0, mesh.vertex, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
		})
	}

	for _, batch := range p.Particles {
		quads := len(batch.Vertices) / 4
		if quads == 0 {
			continue
		}
		pl, err := b.scenePipeline(shader.KeyParticle, "fs_particle", r.format, r.samples, material.BlendAdditive,
			pipeline.WithDepth(true, false))
		if err != nil {
			return fmt.Errorf("particles %q: %w", batch.Sprite, err)
		}
		scene, err := r.sceneGroup(pl)
		if err != nil {
			return err
		}
		sprite, err := b.bindGroup(batch.Sprite, pl.BindGroupLayout(1), []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: b.sprites[batch.Sprite].view},
			{Binding: 1, Sampler: b.spriteSampler},
		})
		if err != nil {
			return fmt.Errorf("particles %q: %w", batch.Sprite, err)
		}
		vb, err := b.transientBuffer("particle vertices", wgpu.BufferUsageVertex, particle.MarshalVertices(batch.Vertices[:quads*4]))
		if err != nil {
			return err
		}
		indices := particle.QuadIndices(quads)
		ib, err := b.transientBuffer("particle indices", wgpu.BufferUsageIndex, particle.MarshalIndices(indices))
		if err != nil {
			return err
		}
		count := uint32(len(indices))
		r.draws = append(r.draws, func(pass *wgpu.RenderPassEncoder) {
			pass.SetPipeline(pl.Pipeline())
			pass.SetBindGroup(0, scene, nil)
			pass.SetBindGroup(1, sprite, nil)
			pass.SetVertexBuffer(0, vb, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(ib, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(count, 1, 0, 0, 0)
		})
	}

	if len(p.Points) > 0 {
		pl, err := b.scenePipeline(shader.KeyPoints, "fs_point", r.format, r.samples, material.BlendOpaque,
			pipeline.WithDepth(false, false),
			pipeline.WithTopology(wgpu.PrimitiveTopologyPointList))
		if err != nil {
			return fmt.Errorf("points: %w", err)
		}
		scene, err := r.sceneGroup(pl)
		if err != nil {
			return err
		}
		vb, err := b.transientBuffer("points", wgpu.BufferUsageVertex, postprocess.MarshalPoints(p.Points))
		if err != nil {
			return err
		}
		count := uint32(len(p.Points))
		r.draws = append(r.draws, func(pass *wgpu.RenderPassEncoder) {
			pass.SetPipeline(pl.Pipeline())
			pass.SetBindGroup(0, scene, nil)
			pass.SetVertexBuffer(0, vb, 0, wgpu.WholeSize)
			pass.Draw(count, 1, 0, 0)
		})
	}
	return nil
}

func (r *sceneRecorder) record(pass *wgpu.RenderPassEncoder) {
	for _, draw := range r.draws {
		draw(pass)
	}
}

// sceneGroup binds the camera block, and the light block where the shader declares it, for a
// pipeline's group 0.
func (r *sceneRecorder) sceneGroup(pl pipeline.Pipeline) (*wgpu.BindGroup, error) {
	if g, ok := r.sceneGroups[pl]; ok {
		return g, nil
	}
	var entries []wgpu.BindGroupEntry
	for _, e := range pl.Shader().BindGroupLayoutDescriptors()[0].Entries {
		switch e.Binding {
		case 0:
			entries = append(entries, wgpu.BindGroupEntry{Binding: 0, Buffer: r.b.sceneBuffer, Size: e.Buffer.MinBindingSize})
		case 1:
			entries = append(entries, wgpu.BindGroupEntry{Binding: 1, Buffer: r.b.sceneBuffer, Offset: sceneLightOffset, Size: e.Buffer.MinBindingSize})
		}
	}
	g, err := r.b.bindGroup(pl.PipelineKey()+" scene", pl.BindGroupLayout(0), entries)
	if err != nil {
		return nil, err
	}
	r.sceneGroups[pl] = g
	return g, nil
}

// ensureSceneAttachments creates the depth buffer of a scene target and, with multisampling on,
// the multisample color buffer it resolves from.
func (b *wgpuRendererBackend) ensureSceneAttachments(t *wgpuTexture) error {
	samples := uint32(b.sampleCount)
	if samples > 1 && t.format == postprocess.FormatR32F {
		if !b.msaaWarned {
			log.Printf("[Renderer] %s targets cannot be multisampled, drawing single-sampled", t.format)
			b.msaaWarned = true
		}
		samples = 1
	}
	if t.depthView != nil && t.sceneSamples == samples {
		return nil
	}
	t.releaseSceneAttachments()

	size := wgpu.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1}
	var err error
	if samples > 1 {
		if t.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         t.label + " MSAA",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   samples,
			Dimension:     wgpu.TextureDimension2D,
			Format:        t.wgpuFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		}); err != nil {
			return err
		}
		if t.msaaView, err = t.msaaTexture.CreateView(nil); err != nil {
			return err
		}
	}
	if t.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         t.label + " Depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pipeline.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	}); err != nil {
		return err
	}
	if t.depthView, err = t.depthTexture.CreateView(nil); err != nil {
		return err
	}
	t.sceneSamples = samples
	return nil
}

// techniquePipeline returns the cached pipeline for a technique entry point, creating it on
// first use.
func (b *wgpuRendererBackend) techniquePipeline(entry string, format wgpu.TextureFormat, blend material.BlendMode) (pipeline.Pipeline, error) {
	key := pipeline.Key(shader.KeyTechnique, entry, format, blend)
	return b.cachedPipeline(key, shader.KeyTechnique,
		pipeline.WithFragmentEntry(entry),
		pipeline.WithFormat(format),
		pipeline.WithBlend(blend))
}

// scenePipeline returns the cached pipeline for a scene shader entry point.
func (b *wgpuRendererBackend) scenePipeline(shaderKey, entry string, format wgpu.TextureFormat, samples uint32, blend material.BlendMode, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	probe := pipeline.NewPipeline("", b.shaders[shaderKey], opts...)
	key := pipeline.Key(shaderKey, entry, format, samples, blend, probe.DepthTestEnabled(), probe.DepthWriteEnabled(), probe.CullMode(), probe.Topology())
	return b.cachedPipeline(key, shaderKey, append([]pipeline.PipelineBuilderOption{
		pipeline.WithFragmentEntry(entry),
		pipeline.WithFormat(format),
		pipeline.WithSampleCount(samples),
		pipeline.WithBlend(blend),
	}, opts...)...)
}

func (b *wgpuRendererBackend) cachedPipeline(key, shaderKey string, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}
	p := pipeline.NewPipeline(key, b.shaders[shaderKey], opts...)
	if err := b.registerPipeline(p); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", key, err)
	}
	b.pipelines[key] = p
	return p, nil
}

// registerPipeline creates the shader module, bind group layouts and render pipeline of p.
func (b *wgpuRendererBackend) registerPipeline(p pipeline.Pipeline) error {
	s := p.Shader()
	if !s.HasFragmentEntry(p.FragmentEntry()) {
		return fmt.Errorf("shader %q has no fragment entry %q", s.Key(), p.FragmentEntry())
	}
	module, ok := b.modules[s.Key()]
	if !ok {
		var err error
		if module, err = b.device.CreateShaderModule(s.Module()); err != nil {
			return err
		}
		b.modules[s.Key()] = module
	}

	descriptors := s.BindGroupLayoutDescriptors()
	layouts := make([]*wgpu.BindGroupLayout, len(descriptors))
	for g := range descriptors {
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s group %d", p.PipelineKey(), g)
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("bind group layout %d: %w", g, err)
		}
		layouts[g] = layout
	}
	p.SetBindGroupLayouts(layouts)

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(p.Descriptor(pipelineLayout, module))
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

// meshBuffersFor uploads a model's vertices and indices once and returns the cached buffers.
func (b *wgpuRendererBackend) meshBuffersFor(m model.Model) (*meshBuffers, error) {
	if mb, ok := b.meshes[m]; ok {
		return mb, nil
	}
	vertex, err := b.uploadBuffer(m.Name()+" Vertex Buffer", wgpu.BufferUsageVertex, m.VertexData())
	if err != nil {
		return nil, err
	}
	index, err := b.uploadBuffer(m.Name()+" Index Buffer", wgpu.BufferUsageIndex, m.IndexData())
	if err != nil {
		vertex.Release()
		return nil, err
	}
	mb := &meshBuffers{vertex: vertex, index: index, indexCount: uint32(m.IndexCount())}
	b.meshes[m] = mb
	return mb, nil
}

func (b *wgpuRendererBackend) uploadBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: no data", label)
	}
	// Copies must be a multiple of 4 bytes.
	size := (uint64(len(data)) + 3) &^ 3
	if size != uint64(len(data)) {
		data = append(data[:len(data):len(data)], make([]byte, size-uint64(len(data)))...)
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackend) transientBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.uploadBuffer(label, usage, data)
	if err != nil {
		return nil, err
	}
	b.transientBuffers = append(b.transientBuffers, buf)
	return buf, nil
}

func (b *wgpuRendererBackend) bindGroup(label string, layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	if layout == nil {
		return nil, errors.New("pipeline has no layout for the bind group")
	}
	g, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group %s: %w", label, err)
	}
	b.transientGroups = append(b.transientGroups, g)
	return g, nil
}

// submit records one command buffer and submits it.
func (b *wgpuRendererBackend) submit(record func(encoder *wgpu.CommandEncoder) error) error {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	if err := record(encoder); err != nil {
		return err
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

// resolve checks that a texture belongs to this backend and can be rendered to or read.
func (b *wgpuRendererBackend) resolve(t postprocess.Texture) (*wgpuTexture, error) {
	wt, ok := t.(*wgpuTexture)
	if !ok || wt == nil || wt.owner != b {
		return nil, ErrForeignTexture
	}
	if wt.released {
		return nil, ErrReleasedTexture
	}
	if wt.view == nil {
		return nil, ErrNoFrame
	}
	return wt, nil
}

func (b *wgpuRendererBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.back.view = view
	return nil
}

func (b *wgpuRendererBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseTransient()
}

func (b *wgpuRendererBackend) releaseTransient() {
	for _, g := range b.transientGroups {
		g.Release()
	}
	for _, buf := range b.transientBuffers {
		buf.Release()
	}
	b.transientGroups = b.transientGroups[:0]
	b.transientBuffers = b.transientBuffers[:0]
}

func (b *wgpuRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	if b.back.view != nil {
		b.back.view.Release()
		b.back.view = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackend) Snapshot() (image.Image, error) {
	return nil, ErrSnapshotUnsupported
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTransient()
	for t := range b.live {
		t.Release()
	}
	clear(b.live)
	for _, s := range b.sprites {
		s.Release()
	}
	clear(b.sprites)
	for _, mb := range b.meshes {
		mb.vertex.Release()
		mb.index.Release()
	}
	clear(b.meshes)
	for _, p := range b.pipelines {
		p.Release()
	}
	clear(b.pipelines)
	for _, m := range b.modules {
		m.Release()
	}
	clear(b.modules)
	b.back.releaseSceneAttachments()

	for _, buf := range []*wgpu.Buffer{b.paramsBuffer, b.sceneBuffer, b.drawBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.dummyView != nil {
		b.dummyView.Release()
		b.dummy.Release()
	}
	if b.spriteSampler != nil {
		b.spriteSampler.Release()
	}
}

func toColor(c [4]float32) wgpu.Color {
	return wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// intersectRect clips a to b.
func intersectRect(a, b postprocess.Rect) postprocess.Rect {
	x0, y0 := max(a.X, b.X), max(a.Y, b.Y)
	x1, y1 := min(a.X+a.W, b.X+b.W), min(a.Y+a.H, b.Y+b.H)
	return postprocess.Rect{X: x0, Y: y0, W: max(x1-x0, 0), H: max(y1-y0, 0)}
}
