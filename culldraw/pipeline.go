// Package culldraw implements the GPU-driven cull/draw pipeline, spec
// §4.6's lettered dispatch sequence (A)-(G): reset counters, cull
// instances against the culling camera's frustum, cull their clusters,
// vertex-pull and rasterize survivors into a visibility buffer,
// resolve materials into the color buffer, composite the debug
// overlay, and present.
//
// This package owns every pipeline object (compute and render alike)
// and the per-load-lifetime transient buffers; it does not own the
// scene pools (assets.GPUScene), the frame ring, or the readback ring,
// all of which are constructed once at startup and handed in.
package culldraw

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nivenh/meshlet/accel"
	"github.com/nivenh/meshlet/assets"
	"github.com/nivenh/meshlet/camera"
	"github.com/nivenh/meshlet/common"
	"github.com/nivenh/meshlet/frame"
	"github.com/nivenh/meshlet/gpu"
	"github.com/nivenh/meshlet/gpu/descriptors"
	"github.com/nivenh/meshlet/gpu/pipeline"
	"github.com/nivenh/meshlet/gpu/shader"
	"github.com/nivenh/meshlet/overlay"
	"github.com/nivenh/meshlet/readback"
	"github.com/nivenh/meshlet/scene"
)

// textVertexCapacity bounds how many glyph-quad vertices the stats
// overlay can emit per frame (a handful of short lines, padded
// generously so a verbose debug panel never overflows the buffer).
const textVertexCapacity = 4096

// Pipeline orchestrates one frame of the cull/draw sequence against a
// single loaded Scene. Build with New once the scene has been uploaded
// and the swap chain configured; New registers every persistent
// resource the shaders reference into the shared bindless table before
// compiling any pipeline object (gpu/descriptors.Table.Build must see
// its final resource set before the first pipeline layout is derived
// from it).
type Pipeline struct {
	device   *gpu.Device
	queue    *wgpu.Queue
	factory  *gpu.Factory
	ring     *frame.Ring
	readback *readback.Ring

	scene     *scene.Scene
	gpuScene  *assets.GPUScene
	transient *transientBuffers

	blas *accel.Pool
	tlas *accel.TLAS

	frameSetup      pipeline.Pipeline
	instanceCull    pipeline.Pipeline
	clusterCull     pipeline.Pipeline
	meshRaster      pipeline.Pipeline
	materialResolve pipeline.Pipeline
	overlayWire     pipeline.Pipeline
	overlayText     pipeline.Pipeline

	font        *overlay.Font
	fontTexture *wgpu.Texture
	fontView    *wgpu.TextureView
	fontSampler *wgpu.Sampler
	textVertex  *gpu.Buffer

	frameIndex int
	lastStats  readback.Stats
}

// New builds the transient buffers, debug-overlay GPU resources, and
// every pipeline object the cull/draw sequence dispatches, bound to sc
// (already uploaded into gpuScene) and rendered against ring/rb.
func New(device *gpu.Device, factory *gpu.Factory, sc *scene.Scene, gpuScene *assets.GPUScene, ring *frame.Ring, rb *readback.Ring, font *overlay.Font) (*Pipeline, error) {
	p := &Pipeline{
		device:   device,
		queue:    device.Queue(),
		factory:  factory,
		ring:     ring,
		readback: rb,
		scene:    sc,
		gpuScene: gpuScene,
		font:     font,
	}

	var err error
	p.transient, err = newTransientBuffers(factory, sc)
	if err != nil {
		return nil, err
	}

	p.blas, err = accel.BuildPool(sc)
	if err != nil {
		return nil, fmt.Errorf("culldraw: build BLAS pool: %w", err)
	}
	p.tlas = accel.Build(sc, p.blas)
	// SPEC_FULL.md §0 / spec §7: ray tracing is compiled but permanently
	// gated off on this backend (device.SupportsRayTracing() is always
	// false), so the TLAS bytes are computed and never uploaded or bound.

	if err := p.setupOverlayResources(); err != nil {
		return nil, err
	}

	// Every slot any shader below binds must already be registered by
	// this point: the bindless table's layout/group are derived once,
	// lazily, the first time a pipeline build calls Table.Build, and
	// cached thereafter (gpu/descriptors.Table.Build's dirty-flag
	// memoization). Registering a new resource after the first pipeline
	// is created would silently leave that pipeline's bind group layout
	// stale.
	if err := p.buildPipelines(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Pipeline) setupOverlayResources() error {
	atlas := p.font.Atlas
	w, h := atlas.Bounds().Dx(), atlas.Bounds().Dy()

	tex, err := p.device.Native().CreateTexture(&wgpu.TextureDescriptor{
		Label:         "overlay font atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("culldraw: create font atlas texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("culldraw: create font atlas view: %w", err)
	}
	p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: tex, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: wgpu.TextureAspectAll},
		atlas.Pix,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: uint32(w), RowsPerImage: uint32(h)},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	p.fontTexture, p.fontView = tex, view

	sampler, err := p.device.Native().CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "overlay font sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMinClamp:  0,
		LodMaxClamp:  1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("culldraw: create font sampler: %w", err)
	}
	p.fontSampler = sampler

	table := p.device.Table()
	table.BindTexture(descriptors.SlotOverlayFont, view, wgpu.ShaderStageFragment, wgpu.TextureSampleTypeFloat)
	table.BindSampler(descriptors.SlotOverlaySampler, sampler, wgpu.ShaderStageFragment)

	textVertex, err := p.factory.CreateBuffer(gpu.BufferDescriptor{
		Count: textVertexCapacity, Stride: 32, Name: "overlay text vertices",
	}.WithVertex())
	if err != nil {
		return fmt.Errorf("culldraw: create overlay text vertex buffer: %w", err)
	}
	p.textVertex = textVertex

	return nil
}

func (p *Pipeline) buildPipelines() error {
	p.frameSetup = pipeline.NewPipeline("frame_setup", pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(shader.NewShaderFromSource("frame_setup", shader.ShaderTypeCompute, FrameSetupSource())))
	if err := p.device.CreateComputePipeline(p.frameSetup); err != nil {
		return err
	}

	p.instanceCull = pipeline.NewPipeline("instance_cull", pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(shader.NewShaderFromSource("instance_cull", shader.ShaderTypeCompute, InstanceCullSource())))
	if err := p.device.CreateComputePipeline(p.instanceCull); err != nil {
		return err
	}

	p.clusterCull = pipeline.NewPipeline("cluster_cull", pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(shader.NewShaderFromSource("cluster_cull", shader.ShaderTypeCompute, ClusterCullSource())))
	if err := p.device.CreateComputePipeline(p.clusterCull); err != nil {
		return err
	}

	p.meshRaster = pipeline.NewPipeline("mesh_raster", pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShaderFromSource("mesh_raster_vs", shader.ShaderTypeVertex, MeshRasterVertexSource())),
		pipeline.WithFragmentShader(shader.NewShaderFromSource("mesh_raster_fs", shader.ShaderTypeFragment, MeshRasterFragmentSource())),
		pipeline.WithColorFormat(gpu.VisibilityFormat),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	)
	if err := p.device.CreateRenderPipeline(p.meshRaster); err != nil {
		return err
	}

	p.materialResolve = pipeline.NewPipeline("material_resolve", pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(shader.NewShaderFromSource("material_resolve", shader.ShaderTypeCompute, MaterialResolveSource())))
	if err := p.device.CreateComputePipeline(p.materialResolve); err != nil {
		return err
	}

	p.overlayWire = pipeline.NewPipeline("overlay_wire", pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShaderFromSource("overlay_wire_vs", shader.ShaderTypeVertex, OverlayWireVertexSource())),
		pipeline.WithFragmentShader(shader.NewShaderFromSource("overlay_wire_fs", shader.ShaderTypeFragment, OverlayWireFragmentSource())),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
	)
	if err := p.device.CreateRenderPipeline(p.overlayWire); err != nil {
		return err
	}

	p.overlayText = pipeline.NewPipeline("overlay_text", pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShaderFromSource("overlay_text_vs", shader.ShaderTypeVertex, OverlayTextVertexSource())),
		pipeline.WithFragmentShader(shader.NewShaderFromSource("overlay_text_fs", shader.ShaderTypeFragment, OverlayTextFragmentSource())),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithBlendEnabled(true),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	)
	return p.device.CreateRenderPipeline(p.overlayText)
}

// Stats returns the most recently read frame-delayed counters (spec §4.8).
func (p *Pipeline) Stats() readback.Stats { return p.lastStats }

// Frame runs one full cull/draw/present cycle against ctrl's current
// camera state: (A) reset counters, (B) cull instances, (C) cull
// clusters, (D) vertex-pull + rasterize the visibility buffer, (E)
// resolve materials into the color buffer, (F) composite the debug
// overlay, (G) copy the color buffer to the swap chain and present.
// showWire draws the culling camera's frustum and every scene
// instance's AABB (culled or not) as a wireframe overlay (spec §4.6(F)); debug selects
// the material-resolve visualization mode (spec §4.6(E)).
func (p *Pipeline) Frame(ctrl *camera.Controller, debug frame.DebugMode, showWire bool) error {
	slotIndex := p.frameIndex % frame.Count
	p.frameIndex++

	if stats, err := p.readback.Read(slotIndex, frame.Count); err == nil {
		p.lastStats = stats
	}

	slot, err := p.ring.Begin(slotIndex)
	if err != nil {
		return fmt.Errorf("culldraw: begin frame slot: %w", err)
	}
	encoder := slot.Encoder

	instanceCount := uint32(len(p.scene.Instances))
	constants := &frame.Constants{
		Culling: ctrl.Culling,
		Drawing: ctrl.Drawing,
		Counts: frame.ConstantsCountVector{
			InstanceCount:   instanceCount,
			MaxClusterCount: p.scene.MaxClusterCount(),
		},
		Debug: debug,
	}
	p.ring.WriteConstants(constants)

	wireVerts := p.buildWireVertices(ctrl, showWire)
	if maxWireVerts := p.maxWireVertices(); len(wireVerts) > maxWireVerts {
		wireVerts = wireVerts[:maxWireVerts]
	}
	p.ring.WriteWire(slot, common.SliceToBytes(wireVerts))

	textVerts := p.font.BuildVertices(p.statsText(), p.device.Width(), p.device.Height())
	if len(textVerts) > textVertexCapacity {
		textVerts = textVerts[:textVertexCapacity]
	}
	p.queue.WriteBuffer(p.textVertex.GPU, 0, common.SliceToBytes(textVerts))

	bindGroup := p.device.Table().Group()

	// (A) reset counters
	{
		cpass := encoder.BeginComputePass(nil)
		cpass.SetPipeline(p.frameSetup.Pipeline().(*wgpu.ComputePipeline))
		cpass.SetBindGroup(0, bindGroup, nil)
		cpass.DispatchWorkgroups(1, 1, 1)
		cpass.End()
	}

	// (B) cull instances
	if instanceCount > 0 {
		cpass := encoder.BeginComputePass(nil)
		cpass.SetPipeline(p.instanceCull.Pipeline().(*wgpu.ComputePipeline))
		cpass.SetBindGroup(0, bindGroup, nil)
		groups := (instanceCount + 127) / 128
		cpass.DispatchWorkgroups(groups, 1, 1)
		cpass.End()
	}

	// (C) cull clusters — dispatch grid sized to the CPU-known upper
	// bound (spec §4.6(C)'s "dispatch sized to MaxClusterCount").
	maxClusters := p.scene.MaxClusterCount()
	if maxClusters > 0 {
		cpass := encoder.BeginComputePass(nil)
		cpass.SetPipeline(p.clusterCull.Pipeline().(*wgpu.ComputePipeline))
		cpass.SetBindGroup(0, bindGroup, nil)
		groups := (maxClusters + 127) / 128
		cpass.DispatchWorkgroups(groups, 1, 1)
		cpass.End()
	}

	// (D) vertex-pull + rasterize into the visibility buffer
	{
		rpass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       p.device.VisibilityView(),
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
				},
			},
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            p.device.DepthView(),
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		})
		rpass.SetPipeline(p.meshRaster.Pipeline().(*wgpu.RenderPipeline))
		rpass.SetBindGroup(0, bindGroup, nil)
		rpass.DrawIndirect(p.transient.clusterDrawArgs.GPU, 0)
		rpass.End()
	}

	// (E) resolve materials into the color buffer
	{
		cpass := encoder.BeginComputePass(nil)
		cpass.SetPipeline(p.materialResolve.Pipeline().(*wgpu.ComputePipeline))
		cpass.SetBindGroup(0, bindGroup, nil)
		gx := (uint32(p.device.Width()) + 7) / 8
		gy := (uint32(p.device.Height()) + 7) / 8
		cpass.DispatchWorkgroups(gx, gy, 1)
		cpass.End()
	}

	// (F) composite the debug overlay directly onto the color buffer
	{
		rpass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:    p.device.ColorView(),
					LoadOp:  wgpu.LoadOpLoad,
					StoreOp: wgpu.StoreOpStore,
				},
			},
		})
		if showWire && len(wireVerts) > 0 {
			rpass.SetPipeline(p.overlayWire.Pipeline().(*wgpu.RenderPipeline))
			rpass.SetBindGroup(0, bindGroup, nil)
			rpass.SetVertexBuffer(0, p.ring.WireBuffer().GPU, slot.WireOffset, wgpu.WholeSize)
			rpass.Draw(uint32(len(wireVerts)), 1, 0, 0)
		}
		if len(textVerts) > 0 {
			rpass.SetPipeline(p.overlayText.Pipeline().(*wgpu.RenderPipeline))
			rpass.SetBindGroup(0, bindGroup, nil)
			rpass.SetVertexBuffer(0, p.textVertex.GPU, 0, wgpu.WholeSize)
			rpass.Draw(uint32(len(textVerts)), 1, 0, 0)
		}
		rpass.End()
	}

	// (G) present: copy the finished color buffer to the acquired
	// swap-chain texture, copy this frame's counters into the readback
	// ring for a later frame's Read, submit, and present.
	swapTex, swapView, err := p.device.AcquireSwapchainTexture()
	if err != nil {
		return fmt.Errorf("culldraw: acquire swapchain texture: %w", err)
	}
	encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: p.device.ColorTexture()},
		&wgpu.ImageCopyTexture{Texture: swapTex},
		&wgpu.Extent3D{Width: uint32(p.device.Width()), Height: uint32(p.device.Height()), DepthOrArrayLayers: 1},
	)
	p.readback.Copy(encoder, p.transient.visibleInstanceCounter.GPU, p.transient.visibleClusterCounter.GPU, slotIndex)

	if err := p.ring.End(slot); err != nil {
		swapView.Release()
		swapTex.Release()
		return err
	}

	p.device.Present()
	swapView.Release()
	swapTex.Release()

	return nil
}

// buildWireVertices emits the locked culling-camera frustum plus one
// AABB wireframe per scene instance (spec §4.6(F)); drawing every
// instance's box rather than only the GPU-culled survivors keeps this
// step entirely CPU-side with no readback dependency.
func (p *Pipeline) buildWireVertices(ctrl *camera.Controller, show bool) []overlay.LineVertex {
	if !show {
		return nil
	}
	verts := overlay.WireframeEdges(overlay.FrustumCorners(ctrl.Culling.InverseViewProj), [4]float32{1, 1, 0, 1})
	for _, inst := range p.scene.Instances {
		verts = append(verts, overlay.WireframeEdges(overlay.AABBCorners(inst.AABB), [4]float32{0, 1, 1, 1})...)
	}
	return verts
}

// maxWireVertices returns how many overlay.LineVertex records fit in
// one frame-ring slot's region of the wire vertex buffer.
func (p *Pipeline) maxWireVertices() int {
	wireBuf := p.ring.WireBuffer()
	if wireBuf == nil || wireBuf.Desc.Stride == 0 {
		return 0
	}
	const lineVertexSize = 4 * (3 + 4) // Pos[3]+Color[4] float32
	return int(wireBuf.Desc.Stride / lineVertexSize)
}

// statsText formats the one-to-two-frame-delayed readback counters
// into the stats panel spec §4.8 describes.
func (p *Pipeline) statsText() []overlay.TextItem {
	s := p.lastStats
	text := fmt.Sprintf(
		"instances %d/%d\nclusters %d/%d\n(delayed %d frame(s))",
		s.VisibleInstances, len(p.scene.Instances),
		s.VisibleClusters, p.scene.MaxClusterCount(),
		s.DelayFrames,
	)
	return []overlay.TextItem{{Text: text, Position: [2]float32{16, 16}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}
}

// Release tears down every GPU resource this pipeline owns directly
// (the transient buffers and overlay font texture/sampler/vertex
// buffer); pipeline objects are released by the device on shutdown.
func (p *Pipeline) Release() {
	p.transient.release()
	if p.textVertex != nil {
		p.textVertex.GPU.Release()
	}
	if p.fontView != nil {
		p.fontView.Release()
	}
	if p.fontTexture != nil {
		p.fontTexture.Release()
	}
	if p.fontSampler != nil {
		p.fontSampler.Release()
	}
}
