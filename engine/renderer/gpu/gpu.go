// Package gpu registers the WebGPU renderer backend. Import it for its side effect:
//
//	import _ "github.com/Carmen-Shannon/oxy-cone/engine/renderer/gpu"
//
// The host's Native handle must implement SurfaceSource.
package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed shader.wgsl
var shaderSource string

// vertexStride is the byte stride of one tightly packed vec3<f32> position.
const vertexStride = 3 * 4

// ErrNoSurface is returned when the host cannot provide a WebGPU surface descriptor.
var ErrNoSurface = errors.New("gpu: host does not provide a surface descriptor")

// SurfaceSource is implemented by native window handles that can describe a WebGPU surface.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

func init() {
	renderer.RegisterBackend(renderer.BackendTypeWGPU, newWGPURendererBackend)
}

type wgpuRendererBackend struct {
	mu     sync.Mutex
	logger *slog.Logger

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	presentMode   wgpu.PresentMode
	sampleCount   uint32
	surfaceFormat wgpu.TextureFormat
	configured    bool

	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	pipeline        *wgpu.RenderPipeline
	bindGroupLayout *wgpu.BindGroupLayout

	meshes *bind_group_provider.Cache
}

var _ renderer.RendererBackend = &wgpuRendererBackend{}

func newWGPURendererBackend(host renderer.Host, cfg renderer.Config) (renderer.RendererBackend, error) {
	source, ok := host.Native().(SurfaceSource)
	if !ok {
		return nil, ErrNoSurface
	}
	descriptor := source.SurfaceDescriptor()
	if descriptor == nil {
		return nil, ErrNoSurface
	}

	runtime.LockOSThread()
	b := &wgpuRendererBackend{
		logger:      cfg.Logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: uint32(cfg.MSAA),
		meshes:      bind_group_provider.NewCache(),
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.sampleCount == 0 {
		b.sampleCount = uint32(renderer.MSAA4x)
	}
	if cfg.PresentMode == renderer.PresentModeUncapped {
		b.presentMode = wgpu.PresentModeImmediate
	}
	b.surface = b.instance.CreateSurface(descriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.ForceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.configured = true

	b.releaseTargets()
	if b.sampleCount > 1 {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		tex, view, err := b.createTarget("MSAA Texture", width, height, b.surfaceFormat)
		if err != nil {
			return err
		}
		b.msaaTexture, b.msaaTextureView = tex, view
	}

	// Depth texture sample count must match the color attachment.
	tex, view, err := b.createTarget("Depth Texture", width, height, wgpu.TextureFormatDepth24Plus)
	if err != nil {
		return err
	}
	b.depthTexture, b.depthTextureView = tex, view

	if b.pipeline == nil {
		return b.createPipeline()
	}
	return nil
}

func (b *wgpuRendererBackend) DrawFrame(frame *renderer.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured || b.pipeline == nil {
		return errors.New("surface not configured")
	}

	draws := make([]bind_group_provider.BindGroupProvider, 0, len(frame.Items))
	writes := make([]bind_group_provider.BufferWrite, 0, len(frame.Items))
	for _, item := range frame.Items {
		provider, err := b.provider(item)
		if err != nil {
			return err
		}
		if !provider.Drawable() {
			continue
		}

		u := newMeshUniform(item)
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  0,
			Data:     u.Marshal(),
		})
		draws = append(draws, provider)
	}
	b.writeBuffers(writes)
	if n := b.meshes.Prune(); n > 0 {
		b.logger.Debug("released mesh resources", "meshes", n)
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(frame.Clear[0]),
			G: float64(frame.Clear[1]),
			B: float64(frame.Clear[2]),
			A: float64(frame.Clear[3]),
		},
	}
	if b.sampleCount > 1 {
		color.View = b.msaaTextureView
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(b.pipeline)
	for _, p := range draws {
		pass.SetBindGroup(0, p.BindGroup(), nil)
		pass.SetVertexBuffer(0, p.VertexBuffer(), 0, wgpu.WholeSize)
		pass.Draw(uint32(p.VertexCount()), 1, 0, 0)
	}
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackend) Snapshot() (image.Image, error) {
	return nil, renderer.ErrSnapshotUnsupported
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.meshes.Release()
	b.releaseTargets()
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.bindGroupLayout != nil {
		b.bindGroupLayout.Release()
		b.bindGroupLayout = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.configured = false
}

// writeBuffers flushes staged uniform writes to the queue. Caller must hold the mutex.
func (b *wgpuRendererBackend) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

// provider returns the GPU resources for an item, uploading its geometry on first sight or
// when the mesh's geometry has changed. Caller must hold the mutex.
func (b *wgpuRendererBackend) provider(item renderer.DrawItem) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := b.meshes.Lookup(item.MeshID, item.Geometry); ok {
		return p, nil
	}

	provider := bind_group_provider.NewBindGroupProvider(item.MeshID, item.Geometry)
	if item.Geometry != nil && item.Geometry.VertexCount() > 0 {
		data := item.Geometry.Bytes()
		vertexBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(data)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		b.queue.WriteBuffer(vertexBuffer, 0, data)
		provider.SetVertices(vertexBuffer, item.Geometry.VertexCount())
	}

	uniformBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Uniform Buffer",
		Size:  uniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBuffer(0, uniformBuffer)

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: b.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  uniformBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBindGroup(bindGroup)

	b.meshes.Store(provider)
	b.logger.Debug("uploaded mesh", "mesh", item.MeshID, "vertices", provider.VertexCount())
	return provider, nil
}

// createTarget creates a render attachment texture and its view. Caller must hold the mutex.
func (b *wgpuRendererBackend) createTarget(label string, width, height int, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   b.sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return tex, view, nil
}

// releaseTargets frees the MSAA and depth attachments. Caller must hold the mutex.
func (b *wgpuRendererBackend) releaseTargets() {
	for _, v := range []*wgpu.TextureView{b.msaaTextureView, b.depthTextureView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{b.msaaTexture, b.depthTexture} {
		if t != nil {
			t.Release()
		}
	}
	b.msaaTexture, b.msaaTextureView = nil, nil
	b.depthTexture, b.depthTextureView = nil, nil
}

// createPipeline builds the single unlit pipeline. Caller must hold the mutex.
func (b *wgpuRendererBackend) createPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "unlit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile shader: %w", err)
	}
	defer module.Release()

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "unlit Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uniformSize,
				},
			},
		},
	})
	if err != nil {
		return err
	}
	b.bindGroupLayout = layout

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "unlit",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "unlit Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         0,
							ShaderLocation: 0,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: b.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}
	b.pipeline = created
	return nil
}
