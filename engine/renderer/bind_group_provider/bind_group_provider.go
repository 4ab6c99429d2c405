// Package bind_group_provider holds the per-mesh GPU resources of the WebGPU backend.
package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/cogentcore/webgpu/wgpu"
)

type bindGroupProvider struct {
	meshID uint64
	label  string

	// source is the geometry the vertex buffer was uploaded from.
	source geometry.Geometry

	bindGroup    *wgpu.BindGroup
	uniforms     map[int]*wgpu.Buffer
	vertexBuffer *wgpu.Buffer
	vertexCount  int
}

// BindGroupProvider owns what one mesh's draw call binds: a position buffer, uniform buffers
// keyed by binding index, and the bind group over them. It remembers the geometry it was
// built from so the backend can tell when a mesh's geometry has been swapped.
type BindGroupProvider interface {
	// MeshID returns the ID of the mesh these resources belong to.
	MeshID() uint64

	// Label returns the prefix used for GPU resource labels.
	Label() string

	// Source returns the geometry the vertex buffer holds.
	Source() geometry.Geometry

	// Drawable reports whether the provider has a bind group and at least one vertex.
	Drawable() bool

	// BindGroup returns the bind group, or nil.
	BindGroup() *wgpu.BindGroup

	// Buffer returns the uniform buffer at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// VertexBuffer returns the position buffer, or nil for an empty geometry.
	VertexBuffer() *wgpu.Buffer

	// VertexCount returns the number of vertices to draw.
	VertexCount() int

	// SetBindGroup replaces the bind group, releasing the previous one.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer replaces the uniform buffer at binding, releasing the previous one.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetVertices replaces the position buffer, releasing the previous one.
	//
	// Parameters:
	//   - buf: the uploaded positions
	//   - count: the number of vertices in buf
	SetVertices(buf *wgpu.Buffer, count int)

	// Release frees every GPU resource. Safe to call more than once.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider for a mesh. GPU resources are attached afterwards
// by the backend.
//
// Parameters:
//   - meshID: the mesh's ID
//   - source: the geometry that will be uploaded
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(meshID uint64, source geometry.Geometry, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		meshID:   meshID,
		label:    fmt.Sprintf("mesh_%d", meshID),
		source:   source,
		uniforms: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) MeshID() uint64 {
	return p.meshID
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Source() geometry.Geometry {
	return p.source
}

func (p *bindGroupProvider) Drawable() bool {
	return p.bindGroup != nil && p.vertexBuffer != nil && p.vertexCount > 0
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.uniforms[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.uniforms[binding]; old != nil && old != buf {
		old.Release()
	}
	if buf == nil {
		delete(p.uniforms, binding)
		return
	}
	p.uniforms[binding] = buf
}

func (p *bindGroupProvider) SetVertices(buf *wgpu.Buffer, count int) {
	if p.vertexBuffer != nil && p.vertexBuffer != buf {
		p.vertexBuffer.Release()
	}
	p.vertexBuffer = buf
	p.vertexCount = max(count, 0)
	if buf == nil {
		p.vertexCount = 0
	}
}

func (p *bindGroupProvider) Release() {
	// The bind group references the uniform buffers, so it goes first.
	p.SetBindGroup(nil)
	for binding := range p.uniforms {
		p.SetBuffer(binding, nil)
	}
	p.SetVertices(nil, 0)
}
