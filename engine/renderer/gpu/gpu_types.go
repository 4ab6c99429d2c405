package gpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
)

// meshUniform is the GPU-aligned representation of the per-mesh uniform block in shader.wgsl.
// Size: 80 bytes.
type meshUniform struct {
	MVP   [16]float32 // offset  0: model-view-projection matrix (mat4x4<f32>)
	Color [4]float32  // offset 64: flat RGBA color (vec4<f32>)
}

// uniformSize is the byte size of meshUniform.
const uniformSize = uint64(unsafe.Sizeof(meshUniform{}))

func newMeshUniform(item renderer.DrawItem) meshUniform {
	return meshUniform{MVP: item.MVP, Color: item.Color}
}

// Marshal serializes the uniform into a little-endian byte buffer for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (u *meshUniform) Marshal() []byte {
	buf := make([]byte, uniformSize)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(u.MVP[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(u.Color[i]))
	}
	return buf
}
