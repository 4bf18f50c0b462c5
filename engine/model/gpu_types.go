package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
)

// GPUVertexSource is the WGSL VertexInput struct matching GPUVertex.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUModelDataSource is the WGSL ModelData struct matching GPUModelData.
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct of the scene shader.
// Size: 48 bytes, no padding required.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space
	Normal   [3]float32 // offset 12: vertex normal for lighting
	TexCoord [2]float32 // offset 24: UV texture coordinate
	Color    [4]float32 // offset 32: per-vertex RGBA color
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 48)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	for i := range 3 {
		put(i*4, g.Position[i])
		put(12+i*4, g.Normal[i])
	}
	put(24, g.TexCoord[0])
	put(28, g.TexCoord[1])
	for i := range 4 {
		put(32+i*4, g.Color[i])
	}
	return buf
}

// ComputeBoundingRadius returns the maximum distance from the origin across all vertices.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		maxDistSq = max(maxDistSq, p[0]*p[0]+p[1]*p[1]+p[2]*p[2])
	}
	return math32.Sqrt(maxDistSq)
}

// GPUModelData is the per-draw uniform block of the scene shader.
// Size: 128 bytes (two mat4x4<f32>).
type GPUModelData struct {
	Model         [16]float32 // offset  0: model-to-world transform
	ModelViewProj [16]float32 // offset 64: model-to-clip transform
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, 128)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.ModelViewProj[i]))
	}
	return buf
}
