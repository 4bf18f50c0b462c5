package particle

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUVertexSource is the WGSL ParticleVertex struct matching the packed Vertex layout.
//
//go:embed assets/particle_vertex.wgsl
var GPUVertexSource string

// VertexStride is the packed size of one Vertex: position (12), color (16), uv (8).
const VertexStride = 36

// MarshalVertices packs quad vertices for GPU upload.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: VertexStride bytes per vertex
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		b := buf[i*VertexStride:]
		for k := range 3 {
			binary.LittleEndian.PutUint32(b[k*4:], math.Float32bits(v.Position[k]))
		}
		for k := range 4 {
			binary.LittleEndian.PutUint32(b[12+k*4:], math.Float32bits(v.Color[k]))
		}
		binary.LittleEndian.PutUint32(b[28:], math.Float32bits(v.UV[0]))
		binary.LittleEndian.PutUint32(b[32:], math.Float32bits(v.UV[1]))
	}
	return buf
}

// MarshalIndices packs indices as little-endian uint32.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
