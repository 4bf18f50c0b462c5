package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialSource is the WGSL MaterialUniform struct matching GPUMaterial.
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUMaterial is the GPU-aligned uniform for the scene fragment shader.
// Size: 64 bytes (four vec4<f32>, std140 aligned).
type GPUMaterial struct {
	Albedo   [4]float32 // offset 0
	Emissive [4]float32 // offset 16
	Glow     [4]float32 // offset 32
	Params   [4]float32 // offset 48: glow bias, shell offset, shading, unused
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 64)
	for i, v := range [4][4]float32{g.Albedo, g.Emissive, g.Glow, g.Params} {
		for j, f := range v {
			binary.LittleEndian.PutUint32(buf[(i*4+j)*4:], math.Float32bits(f))
		}
	}
	return buf
}

// ToGPUMaterial packs a material for one draw.
//
// Parameters:
//   - m: the material
//   - shellOffset: distance vertices are pushed along their normal (glow shells)
//
// Returns:
//   - GPUMaterial: the packed uniform
func ToGPUMaterial(m Material, shellOffset float32) GPUMaterial {
	return GPUMaterial{
		Albedo:   m.Albedo(),
		Emissive: m.Emissive(),
		Glow:     m.Glow(),
		Params:   [4]float32{m.GlowBias(), shellOffset, float32(m.Shading()), 0},
	}
}
