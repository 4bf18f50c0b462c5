package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightSource is the WGSL SceneLight struct matching GPULight.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of the scene's directional light.
// Matches the WGSL SceneLight struct in the scene shader.
// Size: 32 bytes (WGSL uniform aligned).
type GPULight struct {
	Direction [3]float32 // offset  0: normalized direction the light travels in
	Ambient   float32    // offset 12: ambient term added to the diffuse factor
	Color     [3]float32 // offset 16: RGB radiance
	_pad      float32    // offset 28: padding to 32 bytes
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 32)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Direction[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Ambient))
	return buf
}

// ToGPULight converts a light into its GPU representation. Disabled lights marshal as black
// but keep their ambient term.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - GPULight: the GPU-ready struct
func ToGPULight(l Light) GPULight {
	g := GPULight{Direction: l.Direction(), Ambient: l.Ambient()}
	if l.Enabled() {
		g.Color = l.Radiance()
	}
	return g
}
