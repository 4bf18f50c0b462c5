package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-hdr/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (144 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Size: 144 bytes (WGSL uniform aligned).
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset   0: combined view-projection matrix
	Projection     [16]float32 // offset  64: projection alone, for view-space geometry
	CameraPosition [3]float32  // offset 128: world-space eye position
	_pad           float32     // offset 140: padding to 144 bytes
}

// NewGPUCameraUniform builds the uniform from a view and a projection matrix. The eye position is
// recovered from the inverse view matrix; a singular view leaves it at the origin.
//
// Parameters:
//   - view: the world-to-view matrix
//   - projection: the view-to-clip matrix
//
// Returns:
//   - GPUCameraUniform: the uniform
func NewGPUCameraUniform(view, projection [16]float32) GPUCameraUniform {
	g := GPUCameraUniform{Projection: projection}
	common.Mul4(g.ViewProj[:], projection[:], view[:])
	var inv [16]float32
	if common.Invert4(inv[:], view[:]) {
		g.CameraPosition = [3]float32{inv[12], inv[13], inv[14]}
	}
	return g
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Projection[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	return buf
}
