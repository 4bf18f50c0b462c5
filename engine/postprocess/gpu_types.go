package postprocess

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess/kernel"
)

// GPUParamsSource is the WGSL Params struct matching GPUParams.
//
//go:embed assets/params.wgsl
var GPUParamsSource string

// GPUPointVertexSource is the WGSL PointVertex struct matching the packed PointVertex layout.
//
//go:embed assets/point_vertex.wgsl
var GPUPointVertexSource string

// PointVertexStride is the packed size of one PointVertex: position (12), color (16).
const PointVertexStride = 28

// GPUParams is the uniform form of a pass's Params. Offsets widen to vec4 because uniform
// arrays have a 16-byte stride.
// Size: 560 bytes.
type GPUParams struct {
	Offsets     [kernel.MaxSamples][4]float32 // offset   0
	Weights     [kernel.MaxSamples][4]float32 // offset 256
	Coords      [4]float32                    // offset 512: U0, V0, U1, V1
	SampleCount uint32                        // offset 528
	ElapsedTime float32                       // offset 532
	MiddleGray  float32                       // offset 536
	BloomScale  float32                       // offset 540
	StarScale   float32                       // offset 544
	ToneMap     uint32                        // offset 548
	BlueShift   uint32                        // offset 552
	InputCount  uint32                        // offset 556
}

// Size returns the size of the GPUParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (560)
func (g *GPUParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUParams struct for upload.
//
// Returns:
//   - []byte: 560-byte buffer ready for GPU upload
func (g *GPUParams) Marshal() []byte {
	buf := make([]byte, 560)
	putF := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	for i := range kernel.MaxSamples {
		for k := range 4 {
			putF(i*16+k*4, g.Offsets[i][k])
			putF(256+i*16+k*4, g.Weights[i][k])
		}
	}
	for k := range 4 {
		putF(512+k*4, g.Coords[k])
	}
	binary.LittleEndian.PutUint32(buf[528:], g.SampleCount)
	putF(532, g.ElapsedTime)
	putF(536, g.MiddleGray)
	putF(540, g.BloomScale)
	putF(544, g.StarScale)
	binary.LittleEndian.PutUint32(buf[548:], g.ToneMap)
	binary.LittleEndian.PutUint32(buf[552:], g.BlueShift)
	binary.LittleEndian.PutUint32(buf[556:], g.InputCount)
	return buf
}

// ToGPUParams converts a pass into its uniform block.
//
// Parameters:
//   - p: the pass
//
// Returns:
//   - GPUParams: the uniform block
func ToGPUParams(p *Pass) GPUParams {
	g := GPUParams{
		Coords:      [4]float32{p.Coords.U0, p.Coords.V0, p.Coords.U1, p.Coords.V1},
		SampleCount: uint32(p.Params.SampleCount),
		ElapsedTime: p.Params.ElapsedTime,
		MiddleGray:  p.Params.MiddleGray,
		BloomScale:  p.Params.BloomScale,
		StarScale:   p.Params.StarScale,
		InputCount:  uint32(len(p.Inputs)),
		Weights:     p.Params.Weights,
	}
	for i, o := range p.Params.Offsets {
		g.Offsets[i] = [4]float32{o[0], o[1], 0, 0}
	}
	if p.Params.ToneMap {
		g.ToneMap = 1
	}
	if p.Params.BlueShift {
		g.BlueShift = 1
	}
	return g
}

// MarshalPoints packs point vertices for upload.
//
// Parameters:
//   - points: the points to pack
//
// Returns:
//   - []byte: PointVertexStride bytes per point
func MarshalPoints(points []PointVertex) []byte {
	buf := make([]byte, len(points)*PointVertexStride)
	for i, p := range points {
		b := buf[i*PointVertexStride:]
		for k := range 3 {
			binary.LittleEndian.PutUint32(b[k*4:], math.Float32bits(p.Position[k]))
		}
		for k := range 4 {
			binary.LittleEndian.PutUint32(b[12+k*4:], math.Float32bits(p.Color[k]))
		}
	}
	return buf
}
