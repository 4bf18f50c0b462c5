package model

import (
	"github.com/chewxy/math32"
)

// NewSphere builds a UV sphere centered on the origin. Triangles wind counter-clockwise
// when seen from outside.
//
// Parameters:
//   - name: the model identifier
//   - radius: sphere radius
//   - stacks: latitude divisions (at least 2)
//   - slices: longitude divisions (at least 3)
//   - color: per-vertex color
//
// Returns:
//   - Model: the sphere mesh
func NewSphere(name string, radius float32, stacks, slices int, color [4]float32) Model {
	return newDisplacedSphere(name, radius, stacks, slices, color, nil)
}

// NewComet builds a lumpy sphere for a comet nucleus.
//
// Parameters:
//   - name: the model identifier
//   - radius: mean radius
//   - color: per-vertex color
//
// Returns:
//   - Model: the nucleus mesh
func NewComet(name string, radius float32, color [4]float32) Model {
	return newDisplacedSphere(name, radius, 12, 16, color, func(theta, phi float32) float32 {
		return 1 + 0.18*math32.Sin(3*theta)*math32.Cos(2*phi) + 0.07*math32.Sin(theta)*math32.Sin(5*phi)
	})
}

func newDisplacedSphere(name string, radius float32, stacks, slices int, color [4]float32, displace func(theta, phi float32) float32) Model {
	stacks = max(stacks, 2)
	slices = max(slices, 3)

	vertices := make([]GPUVertex, 0, (stacks+1)*(slices+1))
	for i := 0; i <= stacks; i++ {
		theta := math32.Pi * float32(i) / float32(stacks)
		st, ct := math32.Sincos(theta)
		if i == stacks {
			st, ct = 0, -1
		}
		for j := 0; j <= slices; j++ {
			phi := 2 * math32.Pi * float32(j) / float32(slices)
			sp, cp := math32.Sincos(phi)
			n := [3]float32{st * cp, ct, st * sp}
			r := radius
			if displace != nil {
				r *= displace(theta, phi)
			}
			vertices = append(vertices, GPUVertex{
				Position: [3]float32{n[0] * r, n[1] * r, n[2] * r},
				Normal:   n,
				TexCoord: [2]float32{float32(j) / float32(slices), float32(i) / float32(stacks)},
				Color:    color,
			})
		}
	}

	// The first and last rows are fans: the quad edge on the pole collapses to a point, so
	// only the triangle with a real base is emitted there.
	indices := make([]uint32, 0, (stacks-1)*slices*6)
	row := uint32(slices + 1)
	for i := range stacks {
		for j := range slices {
			a := uint32(i)*row + uint32(j)
			b := a + row
			c := b + 1
			d := a + 1
			if i > 0 {
				indices = append(indices, a, d, b)
			}
			if i < stacks-1 {
				indices = append(indices, d, c, b)
			}
		}
	}

	return NewModel(WithName(name), WithVertices(vertices), WithIndices(indices))
}

// NewSpaceship builds a small box-hulled ship whose nose points down -Z and whose
// engine nozzle ends at z = +8.
//
// Parameters:
//   - name: the model identifier
//   - color: hull color
//
// Returns:
//   - Model: the ship mesh
func NewSpaceship(name string, color [4]float32) Model {
	engine := [4]float32{color[0] * 0.5, color[1] * 0.5, color[2] * 0.5, color[3]}
	var vertices []GPUVertex
	var indices []uint32
	add := func(lo, hi [3]float32, c [4]float32) {
		vertices, indices = appendBox(vertices, indices, lo, hi, c)
	}

	add([3]float32{-2, -1.5, -12}, [3]float32{2, 1.5, 5}, color)    // hull
	add([3]float32{-1, -0.8, -16}, [3]float32{1, 0.8, -12}, color)  // nose
	add([3]float32{-11, -0.3, -2}, [3]float32{11, 0.3, 4}, color)   // wings
	add([3]float32{-1.5, 1.5, -4}, [3]float32{1.5, 2.5, 2}, color)  // cockpit
	add([3]float32{-1.2, -1.2, 5}, [3]float32{1.2, 1.2, 8}, engine) // nozzle

	return NewModel(WithName(name), WithVertices(vertices), WithIndices(indices))
}

// appendBox appends an axis-aligned box with flat face normals.
func appendBox(vertices []GPUVertex, indices []uint32, lo, hi [3]float32, color [4]float32) ([]GPUVertex, []uint32) {
	center := [3]float32{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2, (lo[2] + hi[2]) / 2}
	half := [3]float32{(hi[0] - lo[0]) / 2, (hi[1] - lo[1]) / 2, (hi[2] - lo[2]) / 2}

	// normal axis, then u and v axes with u × v = n
	faces := [6]struct {
		n, u, v [3]float32
	}{
		{[3]float32{1, 0, 0}, [3]float32{0, 1, 0}, [3]float32{0, 0, 1}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{0, 0, 1}, [3]float32{1, 0, 0}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{0, 1, 0}, [3]float32{1, 0, 0}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for k := range 3 {
				p[k] = center[k] + (f.n[k]+c[0]*f.u[k]+c[1]*f.v[k])*half[k]
			}
			vertices = append(vertices, GPUVertex{
				Position: p,
				Normal:   f.n,
				TexCoord: [2]float32{(c[0] + 1) / 2, (c[1] + 1) / 2},
				Color:    color,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
