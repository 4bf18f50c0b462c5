package software

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/particle"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
)

// nearW drops triangles with a vertex at or behind the eye; there is no near-plane clipping.
const nearW = 1e-4

// minArea is the smallest screen-space triangle, in square pixels, worth rasterizing.
// Slivers below it cover no pixel center and their barycentrics blow up.
const minArea = 1e-6

type vertex struct {
	clip   [4]float32
	world  [3]float32
	normal [3]float32
	color  [4]float32
	uv     [2]float32
}

// fragment carries the perspective-correct interpolated vertex attributes of one pixel.
type fragment struct {
	world  [3]float32
	normal [3]float32
	color  [4]float32
	uv     [2]float32
}

type triangle struct {
	v      [3]vertex
	sx, sy [3]float32
	z      [3]float32
	invW   [3]float32
	area   float32

	minX, maxX, minY, maxY int
}

// batch is a set of triangles sharing one material state.
type batch struct {
	tris       []triangle
	shade      func(f *fragment) [4]float32
	blend      material.BlendMode
	depthWrite bool
}

// rasterizer draws one ScenePass into a target with a depth buffer.
type rasterizer struct {
	target *texture
	depth  []float32

	viewProj   [16]float32
	projection [16]float32
	eye        [3]float32
	light      light.GPULight
}

func newRasterizer(target *texture, depth []float32, p *postprocess.ScenePass) *rasterizer {
	r := &rasterizer{
		target:     target,
		depth:      depth,
		projection: p.Projection,
		light:      p.Light,
	}
	common.Mul4(r.viewProj[:], p.Projection[:], p.View[:])

	var inv [16]float32
	if common.Invert4(inv[:], p.View[:]) {
		r.eye = [3]float32{inv[12], inv[13], inv[14]}
	}
	return r
}

// meshTriangles transforms a mesh to clip space and sets up its front-facing triangles.
func (r *rasterizer) meshTriangles(m postprocess.MeshDraw) batch {
	mat := m.Material
	if mat == nil {
		mat = material.NewMaterial()
	}
	b := batch{blend: mat.Blend(), depthWrite: mat.DepthWrite()}
	if mat.Shading() == material.ShadingGlow {
		b.shade = r.glowShader(mat)
	} else {
		b.shade = r.litShader(mat)
	}
	if m.Model == nil {
		return b
	}

	src := m.Model.Vertices()
	verts := make([]vertex, len(src))
	for i, gv := range src {
		pos := gv.Position
		if m.ShellOffset != 0 {
			pos = common.Add3(pos, common.Scale3(gv.Normal, m.ShellOffset))
		}
		w := common.TransformPoint(m.ModelMatrix[:], pos)
		world := [3]float32{w[0], w[1], w[2]}
		verts[i] = vertex{
			clip:   common.TransformPoint(r.viewProj[:], world),
			world:  world,
			normal: common.Normalize3(common.TransformDirection(m.ModelMatrix[:], gv.Normal)),
			color:  gv.Color,
			uv:     gv.TexCoord,
		}
	}

	idx := m.Model.Indices()
	b.tris = make([]triangle, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		if t, ok := r.setup(verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]], true); ok {
			b.tris = append(b.tris, t)
		}
	}
	return b
}

// particleTriangles projects view-space particle quads. Quads are not culled and blend
// additively without writing depth.
func (r *rasterizer) particleTriangles(pb postprocess.ParticleBatch, sprite *texture) batch {
	b := batch{
		blend: material.BlendAdditive,
		shade: func(f *fragment) [4]float32 {
			s := sprite.Sample(f.uv[0], f.uv[1])
			return [4]float32{f.color[0] * s[0], f.color[1] * s[1], f.color[2] * s[2], f.color[3] * s[3]}
		},
	}

	quads := len(pb.Vertices) / 4
	verts := make([]vertex, quads*4)
	for i := range verts {
		pv := pb.Vertices[i]
		pos := [3]float32(pv.Position)
		verts[i] = vertex{
			clip:  common.TransformPoint(r.projection[:], pos),
			world: pos,
			color: [4]float32(pv.Color),
			uv:    pv.UV,
		}
	}

	idx := particle.QuadIndices(quads)
	b.tris = make([]triangle, 0, quads*2)
	for i := 0; i+2 < len(idx); i += 3 {
		if t, ok := r.setup(verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]], false); ok {
			b.tris = append(b.tris, t)
		}
	}
	return b
}

// setup projects a triangle to the screen. Counter-clockwise triangles in normalized device
// coordinates face the viewer; with cull set, the rest are dropped.
func (r *rasterizer) setup(a, b, c vertex, cull bool) (triangle, bool) {
	t := triangle{v: [3]vertex{a, b, c}}
	w, h := float32(r.target.width), float32(r.target.height)

	var nx, ny [3]float32
	for i, v := range t.v {
		if v.clip[3] <= nearW {
			return t, false
		}
		inv := 1 / v.clip[3]
		nx[i], ny[i] = v.clip[0]*inv, v.clip[1]*inv
		t.z[i] = v.clip[2] * inv
		t.invW[i] = inv
		t.sx[i] = (nx[i]*0.5 + 0.5) * w
		t.sy[i] = (0.5 - ny[i]*0.5) * h
	}

	ndcArea := (nx[1]-nx[0])*(ny[2]-ny[0]) - (nx[2]-nx[0])*(ny[1]-ny[0])
	if ndcArea == 0 || (cull && ndcArea < 0) {
		return t, false
	}
	t.area = edge(t.sx[0], t.sy[0], t.sx[1], t.sy[1], t.sx[2], t.sy[2])
	if !finite(t.area) || math32.Abs(t.area) < minArea {
		return t, false
	}

	t.minX = max(int(math32.Floor(min(t.sx[0], t.sx[1], t.sx[2]))), 0)
	t.maxX = min(int(math32.Ceil(max(t.sx[0], t.sx[1], t.sx[2]))), r.target.width-1)
	t.minY = max(int(math32.Floor(min(t.sy[0], t.sy[1], t.sy[2]))), 0)
	t.maxY = min(int(math32.Ceil(max(t.sy[0], t.sy[1], t.sy[2]))), r.target.height-1)
	if t.minX > t.maxX || t.minY > t.maxY {
		return t, false
	}
	return t, true
}

// fill rasterizes the rows [y0, y1) of every triangle in the batch.
func (r *rasterizer) fill(b batch, y0, y1 int) {
	width := r.target.width
	var f fragment
	for ti := range b.tris {
		t := &b.tris[ti]
		for y := max(t.minY, y0); y <= min(t.maxY, y1-1); y++ {
			py := float32(y) + 0.5
			for x := t.minX; x <= t.maxX; x++ {
				px := float32(x) + 0.5
				b0 := edge(t.sx[1], t.sy[1], t.sx[2], t.sy[2], px, py) / t.area
				b1 := edge(t.sx[2], t.sy[2], t.sx[0], t.sy[0], px, py) / t.area
				b2 := 1 - b0 - b1
				if !(b0 >= 0 && b1 >= 0 && b2 >= 0) || !finite(b0+b1) {
					continue
				}
				z := b0*t.z[0] + b1*t.z[1] + b2*t.z[2]
				i := y*width + x
				if !(z >= 0 && z <= 1) || z >= r.depth[i] {
					continue
				}

				interpolate(t, b0, b1, b2, &f)
				c := b.shade(&f)
				if !finite(c[0] + c[1] + c[2] + c[3]) {
					continue
				}
				r.target.write(x, y, c, b.blend)
				if b.depthWrite {
					r.depth[i] = z
				}
			}
		}
	}
}

// points plots world-space points as single pixels, ignoring depth.
func (r *rasterizer) points(pts []postprocess.PointVertex) {
	w, h := r.target.width, r.target.height
	for _, p := range pts {
		c := common.TransformPoint(r.viewProj[:], p.Position)
		if c[3] <= nearW {
			continue
		}
		nx, ny := c[0]/c[3], c[1]/c[3]
		if nx < -1 || nx > 1 || ny < -1 || ny > 1 {
			continue
		}
		x := int((nx*0.5 + 0.5) * float32(w))
		y := int((0.5 - ny*0.5) * float32(h))
		if x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		r.target.write(x, y, p.Color, material.BlendOpaque)
	}
}

// litShader is emissive + albedo * vertex color * (ambient + light * max(0, N.-L)).
func (r *rasterizer) litShader(mat material.Material) func(f *fragment) [4]float32 {
	albedo, emissive := mat.Albedo(), mat.Emissive()
	toLight := common.Scale3(common.Normalize3(r.light.Direction), -1)
	ambient, radiance := r.light.Ambient, r.light.Color
	return func(f *fragment) [4]float32 {
		diffuse := max(0, common.Dot3(common.Normalize3(f.normal), toLight))
		var out [4]float32
		for k := range 3 {
			out[k] = emissive[k] + albedo[k]*f.color[k]*(ambient+radiance[k]*diffuse)
		}
		out[3] = albedo[3] * f.color[3]
		return out
	}
}

// glowShader is glow * saturate(N.-L + bias) * (1 - |N.V|): bright at the lit limb and fading
// where the shell faces the viewer.
func (r *rasterizer) glowShader(mat material.Material) func(f *fragment) [4]float32 {
	glow, bias := mat.Glow(), mat.GlowBias()
	toLight := common.Scale3(common.Normalize3(r.light.Direction), -1)
	eye := r.eye
	return func(f *fragment) [4]float32 {
		n := common.Normalize3(f.normal)
		view := common.Normalize3(common.Sub3(eye, f.world))
		k := common.Saturate(common.Dot3(n, toLight)+bias) * (1 - math32.Abs(common.Dot3(n, view)))
		return [4]float32{glow[0] * k, glow[1] * k, glow[2] * k, 1}
	}
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func interpolate(t *triangle, b0, b1, b2 float32, f *fragment) {
	q0, q1, q2 := b0*t.invW[0], b1*t.invW[1], b2*t.invW[2]
	s := 1 / (q0 + q1 + q2)
	q0, q1, q2 = q0*s, q1*s, q2*s
	a, b, c := &t.v[0], &t.v[1], &t.v[2]
	for k := range 3 {
		f.world[k] = a.world[k]*q0 + b.world[k]*q1 + c.world[k]*q2
		f.normal[k] = a.normal[k]*q0 + b.normal[k]*q1 + c.normal[k]*q2
	}
	for k := range 4 {
		f.color[k] = a.color[k]*q0 + b.color[k]*q1 + c.color[k]*q2
	}
	for k := range 2 {
		f.uv[k] = a.uv[k]*q0 + b.uv[k]*q1 + c.uv[k]*q2
	}
}
