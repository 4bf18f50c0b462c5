package particle

import (
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// MaxParticles caps the pool size of any emitter.
const MaxParticles = 1000

const degToRad = math32.Pi / 180

// Vertex is one corner of a camera-facing particle quad in view space.
type Vertex struct {
	Position f32.Vec3
	Color    f32.Vec4
	UV       [2]float32
}

type particleSystemImpl struct {
	mu *sync.Mutex

	emitter  f32.Vec3
	emitting bool
	alive    int
	pool     []Particle

	pitch, yaw                     float32 // radians
	pitchVariation, yawVariation   float32 // radians
	size, sizeVariance             float32
	minLife, maxLife               float32
	minVelocity, maxVelocity       float32
	colorStart, colorStartVariance f32.Vec4
	colorEnd, colorEndVariance     f32.Vec4

	sprite string
	rng    *rand.Rand
}

// ParticleSystem is a cone emitter over a fixed pool of particles. Dead slots are
// re-emitted immediately while the emitter runs; once stopped, the pool drains and the
// system goes dormant.
type ParticleSystem interface {
	// Update advances every alive particle by dt and re-emits dead slots while emitting.
	// Does nothing when the emitter is stopped and no particle is alive.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Billboards builds one camera-facing quad per alive particle, directly in view space.
	// Vertices are ordered as a 4-vertex strip per quad with UVs (0,1), (0,0), (1,1), (1,0).
	// Returns nil under the same dormant condition as Update.
	//
	// Parameters:
	//   - view: the column-major world-to-view matrix
	//
	// Returns:
	//   - []Vertex: 4 vertices per alive particle
	Billboards(view [16]float32) []Vertex

	// Start turns the emitter on.
	Start()

	// Stop turns the emitter off; alive particles live out their remaining life.
	Stop()

	// Emitting reports whether the emitter is on.
	Emitting() bool

	// AliveCount returns the number of alive particles as of the last Update.
	AliveCount() int

	// Capacity returns the fixed pool size.
	Capacity() int

	// Particles returns a copy of the pool.
	Particles() []Particle

	// Position returns the emitter position.
	Position() f32.Vec3

	// SetPosition moves the emitter. Alive particles are not moved.
	SetPosition(pos f32.Vec3)

	// SetAngles sets the emission direction in degrees. Pitch is clamped to [-90, 90] and
	// yaw to [-360, 360].
	SetAngles(pitchDeg, yawDeg float32)

	// SetVariation sets the emission cone spread in degrees, clamped to [0, 180] for pitch
	// and [0, 360] for yaw.
	SetVariation(pitchVarDeg, yawVarDeg float32)

	// SetColors sets the start and end colors and the random variance added to each.
	SetColors(start, startVariance, end, endVariance f32.Vec4)

	// SetLife sets the lifetime range in seconds.
	SetLife(minLife, maxLife float32)

	// SetSize sets the size at emission and the size reached at end of life.
	SetSize(start, end float32)

	// SetVelocity sets the speed range in units per second.
	SetVelocity(minVelocity, maxVelocity float32)

	// Sprite returns the name of the sprite texture drawn for each particle.
	Sprite() string
}

var _ ParticleSystem = &particleSystemImpl{}

// NewParticleSystem creates a stopped emitter at the origin with a pool of MaxParticles.
//
// Parameters:
//   - options: functional options to configure the emitter
//
// Returns:
//   - ParticleSystem: the new emitter
func NewParticleSystem(options ...ParticleSystemBuilderOption) ParticleSystem {
	ps := &particleSystemImpl{
		mu:   &sync.Mutex{},
		pool: make([]Particle, MaxParticles),
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, option := range options {
		option(ps)
	}
	return ps
}

func (ps *particleSystemImpl) Update(dt float32) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.emitting && ps.alive <= 0 {
		return
	}

	ps.alive = 0
	for i := range ps.pool {
		p := &ps.pool[i]
		if p.Alive {
			p.Update(dt)
		}
		if p.Alive {
			ps.alive++
		} else if ps.emitting {
			ps.emit(p)
			ps.alive++
		}
	}
}

func (ps *particleSystemImpl) Billboards(view [16]float32) []Vertex {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.emitting && ps.alive <= 0 {
		return nil
	}

	out := make([]Vertex, 0, ps.alive*4)
	for i := range ps.pool {
		p := &ps.pool[i]
		if !p.Alive {
			continue
		}
		v := common.TransformPoint(view[:], [3]float32(p.Position))
		half := p.Size / 2
		var c f32.Vec4
		for k := range 4 {
			c[k] = common.Saturate(p.Color[k])
		}
		out = append(out,
			Vertex{Position: f32.Vec3{v[0] - half, v[1] - half, v[2]}, Color: c, UV: [2]float32{0, 1}},
			Vertex{Position: f32.Vec3{v[0] - half, v[1] + half, v[2]}, Color: c, UV: [2]float32{0, 0}},
			Vertex{Position: f32.Vec3{v[0] + half, v[1] - half, v[2]}, Color: c, UV: [2]float32{1, 1}},
			Vertex{Position: f32.Vec3{v[0] + half, v[1] + half, v[2]}, Color: c, UV: [2]float32{1, 0}},
		)
	}
	return out
}

// QuadIndices returns triangle-list indices for n quads laid out as 4-vertex strips.
//
// Parameters:
//   - n: the number of quads
//
// Returns:
//   - []uint32: 6 indices per quad
func QuadIndices(n int) []uint32 {
	out := make([]uint32, 0, n*6)
	for q := range n {
		b := uint32(q * 4)
		out = append(out, b, b+1, b+2, b+2, b+1, b+3)
	}
	return out
}

func (ps *particleSystemImpl) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.emitting = true
}

func (ps *particleSystemImpl) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.emitting = false
}

func (ps *particleSystemImpl) Emitting() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.emitting
}

func (ps *particleSystemImpl) AliveCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.alive
}

func (ps *particleSystemImpl) Capacity() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.pool)
}

func (ps *particleSystemImpl) Particles() []Particle {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]Particle(nil), ps.pool...)
}

func (ps *particleSystemImpl) Position() f32.Vec3 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.emitter
}

func (ps *particleSystemImpl) SetPosition(pos f32.Vec3) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.emitter = pos
}

func (ps *particleSystemImpl) SetAngles(pitchDeg, yawDeg float32) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.setAngles(pitchDeg, yawDeg)
}

func (ps *particleSystemImpl) SetVariation(pitchVarDeg, yawVarDeg float32) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.setVariation(pitchVarDeg, yawVarDeg)
}

func (ps *particleSystemImpl) SetColors(start, startVariance, end, endVariance f32.Vec4) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.colorStart, ps.colorStartVariance = start, startVariance
	ps.colorEnd, ps.colorEndVariance = end, endVariance
}

func (ps *particleSystemImpl) SetLife(minLife, maxLife float32) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.minLife, ps.maxLife = minLife, maxLife
}

func (ps *particleSystemImpl) SetSize(start, end float32) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.size, ps.sizeVariance = start, end-start
}

func (ps *particleSystemImpl) SetVelocity(minVelocity, maxVelocity float32) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.minVelocity, ps.maxVelocity = minVelocity, maxVelocity
}

func (ps *particleSystemImpl) Sprite() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.sprite
}

func (ps *particleSystemImpl) setAngles(pitchDeg, yawDeg float32) {
	ps.pitch = common.Clamp(pitchDeg, -90, 90) * degToRad
	ps.yaw = common.Clamp(yawDeg, -360, 360) * degToRad
}

func (ps *particleSystemImpl) setVariation(pitchVarDeg, yawVarDeg float32) {
	ps.pitchVariation = common.Clamp(pitchVarDeg, 0, 180) * degToRad
	ps.yawVariation = common.Clamp(yawVarDeg, 0, 360) * degToRad
}

// random returns a uniform value in [lo, hi].
func (ps *particleSystemImpl) random(lo, hi float32) float32 {
	return ps.rng.Float32()*(hi-lo) + lo
}

// Direction converts emitter angles in radians to a unit direction vector.
//
// Parameters:
//   - pitch: rotation above the XZ plane
//   - yaw: rotation about the Y axis
//
// Returns:
//   - f32.Vec3: (−sin(yaw)·cos(pitch), sin(pitch), cos(pitch)·cos(yaw))
func Direction(pitch, yaw float32) f32.Vec3 {
	sp, cp := math32.Sincos(pitch)
	sy, cy := math32.Sincos(yaw)
	return f32.Vec3{-sy * cp, sp, cp * cy}
}

// emit initializes p from the emitter configuration. Caller must hold the mutex.
func (ps *particleSystemImpl) emit(p *Particle) {
	pitch := ps.random(-0.5, 0.5)*ps.pitchVariation + ps.pitch
	yaw := ps.random(-0.5, 0.5)*ps.yawVariation + ps.yaw

	dir := Direction(pitch, yaw)
	speed := ps.random(ps.minVelocity, ps.maxVelocity)
	velocity := f32.Vec3{dir[0] * speed, dir[1] * speed, dir[2] * speed}

	life := ps.random(ps.minLife, ps.maxLife)

	start := varied(ps.colorStart, ps.colorStartVariance, ps.random(0, 1))
	end := varied(ps.colorEnd, ps.colorEndVariance, ps.random(0, 1))

	var delta f32.Vec4
	var sizeDelta float32
	if life > 0 {
		for i := range 4 {
			delta[i] = (end[i] - start[i]) / life
		}
		sizeDelta = ps.sizeVariance / life
	}

	p.Init(ps.emitter, velocity, start, delta, life, ps.size, sizeDelta)
}

// varied returns base + variance·t with every channel clamped to [0, 1].
func varied(base, variance f32.Vec4, t float32) f32.Vec4 {
	var out f32.Vec4
	for i := range 4 {
		out[i] = common.Saturate(base[i] + variance[i]*t)
	}
	return out
}
