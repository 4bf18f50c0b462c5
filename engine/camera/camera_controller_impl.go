package camera

import (
	"sync"

	"github.com/chewxy/math32"
)

// angleWrap is where the orbit angle restarts at 0.
const angleWrap = 6.28

// DefaultOrbitModes are the three space scene modes: a wide orbit of the origin, a close
// orbit of the spaceship, and a slow orbit of the comet.
var DefaultOrbitModes = []OrbitMode{
	{DistanceX: 90, DistanceY: 75, Height: 0, Fov: 0.12 * math32.Pi, StartAngle: 2 * math32.Pi, RotateDelay: 30},
	{DistanceX: 60, DistanceY: 60, Height: 10, Fov: 0.32 * math32.Pi, StartAngle: 70 * math32.Pi / 180, RotateDelay: 45},
	{DistanceX: 120, DistanceY: 120, Height: 0, Fov: 0.22 * math32.Pi, StartAngle: 115 * math32.Pi / 180, RotateDelay: 70},
}

// orbitRecord is the state a mode keeps across switches.
type orbitRecord struct {
	angle       float32
	initialized bool
	target      [3]float32
}

// orbitControllerImpl is the implementation of OrbitController.
type orbitControllerImpl struct {
	mu *sync.Mutex

	modes   []OrbitMode
	records []orbitRecord
	mode    int
	fov     float32

	position [3]float32
	target   [3]float32
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates an orbit controller with mode 0 selected around the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...CameraControllerOption) OrbitController {
	oc := &orbitControllerImpl{
		mu:    &sync.Mutex{},
		modes: DefaultOrbitModes,
	}
	for _, option := range options {
		option(oc)
	}
	oc.records = make([]orbitRecord, len(oc.modes))
	oc.mode = -1
	oc.SetMode(0, [3]float32{})
	return oc
}

// place computes the position for the current angle. Caller must hold the mutex.
func (oc *orbitControllerImpl) place() {
	m := oc.modes[oc.mode]
	r := &oc.records[oc.mode]
	oc.target = r.target
	oc.position = [3]float32{
		math32.Cos(r.angle)*m.DistanceX + r.target[0],
		m.Height + r.target[1],
		math32.Sin(r.angle)*m.DistanceY + r.target[2],
	}
}

func (oc *orbitControllerImpl) Position() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position[0], oc.position[1], oc.position[2]
}

func (oc *orbitControllerImpl) Target() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target[0], oc.target[1], oc.target[2]
}

func (oc *orbitControllerImpl) Mode() int {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.mode
}

func (oc *orbitControllerImpl) Modes() int {
	return len(oc.modes)
}

func (oc *orbitControllerImpl) SetMode(mode int, target [3]float32) bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if mode < 0 || mode >= len(oc.modes) {
		return false
	}
	oc.mode = mode
	r := &oc.records[mode]
	if !r.initialized {
		r.angle = oc.modes[mode].StartAngle
		r.initialized = true
	}
	r.target = target
	oc.fov = oc.modes[mode].Fov
	oc.place()
	return true
}

func (oc *orbitControllerImpl) Update(dt float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.place()
	r := &oc.records[oc.mode]
	r.angle += dt / oc.modes[oc.mode].RotateDelay
	if r.angle >= angleWrap {
		r.angle = 0
	}
}

func (oc *orbitControllerImpl) Nudge(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.records[oc.mode].angle += delta
	oc.place()
}

func (oc *orbitControllerImpl) Angle() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.records[oc.mode].angle
}

func (oc *orbitControllerImpl) Fov() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.fov
}

func (oc *orbitControllerImpl) Zoom(delta float32) bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	next := oc.fov + delta
	if next > 1 || next < 0 {
		return false
	}
	oc.fov = next
	return true
}
