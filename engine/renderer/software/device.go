// Package software is a CPU implementation of the render device. It evaluates every
// post-process technique and rasterizes scene geometry into float buffers, spreading rows
// over a worker pool. It needs no window or GPU, so it backs headless snapshots and tests.
package software

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
)

// minBandRows keeps bands large enough that scheduling does not dominate small targets.
const minBandRows = 8

var (
	// ErrForeignTexture is returned when a texture created by another device is passed in.
	ErrForeignTexture = errors.New("texture does not belong to this device")
	// ErrReleased is returned when a released texture is used.
	ErrReleased = errors.New("texture has been released")
)

type device struct {
	mu *sync.Mutex

	width, height int
	back          *texture
	sprites       map[string]*texture
	live          map[*texture]struct{}

	workers int
	pool    worker.DynamicWorkerPool
	taskID  int

	passes int
	scenes int
}

// Device is the CPU render device. Besides the post-process device operations it owns the back
// buffer and exposes it as an image.
type Device interface {
	postprocess.Device

	// ConfigureSurface reallocates the back buffer.
	//
	// Parameters:
	//   - width: the back buffer width in pixels
	//   - height: the back buffer height in pixels
	ConfigureSurface(width, height int)

	// BeginFrame resets the per-frame counters.
	BeginFrame() error

	// EndFrame is a no-op: every draw completes before it returns.
	EndFrame()

	// Present is a no-op: the back buffer is read with Snapshot.
	Present()

	// Snapshot copies the back buffer into an 8-bit image.
	//
	// Returns:
	//   - image.Image: an *image.RGBA of the back buffer
	//   - error: always nil
	Snapshot() (image.Image, error)

	// Stats reports the technique passes and scene passes drawn since BeginFrame.
	Stats() (passes, scenes int)

	// LiveTextures reports how many created textures have not been released.
	LiveTextures() int

	// Release frees every texture. Pool workers exit on their own once idle.
	Release()
}

var _ Device = &device{}

// NewDevice creates a CPU render device.
//
// Parameters:
//   - options: variadic list of DeviceBuilderOption functions to configure the device
//
// Returns:
//   - Device: the device, with a back buffer already configured
func NewDevice(options ...DeviceBuilderOption) Device {
	d := &device{
		mu:      &sync.Mutex{},
		width:   640,
		height:  480,
		sprites: make(map[string]*texture),
		live:    make(map[*texture]struct{}),
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(d)
	}
	d.pool = worker.NewDynamicWorkerPool(d.workers, 256, 1*time.Second)
	d.ConfigureSurface(d.width, d.height)
	return d
}

func (d *device) Capabilities() postprocess.Capabilities {
	return postprocess.Capabilities{R16F: true}
}

func (d *device) CreateTexture(desc postprocess.TextureDesc) (postprocess.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %s: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	switch desc.Format {
	case postprocess.FormatRGBA8, postprocess.FormatRGBA16F, postprocess.FormatR16F, postprocess.FormatR32F:
	default:
		return nil, fmt.Errorf("texture %s: unsupported format %s", desc.Label, desc.Format)
	}

	t := newTexture(desc.Label, desc.Width, desc.Height, desc.Format)
	d.mu.Lock()
	d.live[t] = struct{}{}
	d.mu.Unlock()
	return t, nil
}

func (d *device) BackBuffer() postprocess.Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.back
}

func (d *device) RegisterSprite(name string, data *common.TextureStagingData) error {
	if data == nil || data.Width == 0 || data.Height == 0 {
		return fmt.Errorf("sprite %s: empty image", name)
	}
	if len(data.Pixels) < int(data.Width*data.Height*4) {
		return fmt.Errorf("sprite %s: %d bytes for %dx%d pixels", name, len(data.Pixels), data.Width, data.Height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sprites[name] = textureFromStaging(name, data)
	return nil
}

func (d *device) Clear(target postprocess.Texture, c [4]float32) error {
	t, err := d.resolve(target)
	if err != nil {
		return err
	}
	t.fill(c)
	return nil
}

func (d *device) Draw(p postprocess.Pass) error {
	if err := p.Validate(); err != nil {
		return err
	}
	target, err := d.resolve(p.Target)
	if err != nil {
		return fmt.Errorf("%s target: %w", p.Technique, err)
	}
	inputs := make([]*texture, len(p.Inputs))
	for i, in := range p.Inputs {
		if inputs[i], err = d.resolve(in); err != nil {
			return fmt.Errorf("%s input %d: %w", p.Technique, i, err)
		}
	}

	area := postprocess.Rect{W: target.width, H: target.height}
	if p.Scissor != nil {
		area = intersect(area, *p.Scissor)
	}
	if area.Empty() {
		return nil
	}

	program := bindTechnique(&p, inputs)
	d.parallelRows(area.Y, area.Y+area.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := area.X; x < area.X+area.W; x++ {
				u, v := p.Coords.At(x, y, target.width, target.height)
				target.write(x, y, program(u, v), p.Blend)
			}
		}
	})

	d.mu.Lock()
	d.passes++
	d.mu.Unlock()
	return nil
}

func (d *device) DrawScene(p postprocess.ScenePass) error {
	target, err := d.resolve(p.Target)
	if err != nil {
		return fmt.Errorf("scene target: %w", err)
	}
	sprites := make(map[string]*texture, len(p.Particles))
	d.mu.Lock()
	for _, batch := range p.Particles {
		s, ok := d.sprites[batch.Sprite]
		if !ok {
			d.mu.Unlock()
			return fmt.Errorf("particle sprite %q is not registered", batch.Sprite)
		}
		sprites[batch.Sprite] = s
	}
	d.scenes++
	d.mu.Unlock()

	depth := target.depthBuffer()
	if p.Clear {
		target.fill(p.ClearColor)
		target.clearDepth()
	}

	r := newRasterizer(target, depth, &p)
	for _, m := range p.Meshes {
		tris := r.meshTriangles(m)
		d.parallelRows(0, target.height, func(y0, y1 int) {
			r.fill(tris, y0, y1)
		})
	}
	for _, batch := range p.Particles {
		tris := r.particleTriangles(batch, sprites[batch.Sprite])
		d.parallelRows(0, target.height, func(y0, y1 int) {
			r.fill(tris, y0, y1)
		})
	}
	r.points(p.Points)
	return nil
}

func (d *device) ConfigureSurface(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.back != nil {
		d.back.Release()
	}
	d.width, d.height = max(width, 1), max(height, 1)
	d.back = newTexture("back_buffer", d.width, d.height, postprocess.FormatRGBA8)
}

func (d *device) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passes, d.scenes = 0, 0
	return nil
}

func (d *device) EndFrame() {}

func (d *device) Present() {}

func (d *device) Snapshot() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.back.Image(), nil
}

func (d *device) Stats() (passes, scenes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.passes, d.scenes
}

func (d *device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for t := range d.live {
		if t.released {
			delete(d.live, t)
			continue
		}
		n++
	}
	return n
}

func (d *device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for t := range d.live {
		t.Release()
	}
	clear(d.live)
	clear(d.sprites)
	d.back.Release()
}

// resolve checks that a texture was created by this device and is still alive.
func (d *device) resolve(t postprocess.Texture) (*texture, error) {
	st, ok := t.(*texture)
	if !ok || st == nil {
		return nil, ErrForeignTexture
	}
	if st.released {
		return nil, fmt.Errorf("%s: %w", st.label, ErrReleased)
	}
	d.mu.Lock()
	_, owned := d.live[st]
	owned = owned || st == d.back
	d.mu.Unlock()
	if !owned {
		return nil, fmt.Errorf("%s: %w", st.label, ErrForeignTexture)
	}
	return st, nil
}

// parallelRows splits [y0, y1) into bands and runs fn on each band through the worker pool,
// returning once every band is done. Bands never overlap, so fn may write its rows freely.
func (d *device) parallelRows(y0, y1 int, fn func(y0, y1 int)) {
	rows := y1 - y0
	if rows <= 0 {
		return
	}
	bands := min(d.workers*2, rows/minBandRows)
	if bands <= 1 || d.workers == 1 {
		fn(y0, y1)
		return
	}
	step := (rows + bands - 1) / bands

	var wg sync.WaitGroup
	for start := y0; start < y1; start += step {
		end := min(start+step, y1)
		wg.Add(1)
		d.mu.Lock()
		id := d.taskID
		d.taskID++
		d.mu.Unlock()
		d.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				fn(start, end)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func intersect(a, b postprocess.Rect) postprocess.Rect {
	x0, y0 := max(a.X, b.X), max(a.Y, b.Y)
	x1, y1 := min(a.X+a.W, b.X+b.W), min(a.Y+a.H, b.Y+b.H)
	return postprocess.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
