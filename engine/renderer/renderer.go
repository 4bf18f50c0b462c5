package renderer

import (
	"errors"
	"image"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/software"
	"github.com/Carmen-Shannon/oxy-hdr/engine/window"
)

var (
	// ErrSnapshotUnsupported is returned by Snapshot when the backend cannot read its surface.
	ErrSnapshotUnsupported = errors.New("backend cannot read back its surface")

	// ErrNoFrame is returned when the back buffer is drawn to outside BeginFrame/Present.
	ErrNoFrame = errors.New("no frame acquired")

	// ErrForeignTexture is returned when a texture created by another device is passed in.
	ErrForeignTexture = software.ErrForeignTexture

	// ErrReleasedTexture is returned when a released texture is used.
	ErrReleasedTexture = software.ErrReleased
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	frames      uint64

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	surfaceWidth         int
	surfaceHeight        int
	softwareWorkers      int
}

// Renderer owns the render device and the per-frame surface lifecycle. The HDR pipeline and the
// scene draw through Device; the engine drives BeginFrame, EndFrame and Present around them.
type Renderer interface {
	// Device returns the render device the post-process chain and the scene draw through.
	//
	// Returns:
	//   - postprocess.Device: the backend's device
	Device() postprocess.Device

	// BackendType reports which backend was created.
	BackendType() RendererBackendType

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Size returns the surface size last configured.
	Size() (width, height int)

	// SetPresentMode sets the surface present mode, applied on the next Resize.
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the back buffer for a new frame. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the surface could not be acquired
	BeginFrame() error

	// EndFrame finishes the frame and frees the frame's transient resources.
	// Does not present the surface; call Present after EndFrame to display the frame.
	EndFrame()

	// Present displays the finished frame.
	Present()

	// Frames returns the number of frames ended since creation.
	Frames() uint64

	// Snapshot copies the back buffer into an image.
	//
	// Returns:
	//   - image.Image: the back buffer contents
	//   - error: ErrSnapshotUnsupported when the backend cannot read back its surface
	Snapshot() (image.Image, error)

	// Release frees every device resource.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the given backend. The wgpu backend renders to the
// window's surface and panics if GPU initialization fails; the software backend renders to
// memory and ignores the window, which may then be nil.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - win: the window providing the surface and its initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		backendType:   backendType,
		surfaceWidth:  640,
		surfaceHeight: 480,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}
	if win != nil {
		r.surfaceWidth, r.surfaceHeight = win.Width(), win.Height()
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeSoftware:
		r.backend = newSoftwareRendererBackend(r.surfaceWidth, r.surfaceHeight, r.softwareWorkers)
	case BackendTypeWGPU:
		fallthrough
	default:
		if win == nil {
			panic("renderer: the wgpu backend needs a window surface")
		}
		r.backendType = BackendTypeWGPU
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(r.surfaceWidth, r.surfaceHeight)
	log.Printf("[Renderer] %s backend ready at %dx%d", r.backendType, r.surfaceWidth, r.surfaceHeight)
	return r
}

func (r *renderer) Device() postprocess.Device {
	return r.backend
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
	r.mu.Lock()
	r.surfaceWidth, r.surfaceHeight = width, height
	r.mu.Unlock()
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaceWidth, r.surfaceHeight
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
	r.mu.Lock()
	r.frames++
	r.mu.Unlock()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) Snapshot() (image.Image, error) {
	return r.backend.Snapshot()
}

func (r *renderer) Release() {
	r.backend.Release()
}
