package renderer

import (
	"image"

	"github.com/Carmen-Shannon/oxy-hdr/engine/postprocess"
)

// RendererBackendType identifies the device implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeSoftware selects the CPU backend. It needs no window or GPU and keeps its back
	// buffer in memory, which makes it the backend for headless snapshots and tests.
	BackendTypeSoftware
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for the scene pass.
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the interface every backend implements: the post-process device plus the
// per-frame surface lifecycle.
type RendererBackend interface {
	postprocess.Device

	// ConfigureSurface (re)creates the back buffer and any size-dependent attachments.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode. It takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the back buffer for a new frame.
	//
	// Returns:
	//   - error: an error if the surface could not be acquired
	BeginFrame() error

	// EndFrame submits all work recorded since BeginFrame.
	EndFrame()

	// Present shows the finished frame.
	Present()

	// Snapshot copies the back buffer into an image.
	//
	// Returns:
	//   - image.Image: the back buffer contents
	//   - error: ErrSnapshotUnsupported when the backend cannot read back its surface
	Snapshot() (image.Image, error)

	// Release frees every device resource held by the backend.
	Release()
}
