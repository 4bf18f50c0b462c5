package renderer

import "github.com/Carmen-Shannon/oxy-hdr/engine/renderer/software"

// softwareRendererBackend adapts the CPU device to the backend interface. There is no display
// surface, so the present mode has nothing to apply to.
type softwareRendererBackend struct {
	software.Device
}

var _ RendererBackend = &softwareRendererBackend{}

func newSoftwareRendererBackend(width, height, workers int) *softwareRendererBackend {
	opts := []software.DeviceBuilderOption{software.WithSize(width, height)}
	if workers > 0 {
		opts = append(opts, software.WithWorkers(workers))
	}
	return &softwareRendererBackend{Device: software.NewDevice(opts...)}
}

func (b *softwareRendererBackend) SetPresentMode(PresentMode) {}
