package software

// DeviceBuilderOption is a functional option applied to a device during construction via NewDevice.
type DeviceBuilderOption func(*device)

// WithSize sets the initial back buffer size. The default is 640x480.
//
// Parameters:
//   - width: back buffer width in pixels
//   - height: back buffer height in pixels
//
// Returns:
//   - DeviceBuilderOption: a function that applies the size option to a device
func WithSize(width, height int) DeviceBuilderOption {
	return func(d *device) {
		d.width = width
		d.height = height
	}
}

// WithWorkers sets how many pool workers evaluate row bands. Values below 1 are raised to 1,
// which keeps every draw on the calling goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - DeviceBuilderOption: a function that applies the worker option to a device
func WithWorkers(n int) DeviceBuilderOption {
	return func(d *device) {
		d.workers = max(n, 1)
	}
}
