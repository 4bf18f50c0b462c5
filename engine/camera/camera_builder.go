package camera

import "github.com/chewxy/math32"

// CameraBuilderOption configures a camera before its first matrices are built.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector. The space scene keeps +Y.
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithFov sets the vertical field of view in radians. Values outside (0, π) keep the default.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if fov > 0 && fov < math32.Pi {
			c.fov = fov
		}
	}
}

// WithViewport derives the aspect ratio from the surface the camera renders into. An empty
// surface, as reported by a minimized window, is ignored.
//
// Parameters:
//   - width, height: surface size in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.aspect = float32(width) / float32(height)
		}
	}
}

// WithClipPlanes sets the near and far clipping plane distances. The far plane bounds the
// starmap, so a pair with near <= 0 or far <= near is ignored.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets both planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if near <= 0 || far <= near {
			return
		}
		c.near = near
		c.far = far
	}
}

// WithController attaches a controller. The camera reads its position and target once all
// options are applied.
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

// WithOrbit attaches an orbit controller and starts at the field of view of its selected
// mode, so the first frame already frames the mode's target.
//
// Parameters:
//   - oc: the orbit controller to follow
//
// Returns:
//   - CameraBuilderOption: a function that sets the controller and the field of view
func WithOrbit(oc OrbitController) CameraBuilderOption {
	return func(c *cameraImpl) {
		WithController(oc)(c)
		WithFov(oc.Fov())(c)
	}
}
