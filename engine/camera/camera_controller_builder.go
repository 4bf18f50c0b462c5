package camera

// CameraControllerOption is a functional option for configuring an orbit controller.
type CameraControllerOption func(*orbitControllerImpl)

// WithOrbitModes replaces the mode table. An empty table keeps the defaults.
//
// Parameters:
//   - modes: the modes, indexed by mode number
//
// Returns:
//   - CameraControllerOption: the configuration function
func WithOrbitModes(modes ...OrbitMode) CameraControllerOption {
	return func(oc *orbitControllerImpl) {
		if len(modes) > 0 {
			oc.modes = modes
		}
	}
}
