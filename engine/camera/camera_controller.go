package camera

// CameraController supplies the eye position and look-at target a Camera builds its view from.
type CameraController interface {
	// Position returns the current camera position in world space.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Target returns the current look-at target in world space.
	//
	// Returns:
	//   - x, y, z: target components
	Target() (x, y, z float32)
}

// OrbitMode describes one camera mode: an ellipse around a target point that the camera
// travels at a fixed angular rate.
type OrbitMode struct {
	// DistanceX and DistanceY are the ellipse radii along world X and Z.
	DistanceX float32
	DistanceY float32
	// Height is the camera height above the target.
	Height float32
	// Fov is the vertical field of view in radians restored when the mode is selected.
	Fov float32
	// StartAngle is the angle used the first time the mode is selected.
	StartAngle float32
	// RotateDelay divides elapsed seconds into radians of travel.
	RotateDelay float32
}

// OrbitController is a CameraController that circles a target through a fixed set of modes.
// Each mode remembers its angle when another mode is selected and resumes from it.
type OrbitController interface {
	CameraController

	// Mode returns the selected mode index.
	Mode() int

	// Modes returns the number of modes.
	Modes() int

	// SetMode selects a mode and the point it circles. Out-of-range modes are ignored.
	//
	// Parameters:
	//   - mode: the mode index
	//   - target: the point to circle, captured once
	//
	// Returns:
	//   - bool: false if the mode was ignored
	SetMode(mode int, target [3]float32) bool

	// Update places the camera at the current angle, then advances the angle by
	// dt / RotateDelay. The angle wraps to 0 once it reaches 6.28.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// Nudge adds delta radians to the angle and re-places the camera without advancing.
	//
	// Parameters:
	//   - delta: the angle change in radians
	Nudge(delta float32)

	// Angle returns the angle of the selected mode.
	Angle() float32

	// Fov returns the field of view of the selected mode, including any zoom.
	Fov() float32

	// Zoom adds delta to the field of view. Changes that would leave [0, 1] are rejected.
	//
	// Parameters:
	//   - delta: the field of view change in radians
	//
	// Returns:
	//   - bool: true if the field of view changed
	Zoom(delta float32) bool
}
