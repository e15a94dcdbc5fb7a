// Package camera provides the orbit controller that feeds the raymarcher its camera uniforms.
// The controller owns a target and spherical coordinates around it; position and view direction
// are derived from those.
package camera

import "github.com/Carmen-Shannon/oxy-sdf/common"

// CameraController defines the union interface for camera control systems. It embeds both
// orbitCameraController and planarCameraController so orbit and pan controls work together on a
// single controller instance.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: world-space camera position
	Position() common.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - common.Vec3: world-space target position
	Target() common.Vec3

	// Direction returns the unit view direction from the position toward the target.
	//
	// Returns:
	//   - common.Vec3: normalized direction, common.Forward when position and target coincide
	Direction() common.Vec3

	// Ray returns Position and Direction read under a single lock, ready to upload as the
	// cameraPosition and cameraDirection uniforms.
	//
	// Returns:
	//   - common.Vec3: world-space camera position
	//   - common.Vec3: normalized view direction
	Ray() (common.Vec3, common.Vec3)

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target common.Vec3)

	// Zoom adjusts the camera's distance by modifying orbit radius.
	// Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// Drag orbits by a mouse movement in pixels, scaled by MouseSensitivity. Moving right orbits
	// right and moving down tilts up.
	//
	// Parameters:
	//   - dx: horizontal cursor movement
	//   - dy: vertical cursor movement
	Drag(dx, dy float32)
}

// orbitCameraController defines orbit-specific control methods using spherical coordinates
// (radius, azimuth, elevation) relative to the target.
type orbitCameraController interface {
	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Radius returns the current orbit radius (distance from target).
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// Azimuth returns the current horizontal angle around the Y axis in radians.
	Azimuth() float32

	// Elevation returns the current vertical angle from the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the vertical angle directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - elevation: new vertical angle in radians
	SetElevation(elevation float32)
}

// planarCameraController defines pan controls. Panning shifts both position and target by the
// same offset, preserving the orbit relationship.
type planarCameraController interface {
	// PanRight translates the camera along its local right axis.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanRight(delta float32)

	// PanUp translates the camera along its local up axis.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanUp(delta float32)
}
