package scene

import "github.com/Carmen-Shannon/oxy-sdf/common"

// SceneBuilderOption is a functional option applied to a Scene during construction via NewScene.
type SceneBuilderOption func(*Scene)

// WithModuleID sets the id of the scene's shader module.
//
// Parameters:
//   - id: the module identifier, typically a file path
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithModuleID(id string) SceneBuilderOption {
	return func(s *Scene) {
		s.Shader.ID = id
	}
}

// WithCameraPosition sets the world-space camera position.
//
// Parameters:
//   - pos: the camera position
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCameraPosition(pos common.Vec3) SceneBuilderOption {
	return func(s *Scene) {
		s.CameraPos = pos
	}
}

// WithCameraDirection sets the camera view direction. The direction does not need to be normalized.
//
// Parameters:
//   - dir: the view direction
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCameraDirection(dir common.Vec3) SceneBuilderOption {
	return func(s *Scene) {
		s.CameraDir = dir
	}
}

// WithCameraLookAt points the camera from pos toward target.
//
// Parameters:
//   - pos: the camera position
//   - target: the point to look at
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCameraLookAt(pos, target common.Vec3) SceneBuilderOption {
	return func(s *Scene) {
		s.CameraPos = pos
		s.CameraDir = common.Direction(pos, target)
	}
}
