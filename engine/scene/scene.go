// Package scene holds the value objects the editor hands to the compile pipeline: the user's
// raw shader module and the camera it should be viewed from. Scenes are passed by value and are
// never retained by the renderer across calls.
package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sdf/common"
)

// DefaultModuleID is the module id used when a scene is built straight from editor text.
const DefaultModuleID = "userModule"

// ShaderModule is the user's raw, unwrapped shader source.
type ShaderModule struct {
	// ID identifies the module, typically the file or editor tab it came from.
	ID string `json:"id"`

	// Src is the SDF source exactly as the user typed it.
	Src string `json:"src"`
}

// Scene is one compile request: a shader module plus the camera it is rendered with.
// The zero CameraDir is treated as degenerate and replaced by common.Forward.
type Scene struct {
	// Name is a human-readable label for the scene.
	Name string `json:"name"`

	// Shader is the user module compiled into the raymarching template.
	Shader ShaderModule `json:"shader"`

	// CameraPos is the world-space camera position.
	CameraPos common.Vec3 `json:"cameraPos"`

	// CameraDir is the world-space view direction.
	CameraDir common.Vec3 `json:"cameraDir"`
}

// NewScene creates a Scene around the given source with the camera at the origin looking down -Z,
// then applies each option in order.
//
// Parameters:
//   - name: a label for the scene
//   - src: the raw user shader source
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the configured scene value
func NewScene(name, src string, options ...SceneBuilderOption) Scene {
	s := Scene{
		Name:      name,
		Shader:    ShaderModule{ID: DefaultModuleID, Src: src},
		CameraPos: common.Origin,
		CameraDir: common.Forward,
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// Camera returns the camera position and a unit view direction, falling back to the defaults for
// a degenerate (zero-length) direction.
//
// Returns:
//   - common.Vec3: the camera position
//   - common.Vec3: the normalized camera direction
func (s Scene) Camera() (common.Vec3, common.Vec3) {
	return s.CameraPos, common.NormalizeOr(s.CameraDir, common.Forward)
}

// Validate checks that both camera vectors are made of finite numbers.
//
// Returns:
//   - error: an error naming the offending vector, or nil
func (s Scene) Validate() error {
	if !common.IsFinite(s.CameraPos) {
		return fmt.Errorf("scene %q: camera position %v is not finite", s.Name, s.CameraPos)
	}
	if !common.IsFinite(s.CameraDir) {
		return fmt.Errorf("scene %q: camera direction %v is not finite", s.Name, s.CameraDir)
	}
	return nil
}
