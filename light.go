package atrium

import "github.com/go-gl/mathgl/mgl32"

// SpotLightComponent is what the scene pass consumes. The entity's
// TransformComponent supplies the position; Direction is the cone axis in
// world space.
type SpotLightComponent struct {
	Color     [3]float32
	Intensity float32
	Direction mgl32.Vec3
	// CutoffDeg is the full cone angle in degrees.
	CutoffDeg float32
}
