package atrium

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is an entity's world-space transform. For children of
// a Parent it is derived by the hierarchy system; for roots it is authored
// directly.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is a transform relative to the Parent entity.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

// MakeTransform builds a world transform from a position and a rotation
// around the vertical axis. Rotation must never be the zero quat (it
// collapses the model matrix), so all constructors go through here or set
// QuatIdent explicitly.
func MakeTransform(position mgl32.Vec3, yawDeg float32) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(yawDeg), mgl32.Vec3{0, 1, 0}),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func MakeLocalTransform(position mgl32.Vec3, scale mgl32.Vec3) LocalTransformComponent {
	return LocalTransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    scale,
	}
}

func (t *TransformComponent) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
