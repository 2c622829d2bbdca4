package atrium

import (
	"github.com/go-gl/mathgl/mgl32"
)

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(transformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// Hierarchies here are shallow (exhibit anchor -> canvas/placard), so a few
// repeat passes over the child set settle any depth without a topological
// sort. maxHierarchyPasses bounds the depth that resolves in one frame.
const maxHierarchyPasses = 8

func transformHierarchySystem(cmd *Commands) {
	for pass := 0; pass < maxHierarchyPasses; pass++ {
		changed := false

		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld, ok := lookupTransform(cmd, parent.Entity)
			if !ok {
				return true
			}

			// Component-wise compose to preserve scale signs:
			// world = parentPos + parentRot * (parentScale * localPos)
			scaled := mgl32.Vec3{
				local.Position.X() * parentWorld.Scale.X(),
				local.Position.Y() * parentWorld.Scale.Y(),
				local.Position.Z() * parentWorld.Scale.Z(),
			}
			pos := parentWorld.Position.Add(parentWorld.Rotation.Rotate(scaled))
			rot := parentWorld.Rotation.Mul(local.Rotation).Normalize()
			scale := mgl32.Vec3{
				parentWorld.Scale.X() * local.Scale.X(),
				parentWorld.Scale.Y() * local.Scale.Y(),
				parentWorld.Scale.Z() * local.Scale.Z(),
			}

			if pos != world.Position || rot != world.Rotation || scale != world.Scale {
				world.Position = pos
				world.Rotation = rot
				world.Scale = scale
				changed = true
			}
			return true
		})

		if !changed {
			break
		}
	}
}

func lookupTransform(cmd *Commands, entity EntityId) (TransformComponent, bool) {
	for _, c := range cmd.GetAllComponents(entity) {
		if tr, ok := c.(TransformComponent); ok {
			return tr, true
		}
	}
	return TransformComponent{}, false
}
