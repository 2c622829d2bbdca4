package atrium

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RoomBounds is the planar containment limit for the viewer, derived from
// the room definition (half extent minus wall margin) when the gallery
// loads. Deriving it keeps wall geometry and containment in lockstep when
// the room is resized.
type RoomBounds struct {
	Limit float32
}

func RoomBoundsFor(halfExtent, wallMargin float32) RoomBounds {
	return RoomBounds{Limit: halfExtent - wallMargin}
}

// BoundsModule clamps the viewer to the room after integration. The clamp
// is per axis: pushing into a wall slides along it, pushing into a corner
// pins to it. Height is never clamped - nothing in the walk model writes
// it, and clamping y would hide that kind of bug instead of exposing it.
type BoundsModule struct{}

func (BoundsModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(roomClampSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// Velocity is left alone on contact: the tangential component keeps the
// slide, and the normal component keeps commanding a pinned pose until the
// key lifts and damping bleeds it off.
func roomClampSystem(cmd *Commands, bounds *RoomBounds) {
	limit := bounds.Limit

	MakeQuery2[PoseComponent, VelocityComponent](cmd).Map(func(eid EntityId, pose *PoseComponent, vel *VelocityComponent) bool {
		pose.Position[0] = mgl32.Clamp(pose.Position[0], -limit, limit)
		pose.Position[2] = mgl32.Clamp(pose.Position[2], -limit, limit)
		return true
	})
}
