package atrium

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// InteractableComponent marks an entity as a pick target and names the
// exhibit it belongs to. The gallery spawn puts it on the anchor and on
// every visual child (canvas, frame, placard), so a hit on any of them
// resolves to the exhibit id directly - no parent walking at pick time.
type InteractableComponent struct {
	ExhibitId   string
	HalfExtents mgl32.Vec3
}

// AABBComponent is the world-space box the picker tests against, refreshed
// from the entity transform every frame before picking.
type AABBComponent struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// PickResult is what the viewer's gaze lands on this frame. Rebuilt from
// scratch every tick; holding still over the same scene yields the same
// result for as many frames as it takes.
type PickResult struct {
	Hit       bool
	ExhibitId string
	Entity    EntityId
	Distance  float32
}

type PickingConfig struct {
	Range float32
}

const DefaultPickRange float32 = 5.0

type PickingModule struct{}

func (PickingModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&PickResult{}, &PickingConfig{Range: DefaultPickRange})
	app.UseSystem(
		System(updateInteractableAABBSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(pickSystem).
			InStage(PreRender).
			RunAlways(),
	)
}

// updateInteractableAABBSystem refreshes world AABBs from entity
// transforms. Rotated boxes are bounded conservatively: each world axis
// extent is the absolute-rotation projection of the scaled half extents.
func updateInteractableAABBSystem(cmd *Commands) {
	MakeQuery3[TransformComponent, InteractableComponent, AABBComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, in *InteractableComponent, aabb *AABBComponent) bool {
		half := mgl32.Vec3{
			in.HalfExtents.X() * absf(tr.Scale.X()),
			in.HalfExtents.Y() * absf(tr.Scale.Y()),
			in.HalfExtents.Z() * absf(tr.Scale.Z()),
		}

		rot := tr.Rotation.Mat4()
		var world mgl32.Vec3
		for i := 0; i < 3; i++ {
			world[i] = absf(rot.At(i, 0))*half.X() + absf(rot.At(i, 1))*half.Y() + absf(rot.At(i, 2))*half.Z()
		}

		aabb.Min = tr.Position.Sub(world)
		aabb.Max = tr.Position.Add(world)
		return true
	})
}

// pickSystem casts the gaze ray - viewport center, so exactly the view
// forward - against every interactable AABB and keeps the nearest hit
// within range. It runs every frame a viewer exists regardless of mode;
// the session only consumes the result while locked.
func pickSystem(cmd *Commands, result *PickResult, config *PickingConfig) {
	var origin, dir mgl32.Vec3
	viewer := false
	MakeQuery1[PoseComponent](cmd).Map(func(eid EntityId, pose *PoseComponent) bool {
		origin = pose.Position
		dir = viewForward(pose.Yaw, pose.Pitch)
		viewer = true
		return false
	})
	if !viewer {
		*result = PickResult{}
		return
	}

	best := float32(math.MaxFloat32)
	var bestId string
	var bestEntity EntityId
	found := false

	MakeQuery2[AABBComponent, InteractableComponent](cmd).Map(func(eid EntityId, aabb *AABBComponent, in *InteractableComponent) bool {
		t, hit := rayAABB(origin, dir, aabb.Min, aabb.Max)
		if hit && t < best {
			best = t
			bestId = in.ExhibitId
			bestEntity = eid
			found = true
		}
		return true
	})

	if !found || best > config.Range {
		*result = PickResult{}
		return
	}
	*result = PickResult{Hit: true, ExhibitId: bestId, Entity: bestEntity, Distance: best}
}

// rayAABB is the slab test. Returns the entry distance along dir; origins
// inside the box hit at distance zero.
func rayAABB(origin, dir, min, max mgl32.Vec3) (float32, bool) {
	tmin := float32(0)
	tmax := float32(math.MaxFloat32)

	for i := 0; i < 3; i++ {
		if absf(dir[i]) < 1e-8 {
			// Parallel to this slab: inside or miss.
			if origin[i] < min[i] || origin[i] > max[i] {
				return 0, false
			}
			continue
		}

		inv := 1.0 / dir[i]
		t0 := (min[i] - origin[i]) * inv
		t1 := (max[i] - origin[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return 0, false
		}
	}

	return tmin, true
}
