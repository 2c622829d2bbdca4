package atrium

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PoseComponent is the viewer's position and view angles (radians). Exactly
// one entity carries it: the gallery spawn creates it, nothing else does.
// Position.y is fixed at spawn - walking is planar and the room clamp never
// touches it.
type PoseComponent struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

func (p *PoseComponent) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(p.Position, p.Position.Add(viewForward(p.Yaw, p.Pitch)), mgl32.Vec3{0, 1, 0})
}

// VelocityComponent holds walk velocity in viewer-local axes: Linear[0] is
// lateral, Linear[2] is forward-axis. Linear[1] stays zero.
type VelocityComponent struct {
	Linear mgl32.Vec3
}

type WalkControlComponent struct {
	Accel       float32 // world units per second^2, per active axis
	Damping     float32 // fraction of velocity shed per second
	Sensitivity float32 // radians of look per cursor pixel
}

func MakeWalkControl() WalkControlComponent {
	return WalkControlComponent{Accel: 40, Damping: 10, Sensitivity: 0.0022}
}

var maxPitch = mgl32.DegToRad(89)

// WalkModule moves the viewer while the pointer is locked: mouse look and
// damped planar walking. Both systems are gated to ModeLocked so the pose
// freezes the moment the lock drops.
type WalkModule struct{}

func (WalkModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(lookSystem).
			InStage(Update).
			InState(OnExecute(ModeLocked)),
	)
	app.UseSystem(
		System(walkIntegrateSystem).
			InStage(Update).
			InState(OnExecute(ModeLocked)),
	)
}

func lookSystem(cmd *Commands, input *Input) {
	dx := float32(input.MouseDeltaX)
	dy := float32(input.MouseDeltaY)
	if dx == 0 && dy == 0 {
		return
	}

	MakeQuery2[PoseComponent, WalkControlComponent](cmd).Map(func(eid EntityId, pose *PoseComponent, control *WalkControlComponent) bool {
		pose.Yaw += dx * control.Sensitivity
		pose.Pitch -= dy * control.Sensitivity
		if pose.Pitch > maxPitch {
			pose.Pitch = maxPitch
		}
		if pose.Pitch < -maxPitch {
			pose.Pitch = -maxPitch
		}
		return true
	})
}

// walkIntegrateSystem advances the damped walk model one tick:
//
//  1. damping bleeds a Damping*dt fraction off each velocity axis,
//  2. the held direction keys become a normalized intent direction,
//  3. Accel*dt pushes each active axis,
//  4. velocity displaces the pose along the yaw-aligned planar axes.
//
// Holding one axis settles at Accel/Damping world units per second;
// releasing everything decays the velocity smoothly to rest. The clock
// already clamps dt, so a stalled frame integrates as one ordinary tick.
func walkIntegrateSystem(cmd *Commands, intent *WalkIntent, clock *Time) {
	dt := clock.Dt
	if dt <= 0 {
		return
	}

	MakeQuery3[PoseComponent, VelocityComponent, WalkControlComponent](cmd).Map(func(eid EntityId, pose *PoseComponent, vel *VelocityComponent, control *WalkControlComponent) bool {
		vel.Linear[0] -= vel.Linear[0] * control.Damping * dt
		vel.Linear[2] -= vel.Linear[2] * control.Damping * dt

		var dir mgl32.Vec3
		if intent.Forward {
			dir[2] += 1
		}
		if intent.Backward {
			dir[2] -= 1
		}
		if intent.Right {
			dir[0] += 1
		}
		if intent.Left {
			dir[0] -= 1
		}
		if dir.Len() > 0 {
			dir = dir.Normalize()
			vel.Linear[0] -= dir[0] * control.Accel * dt
			vel.Linear[2] -= dir[2] * control.Accel * dt
		}

		step := walkRight(pose.Yaw).Mul(-vel.Linear[0] * dt).
			Add(walkForward(pose.Yaw).Mul(-vel.Linear[2] * dt))
		next := pose.Position.Add(step)

		if !finiteVec3(next) {
			vel.Linear = mgl32.Vec3{}
			return true
		}
		pose.Position = next
		return true
	})
}

func finiteVec3(v mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		f := float64(v[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
