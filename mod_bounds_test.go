package atrium

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func clampHarness(pos mgl32.Vec3, vel mgl32.Vec3) (*Commands, *RoomBounds) {
	cmd, ecs := queryTestCommands()
	ecs.spawn(
		PoseComponent{Position: pos},
		VelocityComponent{Linear: vel},
	)
	return cmd, &RoomBounds{Limit: 9}
}

func TestBounds_ClampsEachWall(t *testing.T) {
	cases := []struct {
		in   mgl32.Vec3
		want mgl32.Vec3
	}{
		{mgl32.Vec3{12, 1.6, 0}, mgl32.Vec3{9, 1.6, 0}},
		{mgl32.Vec3{-12, 1.6, 0}, mgl32.Vec3{-9, 1.6, 0}},
		{mgl32.Vec3{0, 1.6, 14}, mgl32.Vec3{0, 1.6, 9}},
		{mgl32.Vec3{0, 1.6, -9.01}, mgl32.Vec3{0, 1.6, -9}},
	}

	for _, tc := range cases {
		cmd, bounds := clampHarness(tc.in, mgl32.Vec3{})
		roomClampSystem(cmd, bounds)

		pose, _ := viewerPose(cmd)
		if pose.Position != tc.want {
			t.Errorf("clamp %v: expected %v, got %v", tc.in, tc.want, pose.Position)
		}
	}
}

func TestBounds_CornerPins(t *testing.T) {
	cmd, bounds := clampHarness(mgl32.Vec3{15, 1.6, -20}, mgl32.Vec3{})
	roomClampSystem(cmd, bounds)

	pose, _ := viewerPose(cmd)
	if pose.Position != (mgl32.Vec3{9, 1.6, -9}) {
		t.Errorf("corner overshoot should pin both axes, got %v", pose.Position)
	}
}

func TestBounds_HeightUntouched(t *testing.T) {
	cmd, bounds := clampHarness(mgl32.Vec3{12, 55, 12}, mgl32.Vec3{})
	roomClampSystem(cmd, bounds)

	pose, _ := viewerPose(cmd)
	if pose.Position[1] != 55 {
		t.Errorf("clamp must never touch height, got %v", pose.Position[1])
	}
}

func TestBounds_VelocityPreservedOnContact(t *testing.T) {
	vel := mgl32.Vec3{3, 0, -2}
	cmd, bounds := clampHarness(mgl32.Vec3{10, 1.6, 0}, vel)
	roomClampSystem(cmd, bounds)

	_, got := viewerPose(cmd)
	if got.Linear != vel {
		t.Errorf("clamp must leave velocity alone, got %v", got.Linear)
	}
}

func TestBounds_InteriorUntouched(t *testing.T) {
	in := mgl32.Vec3{3.5, 1.6, -8.99}
	cmd, bounds := clampHarness(in, mgl32.Vec3{})
	roomClampSystem(cmd, bounds)

	pose, _ := viewerPose(cmd)
	if pose.Position != in {
		t.Errorf("interior pose must pass through unchanged, got %v", pose.Position)
	}
}

func TestBounds_DerivedFromRoom(t *testing.T) {
	b := RoomBoundsFor(10, 1)
	if b.Limit != 9 {
		t.Errorf("expected limit 9, got %v", b.Limit)
	}

	b = RoomBoundsFor(6, 0.5)
	if b.Limit != 5.5 {
		t.Errorf("expected limit 5.5, got %v", b.Limit)
	}
}
