package atrium

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func worldPositionOf(t *testing.T, cmd *Commands, entity EntityId) mgl32.Vec3 {
	t.Helper()
	tr, ok := lookupTransform(cmd, entity)
	if !ok {
		t.Fatalf("entity %v has no world transform", entity)
	}
	return tr.Position
}

func TestHierarchy_ChainResolves(t *testing.T) {
	cmd, ecs := queryTestCommands()

	parent := ecs.spawn(TransformComponent{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	child := ecs.spawn(
		Parent{Entity: parent},
		MakeLocalTransform(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)
	grandchild := ecs.spawn(
		Parent{Entity: child},
		MakeLocalTransform(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)

	transformHierarchySystem(cmd)

	if got := worldPositionOf(t, cmd, child); !nearVec3(got, mgl32.Vec3{10, 5, 0}, 1e-5) {
		t.Errorf("child at %v, want (10, 5, 0)", got)
	}
	if got := worldPositionOf(t, cmd, grandchild); !nearVec3(got, mgl32.Vec3{10, 5, 2}, 1e-5) {
		t.Errorf("grandchild at %v, want (10, 5, 2)", got)
	}
}

func TestHierarchy_ParentRotationCarriesChildren(t *testing.T) {
	cmd, ecs := queryTestCommands()

	parent := ecs.spawn(TransformComponent{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0}),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	child := ecs.spawn(
		Parent{Entity: parent},
		MakeLocalTransform(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)

	transformHierarchySystem(cmd)

	// A quarter turn about Y carries local +X to world -Z.
	if got := worldPositionOf(t, cmd, child); !nearVec3(got, mgl32.Vec3{10, 0, -5}, 1e-4) {
		t.Errorf("rotated child at %v, want (10, 0, -5)", got)
	}

	world, ok := lookupTransform(cmd, child)
	if !ok {
		t.Fatal("child lost its world transform")
	}
	fwd := world.Rotation.Rotate(mgl32.Vec3{0, 0, 1})
	if !nearVec3(fwd, mgl32.Vec3{1, 0, 0}, 1e-4) {
		t.Errorf("child inherits the parent rotation, +z maps to %v", fwd)
	}
}

func TestHierarchy_ParentScaleScalesOffsets(t *testing.T) {
	cmd, ecs := queryTestCommands()

	parent := ecs.spawn(TransformComponent{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{2, 2, 2},
	})
	child := ecs.spawn(
		Parent{Entity: parent},
		MakeLocalTransform(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)

	transformHierarchySystem(cmd)

	world, ok := lookupTransform(cmd, child)
	if !ok {
		t.Fatal("child lost its world transform")
	}
	if !nearVec3(world.Position, mgl32.Vec3{2, 0, 0}, 1e-5) {
		t.Errorf("scaled child at %v, want (2, 0, 0)", world.Position)
	}
	if !nearVec3(world.Scale, mgl32.Vec3{2, 2, 2}, 1e-6) {
		t.Errorf("child world scale %v, want (2, 2, 2)", world.Scale)
	}
}

func TestHierarchy_MissingParentLeavesChildAlone(t *testing.T) {
	cmd, ecs := queryTestCommands()

	orphan := ecs.spawn(
		Parent{Entity: EntityId(9999)},
		MakeLocalTransform(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Position: mgl32.Vec3{7, 7, 7}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)

	transformHierarchySystem(cmd)

	if got := worldPositionOf(t, cmd, orphan); got != (mgl32.Vec3{7, 7, 7}) {
		t.Errorf("orphan child must keep its transform, got %v", got)
	}
}

func TestHierarchy_SettlesWithoutChanges(t *testing.T) {
	cmd, ecs := queryTestCommands()

	parent := ecs.spawn(TransformComponent{
		Position: mgl32.Vec3{1, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	child := ecs.spawn(
		Parent{Entity: parent},
		MakeLocalTransform(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)

	transformHierarchySystem(cmd)
	first := worldPositionOf(t, cmd, child)

	transformHierarchySystem(cmd)
	transformHierarchySystem(cmd)
	if got := worldPositionOf(t, cmd, child); got != first {
		t.Errorf("stable hierarchy drifted: %v -> %v", first, got)
	}
}
