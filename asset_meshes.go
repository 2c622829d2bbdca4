package atrium

import "github.com/go-gl/mathgl/mgl32"

// Procedural gallery geometry. All meshes are SceneVertex lists wound
// counter-clockwise as seen from their visible side; the room pieces face
// inward, panels face local +z.

// CreateFloorMesh builds a square floor at y=0 spanning [-half, half] on
// x and z, visible from above.
func (server *AssetServer) CreateFloorMesh(half float32, uvRepeat float32) AssetId {
	vertices := []SceneVertex{
		{Position: [3]float32{-half, 0, -half}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{0, 0}},
		{Position: [3]float32{half, 0, -half}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{uvRepeat, 0}},
		{Position: [3]float32{half, 0, half}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{uvRepeat, uvRepeat}},
		{Position: [3]float32{-half, 0, half}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{0, uvRepeat}},
	}
	return server.RegisterMesh(vertices, []uint16{0, 3, 2, 0, 2, 1})
}

// CreateCeilingMesh is the floor mirrored to y=height, visible from below.
func (server *AssetServer) CreateCeilingMesh(half float32, height float32, uvRepeat float32) AssetId {
	vertices := []SceneVertex{
		{Position: [3]float32{-half, height, -half}, Normal: [3]float32{0, -1, 0}, UV: [2]float32{0, 0}},
		{Position: [3]float32{half, height, -half}, Normal: [3]float32{0, -1, 0}, UV: [2]float32{uvRepeat, 0}},
		{Position: [3]float32{half, height, half}, Normal: [3]float32{0, -1, 0}, UV: [2]float32{uvRepeat, uvRepeat}},
		{Position: [3]float32{-half, height, half}, Normal: [3]float32{0, -1, 0}, UV: [2]float32{0, uvRepeat}},
	}
	return server.RegisterMesh(vertices, []uint16{0, 2, 3, 0, 1, 2})
}

// CreateWallsMesh builds the four walls of a square room as one mesh, all
// faces pointing inward. uvRepeat counts texture tiles along a full wall;
// the vertical repeat scales with the wall's aspect so texel density
// matches the horizontal.
func (server *AssetServer) CreateWallsMesh(half float32, height float32, uvRepeat float32) AssetId {
	var vertices []SceneVertex
	var indices []uint16
	vRepeat := uvRepeat * height / (2 * half)

	// One wall per inward normal; right runs left to right as seen from
	// inside the room.
	addWall := func(center, right, normal mgl32.Vec3) {
		bl := center.Sub(right.Mul(half))
		br := center.Add(right.Mul(half))
		up := mgl32.Vec3{0, height, 0}

		base := uint16(len(vertices))
		n := [3]float32{normal.X(), normal.Y(), normal.Z()}
		vertices = append(vertices,
			SceneVertex{Position: [3]float32{bl.X(), bl.Y(), bl.Z()}, Normal: n, UV: [2]float32{0, vRepeat}},
			SceneVertex{Position: [3]float32{br.X(), br.Y(), br.Z()}, Normal: n, UV: [2]float32{uvRepeat, vRepeat}},
			SceneVertex{Position: [3]float32{br.X() + up.X(), br.Y() + up.Y(), br.Z() + up.Z()}, Normal: n, UV: [2]float32{uvRepeat, 0}},
			SceneVertex{Position: [3]float32{bl.X() + up.X(), bl.Y() + up.Y(), bl.Z() + up.Z()}, Normal: n, UV: [2]float32{0, 0}},
		)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	addWall(mgl32.Vec3{0, 0, -half}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})
	addWall(mgl32.Vec3{half, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, 0, 0})
	addWall(mgl32.Vec3{0, 0, half}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, -1})
	addWall(mgl32.Vec3{-half, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 0, 0})

	return server.RegisterMesh(vertices, indices)
}

// CreatePanelMesh builds a width x height quad centered on the origin in
// the xy plane, facing local +z. UVs map the full texture with v=0 at the
// top, matching image row order.
func (server *AssetServer) CreatePanelMesh(width float32, height float32) AssetId {
	w := width / 2
	h := height / 2
	vertices := []SceneVertex{
		{Position: [3]float32{-w, -h, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{0, 1}},
		{Position: [3]float32{w, -h, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{1, 1}},
		{Position: [3]float32{w, h, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{1, 0}},
		{Position: [3]float32{-w, h, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{0, 0}},
	}
	return server.RegisterMesh(vertices, []uint16{0, 1, 2, 0, 2, 3})
}
