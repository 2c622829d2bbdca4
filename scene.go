package atrium

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/atrium3d/atrium/shaders"
)

// GalleryDef defines the whole gallery: room shell, viewer spawn, the
// exhibits on the walls and the lights over them. It is plain data - the
// layout file is this struct as JSON - and LoadGallery is the only thing
// that turns it into entities.
type GalleryDef struct {
	Room     RoomDef      `json:"room"`
	Viewer   ViewerDef    `json:"viewer"`
	Exhibits []ExhibitDef `json:"exhibits"`
	Lights   []LightDef   `json:"lights"`
}

// RoomDef is the square room shell. Walkable bounds derive from it
// (HalfExtent - WallMargin), so resizing the room moves the walls and the
// containment together.
type RoomDef struct {
	HalfExtent float32 `json:"half_extent"`
	WallHeight float32 `json:"wall_height"`
	EyeHeight  float32 `json:"eye_height"`
	WallMargin float32 `json:"wall_margin"`
}

// ViewerDef is where the viewer spawns. Position.y is ignored; eye height
// always comes from the room.
type ViewerDef struct {
	Position mgl32.Vec3 `json:"position"`
	YawDeg   float32    `json:"yaw_deg"`
	PitchDeg float32    `json:"pitch_deg"`
}

// ExhibitDef places one exhibit on a wall: the content plus its anchor
// transform. YawDeg turns the anchor's local +z toward the room.
type ExhibitDef struct {
	Exhibit      Exhibit    `json:"exhibit"`
	Position     mgl32.Vec3 `json:"position"`
	YawDeg       float32    `json:"yaw_deg"`
	CanvasWidth  float32    `json:"canvas_width,omitempty"`
	CanvasHeight float32    `json:"canvas_height,omitempty"`
}

// LightDef is one spot light, aimed at a target point rather than carrying
// a raw direction - def authors think in "light the canvas" terms.
type LightDef struct {
	Position  mgl32.Vec3 `json:"position"`
	Target    mgl32.Vec3 `json:"target"`
	Color     [3]float32 `json:"color"`
	Intensity float32    `json:"intensity"`
	CutoffDeg float32    `json:"cutoff_deg"`
}

const (
	defaultCanvasWidth  float32 = 2.4
	defaultCanvasHeight float32 = 1.8

	// canvasMountHeight is the canvas center above the floor; hung a touch
	// over eye height, museum style.
	canvasMountHeight float32 = 2.0
)

// Validate rejects definitions that cannot spawn a sane gallery. Layout
// loading goes through this before any entity is touched.
func (def *GalleryDef) Validate() error {
	if def.Room.HalfExtent <= 0 {
		return fmt.Errorf("room half extent must be positive, got %g", def.Room.HalfExtent)
	}
	if def.Room.WallHeight <= 0 {
		return fmt.Errorf("room wall height must be positive, got %g", def.Room.WallHeight)
	}
	if def.Room.WallMargin < 0 || def.Room.WallMargin >= def.Room.HalfExtent {
		return fmt.Errorf("wall margin %g outside [0, %g)", def.Room.WallMargin, def.Room.HalfExtent)
	}
	if def.Room.EyeHeight <= 0 || def.Room.EyeHeight >= def.Room.WallHeight {
		return fmt.Errorf("eye height %g outside (0, %g)", def.Room.EyeHeight, def.Room.WallHeight)
	}

	seen := make(map[string]struct{}, len(def.Exhibits))
	for i, ex := range def.Exhibits {
		id := ex.Exhibit.Id
		if id == "" {
			return fmt.Errorf("exhibit %d has an empty id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate exhibit id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// DefaultGalleryDef is the built-in portfolio: a 20x20 room with eight
// exhibits, two per wall, each under its own warm key light. The room fill
// is the renderer's ambient term, not a ninth spot.
func DefaultGalleryDef() *GalleryDef {
	def := &GalleryDef{
		Room: RoomDef{
			HalfExtent: 10,
			WallHeight: 5,
			EyeHeight:  1.6,
			WallMargin: 1,
		},
		Viewer: ViewerDef{Position: mgl32.Vec3{0, 0, 4}, YawDeg: 0, PitchDeg: 0},
	}

	// Anchor on the wall surface, pulled in a hair so the frame never
	// z-fights the plaster.
	const inset = 0.06
	wall := def.Room.HalfExtent - inset

	content := defaultExhibits()
	placements := []struct {
		pos mgl32.Vec3
		yaw float32
	}{
		{mgl32.Vec3{-4, canvasMountHeight, -wall}, 0},
		{mgl32.Vec3{4, canvasMountHeight, -wall}, 0},
		{mgl32.Vec3{wall, canvasMountHeight, -4}, -90},
		{mgl32.Vec3{wall, canvasMountHeight, 4}, -90},
		{mgl32.Vec3{4, canvasMountHeight, wall}, 180},
		{mgl32.Vec3{-4, canvasMountHeight, wall}, 180},
		{mgl32.Vec3{-wall, canvasMountHeight, 4}, 90},
		{mgl32.Vec3{-wall, canvasMountHeight, -4}, 90},
	}

	for i, place := range placements {
		def.Exhibits = append(def.Exhibits, ExhibitDef{
			Exhibit:  content[i],
			Position: place.pos,
			YawDeg:   place.yaw,
		})
		inward := yawForward(place.yaw)
		def.Lights = append(def.Lights, LightDef{
			Position:  place.pos.Add(inward.Mul(1.6)).Add(mgl32.Vec3{0, def.Room.WallHeight - canvasMountHeight - 0.3, 0}),
			Target:    place.pos,
			Color:     [3]float32{1.0, 0.93, 0.82},
			Intensity: 5.5,
			CutoffDeg: 55,
		})
	}

	return def
}

// yawForward is the direction local +z points after a yaw in degrees.
func yawForward(yawDeg float32) mgl32.Vec3 {
	rad := mgl32.DegToRad(yawDeg)
	return mgl32.Vec3{sinf(rad), 0, cosf(rad)}
}

func defaultExhibits() []Exhibit {
	return []Exhibit{
		{
			Id:               "atrium",
			Title:            "Atrium",
			ShortDescription: "The walkable gallery engine rendering this room.",
			LongDescription:  "A first-person gallery built on an archetype ECS and a wgpu renderer. The frame pipeline pumps window events, integrates damped walking, clamps the room, picks along the gaze ray and draws the scene with a HUD overlay, all paced by vsync.",
			TechTags:         []string{"Go", "wgpu", "glfw", "ECS"},
			Accent:           [3]float32{0.84, 0.36, 0.22},
		},
		{
			Id:               "brickwork",
			Title:            "Brickwork",
			ShortDescription: "Sparse voxel volumes with ray-traced lighting.",
			LongDescription:  "A brick-map volume renderer: voxels grouped into pools of bricks, traversed on the GPU with hierarchical occupancy masks. Edits split and merge bricks in place, so carving into a wall never rebuilds the world.",
			TechTags:         []string{"WGSL", "compute", "voxels"},
			Accent:           [3]float32{0.24, 0.55, 0.82},
		},
		{
			Id:               "flock",
			Title:            "Flock",
			ShortDescription: "Steering agents over a shared navigation field.",
			LongDescription:  "A few hundred agents steering over a coarse flow field with local separation. The field updates incrementally as obstacles move; agents only ever read their own cell and its neighbors, so the whole herd stays cache-friendly.",
			TechTags:         []string{"Go", "goroutines", "spatial hash"},
			Accent:           [3]float32{0.35, 0.68, 0.38},
		},
		{
			Id:               "ledger",
			Title:            "Ledger",
			ShortDescription: "An append-only store with time-travel queries.",
			LongDescription:  "Event-sourced storage where every write is a fact with a timestamp. Reads fold facts up to any point in time, which makes debugging a matter of asking the store what the world looked like just before it went wrong.",
			TechTags:         []string{"Go", "BoltDB", "MessagePack"},
			Accent:           [3]float32{0.62, 0.44, 0.78},
		},
		{
			Id:               "semaphore",
			Title:            "Semaphore",
			ShortDescription: "A tiny scheduler for fair work stealing.",
			LongDescription:  "A work-stealing pool with per-worker deques and a parked-worker handoff path. The interesting part is the fairness accounting: long-running tasks donate time back so short tasks never starve behind them.",
			TechTags:         []string{"Go", "sync", "pprof"},
			Accent:           [3]float32{0.86, 0.68, 0.2},
		},
		{
			Id:               "relay",
			Title:            "Relay",
			ShortDescription: "Binary protocol bridge with live reconnect.",
			LongDescription:  "A bridge between a legacy binary feed and a modern stream API. Frames are re-parsed into typed events, buffered through reconnects, and replayed with backpressure so a slow consumer never drops ticks.",
			TechTags:         []string{"Go", "gRPC", "ring buffer"},
			Accent:           [3]float32{0.25, 0.72, 0.69},
		},
		{
			Id:               "terrace",
			Title:            "Terrace",
			ShortDescription: "Procedural terrain tiles streamed on demand.",
			LongDescription:  "Heightfield terrain generated per tile from layered noise, meshed with skirts to hide seams, and streamed in around the camera. Tiles bake their normal maps on a worker pool and upload when ready.",
			TechTags:         []string{"Go", "simplex noise", "LOD"},
			Accent:           [3]float32{0.55, 0.52, 0.3},
		},
		{
			Id:               "dial",
			Title:            "Dial",
			ShortDescription: "Latency heatmaps for distributed traces.",
			LongDescription:  "A trace visualizer that folds spans into per-edge latency histograms and renders them as a live heatmap. Outliers link back to the raw trace, so the path from 'this looks hot' to 'this call was slow' is one click.",
			TechTags:         []string{"Go", "OpenTelemetry", "SQLite"},
			Accent:           [3]float32{0.78, 0.31, 0.47},
		},
	}
}

// galleryAssets is the shared GPU-side content for one gallery spawn:
// meshes and samplers reused across entities, plus the material every
// gallery surface draws with.
type galleryAssets struct {
	material AssetId

	floorMesh   AssetId
	ceilingMesh AssetId
	wallsMesh   AssetId
	canvasMesh  AssetId
	frameMesh   AssetId
	placardMesh AssetId

	repeatSampler AssetId
	clampSampler  AssetId

	plasterTex AssetId
	floorTex   AssetId
	woodTex    AssetId
}

func buildGalleryAssets(assets *AssetServer, room RoomDef) galleryAssets {
	half := room.HalfExtent
	return galleryAssets{
		material: assets.LoadMaterialSource("gallery", shaders.GalleryWGSL, SceneVertex{}),

		floorMesh:   assets.CreateFloorMesh(half, half),
		ceilingMesh: assets.CreateCeilingMesh(half, room.WallHeight, half/2),
		wallsMesh:   assets.CreateWallsMesh(half, room.WallHeight, half/2),
		canvasMesh:  assets.CreatePanelMesh(defaultCanvasWidth, defaultCanvasHeight),
		frameMesh:   assets.CreatePanelMesh(defaultCanvasWidth+0.16, defaultCanvasHeight+0.16),
		placardMesh: assets.CreatePanelMesh(0.64, 0.32),

		repeatSampler: assets.CreateSampler("linear", "repeat"),
		clampSampler:  assets.CreateSampler("linear", "clamp"),

		plasterTex: assets.CreateTextureImage(makePlasterTexture(256, hashSeed("plaster"))),
		floorTex:   assets.CreateTextureImage(makeCheckerTexture(256, 8, hashSeed("floor"))),
		woodTex:    assets.CreateTextureImage(makeWoodTexture(128, hashSeed("wood"))),
	}
}

// LoadGallery spawns the gallery described by def and refills catalog and
// bounds in place, so resource pointers held by installed systems survive a
// reload. Spawns are buffered on cmd; the entities exist after the next
// flush.
func LoadGallery(cmd *Commands, assets *AssetServer, atlas *TextAtlas, def *GalleryDef, catalog *ExhibitCatalog, bounds *RoomBounds) {
	exhibits := make([]Exhibit, 0, len(def.Exhibits))
	for _, ed := range def.Exhibits {
		exhibits = append(exhibits, ed.Exhibit)
	}
	catalog.fill(exhibits)
	*bounds = RoomBoundsFor(def.Room.HalfExtent, def.Room.WallMargin)

	shared := buildGalleryAssets(assets, def.Room)

	spawnRoom(cmd, &shared, def.Room)
	spawnViewer(cmd, def)
	for _, ed := range def.Exhibits {
		spawnExhibit(cmd, assets, atlas, &shared, ed)
	}
	for _, light := range def.Lights {
		spawnLight(cmd, light)
	}
}

func spawnRoom(cmd *Commands, shared *galleryAssets, room RoomDef) {
	identity := MakeTransform(mgl32.Vec3{}, 0)

	cmd.AddEntity(
		galleryTag{},
		identity,
		MeshComponent{Mesh: shared.floorMesh, Texture: shared.floorTex, Sampler: shared.repeatSampler, Material: shared.material},
	)
	cmd.AddEntity(
		galleryTag{},
		identity,
		MeshComponent{Mesh: shared.ceilingMesh, Texture: shared.plasterTex, Sampler: shared.repeatSampler, Material: shared.material},
	)
	cmd.AddEntity(
		galleryTag{},
		identity,
		MeshComponent{Mesh: shared.wallsMesh, Texture: shared.plasterTex, Sampler: shared.repeatSampler, Material: shared.material},
	)
}

// spawnViewer creates the single walking entity. Eye height comes from the
// room def, never from the viewer def, and nothing writes it afterwards.
func spawnViewer(cmd *Commands, def *GalleryDef) {
	cmd.AddEntity(
		galleryTag{},
		PoseComponent{
			Position: mgl32.Vec3{def.Viewer.Position.X(), def.Room.EyeHeight, def.Viewer.Position.Z()},
			Yaw:      mgl32.DegToRad(def.Viewer.YawDeg),
			Pitch:    mgl32.DegToRad(def.Viewer.PitchDeg),
		},
		VelocityComponent{},
		MakeWalkControl(),
	)
}

// spawnExhibit builds one wall piece: an anchor entity holding the pick
// volume, with canvas, frame and placard as transform children. Every part
// carries the exhibit id, so a ray hitting any of them resolves without
// walking the hierarchy.
func spawnExhibit(cmd *Commands, assets *AssetServer, atlas *TextAtlas, shared *galleryAssets, ed ExhibitDef) {
	w := ed.CanvasWidth
	if w <= 0 {
		w = defaultCanvasWidth
	}
	h := ed.CanvasHeight
	if h <= 0 {
		h = defaultCanvasHeight
	}
	id := ed.Exhibit.Id

	anchor := cmd.AddEntity(
		galleryTag{},
		MakeTransform(ed.Position, ed.YawDeg),
		InteractableComponent{ExhibitId: id, HalfExtents: mgl32.Vec3{w/2 + 0.1, h/2 + 0.1, 0.15}},
		AABBComponent{},
	)

	canvasTex := assets.CreateTextureImage(makeCanvasTexture(256, &ed.Exhibit))
	placardTex := assets.CreateTextureImage(makePlacardTexture(atlas, &ed.Exhibit))

	cmd.AddEntity(
		galleryTag{},
		Parent{Entity: anchor},
		MakeLocalTransform(mgl32.Vec3{0, 0, 0.05}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		MeshComponent{Mesh: shared.canvasMesh, Texture: canvasTex, Sampler: shared.clampSampler, Material: shared.material, Fixture: true},
		InteractableComponent{ExhibitId: id, HalfExtents: mgl32.Vec3{w / 2, h / 2, 0.05}},
		AABBComponent{},
	)
	cmd.AddEntity(
		galleryTag{},
		Parent{Entity: anchor},
		MakeLocalTransform(mgl32.Vec3{0, 0, 0.02}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		MeshComponent{Mesh: shared.frameMesh, Texture: shared.woodTex, Sampler: shared.repeatSampler, Material: shared.material, Fixture: true},
		InteractableComponent{ExhibitId: id, HalfExtents: mgl32.Vec3{(w + 0.16) / 2, (h + 0.16) / 2, 0.04}},
		AABBComponent{},
	)
	cmd.AddEntity(
		galleryTag{},
		Parent{Entity: anchor},
		MakeLocalTransform(mgl32.Vec3{w/2 + 0.48, -h/2 + 0.1, 0.03}, mgl32.Vec3{1, 1, 1}),
		TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		MeshComponent{Mesh: shared.placardMesh, Texture: placardTex, Sampler: shared.clampSampler, Material: shared.material, Fixture: true},
		InteractableComponent{ExhibitId: id, HalfExtents: mgl32.Vec3{0.32, 0.16, 0.04}},
		AABBComponent{},
	)
}

func spawnLight(cmd *Commands, def LightDef) {
	dir := def.Target.Sub(def.Position)
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, -1, 0}
	}
	cmd.AddEntity(
		galleryTag{},
		MakeTransform(def.Position, 0),
		SpotLightComponent{
			Color:     def.Color,
			Intensity: def.Intensity,
			Direction: dir.Normalize(),
			CutoffDeg: def.CutoffDeg,
		},
	)
}
