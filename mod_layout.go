package atrium

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

const defaultLayoutPath = "atrium_layout.json"

// LayoutState carries the file the hotkeys save to and load from.
type LayoutState struct {
	Path string
}

// LayoutModule adds gallery persistence: F5 writes the current definition
// (with the live viewer pose) to a JSON file, F9 reloads it and respawns
// the gallery. Install it after the gallery so the def resource exists.
type LayoutModule struct {
	// Path overrides the layout file; default is atrium_layout.json in the
	// working directory.
	Path string
}

func (m LayoutModule) Install(app *App, cmd *Commands) {
	path := m.Path
	if path == "" {
		path = defaultLayoutPath
	}
	cmd.AddResources(&LayoutState{Path: path})

	app.UseSystem(
		System(layoutHotkeySystem).
			InStage(Update).
			RunAlways(),
	)
}

// SaveLayout captures the live viewer pose into the definition and writes
// it as indented JSON. The def resource keeps the captured pose, so a
// later in-session reload of another file still restores from disk state,
// not from a stale spawn point.
func SaveLayout(cmd *Commands, def *GalleryDef, path string) error {
	MakeQuery2[PoseComponent, WalkControlComponent](cmd).Map(func(eid EntityId, pose *PoseComponent, _ *WalkControlComponent) bool {
		def.Viewer = ViewerDef{
			Position: mgl32.Vec3{pose.Position.X(), 0, pose.Position.Z()},
			YawDeg:   mgl32.RadToDeg(pose.Yaw),
			PitchDeg: mgl32.RadToDeg(pose.Pitch),
		}
		return false
	})

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write layout %s: %w", path, err)
	}
	return nil
}

// LoadLayout reads a definition file and swaps the gallery to it. The
// current scene is only torn down after the file parses and validates, so
// a bad file leaves the gallery untouched. Catalog and bounds refill in
// place behind the same resource pointers.
func LoadLayout(cmd *Commands, assets *AssetServer, atlas *TextAtlas, def *GalleryDef, catalog *ExhibitCatalog, bounds *RoomBounds, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read layout %s: %w", path, err)
	}

	var loaded GalleryDef
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("layout %s: %w", path, err)
	}

	despawnGallery(cmd)
	*def = loaded
	LoadGallery(cmd, assets, atlas, def, catalog, bounds)
	return nil
}

// layoutHotkeySystem handles F5 (save) and F9 (load). Inactive while an
// exhibit modal is open; the modal owns the keyboard there.
func layoutHotkeySystem(
	cmd *Commands,
	input *Input,
	session *Session,
	layout *LayoutState,
	assets *AssetServer,
	atlas *TextAtlas,
	def *GalleryDef,
	catalog *ExhibitCatalog,
	bounds *RoomBounds,
) {
	if session.Mode == ModeInspecting {
		return
	}
	log := cmd.app.Logger()

	if input.JustPressed[KeyF5] {
		if err := SaveLayout(cmd, def, layout.Path); err != nil {
			log.Errorf("layout save failed: %v", err)
			SpawnToast(cmd, "Save failed: "+err.Error())
		} else {
			log.Infof("layout saved to %s", layout.Path)
			SpawnToast(cmd, "Layout saved to "+layout.Path)
		}
	}

	if input.JustPressed[KeyF9] {
		if err := LoadLayout(cmd, assets, atlas, def, catalog, bounds, layout.Path); err != nil {
			log.Errorf("layout load failed: %v", err)
			SpawnToast(cmd, "Load failed: "+err.Error())
		} else {
			log.Infof("layout loaded from %s", layout.Path)
			SpawnToast(cmd, "Layout loaded from "+layout.Path)
		}
	}
}
