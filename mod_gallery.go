package atrium

import "fmt"

// galleryTag marks every entity spawned from a GalleryDef, so a layout
// reload can clear the scene without touching resources or HUD entities.
type galleryTag struct{}

// GalleryModule spawns the gallery and installs the resources derived from
// its definition: the def itself, the exhibit catalog and the walkable
// bounds. Install it after AssetServerModule and before InteractionModule.
type GalleryModule struct {
	// Def overrides the gallery definition; default is DefaultGalleryDef.
	Def *GalleryDef
}

func (m GalleryModule) Install(app *App, cmd *Commands) {
	def := m.Def
	if def == nil {
		def = DefaultGalleryDef()
	}
	if err := def.Validate(); err != nil {
		panic(fmt.Sprintf("gallery definition invalid: %v", err))
	}

	assets := resourceOf[AssetServer](app)
	if assets == nil {
		panic("GalleryModule requires an AssetServer resource; install AssetServerModule first")
	}
	atlas := ensureTextAtlas(app, cmd)

	catalog := &ExhibitCatalog{}
	bounds := &RoomBounds{}
	cmd.AddResources(def, catalog, bounds)

	LoadGallery(cmd, assets, atlas, def, catalog, bounds)
	app.Logger().Debugf("gallery loaded: %d exhibits, %d lights", len(def.Exhibits), len(def.Lights))
}

// despawnGallery removes every gallery entity. Buffered like any other
// structural change; with despawns flushed before spawns, a despawn and a
// reload issued in the same system land cleanly in one flush.
func despawnGallery(cmd *Commands) {
	MakeQuery1[galleryTag](cmd).Map(func(eid EntityId, _ *galleryTag) bool {
		cmd.RemoveEntity(eid)
		return true
	})
}
