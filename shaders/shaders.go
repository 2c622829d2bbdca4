package shaders

import (
	_ "embed"
)

//go:embed gallery.wgsl
var GalleryWGSL string

//go:embed hud.wgsl
var HudWGSL string
