package atrium

// RendererName identifies a concrete renderer module.
// Keep names aligned with ensureSingleRenderer tags.
type RendererName string

const (
	RendererWGPU RendererName = "wgpu"
)

// Renderer is an alias to Module for semantic clarity in APIs.
type Renderer interface {
	Module
}

// UseWGPU selects the wgpu scene renderer together with the platform window
// it draws to. Equivalent to adding NewPlatformWindow and
// SceneRendererModule by hand, in that order.
func (b *AppBuilder) UseWGPU(width, height int, title string) *AppBuilder {
	return b.UseModule(
		NewPlatformWindow(width, height, title),
		SceneRendererModule{},
	)
}
