package atrium

import (
	"fmt"
	"reflect"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer can be installed at a time.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer enforces the single-renderer invariant. Installing a
// second renderer under a different name panics.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	t := reflect.TypeOf((*RendererTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		tag, ok := res.(*RendererTag)
		if !ok {
			panic("RendererTag resource present with unexpected type")
		}
		if tag.Name != name {
			app.Logger().Errorf("multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}
