package atrium

// The HUD draws into a HudModel display list that the renderer turns into
// atlas-textured quads. Widgets are plain components in the world, so
// tests can drive them without a window.

type HudQuad struct {
	X, Y, W, H float32
	Color      [4]float32
}

// HudModel is the frame's HUD display list. HUD systems rebuild it every
// tick; the renderer only reads it.
type HudModel struct {
	Quads []HudQuad
	Texts []TextItem
}

func (m *HudModel) reset() {
	m.Quads = m.Quads[:0]
	m.Texts = m.Texts[:0]
}

func (m *HudModel) quad(x, y, w, h float32, color [4]float32) {
	m.Quads = append(m.Quads, HudQuad{X: x, Y: y, W: w, H: h, Color: color})
}

func (m *HudModel) text(s string, x, y, scale float32, color [4]float32) {
	m.Texts = append(m.Texts, TextItem{Text: s, Position: [2]float32{x, y}, Scale: scale, Color: color})
}

// UiText is a positioned HUD label.
type UiText struct {
	Text     string
	Position [2]float32 // Screen pixels, top-left
	Scale    float32    // Optional scale multiplier (default 1.0)
	Color    [4]float32
}

// UiButton is a clickable HUD box. Width 0 auto-sizes from the label.
type UiButton struct {
	Label       string
	Position    [2]float32 // Screen pixels, top-left
	Width       float32    // Optional fixed width. If 0, auto-size.
	Scale       float32    // Optional scale multiplier (default 1.0)
	Clicked     bool
	Highlighted bool
	OnClick     func()
}

// UiTable renders a header row plus data rows; columns size to content.
type UiTable struct {
	Headers  []string
	Rows     [][]string
	Position [2]float32
	Scale    float32 // Optional scale multiplier (default 1.0)
}

// ToastComponent is a transient top-right notification. Pair it with a
// LifetimeComponent; SpawnToast does both.
type ToastComponent struct {
	Text string
}

// inspectPanelTag marks widget entities owned by the inspect modal so the
// exit phase can sweep them.
type inspectPanelTag struct{}

const (
	hudButtonPaddingX = 20.0
	hudPanelPad       = 28.0
	toastSeconds      = 2.5
)

var (
	hudTextColor      = [4]float32{0.92, 0.92, 0.90, 1}
	hudDimColor       = [4]float32{0.72, 0.72, 0.69, 1}
	hudPanelColor     = [4]float32{0.07, 0.07, 0.09, 0.92}
	hudOverlayColor   = [4]float32{0, 0, 0, 0.55}
	hudButtonColor    = [4]float32{0.16, 0.16, 0.19, 1}
	hudButtonHotColor = [4]float32{0.24, 0.24, 0.30, 1}
	hudSeparatorColor = [4]float32{0.38, 0.38, 0.36, 1}
	hudReticleColor   = [4]float32{0.95, 0.95, 0.95, 0.85}
)

// SpawnToast raises a short-lived notification in the top-right corner.
func SpawnToast(cmd *Commands, text string) {
	cmd.AddEntity(
		ToastComponent{Text: text},
		LifetimeComponent{TimeLeft: toastSeconds},
	)
}

// HudModule draws mode chrome (hints, reticle, hover caption, the inspect
// modal) plus the generic widgets. Install it after InteractionModule; the
// hit-test consumes clicks before the session sees them.
type HudModule struct{}

func (HudModule) Install(app *App, cmd *Commands) {
	ensureTextAtlas(app, cmd)
	if resourceOf[HudModel](app) == nil {
		cmd.AddResources(&HudModel{})
	}

	app.UseSystem(System(hudInputSystem).InStage(PreUpdate).RunAlways())
	app.UseSystem(System(hudBuildSystem).InStage(PreRender).RunAlways())
	if app.stateful {
		app.UseSystem(System(openInspectPanelSystem).InStage(Update).InState(OnEnter(ModeInspecting)))
		app.UseSystem(System(closeInspectPanelSystem).InStage(Update).InState(OnExit(ModeInspecting)))
	}
}

func buttonSize(atlas *TextAtlas, btn *UiButton) (float32, float32) {
	scale := btn.Scale
	if scale <= 0 {
		scale = 1.0
	}
	w := btn.Width
	if w == 0 {
		tw, _ := atlas.MeasureText(btn.Label, scale)
		w = tw + hudButtonPaddingX*2.0*scale
	}
	return w, atlas.LineHeight(scale) * 1.8
}

type hudRect struct {
	X, Y, W, H float32
}

// modalLayout computes the inspect panel geometry for a framebuffer size.
// The hit-test and the draw pass both call it, so the close button's click
// region always matches its pixels.
func modalLayout(winW, winH int, atlas *TextAtlas) (panel, closeBtn, tableAt hudRect) {
	w := float32(winW) * 0.58
	if w > 720 {
		w = 720
	}
	if w < 280 {
		w = float32(winW) - 32
	}
	h := float32(winH) * 0.66
	if h > 560 {
		h = 560
	}

	panel = hudRect{X: (float32(winW) - w) / 2, Y: (float32(winH) - h) / 2, W: w, H: h}

	btnH := atlas.LineHeight(1) * 1.8
	closeBtn = hudRect{
		X: panel.X + panel.W - 150 - hudPanelPad,
		Y: panel.Y + panel.H - btnH - hudPanelPad,
		W: 150,
		H: btnH,
	}
	tableAt = hudRect{X: panel.X + hudPanelPad, Y: panel.Y + h*0.58}
	return panel, closeBtn, tableAt
}

// hudInputSystem hit-tests buttons while the cursor is free. A click on a
// widget is consumed so the session never treats it as a world gesture.
func hudInputSystem(cmd *Commands, session *Session, input *Input, atlas *TextAtlas) {
	if session.Mode == ModeLocked || input.WindowWidth == 0 {
		return
	}

	mx := float32(input.MouseX)
	my := float32(input.MouseY)
	clicked := input.JustPressed[MouseButtonLeft]

	MakeQuery1[UiButton](cmd).Map(func(_ EntityId, btn *UiButton) bool {
		btn.Clicked = false

		w, h := buttonSize(atlas, btn)
		over := mx >= btn.Position[0] && mx <= btn.Position[0]+w &&
			my >= btn.Position[1] && my <= btn.Position[1]+h
		btn.Highlighted = over

		if over && clicked {
			btn.Clicked = true
			input.Consume(MouseButtonLeft)
			if btn.OnClick != nil {
				btn.OnClick()
			}
		}
		return true
	})
}

// openInspectPanelSystem spawns the modal's widget entities when the mode
// enters inspection. Their positions are set every frame by the build
// system, so resizes keep the layout honest.
func openInspectPanelSystem(cmd *Commands, session *Session) {
	exhibit := session.ActiveExhibit
	if exhibit == nil {
		return
	}

	rows := make([][]string, 0, len(exhibit.TechTags))
	for _, tag := range exhibit.TechTags {
		rows = append(rows, []string{tag})
	}
	cmd.AddEntity(
		inspectPanelTag{},
		UiTable{Headers: []string{"Built with"}, Rows: rows},
	)
	cmd.AddEntity(
		inspectPanelTag{},
		UiButton{Label: "Close", Width: 150, OnClick: session.CloseInspection},
	)
}

func closeInspectPanelSystem(cmd *Commands) {
	MakeQuery1[inspectPanelTag](cmd).Map(func(eid EntityId, _ *inspectPanelTag) bool {
		cmd.RemoveEntity(eid)
		return true
	})
}

func hudBuildSystem(cmd *Commands, hud *HudModel, session *Session, catalog *ExhibitCatalog, input *Input, atlas *TextAtlas) {
	hud.reset()

	w := input.WindowWidth
	h := input.WindowHeight
	if w == 0 || h == 0 {
		return
	}
	fw := float32(w)
	fh := float32(h)
	lineH := atlas.LineHeight(1)

	switch session.Mode {
	case ModeUnlocked:
		hint := "Click to explore the gallery"
		tw, _ := atlas.MeasureText(hint, 1)
		hud.text(hint, (fw-tw)/2, fh*0.62, 1, hudTextColor)

		footer := "WASD to walk, mouse to look, Esc to release the cursor"
		fwid, _ := atlas.MeasureText(footer, 1)
		hud.text(footer, (fw-fwid)/2, fh-lineH-18, 1, hudDimColor)

	case ModeLocked:
		cx := fw / 2
		cy := fh / 2
		hud.quad(cx-7, cy-1, 14, 2, hudReticleColor)
		hud.quad(cx-1, cy-7, 2, 14, hudReticleColor)

		if session.HoveredId != "" {
			if exhibit, ok := catalog.ById(session.HoveredId); ok {
				title := exhibit.Title
				prompt := "Click to inspect"
				w1, _ := atlas.MeasureText(title, 1)
				w2, _ := atlas.MeasureText(prompt, 1)
				capW := max(w1, w2) + 2*hudPanelPad
				capH := lineH*2 + 26
				x := (fw - capW) / 2
				y := fh - capH - 48

				hud.quad(x, y, capW, capH, hudPanelColor)
				hud.quad(x, y, capW, 3, accentColor(exhibit))
				hud.text(title, x+(capW-w1)/2, y+10, 1, hudTextColor)
				hud.text(prompt, x+(capW-w2)/2, y+10+lineH, 1, hudDimColor)
			}
		}

	case ModeInspecting:
		if exhibit := session.ActiveExhibit; exhibit != nil {
			hud.quad(0, 0, fw, fh, hudOverlayColor)

			panel, closeBtn, tableAt := modalLayout(w, h, atlas)
			hud.quad(panel.X-2, panel.Y-2, panel.W+4, panel.H+4, accentColor(exhibit))
			hud.quad(panel.X, panel.Y, panel.W, panel.H, hudPanelColor)

			x := panel.X + hudPanelPad
			y := panel.Y + hudPanelPad
			hud.text(exhibit.Title, x, y, 1.4, hudTextColor)
			y += atlas.LineHeight(1.4) + 8
			titleW, _ := atlas.MeasureText(exhibit.Title, 1.4)
			hud.quad(x, y, titleW, 3, accentColor(exhibit))
			y += 16

			maxW := panel.W - 2*hudPanelPad
			for _, line := range atlas.WrapText(exhibit.LongDescription, 1, maxW) {
				if y+lineH > tableAt.Y-8 {
					break
				}
				hud.text(line, x, y, 1, hudTextColor)
				y += lineH + 2
			}

			MakeQuery2[UiButton, inspectPanelTag](cmd).Map(func(_ EntityId, btn *UiButton, _ *inspectPanelTag) bool {
				btn.Position = [2]float32{closeBtn.X, closeBtn.Y}
				btn.Width = closeBtn.W
				return true
			})
			MakeQuery2[UiTable, inspectPanelTag](cmd).Map(func(_ EntityId, table *UiTable, _ *inspectPanelTag) bool {
				table.Position = [2]float32{tableAt.X, tableAt.Y}
				return true
			})
		}
	}

	// Toasts stack top-right and fade out near expiry.
	toastY := float32(20)
	MakeQuery2[ToastComponent, LifetimeComponent](cmd).Map(func(_ EntityId, toast *ToastComponent, lt *LifetimeComponent) bool {
		alpha := clamp01(lt.TimeLeft / 0.5)
		tw, _ := atlas.MeasureText(toast.Text, 1)
		bw := tw + 28
		bh := lineH + 16
		x := fw - bw - 20

		hud.quad(x, toastY, bw, bh, scaleAlpha(hudPanelColor, alpha))
		hud.text(toast.Text, x+14, toastY+8, 1, scaleAlpha(hudTextColor, alpha))
		toastY += bh + 10
		return true
	})

	// Widgets draw last so they sit on top of the mode chrome.
	MakeQuery1[UiText](cmd).Map(func(_ EntityId, txt *UiText) bool {
		scale := txt.Scale
		if scale <= 0 {
			scale = 1.0
		}
		hud.text(txt.Text, txt.Position[0], txt.Position[1], scale, txt.Color)
		return true
	})

	MakeQuery1[UiButton](cmd).Map(func(_ EntityId, btn *UiButton) bool {
		bw, bh := buttonSize(atlas, btn)
		bg := hudButtonColor
		if btn.Highlighted {
			bg = hudButtonHotColor
		}
		scale := btn.Scale
		if scale <= 0 {
			scale = 1.0
		}

		hud.quad(btn.Position[0], btn.Position[1], bw, bh, bg)
		tw, _ := atlas.MeasureText(btn.Label, scale)
		hud.text(btn.Label, btn.Position[0]+(bw-tw)/2, btn.Position[1]+(bh-atlas.LineHeight(scale))/2, scale, hudTextColor)
		return true
	})

	MakeQuery1[UiTable](cmd).Map(func(_ EntityId, table *UiTable) bool {
		if len(table.Headers) == 0 {
			return true
		}
		scale := table.Scale
		if scale <= 0 {
			scale = 1.0
		}
		pad := 16 * scale
		rowH := atlas.LineHeight(scale) + 6

		colW := make([]float32, len(table.Headers))
		for i, header := range table.Headers {
			tw, _ := atlas.MeasureText(header, scale)
			colW[i] = tw + pad*2
		}
		for _, row := range table.Rows {
			for i, cellText := range row {
				if i >= len(colW) {
					break
				}
				tw, _ := atlas.MeasureText(cellText, scale)
				if tw+pad*2 > colW[i] {
					colW[i] = tw + pad*2
				}
			}
		}
		totalW := float32(0)
		for _, cw := range colW {
			totalW += cw
		}

		x := table.Position[0]
		y := table.Position[1]
		hud.quad(x, y, totalW, rowH*float32(len(table.Rows)+1)+8, hudButtonColor)

		cx := x
		for i, header := range table.Headers {
			hud.text(header, cx+pad, y+3, scale, hudDimColor)
			cx += colW[i]
		}
		hud.quad(x, y+rowH, totalW, 2, hudSeparatorColor)

		rowY := y + rowH + 6
		for _, row := range table.Rows {
			cx = x
			for i, cellText := range row {
				if i >= len(colW) {
					break
				}
				hud.text(cellText, cx+pad, rowY, scale, hudTextColor)
				cx += colW[i]
			}
			rowY += rowH
		}
		return true
	})
}

func accentColor(e *Exhibit) [4]float32 {
	return [4]float32{e.Accent[0], e.Accent[1], e.Accent[2], 1}
}

func scaleAlpha(c [4]float32, a float32) [4]float32 {
	c[3] *= a
	return c
}
