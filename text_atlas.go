package atrium

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextVertex is the HUD vertex: screen-space quads in NDC sampling the
// glyph atlas. Solid panels use the same pipeline through the atlas's
// reserved solid patch.
type TextVertex struct {
	Pos   [2]float32 `atrium:"layout" format:"float2" location:"0"`
	UV    [2]float32 `atrium:"layout" format:"float2" location:"1"`
	Color [4]float32 `atrium:"layout" format:"float4" location:"2"`
}

// TextItem is one run of text. Position is in pixels from the top-left of
// the framebuffer; Scale multiplies the face's nominal size.
type TextItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type Glyph struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

// TextAtlas rasterizes the printable ASCII range of one face into a single
// alpha atlas at load time. Everything text-shaped - HUD runs, panel
// quads, placard textures - goes through it.
type TextAtlas struct {
	atlas  *image.Alpha
	glyphs map[rune]Glyph
	face   font.Face

	ascent     float32
	lineHeight float32
	solidUV    [2]float32
}

const textAtlasSize = 512

// solidPatchPx is a small region at the atlas origin filled with full
// alpha; quads that want flat color sample its center.
const solidPatchPx = 6

// NewTextAtlas builds the atlas from the embedded Go Regular face, so no
// font file ships with the binary.
func NewTextAtlas(fontSize float64) (*TextAtlas, error) {
	return NewTextAtlasFromData(goregular.TTF, fontSize)
}

func NewTextAtlasFromData(fontData []byte, fontSize float64) (*TextAtlas, error) {
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, textAtlasSize, textAtlasSize))
	draw.Draw(atlas, image.Rect(0, 0, solidPatchPx, solidPatchPx), image.NewUniform(color.Alpha{A: 0xFF}), image.Point{}, draw.Src)

	glyphs := make(map[rune]Glyph)
	x, y := solidPatchPx+2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= textAtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= textAtlasSize {
			return nil, fmt.Errorf("atlas overflow at %q (size %d, face %gpt)", r, textAtlasSize, fontSize)
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = Glyph{
			UVMin: [2]float32{float32(x) / textAtlasSize, float32(y) / textAtlasSize},
			UVMax: [2]float32{float32(x+w) / textAtlasSize, float32(y+h) / textAtlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			// bounds is fixed 26.6; convert to pixels.
			Off: [2]float32{float32(bounds.Min.X) / 64.0, float32(bounds.Min.Y) / 64.0},
			Adv: float32(adv) / 64.0,
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	metrics := face.Metrics()
	half := float32(solidPatchPx) / 2 / textAtlasSize
	return &TextAtlas{
		atlas:      atlas,
		glyphs:     glyphs,
		face:       face,
		ascent:     float32(metrics.Ascent.Ceil()),
		lineHeight: float32(metrics.Height.Ceil()),
		solidUV:    [2]float32{half, half},
	}, nil
}

func (ta *TextAtlas) Image() *image.Alpha {
	return ta.atlas
}

// ensureTextAtlas returns the shared atlas resource, building one on first
// use. 18pt reads well for both HUD text and placard rasterization.
func ensureTextAtlas(app *App, cmd *Commands) *TextAtlas {
	if atlas := resourceOf[TextAtlas](app); atlas != nil {
		return atlas
	}
	atlas, err := NewTextAtlas(18)
	if err != nil {
		panic(fmt.Sprintf("build text atlas: %v", err))
	}
	cmd.AddResources(atlas)
	return atlas
}

// BuildText appends two triangles per glyph in NDC for the given
// framebuffer size. Newlines advance by the line height.
func (ta *TextAtlas) BuildText(vertices []TextVertex, items []TextItem, screenW, screenH int) []TextVertex {
	sw := float32(screenW)
	sh := float32(screenH)

	for _, item := range items {
		startX := item.Position[0]
		posX := startX
		posY := item.Position[1] + ta.ascent*item.Scale

		for _, r := range item.Text {
			if r == '\n' {
				posX = startX
				posY += ta.lineHeight * item.Scale
				continue
			}

			g, ok := ta.glyphs[r]
			if !ok {
				continue
			}

			x0 := (posX+g.Off[0]*item.Scale)/sw*2.0 - 1.0
			y0 := 1.0 - (posY+g.Off[1]*item.Scale)/sh*2.0
			x1 := (posX+(g.Off[0]+g.Size[0])*item.Scale)/sw*2.0 - 1.0
			y1 := 1.0 - (posY+(g.Off[1]+g.Size[1])*item.Scale)/sh*2.0

			vertices = append(vertices,
				TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UVMin[0], g.UVMin[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UVMax[0], g.UVMax[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: item.Color},
			)

			posX += g.Adv * item.Scale
		}
	}

	return vertices
}

// BuildQuad appends a flat-colored rectangle (pixel coords) through the
// solid patch.
func (ta *TextAtlas) BuildQuad(vertices []TextVertex, x, y, w, h float32, screenW, screenH int, col [4]float32) []TextVertex {
	sw := float32(screenW)
	sh := float32(screenH)

	x0 := x/sw*2.0 - 1.0
	y0 := 1.0 - y/sh*2.0
	x1 := (x+w)/sw*2.0 - 1.0
	y1 := 1.0 - (y+h)/sh*2.0

	uv := ta.solidUV
	return append(vertices,
		TextVertex{Pos: [2]float32{x0, y0}, UV: uv, Color: col},
		TextVertex{Pos: [2]float32{x1, y0}, UV: uv, Color: col},
		TextVertex{Pos: [2]float32{x0, y1}, UV: uv, Color: col},
		TextVertex{Pos: [2]float32{x1, y0}, UV: uv, Color: col},
		TextVertex{Pos: [2]float32{x1, y1}, UV: uv, Color: col},
		TextVertex{Pos: [2]float32{x0, y1}, UV: uv, Color: col},
	)
}

// MeasureText returns the pixel extent of a (possibly multi-line) string.
func (ta *TextAtlas) MeasureText(text string, scale float32) (float32, float32) {
	if ta == nil {
		return 0, 0
	}

	maxW := float32(0)
	lineW := float32(0)
	lines := 1

	for _, r := range text {
		if r == '\n' {
			if lineW > maxW {
				maxW = lineW
			}
			lineW = 0
			lines++
			continue
		}
		if g, ok := ta.glyphs[r]; ok {
			lineW += g.Adv * scale
		}
	}
	if lineW > maxW {
		maxW = lineW
	}

	return maxW, ta.lineHeight * scale * float32(lines)
}

func (ta *TextAtlas) LineHeight(scale float32) float32 {
	if ta == nil {
		return 0
	}
	return ta.lineHeight * scale
}

// WrapText breaks a string into lines no wider than maxWidth pixels at the
// given scale. Words that alone exceed the width get their own line rather
// than being split.
func (ta *TextAtlas) WrapText(text string, scale float32, maxWidth float32) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if w, _ := ta.MeasureText(candidate, scale); w > maxWidth {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// DrawString blits a single line into an RGBA image with its top-left at
// (x, y), returning the advance in pixels. This is the placard rasterizer:
// world-space text becomes a texture, not HUD geometry.
func (ta *TextAtlas) DrawString(dst *image.RGBA, x, y int, text string, col color.RGBA) int {
	posX := float32(x)
	baseline := float32(y) + ta.ascent

	for _, r := range text {
		g, ok := ta.glyphs[r]
		if !ok {
			continue
		}

		gx := int(posX + g.Off[0])
		gy := int(baseline + g.Off[1])
		aw := int(g.Size[0])
		ah := int(g.Size[1])
		ax0 := int(g.UVMin[0] * textAtlasSize)
		ay0 := int(g.UVMin[1] * textAtlasSize)

		for py := 0; py < ah; py++ {
			for px := 0; px < aw; px++ {
				a := ta.atlas.AlphaAt(ax0+px, ay0+py).A
				if a == 0 {
					continue
				}
				blendPixel(dst, gx+px, gy+py, col, a)
			}
		}

		posX += g.Adv
	}

	return int(posX) - x
}

func blendPixel(dst *image.RGBA, x, y int, col color.RGBA, alpha uint8) {
	if !(image.Point{X: x, Y: y}).In(dst.Bounds()) {
		return
	}
	bg := dst.RGBAAt(x, y)
	a := uint32(alpha)
	inv := 255 - a
	dst.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(col.R)*a + uint32(bg.R)*inv) / 255),
		G: uint8((uint32(col.G)*a + uint32(bg.G)*inv) / 255),
		B: uint8((uint32(col.B)*a + uint32(bg.B)*inv) / 255),
		A: 0xFF,
	})
}
