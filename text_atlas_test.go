package atrium

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func testAtlas(t *testing.T) *TextAtlas {
	t.Helper()
	atlas, err := NewTextAtlas(18)
	if err != nil {
		t.Fatalf("build atlas: %v", err)
	}
	return atlas
}

func TestTextAtlas_GlyphCoverage(t *testing.T) {
	atlas := testAtlas(t)

	for r := rune(33); r < 127; r++ {
		if _, ok := atlas.glyphs[r]; !ok {
			t.Errorf("missing glyph %q", r)
		}
	}
	if atlas.lineHeight <= 0 || atlas.ascent <= 0 {
		t.Errorf("bad metrics: lineHeight %v ascent %v", atlas.lineHeight, atlas.ascent)
	}

	// The solid patch must actually be opaque where flat quads sample it.
	px := int(atlas.solidUV[0] * textAtlasSize)
	py := int(atlas.solidUV[1] * textAtlasSize)
	if atlas.atlas.AlphaAt(px, py).A != 0xFF {
		t.Errorf("solid patch not opaque at (%d, %d)", px, py)
	}
}

func TestTextAtlas_MeasureText(t *testing.T) {
	atlas := testAtlas(t)

	w1, h1 := atlas.MeasureText("Atrium", 1)
	if w1 <= 0 {
		t.Errorf("nonzero text must measure wide, got %v", w1)
	}
	if h1 != atlas.lineHeight {
		t.Errorf("single line height %v, want %v", h1, atlas.lineHeight)
	}

	w2, _ := atlas.MeasureText("Atrium", 2)
	if absf(w2-w1*2) > 1e-3 {
		t.Errorf("doubling scale must double width: %v vs %v", w2, w1)
	}

	wider, _ := atlas.MeasureText("Atrium Gallery", 1)
	if wider <= w1 {
		t.Errorf("longer text must measure wider")
	}

	mw, mh := atlas.MeasureText("one\ntwo longer line\nthree", 1)
	lw, _ := atlas.MeasureText("two longer line", 1)
	if mw != lw {
		t.Errorf("multiline width is the longest line: %v vs %v", mw, lw)
	}
	if mh != atlas.lineHeight*3 {
		t.Errorf("three lines measure %v, want %v", mh, atlas.lineHeight*3)
	}
}

func TestTextAtlas_NilReceiverIsInert(t *testing.T) {
	var atlas *TextAtlas

	if w, h := atlas.MeasureText("anything", 1); w != 0 || h != 0 {
		t.Errorf("nil atlas must measure zero, got %v %v", w, h)
	}
	if lh := atlas.LineHeight(1); lh != 0 {
		t.Errorf("nil atlas line height must be zero, got %v", lh)
	}
}

func TestTextAtlas_WrapText(t *testing.T) {
	atlas := testAtlas(t)

	text := "the quick brown fox jumps over the lazy dog and keeps going"
	lines := atlas.WrapText(text, 1, 120)
	if len(lines) < 3 {
		t.Fatalf("expected several wrapped lines, got %d", len(lines))
	}
	for i, line := range lines {
		if w, _ := atlas.MeasureText(line, 1); w > 120 && strings.Contains(line, " ") {
			t.Errorf("line %d too wide (%v): %q", i, w, line)
		}
	}

	// Re-joining loses nothing.
	joined := strings.Join(lines, " ")
	if joined != text {
		t.Errorf("wrap must preserve words: %q", joined)
	}

	// A word wider than the limit gets its own line.
	lines = atlas.WrapText("a incomprehensibilities b", 1, 40)
	found := false
	for _, line := range lines {
		if line == "incomprehensibilities" {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized word must land alone: %v", lines)
	}

	// Paragraph breaks survive as empty lines.
	lines = atlas.WrapText("first\n\nsecond", 1, 500)
	if len(lines) != 3 || lines[1] != "" {
		t.Errorf("blank paragraph must survive wrapping: %v", lines)
	}
}

func TestTextAtlas_BuildText(t *testing.T) {
	atlas := testAtlas(t)

	verts := atlas.BuildText(nil, []TextItem{{
		Text:     "Go",
		Position: [2]float32{10, 10},
		Scale:    1,
		Color:    [4]float32{1, 1, 1, 1},
	}}, 640, 480)

	if len(verts) != 12 {
		t.Fatalf("expected 6 vertices per glyph, got %d", len(verts))
	}
	for _, v := range verts {
		if v.Pos[0] < -1 || v.Pos[0] > 1 || v.Pos[1] < -1 || v.Pos[1] > 1 {
			t.Errorf("vertex outside NDC: %+v", v.Pos)
		}
	}

	// A newline advances down, not right.
	one := atlas.BuildText(nil, []TextItem{{Text: "a", Position: [2]float32{10, 10}, Scale: 1}}, 640, 480)
	two := atlas.BuildText(nil, []TextItem{{Text: "a\na", Position: [2]float32{10, 10}, Scale: 1}}, 640, 480)
	if len(two) != 2*len(one) {
		t.Fatalf("newline itself must emit nothing, got %d vertices", len(two))
	}
	if two[6].Pos[0] != two[0].Pos[0] {
		t.Errorf("second line must reset x: %v vs %v", two[6].Pos[0], two[0].Pos[0])
	}
	if two[6].Pos[1] >= two[0].Pos[1] {
		t.Errorf("second line must sit lower in NDC: %v vs %v", two[6].Pos[1], two[0].Pos[1])
	}
}

func TestTextAtlas_BuildTextSkipsUnknownRunes(t *testing.T) {
	atlas := testAtlas(t)

	verts := atlas.BuildText(nil, []TextItem{{Text: "aéa", Position: [2]float32{10, 10}, Scale: 1}}, 640, 480)
	if len(verts) != 12 {
		t.Errorf("runes outside the atlas are skipped, got %d vertices", len(verts))
	}
}

func TestTextAtlas_BuildQuad(t *testing.T) {
	atlas := testAtlas(t)

	col := [4]float32{0.5, 0.5, 0.5, 1}
	verts := atlas.BuildQuad(nil, 0, 0, 320, 240, 640, 480, col)

	if len(verts) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(verts))
	}
	for _, v := range verts {
		if v.UV != atlas.solidUV {
			t.Errorf("flat quads sample the solid patch, got %v", v.UV)
		}
		if v.Color != col {
			t.Errorf("unexpected color %v", v.Color)
		}
	}

	// Top-left quarter of the frame in NDC.
	if verts[0].Pos != [2]float32{-1, 1} {
		t.Errorf("first corner %v, want (-1, 1)", verts[0].Pos)
	}
	if verts[4].Pos != [2]float32{0, 0} {
		t.Errorf("opposite corner %v, want (0, 0)", verts[4].Pos)
	}
}

func TestTextAtlas_DrawString(t *testing.T) {
	atlas := testAtlas(t)

	dst := image.NewRGBA(image.Rect(0, 0, 200, 40))
	adv := atlas.DrawString(dst, 4, 4, "Atrium", color.RGBA{R: 255, G: 255, B: 255, A: 255})

	if adv <= 0 {
		t.Fatalf("expected a positive advance, got %d", adv)
	}
	w, _ := atlas.MeasureText("Atrium", 1)
	if absf(float32(adv)-w) > 2 {
		t.Errorf("advance %d should match measure %v", adv, w)
	}

	// Something must have been inked.
	inked := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 200; x++ {
			if r, _, _, _ := dst.At(x, y).RGBA(); r > 0 {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Errorf("draw must touch pixels")
	}

	// Out-of-bounds draws clip instead of panicking.
	tiny := image.NewRGBA(image.Rect(0, 0, 4, 4))
	atlas.DrawString(tiny, -50, -50, "Atrium", color.RGBA{A: 255})
}

func TestTextAtlas_BadFontData(t *testing.T) {
	if _, err := NewTextAtlasFromData([]byte("not a font"), 18); err == nil {
		t.Errorf("expected an error for junk font data")
	}
}
