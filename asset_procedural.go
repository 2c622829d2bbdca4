package atrium

import (
	"image"
	"image/color"
	"image/draw"
)

// Procedural gallery surfaces. Everything here is deterministic: the same
// seed yields the same pixels, so canvases and placards are stable across
// runs and under layout reload.

func hashSeed(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// hashNoise returns a uniform [0,1) value for an integer lattice point.
func hashNoise(x, y, seed uint32) float32 {
	h := seed
	h ^= x * 0x9E3779B1
	h = (h ^ (h >> 15)) * 0x85EBCA6B
	h ^= y * 0xC2B2AE35
	h = (h ^ (h >> 13)) * 0x27D4EB2F
	h ^= h >> 16
	return float32(h&0xFFFFFF) / float32(0x1000000)
}

// smoothNoise bilinearly interpolates hashNoise over the unit lattice.
func smoothNoise(fx, fy float32, seed uint32) float32 {
	ix := uint32(fx)
	iy := uint32(fy)
	tx := fx - float32(ix)
	ty := fy - float32(iy)

	n00 := hashNoise(ix, iy, seed)
	n10 := hashNoise(ix+1, iy, seed)
	n01 := hashNoise(ix, iy+1, seed)
	n11 := hashNoise(ix+1, iy+1, seed)

	top := n00 + (n10-n00)*tx
	bot := n01 + (n11-n01)*tx
	return top + (bot-top)*ty
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func rgb(r, g, b float32) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(r) * 255),
		G: uint8(clamp01(g) * 255),
		B: uint8(clamp01(b) * 255),
		A: 0xFF,
	}
}

func mixColor(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// makePlasterTexture is the wall surface: warm off-white with two octaves
// of low-amplitude noise.
func makePlasterTexture(size int, seed uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cells := float32(size) / 32

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float32(x) / float32(size) * cells
			fy := float32(y) / float32(size) * cells
			n := smoothNoise(fx, fy, seed)*0.7 + smoothNoise(fx*4, fy*4, seed+1)*0.3
			v := 0.88 + (n-0.5)*0.08
			img.SetRGBA(x, y, rgb(v, v*0.985, v*0.955))
		}
	}
	return img
}

// makeCheckerTexture is the floor: alternating tiles with a slight
// per-tile value jitter so the grid does not read as flat fill.
func makeCheckerTexture(size, tiles int, seed uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	tilePx := size / tiles

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			tx := x / tilePx
			ty := y / tilePx
			jitter := (hashNoise(uint32(tx), uint32(ty), seed) - 0.5) * 0.05
			var v float32
			if (tx+ty)%2 == 0 {
				v = 0.42 + jitter
			} else {
				v = 0.30 + jitter
			}
			img.SetRGBA(x, y, rgb(v, v*0.97, v*0.93))
		}
	}
	return img
}

// makeWoodTexture is used on frames and placard backings: dark vertical
// grain.
func makeWoodTexture(size int, seed uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float32(x) / float32(size)
			fy := float32(y) / float32(size)
			grain := smoothNoise(fx*24, fy*3, seed)
			v := 0.16 + grain*0.10
			img.SetRGBA(x, y, rgb(v*1.25, v*0.85, v*0.55))
		}
	}
	return img
}

// makeCanvasTexture paints the artwork for one exhibit. The composition
// is seeded by the exhibit id and keyed to its accent color, so each
// canvas is distinct but reproducible.
func makeCanvasTexture(size int, exhibit *Exhibit) *image.RGBA {
	seed := hashSeed(exhibit.Id)
	accent := exhibit.Accent
	counter := mixColor([3]float32{accent[2], accent[0], accent[1]}, [3]float32{1, 1, 1}, 0.2)
	bg := mixColor(accent, [3]float32{0.97, 0.96, 0.93}, 0.85)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(rgb(bg[0], bg[1], bg[2])), image.Point{}, draw.Src)

	// Horizontal bands in alternating accent shades.
	bands := 3 + int(hashNoise(1, 1, seed)*4)
	y := 0
	for i := 0; i < bands && y < size; i++ {
		h := int(float32(size) / float32(bands) * (0.5 + hashNoise(uint32(i), 2, seed)))
		shade := mixColor(accent, counter, hashNoise(uint32(i), 3, seed))
		tone := 0.65 + hashNoise(uint32(i), 4, seed)*0.5
		c := rgb(shade[0]*tone, shade[1]*tone, shade[2]*tone)
		bottom := y + h
		if bottom > size {
			bottom = size
		}
		draw.Draw(img, image.Rect(0, y, size, bottom), image.NewUniform(c), image.Point{}, draw.Src)
		y += h + int(hashNoise(uint32(i), 5, seed)*float32(size)*0.08)
	}

	// A few solid discs on top for variety.
	discs := 2 + int(hashNoise(2, 6, seed)*3)
	for i := 0; i < discs; i++ {
		cx := int(hashNoise(uint32(i), 7, seed) * float32(size))
		cy := int(hashNoise(uint32(i), 8, seed) * float32(size))
		r := int((0.05 + hashNoise(uint32(i), 9, seed)*0.12) * float32(size))
		shade := mixColor(counter, accent, hashNoise(uint32(i), 10, seed))
		fillDisc(img, cx, cy, r, rgb(shade[0], shade[1], shade[2]))
	}

	return img
}

func fillDisc(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx := x - cx
			dy := y - cy
			if dx*dx+dy*dy <= r*r && (image.Point{X: x, Y: y}).In(img.Bounds()) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

const (
	placardTexWidth  = 512
	placardTexHeight = 256
	placardMargin    = 24
)

// makePlacardTexture rasterizes the wall label for one exhibit: title,
// accent rule, wrapped short description.
func makePlacardTexture(atlas *TextAtlas, exhibit *Exhibit) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, placardTexWidth, placardTexHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(rgb(0.93, 0.92, 0.89)), image.Point{}, draw.Src)

	ink := color.RGBA{R: 0x22, G: 0x20, B: 0x1E, A: 0xFF}
	faded := color.RGBA{R: 0x55, G: 0x52, B: 0x4E, A: 0xFF}
	accent := rgb(exhibit.Accent[0], exhibit.Accent[1], exhibit.Accent[2])

	y := placardMargin
	atlas.DrawString(img, placardMargin, y, exhibit.Title, ink)
	y += int(atlas.LineHeight(1)) + 6

	titleW, _ := atlas.MeasureText(exhibit.Title, 1)
	draw.Draw(img, image.Rect(placardMargin, y, placardMargin+int(titleW), y+4), image.NewUniform(accent), image.Point{}, draw.Src)
	y += 14

	maxW := float32(placardTexWidth - 2*placardMargin)
	for _, line := range atlas.WrapText(exhibit.ShortDescription, 1, maxW) {
		if y+int(atlas.LineHeight(1)) > placardTexHeight-placardMargin {
			break
		}
		atlas.DrawString(img, placardMargin, y, line, faded)
		y += int(atlas.LineHeight(1)) + 2
	}

	return img
}
