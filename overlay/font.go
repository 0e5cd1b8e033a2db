// Package overlay implements spec §4.6(F): a CPU-filled debug line
// buffer (locked cull-camera frustum, instance/cluster AABBs) and the
// bitmap-font stat text overlay that displays the one-frame-delayed
// readback counters (spec §4.8).
//
// The font atlas and glyph-quad builder are adapted directly from the
// teacher pack's Gekko3D-gekko voxelrt/rt/core.TextRenderer: an
// opentype face rasterized once into an alpha atlas, glyph UV rects
// recorded per rune, and a BuildVertices pass that turns a list of
// on-screen strings into a flat textured-quad vertex stream.
package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// atlasSize is the square font atlas texture's side length in texels.
const atlasSize = 512

// TextVertex is one vertex of a glyph quad: screen-space position in
// NDC, atlas UV, and a per-item color (stats text is always white but
// other overlay uses may tint it).
type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// TextItem is one string to draw at a normalized-device-coordinate
// anchor position, scaled and colored.
type TextItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type glyphInfo struct {
	uvMin, uvMax [2]float32
	size, off    [2]float32
	advance      float32
}

// Font rasterizes an OpenType font into a single alpha atlas once, at
// load time, and exposes glyph metrics used both to lay out quads and
// to measure string extents for the stats panel's background rect.
type Font struct {
	Atlas  *image.Alpha
	glyphs map[rune]glyphInfo
	face   font.Face
}

// LoadFont reads and rasterizes fontPath at fontSize points, 72 DPI,
// covering printable ASCII (32..126) — enough for the stats overlay's
// "%d of %d" style text. An empty fontPath falls back to x/image's
// embedded Go Regular face, so the debug overlay works with no
// on-disk asset dependency.
func LoadFont(fontPath string, fontSize float64) (*Font, error) {
	fontBytes := goregular.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("overlay: read font file: %w", err)
		}
		fontBytes = b
	}

	parsed, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse font: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("overlay: create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y := 2, 2
	rowHeight := 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			break
		}
		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = glyphInfo{
			uvMin:   [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax:   [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:    [2]float32{float32(w), float32(h)},
			off:     [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			advance: float32(adv) / 64.0,
		}
		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &Font{Atlas: atlas, glyphs: glyphs, face: face}, nil
}

// BuildVertices lays out items into a flat triangle-list vertex stream
// in normalized device coordinates for a screenW x screenH viewport.
func (f *Font) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	vertices := make([]TextVertex, 0, len(items)*6)

	sw, sh := float32(screenW), float32(screenH)
	metrics := f.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	for _, item := range items {
		startX := item.Position[0]
		posX := startX
		posY := item.Position[1] + ascent*item.Scale

		for _, r := range item.Text {
			if r == '\n' {
				posX = startX
				posY += lineHeight * item.Scale
				continue
			}
			g, ok := f.glyphs[r]
			if !ok {
				continue
			}

			x0 := (posX+g.off[0]*item.Scale)/sw*2.0 - 1.0
			y0 := 1.0 - (posY+g.off[1]*item.Scale)/sh*2.0
			x1 := (posX+(g.off[0]+g.size[0])*item.Scale)/sw*2.0 - 1.0
			y1 := 1.0 - (posY+(g.off[1]+g.size[1])*item.Scale)/sh*2.0

			vertices = append(vertices,
				TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.uvMin[0], g.uvMin[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.uvMax[0], g.uvMax[1]}, Color: item.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color},
			)
			posX += g.advance * item.Scale
		}
	}

	return vertices
}
