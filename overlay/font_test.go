package overlay

import "testing"

func TestLoadFontEmptyPathUsesEmbeddedFace(t *testing.T) {
	f, err := LoadFont("", 16)
	if err != nil {
		t.Fatalf("LoadFont(\"\"): %v", err)
	}
	if f.Atlas == nil {
		t.Fatal("expected a non-nil atlas")
	}
	if len(f.glyphs) == 0 {
		t.Fatal("expected at least one rasterized glyph")
	}
}

func TestLoadFontMissingFilePathFails(t *testing.T) {
	if _, err := LoadFont("/no/such/font.ttf", 16); err == nil {
		t.Fatal("expected an error for a nonexistent font path")
	}
}

func TestBuildVerticesProducesSixVerticesPerCharacter(t *testing.T) {
	f, err := LoadFont("", 16)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	items := []TextItem{{Text: "Hi", Position: [2]float32{10, 10}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}
	verts := f.BuildVertices(items, 800, 600)
	if len(verts) != 2*6 {
		t.Fatalf("len(verts) = %d, want %d (2 chars x 6 verts)", len(verts), 2*6)
	}
}

func TestBuildVerticesSkipsUnknownGlyphs(t *testing.T) {
	f, err := LoadFont("", 16)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	// A rune outside the rasterized 32..126 printable-ASCII range should
	// be silently skipped rather than panicking or emitting garbage quads.
	items := []TextItem{{Text: "AあB", Position: [2]float32{0, 0}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}
	verts := f.BuildVertices(items, 800, 600)
	if len(verts) != 2*6 {
		t.Fatalf("len(verts) = %d, want %d (2 ASCII chars x 6 verts, CJK char skipped)", len(verts), 2*6)
	}
}

func TestBuildVerticesHandlesNewline(t *testing.T) {
	f, err := LoadFont("", 16)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	items := []TextItem{{Text: "A\nB", Position: [2]float32{0, 0}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}
	verts := f.BuildVertices(items, 800, 600)
	if len(verts) != 2*6 {
		t.Fatalf("len(verts) = %d, want %d (newline contributes no quads)", len(verts), 2*6)
	}
}
