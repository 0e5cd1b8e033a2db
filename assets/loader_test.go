package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nivenh/meshlet/builder"
)

func TestLoaderRoundTripsGeneratedScene(t *testing.T) {
	dir := t.TempDir()
	opts := builder.Options{InstanceCount: 4, GridSide: 2, LOD: 0}
	if err := builder.Generate(dir, opts); err != nil {
		t.Fatalf("builder.Generate: %v", err)
	}

	l := NewLoader()
	sc, err := l.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(sc.Instances) != 4 {
		t.Fatalf("len(Instances) = %d, want 4", len(sc.Instances))
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("len(Meshes) = %d, want 1", len(sc.Meshes))
	}
	if len(sc.Clusters) == 0 {
		t.Fatal("expected at least one cluster")
	}
	if err := sc.Validate(); err != nil {
		t.Fatalf("loaded scene failed Validate: %v", err)
	}
}

func TestLoaderCachesByDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := builder.Generate(dir, builder.Options{InstanceCount: 1}); err != nil {
		t.Fatalf("builder.Generate: %v", err)
	}

	l := NewLoader()
	first, err := l.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load(dir)
	if err != nil {
		t.Fatalf("Load (cached): %v", err)
	}
	if first != second {
		t.Fatal("expected second Load of the same directory to return the cached *scene.Scene")
	}
	if l.Get(dir) != first {
		t.Fatal("expected Get to return the cached scene")
	}
}

func TestLoaderGetUnknownDirReturnsNil(t *testing.T) {
	l := NewLoader()
	if got := l.Get("/nowhere"); got != nil {
		t.Fatal("expected Get on an unloaded directory to return nil")
	}
}

func TestLoaderRejectsMisSizedFile(t *testing.T) {
	dir := t.TempDir()
	if err := builder.Generate(dir, builder.Options{InstanceCount: 1}); err != nil {
		t.Fatalf("builder.Generate: %v", err)
	}

	// Truncate instances.raw by one byte so its size is no longer a
	// multiple of the 144-byte record stride.
	path := filepath.Join(dir, "instances.raw")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)-1], 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader()
	if _, err := l.Load(dir); err == nil {
		t.Fatal("expected Load to reject a mis-sized instances.raw")
	}
}

func TestLoaderRejectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	if err := builder.Generate(dir, builder.Options{InstanceCount: 1}); err != nil {
		t.Fatalf("builder.Generate: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "materials.raw")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	l := NewLoader()
	if _, err := l.Load(dir); err == nil {
		t.Fatal("expected Load to fail when a well-known file is missing")
	}
}
