package builder

import (
	"os"
	"path/filepath"
	"testing"
)

var expectedFiles = []string{
	"instances.raw", "meshes.raw", "clusters.raw",
	"positions.raw", "normals.raw", "tangents.raw",
	"texcoords.raw", "indices.raw", "materials.raw",
}

func TestGenerateWritesAllNineFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(dir, Options{InstanceCount: 8, GridSide: 4}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, name := range expectedFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestGenerateInstanceFileSizeMatchesCount(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(dir, Options{InstanceCount: 10, GridSide: 5}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "instances.raw"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	const instanceStride = 144
	if info.Size() != 10*instanceStride {
		t.Fatalf("instances.raw size = %d, want %d", info.Size(), 10*instanceStride)
	}
}

func TestGenerateMaterialsFileSizeMatchesPalette(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(dir, Options{InstanceCount: 1}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "materials.raw"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	const materialStride = 24
	if info.Size() != int64(len(materialPalette))*materialStride {
		t.Fatalf("materials.raw size = %d, want %d", info.Size(), int64(len(materialPalette))*materialStride)
	}
}

func TestOptionsWithDefaultsFillsZeroFields(t *testing.T) {
	o := Options{}.withDefaults()
	if o.InstanceCount != 64 || o.GridSide != 16 || o.Spacing != 3 || o.CubeSize != 1 || o.LOD != 0 {
		t.Fatalf("withDefaults() = %+v, want {64 16 3 1 0}", o)
	}
}

func TestOptionsWithDefaultsPreservesSetFields(t *testing.T) {
	o := Options{InstanceCount: 100, GridSide: 10, Spacing: 5, CubeSize: 2, LOD: 2}.withDefaults()
	if o.InstanceCount != 100 || o.GridSide != 10 || o.Spacing != 5 || o.CubeSize != 2 || o.LOD != 2 {
		t.Fatalf("withDefaults() changed explicitly set fields: %+v", o)
	}
}

func TestGenerateCyclesMaterialPaletteWithinRange(t *testing.T) {
	dir := t.TempDir()
	count := len(materialPalette)*2 + 1
	if err := Generate(dir, Options{InstanceCount: count, GridSide: 8}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "instances.raw"))
	if err != nil {
		t.Fatalf("read instances.raw: %v", err)
	}
	const instanceStride = 144
	if len(data) != count*instanceStride {
		t.Fatalf("instances.raw size = %d, want %d", len(data), count*instanceStride)
	}
	// material_index sits right after mesh_index (offset 16*4+12*4=112), at offset 116.
	for i := 0; i < count; i++ {
		off := i*instanceStride + 16*4 + 12*4 + 4
		matIdx := uint32(data[off]) | uint32(data[off+1])<<8 | uint32(data[off+2])<<16 | uint32(data[off+3])<<24
		if int(matIdx) >= len(materialPalette) {
			t.Fatalf("instance %d material_index %d out of palette range %d", i, matIdx, len(materialPalette))
		}
	}
}
