package accel

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/nivenh/meshlet/scene"
)

func readF32LE(b []byte, off int) float32 {
	bits := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
	return math.Float32frombits(bits)
}

func readU32LE(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

func testScene() *scene.Scene {
	return &scene.Scene{
		Clusters: []scene.Cluster{
			{VertexStart: 0, VertexCount: 24, PrimitiveStart: 0, PrimitiveCount: 12},
		},
		Indices: make([]uint32, 36),
	}
}

func TestBuildPoolOneEntryPerCluster(t *testing.T) {
	s := testScene()
	s.Clusters[0].AABB.Center = [3]float32{1, 2, 3}
	s.Clusters[0].AABB.Extents = [3]float32{1, 1, 1}

	pool, err := BuildPool(s)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	if len(pool.Entries) != len(s.Clusters) {
		t.Fatalf("len(Entries) = %d, want %d", len(pool.Entries), len(s.Clusters))
	}

	e := pool.Entries[0]
	if e.Min != (mustVec3(0, 1, 2)) {
		t.Fatalf("Min = %v, want center-extents", e.Min)
	}
	if e.Max != (mustVec3(2, 3, 4)) {
		t.Fatalf("Max = %v, want center+extents", e.Max)
	}
	if e.IndexStart != 0 || e.IndexCount != 36 {
		t.Fatalf("IndexStart=%d IndexCount=%d, want 0,36", e.IndexStart, e.IndexCount)
	}
	if e.VertexStart != 0 || e.VertexCount != 24 {
		t.Fatalf("VertexStart=%d VertexCount=%d, want 0,24", e.VertexStart, e.VertexCount)
	}
	if e.PoolByteOffset != 0 {
		t.Fatalf("PoolByteOffset = %d, want 0 for first entry", e.PoolByteOffset)
	}
}

func TestBuildPoolOffsetsAreSequential(t *testing.T) {
	s := &scene.Scene{
		Clusters: []scene.Cluster{
			{PrimitiveStart: 0, PrimitiveCount: 1},
			{PrimitiveStart: 1, PrimitiveCount: 1},
			{PrimitiveStart: 2, PrimitiveCount: 1},
		},
		Indices: make([]uint32, 9),
	}
	pool, err := BuildPool(s)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	for i, e := range pool.Entries {
		if e.PoolByteOffset != uint64(i)*blasNodeSize {
			t.Fatalf("entry %d PoolByteOffset = %d, want %d", i, e.PoolByteOffset, uint64(i)*blasNodeSize)
		}
	}
}

func TestBuildPoolRejectsOutOfRangeIndices(t *testing.T) {
	s := &scene.Scene{
		Clusters: []scene.Cluster{{PrimitiveStart: 0, PrimitiveCount: 100}},
		Indices:  make([]uint32, 9),
	}
	if _, err := BuildPool(s); err == nil {
		t.Fatal("expected error when a cluster's index range exceeds the index pool")
	}
}

func TestBLASEntryToBytesFieldOrder(t *testing.T) {
	e := BLASEntry{
		Min:         mustVec3(-1, -2, -3),
		Max:         mustVec3(4, 5, 6),
		IndexStart:  10,
		IndexCount:  20,
		VertexStart: 30,
		VertexCount: 40,
	}
	buf := e.ToBytes()
	if len(buf) != blasNodeSize {
		t.Fatalf("len(ToBytes()) = %d, want %d", len(buf), blasNodeSize)
	}
	if readF32LE(buf, 0) != -1 || readF32LE(buf, 4) != -2 || readF32LE(buf, 8) != -3 {
		t.Fatal("Min packed incorrectly")
	}
	if readF32LE(buf, 16) != 4 || readF32LE(buf, 20) != 5 || readF32LE(buf, 24) != 6 {
		t.Fatal("Max packed incorrectly")
	}
	if readU32LE(buf, 32) != 10 || readU32LE(buf, 36) != 20 || readU32LE(buf, 40) != 30 || readU32LE(buf, 44) != 40 {
		t.Fatal("index/vertex range packed incorrectly")
	}
}

func TestPoolBytesConcatenatesEntries(t *testing.T) {
	s := &scene.Scene{
		Clusters: []scene.Cluster{{PrimitiveStart: 0, PrimitiveCount: 1}, {PrimitiveStart: 1, PrimitiveCount: 1}},
		Indices:  make([]uint32, 6),
	}
	pool, err := BuildPool(s)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	out := pool.Bytes()
	if len(out) != 2*blasNodeSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(out), 2*blasNodeSize)
	}
}

func mustVec3(x, y, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, y, z}
}
