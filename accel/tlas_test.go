package accel

import (
	"testing"

	"github.com/nivenh/meshlet/common"
	"github.com/nivenh/meshlet/scene"
)

func buildSceneWithOneInstanceTwoClusters() *scene.Scene {
	var model [16]float32
	common.BuildModelMatrix(model[:], 1, 2, 3, 0, 0, 0, 1, 1, 1)
	return &scene.Scene{
		Meshes: []scene.Mesh{{ClusterStart: 0, ClusterCount: 2}},
		Clusters: []scene.Cluster{
			{PrimitiveStart: 0, PrimitiveCount: 1},
			{PrimitiveStart: 1, PrimitiveCount: 1},
		},
		Indices:   make([]uint32, 6),
		Instances: []scene.Instance{{Model: model, MeshIndex: 0}},
	}
}

func TestBuildProducesOneTLASInstancePerClusterInMesh(t *testing.T) {
	s := buildSceneWithOneInstanceTwoClusters()
	blas, err := BuildPool(s)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	tlas := Build(s, blas)
	if len(tlas.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2 (one per cluster in the mesh)", len(tlas.Instances))
	}
	for i, inst := range tlas.Instances {
		if inst.InstanceIndex != 0 {
			t.Fatalf("instance %d InstanceIndex = %d, want 0", i, inst.InstanceIndex)
		}
		if inst.BLASOffset != blas.Entries[i].PoolByteOffset {
			t.Fatalf("instance %d BLASOffset = %d, want %d", i, inst.BLASOffset, blas.Entries[i].PoolByteOffset)
		}
	}
}

func TestBuildTransformTruncatesTo4x3RowMajor(t *testing.T) {
	s := buildSceneWithOneInstanceTwoClusters()
	blas, err := BuildPool(s)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	tlas := Build(s, blas)

	transform := tlas.Instances[0].Transform
	// Row 0: [m0, m4, m8, m12] — translation (1,2,3) in model sits at m12..14.
	if transform[3] != 1 {
		t.Fatalf("transform row0 translation = %v, want 1", transform[3])
	}
	if transform[7] != 2 {
		t.Fatalf("transform row1 translation = %v, want 2", transform[7])
	}
	if transform[11] != 3 {
		t.Fatalf("transform row2 translation = %v, want 3", transform[11])
	}
}

func TestTLASInstanceToBytesSize(t *testing.T) {
	s := buildSceneWithOneInstanceTwoClusters()
	blas, err := BuildPool(s)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	tlas := Build(s, blas)
	buf := tlas.Instances[0].ToBytes()
	if len(buf) != tlasInstanceSize {
		t.Fatalf("len(ToBytes()) = %d, want %d", len(buf), tlasInstanceSize)
	}
}

func TestTLASBytesConcatenatesAllInstances(t *testing.T) {
	s := buildSceneWithOneInstanceTwoClusters()
	blas, err := BuildPool(s)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	tlas := Build(s, blas)
	out := tlas.Bytes()
	if len(out) != len(tlas.Instances)*tlasInstanceSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(out), len(tlas.Instances)*tlasInstanceSize)
	}
}
