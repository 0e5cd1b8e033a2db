package scene

import (
	"testing"
)

func validScene() *Scene {
	s := New()
	s.Materials = []Material{{Color: [4]float32{1, 1, 1, 1}, Metallic: 0, Roughness: 1}}
	s.Positions = make([][3]float32, 4)
	s.Normals = make([][3]float32, 4)
	s.Tangents = make([][4]float32, 4)
	s.Texcoords = make([][2]float32, 4)
	s.Indices = []uint32{0, 1, 2, 0, 2, 3}
	s.Clusters = []Cluster{{VertexStart: 0, VertexCount: 4, PrimitiveStart: 0, PrimitiveCount: 2}}
	s.Meshes = []Mesh{{ClusterStart: 0, ClusterCount: 1}}
	s.Instances = []Instance{{MeshIndex: 0, MaterialIndex: 0}}
	return s
}

func TestValidateAcceptsWellFormedScene(t *testing.T) {
	s := validScene()
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid scene, got: %v", err)
	}
}

func TestValidateRejectsVertexPoolMismatch(t *testing.T) {
	s := validScene()
	s.Normals = make([][3]float32, 3)
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for mismatched vertex pool lengths")
	}
}

func TestValidateRejectsClusterVertexRangeOverflow(t *testing.T) {
	s := validScene()
	s.Clusters[0].VertexCount = 5
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for cluster vertex range exceeding positions pool")
	}
}

func TestValidateRejectsOversizedCluster(t *testing.T) {
	s := validScene()
	s.Clusters[0].VertexCount = MaxClusterVertices + 1
	s.Positions = make([][3]float32, MaxClusterVertices+1)
	s.Normals = make([][3]float32, MaxClusterVertices+1)
	s.Tangents = make([][4]float32, MaxClusterVertices+1)
	s.Texcoords = make([][2]float32, MaxClusterVertices+1)
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for cluster exceeding MaxClusterVertices")
	}
}

func TestValidateRejectsNonClusterLocalIndex(t *testing.T) {
	// Two clusters, 4 vertices each; the second cluster's indices must be
	// 0-based relative to its own VertexStart (4), not the scene-global
	// vertex pool (4-7).
	s := validScene()
	s.Positions = make([][3]float32, 8)
	s.Normals = make([][3]float32, 8)
	s.Tangents = make([][4]float32, 8)
	s.Texcoords = make([][2]float32, 8)
	s.Indices = []uint32{0, 1, 2, 0, 2, 3, 0, 1, 2, 0, 2, 3}
	s.Clusters = append(s.Clusters, Cluster{VertexStart: 4, VertexCount: 4, PrimitiveStart: 2, PrimitiveCount: 2})
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid scene with cluster-local indices, got: %v", err)
	}

	// Mutate the second cluster's indices to be mesh-global (offset by
	// VertexStart) instead of cluster-local.
	s.Indices = []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for non-cluster-local index values")
	}
}

func TestValidateRejectsMeshClusterRangeOverflow(t *testing.T) {
	s := validScene()
	s.Meshes[0].ClusterCount = 5
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for mesh cluster range exceeding clusters pool")
	}
}

func TestValidateRejectsInstanceMeshIndexOutOfRange(t *testing.T) {
	s := validScene()
	s.Instances[0].MeshIndex = 9
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for out-of-range mesh index")
	}
}

func TestValidateRejectsInstanceMaterialIndexOutOfRange(t *testing.T) {
	s := validScene()
	s.Instances[0].MaterialIndex = 9
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for out-of-range material index")
	}
}

func TestValidateRejectsInstanceCountOverflow(t *testing.T) {
	s := validScene()
	s.Instances = make([]Instance, MaxInstances+1)
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for instance pool overflow")
	}
}

func TestMaxClusterCountSumsOverInstances(t *testing.T) {
	s := validScene()
	s.Instances = append(s.Instances, Instance{MeshIndex: 0, MaterialIndex: 0})
	if got := s.MaxClusterCount(); got != 2 {
		t.Fatalf("MaxClusterCount() = %d, want 2", got)
	}
}

func TestMaxClusterCountClampsToPoolCap(t *testing.T) {
	s := &Scene{
		Meshes: []Mesh{{ClusterStart: 0, ClusterCount: MaxClusters}},
	}
	for i := 0; i < 3; i++ {
		s.Instances = append(s.Instances, Instance{MeshIndex: 0})
	}
	if got := s.MaxClusterCount(); got != MaxClusters {
		t.Fatalf("MaxClusterCount() = %d, want clamp to %d", got, MaxClusters)
	}
}

func TestMaxClusterCountIgnoresOutOfRangeMeshIndex(t *testing.T) {
	s := &Scene{
		Meshes:    []Mesh{{ClusterStart: 0, ClusterCount: 3}},
		Instances: []Instance{{MeshIndex: 7}},
	}
	if got := s.MaxClusterCount(); got != 0 {
		t.Fatalf("MaxClusterCount() = %d, want 0 for dangling mesh index", got)
	}
}

func TestNewAssignsUniqueLoadID(t *testing.T) {
	a := New()
	b := New()
	if a.LoadID == b.LoadID {
		t.Fatal("expected distinct load ids from successive New() calls")
	}
}
