package builder

import (
	"math"
	"testing"

	"github.com/nivenh/meshlet/scene"
)

func TestCubeVerticesCountsAndIndices(t *testing.T) {
	verts, indices := cubeVertices([3]float32{0, 0, 0}, 1)
	if len(verts) != 24 {
		t.Fatalf("len(verts) = %d, want 24", len(verts))
	}
	if len(indices) != 36 {
		t.Fatalf("len(indices) = %d, want 36", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(verts) {
			t.Fatalf("index %d out of range for %d vertices", idx, len(verts))
		}
	}
}

func TestCubeVerticesScaledAndCentered(t *testing.T) {
	verts, _ := cubeVertices([3]float32{5, 0, 0}, 2)
	for _, v := range verts {
		// Every coordinate should be within size/2 of the center on each axis.
		if math.Abs(float64(v.Position[0]-5)) > 1.0001 {
			t.Fatalf("x=%v too far from center 5 with size 2", v.Position[0])
		}
	}
}

func TestTangentForIsPerpendicularToNormal(t *testing.T) {
	normals := [][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0, -1, 0}}
	for _, n := range normals {
		tangent := tangentFor(n)
		dot := tangent[0]*n[0] + tangent[1]*n[1] + tangent[2]*n[2]
		if math.Abs(float64(dot)) > 1e-4 {
			t.Fatalf("tangent %v not perpendicular to normal %v (dot=%v)", tangent, n, dot)
		}
	}
}

func TestTangentForIsUnitLength(t *testing.T) {
	tangent := tangentFor([3]float32{0, 1, 0})
	length := math.Sqrt(float64(tangent[0]*tangent[0] + tangent[1]*tangent[1] + tangent[2]*tangent[2]))
	if math.Abs(length-1) > 1e-4 {
		t.Fatalf("tangent length = %v, want ~1", length)
	}
}

func TestBuildVoxelChunkSingleCube(t *testing.T) {
	chunk := buildVoxelChunk(1, 1.1, 1.0)
	if len(chunk.Clusters) != 1 {
		t.Fatalf("len(Clusters) = %d, want 1 for subdiv=1", len(chunk.Clusters))
	}
	if len(chunk.Vertices) != 24 {
		t.Fatalf("len(Vertices) = %d, want 24", len(chunk.Vertices))
	}
	if len(chunk.Indices) != 36 {
		t.Fatalf("len(Indices) = %d, want 36", len(chunk.Indices))
	}
}

func TestBuildVoxelChunkRespectsClusterCaps(t *testing.T) {
	chunk := buildVoxelChunk(4, 1.1, 1.0) // 64 cubes
	for i, c := range chunk.Clusters {
		if c.VertexCount > scene.MaxClusterVertices {
			t.Fatalf("cluster %d vertex count %d exceeds cap %d", i, c.VertexCount, scene.MaxClusterVertices)
		}
		if c.PrimitiveCount > scene.MaxClusterTriangles {
			t.Fatalf("cluster %d primitive count %d exceeds cap %d", i, c.PrimitiveCount, scene.MaxClusterTriangles)
		}
	}
}

func TestBuildVoxelChunkClustersCoverAllIndicesContiguously(t *testing.T) {
	chunk := buildVoxelChunk(3, 1.1, 1.0)
	var totalVerts, totalPrims uint32
	for i, c := range chunk.Clusters {
		if c.VertexStart != totalVerts {
			t.Fatalf("cluster %d VertexStart = %d, want %d (contiguous)", i, c.VertexStart, totalVerts)
		}
		if c.PrimitiveStart != totalPrims {
			t.Fatalf("cluster %d PrimitiveStart = %d, want %d (contiguous)", i, c.PrimitiveStart, totalPrims)
		}
		totalVerts += c.VertexCount
		totalPrims += c.PrimitiveCount
	}
	if int(totalVerts) != len(chunk.Vertices) {
		t.Fatalf("sum of cluster vertex counts = %d, want %d", totalVerts, len(chunk.Vertices))
	}
	if int(totalPrims) != len(chunk.Indices)/3 {
		t.Fatalf("sum of cluster primitive counts = %d, want %d", totalPrims, len(chunk.Indices)/3)
	}
}

func TestBuildVoxelChunkIndicesAreClusterLocal(t *testing.T) {
	chunk := buildVoxelChunk(4, 1.1, 1.0) // 64 cubes, multiple clusters
	if len(chunk.Clusters) < 2 {
		t.Fatalf("expected multiple clusters to exercise cluster-local indexing, got %d", len(chunk.Clusters))
	}
	for i, c := range chunk.Clusters {
		indices := chunk.Indices[c.PrimitiveStart*3 : (c.PrimitiveStart+c.PrimitiveCount)*3]
		for _, idx := range indices {
			if idx >= c.VertexCount {
				t.Fatalf("cluster %d index %d out of cluster-local range [0,%d); indices must be relative to VertexStart, not the mesh-global vertex pool", i, idx, c.VertexCount)
			}
		}
	}
}

func TestBuildVoxelChunkClampsSubdivBelowOne(t *testing.T) {
	chunk := buildVoxelChunk(0, 1.1, 1.0)
	if len(chunk.Clusters) != 1 {
		t.Fatalf("expected subdiv<1 to clamp to a single cube, got %d clusters", len(chunk.Clusters))
	}
}

func TestAabbFromMinMaxCentersAndExtents(t *testing.T) {
	b := aabbFromMinMax([3]float32{-1, -2, -3}, [3]float32{3, 4, 5})
	if b.Center != [3]float32{1, 1, 1} {
		t.Fatalf("Center = %v, want [1 1 1]", b.Center)
	}
	if b.Extents != [3]float32{2, 3, 4} {
		t.Fatalf("Extents = %v, want [2 3 4]", b.Extents)
	}
}
