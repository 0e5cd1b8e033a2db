// Package scene holds the CPU-side static scene data model: instances,
// meshes, clusters and the flat vertex/index/material pools they reference
// (spec §3). The scene is a strict forest of index-based references —
// instance -> mesh -> clusters -> vertex/index ranges — built once at load
// and never mutated afterward.
package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nivenh/meshlet/common"
)

// Pool capacity limits (spec §3). The instance and cluster pools are
// both capped at 65535 entries, the range of a 16-bit index.
const (
	MaxInstances = 65535
	MaxClusters  = 65535
	MaxMeshes    = 8 * 1024
	MaxMaterials = 1024
	MaxVertices  = 4 * 1024 * 1024
	MaxIndices   = 16 * 1024 * 1024

	// MaxClusterVertices and MaxClusterTriangles bound a single meshlet.
	MaxClusterVertices  = 64
	MaxClusterTriangles = 124
)

// Instance is an oriented placement of a mesh: a model matrix, its
// normal matrix (3x3, stored padded to 4 columns of 3 so it lines up on
// 16-byte boundaries for GPU upload), a mesh/material index, and a
// precomputed world-space AABB.
type Instance struct {
	Model         [16]float32 // column-major 4x4
	Normal        [12]float32 // column-major 3x3, each column padded to 4 floats
	MeshIndex     uint32
	MaterialIndex uint32
	AABB          common.AABB
}

// Mesh is a contiguous range of clusters plus a local-space AABB. Meshes
// carry no geometry of their own; it all lives in the flat pools.
type Mesh struct {
	ClusterStart uint32
	ClusterCount uint32
	AABB         common.AABB
}

// Cluster (meshlet) is a bounded sub-mesh: at most MaxClusterVertices
// unique vertices and MaxClusterTriangles triangles, referencing
// half-open ranges into the global vertex and index pools.
type Cluster struct {
	VertexStart    uint32
	VertexCount    uint32
	PrimitiveStart uint32 // first triangle, i.e. IndexStart/3
	PrimitiveCount uint32
	AABB           common.AABB
}

// Material is a minimal PBR material: base color plus metallic/roughness
// scalars, looked up by index from the material-resolve compute pass.
type Material struct {
	Color     [4]float32
	Metallic  float32
	Roughness float32
}

// Scene is the full set of nine independently-sized arrays spec §3
// describes, plus a load-session id used to correlate asset-loader and
// readback log lines.
type Scene struct {
	LoadID uuid.UUID

	Instances []Instance
	Meshes    []Mesh
	Clusters  []Cluster
	Materials []Material

	Positions [][3]float32
	Normals   [][3]float32
	Tangents  [][4]float32
	Texcoords [][2]float32
	Indices   []uint32
}

// New creates an empty Scene tagged with a fresh load-session id.
func New() *Scene {
	return &Scene{LoadID: uuid.New()}
}

// Validate checks the scene against every invariant spec §3 lists. It is
// called once after asset load and is also used directly by tests that
// construct scenes in memory (spec §8 property 4 and 5).
func (s *Scene) Validate() error {
	if len(s.Instances) > MaxInstances {
		return fmt.Errorf("scene: %d instances exceeds pool cap %d", len(s.Instances), MaxInstances)
	}
	if len(s.Clusters) > MaxClusters {
		return fmt.Errorf("scene: %d clusters exceeds pool cap %d", len(s.Clusters), MaxClusters)
	}
	if len(s.Meshes) > MaxMeshes {
		return fmt.Errorf("scene: %d meshes exceeds pool cap %d", len(s.Meshes), MaxMeshes)
	}
	if len(s.Materials) > MaxMaterials {
		return fmt.Errorf("scene: %d materials exceeds pool cap %d", len(s.Materials), MaxMaterials)
	}
	if len(s.Positions) > MaxVertices {
		return fmt.Errorf("scene: %d vertices exceeds pool cap %d", len(s.Positions), MaxVertices)
	}
	if len(s.Indices) > MaxIndices {
		return fmt.Errorf("scene: %d indices exceeds pool cap %d", len(s.Indices), MaxIndices)
	}

	// Vertex-pool parallelism (spec §8 property 4).
	n := len(s.Positions)
	if len(s.Normals) != n || len(s.Tangents) != n || len(s.Texcoords) != n {
		return fmt.Errorf("scene: vertex pools not parallel: positions=%d normals=%d tangents=%d texcoords=%d",
			n, len(s.Normals), len(s.Tangents), len(s.Texcoords))
	}

	triangleCount := uint32(len(s.Indices) / 3)
	for i, c := range s.Clusters {
		if c.VertexCount > MaxClusterVertices {
			return fmt.Errorf("scene: cluster %d vertex_count %d exceeds %d", i, c.VertexCount, MaxClusterVertices)
		}
		if c.PrimitiveCount > MaxClusterTriangles {
			return fmt.Errorf("scene: cluster %d primitive_count %d exceeds %d", i, c.PrimitiveCount, MaxClusterTriangles)
		}
		if c.VertexStart+c.VertexCount > uint32(n) {
			return fmt.Errorf("scene: cluster %d vertex range [%d,%d) exceeds %d positions", i, c.VertexStart, c.VertexStart+c.VertexCount, n)
		}
		if c.PrimitiveStart+c.PrimitiveCount > triangleCount {
			return fmt.Errorf("scene: cluster %d primitive range [%d,%d) exceeds %d triangles", i, c.PrimitiveStart, c.PrimitiveStart+c.PrimitiveCount, triangleCount)
		}
		// Indices are cluster-local (0-based relative to VertexStart, per
		// spec §3): the mesh-raster shader adds vertex_start back on to
		// reach the scene-global vertex pools, so a value >= VertexCount
		// here would read the wrong vertex's attributes on the GPU.
		for _, idx := range s.Indices[c.PrimitiveStart*3 : (c.PrimitiveStart+c.PrimitiveCount)*3] {
			if idx >= c.VertexCount {
				return fmt.Errorf("scene: cluster %d index %d out of cluster-local range [0,%d)", i, idx, c.VertexCount)
			}
		}
	}

	for i, m := range s.Meshes {
		if m.ClusterStart+m.ClusterCount > uint32(len(s.Clusters)) {
			return fmt.Errorf("scene: mesh %d cluster range [%d,%d) exceeds %d clusters", i, m.ClusterStart, m.ClusterStart+m.ClusterCount, len(s.Clusters))
		}
	}

	for i, inst := range s.Instances {
		if int(inst.MeshIndex) >= len(s.Meshes) {
			return fmt.Errorf("scene: instance %d mesh_index %d out of range (%d meshes)", i, inst.MeshIndex, len(s.Meshes))
		}
		if int(inst.MaterialIndex) >= len(s.Materials) {
			return fmt.Errorf("scene: instance %d material_index %d out of range (%d materials)", i, inst.MaterialIndex, len(s.Materials))
		}
	}

	return nil
}

// MaxClusterCount returns the largest possible number of (instance, cluster)
// pairs the cluster-culling pass can produce: the sum, over every instance,
// of its mesh's cluster count. This is the grid-size input the compute
// dispatch in spec §4.6(C) needs (ceil(maxClusterCount/128)) and also the
// default capacity for the visible-clusters transient list.
func (s *Scene) MaxClusterCount() uint32 {
	var total uint64
	for _, inst := range s.Instances {
		if int(inst.MeshIndex) < len(s.Meshes) {
			total += uint64(s.Meshes[inst.MeshIndex].ClusterCount)
		}
	}
	if total > MaxClusters {
		return MaxClusters
	}
	return uint32(total)
}
