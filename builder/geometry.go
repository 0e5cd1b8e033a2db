// Package builder implements the `-generate` CLI path (spec.md §6,
// SPEC_FULL.md §12): a procedural box/grid mesh generator, grounded in
// the teacher's `examples/many_cubes.go` cube geometry and grid-layout
// logic, that chunks the resulting triangle soup into clusters per
// spec.md §3's 64-vertex/124-triangle caps and writes the nine .raw
// files a real offline meshlet builder would hand to `assets.Loader`.
//
// This package is a development/testing stand-in, not a faithful
// meshlet builder (spec.md §1 explicitly keeps real mesh preprocessing
// out of scope) — it exists only so `-generate` produces a loadable
// scene.
package builder

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/nivenh/meshlet/common"
	"github.com/nivenh/meshlet/scene"
)

// cubeVertex is one vertex of the procedurally generated cube geometry,
// carrying everything the nine vertex-pool files need per record.
type cubeVertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [4]float32
	Texcoord [2]float32
}

// faceData is one quad face of a unit cube: four corner positions (in
// the same winding every face shares) plus the shared face normal,
// taken directly from the teacher's buildRainbowCubeModel face table.
type faceData struct {
	positions [4][3]float32
	normal    [3]float32
}

var cubeFaces = []faceData{
	// +X
	{positions: [4][3]float32{{0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}}, normal: [3]float32{1, 0, 0}},
	// -X
	{positions: [4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}, {-0.5, -0.5, -0.5}}, normal: [3]float32{-1, 0, 0}},
	// +Y
	{positions: [4][3]float32{{-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}}, normal: [3]float32{0, 1, 0}},
	// -Y
	{positions: [4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}}, normal: [3]float32{0, -1, 0}},
	// +Z
	{positions: [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}, normal: [3]float32{0, 0, 1}},
	// -Z
	{positions: [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}, normal: [3]float32{0, 0, -1}},
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// tangentFor picks a unit vector perpendicular to n (the face normal),
// arbitrarily choosing the world up axis as the reference unless n is
// nearly parallel to it, in which case it falls back to world right.
// Only the material-resolve compute shader reads this, to build the
// tangent frame behind its shading tint; spec.md §1 keeps actual BRDF/shading math out of scope, so any stable
// perpendicular is sufficient to exercise the tangent pool.
func tangentFor(n [3]float32) [4]float32 {
	normal := mgl32.Vec3{n[0], n[1], n[2]}
	ref := mgl32.Vec3{0, 1, 0}
	dot := normal.Dot(ref)
	if dot < 0 {
		dot = -dot
	}
	if dot > 0.99 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	t := normal.Cross(ref).Normalize()
	return [4]float32{t.X(), t.Y(), t.Z(), 1}
}

// cubeVertices returns the 24 vertices (6 faces × 4 corners) of a unit
// cube, scaled by size and offset by center, plus the 36 indices (6
// faces × 2 triangles × 3 corners) referencing them.
func cubeVertices(center [3]float32, size float32) ([]cubeVertex, []uint32) {
	verts := make([]cubeVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range cubeFaces {
		base := uint32(len(verts))
		tangent := tangentFor(face.normal)
		for i, p := range face.positions {
			verts = append(verts, cubeVertex{
				Position: [3]float32{center[0] + p[0]*size, center[1] + p[1]*size, center[2] + p[2]*size},
				Normal:   face.normal,
				Tangent:  tangent,
				Texcoord: quadUVs[i],
			})
		}
		indices = append(indices,
			base+0, base+1, base+2,
			base+0, base+2, base+3,
		)
	}
	return verts, indices
}

// voxelChunk is one procedurally generated mesh's full vertex/index
// pool plus its clustering (spec.md §3's vertex-pulling geometry
// layout). Indices are cluster-local (0-based relative to each
// cluster's own VertexStart), matching the scene-wide pool layout
// scene.Cluster and the mesh-raster shader both assume.
type voxelChunk struct {
	Vertices []cubeVertex
	Indices  []uint32
	Clusters []scene.Cluster // local vertex/primitive ranges, AABB filled in
}

// buildVoxelChunk generates a subdiv×subdiv×subdiv stack of unit cubes
// (a single mesh, many clusters) centered at the origin, cellSize apart,
// each cube sized cubeSize. subdiv=1 is a single cube (one mesh, one
// cluster); higher subdiv values exercise the multi-cluster-per-mesh
// path spec.md §3 describes (a mesh is a contiguous range of clusters).
//
// Clustering packs cubesPerCluster-cube groups at a time so that every
// cluster stays within spec.md §3's MaxClusterVertices/MaxClusterTriangles
// caps (24 vertices and 12 triangles per cube, so up to
// scene.MaxClusterVertices/24 whole cubes fit in one cluster).
func buildVoxelChunk(subdiv int, cellSize, cubeSize float32) voxelChunk {
	if subdiv < 1 {
		subdiv = 1
	}

	type cube struct {
		center [3]float32
	}
	cubes := make([]cube, 0, subdiv*subdiv*subdiv)
	half := float32(subdiv-1) / 2
	for z := 0; z < subdiv; z++ {
		for y := 0; y < subdiv; y++ {
			for x := 0; x < subdiv; x++ {
				cubes = append(cubes, cube{center: [3]float32{
					(float32(x) - half) * cellSize,
					(float32(y) - half) * cellSize,
					(float32(z) - half) * cellSize,
				}})
			}
		}
	}

	const vertsPerCube = 24
	const trisPerCube = 12
	cubesPerCluster := scene.MaxClusterVertices / vertsPerCube
	if trisPerCube*cubesPerCluster > scene.MaxClusterTriangles {
		cubesPerCluster = scene.MaxClusterTriangles / trisPerCube
	}
	if cubesPerCluster < 1 {
		cubesPerCluster = 1
	}

	var chunk voxelChunk
	for start := 0; start < len(cubes); start += cubesPerCluster {
		end := start + cubesPerCluster
		if end > len(cubes) {
			end = len(cubes)
		}

		vertexStart := uint32(len(chunk.Vertices))
		primitiveStart := uint32(len(chunk.Indices) / 3)

		min := [3]float32{math32Max, math32Max, math32Max}
		max := [3]float32{-math32Max, -math32Max, -math32Max}
		for _, c := range cubes[start:end] {
			verts, indices := cubeVertices(c.center, cubeSize)
			// base is relative to this cluster's own VertexStart, not the
			// chunk as a whole: scene.Cluster indices are cluster-local
			// (spec §3), so the mesh-raster shader can add vertex_start
			// back to dereference the scene-global vertex pools.
			base := uint32(len(chunk.Vertices)) - vertexStart
			for _, idx := range indices {
				chunk.Indices = append(chunk.Indices, base+idx)
			}
			chunk.Vertices = append(chunk.Vertices, verts...)
			for i := 0; i < 3; i++ {
				lo := c.center[i] - cubeSize/2
				hi := c.center[i] + cubeSize/2
				if lo < min[i] {
					min[i] = lo
				}
				if hi > max[i] {
					max[i] = hi
				}
			}
		}

		vertexCount := uint32(len(chunk.Vertices)) - vertexStart
		primitiveCount := uint32(len(chunk.Indices)/3) - primitiveStart
		chunk.Clusters = append(chunk.Clusters, scene.Cluster{
			VertexStart:    vertexStart,
			VertexCount:    vertexCount,
			PrimitiveStart: primitiveStart,
			PrimitiveCount: primitiveCount,
			AABB:           aabbFromMinMax(min, max),
		})
	}

	return chunk
}

const math32Max = 3.4e38

// aabbFromMinMax builds a center/extents AABB from a min/max corner pair.
func aabbFromMinMax(min, max [3]float32) common.AABB {
	var b common.AABB
	for i := 0; i < 3; i++ {
		b.Center[i] = (min[i] + max[i]) / 2
		b.Extents[i] = (max[i] - min[i]) / 2
	}
	return b
}
