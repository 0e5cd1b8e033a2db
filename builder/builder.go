package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nivenh/meshlet/common"
	"github.com/nivenh/meshlet/scene"
)

// Options configures Generate. Zero values are replaced by the defaults
// below, matching the teacher's many_cubes.go benchmark grid constants
// in spirit (a stable, deterministic grid layout, not a random scatter).
type Options struct {
	// InstanceCount is how many placements of the generated mesh to
	// scatter across the grid. Defaults to 64.
	InstanceCount int
	// GridSide bounds how many instances sit along one side of the XZ
	// grid before a new vertical layer starts (teacher's benchMaxSide).
	// Defaults to 16.
	GridSide int
	// Spacing is the world-space distance between adjacent grid cells.
	// Defaults to 3.
	Spacing float32
	// CubeSize is the edge length of each procedurally generated unit
	// cube within a mesh. Defaults to 1.
	CubeSize float32
	// LOD selects the mesh's voxel-chunk subdivision: subdiv = LOD+1,
	// so LOD 0 is a single cube (one mesh, one cluster) and each
	// increment adds one more cube per axis, spreading the mesh across
	// more clusters (spec.md §3's "mesh is a contiguous cluster range").
	LOD int
}

func (o Options) withDefaults() Options {
	if o.InstanceCount <= 0 {
		o.InstanceCount = 64
	}
	if o.GridSide <= 0 {
		o.GridSide = 16
	}
	if o.Spacing <= 0 {
		o.Spacing = 3
	}
	if o.CubeSize <= 0 {
		o.CubeSize = 1
	}
	if o.LOD < 0 {
		o.LOD = 0
	}
	return o
}

// materialPalette mirrors the teacher's six-face rainbow-cube palette
// (buildRainbowCubeModel's faceColors), reused here per-instance since
// spec.md §3 materials are looked up per-instance, not per-vertex.
var materialPalette = []scene.Material{
	{Color: [4]float32{1, 0, 0, 1}, Metallic: 0.1, Roughness: 0.8},
	{Color: [4]float32{0, 1, 0, 1}, Metallic: 0.1, Roughness: 0.6},
	{Color: [4]float32{0, 0, 1, 1}, Metallic: 0.3, Roughness: 0.4},
	{Color: [4]float32{1, 1, 0, 1}, Metallic: 0.0, Roughness: 0.9},
	{Color: [4]float32{1, 0, 1, 1}, Metallic: 0.5, Roughness: 0.3},
	{Color: [4]float32{0, 1, 1, 1}, Metallic: 0.2, Roughness: 0.5},
}

// identityNormal is the padded-identity normal matrix (spec.md §3's
// "3x3 normal matrix padded to 12 floats, each column padded to 4"),
// correct whenever an instance's model matrix has no rotation and
// uniform scale — true of every instance Generate places.
var identityNormal = [12]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
}

// Generate builds a procedural grid-of-boxes scene (spec.md §6's
// `-generate` flag, SPEC_FULL.md §12) and writes the nine well-known
// .raw files into dir, creating it if necessary. The scene has exactly
// one mesh (the LOD-subdivided voxel chunk) instanced InstanceCount
// times across a stable grid, cycling through a small fixed material
// palette.
func Generate(dir string, opts Options) error {
	opts = opts.withDefaults()

	chunk := buildVoxelChunk(opts.LOD+1, opts.CubeSize*1.1, opts.CubeSize)

	sc := scene.New()
	sc.Materials = append([]scene.Material(nil), materialPalette...)

	sc.Positions = make([][3]float32, len(chunk.Vertices))
	sc.Normals = make([][3]float32, len(chunk.Vertices))
	sc.Tangents = make([][4]float32, len(chunk.Vertices))
	sc.Texcoords = make([][2]float32, len(chunk.Vertices))
	for i, v := range chunk.Vertices {
		sc.Positions[i] = v.Position
		sc.Normals[i] = v.Normal
		sc.Tangents[i] = v.Tangent
		sc.Texcoords[i] = v.Texcoord
	}
	sc.Indices = chunk.Indices
	sc.Clusters = chunk.Clusters

	meshAABB := meshBounds(chunk.Clusters)
	sc.Meshes = []scene.Mesh{{
		ClusterStart: 0,
		ClusterCount: uint32(len(chunk.Clusters)),
		AABB:         meshAABB,
	}}

	sc.Instances = make([]scene.Instance, opts.InstanceCount)
	for i := range sc.Instances {
		col := i % opts.GridSide
		row := (i / opts.GridSide) % opts.GridSide
		layer := i / (opts.GridSide * opts.GridSide)

		px := (float32(col) - float32(opts.GridSide-1)/2) * opts.Spacing
		py := float32(layer) * opts.Spacing
		pz := (float32(row) - float32(opts.GridSide-1)/2) * opts.Spacing

		var model [16]float32
		common.BuildModelMatrix(model[:], px, py, pz, 0, 0, 0, 1, 1, 1)

		sc.Instances[i] = scene.Instance{
			Model:         model,
			Normal:        identityNormal,
			MeshIndex:     0,
			MaterialIndex: uint32(i % len(sc.Materials)),
			AABB:          common.TransformAABB(model[:], meshAABB),
		}
	}

	if err := sc.Validate(); err != nil {
		return fmt.Errorf("builder: generated scene failed validation: %w", err)
	}

	return writeScene(dir, sc)
}

// meshBounds computes the union AABB of a mesh's clusters.
func meshBounds(clusters []scene.Cluster) common.AABB {
	if len(clusters) == 0 {
		return common.AABB{}
	}
	min := [3]float32{}
	max := [3]float32{}
	for i := 0; i < 3; i++ {
		min[i] = clusters[0].AABB.Center[i] - clusters[0].AABB.Extents[i]
		max[i] = clusters[0].AABB.Center[i] + clusters[0].AABB.Extents[i]
	}
	for _, c := range clusters[1:] {
		for i := 0; i < 3; i++ {
			lo := c.AABB.Center[i] - c.AABB.Extents[i]
			hi := c.AABB.Center[i] + c.AABB.Extents[i]
			if lo < min[i] {
				min[i] = lo
			}
			if hi > max[i] {
				max[i] = hi
			}
		}
	}
	return aabbFromMinMax(min, max)
}

// writeScene encodes sc into the nine flat .raw files under dir, in the
// exact record layout assets.decode* expects.
func writeScene(dir string, sc *scene.Scene) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("builder: create %s: %w", dir, err)
	}

	files := map[string][]byte{
		"instances.raw": concatRecords(len(sc.Instances), func(i int) []byte { return encodeInstance(sc.Instances[i]) }),
		"meshes.raw":    concatRecords(len(sc.Meshes), func(i int) []byte { return encodeMesh(sc.Meshes[i]) }),
		"clusters.raw":  concatRecords(len(sc.Clusters), func(i int) []byte { return encodeCluster(sc.Clusters[i]) }),
		"positions.raw": concatRecords(len(sc.Positions), func(i int) []byte { return putFloat3(nil, sc.Positions[i]) }),
		"normals.raw":   concatRecords(len(sc.Normals), func(i int) []byte { return putFloat3(nil, sc.Normals[i]) }),
		"tangents.raw":  concatRecords(len(sc.Tangents), func(i int) []byte { return putFloat4(nil, sc.Tangents[i]) }),
		"texcoords.raw": concatRecords(len(sc.Texcoords), func(i int) []byte { return putFloat2(nil, sc.Texcoords[i]) }),
		"indices.raw":   concatRecords(len(sc.Indices), func(i int) []byte { return putU32(nil, sc.Indices[i]) }),
		"materials.raw": concatRecords(len(sc.Materials), func(i int) []byte { return encodeMaterial(sc.Materials[i]) }),
	}

	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("builder: write %s: %w", path, err)
		}
	}
	return nil
}

func concatRecords(n int, encode func(i int) []byte) []byte {
	var out []byte
	for i := 0; i < n; i++ {
		out = append(out, encode(i)...)
	}
	return out
}
