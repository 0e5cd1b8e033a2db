// Package assets implements the offline-scene loader: opening the nine
// well-known .raw files, inferring element counts from file size, and
// transferring their contents into a scene.Scene (spec §4.3, §6).
package assets

import "math"

// Record strides in bytes, matching spec §6's on-disk layout table
// exactly. Every file is a header-less, tightly packed array of these
// records in host byte order.
const (
	instanceStride = 4*16 + 4*12 + 4 + 4 + 4*3 + 4*3 // model + normal(padded 3x3) + mesh_index + material_index + center + extents = 144
	meshStride     = 4 + 4 + 4*3 + 4*3               // cluster_start + cluster_count + center + extents = 32
	clusterStride  = 4 + 4 + 4 + 4 + 4*3 + 4*3        // primitive_start + primitive_count + vertex_start + vertex_count + center + extents = 40
	positionStride = 4 * 3                            // float3 = 12
	normalStride   = 4 * 3                            // float3 = 12
	tangentStride  = 4 * 4                            // float4 = 16
	texcoordStride = 4 * 2                            // float2 = 8
	indexStride    = 4                                // u32 = 4
	materialStride = 4*4 + 4 + 4                       // color + metallic + roughness = 24
)

// fileNames are the nine well-known on-disk files, in the order the
// loader opens and validates them.
var fileNames = [...]string{
	"instances.raw",
	"meshes.raw",
	"clusters.raw",
	"positions.raw",
	"normals.raw",
	"tangents.raw",
	"texcoords.raw",
	"indices.raw",
	"materials.raw",
}

func readU32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

func readF32(b []byte, off int) float32 {
	return math.Float32frombits(readU32(b, off))
}

func readFloat3(b []byte, off int) [3]float32 {
	return [3]float32{readF32(b, off), readF32(b, off+4), readF32(b, off+8)}
}

func readFloat4(b []byte, off int) [4]float32 {
	return [4]float32{readF32(b, off), readF32(b, off+4), readF32(b, off+8), readF32(b, off+12)}
}

func readFloat2(b []byte, off int) [2]float32 {
	return [2]float32{readF32(b, off), readF32(b, off+4)}
}

// decodeInstance unpacks one 144-byte instances.raw record: a column-major
// 4x4 model matrix, a 3x3 normal matrix padded to 12 floats (each column
// padded to 4), mesh/material indices, and an AABB center/extents pair.
func decodeInstance(b []byte) (model [16]float32, normal [12]float32, meshIndex, materialIndex uint32, center, extents [3]float32) {
	off := 0
	for i := range model {
		model[i] = readF32(b, off)
		off += 4
	}
	for i := range normal {
		normal[i] = readF32(b, off)
		off += 4
	}
	meshIndex = readU32(b, off)
	off += 4
	materialIndex = readU32(b, off)
	off += 4
	center = readFloat3(b, off)
	off += 12
	extents = readFloat3(b, off)
	return
}

func decodeMesh(b []byte) (clusterStart, clusterCount uint32, center, extents [3]float32) {
	clusterStart = readU32(b, 0)
	clusterCount = readU32(b, 4)
	center = readFloat3(b, 8)
	extents = readFloat3(b, 20)
	return
}

func decodeCluster(b []byte) (primitiveStart, primitiveCount, vertexStart, vertexCount uint32, center, extents [3]float32) {
	primitiveStart = readU32(b, 0)
	primitiveCount = readU32(b, 4)
	vertexStart = readU32(b, 8)
	vertexCount = readU32(b, 12)
	center = readFloat3(b, 16)
	extents = readFloat3(b, 28)
	return
}

func decodeMaterial(b []byte) (color [4]float32, metallic, roughness float32) {
	color = readFloat4(b, 0)
	metallic = readF32(b, 16)
	roughness = readF32(b, 20)
	return
}
