package builder

import (
	"encoding/binary"
	"math"

	"github.com/nivenh/meshlet/scene"
)

// putF32 appends one little-endian float32 to buf, matching
// assets.readF32's decode order byte-for-byte.
func putF32(buf []byte, v float32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	return append(buf, tmp[:]...)
}

func putU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func putFloat3(buf []byte, v [3]float32) []byte {
	for _, f := range v {
		buf = putF32(buf, f)
	}
	return buf
}

func putFloat4(buf []byte, v [4]float32) []byte {
	for _, f := range v {
		buf = putF32(buf, f)
	}
	return buf
}

func putFloat2(buf []byte, v [2]float32) []byte {
	for _, f := range v {
		buf = putF32(buf, f)
	}
	return buf
}

// encodeInstance packs one 144-byte instances.raw record in the exact
// field order assets.decodeInstance expects: model[16], normal[12],
// mesh_index, material_index, center[3], extents[3].
func encodeInstance(inst scene.Instance) []byte {
	buf := make([]byte, 0, 144)
	for _, f := range inst.Model {
		buf = putF32(buf, f)
	}
	for _, f := range inst.Normal {
		buf = putF32(buf, f)
	}
	buf = putU32(buf, inst.MeshIndex)
	buf = putU32(buf, inst.MaterialIndex)
	buf = putFloat3(buf, inst.AABB.Center)
	buf = putFloat3(buf, inst.AABB.Extents)
	return buf
}

// encodeMesh packs one 32-byte meshes.raw record: cluster_start,
// cluster_count, center, extents.
func encodeMesh(m scene.Mesh) []byte {
	buf := make([]byte, 0, 32)
	buf = putU32(buf, m.ClusterStart)
	buf = putU32(buf, m.ClusterCount)
	buf = putFloat3(buf, m.AABB.Center)
	buf = putFloat3(buf, m.AABB.Extents)
	return buf
}

// encodeCluster packs one 40-byte clusters.raw record: primitive_start,
// primitive_count, vertex_start, vertex_count, center, extents.
func encodeCluster(c scene.Cluster) []byte {
	buf := make([]byte, 0, 40)
	buf = putU32(buf, c.PrimitiveStart)
	buf = putU32(buf, c.PrimitiveCount)
	buf = putU32(buf, c.VertexStart)
	buf = putU32(buf, c.VertexCount)
	buf = putFloat3(buf, c.AABB.Center)
	buf = putFloat3(buf, c.AABB.Extents)
	return buf
}

// encodeMaterial packs one 24-byte materials.raw record: color,
// metallic, roughness.
func encodeMaterial(m scene.Material) []byte {
	buf := make([]byte, 0, 24)
	buf = putFloat4(buf, m.Color)
	buf = putF32(buf, m.Metallic)
	buf = putF32(buf, m.Roughness)
	return buf
}
