// Package accel implements the CPU-side bookkeeping for the bottom-/
// top-level acceleration structures spec §4.7 describes. This backend
// has no native DXR BLAS/TLAS object (SPEC_FULL.md §0): gpu.Device.
// SupportsRayTracing always reports false, so culldraw never dispatches
// the ray-traced visibility path. This package still builds the pool
// layout and instance records the spec names, so the data those paths
// would consume is fully exercised and testable even though no ray is
// ever cast.
//
// Node packing follows the teacher pack's BVH node convention
// (Gekko3D-gekko voxelrt/rt/bvh.BVHNode.ToBytes): two vec4-padded AABB
// corners plus four uint32 range fields (48 bytes), zero-padded to a
// blasNodeSize (256-byte) record, built with mgl32.Vec3 and packed via
// encoding/binary.
package accel

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/nivenh/meshlet/scene"
)

// blasNodeSize is the padded-record size a BLAS pool entry occupies
// (spec §4.7 "each entry padded to 256 bytes").
const blasNodeSize = 256

// BLASEntry is one cluster's bottom-level acceleration structure
// bookkeeping record: its AABB (the fast-trace geometry bounds) and the
// index/vertex pool ranges it was built over.
type BLASEntry struct {
	Min, Max       mgl32.Vec3
	IndexStart     uint32
	IndexCount     uint32
	VertexStart    uint32
	VertexCount    uint32
	PoolByteOffset uint64
}

// ToBytes packs the entry the way BVHNode.ToBytes does: two vec4-padded
// corners followed by the four index/vertex range fields, then zero
// padding out to blasNodeSize.
func (e BLASEntry) ToBytes() []byte {
	buf := make([]byte, blasNodeSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(e.Min.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(e.Min.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(e.Min.Z()))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(e.Max.X()))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(e.Max.Y()))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(e.Max.Z()))
	binary.LittleEndian.PutUint32(buf[32:36], e.IndexStart)
	binary.LittleEndian.PutUint32(buf[36:40], e.IndexCount)
	binary.LittleEndian.PutUint32(buf[40:44], e.VertexStart)
	binary.LittleEndian.PutUint32(buf[44:48], e.VertexCount)
	return buf
}

// Pool is the sequential, pre-sized pool of per-cluster BLAS entries
// (spec §4.7 step 1). Built once at scene load and rebuilt only on
// scene reload; never mutated mid-frame.
type Pool struct {
	Entries []BLASEntry
}

// BuildPool constructs one BLASEntry per cluster in s, in cluster-index
// order, so a cluster's global index doubles as its pool offset.
func BuildPool(s *scene.Scene) (*Pool, error) {
	entries := make([]BLASEntry, len(s.Clusters))
	for i, c := range s.Clusters {
		indexStart := c.PrimitiveStart * 3
		indexCount := c.PrimitiveCount * 3
		if uint64(indexStart+indexCount) > uint64(len(s.Indices)) {
			return nil, fmt.Errorf("accel: cluster %d indices [%d,%d) exceed index pool (%d)", i, indexStart, indexStart+indexCount, len(s.Indices))
		}
		entries[i] = BLASEntry{
			Min:            mgl32.Vec3{c.AABB.Center[0] - c.AABB.Extents[0], c.AABB.Center[1] - c.AABB.Extents[1], c.AABB.Center[2] - c.AABB.Extents[2]},
			Max:            mgl32.Vec3{c.AABB.Center[0] + c.AABB.Extents[0], c.AABB.Center[1] + c.AABB.Extents[1], c.AABB.Center[2] + c.AABB.Extents[2]},
			IndexStart:     indexStart,
			IndexCount:     indexCount,
			VertexStart:    c.VertexStart,
			VertexCount:    c.VertexCount,
			PoolByteOffset: uint64(i) * blasNodeSize,
		}
	}
	return &Pool{Entries: entries}, nil
}

// Bytes serializes the pool as a contiguous byte buffer suitable for a
// storage-buffer upload (never actually consumed on this backend, since
// the ray-traced visibility path is permanently gated off): each entry's
// blasNodeSize-byte ToBytes record, in pool order.
func (p *Pool) Bytes() []byte {
	out := make([]byte, 0, len(p.Entries)*blasNodeSize)
	for _, e := range p.Entries {
		out = append(out, e.ToBytes()...)
	}
	return out
}
