package accel

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/nivenh/meshlet/scene"
)

// tlasInstanceSize is one TLAS instance record's packed size: a 4x3
// row-major transform (48 bytes) plus the cluster's BLAS pool offset
// and the owning scene-instance id (8 bytes) = 56 bytes.
const tlasInstanceSize = 56

// TLASInstance is one (scene-instance, cluster-in-its-mesh) pair (spec
// §4.7 step 2): the instance's 4x3 transform and the BLAS address
// (pool byte offset) of that cluster.
type TLASInstance struct {
	Transform      mgl32.Mat3x4 // row-major 3 rows x 4 columns (translation in column 3)
	BLASOffset     uint64
	InstanceIndex  uint32
}

// ToBytes packs the 4x3 transform row-major followed by the BLAS pool
// offset, matching the teacher pack's binary.LittleEndian packing style.
func (t TLASInstance) ToBytes() []byte {
	buf := make([]byte, tlasInstanceSize)
	for i, v := range t.Transform {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[48:52], uint32(t.BLASOffset))
	binary.LittleEndian.PutUint32(buf[52:56], t.InstanceIndex)
	return buf
}

// TLAS is the top-level acceleration structure's CPU-side instance
// list: one TLASInstance per (instance, cluster-in-mesh) pair.
type TLAS struct {
	Instances []TLASInstance
}

// Build produces one TLASInstance per (scene instance, cluster within
// its mesh) pair, carrying the instance's model transform truncated to
// 4x3 and the BLAS pool offset of that cluster (spec §4.7 step 2).
func Build(s *scene.Scene, blas *Pool) *TLAS {
	t := &TLAS{}
	for ii, inst := range s.Instances {
		mesh := s.Meshes[inst.MeshIndex]
		for c := uint32(0); c < mesh.ClusterCount; c++ {
			clusterIdx := mesh.ClusterStart + c
			m := inst.Model
			transform := mgl32.Mat3x4{
				m[0], m[4], m[8], m[12],
				m[1], m[5], m[9], m[13],
				m[2], m[6], m[10], m[14],
			}
			t.Instances = append(t.Instances, TLASInstance{
				Transform:     transform,
				BLASOffset:    blas.Entries[clusterIdx].PoolByteOffset,
				InstanceIndex: uint32(ii),
			})
		}
	}
	return t
}

// Bytes serializes every instance record contiguously, for upload to
// the SRV slot the spec says the TLAS is published at (descriptors.SlotTLAS)
// on a backend that supports ray tracing; unused here since
// gpu.Device.SupportsRayTracing is always false.
func (t *TLAS) Bytes() []byte {
	out := make([]byte, 0, len(t.Instances)*tlasInstanceSize)
	for _, inst := range t.Instances {
		out = append(out, inst.ToBytes()...)
	}
	return out
}
