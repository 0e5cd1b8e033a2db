// Package descriptors implements the renderer's bindless descriptor table:
// a fixed-slot map from well-known integer indices to SRV/UAV/CBV GPU
// resource views (spec §4.1, §9 "bindless slot constants"). The slot
// numbers below are the ABI shared between CPU dispatch code and WGSL
// shader source — a single source of truth, not duplicated literals.
//
// This backend has no true bindless resource array the way a D3D12
// shader-visible heap does; the table instead assigns every slot its own
// WGSL binding number inside one large bind group, built once at init
// from whichever slots got registered (see SPEC_FULL.md §0).
package descriptors

// Slot is a stable integer naming a persistent GPU resource view. Shader
// source binds the same numbers via @binding(Slot).
type Slot int

const (
	SlotInstances Slot = iota
	SlotMeshes
	SlotClusters
	SlotPositions
	SlotNormals
	SlotTangents
	SlotTexcoords
	SlotIndices
	SlotMaterials

	SlotConstants

	SlotVisibleInstances
	SlotVisibleInstanceCounter
	SlotVisibleClusters
	SlotVisibleClusterCounter
	SlotClusterDrawArgs

	SlotVisibilityBuffer
	SlotColorBuffer
	SlotDepthBuffer

	SlotOverlayFont
	SlotOverlaySampler
	SlotOverlayVertices

	SlotTLAS
	SlotWorkGraphScratch

	slotCount
)

// Count is the number of well-known slots. The shader-visible resource
// heap in a faithful D3D12 port is sized for 1,000,000 entries (spec
// §4.1); this backend's single bind group only ever needs slotCount
// bindings; the large heap size is a descriptor-heap sizing concern
// that does not apply to a single-bind-group WebGPU table.
const Count = int(slotCount)

func (s Slot) String() string {
	names := [...]string{
		"instances", "meshes", "clusters", "positions", "normals",
		"tangents", "texcoords", "indices", "materials", "constants",
		"visible_instances", "visible_instance_counter",
		"visible_clusters", "visible_cluster_counter", "cluster_draw_args",
		"visibility_buffer", "color_buffer", "depth_buffer",
		"overlay_font", "overlay_sampler", "overlay_vertices", "tlas", "workgraph_scratch",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "slot(?)"
	}
	return names[s]
}
