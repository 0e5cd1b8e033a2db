package culldraw

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nivenh/meshlet/gpu"
	"github.com/nivenh/meshlet/gpu/descriptors"
	"github.com/nivenh/meshlet/scene"
)

const (
	computeStage       = wgpu.ShaderStageCompute
	computeVertexStage = wgpu.ShaderStageCompute | wgpu.ShaderStageVertex
)

// transientBuffers owns the per-load-lifetime GPU resources that are not
// part of the uploaded scene pools: the two append lists spec §4.6(B)/(C)
// describe (visible instance indices, visible (instance,cluster) pairs),
// their atomic counters, and the indirect draw-args buffer the raster
// pass's DrawIndirect call reads. The variable-length visible-cluster
// set feeds that single indirect draw without a GPU-side prefix-sum
// pass: each visible cluster owns a fixed MaxClusterTriangles-triangle
// slot of the vertex range, and unused triangles in a slot are clipped.
type transientBuffers struct {
	visibleInstances       *gpu.Buffer
	visibleInstanceCounter *gpu.Buffer
	visibleClusters        *gpu.Buffer
	visibleClusterCounter  *gpu.Buffer
	clusterDrawArgs        *gpu.Buffer
}

// newTransientBuffers sizes the visible-instance list to sc's instance
// count and the visible-cluster list to sc.MaxClusterCount() — the same
// CPU-known upper bound the cluster-cull dispatch grid uses — and
// allocates the fixed-rate vertex-pulling padding (MaxClusterTriangles
// triangles per possible visible cluster) via the draw-args buffer's
// four u32 lanes (vertex_count, instance_count, first_vertex, first_instance).
func newTransientBuffers(factory *gpu.Factory, sc *scene.Scene) (*transientBuffers, error) {
	instanceCount := uint64(len(sc.Instances))
	if instanceCount == 0 {
		instanceCount = 1
	}
	maxClusters := uint64(sc.MaxClusterCount())
	if maxClusters == 0 {
		maxClusters = 1
	}

	t := &transientBuffers{}

	var err error
	t.visibleInstances, err = factory.CreateBuffer(gpu.BufferDescriptor{
		Count: instanceCount, Stride: 4, Name: "visible instances",
	}.WithUAV().WithRaw().WithSlot(descriptors.SlotVisibleInstances, computeStage))
	if err != nil {
		return nil, fmt.Errorf("culldraw: create visible instances: %w", err)
	}

	t.visibleInstanceCounter, err = factory.CreateBuffer(gpu.BufferDescriptor{
		Count: 1, Stride: 4, Name: "visible instance counter",
	}.WithUAV().WithRaw().WithSlot(descriptors.SlotVisibleInstanceCounter, computeStage))
	if err != nil {
		return nil, fmt.Errorf("culldraw: create visible instance counter: %w", err)
	}

	t.visibleClusters, err = factory.CreateBuffer(gpu.BufferDescriptor{
		Count: maxClusters, Stride: 8, Name: "visible clusters",
	}.WithUAV().WithSlot(descriptors.SlotVisibleClusters, computeVertexStage))
	if err != nil {
		return nil, fmt.Errorf("culldraw: create visible clusters: %w", err)
	}

	t.visibleClusterCounter, err = factory.CreateBuffer(gpu.BufferDescriptor{
		Count: 3, Stride: 4, Name: "visible cluster counter",
	}.WithUAV().WithRaw().WithSlot(descriptors.SlotVisibleClusterCounter, computeVertexStage))
	if err != nil {
		return nil, fmt.Errorf("culldraw: create visible cluster counter: %w", err)
	}

	t.clusterDrawArgs, err = factory.CreateBuffer(gpu.BufferDescriptor{
		Count: 4, Stride: 4, Name: "cluster draw args",
	}.WithUAV().WithRaw().WithSlot(descriptors.SlotClusterDrawArgs, computeStage))
	if err != nil {
		return nil, fmt.Errorf("culldraw: create cluster draw args: %w", err)
	}

	return t, nil
}

func (t *transientBuffers) release() {
	for _, b := range []*gpu.Buffer{
		t.visibleInstances, t.visibleInstanceCounter,
		t.visibleClusters, t.visibleClusterCounter, t.clusterDrawArgs,
	} {
		if b != nil {
			b.GPU.Release()
		}
	}
}
