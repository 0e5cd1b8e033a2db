package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nivenh/meshlet/common"
	"github.com/nivenh/meshlet/gpu"
	"github.com/nivenh/meshlet/gpu/descriptors"
	"github.com/nivenh/meshlet/scene"
)

// GPUScene is the set of persistent, bindless-registered buffers backing
// a loaded Scene: the nine pools uploaded once at load time and never
// written again by the CPU afterward.
type GPUScene struct {
	Instances *gpu.Buffer
	Meshes    *gpu.Buffer
	Clusters  *gpu.Buffer
	Positions *gpu.Buffer
	Normals   *gpu.Buffer
	Tangents  *gpu.Buffer
	Texcoords *gpu.Buffer
	Indices   *gpu.Buffer
	Materials *gpu.Buffer
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu    sync.RWMutex
	cache map[string]*scene.Scene
}

// Loader reads the nine well-known .raw files from a scene directory,
// validates them against the scene package's pool caps, and produces a
// CPU-side Scene. Loaded scenes are cached by directory path.
type Loader interface {
	// Load opens every .raw file under dir, infers element counts from
	// file size, and decodes them into a Scene. If dir was already
	// loaded, the cached Scene is returned without touching disk again.
	Load(dir string) (*scene.Scene, error)

	// Get retrieves a previously loaded scene by directory path, or nil.
	Get(dir string) *scene.Scene
}

// NewLoader creates an empty Loader.
func NewLoader() Loader {
	return &loader{cache: make(map[string]*scene.Scene)}
}

func (l *loader) Get(dir string) *scene.Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[dir]
}

func (l *loader) Load(dir string) (*scene.Scene, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache[dir]; ok {
		return cached, nil
	}

	raw := make(map[string][]byte, len(fileNames))
	for _, name := range fileNames {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("assets: read %s: %w", name, err)
		}
		raw[name] = b
	}

	sc := scene.New()

	instanceBytes := raw["instances.raw"]
	if len(instanceBytes)%instanceStride != 0 {
		return nil, fmt.Errorf("assets: instances.raw size %d not a multiple of record size %d", len(instanceBytes), instanceStride)
	}
	instanceCount := len(instanceBytes) / instanceStride
	if instanceCount > scene.MaxInstances {
		return nil, fmt.Errorf("assets: %d instances exceeds pool cap %d", instanceCount, scene.MaxInstances)
	}
	sc.Instances = make([]scene.Instance, instanceCount)
	for i := range sc.Instances {
		model, normal, meshIdx, matIdx, center, extents := decodeInstance(instanceBytes[i*instanceStride : (i+1)*instanceStride])
		sc.Instances[i] = scene.Instance{
			Model:         model,
			Normal:        normal,
			MeshIndex:     meshIdx,
			MaterialIndex: matIdx,
			AABB:          common.AABB{Center: center, Extents: extents},
		}
	}

	meshBytes := raw["meshes.raw"]
	if len(meshBytes)%meshStride != 0 {
		return nil, fmt.Errorf("assets: meshes.raw size %d not a multiple of record size %d", len(meshBytes), meshStride)
	}
	meshCount := len(meshBytes) / meshStride
	if meshCount > scene.MaxMeshes {
		return nil, fmt.Errorf("assets: %d meshes exceeds pool cap %d", meshCount, scene.MaxMeshes)
	}
	sc.Meshes = make([]scene.Mesh, meshCount)
	for i := range sc.Meshes {
		clusterStart, clusterCount, center, extents := decodeMesh(meshBytes[i*meshStride : (i+1)*meshStride])
		sc.Meshes[i] = scene.Mesh{
			ClusterStart: clusterStart,
			ClusterCount: clusterCount,
			AABB:         common.AABB{Center: center, Extents: extents},
		}
	}

	clusterBytes := raw["clusters.raw"]
	if len(clusterBytes)%clusterStride != 0 {
		return nil, fmt.Errorf("assets: clusters.raw size %d not a multiple of record size %d", len(clusterBytes), clusterStride)
	}
	clusterCount := len(clusterBytes) / clusterStride
	if clusterCount > scene.MaxClusters {
		return nil, fmt.Errorf("assets: %d clusters exceeds pool cap %d", clusterCount, scene.MaxClusters)
	}
	sc.Clusters = make([]scene.Cluster, clusterCount)
	for i := range sc.Clusters {
		primStart, primCount, vertStart, vertCount, center, extents := decodeCluster(clusterBytes[i*clusterStride : (i+1)*clusterStride])
		sc.Clusters[i] = scene.Cluster{
			VertexStart:    vertStart,
			VertexCount:    vertCount,
			PrimitiveStart: primStart,
			PrimitiveCount: primCount,
			AABB:           common.AABB{Center: center, Extents: extents},
		}
	}

	positionBytes := raw["positions.raw"]
	if len(positionBytes)%positionStride != 0 {
		return nil, fmt.Errorf("assets: positions.raw size %d not a multiple of record size %d", len(positionBytes), positionStride)
	}
	vertexCount := len(positionBytes) / positionStride
	if vertexCount > scene.MaxVertices {
		return nil, fmt.Errorf("assets: %d vertices exceeds pool cap %d", vertexCount, scene.MaxVertices)
	}
	sc.Positions = make([][3]float32, vertexCount)
	for i := range sc.Positions {
		sc.Positions[i] = readFloat3(positionBytes, i*positionStride)
	}

	normalBytes := raw["normals.raw"]
	if len(normalBytes) != vertexCount*normalStride {
		return nil, fmt.Errorf("assets: normals.raw has %d records, want %d to match positions.raw", len(normalBytes)/normalStride, vertexCount)
	}
	sc.Normals = make([][3]float32, vertexCount)
	for i := range sc.Normals {
		sc.Normals[i] = readFloat3(normalBytes, i*normalStride)
	}

	tangentBytes := raw["tangents.raw"]
	if len(tangentBytes) != vertexCount*tangentStride {
		return nil, fmt.Errorf("assets: tangents.raw has %d records, want %d to match positions.raw", len(tangentBytes)/tangentStride, vertexCount)
	}
	sc.Tangents = make([][4]float32, vertexCount)
	for i := range sc.Tangents {
		sc.Tangents[i] = readFloat4(tangentBytes, i*tangentStride)
	}

	texcoordBytes := raw["texcoords.raw"]
	if len(texcoordBytes) != vertexCount*texcoordStride {
		return nil, fmt.Errorf("assets: texcoords.raw has %d records, want %d to match positions.raw", len(texcoordBytes)/texcoordStride, vertexCount)
	}
	sc.Texcoords = make([][2]float32, vertexCount)
	for i := range sc.Texcoords {
		sc.Texcoords[i] = readFloat2(texcoordBytes, i*texcoordStride)
	}

	indexBytes := raw["indices.raw"]
	if len(indexBytes)%indexStride != 0 {
		return nil, fmt.Errorf("assets: indices.raw size %d not a multiple of record size %d", len(indexBytes), indexStride)
	}
	indexCount := len(indexBytes) / indexStride
	if indexCount > scene.MaxIndices {
		return nil, fmt.Errorf("assets: %d indices exceeds pool cap %d", indexCount, scene.MaxIndices)
	}
	sc.Indices = make([]uint32, indexCount)
	for i := range sc.Indices {
		sc.Indices[i] = readU32(indexBytes, i*indexStride)
	}

	materialBytes := raw["materials.raw"]
	if len(materialBytes)%materialStride != 0 {
		return nil, fmt.Errorf("assets: materials.raw size %d not a multiple of record size %d", len(materialBytes), materialStride)
	}
	materialCount := len(materialBytes) / materialStride
	if materialCount > scene.MaxMaterials {
		return nil, fmt.Errorf("assets: %d materials exceeds pool cap %d", materialCount, scene.MaxMaterials)
	}
	sc.Materials = make([]scene.Material, materialCount)
	for i := range sc.Materials {
		color, metallic, roughness := decodeMaterial(materialBytes[i*materialStride : (i+1)*materialStride])
		sc.Materials[i] = scene.Material{Color: color, Metallic: metallic, Roughness: roughness}
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}

	l.cache[dir] = sc
	return sc, nil
}

// Upload creates the nine persistent pool buffers via factory, registers
// them in the bindless table at their well-known slots, writes the CPU
// scene's contents into them through the device queue, and blocks on a
// single queue-submitted-work-done fence before returning — the Go
// analogue of "enqueue DMA requests, enqueue a fence, block on that
// fence before the first frame" (spec §4.3).
func Upload(device *wgpu.Device, factory *gpu.Factory, sc *scene.Scene) (*GPUScene, error) {
	g := &GPUScene{}

	type pool struct {
		name   string
		slot   descriptors.Slot
		stride uint64
		count  uint64
		data   []byte
		target **gpu.Buffer
	}

	pools := []pool{
		{"instances", descriptors.SlotInstances, instanceStride, uint64(len(sc.Instances)), instancesToBytes(sc.Instances), &g.Instances},
		{"meshes", descriptors.SlotMeshes, 32, uint64(len(sc.Meshes)), meshesToBytes(sc.Meshes), &g.Meshes},
		{"clusters", descriptors.SlotClusters, 40, uint64(len(sc.Clusters)), clustersToBytes(sc.Clusters), &g.Clusters},
		{"positions", descriptors.SlotPositions, positionStride, uint64(len(sc.Positions)), common.SliceToBytes(sc.Positions), &g.Positions},
		{"normals", descriptors.SlotNormals, normalStride, uint64(len(sc.Normals)), common.SliceToBytes(sc.Normals), &g.Normals},
		{"tangents", descriptors.SlotTangents, tangentStride, uint64(len(sc.Tangents)), common.SliceToBytes(sc.Tangents), &g.Tangents},
		{"texcoords", descriptors.SlotTexcoords, texcoordStride, uint64(len(sc.Texcoords)), common.SliceToBytes(sc.Texcoords), &g.Texcoords},
		{"indices", descriptors.SlotIndices, indexStride, uint64(len(sc.Indices)), common.SliceToBytes(sc.Indices), &g.Indices},
		{"materials", descriptors.SlotMaterials, materialStride, uint64(len(sc.Materials)), materialsToBytes(sc.Materials), &g.Materials},
	}

	queue := device.GetQueue()

	for _, p := range pools {
		if p.count == 0 {
			continue
		}
		buf, err := factory.CreateBuffer(gpu.BufferDescriptor{
			Count:  p.count,
			Stride: p.stride,
			Name:   p.name,
		}.WithSRV().WithSlot(p.slot, wgpu.ShaderStageCompute|wgpu.ShaderStageVertex|wgpu.ShaderStageFragment))
		if err != nil {
			return nil, fmt.Errorf("assets: upload %s: %w", p.name, err)
		}
		queue.WriteBuffer(buf.GPU, 0, p.data)
		*p.target = buf
	}

	done := make(chan struct{})
	queue.OnSubmittedWorkDone(func(status wgpu.QueueWorkDoneStatus) {
		close(done)
	})
	<-done

	return g, nil
}

func instancesToBytes(instances []scene.Instance) []byte {
	out := make([]byte, 0, len(instances)*128)
	for _, inst := range instances {
		out = append(out, common.SliceToBytes(inst.Model[:])...)
		out = append(out, common.SliceToBytes(inst.Normal[:])...)
		out = append(out, common.SliceToBytes([]uint32{inst.MeshIndex, inst.MaterialIndex})...)
		out = append(out, common.SliceToBytes(inst.AABB.Center[:])...)
		out = append(out, common.SliceToBytes(inst.AABB.Extents[:])...)
	}
	return out
}

func meshesToBytes(meshes []scene.Mesh) []byte {
	out := make([]byte, 0, len(meshes)*32)
	for _, m := range meshes {
		out = append(out, common.SliceToBytes([]uint32{m.ClusterStart, m.ClusterCount})...)
		out = append(out, common.SliceToBytes(m.AABB.Center[:])...)
		out = append(out, common.SliceToBytes(m.AABB.Extents[:])...)
	}
	return out
}

func clustersToBytes(clusters []scene.Cluster) []byte {
	out := make([]byte, 0, len(clusters)*40)
	for _, c := range clusters {
		out = append(out, common.SliceToBytes([]uint32{c.PrimitiveStart, c.PrimitiveCount, c.VertexStart, c.VertexCount})...)
		out = append(out, common.SliceToBytes(c.AABB.Center[:])...)
		out = append(out, common.SliceToBytes(c.AABB.Extents[:])...)
	}
	return out
}

func materialsToBytes(materials []scene.Material) []byte {
	out := make([]byte, 0, len(materials)*24)
	for _, m := range materials {
		out = append(out, common.SliceToBytes(m.Color[:])...)
		out = append(out, common.SliceToBytes([]float32{m.Metallic, m.Roughness})...)
	}
	return out
}
