package culldraw

import (
	"fmt"

	"github.com/nivenh/meshlet/gpu/descriptors"
)

// commonStructsWGSL holds the struct declarations every culldraw shader
// shares: the scene pool record layouts (spec §3, byte-exact with
// assets/format.go's decode* functions) and the per-frame Constants
// record (byte-exact with frame.Constants). Fields that the Go side
// packs tightly (AABB centers/extents, material scalars) are spelled as
// scalar f32/u32 members rather than WGSL's vecN types, because vecN
// members force 16-byte alignment inside a struct; vec4/mat4x4 members
// appear only where the Go layout is already a run of 16-byte-aligned
// float groups (the instance model/normal matrices, the camera
// matrices and planes). Either way WGSL's struct stride stays identical
// to Go's unsafe.Sizeof, which is what lets frame.Ring.WriteConstants
// and assets.Upload hand the GPU a flat byte copy of Go memory with no
// repacking step.
const commonStructsWGSL = `
struct Instance {
  m0: vec4<f32>, m1: vec4<f32>, m2: vec4<f32>, m3: vec4<f32>,
  n0: vec4<f32>, n1: vec4<f32>, n2: vec4<f32>,
  mesh_index: u32,
  material_index: u32,
  center_x: f32, center_y: f32, center_z: f32,
  extent_x: f32, extent_y: f32, extent_z: f32,
}

struct Mesh {
  cluster_start: u32,
  cluster_count: u32,
  center_x: f32, center_y: f32, center_z: f32,
  extent_x: f32, extent_y: f32, extent_z: f32,
}

struct Cluster {
  primitive_start: u32,
  primitive_count: u32,
  vertex_start: u32,
  vertex_count: u32,
  center_x: f32, center_y: f32, center_z: f32,
  extent_x: f32, extent_y: f32, extent_z: f32,
}

struct Material {
  color_r: f32, color_g: f32, color_b: f32, color_a: f32,
  metallic: f32,
  roughness: f32,
}

struct Camera {
  view: mat4x4<f32>,
  proj: mat4x4<f32>,
  view_proj: mat4x4<f32>,
  inv_proj: mat4x4<f32>,
  inv_view_proj: mat4x4<f32>,
  planes: array<vec4<f32>, 6>,
}

struct Constants {
  culling: Camera,
  drawing: Camera,
  instance_count: u32,
  max_cluster_count: u32,
  reserved0: u32,
  reserved1: u32,
  debug_mode: u32,
  pad0: u32,
  pad1: u32,
  pad2: u32,
}

struct VisibleCluster {
  instance_index: u32,
  cluster_index: u32,
}

fn aabb_visible(center_x: f32, center_y: f32, center_z: f32, extent_x: f32, extent_y: f32, extent_z: f32, cam: Camera) -> bool {
  for (var i = 0u; i < 6u; i = i + 1u) {
    let p = cam.planes[i];
    let dist = p.x * center_x + p.y * center_y + p.z * center_z + p.w;
    let radius = abs(p.x) * extent_x + abs(p.y) * extent_y + abs(p.z) * extent_z;
    if (dist + radius < 0.0) {
      return false;
    }
  }
  return true;
}
`

// bind writes one @group(0) @binding(slot) declaration.
func bind(slot descriptors.Slot, qualifier, name, typ string) string {
	return fmt.Sprintf("@group(0) @binding(%d) var%s %s: %s;\n", int(slot), qualifier, name, typ)
}

// FrameSetupSource resets the visible-instance and visible-cluster
// counters (spec §4.6(A)). The visible-cluster counter also doubles as
// the workgroup-count for any consumer that wants an indirect dispatch
// sized to the surviving cluster count, so lanes 1 and 2 are pinned to
// 1 here rather than left at zero (DESIGN.md's resolution of spec §9
// open question (a)).
func FrameSetupSource() string {
	src := commonStructsWGSL
	src += bind(descriptors.SlotVisibleInstanceCounter, "<storage, read_write>", "visible_instance_counter", "array<atomic<u32>>")
	src += bind(descriptors.SlotVisibleClusterCounter, "<storage, read_write>", "visible_cluster_counter", "array<atomic<u32>>")
	src += bind(descriptors.SlotClusterDrawArgs, "<storage, read_write>", "cluster_draw_args", "array<atomic<u32>>")
	src += `
@compute @workgroup_size(1, 1, 1)
fn cs_frame_setup(@builtin(global_invocation_id) gid: vec3<u32>) {
  atomicStore(&visible_instance_counter[0], 0u);
  atomicStore(&visible_cluster_counter[0], 0u);
  atomicStore(&visible_cluster_counter[1], 1u);
  atomicStore(&visible_cluster_counter[2], 1u);
  atomicStore(&cluster_draw_args[0], 0u);
  atomicStore(&cluster_draw_args[1], 1u);
  atomicStore(&cluster_draw_args[2], 0u);
  atomicStore(&cluster_draw_args[3], 0u);
}
`
	return src
}

// InstanceCullSource tests every instance's world-space AABB against
// the culling camera's frustum, appending survivors' indices to the
// visible-instances list (spec §4.6(B)).
func InstanceCullSource() string {
	src := commonStructsWGSL
	src += bind(descriptors.SlotInstances, "<storage, read>", "instances", "array<Instance>")
	src += bind(descriptors.SlotConstants, "<storage, read>", "frame_constants", "Constants")
	src += bind(descriptors.SlotVisibleInstances, "<storage, read_write>", "visible_instances", "array<u32>")
	src += bind(descriptors.SlotVisibleInstanceCounter, "<storage, read_write>", "visible_instance_counter", "array<atomic<u32>>")
	src += `
@compute @workgroup_size(128, 1, 1)
fn cs_instance_cull(@builtin(global_invocation_id) gid: vec3<u32>) {
  let index = gid.x;
  if (index >= frame_constants.instance_count) {
    return;
  }
  let inst = instances[index];
  if (!aabb_visible(inst.center_x, inst.center_y, inst.center_z, inst.extent_x, inst.extent_y, inst.extent_z, frame_constants.culling)) {
    return;
  }
  let slot = atomicAdd(&visible_instance_counter[0], 1u);
  visible_instances[slot] = index;
}
`
	return src
}

// ClusterCullSource walks every visible instance's cluster range,
// testing each cluster's AABB against the culling camera and appending
// survivors to the visible-clusters list (spec §4.6(C)). The dispatch
// grid is a CPU-computed upper bound (ceil(scene.MaxClusterCount()/128)),
// so each thread maps to one (instance-slot, cluster-within-mesh) pair
// by a linear scan that subtracts each visible instance's cluster count
// from the thread index, rather than through a GPU-computed offset
// table. Every surviving cluster adds max_cluster_triangles*3 vertices
// to the indirect draw count, the fixed per-cluster slot the
// mesh-raster vertex shader decodes.
func ClusterCullSource() string {
	src := commonStructsWGSL
	src += bind(descriptors.SlotInstances, "<storage, read>", "instances", "array<Instance>")
	src += bind(descriptors.SlotMeshes, "<storage, read>", "meshes", "array<Mesh>")
	src += bind(descriptors.SlotClusters, "<storage, read>", "clusters", "array<Cluster>")
	src += bind(descriptors.SlotConstants, "<storage, read>", "frame_constants", "Constants")
	src += bind(descriptors.SlotVisibleInstances, "<storage, read>", "visible_instances", "array<u32>")
	src += bind(descriptors.SlotVisibleInstanceCounter, "<storage, read>", "visible_instance_counter", "array<u32>")
	src += bind(descriptors.SlotVisibleClusters, "<storage, read_write>", "visible_clusters", "array<VisibleCluster>")
	src += bind(descriptors.SlotVisibleClusterCounter, "<storage, read_write>", "visible_cluster_counter", "array<atomic<u32>>")
	src += bind(descriptors.SlotClusterDrawArgs, "<storage, read_write>", "cluster_draw_args", "array<atomic<u32>>")
	src += `
const max_cluster_triangles: u32 = 124u;

@compute @workgroup_size(128, 1, 1)
fn cs_cluster_cull(@builtin(global_invocation_id) gid: vec3<u32>) {
  let global_index = gid.x;
  let visible_instance_count = visible_instance_counter[0];

  // Linear scan over visible instances to find which one owns
  // global_index; the scan is bounded by the instance count, not the
  // cluster count, and stops as soon as the owning instance is found.
  var remaining = global_index;
  for (var vi = 0u; vi < visible_instance_count; vi = vi + 1u) {
    let instance_index = visible_instances[vi];
    let mesh = meshes[instances[instance_index].mesh_index];
    if (remaining >= mesh.cluster_count) {
      remaining = remaining - mesh.cluster_count;
      continue;
    }

    let cluster_index = mesh.cluster_start + remaining;
    let c = clusters[cluster_index];
    let inst = instances[instance_index];

    let world_center_x = inst.m0.x * c.center_x + inst.m1.x * c.center_y + inst.m2.x * c.center_z + inst.m3.x;
    let world_center_y = inst.m0.y * c.center_x + inst.m1.y * c.center_y + inst.m2.y * c.center_z + inst.m3.y;
    let world_center_z = inst.m0.z * c.center_x + inst.m1.z * c.center_y + inst.m2.z * c.center_z + inst.m3.z;
    let abs_m0 = abs(inst.m0.xyz);
    let abs_m1 = abs(inst.m1.xyz);
    let abs_m2 = abs(inst.m2.xyz);
    let world_extent_x = abs_m0.x * c.extent_x + abs_m1.x * c.extent_y + abs_m2.x * c.extent_z;
    let world_extent_y = abs_m0.y * c.extent_x + abs_m1.y * c.extent_y + abs_m2.y * c.extent_z;
    let world_extent_z = abs_m0.z * c.extent_x + abs_m1.z * c.extent_y + abs_m2.z * c.extent_z;

    if (!aabb_visible(world_center_x, world_center_y, world_center_z, world_extent_x, world_extent_y, world_extent_z, frame_constants.culling)) {
      return;
    }

    let slot = atomicAdd(&visible_cluster_counter[0], 1u);
    visible_clusters[slot] = VisibleCluster(instance_index, cluster_index);
    atomicAdd(&cluster_draw_args[0], max_cluster_triangles * 3u);
    return;
  }
}
`
	return src
}

// MeshRasterVertexSource pulls per-vertex attributes from the flat
// vertex pools by hand in lieu of a bound vertex buffer (spec §0's
// vertex-pulling substitute for mesh-shader input assembly), writing
// each rasterized fragment's (visible-cluster-list index, triangle
// index) pair into the visibility buffer instead of shaded color.
func MeshRasterVertexSource() string {
	src := commonStructsWGSL
	src += bind(descriptors.SlotInstances, "<storage, read>", "instances", "array<Instance>")
	src += bind(descriptors.SlotClusters, "<storage, read>", "clusters", "array<Cluster>")
	src += bind(descriptors.SlotPositions, "<storage, read>", "positions", "array<f32>")
	src += bind(descriptors.SlotIndices, "<storage, read>", "indices", "array<u32>")
	src += bind(descriptors.SlotVisibleClusters, "<storage, read>", "visible_clusters", "array<VisibleCluster>")
	src += bind(descriptors.SlotVisibleClusterCounter, "<storage, read>", "visible_cluster_counter", "array<u32>")
	src += bind(descriptors.SlotConstants, "<storage, read>", "frame_constants", "Constants")
	src += `
const max_cluster_triangles: u32 = 124u;

struct VsOut {
  @builtin(position) position: vec4<f32>,
  @location(0) @interpolate(flat) visibility: u32,
}

@vertex
fn vs_mesh_raster(@builtin(vertex_index) vertex_index: u32) -> VsOut {
  var out: VsOut;

  let slot_triangle = vertex_index / 3u;
  let corner = vertex_index % 3u;
  let list_index = slot_triangle / max_cluster_triangles;
  let local_triangle = slot_triangle % max_cluster_triangles;

  if (list_index >= visible_cluster_counter[0]) {
    out.position = vec4<f32>(2.0, 2.0, 2.0, 1.0); // clipped: outside NDC
    out.visibility = 0u;
    return out;
  }

  let vc = visible_clusters[list_index];
  let cluster = clusters[vc.cluster_index];
  if (local_triangle >= cluster.primitive_count) {
    out.position = vec4<f32>(2.0, 2.0, 2.0, 1.0);
    out.visibility = 0u;
    return out;
  }

  let index_offset = (cluster.primitive_start + local_triangle) * 3u + corner;
  let vertex_id = cluster.vertex_start + indices[index_offset];
  let pos_base = vertex_id * 3u;
  let local_pos = vec3<f32>(positions[pos_base], positions[pos_base + 1u], positions[pos_base + 2u]);

  let inst = instances[vc.instance_index];
  let model = mat4x4<f32>(inst.m0, inst.m1, inst.m2, inst.m3);
  let world_pos = model * vec4<f32>(local_pos, 1.0);

  out.position = frame_constants.drawing.view_proj * world_pos;
  out.visibility = (list_index << 8u) | local_triangle;
  return out;
}
`
	return src
}

// MeshRasterFragmentSource writes the interpolated (flat) visibility
// word straight into the R32Uint visibility target.
func MeshRasterFragmentSource() string {
	return `
struct VsOut {
  @builtin(position) position: vec4<f32>,
  @location(0) @interpolate(flat) visibility: u32,
}

@fragment
fn fs_mesh_raster(in: VsOut) -> @location(0) u32 {
  return in.visibility;
}
`
}

// MaterialResolveSource reads one texel of the visibility buffer per
// thread, looks the owning cluster/instance/material back up, and
// writes a shaded (or debug-visualized) result into the color buffer
// (spec §4.6(E)).
func MaterialResolveSource() string {
	src := commonStructsWGSL
	src += bind(descriptors.SlotInstances, "<storage, read>", "instances", "array<Instance>")
	src += bind(descriptors.SlotClusters, "<storage, read>", "clusters", "array<Cluster>")
	src += bind(descriptors.SlotIndices, "<storage, read>", "indices", "array<u32>")
	src += bind(descriptors.SlotPositions, "<storage, read>", "positions", "array<f32>")
	src += bind(descriptors.SlotNormals, "<storage, read>", "normals", "array<f32>")
	src += bind(descriptors.SlotTangents, "<storage, read>", "tangents", "array<f32>")
	src += bind(descriptors.SlotTexcoords, "<storage, read>", "texcoords", "array<f32>")
	src += bind(descriptors.SlotMaterials, "<storage, read>", "materials", "array<Material>")
	src += bind(descriptors.SlotVisibleClusters, "<storage, read>", "visible_clusters", "array<VisibleCluster>")
	src += bind(descriptors.SlotConstants, "<storage, read>", "frame_constants", "Constants")
	src += bind(descriptors.SlotVisibilityBuffer, "", "visibility_buffer", "texture_2d<u32>")
	src += bind(descriptors.SlotDepthBuffer, "", "depth_buffer", "texture_depth_2d")
	src += bind(descriptors.SlotColorBuffer, "", "color_buffer", "texture_storage_2d<rgba8unorm, write>")
	src += `
const debug_none: u32 = 0u;
const debug_triangles: u32 = 1u;
const debug_clusters: u32 = 2u;
const debug_instances: u32 = 3u;
const debug_materials: u32 = 4u;
const debug_depth_buffer: u32 = 5u;

fn hash_color(seed: u32) -> vec3<f32> {
  var x = seed * 2654435761u;
  x = x ^ (x >> 16u);
  let r = f32((x >> 0u) & 255u) / 255.0;
  let g = f32((x >> 8u) & 255u) / 255.0;
  let b = f32((x >> 16u) & 255u) / 255.0;
  return vec3<f32>(r, g, b);
}

fn fetch_position(vertex_id: u32) -> vec3<f32> {
  let b = vertex_id * 3u;
  return vec3<f32>(positions[b], positions[b + 1u], positions[b + 2u]);
}

fn fetch_normal(vertex_id: u32) -> vec3<f32> {
  let b = vertex_id * 3u;
  return vec3<f32>(normals[b], normals[b + 1u], normals[b + 2u]);
}

fn fetch_tangent(vertex_id: u32) -> vec4<f32> {
  let b = vertex_id * 4u;
  return vec4<f32>(tangents[b], tangents[b + 1u], tangents[b + 2u], tangents[b + 3u]);
}

fn fetch_texcoord(vertex_id: u32) -> vec2<f32> {
  let b = vertex_id * 2u;
  return vec2<f32>(texcoords[b], texcoords[b + 1u]);
}

fn clip_to_screen(clip: vec4<f32>, dims: vec2<f32>) -> vec2<f32> {
  let ndc = clip.xy / clip.w;
  return vec2<f32>((ndc.x * 0.5 + 0.5) * dims.x, (1.0 - (ndc.y * 0.5 + 0.5)) * dims.y);
}

fn edge(a: vec2<f32>, b: vec2<f32>, c: vec2<f32>) -> f32 {
  return (b.x - a.x) * (c.y - a.y) - (b.y - a.y) * (c.x - a.x);
}

// shade_triangle reconstructs the visible triangle's three vertex ids
// from the cluster's index range, fetches their positions/normals/
// tangents/texcoords, reconstructs screen-space barycentric weights for
// the current pixel, and interpolates every vertex pool through them
// (spec §4.6(E)) instead of a flat per-material color.
fn shade_triangle(cluster: Cluster, inst: Instance, local_triangle: u32, pixel_center: vec2<f32>, dims: vec2<f32>) -> vec3<f32> {
  let tri_base = (cluster.primitive_start + local_triangle) * 3u;
  let i0 = cluster.vertex_start + indices[tri_base];
  let i1 = cluster.vertex_start + indices[tri_base + 1u];
  let i2 = cluster.vertex_start + indices[tri_base + 2u];

  let model = mat4x4<f32>(inst.m0, inst.m1, inst.m2, inst.m3);
  let normal_mat = mat3x3<f32>(inst.n0.xyz, inst.n1.xyz, inst.n2.xyz);

  let wp0 = (model * vec4<f32>(fetch_position(i0), 1.0)).xyz;
  let wp1 = (model * vec4<f32>(fetch_position(i1), 1.0)).xyz;
  let wp2 = (model * vec4<f32>(fetch_position(i2), 1.0)).xyz;

  let clip0 = frame_constants.drawing.view_proj * vec4<f32>(wp0, 1.0);
  let clip1 = frame_constants.drawing.view_proj * vec4<f32>(wp1, 1.0);
  let clip2 = frame_constants.drawing.view_proj * vec4<f32>(wp2, 1.0);

  let s0 = clip_to_screen(clip0, dims);
  let s1 = clip_to_screen(clip1, dims);
  let s2 = clip_to_screen(clip2, dims);

  // Perspective-correct barycentric weights, reconstructed analytically
  // from the triangle's three projected screen positions rather than
  // hardware dpdx/dpdy derivatives (unavailable in a compute shader).
  var bary = vec3<f32>(1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0);
  let area = edge(s0, s1, s2);
  if (abs(area) > 1e-6) {
    let w0 = edge(s1, s2, pixel_center) / area;
    let w1 = edge(s2, s0, pixel_center) / area;
    let w2 = 1.0 - w0 - w1;
    let inv_w0 = w0 / clip0.w;
    let inv_w1 = w1 / clip1.w;
    let inv_w2 = w2 / clip2.w;
    let sum = inv_w0 + inv_w1 + inv_w2;
    if (abs(sum) > 1e-6) {
      bary = vec3<f32>(inv_w0, inv_w1, inv_w2) / sum;
    }
  }

  let n0 = normalize(normal_mat * fetch_normal(i0));
  let n1 = normalize(normal_mat * fetch_normal(i1));
  let n2 = normalize(normal_mat * fetch_normal(i2));
  let world_normal = normalize(bary.x * n0 + bary.y * n1 + bary.z * n2);

  let t0 = fetch_tangent(i0);
  let t1 = fetch_tangent(i1);
  let t2 = fetch_tangent(i2);
  let tangent_local = bary.x * t0.xyz + bary.y * t1.xyz + bary.z * t2.xyz;
  let tangent_ws = normalize(normal_mat * tangent_local);
  let bitangent_sign = sign(bary.x * t0.w + bary.y * t1.w + bary.z * t2.w);
  let bitangent_ws = cross(world_normal, tangent_ws) * bitangent_sign;

  let uv0 = fetch_texcoord(i0);
  let uv1 = fetch_texcoord(i1);
  let uv2 = fetch_texcoord(i2);
  let uv = bary.x * uv0 + bary.y * uv1 + bary.z * uv2;

  let light_dir = normalize(vec3<f32>(0.4, 0.8, 0.45));
  let view_dir = normalize(vec3<f32>(0.0, 0.3, 1.0));
  let half_dir = normalize(light_dir + view_dir);

  let ndotl = max(dot(world_normal, light_dir), 0.0);
  let spec = pow(max(dot(world_normal, half_dir), 0.0), 32.0) * 0.15;
  let checker_u = u32(floor(uv.x * 8.0));
  let checker_v = u32(floor(uv.y * 8.0));
  let checker = select(0.85, 1.0, (checker_u + checker_v) % 2u == 0u);
  let tangent_tint = 1.0 + 0.05 * dot(bitangent_ws, vec3<f32>(0.0, 1.0, 0.0));

  let mat = materials[inst.material_index];
  let base = vec3<f32>(mat.color_r, mat.color_g, mat.color_b) * checker * tangent_tint;
  return base * (0.2 + 0.8 * ndotl) + vec3<f32>(spec, spec, spec);
}

@compute @workgroup_size(8, 8, 1)
fn cs_material_resolve(@builtin(global_invocation_id) gid: vec3<u32>) {
  let dims = textureDimensions(visibility_buffer);
  if (gid.x >= dims.x || gid.y >= dims.y) {
    return;
  }
  let texel = vec2<i32>(i32(gid.x), i32(gid.y));
  let packed = textureLoad(visibility_buffer, texel, 0).x;

  if (frame_constants.debug_mode == debug_depth_buffer) {
    let depth = textureLoad(depth_buffer, texel, 0);
    textureStore(color_buffer, texel, vec4<f32>(depth, depth, depth, 1.0));
    return;
  }

  let list_index = packed >> 8u;
  let local_triangle = packed & 255u;
  if (packed == 0u && list_index == 0u) {
    textureStore(color_buffer, texel, vec4<f32>(0.02, 0.02, 0.03, 1.0));
    return;
  }

  let vc = visible_clusters[list_index];
  let inst = instances[vc.instance_index];

  var shaded = vec3<f32>(1.0, 1.0, 1.0);
  switch (frame_constants.debug_mode) {
    case 1u: { shaded = hash_color(list_index * 9781u + local_triangle); }
    case 2u: { shaded = hash_color(vc.cluster_index * 2654435761u); }
    case 3u: { shaded = hash_color(vc.instance_index * 40503u); }
    default: {
      let cluster = clusters[vc.cluster_index];
      let pixel_center = vec2<f32>(f32(gid.x) + 0.5, f32(gid.y) + 0.5);
      let dims_f = vec2<f32>(f32(dims.x), f32(dims.y));
      shaded = shade_triangle(cluster, inst, local_triangle, pixel_center, dims_f);
    }
  }

  textureStore(color_buffer, texel, vec4<f32>(shaded, 1.0));
}
`
	return src
}

// OverlayWireVertexSource and OverlayWireFragmentSource draw the
// CPU-filled debug line buffer (frustum + AABB wireframes) directly
// into the color buffer via a render pass (spec §4.6(F)) — distinct
// from material-resolve's compute-shader storage write, since a
// render-pass color attachment and a storage-texture binding can both
// legally target the same underlying texture as long as they are never
// used within the same pass.
func OverlayWireVertexSource() string {
	src := bind(descriptors.SlotConstants, "<storage, read>", "frame_constants", "Constants")
	src += `
struct VsIn {
  @location(0) pos: vec3<f32>,
  @location(1) color: vec4<f32>,
}

struct VsOut {
  @builtin(position) position: vec4<f32>,
  @location(0) color: vec4<f32>,
}

@vertex
fn vs_overlay_wire(in: VsIn) -> VsOut {
  var out: VsOut;
  out.position = frame_constants.drawing.view_proj * vec4<f32>(in.pos, 1.0);
  out.color = in.color;
  return out;
}
`
	return src
}

func OverlayWireFragmentSource() string {
	return `
struct VsOut {
  @builtin(position) position: vec4<f32>,
  @location(0) color: vec4<f32>,
}

@fragment
fn fs_overlay_wire(in: VsOut) -> @location(0) vec4<f32> {
  return in.color;
}
`
}

// OverlayTextVertexSource and OverlayTextFragmentSource draw the
// bitmap-font stats panel (spec §4.8) as screen-space textured quads.
func OverlayTextVertexSource() string {
	return `
struct VsIn {
  @location(0) pos: vec2<f32>,
  @location(1) uv: vec2<f32>,
  @location(2) color: vec4<f32>,
}

struct VsOut {
  @builtin(position) position: vec4<f32>,
  @location(0) uv: vec2<f32>,
  @location(1) color: vec4<f32>,
}

@vertex
fn vs_overlay_text(in: VsIn) -> VsOut {
  var out: VsOut;
  out.position = vec4<f32>(in.pos, 0.0, 1.0);
  out.uv = in.uv;
  out.color = in.color;
  return out;
}
`
}

func OverlayTextFragmentSource() string {
	src := bind(descriptors.SlotOverlayFont, "", "overlay_font", "texture_2d<f32>")
	src += bind(descriptors.SlotOverlaySampler, "", "overlay_sampler", "sampler")
	src += `
struct VsOut {
  @builtin(position) position: vec4<f32>,
  @location(0) uv: vec2<f32>,
  @location(1) color: vec4<f32>,
}

@fragment
fn fs_overlay_text(in: VsOut) -> @location(0) vec4<f32> {
  let alpha = textureSample(overlay_font, overlay_sampler, in.uv).r;
  return vec4<f32>(in.color.rgb, in.color.a * alpha);
}
`
	return src
}
