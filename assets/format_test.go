package assets

import (
	"math"
	"testing"
)

func f32bytes(v float32) []byte {
	bits := math.Float32bits(v)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func u32bytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestReadF32RoundTrips(t *testing.T) {
	b := f32bytes(3.14159)
	if got := readF32(b, 0); got != 3.14159 {
		t.Fatalf("readF32 = %v, want 3.14159", got)
	}
}

func TestReadU32LittleEndian(t *testing.T) {
	b := u32bytes(0x01020304)
	if got := readU32(b, 0); got != 0x01020304 {
		t.Fatalf("readU32 = %#x, want %#x", got, 0x01020304)
	}
}

func TestDecodeMeshFieldOrder(t *testing.T) {
	buf := make([]byte, 0, meshStride)
	buf = append(buf, u32bytes(5)...)  // cluster_start
	buf = append(buf, u32bytes(3)...)  // cluster_count
	buf = append(buf, f32bytes(1)...)  // center.x
	buf = append(buf, f32bytes(2)...)  // center.y
	buf = append(buf, f32bytes(3)...)  // center.z
	buf = append(buf, f32bytes(4)...)  // extents.x
	buf = append(buf, f32bytes(5)...)  // extents.y
	buf = append(buf, f32bytes(6)...)  // extents.z

	clusterStart, clusterCount, center, extents := decodeMesh(buf)
	if clusterStart != 5 || clusterCount != 3 {
		t.Fatalf("clusterStart=%d clusterCount=%d, want 5,3", clusterStart, clusterCount)
	}
	if center != [3]float32{1, 2, 3} {
		t.Fatalf("center = %v, want [1 2 3]", center)
	}
	if extents != [3]float32{4, 5, 6} {
		t.Fatalf("extents = %v, want [4 5 6]", extents)
	}
}

func TestDecodeClusterFieldOrder(t *testing.T) {
	buf := make([]byte, 0, clusterStride)
	buf = append(buf, u32bytes(10)...) // primitive_start
	buf = append(buf, u32bytes(20)...) // primitive_count
	buf = append(buf, u32bytes(30)...) // vertex_start
	buf = append(buf, u32bytes(40)...) // vertex_count
	for i := 0; i < 6; i++ {
		buf = append(buf, f32bytes(float32(i))...)
	}

	primStart, primCount, vertStart, vertCount, center, extents := decodeCluster(buf)
	if primStart != 10 || primCount != 20 || vertStart != 30 || vertCount != 40 {
		t.Fatalf("got (%d,%d,%d,%d), want (10,20,30,40)", primStart, primCount, vertStart, vertCount)
	}
	if center != [3]float32{0, 1, 2} || extents != [3]float32{3, 4, 5} {
		t.Fatalf("center=%v extents=%v, want [0 1 2] [3 4 5]", center, extents)
	}
}

func TestDecodeMaterialFieldOrder(t *testing.T) {
	buf := make([]byte, 0, materialStride)
	buf = append(buf, f32bytes(1)...)
	buf = append(buf, f32bytes(0)...)
	buf = append(buf, f32bytes(0)...)
	buf = append(buf, f32bytes(1)...)
	buf = append(buf, f32bytes(0.5)...) // metallic
	buf = append(buf, f32bytes(0.25)...) // roughness

	color, metallic, roughness := decodeMaterial(buf)
	if color != [4]float32{1, 0, 0, 1} {
		t.Fatalf("color = %v, want [1 0 0 1]", color)
	}
	if metallic != 0.5 || roughness != 0.25 {
		t.Fatalf("metallic=%v roughness=%v, want 0.5,0.25", metallic, roughness)
	}
}

func TestDecodeInstanceFieldOrder(t *testing.T) {
	buf := make([]byte, 0, instanceStride)
	for i := 0; i < 16; i++ {
		buf = append(buf, f32bytes(float32(i))...)
	}
	for i := 0; i < 12; i++ {
		buf = append(buf, f32bytes(float32(100+i))...)
	}
	buf = append(buf, u32bytes(7)...) // mesh_index
	buf = append(buf, u32bytes(9)...) // material_index
	for i := 0; i < 6; i++ {
		buf = append(buf, f32bytes(float32(200+i))...)
	}

	model, normal, meshIdx, matIdx, center, extents := decodeInstance(buf)
	if model[0] != 0 || model[15] != 15 {
		t.Fatalf("model[0]=%v model[15]=%v, want 0,15", model[0], model[15])
	}
	if normal[0] != 100 || normal[11] != 111 {
		t.Fatalf("normal[0]=%v normal[11]=%v, want 100,111", normal[0], normal[11])
	}
	if meshIdx != 7 || matIdx != 9 {
		t.Fatalf("meshIdx=%d matIdx=%d, want 7,9", meshIdx, matIdx)
	}
	if center != [3]float32{200, 201, 202} || extents != [3]float32{203, 204, 205} {
		t.Fatalf("center=%v extents=%v, want [200 201 202] [203 204 205]", center, extents)
	}
}

func TestRecordStridesMatchSpecTable(t *testing.T) {
	cases := map[string]int{
		"instance": instanceStride,
		"mesh":     meshStride,
		"cluster":  clusterStride,
		"position": positionStride,
		"normal":   normalStride,
		"tangent":  tangentStride,
		"texcoord": texcoordStride,
		"index":    indexStride,
		"material": materialStride,
	}
	want := map[string]int{
		"instance": 144,
		"mesh":     32,
		"cluster":  40,
		"position": 12,
		"normal":   12,
		"tangent":  16,
		"texcoord": 8,
		"index":    4,
		"material": 24,
	}
	for name, got := range cases {
		if got != want[name] {
			t.Fatalf("%s stride = %d, want %d", name, got, want[name])
		}
	}
}
