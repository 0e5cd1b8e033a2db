package common

import "testing"

func TestTransformAABBTranslationOnly(t *testing.T) {
	m := make([]float32, 16)
	Identity(m)
	m[12], m[13], m[14] = 5, -2, 10

	local := AABB{Center: [3]float32{1, 1, 1}, Extents: [3]float32{2, 2, 2}}
	got := TransformAABB(m, local)

	want := [3]float32{6, -1, 11}
	if got.Center != want {
		t.Fatalf("Center = %v, want %v", got.Center, want)
	}
	if got.Extents != local.Extents {
		t.Fatalf("Extents = %v, want unchanged %v", got.Extents, local.Extents)
	}
}

func TestTransformAABBUniformScale(t *testing.T) {
	m := make([]float32, 16)
	Identity(m)
	m[0], m[5], m[10] = 2, 2, 2

	local := AABB{Center: [3]float32{0, 0, 0}, Extents: [3]float32{1, 1, 1}}
	got := TransformAABB(m, local)

	want := [3]float32{2, 2, 2}
	if got.Extents != want {
		t.Fatalf("Extents = %v, want %v", got.Extents, want)
	}
}

func TestTransformAABBNegativeScaleExpandsExtentsPositively(t *testing.T) {
	m := make([]float32, 16)
	Identity(m)
	m[0] = -3

	local := AABB{Center: [3]float32{0, 0, 0}, Extents: [3]float32{1, 0, 0}}
	got := TransformAABB(m, local)

	if got.Extents[0] != 3 {
		t.Fatalf("Extents[0] = %v, want 3 (abs of negative scale)", got.Extents[0])
	}
}

func TestIntersectsFrustumInsideAllPlanes(t *testing.T) {
	f := Frustum{}
	for i := range f.Planes {
		f.Planes[i] = Plane{Normal: [3]float32{0, 0, 1}, Distance: 1000}
	}
	b := AABB{Center: [3]float32{0, 0, 0}, Extents: [3]float32{1, 1, 1}}
	if !b.IntersectsFrustum(f) {
		t.Fatal("expected box well inside every plane's half-space to intersect")
	}
}

func TestIntersectsFrustumCulledByOnePlane(t *testing.T) {
	f := Frustum{}
	for i := range f.Planes {
		f.Planes[i] = Plane{Normal: [3]float32{0, 0, 1}, Distance: 1000}
	}
	// One plane with the box entirely on the negative side: dist+radius < 0.
	f.Planes[0] = Plane{Normal: [3]float32{1, 0, 0}, Distance: -100}
	b := AABB{Center: [3]float32{0, 0, 0}, Extents: [3]float32{1, 1, 1}}
	if b.IntersectsFrustum(f) {
		t.Fatal("expected box fully behind one plane to be culled")
	}
}

func TestIntersectsFrustumTouchingPlaneIsNotCulled(t *testing.T) {
	f := Frustum{}
	for i := range f.Planes {
		f.Planes[i] = Plane{Normal: [3]float32{0, 0, 1}, Distance: 1000}
	}
	// dist + radius == 0 exactly: policy keeps boxes that merely touch a plane.
	f.Planes[0] = Plane{Normal: [3]float32{1, 0, 0}, Distance: -1}
	b := AABB{Center: [3]float32{0, 0, 0}, Extents: [3]float32{1, 0, 0}}
	if !b.IntersectsFrustum(f) {
		t.Fatal("expected box exactly touching a plane boundary to survive (>= 0 policy)")
	}
}
