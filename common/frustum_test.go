package common

import (
	"math"
	"testing"
)

func TestExtractFrustumFromMatrixNormalizesPlanes(t *testing.T) {
	out := make([]float32, 16)
	Perspective(out, math.Pi/2, 1.0, 0.1, 100.0)

	f := ExtractFrustumFromMatrix(out)
	for i, p := range f.Planes {
		length := math.Sqrt(float64(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2]))
		if math.Abs(length-1) > 1e-4 {
			t.Fatalf("plane %d normal length = %v, want ~1", i, length)
		}
	}
}

func TestExtractFrustumFromMatrixOriginIsInsideAllPlanes(t *testing.T) {
	out := make([]float32, 16)
	Perspective(out, math.Pi/2, 1.0, 0.1, 100.0)
	f := ExtractFrustumFromMatrix(out)

	origin := AABB{Center: [3]float32{0, 0, -10}, Extents: [3]float32{0, 0, 0}}
	if !origin.IntersectsFrustum(f) {
		t.Fatal("expected a point well within the frustum's depth range to intersect")
	}
}

func TestExtractFrustumFromMatrixCullsPointBehindNearPlane(t *testing.T) {
	out := make([]float32, 16)
	Perspective(out, math.Pi/2, 1.0, 0.1, 100.0)
	f := ExtractFrustumFromMatrix(out)

	behind := AABB{Center: [3]float32{0, 0, 1000}, Extents: [3]float32{0, 0, 0}}
	if behind.IntersectsFrustum(f) {
		t.Fatal("expected a point behind the camera to be culled by the near/far planes")
	}
}
