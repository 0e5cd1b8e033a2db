package overlay

import (
	"math"
	"testing"

	"github.com/nivenh/meshlet/common"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestAABBCornersSpanCenterPlusMinusExtents(t *testing.T) {
	b := common.AABB{Center: [3]float32{1, 2, 3}, Extents: [3]float32{1, 1, 1}}
	corners := AABBCorners(b)

	var min, max [3]float32
	min, max = corners[0], corners[0]
	for _, c := range corners {
		for i := 0; i < 3; i++ {
			if c[i] < min[i] {
				min[i] = c[i]
			}
			if c[i] > max[i] {
				max[i] = c[i]
			}
		}
	}
	wantMin := [3]float32{0, 1, 2}
	wantMax := [3]float32{2, 3, 4}
	if min != wantMin || max != wantMax {
		t.Fatalf("corners span [%v,%v], want [%v,%v]", min, max, wantMin, wantMax)
	}
}

func TestWireframeEdgesProducesTwentyFourVertices(t *testing.T) {
	b := common.AABB{Center: [3]float32{0, 0, 0}, Extents: [3]float32{1, 1, 1}}
	corners := AABBCorners(b)
	edges := WireframeEdges(corners, [4]float32{1, 0, 0, 1})
	if len(edges) != 24 {
		t.Fatalf("len(edges) = %d, want 24 (12 edges x 2 endpoints)", len(edges))
	}
	for _, v := range edges {
		if v.Color != [4]float32{1, 0, 0, 1} {
			t.Fatalf("edge color = %v, want [1 0 0 1]", v.Color)
		}
	}
}

func TestWireframeEdgesReferenceValidCorners(t *testing.T) {
	b := common.AABB{Center: [3]float32{0, 0, 0}, Extents: [3]float32{1, 1, 1}}
	corners := AABBCorners(b)
	edges := WireframeEdges(corners, [4]float32{1, 1, 1, 1})
	cornerSet := make(map[[3]float32]bool, len(corners))
	for _, c := range corners {
		cornerSet[c] = true
	}
	for _, v := range edges {
		if !cornerSet[v.Pos] {
			t.Fatalf("edge vertex %v is not one of the box's 8 corners", v.Pos)
		}
	}
}

func TestFrustumCornersIdentityMatrixIsNDCCube(t *testing.T) {
	var m [16]float32
	common.Identity(m[:])
	corners := FrustumCorners(m)
	for _, c := range corners {
		if !almostEqual(c[0], 1) && !almostEqual(c[0], -1) {
			t.Fatalf("corner x=%v not in {-1,1} for identity matrix", c[0])
		}
		if !almostEqual(c[1], 1) && !almostEqual(c[1], -1) {
			t.Fatalf("corner y=%v not in {-1,1} for identity matrix", c[1])
		}
		if !almostEqual(c[2], 0) && !almostEqual(c[2], 1) {
			t.Fatalf("corner z=%v not in {0,1} for identity matrix", c[2])
		}
	}
}
