package common

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestIdentityProducesIdentityMatrix(t *testing.T) {
	m := make([]float32, 16)
	m[3] = 99 // pre-dirty to confirm Identity clears it
	Identity(m)
	for i, v := range m {
		want := float32(0)
		if i == 0 || i == 5 || i == 10 || i == 15 {
			want = 1
		}
		if v != want {
			t.Fatalf("m[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestMul4WithIdentityIsNoop(t *testing.T) {
	id := make([]float32, 16)
	Identity(id)
	a := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	out := make([]float32, 16)
	Mul4(out, a, id)
	for i := range a {
		if out[i] != a[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], a[i])
		}
	}
}

func TestMul4ComposesTranslations(t *testing.T) {
	a := make([]float32, 16)
	Identity(a)
	a[12], a[13], a[14] = 1, 0, 0

	b := make([]float32, 16)
	Identity(b)
	b[12], b[13], b[14] = 0, 2, 0

	out := make([]float32, 16)
	Mul4(out, a, b)

	if !almostEqual(out[12], 1) || !almostEqual(out[13], 2) || !almostEqual(out[14], 0) {
		t.Fatalf("composed translation = (%v,%v,%v), want (1,2,0)", out[12], out[13], out[14])
	}
}

func TestBuildModelMatrixPureTranslation(t *testing.T) {
	out := make([]float32, 16)
	BuildModelMatrix(out, 1, 2, 3, 0, 0, 0, 1, 1, 1)
	if out[12] != 1 || out[13] != 2 || out[14] != 3 {
		t.Fatalf("translation column = (%v,%v,%v), want (1,2,3)", out[12], out[13], out[14])
	}
	if !almostEqual(out[0], 1) || !almostEqual(out[5], 1) || !almostEqual(out[10], 1) {
		t.Fatal("expected identity rotation/scale block for zero rotation, unit scale")
	}
}

func TestBuildModelMatrixScale(t *testing.T) {
	out := make([]float32, 16)
	BuildModelMatrix(out, 0, 0, 0, 0, 0, 0, 2, 3, 4)
	if !almostEqual(out[0], 2) || !almostEqual(out[5], 3) || !almostEqual(out[10], 4) {
		t.Fatalf("scale diagonal = (%v,%v,%v), want (2,3,4)", out[0], out[5], out[10])
	}
}

func TestInvert4RoundTrip(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 3, -1, 7, 0.4, 0.9, -0.2, 2, 1, 3)

	inv := make([]float32, 16)
	if !Invert4(inv, m) {
		t.Fatal("expected invertible matrix")
	}

	product := make([]float32, 16)
	Mul4(product, m, inv)

	id := make([]float32, 16)
	Identity(id)
	for i := range product {
		if !almostEqual(product[i], id[i]) {
			t.Fatalf("m * inv(m) [%d] = %v, want %v", i, product[i], id[i])
		}
	}
}

func TestInvert4SingularMatrixReturnsFalse(t *testing.T) {
	m := make([]float32, 16) // all-zero, determinant 0
	out := make([]float32, 16)
	if Invert4(out, m) {
		t.Fatal("expected Invert4 to report failure for a singular matrix")
	}
}

func TestLookAtPlacesEyeAtOrigin(t *testing.T) {
	out := make([]float32, 16)
	LookAt(out, 0, 0, 5, 0, 0, 0, 0, 1, 0)

	// The eye, transformed by the view matrix, must land at the origin.
	x := out[0]*0 + out[4]*0 + out[8]*5 + out[12]
	y := out[1]*0 + out[5]*0 + out[9]*5 + out[13]
	z := out[2]*0 + out[6]*0 + out[10]*5 + out[14]
	if !almostEqual(x, 0) || !almostEqual(y, 0) || !almostEqual(z, 0) {
		t.Fatalf("eye transformed by its own view matrix = (%v,%v,%v), want origin", x, y, z)
	}
}

func TestSliceToBytesLength(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	b := SliceToBytes(data)
	if len(b) != 16 {
		t.Fatalf("len(bytes) = %d, want 16", len(b))
	}
}

func TestSliceToBytesEmptyIsNil(t *testing.T) {
	var data []float32
	if b := SliceToBytes(data); b != nil {
		t.Fatalf("expected nil for empty slice, got %d bytes", len(b))
	}
}

func TestStructToBytesLength(t *testing.T) {
	type pair struct {
		A, B uint32
	}
	p := pair{A: 1, B: 2}
	b := StructToBytes(&p)
	if len(b) != 8 {
		t.Fatalf("len(bytes) = %d, want 8", len(b))
	}
}
