// Package overlay implements spec §4.6(F): a CPU-filled debug line
// buffer (locked cull-camera frustum, instance/cluster AABBs) and the
// bitmap-font stat text overlay that displays the one-frame-delayed
// readback counters (spec §4.8).
package overlay

import "github.com/nivenh/meshlet/common"

// LineVertex is one endpoint of a debug line segment, in world space,
// tinted by a flat per-segment color.
type LineVertex struct {
	Pos   [3]float32
	Color [4]float32
}

// cubeEdges are the 12 edge index pairs of a unit cube whose 8 corners
// are enumerated z-major, then y, then x (matching both FrustumCorners
// and AABBCorners below), shared so both builders emit the same
// wireframe topology.
var cubeEdges = [12][2]int{
	{0, 1}, {0, 2}, {1, 3}, {2, 3}, // near/center face
	{4, 5}, {4, 6}, {5, 7}, {6, 7}, // far face
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // connecting edges
}

// FrustumCorners recovers the 8 world-space corners of the frustum
// described by invViewProj by transforming the 8 NDC-space cube corners
// (x,y in [-1,1], z in [0,1] per WebGPU's clip-space convention) and
// perspective-dividing.
func FrustumCorners(invViewProj [16]float32) [8][3]float32 {
	var corners [8][3]float32
	i := 0
	for _, z := range [2]float32{0, 1} {
		for _, y := range [2]float32{-1, 1} {
			for _, x := range [2]float32{-1, 1} {
				cx, cy, cz, cw := transformPoint(invViewProj, x, y, z)
				if cw != 0 {
					cx, cy, cz = cx/cw, cy/cw, cz/cw
				}
				corners[i] = [3]float32{cx, cy, cz}
				i++
			}
		}
	}
	return corners
}

// AABBCorners enumerates an axis-aligned box's 8 corners in the same
// z/y/x-major order FrustumCorners uses, so WireframeEdges can build
// both from one edge table.
func AABBCorners(b common.AABB) [8][3]float32 {
	var corners [8][3]float32
	i := 0
	for _, sz := range [2]float32{-1, 1} {
		for _, sy := range [2]float32{-1, 1} {
			for _, sx := range [2]float32{-1, 1} {
				corners[i] = [3]float32{
					b.Center[0] + sx*b.Extents[0],
					b.Center[1] + sy*b.Extents[1],
					b.Center[2] + sz*b.Extents[2],
				}
				i++
			}
		}
	}
	return corners
}

// WireframeEdges emits the 12-edge (24-vertex) line-list for a box's
// corners, tinted color.
func WireframeEdges(corners [8][3]float32, color [4]float32) []LineVertex {
	out := make([]LineVertex, 0, len(cubeEdges)*2)
	for _, e := range cubeEdges {
		out = append(out,
			LineVertex{Pos: corners[e[0]], Color: color},
			LineVertex{Pos: corners[e[1]], Color: color},
		)
	}
	return out
}

func transformPoint(m [16]float32, x, y, z float32) (ox, oy, oz, ow float32) {
	ox = m[0]*x + m[4]*y + m[8]*z + m[12]
	oy = m[1]*x + m[5]*y + m[9]*z + m[13]
	oz = m[2]*x + m[6]*y + m[10]*z + m[14]
	ow = m[3]*x + m[7]*y + m[11]*z + m[15]
	return
}
