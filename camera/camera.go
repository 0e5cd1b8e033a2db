// Package camera implements the dual-camera model spec §4.5 describes: a
// single Camera record type used twice — once for drawing, once for
// culling — rather than two parallel types (spec §9 "dual-camera
// duplication" design note).
package camera

import (
	"github.com/nivenh/meshlet/common"
)

// Camera is the GPU-visible per-camera record: view, view-projection,
// inverse-projection, inverse-view-projection, and six normalized
// frustum planes extracted from the combined matrix. Field order and
// 16-byte-float alignment matter because this struct is copied byte for
// byte into the frame slot's constants slice (see frame.Constants).
type Camera struct {
	View                 [16]float32
	Proj                 [16]float32
	ViewProj             [16]float32
	InverseProj          [16]float32
	InverseViewProj      [16]float32
	Planes               [6]common.Plane
}

// Build recomputes ViewProj, InverseProj, InverseViewProj, and the six
// frustum planes from View and Proj. Call after either changes.
func (c *Camera) Build() {
	common.Mul4(c.ViewProj[:], c.Proj[:], c.View[:])
	if !common.Invert4(c.InverseProj[:], c.Proj[:]) {
		common.Identity(c.InverseProj[:])
	}
	if !common.Invert4(c.InverseViewProj[:], c.ViewProj[:]) {
		common.Identity(c.InverseViewProj[:])
	}
	f := common.ExtractFrustumFromMatrix(c.ViewProj[:])
	c.Planes = f.Planes
}

// Frustum returns the camera's extracted frustum for CPU-side AABB tests
// (instance/cluster cull reference computation, debug-wire rendering).
func (c *Camera) Frustum() common.Frustum {
	return common.Frustum{Planes: c.Planes}
}
