package camera

import (
	"math"

	"github.com/nivenh/meshlet/common"
)

const (
	// DefaultFovY is the drawing camera's fixed vertical field of view.
	DefaultFovY = 60.0 * math.Pi / 180.0
	// NearPlane and FarPlane bound the drawing/culling camera frustum (spec §4.5).
	NearPlane = 1.0
	FarPlane  = 10000.0

	moveSpeed     = 5.0
	fastMoveMul   = 4.0
	mouseSensitiv = 0.0035
)

// Controller drives the drawing camera from mouse-drag and WASD input,
// and holds the culling camera which is, by default, a mirror of the
// drawing camera but may be locked at its current pose (spec §4.5).
type Controller struct {
	Drawing Camera
	Culling Camera

	posX, posY, posZ float32
	yaw, pitch       float32

	locked bool

	aspect float32
}

// NewController creates a controller with both cameras at (0, 0, 3)
// looking down -Z, built for the given initial viewport aspect ratio.
func NewController(aspect float32) *Controller {
	c := &Controller{aspect: aspect, posZ: 3}
	c.rebuildDrawing()
	if !c.locked {
		c.Culling = c.Drawing
	}
	return c
}

// SetAspect updates the projection aspect ratio (on window resize).
func (c *Controller) SetAspect(aspect float32) {
	c.aspect = aspect
}

// LockCulling toggles whether the culling camera tracks the drawing
// camera (false) or stays fixed at its last pose (true).
func (c *Controller) LockCulling(locked bool) {
	c.locked = locked
}

// Locked reports whether the culling camera is currently locked.
func (c *Controller) Locked() bool {
	return c.locked
}

// Look applies accumulated mouse-drag deltas to yaw/pitch.
func (c *Controller) Look(dx, dy float32) {
	c.yaw -= dx * mouseSensitiv
	c.pitch -= dy * mouseSensitiv
	const limit = math.Pi/2 - 0.01
	if c.pitch > limit {
		c.pitch = limit
	}
	if c.pitch < -limit {
		c.pitch = -limit
	}
}

// Move applies WASD-style translation in camera-local axes, scaled by
// dt and an optional fast-move factor.
func (c *Controller) Move(forward, strafe, up float32, dt float32, fast bool) {
	speed := moveSpeed
	if fast {
		speed *= fastMoveMul
	}
	sy, cy := float32(math.Sin(float64(c.yaw))), float32(math.Cos(float64(c.yaw)))

	fx, fz := -sy, -cy
	rx, rz := cy, -sy

	d := speed * dt
	c.posX += (fx*forward + rx*strafe) * d
	c.posZ += (fz*forward + rz*strafe) * d
	c.posY += up * d
}

// Update rebuilds the drawing camera from the accumulated pose and, if
// the culling camera isn't locked, mirrors it too. Call once per frame
// after Look/Move have been applied.
func (c *Controller) Update() {
	c.rebuildDrawing()
	if !c.locked {
		c.Culling = c.Drawing
	}
}

// rebuildDrawing recomputes the drawing camera's view/projection from
// the current position and yaw/pitch. View is translate(pos) · rotY(yaw)
// · rotX(pitch), matching spec §4.5's composition order; the view
// matrix used for rendering is this transform's inverse, built directly
// via LookAt to avoid an explicit matrix inversion per frame.
func (c *Controller) rebuildDrawing() {
	cp, sp := float32(math.Cos(float64(c.pitch))), float32(math.Sin(float64(c.pitch)))
	cy, sy := float32(math.Cos(float64(c.yaw))), float32(math.Sin(float64(c.yaw)))

	// Forward vector derived from yaw/pitch (camera looks down -Z at rest).
	fx := -sy * cp
	fy := sp
	fz := -cy * cp

	common.LookAt(c.Drawing.View[:], c.posX, c.posY, c.posZ,
		c.posX+fx, c.posY+fy, c.posZ+fz, 0, 1, 0)
	common.Perspective(c.Drawing.Proj[:], DefaultFovY, c.aspect, NearPlane, FarPlane)
	c.Drawing.Build()
}
