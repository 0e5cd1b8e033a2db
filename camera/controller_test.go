package camera

import "testing"

func TestNewControllerStartsCullingUnlockedAndMirrored(t *testing.T) {
	c := NewController(16.0 / 9.0)
	if c.Locked() {
		t.Fatal("expected a fresh controller to start with culling unlocked")
	}
	if c.Culling != c.Drawing {
		t.Fatal("expected culling camera to mirror drawing camera when unlocked")
	}
}

func TestUpdateMirrorsCullingWhenUnlocked(t *testing.T) {
	c := NewController(1.0)
	c.Move(1, 0, 0, 1.0, false)
	c.Update()
	if c.Culling != c.Drawing {
		t.Fatal("expected culling camera to track drawing camera after Update when unlocked")
	}
}

func TestLockCullingFreezesCullingCamera(t *testing.T) {
	c := NewController(1.0)
	c.LockCulling(true)
	frozen := c.Culling

	c.Move(1, 0, 0, 1.0, false)
	c.Update()

	if c.Culling != frozen {
		t.Fatal("expected culling camera to stay fixed once locked")
	}
	if c.Drawing == frozen {
		t.Fatal("expected drawing camera to have moved away from the frozen pose")
	}
}

func TestLockedReflectsLockCullingState(t *testing.T) {
	c := NewController(1.0)
	if c.Locked() {
		t.Fatal("expected Locked() false initially")
	}
	c.LockCulling(true)
	if !c.Locked() {
		t.Fatal("expected Locked() true after LockCulling(true)")
	}
	c.LockCulling(false)
	if c.Locked() {
		t.Fatal("expected Locked() false after LockCulling(false)")
	}
}

func TestLookClampsPitch(t *testing.T) {
	c := NewController(1.0)
	// A huge downward drag should clamp pitch rather than flip the camera over.
	c.Look(0, -100000)
	c.Update()

	const limit = 1.5707963267948966/1 - 0.01 // math.Pi/2 - 0.01, mirrored from controller.go
	if c.pitch > float32(limit)+1e-3 {
		t.Fatalf("pitch = %v, want clamped to <= %v", c.pitch, limit)
	}
}

func TestMoveForwardChangesPosition(t *testing.T) {
	c := NewController(1.0)
	startX, startZ := c.posX, c.posZ
	c.Move(1, 0, 0, 1.0, false)
	if c.posX == startX && c.posZ == startZ {
		t.Fatal("expected Move(forward=1) to change camera position")
	}
}

func TestMoveFastMultipliesDistance(t *testing.T) {
	slow := NewController(1.0)
	slow.Move(1, 0, 0, 1.0, false)

	fast := NewController(1.0)
	fast.Move(1, 0, 0, 1.0, true)

	slowDist := slow.posX*slow.posX + slow.posZ*slow.posZ
	fastDist := fast.posX*fast.posX + fast.posZ*fast.posZ
	if fastDist <= slowDist {
		t.Fatalf("expected fast move to travel further: slowDist=%v fastDist=%v", slowDist, fastDist)
	}
}

func TestSetAspectAffectsProjection(t *testing.T) {
	c := NewController(1.0)
	before := c.Drawing.Proj
	c.SetAspect(2.0)
	c.Update()
	if c.Drawing.Proj == before {
		t.Fatal("expected projection matrix to change after SetAspect + Update")
	}
}
