package readback

import "testing"

// slotOffset is pure arithmetic and the only piece of this package
// testable without a live GPU device; Copy/Read/New all require a real
// wgpu.Device and are exercised by the cull/draw integration path
// instead (spec §4.8).
func TestSlotOffsetIsContiguousPerSlot(t *testing.T) {
	r := &Ring{}
	for slot := 0; slot < 4; slot++ {
		want := uint64(slot*wordsPerSlot) * 4
		if got := r.slotOffset(slot); got != want {
			t.Fatalf("slotOffset(%d) = %d, want %d", slot, got, want)
		}
	}
}

func TestSlotOffsetMatchesWordsPerSlotRecordSize(t *testing.T) {
	r := &Ring{}
	if got := r.slotOffset(1) - r.slotOffset(0); got != uint64(wordsPerSlot*4) {
		t.Fatalf("gap between consecutive slot offsets = %d, want %d", got, wordsPerSlot*4)
	}
}
