// Package readback implements the one-to-two-frame-delayed stats
// readback path spec §4.8 describes: the visible-instance and
// visible-cluster counters are copied into a CPU-visible ring each
// frame and mapped back on a later frame, never stalling the GPU to
// make them current (spec §9 "one-frame-delayed stats... do not add a
// stall to make stats current").
package readback

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nivenh/meshlet/frame"
)

// wordsPerSlot is the 4-word (1 + 3) record spec §4.8 describes: the
// visible-instance counter followed by the three-wide visible-cluster
// counter (lane0 = count, lanes 1-2 = the indirect dispatch Y/Z args).
const wordsPerSlot = 4

// Stats is the CPU-visible, frame-delayed snapshot of one slot's
// counters. DelayFrames documents how stale this snapshot is relative
// to the frame it is displayed on, per spec §4.8's UI labelling
// requirement.
type Stats struct {
	VisibleInstances uint32
	VisibleClusters  uint32
	DispatchY        uint32
	DispatchZ        uint32
	DelayFrames      int
}

// Ring is the N*4-word readback buffer plus the bookkeeping needed to
// map a previously-copied slot without stalling the current frame.
type Ring struct {
	mu     sync.Mutex
	device *wgpu.Device
	buf    *wgpu.Buffer

	mapped  [frame.Count]bool
	pending [frame.Count]bool
}

// New creates a readback ring sized for frame.Count slots of
// wordsPerSlot 32-bit words, backed by a CPU-read GPU buffer.
func New(device *wgpu.Device) (*Ring, error) {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback ring",
		Size:  uint64(frame.Count * wordsPerSlot * 4),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("readback: create buffer: %w", err)
	}
	return &Ring{device: device, buf: buf}, nil
}

func (r *Ring) slotOffset(slot int) uint64 {
	return uint64(slot*wordsPerSlot) * 4
}

// Copy records, into encoder, the copy of the visible-instance counter
// (4 bytes) and the three-wide visible-cluster counter (12 bytes) into
// this slot's region of the ring (spec §4.6(G), §4.8).
func (r *Ring) Copy(encoder *wgpu.CommandEncoder, instanceCounter, clusterCounter *wgpu.Buffer, slot int) {
	off := r.slotOffset(slot)
	encoder.CopyBufferToBuffer(instanceCounter, 0, r.buf, off, 4)
	encoder.CopyBufferToBuffer(clusterCounter, 0, r.buf, off+4, 12)
}

// Read maps and reads back the counters last copied into slot. The
// caller is expected to call this at the top of the next use of the
// same frame-ring slot (spec §4.4), i.e. after the frame that wrote it
// has had its command buffer submitted — so the returned Stats reflect
// a frame that is delayFrames frames in the past.
func (r *Ring) Read(slot, delayFrames int) (Stats, error) {
	off := r.slotOffset(slot)
	size := uint64(wordsPerSlot * 4)

	var mapErr error
	mapComplete := false
	r.buf.MapAsync(wgpu.MapModeRead, off, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("readback: map slot %d failed: status %d", slot, status)
		}
		mapComplete = true
	})
	for !mapComplete {
		r.device.Poll(true, nil)
	}
	if mapErr != nil {
		return Stats{}, mapErr
	}

	data := r.buf.GetMappedRange(uint(off), uint(size))
	stats := Stats{
		VisibleInstances: binary.LittleEndian.Uint32(data[0:4]),
		VisibleClusters:  binary.LittleEndian.Uint32(data[4:8]),
		DispatchY:        binary.LittleEndian.Uint32(data[8:12]),
		DispatchZ:        binary.LittleEndian.Uint32(data[12:16]),
		DelayFrames:      delayFrames,
	}
	r.buf.Unmap()
	return stats, nil
}

// Release releases the underlying readback buffer.
func (r *Ring) Release() {
	r.buf.Release()
}
