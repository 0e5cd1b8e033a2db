// Package frame implements the triple-buffered frame-ring and fence
// discipline spec §4.4 describes: three rotating slots, each owning a
// fresh command encoder and its own region of the debug-wire vertex
// upload buffer. The constants upload buffer holds a single record (see
// Slot), and GPU readback lives in package readback.
//
// This backend has no explicit fence object the way D3D12 does; the
// slot "fence" is instead a per-slot in-flight flag. End sets it before
// submitting and registers a Queue.OnSubmittedWorkDone callback that
// clears it once the GPU has finished that submission; Begin on the
// same slot index pumps wgpu.Device.Poll until the flag clears before
// handing out a fresh encoder.
package frame

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nivenh/meshlet/camera"
	"github.com/nivenh/meshlet/common"
	"github.com/nivenh/meshlet/gpu"
	"github.com/nivenh/meshlet/gpu/descriptors"
)

// Count is the swap-chain depth / number of frame-ring slots (spec §4.4, §4.1 "N=3").
const Count = gpu.BackBufferCount

// ConstantsCountVector holds the 4-wide count vector spec §3 describes:
// instance count, max cluster count, and two reserved lanes.
type ConstantsCountVector struct {
	InstanceCount   uint32
	MaxClusterCount uint32
	Reserved0       uint32
	Reserved1       uint32
}

// DebugMode selects the material-resolve pass's visualization (spec §4.6(E)).
type DebugMode uint32

const (
	DebugModeNone DebugMode = iota
	DebugModeTriangles
	DebugModeClusters
	DebugModeInstances
	DebugModeMaterials
	DebugModeDepthBuffer
)

// Constants is the per-frame constants record: both cameras, the count
// vector, and the debug mode (spec §4.5). Copied byte-for-byte into the
// active slot's constants-buffer slice every frame.
type Constants struct {
	Culling camera.Camera
	Drawing camera.Camera
	Counts  ConstantsCountVector
	Debug   DebugMode
	_       [3]uint32 // pad Debug out to 16 bytes for std140-style alignment
}

// constantsAlignment is the 256-byte alignment spec §4.5 requires for
// constant-buffer records.
const constantsAlignment = 256

// constantsStride is the per-slot byte size of the constants upload
// buffer: sizeof(Constants) rounded up to constantsAlignment.
const constantsStride = uint64((unsafe.Sizeof(Constants{}) + constantsAlignment - 1) / constantsAlignment * constantsAlignment)

// Slot is one rotating frame-ring entry: a fresh command encoder plus
// this slot's byte offset into the shared wire-vertex upload buffer.
// The constants buffer is not itself triple-buffered: it holds exactly
// one Constants record, rewritten via queue.WriteBuffer immediately
// before a frame's passes are recorded. Because the queue processes
// WriteBuffer calls and Submit calls in the order they were issued, a
// later frame's write can never race ahead of an earlier frame's reads
// (spec §4.4's "a slot is safe to reuse once its fence has signaled"
// concern applies to the command encoder and render targets, not to a
// value rewritten through the same queue that consumes it).
type Slot struct {
	Index      int
	Encoder    *wgpu.CommandEncoder
	WireOffset uint64
}

// Ring owns the N=3 rotating slots' persistent upload buffers and
// serializes slot reuse against in-flight GPU work.
type Ring struct {
	mu       sync.Mutex
	device   *wgpu.Device
	queue    *wgpu.Queue
	factory  *gpu.Factory
	current  int
	inFlight [Count]bool

	constantsBuf *gpu.Buffer
	wireBuf      *gpu.Buffer

	wireStride uint64
}

// New creates a frame ring bound to device/queue, allocating the
// persistent constants upload buffer (a single constantsStride-byte
// record, registered at descriptors.SlotConstants) and a debug-wire
// vertex upload buffer of wireCapacityBytes per slot.
func New(device *wgpu.Device, queue *wgpu.Queue, factory *gpu.Factory, wireCapacityBytes uint64) (*Ring, error) {
	r := &Ring{device: device, queue: queue, factory: factory, wireStride: wireCapacityBytes}

	// Written every frame via queue.WriteBuffer rather than persistent
	// CPU mapping (see WriteConstants) so this buffer only needs
	// copy-dst + storage usage, not the mutually exclusive map-write bit.
	constantsBuf, err := factory.CreateBuffer(gpu.BufferDescriptor{
		Count:  1,
		Stride: constantsStride,
		Name:   "frame constants",
	}.WithSRV().WithSlot(descriptors.SlotConstants, wgpu.ShaderStageCompute|wgpu.ShaderStageVertex|wgpu.ShaderStageFragment))
	if err != nil {
		return nil, fmt.Errorf("frame: create constants buffer: %w", err)
	}
	r.constantsBuf = constantsBuf

	if wireCapacityBytes > 0 {
		wireBuf, err := factory.CreateBuffer(gpu.BufferDescriptor{
			Count:  Count,
			Stride: wireCapacityBytes,
			Name:   "debug wire vertices",
		}.WithVertex())
		if err != nil {
			return nil, fmt.Errorf("frame: create wire buffer: %w", err)
		}
		r.wireBuf = wireBuf
	}

	return r, nil
}

// Begin waits for the previous submission using slot index%Count to
// drain, resets its command encoder, and returns the slot descriptor.
func (r *Ring) Begin(index int) (*Slot, error) {
	r.mu.Lock()
	for r.inFlight[index] {
		r.mu.Unlock()
		r.device.Poll(true, nil)
		r.mu.Lock()
	}
	r.mu.Unlock()

	encoder, err := r.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: fmt.Sprintf("frame slot %d", index)})
	if err != nil {
		return nil, fmt.Errorf("frame: create command encoder: %w", err)
	}

	return &Slot{
		Index:      index,
		Encoder:    encoder,
		WireOffset: uint64(index) * r.wireStride,
	}, nil
}

// WriteConstants uploads c into the constants buffer via
// queue.WriteBuffer (the persistent-mapping approach the teacher uses
// elsewhere is unavailable for a buffer also read by compute shaders
// every frame; WriteBuffer is the WebGPU-idiomatic equivalent of
// "write-mapped once at init, written per slot").
func (r *Ring) WriteConstants(c *Constants) {
	data := common.StructToBytes(c)
	r.queue.WriteBuffer(r.constantsBuf.GPU, 0, data)
}

// WriteWire uploads debug-wire vertex bytes into this slot's region of
// the wire vertex buffer.
func (r *Ring) WriteWire(slot *Slot, data []byte) {
	if r.wireBuf == nil || len(data) == 0 {
		return
	}
	r.queue.WriteBuffer(r.wireBuf.GPU, slot.WireOffset, data)
}

// ConstantsBuffer returns the persistent constants upload buffer.
func (r *Ring) ConstantsBuffer() *gpu.Buffer { return r.constantsBuf }

// WireBuffer returns the persistent debug-wire vertex upload buffer.
func (r *Ring) WireBuffer() *gpu.Buffer { return r.wireBuf }

// End submits the slot's recorded command buffer and marks the slot
// in-flight; Begin on the same index blocks (via device.Poll) until the
// GPU has drained it.
func (r *Ring) End(slot *Slot) error {
	cmd, err := slot.Encoder.Finish(nil)
	if err != nil {
		slot.Encoder.Release()
		return fmt.Errorf("frame: finish command encoder: %w", err)
	}

	r.mu.Lock()
	r.inFlight[slot.Index] = true
	r.mu.Unlock()

	r.queue.Submit(cmd)
	cmd.Release()
	slot.Encoder.Release()

	index := slot.Index
	r.queue.OnSubmittedWorkDone(func(wgpu.QueueWorkDoneStatus) {
		r.mu.Lock()
		r.inFlight[index] = false
		r.mu.Unlock()
	})

	return nil
}
