package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nivenh/meshlet/gpu/descriptors"
)

// BufferFlags are bit flags describing how a declaratively-created buffer
// should be viewed and where it should live. Ported from
// original_source/Render.cpp's BufferDesc flag bits (BUFFER_FLAG_RAW,
// BUFFER_FLAG_SRV, BUFFER_FLAG_UAV) plus the heap-type distinctions the
// original expressed via D3D12_HEAP_TYPE.
type BufferFlags uint32

const (
	BufferFlagNone BufferFlags = 0
	// BufferFlagSRV requests a read-only structured-buffer view.
	BufferFlagSRV BufferFlags = 1 << iota
	// BufferFlagUAV requests a read_write storage-buffer view.
	BufferFlagUAV
	// BufferFlagRaw coerces the view to a byte-addressable (raw/u32) view
	// instead of a typed structured view.
	BufferFlagRaw
	// BufferFlagAccelStruct marks the buffer as backing an acceleration
	// structure (BLAS/TLAS scratch or result); see accel package.
	BufferFlagAccelStruct
	// BufferFlagUpload places the buffer in a CPU-write-mapped heap
	// (persistently mapped constants/readback-adjacent staging buffers).
	BufferFlagUpload
	// BufferFlagReadback places the buffer in a GPU-write, CPU-read heap.
	BufferFlagReadback
	// BufferFlagVertex marks the buffer as a vertex-pulling-free render
	// pass input (the overlay's debug-wire and glyph-quad streams; every
	// other vertex stream in this renderer is read via storage-buffer
	// vertex pulling instead, spec §0's vertex-pulling substitution for
	// mesh-shader input assembly).
	BufferFlagVertex
)

// BufferDescriptor is the resource factory's declarative, value-typed
// buffer descriptor (spec §4.2, §9 "builder-pattern descriptors" — a
// plain record with defaulted fields, constructed by the caller and
// passed by value, with no hidden state). Each With* method returns a
// modified copy, mirroring original_source's fluent BufferDesc without
// its pointer-mutating style.
type BufferDescriptor struct {
	Count  uint64
	Stride uint64
	Flags  BufferFlags

	// Slot is the bindless descriptor table slot the created view(s) are
	// registered at when HasSlot is set.
	Slot descriptors.Slot
	// HasSlot must be set alongside Slot; zero-valued Slot (slot 0) is a
	// legitimate slot number so a separate presence flag is needed.
	HasSlot bool

	// Visibility is the shader-stage mask the registered view is exposed
	// to, forwarded to descriptors.Table.BindBuffer.
	Visibility wgpu.ShaderStage

	Name string
}

func (d BufferDescriptor) WithSRV() BufferDescriptor {
	d.Flags |= BufferFlagSRV
	return d
}

func (d BufferDescriptor) WithUAV() BufferDescriptor {
	d.Flags |= BufferFlagUAV
	return d
}

func (d BufferDescriptor) WithRaw() BufferDescriptor {
	d.Flags |= BufferFlagRaw
	return d
}

func (d BufferDescriptor) WithAccelStruct() BufferDescriptor {
	d.Flags |= BufferFlagAccelStruct
	return d
}

func (d BufferDescriptor) WithUpload() BufferDescriptor {
	d.Flags |= BufferFlagUpload
	return d
}

func (d BufferDescriptor) WithReadback() BufferDescriptor {
	d.Flags |= BufferFlagReadback
	return d
}

func (d BufferDescriptor) WithVertex() BufferDescriptor {
	d.Flags |= BufferFlagVertex
	return d
}

func (d BufferDescriptor) WithSlot(slot descriptors.Slot, visibility wgpu.ShaderStage) BufferDescriptor {
	d.Slot = slot
	d.HasSlot = true
	d.Visibility = visibility
	return d
}

func (d BufferDescriptor) WithName(name string) BufferDescriptor {
	d.Name = name
	return d
}

// ByteSize returns Count*Stride, the allocation size in bytes.
func (d BufferDescriptor) ByteSize() uint64 {
	return d.Count * d.Stride
}

// Buffer is the resource factory's handle to a created GPU buffer plus
// the descriptor that produced it (kept for debugging/readback sizing).
type Buffer struct {
	GPU  *wgpu.Buffer
	Desc BufferDescriptor
}

// Factory creates typed GPU buffers from a BufferDescriptor and, when the
// descriptor requests it, writes their SRV/UAV views into the renderer's
// bindless table (spec §4.2).
type Factory struct {
	device *wgpu.Device
	table  *descriptors.Table
}

// NewFactory creates a resource factory bound to a device and the
// renderer's bindless descriptor table.
func NewFactory(device *wgpu.Device, table *descriptors.Table) *Factory {
	return &Factory{device: device, table: table}
}

// CreateBuffer allocates a GPU buffer per desc and, if desc.HasSlot,
// registers it in the bindless table. Raw buffers are created with a
// byte-addressable usage set; "raw" in spec terms means 32-bit typeless
// byte-addressable, which for a storage buffer simply means the WGSL
// side declares an array<u32> rather than an array<T> — the buffer
// allocation itself is identical.
func (f *Factory) CreateBuffer(desc BufferDescriptor) (*Buffer, error) {
	if desc.ByteSize() == 0 {
		return nil, fmt.Errorf("resources: %q has zero size (count=%d stride=%d)", desc.Name, desc.Count, desc.Stride)
	}

	usage := wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	switch {
	case desc.Flags&BufferFlagUpload != 0:
		usage |= wgpu.BufferUsageMapWrite
	case desc.Flags&BufferFlagReadback != 0:
		usage |= wgpu.BufferUsageMapRead
	}
	if desc.Flags&BufferFlagSRV != 0 || desc.Flags&BufferFlagUAV != 0 {
		usage |= wgpu.BufferUsageStorage
	}
	if desc.Flags&BufferFlagVertex != 0 {
		usage |= wgpu.BufferUsageVertex
	}
	if desc.Flags&BufferFlagAccelStruct != 0 {
		// wgpu-native has no acceleration-structure usage bit; the buffer
		// is a plain storage buffer that accel/ interprets as BLAS/TLAS
		// node data (see SPEC_FULL.md §0 — ray tracing is compiled but
		// permanently gated off on this backend).
		usage |= wgpu.BufferUsageStorage
	}

	buf, err := f.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Name,
		Size:             desc.ByteSize(),
		Usage:            usage,
		MappedAtCreation: desc.Flags&BufferFlagUpload != 0,
	})
	if err != nil {
		return nil, fmt.Errorf("resources: create buffer %q: %w", desc.Name, err)
	}

	if desc.HasSlot && f.table != nil {
		bufType := wgpu.BufferBindingTypeReadOnlyStorage
		if desc.Flags&BufferFlagUAV != 0 {
			bufType = wgpu.BufferBindingTypeStorage
		}
		f.table.BindBuffer(desc.Slot, buf, desc.Visibility, bufType, desc.Flags&BufferFlagUAV != 0)
	}

	return &Buffer{GPU: buf, Desc: desc}, nil
}
