package descriptors

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// ViewKind distinguishes the four resource kinds a slot can hold.
type ViewKind int

const (
	ViewBuffer ViewKind = iota
	ViewTexture
	ViewSampler
	ViewStorageTexture
)

// entry is one registered slot's GPU-side view plus enough metadata to
// regenerate a bind group layout entry for it.
type entry struct {
	kind    ViewKind
	buffer  *wgpu.Buffer
	texture *wgpu.TextureView
	sampler *wgpu.Sampler

	visibility   wgpu.ShaderStage
	bufferType   wgpu.BufferBindingType
	textureKind  wgpu.TextureSampleType
	storageRead  bool // UAV-style read_write storage buffer vs. read-only SRV-style
	minBindingSz uint64

	storageFormat wgpu.TextureFormat
	storageAccess wgpu.StorageTextureAccess
}

// Table is the bindless descriptor table: every persistent GPU resource
// the renderer touches lives at one Slot, and Build() produces the single
// bind group every pipeline in gpu/pipeline binds at group index 0.
type Table struct {
	mu      sync.Mutex
	device  *wgpu.Device
	entries map[Slot]*entry

	layout *wgpu.BindGroupLayout
	group  *wgpu.BindGroup
	dirty  bool
}

// New creates an empty Table bound to a device. Register slots with
// BindBuffer/BindTexture/BindSampler, then call Build once all persistent
// resources exist (after asset load and swap-chain configuration).
func New(device *wgpu.Device) *Table {
	return &Table{device: device, entries: make(map[Slot]*entry)}
}

// BindBuffer registers a storage/uniform buffer at slot, visible to the
// given shader stages. storageReadWrite selects a UAV-style read_write
// storage binding (counters, append lists, visibility/color targets
// backed by buffers) versus a read-only storage binding (vertex/index
// pools, instance/mesh/cluster/material pools).
func (t *Table) BindBuffer(slot Slot, buf *wgpu.Buffer, visibility wgpu.ShaderStage, bufType wgpu.BufferBindingType, storageReadWrite bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[slot] = &entry{
		kind:        ViewBuffer,
		buffer:      buf,
		visibility:  visibility,
		bufferType:  bufType,
		storageRead: storageReadWrite,
	}
	t.dirty = true
}

// BindTexture registers a texture view (e.g. the visibility buffer, the
// color target, the depth buffer, the overlay font atlas) at slot.
func (t *Table) BindTexture(slot Slot, view *wgpu.TextureView, visibility wgpu.ShaderStage, sampleType wgpu.TextureSampleType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[slot] = &entry{
		kind:        ViewTexture,
		texture:     view,
		visibility:  visibility,
		textureKind: sampleType,
	}
	t.dirty = true
}

// BindStorageTexture registers a texture view as a writable storage
// texture (the color buffer, written directly by the material-resolve
// compute pass instead of through a render-pass color attachment).
func (t *Table) BindStorageTexture(slot Slot, view *wgpu.TextureView, visibility wgpu.ShaderStage, format wgpu.TextureFormat, access wgpu.StorageTextureAccess) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[slot] = &entry{
		kind:          ViewStorageTexture,
		texture:       view,
		visibility:    visibility,
		storageFormat: format,
		storageAccess: access,
	}
	t.dirty = true
}

// BindSampler registers a sampler at slot (the overlay font atlas sampler).
func (t *Table) BindSampler(slot Slot, s *wgpu.Sampler, visibility wgpu.ShaderStage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[slot] = &entry{kind: ViewSampler, sampler: s, visibility: visibility}
	t.dirty = true
}

// Buffer returns the buffer registered at slot, or nil.
func (t *Table) Buffer(slot Slot) *wgpu.Buffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.entries[slot]; e != nil {
		return e.buffer
	}
	return nil
}

// Build (re)creates the bind group layout and bind group from every
// currently registered slot. It is only ever written at initialization
// time plus resource recreation (swap-chain resize); every pass reads
// the same bind group thereafter (spec §5 "descriptor heap... written
// only at initialization").
func (t *Table) Build(label string) (*wgpu.BindGroupLayout, *wgpu.BindGroup, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dirty && t.group != nil {
		return t.layout, t.group, nil
	}

	slots := make([]Slot, 0, len(t.entries))
	for s := range t.entries {
		slots = append(slots, s)
	}
	sortSlots(slots)

	layoutEntries := make([]wgpu.BindGroupLayoutEntry, 0, len(slots))
	groupEntries := make([]wgpu.BindGroupEntry, 0, len(slots))

	for _, s := range slots {
		e := t.entries[s]
		binding := uint32(s)
		switch e.kind {
		case ViewBuffer:
			layoutEntries = append(layoutEntries, wgpu.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: e.visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:             e.bufferType,
					MinBindingSize:   e.minBindingSz,
					HasDynamicOffset: false,
				},
			})
			groupEntries = append(groupEntries, wgpu.BindGroupEntry{
				Binding: binding,
				Buffer:  e.buffer,
				Size:    wgpu.WholeSize,
			})
		case ViewTexture:
			layoutEntries = append(layoutEntries, wgpu.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: e.visibility,
				Texture: wgpu.TextureBindingLayout{
					SampleType: e.textureKind,
				},
			})
			groupEntries = append(groupEntries, wgpu.BindGroupEntry{
				Binding:     binding,
				TextureView: e.texture,
			})
		case ViewStorageTexture:
			layoutEntries = append(layoutEntries, wgpu.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: e.visibility,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        e.storageAccess,
					Format:        e.storageFormat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			})
			groupEntries = append(groupEntries, wgpu.BindGroupEntry{
				Binding:     binding,
				TextureView: e.texture,
			})
		case ViewSampler:
			layoutEntries = append(layoutEntries, wgpu.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: e.visibility,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			})
			groupEntries = append(groupEntries, wgpu.BindGroupEntry{
				Binding: binding,
				Sampler: e.sampler,
			})
		}
	}

	if t.layout != nil {
		t.layout.Release()
	}
	if t.group != nil {
		t.group.Release()
	}

	layout, err := t.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + "_layout",
		Entries: layoutEntries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("descriptors: create bind group layout: %w", err)
	}

	group, err := t.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: groupEntries,
	})
	if err != nil {
		layout.Release()
		return nil, nil, fmt.Errorf("descriptors: create bind group: %w", err)
	}

	t.layout = layout
	t.group = group
	t.dirty = false
	return layout, group, nil
}

// Layout returns the most recently built bind group layout, or nil.
func (t *Table) Layout() *wgpu.BindGroupLayout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.layout
}

// Group returns the most recently built bind group, or nil.
func (t *Table) Group() *wgpu.BindGroup {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.group
}

// Release releases the bind group and layout (not the underlying
// resources, which the resource factory owns).
func (t *Table) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.group != nil {
		t.group.Release()
		t.group = nil
	}
	if t.layout != nil {
		t.layout.Release()
		t.layout = nil
	}
}

func sortSlots(s []Slot) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
