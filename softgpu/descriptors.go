package softgpu

import (
	"fmt"

	"github.com/vkngwrapper/gfxcore/gfx"
)

const (
	// DescriptorSize is the increment size of every descriptor heap kind
	DescriptorSize uint32 = 32
	// heapRegionBits sizes the address range reserved for each heap
	heapRegionBits = 24
	heapRegionSize = uintptr(1) << heapRegionBits
)

// DescriptorKind identifies what a descriptor record describes
type DescriptorKind int32

const (
	DescriptorEmpty DescriptorKind = iota
	DescriptorConstantBufferView
	DescriptorSampler
)

// Descriptor is the content of one descriptor slot
type Descriptor struct {
	Kind     DescriptorKind
	Location gfx.GPUAddress
	Size     int
	Sampler  gfx.SamplerDesc
}

// DescriptorHeap is an array of descriptor records. Handles into the heap are synthetic
// addresses inside a region reserved for the heap.
type DescriptorHeap struct {
	device  *Device
	desc    gfx.DescriptorHeapDesc
	base    uintptr
	records []Descriptor

	destroyed bool
}

var _ gfx.DescriptorHeap = &DescriptorHeap{}

func (h *DescriptorHeap) Desc() gfx.DescriptorHeapDesc { return h.desc }

func (h *DescriptorHeap) CPUStart() gfx.CPUDescriptorHandle {
	return gfx.CPUDescriptorHandle{Ptr: h.base}
}

func (h *DescriptorHeap) GPUStart() gfx.GPUDescriptorHandle {
	if !h.desc.ShaderVisible {
		return gfx.GPUDescriptorHandle{}
	}
	return gfx.GPUDescriptorHandle{Ptr: uint64(h.base)}
}

// Records returns the descriptor slots of the heap
func (h *DescriptorHeap) Records() []Descriptor { return h.records }

func (h *DescriptorHeap) Destroy() {
	h.device.destroyHeap(h)
}

func (h *DescriptorHeap) index(ptr uintptr) int {
	offset := ptr - h.base
	if offset%uintptr(DescriptorSize) != 0 {
		panic(fmt.Sprintf("descriptor handle %#x is not aligned to a descriptor slot", ptr))
	}

	index := int(offset / uintptr(DescriptorSize))
	if index >= len(h.records) {
		panic(fmt.Sprintf("descriptor handle %#x is past the end of a heap of %d descriptors", ptr, len(h.records)))
	}
	return index
}
