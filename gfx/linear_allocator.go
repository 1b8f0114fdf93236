package gfx

import (
	"fmt"
	"unsafe"

	"github.com/vkngwrapper/gfxcore/memutils"
)

// DefaultLinearAllocatorAlignment satisfies the placement rules for constant buffers, which are
// the strictest of the views linear allocations are bound through
const DefaultLinearAllocatorAlignment int = 256

// DynAlloc is a piece of scratch memory that is valid until the frame it was allocated in
// retires
type DynAlloc struct {
	// Buffer is the page the memory was carved from
	Buffer Resource
	Offset int
	Size   int
	// Data is the CPU address of the memory, or nil for GPU-exclusive allocations
	Data       unsafe.Pointer
	GPUAddress GPUAddress
}

// Bytes returns the CPU-writable memory of the allocation, or nil for GPU-exclusive allocations
func (a DynAlloc) Bytes() []byte {
	if a.Data == nil {
		return nil
	}
	return unsafe.Slice((*byte)(a.Data), a.Size)
}

// LinearAllocator suballocates scratch memory by bumping an offset through pages fetched from
// a LinearAllocatorPageManager. Each recording context owns its own allocators, so they are not
// synchronized.
type LinearAllocator struct {
	manager *LinearAllocatorPageManager

	current *LinearAllocatorPage
	offset  int
	// allocations and allocatedBytes count what was carved out of the current page
	allocations    int
	allocatedBytes int

	// marginOffsets lists the debug margins written into the current page
	marginOffsets []int
}

func NewLinearAllocator(manager *LinearAllocatorPageManager) *LinearAllocator {
	return &LinearAllocator{manager: manager}
}

func (a *LinearAllocator) AllocatorType() LinearAllocatorType { return a.manager.AllocatorType() }

// Allocate returns size bytes aligned to alignment. Requests larger than the default page size
// get a page of their own, which is handed back immediately so the current page stays in use.
func (a *LinearAllocator) Allocate(size int, alignment int) (DynAlloc, error) {
	if size < 1 {
		panic(fmt.Sprintf("attempted to make a linear allocation of %d bytes", size))
	}
	if err := memutils.CheckPow2(alignment, "linear allocation alignment"); err != nil {
		panic(err)
	}

	margin := 0
	if a.manager.AllocatorType() == LinearAllocatorCPUWritable {
		margin = memutils.DebugMargin
	}

	alignedSize := memutils.AlignUp(size, alignment)
	if alignedSize+margin > a.manager.DefaultPageSize() {
		return a.allocateLarge(alignedSize)
	}

	a.offset = memutils.AlignUp(a.offset, alignment)
	if a.current != nil && a.offset+alignedSize+margin > a.current.capacity {
		a.retireCurrentPage()
	}

	if a.current == nil {
		page, err := a.manager.AllocateNewPage(a.manager.DefaultPageSize())
		if err != nil {
			return DynAlloc{}, err
		}
		a.current = page
		a.offset = 0
	}

	alloc := a.carve(a.current, a.offset, size)
	a.offset += alignedSize
	a.allocations++
	a.allocatedBytes += alignedSize

	if margin > 0 {
		memutils.WriteMagicValue(a.current.data, a.offset)
		a.marginOffsets = append(a.marginOffsets, a.offset)
		a.offset += margin
	}

	return alloc, nil
}

func (a *LinearAllocator) allocateLarge(alignedSize int) (DynAlloc, error) {
	page, err := a.manager.AllocateNewPage(alignedSize)
	if err != nil {
		return DynAlloc{}, err
	}
	a.manager.recordUsage(page, 1, alignedSize)
	a.manager.ReleasePage(page)

	return a.carve(page, 0, alignedSize), nil
}

func (a *LinearAllocator) carve(page *LinearAllocatorPage, offset int, size int) DynAlloc {
	alloc := DynAlloc{
		Buffer:     page.buffer,
		Offset:     offset,
		Size:       size,
		GPUAddress: page.address + GPUAddress(offset),
	}
	if page.data != nil {
		alloc.Data = unsafe.Add(page.data, offset)
	}
	return alloc
}

func (a *LinearAllocator) retireCurrentPage() {
	for _, marginOffset := range a.marginOffsets {
		if !memutils.ValidateMagicValue(a.current.data, marginOffset) {
			panic(fmt.Sprintf("linear allocator page %d was corrupted: a write overran the allocation ending at offset %d", a.current.id, marginOffset))
		}
	}
	a.marginOffsets = a.marginOffsets[:0]

	a.manager.recordUsage(a.current, a.allocations, a.allocatedBytes)
	a.manager.ReleasePage(a.current)
	a.current = nil
	a.offset = 0
	a.allocations = 0
	a.allocatedBytes = 0
}

// Retire hands the current page back to the manager. It is called when the owning context
// finishes recording.
func (a *LinearAllocator) Retire() {
	if a.current != nil {
		a.retireCurrentPage()
	}
}
