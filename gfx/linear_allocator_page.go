package gfx

import (
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// LinearAllocatorType selects which memory a linear allocator's pages live in
type LinearAllocatorType int32

const (
	// LinearAllocatorGPUExclusive pages live in default-heap memory and are written by shaders
	LinearAllocatorGPUExclusive LinearAllocatorType = iota
	// LinearAllocatorCPUWritable pages live in upload-heap memory and are persistently mapped
	LinearAllocatorCPUWritable

	linearAllocatorTypeCount = 2
)

var linearAllocatorTypeNames = map[LinearAllocatorType]string{
	LinearAllocatorGPUExclusive: "LinearAllocatorGPUExclusive",
	LinearAllocatorCPUWritable:  "LinearAllocatorCPUWritable",
}

func (t LinearAllocatorType) String() string { return linearAllocatorTypeNames[t] }

// blockUsage is what the last holder of a page or heap carved out of it
type blockUsage struct {
	allocations int
	bytes       int
}

// LinearAllocatorPage is one buffer that linear allocators carve scratch memory out of. Pages
// belong to the LinearAllocatorPageManager that created them.
type LinearAllocatorPage struct {
	id       int
	buffer   Resource
	capacity int
	data     unsafe.Pointer
	address  GPUAddress

	// guarded by the page manager
	usage blockUsage
}

func (p *LinearAllocatorPage) ID() int                { return p.id }
func (p *LinearAllocatorPage) Buffer() Resource       { return p.buffer }
func (p *LinearAllocatorPage) Capacity() int          { return p.capacity }
func (p *LinearAllocatorPage) GPUAddress() GPUAddress { return p.address }

// Data returns the persistent CPU mapping of the page, or nil for GPU-exclusive pages
func (p *LinearAllocatorPage) Data() unsafe.Pointer { return p.data }

func (p *LinearAllocatorPage) destroy() {
	if p.data != nil {
		p.buffer.Unmap()
		p.data = nil
	}
	p.buffer.Destroy()
	p.buffer = nil
}

func (p *LinearAllocatorPage) printJson(json jwriter.ObjectState, inFlight bool) {
	json.Name("Id").Int(p.id)
	json.Name("Capacity").Int(p.capacity)
	json.Name("GPUAddress").Float64(float64(p.address))
	json.Name("Mapped").Bool(p.data != nil)
	json.Name("InFlight").Bool(inFlight)
	json.Name("Allocations").Int(p.usage.allocations)
	json.Name("AllocatedBytes").Int(p.usage.bytes)
}
