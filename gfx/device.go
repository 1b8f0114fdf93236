package gfx

import (
	"unsafe"
)

//go:generate mockgen -source device.go -destination ./mocks/device.go

// GPUAddress is a virtual address in GPU-visible memory
type GPUAddress uint64

// HeapKind selects which memory pool a buffer is placed in
type HeapKind int32

const (
	// HeapDefault memory is only accessible by the GPU
	HeapDefault HeapKind = iota
	// HeapUpload memory is CPU-writable and GPU-readable
	HeapUpload
	// HeapReadback memory is GPU-writable and CPU-readable
	HeapReadback
)

var heapKindNames = map[HeapKind]string{
	HeapDefault:  "HeapDefault",
	HeapUpload:   "HeapUpload",
	HeapReadback: "HeapReadback",
}

func (k HeapKind) String() string { return heapKindNames[k] }

// BufferUsage declares the ways a buffer will be bound
type BufferUsage int32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageConstant
	BufferUsageShaderResource
	BufferUsageUnorderedAccess
	BufferUsageTransferSrc
	BufferUsageTransferDst
)

// BufferDesc describes a buffer for Device.CreateBuffer
type BufferDesc struct {
	Name  string
	Size  int
	Heap  HeapKind
	Usage BufferUsage
}

// TextureUsage declares the ways a texture will be bound
type TextureUsage int32

const (
	TextureUsageShaderResource TextureUsage = 1 << iota
	TextureUsageUnorderedAccess
	TextureUsageRenderTarget
	TextureUsageDepthStencil
)

// TextureDesc describes a 2D texture for Device.CreateTexture
type TextureDesc struct {
	Name      string
	Width     int
	Height    int
	MipLevels int
	Format    Format
	Usage     TextureUsage
}

// Format is a texel or index format
type Format int32

const (
	FormatUnknown Format = iota
	FormatR8G8B8A8Unorm
	FormatB8G8R8A8Unorm
	FormatR16G16B16A16Float
	FormatR32Float
	FormatD32Float
	FormatD24UnormS8Uint
	FormatR16Uint
	FormatR32Uint
)

// Resource is a GPU buffer or texture created by a Device
type Resource interface {
	Kind() ResourceKind
	// Size returns the byte size of a buffer, or the byte footprint of a texture
	Size() int
	// GPUAddress returns the base virtual address of a buffer. Textures return 0.
	GPUAddress() GPUAddress
	// Map returns a persistent CPU pointer to upload or readback memory
	Map() (unsafe.Pointer, error)
	Unmap()
	Destroy()
}

// DescriptorHeapKind identifies a family of descriptors that share a heap
type DescriptorHeapKind int32

const (
	// DescriptorHeapView holds constant buffer, shader resource, and unordered access views
	DescriptorHeapView DescriptorHeapKind = iota
	DescriptorHeapSampler
	DescriptorHeapRenderTarget
	DescriptorHeapDepthStencil

	DescriptorHeapKindCount = 4
)

var descriptorHeapKindNames = map[DescriptorHeapKind]string{
	DescriptorHeapView:         "DescriptorHeapView",
	DescriptorHeapSampler:      "DescriptorHeapSampler",
	DescriptorHeapRenderTarget: "DescriptorHeapRenderTarget",
	DescriptorHeapDepthStencil: "DescriptorHeapDepthStencil",
}

func (k DescriptorHeapKind) String() string { return descriptorHeapKindNames[k] }

// CPUDescriptorHandle addresses a descriptor slot from the CPU side
type CPUDescriptorHandle struct {
	Ptr uintptr
}

func (h CPUDescriptorHandle) IsNull() bool { return h.Ptr == 0 }

// Offset advances the handle by count descriptors of incrementSize bytes
func (h CPUDescriptorHandle) Offset(count int, incrementSize uint32) CPUDescriptorHandle {
	return CPUDescriptorHandle{Ptr: h.Ptr + uintptr(count)*uintptr(incrementSize)}
}

// GPUDescriptorHandle addresses a descriptor slot in a shader-visible heap
type GPUDescriptorHandle struct {
	Ptr uint64
}

func (h GPUDescriptorHandle) IsNull() bool { return h.Ptr == 0 }

// Offset advances the handle by count descriptors of incrementSize bytes
func (h GPUDescriptorHandle) Offset(count int, incrementSize uint32) GPUDescriptorHandle {
	return GPUDescriptorHandle{Ptr: h.Ptr + uint64(count)*uint64(incrementSize)}
}

// DescriptorHeapDesc describes a heap for Device.CreateDescriptorHeap
type DescriptorHeapDesc struct {
	Kind          DescriptorHeapKind
	Count         int
	ShaderVisible bool
}

// DescriptorHeap is a fixed-size array of descriptors
type DescriptorHeap interface {
	Desc() DescriptorHeapDesc
	CPUStart() CPUDescriptorHandle
	// GPUStart returns a null handle for heaps that are not shader visible
	GPUStart() GPUDescriptorHandle
	Destroy()
}

// TransitionBarrier moves a resource from one hardware state to another
type TransitionBarrier struct {
	Resource Resource
	Before   ResourceState
	After    ResourceState
}

// VertexBufferView binds a range of GPU memory as a vertex stream
type VertexBufferView struct {
	Location GPUAddress
	Size     int
	Stride   int
}

// IndexBufferView binds a range of GPU memory as an index stream
type IndexBufferView struct {
	Location GPUAddress
	Size     int
	Format   Format
}

// Filter selects how a sampler reads between texels
type Filter int32

const (
	FilterNearest Filter = iota
	FilterLinear
)

// AddressMode selects how a sampler reads outside [0, 1]
type AddressMode int32

const (
	AddressModeWrap AddressMode = iota
	AddressModeClamp
	AddressModeMirror
)

// SamplerDesc describes a sampler for Device.CreateSampler
type SamplerDesc struct {
	Filter      Filter
	AddressMode AddressMode
	MaxLOD      float32
}

// Device is the native API wrapper the lifecycle core is built on
type Device interface {
	CreateBuffer(desc BufferDesc) (Resource, error)
	CreateTexture(desc TextureDesc) (Resource, error)
	CreateDescriptorHeap(desc DescriptorHeapDesc) (DescriptorHeap, error)
	// InitRootSignature gives the device a chance to build its native layout object and
	// attach it to the signature
	InitRootSignature(signature *RootSignature) error
	DescriptorIncrementSize(kind DescriptorHeapKind) uint32

	// CreateConstantBufferView writes a view of size bytes at location into a CPU descriptor
	CreateConstantBufferView(location GPUAddress, size int, dest CPUDescriptorHandle)
	// CreateSampler writes a sampler into a CPU descriptor
	CreateSampler(desc SamplerDesc, dest CPUDescriptorHandle)

	// CopyDescriptors copies descriptors from the source ranges to the destination ranges in a
	// single native call. The total descriptor count of both range lists must match.
	CopyDescriptors(destStarts []CPUDescriptorHandle, destSizes []uint32, srcStarts []CPUDescriptorHandle, srcSizes []uint32, kind DescriptorHeapKind)
	CopyDescriptorsSimple(count int, dest CPUDescriptorHandle, src CPUDescriptorHandle, kind DescriptorHeapKind)

	CreateCommandList() (CommandList, error)
	ExecuteCommandLists(lists ...CommandList) error
}

// CommandList records GPU commands
type CommandList interface {
	Reset() error
	Close() error

	ResourceBarrier(barriers []TransitionBarrier)
	SetDescriptorHeaps(heaps []DescriptorHeap)

	SetGraphicsRootSignature(signature *RootSignature)
	SetComputeRootSignature(signature *RootSignature)
	SetGraphicsRootDescriptorTable(rootIndex int, baseDescriptor GPUDescriptorHandle)
	SetComputeRootDescriptorTable(rootIndex int, baseDescriptor GPUDescriptorHandle)
	SetGraphicsRootConstantBufferView(rootIndex int, location GPUAddress)
	SetComputeRootConstantBufferView(rootIndex int, location GPUAddress)

	IASetVertexBuffers(startSlot int, views []VertexBufferView)
	IASetIndexBuffer(view IndexBufferView)

	DrawInstanced(vertexCountPerInstance, instanceCount, startVertex, startInstance int)
	DrawIndexedInstanced(indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance int)
	Dispatch(groupCountX, groupCountY, groupCountZ int)
}
