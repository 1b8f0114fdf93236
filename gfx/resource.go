package gfx

import (
	"strings"

	"github.com/vkngwrapper/gfxcore/handle"
)

// ResourceState is a bitmask of the hardware usage modes a resource is currently in
type ResourceState uint32

const (
	ResourceStateCommon                  ResourceState = 0
	ResourceStateVertexAndConstantBuffer ResourceState = 1 << 0
	ResourceStateIndexBuffer             ResourceState = 1 << 1
	ResourceStateRenderTarget            ResourceState = 1 << 2
	ResourceStateUnorderedAccess         ResourceState = 1 << 3
	ResourceStateDepthWrite              ResourceState = 1 << 4
	ResourceStateDepthRead               ResourceState = 1 << 5
	ResourceStateNonPixelShaderResource  ResourceState = 1 << 6
	ResourceStatePixelShaderResource     ResourceState = 1 << 7
	ResourceStateStreamOut               ResourceState = 1 << 8
	ResourceStateIndirectArgument        ResourceState = 1 << 9
	ResourceStateCopyDest                ResourceState = 1 << 10
	ResourceStateCopySource              ResourceState = 1 << 11
	ResourceStateResolveDest             ResourceState = 1 << 12
	ResourceStateResolveSource           ResourceState = 1 << 13

	ResourceStateGenericRead = ResourceStateVertexAndConstantBuffer |
		ResourceStateIndexBuffer |
		ResourceStateNonPixelShaderResource |
		ResourceStatePixelShaderResource |
		ResourceStateIndirectArgument |
		ResourceStateCopySource
	ResourceStatePresent = ResourceStateCommon

	// ResourceStatePending marks a resource that has not been observed yet in the current
	// recording episode. It is never sent to the device.
	ResourceStatePending ResourceState = ^ResourceState(0)
)

var resourceStateNames = []struct {
	state ResourceState
	name  string
}{
	{ResourceStateVertexAndConstantBuffer, "VertexAndConstantBuffer"},
	{ResourceStateIndexBuffer, "IndexBuffer"},
	{ResourceStateRenderTarget, "RenderTarget"},
	{ResourceStateUnorderedAccess, "UnorderedAccess"},
	{ResourceStateDepthWrite, "DepthWrite"},
	{ResourceStateDepthRead, "DepthRead"},
	{ResourceStateNonPixelShaderResource, "NonPixelShaderResource"},
	{ResourceStatePixelShaderResource, "PixelShaderResource"},
	{ResourceStateStreamOut, "StreamOut"},
	{ResourceStateIndirectArgument, "IndirectArgument"},
	{ResourceStateCopyDest, "CopyDest"},
	{ResourceStateCopySource, "CopySource"},
	{ResourceStateResolveDest, "ResolveDest"},
	{ResourceStateResolveSource, "ResolveSource"},
}

func (s ResourceState) String() string {
	switch s {
	case ResourceStateCommon:
		return "Common"
	case ResourceStatePending:
		return "Pending"
	case ResourceStateGenericRead:
		return "GenericRead"
	}

	var parts []string
	for _, entry := range resourceStateNames {
		if s&entry.state != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}

// ResourceKind classifies resources for state tracking purposes
type ResourceKind int32

const (
	ResourceKindBuffer ResourceKind = iota
	ResourceKindUploadBuffer
	ResourceKindReadbackBuffer
	ResourceKindTexture
	ResourceKindRenderTarget
	ResourceKindDepthStencil
)

var resourceKindNames = map[ResourceKind]string{
	ResourceKindBuffer:         "Buffer",
	ResourceKindUploadBuffer:   "UploadBuffer",
	ResourceKindReadbackBuffer: "ReadbackBuffer",
	ResourceKindTexture:        "Texture",
	ResourceKindRenderTarget:   "RenderTarget",
	ResourceKindDepthStencil:   "DepthStencil",
}

func (k ResourceKind) String() string { return resourceKindNames[k] }

// InitialResourceState is the state a resource of the provided kind is created in
func InitialResourceState(kind ResourceKind) ResourceState {
	switch kind {
	case ResourceKindUploadBuffer:
		return ResourceStateGenericRead
	case ResourceKindReadbackBuffer:
		return ResourceStateCopyDest
	case ResourceKindRenderTarget:
		return ResourceStateRenderTarget
	case ResourceKindDepthStencil:
		return ResourceStateDepthWrite
	default:
		return ResourceStateCommon
	}
}

// ResourceKindForBuffer derives the tracking kind from a buffer description
func ResourceKindForBuffer(desc BufferDesc) ResourceKind {
	switch desc.Heap {
	case HeapUpload:
		return ResourceKindUploadBuffer
	case HeapReadback:
		return ResourceKindReadbackBuffer
	default:
		return ResourceKindBuffer
	}
}

// ResourceKindForTexture derives the tracking kind from a texture description
func ResourceKindForTexture(desc TextureDesc) ResourceKind {
	switch {
	case desc.Usage&TextureUsageDepthStencil != 0:
		return ResourceKindDepthStencil
	case desc.Usage&TextureUsageRenderTarget != 0:
		return ResourceKindRenderTarget
	default:
		return ResourceKindTexture
	}
}

// GPUResource pairs a device resource with its slot in the ResourceStatesPool. It is created
// and destroyed through Core, which keeps the two lifetimes in step.
type GPUResource struct {
	name        string
	native      Resource
	stateHandle handle.Handle
}

func (r *GPUResource) Name() string               { return r.name }
func (r *GPUResource) Native() Resource           { return r.native }
func (r *GPUResource) Kind() ResourceKind         { return r.native.Kind() }
func (r *GPUResource) GPUAddress() GPUAddress     { return r.native.GPUAddress() }
func (r *GPUResource) StateHandle() handle.Handle { return r.stateHandle }
