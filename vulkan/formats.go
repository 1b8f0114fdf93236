package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/gfxcore/gfx"
)

var formats = map[gfx.Format]core1_0.Format{
	gfx.FormatR8G8B8A8Unorm:     core1_0.FormatR8G8B8A8UnsignedNormalized,
	gfx.FormatB8G8R8A8Unorm:     core1_0.FormatB8G8R8A8UnsignedNormalized,
	gfx.FormatR16G16B16A16Float: core1_0.FormatR16G16B16A16SignedFloat,
	gfx.FormatR32Float:          core1_0.FormatR32SignedFloat,
	gfx.FormatD32Float:          core1_0.FormatD32SignedFloat,
	gfx.FormatD24UnormS8Uint:    core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
	gfx.FormatR16Uint:           core1_0.FormatR16UnsignedInt,
	gfx.FormatR32Uint:           core1_0.FormatR32UnsignedInt,
}

func aspectOf(format gfx.Format) core1_0.ImageAspectFlags {
	switch format {
	case gfx.FormatD32Float:
		return core1_0.ImageAspectDepth
	case gfx.FormatD24UnormS8Uint:
		return core1_0.ImageAspectDepth | core1_0.ImageAspectStencil
	default:
		return core1_0.ImageAspectColor
	}
}

func indexTypeOf(format gfx.Format) (core1_0.IndexType, bool) {
	switch format {
	case gfx.FormatR16Uint:
		return core1_0.IndexTypeUInt16, true
	case gfx.FormatR32Uint:
		return core1_0.IndexTypeUInt32, true
	default:
		return 0, false
	}
}

func bufferUsageOf(usage gfx.BufferUsage) core1_0.BufferUsageFlags {
	flags := core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst
	if usage&gfx.BufferUsageVertex != 0 {
		flags |= core1_0.BufferUsageVertexBuffer
	}
	if usage&gfx.BufferUsageIndex != 0 {
		flags |= core1_0.BufferUsageIndexBuffer
	}
	if usage&gfx.BufferUsageConstant != 0 {
		flags |= core1_0.BufferUsageUniformBuffer
	}
	if usage&(gfx.BufferUsageShaderResource|gfx.BufferUsageUnorderedAccess) != 0 {
		flags |= core1_0.BufferUsageStorageBuffer
	}
	return flags
}

func imageUsageOf(usage gfx.TextureUsage) core1_0.ImageUsageFlags {
	flags := core1_0.ImageUsageTransferSrc | core1_0.ImageUsageTransferDst
	if usage&gfx.TextureUsageShaderResource != 0 {
		flags |= core1_0.ImageUsageSampled
	}
	if usage&gfx.TextureUsageUnorderedAccess != 0 {
		flags |= core1_0.ImageUsageStorage
	}
	if usage&gfx.TextureUsageRenderTarget != 0 {
		flags |= core1_0.ImageUsageColorAttachment
	}
	if usage&gfx.TextureUsageDepthStencil != 0 {
		flags |= core1_0.ImageUsageDepthStencilAttachment
	}
	return flags
}

func memoryPropertiesOf(heap gfx.HeapKind) (required core1_0.MemoryPropertyFlags, preferred core1_0.MemoryPropertyFlags) {
	switch heap {
	case gfx.HeapUpload:
		return core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent, 0
	case gfx.HeapReadback:
		return core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent, core1_0.MemoryPropertyHostCached
	default:
		return core1_0.MemoryPropertyDeviceLocal, 0
	}
}

var filters = map[gfx.Filter]core1_0.Filter{
	gfx.FilterNearest: core1_0.FilterNearest,
	gfx.FilterLinear:  core1_0.FilterLinear,
}

var mipmapModes = map[gfx.Filter]core1_0.SamplerMipmapMode{
	gfx.FilterNearest: core1_0.SamplerMipmapModeNearest,
	gfx.FilterLinear:  core1_0.SamplerMipmapModeLinear,
}

var addressModes = map[gfx.AddressMode]core1_0.SamplerAddressMode{
	gfx.AddressModeWrap:   core1_0.SamplerAddressModeRepeat,
	gfx.AddressModeClamp:  core1_0.SamplerAddressModeClampToEdge,
	gfx.AddressModeMirror: core1_0.SamplerAddressModeMirroredRepeat,
}
