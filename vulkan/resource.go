package vulkan

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/gfxcore/gfx"
)

// Buffer is a VkBuffer with its own memory allocation. Upload and readback buffers stay
// mapped for their whole lifetime.
type Buffer struct {
	device  *Device
	desc    gfx.BufferDesc
	kind    gfx.ResourceKind
	native  core1_0.Buffer
	memory  core1_0.DeviceMemory
	address gfx.GPUAddress

	mapping   unsafe.Pointer
	mapped    int
	destroyed bool
}

var _ gfx.Resource = &Buffer{}

func (b *Buffer) Desc() gfx.BufferDesc         { return b.desc }
func (b *Buffer) Kind() gfx.ResourceKind       { return b.kind }
func (b *Buffer) Size() int                    { return b.desc.Size }
func (b *Buffer) GPUAddress() gfx.GPUAddress   { return b.address }
func (b *Buffer) Native() core1_0.Buffer       { return b.native }
func (b *Buffer) Memory() core1_0.DeviceMemory { return b.memory }

func (b *Buffer) Map() (unsafe.Pointer, error) {
	if b.mapping == nil {
		return nil, errors.Errorf("buffer %q lives in %s memory and cannot be mapped", b.desc.Name, b.desc.Heap)
	}
	b.mapped++
	return b.mapping, nil
}

func (b *Buffer) Unmap() {
	if b.mapped == 0 {
		panic("attempted to unmap a buffer that is not mapped")
	}
	b.mapped--
}

func (b *Buffer) Destroy() {
	b.device.destroyBuffer(b)
}

func (b *Buffer) barrier(before, after stateUsage) core1_0.BufferMemoryBarrier {
	return core1_0.BufferMemoryBarrier{
		SrcAccessMask:       before.access,
		DstAccessMask:       after.access,
		SrcQueueFamilyIndex: -1,
		DstQueueFamilyIndex: -1,
		Buffer:              b.native,
		Offset:              0,
		Size:                b.desc.Size,
	}
}

// Texture is a 2D VkImage with its own memory allocation
type Texture struct {
	device    *Device
	desc      gfx.TextureDesc
	kind      gfx.ResourceKind
	native    core1_0.Image
	memory    core1_0.DeviceMemory
	size      int
	mipLevels int
	aspect    core1_0.ImageAspectFlags

	destroyed bool
}

var _ gfx.Resource = &Texture{}

func (t *Texture) Desc() gfx.TextureDesc      { return t.desc }
func (t *Texture) Kind() gfx.ResourceKind     { return t.kind }
func (t *Texture) Size() int                  { return t.size }
func (t *Texture) GPUAddress() gfx.GPUAddress { return 0 }
func (t *Texture) Native() core1_0.Image      { return t.native }

func (t *Texture) Map() (unsafe.Pointer, error) {
	return nil, errors.Errorf("texture %q cannot be mapped", t.desc.Name)
}

func (t *Texture) Unmap() {
	panic("attempted to unmap a texture")
}

func (t *Texture) Destroy() {
	t.device.destroyTexture(t)
}

func (t *Texture) barrier(before, after stateUsage) core1_0.ImageMemoryBarrier {
	return core1_0.ImageMemoryBarrier{
		SrcAccessMask:       before.access,
		DstAccessMask:       after.access,
		OldLayout:           before.layout,
		NewLayout:           after.layout,
		SrcQueueFamilyIndex: -1,
		DstQueueFamilyIndex: -1,
		Image:               t.native,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     t.aspect,
			BaseMipLevel:   0,
			LevelCount:     t.mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}
