package softgpu

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/gfxcore/gfx"
)

var formatSizes = map[gfx.Format]int{
	gfx.FormatR8G8B8A8Unorm:     4,
	gfx.FormatB8G8R8A8Unorm:     4,
	gfx.FormatR16G16B16A16Float: 8,
	gfx.FormatR32Float:          4,
	gfx.FormatD32Float:          4,
	gfx.FormatD24UnormS8Uint:    4,
	gfx.FormatR16Uint:           2,
	gfx.FormatR32Uint:           4,
}

// Buffer is a byte slice standing in for GPU memory
type Buffer struct {
	device  *Device
	desc    gfx.BufferDesc
	kind    gfx.ResourceKind
	data    []byte
	address gfx.GPUAddress
	mapped  int

	state     gfx.ResourceState
	destroyed bool
}

var _ gfx.Resource = &Buffer{}

func (b *Buffer) Desc() gfx.BufferDesc       { return b.desc }
func (b *Buffer) Kind() gfx.ResourceKind     { return b.kind }
func (b *Buffer) Size() int                  { return len(b.data) }
func (b *Buffer) GPUAddress() gfx.GPUAddress { return b.address }

// Data returns the buffer's memory, regardless of heap
func (b *Buffer) Data() []byte { return b.data }

func (b *Buffer) Map() (unsafe.Pointer, error) {
	if b.desc.Heap == gfx.HeapDefault {
		return nil, errors.Newf("buffer %q lives in %s memory and cannot be mapped", b.desc.Name, b.desc.Heap)
	}
	b.mapped++
	return unsafe.Pointer(&b.data[0]), nil
}

func (b *Buffer) Unmap() {
	if b.mapped == 0 {
		panic("attempted to unmap a buffer that is not mapped")
	}
	b.mapped--
}

func (b *Buffer) Destroy() {
	b.device.destroyResource(b, &b.destroyed)
}

// Texture has no backing memory, only a footprint and a state
type Texture struct {
	device *Device
	desc   gfx.TextureDesc
	kind   gfx.ResourceKind
	size   int

	state     gfx.ResourceState
	destroyed bool
}

var _ gfx.Resource = &Texture{}

func (t *Texture) Desc() gfx.TextureDesc      { return t.desc }
func (t *Texture) Kind() gfx.ResourceKind     { return t.kind }
func (t *Texture) Size() int                  { return t.size }
func (t *Texture) GPUAddress() gfx.GPUAddress { return 0 }

func (t *Texture) Map() (unsafe.Pointer, error) {
	return nil, errors.Newf("texture %q cannot be mapped", t.desc.Name)
}

func (t *Texture) Unmap() {
	panic("attempted to unmap a texture")
}

func (t *Texture) Destroy() {
	t.device.destroyResource(t, &t.destroyed)
}
