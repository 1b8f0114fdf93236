// Package vulkan implements gfx.Device over vkngwrapper. Descriptor heaps are descriptor sets
// with a single arrayed binding, and descriptor handles are synthetic: the high bits select a
// heap and the low bits an array element. Buffers receive synthetic GPU addresses, which are
// resolved back to a buffer and offset when they are bound.
//
// Dynamic descriptors are copied into a heap's set while that set is bound to a command buffer
// that is still recording. Core 1.0 does not allow this: the set layouts are created without
// the update-after-bind flags of descriptor indexing, so on a conforming driver a command buffer
// that draws more than once with dynamic descriptors is invalidated. Until the layouts carry
// those flags, the backend is only suitable for single-draw command lists and for running under
// mocked drivers.
package vulkan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/gfxcore/gfx"
	"github.com/vkngwrapper/gfxcore/memutils"
)

const (
	// DescriptorStride is the distance between two descriptor handles in the same heap
	DescriptorStride uint32 = 16

	heapRegionBits = 24

	baseAddress     gfx.GPUAddress = 0x10000
	bufferPlacement int            = 64 * 1024
	firstHeapRegion uintptr        = 1

	// rootSlotSize is the number of push constant bytes reserved for each root parameter
	rootSlotSize = 8
	// maxPushConstantBytes is the push constant size every implementation guarantees
	maxPushConstantBytes = 128

	allStages = core1_0.StageVertex | core1_0.StageFragment | core1_0.StageCompute
)

// Config describes the queue and descriptor heap sizes a Device is created with
type Config struct {
	MemoryProperties *core1_0.PhysicalDeviceMemoryProperties
	QueueFamilyIndex int
	Queue            core1_0.Queue

	// DescriptorsPerHeap and SamplersPerHeap must match the sizes the gfx.Core is created with,
	// since every shader-visible heap is bound through the same pipeline layouts
	DescriptorsPerHeap int
	SamplersPerHeap    int
}

type setLayoutKey struct {
	kind  gfx.DescriptorHeapKind
	count int
}

// Device is a gfx.Device that records into Vulkan command buffers
type Device struct {
	logger *slog.Logger
	driver core1_0.DeviceDriver
	config Config
	mutex  sync.Mutex

	commandPool core1_0.CommandPool

	nextAddress gfx.GPUAddress
	buffers     []*Buffer

	nextHeapRegion uintptr
	heaps          *swiss.Map[uintptr, *DescriptorHeap]

	setLayouts      *swiss.Map[setLayoutKey, core1_0.DescriptorSetLayout]
	samplers        *swiss.Map[gfx.SamplerDesc, core1_0.Sampler]
	pipelineLayouts []core1_0.PipelineLayout

	nextCommandListID int
}

var _ gfx.Device = &Device{}

func New(logger *slog.Logger, driver core1_0.DeviceDriver, config Config) (*Device, error) {
	if config.MemoryProperties == nil {
		return nil, errors.New("vulkan device requires the physical device's memory properties")
	}
	if config.DescriptorsPerHeap == 0 {
		config.DescriptorsPerHeap = gfx.DefaultDescriptorsPerHeap
	}
	if config.SamplersPerHeap == 0 {
		config.SamplersPerHeap = gfx.DefaultSamplersPerHeap
	}

	pool, _, err := driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: config.QueueFamilyIndex,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create command pool")
	}

	return &Device{
		logger:         logger,
		driver:         driver,
		config:         config,
		commandPool:    pool,
		nextAddress:    baseAddress,
		nextHeapRegion: firstHeapRegion,
		heaps:          swiss.NewMap[uintptr, *DescriptorHeap](16),
		setLayouts:     swiss.NewMap[setLayoutKey, core1_0.DescriptorSetLayout](4),
		samplers:       swiss.NewMap[gfx.SamplerDesc, core1_0.Sampler](8),
	}, nil
}

// Destroy frees every object the device created on its own behalf. Resources, heaps, and
// command lists handed out to the caller must already be destroyed, and the GPU must be idle.
func (d *Device) Destroy() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.heaps.Count() > 0 {
		panic(fmt.Sprintf("vulkan device destroyed with %d live descriptor heaps", d.heaps.Count()))
	}

	d.samplers.Iter(func(_ gfx.SamplerDesc, sampler core1_0.Sampler) bool {
		d.driver.DestroySampler(sampler, nil)
		return false
	})
	for _, layout := range d.pipelineLayouts {
		d.driver.DestroyPipelineLayout(layout, nil)
	}
	d.setLayouts.Iter(func(_ setLayoutKey, layout core1_0.DescriptorSetLayout) bool {
		d.driver.DestroyDescriptorSetLayout(layout, nil)
		return false
	})
	d.driver.DestroyCommandPool(d.commandPool, nil)
}

func (d *Device) findMemoryType(typeBits uint32, required, preferred core1_0.MemoryPropertyFlags) (int, error) {
	found := -1
	for i, memoryType := range d.config.MemoryProperties.MemoryTypes {
		if typeBits&(1<<uint(i)) == 0 || memoryType.PropertyFlags&required != required {
			continue
		}
		if memoryType.PropertyFlags&preferred == preferred {
			return i, nil
		}
		if found < 0 {
			found = i
		}
	}

	if found < 0 {
		return -1, errors.Errorf("no memory type in %#b has properties %s", typeBits, required)
	}
	return found, nil
}

func (d *Device) allocateMemory(name string, requirements *core1_0.MemoryRequirements, heap gfx.HeapKind) (core1_0.DeviceMemory, error) {
	memutils.DebugCheckPow2(requirements.Alignment, "memory requirement alignment")

	required, preferred := memoryPropertiesOf(heap)
	memoryType, err := d.findMemoryType(requirements.MemoryTypeBits, required, preferred)
	if err != nil {
		return core1_0.DeviceMemory{}, errors.Wrapf(err, "failed to place %q", name)
	}

	memory, _, err := d.driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryType,
	})
	if err != nil {
		return core1_0.DeviceMemory{}, errors.Wrapf(err, "failed to allocate memory for %q", name)
	}
	return memory, nil
}

func (d *Device) CreateBuffer(desc gfx.BufferDesc) (gfx.Resource, error) {
	if desc.Size < 1 {
		return nil, errors.Errorf("buffer %q has invalid size %d", desc.Name, desc.Size)
	}

	native, _, err := d.driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        desc.Size,
		Usage:       bufferUsageOf(desc.Usage),
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create buffer %q", desc.Name)
	}

	memory, err := d.allocateMemory(desc.Name, d.driver.GetBufferMemoryRequirements(native), desc.Heap)
	if err != nil {
		d.driver.DestroyBuffer(native, nil)
		return nil, err
	}

	buffer := &Buffer{
		device: d,
		desc:   desc,
		kind:   gfx.ResourceKindForBuffer(desc),
		native: native,
		memory: memory,
	}

	_, err = d.driver.BindBufferMemory(native, memory, 0)
	if err == nil && desc.Heap != gfx.HeapDefault {
		buffer.mapping, _, err = d.driver.MapMemory(memory, 0, desc.Size, 0)
	}
	if err != nil {
		d.driver.DestroyBuffer(native, nil)
		d.driver.FreeMemory(memory, nil)
		return nil, errors.Wrapf(err, "failed to bind memory for buffer %q", desc.Name)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	buffer.address = d.nextAddress
	d.nextAddress += gfx.GPUAddress(memutils.AlignUp(desc.Size, bufferPlacement))
	d.buffers = append(d.buffers, buffer)

	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "vulkan.Device::CreateBuffer",
		slog.String("name", desc.Name),
		slog.Int("size", desc.Size),
		slog.String("heap", desc.Heap.String()),
	)

	return buffer, nil
}

func (d *Device) CreateTexture(desc gfx.TextureDesc) (gfx.Resource, error) {
	format, known := formats[desc.Format]
	if !known {
		return nil, errors.Errorf("texture %q has unsupported format %d", desc.Name, desc.Format)
	}
	if desc.Width < 1 || desc.Height < 1 {
		return nil, errors.Errorf("texture %q has invalid extent %dx%d", desc.Name, desc.Width, desc.Height)
	}
	mipLevels := max(desc.MipLevels, 1)

	image, _, err := d.driver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType:     core1_0.ImageType2D,
		Extent:        core1_0.Extent3D{Width: desc.Width, Height: desc.Height, Depth: 1},
		MipLevels:     mipLevels,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        core1_0.ImageTilingOptimal,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         imageUsageOf(desc.Usage),
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create texture %q", desc.Name)
	}

	requirements := d.driver.GetImageMemoryRequirements(image)
	memory, err := d.allocateMemory(desc.Name, requirements, gfx.HeapDefault)
	if err != nil {
		d.driver.DestroyImage(image, nil)
		return nil, err
	}

	texture := &Texture{
		device:    d,
		desc:      desc,
		kind:      gfx.ResourceKindForTexture(desc),
		native:    image,
		memory:    memory,
		size:      requirements.Size,
		mipLevels: mipLevels,
		aspect:    aspectOf(desc.Format),
	}

	_, err = d.driver.BindImageMemory(image, memory, 0)
	if err == nil {
		err = d.enterInitialLayout(texture)
	}
	if err != nil {
		d.driver.DestroyImage(image, nil)
		d.driver.FreeMemory(memory, nil)
		return nil, errors.Wrapf(err, "failed to prepare texture %q", desc.Name)
	}

	return texture, nil
}

// enterInitialLayout moves a new image out of the undefined layout, so that every barrier the
// core records afterward can name a real old layout. Submissions on one queue start in order,
// so the transition lands before any list that uses the texture.
func (d *Device) enterInitialLayout(texture *Texture) error {
	list, err := d.newCommandList()
	if err != nil {
		return err
	}

	state := gfx.InitialResourceState(texture.kind)
	usage := usageOf(state)
	list.record(d.driver.CmdPipelineBarrier(list.buffer,
		core1_0.PipelineStageTopOfPipe, destinationStages(usage), 0, nil, nil,
		[]core1_0.ImageMemoryBarrier{texture.barrier(stateUsage{layout: core1_0.ImageLayoutUndefined}, usage)},
	))

	if err = list.Close(); err != nil {
		return err
	}
	return d.ExecuteCommandLists(list)
}

func (d *Device) destroyBuffer(buffer *Buffer) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if buffer.destroyed {
		panic("attempted to destroy a resource twice")
	}
	if buffer.mapped > 0 {
		panic(fmt.Sprintf("buffer %q was destroyed while mapped", buffer.desc.Name))
	}
	buffer.destroyed = true

	index := sort.Search(len(d.buffers), func(i int) bool {
		return d.buffers[i].address >= buffer.address
	})
	d.buffers = append(d.buffers[:index], d.buffers[index+1:]...)

	if buffer.mapping != nil {
		d.driver.UnmapMemory(buffer.memory)
	}
	d.driver.DestroyBuffer(buffer.native, nil)
	d.driver.FreeMemory(buffer.memory, nil)
}

func (d *Device) destroyTexture(texture *Texture) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if texture.destroyed {
		panic("attempted to destroy a resource twice")
	}
	texture.destroyed = true

	d.driver.DestroyImage(texture.native, nil)
	d.driver.FreeMemory(texture.memory, nil)
}

// resolve finds the live buffer containing location and the offset of location inside it
func (d *Device) resolve(location gfx.GPUAddress) (*Buffer, int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	index := sort.Search(len(d.buffers), func(i int) bool {
		return d.buffers[i].address > location
	}) - 1
	if index < 0 {
		panic(fmt.Sprintf("no buffer contains address %#x", uint64(location)))
	}

	buffer := d.buffers[index]
	offset := int(location - buffer.address)
	if offset >= buffer.desc.Size {
		panic(fmt.Sprintf("no buffer contains address %#x", uint64(location)))
	}
	return buffer, offset
}

func (d *Device) DescriptorIncrementSize(kind gfx.DescriptorHeapKind) uint32 {
	return DescriptorStride
}

func (d *Device) CreateCommandList() (gfx.CommandList, error) {
	return d.newCommandList()
}

func (d *Device) newCommandList() (*CommandList, error) {
	buffers, _, err := d.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate command buffer")
	}

	d.mutex.Lock()
	list := &CommandList{device: d, id: d.nextCommandListID, buffer: buffers[0]}
	d.nextCommandListID++
	d.mutex.Unlock()

	if err = list.begin(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *Device) ExecuteCommandLists(lists ...gfx.CommandList) error {
	buffers := make([]core1_0.CommandBuffer, 0, len(lists))
	for _, list := range lists {
		vulkanList, ok := list.(*CommandList)
		if !ok {
			return errors.Errorf("command list of type %T was not created by a vulkan device", list)
		}
		if !vulkanList.closed {
			return errors.Errorf("command list %d was executed before it was closed", vulkanList.id)
		}
		buffers = append(buffers, vulkanList.buffer)
	}

	_, err := d.driver.QueueSubmit(d.config.Queue, nil, core1_0.SubmitInfo{CommandBuffers: buffers})
	if err != nil {
		return errors.Wrap(err, "failed to submit command buffers")
	}
	return nil
}
