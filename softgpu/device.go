// Package softgpu is a CPU implementation of gfx.Device. Buffers are byte slices, descriptor
// heaps are arrays of descriptor records, and command lists are replayed against a model of
// resource states when they are executed, so a transition whose before state disagrees with
// the resource's actual state is caught.
package softgpu

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/gfxcore/gfx"
	"github.com/vkngwrapper/gfxcore/memutils"
)

const (
	baseAddress     gfx.GPUAddress = 0x10000
	bufferPlacement int            = 64 * 1024
	firstHeapRegion uintptr        = 1
)

// Device is a gfx.Device whose GPU is the calling goroutine
type Device struct {
	logger *slog.Logger
	mutex  sync.Mutex

	nextAddress gfx.GPUAddress
	buffers     []*Buffer

	nextHeapRegion uintptr
	heaps          *swiss.Map[uintptr, *DescriptorHeap]

	nextCommandListID int
	keepLog           bool
	executed          []Command
	stateErrors       []string

	stats Stats
}

var _ gfx.Device = &Device{}

func NewDevice(logger *slog.Logger) *Device {
	return &Device{
		logger:         logger,
		nextAddress:    baseAddress,
		nextHeapRegion: firstHeapRegion,
		heaps:          swiss.NewMap[uintptr, *DescriptorHeap](16),
	}
}

// KeepCommandLog controls whether executed commands are retained for TakeExecuted
func (d *Device) KeepCommandLog(keep bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.keepLog = keep
}

// TakeExecuted returns the commands executed since the last call, in execution order
func (d *Device) TakeExecuted() []Command {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	executed := d.executed
	d.executed = nil
	return executed
}

// StateErrors returns a description of every transition whose before state did not match the
// state the resource was actually in
func (d *Device) StateErrors() []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return append([]string(nil), d.stateErrors...)
}

func (d *Device) Stats() Stats {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.stats
}

// ResourceState returns the state the resource is in after every executed command list
func (d *Device) ResourceState(resource gfx.Resource) gfx.ResourceState {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return *d.statePointer(resource)
}

func (d *Device) statePointer(resource gfx.Resource) *gfx.ResourceState {
	switch r := resource.(type) {
	case *Buffer:
		return &r.state
	case *Texture:
		return &r.state
	default:
		panic(fmt.Sprintf("resource of type %T was not created by a softgpu device", resource))
	}
}

func (d *Device) CreateBuffer(desc gfx.BufferDesc) (gfx.Resource, error) {
	if desc.Size < 1 {
		return nil, errors.Newf("buffer %q has invalid size %d", desc.Name, desc.Size)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	buffer := &Buffer{
		device:  d,
		desc:    desc,
		kind:    gfx.ResourceKindForBuffer(desc),
		data:    make([]byte, desc.Size),
		address: d.nextAddress,
	}
	buffer.state = gfx.InitialResourceState(buffer.kind)

	d.nextAddress += gfx.GPUAddress(memutils.AlignUp(desc.Size, bufferPlacement))
	d.buffers = append(d.buffers, buffer)
	d.stats.BuffersCreated++
	d.stats.LiveBuffers++
	d.stats.BufferBytes += desc.Size

	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "softgpu.Device::CreateBuffer",
		slog.String("name", desc.Name),
		slog.Int("size", desc.Size),
		slog.String("heap", desc.Heap.String()),
	)

	return buffer, nil
}

func (d *Device) CreateTexture(desc gfx.TextureDesc) (gfx.Resource, error) {
	texelSize, known := formatSizes[desc.Format]
	if !known {
		return nil, errors.Newf("texture %q has unsupported format %d", desc.Name, desc.Format)
	}
	if desc.Width < 1 || desc.Height < 1 {
		return nil, errors.Newf("texture %q has invalid extent %dx%d", desc.Name, desc.Width, desc.Height)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	size := 0
	width, height := desc.Width, desc.Height
	mipLevels := desc.MipLevels
	if mipLevels < 1 {
		mipLevels = 1
	}
	for level := 0; level < mipLevels; level++ {
		size += width * height * texelSize
		width = max(width/2, 1)
		height = max(height/2, 1)
	}

	texture := &Texture{
		device: d,
		desc:   desc,
		kind:   gfx.ResourceKindForTexture(desc),
		size:   size,
	}
	texture.state = gfx.InitialResourceState(texture.kind)
	d.stats.TexturesCreated++
	d.stats.LiveTextures++

	return texture, nil
}

func (d *Device) destroyResource(resource gfx.Resource, destroyed *bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if *destroyed {
		panic("attempted to destroy a resource twice")
	}
	*destroyed = true

	switch r := resource.(type) {
	case *Buffer:
		if r.mapped > 0 {
			panic(fmt.Sprintf("buffer %q was destroyed while mapped", r.desc.Name))
		}
		d.stats.LiveBuffers--
		d.stats.BufferBytes -= len(r.data)
	case *Texture:
		d.stats.LiveTextures--
	}
}

// ReadBuffer returns the size bytes of buffer memory starting at location
func (d *Device) ReadBuffer(location gfx.GPUAddress, size int) ([]byte, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	index := sort.Search(len(d.buffers), func(i int) bool {
		return d.buffers[i].address > location
	}) - 1
	if index < 0 {
		return nil, errors.Newf("no buffer contains address %#x", uint64(location))
	}

	buffer := d.buffers[index]
	offset := int(location - buffer.address)
	if buffer.destroyed || offset+size > len(buffer.data) {
		return nil, errors.Newf("no live buffer contains [%#x, %#x)", uint64(location), uint64(location)+uint64(size))
	}

	return buffer.data[offset : offset+size], nil
}

func (d *Device) CreateDescriptorHeap(desc gfx.DescriptorHeapDesc) (gfx.DescriptorHeap, error) {
	if desc.Count < 1 {
		return nil, errors.Newf("descriptor heap has invalid size %d", desc.Count)
	}
	if uintptr(desc.Count)*uintptr(DescriptorSize) > heapRegionSize {
		return nil, errors.Newf("descriptor heap of %d descriptors exceeds the %d-byte heap region", desc.Count, heapRegionSize)
	}
	if desc.ShaderVisible && desc.Kind != gfx.DescriptorHeapView && desc.Kind != gfx.DescriptorHeapSampler {
		return nil, errors.Newf("%s heaps cannot be shader visible", desc.Kind)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	heap := &DescriptorHeap{
		device:  d,
		desc:    desc,
		base:    d.nextHeapRegion << heapRegionBits,
		records: make([]Descriptor, desc.Count),
	}
	d.heaps.Put(d.nextHeapRegion, heap)
	d.nextHeapRegion++
	d.stats.HeapsCreated++
	d.stats.LiveHeaps++

	return heap, nil
}

func (d *Device) destroyHeap(heap *DescriptorHeap) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if heap.destroyed {
		panic("attempted to destroy a descriptor heap twice")
	}
	heap.destroyed = true
	d.heaps.Delete(heap.base >> heapRegionBits)
	d.stats.LiveHeaps--
}

func (d *Device) lookupDescriptor(ptr uintptr) *Descriptor {
	heap, found := d.heaps.Get(ptr >> heapRegionBits)
	if !found {
		panic(fmt.Sprintf("descriptor handle %#x does not belong to a live heap", ptr))
	}
	return &heap.records[heap.index(ptr)]
}

// Descriptor returns the record behind a CPU descriptor handle
func (d *Device) Descriptor(handle gfx.CPUDescriptorHandle) Descriptor {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return *d.lookupDescriptor(handle.Ptr)
}

// ShaderDescriptor returns the record behind a shader-visible descriptor handle
func (d *Device) ShaderDescriptor(handle gfx.GPUDescriptorHandle) Descriptor {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return *d.lookupDescriptor(uintptr(handle.Ptr))
}

func (d *Device) InitRootSignature(signature *gfx.RootSignature) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stats.RootSignatures++
	signature.Native = d.stats.RootSignatures
	return nil
}

func (d *Device) DescriptorIncrementSize(kind gfx.DescriptorHeapKind) uint32 {
	return DescriptorSize
}

func (d *Device) CreateConstantBufferView(location gfx.GPUAddress, size int, dest gfx.CPUDescriptorHandle) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	*d.lookupDescriptor(dest.Ptr) = Descriptor{
		Kind:     DescriptorConstantBufferView,
		Location: location,
		Size:     size,
	}
}

func (d *Device) CreateSampler(desc gfx.SamplerDesc, dest gfx.CPUDescriptorHandle) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	*d.lookupDescriptor(dest.Ptr) = Descriptor{
		Kind:    DescriptorSampler,
		Sampler: desc,
	}
}

func (d *Device) CopyDescriptors(destStarts []gfx.CPUDescriptorHandle, destSizes []uint32, srcStarts []gfx.CPUDescriptorHandle, srcSizes []uint32, kind gfx.DescriptorHeapKind) {
	if len(destStarts) != len(destSizes) || len(srcStarts) != len(srcSizes) {
		panic("descriptor range starts and sizes have different lengths")
	}

	var sources []Descriptor

	d.mutex.Lock()
	defer d.mutex.Unlock()

	for i, start := range srcStarts {
		for j := 0; j < int(srcSizes[i]); j++ {
			sources = append(sources, *d.lookupDescriptor(start.Ptr + uintptr(j)*uintptr(DescriptorSize)))
		}
	}

	written := 0
	for i, start := range destStarts {
		for j := 0; j < int(destSizes[i]); j++ {
			if written == len(sources) {
				panic(fmt.Sprintf("destination ranges hold more than the %d source descriptors", len(sources)))
			}
			*d.lookupDescriptor(start.Ptr + uintptr(j)*uintptr(DescriptorSize)) = sources[written]
			written++
		}
	}
	if written != len(sources) {
		panic(fmt.Sprintf("destination ranges hold %d descriptors but %d source descriptors were provided", written, len(sources)))
	}

	d.stats.CopyDescriptorsCalls++
	d.stats.DescriptorsCopied += written
}

func (d *Device) CopyDescriptorsSimple(count int, dest gfx.CPUDescriptorHandle, src gfx.CPUDescriptorHandle, kind gfx.DescriptorHeapKind) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for i := 0; i < count; i++ {
		offset := uintptr(i) * uintptr(DescriptorSize)
		*d.lookupDescriptor(dest.Ptr + offset) = *d.lookupDescriptor(src.Ptr + offset)
	}

	d.stats.CopyDescriptorsCalls++
	d.stats.DescriptorsCopied += count
}

func (d *Device) CreateCommandList() (gfx.CommandList, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	list := &CommandList{device: d, id: d.nextCommandListID}
	d.nextCommandListID++
	d.stats.CommandListsCreated++
	return list, nil
}

func (d *Device) ExecuteCommandLists(lists ...gfx.CommandList) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for _, list := range lists {
		softList, ok := list.(*CommandList)
		if !ok {
			return errors.Newf("command list of type %T was not created by a softgpu device", list)
		}
		if !softList.closed {
			return errors.Newf("command list %d was executed before it was closed", softList.id)
		}
	}

	for _, list := range lists {
		d.replay(list.(*CommandList))
	}
	d.stats.ExecuteCalls++
	return nil
}

func (d *Device) replay(list *CommandList) {
	for _, command := range list.commands {
		switch command.Op {
		case OpResourceBarrier:
			for _, barrier := range command.Barriers {
				d.applyBarrier(list, barrier)
			}
			d.stats.Barriers += len(command.Barriers)
		case OpDrawInstanced, OpDrawIndexedInstanced:
			d.stats.Draws++
		case OpDispatch:
			d.stats.Dispatches++
		}
	}

	if d.keepLog {
		d.executed = append(d.executed, list.commands...)
	}
	d.stats.ExecutedLists++
}

func (d *Device) applyBarrier(list *CommandList, barrier gfx.TransitionBarrier) {
	state := d.statePointer(barrier.Resource)
	if *state != barrier.Before {
		message := fmt.Sprintf("command list %d transitioned a %s from %s, but it was in %s", list.id, barrier.Resource.Kind(), barrier.Before, *state)
		d.stateErrors = append(d.stateErrors, message)
		d.stats.StateMismatches++

		d.logger.LogAttrs(context.Background(), slog.LevelWarn, "softgpu.Device::ExecuteCommandLists state mismatch",
			slog.Int("commandList", list.id),
			slog.String("before", barrier.Before.String()),
			slog.String("actual", state.String()),
			slog.String("after", barrier.After.String()),
		)
	}
	*state = barrier.After
}
