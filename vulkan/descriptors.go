package vulkan

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/gfxcore/gfx"
)

const heapRegionSize uintptr = 1 << heapRegionBits

// DescriptorHeap is one descriptor set whose binding 0 is an array of Count descriptors. Render
// target and depth stencil heaps have no set, since those descriptors are never read by shaders.
type DescriptorHeap struct {
	device *Device
	desc   gfx.DescriptorHeapDesc
	base   uintptr

	pool core1_0.DescriptorPool
	set  core1_0.DescriptorSet

	destroyed bool
}

var _ gfx.DescriptorHeap = &DescriptorHeap{}

func (h *DescriptorHeap) Desc() gfx.DescriptorHeapDesc { return h.desc }
func (h *DescriptorHeap) Set() core1_0.DescriptorSet   { return h.set }

func (h *DescriptorHeap) CPUStart() gfx.CPUDescriptorHandle {
	return gfx.CPUDescriptorHandle{Ptr: h.base}
}

func (h *DescriptorHeap) GPUStart() gfx.GPUDescriptorHandle {
	if !h.desc.ShaderVisible {
		return gfx.GPUDescriptorHandle{}
	}
	return gfx.GPUDescriptorHandle{Ptr: uint64(h.base)}
}

func (h *DescriptorHeap) Destroy() {
	h.device.destroyHeap(h)
}

func (h *DescriptorHeap) hasSet() bool {
	return h.desc.Kind == gfx.DescriptorHeapView || h.desc.Kind == gfx.DescriptorHeapSampler
}

func (h *DescriptorHeap) index(ptr uintptr) int {
	offset := ptr - h.base
	if offset%uintptr(DescriptorStride) != 0 || offset/uintptr(DescriptorStride) >= uintptr(h.desc.Count) {
		panic(fmt.Sprintf("descriptor handle %#x is outside the heap at %#x", ptr, h.base))
	}
	return int(offset / uintptr(DescriptorStride))
}

func descriptorTypeOf(kind gfx.DescriptorHeapKind) core1_0.DescriptorType {
	if kind == gfx.DescriptorHeapSampler {
		return core1_0.DescriptorTypeSampler
	}
	return core1_0.DescriptorTypeUniformBuffer
}

// setLayout returns the cached layout of a set holding count descriptors of the provided kind.
// The caller must hold the device mutex.
func (d *Device) setLayout(kind gfx.DescriptorHeapKind, count int) (core1_0.DescriptorSetLayout, error) {
	key := setLayoutKey{kind: kind, count: count}
	layout, found := d.setLayouts.Get(key)
	if found {
		return layout, nil
	}

	layout, _, err := d.driver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  descriptorTypeOf(kind),
				DescriptorCount: count,
				StageFlags:      allStages,
			},
		},
	})
	if err != nil {
		return layout, errors.Wrapf(err, "failed to create layout for %d descriptors of %s", count, kind)
	}

	d.setLayouts.Put(key, layout)
	return layout, nil
}

func (d *Device) shaderVisibleCount(kind gfx.DescriptorHeapKind) int {
	if kind == gfx.DescriptorHeapSampler {
		return d.config.SamplersPerHeap
	}
	return d.config.DescriptorsPerHeap
}

func (d *Device) CreateDescriptorHeap(desc gfx.DescriptorHeapDesc) (gfx.DescriptorHeap, error) {
	if desc.Count < 1 {
		return nil, errors.Errorf("descriptor heap has invalid size %d", desc.Count)
	}
	if uintptr(desc.Count)*uintptr(DescriptorStride) > heapRegionSize {
		return nil, errors.Errorf("descriptor heap of %d descriptors exceeds the %d-byte heap region", desc.Count, heapRegionSize)
	}
	if desc.ShaderVisible && desc.Kind != gfx.DescriptorHeapView && desc.Kind != gfx.DescriptorHeapSampler {
		return nil, errors.Errorf("%s heaps cannot be shader visible", desc.Kind)
	}
	if desc.ShaderVisible && desc.Count != d.shaderVisibleCount(desc.Kind) {
		return nil, errors.Errorf("shader-visible %s heaps must hold %d descriptors, but %d were requested", desc.Kind, d.shaderVisibleCount(desc.Kind), desc.Count)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	heap := &DescriptorHeap{
		device: d,
		desc:   desc,
		base:   d.nextHeapRegion << heapRegionBits,
	}

	if heap.hasSet() {
		layout, err := d.setLayout(desc.Kind, desc.Count)
		if err != nil {
			return nil, err
		}

		heap.pool, _, err = d.driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
			MaxSets: 1,
			PoolSizes: []core1_0.DescriptorPoolSize{
				{
					Type:            descriptorTypeOf(desc.Kind),
					DescriptorCount: desc.Count,
				},
			},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create pool for a %s heap", desc.Kind)
		}

		sets, _, err := d.driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
			DescriptorPool: heap.pool,
			SetLayouts:     []core1_0.DescriptorSetLayout{layout},
		})
		if err != nil {
			d.driver.DestroyDescriptorPool(heap.pool, nil)
			return nil, errors.Wrapf(err, "failed to allocate the set for a %s heap", desc.Kind)
		}
		heap.set = sets[0]
	}

	d.heaps.Put(d.nextHeapRegion, heap)
	d.nextHeapRegion++
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

	if heap.hasSet() {
		d.driver.DestroyDescriptorPool(heap.pool, nil)
	}
}

// locate finds the heap behind a descriptor handle and the array element it addresses
func (d *Device) locate(ptr uintptr) (*DescriptorHeap, int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	heap, found := d.heaps.Get(ptr >> heapRegionBits)
	if !found {
		panic(fmt.Sprintf("descriptor handle %#x does not belong to a live heap", ptr))
	}
	return heap, heap.index(ptr)
}

func (d *Device) updateDescriptorSets(writes []core1_0.WriteDescriptorSet, copies []core1_0.CopyDescriptorSet) {
	err := d.driver.UpdateDescriptorSets(writes, copies)
	if err != nil {
		panic(errors.Wrap(err, "failed to update descriptor sets"))
	}
}

func (d *Device) CreateConstantBufferView(location gfx.GPUAddress, size int, dest gfx.CPUDescriptorHandle) {
	buffer, offset := d.resolve(location)
	heap, element := d.locate(dest.Ptr)

	d.updateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          heap.set,
			DstBinding:      0,
			DstArrayElement: element,
			DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
			BufferInfo: []core1_0.DescriptorBufferInfo{
				{
					Buffer: buffer.native,
					Offset: offset,
					Range:  size,
				},
			},
		},
	}, nil)
}

func (d *Device) sampler(desc gfx.SamplerDesc) core1_0.Sampler {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	sampler, found := d.samplers.Get(desc)
	if found {
		return sampler
	}

	sampler, _, err := d.driver.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    filters[desc.Filter],
		MinFilter:    filters[desc.Filter],
		MipmapMode:   mipmapModes[desc.Filter],
		AddressModeU: addressModes[desc.AddressMode],
		AddressModeV: addressModes[desc.AddressMode],
		AddressModeW: addressModes[desc.AddressMode],
		MinLod:       0,
		MaxLod:       desc.MaxLOD,
	})
	if err != nil {
		panic(errors.Wrap(err, "failed to create sampler"))
	}

	d.samplers.Put(desc, sampler)
	return sampler
}

func (d *Device) CreateSampler(desc gfx.SamplerDesc, dest gfx.CPUDescriptorHandle) {
	sampler := d.sampler(desc)
	heap, element := d.locate(dest.Ptr)

	d.updateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          heap.set,
			DstBinding:      0,
			DstArrayElement: element,
			DescriptorType:  core1_0.DescriptorTypeSampler,
			ImageInfo: []core1_0.DescriptorImageInfo{
				{Sampler: sampler},
			},
		},
	}, nil)
}

// CopyDescriptors walks the source and destination ranges side by side, emitting one set copy
// per run that stays inside a single source range and a single destination range
func (d *Device) CopyDescriptors(destStarts []gfx.CPUDescriptorHandle, destSizes []uint32, srcStarts []gfx.CPUDescriptorHandle, srcSizes []uint32, kind gfx.DescriptorHeapKind) {
	if len(destStarts) != len(destSizes) || len(srcStarts) != len(srcSizes) {
		panic("descriptor range starts and sizes have different lengths")
	}

	destTotal, srcTotal := 0, 0
	for _, size := range destSizes {
		destTotal += int(size)
	}
	for _, size := range srcSizes {
		srcTotal += int(size)
	}
	if destTotal != srcTotal {
		panic(fmt.Sprintf("destination ranges hold %d descriptors but %d source descriptors were provided", destTotal, srcTotal))
	}
	if kind != gfx.DescriptorHeapView && kind != gfx.DescriptorHeapSampler {
		// Render target and depth stencil descriptors carry no state of their own
		return
	}

	var copies []core1_0.CopyDescriptorSet
	destIndex, destOffset := 0, 0
	srcIndex, srcOffset := 0, 0
	for copied := 0; copied < srcTotal; {
		if destOffset == int(destSizes[destIndex]) {
			destIndex++
			destOffset = 0
			continue
		}
		if srcOffset == int(srcSizes[srcIndex]) {
			srcIndex++
			srcOffset = 0
			continue
		}

		count := min(int(destSizes[destIndex])-destOffset, int(srcSizes[srcIndex])-srcOffset)
		destHeap, destElement := d.locate(destStarts[destIndex].Offset(destOffset, DescriptorStride).Ptr)
		srcHeap, srcElement := d.locate(srcStarts[srcIndex].Offset(srcOffset, DescriptorStride).Ptr)
		if destElement+count > destHeap.desc.Count || srcElement+count > srcHeap.desc.Count {
			panic("descriptor range runs past the end of its heap")
		}

		copies = append(copies, core1_0.CopyDescriptorSet{
			SrcSet:          srcHeap.set,
			SrcBinding:      0,
			SrcArrayElement: srcElement,
			DstSet:          destHeap.set,
			DstBinding:      0,
			DstArrayElement: destElement,
			DescriptorCount: count,
		})

		destOffset += count
		srcOffset += count
		copied += count
	}

	if len(copies) > 0 {
		d.updateDescriptorSets(nil, copies)
	}
}

func (d *Device) CopyDescriptorsSimple(count int, dest gfx.CPUDescriptorHandle, src gfx.CPUDescriptorHandle, kind gfx.DescriptorHeapKind) {
	d.CopyDescriptors(
		[]gfx.CPUDescriptorHandle{dest}, []uint32{uint32(count)},
		[]gfx.CPUDescriptorHandle{src}, []uint32{uint32(count)},
		kind,
	)
}
