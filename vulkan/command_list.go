package vulkan

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/gfxcore/gfx"
)

type bindPoint int

const (
	bindGraphics bindPoint = iota
	bindCompute

	bindPointCount = 2
)

var nativeBindPoints = [bindPointCount]core1_0.PipelineBindPoint{
	bindGraphics: core1_0.PipelineBindPointGraphics,
	bindCompute:  core1_0.PipelineBindPointCompute,
}

type rootBinding struct {
	signature *gfx.RootSignature
	layout    core1_0.PipelineLayout
	setsDirty bool
}

// CommandList records into a single primary command buffer. Recording errors are held until
// Close, since the gfx.CommandList recording methods cannot fail.
type CommandList struct {
	device *Device
	id     int
	buffer core1_0.CommandBuffer
	closed bool
	err    error

	heaps    [2]*DescriptorHeap
	bindings [bindPointCount]rootBinding
}

var _ gfx.CommandList = &CommandList{}

func (l *CommandList) ID() int                       { return l.id }
func (l *CommandList) Native() core1_0.CommandBuffer { return l.buffer }

func (l *CommandList) record(err error) {
	if err != nil && l.err == nil {
		l.err = err
	}
}

func (l *CommandList) begin() error {
	_, err := l.device.driver.BeginCommandBuffer(l.buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to begin command list %d", l.id)
	}
	return nil
}

func (l *CommandList) Reset() error {
	if !l.closed {
		return errors.Errorf("command list %d was reset while recording", l.id)
	}

	l.closed = false
	l.err = nil
	l.heaps = [2]*DescriptorHeap{}
	l.bindings = [bindPointCount]rootBinding{}
	return l.begin()
}

func (l *CommandList) Close() error {
	if l.closed {
		return errors.Errorf("command list %d was closed twice", l.id)
	}

	l.closed = true
	_, err := l.device.driver.EndCommandBuffer(l.buffer)
	l.record(err)
	if l.err != nil {
		return errors.Wrapf(l.err, "failed to record command list %d", l.id)
	}
	return nil
}

func (l *CommandList) checkRecording() {
	if l.closed {
		panic(fmt.Sprintf("command list %d recorded a command after it was closed", l.id))
	}
}

// ResourceBarrier folds the batch into a single pipeline barrier
func (l *CommandList) ResourceBarrier(barriers []gfx.TransitionBarrier) {
	l.checkRecording()

	var srcStages, dstStages core1_0.PipelineStageFlags
	var bufferBarriers []core1_0.BufferMemoryBarrier
	var imageBarriers []core1_0.ImageMemoryBarrier

	for _, barrier := range barriers {
		before, after := usageOf(barrier.Before), usageOf(barrier.After)
		srcStages |= sourceStages(before)
		dstStages |= destinationStages(after)

		switch resource := barrier.Resource.(type) {
		case *Buffer:
			bufferBarriers = append(bufferBarriers, resource.barrier(before, after))
		case *Texture:
			imageBarriers = append(imageBarriers, resource.barrier(before, after))
		default:
			panic(fmt.Sprintf("resource of type %T was not created by a vulkan device", barrier.Resource))
		}
	}

	if len(barriers) == 0 {
		return
	}
	l.record(l.device.driver.CmdPipelineBarrier(l.buffer, srcStages, dstStages, 0, nil, bufferBarriers, imageBarriers))
}

func (l *CommandList) SetDescriptorHeaps(heaps []gfx.DescriptorHeap) {
	l.checkRecording()

	l.heaps = [2]*DescriptorHeap{}
	for _, heap := range heaps {
		vulkanHeap, ok := heap.(*DescriptorHeap)
		if !ok {
			panic(fmt.Sprintf("descriptor heap of type %T was not created by a vulkan device", heap))
		}
		if !vulkanHeap.desc.ShaderVisible {
			panic("only shader-visible descriptor heaps can be bound")
		}

		if vulkanHeap.desc.Kind == gfx.DescriptorHeapSampler {
			l.heaps[samplerSet] = vulkanHeap
		} else {
			l.heaps[viewSet] = vulkanHeap
		}
	}

	for i := range l.bindings {
		l.bindings[i].setsDirty = true
	}
}

func (l *CommandList) setRootSignature(point bindPoint, signature *gfx.RootSignature) {
	l.checkRecording()

	layout, ok := signature.Native.(core1_0.PipelineLayout)
	if !ok {
		panic("root signature was not initialized by a vulkan device")
	}
	l.bindings[point] = rootBinding{signature: signature, layout: layout, setsDirty: true}
}

func (l *CommandList) SetGraphicsRootSignature(signature *gfx.RootSignature) {
	l.setRootSignature(bindGraphics, signature)
}

func (l *CommandList) SetComputeRootSignature(signature *gfx.RootSignature) {
	l.setRootSignature(bindCompute, signature)
}

// flushSets binds the current heaps' sets, if they changed since the last bind. A missing view
// heap means the sampler set has to be bound on its own.
func (l *CommandList) flushSets(point bindPoint) {
	binding := &l.bindings[point]
	if binding.signature == nil || !binding.setsDirty {
		return
	}
	binding.setsDirty = false

	switch {
	case l.heaps[viewSet] != nil && l.heaps[samplerSet] != nil:
		l.device.driver.CmdBindDescriptorSets(l.buffer, nativeBindPoints[point], binding.layout, viewSet,
			[]core1_0.DescriptorSet{l.heaps[viewSet].set, l.heaps[samplerSet].set}, nil)
	case l.heaps[viewSet] != nil:
		l.device.driver.CmdBindDescriptorSets(l.buffer, nativeBindPoints[point], binding.layout, viewSet,
			[]core1_0.DescriptorSet{l.heaps[viewSet].set}, nil)
	case l.heaps[samplerSet] != nil:
		l.device.driver.CmdBindDescriptorSets(l.buffer, nativeBindPoints[point], binding.layout, samplerSet,
			[]core1_0.DescriptorSet{l.heaps[samplerSet].set}, nil)
	}
}

func (l *CommandList) pushRootSlot(point bindPoint, rootIndex int, value uint64) {
	binding := &l.bindings[point]
	if binding.signature == nil {
		panic(fmt.Sprintf("command list %d bound a root parameter before a root signature", l.id))
	}
	if rootIndex >= binding.signature.ParameterCount() {
		panic(fmt.Sprintf("root index %d is outside a signature of %d parameters", rootIndex, binding.signature.ParameterCount()))
	}

	data := make([]byte, rootSlotSize)
	common.ByteOrder.PutUint64(data, value)
	l.device.driver.CmdPushConstants(l.buffer, binding.layout, allStages, rootIndex*rootSlotSize, data)
}

func (l *CommandList) setRootDescriptorTable(point bindPoint, rootIndex int, baseDescriptor gfx.GPUDescriptorHandle) {
	l.checkRecording()
	l.flushSets(point)

	heap, element := l.device.locate(uintptr(baseDescriptor.Ptr))
	if heap != l.heaps[viewSet] && heap != l.heaps[samplerSet] {
		panic(fmt.Sprintf("descriptor table at root index %d points into a heap that is not bound", rootIndex))
	}
	l.pushRootSlot(point, rootIndex, uint64(element))
}

func (l *CommandList) SetGraphicsRootDescriptorTable(rootIndex int, baseDescriptor gfx.GPUDescriptorHandle) {
	l.setRootDescriptorTable(bindGraphics, rootIndex, baseDescriptor)
}

func (l *CommandList) SetComputeRootDescriptorTable(rootIndex int, baseDescriptor gfx.GPUDescriptorHandle) {
	l.setRootDescriptorTable(bindCompute, rootIndex, baseDescriptor)
}

func (l *CommandList) SetGraphicsRootConstantBufferView(rootIndex int, location gfx.GPUAddress) {
	l.checkRecording()
	l.pushRootSlot(bindGraphics, rootIndex, uint64(location))
}

func (l *CommandList) SetComputeRootConstantBufferView(rootIndex int, location gfx.GPUAddress) {
	l.checkRecording()
	l.pushRootSlot(bindCompute, rootIndex, uint64(location))
}

func (l *CommandList) IASetVertexBuffers(startSlot int, views []gfx.VertexBufferView) {
	l.checkRecording()
	if len(views) == 0 {
		return
	}

	buffers := make([]core1_0.Buffer, 0, len(views))
	offsets := make([]int, 0, len(views))
	for _, view := range views {
		buffer, offset := l.device.resolve(view.Location)
		buffers = append(buffers, buffer.native)
		offsets = append(offsets, offset)
	}
	l.device.driver.CmdBindVertexBuffers(l.buffer, startSlot, buffers, offsets)
}

func (l *CommandList) IASetIndexBuffer(view gfx.IndexBufferView) {
	l.checkRecording()

	indexType, ok := indexTypeOf(view.Format)
	if !ok {
		panic(fmt.Sprintf("format %d cannot be used for indices", view.Format))
	}
	buffer, offset := l.device.resolve(view.Location)
	l.device.driver.CmdBindIndexBuffer(l.buffer, buffer.native, offset, indexType)
}

func (l *CommandList) DrawInstanced(vertexCountPerInstance, instanceCount, startVertex, startInstance int) {
	l.checkRecording()
	l.flushSets(bindGraphics)
	l.device.driver.CmdDraw(l.buffer, vertexCountPerInstance, instanceCount, uint32(startVertex), uint32(startInstance))
}

func (l *CommandList) DrawIndexedInstanced(indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance int) {
	l.checkRecording()
	l.flushSets(bindGraphics)
	l.device.driver.CmdDrawIndexed(l.buffer, indexCountPerInstance, instanceCount, uint32(startIndex), baseVertex, uint32(startInstance))
}

func (l *CommandList) Dispatch(groupCountX, groupCountY, groupCountZ int) {
	l.checkRecording()
	l.flushSets(bindCompute)
	l.device.driver.CmdDispatch(l.buffer, groupCountX, groupCountY, groupCountZ)
}
