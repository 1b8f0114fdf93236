package gfx

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/gfxcore/handle"
)

// maxBarrierBatch is the number of transitions recorded by a single ResourceBarrier call
const maxBarrierBatch = 16

// ResourceTransition is a resource state recorded by a context for the command queue
type ResourceTransition struct {
	Handle   handle.Handle
	Resource *GPUResource
	State    ResourceState
}

// Submission is a closed command list along with the state bookkeeping the command queue needs
// to run it. Pending holds the first state each resource was required to be in, and Final holds
// the state each resource was left in, both in the order resources were first touched.
type Submission struct {
	name        string
	commandList CommandList
	pending     []ResourceTransition
	final       []ResourceTransition
	submitted   bool
}

func (s *Submission) Name() string                  { return s.name }
func (s *Submission) CommandList() CommandList      { return s.commandList }
func (s *Submission) Pending() []ResourceTransition { return s.pending }
func (s *Submission) Final() []ResourceTransition   { return s.final }

// GraphicsContext records draws and dispatches into one command list. It tracks the state of
// every resource it touches during a recording episode, stages dynamic descriptors, and carves
// dynamic buffers out of its own linear allocators. A context is used by one goroutine at a time.
//
// The first time a context sees a resource it cannot know what state the resource will be in
// when the command list runs, since earlier command lists may still be unsubmitted. The
// required state is recorded as pending and no barrier is emitted. CommandQueue.Submit patches
// pending states against the last known state of each resource.
type GraphicsContext struct {
	logger  *slog.Logger
	manager *ContextManager

	id          int
	name        string
	commandList CommandList
	recording   bool

	cpuAllocator *LinearAllocator
	gpuAllocator *LinearAllocator
	viewHeap     *DynamicDescriptorHeap
	samplerHeap  *DynamicDescriptorHeap

	boundHeaps        [2]DescriptorHeap
	graphicsSignature *RootSignature
	computeSignature  *RootSignature
	barriers          []TransitionBarrier
	currentStates     *swiss.Map[handle.Handle, ResourceState]
	pending           []ResourceTransition
	touched           []*GPUResource
}

func newGraphicsContext(manager *ContextManager, id int, commandList CommandList) *GraphicsContext {
	c := &GraphicsContext{
		logger:       manager.logger,
		manager:      manager,
		id:           id,
		commandList:  commandList,
		cpuAllocator: NewLinearAllocator(manager.cpuPages),
		gpuAllocator: NewLinearAllocator(manager.gpuPages),
		barriers:     make([]TransitionBarrier, 0, maxBarrierBatch),
	}
	c.viewHeap = NewDynamicDescriptorHeap(manager.logger, manager.device, manager.viewHeaps, c.setDescriptorHeap)
	c.samplerHeap = NewDynamicDescriptorHeap(manager.logger, manager.device, manager.samplerHeaps, c.setDescriptorHeap)
	return c
}

func (c *GraphicsContext) ID() int                             { return c.id }
func (c *GraphicsContext) Name() string                        { return c.name }
func (c *GraphicsContext) CommandList() CommandList            { return c.commandList }
func (c *GraphicsContext) IsRecording() bool                   { return c.recording }
func (c *GraphicsContext) PendingBarrierCount() int            { return len(c.barriers) }
func (c *GraphicsContext) TouchedResourceCount() int           { return len(c.touched) }
func (c *GraphicsContext) ViewHeap() *DynamicDescriptorHeap    { return c.viewHeap }
func (c *GraphicsContext) SamplerHeap() *DynamicDescriptorHeap { return c.samplerHeap }

// Begin starts a new recording episode. Every resource starts out unobserved.
func (c *GraphicsContext) Begin(name string) {
	if c.recording {
		panic(fmt.Sprintf("attempted to begin context %d while it is still recording %q", c.id, c.name))
	}

	c.name = name
	c.recording = true
	c.boundHeaps = [2]DescriptorHeap{}
	c.graphicsSignature = nil
	c.computeSignature = nil
	c.barriers = c.barriers[:0]
	c.currentStates = swiss.NewMap[handle.Handle, ResourceState](32)
	c.pending = nil
	c.touched = nil
}

func (c *GraphicsContext) checkRecording() {
	if !c.recording {
		panic(fmt.Sprintf("context %d is not recording", c.id))
	}
}

// CurrentState returns the state the context expects resource to be in at this point in the
// command list, or ResourceStatePending if the context has not seen the resource yet
func (c *GraphicsContext) CurrentState(resource *GPUResource) ResourceState {
	state, seen := c.currentStates.Get(resource.StateHandle())
	if !seen {
		return ResourceStatePending
	}
	return state
}

// ResourceBarrier requires resource to be in the after state from this point in the command
// list on. Transitions are batched until a draw, a dispatch, a full batch, or flushImmediate.
func (c *GraphicsContext) ResourceBarrier(resource *GPUResource, after ResourceState, flushImmediate bool) {
	c.checkRecording()
	if after == ResourceStatePending {
		panic(fmt.Sprintf("attempted to transition %q to the pending state", resource.Name()))
	}

	h := resource.StateHandle()
	before, seen := c.currentStates.Get(h)

	if !seen {
		c.manager.states.acquire(h)
		c.touched = append(c.touched, resource)
		c.pending = append(c.pending, ResourceTransition{Handle: h, Resource: resource, State: after})
		c.currentStates.Put(h, after)
	} else if before != after {
		c.barriers = append(c.barriers, TransitionBarrier{
			Resource: resource.Native(),
			Before:   before,
			After:    after,
		})
		c.currentStates.Put(h, after)

		if len(c.barriers) == maxBarrierBatch {
			c.FlushResourceBarriers()
		}
	}

	if flushImmediate {
		c.FlushResourceBarriers()
	}
}

// FlushResourceBarriers records every batched transition
func (c *GraphicsContext) FlushResourceBarriers() {
	if len(c.barriers) == 0 {
		return
	}

	c.commandList.ResourceBarrier(c.barriers)
	c.barriers = c.barriers[:0]
}

func (c *GraphicsContext) setDescriptorHeap(kind DescriptorHeapKind, heap DescriptorHeap) {
	if c.boundHeaps[kind] == heap {
		return
	}
	c.boundHeaps[kind] = heap

	heaps := make([]DescriptorHeap, 0, len(c.boundHeaps))
	for _, bound := range c.boundHeaps {
		if bound != nil {
			heaps = append(heaps, bound)
		}
	}
	c.commandList.SetDescriptorHeaps(heaps)
}

func (c *GraphicsContext) SetRootSignature(signature *RootSignature) {
	c.checkRecording()
	if signature == c.graphicsSignature {
		return
	}

	c.graphicsSignature = signature
	c.commandList.SetGraphicsRootSignature(signature)
	c.viewHeap.ParseGraphicsRootSignature(signature)
	c.samplerHeap.ParseGraphicsRootSignature(signature)
}

func (c *GraphicsContext) SetComputeRootSignature(signature *RootSignature) {
	c.checkRecording()
	if signature == c.computeSignature {
		return
	}

	c.computeSignature = signature
	c.commandList.SetComputeRootSignature(signature)
	c.viewHeap.ParseComputeRootSignature(signature)
	c.samplerHeap.ParseComputeRootSignature(signature)
}

func (c *GraphicsContext) SetDynamicViewDescriptor(rootIndex int, offset int, handle CPUDescriptorHandle) {
	c.SetDynamicViewDescriptors(rootIndex, offset, []CPUDescriptorHandle{handle})
}

func (c *GraphicsContext) SetDynamicViewDescriptors(rootIndex int, offset int, handles []CPUDescriptorHandle) {
	c.checkRecording()
	c.viewHeap.SetGraphicsDescriptorHandles(rootIndex, offset, handles)
}

func (c *GraphicsContext) SetDynamicSamplerDescriptor(rootIndex int, offset int, handle CPUDescriptorHandle) {
	c.SetDynamicSamplerDescriptors(rootIndex, offset, []CPUDescriptorHandle{handle})
}

func (c *GraphicsContext) SetDynamicSamplerDescriptors(rootIndex int, offset int, handles []CPUDescriptorHandle) {
	c.checkRecording()
	c.samplerHeap.SetGraphicsDescriptorHandles(rootIndex, offset, handles)
}

func (c *GraphicsContext) SetDynamicComputeViewDescriptors(rootIndex int, offset int, handles []CPUDescriptorHandle) {
	c.checkRecording()
	c.viewHeap.SetComputeDescriptorHandles(rootIndex, offset, handles)
}

func (c *GraphicsContext) SetDynamicComputeSamplerDescriptors(rootIndex int, offset int, handles []CPUDescriptorHandle) {
	c.checkRecording()
	c.samplerHeap.SetComputeDescriptorHandles(rootIndex, offset, handles)
}

// AllocateUploadMemory returns CPU-writable scratch memory that is valid until the current
// frame retires
func (c *GraphicsContext) AllocateUploadMemory(size int) (DynAlloc, error) {
	c.checkRecording()
	return c.cpuAllocator.Allocate(size, DefaultLinearAllocatorAlignment)
}

// AllocateScratchMemory returns GPU-exclusive scratch memory that is valid until the current
// frame retires
func (c *GraphicsContext) AllocateScratchMemory(size int) (DynAlloc, error) {
	c.checkRecording()
	return c.gpuAllocator.Allocate(size, DefaultLinearAllocatorAlignment)
}

func (c *GraphicsContext) upload(data unsafe.Pointer, size int, alignment int) (DynAlloc, error) {
	c.checkRecording()

	alloc, err := c.cpuAllocator.Allocate(size, alignment)
	if err != nil {
		return DynAlloc{}, errors.Wrapf(err, "context %q failed to allocate %d bytes of upload memory", c.name, size)
	}
	copy(alloc.Bytes(), unsafe.Slice((*byte)(data), size))
	return alloc, nil
}

// SetDynamicVB copies vertex data into upload memory and binds it to slot
func (c *GraphicsContext) SetDynamicVB(slot int, vertexStride int, data []byte) error {
	if len(data) == 0 {
		panic("attempted to bind an empty dynamic vertex buffer")
	}
	if vertexStride < 1 || len(data)%vertexStride != 0 {
		panic(fmt.Sprintf("dynamic vertex buffer of %d bytes is not a whole number of %d-byte vertices", len(data), vertexStride))
	}

	alloc, err := c.upload(unsafe.Pointer(&data[0]), len(data), 16)
	if err != nil {
		return err
	}

	c.commandList.IASetVertexBuffers(slot, []VertexBufferView{{
		Location: alloc.GPUAddress,
		Size:     len(data),
		Stride:   vertexStride,
	}})
	return nil
}

// SetDynamicIB16 copies 16-bit indices into upload memory and binds them
func (c *GraphicsContext) SetDynamicIB16(indices []uint16) error {
	if len(indices) == 0 {
		panic("attempted to bind an empty dynamic index buffer")
	}

	size := len(indices) * 2
	alloc, err := c.upload(unsafe.Pointer(&indices[0]), size, 16)
	if err != nil {
		return err
	}

	c.commandList.IASetIndexBuffer(IndexBufferView{Location: alloc.GPUAddress, Size: size, Format: FormatR16Uint})
	return nil
}

// SetDynamicIB32 copies 32-bit indices into upload memory and binds them
func (c *GraphicsContext) SetDynamicIB32(indices []uint32) error {
	if len(indices) == 0 {
		panic("attempted to bind an empty dynamic index buffer")
	}

	size := len(indices) * 4
	alloc, err := c.upload(unsafe.Pointer(&indices[0]), size, 16)
	if err != nil {
		return err
	}

	c.commandList.IASetIndexBuffer(IndexBufferView{Location: alloc.GPUAddress, Size: size, Format: FormatR32Uint})
	return nil
}

// SetDynamicConstantBufferView copies data into upload memory and binds it as a root constant
// buffer of the graphics signature
func (c *GraphicsContext) SetDynamicConstantBufferView(rootIndex int, data []byte) error {
	if len(data) == 0 {
		panic("attempted to bind an empty dynamic constant buffer")
	}

	alloc, err := c.upload(unsafe.Pointer(&data[0]), len(data), DefaultLinearAllocatorAlignment)
	if err != nil {
		return err
	}

	c.commandList.SetGraphicsRootConstantBufferView(rootIndex, alloc.GPUAddress)
	return nil
}

// SetDynamicComputeConstantBufferView copies data into upload memory and binds it as a root
// constant buffer of the compute signature
func (c *GraphicsContext) SetDynamicComputeConstantBufferView(rootIndex int, data []byte) error {
	if len(data) == 0 {
		panic("attempted to bind an empty dynamic constant buffer")
	}

	alloc, err := c.upload(unsafe.Pointer(&data[0]), len(data), DefaultLinearAllocatorAlignment)
	if err != nil {
		return err
	}

	c.commandList.SetComputeRootConstantBufferView(rootIndex, alloc.GPUAddress)
	return nil
}

func (c *GraphicsContext) flushGraphics() error {
	c.checkRecording()
	if c.graphicsSignature == nil {
		panic(fmt.Sprintf("context %q attempted to draw without a root signature", c.name))
	}

	c.FlushResourceBarriers()

	err := c.viewHeap.CommitGraphicsRootDescriptorTables(c.commandList)
	if err != nil {
		return errors.Wrap(err, "failed to commit view descriptor tables")
	}
	err = c.samplerHeap.CommitGraphicsRootDescriptorTables(c.commandList)
	if err != nil {
		return errors.Wrap(err, "failed to commit sampler descriptor tables")
	}
	return nil
}

func (c *GraphicsContext) flushCompute() error {
	c.checkRecording()
	if c.computeSignature == nil {
		panic(fmt.Sprintf("context %q attempted to dispatch without a compute root signature", c.name))
	}

	c.FlushResourceBarriers()

	err := c.viewHeap.CommitComputeRootDescriptorTables(c.commandList)
	if err != nil {
		return errors.Wrap(err, "failed to commit view descriptor tables")
	}
	err = c.samplerHeap.CommitComputeRootDescriptorTables(c.commandList)
	if err != nil {
		return errors.Wrap(err, "failed to commit sampler descriptor tables")
	}
	return nil
}

func (c *GraphicsContext) Draw(vertexCount int, startVertex int) error {
	return c.DrawInstanced(vertexCount, 1, startVertex, 0)
}

func (c *GraphicsContext) DrawIndexed(indexCount int, startIndex int, baseVertex int) error {
	return c.DrawIndexedInstanced(indexCount, 1, startIndex, baseVertex, 0)
}

func (c *GraphicsContext) DrawInstanced(vertexCountPerInstance, instanceCount, startVertex, startInstance int) error {
	err := c.flushGraphics()
	if err != nil {
		return err
	}

	c.commandList.DrawInstanced(vertexCountPerInstance, instanceCount, startVertex, startInstance)
	return nil
}

func (c *GraphicsContext) DrawIndexedInstanced(indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance int) error {
	err := c.flushGraphics()
	if err != nil {
		return err
	}

	c.commandList.DrawIndexedInstanced(indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance)
	return nil
}

func (c *GraphicsContext) Dispatch(groupCountX, groupCountY, groupCountZ int) error {
	err := c.flushCompute()
	if err != nil {
		return err
	}

	c.commandList.Dispatch(groupCountX, groupCountY, groupCountZ)
	return nil
}

// Close ends the recording episode and returns the submission for the command queue. The
// context's pages and heaps are handed back to their pools.
func (c *GraphicsContext) Close() (*Submission, error) {
	c.checkRecording()
	c.FlushResourceBarriers()

	c.cpuAllocator.Retire()
	c.gpuAllocator.Retire()
	c.viewHeap.CleanupUsedHeaps()
	c.samplerHeap.CleanupUsedHeaps()

	submission := &Submission{
		name:        c.name,
		commandList: c.commandList,
		pending:     c.pending,
		final:       make([]ResourceTransition, 0, len(c.touched)),
	}
	for _, resource := range c.touched {
		h := resource.StateHandle()
		state, _ := c.currentStates.Get(h)
		submission.final = append(submission.final, ResourceTransition{Handle: h, Resource: resource, State: state})
	}

	c.recording = false
	c.pending = nil
	c.touched = nil

	err := c.commandList.Close()
	if err != nil {
		for _, transition := range submission.final {
			c.manager.states.release(transition.Handle)
		}
		return nil, errors.Wrapf(err, "failed to close the command list of context %q", c.name)
	}

	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "GraphicsContext::Close",
		slog.String("name", c.name),
		slog.Int("pending", len(submission.pending)),
		slog.Int("touched", len(submission.final)),
	)

	return submission, nil
}

// Finish closes the context, submits it to the command queue, and returns it to the context
// manager. The context must not be used afterwards.
func (c *GraphicsContext) Finish() error {
	submission, err := c.Close()
	if err != nil {
		c.manager.FreeContext(c)
		return err
	}

	err = c.manager.queue.Submit(submission)
	c.manager.FreeContext(c)
	return err
}
