package gfx

import (
	"context"
	"fmt"
	"log/slog"
)

// DynamicDescriptorHeap copies descriptors staged by a recording context into shader-visible
// heaps taken from a DescriptorHeapPool and binds them to descriptor tables. One instance exists
// per context and per shader-visible heap kind.
//
// The heap has two states: without a current heap, and with one. A current heap is taken from
// the pool the first time descriptors need copying and is retired back to the pool when it
// fills up, when the context finishes, or when the context is torn down.
type DynamicDescriptorHeap struct {
	logger *slog.Logger
	device Device
	pool   *DescriptorHeapPool

	kind          DescriptorHeapKind
	incrementSize uint32

	current       DescriptorHeap
	firstCPU      CPUDescriptorHandle
	firstGPU      GPUDescriptorHandle
	currentOffset int
	// windows counts the table windows allocated from the current heap
	windows int

	// onHeapChanged is called with the new heap whenever a new current heap is set up, so the
	// owner can bind it to its command list
	onHeapChanged func(kind DescriptorHeapKind, heap DescriptorHeap)

	graphicsCache DescriptorHandleCache
	computeCache  DescriptorHandleCache
}

func NewDynamicDescriptorHeap(logger *slog.Logger, device Device, pool *DescriptorHeapPool, onHeapChanged func(kind DescriptorHeapKind, heap DescriptorHeap)) *DynamicDescriptorHeap {
	h := &DynamicDescriptorHeap{
		logger:        logger,
		device:        device,
		pool:          pool,
		kind:          pool.Kind(),
		incrementSize: device.DescriptorIncrementSize(pool.Kind()),
		onHeapChanged: onHeapChanged,
	}
	h.graphicsCache.kind = h.kind
	h.computeCache.kind = h.kind
	return h
}

func (h *DynamicDescriptorHeap) Kind() DescriptorHeapKind { return h.kind }

// CurrentHeap returns the heap descriptors are being copied into, or nil if none is set up
func (h *DynamicDescriptorHeap) CurrentHeap() DescriptorHeap { return h.current }

func (h *DynamicDescriptorHeap) GraphicsCache() *DescriptorHandleCache { return &h.graphicsCache }
func (h *DynamicDescriptorHeap) ComputeCache() *DescriptorHandleCache  { return &h.computeCache }

func (h *DynamicDescriptorHeap) SetGraphicsDescriptorHandles(rootIndex int, offset int, handles []CPUDescriptorHandle) {
	h.graphicsCache.StageDescriptorHandles(rootIndex, offset, handles)
}

func (h *DynamicDescriptorHeap) SetComputeDescriptorHandles(rootIndex int, offset int, handles []CPUDescriptorHandle) {
	h.computeCache.StageDescriptorHandles(rootIndex, offset, handles)
}

func (h *DynamicDescriptorHeap) ParseGraphicsRootSignature(signature *RootSignature) {
	h.graphicsCache.ParseRootSignature(h.kind, signature)
}

func (h *DynamicDescriptorHeap) ParseComputeRootSignature(signature *RootSignature) {
	h.computeCache.ParseRootSignature(h.kind, signature)
}

func (h *DynamicDescriptorHeap) hasSpace(count int) bool {
	return h.current != nil && h.currentOffset+count <= h.pool.HeapSize()
}

// SetupNewHeap takes a heap from the pool and makes it current
func (h *DynamicDescriptorHeap) SetupNewHeap() error {
	if h.current != nil {
		panic("attempted to set up a new descriptor heap without retiring the current one")
	}

	heap, err := h.pool.Allocate()
	if err != nil {
		return err
	}

	h.current = heap
	h.firstCPU = heap.CPUStart()
	h.firstGPU = heap.GPUStart()
	h.currentOffset = 0

	if h.onHeapChanged != nil {
		h.onHeapChanged(h.kind, heap)
	}
	return nil
}

// RetireCurrentHeap hands the current heap back to the pool. Heaps nothing was copied into are
// retired as well, since the context may already have bound them.
func (h *DynamicDescriptorHeap) RetireCurrentHeap() {
	if h.current == nil {
		return
	}

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "DynamicDescriptorHeap::RetireCurrentHeap",
		slog.String("kind", h.kind.String()),
		slog.Int("used", h.currentOffset),
		slog.Int("size", h.pool.HeapSize()),
	)

	h.pool.recordUsage(h.current, h.windows, h.currentOffset)
	h.pool.Deallocate(h.current)
	h.current = nil
	h.windows = 0
	h.firstCPU = CPUDescriptorHandle{}
	h.firstGPU = GPUDescriptorHandle{}
	h.currentOffset = 0
}

// UnbindAllValid marks every table with staged descriptors stale in both caches. It is used after
// switching heaps, since tables bound from the old heap are no longer reachable.
func (h *DynamicDescriptorHeap) UnbindAllValid() {
	h.graphicsCache.UnbindAllValid()
	h.computeCache.UnbindAllValid()
}

func (h *DynamicDescriptorHeap) allocate(count int) (CPUDescriptorHandle, GPUDescriptorHandle) {
	cpu := h.firstCPU.Offset(h.currentOffset, h.incrementSize)
	gpu := h.firstGPU.Offset(h.currentOffset, h.incrementSize)
	h.currentOffset += count
	h.windows++
	return cpu, gpu
}

func (h *DynamicDescriptorHeap) stagedSize(cache *DescriptorHandleCache) int {
	needed := cache.ComputeStagedSize()
	if needed > h.pool.HeapSize() {
		panic(fmt.Sprintf("staged tables need %d %s descriptors, but shader-visible heaps only hold %d", needed, h.kind, h.pool.HeapSize()))
	}
	return needed
}

func (h *DynamicDescriptorHeap) copyAndBindStagedTables(cache *DescriptorHandleCache, bind func(rootIndex int, baseDescriptor GPUDescriptorHandle)) error {
	needed := h.stagedSize(cache)
	if !h.hasSpace(needed) {
		h.RetireCurrentHeap()
		h.UnbindAllValid()
		// every staged table has to be copied again
		needed = h.stagedSize(cache)

		err := h.SetupNewHeap()
		if err != nil {
			return err
		}
	}

	destCPU, destGPU := h.allocate(needed)
	cache.CopyAndBindStaleTables(h.device, h.incrementSize, destCPU, destGPU, bind)
	return nil
}

// CommitGraphicsRootDescriptorTables copies stale graphics tables into the current heap and
// binds them to the command list
func (h *DynamicDescriptorHeap) CommitGraphicsRootDescriptorTables(commandList CommandList) error {
	if h.graphicsCache.StaleMask() == 0 {
		return nil
	}
	return h.copyAndBindStagedTables(&h.graphicsCache, commandList.SetGraphicsRootDescriptorTable)
}

// CommitComputeRootDescriptorTables copies stale compute tables into the current heap and binds
// them to the command list
func (h *DynamicDescriptorHeap) CommitComputeRootDescriptorTables(commandList CommandList) error {
	if h.computeCache.StaleMask() == 0 {
		return nil
	}
	return h.copyAndBindStagedTables(&h.computeCache, commandList.SetComputeRootDescriptorTable)
}

// UploadDirect copies a single descriptor into the current heap immediately and returns its
// shader-visible handle
func (h *DynamicDescriptorHeap) UploadDirect(handle CPUDescriptorHandle) (GPUDescriptorHandle, error) {
	if !h.hasSpace(1) {
		h.RetireCurrentHeap()
		h.UnbindAllValid()

		err := h.SetupNewHeap()
		if err != nil {
			return GPUDescriptorHandle{}, err
		}
	}

	destCPU, destGPU := h.allocate(1)
	h.device.CopyDescriptorsSimple(1, destCPU, handle, h.kind)
	return destGPU, nil
}

// CleanupUsedHeaps retires the current heap and drops every staged descriptor. It is called when
// the owning context finishes recording.
func (h *DynamicDescriptorHeap) CleanupUsedHeaps() {
	h.RetireCurrentHeap()
	h.graphicsCache.ClearCache()
	h.computeCache.ClearCache()
}
