package gfx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/gfxcore/internal/utils"
	"github.com/vkngwrapper/gfxcore/memutils"
)

// DescriptorAllocator hands out CPU-only descriptors from a single non-shader-visible heap.
// Descriptors written here are staged into shader-visible heaps by the DynamicDescriptorHeap
// before they are used by a draw or dispatch.
//
// The allocator is a bump pointer. Freed descriptors are never reclaimed, so the heap must be
// sized for the lifetime of every view the application creates.
type DescriptorAllocator struct {
	logger *slog.Logger
	device Device
	mutex  utils.OptionalMutex

	kind          DescriptorHeapKind
	heap          DescriptorHeap
	incrementSize uint32
	next          CPUDescriptorHandle
	maxCount      int
	allocated     int
}

// Initialize creates the backing heap, which holds maxCount descriptors of the provided kind
func (a *DescriptorAllocator) Initialize(logger *slog.Logger, device Device, useMutex bool, kind DescriptorHeapKind, maxCount int) error {
	if a.heap != nil {
		panic("attempted to initialize a descriptor allocator that is already in use")
	}
	if maxCount < 1 {
		panic(fmt.Sprintf("a descriptor allocator needs room for at least one descriptor, got %d", maxCount))
	}

	heap, err := device.CreateDescriptorHeap(DescriptorHeapDesc{
		Kind:  kind,
		Count: maxCount,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create a %s heap with %d descriptors", kind, maxCount)
	}

	a.logger = logger
	a.device = device
	a.mutex = utils.NewOptionalMutex(useMutex)
	a.kind = kind
	a.heap = heap
	a.incrementSize = device.DescriptorIncrementSize(kind)
	a.next = heap.CPUStart()
	a.maxCount = maxCount
	a.allocated = 0

	return nil
}

func (a *DescriptorAllocator) Kind() DescriptorHeapKind { return a.kind }
func (a *DescriptorAllocator) Heap() DescriptorHeap     { return a.heap }

// Allocate reserves count consecutive descriptors and returns the first one. Running out of
// descriptors is fatal.
func (a *DescriptorAllocator) Allocate(count int) CPUDescriptorHandle {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.heap == nil {
		panic("attempted to allocate from a descriptor allocator that has not been initialized")
	}
	if count < 1 {
		panic(fmt.Sprintf("attempted to allocate %d descriptors", count))
	}
	if a.allocated+count > a.maxCount {
		panic(errors.Wrapf(memutils.ExhaustedError, "%s descriptor allocator: %d of %d descriptors are in use and %d more were requested", a.kind, a.allocated, a.maxCount, count))
	}

	result := a.next
	a.next = a.next.Offset(count, a.incrementSize)
	a.allocated += count

	return result
}

// Deallocate is accepted for symmetry with Allocate but does not reclaim anything.
//
// TODO: track freed ranges so views recreated on resize stop leaking descriptor slots.
func (a *DescriptorAllocator) Deallocate(handle CPUDescriptorHandle, count int) {}

// Remaining returns the number of descriptors that can still be allocated
func (a *DescriptorAllocator) Remaining() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.maxCount - a.allocated
}

// Destroy releases the backing heap
func (a *DescriptorAllocator) Destroy() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.heap == nil {
		return
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "DescriptorAllocator::Destroy",
		slog.String("kind", a.kind.String()),
		slog.Int("allocated", a.allocated),
		slog.Int("capacity", a.maxCount),
	)

	a.heap.Destroy()
	a.heap = nil
	a.next = CPUDescriptorHandle{}
}
