package gfx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/gfxcore/internal/ring"
	"github.com/vkngwrapper/gfxcore/internal/utils"
	"github.com/vkngwrapper/gfxcore/memutils"
)

// DescriptorHeapPool recycles shader-visible descriptor heaps of one kind. Every heap holds the
// same number of descriptors. A heap handed out or retired during a frame becomes available
// again after framesInFlight further calls to Flip.
type DescriptorHeapPool struct {
	logger *slog.Logger
	device Device
	mutex  utils.OptionalMutex

	kind           DescriptorHeapKind
	heapSize       int
	validateOnFlip bool

	ring  *ring.FrameRing[DescriptorHeap]
	heaps []DescriptorHeap
	// usage holds the windows and descriptors the last holder of each heap copied into it
	usage map[DescriptorHeap]blockUsage
}

func (p *DescriptorHeapPool) Init(logger *slog.Logger, device Device, options CreateOptions, kind DescriptorHeapKind) {
	if p.ring != nil {
		panic("attempted to initialize a descriptor heap pool that is already in use")
	}

	options = options.withDefaults()
	p.logger = logger
	p.device = device
	p.mutex = utils.NewOptionalMutex(options.Flags&CreateExternallySynchronized == 0)
	p.kind = kind
	p.validateOnFlip = options.Flags&CreateValidateOnFlip != 0
	p.ring = ring.New[DescriptorHeap](options.FramesInFlight)
	p.usage = make(map[DescriptorHeap]blockUsage)

	switch kind {
	case DescriptorHeapView:
		p.heapSize = options.DescriptorsPerHeap
	case DescriptorHeapSampler:
		p.heapSize = options.SamplersPerHeap
	default:
		panic(fmt.Sprintf("%s heaps cannot be shader visible", kind))
	}
}

func (p *DescriptorHeapPool) Kind() DescriptorHeapKind { return p.kind }

// HeapSize returns the number of descriptors in every heap of the pool
func (p *DescriptorHeapPool) HeapSize() int { return p.heapSize }

// HeapCount returns the number of heaps the pool owns
func (p *DescriptorHeapPool) HeapCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return len(p.heaps)
}

// Allocate returns an available heap, or creates one if every heap is in flight. The heap
// counts as written during the current frame.
func (p *DescriptorHeapPool) Allocate() (DescriptorHeap, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	heap, found := p.ring.TakeAvailable(nil)
	if found {
		delete(p.usage, heap)
	} else {
		var err error
		heap, err = p.device.CreateDescriptorHeap(DescriptorHeapDesc{
			Kind:          p.kind,
			Count:         p.heapSize,
			ShaderVisible: true,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create a shader-visible %s heap with %d descriptors", p.kind, p.heapSize)
		}
		p.heaps = append(p.heaps, heap)

		p.logger.LogAttrs(context.Background(), slog.LevelDebug, "DescriptorHeapPool::Allocate new heap",
			slog.String("kind", p.kind.String()),
			slog.Int("heapCount", len(p.heaps)),
		)
	}

	p.ring.Stamp(heap)
	return heap, nil
}

// Deallocate retires a heap that a dynamic descriptor heap has finished writing. The heap is
// restamped into the current frame.
func (p *DescriptorHeapPool) Deallocate(heap DescriptorHeap) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.ring.IsInFlight(heap) {
		panic(fmt.Sprintf("attempted to retire a %s heap that was not handed out by this pool", p.kind))
	}

	p.ring.Stamp(heap)
}

func (p *DescriptorHeapPool) recordUsage(heap DescriptorHeap, windows int, descriptors int) {
	p.mutex.Locked(func() {
		p.usage[heap] = blockUsage{allocations: windows, bytes: descriptors}
	})
}

// Flip retires the oldest frame in flight, making the heaps last written during it available
func (p *DescriptorHeapPool) Flip() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	reclaimed := p.ring.Flip()
	if len(reclaimed) > 0 {
		p.logger.LogAttrs(context.Background(), slog.LevelDebug, "DescriptorHeapPool::Flip",
			slog.String("kind", p.kind.String()),
			slog.Int("reclaimed", len(reclaimed)),
			slog.Int("available", p.ring.AvailableCount()),
		)
	}

	if p.validateOnFlip {
		memutils.DebugValidate(p)
	}
}

// Destroy releases every heap the pool created. The GPU must be idle.
func (p *DescriptorHeapPool) Destroy() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ring == nil {
		return
	}

	p.ring.Drain()
	for _, heap := range p.heaps {
		heap.Destroy()
	}
	p.heaps = nil
	p.usage = make(map[DescriptorHeap]blockUsage)
}

func (p *DescriptorHeapPool) AddStatistics(stats *memutils.RingStatistics) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	stats.BlockCount += len(p.heaps)
	stats.BlockBytes += len(p.heaps) * p.heapSize
	for _, usage := range p.usage {
		stats.AllocationCount += usage.allocations
		stats.AllocationBytes += usage.bytes
	}
	stats.AvailableCount += p.ring.AvailableCount()
	stats.InFlightCount += p.ring.InFlightCount()

	for len(stats.InFlightPerSlot) < p.ring.FramesInFlight() {
		stats.InFlightPerSlot = append(stats.InFlightPerSlot, 0)
	}
	for slot := 0; slot < p.ring.FramesInFlight(); slot++ {
		stats.InFlightPerSlot[slot] += p.ring.SlotCount(slot)
	}
	stats.CurrentSlot = p.ring.CurrentSlot()
	stats.FlipCount = p.ring.FlipCount()
}

func (p *DescriptorHeapPool) PrintDetailedMap(json jwriter.ObjectState) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	json.Name("Kind").String(p.kind.String())
	json.Name("HeapSize").Int(p.heapSize)
	json.Name("HeapCount").Int(len(p.heaps))
	json.Name("Available").Int(p.ring.AvailableCount())
	json.Name("InFlight").Int(p.ring.InFlightCount())
	json.Name("CurrentSlot").Int(p.ring.CurrentSlot())
}

func (p *DescriptorHeapPool) Validate() error {
	err := p.ring.Validate()
	if err != nil {
		return errors.Wrapf(err, "%s heap ring is inconsistent", p.kind)
	}

	tracked := 0
	p.ring.Each(func(heap DescriptorHeap, inFlight bool) {
		tracked++
	})
	if tracked != len(p.heaps) {
		return errors.Newf("%s heap pool owns %d heaps but its ring tracks %d", p.kind, len(p.heaps), tracked)
	}

	return nil
}
