package gfx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/gfxcore/handle"
	"github.com/vkngwrapper/gfxcore/memutils"
)

// Core owns every pool of the transient resource lifecycle and wires them together. It is
// created once per device with New and torn down with Destroy.
type Core struct {
	logger  *slog.Logger
	device  Device
	options CreateOptions

	states               *ResourceStatesPool
	descriptorAllocators [DescriptorHeapKindCount]DescriptorAllocator
	heapPools            [2]DescriptorHeapPool
	pageManagers         [linearAllocatorTypeCount]LinearAllocatorPageManager
	queue                CommandQueue
	contexts             ContextManager

	frameCount int
}

// New creates the pools in dependency order: resource states, static descriptor allocators,
// shader-visible heap pools, page managers, the command queue, and finally the context manager.
func New(logger *slog.Logger, device Device, options CreateOptions) (*Core, error) {
	options = options.withDefaults()
	useMutex := options.Flags&CreateExternallySynchronized == 0

	core := &Core{
		logger:  logger,
		device:  device,
		options: options,
		states:  NewResourceStatesPool(logger, options.MaxTrackedResources),
	}

	for kind := DescriptorHeapKind(0); kind < DescriptorHeapKindCount; kind++ {
		err := core.descriptorAllocators[kind].Initialize(logger, device, useMutex, kind, options.StaticDescriptors[kind])
		if err != nil {
			core.Destroy()
			return nil, err
		}
	}

	core.heapPools[DescriptorHeapView].Init(logger, device, options, DescriptorHeapView)
	core.heapPools[DescriptorHeapSampler].Init(logger, device, options, DescriptorHeapSampler)
	core.pageManagers[LinearAllocatorGPUExclusive].Init(logger, device, options, LinearAllocatorGPUExclusive)
	core.pageManagers[LinearAllocatorCPUWritable].Init(logger, device, options, LinearAllocatorCPUWritable)
	core.queue.Init(logger, device, core.states, options.FramesInFlight)
	core.contexts.Init(logger, device, options, core)

	logger.LogAttrs(context.Background(), slog.LevelDebug, "Core::New",
		slog.String("flags", options.Flags.String()),
		slog.Int("framesInFlight", options.FramesInFlight),
	)

	return core, nil
}

func (c *Core) Device() Device              { return c.device }
func (c *Core) Options() CreateOptions      { return c.options }
func (c *Core) States() *ResourceStatesPool { return c.states }
func (c *Core) Queue() *CommandQueue        { return &c.queue }
func (c *Core) Contexts() *ContextManager   { return &c.contexts }
func (c *Core) FrameCount() int             { return c.frameCount }

func (c *Core) DescriptorAllocator(kind DescriptorHeapKind) *DescriptorAllocator {
	return &c.descriptorAllocators[kind]
}

func (c *Core) HeapPool(kind DescriptorHeapKind) *DescriptorHeapPool {
	if kind != DescriptorHeapView && kind != DescriptorHeapSampler {
		panic(fmt.Sprintf("there is no shader-visible heap pool for %s", kind))
	}
	return &c.heapPools[kind]
}

func (c *Core) PageManager(allocType LinearAllocatorType) *LinearAllocatorPageManager {
	return &c.pageManagers[allocType]
}

// Destroy tears the pools down in the reverse order of New. The GPU must be idle.
func (c *Core) Destroy() {
	c.contexts.Destroy()
	c.queue.Destroy()
	c.pageManagers[LinearAllocatorCPUWritable].Destroy()
	c.pageManagers[LinearAllocatorGPUExclusive].Destroy()
	c.heapPools[DescriptorHeapSampler].Destroy()
	c.heapPools[DescriptorHeapView].Destroy()
	for kind := DescriptorHeapKindCount - 1; kind >= 0; kind-- {
		c.descriptorAllocators[kind].Destroy()
	}

	if c.states.TrackedCount() > 0 {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "Core::Destroy resources were not destroyed",
			slog.Int("tracked", c.states.TrackedCount()),
		)
	}
}

// AllocateContext returns a context that has begun recording
func (c *Core) AllocateContext(name string) (*GraphicsContext, error) {
	return c.contexts.AllocateContext(name)
}

// EndFrame retires the oldest frame in flight. Every pool is flipped exactly once. It must be
// called once per frame by a single goroutine, after the GPU has finished the frame that was
// submitted FramesInFlight frames ago.
func (c *Core) EndFrame() {
	c.pageManagers[LinearAllocatorGPUExclusive].Flip()
	c.pageManagers[LinearAllocatorCPUWritable].Flip()
	c.heapPools[DescriptorHeapView].Flip()
	c.heapPools[DescriptorHeapSampler].Flip()
	c.queue.Flip()
	c.contexts.Flip()

	c.frameCount++

	if c.options.Flags&CreateValidateOnFlip != 0 {
		memutils.DebugValidate(c)
	}
}

// Validate checks the internal consistency of the state table and every frame-delayed pool
func (c *Core) Validate() error {
	err := c.states.Validate()
	if err != nil {
		return err
	}

	for i := range c.pageManagers {
		err = c.pageManagers[i].Validate()
		if err != nil {
			return err
		}
	}
	for i := range c.heapPools {
		err = c.heapPools[i].Validate()
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateBuffer creates a buffer and starts tracking its state
func (c *Core) CreateBuffer(desc BufferDesc) (*GPUResource, error) {
	native, err := c.device.CreateBuffer(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create buffer %q", desc.Name)
	}

	return c.track(desc.Name, native), nil
}

// CreateTexture creates a texture and starts tracking its state
func (c *Core) CreateTexture(desc TextureDesc) (*GPUResource, error) {
	native, err := c.device.CreateTexture(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create texture %q", desc.Name)
	}

	return c.track(desc.Name, native), nil
}

func (c *Core) track(name string, native Resource) *GPUResource {
	resource := &GPUResource{name: name, native: native}
	resource.stateHandle = c.states.AllocateHandle(resource)
	return resource
}

// DestroyResource stops tracking a resource and destroys it. Contexts that have touched the
// resource must have been submitted.
func (c *Core) DestroyResource(resource *GPUResource) {
	c.states.DeallocateHandle(resource.stateHandle)
	resource.stateHandle = handle.Invalid
	resource.native.Destroy()
}

// CreateRootSignature validates the parameters and builds the device's layout object
func (c *Core) CreateRootSignature(parameters ...RootParameter) (*RootSignature, error) {
	signature, err := NewRootSignature(parameters...)
	if err != nil {
		return nil, err
	}

	err = c.device.InitRootSignature(signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build the native root signature")
	}
	return signature, nil
}

// CreateConstantBufferView writes a view into a freshly allocated static descriptor
func (c *Core) CreateConstantBufferView(location GPUAddress, size int) CPUDescriptorHandle {
	dest := c.descriptorAllocators[DescriptorHeapView].Allocate(1)
	c.device.CreateConstantBufferView(location, size, dest)
	return dest
}

// CreateSampler writes a sampler into a freshly allocated static descriptor
func (c *Core) CreateSampler(desc SamplerDesc) CPUDescriptorHandle {
	dest := c.descriptorAllocators[DescriptorHeapSampler].Allocate(1)
	c.device.CreateSampler(desc, dest)
	return dest
}

// Statistics is a snapshot of every pool the Core owns
type Statistics struct {
	Pages            [linearAllocatorTypeCount]memutils.RingStatistics
	Heaps            [2]memutils.RingStatistics
	Total            memutils.RingStatistics
	TrackedResources int
	Contexts         int
	ContextsInUse    int
	Submissions      int
	FixupLists       int
	FrameCount       int
}

func (c *Core) CalculateStatistics(stats *Statistics) {
	for i := range stats.Pages {
		stats.Pages[i].Clear()
		c.pageManagers[i].AddStatistics(&stats.Pages[i])
	}
	for i := range stats.Heaps {
		stats.Heaps[i].Clear()
		c.heapPools[i].AddStatistics(&stats.Heaps[i])
	}

	stats.Total.Clear()
	for i := range stats.Pages {
		stats.Total.AddRingStatistics(&stats.Pages[i])
	}
	for i := range stats.Heaps {
		stats.Total.AddRingStatistics(&stats.Heaps[i])
	}

	stats.TrackedResources = c.states.TrackedCount()
	stats.Contexts = c.contexts.ContextCount()
	stats.ContextsInUse = c.contexts.InUseCount()
	stats.Submissions = c.queue.SubmittedCount()
	stats.FixupLists = c.queue.FixupListCount()
	stats.FrameCount = c.frameCount
}

func printRingStatistics(json jwriter.ObjectState, stats *memutils.RingStatistics) {
	json.Name("BlockCount").Int(stats.BlockCount)
	json.Name("BlockBytes").Int(stats.BlockBytes)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)
	json.Name("Available").Int(stats.AvailableCount)
	json.Name("InFlight").Int(stats.InFlightCount)
	json.Name("CurrentSlot").Int(stats.CurrentSlot)
	json.Name("FlipCount").Int(stats.FlipCount)

	slots := json.Name("InFlightPerSlot").Array()
	for _, count := range stats.InFlightPerSlot {
		slots.Int(count)
	}
	slots.End()
}

// BuildStatsString returns a json dump of the Core's statistics. If detailedMap is true, every
// page and heap pool is listed as well.
func (c *Core) BuildStatsString(detailedMap bool) string {
	writer := jwriter.NewWriter()
	root := writer.Object()
	c.PrintJson(root, detailedMap)
	root.End()

	return string(writer.Bytes())
}

// PrintJson writes the Core's statistics into an open json object
func (c *Core) PrintJson(root jwriter.ObjectState, detailedMap bool) {
	var stats Statistics
	c.CalculateStatistics(&stats)

	root.Name("FrameCount").Int(stats.FrameCount)
	root.Name("TrackedResources").Int(stats.TrackedResources)
	root.Name("Contexts").Int(stats.Contexts)
	root.Name("ContextsInUse").Int(stats.ContextsInUse)
	root.Name("Submissions").Int(stats.Submissions)
	root.Name("FixupLists").Int(stats.FixupLists)

	totalObj := root.Name("Total").Object()
	printRingStatistics(totalObj, &stats.Total)
	totalObj.End()

	pagesObj := root.Name("Pages").Object()
	for i := range stats.Pages {
		pageObj := pagesObj.Name(LinearAllocatorType(i).String()).Object()
		printRingStatistics(pageObj, &stats.Pages[i])
		pageObj.End()
	}
	pagesObj.End()

	heapsObj := root.Name("Heaps").Object()
	for i := range stats.Heaps {
		heapObj := heapsObj.Name(DescriptorHeapKind(i).String()).Object()
		printRingStatistics(heapObj, &stats.Heaps[i])
		heapObj.End()
	}
	heapsObj.End()

	descriptorsObj := root.Name("StaticDescriptorsRemaining").Object()
	for kind := DescriptorHeapKind(0); kind < DescriptorHeapKindCount; kind++ {
		descriptorsObj.Name(kind.String()).Int(c.descriptorAllocators[kind].Remaining())
	}
	descriptorsObj.End()

	if detailedMap {
		mapObj := root.Name("DetailedMap").Object()
		for i := range c.pageManagers {
			pageObj := mapObj.Name(LinearAllocatorType(i).String()).Object()
			c.pageManagers[i].PrintDetailedMap(pageObj)
			pageObj.End()
		}
		for i := range c.heapPools {
			heapObj := mapObj.Name(DescriptorHeapKind(i).String()).Object()
			c.heapPools[i].PrintDetailedMap(heapObj)
			heapObj.End()
		}
		mapObj.End()
	}
}
