package gfx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/gfxcore/internal/ring"
)

// ContextManager hands out recording contexts. A finished context's command list may still be
// executing, so finished contexts go through the same frame-delayed recycling as pages and heaps
// before they are handed out again.
type ContextManager struct {
	logger *slog.Logger
	device Device
	mutex  sync.Mutex

	states       *ResourceStatesPool
	queue        *CommandQueue
	cpuPages     *LinearAllocatorPageManager
	gpuPages     *LinearAllocatorPageManager
	viewHeaps    *DescriptorHeapPool
	samplerHeaps *DescriptorHeapPool

	maxContexts int
	ring        *ring.FrameRing[*GraphicsContext]
	contexts    []*GraphicsContext
	inUse       int
}

func (m *ContextManager) Init(logger *slog.Logger, device Device, options CreateOptions, core *Core) {
	if m.ring != nil {
		panic("attempted to initialize a context manager that is already in use")
	}

	m.logger = logger
	m.device = device
	m.states = core.states
	m.queue = &core.queue
	m.cpuPages = &core.pageManagers[LinearAllocatorCPUWritable]
	m.gpuPages = &core.pageManagers[LinearAllocatorGPUExclusive]
	m.viewHeaps = &core.heapPools[DescriptorHeapView]
	m.samplerHeaps = &core.heapPools[DescriptorHeapSampler]
	m.maxContexts = options.MaxContexts
	m.ring = ring.New[*GraphicsContext](options.FramesInFlight)
}

// InUseCount returns the number of contexts that are currently recording
func (m *ContextManager) InUseCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.inUse
}

// ContextCount returns the number of contexts the manager has created
func (m *ContextManager) ContextCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.contexts)
}

// AllocateContext returns a context that has begun recording
func (m *ContextManager) AllocateContext(name string) (*GraphicsContext, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ctx, found := m.ring.TakeAvailable(nil)
	if found {
		err := ctx.commandList.Reset()
		if err != nil {
			m.ring.AddAvailable(ctx)
			return nil, errors.Wrapf(err, "failed to reset the command list of context %d", ctx.id)
		}
	} else {
		if len(m.contexts) >= m.maxContexts {
			panic(fmt.Sprintf("all %d graphics contexts are in use or in flight", m.maxContexts))
		}

		commandList, err := m.device.CreateCommandList()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create a command list for a new context")
		}

		ctx = newGraphicsContext(m, len(m.contexts), commandList)
		m.contexts = append(m.contexts, ctx)

		m.logger.LogAttrs(context.Background(), slog.LevelDebug, "ContextManager::AllocateContext new context",
			slog.Int("id", ctx.id),
			slog.Int("contextCount", len(m.contexts)),
		)
	}

	m.inUse++
	ctx.Begin(name)
	return ctx, nil
}

// FreeContext returns a context whose command list has been closed. It becomes available
// once the current frame retires.
func (m *ContextManager) FreeContext(ctx *GraphicsContext) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if ctx.recording {
		panic(fmt.Sprintf("attempted to free context %q while it is still recording", ctx.name))
	}
	if m.ring.IsInFlight(ctx) {
		panic(fmt.Sprintf("context %q was freed twice", ctx.name))
	}

	m.inUse--
	m.ring.Stamp(ctx)
}

func (m *ContextManager) Flip() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.ring.Flip()
}

func (m *ContextManager) Destroy() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.ring == nil {
		return
	}

	if m.inUse > 0 {
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "ContextManager::Destroy contexts still recording",
			slog.Int("inUse", m.inUse),
		)
	}

	m.ring.Drain()
	m.contexts = nil
}
