package gfx

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/gfxcore/handle"
	"github.com/vkngwrapper/gfxcore/memutils"
)

type resourceStateEntry struct {
	resource *GPUResource
	state    ResourceState
	// users counts recording episodes that have observed the resource and not yet been
	// resolved by the command queue. Contexts recording in parallel may share a resource.
	users atomic.Int32
}

// ResourceStatesPool is a handle-indexed table of the last known hardware state of every
// tracked resource. State reads and writes are not synchronized: only the command queue updates
// states, while it resolves submissions. Episode counts may change from any recording goroutine.
type ResourceStatesPool struct {
	logger  *slog.Logger
	handles *handle.Allocator
	entries []resourceStateEntry
}

func NewResourceStatesPool(logger *slog.Logger, maxResources int) *ResourceStatesPool {
	return &ResourceStatesPool{
		logger:  logger,
		handles: handle.New(maxResources),
		entries: make([]resourceStateEntry, maxResources),
	}
}

// AllocateHandle starts tracking resource, recording the initial state for its kind
func (p *ResourceStatesPool) AllocateHandle(resource *GPUResource) handle.Handle {
	h := p.handles.Allocate()
	if h == handle.Invalid {
		panic(errors.Wrapf(memutils.ExhaustedError, "resource state pool: %d resources are already tracked", p.handles.Capacity()))
	}

	entry := &p.entries[h]
	entry.resource = resource
	entry.state = InitialResourceState(resource.Kind())
	entry.users.Store(0)

	p.logger.LogAttrs(context.Background(), slog.LevelDebug, "ResourceStatesPool::AllocateHandle",
		slog.String("resource", resource.Name()),
		slog.Int("handle", int(h)),
		slog.String("state", p.entries[h].state.String()),
	)
	return h
}

// DeallocateHandle stops tracking the resource behind h. It panics if a recording episode
// still references the resource.
func (p *ResourceStatesPool) DeallocateHandle(h handle.Handle) {
	p.checkHandle(h)

	entry := &p.entries[h]
	if users := entry.users.Load(); users > 0 {
		panic(fmt.Sprintf("attempted to release the state handle of %q while %d recording episodes still use it", entry.resource.Name(), users))
	}

	entry.resource = nil
	entry.state = ResourceStateCommon
	p.handles.Deallocate(h)
}

// SetResourceStates overwrites the tracked state of h
func (p *ResourceStatesPool) SetResourceStates(h handle.Handle, state ResourceState) {
	p.checkHandle(h)
	if state == ResourceStatePending {
		panic("the pending state cannot be stored as a resource's last known state")
	}
	p.entries[h].state = state
}

// GetResourceStates returns the tracked state of h
func (p *ResourceStatesPool) GetResourceStates(h handle.Handle) ResourceState {
	p.checkHandle(h)
	return p.entries[h].state
}

// Resource returns the resource tracked by h
func (p *ResourceStatesPool) Resource(h handle.Handle) *GPUResource {
	p.checkHandle(h)
	return p.entries[h].resource
}

// TrackedCount returns the number of resources with a live handle
func (p *ResourceStatesPool) TrackedCount() int {
	return p.handles.Outstanding()
}

func (p *ResourceStatesPool) acquire(h handle.Handle) {
	p.checkHandle(h)
	p.entries[h].users.Add(1)
}

func (p *ResourceStatesPool) release(h handle.Handle) {
	p.checkHandle(h)
	if p.entries[h].users.Add(-1) < 0 {
		p.entries[h].users.Add(1)
		panic(fmt.Sprintf("released %s more times than it was acquired", h))
	}
}

func (p *ResourceStatesPool) checkHandle(h handle.Handle) {
	if !p.handles.IsAllocated(h) {
		panic(fmt.Sprintf("attempted to use resource state %s, which has not been allocated", h))
	}
}

func (p *ResourceStatesPool) Validate() error {
	err := p.handles.Validate()
	if err != nil {
		return errors.Wrap(err, "resource state handles are inconsistent")
	}

	for i := range p.entries {
		h := handle.Handle(i)
		allocated := p.handles.IsAllocated(h)
		entry := &p.entries[i]

		if allocated && entry.resource == nil {
			return errors.Newf("%s is allocated but has no resource", h)
		} else if !allocated && (entry.resource != nil || entry.users.Load() != 0) {
			return errors.Newf("%s is free but still references a resource", h)
		}
		if allocated && entry.resource.stateHandle != h {
			return errors.Newf("%s tracks %q, which believes it is tracked by %s", h, entry.resource.Name(), entry.resource.stateHandle)
		}
	}

	return nil
}
