package gfx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/gfxcore/handle"
	"github.com/vkngwrapper/gfxcore/internal/ring"
)

// CommandQueue submits closed command lists to the device. It is the only place the last known
// state of a resource is updated: each submission's pending states are compared against the
// state pool, and any mismatch is corrected by a fixup command list that runs just ahead of the
// submission. The submission's final states are then written back to the pool.
type CommandQueue struct {
	logger *slog.Logger
	device Device
	states *ResourceStatesPool
	mutex  sync.Mutex

	fixupLists *ring.FrameRing[CommandList]
	fixupCount int
	barriers   []TransitionBarrier

	submittedCount int
}

func (q *CommandQueue) Init(logger *slog.Logger, device Device, states *ResourceStatesPool, framesInFlight int) {
	if q.fixupLists != nil {
		panic("attempted to initialize a command queue that is already in use")
	}

	q.logger = logger
	q.device = device
	q.states = states
	q.fixupLists = ring.New[CommandList](framesInFlight)
	q.barriers = make([]TransitionBarrier, 0, maxBarrierBatch)
}

// SubmittedCount returns the number of submissions the queue has executed
func (q *CommandQueue) SubmittedCount() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.submittedCount
}

// FixupListCount returns the number of fixup command lists the queue has created
func (q *CommandQueue) FixupListCount() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.fixupCount
}

func (q *CommandQueue) takeFixupList() (CommandList, error) {
	list, found := q.fixupLists.TakeAvailable(nil)
	if found {
		err := list.Reset()
		if err != nil {
			q.fixupLists.AddAvailable(list)
			return nil, errors.Wrap(err, "failed to reset a fixup command list")
		}
	} else {
		var err error
		list, err = q.device.CreateCommandList()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create a fixup command list")
		}
		q.fixupCount++
	}

	q.fixupLists.Stamp(list)
	return list, nil
}

func (q *CommandQueue) recordFixups(submission *Submission, batchStates *swiss.Map[handle.Handle, ResourceState]) (CommandList, error) {
	q.barriers = q.barriers[:0]
	for _, pending := range submission.pending {
		before, found := batchStates.Get(pending.Handle)
		if !found {
			before = q.states.GetResourceStates(pending.Handle)
		}
		if before != pending.State {
			q.barriers = append(q.barriers, TransitionBarrier{
				Resource: pending.Resource.Native(),
				Before:   before,
				After:    pending.State,
			})
		}
	}

	if len(q.barriers) == 0 {
		return nil, nil
	}

	list, err := q.takeFixupList()
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(q.barriers); start += maxBarrierBatch {
		end := start + maxBarrierBatch
		if end > len(q.barriers) {
			end = len(q.barriers)
		}
		list.ResourceBarrier(q.barriers[start:end])
	}

	err = list.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to close the fixup command list for %q", submission.name)
	}
	return list, nil
}

// discard ends the recording episodes of submissions that will never execute. The state pool
// keeps the states it had before the batch.
func (q *CommandQueue) discard(submissions []*Submission) {
	for _, submission := range submissions {
		for _, final := range submission.final {
			q.states.release(final.Handle)
		}
	}
}

// Submit resolves and executes the submissions in order. The state pool is only updated once
// the device has accepted every command list; if resolution or execution fails, the whole
// batch is discarded and none of the submissions can be submitted again.
func (q *CommandQueue) Submit(submissions ...*Submission) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for _, submission := range submissions {
		if submission.submitted {
			panic(fmt.Sprintf("submission %q was submitted twice", submission.name))
		}
		submission.submitted = true
	}

	// states the batch leaves resources in, ahead of the pool
	batchStates := swiss.NewMap[handle.Handle, ResourceState](16)
	lists := make([]CommandList, 0, len(submissions)*2)
	for _, submission := range submissions {
		fixup, err := q.recordFixups(submission, batchStates)
		if err != nil {
			q.discard(submissions)
			return err
		}
		if fixup != nil {
			lists = append(lists, fixup)

			q.logger.LogAttrs(context.Background(), slog.LevelDebug, "CommandQueue::Submit fixup",
				slog.String("submission", submission.name),
				slog.Int("barriers", len(q.barriers)),
			)
		}
		lists = append(lists, submission.commandList)

		for _, final := range submission.final {
			batchStates.Put(final.Handle, final.State)
		}
	}

	err := q.device.ExecuteCommandLists(lists...)
	if err != nil {
		q.discard(submissions)
		return errors.Wrapf(err, "failed to execute %d command lists", len(lists))
	}

	for _, submission := range submissions {
		for _, final := range submission.final {
			q.states.SetResourceStates(final.Handle, final.State)
			q.states.release(final.Handle)
		}
		q.submittedCount++
	}
	return nil
}

// Flip retires the oldest frame in flight, making its fixup command lists reusable
func (q *CommandQueue) Flip() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.fixupLists.Flip()
}

func (q *CommandQueue) Destroy() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.fixupLists == nil {
		return
	}
	q.fixupLists.Drain()
}
