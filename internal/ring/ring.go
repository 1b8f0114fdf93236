// Package ring implements the frame-delayed recycling shared by the linear allocator page
// manager and the descriptor heap pools.
//
// A FrameRing holds one list of available items and one in-flight slot per frame in flight.
// Items handed out (or written again) are stamped into the current slot. Flip advances the
// current slot and returns everything that was sitting in the slot it lands on, since those
// items have gone untouched for a whole cycle of frames.
package ring

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

type FrameRing[T comparable] struct {
	available []T
	inFlight  [][]T
	slotOf    *swiss.Map[T, int]

	current   int
	flipCount int
}

// New creates a FrameRing with one slot per frame in flight
func New[T comparable](framesInFlight int) *FrameRing[T] {
	if framesInFlight < 1 {
		panic(fmt.Sprintf("a frame ring needs at least one frame in flight, got %d", framesInFlight))
	}

	return &FrameRing[T]{
		inFlight: make([][]T, framesInFlight),
		slotOf:   swiss.NewMap[T, int](16),
	}
}

func (r *FrameRing[T]) FramesInFlight() int { return len(r.inFlight) }
func (r *FrameRing[T]) CurrentSlot() int    { return r.current }
func (r *FrameRing[T]) FlipCount() int      { return r.flipCount }
func (r *FrameRing[T]) AvailableCount() int { return len(r.available) }
func (r *FrameRing[T]) InFlightCount() int  { return r.slotOf.Count() }

// SlotCount returns the number of items in the provided in-flight slot
func (r *FrameRing[T]) SlotCount(slot int) int { return len(r.inFlight[slot]) }

// AddAvailable places a brand-new or fully retired item on the available list
func (r *FrameRing[T]) AddAvailable(item T) {
	if r.slotOf.Has(item) {
		panic("attempted to mark an in-flight item as available")
	}
	r.available = append(r.available, item)
}

// TakeAvailable scans the available list back to front and removes the first item that
// satisfies fits. No attempt is made to find the best fit.
func (r *FrameRing[T]) TakeAvailable(fits func(item T) bool) (T, bool) {
	for i := len(r.available) - 1; i >= 0; i-- {
		item := r.available[i]
		if fits == nil || fits(item) {
			r.available = slices.Delete(r.available, i, i+1)
			return item, true
		}
	}

	var zero T
	return zero, false
}

// Stamp moves item into the current in-flight slot, removing it from whichever slot it
// previously occupied. An item must be taken off the available list before it is stamped.
func (r *FrameRing[T]) Stamp(item T) {
	slot, inFlight := r.slotOf.Get(item)
	if inFlight {
		if slot == r.current {
			return
		}
		r.removeFromSlot(slot, item)
	} else if slices.Contains(r.available, item) {
		panic("attempted to stamp an item that is still on the available list")
	}

	r.inFlight[r.current] = append(r.inFlight[r.current], item)
	r.slotOf.Put(item, r.current)
}

// IsInFlight reports whether item currently sits in one of the in-flight slots
func (r *FrameRing[T]) IsInFlight(item T) bool {
	return r.slotOf.Has(item)
}

func (r *FrameRing[T]) removeFromSlot(slot int, item T) {
	index := slices.Index(r.inFlight[slot], item)
	if index < 0 {
		panic(fmt.Sprintf("frame ring bookkeeping lost an item from slot %d", slot))
	}
	r.inFlight[slot] = slices.Delete(r.inFlight[slot], index, index+1)
	r.slotOf.Delete(item)
}

// Flip advances the current slot and moves everything in the new current slot to the
// available list. The reclaimed items are returned in the order they were stamped.
func (r *FrameRing[T]) Flip() []T {
	r.current = (r.current + 1) % len(r.inFlight)
	r.flipCount++

	reclaimed := r.inFlight[r.current]
	r.inFlight[r.current] = nil

	for _, item := range reclaimed {
		r.slotOf.Delete(item)
	}
	r.available = append(r.available, reclaimed...)

	return reclaimed
}

// Drain empties the ring, returning every item it knew about
func (r *FrameRing[T]) Drain() []T {
	all := r.available
	for slot := range r.inFlight {
		all = append(all, r.inFlight[slot]...)
		r.inFlight[slot] = nil
	}

	r.available = nil
	r.slotOf = swiss.NewMap[T, int](16)
	return all
}

// Each visits every item, available items first
func (r *FrameRing[T]) Each(visit func(item T, inFlight bool)) {
	for _, item := range r.available {
		visit(item, false)
	}
	for _, slot := range r.inFlight {
		for _, item := range slot {
			visit(item, true)
		}
	}
}

// Validate verifies that the slot index agrees with the slot contents
func (r *FrameRing[T]) Validate() error {
	count := 0
	for slotIndex, slot := range r.inFlight {
		for _, item := range slot {
			recorded, ok := r.slotOf.Get(item)
			if !ok {
				return errors.Newf("an item in slot %d is missing from the slot index", slotIndex)
			}
			if recorded != slotIndex {
				return errors.Newf("an item in slot %d is indexed as being in slot %d", slotIndex, recorded)
			}
			count++
		}
	}

	if count != r.slotOf.Count() {
		return errors.Newf("slot index holds %d items but the slots hold %d", r.slotOf.Count(), count)
	}

	for _, item := range r.available {
		if r.slotOf.Has(item) {
			return errors.New("an item is both available and in flight")
		}
	}

	return nil
}
