// Package handle issues small integer handles out of a fixed-capacity table.
//
// Handles are reclaimed through a singly-linked free list that lives in a side array of
// "next" indices, one per slot. A slot whose next index holds the allocated marker is live;
// every other slot is on the free list. Misuse (double free, freeing a handle that was never
// issued) is a programmer error and panics.
package handle

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Handle is an opaque index into a fixed-capacity table
type Handle uint32

const (
	// Invalid is returned by Allocate when the table is full, and can be used by consumers
	// as the "no handle" value
	Invalid Handle = ^Handle(0)

	// allocatedMarker is stored in the next slot of every live handle
	allocatedMarker Handle = Invalid
	// listEnd terminates the free list
	listEnd Handle = Invalid - 1

	// MaxCapacity is the largest table an Allocator can manage
	MaxCapacity = 1<<31 - 1
)

// IsValid returns false for the Invalid sentinel
func (h Handle) IsValid() bool { return h != Invalid }

func (h Handle) String() string {
	if h == Invalid {
		return "Handle(invalid)"
	}
	return fmt.Sprintf("Handle(%d)", uint32(h))
}

// Allocator is a fixed-capacity free list of handles in [0, capacity). It is not synchronized:
// the owner is responsible for serializing access.
type Allocator struct {
	next        []Handle
	head        Handle
	outstanding int
}

// New creates an Allocator that can have maxItemCount handles outstanding at once
func New(maxItemCount int) *Allocator {
	if maxItemCount < 0 || maxItemCount > MaxCapacity {
		panic(fmt.Sprintf("handle allocator capacity %d is outside [0, %d]", maxItemCount, MaxCapacity))
	}

	a := &Allocator{
		next: make([]Handle, maxItemCount),
	}
	a.Reset()
	return a
}

// Reset returns every handle to the free list, lowest index first
func (a *Allocator) Reset() {
	for i := range a.next {
		a.next[i] = Handle(i + 1)
	}
	if len(a.next) > 0 {
		a.next[len(a.next)-1] = listEnd
		a.head = 0
	} else {
		a.head = listEnd
	}
	a.outstanding = 0
}

// Capacity is the maximum number of handles that may be outstanding
func (a *Allocator) Capacity() int { return len(a.next) }

// Outstanding is the number of handles currently allocated
func (a *Allocator) Outstanding() int { return a.outstanding }

// Allocate removes the head of the free list and returns it, or returns Invalid if every
// handle is outstanding
func (a *Allocator) Allocate() Handle {
	if a.head == listEnd {
		return Invalid
	}

	h := a.head
	a.head = a.next[h]
	a.next[h] = allocatedMarker
	a.outstanding++

	return h
}

// Deallocate pushes h back onto the head of the free list. It panics if h is out of range
// or is not currently allocated.
func (a *Allocator) Deallocate(h Handle) {
	if int(h) >= len(a.next) {
		panic(fmt.Sprintf("attempted to deallocate %s from an allocator of capacity %d", h, len(a.next)))
	}
	if a.next[h] != allocatedMarker {
		panic(fmt.Sprintf("attempted to deallocate %s, which is already free", h))
	}

	a.next[h] = a.head
	a.head = h
	a.outstanding--
}

// IsAllocated reports whether h is currently outstanding
func (a *Allocator) IsAllocated(h Handle) bool {
	return int(h) < len(a.next) && a.next[h] == allocatedMarker
}

// Validate walks the free list and verifies that it agrees with the outstanding count
func (a *Allocator) Validate() error {
	free := 0
	for h := a.head; h != listEnd; h = a.next[h] {
		if int(h) >= len(a.next) {
			return errors.Newf("free list reached out-of-range slot %d", uint32(h))
		}
		if a.next[h] == allocatedMarker {
			return errors.Newf("free list reached %s, which is marked allocated", h)
		}
		free++
		if free > len(a.next) {
			return errors.New("free list contains a cycle")
		}
	}

	allocated := 0
	for _, next := range a.next {
		if next == allocatedMarker {
			allocated++
		}
	}

	if allocated != a.outstanding {
		return errors.Newf("%d slots are marked allocated but %d handles are outstanding", allocated, a.outstanding)
	}
	if free+allocated != len(a.next) {
		return errors.Newf("%d free and %d allocated slots do not add up to capacity %d", free, allocated, len(a.next))
	}

	return nil
}
