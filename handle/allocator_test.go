package handle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateUnique(t *testing.T) {
	const capacity = 64
	allocator := New(capacity)

	seen := map[Handle]bool{}
	for i := 0; i < capacity; i++ {
		h := allocator.Allocate()
		require.True(t, h.IsValid())
		require.Less(t, int(h), capacity)
		require.False(t, seen[h], "handle %s issued twice", h)
		seen[h] = true
	}

	require.Equal(t, capacity, allocator.Outstanding())
	require.Equal(t, Invalid, allocator.Allocate())
	require.NoError(t, allocator.Validate())
}

func TestFreeListIsLIFO(t *testing.T) {
	allocator := New(8)

	first := allocator.Allocate()
	second := allocator.Allocate()
	third := allocator.Allocate()
	require.Equal(t, Handle(0), first)
	require.Equal(t, Handle(1), second)
	require.Equal(t, Handle(2), third)

	allocator.Deallocate(second)
	require.Equal(t, second, allocator.Allocate())

	allocator.Deallocate(first)
	allocator.Deallocate(third)
	require.Equal(t, third, allocator.Allocate())
	require.Equal(t, first, allocator.Allocate())
	require.NoError(t, allocator.Validate())
}

func TestAllocateAfterExhaustion(t *testing.T) {
	allocator := New(2)

	a := allocator.Allocate()
	b := allocator.Allocate()
	require.Equal(t, Invalid, allocator.Allocate())

	allocator.Deallocate(a)
	require.Equal(t, a, allocator.Allocate())
	require.Equal(t, Invalid, allocator.Allocate())

	allocator.Deallocate(b)
	allocator.Deallocate(a)
	require.Equal(t, 0, allocator.Outstanding())
	require.NoError(t, allocator.Validate())
}

func TestDoubleDeallocatePanics(t *testing.T) {
	allocator := New(4)
	h := allocator.Allocate()
	allocator.Deallocate(h)

	require.Panics(t, func() {
		allocator.Deallocate(h)
	})
}

func TestDeallocateOutOfRangePanics(t *testing.T) {
	allocator := New(4)

	require.Panics(t, func() {
		allocator.Deallocate(Handle(4))
	})
	require.Panics(t, func() {
		allocator.Deallocate(Invalid)
	})
}

func TestDeallocateNeverIssuedPanics(t *testing.T) {
	allocator := New(4)
	_ = allocator.Allocate()

	require.Panics(t, func() {
		allocator.Deallocate(Handle(3))
	})
}

func TestZeroCapacity(t *testing.T) {
	allocator := New(0)
	require.Equal(t, Invalid, allocator.Allocate())
	require.NoError(t, allocator.Validate())
}

func TestReset(t *testing.T) {
	allocator := New(3)
	allocator.Allocate()
	allocator.Allocate()
	allocator.Reset()

	require.Equal(t, 0, allocator.Outstanding())
	require.False(t, allocator.IsAllocated(0))
	require.Equal(t, Handle(0), allocator.Allocate())
	require.True(t, allocator.IsAllocated(0))
}
