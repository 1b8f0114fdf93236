package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	name string
	size int
}

func TestRecycleAfterFullCycle(t *testing.T) {
	r := New[*item](3)
	page := &item{name: "page", size: 64}

	r.Stamp(page)
	require.True(t, r.IsInFlight(page))

	reclaimed := r.Flip()
	require.Empty(t, reclaimed)
	_, ok := r.TakeAvailable(nil)
	require.False(t, ok, "reclaimed one flip after use")

	reclaimed = r.Flip()
	require.Empty(t, reclaimed)
	_, ok = r.TakeAvailable(nil)
	require.False(t, ok, "reclaimed two flips after use")

	reclaimed = r.Flip()
	require.Equal(t, []*item{page}, reclaimed)
	taken, ok := r.TakeAvailable(nil)
	require.True(t, ok)
	require.Same(t, page, taken)
	require.NoError(t, r.Validate())
}

func TestRestampDelaysRecycling(t *testing.T) {
	r := New[*item](3)
	page := &item{name: "page"}

	r.Stamp(page)
	r.Flip()
	r.Flip()
	// Written again two frames later, so the clock restarts
	r.Stamp(page)
	require.Equal(t, 1, r.InFlightCount())

	require.Empty(t, r.Flip())
	require.Empty(t, r.Flip())
	require.Equal(t, []*item{page}, r.Flip())
	require.NoError(t, r.Validate())
}

func TestTakeAvailableBackToFront(t *testing.T) {
	r := New[*item](2)
	small := &item{name: "small", size: 16}
	large := &item{name: "large", size: 128}
	medium := &item{name: "medium", size: 64}

	r.AddAvailable(small)
	r.AddAvailable(large)
	r.AddAvailable(medium)

	// Medium is scanned first and fits, even though large is also adequate
	taken, ok := r.TakeAvailable(func(it *item) bool { return it.size >= 32 })
	require.True(t, ok)
	require.Same(t, medium, taken)

	taken, ok = r.TakeAvailable(func(it *item) bool { return it.size >= 32 })
	require.True(t, ok)
	require.Same(t, large, taken)

	_, ok = r.TakeAvailable(func(it *item) bool { return it.size >= 32 })
	require.False(t, ok)
	require.Equal(t, 1, r.AvailableCount())
}

func TestStampAvailableItemPanics(t *testing.T) {
	r := New[*item](3)
	page := &item{}
	r.AddAvailable(page)

	require.Panics(t, func() {
		r.Stamp(page)
	})
}

func TestDrain(t *testing.T) {
	r := New[*item](3)
	a, b, c := &item{name: "a"}, &item{name: "b"}, &item{name: "c"}

	r.AddAvailable(a)
	r.Stamp(b)
	r.Flip()
	r.Stamp(c)

	all := r.Drain()
	require.ElementsMatch(t, []*item{a, b, c}, all)
	require.Equal(t, 0, r.AvailableCount())
	require.Equal(t, 0, r.InFlightCount())
	require.NoError(t, r.Validate())
}

func TestSingleFrameRing(t *testing.T) {
	r := New[*item](1)
	page := &item{}

	r.Stamp(page)
	require.Equal(t, []*item{page}, r.Flip())
}

func TestInvalidFrameCountPanics(t *testing.T) {
	require.Panics(t, func() {
		New[*item](0)
	})
}
