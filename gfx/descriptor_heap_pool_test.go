package gfx_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
	"github.com/vkngwrapper/gfxcore/memutils"
	"github.com/vkngwrapper/gfxcore/softgpu"
)

func newHeapPool(t *testing.T, options gfx.CreateOptions, kind gfx.DescriptorHeapKind) (*gfx.DescriptorHeapPool, *softgpu.Device) {
	device := softgpu.NewDevice(logger)

	var pool gfx.DescriptorHeapPool
	pool.Init(logger, device, options, kind)
	t.Cleanup(pool.Destroy)

	return &pool, device
}

func TestDescriptorHeapPoolRecyclesAfterFramesInFlight(t *testing.T) {
	pool, device := newHeapPool(t, gfx.CreateOptions{DescriptorsPerHeap: 8}, gfx.DescriptorHeapView)

	first, err := pool.Allocate()
	require.NoError(t, err)
	require.Equal(t, gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapView, Count: 8, ShaderVisible: true}, first.Desc())
	pool.Deallocate(first)

	pool.Flip()
	pool.Flip()

	// T+2: the first heap may still be read by the GPU
	second, err := pool.Allocate()
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.Equal(t, 2, pool.HeapCount())

	pool.Flip()

	// T+3: the first heap is safe to reuse
	third, err := pool.Allocate()
	require.NoError(t, err)
	require.Same(t, first, third)
	require.Equal(t, 2, pool.HeapCount())
	require.Equal(t, 2, device.Stats().HeapsCreated)
}

func TestDescriptorHeapPoolDeallocateRestamps(t *testing.T) {
	pool, _ := newHeapPool(t, gfx.CreateOptions{}, gfx.DescriptorHeapSampler)
	require.Equal(t, gfx.DefaultSamplersPerHeap, pool.HeapSize())

	heap, err := pool.Allocate()
	require.NoError(t, err)

	pool.Flip()
	pool.Deallocate(heap)

	pool.Flip()
	pool.Flip()

	var stats memutils.RingStatistics
	pool.AddStatistics(&stats)
	require.Equal(t, 0, stats.AvailableCount)
	require.Equal(t, 1, stats.InFlightCount)

	pool.Flip()

	stats.Clear()
	pool.AddStatistics(&stats)
	require.Equal(t, 1, stats.AvailableCount)
	require.Equal(t, 0, stats.InFlightCount)
	require.Equal(t, 4, stats.FlipCount)
	require.NoError(t, pool.Validate())
}

func TestDescriptorHeapPoolRejectsForeignHeaps(t *testing.T) {
	pool, device := newHeapPool(t, gfx.CreateOptions{}, gfx.DescriptorHeapView)

	foreign, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapView, Count: 4, ShaderVisible: true})
	require.NoError(t, err)

	require.Panics(t, func() {
		pool.Deallocate(foreign)
	})
}

func TestDescriptorHeapPoolOnlyShaderVisibleKinds(t *testing.T) {
	device := softgpu.NewDevice(logger)

	var pool gfx.DescriptorHeapPool
	require.Panics(t, func() {
		pool.Init(logger, device, gfx.CreateOptions{}, gfx.DescriptorHeapRenderTarget)
	})
}

func TestDescriptorHeapPoolDestroy(t *testing.T) {
	device := softgpu.NewDevice(logger)

	var pool gfx.DescriptorHeapPool
	pool.Init(logger, device, gfx.CreateOptions{}, gfx.DescriptorHeapView)

	_, err := pool.Allocate()
	require.NoError(t, err)
	_, err = pool.Allocate()
	require.NoError(t, err)
	require.Equal(t, 2, device.Stats().LiveHeaps)

	pool.Destroy()
	require.Equal(t, 0, device.Stats().LiveHeaps)
	require.Equal(t, 0, pool.HeapCount())
}
