package gfx_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
	"github.com/vkngwrapper/gfxcore/handle"
)

func TestResourceStatesPoolSetAndGet(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})
	pool := core.States()
	buffer := createBuffer(t, core, "state")

	pool.SetResourceStates(buffer.StateHandle(), gfx.ResourceStateIndexBuffer)
	require.Equal(t, gfx.ResourceStateIndexBuffer, pool.GetResourceStates(buffer.StateHandle()))
	require.Equal(t, 1, pool.TrackedCount())
	require.NoError(t, pool.Validate())

	require.Panics(t, func() {
		pool.SetResourceStates(buffer.StateHandle(), gfx.ResourceStatePending)
	})

	core.DestroyResource(buffer)
	require.Equal(t, 0, pool.TrackedCount())
	require.NoError(t, pool.Validate())
}

func TestResourceStatesPoolRejectsFreeHandles(t *testing.T) {
	pool := gfx.NewResourceStatesPool(logger, 4)

	require.Panics(t, func() {
		pool.GetResourceStates(handle.Handle(0))
	})
	require.Panics(t, func() {
		pool.SetResourceStates(handle.Handle(1), gfx.ResourceStateCommon)
	})
	require.Panics(t, func() {
		pool.DeallocateHandle(handle.Invalid)
	})
	require.Panics(t, func() {
		pool.Resource(handle.Handle(3))
	})
}

func TestResourceStatesPoolReleasedAfterSubmit(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})
	buffer := createBuffer(t, core, "shared")

	first, err := core.AllocateContext("first")
	require.NoError(t, err)
	second, err := core.AllocateContext("second")
	require.NoError(t, err)
	first.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	second.ResourceBarrier(buffer, gfx.ResourceStateGenericRead, false)

	require.NoError(t, first.Finish())
	require.Panics(t, func() {
		core.DestroyResource(buffer)
	})

	require.NoError(t, second.Finish())
	core.DestroyResource(buffer)
}

func TestResourceStatesPoolParallelRecording(t *testing.T) {
	core, device := newTestCore(t, gfx.CreateOptions{})
	texture, err := core.CreateTexture(gfx.TextureDesc{
		Name:   "shared",
		Width:  16,
		Height: 16,
		Format: gfx.FormatR8G8B8A8Unorm,
		Usage:  gfx.TextureUsageShaderResource,
	})
	require.NoError(t, err)

	contexts := make([]*gfx.GraphicsContext, 8)
	for i := range contexts {
		contexts[i], err = core.AllocateContext(fmt.Sprintf("reader %d", i))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, ctx := range contexts {
		wg.Add(1)
		go func(ctx *gfx.GraphicsContext) {
			defer wg.Done()
			ctx.ResourceBarrier(texture, gfx.ResourceStatePixelShaderResource, false)
		}(ctx)
	}
	wg.Wait()

	submissions := make([]*gfx.Submission, 0, len(contexts))
	for _, ctx := range contexts {
		submission, err := ctx.Close()
		require.NoError(t, err)
		submissions = append(submissions, submission)
	}

	require.Panics(t, func() {
		core.DestroyResource(texture)
	})

	require.NoError(t, core.Queue().Submit(submissions...))
	for _, ctx := range contexts {
		core.Contexts().FreeContext(ctx)
	}
	require.Empty(t, device.StateErrors())
	require.NoError(t, core.Validate())
	require.NotPanics(t, func() {
		core.DestroyResource(texture)
	})
}
