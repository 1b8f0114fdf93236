package gfx_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
)

func TestContextManagerRecyclesAfterFramesInFlight(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})
	manager := core.Contexts()

	first, err := core.AllocateContext("first")
	require.NoError(t, err)
	second, err := core.AllocateContext("second")
	require.NoError(t, err)
	require.Equal(t, 2, manager.InUseCount())

	require.NoError(t, first.Finish())
	require.NoError(t, second.Finish())
	require.Equal(t, 0, manager.InUseCount())

	core.EndFrame()
	core.EndFrame()

	third, err := core.AllocateContext("third")
	require.NoError(t, err)
	require.NotSame(t, first, third)
	require.NotSame(t, second, third)
	require.Equal(t, 3, manager.ContextCount())
	require.NoError(t, third.Finish())

	core.EndFrame()

	// the most recently freed context is handed out first
	reused, err := core.AllocateContext("reused")
	require.NoError(t, err)
	require.Same(t, second, reused)
	require.Equal(t, "reused", reused.Name())
	require.True(t, reused.IsRecording())
	require.Equal(t, 0, reused.TouchedResourceCount())
	require.Equal(t, 3, manager.ContextCount())
	require.NoError(t, reused.Finish())
}

func TestContextManagerReusedContextStartsClean(t *testing.T) {
	core, device := newTestCore(t, gfx.CreateOptions{})
	buffer := createBuffer(t, core, "reused")

	ctx, err := core.AllocateContext("dirty")
	require.NoError(t, err)
	ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	ctx.ResourceBarrier(buffer, gfx.ResourceStateGenericRead, false)
	require.NoError(t, ctx.Finish())

	for i := 0; i < 3; i++ {
		core.EndFrame()
	}

	reused, err := core.AllocateContext("clean")
	require.NoError(t, err)
	require.Same(t, ctx, reused)
	require.Equal(t, gfx.ResourceStatePending, reused.CurrentState(buffer))
	require.Empty(t, commandsOf(reused.CommandList()))
	require.Equal(t, 0, reused.PendingBarrierCount())

	reused.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	require.NoError(t, reused.Finish())
	require.Empty(t, device.StateErrors())
	require.Equal(t, gfx.ResourceStateCopyDest, core.States().GetResourceStates(buffer.StateHandle()))
}

func TestContextManagerMaxContexts(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{MaxContexts: 2})

	first, err := core.AllocateContext("first")
	require.NoError(t, err)
	second, err := core.AllocateContext("second")
	require.NoError(t, err)

	require.Panics(t, func() {
		_, _ = core.AllocateContext("third")
	})

	require.NoError(t, first.Finish())
	require.NoError(t, second.Finish())
}

func TestContextManagerFreeChecks(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})

	ctx, err := core.AllocateContext("checked")
	require.NoError(t, err)
	require.Panics(t, func() {
		core.Contexts().FreeContext(ctx)
	})

	require.NoError(t, ctx.Finish())
	require.Panics(t, func() {
		core.Contexts().FreeContext(ctx)
	})
}
