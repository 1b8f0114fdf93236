package gfx_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
	"github.com/vkngwrapper/gfxcore/softgpu"
)

func createBuffer(t *testing.T, core *gfx.Core, name string) *gfx.GPUResource {
	buffer, err := core.CreateBuffer(gfx.BufferDesc{Name: name, Size: 1024, Usage: gfx.BufferUsageVertex})
	require.NoError(t, err)
	return buffer
}

func TestResourceBarrierDefersFirstTransition(t *testing.T) {
	core, device := newTestCore(t, gfx.CreateOptions{})
	buffer := createBuffer(t, core, "vertices")

	ctx, err := core.AllocateContext("deferral")
	require.NoError(t, err)
	require.Equal(t, gfx.ResourceStatePending, ctx.CurrentState(buffer))

	ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, true)
	require.Equal(t, gfx.ResourceStateCopyDest, ctx.CurrentState(buffer))
	require.Empty(t, commandsOf(ctx.CommandList()))

	ctx.ResourceBarrier(buffer, gfx.ResourceStateVertexAndConstantBuffer, false)
	require.Equal(t, 1, ctx.PendingBarrierCount())
	ctx.FlushResourceBarriers()
	require.Equal(t, 0, ctx.PendingBarrierCount())

	commands := commandsOf(ctx.CommandList())
	require.Equal(t, []softgpu.Op{softgpu.OpResourceBarrier}, opsOf(commands))
	require.Equal(t, []gfx.TransitionBarrier{{
		Resource: buffer.Native(),
		Before:   gfx.ResourceStateCopyDest,
		After:    gfx.ResourceStateVertexAndConstantBuffer,
	}}, commands[0].Barriers)

	require.NoError(t, ctx.Finish())

	executed := device.TakeExecuted()
	require.Len(t, executed, 2)
	require.Equal(t, []gfx.TransitionBarrier{{
		Resource: buffer.Native(),
		Before:   gfx.ResourceStateCommon,
		After:    gfx.ResourceStateCopyDest,
	}}, executed[0].Barriers)

	require.Empty(t, device.StateErrors())
	require.Equal(t, gfx.ResourceStateVertexAndConstantBuffer, core.States().GetResourceStates(buffer.StateHandle()))
	require.Equal(t, gfx.ResourceStateVertexAndConstantBuffer, device.ResourceState(buffer.Native()))
}

func TestResourceBarrierElidesRedundantTransitions(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})
	buffer := createBuffer(t, core, "vertices")

	ctx, err := core.AllocateContext("elision")
	require.NoError(t, err)

	ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, true)
	require.Empty(t, commandsOf(ctx.CommandList()))

	ctx.ResourceBarrier(buffer, gfx.ResourceStateGenericRead, false)
	ctx.ResourceBarrier(buffer, gfx.ResourceStateGenericRead, true)
	require.Len(t, commandsOf(ctx.CommandList()), 1)
	require.Len(t, commandsOf(ctx.CommandList())[0].Barriers, 1)

	require.Panics(t, func() {
		ctx.ResourceBarrier(buffer, gfx.ResourceStatePending, false)
	})

	require.NoError(t, ctx.Finish())
}

func TestResourceBarrierBatchesSixteenTransitions(t *testing.T) {
	core, device := newTestCore(t, gfx.CreateOptions{})

	ctx, err := core.AllocateContext("batching")
	require.NoError(t, err)

	var buffers []*gfx.GPUResource
	for i := 0; i < 17; i++ {
		buffer := createBuffer(t, core, "batched")
		buffers = append(buffers, buffer)
		ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	}
	require.Equal(t, 0, ctx.PendingBarrierCount())

	for i, buffer := range buffers {
		ctx.ResourceBarrier(buffer, gfx.ResourceStateVertexAndConstantBuffer, false)
		if i == 15 {
			require.Equal(t, 0, ctx.PendingBarrierCount())
		}
	}
	require.Equal(t, 1, ctx.PendingBarrierCount())

	ctx.FlushResourceBarriers()
	commands := commandsOf(ctx.CommandList())
	require.Len(t, commands, 2)
	require.Len(t, commands[0].Barriers, 16)
	require.Len(t, commands[1].Barriers, 1)

	require.Equal(t, 17, ctx.TouchedResourceCount())

	require.NoError(t, ctx.Finish())
	require.Empty(t, device.StateErrors())
	require.Equal(t, 34, device.Stats().Barriers)
}

func TestDrawFlushesBarriersAndDescriptors(t *testing.T) {
	core, device := newTestCore(t, gfx.CreateOptions{})

	signature, err := core.CreateRootSignature(
		gfx.DescriptorTable(gfx.DescriptorRange{Kind: gfx.DescriptorRangeConstantBufferView, Count: 2}),
		gfx.DescriptorTable(gfx.DescriptorRange{Kind: gfx.DescriptorRangeSampler, Count: 1}),
		gfx.RootParameter{Kind: gfx.RootParameterConstantBufferView},
	)
	require.NoError(t, err)
	require.NotNil(t, signature.Native)

	buffer := createBuffer(t, core, "instances")
	views := []gfx.CPUDescriptorHandle{
		core.CreateConstantBufferView(0x1000, 256),
		core.CreateConstantBufferView(0x2000, 256),
	}
	sampler := core.CreateSampler(gfx.SamplerDesc{Filter: gfx.FilterLinear, AddressMode: gfx.AddressModeClamp})

	ctx, err := core.AllocateContext("draw")
	require.NoError(t, err)

	ctx.SetRootSignature(signature)
	ctx.SetRootSignature(signature)
	ctx.SetDynamicViewDescriptors(0, 0, views)
	ctx.SetDynamicSamplerDescriptor(1, 0, sampler)

	ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	ctx.ResourceBarrier(buffer, gfx.ResourceStateVertexAndConstantBuffer, false)

	vertices := make([]byte, 36)
	for i := range vertices {
		vertices[i] = byte(i)
	}
	require.NoError(t, ctx.SetDynamicVB(0, 12, vertices))
	require.NoError(t, ctx.SetDynamicIB16([]uint16{0, 1, 2}))
	require.NoError(t, ctx.SetDynamicConstantBufferView(2, []byte{0xAA, 0xBB}))
	require.NoError(t, ctx.DrawIndexed(3, 0, 0))

	commands := commandsOf(ctx.CommandList())
	require.Equal(t, []softgpu.Op{
		softgpu.OpSetGraphicsRootSignature,
		softgpu.OpIASetVertexBuffers,
		softgpu.OpIASetIndexBuffer,
		softgpu.OpSetGraphicsRootConstantBufferView,
		softgpu.OpResourceBarrier,
		softgpu.OpSetDescriptorHeaps,
		softgpu.OpSetGraphicsRootDescriptorTable,
		softgpu.OpSetDescriptorHeaps,
		softgpu.OpSetGraphicsRootDescriptorTable,
		softgpu.OpDrawIndexedInstanced,
	}, opsOf(commands))

	vertexView := commands[1].VertexBuffers[0]
	require.Equal(t, 12, vertexView.Stride)
	contents, err := device.ReadBuffer(vertexView.Location, len(vertices))
	require.NoError(t, err)
	require.Equal(t, vertices, contents)

	indexView := commands[2].IndexBuffer
	require.Equal(t, gfx.FormatR16Uint, indexView.Format)
	require.Equal(t, 6, indexView.Size)

	constants, err := device.ReadBuffer(commands[3].Location, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB}, constants)
	require.Zero(t, uint64(commands[3].Location)%uint64(gfx.DefaultLinearAllocatorAlignment))

	require.Len(t, commands[7].Heaps, 2)

	viewTable := commands[6].Table
	require.Equal(t, 0, commands[6].RootIndex)
	require.Equal(t, gfx.GPUAddress(0x1000), device.ShaderDescriptor(viewTable).Location)
	require.Equal(t, gfx.GPUAddress(0x2000), device.ShaderDescriptor(viewTable.Offset(1, softgpu.DescriptorSize)).Location)

	samplerTable := commands[8].Table
	require.Equal(t, 1, commands[8].RootIndex)
	require.Equal(t, gfx.FilterLinear, device.ShaderDescriptor(samplerTable).Sampler.Filter)

	require.NoError(t, ctx.Finish())
	require.Empty(t, device.StateErrors())
	require.Equal(t, 1, device.Stats().Draws)
}

func TestDrawRequiresRootSignature(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})

	ctx, err := core.AllocateContext("unbound")
	require.NoError(t, err)

	require.Panics(t, func() {
		_ = ctx.Draw(3, 0)
	})
	require.Panics(t, func() {
		_ = ctx.Dispatch(1, 1, 1)
	})
}

func TestDispatchCommitsComputeTables(t *testing.T) {
	core, device := newTestCore(t, gfx.CreateOptions{})

	signature, err := core.CreateRootSignature(
		gfx.DescriptorTable(gfx.DescriptorRange{Kind: gfx.DescriptorRangeConstantBufferView, Count: 1}),
	)
	require.NoError(t, err)
	view := core.CreateConstantBufferView(0x3000, 64)

	ctx, err := core.AllocateContext("compute")
	require.NoError(t, err)

	ctx.SetComputeRootSignature(signature)
	ctx.SetDynamicComputeViewDescriptors(0, 0, []gfx.CPUDescriptorHandle{view})
	require.NoError(t, ctx.Dispatch(8, 8, 1))

	commands := commandsOf(ctx.CommandList())
	require.Equal(t, []softgpu.Op{
		softgpu.OpSetComputeRootSignature,
		softgpu.OpSetDescriptorHeaps,
		softgpu.OpSetComputeRootDescriptorTable,
		softgpu.OpDispatch,
	}, opsOf(commands))
	require.Equal(t, []int{8, 8, 1}, commands[3].Args)

	require.NoError(t, ctx.Finish())
	require.Equal(t, 1, device.Stats().Dispatches)
}

func TestScratchMemory(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})

	ctx, err := core.AllocateContext("scratch")
	require.NoError(t, err)

	scratch, err := ctx.AllocateScratchMemory(512)
	require.NoError(t, err)
	require.Nil(t, scratch.Data)
	require.Equal(t, gfx.HeapDefault, scratch.Buffer.(*softgpu.Buffer).Desc().Heap)

	upload, err := ctx.AllocateUploadMemory(512)
	require.NoError(t, err)
	require.NotNil(t, upload.Data)
	require.Len(t, upload.Bytes(), 512)

	require.NoError(t, ctx.Finish())
}

func TestContextPanicsWhenNotRecording(t *testing.T) {
	core, _ := newTestCore(t, gfx.CreateOptions{})
	buffer := createBuffer(t, core, "late")

	ctx, err := core.AllocateContext("finished")
	require.NoError(t, err)
	require.NoError(t, ctx.Finish())
	require.False(t, ctx.IsRecording())

	require.Panics(t, func() {
		ctx.ResourceBarrier(buffer, gfx.ResourceStateCopyDest, false)
	})
	require.Panics(t, func() {
		_, _ = ctx.Close()
	})
}
