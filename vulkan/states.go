package vulkan

import (
	"math/bits"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/gfxcore/gfx"
)

type stateUsage struct {
	access core1_0.AccessFlags
	stages core1_0.PipelineStageFlags
	layout core1_0.ImageLayout
}

var stateUsages = map[gfx.ResourceState]stateUsage{
	gfx.ResourceStateVertexAndConstantBuffer: {
		access: core1_0.AccessVertexAttributeRead | core1_0.AccessUniformRead,
		stages: core1_0.PipelineStageVertexInput | core1_0.PipelineStageVertexShader | core1_0.PipelineStageFragmentShader,
		layout: core1_0.ImageLayoutGeneral,
	},
	gfx.ResourceStateIndexBuffer: {
		access: core1_0.AccessIndexRead,
		stages: core1_0.PipelineStageVertexInput,
		layout: core1_0.ImageLayoutGeneral,
	},
	gfx.ResourceStateRenderTarget: {
		access: core1_0.AccessColorAttachmentRead | core1_0.AccessColorAttachmentWrite,
		stages: core1_0.PipelineStageColorAttachmentOutput,
		layout: core1_0.ImageLayoutColorAttachmentOptimal,
	},
	gfx.ResourceStateUnorderedAccess: {
		access: core1_0.AccessShaderRead | core1_0.AccessShaderWrite,
		stages: core1_0.PipelineStageComputeShader | core1_0.PipelineStageFragmentShader,
		layout: core1_0.ImageLayoutGeneral,
	},
	gfx.ResourceStateDepthWrite: {
		access: core1_0.AccessDepthStencilAttachmentRead | core1_0.AccessDepthStencilAttachmentWrite,
		stages: core1_0.PipelineStageEarlyFragmentTests | core1_0.PipelineStageLateFragmentTests,
		layout: core1_0.ImageLayoutDepthStencilAttachmentOptimal,
	},
	gfx.ResourceStateDepthRead: {
		access: core1_0.AccessDepthStencilAttachmentRead,
		stages: core1_0.PipelineStageEarlyFragmentTests | core1_0.PipelineStageLateFragmentTests,
		layout: core1_0.ImageLayoutDepthStencilReadOnlyOptimal,
	},
	gfx.ResourceStateNonPixelShaderResource: {
		access: core1_0.AccessShaderRead,
		stages: core1_0.PipelineStageVertexShader | core1_0.PipelineStageComputeShader,
		layout: core1_0.ImageLayoutShaderReadOnlyOptimal,
	},
	gfx.ResourceStatePixelShaderResource: {
		access: core1_0.AccessShaderRead,
		stages: core1_0.PipelineStageFragmentShader,
		layout: core1_0.ImageLayoutShaderReadOnlyOptimal,
	},
	gfx.ResourceStateIndirectArgument: {
		access: core1_0.AccessIndirectCommandRead,
		stages: core1_0.PipelineStageDrawIndirect,
		layout: core1_0.ImageLayoutGeneral,
	},
	gfx.ResourceStateCopyDest: {
		access: core1_0.AccessTransferWrite,
		stages: core1_0.PipelineStageTransfer,
		layout: core1_0.ImageLayoutTransferDstOptimal,
	},
	gfx.ResourceStateCopySource: {
		access: core1_0.AccessTransferRead,
		stages: core1_0.PipelineStageTransfer,
		layout: core1_0.ImageLayoutTransferSrcOptimal,
	},
	gfx.ResourceStateResolveDest: {
		access: core1_0.AccessTransferWrite,
		stages: core1_0.PipelineStageTransfer,
		layout: core1_0.ImageLayoutTransferDstOptimal,
	},
	gfx.ResourceStateResolveSource: {
		access: core1_0.AccessTransferRead,
		stages: core1_0.PipelineStageTransfer,
		layout: core1_0.ImageLayoutTransferSrcOptimal,
	},
}

// usageOf folds every bit of state into one access mask and stage mask. Images in more than one
// state at once use the general layout. Common has no access and no stages; the caller decides
// which end of the pipe it stands for.
func usageOf(state gfx.ResourceState) stateUsage {
	if state == gfx.ResourceStateCommon {
		return stateUsage{layout: core1_0.ImageLayoutGeneral}
	}

	var usage stateUsage
	for remaining := uint32(state); remaining != 0; remaining &= remaining - 1 {
		bit := gfx.ResourceState(1) << bits.TrailingZeros32(remaining)
		single := stateUsages[bit]
		usage.access |= single.access
		usage.stages |= single.stages
	}

	if bits.OnesCount32(uint32(state)) == 1 {
		usage.layout = stateUsages[state].layout
	} else {
		usage.layout = core1_0.ImageLayoutGeneral
	}
	return usage
}

func sourceStages(usage stateUsage) core1_0.PipelineStageFlags {
	if usage.stages == 0 {
		return core1_0.PipelineStageTopOfPipe
	}
	return usage.stages
}

func destinationStages(usage stateUsage) core1_0.PipelineStageFlags {
	if usage.stages == 0 {
		return core1_0.PipelineStageBottomOfPipe
	}
	return usage.stages
}
