package vulkan

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/gfxcore/gfx"
)

const (
	viewSet    = 0
	samplerSet = 1
)

// InitRootSignature builds a pipeline layout with the shader-visible view heap at set 0 and the
// sampler heap at set 1. Each root parameter owns an 8-byte push constant slot: tables push the
// array element their base descriptor lives at, root views push the GPU address, and root
// constants are limited to two 32-bit values.
func (d *Device) InitRootSignature(signature *gfx.RootSignature) error {
	pushSize := signature.ParameterCount() * rootSlotSize
	if pushSize > maxPushConstantBytes {
		return errors.Errorf("root signature declares %d parameters, but at most %d fit in push constants", signature.ParameterCount(), maxPushConstantBytes/rootSlotSize)
	}
	for rootIndex := 0; rootIndex < signature.ParameterCount(); rootIndex++ {
		param := signature.Parameter(rootIndex)
		if param.Kind == gfx.RootParameterConstants && param.Num32BitValues*4 > rootSlotSize {
			return errors.Errorf("root constants at root index %d declare %d values, but at most %d fit in a push constant slot", rootIndex, param.Num32BitValues, rootSlotSize/4)
		}
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	views, err := d.setLayout(gfx.DescriptorHeapView, d.config.DescriptorsPerHeap)
	if err != nil {
		return err
	}
	samplers, err := d.setLayout(gfx.DescriptorHeapSampler, d.config.SamplersPerHeap)
	if err != nil {
		return err
	}

	info := core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{views, samplers},
	}
	if pushSize > 0 {
		info.PushConstantRanges = []core1_0.PushConstantRange{
			{
				StageFlags: allStages,
				Offset:     0,
				Size:       pushSize,
			},
		}
	}

	layout, _, err := d.driver.CreatePipelineLayout(nil, info)
	if err != nil {
		return errors.Wrap(err, "failed to create pipeline layout")
	}

	d.pipelineLayouts = append(d.pipelineLayouts, layout)
	signature.Native = layout
	return nil
}
