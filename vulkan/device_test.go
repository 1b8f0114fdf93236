package vulkan_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/gfxcore/gfx"
	"go.uber.org/mock/gomock"
)

func TestUploadBufferStaysMapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device := readyDevice(t, ctrl)

	buffer := mocks.NewDummyBuffer(driver.Device())
	memory := mocks.NewDummyDeviceMemory(driver.Device(), 1024)
	backing := make([]byte, 1024)

	driver.EXPECT().CreateBuffer(gomock.Any(), core1_0.BufferCreateInfo{
		Size:        1000,
		Usage:       core1_0.BufferUsageVertexBuffer | core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst,
		SharingMode: core1_0.SharingModeExclusive,
	}).Return(buffer, core1_0.VKSuccess, nil)
	driver.EXPECT().GetBufferMemoryRequirements(buffer).Return(&core1_0.MemoryRequirements{
		Size:           1024,
		Alignment:      256,
		MemoryTypeBits: 0b11,
	})
	driver.EXPECT().AllocateMemory(gomock.Any(), core1_0.MemoryAllocateInfo{
		AllocationSize:  1024,
		MemoryTypeIndex: 1,
	}).Return(memory, core1_0.VKSuccess, nil)
	driver.EXPECT().BindBufferMemory(buffer, memory, 0).Return(core1_0.VKSuccess, nil)
	driver.EXPECT().MapMemory(memory, 0, 1000, gomock.Any()).Return(unsafe.Pointer(&backing[0]), core1_0.VKSuccess, nil)

	upload, err := device.CreateBuffer(gfx.BufferDesc{
		Name:  "upload",
		Size:  1000,
		Heap:  gfx.HeapUpload,
		Usage: gfx.BufferUsageVertex,
	})
	require.NoError(t, err)
	require.Equal(t, gfx.ResourceKindUploadBuffer, upload.Kind())
	require.Equal(t, gfx.GPUAddress(0x10000), upload.GPUAddress())

	ptr, err := upload.Map()
	require.NoError(t, err)
	require.Equal(t, unsafe.Pointer(&backing[0]), ptr)

	require.Panics(t, upload.Destroy)
	upload.Unmap()
	require.Panics(t, upload.Unmap)

	expectDefaultBuffer(driver, 4096, core1_0.BufferUsageUniformBuffer)
	constants, err := device.CreateBuffer(gfx.BufferDesc{
		Name:  "constants",
		Size:  4096,
		Heap:  gfx.HeapDefault,
		Usage: gfx.BufferUsageConstant,
	})
	require.NoError(t, err)
	require.Equal(t, gfx.GPUAddress(0x20000), constants.GPUAddress())

	_, err = constants.Map()
	require.Error(t, err)

	driver.EXPECT().UnmapMemory(memory)
	driver.EXPECT().DestroyBuffer(buffer, nil)
	driver.EXPECT().FreeMemory(memory, nil)
	upload.Destroy()
	require.Panics(t, upload.Destroy)
}

func TestCreateBufferFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device := readyDevice(t, ctrl)

	_, err := device.CreateBuffer(gfx.BufferDesc{Name: "empty", Size: 0})
	require.Error(t, err)

	// No memory type in the requirements is host visible
	buffer := mocks.NewDummyBuffer(driver.Device())
	driver.EXPECT().CreateBuffer(gomock.Any(), gomock.Any()).Return(buffer, core1_0.VKSuccess, nil)
	driver.EXPECT().GetBufferMemoryRequirements(buffer).Return(&core1_0.MemoryRequirements{
		Size:           256,
		Alignment:      256,
		MemoryTypeBits: 0b01,
	})
	driver.EXPECT().DestroyBuffer(buffer, nil)

	_, err = device.CreateBuffer(gfx.BufferDesc{Name: "readback", Size: 256, Heap: gfx.HeapReadback})
	require.ErrorContains(t, err, "readback")
}

func TestTextureEntersInitialLayout(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device := readyDevice(t, ctrl)

	image := mocks.NewDummyImage(driver.Device())
	memory := mocks.NewDummyDeviceMemory(driver.Device(), 16384)

	driver.EXPECT().CreateImage(gomock.Any(), core1_0.ImageCreateInfo{
		ImageType:     core1_0.ImageType2D,
		Extent:        core1_0.Extent3D{Width: 64, Height: 64, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        core1_0.FormatD32SignedFloat,
		Tiling:        core1_0.ImageTilingOptimal,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         core1_0.ImageUsageDepthStencilAttachment | core1_0.ImageUsageTransferSrc | core1_0.ImageUsageTransferDst,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	}).Return(image, core1_0.VKSuccess, nil)
	driver.EXPECT().GetImageMemoryRequirements(image).Return(&core1_0.MemoryRequirements{
		Size:           16384,
		Alignment:      1024,
		MemoryTypeBits: 0b01,
	})
	driver.EXPECT().AllocateMemory(gomock.Any(), core1_0.MemoryAllocateInfo{
		AllocationSize:  16384,
		MemoryTypeIndex: 0,
	}).Return(memory, core1_0.VKSuccess, nil)
	driver.EXPECT().BindImageMemory(image, memory, 0).Return(core1_0.VKSuccess, nil)

	commandBuffer := core1_0.CommandBuffer{}
	driver.EXPECT().AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        core1_0.CommandPool{},
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}).Return([]core1_0.CommandBuffer{commandBuffer}, core1_0.VKSuccess, nil)
	driver.EXPECT().BeginCommandBuffer(commandBuffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	}).Return(core1_0.VKSuccess, nil)
	driver.EXPECT().CmdPipelineBarrier(commandBuffer,
		core1_0.PipelineStageTopOfPipe,
		core1_0.PipelineStageEarlyFragmentTests|core1_0.PipelineStageLateFragmentTests,
		gomock.Any(), gomock.Nil(), gomock.Nil(),
		[]core1_0.ImageMemoryBarrier{
			{
				SrcAccessMask:       0,
				DstAccessMask:       core1_0.AccessDepthStencilAttachmentRead | core1_0.AccessDepthStencilAttachmentWrite,
				OldLayout:           core1_0.ImageLayoutUndefined,
				NewLayout:           core1_0.ImageLayoutDepthStencilAttachmentOptimal,
				SrcQueueFamilyIndex: -1,
				DstQueueFamilyIndex: -1,
				Image:               image,
				SubresourceRange: core1_0.ImageSubresourceRange{
					AspectMask:     core1_0.ImageAspectDepth,
					BaseMipLevel:   0,
					LevelCount:     1,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
			},
		},
	).Return(nil)
	driver.EXPECT().EndCommandBuffer(commandBuffer).Return(core1_0.VKSuccess, nil)
	driver.EXPECT().QueueSubmit(core1_0.Queue{}, gomock.Nil(), core1_0.SubmitInfo{
		CommandBuffers: []core1_0.CommandBuffer{commandBuffer},
	}).Return(core1_0.VKSuccess, nil)

	depth, err := device.CreateTexture(gfx.TextureDesc{
		Name:   "depth",
		Width:  64,
		Height: 64,
		Format: gfx.FormatD32Float,
		Usage:  gfx.TextureUsageDepthStencil,
	})
	require.NoError(t, err)
	require.Equal(t, gfx.ResourceKindDepthStencil, depth.Kind())
	require.Equal(t, 16384, depth.Size())
	require.Equal(t, gfx.GPUAddress(0), depth.GPUAddress())

	_, err = depth.Map()
	require.Error(t, err)

	driver.EXPECT().DestroyImage(image, nil)
	driver.EXPECT().FreeMemory(memory, nil)
	depth.Destroy()
	require.Panics(t, depth.Destroy)
}

func TestCreateTextureRejectsUnknownFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, device := readyDevice(t, ctrl)

	_, err := device.CreateTexture(gfx.TextureDesc{Name: "odd", Width: 4, Height: 4, Format: gfx.FormatUnknown})
	require.ErrorContains(t, err, "unsupported format")

	_, err = device.CreateTexture(gfx.TextureDesc{Name: "flat", Width: 0, Height: 4, Format: gfx.FormatR8G8B8A8Unorm})
	require.ErrorContains(t, err, "invalid extent")
}

func TestDescriptorHeapLimits(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device := readyDevice(t, ctrl)

	_, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapView, Count: 0})
	require.Error(t, err)

	_, err = device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapRenderTarget, Count: 4, ShaderVisible: true})
	require.ErrorContains(t, err, "cannot be shader visible")

	_, err = device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapView, Count: 16, ShaderVisible: true})
	require.ErrorContains(t, err, "must hold 8 descriptors")

	// Render target heaps are handles only
	renderTargets, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapRenderTarget, Count: 4})
	require.NoError(t, err)
	require.False(t, renderTargets.CPUStart().IsNull())
	require.True(t, renderTargets.GPUStart().IsNull())

	driver.EXPECT().CreateDescriptorSetLayout(gomock.Any(), core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeSampler,
				DescriptorCount: testSamplersPerHeap,
				StageFlags:      allStages,
			},
		},
	}).Return(core1_0.DescriptorSetLayout{}, core1_0.VKSuccess, nil)
	driver.EXPECT().CreateDescriptorPool(gomock.Any(), core1_0.DescriptorPoolCreateInfo{
		MaxSets: 1,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeSampler,
				DescriptorCount: testSamplersPerHeap,
			},
		},
	}).Return(core1_0.DescriptorPool{}, core1_0.VKSuccess, nil)
	driver.EXPECT().AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: core1_0.DescriptorPool{},
		SetLayouts:     []core1_0.DescriptorSetLayout{{}},
	}).Return([]core1_0.DescriptorSet{{}}, core1_0.VKSuccess, nil)

	samplers, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapSampler, Count: testSamplersPerHeap, ShaderVisible: true})
	require.NoError(t, err)
	require.Equal(t, samplers.CPUStart().Ptr, uintptr(samplers.GPUStart().Ptr))
	require.NotEqual(t, renderTargets.CPUStart().Ptr, samplers.CPUStart().Ptr)

	driver.EXPECT().DestroyDescriptorPool(core1_0.DescriptorPool{}, nil)
	samplers.Destroy()
	renderTargets.Destroy()
	require.Panics(t, samplers.Destroy)

	driver.EXPECT().DestroyDescriptorSetLayout(core1_0.DescriptorSetLayout{}, nil)
	driver.EXPECT().DestroyCommandPool(core1_0.CommandPool{}, nil)
	device.Destroy()
}

func TestCopyDescriptorsSplitsRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device := readyDevice(t, ctrl)

	driver.EXPECT().CreateDescriptorSetLayout(gomock.Any(), gomock.Any()).Return(core1_0.DescriptorSetLayout{}, core1_0.VKSuccess, nil).Times(2)
	expectHeaps(driver, 2)

	source, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapView, Count: 4})
	require.NoError(t, err)
	dest, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapView, Count: testDescriptorsPerHeap, ShaderVisible: true})
	require.NoError(t, err)

	stride := device.DescriptorIncrementSize(gfx.DescriptorHeapView)

	driver.EXPECT().UpdateDescriptorSets(gomock.Nil(), []core1_0.CopyDescriptorSet{
		{SrcArrayElement: 0, DstArrayElement: 0, DescriptorCount: 1},
		{SrcArrayElement: 1, DstArrayElement: 5, DescriptorCount: 2},
	}).Return(nil)
	device.CopyDescriptors(
		[]gfx.CPUDescriptorHandle{dest.CPUStart(), dest.CPUStart().Offset(5, stride)}, []uint32{1, 2},
		[]gfx.CPUDescriptorHandle{source.CPUStart()}, []uint32{3},
		gfx.DescriptorHeapView,
	)

	driver.EXPECT().UpdateDescriptorSets(gomock.Nil(), []core1_0.CopyDescriptorSet{
		{SrcArrayElement: 3, DstArrayElement: 0, DescriptorCount: 1},
		{SrcArrayElement: 0, DstArrayElement: 1, DescriptorCount: 2},
	}).Return(nil)
	device.CopyDescriptors(
		[]gfx.CPUDescriptorHandle{dest.CPUStart()}, []uint32{3},
		[]gfx.CPUDescriptorHandle{source.CPUStart().Offset(3, stride), source.CPUStart()}, []uint32{1, 2},
		gfx.DescriptorHeapView,
	)

	driver.EXPECT().UpdateDescriptorSets(gomock.Nil(), []core1_0.CopyDescriptorSet{
		{SrcArrayElement: 2, DstArrayElement: 6, DescriptorCount: 2},
	}).Return(nil)
	device.CopyDescriptorsSimple(2, dest.CPUStart().Offset(6, stride), source.CPUStart().Offset(2, stride), gfx.DescriptorHeapView)

	require.Panics(t, func() {
		device.CopyDescriptors(
			[]gfx.CPUDescriptorHandle{dest.CPUStart()}, []uint32{2},
			[]gfx.CPUDescriptorHandle{source.CPUStart()}, []uint32{3},
			gfx.DescriptorHeapView,
		)
	})
	require.Panics(t, func() {
		device.CopyDescriptorsSimple(2, dest.CPUStart(), source.CPUStart().Offset(3, stride), gfx.DescriptorHeapView)
	})

	source.Destroy()
	dest.Destroy()
}

func TestConstantBufferViewResolvesAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device := readyDevice(t, ctrl)

	buffer, _ := expectDefaultBuffer(driver, 4096, core1_0.BufferUsageUniformBuffer)
	constants, err := device.CreateBuffer(gfx.BufferDesc{Name: "constants", Size: 4096, Usage: gfx.BufferUsageConstant})
	require.NoError(t, err)

	driver.EXPECT().CreateDescriptorSetLayout(gomock.Any(), gomock.Any()).Return(core1_0.DescriptorSetLayout{}, core1_0.VKSuccess, nil)
	expectHeaps(driver, 1)
	heap, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapView, Count: 4})
	require.NoError(t, err)

	stride := device.DescriptorIncrementSize(gfx.DescriptorHeapView)
	driver.EXPECT().UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          core1_0.DescriptorSet{},
			DstBinding:      0,
			DstArrayElement: 2,
			DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
			BufferInfo: []core1_0.DescriptorBufferInfo{
				{
					Buffer: buffer,
					Offset: 256,
					Range:  256,
				},
			},
		},
	}, gomock.Nil()).Return(nil)
	device.CreateConstantBufferView(constants.GPUAddress()+256, 256, heap.CPUStart().Offset(2, stride))

	require.Panics(t, func() {
		device.CreateConstantBufferView(constants.GPUAddress()+4096, 256, heap.CPUStart())
	})
	require.Panics(t, func() {
		device.CreateConstantBufferView(0x100, 256, heap.CPUStart())
	})

	heap.Destroy()
}

func TestSamplersAreCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, device := readyDevice(t, ctrl)

	driver.EXPECT().CreateDescriptorSetLayout(gomock.Any(), gomock.Any()).Return(core1_0.DescriptorSetLayout{}, core1_0.VKSuccess, nil)
	expectHeaps(driver, 1)
	heap, err := device.CreateDescriptorHeap(gfx.DescriptorHeapDesc{Kind: gfx.DescriptorHeapSampler, Count: 4})
	require.NoError(t, err)

	desc := gfx.SamplerDesc{Filter: gfx.FilterLinear, AddressMode: gfx.AddressModeClamp, MaxLOD: 8}
	driver.EXPECT().CreateSampler(gomock.Any(), core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		MipmapMode:   core1_0.SamplerMipmapModeLinear,
		AddressModeU: core1_0.SamplerAddressModeClampToEdge,
		AddressModeV: core1_0.SamplerAddressModeClampToEdge,
		AddressModeW: core1_0.SamplerAddressModeClampToEdge,
		MinLod:       0,
		MaxLod:       8,
	}).Return(core1_0.Sampler{}, core1_0.VKSuccess, nil)
	driver.EXPECT().UpdateDescriptorSets(gomock.Any(), gomock.Nil()).Return(nil).Times(2)

	stride := device.DescriptorIncrementSize(gfx.DescriptorHeapSampler)
	device.CreateSampler(desc, heap.CPUStart())
	device.CreateSampler(desc, heap.CPUStart().Offset(1, stride))

	heap.Destroy()

	driver.EXPECT().DestroySampler(core1_0.Sampler{}, nil)
	driver.EXPECT().DestroyDescriptorSetLayout(gomock.Any(), nil)
	driver.EXPECT().DestroyCommandPool(core1_0.CommandPool{}, nil)
	device.Destroy()
}
