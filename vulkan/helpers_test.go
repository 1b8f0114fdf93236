package vulkan_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_2"
	"github.com/vkngwrapper/gfxcore/vulkan"
	"go.uber.org/mock/gomock"
)

const (
	testDescriptorsPerHeap = 8
	testSamplersPerHeap    = 4

	allStages = core1_0.StageVertex | core1_0.StageFragment | core1_0.StageCompute
)

var logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func readyDevice(t *testing.T, ctrl *gomock.Controller) (*mocks1_2.MockCoreDeviceDriver, *vulkan.Device) {
	driver := mocks1_2.NewMockCoreDeviceDriver(ctrl)
	device := mocks.NewDummyDevice(common.Vulkan1_2, []string{})
	driver.EXPECT().Device().Return(device).AnyTimes()

	driver.EXPECT().CreateCommandPool(gomock.Any(), core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: 0,
	}).Return(core1_0.CommandPool{}, core1_0.VKSuccess, nil)

	vulkanDevice, err := vulkan.New(logger, driver, vulkan.Config{
		MemoryProperties: &core1_0.PhysicalDeviceMemoryProperties{
			MemoryTypes: []core1_0.MemoryType{
				{
					PropertyFlags: core1_0.MemoryPropertyDeviceLocal,
					HeapIndex:     0,
				},
				{
					PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
					HeapIndex:     1,
				},
			},
		},
		DescriptorsPerHeap: testDescriptorsPerHeap,
		SamplersPerHeap:    testSamplersPerHeap,
	})
	require.NoError(t, err)

	return driver, vulkanDevice
}

// expectDefaultBuffer sets up the calls behind a device-local buffer of the provided size
func expectDefaultBuffer(driver *mocks1_2.MockCoreDeviceDriver, size int, usage core1_0.BufferUsageFlags) (core1_0.Buffer, core1_0.DeviceMemory) {
	buffer := mocks.NewDummyBuffer(driver.Device())
	memory := mocks.NewDummyDeviceMemory(driver.Device(), size)

	driver.EXPECT().CreateBuffer(gomock.Any(), core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage | core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst,
		SharingMode: core1_0.SharingModeExclusive,
	}).Return(buffer, core1_0.VKSuccess, nil)
	driver.EXPECT().GetBufferMemoryRequirements(buffer).Return(&core1_0.MemoryRequirements{
		Size:           size,
		Alignment:      256,
		MemoryTypeBits: 0b11,
	})
	driver.EXPECT().AllocateMemory(gomock.Any(), core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: 0,
	}).Return(memory, core1_0.VKSuccess, nil)
	driver.EXPECT().BindBufferMemory(buffer, memory, 0).Return(core1_0.VKSuccess, nil)

	return buffer, memory
}

// expectHeaps sets up the calls behind count descriptor heaps that have a set
func expectHeaps(driver *mocks1_2.MockCoreDeviceDriver, count int) {
	driver.EXPECT().CreateDescriptorPool(gomock.Any(), gomock.Any()).Return(core1_0.DescriptorPool{}, core1_0.VKSuccess, nil).Times(count)
	driver.EXPECT().AllocateDescriptorSets(gomock.Any()).Return([]core1_0.DescriptorSet{{}}, core1_0.VKSuccess, nil).Times(count)
	driver.EXPECT().DestroyDescriptorPool(gomock.Any(), nil).Times(count)
}
