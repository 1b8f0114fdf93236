package gfx

import "github.com/vkngwrapper/core/v3/common"

// CreateFlags indicate specific Core behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that the pools owned by the Core will not be
	// synchronized internally. The consumer must guarantee that descriptor allocators, heap pools,
	// and page managers are only touched from one goroutine at a time.
	CreateExternallySynchronized CreateFlags = 1 << iota
	// CreateValidateOnFlip runs the pools' internal consistency checks every time EndFrame flips
	// them. The checks only run when built with the debug_mem_utils tag.
	CreateValidateOnFlip
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
	CreateValidateOnFlip.Register("CreateValidateOnFlip")
}

const (
	// DefaultFramesInFlight is the number of frames whose GPU work may overlap CPU recording
	DefaultFramesInFlight int = 3
	// DefaultUploadPageSize is the page size of CPU-writable linear allocators. It is equal to 2Mb.
	DefaultUploadPageSize int = 2 * 1024 * 1024
	// DefaultGPUPageSize is the page size of GPU-only linear allocators. It is equal to 64Kb.
	DefaultGPUPageSize int = 64 * 1024
	// DefaultDescriptorsPerHeap is the size of each shader-visible view heap
	DefaultDescriptorsPerHeap int = 1024
	// DefaultSamplersPerHeap is the size of each shader-visible sampler heap
	DefaultSamplersPerHeap int = 256
	// DefaultStaticDescriptors is the capacity of each static descriptor allocator's heap
	DefaultStaticDescriptors int = 4096
	// DefaultMaxTrackedResources is the capacity of the resource state table
	DefaultMaxTrackedResources int = 16384
	// DefaultMaxContexts is the number of recording contexts that may exist at once
	DefaultMaxContexts int = 64
)

// CreateOptions contains optional settings when creating a Core. Zero values are replaced
// with the defaults above.
type CreateOptions struct {
	// Flags indicates specific behaviors to activate or deactivate
	Flags CreateFlags

	// FramesInFlight is the recycling delay, in calls to EndFrame, before a page, heap, or
	// command list written during a frame can be reused
	FramesInFlight int

	UploadPageSize int
	GPUPageSize    int

	DescriptorsPerHeap int
	SamplersPerHeap    int

	// StaticDescriptors is the capacity of the static descriptor allocator for each
	// DescriptorHeapKind
	StaticDescriptors [DescriptorHeapKindCount]int

	MaxTrackedResources int
	MaxContexts         int
}

func (o CreateOptions) withDefaults() CreateOptions {
	if o.FramesInFlight == 0 {
		o.FramesInFlight = DefaultFramesInFlight
	}
	if o.UploadPageSize == 0 {
		o.UploadPageSize = DefaultUploadPageSize
	}
	if o.GPUPageSize == 0 {
		o.GPUPageSize = DefaultGPUPageSize
	}
	if o.DescriptorsPerHeap == 0 {
		o.DescriptorsPerHeap = DefaultDescriptorsPerHeap
	}
	if o.SamplersPerHeap == 0 {
		o.SamplersPerHeap = DefaultSamplersPerHeap
	}
	for kind := range o.StaticDescriptors {
		if o.StaticDescriptors[kind] == 0 {
			o.StaticDescriptors[kind] = DefaultStaticDescriptors
		}
	}
	if o.MaxTrackedResources == 0 {
		o.MaxTrackedResources = DefaultMaxTrackedResources
	}
	if o.MaxContexts == 0 {
		o.MaxContexts = DefaultMaxContexts
	}
	return o
}
