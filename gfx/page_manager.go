package gfx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/gfxcore/internal/ring"
	"github.com/vkngwrapper/gfxcore/internal/utils"
	"github.com/vkngwrapper/gfxcore/memutils"
)

// LinearAllocatorPageManager owns every page of one LinearAllocatorType and recycles them once
// the GPU can no longer be reading them. A page handed out or released during a frame becomes
// available again after framesInFlight further calls to Flip.
type LinearAllocatorPageManager struct {
	logger *slog.Logger
	device Device
	mutex  utils.OptionalMutex

	allocType       LinearAllocatorType
	defaultPageSize int
	validateOnFlip  bool

	ring       *ring.FrameRing[*LinearAllocatorPage]
	pages      []*LinearAllocatorPage
	nextPageID int

	oversizedRequests int
}

func (m *LinearAllocatorPageManager) Init(logger *slog.Logger, device Device, options CreateOptions, allocType LinearAllocatorType) {
	if m.ring != nil {
		panic("attempted to initialize a page manager that is already in use")
	}

	options = options.withDefaults()
	m.logger = logger
	m.device = device
	m.mutex = utils.NewOptionalMutex(options.Flags&CreateExternallySynchronized == 0)
	m.allocType = allocType
	m.validateOnFlip = options.Flags&CreateValidateOnFlip != 0
	m.ring = ring.New[*LinearAllocatorPage](options.FramesInFlight)

	switch allocType {
	case LinearAllocatorGPUExclusive:
		m.defaultPageSize = options.GPUPageSize
	case LinearAllocatorCPUWritable:
		m.defaultPageSize = options.UploadPageSize
	default:
		panic(fmt.Sprintf("unknown linear allocator type: %d", allocType))
	}
}

func (m *LinearAllocatorPageManager) AllocatorType() LinearAllocatorType { return m.allocType }
func (m *LinearAllocatorPageManager) DefaultPageSize() int               { return m.defaultPageSize }

// PageCount returns the number of pages the manager owns
func (m *LinearAllocatorPageManager) PageCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.pages)
}

// AllocateNewPage returns a page that holds at least minSize bytes. Available pages are scanned
// from the most recently reclaimed one back, and the first page that is large enough is used. If
// none fits, a page of max(minSize, default page size) is created. The page counts as written
// during the current frame.
func (m *LinearAllocatorPageManager) AllocateNewPage(minSize int) (*LinearAllocatorPage, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	page, found := m.ring.TakeAvailable(func(page *LinearAllocatorPage) bool {
		return page.capacity >= minSize
	})
	if found {
		page.usage = blockUsage{}
	} else {
		var err error
		page, err = m.createPage(minSize)
		if err != nil {
			return nil, err
		}
	}

	m.ring.Stamp(page)
	return page, nil
}

func (m *LinearAllocatorPageManager) createPage(minSize int) (*LinearAllocatorPage, error) {
	size := m.defaultPageSize
	if minSize > size {
		size = minSize
		m.oversizedRequests++

		level := slog.LevelDebug
		if m.oversizedRequests > 1 {
			level = slog.LevelWarn
		}
		m.logger.LogAttrs(context.Background(), level, "LinearAllocatorPageManager::AllocateNewPage oversized page",
			slog.String("type", m.allocType.String()),
			slog.Int("requested", minSize),
			slog.Int("defaultPageSize", m.defaultPageSize),
			slog.Int("oversizedRequests", m.oversizedRequests),
		)
	}

	desc := BufferDesc{
		Name: fmt.Sprintf("%s page %d", m.allocType, m.nextPageID),
		Size: size,
	}
	if m.allocType == LinearAllocatorCPUWritable {
		desc.Heap = HeapUpload
		desc.Usage = BufferUsageVertex | BufferUsageIndex | BufferUsageConstant | BufferUsageTransferSrc
	} else {
		desc.Heap = HeapDefault
		desc.Usage = BufferUsageUnorderedAccess | BufferUsageShaderResource | BufferUsageConstant
	}

	buffer, err := m.device.CreateBuffer(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create a %d-byte linear allocator page", size)
	}

	page := &LinearAllocatorPage{
		id:       m.nextPageID,
		buffer:   buffer,
		capacity: size,
		address:  buffer.GPUAddress(),
	}

	if m.allocType == LinearAllocatorCPUWritable {
		page.data, err = buffer.Map()
		if err != nil {
			buffer.Destroy()
			return nil, errors.Wrapf(err, "failed to map linear allocator page %d", page.id)
		}
	}

	m.nextPageID++
	m.pages = append(m.pages, page)

	m.logger.LogAttrs(context.Background(), slog.LevelDebug, "LinearAllocatorPageManager::createPage",
		slog.String("type", m.allocType.String()),
		slog.Int("id", page.id),
		slog.Int("size", size),
	)

	return page, nil
}

// ReleasePage hands a page back after an allocator has finished writing to it. The page is
// restamped into the current frame, so it is only reused once the frames that may read it
// have retired.
func (m *LinearAllocatorPageManager) ReleasePage(page *LinearAllocatorPage) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if page.buffer == nil {
		panic(fmt.Sprintf("attempted to release linear allocator page %d after it was destroyed", page.id))
	}
	if !m.ring.IsInFlight(page) {
		panic(fmt.Sprintf("attempted to release linear allocator page %d, which was not handed out", page.id))
	}

	m.ring.Stamp(page)
}

func (m *LinearAllocatorPageManager) recordUsage(page *LinearAllocatorPage, allocations int, bytes int) {
	m.mutex.Locked(func() {
		page.usage = blockUsage{allocations: allocations, bytes: bytes}
	})
}

// Flip retires the oldest frame in flight, making the pages last written during it available
func (m *LinearAllocatorPageManager) Flip() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	reclaimed := m.ring.Flip()
	if len(reclaimed) > 0 {
		m.logger.LogAttrs(context.Background(), slog.LevelDebug, "LinearAllocatorPageManager::Flip",
			slog.String("type", m.allocType.String()),
			slog.Int("reclaimed", len(reclaimed)),
			slog.Int("available", m.ring.AvailableCount()),
		)
	}

	if m.validateOnFlip {
		memutils.DebugValidate(m)
	}
}

// Destroy frees every page the manager created. The GPU must be idle.
func (m *LinearAllocatorPageManager) Destroy() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.ring == nil {
		return
	}

	inFlight := m.ring.InFlightCount()
	if inFlight > 0 {
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "LinearAllocatorPageManager::Destroy pages still in flight",
			slog.String("type", m.allocType.String()),
			slog.Int("inFlight", inFlight),
		)
	}

	m.ring.Drain()
	for _, page := range m.pages {
		page.destroy()
	}
	m.pages = nil
}

func (m *LinearAllocatorPageManager) AddStatistics(stats *memutils.RingStatistics) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats.BlockCount += len(m.pages)
	for _, page := range m.pages {
		stats.BlockBytes += page.capacity
		stats.AllocationCount += page.usage.allocations
		stats.AllocationBytes += page.usage.bytes
	}
	stats.AvailableCount += m.ring.AvailableCount()
	stats.InFlightCount += m.ring.InFlightCount()

	for len(stats.InFlightPerSlot) < m.ring.FramesInFlight() {
		stats.InFlightPerSlot = append(stats.InFlightPerSlot, 0)
	}
	for slot := 0; slot < m.ring.FramesInFlight(); slot++ {
		stats.InFlightPerSlot[slot] += m.ring.SlotCount(slot)
	}
	stats.CurrentSlot = m.ring.CurrentSlot()
	stats.FlipCount = m.ring.FlipCount()
}

// PrintDetailedMap writes every page the manager owns into the provided json object
func (m *LinearAllocatorPageManager) PrintDetailedMap(json jwriter.ObjectState) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	json.Name("Type").String(m.allocType.String())
	json.Name("DefaultPageSize").Int(m.defaultPageSize)
	json.Name("CurrentSlot").Int(m.ring.CurrentSlot())

	pagesArray := json.Name("Pages").Array()
	defer pagesArray.End()

	m.ring.Each(func(page *LinearAllocatorPage, inFlight bool) {
		pageObj := pagesArray.Object()
		page.printJson(pageObj, inFlight)
		pageObj.End()
	})
}

func (m *LinearAllocatorPageManager) Validate() error {
	err := m.ring.Validate()
	if err != nil {
		return errors.Wrapf(err, "%s page ring is inconsistent", m.allocType)
	}

	tracked := 0
	m.ring.Each(func(page *LinearAllocatorPage, inFlight bool) {
		tracked++
	})
	if tracked != len(m.pages) {
		return errors.Newf("%s page manager owns %d pages but its ring tracks %d", m.allocType, len(m.pages), tracked)
	}

	for _, page := range m.pages {
		if page.buffer == nil {
			return errors.Newf("%s page %d has been destroyed", m.allocType, page.id)
		}
		if page.capacity < m.defaultPageSize {
			return errors.Newf("%s page %d holds %d bytes, less than the default page size of %d", m.allocType, page.id, page.capacity, m.defaultPageSize)
		}
	}

	return nil
}
