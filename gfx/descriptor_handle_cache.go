package gfx

import (
	"fmt"
	"math/bits"
)

const (
	// maxStagedDescriptors is the number of descriptors a DescriptorHandleCache can stage across
	// every table of a root signature
	maxStagedDescriptors = 256
	// maxDescriptorsPerCopy is the number of source descriptors batched into one CopyDescriptors
	// call
	maxDescriptorsPerCopy = 16
)

// descriptorTableCache is the staging window of a single descriptor table. Bit i of
// assignedMask is set if slot i of the table has a staged descriptor.
type descriptorTableCache struct {
	assignedMask uint64
	start        int
	size         int
}

// DescriptorHandleCache stages CPU descriptor handles for the descriptor tables of one root
// signature, for one descriptor heap kind, until a draw or dispatch copies them into a
// shader-visible heap.
type DescriptorHandleCache struct {
	kind DescriptorHeapKind

	tableMask uint64
	staleMask uint64

	tables  [MaxRootParameters]descriptorTableCache
	handles [maxStagedDescriptors]CPUDescriptorHandle
}

func (c *DescriptorHandleCache) TableMask() uint64 { return c.tableMask }
func (c *DescriptorHandleCache) StaleMask() uint64 { return c.staleMask }

// AssignedMask returns the staged slots of the table at rootIndex
func (c *DescriptorHandleCache) AssignedMask(rootIndex int) uint64 {
	return c.tables[rootIndex].assignedMask
}

// ClearCache drops every staged descriptor and forgets the table layout
func (c *DescriptorHandleCache) ClearCache() {
	c.tableMask = 0
	c.staleMask = 0
	c.tables = [MaxRootParameters]descriptorTableCache{}
}

// ParseRootSignature rebuilds the table layout from the signature's tables of the cache's kind.
// Staged descriptors survive only for tables that keep the same root index, window, and size in
// the new layout, and those tables are marked stale since the new signature must be bound
// again. Everything else is dropped.
func (c *DescriptorHandleCache) ParseRootSignature(kind DescriptorHeapKind, signature *RootSignature) {
	c.kind = kind
	previousMask := c.tableMask
	previous := c.tables

	c.tableMask = signature.TableMask(kind)
	c.staleMask = 0
	c.tables = [MaxRootParameters]descriptorTableCache{}

	offset := 0
	for mask := c.tableMask; mask != 0; mask &= mask - 1 {
		rootIndex := bits.TrailingZeros64(mask)
		size := signature.TableSize(rootIndex)
		if size < 1 {
			panic(fmt.Sprintf("root signature declares an empty descriptor table at root index %d", rootIndex))
		}

		table := descriptorTableCache{start: offset, size: size}
		old := previous[rootIndex]
		if previousMask&(1<<uint(rootIndex)) != 0 && old.start == table.start && old.size == table.size {
			table.assignedMask = old.assignedMask
			if table.assignedMask != 0 {
				c.staleMask |= 1 << uint(rootIndex)
			}
		}

		c.tables[rootIndex] = table
		offset += size
	}

	if offset > maxStagedDescriptors {
		panic(fmt.Sprintf("root signature declares %d %s descriptors across its tables, but at most %d can be staged", offset, kind, maxStagedDescriptors))
	}
}

// StageDescriptorHandles copies handles into slots [offset, offset+len(handles)) of the table at
// rootIndex and marks the table stale
func (c *DescriptorHandleCache) StageDescriptorHandles(rootIndex int, offset int, handles []CPUDescriptorHandle) {
	if rootIndex < 0 || rootIndex >= MaxRootParameters || c.tableMask&(1<<uint(rootIndex)) == 0 {
		panic(fmt.Sprintf("root parameter %d is not a %s descriptor table of the bound root signature", rootIndex, c.kind))
	}

	table := &c.tables[rootIndex]
	if offset < 0 || offset+len(handles) > table.size {
		panic(fmt.Sprintf("attempted to stage descriptors [%d, %d) into a table of %d descriptors at root index %d", offset, offset+len(handles), table.size, rootIndex))
	}
	if len(handles) == 0 {
		return
	}

	copy(c.handles[table.start+offset:], handles)
	// for 64 handles the shift yields 0 and the subtraction wraps to a full mask
	table.assignedMask |= ((uint64(1) << uint(len(handles))) - 1) << uint(offset)
	c.staleMask |= 1 << uint(rootIndex)
}

// UnbindAllValid marks every table that has staged descriptors stale, so that it is copied into
// the next heap
func (c *DescriptorHandleCache) UnbindAllValid() {
	c.staleMask = 0
	for mask := c.tableMask; mask != 0; mask &= mask - 1 {
		rootIndex := bits.TrailingZeros64(mask)
		if c.tables[rootIndex].assignedMask != 0 {
			c.staleMask |= 1 << uint(rootIndex)
		}
	}
}

// ComputeStagedSize returns the number of shader-visible descriptors the stale tables need. Each
// table needs room up to its highest staged slot.
func (c *DescriptorHandleCache) ComputeStagedSize() int {
	size := 0
	for mask := c.staleMask; mask != 0; mask &= mask - 1 {
		rootIndex := bits.TrailingZeros64(mask)
		size += bits.Len64(c.tables[rootIndex].assignedMask)
	}
	return size
}

type descriptorCopyBatch struct {
	device        Device
	kind          DescriptorHeapKind
	incrementSize uint32

	destStarts []CPUDescriptorHandle
	destSizes  []uint32
	srcStarts  []CPUDescriptorHandle
	srcSizes   []uint32
}

func (b *descriptorCopyBatch) flush() {
	if len(b.srcStarts) == 0 {
		return
	}

	b.device.CopyDescriptors(b.destStarts, b.destSizes, b.srcStarts, b.srcSizes, b.kind)
	b.destStarts = b.destStarts[:0]
	b.destSizes = b.destSizes[:0]
	b.srcStarts = b.srcStarts[:0]
	b.srcSizes = b.srcSizes[:0]
}

// add queues a contiguous destination range. Runs that do not fit in the current batch are
// split across batches.
func (b *descriptorCopyBatch) add(dest CPUDescriptorHandle, sources []CPUDescriptorHandle) {
	for len(sources) > 0 {
		room := maxDescriptorsPerCopy - len(b.srcStarts)
		if room == 0 {
			b.flush()
			continue
		}
		if room > len(sources) {
			room = len(sources)
		}

		b.destStarts = append(b.destStarts, dest)
		b.destSizes = append(b.destSizes, uint32(room))
		for _, src := range sources[:room] {
			b.srcStarts = append(b.srcStarts, src)
			b.srcSizes = append(b.srcSizes, 1)
		}

		dest = dest.Offset(room, b.incrementSize)
		sources = sources[room:]
	}
}

// CopyAndBindStaleTables copies every stale table into consecutive windows starting at destCPU
// and destGPU, binding each window to its root parameter through bind. Contiguous staged slots
// become a single destination range and unstaged slots are skipped. The stale mask is cleared.
func (c *DescriptorHandleCache) CopyAndBindStaleTables(device Device, incrementSize uint32, destCPU CPUDescriptorHandle, destGPU GPUDescriptorHandle, bind func(rootIndex int, baseDescriptor GPUDescriptorHandle)) {
	batch := descriptorCopyBatch{
		device:        device,
		kind:          c.kind,
		incrementSize: incrementSize,
		destStarts:    make([]CPUDescriptorHandle, 0, maxDescriptorsPerCopy),
		destSizes:     make([]uint32, 0, maxDescriptorsPerCopy),
		srcStarts:     make([]CPUDescriptorHandle, 0, maxDescriptorsPerCopy),
		srcSizes:      make([]uint32, 0, maxDescriptorsPerCopy),
	}

	stale := c.staleMask
	c.staleMask = 0

	for ; stale != 0; stale &= stale - 1 {
		rootIndex := bits.TrailingZeros64(stale)
		table := c.tables[rootIndex]
		tableSize := bits.Len64(table.assignedMask)

		bind(rootIndex, destGPU)

		sources := c.handles[table.start : table.start+tableSize]
		assigned := table.assignedMask
		slot := 0
		for assigned != 0 {
			skip := bits.TrailingZeros64(assigned)
			slot += skip
			assigned >>= uint(skip)

			run := bits.TrailingZeros64(^assigned)
			batch.add(destCPU.Offset(slot, incrementSize), sources[slot:slot+run])

			slot += run
			assigned >>= uint(run)
		}

		destCPU = destCPU.Offset(tableSize, incrementSize)
		destGPU = destGPU.Offset(tableSize, incrementSize)
	}

	batch.flush()
}
