package memutils

// Statistics sums up the objects a pool owns. For the linear allocator page managers a block is a
// page and bytes are page capacities; for descriptor heap pools a block is a heap and bytes are
// descriptor slots.
type Statistics struct {
	BlockCount      int
	AllocationCount int
	BlockBytes      int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.AllocationCount = 0
	s.BlockBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.BlockBytes += other.BlockBytes
	s.AllocationBytes += other.AllocationBytes
}

// RingStatistics extends Statistics with the breakdown of a frame-delayed pool: how many blocks
// are waiting to be reused and how many are still fenced by frames in flight.
type RingStatistics struct {
	Statistics
	AvailableCount int
	InFlightCount  int
	// InFlightPerSlot holds the number of blocks in each ring slot, indexed by slot
	InFlightPerSlot []int
	CurrentSlot     int
	FlipCount       int
}

func (s *RingStatistics) Clear() {
	s.Statistics.Clear()
	s.AvailableCount = 0
	s.InFlightCount = 0
	s.InFlightPerSlot = s.InFlightPerSlot[:0]
	s.CurrentSlot = 0
	s.FlipCount = 0
}

func (s *RingStatistics) AddRingStatistics(other *RingStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.AvailableCount += other.AvailableCount
	s.InFlightCount += other.InFlightCount

	for len(s.InFlightPerSlot) < len(other.InFlightPerSlot) {
		s.InFlightPerSlot = append(s.InFlightPerSlot, 0)
	}
	for i, count := range other.InFlightPerSlot {
		s.InFlightPerSlot[i] += count
	}
}
