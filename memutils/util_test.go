package memutils

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestCheckPow2(t *testing.T) {
	require.NoError(t, CheckPow2(1, "one"))
	require.NoError(t, CheckPow2(uint64(1)<<40, "large"))
	require.NoError(t, CheckPow2(256, "alignment"))

	err := CheckPow2(0, "zero")
	require.Error(t, err)
	require.True(t, errors.Is(err, PowerOfTwoError))

	err = CheckPow2(uint32(24), "alignment")
	require.True(t, errors.Is(err, PowerOfTwoError))
	require.Contains(t, err.Error(), "alignment is 24")
}

func TestAlign(t *testing.T) {
	require.Equal(t, 0, AlignUp(0, 256))
	require.Equal(t, 256, AlignUp(1, 256))
	require.Equal(t, 256, AlignUp(256, 256))
	require.Equal(t, 512, AlignUp(257, 256))
	require.Equal(t, uint64(0x20000), AlignUp(uint64(0x10001), uint64(0x10000)))
}

func TestRingStatistics(t *testing.T) {
	pages := RingStatistics{
		Statistics:      Statistics{BlockCount: 2, BlockBytes: 128},
		AvailableCount:  1,
		InFlightCount:   1,
		InFlightPerSlot: []int{1, 0, 0},
		CurrentSlot:     2,
		FlipCount:       5,
	}
	heaps := RingStatistics{
		Statistics:      Statistics{BlockCount: 3, BlockBytes: 3072},
		InFlightCount:   3,
		InFlightPerSlot: []int{1, 1, 1},
	}

	var total RingStatistics
	total.AddRingStatistics(&pages)
	total.AddRingStatistics(&heaps)

	require.Equal(t, 5, total.BlockCount)
	require.Equal(t, 3200, total.BlockBytes)
	require.Equal(t, 1, total.AvailableCount)
	require.Equal(t, 4, total.InFlightCount)
	require.Equal(t, []int{2, 1, 1}, total.InFlightPerSlot)

	total.Clear()
	require.Equal(t, 0, total.BlockCount)
	require.Empty(t, total.InFlightPerSlot)
	require.Equal(t, 0, total.FlipCount)
}
