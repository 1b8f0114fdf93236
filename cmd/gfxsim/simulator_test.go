package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type report struct {
	RunID  string
	Frames int
	Draws  int
	Core   struct {
		FrameCount  int
		Submissions int
		FixupLists  int
		Pages       map[string]struct{ BlockCount int }
		DetailedMap map[string]json.RawMessage
	}
	Device struct {
		ExecutedLists        int
		Draws                int
		CopyDescriptorsCalls int
		StateMismatches      int
		LiveTextures         int
	}
	StateErrors []string
}

func TestSimulatorFrames(t *testing.T) {
	config := DefaultConfig()
	config.ContextsPerFrame = 3
	config.DrawsPerContext = 5

	simulator, err := NewSimulator(logger, "test-run", config)
	require.NoError(t, err)

	for frame := 0; frame < 6; frame++ {
		require.NoError(t, simulator.RunFrame())
		require.NoError(t, simulator.Core().Validate())
	}

	var parsed report
	require.NoError(t, json.Unmarshal([]byte(simulator.Report(true)), &parsed))

	require.Equal(t, "test-run", parsed.RunID)
	require.Equal(t, 6, parsed.Frames)
	require.Equal(t, 6*3*5, parsed.Draws)
	require.Equal(t, 6, parsed.Core.FrameCount)
	require.Equal(t, 6*3, parsed.Core.Submissions)
	require.Equal(t, 6*3*5, parsed.Device.Draws)
	require.Positive(t, parsed.Device.CopyDescriptorsCalls)
	require.Positive(t, parsed.Core.FixupLists)
	// Fixup lists are recycled once their frame retires
	require.LessOrEqual(t, parsed.Core.FixupLists, gfx.DefaultFramesInFlight*config.ContextsPerFrame)
	require.Equal(t, 1+config.Textures, parsed.Device.LiveTextures)
	require.Len(t, parsed.Core.DetailedMap, 4)

	// The scene target changes hands every frame, but the fixup pass keeps every transition honest
	require.Zero(t, parsed.Device.StateMismatches)
	require.Empty(t, parsed.StateErrors)

	// Upload pages are recycled rather than grown every frame
	require.LessOrEqual(t, parsed.Core.Pages["LinearAllocatorCPUWritable"].BlockCount, (gfx.DefaultFramesInFlight+1)*config.ContextsPerFrame)
	require.Positive(t, parsed.Core.Pages["LinearAllocatorCPUWritable"].BlockCount)

	simulator.Close()
	require.Zero(t, simulator.Device().Stats().LiveTextures)
}

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-frames", "3", "-log-level", "warn"}, &stdout, &stderr))

	var parsed report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &parsed))
	require.Equal(t, 3, parsed.Frames)
	require.Len(t, parsed.RunID, 36)
	require.Nil(t, parsed.Core.DetailedMap)
}

func TestRunRejectsBadArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Error(t, run([]string{"-log-level", "loud"}, &stdout, &stderr))
	require.Error(t, run([]string{"-unknown"}, &stdout, &stderr))
	require.Empty(t, stdout.String())
}
