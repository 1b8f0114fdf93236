package gfx_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
	"github.com/vkngwrapper/gfxcore/softgpu"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestCore(t *testing.T, options gfx.CreateOptions) (*gfx.Core, *softgpu.Device) {
	device := softgpu.NewDevice(logger)
	device.KeepCommandLog(true)

	core, err := gfx.New(logger, device, options)
	require.NoError(t, err)
	t.Cleanup(core.Destroy)

	return core, device
}

func commandsOf(list gfx.CommandList) []softgpu.Command {
	return list.(*softgpu.CommandList).Commands()
}

func opsOf(commands []softgpu.Command) []softgpu.Op {
	ops := make([]softgpu.Op, 0, len(commands))
	for _, command := range commands {
		ops = append(ops, command.Op)
	}
	return ops
}
