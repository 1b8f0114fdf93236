package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "gfxsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
frames = 12
draws_per_context = 3
log_level = "debug"

[core]
frames_in_flight = 2
upload_page_size = 65536
static_descriptors = 64
validate_on_flip = true
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 12, config.Frames)
	require.Equal(t, 3, config.DrawsPerContext)
	require.Equal(t, "debug", config.LogLevel)
	// Unset keys keep their defaults
	require.Equal(t, DefaultConfig().ContextsPerFrame, config.ContextsPerFrame)
	require.Equal(t, DefaultConfig().Textures, config.Textures)

	options := config.Core.CreateOptions()
	require.Equal(t, 2, options.FramesInFlight)
	require.Equal(t, 65536, options.UploadPageSize)
	require.Equal(t, 0, options.GPUPageSize)
	require.Equal(t, [gfx.DescriptorHeapKindCount]int{64, 64, 64, 64}, options.StaticDescriptors)
	require.Equal(t, gfx.CreateValidateOnFlip, options.Flags)
}

func TestLoadConfigFailures(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "frames = [1"))
	require.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeConfig(t, "frames = 0"))
	require.ErrorContains(t, err, "frames must be positive")

	_, err = LoadConfig(writeConfig(t, "[core]\nframes_in_flight = -1"))
	require.ErrorContains(t, err, "frames_in_flight")
}
