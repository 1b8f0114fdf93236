package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/vkngwrapper/gfxcore/gfx"
)

// CoreConfig mirrors gfx.CreateOptions. Zero values fall back to the core's defaults.
type CoreConfig struct {
	FramesInFlight         int  `toml:"frames_in_flight"`
	UploadPageSize         int  `toml:"upload_page_size"`
	GPUPageSize            int  `toml:"gpu_page_size"`
	DescriptorsPerHeap     int  `toml:"descriptors_per_heap"`
	SamplersPerHeap        int  `toml:"samplers_per_heap"`
	StaticDescriptors      int  `toml:"static_descriptors"`
	MaxTrackedResources    int  `toml:"max_tracked_resources"`
	MaxContexts            int  `toml:"max_contexts"`
	ValidateOnFlip         bool `toml:"validate_on_flip"`
	ExternallySynchronized bool `toml:"externally_synchronized"`
}

func (c CoreConfig) CreateOptions() gfx.CreateOptions {
	options := gfx.CreateOptions{
		FramesInFlight:      c.FramesInFlight,
		UploadPageSize:      c.UploadPageSize,
		GPUPageSize:         c.GPUPageSize,
		DescriptorsPerHeap:  c.DescriptorsPerHeap,
		SamplersPerHeap:     c.SamplersPerHeap,
		MaxTrackedResources: c.MaxTrackedResources,
		MaxContexts:         c.MaxContexts,
	}
	for kind := range options.StaticDescriptors {
		options.StaticDescriptors[kind] = c.StaticDescriptors
	}
	if c.ValidateOnFlip {
		options.Flags |= gfx.CreateValidateOnFlip
	}
	if c.ExternallySynchronized {
		options.Flags |= gfx.CreateExternallySynchronized
	}
	return options
}

// Config describes a simulation run
type Config struct {
	Frames           int    `toml:"frames"`
	ContextsPerFrame int    `toml:"contexts_per_frame"`
	DrawsPerContext  int    `toml:"draws_per_context"`
	Textures         int    `toml:"textures"`
	LogLevel         string `toml:"log_level"`
	DetailedStats    bool   `toml:"detailed_stats"`

	Core CoreConfig `toml:"core"`
}

func DefaultConfig() Config {
	return Config{
		Frames:           8,
		ContextsPerFrame: 2,
		DrawsPerContext:  16,
		Textures:         4,
		LogLevel:         "info",
	}
}

// LoadConfig reads a TOML file over the defaults
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %q", path)
	}

	config := DefaultConfig()
	err = toml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config %q", path)
	}

	return config, config.Validate()
}

func (c Config) Validate() error {
	if c.Frames < 1 {
		return errors.Newf("frames must be positive, but is %d", c.Frames)
	}
	if c.ContextsPerFrame < 1 {
		return errors.Newf("contexts_per_frame must be positive, but is %d", c.ContextsPerFrame)
	}
	if c.DrawsPerContext < 0 {
		return errors.Newf("draws_per_context cannot be negative, but is %d", c.DrawsPerContext)
	}
	if c.Textures < 1 {
		return errors.Newf("textures must be positive, but is %d", c.Textures)
	}
	if c.Core.FramesInFlight < 0 {
		return errors.Newf("core.frames_in_flight cannot be negative, but is %d", c.Core.FramesInFlight)
	}
	return nil
}
