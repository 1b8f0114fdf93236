package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/gfxcore/gfx"
	"github.com/vkngwrapper/gfxcore/softgpu"
)

const (
	rootViewTable    = 0
	rootSamplerTable = 1
	rootConstants    = 2

	viewsPerTable = 2
	viewCount     = 8
	vertexStride  = 12
)

var quadIndices = []uint16{0, 1, 2, 2, 1, 3}

// Simulator records synthetic frames against a software device. Every frame, the first context
// renders into the scene target and the others sample it, so the target's state changes hands
// between submissions.
type Simulator struct {
	logger *slog.Logger
	runID  string
	config Config

	device *softgpu.Device
	core   *gfx.Core

	signature *gfx.RootSignature
	instances *gfx.GPUResource
	scene     *gfx.GPUResource
	textures  []*gfx.GPUResource
	views     []gfx.CPUDescriptorHandle
	samplers  []gfx.CPUDescriptorHandle

	frame int
	draws int
}

func NewSimulator(logger *slog.Logger, runID string, config Config) (*Simulator, error) {
	device := softgpu.NewDevice(logger)
	core, err := gfx.New(logger, device, config.Core.CreateOptions())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create core")
	}

	s := &Simulator{
		logger: logger,
		runID:  runID,
		config: config,
		device: device,
		core:   core,
	}

	err = s.createResources()
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Simulator) createResources() error {
	var err error
	s.signature, err = s.core.CreateRootSignature(
		gfx.DescriptorTable(gfx.DescriptorRange{Kind: gfx.DescriptorRangeConstantBufferView, Count: viewsPerTable}),
		gfx.DescriptorTable(gfx.DescriptorRange{Kind: gfx.DescriptorRangeSampler, Count: 1}),
		gfx.RootParameter{Kind: gfx.RootParameterConstantBufferView},
	)
	if err != nil {
		return err
	}

	s.instances, err = s.core.CreateBuffer(gfx.BufferDesc{
		Name:  "instances",
		Size:  viewCount * gfx.DefaultLinearAllocatorAlignment,
		Heap:  gfx.HeapDefault,
		Usage: gfx.BufferUsageConstant | gfx.BufferUsageTransferDst,
	})
	if err != nil {
		return err
	}

	s.scene, err = s.core.CreateTexture(gfx.TextureDesc{
		Name:   "scene",
		Width:  1280,
		Height: 720,
		Format: gfx.FormatR16G16B16A16Float,
		Usage:  gfx.TextureUsageRenderTarget | gfx.TextureUsageShaderResource,
	})
	if err != nil {
		return err
	}

	for i := 0; i < s.config.Textures; i++ {
		texture, err := s.core.CreateTexture(gfx.TextureDesc{
			Name:      fmt.Sprintf("material%d", i),
			Width:     256,
			Height:    256,
			MipLevels: 9,
			Format:    gfx.FormatR8G8B8A8Unorm,
			Usage:     gfx.TextureUsageShaderResource,
		})
		if err != nil {
			return err
		}
		s.textures = append(s.textures, texture)
	}

	for i := 0; i < viewCount; i++ {
		location := s.instances.GPUAddress() + gfx.GPUAddress(i*gfx.DefaultLinearAllocatorAlignment)
		s.views = append(s.views, s.core.CreateConstantBufferView(location, gfx.DefaultLinearAllocatorAlignment))
	}
	s.samplers = append(s.samplers,
		s.core.CreateSampler(gfx.SamplerDesc{Filter: gfx.FilterLinear, AddressMode: gfx.AddressModeWrap, MaxLOD: 8}),
		s.core.CreateSampler(gfx.SamplerDesc{Filter: gfx.FilterNearest, AddressMode: gfx.AddressModeClamp}),
	)
	return nil
}

func (s *Simulator) Device() *softgpu.Device { return s.device }
func (s *Simulator) Core() *gfx.Core         { return s.core }
func (s *Simulator) Frame() int              { return s.frame }
func (s *Simulator) Draws() int              { return s.draws }

// RunFrame records every context of one frame, submits them together, and retires the frame
func (s *Simulator) RunFrame() error {
	contexts := make([]*gfx.GraphicsContext, 0, s.config.ContextsPerFrame)
	submissions := make([]*gfx.Submission, 0, s.config.ContextsPerFrame)

	for i := 0; i < s.config.ContextsPerFrame; i++ {
		ctx, err := s.core.AllocateContext(fmt.Sprintf("frame%d/context%d", s.frame, i))
		if err != nil {
			return err
		}

		err = s.record(ctx, i)
		if err != nil {
			return errors.Wrapf(err, "failed to record frame %d", s.frame)
		}

		submission, err := ctx.Close()
		if err != nil {
			return err
		}
		contexts = append(contexts, ctx)
		submissions = append(submissions, submission)
	}

	err := s.core.Queue().Submit(submissions...)
	if err != nil {
		return errors.Wrapf(err, "failed to submit frame %d", s.frame)
	}
	for _, ctx := range contexts {
		s.core.Contexts().FreeContext(ctx)
	}
	s.core.EndFrame()

	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "Simulator::RunFrame",
		slog.Int("frame", s.frame),
		slog.Int("submissions", len(submissions)),
		slog.Int("draws", s.draws),
	)
	s.frame++
	return nil
}

func (s *Simulator) record(ctx *gfx.GraphicsContext, index int) error {
	rendersScene := index == 0
	if rendersScene {
		ctx.ResourceBarrier(s.instances, gfx.ResourceStateCopyDest, false)
		ctx.ResourceBarrier(s.instances, gfx.ResourceStateVertexAndConstantBuffer, false)
		ctx.ResourceBarrier(s.scene, gfx.ResourceStateRenderTarget, false)
	} else {
		ctx.ResourceBarrier(s.scene, gfx.ResourceStatePixelShaderResource, false)
	}

	texture := s.textures[(s.frame+index)%len(s.textures)]
	ctx.ResourceBarrier(texture, gfx.ResourceStatePixelShaderResource, false)
	ctx.SetRootSignature(s.signature)

	vertices := quadVertices(float32(index))
	constants := make([]byte, 16)
	for draw := 0; draw < s.config.DrawsPerContext; draw++ {
		first := (draw * viewsPerTable) % viewCount
		ctx.SetDynamicViewDescriptors(rootViewTable, 0, s.views[first:first+viewsPerTable])
		ctx.SetDynamicSamplerDescriptor(rootSamplerTable, 0, s.samplers[draw%len(s.samplers)])

		binary.LittleEndian.PutUint32(constants[0:], uint32(s.frame))
		binary.LittleEndian.PutUint32(constants[4:], uint32(draw))

		err := ctx.SetDynamicVB(0, vertexStride, vertices)
		if err != nil {
			return err
		}
		err = ctx.SetDynamicIB16(quadIndices)
		if err != nil {
			return err
		}
		err = ctx.SetDynamicConstantBufferView(rootConstants, constants)
		if err != nil {
			return err
		}
		err = ctx.DrawIndexed(len(quadIndices), 0, 0)
		if err != nil {
			return err
		}
		s.draws++
	}

	if rendersScene {
		ctx.ResourceBarrier(s.scene, gfx.ResourceStatePixelShaderResource, false)
	}
	return nil
}

func quadVertices(depth float32) []byte {
	positions := [][3]float32{{-1, -1, depth}, {1, -1, depth}, {-1, 1, depth}, {1, 1, depth}}
	data := make([]byte, 0, len(positions)*vertexStride)
	for _, position := range positions {
		for _, component := range position {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(component))
		}
	}
	return data
}

// Report returns a json dump of the run, the core's pools, and the device's counters
func (s *Simulator) Report(detailedMap bool) string {
	writer := jwriter.NewWriter()
	root := writer.Object()

	root.Name("RunID").String(s.runID)
	root.Name("Frames").Int(s.frame)
	root.Name("Draws").Int(s.draws)

	coreObj := root.Name("Core").Object()
	s.core.PrintJson(coreObj, detailedMap)
	coreObj.End()

	deviceObj := root.Name("Device").Object()
	s.device.Stats().PrintJson(deviceObj)
	deviceObj.End()

	errorsArr := root.Name("StateErrors").Array()
	for _, message := range s.device.StateErrors() {
		errorsArr.String(message)
	}
	errorsArr.End()

	root.End()
	return string(writer.Bytes())
}

func (s *Simulator) Close() {
	for _, resource := range append([]*gfx.GPUResource{s.instances, s.scene}, s.textures...) {
		if resource != nil {
			s.core.DestroyResource(resource)
		}
	}
	s.textures = nil
	s.instances = nil
	s.scene = nil

	s.core.Destroy()
}
