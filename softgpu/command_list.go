package softgpu

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/gfxcore/gfx"
)

// Op identifies a recorded command
type Op int32

const (
	OpResourceBarrier Op = iota
	OpSetDescriptorHeaps
	OpSetGraphicsRootSignature
	OpSetComputeRootSignature
	OpSetGraphicsRootDescriptorTable
	OpSetComputeRootDescriptorTable
	OpSetGraphicsRootConstantBufferView
	OpSetComputeRootConstantBufferView
	OpIASetVertexBuffers
	OpIASetIndexBuffer
	OpDrawInstanced
	OpDrawIndexedInstanced
	OpDispatch
)

var opNames = map[Op]string{
	OpResourceBarrier:                   "ResourceBarrier",
	OpSetDescriptorHeaps:                "SetDescriptorHeaps",
	OpSetGraphicsRootSignature:          "SetGraphicsRootSignature",
	OpSetComputeRootSignature:           "SetComputeRootSignature",
	OpSetGraphicsRootDescriptorTable:    "SetGraphicsRootDescriptorTable",
	OpSetComputeRootDescriptorTable:     "SetComputeRootDescriptorTable",
	OpSetGraphicsRootConstantBufferView: "SetGraphicsRootConstantBufferView",
	OpSetComputeRootConstantBufferView:  "SetComputeRootConstantBufferView",
	OpIASetVertexBuffers:                "IASetVertexBuffers",
	OpIASetIndexBuffer:                  "IASetIndexBuffer",
	OpDrawInstanced:                     "DrawInstanced",
	OpDrawIndexedInstanced:              "DrawIndexedInstanced",
	OpDispatch:                          "Dispatch",
}

func (o Op) String() string { return opNames[o] }

// Command is one recorded command. Only the fields relevant to Op are set.
type Command struct {
	Op Op

	Barriers      []gfx.TransitionBarrier
	Heaps         []gfx.DescriptorHeap
	Signature     *gfx.RootSignature
	RootIndex     int
	Table         gfx.GPUDescriptorHandle
	Location      gfx.GPUAddress
	VertexBuffers []gfx.VertexBufferView
	IndexBuffer   gfx.IndexBufferView
	// Args holds the arguments of draws and dispatches in declaration order
	Args []int
}

// CommandList records commands into a slice for the device to replay
type CommandList struct {
	device   *Device
	id       int
	closed   bool
	commands []Command
}

var _ gfx.CommandList = &CommandList{}

func (l *CommandList) ID() int             { return l.id }
func (l *CommandList) IsClosed() bool      { return l.closed }
func (l *CommandList) Commands() []Command { return l.commands }

func (l *CommandList) record(command Command) {
	if l.closed {
		panic(fmt.Sprintf("attempted to record %s into closed command list %d", command.Op, l.id))
	}
	l.commands = append(l.commands, command)
}

func (l *CommandList) Reset() error {
	if !l.closed {
		return errors.Newf("command list %d cannot be reset while it is recording", l.id)
	}
	l.closed = false
	l.commands = nil
	return nil
}

func (l *CommandList) Close() error {
	if l.closed {
		return errors.Newf("command list %d is already closed", l.id)
	}
	l.closed = true
	return nil
}

func (l *CommandList) ResourceBarrier(barriers []gfx.TransitionBarrier) {
	l.record(Command{Op: OpResourceBarrier, Barriers: append([]gfx.TransitionBarrier(nil), barriers...)})
}

func (l *CommandList) SetDescriptorHeaps(heaps []gfx.DescriptorHeap) {
	l.record(Command{Op: OpSetDescriptorHeaps, Heaps: append([]gfx.DescriptorHeap(nil), heaps...)})
}

func (l *CommandList) SetGraphicsRootSignature(signature *gfx.RootSignature) {
	l.record(Command{Op: OpSetGraphicsRootSignature, Signature: signature})
}

func (l *CommandList) SetComputeRootSignature(signature *gfx.RootSignature) {
	l.record(Command{Op: OpSetComputeRootSignature, Signature: signature})
}

func (l *CommandList) SetGraphicsRootDescriptorTable(rootIndex int, baseDescriptor gfx.GPUDescriptorHandle) {
	l.record(Command{Op: OpSetGraphicsRootDescriptorTable, RootIndex: rootIndex, Table: baseDescriptor})
}

func (l *CommandList) SetComputeRootDescriptorTable(rootIndex int, baseDescriptor gfx.GPUDescriptorHandle) {
	l.record(Command{Op: OpSetComputeRootDescriptorTable, RootIndex: rootIndex, Table: baseDescriptor})
}

func (l *CommandList) SetGraphicsRootConstantBufferView(rootIndex int, location gfx.GPUAddress) {
	l.record(Command{Op: OpSetGraphicsRootConstantBufferView, RootIndex: rootIndex, Location: location})
}

func (l *CommandList) SetComputeRootConstantBufferView(rootIndex int, location gfx.GPUAddress) {
	l.record(Command{Op: OpSetComputeRootConstantBufferView, RootIndex: rootIndex, Location: location})
}

func (l *CommandList) IASetVertexBuffers(startSlot int, views []gfx.VertexBufferView) {
	l.record(Command{Op: OpIASetVertexBuffers, RootIndex: startSlot, VertexBuffers: append([]gfx.VertexBufferView(nil), views...)})
}

func (l *CommandList) IASetIndexBuffer(view gfx.IndexBufferView) {
	l.record(Command{Op: OpIASetIndexBuffer, IndexBuffer: view})
}

func (l *CommandList) DrawInstanced(vertexCountPerInstance, instanceCount, startVertex, startInstance int) {
	l.record(Command{Op: OpDrawInstanced, Args: []int{vertexCountPerInstance, instanceCount, startVertex, startInstance}})
}

func (l *CommandList) DrawIndexedInstanced(indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance int) {
	l.record(Command{Op: OpDrawIndexedInstanced, Args: []int{indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance}})
}

func (l *CommandList) Dispatch(groupCountX, groupCountY, groupCountZ int) {
	l.record(Command{Op: OpDispatch, Args: []int{groupCountX, groupCountY, groupCountZ}})
}
