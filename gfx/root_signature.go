package gfx

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const (
	// MaxRootParameters is the number of root parameters a signature may declare. Table
	// membership is tracked in 64-bit masks indexed by root parameter.
	MaxRootParameters = 64
	// MaxDescriptorsPerTable is the number of slots a single descriptor table may declare.
	// Staged slots are tracked in a 64-bit mask per table.
	MaxDescriptorsPerTable = 64
)

// RootParameterKind selects how a root parameter is bound
type RootParameterKind int32

const (
	RootParameterDescriptorTable RootParameterKind = iota
	RootParameterConstants
	RootParameterConstantBufferView
	RootParameterShaderResourceView
	RootParameterUnorderedAccessView
)

// DescriptorRangeKind is the kind of descriptors in one range of a descriptor table
type DescriptorRangeKind int32

const (
	DescriptorRangeShaderResourceView DescriptorRangeKind = iota
	DescriptorRangeUnorderedAccessView
	DescriptorRangeConstantBufferView
	DescriptorRangeSampler
)

// DescriptorRange is a run of consecutive descriptors of the same kind inside a table
type DescriptorRange struct {
	Kind         DescriptorRangeKind
	Count        int
	BaseRegister int
	Space        int
}

// RootParameter is one entry in a root signature
type RootParameter struct {
	Kind RootParameterKind
	// Ranges are used by RootParameterDescriptorTable
	Ranges []DescriptorRange
	// Num32BitValues is used by RootParameterConstants
	Num32BitValues int
	// Register is used by root constants and root descriptors
	Register int
}

// DescriptorTable is a convenience constructor for a table root parameter
func DescriptorTable(ranges ...DescriptorRange) RootParameter {
	return RootParameter{Kind: RootParameterDescriptorTable, Ranges: ranges}
}

// RootSignature declares the layout of GPU-bindable parameters a pipeline expects. Once
// built through NewRootSignature it is immutable.
type RootSignature struct {
	parameters []RootParameter

	viewTableMask    uint64
	samplerTableMask uint64
	tableSizes       [MaxRootParameters]int

	// Native holds the device's layout object, attached by Device.InitRootSignature
	Native any
}

// NewRootSignature validates the parameters and computes the descriptor table layout. Tables
// may not mix samplers with other descriptor kinds, since they are staged in different heaps.
func NewRootSignature(parameters ...RootParameter) (*RootSignature, error) {
	if len(parameters) > MaxRootParameters {
		return nil, errors.Newf("root signature declares %d parameters, but at most %d are supported", len(parameters), MaxRootParameters)
	}

	sig := &RootSignature{
		parameters: append([]RootParameter(nil), parameters...),
	}

	for rootIndex, param := range parameters {
		switch param.Kind {
		case RootParameterDescriptorTable:
			if len(param.Ranges) == 0 {
				return nil, errors.Newf("descriptor table at root index %d has no ranges", rootIndex)
			}

			isSampler := param.Ranges[0].Kind == DescriptorRangeSampler
			size := 0
			for rangeIndex, r := range param.Ranges {
				if (r.Kind == DescriptorRangeSampler) != isSampler {
					return nil, errors.Newf("descriptor table at root index %d mixes samplers with other descriptors at range %d", rootIndex, rangeIndex)
				}
				if r.Count < 1 {
					return nil, errors.Newf("descriptor table at root index %d has an empty range %d", rootIndex, rangeIndex)
				}
				size += r.Count
			}

			if size > MaxDescriptorsPerTable {
				return nil, errors.Newf("descriptor table at root index %d declares %d descriptors, but at most %d are supported", rootIndex, size, MaxDescriptorsPerTable)
			}

			sig.tableSizes[rootIndex] = size
			if isSampler {
				sig.samplerTableMask |= 1 << uint(rootIndex)
			} else {
				sig.viewTableMask |= 1 << uint(rootIndex)
			}
		case RootParameterConstants:
			if param.Num32BitValues < 1 {
				return nil, errors.Newf("root constants at root index %d declare no values", rootIndex)
			}
		case RootParameterConstantBufferView, RootParameterShaderResourceView, RootParameterUnorderedAccessView:
		default:
			return nil, errors.Newf("unknown root parameter kind %d at root index %d", param.Kind, rootIndex)
		}
	}

	return sig, nil
}

func (s *RootSignature) ParameterCount() int { return len(s.parameters) }

// Parameter returns a copy of the root parameter at the provided index
func (s *RootSignature) Parameter(rootIndex int) RootParameter {
	return s.parameters[rootIndex]
}

// TableMask returns a bitmask with bit i set if root parameter i is a descriptor table whose
// descriptors live in heaps of the provided kind
func (s *RootSignature) TableMask(kind DescriptorHeapKind) uint64 {
	switch kind {
	case DescriptorHeapView:
		return s.viewTableMask
	case DescriptorHeapSampler:
		return s.samplerTableMask
	default:
		panic(fmt.Sprintf("root signatures cannot reference descriptors from %s", kind))
	}
}

// TableSize returns the number of descriptors declared by the table at rootIndex, or 0 if the
// parameter is not a table
func (s *RootSignature) TableSize(rootIndex int) int {
	return s.tableSizes[rootIndex]
}
