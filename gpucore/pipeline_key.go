// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// PipelineKey identifies a text pipeline variant. It is comparable and
// used as the cache key by PipelineCache implementations.
type PipelineKey struct {
	Format      gputypes.TextureFormat
	Multisample gputypes.MultisampleState

	// HasDepth is false when the pipeline has no depth attachment; Depth
	// is zero then.
	HasDepth bool
	Depth    DepthStencilState
}

// NewPipelineKey builds the key for a format, multisample state and
// optional depth state. A zero sample count is treated as 1 and a zero
// sample mask as all samples.
func NewPipelineKey(format gputypes.TextureFormat, multisample gputypes.MultisampleState, depthStencil *DepthStencilState) PipelineKey {
	if multisample.Count == 0 {
		multisample.Count = 1
	}
	if multisample.Mask == 0 {
		multisample.Mask = 0xFFFFFFFF
	}
	k := PipelineKey{Format: format, Multisample: multisample}
	if depthStencil != nil {
		k.HasDepth = true
		k.Depth = *depthStencil
	}
	return k
}

// SampleCount returns the number of samples per pixel.
func (k PipelineKey) SampleCount() uint32 { return k.Multisample.Count }

// Label returns a debug label describing the variant.
func (k PipelineKey) Label() string {
	if k.HasDepth {
		return fmt.Sprintf("glyphatlas text %v x%d depth %v", k.Format, k.Multisample.Count, k.Depth.Format)
	}
	return fmt.Sprintf("glyphatlas text %v x%d", k.Format, k.Multisample.Count)
}
