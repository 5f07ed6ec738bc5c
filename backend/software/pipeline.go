// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyphatlas/gpucore"
)

// BindGroup records the two views bound for atlas sampling.
type BindGroup struct {
	label     string
	Color     *TextureView
	Mask      *TextureView
	destroyed atomic.Bool
}

// Label returns the bind group's debug label.
func (g *BindGroup) Label() string { return g.label }

// IsDestroyed returns true if the bind group has been destroyed.
func (g *BindGroup) IsDestroyed() bool { return g.destroyed.Load() }

// RenderPipeline is the record of a pipeline variant. The software
// backend does not draw; it exists so callers can exercise pipeline
// selection.
type RenderPipeline struct {
	Key gpucore.PipelineKey
}

// Label returns the pipeline's debug label.
func (p *RenderPipeline) Label() string { return p.Key.Label() }

// PipelineCache implements gpucore.PipelineCache without a GPU.
//
// PipelineCache is safe for concurrent use.
type PipelineCache struct {
	mu        sync.RWMutex
	pipelines map[gpucore.PipelineKey]*RenderPipeline

	groups atomic.Int64
	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ gpucore.PipelineCache = (*PipelineCache)(nil)

// NewPipelineCache creates an empty cache.
func NewPipelineCache() *PipelineCache {
	return &PipelineCache{pipelines: make(map[gpucore.PipelineKey]*RenderPipeline)}
}

// CreateAtlasBindGroup binds views created by a software Device.
func (c *PipelineCache) CreateAtlasBindGroup(color, mask gpucore.TextureView) (gpucore.BindGroup, error) {
	cv, ok := color.(*TextureView)
	if !ok {
		return nil, fmt.Errorf("%w: color view %T", ErrForeignHandle, color)
	}
	mv, ok := mask.(*TextureView)
	if !ok {
		return nil, fmt.Errorf("%w: mask view %T", ErrForeignHandle, mask)
	}
	if cv.IsDestroyed() || mv.IsDestroyed() {
		return nil, ErrTextureDestroyed
	}
	c.groups.Add(1)
	return &BindGroup{label: "glyphatlas bind group", Color: cv, Mask: mv}, nil
}

// DestroyBindGroup marks the group destroyed. Destroying twice is a no-op.
func (c *PipelineCache) DestroyBindGroup(group gpucore.BindGroup) {
	if g, ok := group.(*BindGroup); ok && !g.destroyed.Swap(true) {
		c.groups.Add(-1)
	}
}

// LiveBindGroups returns the number of bind groups not yet destroyed.
func (c *PipelineCache) LiveBindGroups() int {
	return int(c.groups.Load())
}

// GetOrCreatePipeline returns the pipeline record for the variant,
// creating it on first use.
func (c *PipelineCache) GetOrCreatePipeline(format gputypes.TextureFormat, multisample gputypes.MultisampleState, depthStencil *gpucore.DepthStencilState) (gpucore.RenderPipeline, error) {
	key := gpucore.NewPipelineKey(format, multisample, depthStencil)

	// Fast path: read lock
	c.mu.RLock()
	if p, ok := c.pipelines[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[key]; ok {
		c.hits.Add(1)
		return p, nil
	}
	c.misses.Add(1)
	p := &RenderPipeline{Key: key}
	c.pipelines[key] = p
	return p, nil
}

// Stats returns the number of cache hits and misses.
func (c *PipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the number of cached pipelines.
func (c *PipelineCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}
