// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyphatlas"
	"github.com/gogpu/glyphatlas/gpucore"
)

// Pipeline cache errors.
var (
	// ErrPipelineCacheNilDevice is returned when creating a cache without a device.
	ErrPipelineCacheNilDevice = errors.New("native: pipeline cache device is nil")

	// ErrPipelineCacheClosed is returned after Close.
	ErrPipelineCacheClosed = errors.New("native: pipeline cache is closed")
)

// BindGroup binds a color and a mask atlas view with the atlas sampler.
type BindGroup struct {
	raw   hal.BindGroup
	Color *TextureView
	Mask  *TextureView

	destroyed atomic.Bool
}

// Label returns the bind group's debug label.
func (g *BindGroup) Label() string { return "glyphatlas_atlas_bind" }

// Raw returns the underlying HAL bind group.
func (g *BindGroup) Raw() hal.BindGroup { return g.raw }

// RenderPipeline is a compiled text pipeline variant.
type RenderPipeline struct {
	raw hal.RenderPipeline
	Key gpucore.PipelineKey
}

// Label returns the pipeline's debug label.
func (p *RenderPipeline) Label() string { return p.Key.Label() }

// Raw returns the underlying HAL render pipeline.
func (p *RenderPipeline) Raw() hal.RenderPipeline { return p.raw }

// PipelineCache builds atlas bind groups and caches text pipelines.
//
// The bind group layouts and the sampler are created up front. The shader
// is compiled on the first pipeline request, so a cache used only for
// bind groups never invokes the shader compiler.
//
// Bind group 0 (atlas):
//   - binding 0: color atlas, texture_2d<f32>
//   - binding 1: mask atlas, texture_2d<f32>
//   - binding 2: nearest sampler
//
// Bind group 1 (params): binding 0, a ParamsSize-byte uniform buffer
// holding the screen resolution.
//
// Thread Safety:
// PipelineCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes.
type PipelineCache struct {
	device hal.Device

	atlasLayout  hal.BindGroupLayout
	paramsLayout hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	sampler      hal.Sampler

	// mu protects shader, pipelines and closed.
	mu        sync.RWMutex
	shader    hal.ShaderModule
	pipelines map[gpucore.PipelineKey]*RenderPipeline
	closed    bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ gpucore.PipelineCache = (*PipelineCache)(nil)

// NewPipelineCache creates the layouts and sampler on device.
func NewPipelineCache(device *Device) (*PipelineCache, error) {
	if device == nil || device.device == nil {
		return nil, ErrPipelineCacheNilDevice
	}
	c := &PipelineCache{
		device:    device.device,
		pipelines: make(map[gpucore.PipelineKey]*RenderPipeline),
	}
	if err := c.createLayouts(); err != nil {
		c.destroyLayouts()
		return nil, err
	}
	return c, nil
}

func (c *PipelineCache) createLayouts() error {
	var err error
	c.atlasLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyphatlas_atlas_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("native: create atlas bind group layout: %w", err)
	}

	c.paramsLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyphatlas_params_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("native: create params bind group layout: %w", err)
	}

	c.pipeLayout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "glyphatlas_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.atlasLayout, c.paramsLayout},
	})
	if err != nil {
		return fmt.Errorf("native: create pipeline layout: %w", err)
	}

	// Glyphs are drawn at their rasterized size, so nearest filtering
	// never reads across the shadow margin.
	c.sampler, err = c.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "glyphatlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("native: create atlas sampler: %w", err)
	}
	return nil
}

// AtlasLayout returns the layout of bind group 0.
func (c *PipelineCache) AtlasLayout() hal.BindGroupLayout { return c.atlasLayout }

// ParamsLayout returns the layout of bind group 1.
func (c *PipelineCache) ParamsLayout() hal.BindGroupLayout { return c.paramsLayout }

// CreateAtlasBindGroup binds the color view at 0, the mask view at 1 and
// the sampler at 2.
func (c *PipelineCache) CreateAtlasBindGroup(color, mask gpucore.TextureView) (gpucore.BindGroup, error) {
	cv, ok := color.(*TextureView)
	if !ok {
		return nil, fmt.Errorf("%w: color view %T", ErrForeignHandle, color)
	}
	mv, ok := mask.(*TextureView)
	if !ok {
		return nil, fmt.Errorf("%w: mask view %T", ErrForeignHandle, mask)
	}
	colorRaw, maskRaw := cv.Raw(), mv.Raw()
	if colorRaw == nil || maskRaw == nil {
		return nil, ErrTextureViewDestroyed
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrPipelineCacheClosed
	}

	raw, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glyphatlas_atlas_bind",
		Layout: c.atlasLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: colorRaw.NativeHandle()}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: maskRaw.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: c.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create atlas bind group: %w", err)
	}
	return &BindGroup{raw: raw, Color: cv, Mask: mv}, nil
}

// DestroyBindGroup releases a bind group. Destroying twice is a no-op.
func (c *PipelineCache) DestroyBindGroup(group gpucore.BindGroup) {
	g, ok := group.(*BindGroup)
	if !ok || g == nil {
		return
	}
	if !g.destroyed.Swap(true) {
		c.device.DestroyBindGroup(g.raw)
	}
}

// GetOrCreatePipeline returns a cached pipeline or creates a new one.
//
// This method implements the "get or create" pattern with double-check locking:
//  1. Fast path: RLock, check cache, return if found
//  2. Slow path: Lock, double-check, create if needed
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

	// Slow path: write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrPipelineCacheClosed
	}
	if p, ok := c.pipelines[key]; ok {
		c.hits.Add(1)
		return p, nil
	}
	c.misses.Add(1)

	if c.shader == nil {
		shader, err := createAtlasShader(c.device)
		if err != nil {
			return nil, err
		}
		c.shader = shader
	}

	raw, err := c.device.CreateRenderPipeline(c.pipelineDescriptor(&key))
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline %s: %w", key.Label(), err)
	}
	p := &RenderPipeline{raw: raw, Key: key}
	c.pipelines[key] = p

	glyphatlas.Logger().Debug("native: text pipeline created",
		"format", key.Format,
		"samples", key.SampleCount(),
		"depth", key.HasDepth)
	return p, nil
}

func (c *PipelineCache) pipelineDescriptor(key *gpucore.PipelineKey) *hal.RenderPipelineDescriptor {
	premulBlend := gputypes.BlendStatePremultiplied()
	desc := &hal.RenderPipelineDescriptor{
		Label:  key.Label(),
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: "vs_main",
			Buffers:    glyphInstanceLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    key.Format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: key.Multisample,
	}
	if key.HasDepth {
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            key.Depth.Format,
			DepthWriteEnabled: key.Depth.DepthWriteEnabled,
			DepthCompare:      key.Depth.DepthCompare,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0x00,
			StencilWriteMask:  0x00,
		}
	}
	return desc
}

// glyphInstanceLayout describes one glyph instance per GlyphInstanceSize bytes.
func glyphInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: GlyphInstanceSize,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatSint32x2, Offset: 0, ShaderLocation: 0}, // pos
				{Format: gputypes.VertexFormatUint32, Offset: 8, ShaderLocation: 1},   // dim
				{Format: gputypes.VertexFormatUint32, Offset: 12, ShaderLocation: 2},  // uv
				{Format: gputypes.VertexFormatUint32, Offset: 16, ShaderLocation: 3},  // color
				{Format: gputypes.VertexFormatUint32, Offset: 20, ShaderLocation: 4},  // content type
				{Format: gputypes.VertexFormatFloat32, Offset: 24, ShaderLocation: 5}, // depth
			},
		},
	}
}

// Stats returns cache statistics.
//
// Returns the number of cache hits and misses.
func (c *PipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// HitRate returns the cache hit rate (0.0 to 1.0).
//
// Returns 0.0 if no requests have been made.
func (c *PipelineCache) HitRate() float64 {
	hits, misses := c.Stats()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// Size returns the number of cached pipelines.
func (c *PipelineCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// Close destroys all cached pipelines, the shader, the layouts and the
// sampler. Bind groups created earlier must be destroyed by their owners.
func (c *PipelineCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	for _, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p.raw)
	}
	c.pipelines = make(map[gpucore.PipelineKey]*RenderPipeline)
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
	c.destroyLayouts()
}

func (c *PipelineCache) destroyLayouts() {
	if c.sampler != nil {
		c.device.DestroySampler(c.sampler)
		c.sampler = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.paramsLayout != nil {
		c.device.DestroyBindGroupLayout(c.paramsLayout)
		c.paramsLayout = nil
	}
	if c.atlasLayout != nil {
		c.device.DestroyBindGroupLayout(c.atlasLayout)
		c.atlasLayout = nil
	}
}
