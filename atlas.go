// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyphatlas/gpucore"
)

// Atlas holds a mask surface and a color surface and the bind group that
// exposes both to the text pipeline.
//
// The bind group references the surfaces' current texture views. Whenever
// a surface grows its view is replaced, so the atlas builds a new bind
// group; callers must fetch BindGroup again after Grow or PrepareGlyph.
//
// Atlas is not safe for concurrent use.
type Atlas struct {
	device gpucore.Device
	queue  gpucore.Queue
	cache  gpucore.PipelineCache

	format    gputypes.TextureFormat
	colorMode ColorMode

	mask  *Surface
	color *Surface

	bindGroup gpucore.BindGroup
}

// New creates an atlas drawing into targets of the given format. The color
// mode comes from the options and defaults to ColorModeAccurate.
func New(device gpucore.Device, queue gpucore.Queue, cache gpucore.PipelineCache, format gputypes.TextureFormat, opts ...Option) (*Atlas, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, ErrNilPipelineCache
	}

	mask, err := newSurface(device, queue, ContentMask, MaskFormat, &cfg)
	if err != nil {
		return nil, err
	}
	color, err := newSurface(device, queue, ContentColor, cfg.ColorMode.ColorFormat(), &cfg)
	if err != nil {
		mask.destroy()
		return nil, err
	}

	a := &Atlas{
		device:    device,
		queue:     queue,
		cache:     cache,
		format:    format,
		colorMode: cfg.ColorMode,
		mask:      mask,
		color:     color,
	}
	if err := a.Rebind(); err != nil {
		mask.destroy()
		color.destroy()
		return nil, err
	}

	Logger().Info("glyphatlas: atlas created",
		"format", format,
		"colorMode", cfg.ColorMode,
		"size", mask.Size(),
		"maxDimension", mask.MaxDimension())
	return a, nil
}

// NewWithColorMode creates an atlas with an explicit color mode.
func NewWithColorMode(device gpucore.Device, queue gpucore.Queue, cache gpucore.PipelineCache, format gputypes.TextureFormat, mode ColorMode, opts ...Option) (*Atlas, error) {
	return New(device, queue, cache, format, append(opts[:len(opts):len(opts)], WithColorMode(mode))...)
}

// Surface returns the surface holding glyphs of the given content type.
func (a *Atlas) Surface(kind ContentType) *Surface {
	switch kind {
	case ContentMask:
		return a.mask
	case ContentColor:
		return a.color
	default:
		panic(fmt.Sprintf("glyphatlas: unknown content type %d", kind))
	}
}

// Grow grows the surface of the given kind and rebuilds the bind group.
// It returns false when that surface is already at the device maximum.
// If the surface grew but the new bind group could not be created, Grow
// returns true with the error; the previous bind group is kept.
func (a *Atlas) Grow(kind ContentType, src GlyphSource) (bool, error) {
	grown, err := a.Surface(kind).Grow(src)
	if err != nil || !grown {
		return false, err
	}
	if err := a.Rebind(); err != nil {
		return true, err
	}
	return true, nil
}

// Rebind creates a bind group from both surfaces' current views and
// releases the previous one.
func (a *Atlas) Rebind() error {
	group, err := a.cache.CreateAtlasBindGroup(a.color.View(), a.mask.View())
	if err != nil {
		return fmt.Errorf("glyphatlas: create bind group: %w", err)
	}
	if a.bindGroup != nil {
		a.cache.DestroyBindGroup(a.bindGroup)
	}
	a.bindGroup = group
	Logger().Debug("glyphatlas: bind group rebuilt",
		"maskSize", a.mask.Size(),
		"colorSize", a.color.Size())
	return nil
}

// Trim empties the usage sets of both surfaces.
func (a *Atlas) Trim() {
	a.mask.Trim()
	a.color.Trim()
}

// GetOrCreatePipeline returns the text pipeline for this atlas's output
// format and the given multisample and depth state.
func (a *Atlas) GetOrCreatePipeline(multisample gputypes.MultisampleState, depthStencil *gpucore.DepthStencilState) (gpucore.RenderPipeline, error) {
	return a.cache.GetOrCreatePipeline(a.format, multisample, depthStencil)
}

// Lookup finds a cached glyph on either surface without touching the
// recency order or the usage set.
func (a *Atlas) Lookup(key GlyphKey) (GlyphDetails, ContentType, bool) {
	if d, ok := a.mask.Peek(key); ok {
		return d, ContentMask, true
	}
	if d, ok := a.color.Peek(key); ok {
		return d, ContentColor, true
	}
	return GlyphDetails{}, 0, false
}

// BindGroup returns the current bind group.
func (a *Atlas) BindGroup() gpucore.BindGroup { return a.bindGroup }

// Format returns the output format pipelines are built for.
func (a *Atlas) Format() gputypes.TextureFormat { return a.format }

// ColorMode returns the color mode chosen at creation.
func (a *Atlas) ColorMode() ColorMode { return a.colorMode }

// Destroy releases the bind group and both textures.
func (a *Atlas) Destroy() {
	if a.bindGroup != nil {
		a.cache.DestroyBindGroup(a.bindGroup)
		a.bindGroup = nil
	}
	a.mask.destroy()
	a.color.destroy()
}
