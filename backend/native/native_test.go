// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/glyphatlas"
	"github.com/gogpu/glyphatlas/gpucore"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	d, err := New(device, queue, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func TestNewErrors(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := New(nil, queue, gputypes.DefaultLimits()); !errors.Is(err, ErrNilHALDevice) {
		t.Errorf("New(nil device) error = %v, want ErrNilHALDevice", err)
	}
	if _, err := New(device, nil, gputypes.DefaultLimits()); !errors.Is(err, ErrNilHALQueue) {
		t.Errorf("New(nil queue) error = %v, want ErrNilHALQueue", err)
	}
}

func TestDeviceTextureLifecycle(t *testing.T) {
	d := newTestDevice(t)

	if d.MaxTextureDimension2D() != gputypes.DefaultLimits().MaxTextureDimension2D {
		t.Errorf("MaxTextureDimension2D() = %d", d.MaxTextureDimension2D())
	}

	tex, err := d.CreateTexture(&gpucore.TextureDescriptor{
		Label:  "mask",
		Width:  256,
		Height: 256,
		Format: gputypes.TextureFormatR8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if tex.Width() != 256 || tex.Format() != gputypes.TextureFormatR8Unorm || tex.Label() != "mask" {
		t.Errorf("texture = %q %dx%d %v", tex.Label(), tex.Width(), tex.Height(), tex.Format())
	}

	view, err := d.CreateTextureView(tex, "mask view")
	if err != nil {
		t.Fatalf("CreateTextureView() error = %v", err)
	}

	// Must not panic on the noop queue.
	d.WriteTexture(tex, gputypes.Origin3D{X: 4, Y: 4}, make([]byte, 8*8), 8,
		gputypes.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1})

	if d.LiveTextures() != 1 {
		t.Errorf("LiveTextures() = %d, want 1", d.LiveTextures())
	}
	d.DestroyTextureView(view)
	d.DestroyTextureView(view)
	d.DestroyTexture(tex)
	d.DestroyTexture(tex)
	if d.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d, want 0", d.LiveTextures())
	}
	if tex.(*Texture).Raw() != nil || view.(*TextureView).Raw() != nil {
		t.Error("destroyed handles still expose raw HAL objects")
	}
	if _, err := d.CreateTextureView(tex, "late"); !errors.Is(err, ErrTextureDestroyed) {
		t.Errorf("CreateTextureView(destroyed) error = %v, want ErrTextureDestroyed", err)
	}
}

func TestDeviceCreateTextureInvalidSize(t *testing.T) {
	d := newTestDevice(t)
	maxDim := d.MaxTextureDimension2D()

	for _, size := range [][2]uint32{{0, 16}, {16, 0}, {maxDim + 1, 16}} {
		_, err := d.CreateTexture(&gpucore.TextureDescriptor{
			Width: size[0], Height: size[1], Format: gputypes.TextureFormatR8Unorm,
		})
		if !errors.Is(err, ErrInvalidTextureSize) {
			t.Errorf("CreateTexture(%dx%d) error = %v, want ErrInvalidTextureSize", size[0], size[1], err)
		}
	}
}

// halProvider is a gpucontext.DeviceProvider that also exposes HAL handles.
type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

type stubDevice struct{}

func (stubDevice) Poll(bool) {}
func (stubDevice) Destroy()  {}

type stubQueue struct{}
type stubAdapter struct{}

func (p *halProvider) Device() gpucontext.Device             { return stubDevice{} }
func (p *halProvider) Queue() gpucontext.Queue               { return stubQueue{} }
func (p *halProvider) Adapter() gpucontext.Adapter           { return stubAdapter{} }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p *halProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }
func (p *halProvider) HalDevice() any                        { return p.device }
func (p *halProvider) HalQueue() any                         { return p.queue }

// plainProvider does not expose HAL handles.
type plainProvider struct{ halProvider }

func (p *plainProvider) HalDevice() {}

func TestFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d, err := FromProvider(&halProvider{device: device, queue: queue}, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("FromProvider() error = %v", err)
	}
	if got, _ := d.HAL(); got != device {
		t.Error("FromProvider() did not keep the provider's device")
	}

	if _, err := FromProvider(&halProvider{}, gputypes.DefaultLimits()); !errors.Is(err, ErrProviderNotHAL) {
		t.Errorf("FromProvider(nil handles) error = %v, want ErrProviderNotHAL", err)
	}
	var _ gpucontext.DeviceProvider = (*halProvider)(nil)
	var _ gpucontext.DeviceProvider = (*plainProvider)(nil)

	if _, err := FromProvider(&plainProvider{}, gputypes.DefaultLimits()); !errors.Is(err, ErrProviderNotHAL) {
		t.Errorf("FromProvider(no HAL) error = %v, want ErrProviderNotHAL", err)
	}
}

func TestPipelineCacheBindGroup(t *testing.T) {
	d := newTestDevice(t)
	c, err := NewPipelineCache(d)
	if err != nil {
		t.Fatalf("NewPipelineCache() error = %v", err)
	}
	defer c.Close()

	if c.AtlasLayout() == nil || c.ParamsLayout() == nil {
		t.Fatal("layouts not created")
	}

	views := make([]gpucore.TextureView, 0, 2)
	for _, format := range []gputypes.TextureFormat{gputypes.TextureFormatRGBA8UnormSrgb, gputypes.TextureFormatR8Unorm} {
		tex, err := d.CreateTexture(&gpucore.TextureDescriptor{
			Width: 64, Height: 64, Format: format,
			Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			t.Fatalf("CreateTexture() error = %v", err)
		}
		view, err := d.CreateTextureView(tex, "")
		if err != nil {
			t.Fatalf("CreateTextureView() error = %v", err)
		}
		views = append(views, view)
	}

	g, err := c.CreateAtlasBindGroup(views[0], views[1])
	if err != nil {
		t.Fatalf("CreateAtlasBindGroup() error = %v", err)
	}
	bg := g.(*BindGroup)
	if bg.Color != views[0] || bg.Mask != views[1] {
		t.Error("bind group views swapped")
	}
	c.DestroyBindGroup(g)
	c.DestroyBindGroup(g)

	d.DestroyTextureView(views[1])
	if _, err := c.CreateAtlasBindGroup(views[0], views[1]); !errors.Is(err, ErrTextureViewDestroyed) {
		t.Errorf("CreateAtlasBindGroup(destroyed) error = %v, want ErrTextureViewDestroyed", err)
	}
}

func TestPipelineCacheVariants(t *testing.T) {
	d := newTestDevice(t)
	c, err := NewPipelineCache(d)
	if err != nil {
		t.Fatalf("NewPipelineCache() error = %v", err)
	}
	defer c.Close()

	ms := gputypes.MultisampleState{Count: 1}
	depth := &gpucore.DepthStencilState{
		Format:       gputypes.TextureFormatDepth24PlusStencil8,
		DepthCompare: gputypes.CompareFunctionAlways,
	}

	p1, err := c.GetOrCreatePipeline(gputypes.TextureFormatBGRA8Unorm, ms, nil)
	if err != nil {
		t.Fatalf("GetOrCreatePipeline() error = %v", err)
	}
	p2, _ := c.GetOrCreatePipeline(gputypes.TextureFormatBGRA8Unorm, gputypes.MultisampleState{}, nil)
	p3, err := c.GetOrCreatePipeline(gputypes.TextureFormatBGRA8Unorm, ms, depth)
	if err != nil {
		t.Fatalf("GetOrCreatePipeline(depth) error = %v", err)
	}

	if p1 != p2 {
		t.Error("zero multisample state should share the single-sample pipeline")
	}
	if p1 == p3 {
		t.Error("depth variant shares pipeline with no-depth variant")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 2 {
		t.Errorf("Stats() = (%d, %d), want (1, 2)", hits, misses)
	}
	if got := c.HitRate(); got < 0.33 || got > 0.34 {
		t.Errorf("HitRate() = %v, want 1/3", got)
	}

	c.Close()
	if _, err := c.GetOrCreatePipeline(gputypes.TextureFormatRGBA8Unorm, ms, nil); !errors.Is(err, ErrPipelineCacheClosed) {
		t.Errorf("GetOrCreatePipeline after Close error = %v, want ErrPipelineCacheClosed", err)
	}
}

func TestCompileAtlasShader(t *testing.T) {
	code, err := compileShaderToSPIRV(atlasShaderSource)
	if err != nil {
		t.Fatalf("compileShaderToSPIRV() error = %v", err)
	}
	// SPIR-V magic number.
	if len(code) == 0 || code[0] != 0x07230203 {
		t.Errorf("SPIR-V does not start with the magic number")
	}
}

func TestAtlasOnNoopDevice(t *testing.T) {
	d := newTestDevice(t)
	b, err := NewBackendWithDevice(d)
	if err != nil {
		t.Fatalf("NewBackendWithDevice() error = %v", err)
	}
	defer b.Close()

	atlas, err := glyphatlas.New(b.Device(), b.Queue(), b.PipelineCache(),
		gputypes.TextureFormatBGRA8Unorm, glyphatlas.WithInitialSize(128))
	if err != nil {
		t.Fatalf("glyphatlas.New() error = %v", err)
	}
	defer atlas.Destroy()

	custom := func(req glyphatlas.RasterizeCustomGlyphRequest) (glyphatlas.RasterizedCustomGlyph, bool) {
		return glyphatlas.RasterizedCustomGlyph{
			Data:        make([]byte, int(req.Width)*int(req.Height)*4),
			ContentType: glyphatlas.ContentColor,
		}, true
	}
	src := glyphatlas.GlyphSource{Custom: custom, Scale: 1}

	for id := range glyphatlas.CustomGlyphID(40) {
		key := glyphatlas.CustomKey{GlyphID: id, Width: 24, Height: 24}
		if _, _, err := atlas.PrepareGlyph(key, src); err != nil {
			t.Fatalf("PrepareGlyph(%d) error = %v", id, err)
		}
	}

	color := atlas.Surface(glyphatlas.ContentColor)
	if color.Size() <= 128 {
		t.Errorf("color surface size = %d, want growth past 128", color.Size())
	}
	if d.LiveTextures() != 2 {
		t.Errorf("LiveTextures() = %d, want 2", d.LiveTextures())
	}
	if g := atlas.BindGroup().(*BindGroup); g.Color != color.View() {
		t.Error("bind group not rebuilt for the grown color view")
	}

	if _, err := atlas.GetOrCreatePipeline(gputypes.MultisampleState{Count: 1}, nil); err != nil {
		t.Errorf("GetOrCreatePipeline() error = %v", err)
	}
}
