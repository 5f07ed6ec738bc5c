// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyphatlas/gpucore"
)

var errInjected = errors.New("injected device failure")

// fakeTexture records uploads instead of storing a full pixel buffer, so
// tests can use large surfaces.
type fakeTexture struct {
	label         string
	width, height uint32
	format        gputypes.TextureFormat
	destroyed     bool
	writes        []fakeWrite
}

type fakeWrite struct {
	x, y, w, h  uint32
	bytesPerRow uint32
	data        []byte
}

func (t *fakeTexture) Label() string                  { return t.label }
func (t *fakeTexture) Width() uint32                  { return t.width }
func (t *fakeTexture) Height() uint32                 { return t.height }
func (t *fakeTexture) Format() gputypes.TextureFormat { return t.format }

// texel returns the bytes of the texel at (x, y), or nil if never written.
func (t *fakeTexture) texel(x, y uint32) []byte {
	bpp := uint32(gpucore.BytesPerPixel(t.format))
	var out []byte
	for _, w := range t.writes {
		if x < w.x || y < w.y || x >= w.x+w.w || y >= w.y+w.h {
			continue
		}
		off := (y-w.y)*w.bytesPerRow + (x-w.x)*bpp
		out = w.data[off : off+bpp]
	}
	return out
}

type fakeView struct {
	label     string
	texture   *fakeTexture
	destroyed bool
}

func (v *fakeView) Label() string { return v.label }

// fakeDevice implements gpucore.Device and gpucore.Queue.
type fakeDevice struct {
	maxDim     uint32
	failCreate int // CreateTexture calls left before failing; negative disables
	textures   []*fakeTexture
	views      []*fakeView
}

func newFakeDevice(maxDim uint32) *fakeDevice {
	return &fakeDevice{maxDim: maxDim, failCreate: -1}
}

func (d *fakeDevice) MaxTextureDimension2D() uint32 { return d.maxDim }

func (d *fakeDevice) CreateTexture(desc *gpucore.TextureDescriptor) (gpucore.Texture, error) {
	if d.failCreate == 0 {
		return nil, errInjected
	}
	if d.failCreate > 0 {
		d.failCreate--
	}
	if desc.Width > d.maxDim || desc.Height > d.maxDim {
		return nil, fmt.Errorf("texture %dx%d exceeds %d", desc.Width, desc.Height, d.maxDim)
	}
	tex := &fakeTexture{label: desc.Label, width: desc.Width, height: desc.Height, format: desc.Format}
	d.textures = append(d.textures, tex)
	return tex, nil
}

func (d *fakeDevice) CreateTextureView(texture gpucore.Texture, label string) (gpucore.TextureView, error) {
	v := &fakeView{label: label, texture: texture.(*fakeTexture)}
	d.views = append(d.views, v)
	return v, nil
}

func (d *fakeDevice) DestroyTexture(texture gpucore.Texture) {
	texture.(*fakeTexture).destroyed = true
}

func (d *fakeDevice) DestroyTextureView(view gpucore.TextureView) {
	view.(*fakeView).destroyed = true
}

func (d *fakeDevice) WriteTexture(dst gpucore.Texture, origin gputypes.Origin3D, data []byte, bytesPerRow uint32, size gputypes.Extent3D) {
	tex := dst.(*fakeTexture)
	if tex.destroyed {
		panic("write to destroyed texture")
	}
	tex.writes = append(tex.writes, fakeWrite{
		x: origin.X, y: origin.Y, w: size.Width, h: size.Height,
		bytesPerRow: bytesPerRow,
		data:        append([]byte(nil), data...),
	})
}

func (d *fakeDevice) liveTextures() int {
	n := 0
	for _, t := range d.textures {
		if !t.destroyed {
			n++
		}
	}
	return n
}

type fakeBindGroup struct {
	color, mask *fakeView
	destroyed   bool
}

func (g *fakeBindGroup) Label() string { return "fake bind group" }

type fakePipeline struct {
	format gputypes.TextureFormat
}

func (p *fakePipeline) Label() string { return "fake pipeline" }

type pipelineKey struct {
	format gputypes.TextureFormat
	count  uint32
	depth  gputypes.TextureFormat
}

// fakeCache implements gpucore.PipelineCache.
type fakeCache struct {
	failBind  bool
	groups    []*fakeBindGroup
	pipelines map[pipelineKey]*fakePipeline
}

func newFakeCache() *fakeCache {
	return &fakeCache{pipelines: make(map[pipelineKey]*fakePipeline)}
}

func (c *fakeCache) CreateAtlasBindGroup(color, mask gpucore.TextureView) (gpucore.BindGroup, error) {
	if c.failBind {
		return nil, errInjected
	}
	g := &fakeBindGroup{color: color.(*fakeView), mask: mask.(*fakeView)}
	c.groups = append(c.groups, g)
	return g, nil
}

func (c *fakeCache) DestroyBindGroup(group gpucore.BindGroup) {
	group.(*fakeBindGroup).destroyed = true
}

func (c *fakeCache) GetOrCreatePipeline(format gputypes.TextureFormat, ms gputypes.MultisampleState, ds *gpucore.DepthStencilState) (gpucore.RenderPipeline, error) {
	key := pipelineKey{format: format, count: ms.Count}
	if ds != nil {
		key.depth = ds.Format
	}
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	p := &fakePipeline{format: format}
	c.pipelines[key] = p
	return p, nil
}

func newTestSurface(t *testing.T, dev *fakeDevice, kind ContentType, opts ...Option) *Surface {
	t.Helper()
	format := MaskFormat
	if kind == ContentColor {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	s, err := NewSurface(dev, dev, kind, format, opts...)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	return s
}

func newTestAtlas(t *testing.T, dev *fakeDevice, opts ...Option) (*Atlas, *fakeCache) {
	t.Helper()
	cache := newFakeCache()
	a, err := New(dev, dev, cache, gputypes.TextureFormatBGRA8Unorm, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a, cache
}

// expectViolation runs f and fails the test unless it panics with a
// *ContractViolation.
func expectViolation(t *testing.T, f func()) *ContractViolation {
	t.Helper()
	var got *ContractViolation
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			v, ok := r.(*ContractViolation)
			if !ok {
				panic(r)
			}
			got = v
		}()
		f()
	}()
	if got == nil {
		t.Fatal("expected a contract violation panic")
	}
	return got
}

// solidGlyph returns a w x h bitmap filled with value.
func solidGlyph(w, h, channels int, value byte) []byte {
	data := make([]byte, w*h*channels)
	for i := range data {
		data[i] = value
	}
	return data
}

// glyphRasterizer serves deterministic text and custom glyphs. Text glyph
// sizes derive from the glyph ID; custom glyphs fill with their ID.
type glyphRasterizer struct {
	calls   int
	missing map[GlyphKey]bool
	kind    ContentType
}

func (r *glyphRasterizer) RasterizeText(key TextKey) (GlyphImage, bool) {
	r.calls++
	if r.missing[key] {
		return GlyphImage{}, false
	}
	w, h := int(key.GlyphID%17)+3, int(key.GlyphID%11)+5
	return GlyphImage{
		Data:        solidGlyph(w, h, r.kind.Channels(), byte(key.GlyphID)),
		Width:       w,
		Height:      h,
		Left:        1,
		Top:         h,
		ContentType: r.kind,
	}, true
}

func (r *glyphRasterizer) custom(req RasterizeCustomGlyphRequest) (RasterizedCustomGlyph, bool) {
	r.calls++
	key := CustomKey{GlyphID: req.ID, Width: req.Width, Height: req.Height, XBin: req.XBin, YBin: req.YBin}
	if r.missing[key] {
		return RasterizedCustomGlyph{}, false
	}
	return RasterizedCustomGlyph{
		Data:        solidGlyph(int(req.Width), int(req.Height), 4, byte(req.ID)),
		ContentType: ContentColor,
	}, true
}

func (r *glyphRasterizer) source() GlyphSource {
	return GlyphSource{Text: r, Custom: r.custom, Scale: 1}
}
