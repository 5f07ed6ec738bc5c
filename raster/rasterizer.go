// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/glyphatlas"
)

// FakeItalicSkew is the horizontal shear applied for glyphatlas.FakeItalic,
// roughly a 14 degree slant.
const FakeItalicSkew = 0.25

// Rasterizer renders outline glyphs of registered fonts as single-channel
// coverage masks. It implements glyphatlas.TextRasterizer.
//
// Rasterizer is safe for concurrent use; calls are serialized.
type Rasterizer struct {
	fonts *Fonts

	mu  sync.Mutex
	buf sfnt.Buffer
	vr  vector.Rasterizer
}

var _ glyphatlas.TextRasterizer = (*Rasterizer)(nil)

// New creates a rasterizer for fonts registered in fonts.
func New(fonts *Fonts) *Rasterizer {
	return &Rasterizer{fonts: fonts}
}

// Fonts returns the registry the rasterizer reads from.
func (r *Rasterizer) Fonts() *Fonts { return r.fonts }

// RasterizeText renders the glyph named by key. The result is positioned
// so that drawing it with its top-left corner at (penX+Left, penY-Top)
// reproduces the outline at the key's sub-pixel pen position. Glyphs with
// no outline, such as spaces, produce an empty image.
//
// It returns false when the font is not registered or the glyph cannot be
// loaded.
func (r *Rasterizer) RasterizeText(key glyphatlas.TextKey) (glyphatlas.GlyphImage, bool) {
	face, err := r.fonts.Face(key.FontID)
	if err != nil {
		glyphatlas.Logger().Debug("raster: unknown font", "key", key)
		return glyphatlas.GlyphImage{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	segs, err := face.font.LoadGlyph(&r.buf, sfnt.GlyphIndex(key.GlyphID), key.Size, nil)
	if err != nil {
		glyphatlas.Logger().Debug("raster: load glyph failed", "key", key, "error", err)
		return glyphatlas.GlyphImage{}, false
	}

	xf := transform{
		dx: key.XBin.Offset(),
		dy: key.YBin.Offset(),
	}
	if key.Flags&glyphatlas.FakeItalic != 0 {
		xf.skew = FakeItalicSkew
	}
	return r.fill(segs, xf), true
}

// transform maps sfnt coordinates (y down, origin at the pen) to pixels.
type transform struct {
	skew   float32
	dx, dy float32
}

func (t transform) apply(p fixed.Point26_6) (x, y float32) {
	x = float32(p.X) / 64
	y = float32(p.Y) / 64
	x -= y * t.skew
	return x + t.dx, y + t.dy
}

// args returns the number of points a segment uses.
func args(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}

func (r *Rasterizer) fill(segs sfnt.Segments, xf transform) glyphatlas.GlyphImage {
	empty := glyphatlas.GlyphImage{ContentType: glyphatlas.ContentMask}
	if len(segs) == 0 {
		return empty
	}

	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for _, seg := range segs {
		for i := range args(seg.Op) {
			x, y := xf.apply(seg.Args[i])
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	x0, y0 := int(math.Floor(float64(minX))), int(math.Floor(float64(minY)))
	x1, y1 := int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY)))
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return empty
	}

	// vector.Rasterizer expects coordinates in the positive quadrant.
	ox, oy := float32(x0), float32(y0)
	pt := func(p fixed.Point26_6) (float32, float32) {
		x, y := xf.apply(p)
		return x - ox, y - oy
	}

	r.vr.Reset(w, h)
	r.vr.DrawOp = draw.Src
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			r.vr.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			r.vr.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			tx, ty := pt(seg.Args[1])
			r.vr.QuadTo(cx, cy, tx, ty)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(seg.Args[0])
			c2x, c2y := pt(seg.Args[1])
			tx, ty := pt(seg.Args[2])
			r.vr.CubeTo(c1x, c1y, c2x, c2y, tx, ty)
		}
	}
	r.vr.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.vr.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return glyphatlas.GlyphImage{
		Data:        mask.Pix,
		Width:       w,
		Height:      h,
		Left:        x0,
		Top:         -y0,
		ContentType: glyphatlas.ContentMask,
	}
}
