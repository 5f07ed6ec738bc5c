// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"fmt"
	"math"
)

// rasterized is a freshly rasterized glyph of either key variant.
type rasterized struct {
	data          []byte
	width, height int
	left, top     int
	kind          ContentType
}

// PrepareGlyph makes a glyph available for drawing and marks it in use.
//
// A cached glyph is returned directly. Otherwise it is rasterized through
// src, packed and uploaded; when its surface is full the surface is grown
// and the bind group rebuilt. Glyphs without pixels are cached as skipped
// and never uploaded.
//
// PrepareGlyph returns ErrAtlasFull when the surface cannot grow any
// further, and ErrRasterizationFailed when the rasterizer returns nothing.
// Evicting glyphs not in use and retrying may succeed after ErrAtlasFull.
func (a *Atlas) PrepareGlyph(key GlyphKey, src GlyphSource) (GlyphDetails, ContentType, error) {
	for _, s := range [...]*Surface{a.mask, a.color} {
		if d, ok := s.Get(key); ok {
			s.MarkInUse(key)
			return d, s.kind, nil
		}
	}

	r, err := rasterize(key, &src)
	if err != nil {
		return GlyphDetails{}, 0, err
	}
	if r.width > math.MaxUint16 || r.height > math.MaxUint16 ||
		r.left < math.MinInt16 || r.left > math.MaxInt16 ||
		r.top < math.MinInt16 || r.top > math.MaxInt16 {
		return GlyphDetails{}, 0, fmt.Errorf("%w: %v is %dx%d at (%d,%d)",
			ErrGlyphTooLarge, key, r.width, r.height, r.left, r.top)
	}

	s := a.Surface(r.kind)
	details := GlyphDetails{
		Width:  uint16(r.width),
		Height: uint16(r.height),
		Left:   int16(r.left),
		Top:    int16(r.top),
	}

	if r.width == 0 || r.height == 0 {
		s.Put(key, details)
		s.MarkInUse(key)
		return details, r.kind, nil
	}

	alloc, ok := s.Allocate(r.width, r.height)
	for !ok {
		grown, err := a.Grow(r.kind, src)
		if err != nil {
			return GlyphDetails{}, 0, err
		}
		if !grown {
			return GlyphDetails{}, 0, fmt.Errorf("%w: no room for %dx%d %v glyph", ErrAtlasFull, r.width, r.height, r.kind)
		}
		alloc, ok = s.Allocate(r.width, r.height)
	}

	x, y := alloc.Rect.Min.X, alloc.Rect.Min.Y
	if err := s.Upload(x, y, r.width, r.height, r.data); err != nil {
		s.packer.Deallocate(alloc.ID)
		return GlyphDetails{}, 0, err
	}

	details.GPUCache = GPUCacheStatus{
		InAtlas:     true,
		X:           uint16(x),
		Y:           uint16(y),
		ContentType: r.kind,
		Alloc:       alloc.ID,
	}
	s.Put(key, details)
	s.MarkInUse(key)
	return details, r.kind, nil
}

func rasterize(key GlyphKey, src *GlyphSource) (rasterized, error) {
	switch k := key.(type) {
	case TextKey:
		if src.Text == nil {
			return rasterized{}, fmt.Errorf("%w: %v", ErrNoRasterizer, k)
		}
		img, ok := src.Text.RasterizeText(k)
		if !ok {
			return rasterized{}, fmt.Errorf("%w: %v", ErrRasterizationFailed, k)
		}
		img.validate(k, nil, nil)
		return rasterized{
			data:   img.Data,
			width:  img.Width,
			height: img.Height,
			left:   img.Left,
			top:    img.Top,
			kind:   img.ContentType,
		}, nil

	case CustomKey:
		req := k.Request(src.Scale)
		if src.Custom == nil {
			return rasterized{}, fmt.Errorf("%w: %v", ErrNoRasterizer, k)
		}
		glyph, ok := src.Custom(req)
		if !ok {
			return rasterized{}, fmt.Errorf("%w: %v", ErrRasterizationFailed, req)
		}
		glyph.Validate(&req, nil)
		return rasterized{
			data:   glyph.Data,
			width:  int(k.Width),
			height: int(k.Height),
			kind:   glyph.ContentType,
		}, nil

	default:
		panic(fmt.Sprintf("glyphatlas: unknown glyph key type %T", key))
	}
}
