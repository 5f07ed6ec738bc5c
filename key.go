// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"fmt"
	"math"

	"golang.org/x/image/math/fixed"
)

// GlyphKey identifies a rasterized glyph bitmap.
//
// The set of implementations is closed: TextKey and CustomKey. Both are
// comparable structs, so a GlyphKey can be used directly as a map key and
// two equal keys always describe pixel-identical bitmaps.
type GlyphKey interface {
	glyphKey()
}

// SubpixelBins is the number of sub-pixel positions per axis.
const SubpixelBins = 4

// SubpixelBin is a quantized fractional pen position.
type SubpixelBin uint8

// Sub-pixel bins, a quarter pixel apart.
const (
	SubpixelZero SubpixelBin = iota
	SubpixelOne
	SubpixelTwo
	SubpixelThree
)

// SubpixelBinFor splits a pen position into a whole pixel and a bin.
// Fractions within 1/8 pixel of the next integer round up to it.
func SubpixelBinFor(pos float32) (int32, SubpixelBin) {
	trunc := int32(pos)
	fract := pos - float32(trunc)

	if math.Signbit(float64(pos)) {
		switch {
		case fract > -0.125:
			return trunc, SubpixelZero
		case fract > -0.375:
			return trunc - 1, SubpixelThree
		case fract > -0.625:
			return trunc - 1, SubpixelTwo
		case fract > -0.875:
			return trunc - 1, SubpixelOne
		default:
			return trunc - 1, SubpixelZero
		}
	}

	switch {
	case fract < 0.125:
		return trunc, SubpixelZero
	case fract < 0.375:
		return trunc, SubpixelOne
	case fract < 0.625:
		return trunc, SubpixelTwo
	case fract < 0.875:
		return trunc, SubpixelThree
	default:
		return trunc + 1, SubpixelZero
	}
}

// Offset returns the fractional pixel offset the bin stands for.
func (b SubpixelBin) Offset() float32 {
	switch b {
	case SubpixelOne:
		return 0.25
	case SubpixelTwo:
		return 0.5
	case SubpixelThree:
		return 0.75
	default:
		return 0
	}
}

// TextFlags alter how a text glyph is rasterized.
type TextFlags uint8

const (
	// FakeItalic slants an upright outline.
	FakeItalic TextFlags = 1 << iota
)

// TextKey identifies a shaped glyph from a font.
type TextKey struct {
	// FontID identifies the font face, see raster.Fonts.
	FontID uint64

	// GlyphID is the glyph index within the font.
	GlyphID uint16

	// Size is the font size in pixels per em.
	Size fixed.Int26_6

	// XBin and YBin are the sub-pixel pen position.
	XBin, YBin SubpixelBin

	Flags TextFlags
}

func (TextKey) glyphKey() {}

func (k TextKey) String() string {
	return fmt.Sprintf("text(font=%#x glyph=%d size=%v bin=%d,%d flags=%d)",
		k.FontID, k.GlyphID, k.Size, k.XBin, k.YBin, k.Flags)
}

// CustomGlyphID is the caller's identifier for a custom glyph.
type CustomGlyphID uint16

// CustomKey identifies a glyph produced by a CustomGlyphRasterizer.
type CustomKey struct {
	GlyphID CustomGlyphID

	// Width and Height are the bitmap size in physical pixels.
	Width, Height uint16

	XBin, YBin SubpixelBin
}

func (CustomKey) glyphKey() {}

func (k CustomKey) String() string {
	return fmt.Sprintf("custom(id=%d %dx%d bin=%d,%d)", k.GlyphID, k.Width, k.Height, k.XBin, k.YBin)
}

// Request builds the rasterization request for the key at the given scale.
func (k CustomKey) Request(scale float32) RasterizeCustomGlyphRequest {
	return RasterizeCustomGlyphRequest{
		ID:     k.GlyphID,
		Width:  k.Width,
		Height: k.Height,
		XBin:   k.XBin,
		YBin:   k.YBin,
		Scale:  scale,
	}
}
