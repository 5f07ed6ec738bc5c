// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import "fmt"

// RasterizeCustomGlyphRequest asks a CustomGlyphRasterizer for a bitmap.
type RasterizeCustomGlyphRequest struct {
	ID CustomGlyphID

	// Width and Height are the bitmap size in physical pixels.
	Width, Height uint16

	XBin, YBin SubpixelBin

	// Scale is the render scale factor the size was computed with.
	Scale float32
}

func (r RasterizeCustomGlyphRequest) String() string {
	return fmt.Sprintf("{id=%d size=%dx%d bin=%d,%d scale=%g}", r.ID, r.Width, r.Height, r.XBin, r.YBin, r.Scale)
}

// RasterizedCustomGlyph is the output of a CustomGlyphRasterizer.
type RasterizedCustomGlyph struct {
	// Data holds Width*Height*ContentType.Channels() bytes, rows top to bottom.
	Data []byte

	ContentType ContentType
}

// Validate panics with a *ContractViolation when the glyph does not match
// the request. A non-nil expected also pins the content type.
func (g RasterizedCustomGlyph) Validate(req *RasterizeCustomGlyphRequest, expected *ContentType) {
	if !g.ContentType.valid() {
		violate(fmt.Sprintf("custom glyph has unknown content type %d", g.ContentType), *req)
	}
	if expected != nil && g.ContentType != *expected {
		violate(fmt.Sprintf("custom glyph content type %v, expected %v", g.ContentType, *expected), *req)
	}
	want := int(req.Width) * int(req.Height) * g.ContentType.Channels()
	if len(g.Data) != want {
		violate(fmt.Sprintf("custom glyph data has %d bytes, expected %d", len(g.Data), want), *req)
	}
}

// CustomGlyphRasterizer produces bitmaps for custom glyphs. It must be a
// pure function of the request: once it has returned a glyph for a request
// it must keep returning the same pixels while the glyph is cached.
// Returning false means the glyph cannot be drawn.
type CustomGlyphRasterizer func(req RasterizeCustomGlyphRequest) (RasterizedCustomGlyph, bool)
