// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import "fmt"

// GlyphImage is a rasterized text glyph.
type GlyphImage struct {
	// Data holds Width*Height*ContentType.Channels() bytes, rows top to bottom.
	Data []byte

	Width, Height int

	// Left and Top place the bitmap relative to the pen position:
	// Left pixels right of it, Top pixels above it.
	Left, Top int

	ContentType ContentType
}

// TextRasterizer renders text glyphs. RasterizeText must be deterministic
// and must not serve results from a cache the atlas cannot see; the atlas
// calls it again to repopulate a grown texture.
type TextRasterizer interface {
	RasterizeText(key TextKey) (GlyphImage, bool)
}

// TextRasterizerFunc adapts a function to TextRasterizer.
type TextRasterizerFunc func(key TextKey) (GlyphImage, bool)

// RasterizeText calls f(key).
func (f TextRasterizerFunc) RasterizeText(key TextKey) (GlyphImage, bool) {
	return f(key)
}

// validate panics with a *ContractViolation when the image is malformed
// or disagrees with a previously cached size and content type.
func (img *GlyphImage) validate(key TextKey, cached *GlyphDetails, kind *ContentType) {
	if img.Width < 0 || img.Height < 0 {
		violate(fmt.Sprintf("text glyph has negative size %dx%d", img.Width, img.Height), key)
	}
	if !img.ContentType.valid() {
		violate(fmt.Sprintf("text glyph has unknown content type %d", img.ContentType), key)
	}
	if kind != nil && img.ContentType != *kind {
		violate(fmt.Sprintf("text glyph content type %v, expected %v", img.ContentType, *kind), key)
	}
	if cached != nil && (img.Width != int(cached.Width) || img.Height != int(cached.Height)) {
		violate(fmt.Sprintf("text glyph size %dx%d, expected %dx%d",
			img.Width, img.Height, cached.Width, cached.Height), key)
	}
	want := img.Width * img.Height * img.ContentType.Channels()
	if len(img.Data) != want {
		violate(fmt.Sprintf("text glyph data has %d bytes, expected %d", len(img.Data), want), key)
	}
}

// GlyphSource supplies the rasterizers used to create glyphs and to
// repopulate a surface after it grows.
type GlyphSource struct {
	Text   TextRasterizer
	Custom CustomGlyphRasterizer

	// Scale is passed to Custom in every request.
	Scale float32
}
