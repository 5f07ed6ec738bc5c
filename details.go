// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import "github.com/gogpu/glyphatlas/packer"

// GPUCacheStatus records where a glyph lives on its surface.
// The zero value means the glyph is visually empty and was never uploaded.
type GPUCacheStatus struct {
	// InAtlas is false for glyphs skipped because they have no pixels.
	InAtlas bool

	// X and Y are the top-left corner of the bitmap on the surface.
	X, Y uint16

	ContentType ContentType

	// Alloc releases the packed region when the glyph is evicted.
	Alloc packer.AllocID
}

// GlyphDetails is a glyph cache entry.
type GlyphDetails struct {
	Width, Height uint16
	Left, Top     int16
	GPUCache      GPUCacheStatus
}
