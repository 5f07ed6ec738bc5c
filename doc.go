// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glyphatlas manages GPU texture atlases for rasterized glyphs.
//
// An [Atlas] owns two [Surface]s: a single-channel mask surface for
// ordinary glyph coverage and a four-channel color surface for emoji and
// other colored bitmaps. Each surface packs bitmaps into one square
// texture, keeps an LRU-ordered cache from [GlyphKey] to placement, and
// tracks which glyphs the current frame uses.
//
// # Growth
//
// When a surface runs out of room it grows by [GrowthFactor] up to the
// device's maximum texture dimension. The packer never moves existing
// regions, so growth creates a larger texture, asks the rasterizers in
// [GlyphSource] for every cached glyph again and uploads each at its old
// coordinates. The atlas then rebuilds its bind group, since the texture
// views it referenced are gone.
//
// # Eviction
//
// The atlas never evicts on its own. Callers mark glyphs with
// [Surface.MarkInUse] (done by [Atlas.PrepareGlyph]), call [Atlas.Trim]
// once per frame, and remove entries they no longer need:
//
//	for key := range surface.Oldest() {
//	    if !surface.InUse(key) {
//	        victims = append(victims, key)
//	    }
//	}
//	for _, key := range victims {
//	    surface.Remove(key)
//	}
//
// # Contract Violations
//
// Rasterizers must be deterministic. If one returns nothing for a glyph it
// produced before, or returns a bitmap of the wrong size or content type,
// the atlas panics with a [*ContractViolation] instead of uploading
// corrupt data.
//
// # Backends
//
// GPU access goes through the gpucore interfaces. backend/native drives
// gogpu/wgpu; backend/software keeps textures in memory for tests and
// offline tools.
package glyphatlas
