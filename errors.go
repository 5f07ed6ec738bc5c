// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by atlas operations.
var (
	// ErrNilDevice is returned when an atlas or surface is created without a device.
	ErrNilDevice = errors.New("glyphatlas: device is nil")

	// ErrNilQueue is returned when an atlas or surface is created without a queue.
	ErrNilQueue = errors.New("glyphatlas: queue is nil")

	// ErrNilPipelineCache is returned when an atlas is created without a pipeline cache.
	ErrNilPipelineCache = errors.New("glyphatlas: pipeline cache is nil")

	// ErrAtlasFull is returned by PrepareGlyph when a glyph does not fit and
	// the surface is already at the maximum texture dimension.
	ErrAtlasFull = errors.New("glyphatlas: atlas is full")

	// ErrRasterizationFailed is returned when a rasterizer produces no image
	// for a glyph seen for the first time.
	ErrRasterizationFailed = errors.New("glyphatlas: rasterization failed")

	// ErrNoRasterizer is returned when the GlyphSource lacks the rasterizer
	// needed for a key variant.
	ErrNoRasterizer = errors.New("glyphatlas: no rasterizer for glyph key")

	// ErrGlyphTooLarge is returned when a glyph bitmap exceeds 65535 pixels
	// on either axis.
	ErrGlyphTooLarge = errors.New("glyphatlas: glyph bitmap too large")

	// ErrUploadOutOfBounds is returned by Upload for regions outside the texture.
	ErrUploadOutOfBounds = errors.New("glyphatlas: upload region outside texture")

	// ErrShortUpload is returned by Upload when data holds fewer bytes than
	// the region needs.
	ErrShortUpload = errors.New("glyphatlas: upload data too short")
)

// ContractViolation is the panic value raised when a rasterizer breaks its
// contract: it produced nothing for a glyph it rasterized before, or its
// output does not match the size or content type of the request.
//
// These are programming errors upstream. Uploading the bad data would
// corrupt the atlas, so the operation panics instead of returning an error.
type ContractViolation struct {
	// Rule describes the broken contract.
	Rule string

	// Request is the offending key or request.
	Request any
}

// Error implements the error interface.
func (v *ContractViolation) Error() string {
	return fmt.Sprintf("glyphatlas: contract violation: %s (request: %+v)", v.Rule, v.Request)
}

func violate(rule string, request any) {
	panic(&ContractViolation{Rule: rule, Request: request})
}
