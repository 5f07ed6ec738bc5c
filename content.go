// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ContentType selects which surface of an atlas holds a glyph.
type ContentType uint8

const (
	// ContentMask is single-channel coverage, tinted at draw time.
	ContentMask ContentType = iota

	// ContentColor is premultiplied RGBA, drawn as is (emoji, icons).
	ContentColor
)

// MaskFormat is the texture format of the mask surface.
const MaskFormat = gputypes.TextureFormatR8Unorm

func (c ContentType) valid() bool {
	return c == ContentMask || c == ContentColor
}

// Channels returns the bytes per pixel of bitmaps of this type.
func (c ContentType) Channels() int {
	switch c {
	case ContentMask:
		return 1
	case ContentColor:
		return 4
	default:
		panic(fmt.Sprintf("glyphatlas: unknown content type %d", c))
	}
}

func (c ContentType) String() string {
	switch c {
	case ContentMask:
		return "mask"
	case ContentColor:
		return "color"
	default:
		return fmt.Sprintf("ContentType(%d)", c)
	}
}

// ColorMode selects how the color surface stores its texels.
type ColorMode uint8

const (
	// ColorModeAccurate stores sRGB-encoded texels that the GPU decodes to
	// linear on sampling, so blending happens in linear space.
	ColorModeAccurate ColorMode = iota

	// ColorModeWeb stores the same sRGB byte values in a linear format, so
	// blending happens on sRGB values the way browsers do it.
	ColorModeWeb
)

// ColorFormat returns the texture format of the color surface.
func (m ColorMode) ColorFormat() gputypes.TextureFormat {
	if m == ColorModeWeb {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatRGBA8UnormSrgb
}

func (m ColorMode) String() string {
	switch m {
	case ColorModeAccurate:
		return "accurate"
	case ColorModeWeb:
		return "web"
	default:
		return fmt.Sprintf("ColorMode(%d)", m)
	}
}
