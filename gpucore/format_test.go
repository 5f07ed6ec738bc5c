// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestBytesPerPixel(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   int
	}{
		{gputypes.TextureFormatR8Unorm, 1},
		{gputypes.TextureFormatRGBA8Unorm, 4},
		{gputypes.TextureFormatRGBA8UnormSrgb, 4},
		{gputypes.TextureFormatBGRA8Unorm, 4},
		{gputypes.TextureFormatDepth24PlusStencil8, 0},
	}

	for _, tt := range tests {
		if got := BytesPerPixel(tt.format); got != tt.want {
			t.Errorf("BytesPerPixel(%v) = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestIsSRGB(t *testing.T) {
	if !IsSRGB(gputypes.TextureFormatRGBA8UnormSrgb) {
		t.Error("RGBA8UnormSrgb should be sRGB")
	}
	if IsSRGB(gputypes.TextureFormatRGBA8Unorm) {
		t.Error("RGBA8Unorm should not be sRGB")
	}
	if IsSRGB(gputypes.TextureFormatR8Unorm) {
		t.Error("R8Unorm should not be sRGB")
	}
}
