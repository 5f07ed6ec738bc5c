// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/glyphatlas/gpucore"
)

func createTexture(t *testing.T, d *Device, w, h uint32, format gputypes.TextureFormat) *Texture {
	t.Helper()
	tex, err := d.CreateTexture(&gpucore.TextureDescriptor{
		Label:  "test",
		Width:  w,
		Height: h,
		Format: format,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	return tex.(*Texture)
}

func TestNewDeviceDefaultLimit(t *testing.T) {
	if got := NewDevice(0).MaxTextureDimension2D(); got != DefaultMaxDimension {
		t.Errorf("MaxTextureDimension2D() = %d, want %d", got, DefaultMaxDimension)
	}
	if got := NewDevice(512).MaxTextureDimension2D(); got != 512 {
		t.Errorf("MaxTextureDimension2D() = %d, want 512", got)
	}
}

func TestCreateTextureErrors(t *testing.T) {
	d := NewDevice(64)
	tests := []struct {
		name string
		desc gpucore.TextureDescriptor
		want error
	}{
		{"zero width", gpucore.TextureDescriptor{Width: 0, Height: 8, Format: gputypes.TextureFormatR8Unorm}, ErrInvalidTextureSize},
		{"too tall", gpucore.TextureDescriptor{Width: 8, Height: 65, Format: gputypes.TextureFormatR8Unorm}, ErrInvalidTextureSize},
		{"depth format", gpucore.TextureDescriptor{Width: 8, Height: 8, Format: gputypes.TextureFormatDepth24PlusStencil8}, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.CreateTexture(&tt.desc); !errors.Is(err, tt.want) {
				t.Errorf("CreateTexture() error = %v, want %v", err, tt.want)
			}
		})
	}
	if d.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d after failed creates", d.LiveTextures())
	}
}

func TestWriteTextureRegion(t *testing.T) {
	d := NewDevice(64)
	tex := createTexture(t, d, 8, 8, gputypes.TextureFormatR8Unorm)

	// 3x2 region with a padded row pitch of 4.
	data := []byte{
		1, 2, 3, 99,
		4, 5, 6, 99,
	}
	d.WriteTexture(tex, gputypes.Origin3D{X: 2, Y: 5}, data, 4,
		gputypes.Extent3D{Width: 3, Height: 2, DepthOrArrayLayers: 1})

	got := tex.SubImage(image.Rect(2, 5, 5, 7))
	if diff := cmp.Diff([]byte{1, 2, 3, 4, 5, 6}, got); diff != "" {
		t.Errorf("SubImage mismatch (-want +got):\n%s", diff)
	}
	if px := tex.Pixel(1, 5); px[0] != 0 {
		t.Errorf("Pixel(1,5) = %v, want untouched 0", px)
	}
	if px := tex.Pixel(5, 5); px[0] != 0 {
		t.Errorf("Pixel(5,5) = %v, want untouched 0", px)
	}
}

func TestWriteTextureClipsAtEdge(t *testing.T) {
	d := NewDevice(64)
	tex := createTexture(t, d, 4, 4, gputypes.TextureFormatR8Unorm)

	data := []byte{7, 7, 7, 7, 7, 7, 7, 7, 7}
	d.WriteTexture(tex, gputypes.Origin3D{X: 2, Y: 2}, data, 3,
		gputypes.Extent3D{Width: 3, Height: 3, DepthOrArrayLayers: 1})

	if diff := cmp.Diff([]byte{7, 7, 7, 7}, tex.SubImage(image.Rect(2, 2, 4, 4))); diff != "" {
		t.Errorf("clipped region mismatch (-want +got):\n%s", diff)
	}
}

func TestDestroyTexture(t *testing.T) {
	d := NewDevice(64)
	tex := createTexture(t, d, 4, 4, gputypes.TextureFormatRGBA8Unorm)
	view, err := d.CreateTextureView(tex, "view")
	if err != nil {
		t.Fatalf("CreateTextureView() error = %v", err)
	}
	if d.LiveTextures() != 1 {
		t.Fatalf("LiveTextures() = %d, want 1", d.LiveTextures())
	}

	d.DestroyTextureView(view)
	d.DestroyTexture(tex)
	d.DestroyTexture(tex)

	if !tex.IsDestroyed() || !view.(*TextureView).IsDestroyed() {
		t.Error("texture or view not marked destroyed")
	}
	if d.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d, want 0", d.LiveTextures())
	}
	if tex.Pixel(0, 0) != nil || tex.ToImage() != nil {
		t.Error("destroyed texture still readable")
	}
	if _, err := d.CreateTextureView(tex, "late"); !errors.Is(err, ErrTextureDestroyed) {
		t.Errorf("CreateTextureView(destroyed) error = %v, want ErrTextureDestroyed", err)
	}
}

func TestToImage(t *testing.T) {
	d := NewDevice(64)

	mask := createTexture(t, d, 2, 1, gputypes.TextureFormatR8Unorm)
	d.WriteTexture(mask, gputypes.Origin3D{}, []byte{10, 20}, 2, gputypes.Extent3D{Width: 2, Height: 1, DepthOrArrayLayers: 1})
	gray, ok := mask.ToImage().(*image.Gray)
	if !ok {
		t.Fatalf("ToImage() of R8 = %T, want *image.Gray", mask.ToImage())
	}
	if gray.GrayAt(1, 0).Y != 20 {
		t.Errorf("GrayAt(1,0) = %d, want 20", gray.GrayAt(1, 0).Y)
	}

	bgra := createTexture(t, d, 1, 1, gputypes.TextureFormatBGRA8Unorm)
	d.WriteTexture(bgra, gputypes.Origin3D{}, []byte{1, 2, 3, 4}, 4, gputypes.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1})
	rgba := bgra.ToImage().(*image.NRGBA)
	if got, want := rgba.NRGBAAt(0, 0), (color.NRGBA{R: 3, G: 2, B: 1, A: 4}); got != want {
		t.Errorf("NRGBAAt(0,0) = %v, want %v", got, want)
	}
	if got, want := bgra.At(0, 0), color.Color(color.NRGBA{R: 1, G: 2, B: 3, A: 4}); got != want {
		t.Errorf("At(0,0) = %v, want storage order %v", got, want)
	}
}

func TestForeignHandles(t *testing.T) {
	d := NewDevice(64)
	var foreign gpucore.Texture = foreignTexture{}

	if _, err := d.CreateTextureView(foreign, "x"); !errors.Is(err, ErrForeignHandle) {
		t.Errorf("CreateTextureView(foreign) error = %v, want ErrForeignHandle", err)
	}
	// Must not panic.
	d.WriteTexture(foreign, gputypes.Origin3D{}, []byte{1}, 1, gputypes.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1})
	d.DestroyTexture(foreign)
}

type foreignTexture struct{}

func (foreignTexture) Label() string                  { return "foreign" }
func (foreignTexture) Width() uint32                  { return 1 }
func (foreignTexture) Height() uint32                 { return 1 }
func (foreignTexture) Format() gputypes.TextureFormat { return gputypes.TextureFormatR8Unorm }
