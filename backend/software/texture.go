// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// Texture is a texture held in CPU memory.
type Texture struct {
	mu sync.RWMutex

	label  string
	width  uint32
	height uint32
	format gputypes.TextureFormat
	bpp    int

	// pix holds rows of width*bpp bytes, top to bottom.
	pix []byte

	destroyed bool
}

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.label }

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the texture pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// BytesPerPixel returns the texel size.
func (t *Texture) BytesPerPixel() int { return t.bpp }

// IsDestroyed returns true if the texture has been destroyed.
func (t *Texture) IsDestroyed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.destroyed
}

func (t *Texture) write(origin gputypes.Origin3D, data []byte, bytesPerRow int, size gputypes.Extent3D) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}

	x0, y0 := int(origin.X), int(origin.Y)
	w := min(int(size.Width), int(t.width)-x0)
	h := min(int(size.Height), int(t.height)-y0)
	if w <= 0 || h <= 0 {
		return
	}

	stride := int(t.width) * t.bpp
	rowBytes := w * t.bpp
	for row := range h {
		src := row * bytesPerRow
		if src+rowBytes > len(data) {
			return
		}
		dst := (y0+row)*stride + x0*t.bpp
		copy(t.pix[dst:dst+rowBytes], data[src:src+rowBytes])
	}
}

// Pixel returns a copy of the texel at (x, y), or nil when the coordinates
// are outside the texture or it was destroyed.
func (t *Texture) Pixel(x, y int) []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.destroyed || x < 0 || y < 0 || x >= int(t.width) || y >= int(t.height) {
		return nil
	}
	off := (y*int(t.width) + x) * t.bpp
	return append([]byte(nil), t.pix[off:off+t.bpp]...)
}

// SubImage returns the tightly packed bytes of r, clipped to the texture.
func (t *Texture) SubImage(r image.Rectangle) []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r = r.Intersect(image.Rect(0, 0, int(t.width), int(t.height)))
	if t.destroyed || r.Empty() {
		return nil
	}

	rowBytes := r.Dx() * t.bpp
	out := make([]byte, 0, rowBytes*r.Dy())
	stride := int(t.width) * t.bpp
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := y*stride + r.Min.X*t.bpp
		out = append(out, t.pix[off:off+rowBytes]...)
	}
	return out
}

// ToImage copies the texture into an image: *image.Gray for single
// channel formats and *image.NRGBA for four channel ones, with BGRA
// swizzled to RGBA. It returns nil for a destroyed texture.
func (t *Texture) ToImage() image.Image {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.destroyed {
		return nil
	}

	bounds := image.Rect(0, 0, int(t.width), int(t.height))
	if t.bpp == 1 {
		img := image.NewGray(bounds)
		copy(img.Pix, t.pix)
		return img
	}

	img := image.NewNRGBA(bounds)
	copy(img.Pix, t.pix)
	if t.format == gputypes.TextureFormatBGRA8Unorm || t.format == gputypes.TextureFormatBGRA8UnormSrgb {
		for i := 0; i+3 < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
		}
	}
	return img
}

// At returns the texel at (x, y) as a color in storage channel order.
func (t *Texture) At(x, y int) color.Color {
	px := t.Pixel(x, y)
	switch len(px) {
	case 1:
		return color.Gray{Y: px[0]}
	case 4:
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	default:
		return color.Transparent
	}
}

// TextureView is a view of a whole Texture.
type TextureView struct {
	label     string
	texture   *Texture
	destroyed atomic.Bool
}

// Label returns the view's debug label.
func (v *TextureView) Label() string { return v.label }

// Texture returns the viewed texture.
func (v *TextureView) Texture() *Texture { return v.texture }

// IsDestroyed returns true if the view has been destroyed.
func (v *TextureView) IsDestroyed() bool { return v.destroyed.Load() }
