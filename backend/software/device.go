// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides an atlas backend that keeps textures in CPU
// memory.
//
// It is always available and is what tests, headless tools and atlas
// dumps run on. Texture contents can be read back with Texture.Pixel,
// Texture.SubImage and Texture.ToImage.
package software

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyphatlas/gpucore"
)

// DefaultMaxDimension matches the common desktop limit for 2D textures.
const DefaultMaxDimension = 8192

// Device errors.
var (
	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("software: texture has been destroyed")

	// ErrInvalidTextureSize is returned when texture dimensions are zero or
	// exceed the device limit.
	ErrInvalidTextureSize = errors.New("software: invalid texture size")

	// ErrUnsupportedFormat is returned for formats with no known texel size.
	ErrUnsupportedFormat = errors.New("software: unsupported texture format")

	// ErrForeignHandle is returned when a handle from another device is passed in.
	ErrForeignHandle = errors.New("software: handle not created by this device")
)

// Device is an in-memory texture device. It implements both gpucore.Device
// and gpucore.Queue.
//
// Device is safe for concurrent use.
type Device struct {
	mu     sync.Mutex
	maxDim uint32
	live   map[*Texture]struct{}
}

var (
	_ gpucore.Device = (*Device)(nil)
	_ gpucore.Queue  = (*Device)(nil)
)

// NewDevice creates a device whose textures may be at most maxDim pixels
// on a side. A zero maxDim selects DefaultMaxDimension.
func NewDevice(maxDim uint32) *Device {
	if maxDim == 0 {
		maxDim = DefaultMaxDimension
	}
	return &Device{
		maxDim: maxDim,
		live:   make(map[*Texture]struct{}),
	}
}

// MaxTextureDimension2D returns the limit given to NewDevice.
func (d *Device) MaxTextureDimension2D() uint32 { return d.maxDim }

// CreateTexture allocates a zeroed texture.
func (d *Device) CreateTexture(desc *gpucore.TextureDescriptor) (gpucore.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 || desc.Width > d.maxDim || desc.Height > d.maxDim {
		return nil, fmt.Errorf("%w: %dx%d (max %d)", ErrInvalidTextureSize, desc.Width, desc.Height, d.maxDim)
	}
	bpp := gpucore.BytesPerPixel(desc.Format)
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}

	t := &Texture{
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		bpp:    bpp,
		pix:    make([]byte, int(desc.Width)*int(desc.Height)*bpp),
	}

	d.mu.Lock()
	d.live[t] = struct{}{}
	d.mu.Unlock()
	return t, nil
}

// CreateTextureView returns a view of the whole texture.
func (d *Device) CreateTextureView(texture gpucore.Texture, label string) (gpucore.TextureView, error) {
	t, err := d.own(texture)
	if err != nil {
		return nil, err
	}
	if t.IsDestroyed() {
		return nil, ErrTextureDestroyed
	}
	return &TextureView{label: label, texture: t}, nil
}

// DestroyTexture releases the texture's memory. Destroying twice is a no-op.
func (d *Device) DestroyTexture(texture gpucore.Texture) {
	t, err := d.own(texture)
	if err != nil {
		return
	}
	t.mu.Lock()
	t.destroyed = true
	t.pix = nil
	t.mu.Unlock()

	d.mu.Lock()
	delete(d.live, t)
	d.mu.Unlock()
}

// DestroyTextureView marks the view destroyed.
func (d *Device) DestroyTextureView(view gpucore.TextureView) {
	if v, ok := view.(*TextureView); ok {
		v.destroyed.Store(true)
	}
}

// LiveTextures returns the number of textures created and not yet destroyed.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// WriteTexture copies rows of data into dst. Regions reaching past the
// texture edge are clipped; writes to destroyed textures are dropped.
func (d *Device) WriteTexture(dst gpucore.Texture, origin gputypes.Origin3D, data []byte, bytesPerRow uint32, size gputypes.Extent3D) {
	t, err := d.own(dst)
	if err != nil {
		return
	}
	t.write(origin, data, int(bytesPerRow), size)
}

func (d *Device) own(texture gpucore.Texture) (*Texture, error) {
	t, ok := texture.(*Texture)
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, texture)
	}
	return t, nil
}
