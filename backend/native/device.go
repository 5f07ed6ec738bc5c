// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native provides a glyph atlas backend on gogpu/wgpu's HAL layer.
//
// Device adapts a hal.Device and hal.Queue to the gpucore interfaces the
// atlas uses, and PipelineCache compiles the atlas text shader and caches
// one render pipeline per output variant.
//
// A device can come from three places:
//   - New wraps handles the caller already owns
//   - FromProvider takes them from a gpucontext.DeviceProvider, such as a
//     gogpu application
//   - Open creates a standalone device on a registered HAL backend
package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyphatlas"
	"github.com/gogpu/glyphatlas/gpucore"
)

// Device adapts a HAL device and queue to gpucore.Device and gpucore.Queue.
//
// Device is safe for concurrent use to the extent the HAL device is.
type Device struct {
	device hal.Device
	queue  hal.Queue
	limits gputypes.Limits

	// instance is set when Open created the device; Close releases both.
	instance hal.Instance

	mu   sync.Mutex
	live map[*Texture]struct{}
}

var (
	_ gpucore.Device = (*Device)(nil)
	_ gpucore.Queue  = (*Device)(nil)
)

// New wraps a HAL device and queue. limits must be the limits the device
// was opened with; only MaxTextureDimension2D is used. The caller keeps
// ownership of the handles.
func New(device hal.Device, queue hal.Queue, limits gputypes.Limits) (*Device, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if queue == nil {
		return nil, ErrNilHALQueue
	}
	return &Device{
		device: device,
		queue:  queue,
		limits: limits,
		live:   make(map[*Texture]struct{}),
	}, nil
}

// FromProvider wraps the device of a gpucontext.DeviceProvider. The
// provider must also expose its HAL handles through HalDevice() any and
// HalQueue() any.
func FromProvider(provider gpucontext.DeviceProvider, limits gputypes.Limits) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrProviderNotHAL, provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrProviderNotHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrProviderNotHAL, hp.HalQueue())
	}
	return New(device, queue, limits)
}

// Open creates a standalone device on the given HAL backend, preferring a
// discrete or integrated GPU. Close releases it.
func Open(backendType gputypes.Backend) (*Device, error) {
	backend, ok := hal.GetBackend(backendType)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, backendType)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	d, err := New(openDev.Device, openDev.Queue, limits)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	glyphatlas.Logger().Info("native: device opened",
		"backend", backendType,
		"adapter", selected.Info.Name,
		"maxTextureDimension2D", limits.MaxTextureDimension2D)
	return d, nil
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// MaxTextureDimension2D returns the device limit for 2D textures.
func (d *Device) MaxTextureDimension2D() uint32 { return d.limits.MaxTextureDimension2D }

// CreateTexture creates a single-mip 2D texture.
func (d *Device) CreateTexture(desc *gpucore.TextureDescriptor) (gpucore.Texture, error) {
	maxDim := d.MaxTextureDimension2D()
	if desc.Width == 0 || desc.Height == 0 || desc.Width > maxDim || desc.Height > maxDim {
		return nil, fmt.Errorf("%w: %dx%d (max %d)", ErrInvalidTextureSize, desc.Width, desc.Height, maxDim)
	}

	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}

	t := &Texture{raw: raw, desc: *desc}
	d.mu.Lock()
	d.live[t] = struct{}{}
	d.mu.Unlock()
	return t, nil
}

// CreateTextureView creates a 2D view of all of texture.
func (d *Device) CreateTextureView(texture gpucore.Texture, label string) (gpucore.TextureView, error) {
	t, ok := texture.(*Texture)
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, texture)
	}
	raw := t.Raw()
	if raw == nil {
		return nil, ErrTextureDestroyed
	}

	view, err := d.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:         label,
		Format:        t.Format(),
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture view %q: %w", label, err)
	}
	return &TextureView{raw: view, texture: t, label: label}, nil
}

// DestroyTexture releases the texture. Destroying twice is a no-op.
func (d *Device) DestroyTexture(texture gpucore.Texture) {
	t, ok := texture.(*Texture)
	if !ok || t == nil {
		glyphatlas.Logger().Warn("native: DestroyTexture with foreign handle", "type", fmt.Sprintf("%T", texture))
		return
	}
	if raw := t.markDestroyed(); raw != nil {
		d.device.DestroyTexture(raw)
	}
	d.mu.Lock()
	delete(d.live, t)
	d.mu.Unlock()
}

// DestroyTextureView releases the view. Destroying twice is a no-op.
func (d *Device) DestroyTextureView(view gpucore.TextureView) {
	v, ok := view.(*TextureView)
	if !ok || v == nil {
		glyphatlas.Logger().Warn("native: DestroyTextureView with foreign handle", "type", fmt.Sprintf("%T", view))
		return
	}
	if raw := v.markDestroyed(); raw != nil {
		d.device.DestroyTextureView(raw)
	}
}

// LiveTextures returns the number of textures created and not yet destroyed.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// WriteTexture uploads a region through the HAL queue. Writes to a
// destroyed texture are dropped; queue errors are logged.
func (d *Device) WriteTexture(dst gpucore.Texture, origin gputypes.Origin3D, data []byte, bytesPerRow uint32, size gputypes.Extent3D) {
	t, ok := dst.(*Texture)
	if !ok || t == nil {
		return
	}
	raw := t.Raw()
	if raw == nil {
		glyphatlas.Logger().Warn("native: write to destroyed texture", "label", t.Label())
		return
	}

	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  raw,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: origin.X, Y: origin.Y, Z: origin.Z},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: size.Height,
		},
		&hal.Extent3D{Width: size.Width, Height: size.Height, DepthOrArrayLayers: max(size.DepthOrArrayLayers, 1)},
	)
	if err != nil {
		glyphatlas.Logger().Warn("native: texture write failed", "label", t.Label(), "err", err)
	}
}

// Close destroys the device if Open created it. Wrapped devices are left
// to their owner.
func (d *Device) Close() {
	if d.instance == nil {
		return
	}
	d.device.Destroy()
	d.instance.Destroy()
	d.instance = nil
}
