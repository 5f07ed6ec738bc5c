// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyphatlas/backend"
	"github.com/gogpu/glyphatlas/gpucore"
)

// Backend is the native atlas backend. Init opens a standalone device on
// the configured HAL backend.
type Backend struct {
	halBackend gputypes.Backend
	device     *Device
	cache      *PipelineCache
}

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() backend.AtlasBackend {
		return NewBackend(gputypes.BackendVulkan)
	})
}

// NewBackend creates a backend that opens its device on halBackend.
func NewBackend(halBackend gputypes.Backend) *Backend {
	return &Backend{halBackend: halBackend}
}

// NewBackendWithDevice creates an initialized backend around an existing
// device, for hosts that already own one. Close leaves the device open
// unless Open created it.
func NewBackendWithDevice(device *Device) (*Backend, error) {
	cache, err := NewPipelineCache(device)
	if err != nil {
		return nil, err
	}
	return &Backend{device: device, cache: cache}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendNative }

// Init opens the device and creates the pipeline cache.
func (b *Backend) Init() error {
	if b.device != nil {
		return nil
	}
	device, err := Open(b.halBackend)
	if err != nil {
		return err
	}
	cache, err := NewPipelineCache(device)
	if err != nil {
		device.Close()
		return err
	}
	b.device, b.cache = device, cache
	return nil
}

// Close releases the pipeline cache and the device.
func (b *Backend) Close() {
	if b.cache != nil {
		b.cache.Close()
		b.cache = nil
	}
	if b.device != nil {
		b.device.Close()
		b.device = nil
	}
}

// Device returns the texture device, or nil before Init.
func (b *Backend) Device() gpucore.Device {
	if b.device == nil {
		return nil
	}
	return b.device
}

// Queue returns the upload queue, or nil before Init.
func (b *Backend) Queue() gpucore.Queue {
	if b.device == nil {
		return nil
	}
	return b.device
}

// PipelineCache returns the pipeline cache, or nil before Init.
func (b *Backend) PipelineCache() gpucore.PipelineCache {
	if b.cache == nil {
		return nil
	}
	return b.cache
}

// NativeDevice returns the concrete device.
func (b *Backend) NativeDevice() *Device { return b.device }

// NativePipelineCache returns the concrete pipeline cache, for access to
// the HAL layouts when recording draws.
func (b *Backend) NativePipelineCache() *PipelineCache { return b.cache }
