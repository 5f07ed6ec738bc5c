// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"github.com/gogpu/glyphatlas/backend"
	"github.com/gogpu/glyphatlas/gpucore"
)

// Backend is the software atlas backend.
type Backend struct {
	maxDim uint32
	device *Device
	cache  *PipelineCache
}

// init registers the software backend on package import.
func init() {
	backend.Register(backend.BackendSoftware, func() backend.AtlasBackend {
		return NewBackend(DefaultMaxDimension)
	})
}

// NewBackend creates a software backend whose device allows textures up
// to maxDim pixels on a side.
func NewBackend(maxDim uint32) *Backend {
	return &Backend{maxDim: maxDim}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendSoftware }

// Init creates the device. It never fails.
func (b *Backend) Init() error {
	if b.device == nil {
		b.device = NewDevice(b.maxDim)
		b.cache = NewPipelineCache()
	}
	return nil
}

// Close drops the device. Textures still referenced by callers stay
// readable until they are destroyed.
func (b *Backend) Close() {
	b.device = nil
	b.cache = nil
}

// Device returns the texture device, or nil before Init.
func (b *Backend) Device() gpucore.Device {
	if b.device == nil {
		return nil
	}
	return b.device
}

// Queue returns the device, which also acts as the queue.
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

// SoftwareDevice returns the concrete device for readback.
func (b *Backend) SoftwareDevice() *Device { return b.device }
