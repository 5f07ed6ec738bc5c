// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/glyphatlas/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when resources are requested before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU texture backend.
	BackendSoftware = "software"
	// BackendNative is the name of the Pure Go GPU backend (gogpu/wgpu HAL).
	BackendNative = "native"
)

// AtlasBackend supplies the device, queue and pipeline cache an atlas is
// built on.
//
// Backends must be registered via Register() and are selected via
// Get() or InitDefault().
type AtlasBackend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Init acquires the device. It must be called before Device, Queue
	// or PipelineCache.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// Device returns the texture device, or nil before Init.
	Device() gpucore.Device

	// Queue returns the upload queue, or nil before Init.
	Queue() gpucore.Queue

	// PipelineCache returns the bind group and pipeline cache, or nil
	// before Init.
	PipelineCache() gpucore.PipelineCache
}
