// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend provides a pluggable GPU backend abstraction for glyph
// atlases.
//
// A backend owns the device an atlas allocates its textures on, the queue
// it uploads through, and the pipeline cache that builds bind groups and
// text pipelines. The atlas itself only sees the gpucore interfaces.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import (
//		_ "github.com/gogpu/glyphatlas/backend/native"
//		_ "github.com/gogpu/glyphatlas/backend/software"
//	)
//
// # Backend Selection
//
// Use InitDefault to initialize the best backend that works on this
// machine, or Get to request one by name:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	atlas, err := glyphatlas.New(b.Device(), b.Queue(), b.PipelineCache(),
//		gputypes.TextureFormatBGRA8Unorm)
//
// # Available Backends
//
// - "native": textures on a gogpu/wgpu HAL device (Vulkan by default)
// - "software": textures in CPU memory, always available
package backend
