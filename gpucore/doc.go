// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore defines the GPU capabilities a glyph atlas consumes.
//
// The atlas never talks to a graphics API directly. It creates textures,
// views and bind groups through the [Device], [Queue] and [PipelineCache]
// interfaces declared here, which lets the same atlas code run on:
//   - gogpu/wgpu through its HAL layer (backend/native)
//   - an in-memory device for tests and offline tools (backend/software)
//
// # Architecture
//
//	               +-----------------+
//	               |   glyphatlas    |
//	               | (Atlas/Surface) |
//	               +--------+--------+
//	                        |
//	                  gpucore (this)
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	| backend/native  |          |backend/software |
//	|  (hal.Device)   |          |  (CPU memory)   |
//	+--------+--------+          +-----------------+
//	         |
//	+--------v--------+
//	|   gogpu/wgpu    |
//	+-----------------+
//
// # Resource Ownership
//
// Handles returned by a Device belong to the caller and are released with
// the matching Destroy method on the same Device. A texture view must be
// destroyed before its texture. Bind groups are released through the
// PipelineCache that created them.
//
// Pixel formats, extents and pipeline state use the shared
// github.com/gogpu/gputypes definitions so handles can be passed between
// backends without conversion.
package gpucore
