// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "github.com/gogpu/gputypes"

// Texture is a 2D GPU texture owned by a Device.
type Texture interface {
	Label() string
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat
}

// TextureView is a sampled view of a Texture.
type TextureView interface {
	Label() string
}

// BindGroup binds atlas views to a render pipeline.
type BindGroup interface {
	Label() string
}

// RenderPipeline is a compiled pipeline that draws from an atlas.
type RenderPipeline interface {
	Label() string
}

// TextureDescriptor describes a 2D texture with a single mip level.
type TextureDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width  uint32
	Height uint32

	// Format is the texel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// DepthStencilState is the depth configuration a pipeline is built for.
type DepthStencilState struct {
	Format            gputypes.TextureFormat
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
}

// Device creates and releases texture resources.
type Device interface {
	// MaxTextureDimension2D is the largest width or height a 2D texture
	// may have. It is queried once and never changes.
	MaxTextureDimension2D() uint32

	// CreateTexture allocates a new texture. The contents are undefined
	// until written.
	CreateTexture(desc *TextureDescriptor) (Texture, error)

	// CreateTextureView creates a view covering the whole texture.
	CreateTextureView(texture Texture, label string) (TextureView, error)

	DestroyTexture(texture Texture)
	DestroyTextureView(view TextureView)
}

// Queue uploads pixel data to textures.
type Queue interface {
	// WriteTexture copies data into the sub-region of dst starting at
	// origin with the given size. Rows in data are bytesPerRow apart.
	WriteTexture(dst Texture, origin gputypes.Origin3D, data []byte, bytesPerRow uint32, size gputypes.Extent3D)
}

// PipelineCache builds bind groups and render pipelines for atlas drawing.
type PipelineCache interface {
	// CreateAtlasBindGroup binds the color view at binding 0 and the mask
	// view at binding 1.
	CreateAtlasBindGroup(color, mask TextureView) (BindGroup, error)

	// DestroyBindGroup releases a bind group created by this cache.
	DestroyBindGroup(group BindGroup)

	// GetOrCreatePipeline returns the pipeline for the output format and
	// state, creating it on first use. A nil depthStencil disables depth.
	GetOrCreatePipeline(format gputypes.TextureFormat, multisample gputypes.MultisampleState, depthStencil *DepthStencilState) (RenderPipeline, error)
}
