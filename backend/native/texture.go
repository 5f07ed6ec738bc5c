// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyphatlas/gpucore"
)

// Texture represents a GPU texture resource.
//
// Texture wraps a hal.Texture together with the descriptor it was
// created from.
//
// Thread Safety:
// Texture is safe for concurrent read access. Destroy() should only be
// called through the owning Device.
type Texture struct {
	// mu protects destroyed.
	mu sync.RWMutex

	// raw is the underlying HAL texture handle.
	raw hal.Texture

	// desc holds the texture configuration (immutable after creation).
	desc gpucore.TextureDescriptor

	destroyed bool
}

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.desc.Label }

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.desc.Height }

// Format returns the texture pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Usage returns the texture usage flags.
func (t *Texture) Usage() gputypes.TextureUsage { return t.desc.Usage }

// IsDestroyed returns true if the texture has been destroyed.
func (t *Texture) IsDestroyed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.destroyed
}

// Raw returns the underlying HAL texture handle.
//
// Returns nil if the texture has been destroyed.
func (t *Texture) Raw() hal.Texture {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.destroyed {
		return nil
	}
	return t.raw
}

// markDestroyed flips the texture to destroyed and returns the handle to
// release, or nil if it was already destroyed.
func (t *Texture) markDestroyed() hal.Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return nil
	}
	t.destroyed = true
	raw := t.raw
	t.raw = nil
	return raw
}

// TextureView is a view covering a whole Texture.
type TextureView struct {
	mu sync.RWMutex

	raw     hal.TextureView
	texture *Texture
	label   string

	destroyed bool
}

// Label returns the view's debug label.
func (v *TextureView) Label() string { return v.label }

// Texture returns the parent texture.
func (v *TextureView) Texture() *Texture { return v.texture }

// IsDestroyed returns true if the view has been destroyed.
func (v *TextureView) IsDestroyed() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.destroyed
}

// Raw returns the underlying HAL view handle, or nil once destroyed.
func (v *TextureView) Raw() hal.TextureView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.destroyed {
		return nil
	}
	return v.raw
}

func (v *TextureView) markDestroyed() hal.TextureView {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return nil
	}
	v.destroyed = true
	raw := v.raw
	v.raw = nil
	return raw
}
