// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"fmt"
	"image"
	"iter"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyphatlas/gpucore"
	"github.com/gogpu/glyphatlas/internal/lru"
	"github.com/gogpu/glyphatlas/packer"
)

// MaxSurfaceDimension caps the side length of a surface so that glyph
// coordinates fit the uint16 fields of GPUCacheStatus.
const MaxSurfaceDimension = math.MaxUint16 + 1

// Surface is one packed texture holding glyphs of a single content type.
//
// It keeps three things consistent: the GPU texture, the packer that hands
// out regions of it, and the glyph cache recording which glyph sits where.
// The cache is ordered by recency and paired with a usage set that the
// caller fills each frame; together they let the caller decide what to
// evict without the surface knowing about frames.
//
// Surface is not safe for concurrent use.
type Surface struct {
	kind     ContentType
	format   gputypes.TextureFormat
	channels int
	label    string
	margin   int

	device gpucore.Device
	queue  gpucore.Queue

	// texture and view are replaced together on Grow.
	texture gpucore.Texture
	view    gpucore.TextureView

	packer Packer
	size   uint32
	maxDim uint32

	glyphs *lru.Map[GlyphKey, GlyphDetails]
	inUse  map[GlyphKey]struct{}
}

// NewSurface creates a surface for glyphs of the given content type stored
// in format. The starting size is the configured initial size clamped to
// the device maximum.
func NewSurface(device gpucore.Device, queue gpucore.Queue, kind ContentType, format gputypes.TextureFormat, opts ...Option) (*Surface, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return newSurface(device, queue, kind, format, &cfg)
}

func newSurface(device gpucore.Device, queue gpucore.Queue, kind ContentType, format gputypes.TextureFormat, cfg *Config) (*Surface, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	if bpp := gpucore.BytesPerPixel(format); bpp != kind.Channels() {
		return nil, fmt.Errorf("glyphatlas: %v surface cannot use format %v (%d bytes per pixel)", kind, format, bpp)
	}

	maxDim := min(device.MaxTextureDimension2D(), MaxSurfaceDimension)
	size := min(cfg.InitialSize, maxDim)

	s := &Surface{
		kind:     kind,
		format:   format,
		channels: kind.Channels(),
		label:    cfg.Label + " " + kind.String(),
		margin:   cfg.ShadowMargin,
		device:   device,
		queue:    queue,
		packer:   cfg.NewPacker(int(size), int(size)),
		size:     size,
		maxDim:   maxDim,
		glyphs:   lru.New[GlyphKey, GlyphDetails](),
		inUse:    make(map[GlyphKey]struct{}),
	}

	tex, view, err := s.createTexture(size)
	if err != nil {
		return nil, err
	}
	s.texture, s.view = tex, view
	return s, nil
}

func (s *Surface) createTexture(size uint32) (gpucore.Texture, gpucore.TextureView, error) {
	tex, err := s.device.CreateTexture(&gpucore.TextureDescriptor{
		Label:  s.label,
		Width:  size,
		Height: size,
		Format: s.format,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("glyphatlas: create %v texture %dx%d: %w", s.kind, size, size, err)
	}

	view, err := s.device.CreateTextureView(tex, s.label+" view")
	if err != nil {
		s.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("glyphatlas: create %v texture view: %w", s.kind, err)
	}
	return tex, view, nil
}

// Allocate reserves a width x height region surrounded by the shadow
// margin. The returned rectangle is exactly width x height; the margin
// around it stays free. It returns false when the packer has no room, in
// which case nothing changed.
func (s *Surface) Allocate(width, height int) (packer.Allocation, bool) {
	if width <= 0 || height <= 0 {
		return packer.Allocation{}, false
	}

	m := s.margin
	alloc, ok := s.packer.Allocate(width+2*m, height+2*m)
	if !ok {
		return packer.Allocation{}, false
	}

	minPt := alloc.Rect.Min.Add(image.Pt(m, m))
	alloc.Rect = image.Rectangle{Min: minPt, Max: minPt.Add(image.Pt(width, height))}
	return alloc, true
}

// Grow doubles the surface size, capped at the device maximum, and
// repopulates the new texture.
//
// Every cached glyph placed in the atlas is rasterized again through src
// and uploaded at its existing coordinates; the packer never moves
// allocations, so those coordinates stay valid. The old texture and view
// are released and the caller must rebind anything that referenced them.
//
// Grow returns false without changing anything when the surface is
// already at the device maximum. A device error creating the new texture
// is returned with nothing changed. A rasterizer that breaks its contract
// during repopulation causes a panic with *ContractViolation.
func (s *Surface) Grow(src GlyphSource) (bool, error) {
	if s.size >= s.maxDim {
		return false, nil
	}
	newSize := min(s.size*GrowthFactor, s.maxDim)

	tex, view, err := s.createTexture(newSize)
	if err != nil {
		return false, err
	}

	committed := false
	defer func() {
		if !committed {
			s.device.DestroyTextureView(view)
			s.device.DestroyTexture(tex)
		}
	}()

	uploaded := 0
	for key, details := range s.glyphs.All() {
		status := details.GPUCache
		if !status.InAtlas {
			continue
		}
		data := s.regenerate(key, &details, &src)
		s.write(tex, int(status.X), int(status.Y), int(details.Width), int(details.Height), data)
		uploaded++
	}

	s.packer.Grow(int(newSize), int(newSize))

	s.device.DestroyTextureView(s.view)
	s.device.DestroyTexture(s.texture)
	s.texture, s.view = tex, view
	committed = true

	Logger().Debug("glyphatlas: surface grown",
		"kind", s.kind,
		"from", s.size,
		"to", newSize,
		"reuploaded", uploaded)
	s.size = newSize
	return true, nil
}

// regenerate rasterizes a cached glyph again and checks the result
// against the cache entry.
func (s *Surface) regenerate(key GlyphKey, details *GlyphDetails, src *GlyphSource) []byte {
	switch k := key.(type) {
	case TextKey:
		if src.Text == nil {
			violate("text glyph cached but no text rasterizer given to Grow", k)
		}
		img, ok := src.Text.RasterizeText(k)
		if !ok {
			violate("text rasterizer returned nothing for a glyph it rasterized before", k)
		}
		img.validate(k, details, &s.kind)
		return img.Data

	case CustomKey:
		req := k.Request(src.Scale)
		if src.Custom == nil {
			violate("custom glyph cached but no custom rasterizer given to Grow", req)
		}
		glyph, ok := src.Custom(req)
		if !ok {
			violate("custom rasterizer returned nothing for a glyph it rasterized before", req)
		}
		glyph.Validate(&req, &s.kind)
		return glyph.Data

	default:
		panic(fmt.Sprintf("glyphatlas: unknown glyph key type %T", key))
	}
}

// Upload writes a width x height bitmap with its top-left corner at (x, y).
func (s *Surface) Upload(x, y, width, height int, data []byte) error {
	if x < 0 || y < 0 || width < 0 || height < 0 ||
		x+width > int(s.size) || y+height > int(s.size) {
		return fmt.Errorf("%w: %dx%d at (%d,%d) on %dx%d %v surface",
			ErrUploadOutOfBounds, width, height, x, y, s.size, s.size, s.kind)
	}
	if need := width * height * s.channels; len(data) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortUpload, len(data), need)
	}
	if width == 0 || height == 0 {
		return nil
	}
	s.write(s.texture, x, y, width, height, data)
	return nil
}

func (s *Surface) write(tex gpucore.Texture, x, y, width, height int, data []byte) {
	s.queue.WriteTexture(tex,
		gputypes.Origin3D{X: uint32(x), Y: uint32(y)},
		data,
		uint32(width*s.channels),
		gputypes.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1})
}

// Trim empties the usage set. Cache entries and their regions are kept.
func (s *Surface) Trim() {
	clear(s.inUse)
}

// Get returns a cached glyph and marks it most recently used.
func (s *Surface) Get(key GlyphKey) (GlyphDetails, bool) {
	return s.glyphs.Get(key)
}

// Peek returns a cached glyph without changing the recency order.
func (s *Surface) Peek(key GlyphKey) (GlyphDetails, bool) {
	return s.glyphs.Peek(key)
}

// Put caches a glyph as most recently used. A previous entry for the key
// that held a different region has that region released.
func (s *Surface) Put(key GlyphKey, details GlyphDetails) {
	old, replaced := s.glyphs.Put(key, details)
	if replaced && old.GPUCache.InAtlas &&
		(!details.GPUCache.InAtlas || old.GPUCache.Alloc != details.GPUCache.Alloc) {
		s.packer.Deallocate(old.GPUCache.Alloc)
	}
}

// Remove evicts a glyph, releasing its region and dropping it from the
// usage set. It reports whether the glyph was cached.
func (s *Surface) Remove(key GlyphKey) bool {
	details, ok := s.glyphs.Remove(key)
	if !ok {
		return false
	}
	if details.GPUCache.InAtlas {
		s.packer.Deallocate(details.GPUCache.Alloc)
	}
	delete(s.inUse, key)
	return true
}

// Len returns the number of cached glyphs.
func (s *Surface) Len() int {
	return s.glyphs.Len()
}

// All yields cached glyphs from most to least recently used.
// The surface must not be modified during iteration.
func (s *Surface) All() iter.Seq2[GlyphKey, GlyphDetails] {
	return s.glyphs.All()
}

// Oldest yields cached glyphs from least to most recently used, the order
// in which they are best evicted. The surface must not be modified during
// iteration.
func (s *Surface) Oldest() iter.Seq2[GlyphKey, GlyphDetails] {
	return s.glyphs.Backward()
}

// MarkInUse records that key is drawn this frame.
func (s *Surface) MarkInUse(key GlyphKey) {
	s.inUse[key] = struct{}{}
}

// InUse reports whether key was marked since the last Trim.
func (s *Surface) InUse(key GlyphKey) bool {
	_, ok := s.inUse[key]
	return ok
}

// InUseCount returns the size of the usage set.
func (s *Surface) InUseCount() int {
	return len(s.inUse)
}

// Kind returns the content type stored on this surface.
func (s *Surface) Kind() ContentType { return s.kind }

// Channels returns the bytes per pixel.
func (s *Surface) Channels() int { return s.channels }

// Format returns the texture format.
func (s *Surface) Format() gputypes.TextureFormat { return s.format }

// Size returns the current side length in pixels.
func (s *Surface) Size() uint32 { return s.size }

// MaxDimension returns the limit Grow stops at: the device maximum, capped
// at MaxSurfaceDimension.
func (s *Surface) MaxDimension() uint32 { return s.maxDim }

// ShadowMargin returns the padding kept around each glyph.
func (s *Surface) ShadowMargin() int { return s.margin }

// Texture returns the current texture. It changes on Grow.
func (s *Surface) Texture() gpucore.Texture { return s.texture }

// View returns the current texture view. It changes on Grow.
func (s *Surface) View() gpucore.TextureView { return s.view }

// destroy releases the GPU texture. The surface must not be used afterwards.
func (s *Surface) destroy() {
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.texture != nil {
		s.device.DestroyTexture(s.texture)
		s.texture = nil
	}
}
