// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import "github.com/gogpu/glyphatlas/packer"

const (
	// DefaultInitialSize is the side length of a new surface, clamped to
	// the device maximum.
	DefaultInitialSize = 4096

	// DefaultShadowMargin is the padding kept free around every glyph for
	// shadow and blur bleed.
	DefaultShadowMargin = 4

	// GrowthFactor multiplies the surface size on each Grow.
	GrowthFactor = 2
)

// Packer is a rectangle allocator bound to a surface.
//
// Grow must only extend the bounds: every allocation handed out before the
// call keeps its rectangle. Surfaces depend on this to repopulate a grown
// texture at the same coordinates.
type Packer interface {
	Allocate(width, height int) (packer.Allocation, bool)
	Deallocate(id packer.AllocID)
	Grow(width, height int)
	Size() (width, height int)
}

// PackerFactory creates a Packer for a width x height canvas.
type PackerFactory func(width, height int) Packer

func newDefaultPacker(width, height int) Packer {
	return packer.New(width, height)
}

// Config configures an Atlas or a Surface.
type Config struct {
	// InitialSize is the starting side length of each surface in pixels.
	InitialSize uint32

	// ShadowMargin is the free border kept around every glyph, in pixels.
	ShadowMargin int

	// ColorMode selects the color surface format.
	ColorMode ColorMode

	// Label prefixes GPU resource labels.
	Label string

	// NewPacker creates surface packers. Nil selects packer.New.
	NewPacker PackerFactory
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		InitialSize:  DefaultInitialSize,
		ShadowMargin: DefaultShadowMargin,
		ColorMode:    ColorModeAccurate,
		Label:        "glyphatlas",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.InitialSize == 0 {
		return &ConfigError{Field: "InitialSize", Reason: "must be positive"}
	}
	if c.ShadowMargin < 0 {
		return &ConfigError{Field: "ShadowMargin", Reason: "must be non-negative"}
	}
	if uint64(2*c.ShadowMargin) >= uint64(c.InitialSize) {
		return &ConfigError{Field: "ShadowMargin", Reason: "must leave room inside InitialSize"}
	}
	if c.ColorMode != ColorModeAccurate && c.ColorMode != ColorModeWeb {
		return &ConfigError{Field: "ColorMode", Reason: "unknown color mode"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "glyphatlas: invalid config." + e.Field + ": " + e.Reason
}

// Option configures an Atlas or Surface during creation.
//
// Example:
//
//	atlas, err := glyphatlas.New(dev, queue, cache, format,
//	    glyphatlas.WithInitialSize(1024),
//	    glyphatlas.WithShadowMargin(2))
type Option func(*Config)

// WithInitialSize sets the starting surface size.
func WithInitialSize(size uint32) Option {
	return func(c *Config) {
		c.InitialSize = size
	}
}

// WithShadowMargin sets the padding around each glyph.
func WithShadowMargin(margin int) Option {
	return func(c *Config) {
		c.ShadowMargin = margin
	}
}

// WithColorMode sets the color surface format policy.
func WithColorMode(mode ColorMode) Option {
	return func(c *Config) {
		c.ColorMode = mode
	}
}

// WithLabel sets the GPU resource label prefix.
func WithLabel(label string) Option {
	return func(c *Config) {
		c.Label = label
	}
}

// WithPacker replaces the default shelf packer.
func WithPacker(f PackerFactory) Option {
	return func(c *Config) {
		c.NewPacker = f
	}
}

func buildConfig(opts []Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.NewPacker == nil {
		cfg.NewPacker = newDefaultPacker
	}
	return cfg, nil
}
