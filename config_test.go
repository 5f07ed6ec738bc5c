// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphatlas

import (
	"errors"
	"testing"

	"github.com/gogpu/glyphatlas/packer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.InitialSize != 4096 || cfg.ShadowMargin != 4 || cfg.ColorMode != ColorModeAccurate {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		field string
	}{
		{"zero size", WithInitialSize(0), "InitialSize"},
		{"negative margin", WithShadowMargin(-1), "ShadowMargin"},
		{"margin fills canvas", func(c *Config) { c.InitialSize = 8; c.ShadowMargin = 4 }, "ShadowMargin"},
		{"unknown color mode", WithColorMode(ColorMode(7)), "ColorMode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildConfig([]Option{tt.opt})
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

type countingPacker struct {
	*packer.Allocator
	grows int
}

func (p *countingPacker) Grow(w, h int) {
	p.grows++
	p.Allocator.Grow(w, h)
}

func TestWithPacker(t *testing.T) {
	var created *countingPacker
	factory := func(w, h int) Packer {
		created = &countingPacker{Allocator: packer.New(w, h)}
		return created
	}

	dev := newFakeDevice(512)
	s := newTestSurface(t, dev, ContentMask, WithInitialSize(128), WithPacker(factory), WithLabel("ui"))
	if created == nil {
		t.Fatal("custom packer factory not used")
	}
	if w, h := created.Size(); w != 128 || h != 128 {
		t.Errorf("packer size = %dx%d, want 128x128", w, h)
	}
	if s.Texture().Label() != "ui mask" {
		t.Errorf("texture label = %q, want %q", s.Texture().Label(), "ui mask")
	}

	if _, err := s.Grow(GlyphSource{}); err != nil {
		t.Fatal(err)
	}
	if created.grows != 1 {
		t.Errorf("packer grown %d times, want 1", created.grows)
	}
}
