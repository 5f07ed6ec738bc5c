// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster renders font glyphs into atlas-ready coverage masks.
//
// Fonts are parsed with golang.org/x/image/font/sfnt and outlines are
// filled with golang.org/x/image/vector. A Fonts registry hands out stable
// 64-bit font IDs that glyphatlas.TextKey carries, and Rasterizer
// implements glyphatlas.TextRasterizer on top of it:
//
//	fonts := raster.NewFonts()
//	id, err := fonts.Add(goregular.TTF)
//	if err != nil {
//		log.Fatal(err)
//	}
//	src := glyphatlas.GlyphSource{Text: raster.New(fonts)}
package raster

import (
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrFontNotFound is returned when a font ID is not registered.
var ErrFontNotFound = errors.New("raster: font not found")

// Face is a parsed font registered under an ID.
type Face struct {
	id   uint64
	name string
	font *sfnt.Font
	data []byte
}

// ID returns the font ID used in glyphatlas.TextKey.FontID.
func (f *Face) ID() uint64 { return f.id }

// Name returns the font family name, or "" when the font has none.
func (f *Face) Name() string { return f.name }

// Font returns the parsed font.
func (f *Face) Font() *sfnt.Font { return f.font }

// Data returns the font file the face was parsed from.
func (f *Face) Data() []byte { return f.data }

// Fonts is a registry of parsed fonts keyed by content hash, so the same
// font file always gets the same ID.
//
// Fonts is safe for concurrent use.
type Fonts struct {
	mu    sync.RWMutex
	faces map[uint64]*Face
}

// NewFonts creates an empty registry.
func NewFonts() *Fonts {
	return &Fonts{faces: make(map[uint64]*Face)}
}

// FontID returns the ID a font file is registered under: the FNV-64a hash
// of its bytes.
func FontID(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

// Add parses a TrueType or OpenType font and registers it. Adding the same
// bytes again returns the existing ID.
func (f *Fonts) Add(data []byte) (uint64, error) {
	id := FontID(data)

	f.mu.RLock()
	_, ok := f.faces[id]
	f.mu.RUnlock()
	if ok {
		return id, nil
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("raster: failed to parse font: %w", err)
	}
	return f.register(id, parsed, data), nil
}

func (f *Fonts) register(id uint64, parsed *sfnt.Font, data []byte) uint64 {
	name, err := parsed.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		name = ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.faces[id]; !ok {
		f.faces[id] = &Face{id: id, name: name, font: parsed, data: data}
	}
	return id
}

// Face returns the face registered under id.
func (f *Fonts) Face(id uint64) (*Face, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	face, ok := f.faces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrFontNotFound, id)
	}
	return face, nil
}

// IDs returns the registered font IDs in ascending order.
func (f *Fonts) IDs() []uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]uint64, 0, len(f.faces))
	for id := range f.faces {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered fonts.
func (f *Fonts) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.faces)
}
