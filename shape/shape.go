// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shape turns strings into positioned glyph keys for a glyph atlas.
//
// Text is split into directional runs with golang.org/x/text/unicode/bidi,
// runs are split further by script, and each piece is shaped with the
// HarfBuzz port from github.com/go-text/typesetting. Every shaped glyph is
// snapped to a whole pixel plus a sub-pixel bin, giving the
// glyphatlas.TextKey the atlas caches and the pixel position to draw it at.
package shape

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/glyphatlas"
	"github.com/gogpu/glyphatlas/raster"
)

// ErrInvalidSize is returned for a non-positive font size or scale.
var ErrInvalidSize = errors.New("shape: size and scale must be positive")

// Glyph is a shaped glyph ready to be prepared in an atlas and drawn.
type Glyph struct {
	Key glyphatlas.TextKey

	// X and Y are the whole-pixel pen position in physical pixels; the
	// fractional part lives in Key.XBin and Key.YBin.
	X, Y int32

	// Cluster is the index of the first rune this glyph was shaped from.
	Cluster int

	// Advance is the horizontal advance in physical pixels.
	Advance float32
}

// Options control a Shape call.
type Options struct {
	// FontID selects a font registered in the shaper's raster.Fonts.
	FontID uint64

	// Size is the font size in logical pixels per em.
	Size float32

	// Scale converts logical to physical pixels. Zero means 1.
	Scale float32

	// OriginX and OriginY are the baseline start in physical pixels.
	OriginX, OriginY float32

	// RTL sets the paragraph base direction to right-to-left.
	RTL bool

	// FakeItalic slants the glyphs of an upright font.
	FakeItalic bool

	// Language is the BCP 47 tag passed to the shaper. Empty means "en".
	Language string
}

// Shaper shapes text with fonts from a raster.Fonts registry.
//
// Shaper is safe for concurrent use. It caches parsed font.Font objects,
// which are read-only, and creates a font.Face per call.
type Shaper struct {
	fonts *raster.Fonts

	// shaperPool pools HarfbuzzShaper instances, which are not safe for
	// concurrent use.
	shaperPool sync.Pool

	mu        sync.RWMutex
	fontCache map[uint64]*font.Font
}

// New creates a shaper reading fonts from fonts.
func New(fonts *raster.Fonts) *Shaper {
	return &Shaper{
		fonts: fonts,
		shaperPool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		fontCache: make(map[uint64]*font.Font),
	}
}

// Shape lays out one line of text and returns its glyphs in visual order
// together with the total advance in physical pixels.
func (s *Shaper) Shape(text string, opts Options) ([]Glyph, float32, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if opts.Size <= 0 || scale < 0 {
		return nil, 0, ErrInvalidSize
	}
	if text == "" {
		return nil, 0, nil
	}

	f, err := s.font(opts.FontID)
	if err != nil {
		return nil, 0, err
	}
	face := font.NewFace(f)

	lang := language.NewLanguage("en")
	if opts.Language != "" {
		lang = language.NewLanguage(opts.Language)
	}

	runes := []rune(text)
	size := fixed.Int26_6(opts.Size * scale * 64)
	var flags glyphatlas.TextFlags
	if opts.FakeItalic {
		flags |= glyphatlas.FakeItalic
	}

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer s.shaperPool.Put(hb)

	glyphs := make([]Glyph, 0, len(runes))
	var pen float32
	for _, r := range splitRuns(text, runes, opts.RTL) {
		out := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: r.dir,
			Face:      face,
			Size:      size,
			Script:    r.script,
			Language:  lang,
		})
		for _, g := range out.Glyphs {
			gx := opts.OriginX + pen + fixedToFloat(g.XOffset)
			gy := opts.OriginY - fixedToFloat(g.YOffset)
			x, xbin := glyphatlas.SubpixelBinFor(gx)
			y, ybin := glyphatlas.SubpixelBinFor(gy)
			adv := fixedToFloat(g.Advance)

			glyphs = append(glyphs, Glyph{
				Key: glyphatlas.TextKey{
					FontID:  opts.FontID,
					GlyphID: uint16(g.GlyphID),
					Size:    size,
					XBin:    xbin,
					YBin:    ybin,
					Flags:   flags,
				},
				X:       x,
				Y:       y,
				Cluster: g.TextIndex(),
				Advance: adv,
			})
			pen += adv
		}
	}
	return glyphs, pen, nil
}

// font returns the cached go-text font for id, parsing it on first use.
func (s *Shaper) font(id uint64) (*font.Font, error) {
	s.mu.RLock()
	if f, ok := s.fontCache[id]; ok {
		s.mu.RUnlock()
		return f, nil
	}
	s.mu.RUnlock()

	face, err := s.fonts.Face(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fontCache[id]; ok {
		return f, nil
	}
	parsed, err := font.ParseTTF(bytes.NewReader(face.Data()))
	if err != nil {
		return nil, fmt.Errorf("shape: parse font %#x: %w", id, err)
	}
	s.fontCache[id] = parsed.Font
	return parsed.Font, nil
}

// run is a span of runes with one direction and script.
type run struct {
	start, end int
	dir        di.Direction
	script     language.Script
}

// splitRuns splits text into runs in visual order.
func splitRuns(text string, runes []rune, rtl bool) []run {
	base := bidi.Neutral
	if rtl {
		base = bidi.RightToLeft
	}
	var p bidi.Paragraph
	if _, err := p.SetString(text, bidi.DefaultDirection(base)); err != nil {
		return scriptRuns(nil, runes, 0, len(runes), directionOf(rtl))
	}
	ordering, err := p.Order()
	if err != nil {
		return scriptRuns(nil, runes, 0, len(runes), directionOf(rtl))
	}

	runs := make([]run, 0, ordering.NumRuns())
	for i := range ordering.NumRuns() {
		br := ordering.Run(i)
		// Pos returns rune indices, end inclusive.
		start, end := br.Pos()
		dir := di.DirectionLTR
		if br.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		runs = scriptRuns(runs, runes, start, min(end+1, len(runes)), dir)
	}
	return runs
}

func directionOf(rtl bool) di.Direction {
	if rtl {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// scriptRuns appends the script runs of runes[start:end]. Common and
// inherited runes join the surrounding script. Runs of an RTL span are
// appended in reverse so the result stays in visual order.
func scriptRuns(runs []run, runes []rune, start, end int, dir di.Direction) []run {
	if start >= end {
		return runs
	}

	first := len(runs)
	cur := run{start: start, dir: dir, script: language.Common}
	for i := start; i < end; i++ {
		sc := language.LookupScript(runes[i])
		if sc == language.Common || sc == language.Inherited {
			continue
		}
		if cur.script == language.Common {
			cur.script = sc
			continue
		}
		if sc != cur.script {
			cur.end = i
			runs = append(runs, cur)
			cur = run{start: i, dir: dir, script: sc}
		}
	}
	cur.end = end
	if cur.script == language.Common {
		cur.script = language.Latin
	}
	runs = append(runs, cur)

	if dir == di.DirectionRTL {
		tail := runs[first:]
		for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
			tail[i], tail[j] = tail[j], tail[i]
		}
	}
	return runs
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
