// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command atlasdemo shapes a few lines of text into a glyph atlas and
// writes the resulting mask and color surfaces as PNG files.
//
// With no GPU available it runs on the software backend, whose textures
// can be read back. The initial surface size is kept small so the run
// shows surfaces growing and glyphs being evicted between frames.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/term"

	"github.com/gogpu/glyphatlas"
	"github.com/gogpu/glyphatlas/backend"
	_ "github.com/gogpu/glyphatlas/backend/native"
	"github.com/gogpu/glyphatlas/backend/software"
	"github.com/gogpu/glyphatlas/raster"
	"github.com/gogpu/glyphatlas/shape"
)

const swatchID glyphatlas.CustomGlyphID = 1

type options struct {
	text     string
	size     float64
	scale    float64
	initial  uint
	web      bool
	backend  string
	maskOut  string
	colorOut string
}

func main() {
	var opts options
	flag.StringVar(&opts.text, "text", "The quick brown fox jumps over the lazy dog|Sphinx of black quartz, judge my vow", "lines to draw, separated by |")
	flag.Float64Var(&opts.size, "size", 18, "font size in logical pixels")
	flag.Float64Var(&opts.scale, "scale", 1, "logical to physical pixel scale")
	flag.UintVar(&opts.initial, "initial", 64, "initial surface size")
	flag.BoolVar(&opts.web, "web", false, "use the web color mode")
	flag.StringVar(&opts.backend, "backend", "", "backend name (default: best available)")
	flag.StringVar(&opts.maskOut, "mask", "mask.png", "mask surface output file")
	flag.StringVar(&opts.colorOut, "color", "color.png", "color surface output file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	glyphatlas.SetLogger(newLogger(*verbose))

	if err := run(&opts); err != nil {
		log.Fatal(err)
	}
}

// run owns every GPU resource so deferred releases happen before main exits.
func run(opts *options) error {
	b, err := openBackend(opts.backend)
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	defer b.Close()

	mode := glyphatlas.ColorModeAccurate
	if opts.web {
		mode = glyphatlas.ColorModeWeb
	}
	atlas, err := glyphatlas.New(b.Device(), b.Queue(), b.PipelineCache(),
		gputypes.TextureFormatBGRA8UnormSrgb,
		glyphatlas.WithInitialSize(uint32(opts.initial)),
		glyphatlas.WithColorMode(mode),
		glyphatlas.WithLabel("atlasdemo"))
	if err != nil {
		return fmt.Errorf("atlas: %w", err)
	}
	defer atlas.Destroy()

	fonts := raster.NewFonts()
	fontID, err := fonts.Add(goregular.TTF)
	if err != nil {
		return fmt.Errorf("font: %w", err)
	}
	shaper := shape.New(fonts)
	src := glyphatlas.GlyphSource{
		Text:   raster.New(fonts),
		Custom: swatch,
		Scale:  float32(opts.scale),
	}

	shapeOpts := shape.Options{FontID: fontID, Size: float32(opts.size), Scale: float32(opts.scale)}
	for frame, line := range strings.Split(opts.text, "|") {
		shapeOpts.OriginY = float32(opts.size) * float32(opts.scale) * float32(frame+1)
		if err := drawFrame(atlas, shaper, src, line, shapeOpts); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}

	if _, err := atlas.GetOrCreatePipeline(gputypes.MultisampleState{Count: 1}, nil); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	for kind, out := range map[glyphatlas.ContentType]string{
		glyphatlas.ContentMask:  opts.maskOut,
		glyphatlas.ContentColor: opts.colorOut,
	} {
		if err := savePNG(atlas.Surface(kind), out); err != nil {
			return fmt.Errorf("save %v: %w", kind, err)
		}
	}
	return nil
}

// drawFrame prepares every glyph of line plus a color swatch, then trims
// the usage sets and evicts whatever the frame did not use.
func drawFrame(atlas *glyphatlas.Atlas, shaper *shape.Shaper, src glyphatlas.GlyphSource, line string, opts shape.Options) error {
	glyphs, width, err := shaper.Shape(line, opts)
	if err != nil {
		return err
	}

	keys := make([]glyphatlas.GlyphKey, 0, len(glyphs)+1)
	for _, g := range glyphs {
		keys = append(keys, g.Key)
	}
	keys = append(keys, glyphatlas.CustomKey{GlyphID: swatchID, Width: 16, Height: 16})

	for _, key := range keys {
		_, _, err := atlas.PrepareGlyph(key, src)
		for errors.Is(err, glyphatlas.ErrAtlasFull) {
			if evictUnused(atlas) == 0 {
				return err
			}
			_, _, err = atlas.PrepareGlyph(key, src)
		}
		if err != nil {
			return err
		}
	}

	slog.Info("frame prepared",
		"text", line,
		"glyphs", len(glyphs),
		"width", width,
		"maskSize", atlas.Surface(glyphatlas.ContentMask).Size(),
		"maskGlyphs", atlas.Surface(glyphatlas.ContentMask).Len(),
		"colorGlyphs", atlas.Surface(glyphatlas.ContentColor).Len())

	atlas.Trim()
	return nil
}

// evictUnused removes glyphs outside the usage set, oldest first.
func evictUnused(atlas *glyphatlas.Atlas) int {
	n := 0
	for _, kind := range []glyphatlas.ContentType{glyphatlas.ContentMask, glyphatlas.ContentColor} {
		s := atlas.Surface(kind)
		var victims []glyphatlas.GlyphKey
		for key := range s.Oldest() {
			if !s.InUse(key) {
				victims = append(victims, key)
			}
		}
		for _, key := range victims {
			s.Remove(key)
		}
		n += len(victims)
	}
	slog.Debug("evicted unused glyphs", "count", n)
	return n
}

// swatch draws an opaque orange square.
func swatch(req glyphatlas.RasterizeCustomGlyphRequest) (glyphatlas.RasterizedCustomGlyph, bool) {
	if req.ID != swatchID {
		return glyphatlas.RasterizedCustomGlyph{}, false
	}
	data := make([]byte, int(req.Width)*int(req.Height)*4)
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+1], data[i+2], data[i+3] = 0xff, 0x80, 0x20, 0xff
	}
	return glyphatlas.RasterizedCustomGlyph{Data: data, ContentType: glyphatlas.ContentColor}, true
}

func savePNG(s *glyphatlas.Surface, path string) error {
	tex, ok := s.Texture().(*software.Texture)
	if !ok {
		slog.Warn("surface is not readable on this backend", "kind", s.Kind(), "texture", fmt.Sprintf("%T", s.Texture()))
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, tex.ToImage()); err != nil {
		f.Close()
		return err
	}
	slog.Info("surface written", "kind", s.Kind(), "size", s.Size(), "path", path)
	return f.Close()
}

func openBackend(name string) (backend.AtlasBackend, error) {
	if name == "" {
		return backend.InitDefault()
	}
	b := backend.Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q (available: %v)", backend.ErrBackendNotAvailable, name, backend.Available())
	}
	if err := b.Init(); err != nil {
		return nil, err
	}
	return b, nil
}

// newLogger logs text to an interactive terminal and JSON otherwise.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}
