// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package packer

import "image"

// DefaultBucketHeight is the granularity new shelf heights are rounded up to.
// Glyphs of similar height share a shelf instead of each opening their own.
const DefaultBucketHeight = 8

// AllocID identifies a live allocation. IDs are never reused within an
// Allocator.
type AllocID uint32

// Allocation is a packed rectangle returned by Allocate.
type Allocation struct {
	// ID is passed to Deallocate to release the rectangle.
	ID AllocID

	// Rect is the reserved area, exactly the requested size.
	Rect image.Rectangle
}

// Allocator implements bucketed shelf packing with non-relocating growth.
//
// The canvas is divided into horizontal shelves spanning the full canvas
// width. Each shelf has a fixed height, chosen when the shelf is opened and
// rounded up to the bucket height. Items are placed left to right on the
// best fitting shelf; freed spans are reused by later items of the same or
// smaller size.
//
// Grow only moves the right and bottom bounds outward, so every rectangle
// handed out before a Grow keeps its coordinates afterwards. The allocator
// never compacts.
//
// Allocator is not safe for concurrent use.
type Allocator struct {
	width  int
	height int
	bucket int

	shelves []shelf
	slots   map[AllocID]slot
	nextID  AllocID

	usedArea int
}

// shelf is a horizontal strip of the canvas.
type shelf struct {
	y      int    // top edge
	height int    // fixed once opened, except for the last shelf
	x      int    // bump pointer: first x never handed out
	free   []span // released spans left of x, sorted by x, coalesced
	live   int    // number of live allocations on this shelf
}

// span is a free horizontal interval on a shelf.
type span struct {
	x     int
	width int
}

// slot records where a live allocation sits.
type slot struct {
	shelf int
	x     int
	w, h  int
}

// New creates an allocator for a width x height canvas.
func New(width, height int) *Allocator {
	return NewWithBucket(width, height, DefaultBucketHeight)
}

// NewWithBucket creates an allocator whose new shelves are rounded up to a
// multiple of bucket pixels. A bucket below 1 disables rounding.
func NewWithBucket(width, height, bucket int) *Allocator {
	if bucket < 1 {
		bucket = 1
	}
	return &Allocator{
		width:   max(width, 0),
		height:  max(height, 0),
		bucket:  bucket,
		shelves: make([]shelf, 0, 16),
		slots:   make(map[AllocID]slot),
		nextID:  1,
	}
}

// Allocate reserves a w x h rectangle. It returns false when no shelf has
// room and no new shelf can be opened; the allocator is unchanged then.
func (a *Allocator) Allocate(w, h int) (Allocation, bool) {
	if w <= 0 || h <= 0 || w > a.width || h > a.height {
		return Allocation{}, false
	}

	// 1. Best fitting existing shelf with little vertical waste.
	if i, x, ok := a.findShelf(w, h, a.bucketed(h)); ok {
		return a.place(i, x, w, h), true
	}

	// 2. Open a new shelf.
	if i, ok := a.openShelf(h); ok {
		return a.place(i, 0, w, h), true
	}

	// 3. Any shelf tall enough, regardless of waste.
	if i, x, ok := a.findShelf(w, h, a.height); ok {
		return a.place(i, x, w, h), true
	}

	// 4. Stretch the last shelf downwards if nothing lies below it.
	if n := len(a.shelves); n > 0 {
		last := &a.shelves[n-1]
		if h > last.height && last.y+h <= a.height {
			if x, ok := a.fitOnShelf(last, w); ok {
				last.height = h
				return a.place(n-1, x, w, h), true
			}
		}
	}

	return Allocation{}, false
}

// findShelf returns the shortest shelf with height in [h, maxHeight] that
// has a horizontal gap of at least w.
func (a *Allocator) findShelf(w, h, maxHeight int) (index, x int, ok bool) {
	best := -1
	bestX := 0
	for i := range a.shelves {
		s := &a.shelves[i]
		if s.height < h || s.height > maxHeight {
			continue
		}
		if best >= 0 && s.height >= a.shelves[best].height {
			continue
		}
		if sx, fits := a.fitOnShelf(s, w); fits {
			best, bestX = i, sx
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return best, bestX, true
}

// fitOnShelf finds an x for a w-wide item: first a freed span, then the
// bump region.
func (a *Allocator) fitOnShelf(s *shelf, w int) (int, bool) {
	for _, sp := range s.free {
		if sp.width >= w {
			return sp.x, true
		}
	}
	if s.x+w <= a.width {
		return s.x, true
	}
	return 0, false
}

// openShelf appends a shelf able to hold items of height h.
func (a *Allocator) openShelf(h int) (int, bool) {
	y := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		y = last.y + last.height
	}
	remaining := a.height - y
	if remaining < h {
		return 0, false
	}
	a.shelves = append(a.shelves, shelf{
		y:      y,
		height: min(a.bucketed(h), remaining),
	})
	return len(a.shelves) - 1, true
}

// place records an allocation at x on shelf i.
func (a *Allocator) place(i, x, w, h int) Allocation {
	s := &a.shelves[i]
	if x >= s.x {
		s.x = x + w
	} else {
		s.free = takeSpan(s.free, x, w)
	}
	s.live++

	id := a.nextID
	a.nextID++
	a.slots[id] = slot{shelf: i, x: x, w: w, h: h}
	a.usedArea += w * h

	return Allocation{ID: id, Rect: image.Rect(x, s.y, x+w, s.y+h)}
}

// Deallocate releases a rectangle. Unknown IDs are ignored.
func (a *Allocator) Deallocate(id AllocID) {
	sl, ok := a.slots[id]
	if !ok {
		return
	}
	delete(a.slots, id)
	a.usedArea -= sl.w * sl.h

	s := &a.shelves[sl.shelf]
	s.live--
	if s.live == 0 {
		s.x = 0
		s.free = s.free[:0]
		a.dropEmptyTail()
		return
	}

	s.free = releaseSpan(s.free, sl.x, sl.w)
	// Give a trailing free span back to the bump region.
	if n := len(s.free); n > 0 && s.free[n-1].x+s.free[n-1].width == s.x {
		s.x = s.free[n-1].x
		s.free = s.free[:n-1]
	}
}

// dropEmptyTail removes empty shelves at the bottom so their height can be
// reused by shelves of a different bucket.
func (a *Allocator) dropEmptyTail() {
	for n := len(a.shelves); n > 0 && a.shelves[n-1].live == 0; n-- {
		a.shelves = a.shelves[:n-1]
	}
}

// Grow extends the canvas bounds. Smaller dimensions than the current ones
// are ignored. Existing allocations keep their coordinates.
func (a *Allocator) Grow(width, height int) {
	a.width = max(a.width, width)
	a.height = max(a.height, height)
}

// Size returns the current canvas bounds.
func (a *Allocator) Size() (width, height int) {
	return a.width, a.height
}

// Len returns the number of live allocations.
func (a *Allocator) Len() int {
	return len(a.slots)
}

// ShelfCount returns the number of open shelves.
func (a *Allocator) ShelfCount() int {
	return len(a.shelves)
}

// UsedArea returns the total area of live allocations.
func (a *Allocator) UsedArea() int {
	return a.usedArea
}

// Utilization returns the fraction of the canvas covered by live
// allocations (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	total := a.width * a.height
	if total <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}

// Reset releases every allocation. IDs handed out earlier stay invalid.
func (a *Allocator) Reset() {
	a.shelves = a.shelves[:0]
	clear(a.slots)
	a.usedArea = 0
}

func (a *Allocator) bucketed(h int) int {
	return (h + a.bucket - 1) / a.bucket * a.bucket
}

// takeSpan removes [x, x+w) from the free span starting at x.
func takeSpan(free []span, x, w int) []span {
	for i := range free {
		if free[i].x != x {
			continue
		}
		if free[i].width == w {
			return append(free[:i], free[i+1:]...)
		}
		free[i].x += w
		free[i].width -= w
		return free
	}
	return free
}

// releaseSpan inserts [x, x+w) keeping the list sorted and coalesced.
func releaseSpan(free []span, x, w int) []span {
	i := 0
	for i < len(free) && free[i].x < x {
		i++
	}
	free = append(free, span{})
	copy(free[i+1:], free[i:])
	free[i] = span{x: x, width: w}

	// Merge with the right neighbour.
	if i+1 < len(free) && free[i].x+free[i].width == free[i+1].x {
		free[i].width += free[i+1].width
		free = append(free[:i+1], free[i+2:]...)
	}
	// Merge with the left neighbour.
	if i > 0 && free[i-1].x+free[i-1].width == free[i].x {
		free[i-1].width += free[i].width
		free = append(free[:i], free[i+1:]...)
	}
	return free
}
