// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package packer provides a growable rectangle allocator for texture atlases.
//
// The allocator groups items into shelves whose heights are rounded to a
// bucket size, so glyphs of similar height share rows and freed space is
// reused by glyphs of the same size class. Growing the canvas only extends
// its bounds: rectangles allocated before Grow stay valid at the same
// coordinates, which lets an atlas texture be recreated at a larger size
// and repopulated in place.
//
// Usage:
//
//	a := packer.New(1024, 1024)
//	alloc, ok := a.Allocate(18, 24)
//	if !ok {
//	    a.Grow(2048, 2048)
//	    alloc, ok = a.Allocate(18, 24)
//	}
//	...
//	a.Deallocate(alloc.ID)
package packer
