// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lru

import (
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keys[V any](seq iter.Seq2[string, V]) []string {
	var out []string
	for k := range seq {
		out = append(out, k)
	}
	return out
}

func TestMap_PutGet(t *testing.T) {
	m := New[string, int]()

	if _, ok := m.Get("missing"); ok {
		t.Error("Get on empty map returned ok")
	}

	m.Put("a", 1)
	m.Put("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	old, replaced := m.Put("a", 10)
	if !replaced || old != 1 {
		t.Errorf("Put(a) replaced = %v, old = %d; want true, 1", replaced, old)
	}
	if m.Len() != 2 {
		t.Errorf("Len() after replace = %d, want 2", m.Len())
	}
}

func TestMap_RecencyOrder(t *testing.T) {
	m := New[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 3)

	if diff := cmp.Diff([]string{"c", "b", "a"}, keys(m.All())); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}

	m.Get("a")
	if diff := cmp.Diff([]string{"a", "c", "b"}, keys(m.All())); diff != "" {
		t.Errorf("All() after Get mismatch (-want +got):\n%s", diff)
	}

	m.Peek("b")
	m.Contains("b")
	if diff := cmp.Diff([]string{"b", "c", "a"}, keys(m.Backward())); diff != "" {
		t.Errorf("Backward() after Peek mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_OldestAndPop(t *testing.T) {
	m := New[string, int]()
	if _, _, ok := m.Oldest(); ok {
		t.Error("Oldest on empty map returned ok")
	}

	m.Put("a", 1)
	m.Put("b", 2)
	m.Get("a")

	k, v, ok := m.Oldest()
	if !ok || k != "b" || v != 2 {
		t.Errorf("Oldest() = %q, %d, %v; want b, 2, true", k, v, ok)
	}

	k, _, _ = m.PopOldest()
	if k != "b" || m.Contains("b") {
		t.Errorf("PopOldest() = %q, b still present = %v", k, m.Contains("b"))
	}
	k, _, _ = m.PopOldest()
	if k != "a" || m.Len() != 0 {
		t.Errorf("PopOldest() = %q, Len() = %d", k, m.Len())
	}
	if _, _, ok := m.PopOldest(); ok {
		t.Error("PopOldest on empty map returned ok")
	}
}

func TestMap_Remove(t *testing.T) {
	m := New[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 3)

	if v, ok := m.Remove("b"); !ok || v != 2 {
		t.Errorf("Remove(b) = %d, %v; want 2, true", v, ok)
	}
	if _, ok := m.Remove("b"); ok {
		t.Error("second Remove(b) returned ok")
	}
	if diff := cmp.Diff([]string{"c", "a"}, keys(m.All())); diff != "" {
		t.Errorf("All() after Remove mismatch (-want +got):\n%s", diff)
	}

	m.Remove("c")
	m.Remove("a")
	if m.Len() != 0 || m.order.head != nil || m.order.tail != nil {
		t.Error("list not empty after removing every key")
	}
}

func TestMap_IterationStops(t *testing.T) {
	m := New[string, int]()
	for i, k := range []string{"a", "b", "c", "d"} {
		m.Put(k, i)
	}

	n := 0
	for range m.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d entries, want 2", n)
	}
}

func TestMap_Clear(t *testing.T) {
	m := New[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)
	m.Clear()

	if m.Len() != 0 || m.Contains("a") {
		t.Error("map not empty after Clear")
	}
	m.Put("c", 3)
	if diff := cmp.Diff([]string{"c"}, keys(m.All())); diff != "" {
		t.Errorf("All() after Clear mismatch (-want +got):\n%s", diff)
	}
}

func BenchmarkMap_GetHit(b *testing.B) {
	m := New[int, int]()
	for i := 0; i < 1024; i++ {
		m.Put(i, i)
	}
	i := 0
	for b.Loop() {
		m.Get(i & 1023)
		i++
	}
}
