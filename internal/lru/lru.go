// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lru provides a recency-ordered map.
//
// Map has no capacity limit and never evicts on its own. Callers read the
// recency order through All, Backward and Oldest and decide what to remove,
// which keeps eviction policy outside the container.
//
// Map is not safe for concurrent use.
package lru

import "iter"

// Map is a map that remembers the order in which keys were last used.
type Map[K comparable, V any] struct {
	entries map[K]*node[K, V]
	order   list[K, V]
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{entries: make(map[K]*node[K, V])}
}

// Get returns the value for key and marks it most recently used.
func (m *Map[K, V]) Get(key K) (V, bool) {
	n, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	m.order.moveToFront(n)
	return n.value, true
}

// Peek returns the value for key without touching the recency order.
func (m *Map[K, V]) Peek(key K) (V, bool) {
	n, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Contains reports whether key is present. The recency order is unchanged.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.entries[key]
	return ok
}

// Put stores value under key and marks it most recently used.
// It returns the previous value, if any.
func (m *Map[K, V]) Put(key K, value V) (V, bool) {
	if n, ok := m.entries[key]; ok {
		old := n.value
		n.value = value
		m.order.moveToFront(n)
		return old, true
	}

	n := &node[K, V]{key: key, value: value}
	m.entries[key] = n
	m.order.pushFront(n)

	var zero V
	return zero, false
}

// Remove deletes key and returns its value.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	n, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(m.entries, key)
	m.order.unlink(n)
	return n.value, true
}

// Oldest returns the least recently used entry without removing it.
func (m *Map[K, V]) Oldest() (K, V, bool) {
	if m.order.tail == nil {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	return m.order.tail.key, m.order.tail.value, true
}

// PopOldest removes and returns the least recently used entry.
func (m *Map[K, V]) PopOldest() (K, V, bool) {
	k, v, ok := m.Oldest()
	if ok {
		m.Remove(k)
	}
	return k, v, ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.order.len
}

// Clear removes all entries.
func (m *Map[K, V]) Clear() {
	clear(m.entries)
	m.order.clear()
}

// All yields entries from most to least recently used.
// The map must not be modified during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := m.order.head; n != nil; n = n.next {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Backward yields entries from least to most recently used.
// The map must not be modified during iteration.
func (m *Map[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := m.order.tail; n != nil; n = n.prev {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}
