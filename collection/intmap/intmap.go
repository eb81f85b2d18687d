// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package intmap provides an ordered map with int keys backed by a mutable
// left-leaning red-black tree. Updates modify nodes in place, so taking a
// snapshot copies the whole tree.
package intmap

import (
	"cmp"
	"iter"
	"unsafe"

	"github.com/0xsoniclabs/objstate/collection"
	"github.com/0xsoniclabs/objstate/collection/llrb"
	"github.com/0xsoniclabs/objstate/common"
)

// IntMap is an ordered map from int to V. A key bound to the zero value of V
// is considered present but without value. IntMaps are not safe for
// concurrent use.
type IntMap[V any] struct {
	reader[V]
}

func New[V any]() *IntMap[V] {
	return &IntMap[V]{reader[V]{tree: llrb.NewMutable[int, V](cmp.Compare[int])}}
}

// NewFrom creates a map holding the entries of the given Go map.
func NewFrom[V any](entries map[int]V) *IntMap[V] {
	res := New[V]()
	for k, v := range entries {
		res.Put(k, v)
	}
	return res
}

// View returns a read-only alias of this map reflecting all later updates.
func (m *IntMap[V]) View() collection.IntMapView[V] {
	return m.reader
}

func (m *IntMap[V]) Put(key int, value V) {
	m.tree.Put(key, value)
}

// Remove deletes the key and reports whether it was present.
func (m *IntMap[V]) Remove(key int) bool {
	return m.tree.Remove(key)
}

func (m *IntMap[V]) RemoveMin() error {
	return m.tree.RemoveMin()
}

func (m *IntMap[V]) RemoveMax() error {
	return m.tree.RemoveMax()
}

func (m *IntMap[V]) Update(key int, how func(V) V) {
	m.tree.Update(key, how)
}

func (m *IntMap[V]) UpdateOrDefault(key int, def V, how func(V) V) {
	m.tree.UpdateOrDefault(key, def, how)
}

func (m *IntMap[V]) UpdateOrSupply(key int, supplier func() V, how func(V) V) {
	m.tree.UpdateOrSupply(key, supplier, how)
}

func (m *IntMap[V]) PutIfAbsent(key int, value V) V {
	return m.tree.PutIfAbsent(key, value)
}

func (m *IntMap[V]) ComputeIfAbsent(key int, supplier func(int) V) V {
	return m.tree.ComputeIfAbsent(key, supplier)
}

func (m *IntMap[V]) Clear() {
	m.tree.Clear()
}

type reader[V any] struct {
	tree *llrb.Mutable[int, V]
}

func (r reader[V]) Size() int                       { return r.tree.Size() }
func (r reader[V]) IsEmpty() bool                   { return r.tree.IsEmpty() }
func (r reader[V]) ContainsKey(key int) bool        { return r.tree.Contains(key) }
func (r reader[V]) GetOrDefault(key int, def V) V   { return r.tree.GetOrDefault(key, def) }
func (r reader[V]) Min() (int, error)               { return r.tree.Min() }
func (r reader[V]) Max() (int, error)               { return r.tree.Max() }
func (r reader[V]) FloorKey(key int) (int, error)   { return r.tree.FloorKey(key) }
func (r reader[V]) CeilingKey(key int) (int, error) { return r.tree.CeilingKey(key) }
func (r reader[V]) Select(rank int) (int, error)    { return r.tree.Select(rank) }
func (r reader[V]) Rank(key int) int                { return r.tree.Rank(key) }
func (r reader[V]) All() iter.Seq2[int, V]          { return r.tree.All() }
func (r reader[V]) Keys() iter.Seq[int]             { return r.tree.Keys() }
func (r reader[V]) KeyList() []int                  { return r.tree.KeyList() }
func (r reader[V]) Check() error                    { return r.tree.Check() }

// Get returns the value bound to key, or the zero value if there is none.
func (r reader[V]) Get(key int) V {
	res, _ := r.tree.Get(key)
	return res
}

func (r reader[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range r.tree.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (r reader[V]) Entries() iter.Seq[common.MapEntry[int, V]] {
	return func(yield func(common.MapEntry[int, V]) bool) {
		for k, v := range r.tree.All() {
			if !yield(common.MapEntry[int, V]{Key: k, Val: v}) {
				return
			}
		}
	}
}

// Snapshot returns a read-only copy of the current content. This copies all
// nodes of the map.
func (r reader[V]) Snapshot() collection.IntMapView[V] {
	return reader[V]{tree: r.tree.Clone()}
}

func (r reader[V]) String() string {
	return collection.FormatPairs(r.tree.All())
}

func (r reader[V]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(r))
	mf.AddChild("tree", r.tree.GetMemoryFootprint())
	return mf
}
