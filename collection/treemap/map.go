// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package treemap provides an ordered map with arbitrary keys, backed by a
// persistent left-leaning red-black tree. Snapshots cost O(1) and are never
// affected by later updates of the map they were taken from.
package treemap

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/0xsoniclabs/objstate/collection"
	"github.com/0xsoniclabs/objstate/collection/llrb"
	"github.com/0xsoniclabs/objstate/common"
)

// Map is an ordered map from K to V. Nil keys are rejected; a key bound to
// the zero value of V is considered present but without value. Maps are not
// safe for concurrent use.
type Map[K any, V any] struct {
	reader[K, V]
}

// New creates an empty map ordered by the default order of K, see
// common.DefaultComparator.
func New[K any, V any]() (*Map[K, V], error) {
	compare, err := common.DefaultComparator[K]()
	if err != nil {
		return nil, err
	}
	return NewWithComparator[K, V](compare), nil
}

// NewWithComparator creates an empty map ordered by the given comparator.
func NewWithComparator[K any, V any](compare common.Comparator[K]) *Map[K, V] {
	return &Map[K, V]{reader[K, V]{tree: llrb.NewPersistent[K, V](compare)}}
}

// NewFrom creates a map holding the entries of the given Go map.
func NewFrom[K comparable, V any](entries map[K]V) (*Map[K, V], error) {
	res, err := New[K, V]()
	if err != nil {
		return nil, err
	}
	for k, v := range entries {
		if err := res.Put(k, v); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func checkKey[K any](key K) error {
	if common.IsNil(key) {
		return fmt.Errorf("%w: key is nil", common.ErrInvalidArgument)
	}
	if common.IsUnidentified(key) {
		return fmt.Errorf("%w: key has no storage identity", common.ErrInvalidArgument)
	}
	return nil
}

// View returns a read-only alias of this map reflecting all later updates.
func (m *Map[K, V]) View() collection.MapView[K, V] {
	return m.reader
}

func (m *Map[K, V]) Put(key K, value V) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.tree.Put(key, value)
	return nil
}

// Remove deletes the key from the map and reports whether it was present.
func (m *Map[K, V]) Remove(key K) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	return m.tree.Remove(key), nil
}

func (m *Map[K, V]) RemoveMin() error {
	return m.tree.RemoveMin()
}

func (m *Map[K, V]) RemoveMax() error {
	return m.tree.RemoveMax()
}

// Update replaces the value bound to key by how(value); an unbound key is
// treated as bound to the zero value.
func (m *Map[K, V]) Update(key K, how func(V) V) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.tree.Update(key, how)
	return nil
}

// UpdateOrDefault is like Update, but keys without value start from def.
func (m *Map[K, V]) UpdateOrDefault(key K, def V, how func(V) V) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.tree.UpdateOrDefault(key, def, how)
	return nil
}

func (m *Map[K, V]) UpdateOrSupply(key K, supplier func() V, how func(V) V) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.tree.UpdateOrSupply(key, supplier, how)
	return nil
}

// PutIfAbsent binds key to value unless it has a value already, which is
// returned in that case. Otherwise the zero value is returned.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (V, error) {
	if err := checkKey(key); err != nil {
		var zero V
		return zero, err
	}
	return m.tree.PutIfAbsent(key, value), nil
}

// ComputeIfAbsent returns the value of key, computing and storing it first if
// the key has no value yet.
func (m *Map[K, V]) ComputeIfAbsent(key K, supplier func(K) V) (V, error) {
	if err := checkKey(key); err != nil {
		var zero V
		return zero, err
	}
	return m.tree.ComputeIfAbsent(key, supplier), nil
}

func (m *Map[K, V]) Clear() {
	m.tree.Clear()
}

// reader implements the read-only part of a map. Views share the tree
// pointer of their map; snapshots own a clone of it.
type reader[K any, V any] struct {
	tree *llrb.Persistent[K, V]
}

func (r reader[K, V]) Size() int {
	return r.tree.Size()
}

func (r reader[K, V]) IsEmpty() bool {
	return r.tree.IsEmpty()
}

func (r reader[K, V]) Get(key K) (V, error) {
	if err := checkKey(key); err != nil {
		var zero V
		return zero, err
	}
	res, _ := r.tree.Get(key)
	return res, nil
}

func (r reader[K, V]) GetOrDefault(key K, def V) (V, error) {
	if err := checkKey(key); err != nil {
		var zero V
		return zero, err
	}
	return r.tree.GetOrDefault(key, def), nil
}

func (r reader[K, V]) ContainsKey(key K) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	return r.tree.Contains(key), nil
}

func (r reader[K, V]) Min() (K, error) {
	return r.tree.Min()
}

func (r reader[K, V]) Max() (K, error) {
	return r.tree.Max()
}

// FloorKey returns the largest key less than or equal to the given key.
func (r reader[K, V]) FloorKey(key K) (K, error) {
	if err := checkKey(key); err != nil {
		var zero K
		return zero, err
	}
	return r.tree.FloorKey(key)
}

// CeilingKey returns the smallest key greater than or equal to the given key.
func (r reader[K, V]) CeilingKey(key K) (K, error) {
	if err := checkKey(key); err != nil {
		var zero K
		return zero, err
	}
	return r.tree.CeilingKey(key)
}

// Select returns the key with the given rank, counting from zero.
func (r reader[K, V]) Select(rank int) (K, error) {
	return r.tree.Select(rank)
}

// Rank returns the number of keys strictly less than the given key.
func (r reader[K, V]) Rank(key K) (int, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}
	return r.tree.Rank(key), nil
}

func (r reader[K, V]) All() iter.Seq2[K, V] {
	return r.tree.All()
}

func (r reader[K, V]) Keys() iter.Seq[K] {
	return r.tree.Keys()
}

func (r reader[K, V]) Values() iter.Seq[V] {
	all := r.tree.All()
	return func(yield func(V) bool) {
		for _, v := range all {
			if !yield(v) {
				return
			}
		}
	}
}

func (r reader[K, V]) Entries() iter.Seq[common.MapEntry[K, V]] {
	all := r.tree.All()
	return func(yield func(common.MapEntry[K, V]) bool) {
		for k, v := range all {
			if !yield(common.MapEntry[K, V]{Key: k, Val: v}) {
				return
			}
		}
	}
}

func (r reader[K, V]) KeyList() []K {
	return r.tree.KeyList()
}

// Snapshot returns a read-only copy of the current content in O(1).
func (r reader[K, V]) Snapshot() collection.MapView[K, V] {
	return reader[K, V]{tree: r.tree.Clone()}
}

func (r reader[K, V]) String() string {
	return collection.FormatPairs(r.tree.All())
}

// Check verifies the invariants of the underlying tree.
func (r reader[K, V]) Check() error {
	return r.tree.Check()
}

func (r reader[K, V]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(r))
	mf.AddChild("tree", r.tree.GetMemoryFootprint())
	return mf
}
