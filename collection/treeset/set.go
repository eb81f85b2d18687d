// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package treeset provides an ordered set backed by a mutable left-leaning
// red-black tree.
package treeset

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/0xsoniclabs/objstate/collection"
	"github.com/0xsoniclabs/objstate/collection/llrb"
	"github.com/0xsoniclabs/objstate/common"
)

// Set is an ordered set of values of type V. Nil values are rejected. Sets
// are not safe for concurrent use.
type Set[V any] struct {
	reader[V]
}

// New creates an empty set ordered by the default order of V.
func New[V any]() (*Set[V], error) {
	compare, err := common.DefaultComparator[V]()
	if err != nil {
		return nil, err
	}
	return NewWithComparator(compare), nil
}

func NewWithComparator[V any](compare common.Comparator[V]) *Set[V] {
	return &Set[V]{reader[V]{tree: llrb.NewMutable[V, struct{}](compare)}}
}

// NewFrom creates a set holding the given values.
func NewFrom[V any](values ...V) (*Set[V], error) {
	res, err := New[V]()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := res.Add(v); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func checkValue[V any](value V) error {
	if common.IsNil(value) {
		return fmt.Errorf("%w: value is nil", common.ErrInvalidArgument)
	}
	if common.IsUnidentified(value) {
		return fmt.Errorf("%w: value has no storage identity", common.ErrInvalidArgument)
	}
	return nil
}

// View returns a read-only alias of this set reflecting all later updates.
func (s *Set[V]) View() collection.SetView[V] {
	return s.reader
}

// Add inserts the value; adding a contained value has no effect.
func (s *Set[V]) Add(value V) error {
	if err := checkValue(value); err != nil {
		return err
	}
	s.tree.Put(value, struct{}{})
	return nil
}

// Remove deletes the value and reports whether it was contained.
func (s *Set[V]) Remove(value V) (bool, error) {
	if err := checkValue(value); err != nil {
		return false, err
	}
	return s.tree.Remove(value), nil
}

func (s *Set[V]) RemoveMin() error {
	return s.tree.RemoveMin()
}

func (s *Set[V]) RemoveMax() error {
	return s.tree.RemoveMax()
}

func (s *Set[V]) Clear() {
	s.tree.Clear()
}

type reader[V any] struct {
	tree *llrb.Mutable[V, struct{}]
}

func (r reader[V]) Size() int {
	return r.tree.Size()
}

func (r reader[V]) IsEmpty() bool {
	return r.tree.IsEmpty()
}

func (r reader[V]) Contains(value V) (bool, error) {
	if err := checkValue(value); err != nil {
		return false, err
	}
	return r.tree.Contains(value), nil
}

func (r reader[V]) Min() (V, error) {
	return r.tree.Min()
}

func (r reader[V]) Max() (V, error) {
	return r.tree.Max()
}

// FloorKey returns the largest element less than or equal to value.
func (r reader[V]) FloorKey(value V) (V, error) {
	if err := checkValue(value); err != nil {
		return value, err
	}
	return r.tree.FloorKey(value)
}

// CeilingKey returns the smallest element greater than or equal to value.
func (r reader[V]) CeilingKey(value V) (V, error) {
	if err := checkValue(value); err != nil {
		return value, err
	}
	return r.tree.CeilingKey(value)
}

func (r reader[V]) Select(rank int) (V, error) {
	return r.tree.Select(rank)
}

func (r reader[V]) Rank(value V) (int, error) {
	if err := checkValue(value); err != nil {
		return 0, err
	}
	return r.tree.Rank(value), nil
}

// All enumerates the elements in increasing order.
func (r reader[V]) All() iter.Seq[V] {
	return r.tree.Keys()
}

// Snapshot returns a read-only copy of the current content. This copies all
// nodes of the set.
func (r reader[V]) Snapshot() collection.SetView[V] {
	return reader[V]{tree: r.tree.Clone()}
}

func (r reader[V]) String() string {
	return collection.Format(r.tree.Keys())
}

func (r reader[V]) Check() error {
	return r.tree.Check()
}

func (r reader[V]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(r))
	mf.AddChild("tree", r.tree.GetMemoryFootprint())
	return mf
}
