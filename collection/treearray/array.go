// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package treearray provides a sparse array of fixed length backed by a
// mutable left-leaning red-black tree keyed by index. Only slots holding a
// value are materialized as tree nodes; all other slots read as the zero
// value of the element type.
package treearray

import (
	"cmp"
	"fmt"
	"iter"
	"unsafe"

	"github.com/0xsoniclabs/objstate/collection"
	"github.com/0xsoniclabs/objstate/collection/llrb"
	"github.com/0xsoniclabs/objstate/common"
)

// Array is a sparse array of fixed length. Arrays are not safe for
// concurrent use.
type Array[V any] struct {
	reader[V]
}

// New creates an array of the given length with all slots unset.
func New[V any](length int) (*Array[V], error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative array length %d", common.ErrInvalidArgument, length)
	}
	return &Array[V]{reader[V]{
		tree:   llrb.NewMutable[int, V](cmp.Compare[int]),
		length: length,
	}}, nil
}

// NewFilled creates an array of the given length with all slots set to value.
func NewFilled[V any](length int, value V) (*Array[V], error) {
	return NewSupplied(length, func(int) V { return value })
}

// NewSupplied creates an array of the given length whose slot i is set to
// supplier(i).
func NewSupplied[V any](length int, supplier func(index int) V) (*Array[V], error) {
	res, err := New[V](length)
	if err != nil {
		return nil, err
	}
	for i := range length {
		if v := supplier(i); !common.IsZero(v) {
			res.tree.Put(i, v)
		}
	}
	return res, nil
}

// View returns a read-only alias of this array reflecting all later updates.
func (a *Array[V]) View() collection.ArrayView[V] {
	return a.reader
}

func (a *Array[V]) Set(index int, value V) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	a.tree.Put(index, value)
	return nil
}

// Remove resets the slot at the given index to the zero value.
func (a *Array[V]) Remove(index int) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	a.tree.Remove(index)
	return nil
}

// RemoveMin resets the lowest materialized slot.
func (a *Array[V]) RemoveMin() error {
	return a.tree.RemoveMin()
}

// RemoveMax resets the highest materialized slot.
func (a *Array[V]) RemoveMax() error {
	return a.tree.RemoveMax()
}

func (a *Array[V]) Update(index int, how func(V) V) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	a.tree.Update(index, how)
	return nil
}

func (a *Array[V]) UpdateOrDefault(index int, def V, how func(V) V) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	a.tree.UpdateOrDefault(index, def, how)
	return nil
}

func (a *Array[V]) UpdateOrSupply(index int, supplier func() V, how func(V) V) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	a.tree.UpdateOrSupply(index, supplier, how)
	return nil
}

// SetIfAbsent sets the slot unless it holds a value already, which is returned
// in that case. Otherwise the zero value is returned.
func (a *Array[V]) SetIfAbsent(index int, value V) (V, error) {
	if err := a.checkIndex(index); err != nil {
		var zero V
		return zero, err
	}
	return a.tree.PutIfAbsent(index, value), nil
}

func (a *Array[V]) ComputeIfAbsent(index int, supplier func(int) V) (V, error) {
	if err := a.checkIndex(index); err != nil {
		var zero V
		return zero, err
	}
	return a.tree.ComputeIfAbsent(index, supplier), nil
}

type reader[V any] struct {
	tree   *llrb.Mutable[int, V]
	length int
}

func (r reader[V]) checkIndex(index int) error {
	if index < 0 || index >= r.length {
		return fmt.Errorf("%w: index %d not in [0,%d)", common.ErrOutOfRange, index, r.length)
	}
	return nil
}

func (r reader[V]) Length() int {
	return r.length
}

func (r reader[V]) Get(index int) (V, error) {
	if err := r.checkIndex(index); err != nil {
		var zero V
		return zero, err
	}
	res, _ := r.tree.Get(index)
	return res, nil
}

// GetOrDefault returns the value of the slot, or def if it was never set.
func (r reader[V]) GetOrDefault(index int, def V) (V, error) {
	if err := r.checkIndex(index); err != nil {
		var zero V
		return zero, err
	}
	return r.tree.GetOrDefault(index, def), nil
}

// All enumerates all Length() slots in index order, yielding the zero value
// for unset slots.
func (r reader[V]) All() iter.Seq2[int, V] {
	materialized := r.tree.All()
	length := r.length
	return func(yield func(int, V) bool) {
		var zero V
		next := 0
		for i, v := range materialized {
			for ; next < i; next++ {
				if !yield(next, zero) {
					return
				}
			}
			if !yield(i, v) {
				return
			}
			next = i + 1
		}
		for ; next < length; next++ {
			if !yield(next, zero) {
				return
			}
		}
	}
}

func (r reader[V]) ToSlice() []V {
	res := make([]V, r.length)
	for i, v := range r.tree.All() {
		res[i] = v
	}
	return res
}

func (r reader[V]) Materialized() int {
	return r.tree.Size()
}

func (r reader[V]) Min() (int, error) {
	return r.tree.Min()
}

func (r reader[V]) Max() (int, error) {
	return r.tree.Max()
}

// FloorKey returns the largest materialized index less than or equal to the
// given one.
func (r reader[V]) FloorKey(index int) (int, error) {
	if err := r.checkIndex(index); err != nil {
		return 0, err
	}
	return r.tree.FloorKey(index)
}

// CeilingKey returns the smallest materialized index greater than or equal
// to the given one.
func (r reader[V]) CeilingKey(index int) (int, error) {
	if err := r.checkIndex(index); err != nil {
		return 0, err
	}
	return r.tree.CeilingKey(index)
}

func (r reader[V]) Select(rank int) (int, error) {
	return r.tree.Select(rank)
}

// Rank returns the number of materialized indices below the given one.
func (r reader[V]) Rank(index int) (int, error) {
	if err := r.checkIndex(index); err != nil {
		return 0, err
	}
	return r.tree.Rank(index), nil
}

// Snapshot returns a read-only copy of the current content. This copies all
// materialized slots.
func (r reader[V]) Snapshot() collection.ArrayView[V] {
	return reader[V]{tree: r.tree.Clone(), length: r.length}
}

func (r reader[V]) String() string {
	return collection.Format(func(yield func(V) bool) {
		for _, v := range r.All() {
			if !yield(v) {
				return
			}
		}
	})
}

// Check verifies the invariants of the underlying tree and that all
// materialized indices are within bounds.
func (r reader[V]) Check() error {
	if err := r.tree.Check(); err != nil {
		return err
	}
	if r.tree.IsEmpty() {
		return nil
	}
	first, _ := r.tree.Min()
	last, _ := r.tree.Max()
	if first < 0 || last >= r.length {
		return fmt.Errorf("materialized indices [%d,%d] exceed length %d", first, last, r.length)
	}
	return nil
}

func (r reader[V]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(r))
	mf.AddChild("tree", r.tree.GetMemoryFootprint())
	return mf
}
