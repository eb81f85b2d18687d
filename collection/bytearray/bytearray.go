// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package bytearray provides a byte array of fixed length backed by a
// persistent left-leaning red-black tree keyed by index. Unset slots read as
// zero. Snapshots cost O(1).
package bytearray

import (
	"cmp"
	"fmt"
	"iter"
	"unsafe"

	"github.com/0xsoniclabs/objstate/collection"
	"github.com/0xsoniclabs/objstate/collection/llrb"
	"github.com/0xsoniclabs/objstate/common"
)

// ByteArray is a byte array of fixed length. Byte arrays are not safe for
// concurrent use.
type ByteArray struct {
	reader
}

// New creates a byte array of the given length with all slots zero.
func New(length int) (*ByteArray, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative array length %d", common.ErrInvalidArgument, length)
	}
	return &ByteArray{reader{
		tree:   llrb.NewPersistent[int, byte](cmp.Compare[int]),
		length: length,
	}}, nil
}

// NewFilled creates a byte array of the given length with all slots set to
// value.
func NewFilled(length int, value byte) (*ByteArray, error) {
	return NewSupplied(length, func(int) byte { return value })
}

// NewSupplied creates a byte array of the given length whose slot i is set to
// supplier(i).
func NewSupplied(length int, supplier func(index int) byte) (*ByteArray, error) {
	res, err := New(length)
	if err != nil {
		return nil, err
	}
	for i := range length {
		if b := supplier(i); b != 0 {
			res.tree.Put(i, b)
		}
	}
	return res, nil
}

// NewFromBytes creates a byte array holding a copy of the given bytes.
func NewFromBytes(data []byte) *ByteArray {
	res, _ := NewSupplied(len(data), func(i int) byte { return data[i] })
	return res
}

// View returns a read-only alias of this array reflecting all later updates.
func (a *ByteArray) View() collection.ByteArrayView {
	return a.reader
}

func (a *ByteArray) Set(index int, value byte) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	if value == 0 {
		a.tree.Remove(index)
	} else {
		a.tree.Put(index, value)
	}
	return nil
}

// Update replaces the byte at the given index by how(byte).
func (a *ByteArray) Update(index int, how func(byte) byte) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	value, _ := a.tree.Get(index)
	return a.Set(index, how(value))
}

// UpdateOrDefault is like Update, but applies how to def if the slot is zero.
func (a *ByteArray) UpdateOrDefault(index int, def byte, how func(byte) byte) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	value, _ := a.tree.Get(index)
	if value == 0 {
		value = def
	}
	return a.Set(index, how(value))
}

// Remove resets the slot at the given index to zero.
func (a *ByteArray) Remove(index int) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	a.tree.Remove(index)
	return nil
}

// RemoveMin resets the lowest non-zero slot, or fails with ErrNotFound if all
// slots are zero.
func (a *ByteArray) RemoveMin() error {
	return a.tree.RemoveMin()
}

// RemoveMax resets the highest non-zero slot, or fails with ErrNotFound if all
// slots are zero.
func (a *ByteArray) RemoveMax() error {
	return a.tree.RemoveMax()
}

// SetIfAbsent sets the slot to value if it is zero and returns zero.
// Otherwise the slot is left untouched and its current byte is returned.
func (a *ByteArray) SetIfAbsent(index int, value byte) (byte, error) {
	if err := a.checkIndex(index); err != nil {
		return 0, err
	}
	if current, _ := a.tree.Get(index); current != 0 {
		return current, nil
	}
	return 0, a.Set(index, value)
}

// ComputeIfAbsent returns the byte at the given index if it is not zero, and
// otherwise stores and returns supplier(index).
func (a *ByteArray) ComputeIfAbsent(index int, supplier func(index int) byte) (byte, error) {
	if err := a.checkIndex(index); err != nil {
		return 0, err
	}
	if current, _ := a.tree.Get(index); current != 0 {
		return current, nil
	}
	value := supplier(index)
	return value, a.Set(index, value)
}

type reader struct {
	tree   *llrb.Persistent[int, byte]
	length int
}

func (r reader) checkIndex(index int) error {
	if index < 0 || index >= r.length {
		return fmt.Errorf("%w: index %d not in [0,%d)", common.ErrOutOfRange, index, r.length)
	}
	return nil
}

func (r reader) Length() int {
	return r.length
}

func (r reader) Get(index int) (byte, error) {
	if err := r.checkIndex(index); err != nil {
		return 0, err
	}
	res, _ := r.tree.Get(index)
	return res, nil
}

// GetOrDefault returns the byte at the given index, or def if it is zero.
func (r reader) GetOrDefault(index int, def byte) (byte, error) {
	if err := r.checkIndex(index); err != nil {
		return 0, err
	}
	return r.tree.GetOrDefault(index, def), nil
}

// Min returns the lowest index holding a non-zero byte.
func (r reader) Min() (int, error) {
	return r.tree.Min()
}

// Max returns the highest index holding a non-zero byte.
func (r reader) Max() (int, error) {
	return r.tree.Max()
}

// FloorKey returns the largest index less than or equal to the given one that
// holds a non-zero byte.
func (r reader) FloorKey(index int) (int, error) {
	if err := r.checkIndex(index); err != nil {
		return 0, err
	}
	return r.tree.FloorKey(index)
}

// CeilingKey returns the smallest index greater than or equal to the given one
// that holds a non-zero byte.
func (r reader) CeilingKey(index int) (int, error) {
	if err := r.checkIndex(index); err != nil {
		return 0, err
	}
	return r.tree.CeilingKey(index)
}

// All enumerates all Length() bytes in index order.
func (r reader) All() iter.Seq2[int, byte] {
	materialized := r.tree.All()
	length := r.length
	return func(yield func(int, byte) bool) {
		next := 0
		for i, b := range materialized {
			for ; next < i; next++ {
				if !yield(next, 0) {
					return
				}
			}
			if !yield(i, b) {
				return
			}
			next = i + 1
		}
		for ; next < length; next++ {
			if !yield(next, 0) {
				return
			}
		}
	}
}

func (r reader) ToSlice() []byte {
	res := make([]byte, r.length)
	for i, b := range r.tree.All() {
		res[i] = b
	}
	return res
}

// Snapshot returns a read-only copy of the current content in O(1).
func (r reader) Snapshot() collection.ByteArrayView {
	return reader{tree: r.tree.Clone(), length: r.length}
}

func (r reader) String() string {
	return collection.Format(func(yield func(byte) bool) {
		for _, b := range r.All() {
			if !yield(b) {
				return
			}
		}
	})
}

// Check verifies the invariants of the underlying tree, that all stored
// indices are within bounds, and that no zero byte is materialized.
func (r reader) Check() error {
	if err := r.tree.Check(); err != nil {
		return err
	}
	for i, b := range r.tree.All() {
		if i < 0 || i >= r.length {
			return fmt.Errorf("materialized index %d exceeds length %d", i, r.length)
		}
		if b == 0 {
			return fmt.Errorf("zero byte materialized at index %d", i)
		}
	}
	return nil
}

func (r reader) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(r))
	mf.AddChild("tree", r.tree.GetMemoryFootprint())
	return mf
}
