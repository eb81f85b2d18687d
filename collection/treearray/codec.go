// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package treearray

import (
	"fmt"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
)

// Codec encodes arrays as their length, the number of slots holding a
// non-zero value, and those slots as index/value pairs in increasing index
// order. Values are encoded with the codec registered for V.
type Codec[V any] struct{}

func (Codec[V]) Write(m *codec.Marshaller, value *Array[V]) error {
	if value == nil {
		return fmt.Errorf("%w: nil array", common.ErrInvalidArgument)
	}
	var indices []int
	for i, v := range value.tree.All() {
		if !common.IsZero(v) {
			indices = append(indices, i)
		}
	}
	if err := m.WriteCompactInt(value.Length()); err != nil {
		return err
	}
	if err := m.WriteCompactInt(len(indices)); err != nil {
		return err
	}
	for _, i := range indices {
		v, _ := value.tree.Get(i)
		if err := m.WriteCompactInt(i); err != nil {
			return err
		}
		if err := codec.WriteObject(m, v); err != nil {
			return err
		}
	}
	return nil
}

func (Codec[V]) Read(u *codec.Unmarshaller) (*Array[V], error) {
	length, err := u.ReadLength()
	if err != nil {
		return nil, err
	}
	count, err := u.ReadLength()
	if err != nil {
		return nil, err
	}
	if count > length {
		return nil, fmt.Errorf("%w: %d values for array of length %d", common.ErrInvalidArgument, count, length)
	}
	res, err := New[V](length)
	if err != nil {
		return nil, err
	}
	last := -1
	for range count {
		index, err := u.ReadCompactInt()
		if err != nil {
			return nil, err
		}
		if index <= last || index >= length {
			return nil, fmt.Errorf("%w: invalid index %d after %d for array of length %d", common.ErrInvalidArgument, index, last, length)
		}
		last = index
		value, err := codec.ReadObject[V](u)
		if err != nil {
			return nil, err
		}
		res.tree.Put(index, value)
	}
	return res, nil
}
