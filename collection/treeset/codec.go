// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package treeset

import (
	"fmt"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
)

// Codec encodes sets as their number of elements followed by the elements in
// increasing order, each encoded with the codec registered for V. Decoded
// sets use Compare, or the default order of V if Compare is nil.
type Codec[V any] struct {
	Compare common.Comparator[V]
}

func (c Codec[V]) Write(m *codec.Marshaller, value *Set[V]) error {
	if value == nil {
		return fmt.Errorf("%w: nil set", common.ErrInvalidArgument)
	}
	if err := m.WriteCompactInt(value.Size()); err != nil {
		return err
	}
	for v := range value.All() {
		if err := codec.WriteObject(m, v); err != nil {
			return err
		}
	}
	return nil
}

func (c Codec[V]) Read(u *codec.Unmarshaller) (*Set[V], error) {
	compare := c.Compare
	if compare == nil {
		var err error
		if compare, err = common.DefaultComparator[V](); err != nil {
			return nil, err
		}
	}
	size, err := u.ReadLength()
	if err != nil {
		return nil, err
	}
	res := NewWithComparator(compare)
	var last V
	for i := range size {
		value, err := codec.ReadObject[V](u)
		if err != nil {
			return nil, err
		}
		if err := checkValue(value); err != nil {
			return nil, err
		}
		if i > 0 && compare(last, value) >= 0 {
			return nil, fmt.Errorf("%w: elements not in strictly increasing order: %v after %v", common.ErrInvalidArgument, value, last)
		}
		last = value
		res.tree.Put(value, struct{}{})
	}
	return res, nil
}
