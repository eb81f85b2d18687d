// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package intmap

import (
	"fmt"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
)

// Codec encodes maps as their number of entries followed by the entries in
// increasing key order. Keys are encoded as compact ints; values with the
// codec registered for V, preceded by a flag telling whether they differ from
// the zero value.
type Codec[V any] struct{}

func (Codec[V]) Write(m *codec.Marshaller, value *IntMap[V]) error {
	if value == nil {
		return fmt.Errorf("%w: nil map", common.ErrInvalidArgument)
	}
	if err := m.WriteCompactInt(value.Size()); err != nil {
		return err
	}
	for k, v := range value.All() {
		if err := m.WriteCompactInt(k); err != nil {
			return err
		}
		present := !common.IsZero(v)
		if err := m.WriteBool(present); err != nil {
			return err
		}
		if present {
			if err := codec.WriteObject(m, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (Codec[V]) Read(u *codec.Unmarshaller) (*IntMap[V], error) {
	size, err := u.ReadLength()
	if err != nil {
		return nil, err
	}
	res := New[V]()
	for i := range size {
		key, err := u.ReadCompactInt()
		if err != nil {
			return nil, err
		}
		if i > 0 {
			if last, _ := res.Max(); last >= key {
				return nil, fmt.Errorf("%w: keys not in strictly increasing order: %d after %d", common.ErrInvalidArgument, key, last)
			}
		}
		var value V
		present, err := u.ReadBool()
		if err != nil {
			return nil, err
		}
		if present {
			if value, err = codec.ReadObject[V](u); err != nil {
				return nil, err
			}
		}
		res.Put(key, value)
	}
	return res, nil
}
