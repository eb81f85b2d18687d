// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package treemap

import (
	"fmt"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
)

// Codec encodes maps as their number of entries followed by the entries in
// increasing key order. Keys and values are encoded with the codecs
// registered for K and V; values are preceded by a flag telling whether they
// differ from the zero value. Decoded maps use Compare, or the default order
// of K if Compare is nil.
type Codec[K any, V any] struct {
	Compare common.Comparator[K]
}

func (c Codec[K, V]) Write(m *codec.Marshaller, value *Map[K, V]) error {
	if value == nil {
		return fmt.Errorf("%w: nil map", common.ErrInvalidArgument)
	}
	if err := m.WriteCompactInt(value.Size()); err != nil {
		return err
	}
	for k, v := range value.All() {
		if err := codec.WriteObject(m, k); err != nil {
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

func (c Codec[K, V]) Read(u *codec.Unmarshaller) (*Map[K, V], error) {
	compare := c.Compare
	if compare == nil {
		var err error
		if compare, err = common.DefaultComparator[K](); err != nil {
			return nil, err
		}
	}
	size, err := u.ReadLength()
	if err != nil {
		return nil, err
	}
	res := NewWithComparator[K, V](compare)
	var last K
	for i := range size {
		key, err := codec.ReadObject[K](u)
		if err != nil {
			return nil, err
		}
		if err := checkKey(key); err != nil {
			return nil, err
		}
		if i > 0 && compare(last, key) >= 0 {
			return nil, fmt.Errorf("%w: keys not in strictly increasing order: %v after %v", common.ErrInvalidArgument, key, last)
		}
		last = key
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
		res.tree.Put(key, value)
	}
	return res, nil
}
