// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bytearray

import (
	"fmt"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
)

// Codec encodes byte arrays as their length followed by all bytes.
type Codec struct{}

func (Codec) Write(m *codec.Marshaller, value *ByteArray) error {
	if value == nil {
		return fmt.Errorf("%w: nil byte array", common.ErrInvalidArgument)
	}
	if err := m.WriteCompactInt(value.Length()); err != nil {
		return err
	}
	return m.WriteBytes(value.ToSlice())
}

func (Codec) Read(u *codec.Unmarshaller) (*ByteArray, error) {
	length, err := u.ReadLength()
	if err != nil {
		return nil, err
	}
	data, err := u.ReadBytes(length)
	if err != nil {
		return nil, err
	}
	return NewFromBytes(data), nil
}
