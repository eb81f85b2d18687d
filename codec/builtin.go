// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package codec

import (
	"fmt"
	"math/big"

	"github.com/0xsoniclabs/objstate/common"
	"github.com/holiman/uint256"
)

// BoolCodec encodes booleans as a single byte.
type BoolCodec struct{}

func (BoolCodec) Write(m *Marshaller, value bool) error {
	return m.WriteBool(value)
}

func (BoolCodec) Read(u *Unmarshaller) (bool, error) {
	return u.ReadBool()
}

// IntCodec encodes ints as 8-byte integers.
type IntCodec struct{}

func (IntCodec) Write(m *Marshaller, value int) error {
	return m.WriteInt64(int64(value))
}

func (IntCodec) Read(u *Unmarshaller) (int, error) {
	v, err := u.ReadInt64()
	return int(v), err
}

// Int64Codec encodes int64 values as 8-byte integers.
type Int64Codec struct{}

func (Int64Codec) Write(m *Marshaller, value int64) error {
	return m.WriteInt64(value)
}

func (Int64Codec) Read(u *Unmarshaller) (int64, error) {
	return u.ReadInt64()
}

// SharedStringCodec encodes strings through the shared string dictionary of
// the context.
type SharedStringCodec struct{}

func (SharedStringCodec) Write(m *Marshaller, value string) error {
	return m.WriteStringShared(value)
}

func (SharedStringCodec) Read(u *Unmarshaller) (string, error) {
	return u.ReadStringShared()
}

// BytesCodec encodes byte slices as a compact length followed by the content.
type BytesCodec struct{}

func (BytesCodec) Write(m *Marshaller, value []byte) error {
	if err := m.WriteCompactInt(len(value)); err != nil {
		return err
	}
	return m.WriteBytes(value)
}

func (BytesCodec) Read(u *Unmarshaller) ([]byte, error) {
	length, err := u.ReadLength()
	if err != nil {
		return nil, err
	}
	return u.ReadBytes(length)
}

// BigIntCodec encodes arbitrary-precision integers with WriteBigInteger.
type BigIntCodec struct{}

func (BigIntCodec) Write(m *Marshaller, value *big.Int) error {
	return m.WriteBigInteger(value)
}

func (BigIntCodec) Read(u *Unmarshaller) (*big.Int, error) {
	return u.ReadBigInteger()
}

// Uint256Codec encodes 256-bit unsigned integers in the big integer format,
// so small amounts occupy a single byte.
type Uint256Codec struct{}

func (Uint256Codec) Write(m *Marshaller, value *uint256.Int) error {
	if value == nil {
		return fmt.Errorf("%w: nil uint256", common.ErrInvalidArgument)
	}
	return m.WriteBigInteger(value.ToBig())
}

func (Uint256Codec) Read(u *Unmarshaller) (*uint256.Int, error) {
	bi, err := u.ReadBigInteger()
	if err != nil {
		return nil, err
	}
	if bi.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %v for uint256", common.ErrInvalidArgument, bi)
	}
	res, overflow := uint256.FromBig(bi)
	if overflow {
		return nil, fmt.Errorf("%w: value %v exceeds 256 bits", common.ErrInvalidArgument, bi)
	}
	return res, nil
}
