// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package codec implements the deterministic binary encoding of persisted
// objects. A Marshaller encodes into an io.Writer and an Unmarshaller decodes
// from an io.Reader; both are single-use contexts owning the dictionary of
// shared strings seen so far and a private copy of the codec registry.
//
// All multi-byte primitives are big-endian. Equal logical values always yield
// identical bytes, since every size class is tried smallest first.
package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"slices"

	"github.com/0xsoniclabs/objstate/common"
)

// ErrContextClosed is returned by every operation on a closed context.
var ErrContextClosed = errors.New("codec context closed")

const (
	compactIntMarker = 255

	sharedStringNew   = 255
	sharedStringIndex = 254

	bigIntInt16    = 0
	bigIntInt32    = 1
	bigIntInt64    = 2
	bigIntDecimal  = 3
	bigIntSmallMax = 251
	bigIntOffset   = 4

	// readChunkSize bounds the memory reserved ahead of the bytes actually
	// received when reading a declared length.
	readChunkSize = 64 << 10
)

// Marshaller is an encoding context. It is not safe for concurrent use and
// must be closed once the encoded object is complete.
type Marshaller struct {
	out      *bufio.Writer
	registry *Registry
	strings  map[string]int
	closed   bool
	buffer   [8]byte
}

// NewMarshaller creates an encoding context writing to w. The registry is
// copied, so codecs registered on the context do not leak into it. A nil
// registry is treated as an empty one.
func NewMarshaller(w io.Writer, registry *Registry) *Marshaller {
	return &Marshaller{
		out:      bufio.NewWriter(w),
		registry: registry.Clone(),
		strings:  map[string]int{},
	}
}

// Register binds a codec to the given type for the lifetime of this context.
func (m *Marshaller) Register(t reflect.Type, codec ObjectCodec) {
	m.registry.Register(t, codec)
}

// Close flushes all buffered bytes and invalidates the context.
func (m *Marshaller) Close() error {
	if m.closed {
		return ErrContextClosed
	}
	m.closed = true
	m.strings = nil
	return m.out.Flush()
}

func (m *Marshaller) write(data []byte) error {
	if m.closed {
		return ErrContextClosed
	}
	_, err := m.out.Write(data)
	return err
}

// WriteByte writes a single byte.
func (m *Marshaller) WriteByte(b byte) error {
	if m.closed {
		return ErrContextClosed
	}
	return m.out.WriteByte(b)
}

func (m *Marshaller) WriteBool(b bool) error {
	if b {
		return m.WriteByte(1)
	}
	return m.WriteByte(0)
}

// WriteChar writes a single UTF-16 code unit.
func (m *Marshaller) WriteChar(c uint16) error {
	return m.WriteInt16(int16(c))
}

func (m *Marshaller) WriteInt16(v int16) error {
	binary.BigEndian.PutUint16(m.buffer[:2], uint16(v))
	return m.write(m.buffer[:2])
}

func (m *Marshaller) WriteInt32(v int32) error {
	binary.BigEndian.PutUint32(m.buffer[:4], uint32(v))
	return m.write(m.buffer[:4])
}

func (m *Marshaller) WriteInt64(v int64) error {
	binary.BigEndian.PutUint64(m.buffer[:8], uint64(v))
	return m.write(m.buffer[:8])
}

func (m *Marshaller) WriteFloat32(v float32) error {
	return m.WriteInt32(int32(math.Float32bits(v)))
}

func (m *Marshaller) WriteFloat64(v float64) error {
	return m.WriteInt64(int64(math.Float64bits(v)))
}

// WriteBytes writes the given bytes without any length information.
func (m *Marshaller) WriteBytes(data []byte) error {
	return m.write(data)
}

// WriteCompactInt writes values in [0,255) as a single byte, everything else
// as a marker byte followed by a 4-byte integer.
func (m *Marshaller) WriteCompactInt(i int) error {
	if i >= 0 && i < compactIntMarker {
		return m.WriteByte(byte(i))
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return fmt.Errorf("%w: compact int %d exceeds 32 bits", common.ErrInvalidArgument, i)
	}
	if err := m.WriteByte(compactIntMarker); err != nil {
		return err
	}
	return m.WriteInt32(int32(i))
}

// WriteUTF writes a 2-byte length followed by the modified UTF-8 encoding of s.
func (m *Marshaller) WriteUTF(s string) error {
	data, err := encodeModifiedUTF8(s)
	if err != nil {
		return err
	}
	return m.writeUTF(data)
}

func (m *Marshaller) writeUTF(data []byte) error {
	if err := m.WriteInt16(int16(uint16(len(data)))); err != nil {
		return err
	}
	return m.write(data)
}

// WriteStringShared writes a string, replacing repeated occurrences within
// this context by the index of their first occurrence.
func (m *Marshaller) WriteStringShared(s string) error {
	if index, found := m.strings[s]; found {
		if index < sharedStringIndex {
			return m.WriteByte(byte(index))
		}
		if err := m.WriteByte(sharedStringIndex); err != nil {
			return err
		}
		return m.WriteInt32(int32(index))
	}
	if m.closed {
		return ErrContextClosed
	}
	// Strings are only registered once written, so indices stay aligned with
	// the decoder.
	data, err := encodeModifiedUTF8(s)
	if err != nil {
		return err
	}
	if err := m.WriteByte(sharedStringNew); err != nil {
		return err
	}
	if err := m.writeUTF(data); err != nil {
		return err
	}
	m.strings[s] = len(m.strings)
	return nil
}

// WriteBigInteger writes an arbitrary-precision integer using the smallest of
// its size classes: a single byte for [0,251], then 16, 32, and 64 bit values,
// and finally the decimal representation.
func (m *Marshaller) WriteBigInteger(bi *big.Int) error {
	if bi == nil {
		return fmt.Errorf("%w: nil big integer", common.ErrInvalidArgument)
	}
	if !bi.IsInt64() {
		digits := bi.String()
		if err := m.WriteByte(bigIntDecimal); err != nil {
			return err
		}
		if err := m.WriteCompactInt(len(digits)); err != nil {
			return err
		}
		return m.write([]byte(digits))
	}
	v := bi.Int64()
	switch {
	case v >= 0 && v <= bigIntSmallMax:
		return m.WriteByte(byte(v + bigIntOffset))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		if err := m.WriteByte(bigIntInt16); err != nil {
			return err
		}
		return m.WriteInt16(int16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		if err := m.WriteByte(bigIntInt32); err != nil {
			return err
		}
		return m.WriteInt32(int32(v))
	default:
		if err := m.WriteByte(bigIntInt64); err != nil {
			return err
		}
		return m.WriteInt64(v)
	}
}

// Write encodes value with the codec registered for type t.
func (m *Marshaller) Write(t reflect.Type, value any) error {
	if m.closed {
		return ErrContextClosed
	}
	codec, err := m.registry.Lookup(t)
	if err != nil {
		return err
	}
	if err := codec.WriteObject(m, value); err != nil {
		return fmt.Errorf("failed to write %v: %w", t, err)
	}
	return nil
}

// Unmarshaller is a decoding context, the mirror of Marshaller.
type Unmarshaller struct {
	in       byteReader
	registry *Registry
	strings  []string
	closed   bool
	buffer   [8]byte
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// NewUnmarshaller creates a decoding context reading from r. Readers that do
// not support reading single bytes are buffered.
func NewUnmarshaller(r io.Reader, registry *Registry) *Unmarshaller {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Unmarshaller{
		in:       br,
		registry: registry.Clone(),
	}
}

// Register binds a codec to the given type for the lifetime of this context.
func (u *Unmarshaller) Register(t reflect.Type, codec ObjectCodec) {
	u.registry.Register(t, codec)
}

// Close invalidates the context.
func (u *Unmarshaller) Close() error {
	if u.closed {
		return ErrContextClosed
	}
	u.closed = true
	u.strings = nil
	return nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", common.ErrInvalidArgument, io.ErrUnexpectedEOF)
	}
	return err
}

func (u *Unmarshaller) read(data []byte) error {
	if u.closed {
		return ErrContextClosed
	}
	if _, err := io.ReadFull(u.in, data); err != nil {
		return truncated(err)
	}
	return nil
}

// ReadByte reads a single byte.
func (u *Unmarshaller) ReadByte() (byte, error) {
	if u.closed {
		return 0, ErrContextClosed
	}
	b, err := u.in.ReadByte()
	if err != nil {
		return 0, truncated(err)
	}
	return b, nil
}

func (u *Unmarshaller) ReadBool() (bool, error) {
	b, err := u.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: invalid boolean encoding %d", common.ErrInvalidArgument, b)
}

func (u *Unmarshaller) ReadChar() (uint16, error) {
	v, err := u.ReadInt16()
	return uint16(v), err
}

func (u *Unmarshaller) ReadInt16() (int16, error) {
	if err := u.read(u.buffer[:2]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(u.buffer[:2])), nil
}

func (u *Unmarshaller) ReadInt32() (int32, error) {
	if err := u.read(u.buffer[:4]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(u.buffer[:4])), nil
}

func (u *Unmarshaller) ReadInt64() (int64, error) {
	if err := u.read(u.buffer[:8]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(u.buffer[:8])), nil
}

func (u *Unmarshaller) ReadFloat32() (float32, error) {
	v, err := u.ReadInt32()
	return math.Float32frombits(uint32(v)), err
}

func (u *Unmarshaller) ReadFloat64() (float64, error) {
	v, err := u.ReadInt64()
	return math.Float64frombits(uint64(v)), err
}

// ReadBytes reads exactly n bytes. Memory grows with the bytes actually
// read, so a corrupted length fails without reserving n bytes up front.
func (u *Unmarshaller) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", common.ErrInvalidArgument, n)
	}
	res := make([]byte, 0, min(n, readChunkSize))
	for len(res) < n {
		start := len(res)
		chunk := min(n-start, readChunkSize)
		res = slices.Grow(res, chunk)[:start+chunk]
		if err := u.read(res[start:]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (u *Unmarshaller) ReadCompactInt() (int, error) {
	b, err := u.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != compactIntMarker {
		return int(b), nil
	}
	v, err := u.ReadInt32()
	return int(v), err
}

// ReadLength reads a compact int that must denote a non-negative length.
func (u *Unmarshaller) ReadLength() (int, error) {
	n, err := u.ReadCompactInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d", common.ErrInvalidArgument, n)
	}
	return n, nil
}

func (u *Unmarshaller) ReadUTF() (string, error) {
	length, err := u.ReadInt16()
	if err != nil {
		return "", err
	}
	data, err := u.ReadBytes(int(uint16(length)))
	if err != nil {
		return "", err
	}
	return decodeModifiedUTF8(data)
}

func (u *Unmarshaller) ReadStringShared() (string, error) {
	selector, err := u.ReadByte()
	if err != nil {
		return "", err
	}
	var index int
	switch selector {
	case sharedStringNew:
		s, err := u.ReadUTF()
		if err != nil {
			return "", err
		}
		u.strings = append(u.strings, s)
		return s, nil
	case sharedStringIndex:
		v, err := u.ReadInt32()
		if err != nil {
			return "", err
		}
		index = int(v)
	default:
		index = int(selector)
	}
	if index < 0 || index >= len(u.strings) {
		return "", fmt.Errorf("%w: unknown shared string %d, %d known", common.ErrInvalidArgument, index, len(u.strings))
	}
	return u.strings[index], nil
}

func (u *Unmarshaller) ReadBigInteger() (*big.Int, error) {
	selector, err := u.ReadByte()
	if err != nil {
		return nil, err
	}
	switch selector {
	case bigIntInt16:
		v, err := u.ReadInt16()
		if err != nil {
			return nil, err
		}
		return big.NewInt(int64(v)), nil
	case bigIntInt32:
		v, err := u.ReadInt32()
		if err != nil {
			return nil, err
		}
		return big.NewInt(int64(v)), nil
	case bigIntInt64:
		v, err := u.ReadInt64()
		if err != nil {
			return nil, err
		}
		return big.NewInt(v), nil
	case bigIntDecimal:
		length, err := u.ReadLength()
		if err != nil {
			return nil, err
		}
		digits, err := u.ReadBytes(length)
		if err != nil {
			return nil, err
		}
		res, ok := new(big.Int).SetString(string(digits), 10)
		if !ok {
			return nil, fmt.Errorf("%w: invalid decimal integer %q", common.ErrInvalidArgument, digits)
		}
		return res, nil
	default:
		return big.NewInt(int64(selector) - bigIntOffset), nil
	}
}

// Read decodes a value with the codec registered for type t.
func (u *Unmarshaller) Read(t reflect.Type) (any, error) {
	if u.closed {
		return nil, ErrContextClosed
	}
	codec, err := u.registry.Lookup(t)
	if err != nil {
		return nil, err
	}
	res, err := codec.ReadObject(u)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", t, err)
	}
	return res, nil
}
