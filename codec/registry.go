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
	"maps"
	"math/big"
	"reflect"

	"github.com/0xsoniclabs/objstate/common"
	"github.com/holiman/uint256"
)

// Codec is the typed form of an ObjectCodec.
type Codec[T any] interface {
	Write(m *Marshaller, value T) error
	Read(u *Unmarshaller) (T, error)
}

// Registry maps types to the codecs used for encoding their values.
type Registry struct {
	codecs map[reflect.Type]ObjectCodec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: map[reflect.Type]ObjectCodec{}}
}

// NewDefaultRegistry creates a registry covering the built-in value types:
// bool, int, int64, string, []byte, *big.Int, and *uint256.Int.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterCodec[bool](r, BoolCodec{})
	RegisterCodec[int](r, IntCodec{})
	RegisterCodec[int64](r, Int64Codec{})
	RegisterCodec[string](r, SharedStringCodec{})
	RegisterCodec[[]byte](r, BytesCodec{})
	RegisterCodec[*big.Int](r, BigIntCodec{})
	RegisterCodec[*uint256.Int](r, Uint256Codec{})
	return r
}

// Register binds the given codec to the given type, replacing any previous
// binding.
func (r *Registry) Register(t reflect.Type, codec ObjectCodec) {
	r.codecs[t] = codec
}

// Lookup returns the codec bound to the given type, or ErrUnsupportedClass.
func (r *Registry) Lookup(t reflect.Type) (ObjectCodec, error) {
	if r != nil {
		if codec, found := r.codecs[t]; found {
			return codec, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", common.ErrUnsupportedClass, t)
}

// Clone returns an independent copy of the registry. Cloning nil yields an
// empty registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	return &Registry{codecs: maps.Clone(r.codecs)}
}

// RegisterCodec binds a typed codec to the type T.
func RegisterCodec[T any](r *Registry, codec Codec[T]) {
	r.Register(reflect.TypeFor[T](), objectCodec[T]{codec})
}

// WriteObject encodes value with the codec registered for T.
func WriteObject[T any](m *Marshaller, value T) error {
	return m.Write(reflect.TypeFor[T](), value)
}

// ReadObject decodes a value with the codec registered for T.
func ReadObject[T any](u *Unmarshaller) (T, error) {
	var zero T
	res, err := u.Read(reflect.TypeFor[T]())
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: codec for %v produced %T", common.ErrInvalidArgument, reflect.TypeFor[T](), res)
	}
	return value, nil
}

type objectCodec[T any] struct {
	codec Codec[T]
}

func (c objectCodec[T]) WriteObject(m *Marshaller, value any) error {
	v, ok := value.(T)
	if !ok && value != nil {
		return fmt.Errorf("%w: expected %v, got %T", common.ErrInvalidArgument, reflect.TypeFor[T](), value)
	}
	return c.codec.Write(m, v)
}

func (c objectCodec[T]) ReadObject(u *Unmarshaller) (any, error) {
	return c.codec.Read(u)
}
