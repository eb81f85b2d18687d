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

//go:generate mockgen -source object_codec.go -destination object_codec_mocks.go -package codec

// ObjectCodec encodes and decodes values of a single type. Implementations
// must be deterministic: equal values must always produce equal bytes.
type ObjectCodec interface {
	// WriteObject encodes value, which is of the type the codec is
	// registered for, or nil.
	WriteObject(m *Marshaller, value any) error
	// ReadObject decodes a value written by WriteObject.
	ReadObject(u *Unmarshaller) (any, error)
}
