// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package objstore persists encoded objects in key/value stores. Objects are
// encoded with the codec package and compressed with snappy before they are
// handed to one of the Store backends.
package objstore

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
	"github.com/golang/snappy"
)

//go:generate mockgen -source store.go -destination store_mocks.go -package objstore

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store is a persistent mapping of byte keys to byte values.
type Store interface {
	Put(key, value []byte) error
	// Get returns the value stored for the key, or common.ErrNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	// Scan visits all entries whose key starts with prefix in increasing key
	// order, stopping at the first error returned by visit.
	Scan(prefix []byte, visit func(key, value []byte) error) error
	Close() error
}

// Save encodes value with the codec registered for T and stores the
// compressed encoding under the given key.
func Save[T any](store Store, key []byte, registry *codec.Registry, value T) error {
	data, err := codec.Marshal(registry, func(m *codec.Marshaller) error {
		return codec.WriteObject(m, value)
	})
	if err != nil {
		return fmt.Errorf("failed to encode object %x: %w", key, err)
	}
	return store.Put(key, snappy.Encode(nil, data))
}

// Load reads the object stored under the given key and decodes it with the
// codec registered for T. Corrupted payloads yield common.ErrInvalidArgument.
func Load[T any](store Store, key []byte, registry *codec.Registry) (T, error) {
	var res T
	compressed, err := store.Get(key)
	if err != nil {
		return res, err
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return res, fmt.Errorf("%w: corrupted payload for object %x: %w", common.ErrInvalidArgument, key, err)
	}
	err = codec.Unmarshal(data, registry, func(u *codec.Unmarshaller) (err error) {
		res, err = codec.ReadObject[T](u)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("failed to decode object %x: %w", key, err)
	}
	return res, nil
}
