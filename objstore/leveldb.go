// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package objstore

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/objstate/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type levelDbStore struct {
	db *leveldb.DB
}

// OpenLevelDbStore opens or creates a LevelDB backed store in the given
// directory.
func OpenLevelDbStore(directory string) (Store, error) {
	db, err := leveldb.OpenFile(directory, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s: %w", directory, err)
	}
	return &levelDbStore{db: db}, nil
}

func (s *levelDbStore) Put(key, value []byte) error {
	return closedAware(s.db.Put(key, value, nil))
}

func (s *levelDbStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: key %x", common.ErrNotFound, key)
	}
	return value, closedAware(err)
}

func (s *levelDbStore) Has(key []byte) (bool, error) {
	found, err := s.db.Has(key, nil)
	return found, closedAware(err)
}

func (s *levelDbStore) Delete(key []byte) error {
	return closedAware(s.db.Delete(key, nil))
}

func (s *levelDbStore) Scan(prefix []byte, visit func(key, value []byte) error) error {
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		// The iterator reuses its buffers; visitors get their own copies.
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if err := visit(key, value); err != nil {
			return err
		}
	}
	return closedAware(iter.Error())
}

func (s *levelDbStore) Close() error {
	return closedAware(s.db.Close())
}

func closedAware(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return ErrClosed
	}
	return err
}
