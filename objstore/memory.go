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
	"bytes"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/0xsoniclabs/objstate/common"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates a store keeping all entries in memory.
func NewMemoryStore() Store {
	return &memoryStore{entries: map[string][]byte{}}
}

func (s *memoryStore) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		return ErrClosed
	}
	s.entries[string(key)] = bytes.Clone(value)
	return nil
}

func (s *memoryStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entries == nil {
		return nil, ErrClosed
	}
	value, found := s.entries[string(key)]
	if !found {
		return nil, fmt.Errorf("%w: key %x", common.ErrNotFound, key)
	}
	return bytes.Clone(value), nil
}

func (s *memoryStore) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entries == nil {
		return false, ErrClosed
	}
	_, found := s.entries[string(key)]
	return found, nil
}

func (s *memoryStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		return ErrClosed
	}
	delete(s.entries, string(key))
	return nil
}

func (s *memoryStore) Scan(prefix []byte, visit func(key, value []byte) error) error {
	s.mu.RLock()
	if s.entries == nil {
		s.mu.RUnlock()
		return ErrClosed
	}
	keys := slices.Sorted(maps.Keys(s.entries))
	values := make([][]byte, len(keys))
	for i, key := range keys {
		values[i] = s.entries[key]
	}
	s.mu.RUnlock()

	for i, key := range keys {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		if err := visit([]byte(key), bytes.Clone(values[i])); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		return ErrClosed
	}
	s.entries = nil
	return nil
}
