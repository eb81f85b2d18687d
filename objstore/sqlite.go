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
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/0xsoniclabs/objstate/common"
	_ "github.com/mattn/go-sqlite3"
)

const createObjectsTable = `CREATE TABLE IF NOT EXISTS objects (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
)`

type sqliteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// OpenSqliteStore opens or creates a SQLite backed store in the given file.
func OpenSqliteStore(path string) (Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}
	if _, err := db.Exec(createObjectsTable); err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to create objects table: %w", err),
			db.Close(),
		)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Put(key, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.db.Exec("INSERT OR REPLACE INTO objects (key, value) VALUES (?, ?)", key, value)
	return err
}

func (s *sqliteStore) Get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var value []byte
	err := s.db.QueryRow("SELECT value FROM objects WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: key %x", common.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *sqliteStore) Has(key []byte) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM objects WHERE key = ?", key).Scan(&count)
	return count > 0, err
}

func (s *sqliteStore) Delete(key []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.db.Exec("DELETE FROM objects WHERE key = ?", key)
	return err
}

func (s *sqliteStore) Scan(prefix []byte, visit func(key, value []byte) error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if prefix == nil {
		prefix = []byte{} // a nil prefix would be bound as NULL
	}
	rows, err := s.db.Query("SELECT key, value FROM objects WHERE key >= ? ORDER BY key", prefix)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		if err := visit(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *sqliteStore) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}
	return s.db.Close()
}
