// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package collection defines the read-only interfaces shared by the ordered
// collections of this module.
//
// Every collection offers two read-only handles. A view, obtained through
// View(), forwards every query to the live collection and thus observes all
// later updates. A snapshot, obtained through Snapshot(), is an independent
// copy immune to later updates. Snapshots of collections based on persistent
// nodes (treemap, bytearray) cost O(1); snapshots of collections based on
// mutable nodes (intmap, treeset, treearray) cost O(n).
package collection

import (
	"iter"

	"github.com/0xsoniclabs/objstate/common"
)

// MapView is a read-only ordered map with arbitrary keys. Keys that are nil
// are rejected with common.ErrInvalidArgument.
type MapView[K any, V any] interface {
	Size() int
	IsEmpty() bool
	// Get returns the value bound to the key, or the zero value if unbound.
	Get(key K) (V, error)
	GetOrDefault(key K, def V) (V, error)
	ContainsKey(key K) (bool, error)
	Min() (K, error)
	Max() (K, error)
	FloorKey(key K) (K, error)
	CeilingKey(key K) (K, error)
	Select(rank int) (K, error)
	Rank(key K) (int, error)
	All() iter.Seq2[K, V]
	Keys() iter.Seq[K]
	Values() iter.Seq[V]
	Entries() iter.Seq[common.MapEntry[K, V]]
	KeyList() []K
	Snapshot() MapView[K, V]
	String() string
}

// IntMapView is a read-only ordered map with int keys.
type IntMapView[V any] interface {
	Size() int
	IsEmpty() bool
	Get(key int) V
	GetOrDefault(key int, def V) V
	ContainsKey(key int) bool
	Min() (int, error)
	Max() (int, error)
	FloorKey(key int) (int, error)
	CeilingKey(key int) (int, error)
	Select(rank int) (int, error)
	Rank(key int) int
	All() iter.Seq2[int, V]
	Keys() iter.Seq[int]
	Values() iter.Seq[V]
	Entries() iter.Seq[common.MapEntry[int, V]]
	KeyList() []int
	Snapshot() IntMapView[V]
	String() string
}

// SetView is a read-only ordered set. Nil elements are rejected with
// common.ErrInvalidArgument.
type SetView[V any] interface {
	Size() int
	IsEmpty() bool
	Contains(value V) (bool, error)
	Min() (V, error)
	Max() (V, error)
	FloorKey(value V) (V, error)
	CeilingKey(value V) (V, error)
	Select(rank int) (V, error)
	Rank(value V) (int, error)
	All() iter.Seq[V]
	Snapshot() SetView[V]
	String() string
}

// ArrayView is a read-only array of fixed length whose unset slots hold the
// zero value. Indices outside [0, Length()) are rejected with
// common.ErrOutOfRange.
type ArrayView[V any] interface {
	Length() int
	Get(index int) (V, error)
	GetOrDefault(index int, def V) (V, error)
	// All enumerates exactly Length() index/value pairs, in index order.
	All() iter.Seq2[int, V]
	ToSlice() []V
	// Materialized is the number of slots currently backed by a tree node.
	Materialized() int
	Min() (int, error)
	Max() (int, error)
	FloorKey(index int) (int, error)
	CeilingKey(index int) (int, error)
	Select(rank int) (int, error)
	Rank(index int) (int, error)
	Snapshot() ArrayView[V]
	String() string
}

// ByteArrayView is a read-only byte array of fixed length whose unset slots
// hold zero.
type ByteArrayView interface {
	Length() int
	Get(index int) (byte, error)
	GetOrDefault(index int, def byte) (byte, error)
	// Min, Max, FloorKey and CeilingKey range over the indices holding a
	// non-zero byte.
	Min() (int, error)
	Max() (int, error)
	FloorKey(index int) (int, error)
	CeilingKey(index int) (int, error)
	All() iter.Seq2[int, byte]
	ToSlice() []byte
	Snapshot() ByteArrayView
	String() string
}
