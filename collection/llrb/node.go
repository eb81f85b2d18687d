// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package llrb implements the left-leaning red-black search tree shared by all
// ordered collections of this module.
//
// Two mutation disciplines are offered on top of the same node shape:
//
//   - Persistent trees never modify a node once it is reachable from a root.
//     Every write allocates a fresh path from the root to the modified
//     position and shares all untouched subtrees. Cloning a persistent tree
//     is O(1), and readers holding an old root are never affected by writers.
//   - Mutable trees rotate, recolor, and update their nodes in place. Writes
//     allocate at most one node, but cloning requires an O(n) copy of all
//     nodes, since later in-place updates would otherwise leak into the copy.
//
// Both disciplines maintain the same invariants: binary-search-tree order,
// red links lean left, no two consecutive red links, equal black height on all
// root-to-leaf paths, a black root after every public operation, and subtree
// sizes used by Select and Rank. Check verifies all of them.
//
// Keys bound to the zero value of V are treated as not bound to any value by
// UpdateOrDefault, UpdateOrSupply, PutIfAbsent, and ComputeIfAbsent; they
// remain part of the key space until removed.
//
// Trees are not safe for concurrent use. Iterating a mutable tree while it is
// being modified yields undefined results.
package llrb

import (
	"iter"

	"github.com/0xsoniclabs/objstate/common"
)

// Tree is the operation set supported by both tree disciplines.
type Tree[K any, V any] interface {
	Size() int
	IsEmpty() bool
	Get(key K) (V, bool)
	GetOrDefault(key K, def V) V
	Contains(key K) bool
	Put(key K, value V)
	Remove(key K) bool
	RemoveMin() error
	RemoveMax() error
	Update(key K, how func(V) V)
	UpdateOrDefault(key K, def V, how func(V) V)
	UpdateOrSupply(key K, supplier func() V, how func(V) V)
	PutIfAbsent(key K, value V) V
	ComputeIfAbsent(key K, supplier func(K) V) V
	Min() (K, error)
	Max() (K, error)
	FloorKey(key K) (K, error)
	CeilingKey(key K) (K, error)
	Select(rank int) (K, error)
	Rank(key K) int
	Clear()
	All() iter.Seq2[K, V]
	Keys() iter.Seq[K]
	KeyList() []K
	Check() error
	GetMemoryFootprint() *common.MemoryFootprint
}

type color bool

const (
	red   color = true
	black color = false
)

func (c color) String() string {
	if c == red {
		return "red"
	}
	return "black"
}

// node is the single node shape used by both disciplines. Persistent trees
// treat nodes as immutable once published; mutable trees update them in place.
type node[K any, V any] struct {
	key         K
	value       V
	left, right *node[K, V]
	size        int // number of nodes in the subtree rooted here
	color       color
}

func newNode[K any, V any](key K, value V) *node[K, V] {
	return &node[K, V]{key: key, value: value, size: 1, color: red}
}

func isRed[K any, V any](n *node[K, V]) bool {
	return n != nil && n.color == red
}

func sizeOf[K any, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func minNode[K any, V any](n *node[K, V]) *node[K, V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func maxNode[K any, V any](n *node[K, V]) *node[K, V] {
	for n.right != nil {
		n = n.right
	}
	return n
}
