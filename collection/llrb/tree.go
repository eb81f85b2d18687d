// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package llrb

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/0xsoniclabs/objstate/common"
)

// tree holds the state and the read-only queries shared by both disciplines.
type tree[K any, V any] struct {
	root    *node[K, V]
	compare common.Comparator[K]
}

func (t *tree[K, V]) Size() int {
	return sizeOf(t.root)
}

func (t *tree[K, V]) IsEmpty() bool {
	return t.root == nil
}

func (t *tree[K, V]) find(key K) *node[K, V] {
	x := t.root
	for x != nil {
		c := t.compare(key, x.key)
		switch {
		case c < 0:
			x = x.left
		case c > 0:
			x = x.right
		default:
			return x
		}
	}
	return nil
}

// Get returns the value bound to the given key and whether the key is present.
func (t *tree[K, V]) Get(key K) (V, bool) {
	if x := t.find(key); x != nil {
		return x.value, true
	}
	var zero V
	return zero, false
}

// GetOrDefault returns the value bound to the given key, or def if the key is
// not present. A key bound to the zero value yields the zero value.
func (t *tree[K, V]) GetOrDefault(key K, def V) V {
	if x := t.find(key); x != nil {
		return x.value
	}
	return def
}

func (t *tree[K, V]) Contains(key K) bool {
	return t.find(key) != nil
}

// Min returns the smallest key, or ErrNotFound if the tree is empty.
func (t *tree[K, V]) Min() (K, error) {
	if t.root == nil {
		var zero K
		return zero, fmt.Errorf("%w: min of empty tree", common.ErrNotFound)
	}
	return minNode(t.root).key, nil
}

// Max returns the largest key, or ErrNotFound if the tree is empty.
func (t *tree[K, V]) Max() (K, error) {
	if t.root == nil {
		var zero K
		return zero, fmt.Errorf("%w: max of empty tree", common.ErrNotFound)
	}
	return maxNode(t.root).key, nil
}

// FloorKey returns the largest key less than or equal to the given key.
func (t *tree[K, V]) FloorKey(key K) (K, error) {
	var res *node[K, V]
	for x := t.root; x != nil; {
		c := t.compare(key, x.key)
		if c == 0 {
			return x.key, nil
		}
		if c < 0 {
			x = x.left
		} else {
			res = x
			x = x.right
		}
	}
	if res == nil {
		var zero K
		return zero, fmt.Errorf("%w: no key <= %v", common.ErrNotFound, key)
	}
	return res.key, nil
}

// CeilingKey returns the smallest key greater than or equal to the given key.
func (t *tree[K, V]) CeilingKey(key K) (K, error) {
	var res *node[K, V]
	for x := t.root; x != nil; {
		c := t.compare(key, x.key)
		if c == 0 {
			return x.key, nil
		}
		if c > 0 {
			x = x.right
		} else {
			res = x
			x = x.left
		}
	}
	if res == nil {
		var zero K
		return zero, fmt.Errorf("%w: no key >= %v", common.ErrNotFound, key)
	}
	return res.key, nil
}

// Select returns the key of the given rank, i.e. the key with exactly rank
// smaller keys in the tree.
func (t *tree[K, V]) Select(rank int) (K, error) {
	if rank < 0 || rank >= t.Size() {
		var zero K
		return zero, fmt.Errorf("%w: rank %d not in [0,%d)", common.ErrOutOfRange, rank, t.Size())
	}
	x := t.root
	for {
		l := sizeOf(x.left)
		switch {
		case l > rank:
			x = x.left
		case l < rank:
			rank -= l + 1
			x = x.right
		default:
			return x.key, nil
		}
	}
}

// Rank returns the number of keys strictly less than the given key.
func (t *tree[K, V]) Rank(key K) int {
	rank := 0
	for x := t.root; x != nil; {
		c := t.compare(key, x.key)
		switch {
		case c < 0:
			x = x.left
		case c > 0:
			rank += sizeOf(x.left) + 1
			x = x.right
		default:
			return rank + sizeOf(x.left)
		}
	}
	return rank
}

// All enumerates all entries in increasing key order.
func (t *tree[K, V]) All() iter.Seq2[K, V] {
	root := t.root
	return func(yield func(K, V) bool) {
		// The stack holds the path under enumeration; left children of nodes
		// on the stack have already been visited.
		var stack []*node[K, V]
		for x := root; x != nil; x = x.left {
			stack = append(stack, x)
		}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for x := top.right; x != nil; x = x.left {
				stack = append(stack, x)
			}
			if !yield(top.key, top.value) {
				return
			}
		}
	}
}

// Keys enumerates all keys in increasing order.
func (t *tree[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// KeyList returns all keys in increasing order.
func (t *tree[K, V]) KeyList() []K {
	res := make([]K, 0, t.Size())
	for k := range t.Keys() {
		res = append(res, k)
	}
	return res
}

func (t *tree[K, V]) Clear() {
	t.root = nil
}

// GetMemoryFootprint estimates the memory used by the nodes reachable from
// the root. Nodes shared with other persistent trees are included.
func (t *tree[K, V]) GetMemoryFootprint() *common.MemoryFootprint {
	nodeSize := unsafe.Sizeof(node[K, V]{})
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*t))
	nodes := common.NewMemoryFootprint(uintptr(t.Size()) * nodeSize)
	nodes.SetNote(fmt.Sprintf("(nodes: %d)", t.Size()))
	mf.AddChild("nodes", nodes)
	return mf
}
