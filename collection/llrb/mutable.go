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

	"github.com/0xsoniclabs/objstate/common"
)

// Mutable is a tree updating its nodes in place.
type Mutable[K any, V any] struct {
	tree[K, V]
}

// NewMutable creates an empty mutable tree ordered by the given comparator.
func NewMutable[K any, V any](compare common.Comparator[K]) *Mutable[K, V] {
	return &Mutable[K, V]{tree[K, V]{compare: compare}}
}

// Clone returns a deep copy of the tree. This is O(n), since the nodes of a
// mutable tree may not be shared.
func (t *Mutable[K, V]) Clone() *Mutable[K, V] {
	return &Mutable[K, V]{tree[K, V]{root: deepCopy(t.root), compare: t.compare}}
}

func deepCopy[K any, V any](n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	c := n.copy()
	c.left = deepCopy(n.left)
	c.right = deepCopy(n.right)
	return c
}

func mRotateLeft[K any, V any](h *node[K, V]) *node[K, V] {
	x := h.right
	h.right = x.left
	x.left = h
	x.color = h.color
	h.color = red
	x.size = h.size
	h.size = sizeOf(h.left) + sizeOf(h.right) + 1
	return x
}

func mRotateRight[K any, V any](h *node[K, V]) *node[K, V] {
	x := h.left
	h.left = x.right
	x.right = h
	x.color = h.color
	h.color = red
	x.size = h.size
	h.size = sizeOf(h.left) + sizeOf(h.right) + 1
	return x
}

func mFlipColors[K any, V any](h *node[K, V]) {
	h.color = !h.color
	h.left.color = !h.left.color
	h.right.color = !h.right.color
}

func mBalance[K any, V any](h *node[K, V]) *node[K, V] {
	if isRed(h.right) && !isRed(h.left) {
		h = mRotateLeft(h)
	}
	if isRed(h.left) && isRed(h.left.left) {
		h = mRotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		mFlipColors(h)
	}
	h.size = sizeOf(h.left) + sizeOf(h.right) + 1
	return h
}

func mMoveRedLeft[K any, V any](h *node[K, V]) *node[K, V] {
	mFlipColors(h)
	if isRed(h.right.left) {
		h.right = mRotateRight(h.right)
		h = mRotateLeft(h)
		mFlipColors(h)
	}
	return h
}

func mMoveRedRight[K any, V any](h *node[K, V]) *node[K, V] {
	mFlipColors(h)
	if isRed(h.left.left) {
		h = mRotateRight(h)
		mFlipColors(h)
	}
	return h
}

// modify has the same contract as its persistent counterpart, but only
// rebalances along the path if a node was inserted.
func (t *Mutable[K, V]) modify(h *node[K, V], key K, how func(V, bool) (V, bool)) (*node[K, V], bool) {
	if h == nil {
		var zero V
		value, write := how(zero, false)
		if !write {
			return nil, false
		}
		return newNode(key, value), true
	}
	var inserted bool
	c := t.compare(key, h.key)
	switch {
	case c < 0:
		h.left, inserted = t.modify(h.left, key, how)
	case c > 0:
		h.right, inserted = t.modify(h.right, key, how)
	default:
		if value, write := how(h.value, true); write {
			h.value = value
		}
		return h, false
	}
	if !inserted {
		return h, false
	}
	return mBalance(h), true
}

func (t *Mutable[K, V]) upsert(key K, how func(V, bool) (V, bool)) {
	t.root, _ = t.modify(t.root, key, how)
	if t.root != nil {
		t.root.color = black
	}
}

// Put binds the given key to the given value, replacing any previous value.
func (t *Mutable[K, V]) Put(key K, value V) {
	t.upsert(key, func(V, bool) (V, bool) {
		return value, true
	})
}

// Update replaces the value of the given key by how(value). Absent keys are
// inserted with how applied to the zero value.
func (t *Mutable[K, V]) Update(key K, how func(V) V) {
	t.upsert(key, func(old V, _ bool) (V, bool) {
		return how(old), true
	})
}

// UpdateOrDefault is like Update, but applies how to def if the key is absent
// or bound to the zero value.
func (t *Mutable[K, V]) UpdateOrDefault(key K, def V, how func(V) V) {
	t.upsert(key, func(old V, found bool) (V, bool) {
		if !found || common.IsZero(old) {
			return how(def), true
		}
		return how(old), true
	})
}

// UpdateOrSupply is like UpdateOrDefault, with the default produced on demand.
func (t *Mutable[K, V]) UpdateOrSupply(key K, supplier func() V, how func(V) V) {
	t.upsert(key, func(old V, found bool) (V, bool) {
		if !found || common.IsZero(old) {
			return how(supplier()), true
		}
		return how(old), true
	})
}

// PutIfAbsent binds the key to value unless it is already bound to a non-zero
// value. It returns the previous non-zero value, or the zero value if value
// was stored.
func (t *Mutable[K, V]) PutIfAbsent(key K, value V) V {
	var res V
	t.upsert(key, func(old V, found bool) (V, bool) {
		if found && !common.IsZero(old) {
			res = old
			return old, false
		}
		return value, true
	})
	return res
}

// ComputeIfAbsent returns the non-zero value bound to the key, or binds the key
// to supplier(key) and returns that value.
func (t *Mutable[K, V]) ComputeIfAbsent(key K, supplier func(K) V) V {
	var res V
	t.upsert(key, func(old V, found bool) (V, bool) {
		if found && !common.IsZero(old) {
			res = old
			return old, false
		}
		res = supplier(key)
		return res, true
	})
	return res
}

// Remove deletes the given key, reporting whether it was present.
func (t *Mutable[K, V]) Remove(key K) bool {
	if !t.Contains(key) {
		return false
	}
	if !isRed(t.root.left) && !isRed(t.root.right) {
		t.root.color = red
	}
	t.root = t.remove(t.root, key)
	if t.root != nil {
		t.root.color = black
	}
	return true
}

func (t *Mutable[K, V]) remove(h *node[K, V], key K) *node[K, V] {
	if t.compare(key, h.key) < 0 {
		if !isRed(h.left) && !isRed(h.left.left) {
			h = mMoveRedLeft(h)
		}
		h.left = t.remove(h.left, key)
	} else {
		if isRed(h.left) {
			h = mRotateRight(h)
		}
		if t.compare(key, h.key) == 0 && h.right == nil {
			return nil
		}
		if !isRed(h.right) && !isRed(h.right.left) {
			h = mMoveRedRight(h)
		}
		if t.compare(key, h.key) == 0 {
			successor := minNode(h.right)
			h.key = successor.key
			h.value = successor.value
			h.right = mRemoveMin(h.right)
		} else {
			h.right = t.remove(h.right, key)
		}
	}
	return mBalance(h)
}

// RemoveMin deletes the smallest key, or fails with ErrNotFound if empty.
func (t *Mutable[K, V]) RemoveMin() error {
	if t.root == nil {
		return fmt.Errorf("%w: removeMin on empty tree", common.ErrNotFound)
	}
	if !isRed(t.root.left) && !isRed(t.root.right) {
		t.root.color = red
	}
	t.root = mRemoveMin(t.root)
	if t.root != nil {
		t.root.color = black
	}
	return nil
}

func mRemoveMin[K any, V any](h *node[K, V]) *node[K, V] {
	if h.left == nil {
		return nil
	}
	if !isRed(h.left) && !isRed(h.left.left) {
		h = mMoveRedLeft(h)
	}
	h.left = mRemoveMin(h.left)
	return mBalance(h)
}

// RemoveMax deletes the largest key, or fails with ErrNotFound if empty.
func (t *Mutable[K, V]) RemoveMax() error {
	if t.root == nil {
		return fmt.Errorf("%w: removeMax on empty tree", common.ErrNotFound)
	}
	if !isRed(t.root.left) && !isRed(t.root.right) {
		t.root.color = red
	}
	t.root = mRemoveMax(t.root)
	if t.root != nil {
		t.root.color = black
	}
	return nil
}

func mRemoveMax[K any, V any](h *node[K, V]) *node[K, V] {
	if isRed(h.left) {
		h = mRotateRight(h)
	}
	if h.right == nil {
		return nil
	}
	if !isRed(h.right) && !isRed(h.right.left) {
		h = mMoveRedRight(h)
	}
	h.right = mRemoveMax(h.right)
	return mBalance(h)
}
