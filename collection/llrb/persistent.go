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

// Persistent is a tree whose nodes are never modified after they became
// reachable from a root. Writes copy the path from the root to the modified
// position; all other subtrees are shared with previous versions.
type Persistent[K any, V any] struct {
	tree[K, V]
}

// NewPersistent creates an empty persistent tree ordered by the given comparator.
func NewPersistent[K any, V any](compare common.Comparator[K]) *Persistent[K, V] {
	return &Persistent[K, V]{tree[K, V]{compare: compare}}
}

// Clone returns an independent tree with the same content in O(1). The clone
// shares all nodes with t; subsequent writes to either tree allocate their own
// paths and are not visible to the other.
func (t *Persistent[K, V]) Clone() *Persistent[K, V] {
	return &Persistent[K, V]{tree[K, V]{root: t.root, compare: t.compare}}
}

// --- copy-on-write node transformations ---

func (n *node[K, V]) copy() *node[K, V] {
	c := *n
	return &c
}

func withValue[K any, V any](h *node[K, V], value V) *node[K, V] {
	c := h.copy()
	c.value = value
	return c
}

func withLeft[K any, V any](h *node[K, V], left *node[K, V]) *node[K, V] {
	c := h.copy()
	c.left = left
	return c
}

func withRight[K any, V any](h *node[K, V], right *node[K, V]) *node[K, V] {
	c := h.copy()
	c.right = right
	return c
}

func withColor[K any, V any](h *node[K, V], col color) *node[K, V] {
	if h.color == col {
		return h
	}
	c := h.copy()
	c.color = col
	return c
}

func pRotateLeft[K any, V any](h *node[K, V]) *node[K, V] {
	x := h.right
	lower := &node[K, V]{
		key:   h.key,
		value: h.value,
		left:  h.left,
		right: x.left,
		size:  sizeOf(h.left) + sizeOf(x.left) + 1,
		color: red,
	}
	return &node[K, V]{
		key:   x.key,
		value: x.value,
		left:  lower,
		right: x.right,
		size:  h.size,
		color: h.color,
	}
}

func pRotateRight[K any, V any](h *node[K, V]) *node[K, V] {
	x := h.left
	lower := &node[K, V]{
		key:   h.key,
		value: h.value,
		left:  x.right,
		right: h.right,
		size:  sizeOf(x.right) + sizeOf(h.right) + 1,
		color: red,
	}
	return &node[K, V]{
		key:   x.key,
		value: x.value,
		left:  x.left,
		right: lower,
		size:  h.size,
		color: h.color,
	}
}

// pFlipColors inverts the color of h and both of its children.
func pFlipColors[K any, V any](h *node[K, V]) *node[K, V] {
	c := h.copy()
	c.color = !h.color
	c.left = withColor(h.left, !h.left.color)
	c.right = withColor(h.right, !h.right.color)
	return c
}

func pFixSize[K any, V any](h *node[K, V]) *node[K, V] {
	size := sizeOf(h.left) + sizeOf(h.right) + 1
	if h.size == size {
		return h
	}
	c := h.copy()
	c.size = size
	return c
}

func pBalance[K any, V any](h *node[K, V]) *node[K, V] {
	if isRed(h.right) && !isRed(h.left) {
		h = pRotateLeft(h)
	}
	if isRed(h.left) && isRed(h.left.left) {
		h = pRotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		h = pFlipColors(h)
	}
	return pFixSize(h)
}

func pMoveRedLeft[K any, V any](h *node[K, V]) *node[K, V] {
	h = pFlipColors(h)
	if isRed(h.right.left) {
		h = withRight(h, pRotateRight(h.right))
		h = pRotateLeft(h)
		h = pFlipColors(h)
	}
	return h
}

func pMoveRedRight[K any, V any](h *node[K, V]) *node[K, V] {
	h = pFlipColors(h)
	if isRed(h.left.left) {
		h = pRotateRight(h)
		h = pFlipColors(h)
	}
	return h
}

// --- writes ---

// modify locates the given key and lets how decide on its new value. The
// function receives the current value and whether the key is present, and
// returns the value to store and whether anything is to be stored at all.
func (t *Persistent[K, V]) modify(h *node[K, V], key K, how func(V, bool) (V, bool)) *node[K, V] {
	if h == nil {
		var zero V
		value, write := how(zero, false)
		if !write {
			return nil
		}
		return newNode(key, value)
	}
	c := t.compare(key, h.key)
	switch {
	case c < 0:
		left := t.modify(h.left, key, how)
		if left == h.left {
			return h
		}
		h = withLeft(h, left)
	case c > 0:
		right := t.modify(h.right, key, how)
		if right == h.right {
			return h
		}
		h = withRight(h, right)
	default:
		value, write := how(h.value, true)
		if !write {
			return h
		}
		return withValue(h, value)
	}
	return pBalance(h)
}

func (t *Persistent[K, V]) upsert(key K, how func(V, bool) (V, bool)) {
	t.root = t.modify(t.root, key, how)
	if t.root != nil {
		t.root = withColor(t.root, black)
	}
}

// Put binds the given key to the given value, replacing any previous value.
func (t *Persistent[K, V]) Put(key K, value V) {
	t.upsert(key, func(V, bool) (V, bool) {
		return value, true
	})
}

// Update replaces the value of the given key by how(value). Absent keys are
// inserted with how applied to the zero value.
func (t *Persistent[K, V]) Update(key K, how func(V) V) {
	t.upsert(key, func(old V, _ bool) (V, bool) {
		return how(old), true
	})
}

// UpdateOrDefault is like Update, but applies how to def if the key is absent
// or bound to the zero value.
func (t *Persistent[K, V]) UpdateOrDefault(key K, def V, how func(V) V) {
	t.upsert(key, func(old V, found bool) (V, bool) {
		if !found || common.IsZero(old) {
			return how(def), true
		}
		return how(old), true
	})
}

// UpdateOrSupply is like UpdateOrDefault, with the default produced on demand.
func (t *Persistent[K, V]) UpdateOrSupply(key K, supplier func() V, how func(V) V) {
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
func (t *Persistent[K, V]) PutIfAbsent(key K, value V) V {
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
func (t *Persistent[K, V]) ComputeIfAbsent(key K, supplier func(K) V) V {
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
func (t *Persistent[K, V]) Remove(key K) bool {
	if !t.Contains(key) {
		return false
	}
	if !isRed(t.root.left) && !isRed(t.root.right) {
		t.root = withColor(t.root, red)
	}
	t.root = t.remove(t.root, key)
	if t.root != nil {
		t.root = withColor(t.root, black)
	}
	return true
}

func (t *Persistent[K, V]) remove(h *node[K, V], key K) *node[K, V] {
	if t.compare(key, h.key) < 0 {
		if !isRed(h.left) && !isRed(h.left.left) {
			h = pMoveRedLeft(h)
		}
		h = withLeft(h, t.remove(h.left, key))
	} else {
		if isRed(h.left) {
			h = pRotateRight(h)
		}
		if t.compare(key, h.key) == 0 && h.right == nil {
			return nil
		}
		if !isRed(h.right) && !isRed(h.right.left) {
			h = pMoveRedRight(h)
		}
		if t.compare(key, h.key) == 0 {
			successor := minNode(h.right)
			c := h.copy()
			c.key = successor.key
			c.value = successor.value
			c.right = pRemoveMin(h.right)
			h = c
		} else {
			h = withRight(h, t.remove(h.right, key))
		}
	}
	return pBalance(h)
}

// RemoveMin deletes the smallest key, or fails with ErrNotFound if empty.
func (t *Persistent[K, V]) RemoveMin() error {
	if t.root == nil {
		return fmt.Errorf("%w: removeMin on empty tree", common.ErrNotFound)
	}
	if !isRed(t.root.left) && !isRed(t.root.right) {
		t.root = withColor(t.root, red)
	}
	t.root = pRemoveMin(t.root)
	if t.root != nil {
		t.root = withColor(t.root, black)
	}
	return nil
}

func pRemoveMin[K any, V any](h *node[K, V]) *node[K, V] {
	if h.left == nil {
		return nil
	}
	if !isRed(h.left) && !isRed(h.left.left) {
		h = pMoveRedLeft(h)
	}
	h = withLeft(h, pRemoveMin(h.left))
	return pBalance(h)
}

// RemoveMax deletes the largest key, or fails with ErrNotFound if empty.
func (t *Persistent[K, V]) RemoveMax() error {
	if t.root == nil {
		return fmt.Errorf("%w: removeMax on empty tree", common.ErrNotFound)
	}
	if !isRed(t.root.left) && !isRed(t.root.right) {
		t.root = withColor(t.root, red)
	}
	t.root = pRemoveMax(t.root)
	if t.root != nil {
		t.root = withColor(t.root, black)
	}
	return nil
}

func pRemoveMax[K any, V any](h *node[K, V]) *node[K, V] {
	if isRed(h.left) {
		h = pRotateRight(h)
	}
	if h.right == nil {
		return nil
	}
	if !isRed(h.right) && !isRed(h.right.left) {
		h = pMoveRedRight(h)
	}
	h = withRight(h, pRemoveMax(h.right))
	return pBalance(h)
}
