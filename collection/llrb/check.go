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
	"errors"
	"fmt"
)

// Check verifies the structural invariants of the tree and reports all
// violations found.
func (t *tree[K, V]) Check() error {
	if t.root == nil {
		return nil
	}
	var errs []error
	if isRed(t.root) {
		errs = append(errs, errors.New("root is red"))
	}
	var blackHeight = -1
	var check func(n *node[K, V], lower, upper *K, blacks int)
	check = func(n *node[K, V], lower, upper *K, blacks int) {
		if n == nil {
			if blackHeight < 0 {
				blackHeight = blacks
			} else if blackHeight != blacks {
				errs = append(errs, fmt.Errorf("unbalanced black height, wanted %d, got %d", blackHeight, blacks))
			}
			return
		}
		if lower != nil && t.compare(*lower, n.key) >= 0 {
			errs = append(errs, fmt.Errorf("key %v not greater than lower bound %v", n.key, *lower))
		}
		if upper != nil && t.compare(n.key, *upper) >= 0 {
			errs = append(errs, fmt.Errorf("key %v not less than upper bound %v", n.key, *upper))
		}
		if isRed(n.right) {
			errs = append(errs, fmt.Errorf("right-leaning red link below key %v", n.key))
		}
		if isRed(n) && isRed(n.left) {
			errs = append(errs, fmt.Errorf("two consecutive red links at key %v", n.key))
		}
		if want := sizeOf(n.left) + sizeOf(n.right) + 1; n.size != want {
			errs = append(errs, fmt.Errorf("invalid size of subtree at key %v, wanted %d, got %d", n.key, want, n.size))
		}
		if !isRed(n) {
			blacks++
		}
		check(n.left, lower, &n.key, blacks)
		check(n.right, &n.key, upper, blacks)
	}
	check(t.root, nil, nil, 0)
	return errors.Join(errs...)
}
