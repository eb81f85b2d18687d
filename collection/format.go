// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package collection

import (
	"fmt"
	"iter"
	"strings"
)

// Format renders the given elements as a comma separated list in brackets.
func Format[T any](elements iter.Seq[T]) string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for e := range elements {
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprint(&b, e)
	}
	b.WriteByte(']')
	return b.String()
}

// FormatPairs renders key/value pairs as a comma separated list of key->value
// items in brackets.
func FormatPairs[K any, V any](pairs iter.Seq2[K, V]) string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for k, v := range pairs {
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&b, "%v->%v", k, v)
	}
	b.WriteByte(']')
	return b.String()
}
