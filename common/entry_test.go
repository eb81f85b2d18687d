// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapEntry_String(t *testing.T) {
	e := MapEntry[int, int]{10, 20}

	if got, want := e.String(), "Entry: 10 -> 20"; got != want {
		t.Errorf("provided string does not match: %s != %s", got, want)
	}
}

func TestMapEntry_String_UsesValueFormatting(t *testing.T) {
	e := MapEntry[string, []byte]{Key: "a", Val: []byte{1, 2}}
	require.Equal(t, "Entry: a -> [1 2]", e.String())
}

func TestMemoryFootprint_TotalIncludesNestedChildren(t *testing.T) {
	require := require.New(t)
	root := NewMemoryFootprint(10)
	child := NewMemoryFootprint(20)
	child.AddChild("leaf", NewMemoryFootprint(30))
	root.AddChild("child", child)

	require.Equal(uintptr(10), root.Value())
	require.Equal(uintptr(60), root.Total())
}

func TestMemoryFootprint_String_ListsComponentsAndNotes(t *testing.T) {
	require := require.New(t)
	root := NewMemoryFootprint(2048)
	nodes := NewMemoryFootprint(100)
	nodes.SetNote("(nodes: 5)")
	root.AddChild("nodes", nodes)

	s := root.String()
	require.True(strings.Contains(s, "./nodes (nodes: 5)"), s)
	require.True(strings.Contains(s, "2.1 KiB\t."), s)
}
