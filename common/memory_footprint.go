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
	"fmt"
	"maps"
	"slices"
	"strings"
)

// MemoryFootprint describes the memory consumption of a data structure as a
// tree of named components.
type MemoryFootprint struct {
	value    uintptr
	children map[string]*MemoryFootprint
	note     string
}

// NewMemoryFootprint creates a footprint with the given own size in bytes.
func NewMemoryFootprint(value uintptr) *MemoryFootprint {
	return &MemoryFootprint{
		value:    value,
		children: map[string]*MemoryFootprint{},
	}
}

// AddChild registers the footprint of a named component.
func (mf *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	mf.children[name] = child
}

// SetNote attaches a free-form remark printed next to the size.
func (mf *MemoryFootprint) SetNote(note string) {
	mf.note = note
}

// Value returns the own size, excluding children.
func (mf *MemoryFootprint) Value() uintptr {
	return mf.value
}

// Total returns the own size plus the total of all children.
func (mf *MemoryFootprint) Total() uintptr {
	total := mf.value
	for _, child := range mf.children {
		total += child.Total()
	}
	return total
}

func (mf *MemoryFootprint) String() string {
	var b strings.Builder
	mf.print(&b, ".")
	return b.String()
}

func (mf *MemoryFootprint) print(b *strings.Builder, path string) {
	for _, name := range slices.Sorted(maps.Keys(mf.children)) {
		mf.children[name].print(b, path+"/"+name)
	}
	fmt.Fprintf(b, "%s\t%s", formatBytes(mf.Total()), path)
	if mf.note != "" {
		fmt.Fprintf(b, " %s", mf.note)
	}
	b.WriteString("\n")
}

func formatBytes(size uintptr) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := uintptr(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
