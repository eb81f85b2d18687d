// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_PrintfWritesToTarget(t *testing.T) {
	var out bytes.Buffer
	NewLogTo(&out).Printf("hello %d", 12)
	require.Contains(t, out.String(), "hello 12")
}

func TestProgressTracker_ReportsEveryStep(t *testing.T) {
	var out bytes.Buffer
	progress := NewLogTo(&out).NewProgressTracker("done %d items, %.2f items/s", 3)
	progress.Step(2)
	require.Empty(t, out.String())
	progress.Step(5)
	require.Equal(t, 7, progress.Count())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "done 3 items")
	require.Contains(t, lines[1], "done 6 items")
}

func TestProgressTracker_SummaryReportsTotal(t *testing.T) {
	var out bytes.Buffer
	progress := NewLogTo(&out).NewProgressTracker("done %d items, %.2f items/s", 0)
	progress.Step(4)
	require.Empty(t, out.String())
	progress.Summary()
	require.Contains(t, out.String(), "done 4 items")
}
