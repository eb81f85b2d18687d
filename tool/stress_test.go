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
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStress_BasicRun(t *testing.T) {
	_, err := runTool(t, "stress", "--ops=200", "--workers=2", "--max-keys=50", "--seed=7")
	require.NoError(t, err, "stress should run without error for minimal input")
}

func TestStress_InvalidArguments(t *testing.T) {
	tests := map[string][]string{
		"negative ops":  {"stress", "--ops=-1"},
		"zero keys":     {"stress", "--max-keys=0"},
		"negative keys": {"stress", "--max-keys=-5"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runTool(t, args...)
			require.Error(t, err)
		})
	}
}

func TestStressCollection_AllKindsSurviveRandomOperations(t *testing.T) {
	config := stressConfig{ops: 1_000, maxKeys: 64}
	for _, kind := range stressKinds {
		t.Run(kind, func(t *testing.T) {
			for seed := int64(0); seed < 3; seed++ {
				stats, err := stressCollection(context.Background(), stressJob{kind: kind, seed: seed}, config)
				require.NoError(t, err)
				require.Equal(t, kind, stats.kind)
				require.Equal(t, config.ops, stats.operations)
				require.Equal(t, config.ops/snapshotPeriod, stats.snapshots)
				require.False(t, stats.interrupted)
			}
		})
	}
}

func TestStressCollection_UnknownKindIsAnError(t *testing.T) {
	_, err := stressCollection(context.Background(), stressJob{kind: "heap"}, stressConfig{ops: 1, maxKeys: 1})
	require.ErrorContains(t, err, "unknown collection kind")
}

func TestStressCollection_StopsWhenInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := stressCollection(ctx, stressJob{kind: "treemap"}, stressConfig{ops: 1_000, maxKeys: 10})
	require.NoError(t, err)
	require.True(t, stats.interrupted)
	require.Zero(t, stats.operations)
}

func TestRunStress_InterruptedRunIsNoError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runStress(ctx, NewLogTo(io.Discard), stressConfig{ops: 1_000_000, workers: 2, maxKeys: 100})
	require.NoError(t, err)
}

func TestStressSubjects_DetectDivergence(t *testing.T) {
	for _, kind := range stressKinds {
		t.Run(kind, func(t *testing.T) {
			subject, err := stressSubjects[kind](16)
			require.NoError(t, err)
			rnd := rand.New(rand.NewSource(1))
			for i := 0; i < 100; i++ {
				require.NoError(t, subject.apply(rnd))
			}
			require.NoError(t, subject.verify())

			// Corrupting the model must be reported.
			switch s := subject.(type) {
			case *treeMapSubject:
				s.model[-1] = 1
			case *intMapSubject:
				s.model[10*s.maxKeys] = 1
			case *treeSetSubject:
				s.model[-1] = 1
			case *treeArraySubject:
				s.model[0]++
			case *byteArraySubject:
				s.model[0]++
			}
			require.ErrorIs(t, subject.verify(), errDiverged)
		})
	}
}

func TestStressSubjects_SnapshotsAreIndependent(t *testing.T) {
	for _, kind := range stressKinds {
		t.Run(kind, func(t *testing.T) {
			subject, err := stressSubjects[kind](8)
			require.NoError(t, err)
			rnd := rand.New(rand.NewSource(2))
			verify := subject.snapshot()
			for i := 0; i < 200; i++ {
				require.NoError(t, subject.apply(rnd))
				require.NoError(t, subject.check())
			}
			require.NoError(t, verify())
		})
	}
}

func TestLimitKeys(t *testing.T) {
	require.Equal(t, uint64(1), limitKeys(0, 4))
	require.Equal(t, uint64(1<<20/2/bytesPerEntry), limitKeys(1<<20, 1))
	require.Equal(t, uint64(1<<30/2/bytesPerEntry/4), limitKeys(1<<30, 4))
	require.Equal(t, limitKeys(1<<30, 1), limitKeys(1<<30, 0))
}
