// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bytearray

import (
	"math/rand"
	"testing"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
	"github.com/stretchr/testify/require"
)

func TestByteArray_UnsetSlotsAreZero(t *testing.T) {
	require := require.New(t)
	a, err := New(6)
	require.NoError(err)
	require.NoError(a.Set(2, 0xAB))
	require.Equal([]byte{0, 0, 0xAB, 0, 0, 0}, a.ToSlice())

	count := 0
	for i, b := range a.All() {
		require.Equal(count, i)
		if i != 2 {
			require.Zero(b)
		}
		count++
	}
	require.Equal(6, count)
	require.Equal("[0,0,171,0,0,0]", a.String())
}

func TestByteArray_IndicesOutOfBoundsAreRejected(t *testing.T) {
	require := require.New(t)
	a, err := New(2)
	require.NoError(err)
	require.ErrorIs(a.Set(2, 1), common.ErrOutOfRange)
	_, err = a.Get(-1)
	require.ErrorIs(err, common.ErrOutOfRange)
	require.ErrorIs(a.Update(5, func(b byte) byte { return b }), common.ErrOutOfRange)

	_, err = New(-1)
	require.ErrorIs(err, common.ErrInvalidArgument)
}

func TestByteArray_ConstructorsAndUpdate(t *testing.T) {
	require := require.New(t)
	filled, err := NewFilled(3, 9)
	require.NoError(err)
	require.Equal([]byte{9, 9, 9}, filled.ToSlice())

	supplied, err := NewSupplied(4, func(i int) byte { return byte(i) })
	require.NoError(err)
	require.NoError(supplied.Update(3, func(b byte) byte { return b * 10 }))
	require.NoError(supplied.Update(1, func(b byte) byte { return b - 1 }))
	require.Equal([]byte{0, 0, 2, 30}, supplied.ToSlice())
	require.NoError(supplied.Check())
}

func TestByteArray_RemovalResetsSlots(t *testing.T) {
	require := require.New(t)
	a := NewFromBytes([]byte{0, 4, 0, 5, 6, 0})

	require.NoError(a.Remove(3))
	require.NoError(a.Remove(0))
	require.Equal([]byte{0, 4, 0, 0, 6, 0}, a.ToSlice())
	require.ErrorIs(a.Remove(6), common.ErrOutOfRange)

	require.NoError(a.RemoveMin())
	require.Equal([]byte{0, 0, 0, 0, 6, 0}, a.ToSlice())
	require.NoError(a.RemoveMax())
	require.Equal([]byte{0, 0, 0, 0, 0, 0}, a.ToSlice())

	require.ErrorIs(a.RemoveMin(), common.ErrNotFound)
	require.ErrorIs(a.RemoveMax(), common.ErrNotFound)
	require.NoError(a.Check())
}

func TestByteArray_OrderQueriesRangeOverNonZeroSlots(t *testing.T) {
	require := require.New(t)
	a := NewFromBytes([]byte{0, 1, 0, 0, 2, 0, 0})

	first, err := a.Min()
	require.NoError(err)
	require.Equal(1, first)
	last, err := a.Max()
	require.NoError(err)
	require.Equal(4, last)

	floor, err := a.FloorKey(3)
	require.NoError(err)
	require.Equal(1, floor)
	ceiling, err := a.CeilingKey(2)
	require.NoError(err)
	require.Equal(4, ceiling)

	_, err = a.FloorKey(0)
	require.ErrorIs(err, common.ErrNotFound)
	_, err = a.CeilingKey(5)
	require.ErrorIs(err, common.ErrNotFound)

	_, err = a.FloorKey(7)
	require.ErrorIs(err, common.ErrOutOfRange)
	_, err = a.CeilingKey(-1)
	require.ErrorIs(err, common.ErrOutOfRange)

	empty, err := New(3)
	require.NoError(err)
	_, err = empty.Min()
	require.ErrorIs(err, common.ErrNotFound)
	_, err = empty.Max()
	require.ErrorIs(err, common.ErrNotFound)
}

func TestByteArray_ConditionalUpdates(t *testing.T) {
	require := require.New(t)
	a := NewFromBytes([]byte{0, 7, 0, 0})

	b, err := a.GetOrDefault(0, 9)
	require.NoError(err)
	require.Equal(byte(9), b)
	b, err = a.GetOrDefault(1, 9)
	require.NoError(err)
	require.Equal(byte(7), b)
	_, err = a.GetOrDefault(4, 9)
	require.ErrorIs(err, common.ErrOutOfRange)

	inc := func(b byte) byte { return b + 1 }
	require.NoError(a.UpdateOrDefault(0, 10, inc))
	require.NoError(a.UpdateOrDefault(1, 10, inc))
	require.ErrorIs(a.UpdateOrDefault(4, 10, inc), common.ErrOutOfRange)
	require.Equal([]byte{11, 8, 0, 0}, a.ToSlice())

	previous, err := a.SetIfAbsent(1, 3)
	require.NoError(err)
	require.Equal(byte(8), previous)
	previous, err = a.SetIfAbsent(2, 3)
	require.NoError(err)
	require.Zero(previous)

	calls := 0
	supplier := func(i int) byte {
		calls++
		return byte(100 + i)
	}
	computed, err := a.ComputeIfAbsent(3, supplier)
	require.NoError(err)
	require.Equal(byte(103), computed)
	computed, err = a.ComputeIfAbsent(3, supplier)
	require.NoError(err)
	require.Equal(byte(103), computed)
	require.Equal(1, calls)
	_, err = a.SetIfAbsent(-1, 3)
	require.ErrorIs(err, common.ErrOutOfRange)

	require.Equal([]byte{11, 8, 3, 103}, a.ToSlice())
	require.NoError(a.Check())
}

func TestByteArray_ZeroResultsAreNeverMaterialized(t *testing.T) {
	require := require.New(t)
	a := NewFromBytes([]byte{1, 0, 0})

	require.NoError(a.UpdateOrDefault(0, 5, func(byte) byte { return 0 }))
	_, err := a.SetIfAbsent(1, 0)
	require.NoError(err)
	_, err = a.ComputeIfAbsent(2, func(int) byte { return 0 })
	require.NoError(err)

	require.Equal([]byte{0, 0, 0}, a.ToSlice())
	_, err = a.Min()
	require.ErrorIs(err, common.ErrNotFound)
	require.NoError(a.Check())
}

func TestByteArray_SnapshotSurvivesRemovals(t *testing.T) {
	require := require.New(t)
	a := NewFromBytes([]byte{1, 2, 3, 4})
	snapshot := a.Snapshot()

	require.NoError(a.RemoveMin())
	require.NoError(a.RemoveMax())
	require.NoError(a.Remove(1))

	require.Equal([]byte{0, 0, 3, 0}, a.ToSlice())
	require.Equal([]byte{1, 2, 3, 4}, snapshot.ToSlice())
	first, err := snapshot.Min()
	require.NoError(err)
	require.Equal(0, first)
	last, err := snapshot.Max()
	require.NoError(err)
	require.Equal(3, last)
	require.NoError(a.Check())
}

func TestByteArray_SnapshotIsIndependent(t *testing.T) {
	require := require.New(t)
	a := NewFromBytes([]byte{1, 2, 3})
	view := a.View()
	snapshot := a.Snapshot()

	require.NoError(a.Set(0, 0))
	require.NoError(a.Set(1, 20))

	require.Equal([]byte{0, 20, 3}, view.ToSlice())
	require.Equal([]byte{1, 2, 3}, snapshot.ToSlice())
	b, err := snapshot.Get(1)
	require.NoError(err)
	require.Equal(byte(2), b)
}

func TestByteArray_RandomUpdatesPreserveInvariants(t *testing.T) {
	require := require.New(t)
	rnd := rand.New(rand.NewSource(5))
	a, err := New(128)
	require.NoError(err)
	reference := make([]byte, 128)
	for range 2000 {
		i := rnd.Intn(128)
		b := byte(rnd.Intn(4))
		require.NoError(a.Set(i, b))
		reference[i] = b
		require.NoError(a.Check())
	}
	require.Equal(reference, a.ToSlice())
}

func TestCodec_RoundTrip(t *testing.T) {
	require := require.New(t)
	registry := codec.NewDefaultRegistry()
	codec.RegisterCodec[*ByteArray](registry, Codec{})

	a := NewFromBytes([]byte{0, 7, 0, 0, 255})
	data, err := codec.Marshal(registry, func(m *codec.Marshaller) error {
		return codec.WriteObject(m, a)
	})
	require.NoError(err)
	require.Equal([]byte{5, 0, 7, 0, 0, 255}, data)

	var got *ByteArray
	require.NoError(codec.Unmarshal(data, registry, func(u *codec.Unmarshaller) (err error) {
		got, err = codec.ReadObject[*ByteArray](u)
		return err
	}))
	require.Equal(a.ToSlice(), got.ToSlice())
}
