// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package intmap

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
	"github.com/stretchr/testify/require"
)

func TestIntMap_BasicOperations(t *testing.T) {
	require := require.New(t)
	m := New[string]()
	require.True(m.IsEmpty())
	m.Put(10, "ten")
	m.Put(-3, "minus three")
	m.Put(7, "seven")

	require.Equal(3, m.Size())
	require.Equal("ten", m.Get(10))
	require.Equal("", m.Get(11))
	require.Equal("none", m.GetOrDefault(11, "none"))
	require.True(m.ContainsKey(-3))
	require.Equal([]int{-3, 7, 10}, m.KeyList())
	require.Equal("[-3->minus three,7->seven,10->ten]", m.String())

	floor, err := m.FloorKey(9)
	require.NoError(err)
	require.Equal(7, floor)
	ceiling, err := m.CeilingKey(8)
	require.NoError(err)
	require.Equal(10, ceiling)
	require.Equal(1, m.Rank(7))

	require.True(m.Remove(7))
	require.False(m.Remove(7))
	require.NoError(m.RemoveMax())
	require.Equal([]int{-3}, m.KeyList())
	require.NoError(m.Check())
}

func TestIntMap_EmptyMapQueriesFail(t *testing.T) {
	require := require.New(t)
	m := New[int]()
	_, err := m.Min()
	require.ErrorIs(err, common.ErrNotFound)
	_, err = m.CeilingKey(0)
	require.ErrorIs(err, common.ErrNotFound)
	require.ErrorIs(m.RemoveMin(), common.ErrNotFound)
	_, err = m.Select(0)
	require.ErrorIs(err, common.ErrOutOfRange)
}

func TestIntMap_SnapshotIsNotAffectedByUpdates(t *testing.T) {
	require := require.New(t)
	m := NewFrom(map[int]string{1: "a", 2: "b", 3: "c"})
	snapshot := m.Snapshot()

	m.Remove(2)
	m.Put(1, "changed")
	for i := range 100 {
		m.Put(i+10, "filler")
	}

	require.Equal(3, snapshot.Size())
	require.Equal("b", snapshot.Get(2))
	require.Equal("a", snapshot.Get(1))
	require.Equal(102, m.Size())
}

func TestIntMap_ViewReflectsUpdates(t *testing.T) {
	require := require.New(t)
	m := New[int]()
	view := m.View()
	m.Put(5, 25)
	require.Equal(25, view.Get(5))
	m.Update(5, func(v int) int { return v + 1 })
	require.Equal(26, view.Get(5))
	m.Clear()
	require.True(view.IsEmpty())
}

func TestIntMap_ConditionalUpdates(t *testing.T) {
	require := require.New(t)
	m := New[int]()
	double := func(v int) int { return 2 * v }
	m.UpdateOrDefault(1, 3, double)
	m.UpdateOrSupply(2, func() int { return 4 }, double)
	require.Equal(0, m.PutIfAbsent(3, 9))
	require.Equal(9, m.PutIfAbsent(3, 1))
	require.Equal(40, m.ComputeIfAbsent(4, func(k int) int { return k * 10 }))

	var entries []string
	for e := range m.Entries() {
		entries = append(entries, fmt.Sprint(e.Key, "=", e.Val))
	}
	require.Equal([]string{"1=6", "2=8", "3=9", "4=40"}, entries)
	require.Equal([]int{6, 8, 9, 40}, slices.Collect(m.Values()))
}

func TestIntMap_RandomUpdatesPreserveInvariants(t *testing.T) {
	require := require.New(t)
	rnd := rand.New(rand.NewSource(7))
	m := New[int]()
	for i := range 3000 {
		key := rnd.Intn(1000) - 500
		switch rnd.Intn(5) {
		case 0:
			m.Remove(key)
		case 1:
			if !m.IsEmpty() {
				require.NoError(m.RemoveMin())
			}
		default:
			m.Put(key, i)
		}
		require.NoError(m.Check())
	}
	previous := 0
	for rank := range m.Size() {
		key, err := m.Select(rank)
		require.NoError(err)
		if rank > 0 {
			require.Less(previous, key)
		}
		previous = key
		require.Equal(rank, m.Rank(key))
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	require := require.New(t)
	registry := codec.NewDefaultRegistry()
	codec.RegisterCodec[*IntMap[string]](registry, Codec[string]{})

	m := NewFrom(map[int]string{-1: "neg", 0: "", 300: "big"})
	data, err := codec.Marshal(registry, func(ma *codec.Marshaller) error {
		return codec.WriteObject(ma, m)
	})
	require.NoError(err)

	var got *IntMap[string]
	require.NoError(codec.Unmarshal(data, registry, func(u *codec.Unmarshaller) (err error) {
		got, err = codec.ReadObject[*IntMap[string]](u)
		return err
	}))
	require.Equal(m.String(), got.String())
	require.True(got.ContainsKey(0))
}

func TestCodec_TruncatedInputIsRejected(t *testing.T) {
	require := require.New(t)
	registry := codec.NewDefaultRegistry()
	m := NewFrom(map[int]string{1: "one", 2: "two"})
	data, err := codec.Marshal(registry, func(ma *codec.Marshaller) error {
		return Codec[string]{}.Write(ma, m)
	})
	require.NoError(err)

	err = codec.Unmarshal(data[:len(data)-1], registry, func(u *codec.Unmarshaller) error {
		_, err := Codec[string]{}.Read(u)
		return err
	})
	require.ErrorIs(err, common.ErrInvalidArgument)
}
