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
	"cmp"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/0xsoniclabs/objstate/common"
	"github.com/stretchr/testify/require"
)

var (
	_ Tree[int, int] = (*Persistent[int, int])(nil)
	_ Tree[int, int] = (*Mutable[int, int])(nil)
)

type treeFactory struct {
	name   string
	create func() Tree[int, string]
	clone  func(Tree[int, string]) Tree[int, string]
}

func getTreeFactories() []treeFactory {
	return []treeFactory{
		{
			name:   "persistent",
			create: func() Tree[int, string] { return NewPersistent[int, string](cmp.Compare[int]) },
			clone:  func(t Tree[int, string]) Tree[int, string] { return t.(*Persistent[int, string]).Clone() },
		},
		{
			name:   "mutable",
			create: func() Tree[int, string] { return NewMutable[int, string](cmp.Compare[int]) },
			clone:  func(t Tree[int, string]) Tree[int, string] { return t.(*Mutable[int, string]).Clone() },
		},
	}
}

func TestTree_EmptyTree(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			require.True(tree.IsEmpty())
			require.Equal(0, tree.Size())
			require.NoError(tree.Check())

			_, found := tree.Get(1)
			require.False(found)
			require.Equal("x", tree.GetOrDefault(1, "x"))

			_, err := tree.Min()
			require.ErrorIs(err, common.ErrNotFound)
			_, err = tree.Max()
			require.ErrorIs(err, common.ErrNotFound)
			_, err = tree.FloorKey(1)
			require.ErrorIs(err, common.ErrNotFound)
			_, err = tree.CeilingKey(1)
			require.ErrorIs(err, common.ErrNotFound)
			_, err = tree.Select(0)
			require.ErrorIs(err, common.ErrOutOfRange)
			require.ErrorIs(tree.RemoveMin(), common.ErrNotFound)
			require.ErrorIs(tree.RemoveMax(), common.ErrNotFound)
			require.False(tree.Remove(1))
			require.Equal(0, tree.Rank(12))
			require.Empty(tree.KeyList())
		})
	}
}

func TestTree_PutGetAndOverwrite(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			tree.Put(2, "two")
			tree.Put(1, "one")
			tree.Put(3, "three")
			require.Equal(3, tree.Size())

			got, found := tree.Get(2)
			require.True(found)
			require.Equal("two", got)

			tree.Put(2, "zwei")
			require.Equal(3, tree.Size())
			got, _ = tree.Get(2)
			require.Equal("zwei", got)
			require.NoError(tree.Check())
		})
	}
}

func TestTree_OrderQueries(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			for _, k := range []int{5, 3, 8, 1} {
				tree.Put(k, fmt.Sprint(k))
			}
			minKey, err := tree.Min()
			require.NoError(err)
			require.Equal(1, minKey)
			maxKey, err := tree.Max()
			require.NoError(err)
			require.Equal(8, maxKey)

			floor, err := tree.FloorKey(4)
			require.NoError(err)
			require.Equal(3, floor)
			floor, err = tree.FloorKey(5)
			require.NoError(err)
			require.Equal(5, floor)
			_, err = tree.FloorKey(0)
			require.ErrorIs(err, common.ErrNotFound)

			ceiling, err := tree.CeilingKey(6)
			require.NoError(err)
			require.Equal(8, ceiling)
			_, err = tree.CeilingKey(9)
			require.ErrorIs(err, common.ErrNotFound)

			key, err := tree.Select(2)
			require.NoError(err)
			require.Equal(5, key)
			_, err = tree.Select(4)
			require.ErrorIs(err, common.ErrOutOfRange)
			_, err = tree.Select(-1)
			require.ErrorIs(err, common.ErrOutOfRange)

			require.Equal(2, tree.Rank(5))
			require.Equal(2, tree.Rank(4))
			require.Equal(4, tree.Rank(100))
			require.Equal([]int{1, 3, 5, 8}, tree.KeyList())
		})
	}
}

func TestTree_RemoveMinAndMax(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			for i := range 20 {
				tree.Put(i, fmt.Sprint(i))
			}
			require.NoError(tree.RemoveMin())
			require.NoError(tree.RemoveMax())
			require.NoError(tree.Check())
			minKey, _ := tree.Min()
			maxKey, _ := tree.Max()
			require.Equal(1, minKey)
			require.Equal(18, maxKey)
			require.Equal(18, tree.Size())
		})
	}
}

func TestTree_ConditionalUpdates(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			appendX := func(s string) string { return s + "x" }

			tree.Update(1, appendX)
			got, _ := tree.Get(1)
			require.Equal("x", got)

			tree.UpdateOrDefault(2, "d", appendX)
			got, _ = tree.Get(2)
			require.Equal("dx", got)
			tree.UpdateOrDefault(2, "d", appendX)
			got, _ = tree.Get(2)
			require.Equal("dxx", got)

			tree.Put(3, "")
			tree.UpdateOrSupply(3, func() string { return "s" }, appendX)
			got, _ = tree.Get(3)
			require.Equal("sx", got)

			require.Equal("", tree.PutIfAbsent(4, "a"))
			require.Equal("a", tree.PutIfAbsent(4, "b"))
			got, _ = tree.Get(4)
			require.Equal("a", got)

			calls := 0
			supplier := func(k int) string {
				calls++
				return fmt.Sprint(k * 10)
			}
			require.Equal("50", tree.ComputeIfAbsent(5, supplier))
			require.Equal("50", tree.ComputeIfAbsent(5, supplier))
			require.Equal(1, calls)
			require.NoError(tree.Check())
		})
	}
}

func TestTree_ZeroValueCountsAsAbsent(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			tree.Put(1, "")
			require.True(tree.Contains(1))
			require.Equal("", tree.PutIfAbsent(1, "v"))
			got, _ := tree.Get(1)
			require.Equal("v", got)
		})
	}
}

func TestTree_RandomOperationsPreserveInvariants(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			for seed := range int64(5) {
				rnd := rand.New(rand.NewSource(seed))
				tree := factory.create()
				reference := map[int]string{}
				for range 2000 {
					key := rnd.Intn(200)
					switch rnd.Intn(11) {
					case 0, 1:
						value := fmt.Sprint(rnd.Int())
						tree.Put(key, value)
						reference[key] = value
					case 2:
						_, exists := reference[key]
						require.Equal(exists, tree.Remove(key))
						delete(reference, key)
					case 3:
						if len(reference) == 0 {
							require.ErrorIs(tree.RemoveMin(), common.ErrNotFound)
							continue
						}
						minKey := slices.Min(mapKeys(reference))
						require.NoError(tree.RemoveMin())
						delete(reference, minKey)
					case 4:
						if len(reference) == 0 {
							require.ErrorIs(tree.RemoveMax(), common.ErrNotFound)
							continue
						}
						maxKey := slices.Max(mapKeys(reference))
						require.NoError(tree.RemoveMax())
						delete(reference, maxKey)
					case 5:
						tree.Update(key, func(s string) string { return s + "+" })
						reference[key] += "+"
					case 6:
						tree.UpdateOrDefault(key, "d", func(s string) string { return s + "!" })
						if _, exists := reference[key]; !exists {
							reference[key] = "d"
						}
						reference[key] += "!"
					case 7:
						tree.UpdateOrSupply(key, func() string { return "s" }, func(s string) string { return s + "?" })
						if _, exists := reference[key]; !exists {
							reference[key] = "s"
						}
						reference[key] += "?"
					case 8:
						value := fmt.Sprint(rnd.Int())
						previous, exists := reference[key]
						require.Equal(previous, tree.PutIfAbsent(key, value))
						if !exists {
							reference[key] = value
						}
					case 9:
						got := tree.ComputeIfAbsent(key, func(k int) string { return fmt.Sprint("c", k) })
						if _, exists := reference[key]; !exists {
							reference[key] = fmt.Sprint("c", key)
						}
						require.Equal(reference[key], got)
					default:
						if len(reference) == 0 {
							continue
						}
						// Cloning must not disturb the invariants of the original.
						clone := factory.clone(tree)
						require.NoError(clone.Check())
						require.Equal(tree.Size(), clone.Size())
					}
					require.NoError(tree.Check())
					require.Equal(len(reference), tree.Size())
				}

				keys := mapKeys(reference)
				slices.Sort(keys)
				require.Equal(keys, tree.KeyList())
				for i, key := range keys {
					got, err := tree.Select(i)
					require.NoError(err)
					require.Equal(key, got)
					require.Equal(i, tree.Rank(key))
					value, found := tree.Get(key)
					require.True(found)
					require.Equal(reference[key], value)
				}
			}
		})
	}
}

func TestTree_ClonesAreIndependent(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			for i := range 100 {
				tree.Put(i, fmt.Sprint(i))
			}
			clone := factory.clone(tree)

			for i := range 50 {
				tree.Remove(i * 2)
			}
			tree.Put(1000, "new")
			clone.Put(1, "changed")

			require.Equal(51, tree.Size())
			require.Equal(100, clone.Size())
			require.NoError(tree.Check())
			require.NoError(clone.Check())

			got, _ := tree.Get(1)
			require.Equal("1", got)
			got, _ = clone.Get(1)
			require.Equal("changed", got)
			require.False(clone.Contains(1000))
		})
	}
}

func TestTree_IterationStopsEarly(t *testing.T) {
	for _, factory := range getTreeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			require := require.New(t)
			tree := factory.create()
			for i := range 10 {
				tree.Put(i, fmt.Sprint(i))
			}
			var seen []int
			for k, v := range tree.All() {
				require.Equal(fmt.Sprint(k), v)
				seen = append(seen, k)
				if k == 3 {
					break
				}
			}
			require.Equal([]int{0, 1, 2, 3}, seen)
		})
	}
}

func TestPersistent_IterationIsUnaffectedByLaterWrites(t *testing.T) {
	require := require.New(t)
	tree := NewPersistent[int, int](cmp.Compare[int])
	for i := range 10 {
		tree.Put(i, i)
	}
	all := tree.All()
	tree.Clear()
	tree.Put(42, 42)

	count := 0
	for range all {
		count++
	}
	require.Equal(10, count)
}

func TestPersistent_CloneSharesNodes(t *testing.T) {
	require := require.New(t)
	tree := NewPersistent[int, int](cmp.Compare[int])
	for i := range 10 {
		tree.Put(i, i)
	}
	clone := tree.Clone()
	require.Same(tree.root, clone.root)

	clone.Put(3, 30)
	require.NotSame(tree.root, clone.root)
	got, _ := tree.Get(3)
	require.Equal(3, got)
}

func TestPersistent_WriteOfUnchangedValueKeepsRoot(t *testing.T) {
	require := require.New(t)
	tree := NewPersistent[int, int](cmp.Compare[int])
	tree.Put(1, 1)
	tree.Put(2, 2)
	root := tree.root
	require.Equal(2, tree.PutIfAbsent(2, 5))
	require.Same(root, tree.root)
}

func TestMutable_CloneIsDeep(t *testing.T) {
	require := require.New(t)
	tree := NewMutable[int, int](cmp.Compare[int])
	for i := range 10 {
		tree.Put(i, i)
	}
	clone := tree.Clone()
	require.NotSame(tree.root, clone.root)
	tree.Put(3, 30)
	got, _ := clone.Get(3)
	require.Equal(3, got)
}

func TestTree_CheckDetectsViolations(t *testing.T) {
	require := require.New(t)
	tree := NewMutable[int, int](cmp.Compare[int])
	for i := range 10 {
		tree.Put(i, i)
	}
	require.NoError(tree.Check())

	tree.root.size++
	err := tree.Check()
	require.Error(err)
	require.Contains(err.Error(), "invalid size")
	tree.root.size--

	tree.root.color = red
	require.ErrorContains(tree.Check(), "root is red")
	tree.root.color = black

	tree.root.key = 100
	require.ErrorContains(tree.Check(), "lower bound")
}

func TestTree_GetMemoryFootprint(t *testing.T) {
	require := require.New(t)
	tree := NewPersistent[int, int](cmp.Compare[int])
	for i := range 4 {
		tree.Put(i, i)
	}
	mf := tree.GetMemoryFootprint()
	require.Greater(mf.Total(), uintptr(0))
	require.Contains(mf.String(), "(nodes: 4)")
}

func mapKeys[K comparable, V any](m map[K]V) []K {
	res := make([]K, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	return res
}
