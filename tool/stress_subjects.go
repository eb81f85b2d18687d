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
	"errors"
	"fmt"
	"iter"
	"maps"
	"math/rand"

	"github.com/0xsoniclabs/objstate/collection/bytearray"
	"github.com/0xsoniclabs/objstate/collection/intmap"
	"github.com/0xsoniclabs/objstate/collection/treearray"
	"github.com/0xsoniclabs/objstate/collection/treemap"
	"github.com/0xsoniclabs/objstate/collection/treeset"
)

// stressSubject is a collection under test paired with a reference model
// receiving the same operations.
type stressSubject interface {
	// apply performs a random operation on the collection and the model.
	apply(rnd *rand.Rand) error
	// check verifies the structural invariants of the collection.
	check() error
	// verify compares the content of the collection with the model.
	verify() error
	// snapshot captures the current state; the returned function reports
	// whether the snapshot still matches the state at capture time.
	snapshot() func() error
}

var stressKinds = []string{"treemap", "intmap", "treeset", "treearray", "bytearray"}

var stressSubjects = map[string]func(maxKeys int) (stressSubject, error){
	"treemap":   newTreeMapSubject,
	"intmap":    newIntMapSubject,
	"treeset":   newTreeSetSubject,
	"treearray": newTreeArraySubject,
	"bytearray": newByteArraySubject,
}

var errDiverged = errors.New("collection diverged from reference")

// randomValue produces values different from the zero value, which would
// denote an absent value.
func randomValue(rnd *rand.Rand) int {
	return rnd.Intn(1_000) + 1
}

func increment(v int) int {
	return v + 1
}

func sameEntries(size int, entries iter.Seq2[int, int], want map[int]int) error {
	if size != len(want) {
		return fmt.Errorf("%w: size %d, wanted %d", errDiverged, size, len(want))
	}
	for k, v := range entries {
		if w, found := want[k]; !found || w != v {
			return fmt.Errorf("%w: entry %d -> %d, wanted %d (present: %t)", errDiverged, k, v, w, found)
		}
	}
	return nil
}

// --- treemap ---

type treeMapSubject struct {
	m       *treemap.Map[int, int]
	model   map[int]int
	maxKeys int
}

func newTreeMapSubject(maxKeys int) (stressSubject, error) {
	m, err := treemap.New[int, int]()
	if err != nil {
		return nil, err
	}
	return &treeMapSubject{m: m, model: map[int]int{}, maxKeys: maxKeys}, nil
}

func (s *treeMapSubject) apply(rnd *rand.Rand) error {
	key := rnd.Intn(s.maxKeys)
	switch rnd.Intn(6) {
	case 0, 1:
		value := randomValue(rnd)
		s.model[key] = value
		return s.m.Put(key, value)
	case 2:
		_, want := s.model[key]
		delete(s.model, key)
		removed, err := s.m.Remove(key)
		if err == nil && removed != want {
			err = fmt.Errorf("%w: removal of %d reported %t", errDiverged, key, removed)
		}
		return err
	case 3:
		s.model[key]++
		return s.m.Update(key, increment)
	case 4:
		value := randomValue(rnd)
		if _, found := s.model[key]; !found {
			s.model[key] = value
		}
		_, err := s.m.PutIfAbsent(key, value)
		return err
	default:
		if len(s.model) == 0 {
			return nil
		}
		first, err := s.m.Min()
		if err != nil {
			return err
		}
		delete(s.model, first)
		return s.m.RemoveMin()
	}
}

func (s *treeMapSubject) check() error {
	return s.m.Check()
}

func (s *treeMapSubject) verify() error {
	return sameEntries(s.m.Size(), s.m.All(), s.model)
}

func (s *treeMapSubject) snapshot() func() error {
	view, want := s.m.Snapshot(), maps.Clone(s.model)
	return func() error {
		return sameEntries(view.Size(), view.All(), want)
	}
}

// --- intmap ---

type intMapSubject struct {
	m       *intmap.IntMap[int]
	model   map[int]int
	maxKeys int
}

func newIntMapSubject(maxKeys int) (stressSubject, error) {
	return &intMapSubject{m: intmap.New[int](), model: map[int]int{}, maxKeys: maxKeys}, nil
}

func (s *intMapSubject) apply(rnd *rand.Rand) error {
	// Negative keys are valid in integer maps.
	key := rnd.Intn(2*s.maxKeys) - s.maxKeys
	switch rnd.Intn(6) {
	case 0, 1:
		value := randomValue(rnd)
		s.model[key] = value
		s.m.Put(key, value)
	case 2:
		_, want := s.model[key]
		delete(s.model, key)
		if removed := s.m.Remove(key); removed != want {
			return fmt.Errorf("%w: removal of %d reported %t", errDiverged, key, removed)
		}
	case 3:
		def := randomValue(rnd)
		if _, found := s.model[key]; !found {
			s.model[key] = def
		}
		s.model[key]++
		s.m.UpdateOrDefault(key, def, increment)
	case 4:
		value := randomValue(rnd)
		if _, found := s.model[key]; !found {
			s.model[key] = value
		}
		if got := s.m.ComputeIfAbsent(key, func(int) int { return value }); got != s.model[key] {
			return fmt.Errorf("%w: computed %d for key %d, wanted %d", errDiverged, got, key, s.model[key])
		}
	default:
		if len(s.model) == 0 {
			return nil
		}
		last, err := s.m.Max()
		if err != nil {
			return err
		}
		delete(s.model, last)
		return s.m.RemoveMax()
	}
	return nil
}

func (s *intMapSubject) check() error {
	return s.m.Check()
}

func (s *intMapSubject) verify() error {
	return sameEntries(s.m.Size(), s.m.All(), s.model)
}

func (s *intMapSubject) snapshot() func() error {
	view, want := s.m.Snapshot(), maps.Clone(s.model)
	return func() error {
		return sameEntries(view.Size(), view.All(), want)
	}
}

// --- treeset ---

type treeSetSubject struct {
	s       *treeset.Set[int]
	model   map[int]int
	maxKeys int
}

func newTreeSetSubject(maxKeys int) (stressSubject, error) {
	s, err := treeset.New[int]()
	if err != nil {
		return nil, err
	}
	return &treeSetSubject{s: s, model: map[int]int{}, maxKeys: maxKeys}, nil
}

func (s *treeSetSubject) apply(rnd *rand.Rand) error {
	value := rnd.Intn(s.maxKeys)
	switch rnd.Intn(4) {
	case 0, 1:
		s.model[value] = 1
		return s.s.Add(value)
	case 2:
		_, want := s.model[value]
		delete(s.model, value)
		removed, err := s.s.Remove(value)
		if err == nil && removed != want {
			err = fmt.Errorf("%w: removal of %d reported %t", errDiverged, value, removed)
		}
		return err
	default:
		if len(s.model) == 0 {
			return nil
		}
		rank := rnd.Intn(len(s.model))
		selected, err := s.s.Select(rank)
		if err != nil {
			return err
		}
		if got, err := s.s.Rank(selected); err != nil || got != rank {
			return errors.Join(err, fmt.Errorf("%w: rank of %d is %d, wanted %d", errDiverged, selected, got, rank))
		}
		return nil
	}
}

func (s *treeSetSubject) check() error {
	return s.s.Check()
}

func setEntries(values iter.Seq[int]) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for v := range values {
			if !yield(v, 1) {
				return
			}
		}
	}
}

func (s *treeSetSubject) verify() error {
	return sameEntries(s.s.Size(), setEntries(s.s.All()), s.model)
}

func (s *treeSetSubject) snapshot() func() error {
	view, want := s.s.Snapshot(), maps.Clone(s.model)
	return func() error {
		return sameEntries(view.Size(), setEntries(view.All()), want)
	}
}

// --- treearray ---

type treeArraySubject struct {
	a     *treearray.Array[int]
	model map[int]int
}

func newTreeArraySubject(maxKeys int) (stressSubject, error) {
	a, err := treearray.New[int](maxKeys)
	if err != nil {
		return nil, err
	}
	return &treeArraySubject{a: a, model: map[int]int{}}, nil
}

func (s *treeArraySubject) apply(rnd *rand.Rand) error {
	index := rnd.Intn(s.a.Length())
	switch rnd.Intn(5) {
	case 0, 1:
		value := randomValue(rnd)
		s.model[index] = value
		return s.a.Set(index, value)
	case 2:
		delete(s.model, index)
		return s.a.Remove(index)
	case 3:
		def := randomValue(rnd)
		if _, found := s.model[index]; !found {
			s.model[index] = def
		}
		s.model[index]++
		return s.a.UpdateOrSupply(index, func() int { return def }, increment)
	default:
		value := randomValue(rnd)
		_, found := s.model[index]
		if !found {
			s.model[index] = value
		}
		previous, err := s.a.SetIfAbsent(index, value)
		if err == nil && (previous != 0) != found {
			err = fmt.Errorf("%w: slot %d reported previous value %d", errDiverged, index, previous)
		}
		return err
	}
}

func (s *treeArraySubject) check() error {
	return s.a.Check()
}

func sameSlots(length int, materialized int, slots iter.Seq2[int, int], want map[int]int) error {
	if materialized != len(want) {
		return fmt.Errorf("%w: %d materialized slots, wanted %d", errDiverged, materialized, len(want))
	}
	count := 0
	for i, v := range slots {
		if v != want[i] {
			return fmt.Errorf("%w: slot %d holds %d, wanted %d", errDiverged, i, v, want[i])
		}
		count++
	}
	if count != length {
		return fmt.Errorf("%w: iterated %d slots, wanted %d", errDiverged, count, length)
	}
	return nil
}

func (s *treeArraySubject) verify() error {
	return sameSlots(s.a.Length(), s.a.Materialized(), s.a.All(), s.model)
}

func (s *treeArraySubject) snapshot() func() error {
	view, want := s.a.Snapshot(), maps.Clone(s.model)
	return func() error {
		return sameSlots(view.Length(), view.Materialized(), view.All(), want)
	}
}

// --- bytearray ---

type byteArraySubject struct {
	a     *bytearray.ByteArray
	model []byte
}

func newByteArraySubject(maxKeys int) (stressSubject, error) {
	a, err := bytearray.New(maxKeys)
	if err != nil {
		return nil, err
	}
	return &byteArraySubject{a: a, model: make([]byte, maxKeys)}, nil
}

func (s *byteArraySubject) apply(rnd *rand.Rand) error {
	index := rnd.Intn(len(s.model))
	if rnd.Intn(2) == 0 {
		// Includes 0, which resets the slot.
		value := byte(rnd.Intn(256))
		s.model[index] = value
		return s.a.Set(index, value)
	}
	s.model[index] += 3
	return s.a.Update(index, func(b byte) byte { return b + 3 })
}

func (s *byteArraySubject) check() error {
	return s.a.Check()
}

func (s *byteArraySubject) verify() error {
	if got := s.a.ToSlice(); !bytes.Equal(got, s.model) {
		return fmt.Errorf("%w: got %x, wanted %x", errDiverged, got, s.model)
	}
	return nil
}

func (s *byteArraySubject) snapshot() func() error {
	view, want := s.a.Snapshot(), bytes.Clone(s.model)
	return func() error {
		if got := view.ToSlice(); !bytes.Equal(got, want) {
			return fmt.Errorf("%w: got %x, wanted %x", errDiverged, got, want)
		}
		return nil
	}
}
