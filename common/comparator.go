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
	"cmp"
	"fmt"
	"reflect"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Comparator defines a total order on values of type K. The result is
// negative if a < b, zero if a == b, and positive if a > b.
type Comparator[K any] func(a, b K) int

// Comparable is implemented by key types providing their own natural order.
type Comparable[K any] interface {
	CompareTo(other K) int
}

// cmpComparable covers types like *big.Int and *uint256.Int which expose
// their order through a Cmp method.
type cmpComparable[K any] interface {
	Cmp(other K) int
}

// NaturalOrder returns the comparator for built-in ordered types.
func NaturalOrder[K constraints.Ordered]() Comparator[K] {
	return cmp.Compare[K]
}

// DefaultComparator resolves the ordering used for keys of type K when no
// explicit comparator is given. Types providing a CompareTo or Cmp method are
// ordered by it, built-in ordered kinds by their natural order, and objects
// carrying a storage identity by their creation order. Any other type is
// rejected with ErrInvalidArgument.
func DefaultComparator[K any]() (Comparator[K], error) {
	var zero K
	switch any(zero).(type) {
	case int:
		return any(Comparator[int](cmp.Compare[int])).(Comparator[K]), nil
	case int32:
		return any(Comparator[int32](cmp.Compare[int32])).(Comparator[K]), nil
	case int64:
		return any(Comparator[int64](cmp.Compare[int64])).(Comparator[K]), nil
	case uint32:
		return any(Comparator[uint32](cmp.Compare[uint32])).(Comparator[K]), nil
	case uint64:
		return any(Comparator[uint64](cmp.Compare[uint64])).(Comparator[K]), nil
	case string:
		return any(Comparator[string](cmp.Compare[string])).(Comparator[K]), nil
	}

	t := reflect.TypeFor[K]()
	switch {
	case t.Implements(reflect.TypeFor[Comparable[K]]()):
		return func(a, b K) int {
			return any(a).(Comparable[K]).CompareTo(b)
		}, nil
	case t.Implements(reflect.TypeFor[cmpComparable[K]]()):
		return func(a, b K) int {
			return any(a).(cmpComparable[K]).Cmp(b)
		}, nil
	case t.Implements(reflect.TypeFor[Identified]()):
		return func(a, b K) int {
			return cmp.Compare(
				any(a).(Identified).StorageIdentity(),
				any(b).(Identified).StorageIdentity(),
			)
		}, nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int())
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint())
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
		}, nil
	case reflect.String:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
		}, nil
	}
	return nil, fmt.Errorf("%w: no total order known for keys of type %v", ErrInvalidArgument, t)
}

// Identity is the creation-order identity of a persisted object. Identities
// handed out by the same allocator are unique and strictly increasing.
type Identity uint64

// Identified is implemented by objects without a natural order. Such objects
// are ordered by their identity, and thus by their creation order.
type Identified interface {
	StorageIdentity() Identity
}

// IdentityAllocator hands out fresh identities in creation order.
type IdentityAllocator struct {
	last atomic.Uint64
}

// Next returns an identity larger than all identities returned before.
func (a *IdentityAllocator) Next() Identity {
	return Identity(a.last.Add(1))
}

// Object can be embedded into types that should be usable as keys of ordered
// collections without providing an order of their own. Objects must be
// created through NewObject: the zero Object has no identity and is rejected
// as a key.
type Object struct {
	identity Identity
}

// NewObject creates an object with a fresh identity from the given allocator.
func NewObject(allocator *IdentityAllocator) Object {
	return Object{identity: allocator.Next()}
}

func (o Object) StorageIdentity() Identity {
	return o.identity
}

// IsUnidentified reports whether v is an Identified value that has not been
// assigned an identity. Identities start at 1.
func IsUnidentified[T any](v T) bool {
	id, ok := any(v).(Identified)
	return ok && !IsNil(v) && id.StorageIdentity() == 0
}

// IsNil reports whether v is a nil pointer, interface, map, slice, channel or
// function. Values of other kinds are never nil.
func IsNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// IsZero reports whether v is the zero value of its type. Collections use the
// zero value to represent a key or slot that is not bound to any value.
func IsZero[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	return !rv.IsValid() || rv.IsZero()
}
