// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package future provides placeholders for values computed concurrently.
//
// A Future is produced together with a Promise; the producer fulfills the
// promise exactly once and the consumer awaits the future exactly once:
//
//	promise, f := future.Create[T]()
//	go func() { promise.Fulfill(compute()) }()
//	...
//	value := f.Await()
//
// Run combines both steps for the common case of a single function.
package future

// Promise is the producer side of a Future.
type Promise[T any] struct {
	c chan<- T
}

// Future is the consumer side of a concurrently computed value.
type Future[T any] struct {
	c <-chan T
}

// Create returns a linked Promise and Future. Fulfilling the promise never
// blocks.
func Create[T any]() (Promise[T], Future[T]) {
	c := make(chan T, 1)
	return Promise[T]{c: c}, Future[T]{c: c}
}

// Immediate returns a Future that already holds the given value.
func Immediate[T any](value T) Future[T] {
	promise, future := Create[T]()
	promise.Fulfill(value)
	return future
}

// Run evaluates compute in a new goroutine.
func Run[T any](compute func() T) Future[T] {
	promise, future := Create[T]()
	go func() {
		promise.Fulfill(compute())
	}()
	return future
}

// Fulfill provides the value of the linked Future. It must be called at most
// once.
func (p Promise[T]) Fulfill(value T) {
	p.c <- value
	close(p.c)
}

// Await blocks until the value is available. A Future can be awaited once.
func (f Future[T]) Await() T {
	return <-f.c
}

// Then derives a Future holding transform applied to the value of f.
func Then[A, B any](f Future[A], transform func(A) B) Future[B] {
	return Run(func() B {
		return transform(f.Await())
	})
}
