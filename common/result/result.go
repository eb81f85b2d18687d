// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package result

import "errors"

// Result pairs the outcome of a unit of work with the error it may have
// produced. Results are used to ship outcomes of independent workers, like the
// per-collection runs of a stress test, back through a single channel.
type Result[T any] struct {
	value T
	err   error
}

// Ok creates a successful Result carrying the given value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err creates a failed Result carrying the given error.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Of creates a Result from a conventional (value, error) return pair.
func Of[T any](value T, err error) Result[T] {
	return Result[T]{value: value, err: err}
}

// Get returns the value and error contained in the Result.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Collect gathers the values of all successful results in order and joins
// the errors of all failed ones.
func Collect[T any](results ...Result[T]) ([]T, error) {
	values := make([]T, 0, len(results))
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		values = append(values, r.value)
	}
	return values, errors.Join(errs...)
}
