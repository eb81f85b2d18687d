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

import "errors"

// The error taxonomy shared by all collections and the codec. Callers are
// expected to test for these using errors.Is, since most reported errors wrap
// one of them with additional context.
var (
	// ErrNotFound is reported by queries whose precondition is violated, e.g.
	// the minimum of an empty collection or a floor key that does not exist.
	ErrNotFound = errors.New("no such element")

	// ErrOutOfRange is reported for ranks outside [0, size) and for indices
	// outside the declared length of a fixed-length array.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidArgument is reported for forbidden nil keys or values and for
	// malformed decoder input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedClass is reported if no codec is registered for a type.
	ErrUnsupportedClass = errors.New("unsupported class")
)
