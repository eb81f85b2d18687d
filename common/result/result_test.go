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

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult_Ok_ProducesResultWithValue(t *testing.T) {
	result := Ok[int](42)
	value, err := result.Get()
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestResult_Err_ProducesResultWithError(t *testing.T) {
	issue := fmt.Errorf("test error")
	result := Err[int](issue)
	value, err := result.Get()
	require.ErrorIs(t, err, issue)
	require.Zero(t, value)
}

func TestResult_Of_KeepsValueAndError(t *testing.T) {
	issue := fmt.Errorf("partial")
	value, err := Of("x", issue).Get()
	require.Equal(t, "x", value)
	require.ErrorIs(t, err, issue)
}

func TestCollect_ReturnsValuesOfSuccessfulResults(t *testing.T) {
	values, err := Collect(Ok(1), Ok(2), Ok(3))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, values)
}

func TestCollect_JoinsAllErrors(t *testing.T) {
	issueA := fmt.Errorf("issue A")
	issueB := fmt.Errorf("issue B")
	values, err := Collect(Ok(1), Err[int](issueA), Ok(3), Err[int](issueB))
	require.Equal(t, []int{1, 3}, values)
	require.ErrorIs(t, err, issueA)
	require.ErrorIs(t, err, issueB)
}

func TestCollect_NoResults(t *testing.T) {
	values, err := Collect[int]()
	require.NoError(t, err)
	require.Empty(t, values)
}
