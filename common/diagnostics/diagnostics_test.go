// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package diagnostics

import (
	"errors"
	"net/http"
	_ "net/http/pprof"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runWithDiagnostics(t *testing.T, action cli.ActionFunc, args ...string) error {
	t.Helper()
	flags := NewFlags()
	app := &cli.App{
		Action: AddPerformanceDiagnosticsAction(action, flags),
		Flags:  flags.List(),
	}
	return app.Run(append([]string{"cmd"}, args...))
}

func TestAddPerformanceDiagnosticsAction_StartsRequestedDiagnostics(t *testing.T) {
	dir := t.TempDir()
	called := false
	action := func(ctx *cli.Context) error {
		require.FileExists(t, path.Join(dir, "cpu.profile"))
		require.FileExists(t, path.Join(dir, "tracer.out"))

		var statusCode int
		var lastErr error
		wait := 100 * time.Millisecond
		for i := 0; i < 10 && statusCode != http.StatusOK; i++ {
			resp, err := http.Get("http://localhost:6061/debug/pprof/")
			lastErr = err
			if resp != nil {
				statusCode = resp.StatusCode
				resp.Body.Close()
			}
			time.Sleep(wait)
			wait *= 2
		}
		require.NoError(t, lastErr)
		require.Equal(t, http.StatusOK, statusCode)

		called = true
		return nil
	}

	err := runWithDiagnostics(t, action,
		"--diagnostic-port", "6061",
		"--cpuprofile", path.Join(dir, "cpu.profile"),
		"--tracefile", path.Join(dir, "tracer.out"),
		"--memprofile", path.Join(dir, "heap.profile"),
	)
	require.NoError(t, err)
	require.True(t, called, "action should be called")
	require.FileExists(t, path.Join(dir, "heap.profile"))
}

func TestAddPerformanceDiagnosticsAction_NoDiagnosticsByDefault(t *testing.T) {
	called := false
	err := runWithDiagnostics(t, func(*cli.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestAddPerformanceDiagnosticsAction_ActionErrorsArePropagated(t *testing.T) {
	injected := errors.New("injected")
	err := runWithDiagnostics(t, func(*cli.Context) error {
		return injected
	})
	require.ErrorIs(t, err, injected)
}

func TestAddPerformanceDiagnosticsAction_InvalidProfileTargetFails(t *testing.T) {
	called := false
	err := runWithDiagnostics(t, func(*cli.Context) error {
		called = true
		return nil
	}, "--cpuprofile", "/invalid/path/does/not/exist/cpu.profile")
	require.Error(t, err)
	require.False(t, called)
}
