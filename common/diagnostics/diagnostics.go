// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package diagnostics adds optional performance instrumentation to command
// line actions: a pprof server, CPU profiles, execution traces, and heap
// profiles, each controlled by its own flag.
package diagnostics

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/urfave/cli/v2"
)

// Flags names the command line flags controlling the diagnostics.
type Flags struct {
	DiagnosticPort *cli.IntFlag
	CpuProfile     *cli.StringFlag
	Trace          *cli.StringFlag
	HeapProfile    *cli.StringFlag
}

// NewFlags creates the default set of diagnostics flags.
func NewFlags() Flags {
	return Flags{
		DiagnosticPort: &cli.IntFlag{
			Name:  "diagnostic-port",
			Usage: "enable hosting of a realtime diagnostic server by providing a port",
		},
		CpuProfile: &cli.StringFlag{
			Name:  "cpuprofile",
			Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		},
		Trace: &cli.StringFlag{
			Name:  "tracefile",
			Usage: "sets the target file for traces to, disabled if empty",
		},
		HeapProfile: &cli.StringFlag{
			Name:  "memprofile",
			Usage: "sets the target file for a heap profile taken after the command, disabled if empty",
		},
	}
}

// List returns all flags, to be registered with an app or command.
func (f Flags) List() []cli.Flag {
	return []cli.Flag{f.DiagnosticPort, f.CpuProfile, f.Trace, f.HeapProfile}
}

// AddPerformanceDiagnosticsAction wraps an action such that the diagnostics
// requested through the given flags are active while it runs.
func AddPerformanceDiagnosticsAction(action cli.ActionFunc, flags Flags) cli.ActionFunc {
	return func(context *cli.Context) (err error) {
		startDiagnosticServer(context.Int(flags.DiagnosticPort.Name))

		if file := strings.TrimSpace(context.String(flags.CpuProfile.Name)); file != "" {
			if err := startCpuProfiler(file); err != nil {
				return err
			}
			defer pprof.StopCPUProfile()
		}

		if file := strings.TrimSpace(context.String(flags.Trace.Name)); file != "" {
			if err := startTracer(file); err != nil {
				return err
			}
			defer trace.Stop()
		}

		if file := strings.TrimSpace(context.String(flags.HeapProfile.Name)); file != "" {
			defer func() {
				err = errors.Join(err, writeHeapProfile(file))
			}()
		}

		return action(context)
	}
}

func startDiagnosticServer(port int) {
	if port <= 0 || port >= (1<<16) {
		return
	}
	fmt.Printf("Starting diagnostic server at port http://localhost:%d\n", port)
	fmt.Printf("(see https://pkg.go.dev/net/http/pprof#hdr-Usage_examples for usage examples)\n")
	fmt.Printf("Block and mutex sampling rate is set to 100%% for diagnostics, which may impact overall performance\n")
	go func() {
		addr := fmt.Sprintf("localhost:%d", port)
		log.Println(http.ListenAndServe(addr, nil))
	}()
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)
}

func startCpuProfiler(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return errors.Join(fmt.Errorf("could not start CPU profile: %w", err), f.Close())
	}
	return nil
}

func startTracer(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(f); err != nil {
		return errors.Join(fmt.Errorf("failed to start trace: %w", err), f.Close())
	}
	return nil
}

func writeHeapProfile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create heap profile: %w", err)
	}
	runtime.GC()
	return errors.Join(pprof.WriteHeapProfile(f), f.Close())
}
