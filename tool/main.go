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
	"fmt"
	"os"

	"github.com/0xsoniclabs/objstate/common/diagnostics"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./tool <command> <flags>

var diagnosticsFlags = diagnostics.NewFlags()

var commands = []*cli.Command{
	&EncodeCmd,
	&DecodeCmd,
	&StressCmd,
	&ExportCmd,
	&ImportCmd,
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "objstate",
		Usage:     "toolbox for ordered collections and their binary encoding",
		Copyright: "(c) 2025 Sonic Operations Ltd",
		Flags:     diagnosticsFlags.List(),
		Commands:  commands,
	}
}

// withDiagnostics enables the diagnostics requested through the app-level
// flags while the action runs.
func withDiagnostics(action cli.ActionFunc) cli.ActionFunc {
	return diagnostics.AddPerformanceDiagnosticsAction(action, diagnosticsFlags)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
