// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Adds or checks the license header of all source files of the project.
// Usage: go run ./scripts/license --dir . [--check]

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

const licenseHeader = `Copyright (c) 2025 Sonic Operations Ltd

Use of this software is governed by the Business Source License included
in the LICENSE file and at soniclabs.com/bsl11.

Change Date: 2028-4-16

On the date above, in accordance with the Business Source License, use of
this software will be governed by the GNU Lesser General Public License v3.`

var errMissingHeader = errors.New("missing or incorrect license header")

var (
	dirFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the directory to process recursively",
		Required: true,
	}
	checkFlag = cli.BoolFlag{
		Name:  "check",
		Usage: "only report files lacking the header, do not modify them",
	}
)

// commentPrefixes maps file extensions and exact file names to the line
// comment prefix used for the header.
var commentPrefixes = map[string]string{
	".go":    "//",
	".yml":   "#",
	"go.mod": "//",
}

// ignored lists path fragments excluded from processing.
var ignored = []string{"/build/", "/_examples/", ".pb.go"}

func main() {
	app := &cli.App{
		Name:   "license",
		Usage:  "adds or checks license headers",
		Flags:  []cli.Flag{&dirFlag, &checkFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	dir := c.String(dirFlag.Name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("invalid target directory: %q", dir)
	}
	files, err := collectFiles(dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, file := range files {
		if err := processFile(file.path, withPrefix(licenseHeader, file.prefix), c.Bool(checkFlag.Name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type sourceFile struct {
	path   string
	prefix string
}

func collectFiles(dir string) ([]sourceFile, error) {
	var files []sourceFile
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != dir && isIgnored(filepath.ToSlash(path)+"/") {
				return fs.SkipDir
			}
			return nil
		}
		if isIgnored(filepath.ToSlash(path)) {
			return nil
		}
		prefix, found := commentPrefixes[entry.Name()]
		if !found {
			prefix, found = commentPrefixes[filepath.Ext(path)]
		}
		if found {
			files = append(files, sourceFile{path: path, prefix: prefix})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}
	return files, nil
}

func isIgnored(path string) bool {
	for _, fragment := range ignored {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

func withPrefix(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(prefix+" "+line, " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

// processFile makes sure the file starts with the given header. Outdated
// headers of the same owner are replaced. In check mode, files are reported
// instead of modified.
func processFile(path, header string, checkOnly bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(content)
	if strings.HasPrefix(text, header) || strings.HasPrefix(text, "// Code generated") {
		return nil
	}
	if checkOnly {
		return fmt.Errorf("%w: %s", errMissingHeader, path)
	}

	lines := strings.Split(text, "\n")
	if strings.Contains(lines[0], "Sonic Operations Ltd") {
		for i, line := range lines {
			if strings.TrimSpace(line) == "" {
				text = strings.Join(lines[i+1:], "\n")
				break
			}
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(header+"\n"+text), info.Mode().Perm())
}
