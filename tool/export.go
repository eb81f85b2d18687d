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
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"path/filepath"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/collection/bytearray"
	"github.com/0xsoniclabs/objstate/collection/treemap"
	"github.com/0xsoniclabs/objstate/common/future"
	"github.com/0xsoniclabs/objstate/common/result"
	"github.com/0xsoniclabs/objstate/objstore"
	"github.com/urfave/cli/v2"
)

var (
	dbFlag = cli.StringFlag{
		Name:     "db",
		Usage:    "the directory of the object store",
		Required: true,
	}
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "the object store backend, leveldb or sqlite",
		Value: "leveldb",
	}
	entriesFlag = cli.IntFlag{
		Name:  "entries",
		Usage: "the number of random balances to export",
		Value: 1_000,
	}
	printFlag = cli.BoolFlag{
		Name:  "print",
		Usage: "prints all imported balances",
	}
)

var ExportCmd = cli.Command{
	Action: withDiagnostics(doExport),
	Name:   "export",
	Usage:  "encodes a random balance map and code array and writes them to an object store",
	Flags: []cli.Flag{
		&dbFlag,
		&backendFlag,
		&entriesFlag,
		&seedFlag,
	},
}

var ImportCmd = cli.Command{
	Action: withDiagnostics(doImport),
	Name:   "import",
	Usage:  "reads the objects written by export back from an object store and verifies them",
	Flags: []cli.Flag{
		&dbFlag,
		&backendFlag,
		&printFlag,
	},
}

var (
	balancesKey = []byte("balances")
	codeKey     = []byte("code")
)

type balances = *treemap.Map[string, *big.Int]

func newExportRegistry() *codec.Registry {
	registry := codec.NewDefaultRegistry()
	codec.RegisterCodec[balances](registry, treemap.Codec[string, *big.Int]{})
	codec.RegisterCodec[*bytearray.ByteArray](registry, bytearray.Codec{})
	return registry
}

func openStore(c *cli.Context) (objstore.Store, error) {
	dir := c.String(dbFlag.Name)
	switch backend := c.String(backendFlag.Name); backend {
	case "leveldb":
		return objstore.OpenLevelDbStore(dir)
	case "sqlite":
		return objstore.OpenSqliteStore(filepath.Join(dir, "objects.sqlite"))
	default:
		return nil, fmt.Errorf("unknown backend %q, supported: leveldb, sqlite", backend)
	}
}

func doExport(c *cli.Context) (err error) {
	entries := c.Int(entriesFlag.Name)
	if entries < 0 {
		return fmt.Errorf("invalid number of entries: %d", entries)
	}
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()
	return exportObjects(NewLogTo(c.App.ErrWriter), store, entries, c.Int64(seedFlag.Name))
}

func exportObjects(logger *Log, store objstore.Store, entries int, seed int64) error {
	rnd := rand.New(rand.NewSource(seed))
	accounts, err := treemap.New[string, *big.Int]()
	if err != nil {
		return err
	}
	progress := logger.NewProgressTracker("generated %d balances, %.2f balances/s", 100_000)
	for i := 0; i < entries; i++ {
		balance := new(big.Int).Lsh(big.NewInt(rnd.Int63n(1<<62)+1), uint(rnd.Intn(64)))
		if err := accounts.Put(fmt.Sprintf("account-%08d", i), balance); err != nil {
			return err
		}
		progress.Step(1)
	}

	code, err := bytearray.NewSupplied(entries, func(int) byte {
		return byte(rnd.Intn(256))
	})
	if err != nil {
		return err
	}

	registry := newExportRegistry()
	if err := objstore.Save(store, balancesKey, registry, accounts); err != nil {
		return fmt.Errorf("failed to export balances: %w", err)
	}
	if err := objstore.Save(store, codeKey, registry, code); err != nil {
		return fmt.Errorf("failed to export code: %w", err)
	}
	logger.Printf("Exported %d balances and %d code bytes", accounts.Size(), code.Length())
	return nil
}

func doImport(c *cli.Context) (err error) {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	accounts, err := importObjects(NewLogTo(c.App.ErrWriter), store)
	if err != nil {
		return err
	}
	if c.Bool(printFlag.Name) {
		for account, balance := range accounts.All() {
			if _, err := fmt.Fprintf(c.App.Writer, "%s: %v\n", account, balance); err != nil {
				return err
			}
		}
	}
	return nil
}

func importObjects(logger *Log, store objstore.Store) (balances, error) {
	err := store.Scan(nil, func(key, value []byte) error {
		logger.Printf("Found object %q with %d compressed bytes", key, len(value))
		return nil
	})
	if err != nil {
		return nil, err
	}

	registry := newExportRegistry()
	pendingAccounts := future.Run(func() result.Result[balances] {
		return result.Of(objstore.Load[balances](store, balancesKey, registry))
	})
	pendingCode := future.Run(func() result.Result[*bytearray.ByteArray] {
		return result.Of(objstore.Load[*bytearray.ByteArray](store, codeKey, registry))
	})

	accounts, err := pendingAccounts.Await().Get()
	if err != nil {
		return nil, fmt.Errorf("failed to import balances: %w", err)
	}
	code, err := pendingCode.Await().Get()
	if err != nil {
		return nil, fmt.Errorf("failed to import code: %w", err)
	}
	if err := errors.Join(accounts.Check(), code.Check()); err != nil {
		return nil, fmt.Errorf("imported objects are corrupted: %w", err)
	}

	total := new(big.Int)
	for balance := range accounts.Values() {
		total.Add(total, balance)
	}
	logger.Printf("Imported %d balances with a total of %v and %d code bytes", accounts.Size(), total, code.Length())
	return accounts, nil
}
