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
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/0xsoniclabs/objstate/common/result"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"
)

var (
	opsFlag = cli.IntFlag{
		Name:  "ops",
		Usage: "the number of random operations applied to each collection",
		Value: 10_000,
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "the seed of the random operation sequences",
		Value: 42,
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "the number of collections stressed in parallel, defaults to the number of CPUs",
	}
	maxKeysFlag = cli.IntFlag{
		Name:  "max-keys",
		Usage: "the upper bound of the key space of each collection",
		Value: 1_000,
	}
)

var StressCmd = cli.Command{
	Action: withDiagnostics(doStress),
	Name:   "stress",
	Usage:  "applies random operations to all collection kinds, checking their invariants after each step",
	Flags: []cli.Flag{
		&opsFlag,
		&seedFlag,
		&workersFlag,
		&maxKeysFlag,
	},
}

const (
	// snapshotPeriod is the number of operations between two snapshots.
	snapshotPeriod = 100
	// bytesPerEntry is a generous estimate of the memory used by a key in
	// all collection kinds together, including the reference models.
	bytesPerEntry = 1024
)

type stressConfig struct {
	ops     int
	seed    int64
	workers int
	maxKeys int
}

type stressStats struct {
	kind        string
	operations  int
	snapshots   int
	interrupted bool
}

type stressJob struct {
	kind string
	seed int64
}

func doStress(c *cli.Context) error {
	config := stressConfig{
		ops:     c.Int(opsFlag.Name),
		seed:    c.Int64(seedFlag.Name),
		workers: c.Int(workersFlag.Name),
		maxKeys: c.Int(maxKeysFlag.Name),
	}
	if config.ops < 0 {
		return fmt.Errorf("invalid number of operations: %d", config.ops)
	}
	if config.maxKeys <= 0 {
		return fmt.Errorf("invalid number of keys: %d", config.maxKeys)
	}
	if config.workers <= 0 {
		config.workers = runtime.NumCPU()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runStress(ctx, NewLogTo(c.App.ErrWriter), config)
}

func runStress(ctx context.Context, logger *Log, config stressConfig) error {
	total, free := memory.TotalMemory(), memory.FreeMemory()
	logger.Printf("System memory: total %d MiB, free %d MiB", total>>20, free>>20)
	if limit := limitKeys(free, config.workers); limit < uint64(config.maxKeys) {
		logger.Printf("Reducing key space from %d to %d keys to fit into free memory", config.maxKeys, limit)
		config.maxKeys = int(limit)
	}

	jobs := make(chan stressJob)
	results := make(chan result.Result[stressStats])
	var wg sync.WaitGroup
	for i := 0; i < config.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- result.Of(stressCollection(ctx, job, config))
			}
		}()
	}

	numJobs := config.workers * len(stressSubjects)
	go func() {
		defer close(jobs)
		for i := 0; i < numJobs; i++ {
			kind := stressKinds[i%len(stressKinds)]
			select {
			case jobs <- stressJob{kind: kind, seed: config.seed + int64(i)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	progress := logger.NewProgressTracker("completed %d collections, %.2f collections/s", len(stressKinds))
	var all []result.Result[stressStats]
	for res := range results {
		all = append(all, res)
		progress.Step(1)
	}
	progress.Summary()

	stats, err := result.Collect(all...)
	operations, snapshots, interrupted := 0, 0, false
	for _, s := range stats {
		operations += s.operations
		snapshots += s.snapshots
		interrupted = interrupted || s.interrupted
	}
	if interrupted || len(all) < numJobs {
		logger.Printf("Interrupted, stopped after %d of %d collections", len(all), numJobs)
	}
	logger.Printf("Applied %d operations and verified %d snapshots on %d collections", operations, snapshots, len(stats))
	return err
}

// limitKeys computes the largest key space per collection for which the given
// number of workers fits into half of the available memory.
func limitKeys(free uint64, workers int) uint64 {
	if workers <= 0 {
		workers = 1
	}
	return max(1, free/2/bytesPerEntry/uint64(workers))
}

// stressCollection runs the random operation sequence of the given job,
// checking invariants after every operation and verifying snapshots
// periodically. An interrupted run is not an error.
func stressCollection(ctx context.Context, job stressJob, config stressConfig) (stressStats, error) {
	stats := stressStats{kind: job.kind}
	factory, found := stressSubjects[job.kind]
	if !found {
		return stats, fmt.Errorf("unknown collection kind %q", job.kind)
	}
	subject, err := factory(config.maxKeys)
	if err != nil {
		return stats, err
	}
	rnd := rand.New(rand.NewSource(job.seed))

	var verifySnapshot func() error
	for i := 0; i < config.ops; i++ {
		if ctx.Err() != nil {
			stats.interrupted = true
			return stats, nil
		}
		if err := subject.apply(rnd); err != nil {
			return stats, fmt.Errorf("%s, seed %d, operation %d: %w", job.kind, job.seed, i, err)
		}
		stats.operations++
		if err := subject.check(); err != nil {
			return stats, fmt.Errorf("%s, seed %d, invalid after operation %d: %w", job.kind, job.seed, i, err)
		}
		if i%snapshotPeriod == 0 {
			if verifySnapshot != nil {
				if err := verifySnapshot(); err != nil {
					return stats, fmt.Errorf("%s, seed %d, snapshot modified by operation %d: %w", job.kind, job.seed, i, err)
				}
				stats.snapshots++
			}
			if err := subject.verify(); err != nil {
				return stats, fmt.Errorf("%s, seed %d, diverged after operation %d: %w", job.kind, job.seed, i, err)
			}
			verifySnapshot = subject.snapshot()
		}
	}
	if verifySnapshot != nil {
		if err := verifySnapshot(); err != nil {
			return stats, fmt.Errorf("%s, seed %d, final snapshot modified: %w", job.kind, job.seed, err)
		}
		stats.snapshots++
	}
	if err := subject.verify(); err != nil {
		return stats, fmt.Errorf("%s, seed %d, diverged at end of run: %w", job.kind, job.seed, err)
	}
	return stats, nil
}
