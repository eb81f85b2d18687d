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
	"io"
	"log"
	"time"
)

// Log is the logger used by all commands for reporting progress.
type Log struct {
	log *log.Logger
}

func NewLog() *Log {
	return NewLogTo(log.Writer())
}

func NewLogTo(out io.Writer) *Log {
	return &Log{log: log.New(out, "", log.LstdFlags)}
}

func (l *Log) Printf(format string, v ...any) {
	l.log.Printf(format, v...)
}

// NewProgressTracker creates a tracker printing the given format with the
// number of processed items and the rate per second every step items.
func (l *Log) NewProgressTracker(format string, step int) *ProgressTracker {
	now := time.Now()
	return &ProgressTracker{
		log:    l,
		format: format,
		step:   step,
		start:  now,
		last:   now,
	}
}

type ProgressTracker struct {
	log     *Log
	format  string
	step    int
	counter int
	start   time.Time
	last    time.Time
}

func (p *ProgressTracker) Step(n int) {
	for i := 0; i < n; i++ {
		p.counter++
		if p.step > 0 && p.counter%p.step == 0 {
			now := time.Now()
			rate := float64(p.step) / now.Sub(p.last).Seconds()
			p.log.Printf(p.format, p.counter, rate)
			p.last = now
		}
	}
}

// Count returns the number of steps recorded so far.
func (p *ProgressTracker) Count() int {
	return p.counter
}

// Summary logs the total number of steps and the overall rate.
func (p *ProgressTracker) Summary() {
	elapsed := time.Since(p.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.counter) / elapsed
	}
	p.log.Printf(p.format, p.counter, rate)
}
