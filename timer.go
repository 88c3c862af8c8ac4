// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scico

import "time"

// Timer is a cumulative elapsed-time accumulator. It tolerates repeated
// Start/Stop cycles, which the solvers use to exclude callback execution
// from the reported iteration time.
//
// The zero value is a stopped timer with zero accumulated time.
type Timer struct {
	total   time.Duration
	started time.Time
	running bool
}

// Start begins or resumes accumulation. Calling Start on a running timer is
// a no-op.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.started = time.Now()
	t.running = true
}

// Stop pauses accumulation, folding the in-flight interval into the running
// total. Calling Stop on a stopped timer is a no-op.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.total += time.Since(t.started)
	t.running = false
}

// Reset stops the timer and clears the accumulated total.
func (t *Timer) Reset() {
	t.total = 0
	t.running = false
}

// Elapsed returns the accumulated time, including the currently in-flight
// interval if the timer is running.
func (t *Timer) Elapsed() time.Duration {
	if t.running {
		return t.total + time.Since(t.started)
	}
	return t.total
}
