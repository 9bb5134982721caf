/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package readymon implements the client-side ready monitor: a gate in
// front of a write queue that only releases the next queued send once the
// SUT's previous "READY" line has been observed. Grounded on wqueue's
// single-consumer-goroutine idiom, generalized with a small ready/not-ready
// state machine and a FIFO of sends waiting on it.
package readymon

import "github.com/anvil-labs/harness/knot"

// Monitor gates writes behind a peer's READY cadence.
type Monitor interface {
	// BlockUntilReadyAndSend blocks the caller until k has actually been
	// written to the underlying queue.
	BlockUntilReadyAndSend(k *knot.Knot)

	// ScheduleSend enqueues k without blocking. If cb is non-nil, it is
	// invoked just before k is written (on whatever goroutine performs
	// the write — the caller's, if ready; the goroutine calling OnReady,
	// otherwise).
	ScheduleSend(k *knot.Knot, cb func())

	// OnReady must be called once for every "READY" line the peer
	// emits; it is the monitor's only input besides Schedule/
	// BlockUntilReadyAndSend.
	OnReady()

	// IsReady reports the monitor's current state, for tests and
	// diagnostics.
	IsReady() bool
}
