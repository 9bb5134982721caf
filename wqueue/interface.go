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

// Package wqueue implements the per-descriptor write queue: a FIFO of
// pending Knots consumed by exactly one goroutine (the queue's own consumer,
// started by New),
// fed by any number of producer goroutines under a byte-count threshold.
// The design generalizes the single-consumer-goroutine idiom this module's
// io aggregator uses for "bytes into one io.Writer" to "Knots into one file
// descriptor", adding the StreamingWriter atomic-group reservation the
// harness wire protocol needs for interleave-free RESULTS streaming.
package wqueue

import (
	"io"

	"github.com/anvil-labs/harness/knot"
)

// ErrorFunc receives a fatal write error observed by the queue's consumer
// goroutine (spec §7: I/O errors on the event-loop thread are fatal).
type ErrorFunc func(err error)

// Queue is a per-descriptor FIFO of pending Knots.
type Queue interface {
	// Write enqueues k if doing so would not push pending bytes over the
	// configured maximum; otherwise it returns false and k is untouched
	// and still owned by the caller.
	Write(k *knot.Knot) bool

	// WriteWithBlock blocks the caller until pending bytes are at or
	// under the maximum (and no StreamingWriter is active) before
	// enqueuing. After Close it returns without enqueuing k.
	WriteWithBlock(k *knot.Knot)

	// GetStreamingWriter reserves the queue's one atomic-group slot,
	// blocking until any writer already active is Done. While held, Write
	// fails fast (returns false) for other producers; WriteWithBlock
	// still blocks them until the reservation is released.
	GetStreamingWriter() StreamingWriter

	// SetMaximumPendingBytes changes the backpressure threshold.
	SetMaximumPendingBytes(n int64)

	// NumBlockedThreads reports how many goroutines are currently
	// blocked in WriteWithBlock or GetStreamingWriter.
	NumBlockedThreads() int64

	// PendingBytes reports the current queued-byte total.
	PendingBytes() int64

	// Close stops accepting new writes, lets the consumer goroutine
	// drain everything already queued, then returns. It blocks until
	// drained.
	Close()
}

// StreamingWriter is a reserved atomic group: writes through it appear
// contiguous to the descriptor even while other producers contend for the
// same queue.
type StreamingWriter interface {
	// Write enqueues k as part of this writer's group. Unlike Queue.Write
	// it always succeeds — the writer already holds the queue's one
	// reservation slot.
	Write(k *knot.Knot)

	// Done releases the reservation, unblocking any producer waiting on
	// Queue.WriteWithBlock or Queue.GetStreamingWriter.
	Done()
}

// Sink is the minimal byte sink a Queue drains into; *os.File and net.Conn
// both satisfy it.
type Sink interface {
	io.Writer
}
