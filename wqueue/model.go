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

package wqueue

import (
	"sync"
	"sync/atomic"

	"github.com/anvil-labs/harness/knot"
)

type queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	out Sink

	deque    []*knot.Knot
	pending  int64
	max      int64
	blocked  int64
	closed   bool
	drained  chan struct{}
	onError  ErrorFunc
	writer   *streamingWriter
	metrics  *metrics
}

// Option configures a Queue at construction.
type Option func(*queue)

// WithMaximumPendingBytes sets the initial backpressure threshold.
func WithMaximumPendingBytes(n int64) Option {
	return func(q *queue) { q.max = n }
}

// WithErrorFunc installs the callback invoked when a write to the
// underlying Sink fails; per spec §7 this is a fatal condition and the
// callback is expected to terminate the owning process.
func WithErrorFunc(f ErrorFunc) Option {
	return func(q *queue) { q.onError = f }
}

// WithMetrics attaches Prometheus gauges tracking pending bytes and
// blocked-thread count, labeled by name (typically the fd or connection id).
func WithMetrics(name string) Option {
	return func(q *queue) { q.metrics = newMetrics(name) }
}

// New returns a Queue draining into out. The consumer goroutine starts
// immediately and runs until Close.
func New(out Sink, opts ...Option) Queue {
	q := &queue{
		out:     out,
		max:     1 << 20,
		drained: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	for _, o := range opts {
		o(q)
	}

	go q.run()

	return q
}

func (q *queue) Write(k *knot.Knot) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.writer != nil {
		return false
	}
	if q.pending+int64(k.Size()) > q.max {
		return false
	}

	q.enqueueLocked(k)
	return true
}

func (q *queue) WriteWithBlock(k *knot.Knot) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.blocked++
	q.reportBlocked()
	for !q.closed && (q.writer != nil || q.pending+int64(k.Size()) > q.max) {
		q.cond.Wait()
	}
	q.blocked--
	q.reportBlocked()

	if q.closed {
		return
	}

	q.enqueueLocked(k)
}

func (q *queue) GetStreamingWriter() StreamingWriter {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.blocked++
	q.reportBlocked()
	for q.writer != nil && !q.closed {
		q.cond.Wait()
	}
	q.blocked--
	q.reportBlocked()

	w := &streamingWriter{q: q}
	q.writer = w
	return w
}

func (q *queue) SetMaximumPendingBytes(n int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.max = n
	q.cond.Broadcast()
}

func (q *queue) NumBlockedThreads() int64 {
	return atomic.LoadInt64(&q.blocked)
}

func (q *queue) PendingBytes() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

func (q *queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	<-q.drained
}

// enqueueLocked appends k to the deque; caller holds q.mu.
func (q *queue) enqueueLocked(k *knot.Knot) {
	q.deque = append(q.deque, k)
	q.pending += int64(k.Size())
	q.reportPending()
	q.cond.Broadcast()
}

func (q *queue) reportPending() {
	if q.metrics != nil {
		q.metrics.pending.Set(float64(q.pending))
	}
}

func (q *queue) reportBlocked() {
	if q.metrics != nil {
		q.metrics.blocked.Set(float64(q.blocked))
	}
}

// run is the queue's single consumer goroutine: it is the only writer to
// q.out, preserving insertion-order FIFO delivery to the descriptor.
func (q *queue) run() {
	for {
		q.mu.Lock()
		for len(q.deque) == 0 && !q.closed {
			q.cond.Wait()
		}

		if len(q.deque) == 0 && q.closed {
			q.mu.Unlock()
			close(q.drained)
			return
		}

		item := q.deque[0]
		q.deque = q.deque[1:]
		q.mu.Unlock()

		_, err := item.WriteToFileDescriptor(q.out, item.Begin())

		q.mu.Lock()
		q.pending -= int64(item.Size())
		q.reportPending()
		q.cond.Broadcast()
		q.mu.Unlock()

		if err != nil && q.onError != nil {
			q.onError(err)
		}
	}
}

type streamingWriter struct {
	q *queue
}

func (w *streamingWriter) Write(k *knot.Knot) {
	w.q.mu.Lock()
	w.q.enqueueLocked(k)
	w.q.mu.Unlock()
}

func (w *streamingWriter) Done() {
	w.q.mu.Lock()
	w.q.writer = nil
	w.q.cond.Broadcast()
	w.q.mu.Unlock()
}
