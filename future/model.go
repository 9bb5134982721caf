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

// Package future implements a write-once value cell (Future[T]) and its
// many-producers-one-consumer variant (AggregatingFuture[R,P]). All
// operations are serialized by one internal lock per instance: a sync.Mutex
// guarding a single value slot, with a sync.Cond for waiters.
package future

import "sync"

// Future is a write-once cell. Fire must be called exactly once; a second
// call panics, since it is a programming error in the caller (spec: "fatal
// on second call") rather than a recoverable runtime condition.
type Future[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	fired bool
	value T
	cbs   []func(T)
}

// New returns an unfired Future.
func New[T any]() *Future[T] {
	f := &Future[T]{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Fire sets the value and wakes every waiter and callback exactly once.
// Registered callbacks run synchronously on the firing goroutine, in
// registration order.
func (f *Future[T]) Fire(v T) {
	f.mu.Lock()
	if f.fired {
		f.mu.Unlock()
		panic("future: Fire called twice")
	}

	f.fired = true
	f.value = v
	cbs := f.cbs
	f.cbs = nil
	f.mu.Unlock()

	f.cond.Broadcast()

	for _, cb := range cbs {
		cb(v)
	}
}

// Fired reports whether Fire has already been called.
func (f *Future[T]) Fired() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fired
}

// Wait blocks until Fire has been called.
func (f *Future[T]) Wait() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for !f.fired {
		f.cond.Wait()
	}
}

// Value blocks until fired, then returns the value.
func (f *Future[T]) Value() T {
	f.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// AddCallback registers f to run exactly once: immediately (synchronously,
// on the calling goroutine) if already fired, or on the firing goroutine
// at firing time otherwise.
func (f *Future[T]) AddCallback(cb func(T)) {
	f.mu.Lock()
	if f.fired {
		v := f.value
		f.mu.Unlock()
		cb(v)
		return
	}

	f.cbs = append(f.cbs, cb)
	f.mu.Unlock()
}
