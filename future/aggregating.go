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

package future

import "sync"

// Folder accumulates partial contributions of type P and produces one
// final R. Implementations are the "subclass hook" spec §4.8 describes as
// Finalize(); AddPartial must be safe to call from any goroutine.
type Folder[R any, P any] interface {
	AddPartial(p P)
	Finalize() R
}

// AggregatingFuture lets many producer goroutines each contribute a partial
// result, folded by a Folder into the one value delivered through the
// embedded Future when Done is called.
type AggregatingFuture[R any, P any] struct {
	mu  sync.Mutex
	fut *Future[R]
	fld Folder[R, P]
}

// NewAggregating returns an AggregatingFuture folding partial results with fld.
func NewAggregating[R any, P any](fld Folder[R, P]) *AggregatingFuture[R, P] {
	return &AggregatingFuture[R, P]{
		fut: New[R](),
		fld: fld,
	}
}

// AddPartialResult folds p into the accumulator under the future's lock.
// Safe to call concurrently from any number of goroutines, any time before
// Done.
func (a *AggregatingFuture[R, P]) AddPartialResult(p P) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fld.AddPartial(p)
}

// Done finalizes the accumulator and fires the underlying Future exactly
// once. Calling Done twice panics, via Future.Fire's own double-fire guard.
func (a *AggregatingFuture[R, P]) Done() {
	a.mu.Lock()
	r := a.fld.Finalize()
	a.mu.Unlock()

	a.fut.Fire(r)
}

// Future returns the single-value Future that Done fires.
func (a *AggregatingFuture[R, P]) Future() *Future[R] {
	return a.fut
}
