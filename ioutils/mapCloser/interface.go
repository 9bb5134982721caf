/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package mapCloser aggregates the file-backed handles a harness process
// opens at startup (log hooks, wire-debug writers) behind a single Close,
// and closes them early if the owning context is cancelled first.
package mapCloser

import (
	"context"
	"io"
)

// Closer collects io.Closer instances opened over the life of a process
// and closes them together, either on an explicit Close or when ctx is
// cancelled.
type Closer interface {
	// Add registers clo for cleanup. A no-op once the Closer has closed.
	Add(clo ...io.Closer)

	// Close closes every registered closer and returns their aggregated
	// errors, if any. Safe to call more than once; later calls return nil.
	Close() error
}

// New returns a Closer that also closes everything registered with it as
// soon as ctx is done.
func New(ctx context.Context) Closer {
	c := &closer{done: ctx.Done()}
	go c.watch()
	return c
}
