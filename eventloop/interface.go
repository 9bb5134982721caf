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

// Package eventloop implements spec §4.2's event loop: the single
// coordination point that turns a set of file descriptors (child-process
// stdio pipes or TCP sockets, per spec §1(c)) each into one registered
// data/EOF callback pair plus one bound WriteQueue. The spec describes one
// dedicated I/O thread multiplexing every registered fd; Go has no portable
// user-space epoll without an OS-specific syscall dependency the teacher
// corpus never reaches for, so this translates that design into the
// idiomatic Go shape instead — one reader goroutine per registered fd,
// coordinated by a shared WaitGroup for ExitLoopAndWait — while keeping the
// documented call surface identical. See DESIGN.md for the rationale.
package eventloop

import (
	"io"

	"github.com/anvil-labs/harness/wqueue"
)

// FD is anything the loop can read from, write to (via its WriteQueue), and
// close on shutdown: a net.Conn or an os.Pipe/exec.Cmd stdio pipe both
// satisfy it without adaptation.
type FD interface {
	io.Reader
	io.Writer
	io.Closer
}

// DataFunc is invoked once per chunk read from a registered fd, with the
// raw bytes of that chunk (spec: "cb(strand) is called for each chunk
// read"). The slice is only valid for the duration of the call.
type DataFunc func(data []byte)

// EOFFunc is invoked at most once per registered fd, when Read returns a
// non-nil error (io.EOF or otherwise); err is that error.
type EOFFunc func(err error)
