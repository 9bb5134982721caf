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

package eventloop

import (
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/anvil-labs/harness/wqueue"
)

type fdEntry struct {
	fd FD
	wq wqueue.Queue

	mu     sync.Mutex
	onData DataFunc
	onEOF  EOFFunc
}

// Loop multiplexes any number of registered FDs. Call Add for each one
// immediately after it's opened/accepted, then RegisterFileDataCallback and
// RegisterEOFCallback before the peer could plausibly have sent anything
// (true for every harness topology in this module: the local side finishes
// wiring before a handshake byte can arrive).
type Loop struct {
	mu      sync.Mutex
	entries map[int]*fdEntry
	nextID  int
	wg      sync.WaitGroup
	closed  bool
}

// New returns an empty, running Loop.
func New() *Loop {
	return &Loop{entries: make(map[int]*fdEntry)}
}

// Add registers fd with the loop, creates its bound WriteQueue, and starts
// its reader goroutine. Returns the id used by every other Loop method.
func (l *Loop) Add(fd FD) int {
	wq := wqueue.New(fd, wqueue.WithErrorFunc(func(err error) {
		_ = fd.Close()
	}))

	e := &fdEntry{fd: fd, wq: wq}

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.entries[id] = e
	l.mu.Unlock()

	l.wg.Add(1)
	go l.readLoop(e)

	return id
}

// RegisterFileDataCallback sets the callback invoked for each chunk read
// from id.
func (l *Loop) RegisterFileDataCallback(id int, cb DataFunc) {
	if e := l.entry(id); e != nil {
		e.mu.Lock()
		e.onData = cb
		e.mu.Unlock()
	}
}

// RegisterEOFCallback sets the callback invoked once id's Read returns an
// error.
func (l *Loop) RegisterEOFCallback(id int, cb EOFFunc) {
	if e := l.entry(id); e != nil {
		e.mu.Lock()
		e.onEOF = cb
		e.mu.Unlock()
	}
}

// GetWriteQueue returns id's bound WriteQueue.
func (l *Loop) GetWriteQueue(id int) wqueue.Queue {
	if e := l.entry(id); e != nil {
		return e.wq
	}
	return nil
}

func (l *Loop) entry(id int) *fdEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[id]
}

func (l *Loop) readLoop(e *fdEntry) {
	defer l.wg.Done()

	buf := make([]byte, 64*1024)
	for {
		n, err := e.fd.Read(buf)
		if n > 0 {
			e.mu.Lock()
			cb := e.onData
			e.mu.Unlock()
			if cb != nil {
				cb(buf[:n])
			}
		}
		if err != nil {
			e.mu.Lock()
			cb := e.onEOF
			e.mu.Unlock()
			if cb != nil {
				cb(err)
			}
			return
		}
	}
}

// ExitLoop schedules termination: every registered fd is closed, which
// unblocks its reader goroutine with an error that triggers its EOF
// callback. It does not wait for the goroutines or WriteQueues to drain —
// use ExitLoopAndWait for that. Closes run concurrently (a master shutting
// down dozens of slave connections shouldn't serialize on each one's
// Close), collected under a mutex so no error is lost to a race on the
// shared slice, then flattened into a single aggregated error.
func (l *Loop) ExitLoop() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	entries := make([]*fdEntry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	l.mu.Unlock()

	var (
		errMu sync.Mutex
		errs  []error
		wg    sync.WaitGroup
	)
	for _, e := range entries {
		wg.Add(1)
		go func(e *fdEntry) {
			defer wg.Done()
			if err := e.fd.Close(); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(e)
	}
	wg.Wait()

	var result error
	for _, err := range errs {
		result = multierror.Append(result, err)
	}
	return result
}

// ExitLoopAndWait first closes every WriteQueue, draining its pending
// bytes into the still-open descriptor, then calls ExitLoop and blocks
// until every reader goroutine has returned (spec §4.2: "wait until the
// loop finishes and all WriteQueues for its fds have drained"), returning
// any aggregated close error from ExitLoop.
func (l *Loop) ExitLoopAndWait() error {
	l.mu.Lock()
	entries := make([]*fdEntry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	l.mu.Unlock()

	for _, e := range entries {
		e.wq.Close()
	}

	err := l.ExitLoop()
	l.wg.Wait()

	return err
}
