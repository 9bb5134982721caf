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

package protocol

import (
	"bytes"
	"sync"

	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/wqueue"
)

// Dispatcher is a parser.Sink that routes by trigger token. At most one
// child Extension is active at a time; while a child is active every line
// and raw block goes to it, not back through the token table, until the
// child's Session calls Done.
type Dispatcher struct {
	mu        sync.Mutex
	wq        wqueue.Queue
	fatal     FatalFunc
	table     map[string]Factory
	active    Extension
	session   *session
	childDoneHook func()
}

// OnChildDone registers fn to run every time a top-level child session
// ends (the extension it dispatched to called Session.Done). Typically
// wired to a ReadyHandler's OnChildDone so READY follows every completed
// command.
func (d *Dispatcher) OnChildDone(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.childDoneHook = fn
}

// NewDispatcher returns a Dispatcher writing outbound bytes to wq and
// reporting protocol violations through fatal.
func NewDispatcher(wq wqueue.Queue, fatal FatalFunc) *Dispatcher {
	return &Dispatcher{
		wq:    wq,
		fatal: fatal,
		table: make(map[string]Factory),
	}
}

// Register binds token to fct: the next unclaimed line beginning with token
// starts a new session against an extension fct() constructs.
func (d *Dispatcher) Register(token string, fct Factory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table[token] = fct
}

// RegisterStateless binds token to a single, shared Extension instance.
func (d *Dispatcher) RegisterStateless(token string, ext Extension) {
	d.Register(token, func() Extension { return ext })
}

// WriteQueue implements Session for the dispatcher's own outbound stream.
func (d *Dispatcher) WriteQueue() wqueue.Queue { return d.wq }

func firstToken(line *knot.Knot) string {
	b := line.Bytes()
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, "\r\n"))
}

// LineReceived implements parser.Sink.
func (d *Dispatcher) LineReceived(line *knot.Knot) {
	d.mu.Lock()

	if d.active != nil {
		act := d.active
		d.mu.Unlock()
		act.LineReceived(line)
		return
	}

	tok := firstToken(line)
	fct, ok := d.table[tok]
	if !ok {
		d.mu.Unlock()
		d.fatal("unrecognized trigger token: " + tok)
		return
	}

	ext := fct()
	sess := &session{d: d, ext: ext}
	d.active = ext
	d.session = sess
	d.mu.Unlock()

	ext.OnProtocolStart(sess, line)
}

// RawReceived implements parser.Sink.
func (d *Dispatcher) RawReceived(raw *knot.Knot) {
	d.mu.Lock()
	act := d.active
	d.mu.Unlock()

	if act == nil {
		d.fatal("raw data received with no active protocol extension")
		return
	}

	act.RawReceived(raw)
}

// childDone is called by a session exactly once, when its extension calls
// Session.Done. It clears the active child so the next top-level line is
// routed by token again.
func (d *Dispatcher) childDone(s *session) {
	d.mu.Lock()
	if d.session != s {
		d.mu.Unlock()
		return
	}
	d.active = nil
	d.session = nil
	hook := d.childDoneHook
	d.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// session is the concrete Session handed to each extension. It forwards
// Done to the owning Dispatcher exactly once.
type session struct {
	d    *Dispatcher
	ext  Extension
	once sync.Once
}

func (s *session) WriteQueue() wqueue.Queue { return s.d.WriteQueue() }

func (s *session) Done() {
	s.once.Do(func() {
		s.d.childDone(s)
	})
}

// ReadyHandler wraps a Dispatcher's top-level session lifecycle with the
// READY cadence: one READY line is written on construction, and one more
// after every child extension finishes (Session.Done), so a peer watching
// the stream knows exactly when it may submit the next top-level command.
type ReadyHandler struct {
	wq wqueue.Queue
}

var readyLine = knot.FromBytes([]byte("READY\n"))

// NewReadyHandler writes the initial READY line and returns a handler whose
// OnChildDone must be called after each dispatched extension's session ends.
func NewReadyHandler(wq wqueue.Queue) *ReadyHandler {
	h := &ReadyHandler{wq: wq}
	h.emit()
	return h
}

// OnChildDone emits the next READY line. Wire this as the fatal-free tail of
// a Dispatcher child session, e.g. by wrapping Session.Done in the extension
// factory, or by calling it from the dispatcher's childDone hook.
func (h *ReadyHandler) OnChildDone() { h.emit() }

func (h *ReadyHandler) emit() {
	if !h.wq.Write(readyLine) {
		h.wq.WriteWithBlock(readyLine)
	}
}

// ShutdownHandler is the SHUTDOWN extension: on receipt it waits for
// drain (via the supplied callback, typically a numcmd.Receiver's
// WaitForAllCommands) and then closes the write side of the stream by
// calling the queue's Close.
type ShutdownHandler struct {
	waitDrain func()
}

// NewShutdownHandler returns a Factory suitable for Dispatcher.Register on
// the "SHUTDOWN" token. waitDrain should block until every in-flight
// numbered command has completed.
func NewShutdownHandler(waitDrain func()) Factory {
	return func() Extension {
		return &ShutdownHandler{waitDrain: waitDrain}
	}
}

func (s *ShutdownHandler) OnProtocolStart(sess Session, firstLine *knot.Knot) {
	if s.waitDrain != nil {
		s.waitDrain()
	}
	sess.WriteQueue().Close()
	sess.Done()
}

func (s *ShutdownHandler) LineReceived(line *knot.Knot) {}
func (s *ShutdownHandler) RawReceived(raw *knot.Knot)   {}
