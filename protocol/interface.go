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

// Package protocol implements the trigger-token dispatcher: a
// parser.Sink that routes each top-level line to the ProtocolExtension
// registered under its first whitespace-delimited token, then routes every
// subsequent line/raw call to that extension until it calls Session.Done.
// Grounded on this module's named-component registry idiom (a map from a
// string key to a constructible, lifecycle-bound object), generalized from
// "component name -> lifecycle object" to "trigger token -> protocol
// extension factory".
package protocol

import (
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/wqueue"
)

// Session is handed to an Extension at OnProtocolStart; it is the
// extension's only way back to the dispatcher and to the stream's write
// queue.
type Session interface {
	// Done ends this extension's session, returning dispatch control to
	// the parent scope. It is the extension's last call; exactly one
	// call per session.
	Done()

	// WriteQueue returns the write queue for the stream this dispatcher
	// is attached to.
	WriteQueue() wqueue.Queue
}

// Extension is a pluggable sub-protocol handler. A session begins with one
// OnProtocolStart call and ends with the extension calling Session.Done.
type Extension interface {
	OnProtocolStart(sess Session, firstLine *knot.Knot)
	LineReceived(line *knot.Knot)
	RawReceived(raw *knot.Knot)
}

// Factory constructs one Extension instance per session (a stateful
// extension). A stateless extension is registered via RegisterStateless,
// which wraps a single shared instance in a trivial factory.
type Factory func() Extension

// FatalFunc is invoked on a protocol violation: an unrecognized trigger
// token, or raw data received with no active child. Per spec §7 this is
// fatal; FatalFunc is expected to log and terminate the owning process.
type FatalFunc func(reason string)
