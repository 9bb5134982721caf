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

// Package harnessnet implements the master/slave TCP harness topology of
// spec §4.9: a Master listener that wraps every accepted connection in a
// protocol stack (parser + dispatcher + numbered-command sender), performs
// the HARNESS_INFO handshake, and indexes slaves by id; and a Slave stack
// that reverses direction, answering HARNESS_INFO and dispatching RUNSCRIPT
// bodies to a registered ScriptFunc. Grounded on socket/server/tcp and
// socket/client/tcp's connection-lifecycle idiom (IsRunning/IsGone/
// OpenConnections) and on _examples/original_source/cpp/test-harness/ta3/
// {master-harness,slave-harness,slave-harness-network-stack}.cc for the wire
// contract.
package harnessnet

import (
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/numcmd"
)

// ScriptFunc executes one RUNSCRIPT invocation: args is everything in the
// command body after the script-name line. Returning an error causes the
// slave to report it through a RUNSCRIPT_FAILED completion EVENTMSG instead
// of RUNSCRIPT_DONE.
type ScriptFunc func(args *knot.Knot) error

// SlaveHandle is what a master-side test script uses to drive one
// identified slave connection.
type SlaveHandle interface {
	ID() string
	SUTCount() int
	Sender() numcmd.Sender

	// PublishPayload pushes a PUBLICATION frame to the slave, out-of-band
	// between READY cycles (spec §6, Open Question D.2).
	PublishPayload(payload *knot.Knot)
}
