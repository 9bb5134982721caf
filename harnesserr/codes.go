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

// Package harnesserr registers the harness-wide CodeError taxonomy (spec
// §7's error classes) as a block of liberr.CodeError values, the way
// component-specific error blocks are registered elsewhere in this module's
// ancestry. A liberr.Error built from one of these codes (for example the
// parser's invalid RAW count) answers Code/IsCode against this taxonomy;
// most exported harness boundaries return plain errors.
package harnesserr

import liberr "github.com/anvil-labs/harness/errors"

const (
	// ProtocolViolation: unknown trigger token, raw data outside raw
	// mode, malformed count line, command number mismatch. Fatal.
	ProtocolViolation liberr.CodeError = iota + 4000
	// PeerClosed: EOF on a pipe or socket where more data was
	// contractually expected. Fatal.
	PeerClosed
	// ResourceExhaustion: cannot spawn thread, cannot open file. Fatal.
	ResourceExhaustion
	// TransientIO: a single read/write returning partial data, handled
	// locally by the event loop.
	TransientIO
	// ApplicationFailure: a RESULTS body containing FAILED/ENDFAILED;
	// surfaced verbatim to the caller, never fatal on its own.
	ApplicationFailure

	KnotError
	ParserError
	WriteQueueError
	DispatcherError
	WorkerPoolError
	FutureError
	HarnessNetError
)

var messages = map[liberr.CodeError]string{
	ProtocolViolation:  "protocol violation",
	PeerClosed:         "peer closed the connection",
	ResourceExhaustion: "resource exhaustion",
	TransientIO:        "transient I/O error",
	ApplicationFailure: "application-reported failure",
	KnotError:          "knot error",
	ParserError:        "parser error",
	WriteQueueError:    "write queue error",
	DispatcherError:    "dispatcher error",
	WorkerPoolError:    "worker pool error",
	FutureError:        "future error",
	HarnessNetError:    "harness network error",
}

func init() {
	liberr.RegisterIdFctMessage(ProtocolViolation, func(code liberr.CodeError) string {
		if m, ok := messages[code]; ok {
			return m
		}
		return liberr.NullMessage
	})
}

// IsFatal reports whether a code belongs to the error classes spec §7
// treats as fatal (terminates the owning process after logging).
func IsFatal(code liberr.CodeError) bool {
	switch code {
	case ProtocolViolation, PeerClosed, ResourceExhaustion:
		return true
	default:
		return false
	}
}
