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

// Package numcmd implements the numbered-command protocol layered over a
// protocol.Dispatcher: COMMAND/ENDCOMMAND framing on the receiving side
// (Receiver) paired with a RESULTS-consuming request tracker on the sending
// side (Sender). Grounded on this module's named-component registry idiom
// (protocol.Dispatcher) composed with the future package's write-once value
// cell for the per-command start/done signals spec P7 requires.
package numcmd

import (
	"github.com/anvil-labs/harness/future"
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/protocol"
	"github.com/anvil-labs/harness/wqueue"
)

// ResultsWriter is the atomic-group handle a NumberedCommandHandler uses to
// stream a RESULTS body in chunks instead of materializing it up front.
type ResultsWriter interface {
	// Write enqueues a chunk of the RESULTS body.
	Write(k *knot.Knot)

	// Done writes "ENDRESULTS\n" and releases the underlying queue
	// reservation. Must be called exactly once, last.
	Done()
}

// HandlerContext is the handle a NumberedCommandHandler uses to reply and to
// signal its own completion. The receiver constructs one per command.
type HandlerContext struct {
	n    int
	wq   wqueue.Queue
	done func()
}

// Number returns the command number this context was created for.
func (c *HandlerContext) Number() int { return c.n }

// WriteResults atomically emits "RESULTS <n>\n" + body + "ENDRESULTS\n"
// through a StreamingWriter reservation on the write queue, blocking until
// the reservation is available, so the three parts go out contiguously.
func (c *HandlerContext) WriteResults(body *knot.Knot) {
	w := c.wq.GetStreamingWriter()
	w.Write(resultsHeader(c.n))
	w.Write(body)
	w.Write(endResultsLine)
	w.Done()
}

// GetStreamingWriter reserves the queue's atomic-group slot and immediately
// emits the "RESULTS <n>\n" prefix; the caller streams the body through the
// returned writer and finishes with Done.
func (c *HandlerContext) GetStreamingWriter() ResultsWriter {
	w := c.wq.GetStreamingWriter()
	w.Write(resultsHeader(c.n))
	return &resultsWriter{inner: w}
}

// EmitEvent writes "EVENTMSG\n<n> <eventID>[ <info>]\n" through the write
// queue, non-blocking with a blocking fallback.
func (c *HandlerContext) EmitEvent(eventID string, info string) {
	line := eventMsgLine(c.n, eventID, info)
	if !c.wq.Write(line) {
		c.wq.WriteWithBlock(line)
	}
}

// Done signals the receiver that this handler has finished; the handler's
// last call. Safe to call exactly once.
func (c *HandlerContext) Done() { c.done() }

// NumberedCommandHandler executes one decoded COMMAND body. Implementations
// must call ctx.Done() exactly once, as their last action.
type NumberedCommandHandler interface {
	Execute(ctx *HandlerContext, body *knot.Knot)
}

// Factory constructs a fresh NumberedCommandHandler for one command,
// selected by the first token of the command body.
type Factory func() NumberedCommandHandler

// StartResult is fired on the sender's start-future the moment a
// corresponding "RESULTS <n>" line is seen.
type StartResult struct{}

// DoneResult is fired on the sender's done-future once "ENDRESULTS" closes
// the body; Body holds everything between the RESULTS and ENDRESULTS lines,
// including a leading FAILED/ENDFAILED marker if the peer reported one.
type DoneResult struct {
	Body *knot.Knot
}

// PendingCommand is returned by Sender.SendCommand.
type PendingCommand struct {
	Number int
	Start  *future.Future[StartResult]
	Done   *future.Future[DoneResult]
}

// Receiver decodes COMMAND/ENDCOMMAND frames and dispatches each completed
// body to the NumberedCommandHandler its first token selects.
type Receiver interface {
	protocol.Extension

	// Register binds token to fct for the receiver's command-body
	// dispatch table (distinct from the protocol.Dispatcher's top-level
	// trigger-token table).
	Register(token string, fct Factory)

	// WaitForAllCommands blocks until every dispatched handler has
	// called its context's Done.
	WaitForAllCommands()

	// PendingCount reports how many handlers are currently executing.
	PendingCount() int
}

// Sender issues numbered commands over a write queue and resolves the
// matching RESULTS response through its own protocol.Extension, which the
// caller registers on the peer's inbound dispatcher under "RESULTS".
type Sender interface {
	protocol.Extension

	// SendCommand assigns the next command number, writes the
	// COMMAND/ENDCOMMAND frame, and returns the pending request.
	SendCommand(body *knot.Knot) *PendingCommand

	// EventTopLevelFactory returns a protocol.Factory for registering
	// this sender's EVENTMSG handling on the peer's outer dispatcher,
	// for events reported outside any active RESULTS stream.
	EventTopLevelFactory() protocol.Factory
}
