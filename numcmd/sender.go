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

package numcmd

import (
	"strconv"
	"strings"
	"sync"

	"github.com/anvil-labs/harness/future"
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/protocol"
	"github.com/anvil-labs/harness/wqueue"
)

// EventFunc receives an EVENTMSG notification, whether it arrived nested
// inside an active RESULTS stream or as a standalone top-level frame.
type EventFunc func(n int, eventID string, info string)

type sender struct {
	wq      wqueue.Queue
	fatal   protocol.FatalFunc
	onEvent EventFunc

	mu      sync.Mutex
	next    int
	pending map[int]*PendingCommand

	// decode state for the currently active RESULTS session, if any.
	sess          protocol.Session
	n             int
	body          *knot.Knot
	awaitingEvent bool
}

// NewSender returns a Sender writing COMMAND frames to wq. Register the
// returned value on the peer's inbound dispatcher under "RESULTS"; if
// onEvent is non-nil, also register EventTopLevelFactory under "EVENTMSG".
func NewSender(wq wqueue.Queue, fatal protocol.FatalFunc, onEvent EventFunc) Sender {
	return &sender{
		wq:      wq,
		fatal:   fatal,
		onEvent: onEvent,
		pending: make(map[int]*PendingCommand),
	}
}

func (s *sender) SendCommand(body *knot.Knot) *PendingCommand {
	s.mu.Lock()
	n := s.next
	s.next++
	pc := &PendingCommand{
		Number: n,
		Start:  future.New[StartResult](),
		Done:   future.New[DoneResult](),
	}
	s.pending[n] = pc
	s.mu.Unlock()

	w := s.wq.GetStreamingWriter()
	w.Write(commandHeader(n))
	w.Write(body)
	w.Write(endCommandLine)
	w.Done()

	return pc
}

func (s *sender) OnProtocolStart(sess protocol.Session, firstLine *knot.Knot) {
	tok, rest := splitFirstToken(firstLine.Bytes())
	if tok != "RESULTS" {
		s.fatal("numcmd: expected RESULTS, got " + tok)
		return
	}

	n, err := strconv.Atoi(string(rest))
	if err != nil {
		s.fatal("numcmd: malformed results number: " + string(rest))
		return
	}

	s.mu.Lock()
	pc, ok := s.pending[n]
	s.mu.Unlock()

	if !ok {
		s.fatal("numcmd: RESULTS for unknown command number " + string(rest))
		return
	}

	s.sess = sess
	s.n = n
	s.body = knot.New()
	s.awaitingEvent = false

	pc.Start.Fire(StartResult{})
}

func (s *sender) LineReceived(line *knot.Knot) {
	if s.awaitingEvent {
		s.deliverEventDetail(s.n, line)
		s.awaitingEvent = false
		return
	}

	if line.Equal([]byte("EVENTMSG")) {
		s.awaitingEvent = true
		return
	}

	if line.Equal([]byte("ENDRESULTS")) {
		s.finish()
		return
	}

	s.body.AppendKnot(line)
	s.body.AppendBytes(lf)
}

func (s *sender) RawReceived(raw *knot.Knot) {
	s.body.AppendKnot(raw)
}

func (s *sender) finish() {
	sess := s.sess
	n := s.n
	body := s.body
	s.sess, s.body = nil, nil

	s.mu.Lock()
	pc, ok := s.pending[n]
	if ok {
		delete(s.pending, n)
	}
	s.mu.Unlock()

	sess.Done()

	if ok {
		pc.Done.Fire(DoneResult{Body: body})
	}
}

func (s *sender) deliverEventDetail(n int, detail *knot.Knot) {
	if s.onEvent == nil {
		return
	}

	fields := strings.SplitN(strings.TrimRight(string(detail.Bytes()), "\r\n"), " ", 3)
	if len(fields) < 2 {
		return
	}

	num, err := strconv.Atoi(fields[0])
	if err != nil {
		num = n
	}

	eventID := fields[1]
	info := ""
	if len(fields) == 3 {
		info = fields[2]
	}

	s.onEvent(num, eventID, info)
}

// EventTopLevelFactory returns a protocol.Factory for registering this
// sender's EVENTMSG handling as a top-level dispatcher trigger, for events
// that arrive outside any active RESULTS stream (spec §9 bullet 3).
func (s *sender) EventTopLevelFactory() protocol.Factory {
	return func() protocol.Extension {
		return &topLevelEvent{s: s}
	}
}

type topLevelEvent struct {
	s     *sender
	sess  protocol.Session
}

func (t *topLevelEvent) OnProtocolStart(sess protocol.Session, firstLine *knot.Knot) {
	t.sess = sess
}

func (t *topLevelEvent) LineReceived(line *knot.Knot) {
	t.s.deliverEventDetail(0, line)
	t.sess.Done()
}

func (t *topLevelEvent) RawReceived(raw *knot.Knot) {
	t.sess.Done()
}
