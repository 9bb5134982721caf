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

package harnessnet

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/anvil-labs/harness/eventloop"
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/numcmd"
	"github.com/anvil-labs/harness/parser"
	"github.com/anvil-labs/harness/protocol"
	"github.com/anvil-labs/harness/wqueue"
)

// SlaveOption configures a Slave at construction.
type SlaveOption func(*Slave)

// WithPublicationSink registers sink to receive every PUBLICATION payload
// the master pushes outside the READY cycle (spec §6, Open Question D.2).
// Without this option PUBLICATION is not registered and a master that
// sends one triggers a fatal unrecognized-token condition.
func WithPublicationSink(sink PublicationSink) SlaveOption {
	return func(s *Slave) { s.pubSink = sink }
}

// WithClearCache wires CLEARCACHE (spec §C) to clear, in addition to the
// always-present HARNESS_INFO and RUNSCRIPT handlers.
func WithClearCache(clear func() error) SlaveOption {
	return func(s *Slave) { s.clearCache = clear }
}

// WithSlaveDebugWriter tees every byte strand received from the master,
// verbatim and unparsed, to w (spec §6 --debug_dir passthrough logging).
func WithSlaveDebugWriter(w io.Writer) SlaveOption {
	return func(s *Slave) { s.debug = w }
}

// Slave is the client side of the master/slave harness topology (spec
// §4.9): it dials the master, answers HARNESS_INFO with its own identity,
// and dispatches RUNSCRIPT bodies to scripts registered via RegisterScript.
type Slave struct {
	fatal    protocol.FatalFunc
	id       string
	sutCount int

	mu      sync.Mutex
	scripts map[string]ScriptFunc

	pubSink    PublicationSink
	clearCache func() error
	debug      io.Writer

	loop *eventloop.Loop
	wq   wqueue.Queue
}

// NewSlave returns a Slave identifying itself as id with sutCount attached
// SUT processes, reporting fatal harness-net conditions through fatal.
func NewSlave(fatal protocol.FatalFunc, id string, sutCount int, opts ...SlaveOption) *Slave {
	s := &Slave{
		fatal:    fatal,
		id:       id,
		sutCount: sutCount,
		scripts:  make(map[string]ScriptFunc),
		loop:     eventloop.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterScript binds name so a master's "RUNSCRIPT\n<name>\n<args>" body
// invokes fn with everything after the script-name line.
func (s *Slave) RegisterScript(name string, fn ScriptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[name] = fn
}

func (s *Slave) lookupScript(name string) (ScriptFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.scripts[name]
	return fn, ok
}

// Connect dials addr, registers the connection with the slave's event
// loop, and wires the inbound COMMAND receiver and outbound READY cadence.
// It returns once the connection is established; any failure afterward is
// reported through fatal, matching spec §4.9's "an EOF from any peer
// disconnection is a fatal condition."
func (s *Slave) Connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("harnessnet: dial master: %w", err)
	}

	fdID := s.loop.Add(conn)
	s.wq = s.loop.GetWriteQueue(fdID)

	recv := numcmd.NewReceiver(s.fatal)
	recv.Register("HARNESS_INFO", s.harnessInfoFactory())
	recv.Register("RUNSCRIPT", s.runScriptFactory())
	if s.clearCache != nil {
		recv.Register("CLEARCACHE", numcmd.NewClearCacheHandler(s.clearCache))
	}

	d := protocol.NewDispatcher(s.wq, s.fatal)
	d.RegisterStateless("COMMAND", recv)
	if s.pubSink != nil {
		d.Register("PUBLICATION", newPublicationFactory(s.pubSink))
	}

	rh := protocol.NewReadyHandler(s.wq)
	d.OnChildDone(rh.OnChildDone)

	var popts []parser.Option
	if s.debug != nil {
		popts = append(popts, parser.WithDebugWriter(s.debug))
	}
	p := parser.New(d, popts...)

	s.loop.RegisterFileDataCallback(fdID, func(data []byte) {
		p.Feed(data)
	})
	s.loop.RegisterEOFCallback(fdID, func(err error) {
		s.fatal("harnessnet: master connection closed: " + err.Error())
	})

	return nil
}

// Close closes the underlying connection and drains its write queue via
// the event loop.
func (s *Slave) Close() error {
	return s.loop.ExitLoopAndWait()
}

func (s *Slave) harnessInfoFactory() numcmd.Factory {
	return func() numcmd.NumberedCommandHandler {
		return harnessInfoHandler{id: s.id, sutCount: s.sutCount}
	}
}

type harnessInfoHandler struct {
	id       string
	sutCount int
}

func (h harnessInfoHandler) Execute(ctx *numcmd.HandlerContext, body *knot.Knot) {
	ctx.WriteResults(knot.FromOwned([]byte(fmt.Sprintf("%s %d\n", h.id, h.sutCount))))
	ctx.Done()
}

func (s *Slave) runScriptFactory() numcmd.Factory {
	return func() numcmd.NumberedCommandHandler {
		return &runScriptHandler{slave: s}
	}
}

// runScriptHandler implements the RUNSCRIPT command per the normalized
// two-response contract of Open Question D.1: it fires a single
// RESULTS/ENDRESULTS acknowledgement immediately, then reports completion
// as an EVENTMSG on the same command number once the script returns,
// preserving numcmd.Sender's one-done-future-per-SendCommand bijection.
type runScriptHandler struct {
	slave *Slave
}

func (h *runScriptHandler) Execute(ctx *numcmd.HandlerContext, body *knot.Knot) {
	name, args, err := parseRunScript(body)
	if err != nil {
		ctx.WriteResults(knot.FromOwned([]byte("FAILED\n" + err.Error() + "\nENDFAILED\n")))
		ctx.Done()
		return
	}

	fn, ok := h.slave.lookupScript(name)
	if !ok {
		ctx.WriteResults(knot.FromOwned([]byte("FAILED\nno such script: " + name + "\nENDFAILED\n")))
		ctx.Done()
		return
	}

	ctx.WriteResults(knot.New())

	go func() {
		defer ctx.Done()
		if err := fn(args); err != nil {
			ctx.EmitEvent("RUNSCRIPT_FAILED", err.Error())
			return
		}
		ctx.EmitEvent("RUNSCRIPT_DONE", "")
	}()
}

// parseRunScript splits a RUNSCRIPT command body ("RUNSCRIPT\n<name>\n
// <args...>") into the script name and the remaining body passed to it.
func parseRunScript(body *knot.Knot) (name string, args *knot.Knot, err error) {
	b := body.Bytes()
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return "", nil, fmt.Errorf("malformed RUNSCRIPT body")
	}
	rest := b[i+1:]

	j := bytes.IndexByte(rest, '\n')
	if j < 0 {
		return "", nil, fmt.Errorf("missing script name in RUNSCRIPT body")
	}

	name = string(rest[:j])
	args = knot.FromOwned(append([]byte(nil), rest[j+1:]...))
	return name, args, nil
}
