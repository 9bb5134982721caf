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
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/anvil-labs/harness/eventloop"
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/numcmd"
	"github.com/anvil-labs/harness/parser"
	"github.com/anvil-labs/harness/protocol"
	"github.com/anvil-labs/harness/readymon"
	"github.com/anvil-labs/harness/wqueue"
)

type slaveConn struct {
	conn     net.Conn
	wq       wqueue.Queue
	sender   numcmd.Sender
	monitor  readymon.Monitor
	id       string
	sutCount int
}

func (s *slaveConn) ID() string            { return s.id }
func (s *slaveConn) SUTCount() int         { return s.sutCount }
func (s *slaveConn) Sender() numcmd.Sender { return s.sender }

// PublishPayload pushes a PUBLICATION frame (spec §6, Open Question D.2)
// carrying payload as its body. This is an out-of-band server-push, not a
// numbered command, so it has no RESULTS reply and no Future.
func (s *slaveConn) PublishPayload(payload *knot.Knot) {
	w := s.wq.GetStreamingWriter()
	w.Write(knot.FromBytes([]byte("PUBLICATION\nPAYLOAD\n")))
	w.Write(payload)
	w.Write(knot.FromBytes([]byte("ENDPAYLOAD\nENDPUBLICATION\n")))
	w.Done()
}

// MasterOption configures a Master at construction.
type MasterOption func(*Master)

// WithDebugWriter tees every byte strand received from every slave
// connection, verbatim and unparsed, to w (spec §6 --debug_dir
// passthrough logging).
func WithDebugWriter(w io.Writer) MasterOption {
	return func(m *Master) { m.debug = w }
}

// Master accepts slave connections, identifies each via a HARNESS_INFO
// command, and indexes them by the id the slave reports.
type Master struct {
	fatal      func(reason string)
	testLogDir string
	debug      io.Writer

	ln   net.Listener
	loop *eventloop.Loop

	mu     sync.Mutex
	cond   *sync.Cond
	byID   map[string]*slaveConn
	closed bool
	wg     sync.WaitGroup
}

// NewMaster returns a Master reporting fatal harness-net conditions (an EOF
// from a slave, a malformed HARNESS_INFO response) through fatal. testLogDir,
// if non-empty, is where the crash-recovery marker file is written.
func NewMaster(fatal func(reason string), testLogDir string, opts ...MasterOption) *Master {
	m := &Master{
		fatal:      fatal,
		testLogDir: testLogDir,
		loop:       eventloop.New(),
		byID:       make(map[string]*slaveConn),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Listen binds addr ("host:port", or ":port" for all interfaces) and starts
// the accept loop in a background goroutine.
func (m *Master) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("harnessnet: listen: %w", err)
	}
	m.ln = ln

	m.wg.Add(1)
	go m.acceptLoop()

	return nil
}

// Addr returns the listener's bound address. Valid after a successful
// Listen; useful when Listen was called with an ephemeral ":0" port.
func (m *Master) Addr() net.Addr {
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

func (m *Master) acceptLoop() {
	defer m.wg.Done()

	for {
		conn, err := m.ln.Accept()
		if err != nil {
			return
		}

		m.wg.Add(1)
		go m.handleConn(conn)
	}
}

func (m *Master) handleConn(conn net.Conn) {
	defer m.wg.Done()

	fdID := m.loop.Add(conn)
	wq := m.loop.GetWriteQueue(fdID)

	sc := &slaveConn{conn: conn, wq: wq}
	sc.sender = numcmd.NewSender(wq, m.fatal, nil)
	sc.monitor = readymon.New(wq)

	d := protocol.NewDispatcher(wq, m.fatal)
	d.RegisterStateless("RESULTS", sc.sender)
	d.Register("EVENTMSG", sc.sender.EventTopLevelFactory())
	d.Register("READY", func() protocol.Extension {
		return &readyLine{mon: sc.monitor}
	})

	var popts []parser.Option
	if m.debug != nil {
		popts = append(popts, parser.WithDebugWriter(m.debug))
	}
	p := parser.New(d, popts...)

	m.loop.RegisterFileDataCallback(fdID, func(data []byte) {
		p.Feed(data)
	})
	m.loop.RegisterEOFCallback(fdID, func(err error) {
		m.mu.Lock()
		closing := m.closed
		m.mu.Unlock()
		if !closing {
			m.fatal("harnessnet: slave connection closed: " + err.Error())
		}
	})

	pc := sc.sender.SendCommand(knot.FromBytes([]byte("HARNESS_INFO\n")))

	go func() {
		res := pc.Done.Value()
		id, suts, err := parseHarnessInfo(res.Body)
		if err != nil {
			m.fatal("harnessnet: malformed HARNESS_INFO response: " + err.Error())
			return
		}

		sc.id = id
		sc.sutCount = suts

		m.mu.Lock()
		m.byID[id] = sc
		m.cond.Broadcast()
		m.mu.Unlock()

		m.writeCrashMarker()
	}()
}

type readyLine struct {
	mon readymon.Monitor
}

func (r *readyLine) OnProtocolStart(sess protocol.Session, firstLine *knot.Knot) {
	r.mon.OnReady()
	sess.Done()
}
func (r *readyLine) LineReceived(line *knot.Knot) {}
func (r *readyLine) RawReceived(raw *knot.Knot)   {}

func parseHarnessInfo(body *knot.Knot) (id string, suts int, err error) {
	fields := strings.Fields(strings.TrimRight(string(body.Bytes()), "\r\n"))
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("expected \"<id> <sut-count>\", got %q", body.Bytes())
	}

	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("bad sut-count: %w", err)
	}

	return fields[0], n, nil
}

// BlockUntilNumConnections blocks until k slaves have completed the
// HARNESS_INFO handshake.
func (m *Master) BlockUntilNumConnections(k int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.byID) < k {
		m.cond.Wait()
	}
}

// GetProtocolStack returns the identified slave handle for id.
func (m *Master) GetProtocolStack(id string) (SlaveHandle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.byID[id]
	return sc, ok
}

// ConnectedIDs returns the ids of every slave that has completed the
// HARNESS_INFO handshake so far.
func (m *Master) ConnectedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	return ids
}

func (m *Master) writeCrashMarker() {
	if m.testLogDir == "" {
		return
	}
	path := filepath.Join(m.testLogDir, ".harness-run")
	_ = os.WriteFile(path, []byte("running\n"), 0o644)
}

func (m *Master) removeCrashMarker() {
	if m.testLogDir == "" {
		return
	}
	_ = os.Remove(filepath.Join(m.testLogDir, ".harness-run"))
}

// ExitLoopAndWait stops accepting new connections, closes every slave
// connection and drains its WriteQueue via the event loop, waits for the
// accept loop and every per-connection setup goroutine to finish, and
// removes the crash-recovery marker.
func (m *Master) ExitLoopAndWait() error {
	m.mu.Lock()
	m.closed = true
	if m.ln != nil {
		_ = m.ln.Close()
	}
	m.mu.Unlock()

	err := m.loop.ExitLoopAndWait()
	m.wg.Wait()
	m.removeCrashMarker()

	return err
}
