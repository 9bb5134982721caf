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
	"bytes"
	"strconv"
	"sync"

	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/protocol"
)

func splitFirstToken(b []byte) (tok string, rest []byte) {
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return string(bytes.TrimRight(b, "\r\n")), nil
	}
	return string(b[:i]), bytes.TrimRight(b[i+1:], "\r\n")
}

type receiver struct {
	fatal protocol.FatalFunc

	mu    sync.Mutex
	table map[string]Factory
	cond  *sync.Cond
	pending int

	// per-command decode state, valid only while a COMMAND session is
	// active on the owning dispatcher.
	sess protocol.Session
	n    int
	head *knot.Knot
	body *knot.Knot
}

// NewReceiver returns a Receiver reporting protocol violations (a malformed
// "COMMAND <n>" line, or an ENDCOMMAND body whose first token has no
// registered handler) through fatal.
func NewReceiver(fatal protocol.FatalFunc) Receiver {
	r := &receiver{
		fatal: fatal,
		table: make(map[string]Factory),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *receiver) Register(token string, fct Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[token] = fct
}

func (r *receiver) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

func (r *receiver) WaitForAllCommands() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.pending > 0 {
		r.cond.Wait()
	}
}

func (r *receiver) OnProtocolStart(sess protocol.Session, firstLine *knot.Knot) {
	tok, rest := splitFirstToken(firstLine.Bytes())
	if tok != "COMMAND" {
		r.fatal("numcmd: expected COMMAND, got " + tok)
		return
	}

	n, err := strconv.Atoi(string(rest))
	if err != nil {
		r.fatal("numcmd: malformed command number: " + string(rest))
		return
	}

	r.sess = sess
	r.n = n
	r.head = nil
	r.body = knot.New()
}

func (r *receiver) LineReceived(line *knot.Knot) {
	if line.Equal([]byte("ENDCOMMAND")) {
		r.dispatch()
		return
	}
	if r.head == nil {
		r.head = line
	}
	r.body.AppendKnot(line)
	r.body.AppendBytes(lf)
}

func (r *receiver) RawReceived(raw *knot.Knot) {
	if r.head == nil {
		r.head = raw
	}
	r.body.AppendKnot(raw)
}

func (r *receiver) dispatch() {
	sess := r.sess
	n := r.n
	body := r.body
	head := r.head
	r.sess, r.body, r.head = nil, nil, nil

	var tok string
	if head != nil {
		tok, _ = splitFirstToken(head.Bytes())
	}

	r.mu.Lock()
	fct, ok := r.table[tok]
	r.mu.Unlock()

	if !ok {
		sess.Done()
		r.fatal("numcmd: no handler registered for command token " + tok)
		return
	}

	handler := fct()

	r.mu.Lock()
	r.pending++
	r.mu.Unlock()

	ctx := &HandlerContext{
		n:  n,
		wq: sess.WriteQueue(),
		done: func() {
			r.mu.Lock()
			r.pending--
			r.cond.Broadcast()
			r.mu.Unlock()
		},
	}

	handler.Execute(ctx, body)
	sess.Done()
}
