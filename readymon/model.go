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

package readymon

import (
	"sync"

	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/wqueue"
)

type pendingSend struct {
	k    *knot.Knot
	cb   func()
	done chan struct{}
}

type monitor struct {
	wq wqueue.Queue

	mu      sync.Mutex
	ready   bool
	fifo    []*pendingSend
}

// New returns a Monitor starting in the ready state, writing through wq.
func New(wq wqueue.Queue) Monitor {
	return &monitor{wq: wq, ready: true}
}

func (m *monitor) BlockUntilReadyAndSend(k *knot.Knot) {
	p := &pendingSend{k: k, done: make(chan struct{})}

	m.mu.Lock()
	if m.ready {
		m.ready = false
		m.mu.Unlock()
		m.write(p)
		return
	}
	m.fifo = append(m.fifo, p)
	m.mu.Unlock()

	<-p.done
}

func (m *monitor) ScheduleSend(k *knot.Knot, cb func()) {
	p := &pendingSend{k: k, cb: cb}

	m.mu.Lock()
	if m.ready {
		m.ready = false
		m.mu.Unlock()
		m.write(p)
		return
	}
	m.fifo = append(m.fifo, p)
	m.mu.Unlock()
}

func (m *monitor) OnReady() {
	m.mu.Lock()
	if len(m.fifo) == 0 {
		m.ready = true
		m.mu.Unlock()
		return
	}

	p := m.fifo[0]
	m.fifo = m.fifo[1:]
	m.mu.Unlock()

	m.write(p)
}

func (m *monitor) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// write performs the actual send for p, invoking its callback just before
// and signaling its done channel (if any) just after.
func (m *monitor) write(p *pendingSend) {
	if p.cb != nil {
		p.cb()
	}

	if !m.wq.Write(p.k) {
		m.wq.WriteWithBlock(p.k)
	}

	if p.done != nil {
		close(p.done)
	}
}
