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

package logger

import (
	"time"

	libdur "github.com/anvil-labs/harness/duration"
)

// PeriodicTimestamp emits a log line carrying the current wall time on a
// fixed period so offline scoring can correlate harness-relative log
// timestamps with wall-clock time recorded by other processes in the run.
type PeriodicTimestamp struct {
	stop chan struct{}
	done chan struct{}
}

// NewPeriodicTimestamp starts the ticker immediately; Stop blocks until the
// background goroutine has exited.
func NewPeriodicTimestamp(period libdur.Duration, log FuncLog) *PeriodicTimestamp {
	p := &PeriodicTimestamp{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go p.run(period.Time(), log)

	return p
}

func (p *PeriodicTimestamp) run(period time.Duration, log FuncLog) {
	defer close(p.done)

	if period <= 0 {
		return
	}

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-p.stop:
			return
		case now := <-t.C:
			log().Info("timestamp %s", now.Format(time.RFC3339Nano))
		}
	}
}

// Stop signals the ticker goroutine to exit and waits for it.
func (p *PeriodicTimestamp) Stop() {
	close(p.stop)
	<-p.done
}
