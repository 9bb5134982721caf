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

// Package parser implements the line/raw framing engine: a single-threaded,
// push-based state machine that turns a stream of arbitrarily-chunked byte
// strands into LineReceived/RawReceived calls on a Sink. Every call happens
// on whatever goroutine calls Feed — the harness event loop calls Feed only
// from its own loop goroutine, so a Parser is never touched concurrently.
package parser

import "github.com/anvil-labs/harness/knot"

// Sink receives framed content from a Parser. Every Knot it is handed holds
// a fresh copy of its bytes, so an implementation may keep it past the call;
// Feed never reuses that storage.
type Sink interface {
	LineReceived(line *knot.Knot)
	RawReceived(raw *knot.Knot)
}

// Mode is the parser's current framing mode.
type Mode uint8

const (
	ModeLine Mode = iota
	ModeRaw
)

// SinkFunc adapts two plain functions to the Sink interface.
type SinkFunc struct {
	Line func(*knot.Knot)
	Raw  func(*knot.Knot)
}

func (s SinkFunc) LineReceived(k *knot.Knot) {
	if s.Line != nil {
		s.Line(k)
	}
}

func (s SinkFunc) RawReceived(k *knot.Knot) {
	if s.Raw != nil {
		s.Raw(k)
	}
}
