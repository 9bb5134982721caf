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

package parser

import (
	"bytes"
	"io"
	"strconv"

	liberr "github.com/anvil-labs/harness/errors"
	"github.com/anvil-labs/harness/harnesserr"
	"github.com/anvil-labs/harness/knot"
)

const (
	rawToken    = "RAW"
	endRawToken = "ENDRAW"
)

// waitingCount is the sentinel for "expecting a decimal count line next";
// any value >= 0 means "expecting that many raw bytes next".
const waitingCount = -1

// Parser turns a stream of byte strands into framed LINE/RAW calls on a
// Sink. It holds only the unconsumed tail of input plus whatever raw bytes
// have accumulated for the current RAW block; it never blocks and never
// spawns a goroutine.
type Parser struct {
	sink Sink

	mode Mode
	buf  []byte

	rawBuf  *knot.Knot
	rawWant int

	debug io.Writer
}

// Option configures a Parser at construction.
type Option func(*Parser)

// WithDebugWriter tees every byte strand Feed receives to w before parsing,
// verbatim and unbuffered, for --debug_dir passthrough logging.
func WithDebugWriter(w io.Writer) Option {
	return func(p *Parser) { p.debug = w }
}

// New returns a Parser in LINE mode delivering to sink.
func New(sink Sink, opts ...Option) *Parser {
	p := &Parser{
		sink:    sink,
		mode:    ModeLine,
		rawWant: waitingCount,
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

// Feed delivers one chunk of newly-arrived bytes. It processes everything
// synchronously reachable from the combination of previously-buffered and
// newly-fed bytes, calling the sink zero or more times, and returns only
// when no further progress can be made without more input.
//
// Returns a ProtocolViolation error (fatal per spec §7) on an invalid RAW
// count line; the parser is left in a usable state but the caller is
// expected to terminate the connection.
func (p *Parser) Feed(b []byte) liberr.Error {
	if p.debug != nil && len(b) > 0 {
		_, _ = p.debug.Write(b)
	}

	p.buf = append(p.buf, b...)

	for {
		progressed, err := p.step()
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

// step performs one framing transition if enough data is buffered,
// reporting whether it made progress.
func (p *Parser) step() (bool, liberr.Error) {
	switch p.mode {
	case ModeLine:
		return p.stepLine()
	default:
		return p.stepRaw()
	}
}

func (p *Parser) stepLine() (bool, liberr.Error) {
	idx := bytes.IndexByte(p.buf, '\n')
	if idx < 0 {
		return false, nil
	}

	line := p.consumeLine(idx)

	if string(line) == rawToken {
		p.mode = ModeRaw
		p.rawBuf = knot.New()
		p.rawWant = waitingCount
		return true, nil
	}

	p.sink.LineReceived(knot.FromOwned(line))
	return true, nil
}

func (p *Parser) stepRaw() (bool, liberr.Error) {
	if p.rawWant == waitingCount {
		idx := bytes.IndexByte(p.buf, '\n')
		if idx < 0 {
			return false, nil
		}

		line := p.consumeLine(idx)

		// An empty line (the LF following a chunk's counted bytes)
		// separates that chunk from the next count line.
		if len(line) == 0 {
			return true, nil
		}

		if string(line) == endRawToken {
			raw := p.rawBuf
			p.rawBuf = nil
			p.mode = ModeLine
			p.sink.RawReceived(raw)
			return true, nil
		}

		n, err := strconv.Atoi(string(line))
		if err != nil || n < 0 {
			return false, harnesserr.ProtocolViolation.Error(errInvalidCount(line))
		}

		p.rawWant = n
		return true, nil
	}

	if len(p.buf) < p.rawWant {
		return false, nil
	}

	chunk := make([]byte, p.rawWant)
	copy(chunk, p.buf[:p.rawWant])
	p.buf = p.buf[p.rawWant:]

	p.rawBuf.AppendOwned(chunk)
	p.rawWant = waitingCount

	return true, nil
}

// consumeLine removes and returns the line ending at p.buf[idx] (exclusive
// of the LF), advancing the internal buffer past it. The returned slice is
// a fresh copy so later buffer reuse cannot corrupt it.
func (p *Parser) consumeLine(idx int) []byte {
	line := make([]byte, idx)
	copy(line, p.buf[:idx])
	p.buf = p.buf[idx+1:]
	return line
}

type invalidCountErr struct{ line string }

func (e invalidCountErr) Error() string { return "parser: invalid RAW count line: " + e.line }

func errInvalidCount(line []byte) error { return invalidCountErr{line: string(line)} }
