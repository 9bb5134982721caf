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
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/protocol"
)

// PublicationSink receives one decoded PUBLICATION payload (everything
// between PAYLOAD and ENDPAYLOAD, LINE and RAW content both allowed).
type PublicationSink func(payload *knot.Knot)

var lf = []byte("\n")

// publicationState walks "PUBLICATION" LF "PAYLOAD" LF <body> "ENDPAYLOAD"
// LF "ENDPUBLICATION" LF (spec §6, Open Question D.2: the payload body
// itself is ordinary LINE/RAW content, so a RAW block between PAYLOAD and
// ENDPAYLOAD is legal).
type publicationState int

const (
	pubExpectPayload publicationState = iota
	pubCollecting
	pubExpectEnd
)

type publicationExt struct {
	sink  PublicationSink
	sess  protocol.Session
	state publicationState
	body  *knot.Knot
}

func newPublicationFactory(sink PublicationSink) protocol.Factory {
	return func() protocol.Extension {
		return &publicationExt{sink: sink}
	}
}

func (p *publicationExt) OnProtocolStart(sess protocol.Session, firstLine *knot.Knot) {
	p.sess = sess
	p.state = pubExpectPayload
	p.body = knot.New()
}

func (p *publicationExt) LineReceived(line *knot.Knot) {
	switch p.state {
	case pubExpectPayload:
		if !line.Equal([]byte("PAYLOAD")) {
			p.sess.Done()
			return
		}
		p.state = pubCollecting
	case pubCollecting:
		if line.Equal([]byte("ENDPAYLOAD")) {
			p.state = pubExpectEnd
			return
		}
		p.body.AppendKnot(line)
		p.body.AppendBytes(lf)
	case pubExpectEnd:
		if line.Equal([]byte("ENDPUBLICATION")) && p.sink != nil {
			p.sink(p.body)
		}
		p.sess.Done()
	}
}

func (p *publicationExt) RawReceived(raw *knot.Knot) {
	if p.state == pubCollecting {
		p.body.AppendKnot(raw)
	}
}
