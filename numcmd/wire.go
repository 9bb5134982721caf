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
	"fmt"

	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/wqueue"
)

var endResultsLine = knot.FromBytes([]byte("ENDRESULTS\n"))
var endCommandLine = knot.FromBytes([]byte("ENDCOMMAND\n"))
var lf = []byte("\n")

func resultsHeader(n int) *knot.Knot {
	return knot.FromOwned([]byte(fmt.Sprintf("RESULTS %d\n", n)))
}

func commandHeader(n int) *knot.Knot {
	return knot.FromOwned([]byte(fmt.Sprintf("COMMAND %d\n", n)))
}

func eventMsgLine(n int, eventID string, info string) *knot.Knot {
	if info == "" {
		return knot.FromOwned([]byte(fmt.Sprintf("EVENTMSG\n%d %s\n", n, eventID)))
	}
	return knot.FromOwned([]byte(fmt.Sprintf("EVENTMSG\n%d %s %s\n", n, eventID, info)))
}

type resultsWriter struct {
	inner wqueue.StreamingWriter
}

func (w *resultsWriter) Write(k *knot.Knot) { w.inner.Write(k) }

func (w *resultsWriter) Done() {
	w.inner.Write(endResultsLine)
	w.inner.Done()
}
