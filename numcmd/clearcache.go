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

import "github.com/anvil-labs/harness/knot"

// ClearCacheHandler replies to a "CLEARCACHE" command by invoking clear and
// reporting success ("DONE\n") or failure ("FAILED\n<err>\nENDFAILED\n")
// through RESULTS. It is not registered by default: a Receiver handles
// CLEARCACHE only after Register("CLEARCACHE", NewClearCacheHandler(clear)).
type ClearCacheHandler struct {
	clear func() error
}

// NewClearCacheHandler returns a Factory producing one ClearCacheHandler per
// command, each invoking clear.
func NewClearCacheHandler(clear func() error) Factory {
	return func() NumberedCommandHandler {
		return &ClearCacheHandler{clear: clear}
	}
}

func (h *ClearCacheHandler) Execute(ctx *HandlerContext, body *knot.Knot) {
	if err := h.clear(); err != nil {
		msg := knot.FromOwned([]byte("FAILED\n" + err.Error() + "\nENDFAILED\n"))
		ctx.WriteResults(msg)
	} else {
		ctx.WriteResults(knot.FromBytes([]byte("DONE\n")))
	}
	ctx.Done()
}
