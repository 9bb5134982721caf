/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

import "strings"

type errImpl struct {
	code    CodeError
	message string
	parent  []error
}

func newError(code CodeError, message string, parent ...error) Error {
	var filtered []error
	for _, p := range parent {
		if p != nil {
			filtered = append(filtered, p)
		}
	}
	return &errImpl{code: code, message: message, parent: filtered}
}

func (e *errImpl) Code() CodeError { return e.code }

func (e *errImpl) IsCode(code CodeError) bool { return e.code == code }

func (e *errImpl) Unwrap() []error { return e.parent }

func (e *errImpl) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(codeErrorString(e.code))
	b.WriteString("] ")
	b.WriteString(e.message)

	for _, p := range e.parent {
		b.WriteString(": ")
		b.WriteString(p.Error())
	}
	return b.String()
}
