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

// Package errors registers a taxonomy of numeric CodeError values, each with
// an associated human message, and wraps them with optional parent errors so
// callers can branch on IsCode/Code rather than string-matching.
package errors

import (
	"fmt"
	"strconv"
	"sync"
)

// CodeError is a numeric error classification, analogous to an HTTP status
// code. Packages register their own block of codes with RegisterIdFctMessage
// and construct values with Error/Errorf.
type CodeError uint16

const (
	// UnknownError is the zero value, used when no code applies.
	UnknownError CodeError = 0

	// UnknownMessage is returned for a code with no registered message.
	UnknownMessage = "unknown error"

	// NullMessage is the empty message, returned by a Message func that
	// declines to handle a given code.
	NullMessage = ""

	// MinAvailable is the first code value this module's own taxonomies
	// may use; codes below it are reserved.
	MinAvailable CodeError = 4000
)

// Message renders the human-readable text for code. Returning NullMessage
// makes the code render as UnknownMessage; registrations below the nearest
// one are not consulted.
type Message func(code CodeError) (message string)

var (
	mu       sync.RWMutex
	idMsgFct = make(map[CodeError]Message)
)

// RegisterIdFctMessage registers fct as the message source for every code
// greater than or equal to minCode, up to the next higher registration (if
// any). Intended to be called once per package from an init func.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	mu.Lock()
	defer mu.Unlock()
	idMsgFct[minCode] = fct
}

func (c CodeError) message() string {
	mu.RLock()
	defer mu.RUnlock()

	var best CodeError
	var found bool
	for k := range idMsgFct {
		if k <= c && (!found || k > best) {
			best, found = k, true
		}
	}
	if !found {
		return UnknownMessage
	}
	if m := idMsgFct[best](c); m != NullMessage {
		return m
	}
	return UnknownMessage
}

// Uint16 returns the numeric code value.
func (c CodeError) Uint16() uint16 { return uint16(c) }

// String returns the registered message for c, or UnknownMessage if none is
// registered.
func (c CodeError) String() string {
	if c == UnknownError {
		return UnknownMessage
	}
	return c.message()
}

// Error builds an Error carrying code c, its registered message, and any
// parent errors given (typically the lower-level cause).
func (c CodeError) Error(parent ...error) Error {
	return newError(c, c.String(), parent...)
}

// Errorf is like Error but with a caller-supplied message instead of the
// registered one.
func (c CodeError) Errorf(pattern string, args ...interface{}) Error {
	return newError(c, fmt.Sprintf(pattern, args...))
}

// Error wraps a CodeError, its message, and zero or more causes.
type Error interface {
	error

	// Code returns the CodeError this Error was constructed with.
	Code() CodeError

	// IsCode reports whether this Error's own code equals code (parent
	// errors are not consulted).
	IsCode(code CodeError) bool

	// Unwrap exposes every parent error to errors.Is/errors.As.
	Unwrap() []error
}

func codeErrorString(code CodeError) string {
	return strconv.Itoa(int(code))
}
