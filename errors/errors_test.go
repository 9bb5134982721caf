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

package errors_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	liberr "github.com/anvil-labs/harness/errors"
)

const testCode liberr.CodeError = liberr.MinAvailable + 1

var _ = Describe("CodeError", func() {

	BeforeEach(func() {
		liberr.RegisterIdFctMessage(liberr.MinAvailable, func(code liberr.CodeError) string {
			if code == testCode {
				return "test failure"
			}
			return liberr.NullMessage
		})
	})

	It("looks up the message registered for its code", func() {
		Expect(testCode.String()).To(Equal("test failure"))
	})

	It("falls back to UnknownMessage for an unregistered code", func() {
		Expect(liberr.UnknownError.String()).To(Equal(liberr.UnknownMessage))
	})

	It("builds an Error carrying its own code", func() {
		err := testCode.Error()
		Expect(err.Code()).To(Equal(testCode))
		Expect(err.IsCode(testCode)).To(BeTrue())
		Expect(err.IsCode(liberr.UnknownError)).To(BeFalse())
	})

	It("includes the registered message in Error()", func() {
		err := testCode.Error()
		Expect(err.Error()).To(ContainSubstring("test failure"))
	})

	It("chains parent errors and surfaces them to errors.Is/As", func() {
		cause := errors.New("underlying cause")
		err := testCode.Error(cause)

		Expect(err.Error()).To(ContainSubstring("underlying cause"))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("drops nil parents instead of keeping placeholder entries", func() {
		err := testCode.Error(nil, nil)
		Expect(err.Unwrap()).To(BeEmpty())
	})

	It("formats a custom message with Errorf", func() {
		err := testCode.Errorf("attempt %d of %d", 2, 3)
		Expect(err.Error()).To(Equal(fmt.Sprintf("[%d] attempt 2 of 3", testCode.Uint16())))
	})
})
