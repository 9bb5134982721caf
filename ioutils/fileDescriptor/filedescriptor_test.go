/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

package fileDescriptor_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anvil-labs/harness/ioutils/fileDescriptor"
)

var _ = Describe("RaiseOpenFileLimit", func() {

	It("queries the current limits without modification when newValue is 0", func() {
		cur, max, err := fileDescriptor.RaiseOpenFileLimit(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(cur).To(BeNumerically(">", 0))
		Expect(max).To(BeNumerically(">=", cur))
	})

	It("queries without modification for negative newValue", func() {
		cur, _, err := fileDescriptor.RaiseOpenFileLimit(-1)
		Expect(err).ToNot(HaveOccurred())
		Expect(cur).To(BeNumerically(">", 0))
	})

	It("never lowers the limit when newValue is below the current soft limit", func() {
		cur, _, err := fileDescriptor.RaiseOpenFileLimit(0)
		Expect(err).ToNot(HaveOccurred())

		after, _, err := fileDescriptor.RaiseOpenFileLimit(1)
		Expect(err).ToNot(HaveOccurred())
		Expect(after).To(BeNumerically(">=", cur))
	})

	It("raises the soft limit up to the hard limit", func() {
		_, max, err := fileDescriptor.RaiseOpenFileLimit(0)
		Expect(err).ToNot(HaveOccurred())

		cur, newMax, err := fileDescriptor.RaiseOpenFileLimit(max)
		Expect(err).ToNot(HaveOccurred())
		Expect(cur).To(Equal(max))
		Expect(newMax).To(Equal(max))
	})

	It("is safe to call concurrently", func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := fileDescriptor.RaiseOpenFileLimit(0)
				Expect(err).ToNot(HaveOccurred())
			}()
		}
		wg.Wait()
	})
})
