/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2025 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package mapCloser_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anvil-labs/harness/ioutils/mapCloser"
)

var _ = Describe("Closer", func() {

	It("closes every registered closer", func() {
		c := mapCloser.New(context.Background())
		a := &mockCloser{}
		b := &mockCloser{}
		c.Add(a, b)

		Expect(c.Close()).To(Succeed())
		Expect(a.wasClosed()).To(BeTrue())
		Expect(b.wasClosed()).To(BeTrue())
	})

	It("ignores nil closers", func() {
		c := mapCloser.New(context.Background())
		c.Add(nil)
		Expect(c.Close()).To(Succeed())
	})

	It("aggregates errors from every failing closer", func() {
		c := mapCloser.New(context.Background())
		a := &mockCloser{closeErr: errors.New("a failed")}
		b := &mockCloser{closeErr: errors.New("b failed")}
		c.Add(a, b)

		err := c.Close()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("a failed"))
		Expect(err.Error()).To(ContainSubstring("b failed"))
	})

	It("is idempotent", func() {
		c := mapCloser.New(context.Background())
		a := &mockCloser{}
		c.Add(a)

		Expect(c.Close()).To(Succeed())
		Expect(c.Close()).To(Succeed())
	})

	It("is a no-op to Add after Close", func() {
		c := mapCloser.New(context.Background())
		a := &mockCloser{}
		Expect(c.Close()).To(Succeed())

		c.Add(a)
		Expect(a.wasClosed()).To(BeFalse())
	})

	It("auto-closes when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		c := mapCloser.New(ctx)
		a := &mockCloser{}
		c.Add(a)

		cancel()
		Eventually(a.wasClosed, time.Second, 10*time.Millisecond).Should(BeTrue())
	})

	It("is safe for concurrent Add", func() {
		c := mapCloser.New(context.Background())
		closers := make([]*mockCloser, 50)
		for i := range closers {
			closers[i] = &mockCloser{}
		}

		var wg sync.WaitGroup
		for _, cl := range closers {
			wg.Add(1)
			go func(cl *mockCloser) {
				defer wg.Done()
				c.Add(cl)
			}(cl)
		}
		wg.Wait()

		Expect(c.Close()).To(Succeed())
		for _, cl := range closers {
			Expect(cl.wasClosed()).To(BeTrue())
		}
	})
})
