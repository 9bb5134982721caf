/*
MIT License

Copyright (c) 2023 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package duration_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libdur "github.com/anvil-labs/harness/duration"
)

var _ = Describe("Parse", func() {
	It("parses a plain Go duration string", func() {
		d, err := libdur.Parse("5h30m")
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Time()).To(Equal(5*time.Hour + 30*time.Minute))
	})

	It("parses a duration with a days component", func() {
		d, err := libdur.Parse("2d12h")
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Time()).To(Equal(60 * time.Hour))
	})

	It("parses a bare days value with no trailing unit", func() {
		d, err := libdur.Parse("1d")
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Time()).To(Equal(24 * time.Hour))
	})

	It("parses a negative duration", func() {
		d, err := libdur.Parse("-5h")
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Time()).To(Equal(-5 * time.Hour))
	})

	It("parses zero", func() {
		d, err := libdur.Parse("0")
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Time()).To(Equal(time.Duration(0)))
	})

	It("parses the full days+hours+minutes+seconds form", func() {
		d, err := libdur.Parse("5d23h15m13s")
		Expect(err).ToNot(HaveOccurred())
		expected := 5*24*time.Hour + 23*time.Hour + 15*time.Minute + 13*time.Second
		Expect(d.Time()).To(Equal(expected))
	})

	It("strips surrounding quotes", func() {
		d, err := libdur.Parse("\"5h30m\"")
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Time()).To(Equal(5*time.Hour + 30*time.Minute))
	})

	It("rejects an invalid format", func() {
		_, err := libdur.Parse("invalid")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown unit", func() {
		_, err := libdur.Parse("5x")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty string", func() {
		_, err := libdur.Parse("")
		Expect(err).To(HaveOccurred())
	})

	It("rejects a malformed days prefix", func() {
		_, err := libdur.Parse("xd5h")
		Expect(err).To(HaveOccurred())
	})
})
