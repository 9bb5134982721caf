package knot_test

import (
	"bytes"

	. "github.com/anvil-labs/harness/knot"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Knot", func() {
	It("starts empty", func() {
		k := New()
		Expect(k.Size()).To(Equal(0))
		Expect(k.Bytes()).To(BeEmpty())
	})

	It("accumulates appended strands in order", func() {
		k := New()
		k.AppendBytes([]byte("hello "))
		k.AppendBytes([]byte("world"))

		Expect(k.Size()).To(Equal(11))
		Expect(k.Bytes()).To(Equal([]byte("hello world")))
	})

	It("is equal regardless of how bytes are split into strands", func() {
		a := New()
		a.AppendBytes([]byte("hello world"))

		b := New()
		b.AppendBytes([]byte("hel"))
		b.AppendBytes([]byte("lo "))
		b.AppendBytes([]byte("world"))

		Expect(a.Equal(b.Bytes())).To(BeTrue())
		Expect(b.Equal(a.Bytes())).To(BeTrue())
	})

	It("finds a byte across strand boundaries", func() {
		k := New()
		k.AppendBytes([]byte("foo"))
		k.AppendBytes([]byte("\nbar"))

		it, ok := k.Find('\n', k.Begin())
		Expect(ok).To(BeTrue())
		Expect(k.IteratorForChar(3)).To(Equal(it))
	})

	It("reports StartsWith false when the probe is longer than the knot", func() {
		k := FromBytes([]byte("ab"))
		Expect(k.StartsWith([]byte("abc"))).To(BeFalse())
		Expect(k.StartsWith([]byte("ab"))).To(BeTrue())
		Expect(k.StartsWith([]byte("a"))).To(BeTrue())
	})

	Describe("Split", func() {
		It("satisfies concat(left, right) == original for any split position", func() {
			k := New()
			k.AppendBytes([]byte("abc"))
			k.AppendBytes([]byte("defg"))
			original := append([]byte{}, k.Bytes()...)

			for i := 0; i <= len(original); i++ {
				kk := New()
				kk.AppendBytes(append([]byte{}, original...))

				it := kk.IteratorForChar(i)
				if i == len(original) {
					it = kk.End()
				}

				left := kk.Split(it)

				got := append(append([]byte{}, left.Bytes()...), kk.Bytes()...)
				Expect(got).To(Equal(original), "split at %d", i)
			}
		})

		It("does not affect a sub-knot taken before the split", func() {
			k := New()
			k.AppendBytes([]byte("abcdef"))

			sub := k.SubKnot(k.Begin(), k.IteratorForChar(3))
			k.Split(k.IteratorForChar(3))

			Expect(sub.Bytes()).To(Equal([]byte("abc")))
		})
	})

	It("LeftErase discards bytes strictly before the iterator", func() {
		k := New()
		k.AppendBytes([]byte("abcdef"))
		k.LeftErase(k.IteratorForChar(2))
		Expect(k.Bytes()).To(Equal([]byte("cdef")))
	})

	It("writes its bytes to a Writer in order", func() {
		k := New()
		k.AppendBytes([]byte("abc"))
		k.AppendBytes([]byte("def"))

		var buf bytes.Buffer
		end, err := k.WriteToFileDescriptor(&buf, k.Begin())

		Expect(err).ToNot(HaveOccurred())
		Expect(end).To(Equal(k.End()))
		Expect(buf.String()).To(Equal("abcdef"))
	})

	It("keeps iterators valid across Append", func() {
		k := New()
		k.AppendBytes([]byte("abc"))
		it := k.IteratorForChar(1)

		k.AppendBytes([]byte("def"))

		Expect(k.Bytes()[0]).To(Equal(byte('a')))
		sub := k.SubKnot(it, k.End())
		Expect(sub.Bytes()).To(Equal([]byte("bcdef")))
	})
})
