package future_test

import (
	"sync"
	"sync/atomic"

	. "github.com/anvil-labs/harness/future"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Future", func() {
	It("delivers the fired value to Value and Wait", func() {
		f := New[string]()

		go f.Fire("hello")

		f.Wait()
		Expect(f.Value()).To(Equal("hello"))
	})

	It("runs a callback registered after firing immediately and exactly once", func() {
		f := New[int]()
		f.Fire(42)

		var calls int32
		f.AddCallback(func(v int) {
			atomic.AddInt32(&calls, 1)
			Expect(v).To(Equal(42))
		})

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))
	})

	It("runs a callback registered before firing exactly once, at firing time", func() {
		f := New[int]()

		var calls int32
		f.AddCallback(func(v int) {
			atomic.AddInt32(&calls, 1)
			Expect(v).To(Equal(7))
		})

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(0)))
		f.Fire(7)
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))
	})

	It("panics on a second Fire", func() {
		f := New[int]()
		f.Fire(1)
		Expect(func() { f.Fire(2) }).To(Panic())
	})

	It("fires every callback exactly once under concurrent registration", func() {
		f := New[int]()
		var wg sync.WaitGroup
		var calls int32

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.AddCallback(func(int) { atomic.AddInt32(&calls, 1) })
			}()
		}

		go f.Fire(99)

		wg.Wait()
		f.Wait()
		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(Equal(int32(20)))
	})
})

type sumFolder struct{ total int }

func (s *sumFolder) AddPartial(p int) { s.total += p }
func (s *sumFolder) Finalize() int    { return s.total }

var _ = Describe("AggregatingFuture", func() {
	It("folds concurrent partial contributions into one final value", func() {
		af := NewAggregating[int, int](&sumFolder{})

		var wg sync.WaitGroup
		for i := 1; i <= 100; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				af.AddPartialResult(n)
			}(i)
		}
		wg.Wait()

		af.Done()
		Expect(af.Future().Value()).To(Equal(5050))
	})
})
