package wqueue_test

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/anvil-labs/harness/knot"
	. "github.com/anvil-labs/harness/wqueue"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// syncSink is a thread-safe io.Writer recording every write in arrival
// order, used to assert on the order bytes actually reached the "descriptor".
type syncSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

var _ = Describe("Queue", func() {
	It("delivers knots to the sink in insertion order", func() {
		sink := &syncSink{}
		q := New(sink, WithMaximumPendingBytes(1<<20))

		for i := 0; i < 50; i++ {
			Expect(q.Write(knot.FromBytes([]byte(fmt.Sprintf("%02d\n", i))))).To(BeTrue())
		}

		q.Close()

		var want bytes.Buffer
		for i := 0; i < 50; i++ {
			fmt.Fprintf(&want, "%02d\n", i)
		}
		Expect(sink.String()).To(Equal(want.String()))
	})

	It("Write returns false without enqueuing once pending bytes exceed the maximum", func() {
		block := make(chan struct{})
		sink := blockingSink{release: block}
		q := New(sink, WithMaximumPendingBytes(10))

		Expect(q.Write(knot.FromBytes([]byte("0123456789")))).To(BeTrue())
		Expect(q.Write(knot.FromBytes([]byte("x")))).To(BeFalse())

		close(block)
		q.Close()
	})

	It("WriteWithBlock blocks until the queue drops below the threshold, then all lines arrive in order", func() {
		sink := &syncSink{}
		gate := make(chan struct{})
		gated := &gatedSink{inner: sink, gate: gate}

		q := New(gated, WithMaximumPendingBytes(24))

		for i := 0; i < 4; i++ {
			Expect(q.Write(knot.FromBytes([]byte(fmt.Sprintf("line%d\n", i))))).To(BeTrue())
		}

		blockedReturned := make(chan struct{})
		go func() {
			q.WriteWithBlock(knot.FromBytes([]byte("final\n")))
			close(blockedReturned)
		}()

		Consistently(blockedReturned, "100ms").ShouldNot(BeClosed())

		close(gate)

		Eventually(blockedReturned, "2s").Should(BeClosed())
		q.Close()

		Expect(sink.String()).To(Equal("line0\nline1\nline2\nline3\nfinal\n"))
	})

	It("never interleaves a streaming writer's chunks with a concurrent plain write", func() {
		sink := &syncSink{}
		q := New(sink, WithMaximumPendingBytes(1<<20))

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			w := q.GetStreamingWriter()
			w.Write(knot.FromBytes([]byte("HEADER\n")))
			time.Sleep(5 * time.Millisecond)
			w.Write(knot.FromBytes([]byte("BODY\n")))
			time.Sleep(5 * time.Millisecond)
			w.Write(knot.FromBytes([]byte("FOOTER\n")))
			w.Done()
		}()

		go func() {
			defer wg.Done()
			time.Sleep(2 * time.Millisecond)
			q.WriteWithBlock(knot.FromBytes([]byte("NORMAL\n")))
		}()

		wg.Wait()
		q.Close()

		s := sink.String()
		before := s == "NORMAL\nHEADER\nBODY\nFOOTER\n"
		after := s == "HEADER\nBODY\nFOOTER\nNORMAL\n"
		Expect(before || after).To(BeTrue(), "got interleaved output: %q", s)
	})

	It("reports the number of goroutines blocked waiting on backpressure", func() {
		gate := make(chan struct{})
		sink := &gatedSink{inner: &syncSink{}, gate: gate}
		q := New(sink, WithMaximumPendingBytes(1))

		Expect(q.Write(knot.FromBytes([]byte("x")))).To(BeTrue())

		go q.WriteWithBlock(knot.FromBytes([]byte("y")))

		Eventually(func() int64 { return q.NumBlockedThreads() }, "1s").Should(BeNumerically(">=", int64(1)))

		close(gate)
		q.Close()
	})
})

// blockingSink never completes a write until release is closed; used to
// keep an item "in flight" so pending bytes stay above threshold.
type blockingSink struct {
	release chan struct{}
}

func (b blockingSink) Write(p []byte) (int, error) {
	<-b.release
	return len(p), nil
}

// gatedSink delays every write until gate is closed, then forwards to inner.
type gatedSink struct {
	inner interface{ Write([]byte) (int, error) }
	gate  chan struct{}
}

func (g *gatedSink) Write(p []byte) (int, error) {
	<-g.gate
	return g.inner.Write(p)
}
