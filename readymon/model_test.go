package readymon_test

import (
	"bytes"

	"github.com/anvil-labs/harness/knot"
	. "github.com/anvil-labs/harness/readymon"
	"github.com/anvil-labs/harness/wqueue"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	var (
		out *bytes.Buffer
		wq  wqueue.Queue
		m   Monitor
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		wq = wqueue.New(out)
		m = New(wq)
	})

	AfterEach(func() { wq.Close() })

	It("sends immediately while ready, then goes not-ready", func() {
		m.BlockUntilReadyAndSend(knot.FromBytes([]byte("one\n")))
		Expect(m.IsReady()).To(BeFalse())
		Eventually(func() string { return out.String() }).Should(Equal("one\n"))
	})

	It("queues ScheduleSend while not ready and flushes head on OnReady, staying not-ready", func() {
		m.BlockUntilReadyAndSend(knot.FromBytes([]byte("one\n")))

		var cbCalled bool
		m.ScheduleSend(knot.FromBytes([]byte("two\n")), func() { cbCalled = true })
		m.ScheduleSend(knot.FromBytes([]byte("three\n")), nil)

		Expect(m.IsReady()).To(BeFalse())

		m.OnReady()
		Expect(cbCalled).To(BeTrue())
		Expect(m.IsReady()).To(BeFalse())
		Eventually(func() string { return out.String() }).Should(Equal("one\ntwo\n"))

		m.OnReady()
		Expect(m.IsReady()).To(BeFalse())
		Eventually(func() string { return out.String() }).Should(Equal("one\ntwo\nthree\n"))
	})

	It("becomes ready when OnReady arrives with an empty queue", func() {
		m.BlockUntilReadyAndSend(knot.FromBytes([]byte("one\n")))
		m.OnReady()
		Expect(m.IsReady()).To(BeTrue())
	})

	It("BlockUntilReadyAndSend blocks until the item is actually written", func() {
		m.BlockUntilReadyAndSend(knot.FromBytes([]byte("one\n")))

		done := make(chan struct{})
		go func() {
			m.BlockUntilReadyAndSend(knot.FromBytes([]byte("two\n")))
			close(done)
		}()

		Consistently(done, "30ms").ShouldNot(BeClosed())
		m.OnReady()
		Eventually(done).Should(BeClosed())
	})
})
