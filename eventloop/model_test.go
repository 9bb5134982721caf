package eventloop_test

import (
	"io"
	"net"

	"github.com/anvil-labs/harness/eventloop"
	"github.com/anvil-labs/harness/knot"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Loop", func() {
	It("delivers each chunk read from a registered fd to its data callback", func() {
		local, remote := net.Pipe()
		defer remote.Close()

		l := eventloop.New()
		id := l.Add(local)

		received := make(chan []byte, 4)
		l.RegisterFileDataCallback(id, func(data []byte) {
			buf := make([]byte, len(data))
			copy(buf, data)
			received <- buf
		})

		go func() { _, _ = remote.Write([]byte("hello")) }()

		Eventually(received).Should(Receive(Equal([]byte("hello"))))
	})

	It("fires the EOF callback exactly once when the fd is closed", func() {
		local, remote := net.Pipe()

		l := eventloop.New()
		id := l.Add(local)

		eofs := make(chan error, 4)
		l.RegisterEOFCallback(id, func(err error) { eofs <- err })

		Expect(remote.Close()).To(Succeed())

		Eventually(eofs).Should(Receive(Equal(io.EOF)))
		Consistently(eofs).ShouldNot(Receive())
	})

	It("round-trips bytes written through a registered fd's WriteQueue", func() {
		local, remote := net.Pipe()
		defer remote.Close()
		defer local.Close()

		l := eventloop.New()
		id := l.Add(local)

		wq := l.GetWriteQueue(id)
		Expect(wq).NotTo(BeNil())

		readDone := make(chan []byte, 1)
		go func() {
			buf := make([]byte, 5)
			n, _ := io.ReadFull(remote, buf)
			readDone <- buf[:n]
		}()

		Expect(wq.Write(knot.FromBytes([]byte("world")))).To(BeTrue())

		Eventually(readDone).Should(Receive(Equal([]byte("world"))))
	})

	It("closes every registered fd and drains every WriteQueue on ExitLoopAndWait", func() {
		local, remote := net.Pipe()

		go func() {
			buf := make([]byte, 64)
			for {
				if _, err := remote.Read(buf); err != nil {
					return
				}
			}
		}()

		l := eventloop.New()
		id := l.Add(local)

		eofs := make(chan error, 1)
		l.RegisterEOFCallback(id, func(err error) { eofs <- err })

		done := make(chan struct{})
		go func() {
			l.ExitLoopAndWait()
			close(done)
		}()

		Eventually(done, "2s").Should(BeClosed())
		Eventually(eofs).Should(Receive())
	})
})
