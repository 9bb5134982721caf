package harnessnet_test

import (
	"sync"

	"github.com/anvil-labs/harness/knot"
	. "github.com/anvil-labs/harness/harnessnet"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fatalRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fatalRecorder) record(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, reason)
}

func (f *fatalRecorder) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

var _ = Describe("Master/Slave harness topology", func() {
	var (
		master       *Master
		slave        *Slave
		masterFatal  *fatalRecorder
		slaveFatal   *fatalRecorder
	)

	BeforeEach(func() {
		masterFatal = &fatalRecorder{}
		slaveFatal = &fatalRecorder{}

		master = NewMaster(masterFatal.record, "")
		Expect(master.Listen("127.0.0.1:0")).To(Succeed())

		slave = NewSlave(slaveFatal.record, "sh1", 3)
	})

	AfterEach(func() {
		_ = master.ExitLoopAndWait()
		_ = slave.Close()
	})

	It("identifies a connecting slave via HARNESS_INFO and indexes it by id", func() {
		Expect(slave.Connect(master.Addr().String())).To(Succeed())

		done := make(chan struct{})
		go func() {
			master.BlockUntilNumConnections(1)
			close(done)
		}()
		Eventually(done, "2s").Should(BeClosed())

		handle, ok := master.GetProtocolStack("sh1")
		Expect(ok).To(BeTrue())
		Expect(handle.ID()).To(Equal("sh1"))
		Expect(handle.SUTCount()).To(Equal(3))

		Expect(masterFatal.snapshot()).To(BeEmpty())
		Expect(slaveFatal.snapshot()).To(BeEmpty())
	})

	It("round-trips a RUNSCRIPT command to a registered script", func() {
		invoked := make(chan *knot.Knot, 1)
		slave.RegisterScript("noop", func(args *knot.Knot) error {
			invoked <- args
			return nil
		})

		Expect(slave.Connect(master.Addr().String())).To(Succeed())

		done := make(chan struct{})
		go func() {
			master.BlockUntilNumConnections(1)
			close(done)
		}()
		Eventually(done, "2s").Should(BeClosed())

		handle, ok := master.GetProtocolStack("sh1")
		Expect(ok).To(BeTrue())

		pc := handle.Sender().SendCommand(knot.FromBytes([]byte("RUNSCRIPT\nnoop\n")))

		Eventually(func() bool { return pc.Start.Fired() }, "2s").Should(BeTrue())
		Eventually(func() bool { return pc.Done.Fired() }, "2s").Should(BeTrue())

		var args *knot.Knot
		Eventually(invoked, "2s").Should(Receive(&args))
		Expect(args.Bytes()).To(BeEmpty())

		Expect(masterFatal.snapshot()).To(BeEmpty())
		Expect(slaveFatal.snapshot()).To(BeEmpty())
	})

	It("reports an unknown script as a FAILED results body", func() {
		Expect(slave.Connect(master.Addr().String())).To(Succeed())

		done := make(chan struct{})
		go func() {
			master.BlockUntilNumConnections(1)
			close(done)
		}()
		Eventually(done, "2s").Should(BeClosed())

		handle, _ := master.GetProtocolStack("sh1")
		pc := handle.Sender().SendCommand(knot.FromBytes([]byte("RUNSCRIPT\nmissing\n")))

		Eventually(func() bool { return pc.Done.Fired() }, "2s").Should(BeTrue())
		Expect(string(pc.Done.Value().Body.Bytes())).To(ContainSubstring("no such script: missing"))
	})

	It("delivers a PUBLICATION payload pushed by the master to the slave's sink", func() {
		received := make(chan []byte, 1)
		slave2 := NewSlave(slaveFatal.record, "sh2", 1, WithPublicationSink(func(payload *knot.Knot) {
			received <- payload.Bytes()
		}))
		Expect(slave2.Connect(master.Addr().String())).To(Succeed())
		defer slave2.Close()

		done := make(chan struct{})
		go func() {
			master.BlockUntilNumConnections(1)
			close(done)
		}()
		Eventually(done, "2s").Should(BeClosed())

		handle, ok := master.GetProtocolStack("sh2")
		Expect(ok).To(BeTrue())

		handle.PublishPayload(knot.FromBytes([]byte("score update\n")))

		var payload []byte
		Eventually(received, "2s").Should(Receive(&payload))
		Expect(payload).To(Equal([]byte("score update\n")))
	})
})
