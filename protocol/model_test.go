package protocol_test

import (
	"bytes"
	"sync"

	"github.com/anvil-labs/harness/knot"
	. "github.com/anvil-labs/harness/protocol"
	"github.com/anvil-labs/harness/wqueue"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingExt struct {
	mu      sync.Mutex
	started *knot.Knot
	lines   []*knot.Knot
	raws    []*knot.Knot
}

func (r *recordingExt) OnProtocolStart(sess Session, firstLine *knot.Knot) {
	r.mu.Lock()
	r.started = firstLine
	r.mu.Unlock()
}

func (r *recordingExt) LineReceived(line *knot.Knot) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

func (r *recordingExt) RawReceived(raw *knot.Knot) {
	r.mu.Lock()
	r.raws = append(r.raws, raw)
	r.mu.Unlock()
}

func line(s string) *knot.Knot { return knot.FromBytes([]byte(s)) }

var _ = Describe("Dispatcher", func() {
	var (
		out *bytes.Buffer
		wq  wqueue.Queue
		d   *Dispatcher
		fatalMsgs []string
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		wq = wqueue.New(out)
		fatalMsgs = nil
		d = NewDispatcher(wq, func(reason string) {
			fatalMsgs = append(fatalMsgs, reason)
		})
	})

	AfterEach(func() {
		wq.Close()
	})

	It("routes a line by its first token to the registered extension", func() {
		ext := &recordingExt{}
		d.RegisterStateless("HELLO", ext)

		d.LineReceived(line("HELLO world\n"))
		Expect(ext.started).NotTo(BeNil())
		Expect(ext.started.Bytes()).To(Equal([]byte("HELLO world\n")))
	})

	It("forwards subsequent lines and raw blocks to the active child until Done", func() {
		var sess Session
		ext := &recordingExt{}
		d.Register("CMD", func() Extension {
			return extFunc{
				start: func(s Session, first *knot.Knot) { sess = s },
				line:  ext.LineReceived,
				raw:   ext.RawReceived,
			}
		})

		d.LineReceived(line("CMD 1\n"))
		d.LineReceived(line("body line\n"))
		d.RawReceived(line("raw-bytes"))

		Expect(ext.lines).To(HaveLen(1))
		Expect(ext.raws).To(HaveLen(1))

		sess.Done()

		// After Done, an unrelated token routes fresh again instead of
		// going to the now-finished child.
		ext2 := &recordingExt{}
		d.RegisterStateless("BYE", ext2)
		d.LineReceived(line("BYE\n"))
		Expect(ext2.started).NotTo(BeNil())
		Expect(ext.lines).To(HaveLen(1))
	})

	It("is fatal on an unrecognized trigger token", func() {
		d.LineReceived(line("NOSUCHTOKEN\n"))
		Expect(fatalMsgs).To(HaveLen(1))
	})

	It("is fatal on raw data with no active child", func() {
		d.RawReceived(line("stray"))
		Expect(fatalMsgs).To(HaveLen(1))
	})
})

type extFunc struct {
	start func(Session, *knot.Knot)
	line  func(*knot.Knot)
	raw   func(*knot.Knot)
}

func (e extFunc) OnProtocolStart(sess Session, firstLine *knot.Knot) { e.start(sess, firstLine) }
func (e extFunc) LineReceived(line *knot.Knot)                      { e.line(line) }
func (e extFunc) RawReceived(raw *knot.Knot)                        { e.raw(raw) }

var _ = Describe("ReadyHandler", func() {
	It("emits READY on construction and after every OnChildDone", func() {
		out := &bytes.Buffer{}
		wq := wqueue.New(out)
		defer wq.Close()

		h := NewReadyHandler(wq)

		Eventually(func() string { return out.String() }).Should(Equal("READY\n"))

		h.OnChildDone()
		Eventually(func() string { return out.String() }).Should(Equal("READY\nREADY\n"))
	})
})

var _ = Describe("ShutdownHandler", func() {
	It("waits for drain then closes the write queue", func() {
		out := &bytes.Buffer{}
		wq := wqueue.New(out)

		var drained bool
		d := NewDispatcher(wq, func(reason string) {})
		d.Register("SHUTDOWN", NewShutdownHandler(func() { drained = true }))

		d.LineReceived(line("SHUTDOWN\n"))

		Expect(drained).To(BeTrue())

		// wq.Close was already called by the handler; a second Close
		// from the test must not hang.
		done := make(chan struct{})
		go func() {
			wq.Close()
			close(done)
		}()
		Eventually(done).Should(BeClosed())
	})
})
