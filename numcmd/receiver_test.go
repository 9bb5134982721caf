package numcmd_test

import (
	"bytes"
	"sync"

	"github.com/anvil-labs/harness/knot"
	. "github.com/anvil-labs/harness/numcmd"
	"github.com/anvil-labs/harness/protocol"
	"github.com/anvil-labs/harness/wqueue"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ln(s string) *knot.Knot { return knot.FromBytes([]byte(s)) }

type echoHandler struct{}

func (echoHandler) Execute(ctx *HandlerContext, body *knot.Knot) {
	ctx.WriteResults(body)
	ctx.Done()
}

var _ = Describe("Receiver", func() {
	var (
		out   *bytes.Buffer
		wq    wqueue.Queue
		d     *protocol.Dispatcher
		r     Receiver
		fatal []string
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		wq = wqueue.New(out)
		fatal = nil
		d = protocol.NewDispatcher(wq, func(reason string) { fatal = append(fatal, reason) })
		r = NewReceiver(func(reason string) { fatal = append(fatal, reason) })
		r.Register("ECHO", func() NumberedCommandHandler { return echoHandler{} })
		d.RegisterStateless("COMMAND", r)
	})

	AfterEach(func() { wq.Close() })

	It("decodes COMMAND/ENDCOMMAND and replies via RESULTS/ENDRESULTS", func() {
		d.LineReceived(ln("COMMAND 1"))
		d.LineReceived(ln("ECHO foo"))
		d.LineReceived(ln("ENDCOMMAND"))

		Eventually(func() string { return out.String() }).Should(Equal("RESULTS 1\nECHO foo\nENDRESULTS\n"))
		Expect(r.PendingCount()).To(Equal(0))
		Expect(fatal).To(BeEmpty())
	})

	It("is fatal when the body's first token has no registered handler", func() {
		d.LineReceived(ln("COMMAND 2"))
		d.LineReceived(ln("NOSUCH body"))
		d.LineReceived(ln("ENDCOMMAND"))

		Expect(fatal).To(HaveLen(1))
	})

	It("WaitForAllCommands blocks until an asynchronous handler finishes", func() {
		release := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)

		r.Register("SLOW", func() NumberedCommandHandler {
			return asyncHandlerFunc(func(ctx *HandlerContext, body *knot.Knot) {
				go func() {
					defer wg.Done()
					<-release
					ctx.WriteResults(knot.FromBytes([]byte("done\n")))
					ctx.Done()
				}()
			})
		})

		d.LineReceived(ln("COMMAND 3"))
		d.LineReceived(ln("SLOW"))
		d.LineReceived(ln("ENDCOMMAND"))

		Expect(r.PendingCount()).To(Equal(1))

		waited := make(chan struct{})
		go func() {
			r.WaitForAllCommands()
			close(waited)
		}()

		Consistently(waited, "30ms").ShouldNot(BeClosed())
		close(release)
		wg.Wait()
		Eventually(waited).Should(BeClosed())
		Expect(r.PendingCount()).To(Equal(0))
	})
})

type asyncHandlerFunc func(ctx *HandlerContext, body *knot.Knot)

func (f asyncHandlerFunc) Execute(ctx *HandlerContext, body *knot.Knot) { f(ctx, body) }
