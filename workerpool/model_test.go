package workerpool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/anvil-labs/harness/workerpool"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type counterWorker struct {
	id int32
}

var _ = Describe("Pool", func() {
	It("never constructs more workers than max_threads", func() {
		var constructed int32

		fct := func(ctx context.Context) (*counterWorker, error) {
			n := atomic.AddInt32(&constructed, 1)
			return &counterWorker{id: n}, nil
		}

		p := New[*counterWorker](context.Background(), 3, fct, nil)
		defer p.Shutdown()

		var wg sync.WaitGroup
		for i := 0; i < 30; i++ {
			wg.Add(1)
			Expect(p.AddWork(func(w *counterWorker) {
				defer wg.Done()
				time.Sleep(2 * time.Millisecond)
			})).To(Succeed())
		}
		wg.Wait()

		Expect(atomic.LoadInt32(&constructed)).To(BeNumerically("<=", 3))
	})

	It("never lets two work items on the same worker run concurrently", func() {
		fct := func(ctx context.Context) (*counterWorker, error) {
			return &counterWorker{}, nil
		}

		p := New[*counterWorker](context.Background(), 2, fct, nil)
		defer p.Shutdown()

		var mu sync.Mutex
		busy := map[*counterWorker]bool{}
		var violation int32

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			Expect(p.AddWork(func(w *counterWorker) {
				defer wg.Done()

				mu.Lock()
				if busy[w] {
					atomic.AddInt32(&violation, 1)
				}
				busy[w] = true
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				busy[w] = false
				mu.Unlock()
			})).To(Succeed())
		}
		wg.Wait()

		Expect(atomic.LoadInt32(&violation)).To(Equal(int32(0)))
	})

	It("blocks AddWork when at capacity until a worker becomes idle", func() {
		fct := func(ctx context.Context) (*counterWorker, error) { return &counterWorker{}, nil }
		p := New[*counterWorker](context.Background(), 1, fct, nil)
		defer p.Shutdown()

		release := make(chan struct{})
		started := make(chan struct{})

		Expect(p.AddWork(func(w *counterWorker) {
			close(started)
			<-release
		})).To(Succeed())

		<-started

		done := make(chan struct{})
		go func() {
			Expect(p.AddWork(func(w *counterWorker) {})).To(Succeed())
			close(done)
		}()

		Consistently(done, "50ms").ShouldNot(BeClosed())
		close(release)
		Eventually(done, "1s").Should(BeClosed())
	})

	It("destroys every worker on Shutdown after draining in-flight work", func() {
		var destroyed int32
		fct := func(ctx context.Context) (*counterWorker, error) { return &counterWorker{}, nil }
		dst := func(w *counterWorker) { atomic.AddInt32(&destroyed, 1) }

		p := New[*counterWorker](context.Background(), 4, fct, dst)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			Expect(p.AddWork(func(w *counterWorker) { wg.Done() })).To(Succeed())
		}
		wg.Wait()

		live := p.LiveCount()
		p.Shutdown()

		Expect(atomic.LoadInt32(&destroyed)).To(Equal(int32(live)))
		Expect(p.AddWork(func(w *counterWorker) {})).To(HaveOccurred())
	})
})
