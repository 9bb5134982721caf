/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package workerpool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

type worker[W any] struct {
	w    W
	work chan func(W)
}

type pool[W any] struct {
	ctx context.Context
	fct Factory[W]
	dst Destroy[W]
	max int64

	sem *semaphore.Weighted

	mu       sync.Mutex
	cond     *sync.Cond
	idle     []*worker[W]
	all      []*worker[W]
	closed   bool
	wg       sync.WaitGroup
}

// New returns a Pool bound to ctx (canceling ctx is equivalent to calling
// Shutdown once in-flight work completes), constructing workers with fct
// and capping live workers at maxThreads.
func New[W any](ctx context.Context, maxThreads int, fct Factory[W], dst Destroy[W]) Pool[W] {
	p := &pool[W]{
		ctx: ctx,
		fct: fct,
		dst: dst,
		max: int64(maxThreads),
		sem: semaphore.NewWeighted(int64(maxThreads)),
	}
	p.cond = sync.NewCond(&p.mu)

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			p.Shutdown()
		}()
	}

	return p
}

func (p *pool[W]) Spawn(n int) error {
	for i := 0; i < n; i++ {
		if !p.sem.TryAcquire(1) {
			return nil
		}

		wt, err := p.newWorker()
		if err != nil {
			p.sem.Release(1)
			return err
		}

		p.mu.Lock()
		p.idle = append(p.idle, wt)
		p.cond.Broadcast()
		p.mu.Unlock()
	}
	return nil
}

func (p *pool[W]) newWorker() (*worker[W], error) {
	w, err := p.fct(p.ctx)
	if err != nil {
		return nil, fmt.Errorf("workerpool: factory: %w", err)
	}

	wt := &worker[W]{w: w, work: make(chan func(W))}

	p.mu.Lock()
	p.all = append(p.all, wt)
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(wt)

	return wt, nil
}

// run is the one goroutine permanently bound to wt.w: every item ever
// submitted to this worker executes here, so w is never touched by two
// goroutines concurrently.
func (p *pool[W]) run(wt *worker[W]) {
	defer p.wg.Done()

	for f := range wt.work {
		f(wt.w)

		p.mu.Lock()
		if !p.closed {
			p.idle = append(p.idle, wt)
			p.cond.Broadcast()
		}
		p.mu.Unlock()
	}
}

func (p *pool[W]) AddWork(f func(W)) error {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return fmt.Errorf("workerpool: shutting down")
		}

		if len(p.idle) > 0 {
			wt := p.idle[len(p.idle)-1]
			p.idle = p.idle[:len(p.idle)-1]
			p.mu.Unlock()
			wt.work <- f
			return nil
		}
		p.mu.Unlock()

		if p.sem.TryAcquire(1) {
			wt, err := p.newWorker()
			if err != nil {
				p.sem.Release(1)
				return err
			}
			wt.work <- f
			return nil
		}

		p.mu.Lock()
		for len(p.idle) == 0 && !p.closed {
			p.cond.Wait()
		}
		p.mu.Unlock()
	}
}

func (p *pool[W]) LiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

func (p *pool[W]) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

func (p *pool[W]) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	all := append([]*worker[W]{}, p.all...)
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, wt := range all {
		close(wt.work)
	}

	p.wg.Wait()

	if p.dst != nil {
		for _, wt := range all {
			p.dst(wt.w)
		}
	}
}
