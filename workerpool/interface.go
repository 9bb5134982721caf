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

// Package workerpool implements a generic "sticky" worker pool: one
// goroutine per live worker object W, each fed by its own channel, so a
// work item submitted to a given W always runs on the same goroutine as
// every other item ever submitted to that W. A weighted semaphore caps live
// goroutines at max_threads; the pool's lifecycle is Spawn/AddWork followed
// by Shutdown.
package workerpool

import "context"

// Factory constructs one worker object. Successful calls, including those
// made by Spawn, never exceed max_threads over the pool's lifetime.
type Factory[W any] func(ctx context.Context) (W, error)

// Destroy releases a worker object's resources on shutdown (e.g. closing a
// database connection). Optional — a pool with no Destroy just drops Ws.
type Destroy[W any] func(w W)

// Pool binds a bounded number of goroutines, each to exactly one live
// worker object.
type Pool[W any] interface {
	// AddWork assigns f to an idle worker, spawning a new one (via
	// Factory) if fewer than max_threads exist, or blocking until a
	// worker becomes idle if the pool is at capacity. Returns an error
	// only if the pool is shutting down or a new worker's Factory call
	// failed.
	AddWork(f func(w W)) error

	// Spawn pre-creates up to n idle workers (capped at max_threads
	// minus the current live count).
	Spawn(n int) error

	// LiveCount reports how many worker objects currently exist.
	LiveCount() int

	// IdleCount reports how many worker objects are currently idle.
	IdleCount() int

	// Shutdown drains all in-flight work, stops accepting new work,
	// joins every worker goroutine, and destroys every W. It blocks
	// until complete.
	Shutdown()
}
