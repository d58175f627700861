/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package linkage

import "sync"

// job carries one dispatch of a complete frame to a worker.
type job struct {
	channel Channel
	handler EasyHandler
	payload []byte
	onDone  func(result int)
}

// jobQueue is the bounded FIFO shared by every reactor; jobWorkers drain it
// concurrently. With zero workers configured, Linkage.dispatch runs the
// handler inline on the calling reactor goroutine instead of ever touching
// this queue, matching the "workers=0 means inline" contract.
type jobQueue struct {
	queue chan job
	quit  chan struct{}
	wg    sync.WaitGroup
}

func newJobQueue(capacity int, workers int, lifecycle func(idx uint32, starting bool)) *jobQueue {
	q := &jobQueue{
		queue: make(chan job, capacity),
		quit:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.runWorker(uint32(i), lifecycle)
	}
	return q
}

func (q *jobQueue) runWorker(idx uint32, lifecycle func(uint32, bool)) {
	defer q.wg.Done()
	if lifecycle != nil {
		lifecycle(idx, true)
		defer lifecycle(idx, false)
	}
	for {
		select {
		case j, ok := <-q.queue:
			if !ok {
				return
			}
			result := j.handler.OnMessage(j.channel, j.payload)
			if j.onDone != nil {
				j.onDone(result)
			}
		case <-q.quit:
			return
		}
	}
}

// submit enqueues j, blocking only on queue capacity.
func (q *jobQueue) submit(j job) {
	select {
	case q.queue <- j:
	case <-q.quit:
	}
}

func (q *jobQueue) shutdown() {
	close(q.quit)
	q.wg.Wait()
}
