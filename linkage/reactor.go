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

import (
	"sync"
	"time"
)

const (
	commandQueueDepth = 256
	healthCheckPeriod = time.Second
)

// timerEntry is one registered periodic or one-shot job.
type timerEntry struct {
	ticker *time.Ticker
	timer  *time.Timer
	stop   chan struct{}
}

// reactor is a single-threaded event loop: one goroutine drains a command
// channel in order, which is how every callback on a Linkage owned by this
// reactor ends up mutually exclusive without any lock. Commands arrive from
// three sources: a Linkage's dedicated reader goroutine reporting a read
// result, a handshake/connect goroutine reporting its outcome, and
// EasyServer routing a cross-thread Send/Disconnect/RegisterTimer call.
type reactor struct {
	index uint32
	slots uint32
	ioctx *ioContext
	srv   *EasyServer

	cmds chan func()
	quit chan struct{}
	wg   sync.WaitGroup

	timersMu sync.Mutex
	timers   []*timerEntry
}

func newReactor(index, slots uint32, srv *EasyServer) *reactor {
	return &reactor{
		index: index,
		slots: slots,
		ioctx: newIoContext(index, slots),
		srv:   srv,
		cmds:  make(chan func(), commandQueueDepth),
		quit:  make(chan struct{}),
	}
}

// start launches the reactor's event-loop goroutine.
func (r *reactor) start() {
	r.wg.Add(1)
	go r.loop()
}

func (r *reactor) loop() {
	defer r.wg.Done()
	health := time.NewTicker(healthCheckPeriod)
	defer health.Stop()

	for {
		select {
		case fn := <-r.cmds:
			fn()
		case <-health.C:
			r.runHealthCheck()
		case <-r.quit:
			r.drainCommands()
			return
		}
	}
}

// drainCommands runs whatever is already queued before the reactor exits,
// so a Shutdown racing with an in-flight Send still completes it.
func (r *reactor) drainCommands() {
	for {
		select {
		case fn := <-r.cmds:
			fn()
		default:
			return
		}
	}
}

// post is thread-safe; it is the reactor's equivalent of send_command.
func (r *reactor) post(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.quit:
	}
}

func (r *reactor) runHealthCheck() {
	now := time.Now()
	for _, l := range r.ioctx.snapshot() {
		if !l.cleanup(now) {
			l.fail(true, StatusClosed)
		}
	}
}

// attachLinkage registers ch/l with this reactor and drives the immediate
// action AbstractIo.Initialize reports. Handshakes and outgoing connects run
// on a short-lived helper goroutine so the reactor loop is never blocked.
func (r *reactor) attachLinkage(ch Channel, l *Linkage) {
	r.ioctx.attach(ch, l)
	l.reactor = r

	switch l.io.Initialize() {
	case ActionNone:
		l.state = StateOpen
		if l.completeHandshake() {
			r.startReader(l)
		}
	case ActionConnect:
		l.state = StateConnecting
		r.runHandshakeAsync(l, false)
	case ActionAccept:
		l.state = StateHandshaking
		r.runHandshakeAsync(l, true)
	}
}

func (r *reactor) runHandshakeAsync(l *Linkage, isAccept bool) {
	go func() {
		var st Status
		if isAccept {
			st = l.io.Accept()
		} else {
			st = l.io.Connect()
		}
		r.post(func() {
			if l.state == StateClosed {
				return
			}
			if st != StatusOk {
				l.fail(isAccept, st)
				return
			}
			if l.completeHandshake() {
				r.startReader(l)
			}
		})
	}()
}

// startReader launches the dedicated blocking-read goroutine for l; it runs
// until the connection closes, posting each read outcome back to the
// reactor as a command.
func (r *reactor) startReader(l *Linkage) {
	go func() {
		for {
			buf := make([]byte, readChunkSize)
			status, n := l.io.Read(buf)
			data := buf[:n]
			done := make(chan struct{})
			select {
			case r.cmds <- func() {
				l.applyRead(status, data)
				close(done)
			}:
				<-done
			case <-r.quit:
				return
			}
			if status != StatusOk {
				return
			}
		}
	}()
}

// registerTimer schedules job on this reactor's goroutine, one-shot or
// repeating at the given period.
func (r *reactor) registerTimer(after time.Duration, repeat bool, job func()) {
	entry := &timerEntry{stop: make(chan struct{})}
	if repeat {
		entry.ticker = time.NewTicker(after)
	} else {
		entry.timer = time.NewTimer(after)
	}

	r.timersMu.Lock()
	r.timers = append(r.timers, entry)
	r.timersMu.Unlock()

	go func() {
		var c <-chan time.Time
		if repeat {
			c = entry.ticker.C
		} else {
			c = entry.timer.C
		}
		for {
			select {
			case <-c:
				r.post(job)
				if !repeat {
					return
				}
			case <-entry.stop:
				return
			case <-r.quit:
				return
			}
		}
	}()
}

func (r *reactor) stop() {
	close(r.quit)
	r.timersMu.Lock()
	for _, t := range r.timers {
		close(t.stop)
		if t.ticker != nil {
			t.ticker.Stop()
		}
		if t.timer != nil {
			t.timer.Stop()
		}
	}
	r.timersMu.Unlock()
	r.wg.Wait()
}
