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
	"net"
	"time"
)

// LinkState is one of the states a Linkage moves through over its life.
type LinkState uint8

const (
	StateConnecting LinkState = iota
	StateHandshaking
	StateOpen
	StateHalfClosing
	StateClosed
)

const readChunkSize = 8 * 1024

// Timeouts bundles the four durations a Linkage is configured with once, at
// attach time, and never changes afterward.
type Timeouts struct {
	Receive time.Duration
	Send    time.Duration
	Idle    time.Duration
	Connect time.Duration
}

// Linkage is the per-connection state machine: it owns the AbstractIo byte
// backend, the receive/send buffers, and the handler callbacks for one
// Channel. Every method runs solely on the owning reactor's goroutine, so no
// locking is needed internally; EasyServer.Send/Disconnect reach a Linkage
// from other goroutines only by posting a command onto the reactor.
type Linkage struct {
	channel  Channel
	io       AbstractIo
	handler  EasyHandler
	outgoing bool
	timeouts Timeouts

	reactor *reactor
	srv     *EasyServer

	state LinkState

	recvBuf      []byte
	pendingFrame int
	sendBuf      []byte
	graceful     bool

	lastReceived time.Time
	sendJamAt    time.Time

	local net.Addr
	peer  net.Addr
}

func newLinkage(channel Channel, io AbstractIo, handler EasyHandler, outgoing bool, timeouts Timeouts, srv *EasyServer) *Linkage {
	return &Linkage{
		channel:  channel,
		io:       io,
		handler:  handler,
		outgoing: outgoing,
		timeouts: timeouts,
		srv:      srv,
		local:    io.LocalAddr(),
		peer:     io.RemoteAddr(),
	}
}

// Channel returns the identifier this Linkage was allocated under.
func (l *Linkage) Channel() Channel { return l.channel }

// State returns the current lifecycle state.
func (l *Linkage) State() LinkState { return l.state }

// PeerIdentity forwards to the AbstractIo backend; empty for plain sockets
// or before a TLS handshake completes.
func (l *Linkage) PeerIdentity() PeerIdentity { return l.io.PeerIdentity() }

// LocalAddr and RemoteAddr expose the socket addresses captured at attach
// time, for admin introspection and logging.
func (l *Linkage) LocalAddr() net.Addr  { return l.local }
func (l *Linkage) RemoteAddr() net.Addr { return l.peer }

// IsOutgoing reports whether this Linkage was dialed by us rather than
// accepted from a Listener.
func (l *Linkage) IsOutgoing() bool { return l.outgoing }

// completeHandshake moves the Linkage to Open and fires OnConnected. It runs
// on the reactor goroutine, either inline (plain accepted socket, no
// handshake needed) or from the command posted by reactor.runHandshake.
func (l *Linkage) completeHandshake() bool {
	l.state = StateOpen
	l.lastReceived = time.Now()
	if !l.handler.OnConnected(l.channel, l.local, l.peer) {
		l.closeNow()
		return false
	}
	return true
}

// applyRead is invoked on the reactor goroutine with the outcome of one
// blocking read performed by this Linkage's dedicated reader goroutine (see
// reactor.startReader). It feeds new bytes through framing/dispatch against
// the accumulated receive buffer.
func (l *Linkage) applyRead(status Status, data []byte) {
	if l.state != StateOpen {
		return
	}

	if len(data) > 0 {
		l.recvBuf = append(l.recvBuf, data...)
		l.lastReceived = time.Now()
	}

	switch status {
	case StatusOk, StatusWantRead, StatusWantWrite, StatusJammed:
		l.drainFrames()
	case StatusClosed:
		l.drainFrames()
		l.closeNow()
	default:
		l.handler.OnError(l.channel, true, errFromStatus(status))
		l.closeNow()
	}
}

// drainFrames extracts as many complete frames as the receive buffer holds
// and hands each to dispatch. It returns false if the Linkage was closed
// while processing (inline dispatch only; an async result arrives later).
func (l *Linkage) drainFrames() bool {
	for {
		if l.state != StateOpen {
			return false
		}
		if l.pendingFrame == 0 {
			n := l.handler.GetMessageLength(l.channel, l.recvBuf)
			switch {
			case n < 0:
				l.closeNow()
				return false
			case n == 0:
				return true
			default:
				l.pendingFrame = n
			}
		}

		if len(l.recvBuf) < l.pendingFrame {
			return true
		}

		frame := append([]byte(nil), l.recvBuf[:l.pendingFrame]...)
		l.recvBuf = append(l.recvBuf[:0], l.recvBuf[l.pendingFrame:]...)
		l.pendingFrame = 0

		l.dispatch(frame)
	}
}

// dispatch runs the handler inline when no worker pool is configured, or
// hands the frame to the global job queue otherwise; either way the result
// is applied through handleMessageResult, inline immediately or via a
// command posted back once a worker finishes.
func (l *Linkage) dispatch(frame []byte) {
	if l.srv == nil || l.srv.jobs == nil {
		l.handleMessageResult(l.handler.OnMessage(l.channel, frame))
		return
	}
	l.srv.jobs.submit(job{
		channel: l.channel,
		handler: l.handler,
		payload: frame,
		onDone: func(result int) {
			l.reactor.post(func() { l.handleMessageResult(result) })
		},
	})
}

func (l *Linkage) handleMessageResult(result int) {
	switch {
	case result < 0:
		l.closeNow()
	case result == 0:
		l.beginGraceful()
	}
}

// Send appends payload to the send buffer, then drains the buffer
// synchronously. Every AbstractIo backend wraps a blocking connection with
// no readiness notification to wait for, so there is nothing to arm a
// writer on: io.Write either takes the bytes before returning or reports a
// real error, and flush is the single place that does that draining.
func (l *Linkage) Send(payload []byte) {
	if l.state != StateOpen {
		return
	}
	l.bufferSend(payload)
	l.flush()
}

func (l *Linkage) bufferSend(payload []byte) {
	if len(l.sendBuf) == 0 && len(payload) > 0 && l.sendJamAt.IsZero() {
		l.sendJamAt = time.Now()
	}
	l.sendBuf = append(l.sendBuf, payload...)
}

// flush drains as much of the send buffer as the connection will accept
// right now. StatusWantRead/StatusWantWrite/StatusJammed leaves whatever
// remains buffered for the next Send/Disconnect call to retry; the
// reactor's health check (cleanup, via Timeouts.Send/sendJamAt) evicts a
// Linkage that stays jammed past its configured send timeout.
func (l *Linkage) flush() {
	if l.state != StateOpen {
		return
	}
	for len(l.sendBuf) > 0 {
		status, n := l.io.Write(l.sendBuf)
		if n > 0 {
			l.sendBuf = l.sendBuf[n:]
		}
		switch status {
		case StatusOk:
			continue
		case StatusWantRead, StatusWantWrite, StatusJammed:
			return
		default:
			l.handler.OnError(l.channel, false, errFromStatus(status))
			l.closeNow()
			return
		}
	}

	l.sendJamAt = time.Time{}
	if l.graceful {
		l.initiateShutdown()
	}
}

func (l *Linkage) fail(reading bool, st Status) {
	l.handler.OnError(l.channel, reading, errFromStatus(st))
	l.closeNow()
}

// beginGraceful marks the Linkage for a half-close once any reply already
// queued by the OnMessage call that triggered it has drained.
func (l *Linkage) beginGraceful() {
	l.graceful = true
	l.flush()
}

func (l *Linkage) initiateShutdown() {
	l.state = StateHalfClosing
	l.io.Shutdown()
	l.closeNow()
}

// Disconnect implements the EasyServer-level disconnect contract. With
// finishWrite, any buffered bytes are drained before the connection closes;
// otherwise the buffer is dropped and the connection closes immediately.
func (l *Linkage) Disconnect(finishWrite bool) {
	if l.state == StateClosed {
		return
	}
	if !finishWrite {
		l.sendBuf = nil
		l.closeNow()
		return
	}
	l.graceful = true
	l.flush()
}

func (l *Linkage) closeNow() {
	if l.state == StateClosed {
		return
	}
	l.state = StateClosed
	_ = l.io.Close()
	if l.reactor != nil {
		l.reactor.ioctx.detach(l.channel)
	}
	if !l.outgoing && l.srv != nil {
		l.srv.releaseIncoming()
	}
	l.handler.OnDisconnected(l.channel)
}

// cleanup implements the health-check contract: it returns false (and the
// caller must disconnect) when any configured timeout has elapsed.
func (l *Linkage) cleanup(now time.Time) bool {
	if l.state == StateClosed {
		return true
	}
	if l.timeouts.Receive > 0 && now.Sub(l.lastReceived) >= l.timeouts.Receive {
		return false
	}
	if l.timeouts.Send > 0 && !l.sendJamAt.IsZero() && now.Sub(l.sendJamAt) >= l.timeouts.Send {
		return false
	}
	if l.timeouts.Idle > 0 {
		last := l.lastReceived
		if !l.sendJamAt.IsZero() && l.sendJamAt.After(last) {
			last = l.sendJamAt
		}
		if now.Sub(last) >= l.timeouts.Idle {
			return false
		}
	}
	return true
}

func errFromStatus(st Status) error {
	return &statusError{st}
}

type statusError struct{ status Status }

func (e *statusError) Error() string { return e.status.String() }
