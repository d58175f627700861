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

import "net"

// EasyHandler is implemented by library users. EasyServer invokes these
// callbacks for every Linkage attached to the channel they were given.
//
// GetMessageLength and OnMessage run on the owning reactor's goroutine
// unless a non-zero worker pool is configured, in which case OnMessage runs
// on a job worker instead. The other callbacks always run on the reactor.
type EasyHandler interface {
	// GetMessageLength inspects the accumulated, unconsumed receive buffer
	// and reports how many of its leading bytes form one complete message:
	// a positive length, zero to wait for more bytes, or a negative value
	// to abort the connection.
	GetMessageLength(channel Channel, buffered []byte) int

	// OnMessage handles one complete frame. A positive return continues the
	// connection, zero requests a graceful half-close, negative aborts it.
	OnMessage(channel Channel, payload []byte) int

	// OnConnected fires once the connection (and TLS handshake, if any) is
	// ready. Returning false causes an immediate disconnect with no further
	// callbacks beyond OnDisconnected.
	OnConnected(channel Channel, local, peer net.Addr) bool

	// OnDisconnected fires exactly once per channel lifetime, after the
	// connection has fully closed.
	OnDisconnected(channel Channel)

	// OnError reports a connection-level error; reading distinguishes a
	// read-path failure from a write/connect-path one.
	OnError(channel Channel, reading bool, err error)
}

// EasyHandlerFactory produces one EasyHandler instance per connection. A
// factory-produced handler is owned by the channel's IoContext and is
// destroyed when the channel is forgotten; a handler passed directly to
// Listen/ConnectTCP4 is borrowed and its lifetime is the caller's concern.
type EasyHandlerFactory func(channel Channel) EasyHandler

// RouteHandler lets one Listener multiplex several protocols: it inspects
// the first bytes read from a newly accepted connection and returns the
// EasyHandler that should own it, or nil to request more bytes before
// deciding. Attaching a RouteHandler to a Listener defers handler selection
// until GetMessageLength would otherwise have been called for the first time.
type RouteHandler interface {
	RouteConnection(channel Channel, peeked []byte) (handler EasyHandler, decided bool)
}

// lifecycleHandler and jobLifecycleHandler declare the reactor/worker thread
// lifecycle hooks. EasyServer does not call them: a handler that implements
// these methods receives no lifecycle callbacks.
type lifecycleHandler interface {
	OnIoThreadInitialize(reactorIndex uint32)
	OnIoThreadShutdown(reactorIndex uint32)
}

type jobLifecycleHandler interface {
	OnJobThreadInitialize(workerIndex uint32)
	OnJobThreadShutdown(workerIndex uint32)
}
