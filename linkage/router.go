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

// routingHandler is the EasyHandler a Listener attaches to every connection
// accepted under a RouteHandler: it withholds dispatch until RouteConnection
// picks the real handler from the peeked bytes, then forwards every
// subsequent call to it.
type routingHandler struct {
	route RouteHandler
	real  EasyHandler

	local, peer net.Addr
	connected   bool
}

func newRoutingHandler(route RouteHandler) *routingHandler {
	return &routingHandler{route: route}
}

// GetMessageLength asks the RouteHandler to decide on every call until it
// does, then hands framing over to the chosen handler.
func (h *routingHandler) GetMessageLength(channel Channel, buffered []byte) int {
	if h.real == nil {
		handler, decided := h.route.RouteConnection(channel, buffered)
		if !decided {
			return 0
		}
		h.real = handler
		if h.connected {
			h.real.OnConnected(channel, h.local, h.peer)
		}
	}
	return h.real.GetMessageLength(channel, buffered)
}

func (h *routingHandler) OnMessage(channel Channel, payload []byte) int {
	if h.real == nil {
		return -1
	}
	return h.real.OnMessage(channel, payload)
}

// OnConnected always accepts immediately; the RouteHandler decides once
// bytes start arriving, not at connect time. local/peer are remembered so
// the eventually-chosen handler still receives its own OnConnected.
func (h *routingHandler) OnConnected(channel Channel, local, peer net.Addr) bool {
	h.local, h.peer, h.connected = local, peer, true
	if h.real != nil {
		return h.real.OnConnected(channel, local, peer)
	}
	return true
}

func (h *routingHandler) OnDisconnected(channel Channel) {
	if h.real != nil {
		h.real.OnDisconnected(channel)
	}
}

func (h *routingHandler) OnError(channel Channel, reading bool, err error) {
	if h.real != nil {
		h.real.OnError(channel, reading, err)
	}
}
